package callgraph

import (
	"fmt"
	"sort"
	"strings"

	"github.com/zboralski/lattice"

	"dexkit/internal/disasm"
)

// BuildCFG constructs a lattice.CFGGraph from scanned methods.
// Each FuncInfo is split into blocks by disasm.BuildCFG then mapped to
// lattice types.
func BuildCFG(funcs []FuncInfo) (*lattice.CFGGraph, error) {
	cg := &lattice.CFGGraph{}
	for _, f := range funcs {
		lcfg, _, err := BuildFuncCFG(f)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.Name, err)
		}
		cg.Funcs = append(cg.Funcs, lcfg)
	}
	return cg, nil
}

// BuildFuncCFG builds a single-method lattice.FuncCFG with calls and string
// constants placed in their blocks. Returns the FuncCFG and the number of
// basic blocks (for filtering trivial methods).
func BuildFuncCFG(f FuncInfo) (*lattice.FuncCFG, int, error) {
	dcfg, err := disasm.BuildCFG(f.Name, f.Method)
	if err != nil {
		return nil, 0, err
	}
	lcfg := convertFuncCFG(&dcfg, f.CallEdges)
	injectStringRefs(lcfg, &dcfg, f.Strings)
	return lcfg, len(dcfg.Blocks), nil
}

// BuildSummaryFuncCFG builds a FuncCFG holding one block that lists the
// method's interesting calls and string constants in order, each once.
func BuildSummaryFuncCFG(f FuncInfo) *lattice.FuncCFG {
	type site struct {
		index  int
		callee string
	}
	var sites []site
	for _, e := range f.CallEdges {
		if isInterestingCallee(e.Target) {
			sites = append(sites, site{e.Index, e.Target})
		}
	}
	for _, s := range f.Strings {
		sites = append(sites, site{s.Index, quoteString(s.Value)})
	}
	sort.SliceStable(sites, func(i, j int) bool { return sites[i].index < sites[j].index })

	seen := make(map[string]bool)
	var calls []lattice.CallSite
	for _, s := range sites {
		if seen[s.callee] {
			continue
		}
		seen[s.callee] = true
		calls = append(calls, lattice.CallSite{Offset: len(calls), Callee: s.callee})
	}

	lcfg := &lattice.FuncCFG{Name: f.Name}
	if len(calls) > 0 {
		lcfg.Blocks = append(lcfg.Blocks, &lattice.BasicBlock{
			ID:    0,
			Start: 0,
			End:   1,
			Term:  true,
			Calls: calls,
		})
	}
	return lcfg
}

func quoteString(val string) string {
	if len(val) > 50 {
		val = val[:47] + "..."
	}
	return fmt.Sprintf("%q", val)
}

// injectStringRefs adds string reference CallSite entries into the
// blocks holding their const-string instructions.
func injectStringRefs(lcfg *lattice.FuncCFG, dcfg *disasm.FuncCFG, refs []disasm.StringRef) {
	if len(refs) == 0 {
		return
	}
	touched := make(map[int]bool)
	for _, r := range refs {
		bi := dcfg.BlockOf(r.Index)
		if bi < 0 {
			continue
		}
		lcfg.Blocks[bi].Calls = append(lcfg.Blocks[bi].Calls, lattice.CallSite{
			Offset: r.Index,
			Callee: quoteString(r.Value),
		})
		touched[bi] = true
	}
	for bi := range touched {
		sort.Slice(lcfg.Blocks[bi].Calls, func(i, j int) bool {
			return lcfg.Blocks[bi].Calls[i].Offset < lcfg.Blocks[bi].Calls[j].Offset
		})
	}
}

// isInterestingCallee returns true if the callee is worth a summary line
// rather than constructor chaining or string building noise.
func isInterestingCallee(name string) bool {
	switch {
	case name == "":
		return false
	case strings.HasPrefix(name, "Ljava/lang/Object;-><init>"):
		return false
	case strings.HasPrefix(name, "Ljava/lang/StringBuilder;->"):
		return false
	}
	return true
}

// convertFuncCFG maps a disasm.FuncCFG to a lattice.FuncCFG.
// Call edges are mapped into blocks by instruction index.
func convertFuncCFG(dcfg *disasm.FuncCFG, edges []disasm.CallEdge) *lattice.FuncCFG {
	edgeByIndex := make(map[int]disasm.CallEdge, len(edges))
	for _, e := range edges {
		edgeByIndex[e.Index] = e
	}

	lcfg := &lattice.FuncCFG{Name: dcfg.Name}
	for _, db := range dcfg.Blocks {
		lb := &lattice.BasicBlock{
			ID:    db.ID,
			Start: db.Start,
			End:   db.End,
			Term:  db.IsTerm,
		}

		for _, ds := range db.Succs {
			lb.Succs = append(lb.Succs, lattice.Successor{
				BlockID: ds.BlockID,
				Cond:    ds.Cond,
			})
		}

		for idx := db.Start; idx < db.End; idx++ {
			if e, ok := edgeByIndex[idx]; ok {
				callee := e.Target
				if callee == "" {
					callee = fmt.Sprintf("%s@0x%04x", e.Kind, e.FromAddr)
				}
				lb.Calls = append(lb.Calls, lattice.CallSite{
					Offset: idx,
					Callee: callee,
				})
			}
		}

		lcfg.Blocks = append(lcfg.Blocks, lb)
	}
	return lcfg
}
