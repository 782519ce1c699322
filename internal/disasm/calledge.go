package disasm

import (
	"fmt"

	"dexkit/internal/builder"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// CallEdge represents an invoke site of a method body.
type CallEdge struct {
	FromAddr int    `json:"from_addr"`
	Index    int    `json:"index"`
	Kind     string `json:"kind"` // opcode name, e.g. "invoke-virtual"
	Target   string `json:"target"`
	// Via lists argument constants still live at the call, e.g.
	// `v1="key"`.
	Via []string `json:"via,omitempty"`
}

// StringRef is a const-string site.
type StringRef struct {
	Addr  int    `json:"addr"`
	Index int    `json:"index"`
	Reg   int    `json:"reg"`
	Value string `json:"value"`
}

// RegDef records the last constant definition of a register.
type RegDef struct {
	Annotation string // e.g. `"key"` or "Lfoo/Bar;"
	Age        int    // instructions since definition
}

// RegTracker tracks constant provenance for registers over a window of W
// instructions; older definitions expire.
type RegTracker struct {
	defs map[int]RegDef
	w    int
}

// NewRegTracker creates a tracker with the given window size.
func NewRegTracker(w int) *RegTracker {
	return &RegTracker{defs: make(map[int]RegDef), w: w}
}

// Reset clears all tracked definitions. Call at block boundaries.
func (rt *RegTracker) Reset() {
	clear(rt.defs)
}

// Tick ages all definitions by 1 and expires those beyond the window.
func (rt *RegTracker) Tick() {
	for r, d := range rt.defs {
		d.Age++
		if d.Age > rt.w {
			delete(rt.defs, r)
			continue
		}
		rt.defs[r] = d
	}
}

func (rt *RegTracker) Define(r int, annotation string) {
	rt.defs[r] = RegDef{Annotation: annotation}
}

// Lookup returns the annotation for register r, or "" if expired/unknown.
func (rt *RegTracker) Lookup(r int) string {
	return rt.defs[r].Annotation
}

func (rt *RegTracker) Kill(r int) {
	delete(rt.defs, r)
}

// DefaultWindow is the provenance window CallEdges uses.
const DefaultWindow = 8

// CallEdges scans a method for invoke sites. Constants loaded by
// const-string and const-class within w instructions of a call, with no
// intervening block boundary, are attached to the edge.
func CallEdges(m *builder.MethodImplementation, w int) []CallEdge {
	rt := NewRegTracker(w)
	leaders := blockStarts(m)
	var edges []CallEdge
	for n, loc := range m.Instructions() {
		if leaders[n] {
			rt.Reset()
		}
		ins := loc.Instruction()
		info, err := opcode.Lookup(ins.Op)
		if err != nil {
			rt.Tick()
			continue
		}
		switch info.Kind {
		case opcode.KindInvoke:
			addr, _ := loc.Address()
			e := CallEdge{FromAddr: addr, Index: n, Kind: ins.Op.String(), Target: callTarget(ins.Ref)}
			for _, r := range ins.Registers {
				if via := rt.Lookup(r); via != "" {
					e.Via = append(e.Via, fmt.Sprintf("v%d=%s", r, via))
				}
			}
			edges = append(edges, e)
		case opcode.KindConstString:
			if s, ok := ins.Ref.(ref.String); ok {
				rt.Tick()
				rt.Define(ins.Registers[0], fmt.Sprintf("%q", string(s)))
				continue
			}
		case opcode.KindConstClass:
			if t, ok := ins.Ref.(ref.Type); ok {
				rt.Tick()
				rt.Define(ins.Registers[0], string(t))
				continue
			}
		}
		if info.Has(opcode.SetsRegister) || info.Has(opcode.SetsWideRegister) {
			if len(ins.Registers) > 0 {
				rt.Kill(ins.Registers[0])
				if info.Has(opcode.SetsWideRegister) {
					rt.Kill(ins.Registers[0] + 1)
				}
			}
		}
		rt.Tick()
	}
	return edges
}

func callTarget(r ref.Reference) string {
	if r == nil {
		return ""
	}
	return r.String()
}

// StringRefs lists the const-string sites of a method in order.
func StringRefs(m *builder.MethodImplementation) []StringRef {
	var out []StringRef
	for n, loc := range m.Instructions() {
		ins := loc.Instruction()
		s, ok := ins.Ref.(ref.String)
		if !ok || len(ins.Registers) == 0 {
			continue
		}
		addr, _ := loc.Address()
		out = append(out, StringRef{Addr: addr, Index: n, Reg: ins.Registers[0], Value: string(s)})
	}
	return out
}

// blockStarts marks every instruction that control can reach from
// somewhere other than the instruction before it.
func blockStarts(m *builder.MethodImplementation) map[int]bool {
	starts := make(map[int]bool)
	for n := 0; n < m.Len(); n++ {
		if bi := DecodeBranch(m.Instruction(n)); bi != nil {
			starts[n+1] = true
			for _, t := range bi.Targets {
				starts[t] = true
			}
		}
	}
	for _, t := range m.Tries() {
		for _, h := range t.Handlers {
			starts[h.Handler.Index()] = true
		}
	}
	return starts
}
