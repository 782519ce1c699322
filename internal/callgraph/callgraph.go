// Package callgraph converts analyzed dex methods into lattice graphs for
// rendering: a call graph across methods and per-method control flow.
package callgraph

import (
	"github.com/zboralski/lattice"

	"dexkit/internal/builder"
	"dexkit/internal/disasm"
)

// FuncInfo holds the data needed to build call graph and CFG for one method.
type FuncInfo struct {
	Name      string
	Method    *builder.MethodImplementation
	CallEdges []disasm.CallEdge
	Strings   []disasm.StringRef
}

// NewFuncInfo scans m for call edges and string references.
func NewFuncInfo(name string, m *builder.MethodImplementation) FuncInfo {
	return FuncInfo{
		Name:      name,
		Method:    m,
		CallEdges: disasm.CallEdges(m, disasm.DefaultWindow),
		Strings:   disasm.StringRefs(m),
	}
}

// BuildCallGraph constructs a lattice.Graph from scanned methods.
// Each method becomes a node. Each invoke becomes an edge to its target
// method signature; invokes without a resolved target are skipped.
func BuildCallGraph(funcs []FuncInfo) *lattice.Graph {
	g := &lattice.Graph{}
	for _, f := range funcs {
		g.Nodes = append(g.Nodes, f.Name)
		for _, e := range f.CallEdges {
			if e.Target == "" {
				continue
			}
			g.Edges = append(g.Edges, lattice.Edge{
				Caller: f.Name,
				Callee: e.Target,
			})
		}
	}
	g.Dedup()
	return g
}
