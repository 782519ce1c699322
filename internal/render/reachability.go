package render

import (
	"fmt"
	"sort"
	"strings"

	"dexkit/internal/disasm"
)

// FindEntryPoints returns methods no other input method calls. A method
// that only calls itself still counts as an entry point.
func FindEntryPoints(funcs []disasm.FuncRecord, edges []disasm.CallEdgeRecord) []string {
	called := make(map[string]bool)
	for _, e := range edges {
		if e.Target != "" && e.Target != e.FromFunc {
			called[e.Target] = true
		}
	}
	var entries []string
	for _, f := range funcs {
		if !called[f.Name] {
			entries = append(entries, f.Name)
		}
	}
	sort.Strings(entries)
	return entries
}

// ReachableSet performs BFS from entry points following call edges
// and returns the set of all reachable method names.
func ReachableSet(entryPoints []string, edges []disasm.CallEdgeRecord) map[string]bool {
	adj := make(map[string][]string)
	for _, e := range edges {
		if e.Target != "" {
			adj[e.FromFunc] = append(adj[e.FromFunc], e.Target)
		}
	}

	reachable := make(map[string]bool)
	queue := make([]string, 0, len(entryPoints))
	for _, ep := range entryPoints {
		if !reachable[ep] {
			reachable[ep] = true
			queue = append(queue, ep)
		}
	}
	for len(queue) > 0 {
		fn := queue[0]
		queue = queue[1:]
		for _, target := range adj[fn] {
			if !reachable[target] {
				reachable[target] = true
				queue = append(queue, target)
			}
		}
	}
	return reachable
}

// Unreachable lists input methods outside the reachable set, sorted.
func Unreachable(funcs []disasm.FuncRecord, reachable map[string]bool) []string {
	var out []string
	for _, f := range funcs {
		if !reachable[f.Name] {
			out = append(out, f.Name)
		}
	}
	sort.Strings(out)
	return out
}

// ReachabilityDOT renders the call graph restricted to the reachable set.
// Entry points are highlighted.
func ReachabilityDOT(edges []disasm.CallEdgeRecord, reachable map[string]bool, entryPoints []string, title string, t Theme) string {
	entrySet := make(map[string]bool, len(entryPoints))
	for _, ep := range entryPoints {
		entrySet[ep] = true
	}

	type edgeKey struct{ from, to string }
	edgeCount := make(map[edgeKey]int)
	nodes := make(map[string]bool)
	for _, ep := range entryPoints {
		nodes[ep] = true
	}
	for _, e := range edges {
		if e.Target == "" || !reachable[e.FromFunc] || !reachable[e.Target] {
			continue
		}
		edgeCount[edgeKey{e.FromFunc, e.Target}]++
		nodes[e.FromFunc] = true
		nodes[e.Target] = true
	}

	names := make([]string, 0, len(nodes))
	for name := range nodes {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	header(&b, "reachable", "LR", title, t)
	b.WriteString("  splines=true;\n")
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica,Arial\", fontsize=9, fontcolor=%q, height=0.3, margin=\"0.12,0.06\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee, color=%q];\n", t.EdgeStatic)
	b.WriteByte('\n')
	for _, name := range names {
		if entrySet[name] {
			fmt.Fprintf(&b, "  %s [label=%q, penwidth=1.5, color=%q];\n", dotID(name), truncLabel(name, 60), t.EntryBorder)
		} else {
			fmt.Fprintf(&b, "  %s [label=%q];\n", dotID(name), truncLabel(name, 60))
		}
	}
	b.WriteByte('\n')

	keys := make([]edgeKey, 0, len(edgeCount))
	for k := range edgeCount {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})
	for _, k := range keys {
		attrs := ""
		if c := edgeCount[k]; c > 1 {
			attrs = fmt.Sprintf(" [penwidth=%.1f]", 0.5+float64(c)*0.1)
		}
		fmt.Fprintf(&b, "  %s -> %s%s;\n", dotID(k.from), dotID(k.to), attrs)
	}
	b.WriteString("}\n")
	return b.String()
}
