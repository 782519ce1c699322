package render

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"dexkit/internal/analysis"
	"dexkit/internal/disasm"
)

// ClassgraphDOT renders a class-level callgraph where each owner class is one node
// and edges represent aggregated inter-class calls. maxNodes limits rendered classes
// (0 = all). Classes that only appear as call targets are drawn faded.
func ClassgraphDOT(funcs []disasm.FuncRecord, edges []disasm.CallEdgeRecord, title string, t Theme, maxNodes int) string {
	ownerMethodCount := make(map[string]int)
	for _, f := range funcs {
		ownerMethodCount[recordOwner(f)]++
	}

	type classEdge struct {
		from, to string
	}
	classCounts := make(map[classEdge]int)
	for _, e := range edges {
		src, dst := ownerOf(e.FromFunc), ownerOf(e.Target)
		if src == "" || dst == "" || src == dst {
			continue
		}
		classCounts[classEdge{src, dst}]++
	}

	involvement := make(map[string]int)
	for ce, count := range classCounts {
		involvement[ce.from] += count
		involvement[ce.to] += count
	}

	// Rank classes by involvement for the maxNodes limit.
	type rankedClass struct {
		name        string
		involvement int
	}
	ranked := make([]rankedClass, 0, len(involvement))
	for name, inv := range involvement {
		ranked = append(ranked, rankedClass{name, inv})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].involvement != ranked[j].involvement {
			return ranked[i].involvement > ranked[j].involvement
		}
		return ranked[i].name < ranked[j].name
	})
	if maxNodes > 0 && len(ranked) > maxNodes {
		ranked = ranked[:maxNodes]
	}
	renderSet := make(map[string]bool, len(ranked))
	for _, rc := range ranked {
		renderSet[rc.name] = true
	}

	var b strings.Builder
	header(&b, "classgraph", "LR", title, t)
	b.WriteString("  splines=true;\n")
	b.WriteString("  nodesep=0.5;\n")
	b.WriteString("  ranksep=0.8;\n")
	fmt.Fprintf(&b, "  node [shape=rect, style=\"filled,rounded\", fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica,Arial\", fontsize=10, fontcolor=%q, height=0.4, margin=\"0.15,0.08\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee, color=%q];\n", t.EdgeDirect)
	b.WriteByte('\n')

	maxMethods := 1
	for name := range renderSet {
		if c := ownerMethodCount[name]; c > maxMethods {
			maxMethods = c
		}
	}
	for _, rc := range ranked {
		methods := ownerMethodCount[rc.name]
		if methods == 0 {
			fmt.Fprintf(&b, "  %s [label=%q, style=\"dashed,rounded\", fontcolor=%q];\n",
				dotID(rc.name), javaName(rc.name), t.ExternalText)
			continue
		}
		// Scale node height by method count (log scale).
		height := 0.4 + 0.3*math.Log2(float64(methods)+1)/math.Log2(float64(maxMethods)+1)
		label := fmt.Sprintf("<<font point-size=\"10\">%s</font><br/><font point-size=\"7\" color=\"%s\">%d methods</font>>",
			dotEscape(javaName(rc.name)), t.ExternalText, methods)
		fmt.Fprintf(&b, "  %s [label=%s, height=%.2f];\n", dotID(rc.name), label, height)
	}
	b.WriteByte('\n')

	keys := make([]classEdge, 0, len(classCounts))
	maxEdgeCount := 1
	for ce, c := range classCounts {
		if !renderSet[ce.from] || !renderSet[ce.to] {
			continue
		}
		keys = append(keys, ce)
		if c > maxEdgeCount {
			maxEdgeCount = c
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].from != keys[j].from {
			return keys[i].from < keys[j].from
		}
		return keys[i].to < keys[j].to
	})
	for _, ce := range keys {
		count := classCounts[ce]
		pw := 0.5 + 2.0*math.Log2(float64(count)+1)/math.Log2(float64(maxEdgeCount)+1)
		attrs := fmt.Sprintf("penwidth=%.1f", pw)
		if count > 1 {
			attrs += fmt.Sprintf(", label=<<font point-size=\"7\" color=\"%s\">%d</font>>",
				t.ExternalText, count)
		}
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", dotID(ce.from), dotID(ce.to), attrs)
	}

	b.WriteString("}\n")
	return b.String()
}

func recordOwner(f disasm.FuncRecord) string {
	if f.Owner != "" {
		return f.Owner
	}
	return ownerOf(f.Name)
}

// HierarchyDOT draws the superclass and interface edges of a class path.
// Interface edges to classes outside the list are omitted.
func HierarchyDOT(classes []analysis.Class, title string, t Theme) string {
	known := make(map[string]bool, len(classes))
	for _, c := range classes {
		known[c.Name] = true
	}

	var b strings.Builder
	header(&b, "hierarchy", "BT", title, t)
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica,Arial\", fontsize=10, fontcolor=%q];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	fmt.Fprintf(&b, "  edge [penwidth=0.5, arrowsize=0.6, arrowhead=empty, color=%q];\n", t.EdgeStatic)
	b.WriteByte('\n')

	for _, c := range classes {
		if c.Interface {
			fmt.Fprintf(&b, "  %s [label=%q, style=\"filled,rounded\"];\n", dotID(c.Name), javaName(c.Name))
		} else {
			fmt.Fprintf(&b, "  %s [label=%q];\n", dotID(c.Name), javaName(c.Name))
		}
	}
	b.WriteByte('\n')
	for _, c := range classes {
		if !c.Interface && c.Super != "" {
			fmt.Fprintf(&b, "  %s -> %s;\n", dotID(c.Name), dotID(c.Super))
		}
		for _, iface := range c.Interfaces {
			if known[iface] {
				fmt.Fprintf(&b, "  %s -> %s [style=dashed, color=%q];\n", dotID(c.Name), dotID(iface), t.EdgeInterface)
			}
		}
	}
	b.WriteString("}\n")
	return b.String()
}
