package render

import (
	"fmt"
	"sort"
	"strings"

	"dexkit/internal/disasm"
)

// Provenance categories derived from the invoke opcode.
const (
	ProvVirtual   = "virtual"
	ProvInterface = "interface"
	ProvSuper     = "super"
	ProvDirect    = "direct"
	ProvStatic    = "static"
	ProvDynamic   = "dynamic"
)

// ClassifyEdgeProv returns the provenance category for a call edge.
func ClassifyEdgeProv(e disasm.CallEdgeRecord) string {
	kind := strings.TrimSuffix(e.Kind, "/range")
	switch kind {
	case "invoke-virtual":
		return ProvVirtual
	case "invoke-interface":
		return ProvInterface
	case "invoke-super":
		return ProvSuper
	case "invoke-direct":
		return ProvDirect
	case "invoke-static":
		return ProvStatic
	default:
		return ProvDynamic
	}
}

// edgeColor returns the DOT color for an edge provenance category.
func edgeColor(prov string, t Theme) string {
	switch prov {
	case ProvVirtual:
		return t.EdgeVirtual
	case ProvInterface:
		return t.EdgeInterface
	case ProvSuper:
		return t.EdgeSuper
	case ProvDirect:
		return t.EdgeDirect
	case ProvStatic:
		return t.EdgeStatic
	default:
		return t.EdgeDynamic
	}
}

// edgeStyle returns dot style attributes for provenance. Dispatched calls
// may land elsewhere at run time.
func edgeStyle(prov string) string {
	switch prov {
	case ProvVirtual, ProvInterface:
		return "dotted"
	case ProvDynamic:
		return "dashed"
	default:
		return "solid"
	}
}

// CallgraphDOT renders a callgraph from methods and call edges as DOT.
// Methods of the same class are clustered. Targets outside the input are
// shown as plaintext nodes. maxNodes limits the number of method nodes
// rendered (0 = all).
func CallgraphDOT(funcs []disasm.FuncRecord, edges []disasm.CallEdgeRecord, title string, t Theme, maxNodes int) string {
	type edgeKey struct {
		from, to, prov string
	}
	counts := make(map[edgeKey]int)
	var order []edgeKey
	for _, e := range edges {
		if e.Target == "" {
			continue
		}
		k := edgeKey{e.FromFunc, e.Target, ClassifyEdgeProv(e)}
		if counts[k] == 0 {
			order = append(order, k)
		}
		counts[k]++
	}

	// Methods that take part in at least one edge.
	involved := make(map[string]bool)
	for _, k := range order {
		involved[k.from] = true
		involved[k.to] = true
	}
	var rendered []disasm.FuncRecord
	for _, f := range funcs {
		if involved[f.Name] {
			rendered = append(rendered, f)
		}
	}
	if maxNodes > 0 && len(rendered) > maxNodes {
		rendered = rendered[:maxNodes]
	}
	funcSet := make(map[string]bool, len(rendered))
	for _, f := range rendered {
		funcSet[f.Name] = true
	}

	var external []string
	seenExternal := make(map[string]bool)
	for _, k := range order {
		if funcSet[k.from] && !funcSet[k.to] && !seenExternal[k.to] {
			seenExternal[k.to] = true
			external = append(external, k.to)
		}
	}

	byOwner := make(map[string][]disasm.FuncRecord)
	var owners, loose []string
	for _, f := range rendered {
		owner := recordOwner(f)
		if owner == "" {
			loose = append(loose, f.Name)
			continue
		}
		if _, ok := byOwner[owner]; !ok {
			owners = append(owners, owner)
		}
		byOwner[owner] = append(byOwner[owner], f)
	}
	sort.Strings(owners)

	var b strings.Builder
	header(&b, "callgraph", "LR", title, t)
	b.WriteString("  compound=true;\n")
	b.WriteString("  splines=true;\n")
	b.WriteString("  nodesep=0.4;\n")
	b.WriteString("  ranksep=0.6;\n")
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Helvetica Neue,Helvetica,Arial\", fontsize=9, fontcolor=%q, height=0.3, margin=\"0.12,0.06\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	b.WriteString("  edge [penwidth=0.5, arrowsize=0.5, arrowhead=vee];\n")
	b.WriteByte('\n')

	for _, owner := range owners {
		members := byOwner[owner]
		if len(members) < 2 {
			loose = append(loose, members[0].Name)
			continue
		}
		fmt.Fprintf(&b, "  subgraph cluster_%s {\n", dotID(owner))
		fmt.Fprintf(&b, "    label=<<font point-size=\"8\" color=\"%s\">%s</font>>;\n",
			t.ClusterLabel, dotEscape(javaName(owner)))
		fmt.Fprintf(&b, "    style=dotted; color=%q; penwidth=0.3;\n", t.ClusterBorder)
		for _, f := range members {
			fmt.Fprintf(&b, "    %s [label=%q];\n", dotID(f.Name), truncLabel(stripOwner(f.Name), 50))
		}
		b.WriteString("  }\n")
	}
	for _, name := range loose {
		fmt.Fprintf(&b, "  %s [label=%q];\n", dotID(name), truncLabel(name, 60))
	}
	b.WriteByte('\n')

	for _, name := range external {
		fmt.Fprintf(&b, "  %s [label=%q, shape=plaintext, style=\"\", fillcolor=none, fontcolor=%q, fontsize=8];\n",
			dotID(name), truncLabel(name, 50), t.ExternalText)
	}
	b.WriteByte('\n')

	for _, k := range order {
		if !funcSet[k.from] {
			continue
		}
		count := counts[k]
		color := edgeColor(k.prov, t)
		attrs := fmt.Sprintf("color=%q, style=%q", color, edgeStyle(k.prov))
		if count > 1 {
			attrs += fmt.Sprintf(", penwidth=%.1f", 0.5+float64(count)*0.1)
			if count > 2 {
				attrs += fmt.Sprintf(", label=<<font point-size=\"7\" color=\"%s\">%dx</font>>", color, count)
			}
		}
		fmt.Fprintf(&b, "  %s -> %s [%s];\n", dotID(k.from), dotID(k.to), attrs)
	}

	b.WriteString("}\n")
	return b.String()
}

// CallgraphStats computes summary statistics from edges.
type CallgraphStats struct {
	TotalFunctions int
	TotalEdges     int
	InternalEdges  int // both ends in the input
	UniqueOwners   int
	ProvCounts     map[string]int
	TopCallers     []NameCount // sorted desc
	TopCallees     []NameCount // sorted desc
	TopOwners      []NameCount // sorted desc by method count
}

// NameCount pairs a name with a count.
type NameCount struct {
	Name  string
	Count int
}

// ComputeStats computes callgraph statistics from method and edge records.
func ComputeStats(funcs []disasm.FuncRecord, edges []disasm.CallEdgeRecord) CallgraphStats {
	stats := CallgraphStats{
		TotalFunctions: len(funcs),
		TotalEdges:     len(edges),
		ProvCounts:     make(map[string]int),
	}
	known := make(map[string]bool, len(funcs))
	ownerCount := make(map[string]int)
	for _, f := range funcs {
		known[f.Name] = true
		if owner := recordOwner(f); owner != "" {
			ownerCount[owner]++
		}
	}
	stats.UniqueOwners = len(ownerCount)

	callerCount := make(map[string]int)
	calleeCount := make(map[string]int)
	for _, e := range edges {
		stats.ProvCounts[ClassifyEdgeProv(e)]++
		callerCount[e.FromFunc]++
		if e.Target != "" {
			calleeCount[e.Target]++
		}
		if known[e.Target] {
			stats.InternalEdges++
		}
	}

	stats.TopCallers = topNMap(callerCount, 20)
	stats.TopCallees = topNMap(calleeCount, 20)
	stats.TopOwners = topNMap(ownerCount, 30)
	return stats
}

// topNMap returns the top N entries from a map, sorted by count
// descending, then name.
func topNMap(m map[string]int, n int) []NameCount {
	entries := make([]NameCount, 0, len(m))
	for name, count := range m {
		entries = append(entries, NameCount{name, count})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return entries[i].Name < entries[j].Name
	})
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries
}
