package render

import (
	"fmt"
	"strings"

	"dexkit/internal/disasm"
)

// CFGOptions adds per-instruction detail to CFGDOT.
type CFGOptions struct {
	// Annotate appends a comment to instruction lines, e.g. register types.
	Annotate disasm.Annotator
	// Dead reports unreachable instructions by index; a block whose
	// instructions are all dead is filled with Theme.DeadFill.
	Dead func(index int) bool
	// MaxLines truncates long blocks; 0 = 12.
	MaxLines int
}

// CFGDOT renders a per-method basic-block CFG as DOT.
// Each basic block is a node; edges represent control flow.
// Entry block is highlighted. Edge colors follow the successor kind.
func CFGDOT(cfg disasm.FuncCFG, t Theme, opts CFGOptions) string {
	if len(cfg.Blocks) == 0 {
		return ""
	}
	maxLines := opts.MaxLines
	if maxLines <= 0 {
		maxLines = 12
	}

	var b strings.Builder
	header(&b, "cfg", "TB", cfg.Name, t)
	b.WriteString("  nodesep=0.3;\n")
	b.WriteString("  ranksep=0.4;\n")
	fmt.Fprintf(&b, "  node [shape=rect, style=filled, fillcolor=%q, color=%q, penwidth=0.5, fontname=\"Courier,monospace\", fontsize=8, fontcolor=%q, margin=\"0.08,0.04\"];\n",
		t.NodeFill, t.NodeBorder, t.TextColor)
	b.WriteString("  edge [penwidth=0.7, arrowsize=0.5, arrowhead=vee];\n")
	b.WriteByte('\n')

	for _, blk := range cfg.Blocks {
		var lines []string
		dead := opts.Dead != nil
		for i := blk.Start; i < min(blk.End, len(cfg.Insts)); i++ {
			inst := cfg.Insts[i]
			line := fmt.Sprintf("%04x: %s", inst.Addr, inst.Text)
			if opts.Annotate != nil {
				if s := opts.Annotate(inst); s != "" {
					line += "  ; " + s
				}
			}
			lines = append(lines, dotEscape(line))
			if opts.Dead != nil && !opts.Dead(i) {
				dead = false
			}
		}
		if len(lines) > maxLines {
			half := (maxLines - 1) / 2
			kept := append(lines[:half:half], fmt.Sprintf("... (%d more)", len(lines)-2*half))
			lines = append(kept, lines[len(lines)-half:]...)
		}
		label := strings.Join(lines, "<br align=\"left\"/>") + "<br align=\"left\"/>"

		attrs := ""
		if blk.IsEntry {
			attrs = fmt.Sprintf(", penwidth=1.5, color=%q", t.EntryBorder)
		}
		switch {
		case blk.IsData:
			attrs += fmt.Sprintf(", fillcolor=%q, style=\"filled,dashed\"", t.DataFill)
		case dead:
			attrs += fmt.Sprintf(", fillcolor=%q", t.DeadFill)
		case blk.IsTerm:
			attrs += fmt.Sprintf(", fillcolor=%q", t.TermFill)
		}
		fmt.Fprintf(&b, "  bb%d [label=<%s>%s];\n", blk.ID, label, attrs)
	}
	b.WriteByte('\n')

	for _, blk := range cfg.Blocks {
		for _, s := range blk.Succs {
			color, style := t.NodeBorder, "solid"
			switch s.Cond {
			case "T":
				color = t.EdgeTaken
			case "F":
				color = t.EdgeFall
			case "S":
				color = t.EdgeSwitch
			case "E":
				color, style = t.EdgeException, "dashed"
			}
			attrs := fmt.Sprintf("color=%q, style=%s", color, style)
			if s.Cond != "" {
				attrs += fmt.Sprintf(", label=<<font point-size=\"7\" color=\"%s\">%s</font>>", color, s.Cond)
			}
			fmt.Fprintf(&b, "  bb%d -> bb%d [%s];\n", blk.ID, s.BlockID, attrs)
		}
	}

	b.WriteString("}\n")
	return b.String()
}
