package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"dexkit/internal/disasm"
	"dexkit/internal/opcode"
)

// ListingOptions controls Listing output.
type ListingOptions struct {
	Labels   disasm.LabelLookup
	Annotate disasm.Annotator
	// Dead reports unreachable instructions by index.
	Dead func(index int) bool
}

var (
	addrColor  = color.New(color.Faint).SprintFunc()
	labelColor = color.New(color.FgGreen, color.Bold).SprintFunc()
	callColor  = color.New(color.FgCyan).SprintFunc()
	jumpColor  = color.New(color.FgYellow).SprintFunc()
	exitColor  = color.New(color.FgMagenta).SprintFunc()
	dataColor  = color.New(color.FgBlue).SprintFunc()
	deadColor  = color.New(color.FgRed).SprintFunc()
	noteColor  = color.New(color.FgHiBlack).SprintFunc()
)

// Listing writes a terminal disassembly of insts. Mnemonics are colored by
// what they do to control flow. Set color.NoColor to get plain text.
func Listing(w io.Writer, insts []disasm.Inst, opts ListingOptions) error {
	width := 0
	for _, inst := range insts {
		width = max(width, len(inst.Mnemonic))
	}
	for _, inst := range insts {
		if opts.Labels != nil {
			if name, ok := opts.Labels(inst.Addr); ok {
				if _, err := fmt.Fprintf(w, "%s\n", labelColor(":"+name)); err != nil {
					return err
				}
			}
		}
		mnemonic := fmt.Sprintf("%-*s", width, inst.Mnemonic)
		dead := opts.Dead != nil && opts.Dead(inst.Index)
		if dead {
			mnemonic = deadColor(mnemonic)
		} else {
			mnemonic = colorMnemonic(inst.Op, mnemonic)
		}
		line := addrColor(fmt.Sprintf("%04x", inst.Addr)) + "  " + mnemonic
		if inst.Operands != "" {
			line += " " + inst.Operands
		}
		var notes []string
		if dead {
			notes = append(notes, "dead")
		}
		if opts.Annotate != nil {
			if s := opts.Annotate(inst); s != "" {
				notes = append(notes, s)
			}
		}
		if len(notes) > 0 {
			line += "  " + noteColor("; "+strings.Join(notes, "; "))
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func colorMnemonic(op opcode.Opcode, s string) string {
	info, err := opcode.Lookup(op)
	if err != nil {
		return s
	}
	switch info.Kind {
	case opcode.KindInvoke:
		return callColor(s)
	case opcode.KindGoto, opcode.KindIf, opcode.KindIfZ, opcode.KindSwitch:
		return jumpColor(s)
	case opcode.KindReturn, opcode.KindThrow:
		return exitColor(s)
	case opcode.KindPayload:
		return dataColor(s)
	default:
		return s
	}
}
