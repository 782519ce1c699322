// Package disasm renders dex method bodies as text listings and splits them
// into basic blocks for graphing.
package disasm

import (
	"fmt"
	"strings"

	"dexkit/internal/builder"
	"dexkit/internal/dexfmt"
	"dexkit/internal/insn"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// Inst is one listed instruction. Addr is in code units. Units holds the
// raw encoding when the listing was produced from bytes.
type Inst struct {
	Index    int
	Addr     int
	Units    []uint16
	Op       opcode.Opcode
	Mnemonic string
	Operands string
	Text     string // full disassembly line
}

// LabelLookup names a code-unit address. Returns ("", false) if unknown.
type LabelLookup func(addr int) (name string, ok bool)

// Options controls disassembly behavior.
type Options struct {
	MaxSteps int          // maximum instructions to decode; 0 = dexfmt default
	Resolver ref.Resolver // optional pool; nil leaves operands as indices
	Mode     dexfmt.Mode
	Diags    *dexfmt.Diags
}

// Disassemble decodes a code array. Branch operands are printed as absolute
// addresses. On a decode error the instructions read so far are returned
// with the error.
func Disassemble(code []byte, opts Options) ([]Inst, error) {
	seq, err := insn.DecodeAll(code, opts.Resolver, dexfmt.Options{
		Mode:     opts.Mode,
		MaxSteps: opts.MaxSteps,
		Diags:    opts.Diags,
	})
	result := make([]Inst, 0, len(seq))
	for n, d := range seq {
		mnemonic, operands := describe(d.Insn, d.Offset)
		inst := Inst{
			Index:    n,
			Addr:     d.Offset,
			Op:       d.Insn.Opcode(),
			Mnemonic: mnemonic,
			Operands: operands,
			Text:     join(mnemonic, operands),
		}
		lo, hi := d.Offset*2, (d.Offset+d.Insn.CodeUnits())*2
		if hi <= len(code) {
			inst.Units = make([]uint16, 0, hi/2-lo/2)
			for off := lo; off < hi; off += 2 {
				inst.Units = append(inst.Units, uint16(code[off])|uint16(code[off+1])<<8)
			}
		}
		result = append(result, inst)
	}
	return result, err
}

// FromMethod lists a builder method. Branch operands are printed as labels,
// which MethodLabels can name. The method is resolved first if needed.
func FromMethod(m *builder.MethodImplementation) ([]Inst, error) {
	if !m.Resolved() {
		if _, err := m.Resolve(nil, builder.ResolveOptions{}); err != nil {
			return nil, err
		}
	}
	locs := m.Instructions()
	result := make([]Inst, 0, len(locs))
	for n, loc := range locs {
		ins := loc.Instruction()
		addr, _ := loc.Address()
		text := ins.String()
		mnemonic, operands, _ := strings.Cut(text, " ")
		result = append(result, Inst{
			Index:    n,
			Addr:     addr,
			Op:       ins.Op,
			Mnemonic: mnemonic,
			Operands: operands,
			Text:     text,
		})
	}
	return result, nil
}

// MethodLabels names every labeled address of m with the label's text.
func MethodLabels(m *builder.MethodImplementation) LabelLookup {
	names := make(map[int]string)
	for _, loc := range append(m.Instructions(), m.End()) {
		addr, ok := loc.Address()
		if !ok {
			continue
		}
		for _, l := range loc.Labels() {
			if _, seen := names[addr]; !seen {
				names[addr] = strings.TrimPrefix(l.String(), ":")
			}
		}
	}
	return func(addr int) (string, bool) {
		name, ok := names[addr]
		return name, ok
	}
}

func join(mnemonic, operands string) string {
	if operands == "" {
		return mnemonic
	}
	return mnemonic + " " + operands
}

// describe splits a decoded instruction into mnemonic and operand text.
func describe(i insn.Instruction, addr int) (string, string) {
	var ops []string
	switch p := i.(type) {
	case insn.Unknown:
		return ".unit", fmt.Sprintf("0x%04x", p.Unit)
	case insn.PackedSwitchPayload:
		ops = append(ops, fmt.Sprintf("first-key %d", p.FirstKey))
		for _, t := range p.Targets {
			ops = append(ops, fmt.Sprintf("%+d", t))
		}
		return i.Opcode().String(), strings.Join(ops, ", ")
	case insn.SparseSwitchPayload:
		for n, t := range p.Targets {
			ops = append(ops, fmt.Sprintf("%d->%+d", p.Keys[n], t))
		}
		return i.Opcode().String(), strings.Join(ops, ", ")
	case insn.ArrayPayload:
		return i.Opcode().String(), fmt.Sprintf("width %d, %d elements", p.ElementWidth, len(p.Elements))
	}

	regs := insn.Registers(i)
	if f := insn.Format(i); f == opcode.Format3rc || f == opcode.Format4rcc {
		if len(regs) > 0 {
			ops = append(ops, fmt.Sprintf("{v%d .. v%d}", regs[0], regs[len(regs)-1]))
		} else {
			ops = append(ops, "{}")
		}
	} else {
		for _, r := range regs {
			ops = append(ops, fmt.Sprintf("v%d", r))
		}
	}
	if v, ok := insn.Literal(i); ok {
		ops = append(ops, fmt.Sprintf("#%d", v))
	}
	if r := insn.Reference(i); r != nil {
		ops = append(ops, r.String())
	}
	if r := insn.SecondReference(i); r != nil {
		ops = append(ops, r.String())
	}
	if off, ok := insn.BranchOffset(i); ok {
		ops = append(ops, fmt.Sprintf("0x%04x", addr+int(off)))
	}
	return i.Opcode().String(), strings.Join(ops, ", ")
}

// Format renders a slice of instructions as stable text output.
// Each line: <addr>  <hex units>  <disasm>  ; <comments>
// A labeled address gets its own "name:" line. Annotators are checked in
// order; first non-empty result is used.
func Format(insts []Inst, lookup LabelLookup, annotators ...Annotator) string {
	width := 0
	for _, inst := range insts {
		width = max(width, min(len(inst.Units), 3))
	}
	var b strings.Builder
	for _, inst := range insts {
		if lookup != nil {
			if name, ok := lookup(inst.Addr); ok {
				fmt.Fprintf(&b, "%s:\n", name)
			}
		}
		fmt.Fprintf(&b, "0x%04x  ", inst.Addr)
		if width > 0 {
			b.WriteString(hexUnits(inst.Units, width))
			b.WriteString("  ")
		}
		b.WriteString(inst.Text)
		for _, ann := range annotators {
			if s := ann(inst); s != "" {
				fmt.Fprintf(&b, "  ; %s", s)
				break
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// hexUnits prints up to width units, eliding the tail of longer ones.
func hexUnits(units []uint16, width int) string {
	parts := make([]string, width)
	for n := range parts {
		switch {
		case n < len(units) && (n < width-1 || len(units) <= width):
			parts[n] = fmt.Sprintf("%04x", units[n])
		case n < len(units):
			parts[n] = "...."
		default:
			parts[n] = "    "
		}
	}
	return strings.Join(parts, " ")
}
