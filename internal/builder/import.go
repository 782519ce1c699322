package builder

import (
	"fmt"

	"dexkit/internal/dexfmt"
	"dexkit/internal/insn"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// FromCode decodes a code array and copies it into a new method.
func FromCode(registers int, code []byte, r ref.Resolver, opts dexfmt.Options) (*MethodImplementation, error) {
	seq, err := insn.DecodeAll(code, r, opts)
	if err != nil {
		return nil, err
	}
	return FromDecoded(registers, seq)
}

// FromDecoded copies a decoded sequence into a new method. Relative offsets
// become labels and payload alignment nops are dropped, since Encode puts
// them back. The new method keeps the decoded addresses as its resolved
// layout, so LabelAt and ApplyDebugEvents work on it directly.
func FromDecoded(registers int, seq []insn.Decoded) (*MethodImplementation, error) {
	m := NewMethodImplementation(registers)
	if len(seq) == 0 {
		m.resolved = true
		return m, nil
	}

	// Locations first, so every branch has something to bind to.
	byOffset := make(map[int]int, len(seq)+1)
	kept := make([]insn.Decoded, 0, len(seq))
	for n, d := range seq {
		if n+1 < len(seq) && isAlignmentNop(d, seq[n+1]) {
			continue
		}
		kept = append(kept, d)
	}
	m.order = m.order[:0]
	m.locs = m.locs[:0]
	for n, d := range kept {
		h := m.newLocation()
		m.locs[h].state = StateOccupied
		m.locs[h].address = d.Offset
		m.locs[h].index = n
		m.order = append(m.order, h)
		byOffset[d.Offset] = h
	}
	last := seq[len(seq)-1]
	end := m.newLocation()
	m.locs[end].address = last.Offset + last.Insn.CodeUnits()
	m.locs[end].index = len(m.order)
	m.order = append(m.order, end)
	byOffset[m.locs[end].address] = end
	for n, d := range seq {
		if n+1 < len(seq) && isAlignmentNop(d, seq[n+1]) {
			byOffset[d.Offset] = byOffset[seq[n+1].Offset]
		}
	}

	labels := make(map[int]Label)
	labelAt := func(from, target int) (Label, error) {
		if l, ok := labels[target]; ok {
			return l, nil
		}
		h, ok := byOffset[target]
		if !ok {
			return Label{}, fmt.Errorf("builder: branch at 0x%04x to 0x%04x is not an instruction boundary", from, target)
		}
		l := m.newLabel(h)
		labels[target] = l
		return l, nil
	}

	switchOf := make(map[int]int)
	for _, d := range kept {
		if op := d.Insn.Opcode(); op == opcode.PackedSwitch || op == opcode.SparseSwitch {
			off, _ := insn.BranchOffset(d.Insn)
			if _, ok := switchOf[d.Offset+int(off)]; !ok {
				switchOf[d.Offset+int(off)] = d.Offset
			}
		}
	}

	for n, d := range kept {
		i, err := fromInsn(d, switchOf, labelAt)
		if err != nil {
			return nil, err
		}
		m.locs[m.order[n]].insn = i
	}
	m.codeUnits = m.locs[end].address
	m.resolved = true
	return m, nil
}

// isAlignmentNop reports whether d is the padding unit in front of a
// payload.
func isAlignmentNop(d, next insn.Decoded) bool {
	_, nop := d.Insn.(insn.Insn10x)
	return nop && d.Insn.Opcode() == opcode.Nop && d.Offset%2 != 0 &&
		next.Offset == d.Offset+1 && insn.Format(next.Insn).IsPayload()
}

func fromInsn(d insn.Decoded, switchOf map[int]int, labelAt func(from, target int) (Label, error)) (*Instruction, error) {
	x := d.Insn
	if _, ok := x.(insn.Unknown); ok {
		return nil, fmt.Errorf("%w: opaque unit at 0x%04x", ErrUnbuildable, d.Offset)
	}
	i := &Instruction{
		Op:        x.Opcode(),
		Registers: insn.Registers(x),
		Ref:       insn.Reference(x),
		Proto:     insn.SecondReference(x),
	}
	i.Literal, _ = insn.Literal(x)
	if off, ok := insn.BranchOffset(x); ok {
		l, err := labelAt(d.Offset, d.Offset+int(off))
		if err != nil {
			return nil, err
		}
		i.Target = l
	}

	switch p := x.(type) {
	case insn.PackedSwitchPayload:
		i.FirstKey = p.FirstKey
		return i, switchTargets(i, d.Offset, p.Targets, switchOf, labelAt)
	case insn.SparseSwitchPayload:
		i.Keys = append([]int32(nil), p.Keys...)
		return i, switchTargets(i, d.Offset, p.Targets, switchOf, labelAt)
	case insn.ArrayPayload:
		i.ElementWidth = p.ElementWidth
		i.Elements = append([]int64(nil), p.Elements...)
	}
	return i, nil
}

func switchTargets(i *Instruction, at int, rel []int32, switchOf map[int]int, labelAt func(from, target int) (Label, error)) error {
	base, ok := switchOf[at]
	if !ok {
		return fmt.Errorf("builder: %v at 0x%04x has no switch", i.Op, at)
	}
	i.Targets = make([]Label, len(rel))
	for n, t := range rel {
		l, err := labelAt(base, base+int(t))
		if err != nil {
			return err
		}
		i.Targets[n] = l
	}
	return nil
}
