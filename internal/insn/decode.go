package insn

import (
	"errors"
	"fmt"

	"dexkit/internal/dexfmt"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// Decode reads one instruction at the stream's position. References are
// resolved through r; a nil resolver yields ref.Index placeholders.
func Decode(s *dexfmt.Stream, r ref.Resolver) (Instruction, error) {
	start := s.CodeUnit()
	unit0, err := s.ReadUint16()
	if err != nil {
		return nil, &FormatError{Offset: start, Err: ErrTruncated}
	}
	op, err := opcode.FromUnit(unit0)
	if err != nil {
		return nil, &FormatError{Offset: start, Op: op, Err: err}
	}
	info := opcode.MustLookup(op)

	d := decoder{s: s, r: r, op: op, unit0: unit0}
	i := d.decode(info)
	if d.err != nil {
		return nil, &FormatError{Offset: start, Op: op, Err: d.err}
	}

	// The table is the source of truth for fixed sizes.
	if want := info.Format.CodeUnits(); want > 0 {
		if got := s.CodeUnit() - start; got != want || i.CodeUnits() != want || Format(i) != info.Format {
			return nil, &FormatError{Offset: start, Op: op,
				Err: fmt.Errorf("%w: %v read %d units as %v, table says %d as %v", ErrFormatMismatch, op, got, Format(i), want, info.Format)}
		}
	}
	return i, nil
}

// DecodeAll decodes a method's whole instruction array. In best-effort mode
// unknown opcodes become Unknown units and a diagnostic is recorded; every
// other error is returned with the instructions decoded so far.
func DecodeAll(code []byte, r ref.Resolver, opts dexfmt.Options) ([]Decoded, error) {
	if err := dexfmt.CheckCodeLength(code); err != nil {
		return nil, fmt.Errorf("insn: %w", err)
	}
	if opts.MaxBytes > 0 && len(code) > opts.MaxBytes {
		return nil, fmt.Errorf("insn: code is %d bytes, cap is %d", len(code), opts.MaxBytes)
	}

	s := dexfmt.NewStream(code)
	maxSteps := opts.EffectiveMaxSteps()
	out := make([]Decoded, 0, len(code)/4)
	for steps := 0; s.Remaining() > 0; steps++ {
		if steps >= maxSteps {
			return out, fmt.Errorf("insn: step cap %d reached at 0x%04x", maxSteps, s.CodeUnit())
		}
		off := s.CodeUnit()
		i, err := Decode(s, r)
		if err != nil {
			if opts.Mode == dexfmt.ModeBestEffort && errors.Is(err, opcode.ErrUnsupportedOpcode) {
				s.SetPosition(off * 2)
				unit, _ := s.ReadUint16()
				opts.Note(uint64(off*2), dexfmt.DiagUnknownOp, "opcode unit 0x%04x", unit)
				out = append(out, Decoded{Offset: off, Insn: Unknown{Unit: unit}})
				continue
			}
			return out, err
		}
		if Format(i).IsPayload() && off%2 != 0 {
			if opts.Mode != dexfmt.ModeBestEffort {
				return out, &FormatError{Offset: off, Op: i.Opcode(), Err: ErrMisaligned}
			}
			opts.Note(uint64(off*2), dexfmt.DiagMisaligned, "%v at odd code unit", i.Opcode())
		}
		out = append(out, Decoded{Offset: off, Insn: i})
	}
	return out, nil
}

type decoder struct {
	s     *dexfmt.Stream
	r     ref.Resolver
	op    opcode.Opcode
	unit0 uint16
	err   error
}

func (d *decoder) u16() uint16 {
	if d.err != nil {
		return 0
	}
	v, err := d.s.ReadUint16()
	if err != nil {
		d.err = ErrTruncated
	}
	return v
}

func (d *decoder) u32() uint32 {
	lo := uint32(d.u16())
	hi := uint32(d.u16())
	return lo | hi<<16
}

func (d *decoder) ref(kind opcode.ReferenceKind, idx uint32) ref.Reference {
	if d.err != nil {
		return nil
	}
	if d.r == nil {
		return ref.Index{RefKind: kind, Value: idx}
	}
	r, err := d.r.Resolve(kind, idx)
	if err != nil {
		d.err = err
		return nil
	}
	return r
}

func (d *decoder) fail(err error) {
	if d.err == nil {
		d.err = err
	}
}

// need checks that n more bytes are available for a payload body.
func (d *decoder) need(n int64) bool {
	if d.err != nil {
		return false
	}
	if n > int64(d.s.Remaining()) {
		d.err = fmt.Errorf("%w: need %d bytes, have %d", ErrPayloadCount, n, d.s.Remaining())
		return false
	}
	return true
}

func (d *decoder) decode(info opcode.Info) Instruction {
	op := d.op
	hi := uint8(d.unit0 >> 8)
	aa := int(hi)
	nibA := int(hi & 0xf)
	nibB := int(hi >> 4)

	switch info.Format {
	case opcode.Format10x:
		return Insn10x{Op: op}
	case opcode.Format10t:
		return Insn10t{Op: op, Offset: int32(int8(hi))}
	case opcode.Format11n:
		return Insn11n{Op: op, A: nibA, Literal: int64(int8(hi) >> 4)}
	case opcode.Format11x:
		return Insn11x{Op: op, A: aa}
	case opcode.Format12x:
		return Insn12x{Op: op, A: nibA, B: nibB}
	case opcode.Format20t:
		return Insn20t{Op: op, Offset: int32(int16(d.u16()))}
	case opcode.Format21c:
		idx := d.u16()
		return Insn21c{Op: op, A: aa, Ref: d.ref(info.Ref, uint32(idx))}
	case opcode.Format21ih:
		return Insn21ih{Op: op, A: aa, Literal: int64(int32(uint32(d.u16()) << 16))}
	case opcode.Format21lh:
		return Insn21lh{Op: op, A: aa, Literal: int64(uint64(d.u16()) << 48)}
	case opcode.Format21s:
		return Insn21s{Op: op, A: aa, Literal: int64(int16(d.u16()))}
	case opcode.Format21t:
		return Insn21t{Op: op, A: aa, Offset: int32(int16(d.u16()))}
	case opcode.Format22b:
		u := d.u16()
		return Insn22b{Op: op, A: aa, B: int(u & 0xff), Literal: int64(int8(u >> 8))}
	case opcode.Format22c:
		idx := d.u16()
		return Insn22c{Op: op, A: nibA, B: nibB, Ref: d.ref(info.Ref, uint32(idx))}
	case opcode.Format22s:
		return Insn22s{Op: op, A: nibA, B: nibB, Literal: int64(int16(d.u16()))}
	case opcode.Format22t:
		return Insn22t{Op: op, A: nibA, B: nibB, Offset: int32(int16(d.u16()))}
	case opcode.Format22x:
		return Insn22x{Op: op, A: aa, B: int(d.u16())}
	case opcode.Format23x:
		u := d.u16()
		return Insn23x{Op: op, A: aa, B: int(u & 0xff), C: int(u >> 8)}
	case opcode.Format30t:
		return Insn30t{Op: op, Offset: int32(d.u32())}
	case opcode.Format31c:
		idx := d.u32()
		return Insn31c{Op: op, A: aa, Ref: d.ref(info.Ref, idx)}
	case opcode.Format31i:
		return Insn31i{Op: op, A: aa, Literal: int64(int32(d.u32()))}
	case opcode.Format31t:
		return Insn31t{Op: op, A: aa, Offset: int32(d.u32())}
	case opcode.Format32x:
		a := d.u16()
		b := d.u16()
		return Insn32x{Op: op, A: int(a), B: int(b)}
	case opcode.Format35c:
		idx := d.u16()
		regs := d.fiveRegisters(nibB, nibA)
		return Insn35c{Op: op, Registers: regs, Ref: d.ref(info.Ref, uint32(idx))}
	case opcode.Format3rc:
		idx := d.u16()
		start := d.u16()
		return Insn3rc{Op: op, Start: int(start), Count: aa, Ref: d.ref(info.Ref, uint32(idx))}
	case opcode.Format45cc:
		idx := d.u16()
		regs := d.fiveRegisters(nibB, nibA)
		proto := d.u16()
		return Insn45cc{Op: op, Registers: regs, Ref: d.ref(info.Ref, uint32(idx)),
			Proto: d.ref(opcode.RefMethodProto, uint32(proto))}
	case opcode.Format4rcc:
		idx := d.u16()
		start := d.u16()
		proto := d.u16()
		return Insn4rcc{Op: op, Start: int(start), Count: aa, Ref: d.ref(info.Ref, uint32(idx)),
			Proto: d.ref(opcode.RefMethodProto, uint32(proto))}
	case opcode.Format51l:
		lo := uint64(d.u32())
		hi := uint64(d.u32())
		return Insn51l{Op: op, A: aa, Literal: int64(lo | hi<<32)}
	case opcode.FormatPackedSwitchPayload:
		return d.packedSwitch()
	case opcode.FormatSparseSwitchPayload:
		return d.sparseSwitch()
	case opcode.FormatArrayPayload:
		return d.arrayPayload()
	}
	d.fail(fmt.Errorf("%w: no decoder for format %v", ErrFormatMismatch, info.Format))
	return Insn10x{Op: op}
}

// fiveRegisters unpacks the 35c register list: count in the high nibble of
// the first unit, G in its low nibble, C..F in the third unit.
func (d *decoder) fiveRegisters(count, g int) []int {
	packed := d.u16()
	if count > 5 {
		d.fail(fmt.Errorf("%w: %d registers in a 35c list", ErrFormatMismatch, count))
		return nil
	}
	all := [5]int{int(packed & 0xf), int(packed >> 4 & 0xf), int(packed >> 8 & 0xf), int(packed >> 12), g}
	regs := make([]int, count)
	copy(regs, all[:count])
	return regs
}

func (d *decoder) packedSwitch() Instruction {
	size := int(d.u16())
	first := int32(d.u32())
	if !d.need(int64(size) * 4) {
		return PackedSwitchPayload{}
	}
	p := PackedSwitchPayload{FirstKey: first, Targets: make([]int32, size)}
	for i := range p.Targets {
		p.Targets[i] = int32(d.u32())
	}
	return p
}

func (d *decoder) sparseSwitch() Instruction {
	size := int(d.u16())
	if !d.need(int64(size) * 8) {
		return SparseSwitchPayload{}
	}
	p := SparseSwitchPayload{Keys: make([]int32, size), Targets: make([]int32, size)}
	for i := range p.Keys {
		p.Keys[i] = int32(d.u32())
	}
	for i := range p.Targets {
		p.Targets[i] = int32(d.u32())
	}
	return p
}

func (d *decoder) arrayPayload() Instruction {
	width := int(d.u16())
	size := int64(d.u32())
	if d.err != nil {
		return ArrayPayload{}
	}
	switch width {
	case 1, 2, 4, 8:
	default:
		d.fail(fmt.Errorf("%w: array element width %d", ErrFormatMismatch, width))
		return ArrayPayload{}
	}
	total := size * int64(width)
	if !d.need(total + total%2) {
		return ArrayPayload{}
	}
	p := ArrayPayload{ElementWidth: width, Elements: make([]int64, size)}
	for i := range p.Elements {
		raw, err := d.s.ReadBytes(width)
		if err != nil {
			d.fail(ErrTruncated)
			return ArrayPayload{}
		}
		p.Elements[i] = signExtend(raw)
	}
	if total%2 != 0 {
		d.s.Skip(1)
	}
	return p
}

// signExtend reads a little-endian two's complement value of len(b) bytes.
func signExtend(b []byte) int64 {
	var v uint64
	for i := len(b) - 1; i >= 0; i-- {
		v = v<<8 | uint64(b[i])
	}
	shift := uint(64 - 8*len(b))
	return int64(v<<shift) >> shift
}
