package insn

import (
	"fmt"

	"dexkit/internal/dexfmt"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// Writer appends encoded instructions to a growing code buffer. A payload
// written at an odd code unit is preceded by a one-unit nop so that it
// starts on a 4-byte boundary; callers that track addresses themselves
// should account for that unit.
type Writer struct {
	out *dexfmt.Writer
	in  ref.Interner
}

// NewWriter returns a Writer that assigns pool indices through in. A nil
// interner is fine as long as every reference is a ref.Index.
func NewWriter(in ref.Interner, sizeHint int) *Writer {
	return &Writer{out: dexfmt.NewWriter(sizeHint), in: in}
}

// CodeUnits is the number of units written so far.
func (w *Writer) CodeUnits() int { return w.out.CodeUnits() }

// Bytes returns the encoded code array.
func (w *Writer) Bytes() []byte { return w.out.Bytes() }

// NeedsPadding reports whether i would be preceded by an alignment nop if
// written now.
func (w *Writer) NeedsPadding(i Instruction) bool {
	return Format(i).IsPayload() && w.out.CodeUnits()%2 != 0
}

// Write encodes i. Nothing is written when an operand does not fit.
func (w *Writer) Write(i Instruction) error {
	units, err := encode(i, w.in)
	if err != nil {
		return err
	}
	if w.NeedsPadding(i) {
		w.out.WriteUint16(uint16(opcode.Nop))
	}
	for _, u := range units {
		w.out.WriteUint16(u)
	}
	return nil
}

// Encode writes a whole instruction sequence.
func Encode(seq []Instruction, in ref.Interner) ([]byte, error) {
	w := NewWriter(in, len(seq)*2)
	for n, i := range seq {
		if err := w.Write(i); err != nil {
			return nil, fmt.Errorf("insn: instruction %d: %w", n, err)
		}
	}
	return w.Bytes(), nil
}

// EncodeOne returns the code units of a single instruction.
func EncodeOne(i Instruction, in ref.Interner) ([]uint16, error) {
	return encode(i, in)
}

type encoder struct {
	op  opcode.Opcode
	in  ref.Interner
	err error
}

func (e *encoder) fail(operand string, v int64, detail string) {
	if e.err == nil {
		e.err = &PreconditionError{Op: e.op, Operand: operand, Value: v, Detail: detail}
	}
}

// reg checks an unsigned register or count field of the given width.
func (e *encoder) reg(name string, v, bits int) uint16 {
	if v < 0 || v >= 1<<bits {
		e.fail(name, int64(v), fmt.Sprintf("does not fit in %d bits", bits))
		return 0
	}
	return uint16(v)
}

// signed checks a two's complement field and returns its raw bits.
func (e *encoder) signed(name string, v int64, bits int) uint64 {
	if bits < 64 {
		lo, hi := int64(-1)<<(bits-1), int64(1)<<(bits-1)-1
		if v < lo || v > hi {
			e.fail(name, v, fmt.Sprintf("outside signed %d-bit range", bits))
			return 0
		}
		return uint64(v) & (1<<bits - 1)
	}
	return uint64(v)
}

func (e *encoder) index(name string, r ref.Reference, kind opcode.ReferenceKind, bits int) uint32 {
	if e.err != nil {
		return 0
	}
	if r == nil {
		e.fail(name, 0, "missing reference")
		return 0
	}
	if r.Kind() != kind {
		e.err = fmt.Errorf("insn: %v %s: %w: have %v, want %v", e.op, name, ref.ErrKindMismatch, r.Kind(), kind)
		return 0
	}
	var idx uint32
	if raw, ok := r.(ref.Index); ok {
		idx = raw.Value
	} else {
		if e.in == nil {
			e.err = fmt.Errorf("insn: %v %s: no interner for %v", e.op, name, r)
			return 0
		}
		v, err := e.in.Intern(r)
		if err != nil {
			e.err = fmt.Errorf("insn: %v %s: %w", e.op, name, err)
			return 0
		}
		idx = v
	}
	if bits < 32 && idx >= 1<<bits {
		e.fail(name, int64(idx), fmt.Sprintf("index does not fit in %d bits", bits))
		return 0
	}
	return idx
}

func encode(i Instruction, in ref.Interner) ([]uint16, error) {
	op := i.Opcode()
	if _, ok := i.(Unknown); !ok {
		info, err := opcode.Lookup(op)
		if err != nil {
			return nil, err
		}
		if info.Format != Format(i) {
			return nil, fmt.Errorf("%w: %v is %v, not %v", ErrFormatMismatch, op, info.Format, Format(i))
		}
	}
	e := &encoder{op: op, in: in}
	b := uint16(op) & 0xff
	var units []uint16

	switch i := i.(type) {
	case Insn10x:
		units = []uint16{b}
	case Insn10t:
		units = []uint16{b | uint16(e.signed("offset", int64(i.Offset), 8))<<8}
	case Insn11n:
		a := e.reg("A", i.A, 4)
		units = []uint16{b | a<<8 | uint16(e.signed("literal", i.Literal, 4))<<12}
	case Insn11x:
		units = []uint16{b | e.reg("A", i.A, 8)<<8}
	case Insn12x:
		units = []uint16{b | e.reg("A", i.A, 4)<<8 | e.reg("B", i.B, 4)<<12}
	case Insn20t:
		units = []uint16{b, uint16(e.signed("offset", int64(i.Offset), 16))}
	case Insn21c:
		a := e.reg("A", i.A, 8)
		units = []uint16{b | a<<8, uint16(e.index("ref", i.Ref, opcode.MustLookup(op).Ref, 16))}
	case Insn21ih:
		if i.Literal&0xffff != 0 {
			e.fail("literal", i.Literal, "has nonzero low 16 bits")
		}
		hi := e.signed("literal", i.Literal, 32) >> 16
		units = []uint16{b | e.reg("A", i.A, 8)<<8, uint16(hi)}
	case Insn21lh:
		if i.Literal&(1<<48-1) != 0 {
			e.fail("literal", i.Literal, "has nonzero low 48 bits")
		}
		units = []uint16{b | e.reg("A", i.A, 8)<<8, uint16(uint64(i.Literal) >> 48)}
	case Insn21s:
		a := e.reg("A", i.A, 8)
		units = []uint16{b | a<<8, uint16(e.signed("literal", i.Literal, 16))}
	case Insn21t:
		a := e.reg("A", i.A, 8)
		units = []uint16{b | a<<8, uint16(e.signed("offset", int64(i.Offset), 16))}
	case Insn22b:
		a := e.reg("A", i.A, 8)
		bb := e.reg("B", i.B, 8)
		units = []uint16{b | a<<8, bb | uint16(e.signed("literal", i.Literal, 8))<<8}
	case Insn22c:
		first := b | e.reg("A", i.A, 4)<<8 | e.reg("B", i.B, 4)<<12
		units = []uint16{first, uint16(e.index("ref", i.Ref, opcode.MustLookup(op).Ref, 16))}
	case Insn22s:
		first := b | e.reg("A", i.A, 4)<<8 | e.reg("B", i.B, 4)<<12
		units = []uint16{first, uint16(e.signed("literal", i.Literal, 16))}
	case Insn22t:
		first := b | e.reg("A", i.A, 4)<<8 | e.reg("B", i.B, 4)<<12
		units = []uint16{first, uint16(e.signed("offset", int64(i.Offset), 16))}
	case Insn22x:
		units = []uint16{b | e.reg("A", i.A, 8)<<8, e.reg("B", i.B, 16)}
	case Insn23x:
		units = []uint16{b | e.reg("A", i.A, 8)<<8, e.reg("B", i.B, 8) | e.reg("C", i.C, 8)<<8}
	case Insn30t:
		v := uint32(i.Offset)
		units = []uint16{b, uint16(v), uint16(v >> 16)}
	case Insn31c:
		a := e.reg("A", i.A, 8)
		v := e.index("ref", i.Ref, opcode.MustLookup(op).Ref, 32)
		units = []uint16{b | a<<8, uint16(v), uint16(v >> 16)}
	case Insn31i:
		a := e.reg("A", i.A, 8)
		v := uint32(e.signed("literal", i.Literal, 32))
		units = []uint16{b | a<<8, uint16(v), uint16(v >> 16)}
	case Insn31t:
		v := uint32(i.Offset)
		units = []uint16{b | e.reg("A", i.A, 8)<<8, uint16(v), uint16(v >> 16)}
	case Insn32x:
		units = []uint16{b, e.reg("A", i.A, 16), e.reg("B", i.B, 16)}
	case Insn35c:
		first, packed := e.fiveRegisters(i.Registers)
		idx := e.index("ref", i.Ref, opcode.MustLookup(op).Ref, 16)
		units = []uint16{b | first, uint16(idx), packed}
	case Insn3rc:
		count := e.reg("count", i.Count, 8)
		e.rangeEnd(i.Start, i.Count)
		idx := e.index("ref", i.Ref, opcode.MustLookup(op).Ref, 16)
		units = []uint16{b | count<<8, uint16(idx), e.reg("start", i.Start, 16)}
	case Insn45cc:
		first, packed := e.fiveRegisters(i.Registers)
		idx := e.index("ref", i.Ref, opcode.MustLookup(op).Ref, 16)
		proto := e.index("proto", i.Proto, opcode.RefMethodProto, 16)
		units = []uint16{b | first, uint16(idx), packed, uint16(proto)}
	case Insn4rcc:
		count := e.reg("count", i.Count, 8)
		e.rangeEnd(i.Start, i.Count)
		idx := e.index("ref", i.Ref, opcode.MustLookup(op).Ref, 16)
		proto := e.index("proto", i.Proto, opcode.RefMethodProto, 16)
		units = []uint16{b | count<<8, uint16(idx), e.reg("start", i.Start, 16), uint16(proto)}
	case Insn51l:
		v := uint64(i.Literal)
		units = []uint16{b | e.reg("A", i.A, 8)<<8, uint16(v), uint16(v >> 16), uint16(v >> 32), uint16(v >> 48)}
	case PackedSwitchPayload:
		units = make([]uint16, 0, i.CodeUnits())
		units = append(units, uint16(opcode.PackedSwitchPayload), e.reg("size", len(i.Targets), 16))
		units = appendUint32(units, uint32(i.FirstKey))
		for _, t := range i.Targets {
			units = appendUint32(units, uint32(t))
		}
	case SparseSwitchPayload:
		if len(i.Keys) != len(i.Targets) {
			e.fail("keys", int64(len(i.Keys)), fmt.Sprintf("but %d targets", len(i.Targets)))
			break
		}
		for n := 1; n < len(i.Keys); n++ {
			if i.Keys[n] <= i.Keys[n-1] {
				e.fail("key", int64(i.Keys[n]), "not strictly ascending")
				break
			}
		}
		units = make([]uint16, 0, i.CodeUnits())
		units = append(units, uint16(opcode.SparseSwitchPayload), e.reg("size", len(i.Keys), 16))
		for _, k := range i.Keys {
			units = appendUint32(units, uint32(k))
		}
		for _, t := range i.Targets {
			units = appendUint32(units, uint32(t))
		}
	case ArrayPayload:
		units = e.arrayPayload(i)
	case Unknown:
		units = []uint16{i.Unit}
	default:
		return nil, fmt.Errorf("%w: no encoder for %T", ErrFormatMismatch, i)
	}
	if e.err != nil {
		return nil, e.err
	}
	return units, nil
}

func appendUint32(units []uint16, v uint32) []uint16 {
	return append(units, uint16(v), uint16(v>>16))
}

// fiveRegisters packs a 35c/45cc register list into the count/G byte of
// the first unit and the C..F unit.
func (e *encoder) fiveRegisters(regs []int) (first, packed uint16) {
	if len(regs) > 5 {
		e.fail("registers", int64(len(regs)), "more than 5 in a non-range invoke")
		return 0, 0
	}
	var nib [5]uint16
	for n, r := range regs {
		nib[n] = e.reg(fmt.Sprintf("register[%d]", n), r, 4)
	}
	packed = nib[0] | nib[1]<<4 | nib[2]<<8 | nib[3]<<12
	first = nib[4]<<8 | uint16(len(regs))<<12
	return first, packed
}

func (e *encoder) rangeEnd(start, count int) {
	if start+count > 1<<16 {
		e.fail("start", int64(start), fmt.Sprintf("range of %d runs past v65535", count))
	}
}

func (e *encoder) arrayPayload(p ArrayPayload) []uint16 {
	switch p.ElementWidth {
	case 1, 2, 4, 8:
	default:
		e.fail("width", int64(p.ElementWidth), "must be 1, 2, 4 or 8")
		return nil
	}
	raw := make([]byte, 0, len(p.Elements)*p.ElementWidth+1)
	for n, v := range p.Elements {
		bits := e.signed(fmt.Sprintf("element[%d]", n), v, p.ElementWidth*8)
		for k := 0; k < p.ElementWidth; k++ {
			raw = append(raw, byte(bits>>(8*k)))
		}
	}
	if len(raw)%2 != 0 {
		raw = append(raw, 0)
	}
	units := make([]uint16, 0, 4+len(raw)/2)
	units = append(units, uint16(opcode.ArrayPayload), uint16(p.ElementWidth))
	units = appendUint32(units, uint32(len(p.Elements)))
	for k := 0; k < len(raw); k += 2 {
		units = append(units, uint16(raw[k])|uint16(raw[k+1])<<8)
	}
	return units
}
