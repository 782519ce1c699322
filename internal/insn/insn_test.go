package insn

import (
	"bytes"
	"errors"
	"math"
	"reflect"
	"testing"

	"dexkit/internal/dexfmt"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

func idx(kind opcode.ReferenceKind, v uint32) ref.Index { return ref.Index{RefKind: kind, Value: v} }

var everyFormat = []Instruction{
	Insn10x{Op: opcode.Nop},
	Insn10t{Op: opcode.Goto, Offset: -3},
	Insn11n{Op: opcode.Const4, A: 3, Literal: -2},
	Insn11x{Op: opcode.Return, A: 7},
	Insn12x{Op: opcode.Move, A: 1, B: 15},
	Insn20t{Op: opcode.Goto16, Offset: -300},
	Insn21c{Op: opcode.ConstString, A: 200, Ref: idx(opcode.RefString, 0xffff)},
	Insn21ih{Op: opcode.ConstHigh16, A: 3, Literal: 0x12340000},
	Insn21ih{Op: opcode.ConstHigh16, A: 3, Literal: -65536},
	Insn21lh{Op: opcode.ConstWideHigh16, A: 4, Literal: 0x1234 << 48},
	Insn21lh{Op: opcode.ConstWideHigh16, A: 4, Literal: -1 << 48},
	Insn21s{Op: opcode.Const16, A: 5, Literal: -32768},
	Insn21t{Op: opcode.IfEqz, A: 6, Offset: 100},
	Insn22b{Op: opcode.AddIntLit8, A: 1, B: 255, Literal: -128},
	Insn22c{Op: opcode.InstanceOf, A: 0, B: 1, Ref: idx(opcode.RefType, 9)},
	Insn22s{Op: opcode.AddIntLit16, A: 2, B: 3, Literal: 1000},
	Insn22t{Op: opcode.IfLt, A: 2, B: 3, Offset: -5},
	Insn22x{Op: opcode.MoveFrom16, A: 255, B: 65535},
	Insn23x{Op: opcode.AddInt, A: 1, B: 2, C: 3},
	Insn30t{Op: opcode.Goto32, Offset: 1 << 20},
	Insn31c{Op: opcode.ConstStringJumbo, A: 1, Ref: idx(opcode.RefString, 70000)},
	Insn31i{Op: opcode.Const, A: 2, Literal: -100000},
	Insn31t{Op: opcode.FillArrayData, A: 3, Offset: 8},
	Insn32x{Op: opcode.Move16, A: 300, B: 400},
	Insn35c{Op: opcode.InvokeVirtual, Registers: []int{1, 2, 3, 4, 5}, Ref: idx(opcode.RefMethod, 3)},
	Insn35c{Op: opcode.FilledNewArray, Registers: []int{}, Ref: idx(opcode.RefType, 1)},
	Insn3rc{Op: opcode.InvokeStaticRange, Start: 10, Count: 4, Ref: idx(opcode.RefMethod, 1)},
	Insn45cc{Op: opcode.InvokePolymorphic, Registers: []int{1, 2}, Ref: idx(opcode.RefMethod, 2), Proto: idx(opcode.RefMethodProto, 7)},
	Insn4rcc{Op: opcode.InvokePolymorphicRange, Start: 0, Count: 3, Ref: idx(opcode.RefMethod, 2), Proto: idx(opcode.RefMethodProto, 8)},
	Insn51l{Op: opcode.ConstWide, A: 2, Literal: -1234567890123},
	PackedSwitchPayload{FirstKey: -1, Targets: []int32{3, 6, 9}},
	SparseSwitchPayload{Keys: []int32{-5, 10}, Targets: []int32{4, 8}},
	ArrayPayload{ElementWidth: 1, Elements: []int64{-1, 0, 127}},
	ArrayPayload{ElementWidth: 2, Elements: []int64{-32768, 32767}},
	ArrayPayload{ElementWidth: 8, Elements: []int64{math.MinInt64}},
}

func TestRoundTripEveryFormat(t *testing.T) {
	for _, want := range everyFormat {
		code, err := Encode([]Instruction{want}, nil)
		if err != nil {
			t.Errorf("Encode(%#v): %v", want, err)
			continue
		}
		if got := len(code) / 2; got != want.CodeUnits() {
			t.Errorf("%v: encoded %d units, CodeUnits = %d", want.Opcode(), got, want.CodeUnits())
		}
		got, err := DecodeAll(code, nil, dexfmt.Options{})
		if err != nil {
			t.Errorf("DecodeAll(%v): %v", want.Opcode(), err)
			continue
		}
		if len(got) != 1 {
			t.Errorf("%v: decoded %d instructions, want 1", want.Opcode(), len(got))
			continue
		}
		if !reflect.DeepEqual(got[0].Insn, want) {
			t.Errorf("round trip:\n got %#v\nwant %#v", got[0].Insn, want)
		}

		// bytes -> insn -> bytes
		again, err := Encode([]Instruction{got[0].Insn}, nil)
		if err != nil || !bytes.Equal(again, code) {
			t.Errorf("%v: re-encode = % x, %v; want % x", want.Opcode(), again, err, code)
		}
	}
}

func TestGoldenBytes(t *testing.T) {
	pool := ref.NewPool()
	pool.MustIntern(ref.String("unused"))
	tests := []struct {
		insn Instruction
		want []byte
	}{
		{Insn21c{Op: opcode.ConstString, A: 0, Ref: ref.String("hi")}, []byte{0x1a, 0x00, 0x01, 0x00}},
		{Insn35c{Op: opcode.InvokeVirtual, Registers: []int{1, 2}, Ref: idx(opcode.RefMethod, 3)},
			[]byte{0x6e, 0x20, 0x03, 0x00, 0x21, 0x00}},
		{Insn11n{Op: opcode.Const4, A: 1, Literal: -1}, []byte{0x12, 0xf1}},
		{Insn10t{Op: opcode.Goto, Offset: -2}, []byte{0x28, 0xfe}},
		{Insn12x{Op: opcode.Move, A: 1, B: 2}, []byte{0x01, 0x21}},
	}
	for _, tt := range tests {
		got, err := Encode([]Instruction{tt.insn}, pool)
		if err != nil {
			t.Errorf("Encode(%v): %v", tt.insn.Opcode(), err)
			continue
		}
		if !bytes.Equal(got, tt.want) {
			t.Errorf("Encode(%v) = % x, want % x", tt.insn.Opcode(), got, tt.want)
		}
	}

	decoded, err := DecodeAll([]byte{0x1a, 0x00, 0x01, 0x00}, pool, dexfmt.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if r := Reference(decoded[0].Insn); r != ref.String("hi") {
		t.Errorf("resolved reference = %v, want \"hi\"", r)
	}
}

func TestPayloadAlignmentPadding(t *testing.T) {
	seq := []Instruction{
		Insn10x{Op: opcode.Nop},
		PackedSwitchPayload{FirstKey: 0, Targets: []int32{1}},
	}
	code, err := Encode(seq, nil)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := len(code)/2, 2+seq[1].CodeUnits(); got != want {
		t.Fatalf("encoded %d units, want %d", got, want)
	}
	got, err := DecodeAll(code, nil, dexfmt.Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 || got[2].Offset != 2 {
		t.Fatalf("decoded %+v, want payload at unit 2", got)
	}
	if _, ok := got[2].Insn.(PackedSwitchPayload); !ok {
		t.Errorf("third instruction is %T", got[2].Insn)
	}
}

func TestMisalignedPayload(t *testing.T) {
	code := []byte{
		0x00, 0x00, // nop
		0x00, 0x01, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, // packed-switch-payload, size 0
	}
	_, err := DecodeAll(code, nil, dexfmt.Options{})
	if !errors.Is(err, ErrMisaligned) {
		t.Fatalf("strict err = %v, want ErrMisaligned", err)
	}

	var diags dexfmt.Diags
	got, err := DecodeAll(code, nil, dexfmt.Options{Mode: dexfmt.ModeBestEffort, Diags: &diags})
	if err != nil {
		t.Fatalf("best effort: %v", err)
	}
	if len(got) != 2 || diags.Len() != 1 || diags.Items()[0].Kind != dexfmt.DiagMisaligned {
		t.Errorf("got %d insns, diags %v", len(got), diags.Items())
	}
}

func TestDecodeTruncated(t *testing.T) {
	_, err := DecodeAll([]byte{0x00, 0x00, 0x1a, 0x00}, nil, dexfmt.Options{})
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("err = %v, want ErrTruncated", err)
	}
	var fe *FormatError
	if !errors.As(err, &fe) || fe.Offset != 1 || fe.Op != opcode.ConstString {
		t.Errorf("FormatError = %+v, want const-string at 1", fe)
	}
}

func TestDecodePayloadCount(t *testing.T) {
	// packed-switch claiming 100 targets with none present
	code := []byte{0x00, 0x01, 100, 0x00, 0x00, 0x00, 0x00, 0x00}
	_, err := DecodeAll(code, nil, dexfmt.Options{})
	if !errors.Is(err, ErrPayloadCount) {
		t.Fatalf("err = %v, want ErrPayloadCount", err)
	}
}

func TestDecodeOddLength(t *testing.T) {
	if _, err := DecodeAll([]byte{0x00}, nil, dexfmt.Options{}); !errors.Is(err, dexfmt.ErrOddLength) {
		t.Errorf("err = %v, want ErrOddLength", err)
	}
}

func TestDecodeUnknownOpcode(t *testing.T) {
	code := []byte{0x3e, 0x00, 0x0e, 0x00} // unused 0x3e, return-void
	if _, err := DecodeAll(code, nil, dexfmt.Options{}); !errors.Is(err, opcode.ErrUnsupportedOpcode) {
		t.Fatalf("strict err = %v", err)
	}

	var diags dexfmt.Diags
	got, err := DecodeAll(code, nil, dexfmt.Options{Mode: dexfmt.ModeBestEffort, Diags: &diags})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("decoded %d, want 2", len(got))
	}
	if u, ok := got[0].Insn.(Unknown); !ok || u.Unit != 0x003e {
		t.Errorf("first = %#v, want Unknown{0x3e}", got[0].Insn)
	}
	if got[1].Insn.Opcode() != opcode.ReturnVoid {
		t.Errorf("second = %v", got[1].Insn.Opcode())
	}
	if diags.Len() != 1 || diags.Items()[0].Kind != dexfmt.DiagUnknownOp {
		t.Errorf("diags = %v", diags.Items())
	}

	// Unknown passes through the encoder unchanged.
	out, err := Encode([]Instruction{got[0].Insn, got[1].Insn}, nil)
	if err != nil || !bytes.Equal(out, code) {
		t.Errorf("re-encode = % x, %v", out, err)
	}
}

func TestDecodeStepCap(t *testing.T) {
	code := make([]byte, 20) // ten nops
	got, err := DecodeAll(code, nil, dexfmt.Options{MaxSteps: 4})
	if err == nil || len(got) != 4 {
		t.Errorf("got %d insns, err %v; want 4 and a cap error", len(got), err)
	}
}

func TestPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		insn    Instruction
		operand string
	}{
		{"nibble register", Insn12x{Op: opcode.Move, A: 16, B: 0}, "A"},
		{"negative register", Insn11x{Op: opcode.Return, A: -1}, "A"},
		{"lit4", Insn11n{Op: opcode.Const4, A: 0, Literal: 8}, "literal"},
		{"goto range", Insn10t{Op: opcode.Goto, Offset: 128}, "offset"},
		{"if range", Insn21t{Op: opcode.IfEqz, A: 0, Offset: 40000}, "offset"},
		{"string index", Insn21c{Op: opcode.ConstString, A: 0, Ref: idx(opcode.RefString, 0x10000)}, "ref"},
		{"high16 low bits", Insn21ih{Op: opcode.ConstHigh16, A: 0, Literal: 0x12345}, "literal"},
		{"six registers", Insn35c{Op: opcode.InvokeStatic, Registers: []int{0, 1, 2, 3, 4, 5}, Ref: idx(opcode.RefMethod, 0)}, "registers"},
		{"range overflow", Insn3rc{Op: opcode.InvokeStaticRange, Start: 65535, Count: 2, Ref: idx(opcode.RefMethod, 0)}, "start"},
		{"unsorted keys", SparseSwitchPayload{Keys: []int32{3, 1}, Targets: []int32{1, 2}}, "key"},
		{"byte element", ArrayPayload{ElementWidth: 1, Elements: []int64{200}}, "element[0]"},
		{"array width", ArrayPayload{ElementWidth: 3}, "width"},
	}
	for _, tt := range tests {
		_, err := EncodeOne(tt.insn, nil)
		var pe *PreconditionError
		if !errors.As(err, &pe) {
			t.Errorf("%s: err = %v, want PreconditionError", tt.name, err)
			continue
		}
		if pe.Operand != tt.operand {
			t.Errorf("%s: operand = %q, want %q", tt.name, pe.Operand, tt.operand)
		}
		if !errors.Is(err, ErrPrecondition) {
			t.Errorf("%s: not ErrPrecondition", tt.name)
		}
	}
}

func TestEncodeRejectsWrongOpcodeForFormat(t *testing.T) {
	_, err := EncodeOne(Insn12x{Op: opcode.ConstString, A: 0, B: 0}, nil)
	if !errors.Is(err, ErrFormatMismatch) {
		t.Errorf("err = %v, want ErrFormatMismatch", err)
	}
	_, err = EncodeOne(Insn21c{Op: opcode.ConstString, Ref: idx(opcode.RefType, 0)}, nil)
	if !errors.Is(err, ref.ErrKindMismatch) {
		t.Errorf("err = %v, want ErrKindMismatch", err)
	}
}

func TestAccessors(t *testing.T) {
	if got := Registers(Insn3rc{Op: opcode.InvokeStaticRange, Start: 4, Count: 3}); !reflect.DeepEqual(got, []int{4, 5, 6}) {
		t.Errorf("Registers(3rc) = %v", got)
	}
	if got := Registers(Insn10x{Op: opcode.Nop}); got != nil {
		t.Errorf("Registers(nop) = %v", got)
	}
	if v, ok := Literal(Insn21ih{Op: opcode.ConstHigh16, Literal: 0x10000}); !ok || v != 0x10000 {
		t.Errorf("Literal = %d,%v", v, ok)
	}
	if off, ok := BranchOffset(Insn31t{Op: opcode.PackedSwitch, Offset: 12}); !ok || off != 12 {
		t.Errorf("BranchOffset = %d,%v", off, ok)
	}
	p := idx(opcode.RefMethodProto, 1)
	if SecondReference(Insn45cc{Op: opcode.InvokePolymorphic, Proto: p}) != p {
		t.Error("SecondReference lost the prototype")
	}
}
