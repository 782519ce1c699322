package builder

import (
	"fmt"
	"strings"

	"dexkit/internal/insn"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// Instruction is the mutable form of an instruction. Registers are listed
// in layout order; range invokes list every register of the range. Branch
// formats and fill-array-data/switch instructions name their target with
// Target, and switch payloads name their cases with Targets.
type Instruction struct {
	Op        opcode.Opcode
	Registers []int
	Literal   int64
	Ref       ref.Reference
	Proto     ref.Reference // invoke-polymorphic only
	Target    Label

	FirstKey     int32   // packed-switch payload
	Keys         []int32 // sparse-switch payload
	Targets      []Label // switch payloads
	ElementWidth int     // array payload
	Elements     []int64 // array payload
}

func (i *Instruction) Format() opcode.Format { return i.Op.Format() }

// CodeUnits is the encoded size, not counting alignment padding.
func (i *Instruction) CodeUnits() int {
	switch f := i.Format(); f {
	case opcode.FormatPackedSwitchPayload, opcode.FormatSparseSwitchPayload:
		return opcode.PayloadCodeUnits(f, 0, len(i.Targets))
	case opcode.FormatArrayPayload:
		return opcode.PayloadCodeUnits(f, i.ElementWidth, len(i.Elements))
	default:
		return f.CodeUnits()
	}
}

func (i *Instruction) String() string {
	var b strings.Builder
	b.WriteString(i.Op.String())
	sep := " "
	put := func(format string, args ...any) {
		b.WriteString(sep)
		fmt.Fprintf(&b, format, args...)
		sep = ", "
	}
	for _, r := range i.Registers {
		put("v%d", r)
	}
	switch i.Format() {
	case opcode.Format11n, opcode.Format21s, opcode.Format21ih, opcode.Format21lh,
		opcode.Format22b, opcode.Format22s, opcode.Format31i, opcode.Format51l:
		put("#%d", i.Literal)
	case opcode.FormatPackedSwitchPayload:
		put("first-key %d", i.FirstKey)
		for _, t := range i.Targets {
			put("%v", t)
		}
	case opcode.FormatSparseSwitchPayload:
		for n, t := range i.Targets {
			if n < len(i.Keys) {
				put("%d->%v", i.Keys[n], t)
			}
		}
	case opcode.FormatArrayPayload:
		put("width %d", i.ElementWidth)
		put("%d elements", len(i.Elements))
	}
	if i.Ref != nil {
		put("%v", i.Ref)
	}
	if i.Proto != nil {
		put("%v", i.Proto)
	}
	if i.Format().HasBranch() {
		put("%v", i.Target)
	}
	return b.String()
}

// payloadFor returns the payload opcode a 31t instruction must point at.
func payloadFor(op opcode.Opcode) (opcode.Opcode, bool) {
	switch op {
	case opcode.PackedSwitch:
		return opcode.PackedSwitchPayload, true
	case opcode.SparseSwitch:
		return opcode.SparseSwitchPayload, true
	case opcode.FillArrayData:
		return opcode.ArrayPayload, true
	}
	return 0, false
}

func isSwitchPayload(op opcode.Opcode) bool {
	return op == opcode.PackedSwitchPayload || op == opcode.SparseSwitchPayload
}

// validate checks i against its format before it enters the method.
func (m *MethodImplementation) validate(i *Instruction) error {
	if i == nil {
		return fmt.Errorf("%w: nil instruction", ErrUnbuildable)
	}
	info, err := opcode.Lookup(i.Op)
	if err != nil {
		return err
	}
	if info.Format.HasBranch() {
		if _, err := m.locationOf(i.Target); err != nil {
			return fmt.Errorf("builder: %v target: %w", i.Op, err)
		}
	}
	for n, t := range i.Targets {
		if _, err := m.locationOf(t); err != nil {
			return fmt.Errorf("builder: %v case %d: %w", i.Op, n, err)
		}
	}
	x, err := i.toInsn(0, make([]int32, len(i.Targets)))
	if err != nil {
		return err
	}
	_, err = insn.EncodeOne(x, anyIndex{})
	return err
}

// anyIndex interns everything at index zero; it lets validation run the
// encoder's operand checks without a real pool.
type anyIndex struct{}

func (anyIndex) Intern(ref.Reference) (uint32, error) { return 0, nil }

func (i *Instruction) wantRegisters(n int) error {
	if len(i.Registers) != n {
		return &insn.PreconditionError{Op: i.Op, Operand: "registers", Value: int64(len(i.Registers)),
			Detail: fmt.Sprintf("but %v takes %d", i.Format(), n)}
	}
	return nil
}

// contiguous returns the start and count of a range invoke's registers.
func (i *Instruction) contiguous() (start, count int, err error) {
	for n := 1; n < len(i.Registers); n++ {
		if i.Registers[n] != i.Registers[0]+n {
			return 0, 0, &insn.PreconditionError{Op: i.Op, Operand: "registers", Value: int64(i.Registers[n]),
				Detail: "breaks the contiguous range"}
		}
	}
	if len(i.Registers) == 0 {
		return 0, 0, nil
	}
	return i.Registers[0], len(i.Registers), nil
}

var registerCount = map[opcode.Format]int{
	opcode.Format10t: 0, opcode.Format10x: 0, opcode.Format20t: 0, opcode.Format30t: 0,
	opcode.Format11n: 1, opcode.Format11x: 1, opcode.Format21c: 1, opcode.Format21ih: 1,
	opcode.Format21lh: 1, opcode.Format21s: 1, opcode.Format21t: 1, opcode.Format31c: 1,
	opcode.Format31i: 1, opcode.Format31t: 1, opcode.Format51l: 1,
	opcode.Format12x: 2, opcode.Format22b: 2, opcode.Format22c: 2, opcode.Format22s: 2,
	opcode.Format22t: 2, opcode.Format22x: 2, opcode.Format32x: 2,
	opcode.Format23x: 3,
	opcode.FormatPackedSwitchPayload: 0, opcode.FormatSparseSwitchPayload: 0, opcode.FormatArrayPayload: 0,
}

// toInsn builds the codec form with the given relative branch offset and
// relative switch targets.
func (i *Instruction) toInsn(branch int32, targets []int32) (insn.Instruction, error) {
	f := i.Format()
	if n, ok := registerCount[f]; ok {
		if err := i.wantRegisters(n); err != nil {
			return nil, err
		}
	}
	r := i.Registers
	op := i.Op
	switch f {
	case opcode.Format10x:
		return insn.Insn10x{Op: op}, nil
	case opcode.Format10t:
		return insn.Insn10t{Op: op, Offset: branch}, nil
	case opcode.Format20t:
		return insn.Insn20t{Op: op, Offset: branch}, nil
	case opcode.Format30t:
		return insn.Insn30t{Op: op, Offset: branch}, nil
	case opcode.Format11n:
		return insn.Insn11n{Op: op, A: r[0], Literal: i.Literal}, nil
	case opcode.Format11x:
		return insn.Insn11x{Op: op, A: r[0]}, nil
	case opcode.Format12x:
		return insn.Insn12x{Op: op, A: r[0], B: r[1]}, nil
	case opcode.Format21c:
		return insn.Insn21c{Op: op, A: r[0], Ref: i.Ref}, nil
	case opcode.Format21ih:
		return insn.Insn21ih{Op: op, A: r[0], Literal: i.Literal}, nil
	case opcode.Format21lh:
		return insn.Insn21lh{Op: op, A: r[0], Literal: i.Literal}, nil
	case opcode.Format21s:
		return insn.Insn21s{Op: op, A: r[0], Literal: i.Literal}, nil
	case opcode.Format21t:
		return insn.Insn21t{Op: op, A: r[0], Offset: branch}, nil
	case opcode.Format22b:
		return insn.Insn22b{Op: op, A: r[0], B: r[1], Literal: i.Literal}, nil
	case opcode.Format22c:
		return insn.Insn22c{Op: op, A: r[0], B: r[1], Ref: i.Ref}, nil
	case opcode.Format22s:
		return insn.Insn22s{Op: op, A: r[0], B: r[1], Literal: i.Literal}, nil
	case opcode.Format22t:
		return insn.Insn22t{Op: op, A: r[0], B: r[1], Offset: branch}, nil
	case opcode.Format22x:
		return insn.Insn22x{Op: op, A: r[0], B: r[1]}, nil
	case opcode.Format23x:
		return insn.Insn23x{Op: op, A: r[0], B: r[1], C: r[2]}, nil
	case opcode.Format31c:
		return insn.Insn31c{Op: op, A: r[0], Ref: i.Ref}, nil
	case opcode.Format31i:
		return insn.Insn31i{Op: op, A: r[0], Literal: i.Literal}, nil
	case opcode.Format31t:
		return insn.Insn31t{Op: op, A: r[0], Offset: branch}, nil
	case opcode.Format32x:
		return insn.Insn32x{Op: op, A: r[0], B: r[1]}, nil
	case opcode.Format51l:
		return insn.Insn51l{Op: op, A: r[0], Literal: i.Literal}, nil
	case opcode.Format35c:
		return insn.Insn35c{Op: op, Registers: append([]int{}, r...), Ref: i.Ref}, nil
	case opcode.Format45cc:
		return insn.Insn45cc{Op: op, Registers: append([]int{}, r...), Ref: i.Ref, Proto: i.Proto}, nil
	case opcode.Format3rc:
		start, count, err := i.contiguous()
		if err != nil {
			return nil, err
		}
		return insn.Insn3rc{Op: op, Start: start, Count: count, Ref: i.Ref}, nil
	case opcode.Format4rcc:
		start, count, err := i.contiguous()
		if err != nil {
			return nil, err
		}
		return insn.Insn4rcc{Op: op, Start: start, Count: count, Ref: i.Ref, Proto: i.Proto}, nil
	case opcode.FormatPackedSwitchPayload:
		return insn.PackedSwitchPayload{FirstKey: i.FirstKey, Targets: targets}, nil
	case opcode.FormatSparseSwitchPayload:
		return insn.SparseSwitchPayload{Keys: i.Keys, Targets: targets}, nil
	case opcode.FormatArrayPayload:
		return insn.ArrayPayload{ElementWidth: i.ElementWidth, Elements: i.Elements}, nil
	}
	return nil, fmt.Errorf("%w: %v has format %v", ErrUnbuildable, op, f)
}
