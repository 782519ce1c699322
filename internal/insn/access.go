package insn

import "dexkit/internal/ref"

// Registers returns the register operands of i in layout order. Range
// formats are expanded to the full register list.
func Registers(i Instruction) []int {
	switch i := i.(type) {
	case Insn11n:
		return []int{i.A}
	case Insn11x:
		return []int{i.A}
	case Insn12x:
		return []int{i.A, i.B}
	case Insn21c:
		return []int{i.A}
	case Insn21ih:
		return []int{i.A}
	case Insn21lh:
		return []int{i.A}
	case Insn21s:
		return []int{i.A}
	case Insn21t:
		return []int{i.A}
	case Insn22b:
		return []int{i.A, i.B}
	case Insn22c:
		return []int{i.A, i.B}
	case Insn22s:
		return []int{i.A, i.B}
	case Insn22t:
		return []int{i.A, i.B}
	case Insn22x:
		return []int{i.A, i.B}
	case Insn23x:
		return []int{i.A, i.B, i.C}
	case Insn31c:
		return []int{i.A}
	case Insn31i:
		return []int{i.A}
	case Insn31t:
		return []int{i.A}
	case Insn32x:
		return []int{i.A, i.B}
	case Insn35c:
		return append([]int(nil), i.Registers...)
	case Insn45cc:
		return append([]int(nil), i.Registers...)
	case Insn3rc:
		return span(i.Start, i.Count)
	case Insn4rcc:
		return span(i.Start, i.Count)
	case Insn51l:
		return []int{i.A}
	}
	return nil
}

func span(start, count int) []int {
	regs := make([]int, count)
	for n := range regs {
		regs[n] = start + n
	}
	return regs
}

// Literal returns the constant operand of i, if it has one.
func Literal(i Instruction) (int64, bool) {
	switch i := i.(type) {
	case Insn11n:
		return i.Literal, true
	case Insn21ih:
		return i.Literal, true
	case Insn21lh:
		return i.Literal, true
	case Insn21s:
		return i.Literal, true
	case Insn22b:
		return i.Literal, true
	case Insn22s:
		return i.Literal, true
	case Insn31i:
		return i.Literal, true
	case Insn51l:
		return i.Literal, true
	}
	return 0, false
}

// Reference returns the pool reference of i, or nil.
func Reference(i Instruction) ref.Reference {
	switch i := i.(type) {
	case Insn21c:
		return i.Ref
	case Insn22c:
		return i.Ref
	case Insn31c:
		return i.Ref
	case Insn35c:
		return i.Ref
	case Insn3rc:
		return i.Ref
	case Insn45cc:
		return i.Ref
	case Insn4rcc:
		return i.Ref
	}
	return nil
}

// SecondReference returns the prototype of a polymorphic invoke, or nil.
func SecondReference(i Instruction) ref.Reference {
	switch i := i.(type) {
	case Insn45cc:
		return i.Proto
	case Insn4rcc:
		return i.Proto
	}
	return nil
}

// BranchOffset returns the relative target of a branch or payload-referencing
// instruction.
func BranchOffset(i Instruction) (int32, bool) {
	switch i := i.(type) {
	case Insn10t:
		return i.Offset, true
	case Insn20t:
		return i.Offset, true
	case Insn21t:
		return i.Offset, true
	case Insn22t:
		return i.Offset, true
	case Insn30t:
		return i.Offset, true
	case Insn31t:
		return i.Offset, true
	}
	return 0, false
}
