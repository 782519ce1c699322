// Package insn is the dex instruction codec. Every encoding format has its
// own immutable struct implementing Instruction; Decode and Writer convert
// between those values and the little-endian code-unit stream.
//
// Register operands are named A, B, C in the order they appear in the
// format's layout. Branch offsets are signed and counted in code units
// relative to the address of the branching instruction.
package insn

import (
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// Instruction is a decoded, read-only instruction. The set of
// implementations is closed: the unexported method keeps other packages
// from adding formats, so type switches over the formats below are
// exhaustive.
type Instruction interface {
	Opcode() opcode.Opcode
	// CodeUnits is the encoded size, not counting alignment padding.
	CodeUnits() int
	format() opcode.Format
}

// Format returns the encoding format of i.
func Format(i Instruction) opcode.Format { return i.format() }

type Insn10t struct {
	Op     opcode.Opcode
	Offset int32
}

type Insn10x struct {
	Op opcode.Opcode
}

type Insn11n struct {
	Op      opcode.Opcode
	A       int
	Literal int64
}

type Insn11x struct {
	Op opcode.Opcode
	A  int
}

type Insn12x struct {
	Op   opcode.Opcode
	A, B int
}

type Insn20t struct {
	Op     opcode.Opcode
	Offset int32
}

type Insn21c struct {
	Op  opcode.Opcode
	A   int
	Ref ref.Reference
}

// Insn21ih holds the full 32-bit value; only its high 16 bits are encoded.
type Insn21ih struct {
	Op      opcode.Opcode
	A       int
	Literal int64
}

// Insn21lh holds the full 64-bit value; only its high 16 bits are encoded.
type Insn21lh struct {
	Op      opcode.Opcode
	A       int
	Literal int64
}

type Insn21s struct {
	Op      opcode.Opcode
	A       int
	Literal int64
}

type Insn21t struct {
	Op     opcode.Opcode
	A      int
	Offset int32
}

type Insn22b struct {
	Op      opcode.Opcode
	A, B    int
	Literal int64
}

type Insn22c struct {
	Op   opcode.Opcode
	A, B int
	Ref  ref.Reference
}

type Insn22s struct {
	Op      opcode.Opcode
	A, B    int
	Literal int64
}

type Insn22t struct {
	Op     opcode.Opcode
	A, B   int
	Offset int32
}

type Insn22x struct {
	Op   opcode.Opcode
	A, B int
}

type Insn23x struct {
	Op      opcode.Opcode
	A, B, C int
}

type Insn30t struct {
	Op     opcode.Opcode
	Offset int32
}

type Insn31c struct {
	Op  opcode.Opcode
	A   int
	Ref ref.Reference
}

type Insn31i struct {
	Op      opcode.Opcode
	A       int
	Literal int64
}

// Insn31t points at a payload table (fill-array-data, switches).
type Insn31t struct {
	Op     opcode.Opcode
	A      int
	Offset int32
}

type Insn32x struct {
	Op   opcode.Opcode
	A, B int
}

// Insn35c lists up to five argument registers.
type Insn35c struct {
	Op        opcode.Opcode
	Registers []int
	Ref       ref.Reference
}

// Insn3rc passes the contiguous registers [Start, Start+Count).
type Insn3rc struct {
	Op    opcode.Opcode
	Start int
	Count int
	Ref   ref.Reference
}

type Insn45cc struct {
	Op        opcode.Opcode
	Registers []int
	Ref       ref.Reference
	Proto     ref.Reference
}

type Insn4rcc struct {
	Op    opcode.Opcode
	Start int
	Count int
	Ref   ref.Reference
	Proto ref.Reference
}

type Insn51l struct {
	Op      opcode.Opcode
	A       int
	Literal int64
}

// PackedSwitchPayload targets are relative to the referencing switch
// instruction, not the payload.
type PackedSwitchPayload struct {
	FirstKey int32
	Targets  []int32
}

// SparseSwitchPayload keys must be sorted ascending.
type SparseSwitchPayload struct {
	Keys    []int32
	Targets []int32
}

// ArrayPayload elements are stored sign-extended from ElementWidth bytes.
type ArrayPayload struct {
	ElementWidth int
	Elements     []int64
}

// Unknown is a code unit whose opcode is not in the table, kept as an
// opaque blob in best-effort decoding.
type Unknown struct {
	Unit uint16
}

func (i Insn10t) Opcode() opcode.Opcode { return i.Op }
func (i Insn10x) Opcode() opcode.Opcode { return i.Op }
func (i Insn11n) Opcode() opcode.Opcode { return i.Op }
func (i Insn11x) Opcode() opcode.Opcode { return i.Op }
func (i Insn12x) Opcode() opcode.Opcode { return i.Op }
func (i Insn20t) Opcode() opcode.Opcode { return i.Op }
func (i Insn21c) Opcode() opcode.Opcode { return i.Op }
func (i Insn21ih) Opcode() opcode.Opcode { return i.Op }
func (i Insn21lh) Opcode() opcode.Opcode { return i.Op }
func (i Insn21s) Opcode() opcode.Opcode { return i.Op }
func (i Insn21t) Opcode() opcode.Opcode { return i.Op }
func (i Insn22b) Opcode() opcode.Opcode { return i.Op }
func (i Insn22c) Opcode() opcode.Opcode { return i.Op }
func (i Insn22s) Opcode() opcode.Opcode { return i.Op }
func (i Insn22t) Opcode() opcode.Opcode { return i.Op }
func (i Insn22x) Opcode() opcode.Opcode { return i.Op }
func (i Insn23x) Opcode() opcode.Opcode { return i.Op }
func (i Insn30t) Opcode() opcode.Opcode { return i.Op }
func (i Insn31c) Opcode() opcode.Opcode { return i.Op }
func (i Insn31i) Opcode() opcode.Opcode { return i.Op }
func (i Insn31t) Opcode() opcode.Opcode { return i.Op }
func (i Insn32x) Opcode() opcode.Opcode { return i.Op }
func (i Insn35c) Opcode() opcode.Opcode { return i.Op }
func (i Insn3rc) Opcode() opcode.Opcode { return i.Op }
func (i Insn45cc) Opcode() opcode.Opcode { return i.Op }
func (i Insn4rcc) Opcode() opcode.Opcode { return i.Op }
func (i Insn51l) Opcode() opcode.Opcode { return i.Op }

func (PackedSwitchPayload) Opcode() opcode.Opcode { return opcode.PackedSwitchPayload }
func (SparseSwitchPayload) Opcode() opcode.Opcode { return opcode.SparseSwitchPayload }
func (ArrayPayload) Opcode() opcode.Opcode { return opcode.ArrayPayload }
func (Unknown) Opcode() opcode.Opcode { return opcode.Nop }

func (Insn10t) format() opcode.Format { return opcode.Format10t }
func (Insn10x) format() opcode.Format { return opcode.Format10x }
func (Insn11n) format() opcode.Format { return opcode.Format11n }
func (Insn11x) format() opcode.Format { return opcode.Format11x }
func (Insn12x) format() opcode.Format { return opcode.Format12x }
func (Insn20t) format() opcode.Format { return opcode.Format20t }
func (Insn21c) format() opcode.Format { return opcode.Format21c }
func (Insn21ih) format() opcode.Format { return opcode.Format21ih }
func (Insn21lh) format() opcode.Format { return opcode.Format21lh }
func (Insn21s) format() opcode.Format { return opcode.Format21s }
func (Insn21t) format() opcode.Format { return opcode.Format21t }
func (Insn22b) format() opcode.Format { return opcode.Format22b }
func (Insn22c) format() opcode.Format { return opcode.Format22c }
func (Insn22s) format() opcode.Format { return opcode.Format22s }
func (Insn22t) format() opcode.Format { return opcode.Format22t }
func (Insn22x) format() opcode.Format { return opcode.Format22x }
func (Insn23x) format() opcode.Format { return opcode.Format23x }
func (Insn30t) format() opcode.Format { return opcode.Format30t }
func (Insn31c) format() opcode.Format { return opcode.Format31c }
func (Insn31i) format() opcode.Format { return opcode.Format31i }
func (Insn31t) format() opcode.Format { return opcode.Format31t }
func (Insn32x) format() opcode.Format { return opcode.Format32x }
func (Insn35c) format() opcode.Format { return opcode.Format35c }
func (Insn3rc) format() opcode.Format { return opcode.Format3rc }
func (Insn45cc) format() opcode.Format { return opcode.Format45cc }
func (Insn4rcc) format() opcode.Format { return opcode.Format4rcc }
func (Insn51l) format() opcode.Format { return opcode.Format51l }
func (PackedSwitchPayload) format() opcode.Format { return opcode.FormatPackedSwitchPayload }
func (SparseSwitchPayload) format() opcode.Format { return opcode.FormatSparseSwitchPayload }
func (ArrayPayload) format() opcode.Format { return opcode.FormatArrayPayload }
func (Unknown) format() opcode.Format { return opcode.FormatUnknown }

func (i Insn10t) CodeUnits() int { return 1 }
func (i Insn10x) CodeUnits() int { return 1 }
func (i Insn11n) CodeUnits() int { return 1 }
func (i Insn11x) CodeUnits() int { return 1 }
func (i Insn12x) CodeUnits() int { return 1 }
func (i Insn20t) CodeUnits() int { return 2 }
func (i Insn21c) CodeUnits() int { return 2 }
func (i Insn21ih) CodeUnits() int { return 2 }
func (i Insn21lh) CodeUnits() int { return 2 }
func (i Insn21s) CodeUnits() int { return 2 }
func (i Insn21t) CodeUnits() int { return 2 }
func (i Insn22b) CodeUnits() int { return 2 }
func (i Insn22c) CodeUnits() int { return 2 }
func (i Insn22s) CodeUnits() int { return 2 }
func (i Insn22t) CodeUnits() int { return 2 }
func (i Insn22x) CodeUnits() int { return 2 }
func (i Insn23x) CodeUnits() int { return 2 }
func (i Insn30t) CodeUnits() int { return 3 }
func (i Insn31c) CodeUnits() int { return 3 }
func (i Insn31i) CodeUnits() int { return 3 }
func (i Insn31t) CodeUnits() int { return 3 }
func (i Insn32x) CodeUnits() int { return 3 }
func (i Insn35c) CodeUnits() int { return 3 }
func (i Insn3rc) CodeUnits() int { return 3 }
func (i Insn45cc) CodeUnits() int { return 4 }
func (i Insn4rcc) CodeUnits() int { return 4 }
func (i Insn51l) CodeUnits() int { return 5 }
func (Unknown) CodeUnits() int { return 1 }

func (p PackedSwitchPayload) CodeUnits() int {
	return opcode.PayloadCodeUnits(opcode.FormatPackedSwitchPayload, 0, len(p.Targets))
}

func (p SparseSwitchPayload) CodeUnits() int {
	return opcode.PayloadCodeUnits(opcode.FormatSparseSwitchPayload, 0, len(p.Targets))
}

func (p ArrayPayload) CodeUnits() int {
	return opcode.PayloadCodeUnits(opcode.FormatArrayPayload, p.ElementWidth, len(p.Elements))
}

// Decoded pairs an instruction with its code-unit offset in the method.
type Decoded struct {
	Offset int
	Insn   Instruction
}
