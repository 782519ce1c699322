// Package opcode is the static catalog of dex instructions: opcode values,
// mnemonics, encoding formats, reference kinds and the flags the builder and
// analyzer need. Everything here is immutable and safe for concurrent reads.
package opcode

import (
	"errors"
	"fmt"
)

// ErrUnsupportedOpcode is returned for opcode values and mnemonics that are
// not in the table.
var ErrUnsupportedOpcode = errors.New("opcode: unsupported opcode")

// Opcode is an instruction mnemonic. Regular opcodes fit in one byte; the
// payload pseudo-instructions use the full first code unit (0x0100, 0x0200,
// 0x0300).
type Opcode uint16

// ReferenceKind names the pool an instruction's index points into.
type ReferenceKind uint8

const (
	RefNone ReferenceKind = iota
	RefString
	RefType
	RefField
	RefMethod
	RefMethodProto
	RefCallSite
	RefMethodHandle
	RefInlineCache
)

var refKindNames = [...]string{"none", "string", "type", "field", "method", "method-proto", "call-site", "method-handle", "inline-cache"}

func (k ReferenceKind) String() string {
	if int(k) < len(refKindNames) {
		return refKindNames[k]
	}
	return fmt.Sprintf("ref(%d)", uint8(k))
}

// Kind groups opcodes by their effect on registers and control flow.
type Kind uint8

const (
	KindNop Kind = iota
	KindMove
	KindMoveResult
	KindMoveException
	KindReturn
	KindConst
	KindConstString
	KindConstClass
	KindConstMethodHandle
	KindConstMethodType
	KindMonitor
	KindCheckCast
	KindInstanceOf
	KindArrayLength
	KindNewInstance
	KindNewArray
	KindFilledNewArray
	KindFillArrayData
	KindThrow
	KindGoto
	KindSwitch
	KindCmp
	KindIf
	KindIfZ
	KindAget
	KindAput
	KindIget
	KindIput
	KindSget
	KindSput
	KindInvoke
	KindUnaryOp
	KindBinaryOp
	KindBinaryOp2Addr
	KindBinaryOpLit
	KindPayload
)

// Value is the primitive shape an instruction produces or consumes.
type Value uint8

const (
	ValueNone Value = iota
	ValueBoolean
	ValueByte
	ValueShort
	ValueChar
	ValueInt
	ValueLong
	ValueFloat
	ValueDouble
	ValueObject
)

// Flags are per-opcode behavior bits.
type Flags uint8

const (
	CanContinue Flags = 1 << iota // control may fall through to the next instruction
	CanThrow
	SetsRegister     // writes register A
	SetsWideRegister // writes the pair A, A+1
	SetsResult       // produces a value for a following move-result
)

const (
	cc   = CanContinue
	ct   = CanThrow
	sr   = SetsRegister
	sw   = SetsWideRegister
	sres = SetsResult
)

// Info is the table entry for one opcode.
type Info struct {
	Opcode Opcode
	Name   string
	Format Format
	Ref    ReferenceKind
	Kind   Kind
	Value  Value
	Flags  Flags
}

func (i Info) Has(f Flags) bool { return i.Flags&f == f }

// SecondRef returns the second reference kind for the dual-reference
// formats (invoke-polymorphic carries a method and a proto).
func (i Info) SecondRef() ReferenceKind {
	if i.Format == Format45cc || i.Format == Format4rcc {
		return RefMethodProto
	}
	return RefNone
}

var (
	byValue [0x100]*Info
	payload [4]*Info // indexed by high byte of 0x0100/0x0200/0x0300
	byName  = make(map[string]*Info, len(infos))
)

func init() {
	for i := range infos {
		info := &infos[i]
		if info.Opcode > 0xff {
			payload[info.Opcode>>8] = info
		} else {
			byValue[info.Opcode] = info
		}
		byName[info.Name] = info
	}
}

// Lookup returns the table entry for op.
func Lookup(op Opcode) (Info, error) {
	if p := lookup(op); p != nil {
		return *p, nil
	}
	return Info{}, fmt.Errorf("%w: 0x%04x", ErrUnsupportedOpcode, uint16(op))
}

func lookup(op Opcode) *Info {
	if op <= 0xff {
		return byValue[op]
	}
	if op&0xff == 0 && int(op>>8) < len(payload) {
		return payload[op>>8]
	}
	return nil
}

// MustLookup is Lookup for opcodes known to be in the table.
func MustLookup(op Opcode) Info {
	info, err := Lookup(op)
	if err != nil {
		panic(err)
	}
	return info
}

// ByName resolves a mnemonic such as "const-string/jumbo".
func ByName(name string) (Opcode, error) {
	if info, ok := byName[name]; ok {
		return info.Opcode, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnsupportedOpcode, name)
}

// FromUnit decodes the opcode of an instruction from its first code unit.
// A zero low byte with a nonzero high byte selects a payload table.
func FromUnit(unit uint16) (Opcode, error) {
	op := Opcode(unit & 0xff)
	if op == Nop && unit>>8 != 0 {
		op = Opcode(unit)
	}
	if lookup(op) == nil {
		return op, fmt.Errorf("%w: 0x%04x", ErrUnsupportedOpcode, uint16(op))
	}
	return op, nil
}

func (op Opcode) String() string {
	if p := lookup(op); p != nil {
		return p.Name
	}
	return fmt.Sprintf("op(0x%02x)", uint16(op))
}

func (op Opcode) Format() Format {
	if p := lookup(op); p != nil {
		return p.Format
	}
	return FormatInvalid
}

// Widen returns the next wider variant of op: goto → goto/16 → goto/32 and
// const-string → const-string/jumbo. The second result is false when op has
// no wider form.
func Widen(op Opcode) (Opcode, bool) {
	switch op {
	case Goto:
		return Goto16, true
	case Goto16:
		return Goto32, true
	case ConstString:
		return ConstStringJumbo, true
	}
	return op, false
}

// IsWide reports whether the opcode moves a 64-bit value held in a register
// pair.
func (op Opcode) IsWide() bool {
	p := lookup(op)
	return p != nil && (p.Value == ValueLong || p.Value == ValueDouble)
}
