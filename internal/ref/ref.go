// Package ref models the pool items instructions point at and the resolver
// interfaces the codec uses to turn indices into values and back.
package ref

import (
	"errors"
	"fmt"
	"strings"

	"dexkit/internal/opcode"
)

var (
	ErrIndexOutOfRange = errors.New("ref: index out of range")
	ErrKindMismatch    = errors.New("ref: reference kind mismatch")
)

// Reference is a resolved pool item.
type Reference interface {
	Kind() opcode.ReferenceKind
	String() string
}

// Resolver maps a pool index to its value; used when decoding.
type Resolver interface {
	Resolve(kind opcode.ReferenceKind, index uint32) (Reference, error)
}

// Interner maps a value back to its pool index; used when encoding.
type Interner interface {
	Intern(r Reference) (uint32, error)
}

// StringIndexer reports the index a string has (or will have) in the final
// string table. The jumbo fixup uses it to decide which const-string
// instructions need the 32-bit form.
type StringIndexer interface {
	StringIndex(s string) (uint32, bool)
}

// String is a string literal reference.
type String string

func (String) Kind() opcode.ReferenceKind { return opcode.RefString }
func (s String) String() string { return fmt.Sprintf("%q", string(s)) }

// Type is a type descriptor such as "Ljava/lang/Object;" or "[I".
type Type string

func (Type) Kind() opcode.ReferenceKind { return opcode.RefType }
func (t Type) String() string { return string(t) }

// Field is a field reference.
type Field struct {
	Class string
	Name  string
	Type  string
}

func (Field) Kind() opcode.ReferenceKind { return opcode.RefField }
func (f Field) String() string { return f.Class + "->" + f.Name + ":" + f.Type }

// Proto is a method prototype.
type Proto struct {
	Params []string
	Return string
}

func (Proto) Kind() opcode.ReferenceKind { return opcode.RefMethodProto }
func (p Proto) String() string {
	return "(" + strings.Join(p.Params, "") + ")" + p.Return
}

// Method is a method reference.
type Method struct {
	Class  string
	Name   string
	Params []string
	Return string
}

func (Method) Kind() opcode.ReferenceKind { return opcode.RefMethod }
func (m Method) String() string {
	return m.Class + "->" + m.Name + "(" + strings.Join(m.Params, "") + ")" + m.Return
}

// Proto returns the method's prototype.
func (m Method) Proto() Proto { return Proto{Params: m.Params, Return: m.Return} }

// MethodHandleType is the handle kind from the dex method_handle_item.
type MethodHandleType uint16

const (
	HandleStaticPut MethodHandleType = iota
	HandleStaticGet
	HandleInstancePut
	HandleInstanceGet
	HandleInvokeStatic
	HandleInvokeInstance
	HandleInvokeConstructor
	HandleInvokeDirect
	HandleInvokeInterface
)

// MethodHandle is a method handle reference. Member is the field or method
// the handle targets.
type MethodHandle struct {
	Type   MethodHandleType
	Member Reference
}

func (MethodHandle) Kind() opcode.ReferenceKind { return opcode.RefMethodHandle }
func (h MethodHandle) String() string {
	member := "<nil>"
	if h.Member != nil {
		member = h.Member.String()
	}
	return fmt.Sprintf("handle(%d)%s", h.Type, member)
}

// CallSite is an invoke-custom call site.
type CallSite struct {
	Name       string
	Bootstrap  MethodHandle
	MethodName string
	Proto      Proto
}

func (CallSite) Kind() opcode.ReferenceKind { return opcode.RefCallSite }
func (c CallSite) String() string {
	return c.Name + "(" + c.MethodName + c.Proto.String() + ")@" + c.Bootstrap.String()
}

// Equal compares two references by kind and canonical text.
func Equal(a, b Reference) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Kind() == b.Kind() && a.String() == b.String()
}

// Key returns a map key that identifies r within its pool.
func Key(r Reference) string {
	return r.Kind().String() + ":" + r.String()
}

// Index is a reference that has not been resolved against a pool. Decoding
// without a Resolver yields these, and the writer emits the index as is.
type Index struct {
	RefKind opcode.ReferenceKind
	Value   uint32
}

func (i Index) Kind() opcode.ReferenceKind { return i.RefKind }
func (i Index) String() string { return fmt.Sprintf("%s@%d", i.RefKind, i.Value) }
