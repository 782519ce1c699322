// Package analysis infers the type held by every register before every
// instruction of a method. The lattice follows the usual dex verifier
// categories; reference types additionally carry their class descriptor.
package analysis

import (
	"fmt"
	"strings"
)

// Category is the coarse lattice element of a register type.
type Category uint8

const (
	Unknown Category = iota // not yet assigned
	Uninit                  // never written on some path
	Null
	One
	Boolean
	Byte
	PosByte
	Short
	PosShort
	Char
	Integer
	Float
	LongLo
	LongHi
	DoubleLo
	DoubleHi
	UninitRef  // new-instance result before its constructor ran
	UninitThis // this inside a constructor before super.<init>
	Reference
	Conflicted // incompatible values merged

	numCategories
)

var categoryNames = [numCategories]string{
	"Unknown", "Uninit", "Null", "One", "Boolean", "Byte", "PosByte", "Short", "PosShort",
	"Char", "Integer", "Float", "LongLo", "LongHi", "DoubleLo", "DoubleHi",
	"UninitRef", "UninitThis", "Reference", "Conflicted",
}

func (c Category) String() string {
	if c < numCategories {
		return categoryNames[c]
	}
	return fmt.Sprintf("category(%d)", uint8(c))
}

// IsReference reports whether registers of this category hold an object.
func (c Category) IsReference() bool {
	return c == Null || c == Reference || c == UninitRef || c == UninitThis
}

// IsWide reports whether c is half of a 64-bit pair.
func (c Category) IsWide() bool {
	return c >= LongLo && c <= DoubleHi
}

// mergeTable is symmetric; the reference rows only say that a merge
// stays a reference, the class itself comes from the ClassPath.
var mergeTable = [numCategories][numCategories]Category{
	Unknown: {Unknown, Uninit, Null, One, Boolean, Byte, PosByte, Short, PosShort, Char, Integer, Float, LongLo, LongHi, DoubleLo, DoubleHi, UninitRef, UninitThis, Reference, Conflicted},
	Uninit: {Uninit, Uninit, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	Null: {Null, Conflicted, Null, Boolean, Boolean, Byte, PosByte, Short, PosShort, Char, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Reference, Conflicted},
	One: {One, Conflicted, Boolean, One, Boolean, Byte, PosByte, Short, PosShort, Char, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	Boolean: {Boolean, Conflicted, Boolean, Boolean, Boolean, Byte, PosByte, Short, PosShort, Char, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	Byte: {Byte, Conflicted, Byte, Byte, Byte, Byte, Byte, Short, Short, Integer, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	PosByte: {PosByte, Conflicted, PosByte, PosByte, PosByte, Byte, PosByte, Short, PosShort, Char, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	Short: {Short, Conflicted, Short, Short, Short, Short, Short, Short, Short, Integer, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	PosShort: {PosShort, Conflicted, PosShort, PosShort, PosShort, Short, PosShort, Short, PosShort, Char, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	Char: {Char, Conflicted, Char, Char, Char, Integer, Char, Integer, Char, Char, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	Integer: {Integer, Conflicted, Integer, Integer, Integer, Integer, Integer, Integer, Integer, Integer, Integer, Integer, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	Float: {Float, Conflicted, Float, Float, Float, Float, Float, Float, Float, Float, Integer, Float, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	LongLo: {LongLo, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, LongLo, Conflicted, LongLo, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	LongHi: {LongHi, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, LongHi, Conflicted, LongHi, Conflicted, Conflicted, Conflicted, Conflicted},
	DoubleLo: {DoubleLo, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, LongLo, Conflicted, DoubleLo, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
	DoubleHi: {DoubleHi, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, LongHi, Conflicted, DoubleHi, Conflicted, Conflicted, Conflicted, Conflicted},
	UninitRef: {UninitRef, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, UninitRef, Conflicted, Conflicted, Conflicted},
	UninitThis: {UninitThis, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, UninitThis, Conflicted, Conflicted},
	Reference: {Reference, Conflicted, Reference, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Reference, Conflicted},
	Conflicted: {Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted, Conflicted},
}

// RegisterType is the value of one register at one program point. Type is
// the class descriptor for Reference, UninitRef and UninitThis. Site is the
// index of the new-instance that produced an UninitRef, so that two
// allocations of the same class are not confused.
type RegisterType struct {
	Category Category
	Type     string
	Site     int
}

var (
	UnknownType    = RegisterType{Category: Unknown}
	UninitType     = RegisterType{Category: Uninit}
	ConflictedType = RegisterType{Category: Conflicted}
	NullType       = RegisterType{Category: Null}
)

// Ref returns the initialized reference type of descriptor t.
func Ref(t string) RegisterType { return RegisterType{Category: Reference, Type: t} }

// Prim returns a type without a class.
func Prim(c Category) RegisterType { return RegisterType{Category: c} }

func (t RegisterType) String() string {
	switch t.Category {
	case Reference, UninitThis:
		return t.Category.String() + "," + t.Type
	case UninitRef:
		return fmt.Sprintf("UninitRef,%s@%d", t.Type, t.Site)
	}
	return t.Category.String()
}

// FromDescriptor maps a field, parameter or return descriptor to the type
// of its low register. The second result is the high half for long and
// double, and Unknown otherwise. "V" yields Unknown.
func FromDescriptor(desc string) (lo, hi RegisterType) {
	if desc == "" {
		return UnknownType, UnknownType
	}
	switch desc[0] {
	case 'Z':
		return Prim(Boolean), UnknownType
	case 'B':
		return Prim(Byte), UnknownType
	case 'S':
		return Prim(Short), UnknownType
	case 'C':
		return Prim(Char), UnknownType
	case 'I':
		return Prim(Integer), UnknownType
	case 'F':
		return Prim(Float), UnknownType
	case 'J':
		return Prim(LongLo), Prim(LongHi)
	case 'D':
		return Prim(DoubleLo), Prim(DoubleHi)
	case 'L', '[':
		return Ref(desc), UnknownType
	}
	return UnknownType, UnknownType
}

// isWideDescriptor reports whether desc takes a register pair.
func isWideDescriptor(desc string) bool { return desc == "J" || desc == "D" }

// literalType is the narrowest category that holds v.
func literalType(v int64) RegisterType {
	switch {
	case v == 0:
		return Prim(Null)
	case v == 1:
		return Prim(One)
	case v >= 2 && v <= 127:
		return Prim(PosByte)
	case v >= -128 && v < 0:
		return Prim(Byte)
	case v >= 128 && v <= 32767:
		return Prim(PosShort)
	case v >= -32768 && v < -128:
		return Prim(Short)
	case v >= 32768 && v <= 65535:
		return Prim(Char)
	}
	return Prim(Integer)
}

// componentType returns the element descriptor of an array descriptor.
func componentType(desc string) (string, bool) {
	if strings.HasPrefix(desc, "[") {
		return desc[1:], true
	}
	return "", false
}

// Merge joins a and b. Reference joins need the class hierarchy; a nil
// ClassPath merges distinct classes to java.lang.Object.
func Merge(a, b RegisterType, cp ClassPath) (RegisterType, error) {
	switch {
	case a == b, b.Category == Unknown:
		return a, nil
	case a.Category == Unknown:
		return b, nil
	}
	c := mergeTable[a.Category][b.Category]
	switch c {
	case Reference:
		switch {
		case a.Category != Reference:
			return b, nil
		case b.Category != Reference:
			return a, nil
		}
		if cp == nil {
			return Ref(objectType), nil
		}
		super, err := cp.CommonSuperclass(a.Type, b.Type)
		if err != nil {
			return ConflictedType, fmt.Errorf("%w: %v and %v: %v", ErrIncompatibleMerge, a, b, err)
		}
		return Ref(super), nil
	case UninitRef, UninitThis:
		// Same category on both sides but a different class or site.
		return ConflictedType, nil
	}
	if a.Category == c {
		return a, nil
	}
	if b.Category == c {
		return b, nil
	}
	return Prim(c), nil
}
