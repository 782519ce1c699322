package opcode

import "fmt"

// Format is a fixed instruction encoding shape. The name follows the usual
// "<units><registers><kind>" convention, e.g. 22c is two code units, two
// registers and a constant-pool reference.
type Format uint8

const (
	FormatInvalid Format = iota
	Format10t
	Format10x
	Format11n
	Format11x
	Format12x
	Format20t
	Format21c
	Format21ih
	Format21lh
	Format21s
	Format21t
	Format22b
	Format22c
	Format22s
	Format22t
	Format22x
	Format23x
	Format30t
	Format31c
	Format31i
	Format31t
	Format32x
	Format35c
	Format3rc
	Format45cc
	Format4rcc
	Format51l
	FormatPackedSwitchPayload
	FormatSparseSwitchPayload
	FormatArrayPayload
	FormatUnknown // opaque pass-through code unit

	numFormats
)

type formatInfo struct {
	name      string
	units     int // -1 = variable (payloads)
	branch    bool
	reference bool
}

var formats = [numFormats]formatInfo{
	FormatInvalid:             {"invalid", 0, false, false},
	Format10t:                 {"10t", 1, true, false},
	Format10x:                 {"10x", 1, false, false},
	Format11n:                 {"11n", 1, false, false},
	Format11x:                 {"11x", 1, false, false},
	Format12x:                 {"12x", 1, false, false},
	Format20t:                 {"20t", 2, true, false},
	Format21c:                 {"21c", 2, false, true},
	Format21ih:                {"21ih", 2, false, false},
	Format21lh:                {"21lh", 2, false, false},
	Format21s:                 {"21s", 2, false, false},
	Format21t:                 {"21t", 2, true, false},
	Format22b:                 {"22b", 2, false, false},
	Format22c:                 {"22c", 2, false, true},
	Format22s:                 {"22s", 2, false, false},
	Format22t:                 {"22t", 2, true, false},
	Format22x:                 {"22x", 2, false, false},
	Format23x:                 {"23x", 2, false, false},
	Format30t:                 {"30t", 3, true, false},
	Format31c:                 {"31c", 3, false, true},
	Format31i:                 {"31i", 3, false, false},
	Format31t:                 {"31t", 3, true, false},
	Format32x:                 {"32x", 3, false, false},
	Format35c:                 {"35c", 3, false, true},
	Format3rc:                 {"3rc", 3, false, true},
	Format45cc:                {"45cc", 4, false, true},
	Format4rcc:                {"4rcc", 4, false, true},
	Format51l:                 {"51l", 5, false, false},
	FormatPackedSwitchPayload: {"packed-switch-payload", -1, false, false},
	FormatSparseSwitchPayload: {"sparse-switch-payload", -1, false, false},
	FormatArrayPayload:        {"array-payload", -1, false, false},
	FormatUnknown:             {"unknown", 1, false, false},
}

func (f Format) String() string {
	if f < numFormats {
		return formats[f].name
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// CodeUnits returns the fixed size of the format in 16-bit code units, or -1
// for payload formats whose size depends on their element count.
func (f Format) CodeUnits() int {
	if f < numFormats {
		return formats[f].units
	}
	return 0
}

// IsPayload reports whether f is one of the 0x00-prefixed data tables.
func (f Format) IsPayload() bool {
	return f == FormatPackedSwitchPayload || f == FormatSparseSwitchPayload || f == FormatArrayPayload
}

// HasBranch reports whether the format carries a relative code offset.
func (f Format) HasBranch() bool {
	return f < numFormats && formats[f].branch
}

// HasReference reports whether the format carries a pool index.
func (f Format) HasReference() bool {
	return f < numFormats && formats[f].reference
}

// BranchRange returns the inclusive signed range of the relative offset
// a branch format can hold.
func (f Format) BranchRange() (min, max int64) {
	switch f {
	case Format10t:
		return -128, 127
	case Format20t, Format21t, Format22t:
		return -32768, 32767
	case Format30t, Format31t:
		return -1 << 31, 1<<31 - 1
	}
	return 0, 0
}

// PayloadCodeUnits returns the size of a payload table in code units.
// For switch payloads count is the number of targets and width is ignored;
// for array payloads width is the element width in bytes.
func PayloadCodeUnits(f Format, width, count int) int {
	switch f {
	case FormatPackedSwitchPayload:
		return 4 + count*2
	case FormatSparseSwitchPayload:
		return 2 + count*4
	case FormatArrayPayload:
		return (count*width+1)/2 + 4
	}
	return f.CodeUnits()
}
