package builder

import (
	"fmt"
	"sort"
)

// DebugItem is a debug-info marker that occurs at a location's address.
type DebugItem interface {
	debugItem()
	String() string
}

type LineNumber struct{ Line int }

type StartLocal struct {
	Register  int
	Name      string
	Type      string
	Signature string
}

type EndLocal struct{ Register int }

type RestartLocal struct{ Register int }

type PrologueEnd struct{}

type EpilogueBegin struct{}

type SetSourceFile struct{ Name string }

func (LineNumber) debugItem()    {}
func (StartLocal) debugItem()    {}
func (EndLocal) debugItem()      {}
func (RestartLocal) debugItem()  {}
func (PrologueEnd) debugItem()   {}
func (EpilogueBegin) debugItem() {}
func (SetSourceFile) debugItem() {}

func (d LineNumber) String() string { return fmt.Sprintf(".line %d", d.Line) }

func (d StartLocal) String() string {
	s := fmt.Sprintf(".local v%d, %q:%s", d.Register, d.Name, d.Type)
	if d.Signature != "" {
		s += fmt.Sprintf(", %q", d.Signature)
	}
	return s
}

func (d EndLocal) String() string      { return fmt.Sprintf(".end local v%d", d.Register) }
func (d RestartLocal) String() string  { return fmt.Sprintf(".restart local v%d", d.Register) }
func (PrologueEnd) String() string     { return ".prologue" }
func (EpilogueBegin) String() string   { return ".epilogue" }
func (d SetSourceFile) String() string { return fmt.Sprintf(".source %q", d.Name) }

// DebugEvent is a debug item at a code-unit address, as produced by an
// external debug-info decoder and by Encode.
type DebugEvent struct {
	Address int
	Item    DebugItem
}

// ApplyDebugEvents attaches pre-decoded debug events to locations. An event
// whose address falls inside an instruction goes to the next location;
// events keep their relative order per location. Requires resolved
// addresses, as left by FromDecoded or Resolve.
func (m *MethodImplementation) ApplyDebugEvents(events []DebugEvent) error {
	if !m.resolved {
		return fmt.Errorf("builder: debug events need resolved addresses")
	}
	for n, ev := range events {
		if ev.Item == nil {
			return fmt.Errorf("builder: debug event %d has no item", n)
		}
		if ev.Address < 0 || ev.Address > m.codeUnits {
			return fmt.Errorf("builder: debug event %d at 0x%04x is outside the method (0x%04x units)", n, ev.Address, m.codeUnits)
		}
		k := sort.Search(len(m.order), func(k int) bool {
			return m.locs[m.order[k]].address >= ev.Address
		})
		loc := &m.locs[m.order[k]]
		loc.debug = append(loc.debug, ev.Item)
	}
	return nil
}

// debugEvents lists every debug item with its resolved address.
func (m *MethodImplementation) debugEvents() []DebugEvent {
	var out []DebugEvent
	for _, h := range m.order {
		loc := &m.locs[h]
		for _, d := range loc.debug {
			out = append(out, DebugEvent{Address: loc.address, Item: d})
		}
	}
	return out
}
