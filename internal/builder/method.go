// Package builder holds the mutable form of a method body. Instructions sit
// at locations kept in an arena and addressed by stable handles; branch and
// try targets are Labels that follow a location through inserts, removals
// and merges. Resolve assigns code-unit addresses and widens instructions
// until they fit; Encode writes the result back out.
//
// A MethodImplementation assumes exclusive access. Build separate methods
// on separate goroutines if needed.
package builder

import (
	"fmt"
	"slices"
)

// State is the lifecycle of a location.
type State uint8

const (
	StatePending  State = iota // hosts labels and debug items only
	StateOccupied              // holds exactly one instruction
	StateRemoved               // merged away, no longer addressable
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateOccupied:
		return "occupied"
	case StateRemoved:
		return "removed"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

type location struct {
	state   State
	insn    *Instruction
	labels  []int // label ids bound here
	debug   []DebugItem
	index   int // position in order, -1 once removed
	address int
}

// MethodImplementation is a method body under construction. The location
// sequence always ends with a pending end-of-method location, so labels and
// try ranges can refer to the address just past the last instruction.
type MethodImplementation struct {
	registers int
	locs      []location
	order     []int // live handles in sequence
	labels    []int // label id -> handle
	tries     []TryBlock

	resolved  bool
	codeUnits int
}

// NewMethodImplementation returns an empty method using registers registers.
func NewMethodImplementation(registers int) *MethodImplementation {
	m := &MethodImplementation{registers: registers}
	h := m.newLocation()
	m.locs[h].index = 0
	m.order = []int{h}
	return m
}

func (m *MethodImplementation) newLocation() int {
	m.locs = append(m.locs, location{state: StatePending, index: -1})
	return len(m.locs) - 1
}

func (m *MethodImplementation) RegisterCount() int     { return m.registers }
func (m *MethodImplementation) SetRegisterCount(n int) { m.registers = n }

// Len returns the number of instructions.
func (m *MethodImplementation) Len() int { return len(m.order) - 1 }

// Resolved reports whether addresses reflect the current instruction list.
func (m *MethodImplementation) Resolved() bool { return m.resolved }

// CodeUnits is the resolved size of the method. Valid only when Resolved.
func (m *MethodImplementation) CodeUnits() int { return m.codeUnits }

// Location returns the location at index; index Len() is the end location.
func (m *MethodImplementation) Location(index int) (Location, error) {
	if index < 0 || index >= len(m.order) {
		return Location{}, fmt.Errorf("%w: %d of %d", ErrIndex, index, m.Len())
	}
	return Location{m: m, h: m.order[index]}, nil
}

// End returns the end-of-method location.
func (m *MethodImplementation) End() Location {
	return Location{m: m, h: m.order[len(m.order)-1]}
}

// Instruction returns the instruction at index, or nil when out of range.
func (m *MethodImplementation) Instruction(index int) *Instruction {
	if index < 0 || index >= m.Len() {
		return nil
	}
	return m.locs[m.order[index]].insn
}

// Instructions returns the occupied locations in order.
func (m *MethodImplementation) Instructions() []Location {
	out := make([]Location, m.Len())
	for n := range out {
		out[n] = Location{m: m, h: m.order[n]}
	}
	return out
}

func (m *MethodImplementation) reindex(from int) {
	for k := from; k < len(m.order); k++ {
		m.locs[m.order[k]].index = k
	}
}

func (m *MethodImplementation) invalidate() { m.resolved = false }

// AddInstruction appends i. The instruction takes over the end location,
// so labels created with EndLabel before the call now point at i.
func (m *MethodImplementation) AddInstruction(i *Instruction) (Location, error) {
	if err := m.validate(i); err != nil {
		return Location{}, err
	}
	end := m.order[len(m.order)-1]
	m.locs[end].state = StateOccupied
	m.locs[end].insn = i
	h := m.newLocation()
	m.order = append(m.order, h)
	m.locs[h].index = len(m.order) - 1
	m.invalidate()
	return Location{m: m, h: end}, nil
}

// InsertInstruction places i before the location at index. Labels and
// debug items stay with the location that was at index.
func (m *MethodImplementation) InsertInstruction(index int, i *Instruction) (Location, error) {
	if index < 0 || index > m.Len() {
		return Location{}, fmt.Errorf("%w: insert at %d of %d", ErrIndex, index, m.Len())
	}
	if err := m.validate(i); err != nil {
		return Location{}, err
	}
	h := m.newLocation()
	m.locs[h].state = StateOccupied
	m.locs[h].insn = i
	m.order = slices.Insert(m.order, index, h)
	m.reindex(index)
	m.invalidate()
	return Location{m: m, h: h}, nil
}

// InsertBefore places i immediately before the location at target.
func (m *MethodImplementation) InsertBefore(target Label, i *Instruction) (Location, error) {
	loc, err := m.locationOf(target)
	if err != nil {
		return Location{}, err
	}
	return m.InsertInstruction(loc.Index(), i)
}

// RemoveInstruction deletes the instruction at index. Its labels and debug
// items move to the following location.
func (m *MethodImplementation) RemoveInstruction(index int) error {
	if index < 0 || index >= m.Len() {
		return fmt.Errorf("%w: remove %d of %d", ErrIndex, index, m.Len())
	}
	return m.Merge(Location{m: m, h: m.order[index]}, Location{m: m, h: m.order[index+1]})
}

// ReplaceInstruction swaps in i at index, keeping the location's labels.
func (m *MethodImplementation) ReplaceInstruction(index int, i *Instruction) error {
	if index < 0 || index >= m.Len() {
		return fmt.Errorf("%w: replace %d of %d", ErrIndex, index, m.Len())
	}
	if err := m.validate(i); err != nil {
		return err
	}
	m.locs[m.order[index]].insn = i
	m.invalidate()
	return nil
}

// SwapInstructions exchanges the instructions at a and b. Labels and debug
// items stay where they are.
func (m *MethodImplementation) SwapInstructions(a, b int) error {
	if a < 0 || a >= m.Len() || b < 0 || b >= m.Len() {
		return fmt.Errorf("%w: swap %d and %d of %d", ErrIndex, a, b, m.Len())
	}
	la, lb := &m.locs[m.order[a]], &m.locs[m.order[b]]
	la.insn, lb.insn = lb.insn, la.insn
	m.invalidate()
	return nil
}

// Merge folds from into into. Every label bound to from now resolves to
// into, and from's debug items are placed ahead of into's own. An
// instruction held by from is dropped with it. The end location cannot be
// merged away.
func (m *MethodImplementation) Merge(from, into Location) error {
	if from.m != m || into.m != m {
		return ErrForeignLabel
	}
	f, t := &m.locs[from.h], &m.locs[into.h]
	if f.state == StateRemoved || t.state == StateRemoved {
		return ErrRemoved
	}
	if from.h == into.h {
		return fmt.Errorf("builder: merge of location %d into itself", f.index)
	}
	if from.IsEnd() {
		return ErrEndLocation
	}

	debug := make([]DebugItem, 0, len(f.debug)+len(t.debug))
	debug = append(debug, f.debug...)
	t.debug = append(debug, t.debug...)

	for _, id := range f.labels {
		m.labels[id] = into.h
	}
	t.labels = append(f.labels, t.labels...)

	idx := f.index
	m.order = slices.Delete(m.order, idx, idx+1)
	m.reindex(idx)
	*f = location{state: StateRemoved, index: -1}
	m.invalidate()
	return nil
}

// NewLabelAt binds a new label to the location at index (Len() for the end).
func (m *MethodImplementation) NewLabelAt(index int) (Label, error) {
	loc, err := m.Location(index)
	if err != nil {
		return Label{}, err
	}
	return loc.NewLabel(), nil
}

// EndLabel binds a new label to the end-of-method location.
func (m *MethodImplementation) EndLabel() Label { return m.End().NewLabel() }

// LabelAt binds a label to the location resolved at address. The end of
// the method is addressable. Requires resolved addresses.
func (m *MethodImplementation) LabelAt(address int) (Label, error) {
	if !m.resolved {
		return Label{}, fmt.Errorf("builder: label at 0x%04x: addresses not resolved", address)
	}
	k, ok := slices.BinarySearchFunc(m.order, address, func(h, addr int) int {
		return m.locs[h].address - addr
	})
	if !ok {
		return Label{}, fmt.Errorf("builder: no instruction starts at 0x%04x", address)
	}
	return Location{m: m, h: m.order[k]}.NewLabel(), nil
}

func (m *MethodImplementation) newLabel(h int) Label {
	id := len(m.labels)
	m.labels = append(m.labels, h)
	m.locs[h].labels = append(m.locs[h].labels, id)
	return Label{m: m, id: id}
}

func (m *MethodImplementation) locationOf(l Label) (Location, error) {
	if l.m == nil {
		return Location{}, ErrInvalidLabel
	}
	if l.m != m {
		return Location{}, ErrForeignLabel
	}
	h := m.labels[l.id]
	if m.locs[h].state == StateRemoved {
		return Location{}, fmt.Errorf("%w: %v", ErrRemoved, l)
	}
	return Location{m: m, h: h}, nil
}

// Location is a handle to one position in a method body.
type Location struct {
	m *MethodImplementation
	h int
}

func (l Location) Method() *MethodImplementation { return l.m }

func (l Location) State() State { return l.m.locs[l.h].state }

// Index is the position in the instruction list, -1 once removed.
func (l Location) Index() int { return l.m.locs[l.h].index }

func (l Location) IsEnd() bool { return l.m.order[len(l.m.order)-1] == l.h }

func (l Location) Instruction() *Instruction { return l.m.locs[l.h].insn }

// Address returns the resolved code-unit address. The second result is
// false when the method changed since the last Resolve.
func (l Location) Address() (int, bool) {
	loc := &l.m.locs[l.h]
	if !l.m.resolved || loc.state == StateRemoved {
		return 0, false
	}
	return loc.address, true
}

func (l Location) Labels() []Label {
	ids := l.m.locs[l.h].labels
	out := make([]Label, len(ids))
	for n, id := range ids {
		out[n] = Label{m: l.m, id: id}
	}
	return out
}

func (l Location) NewLabel() Label { return l.m.newLabel(l.h) }

func (l Location) DebugItems() []DebugItem {
	return slices.Clone(l.m.locs[l.h].debug)
}

func (l Location) AddDebugItem(d DebugItem) error {
	loc := &l.m.locs[l.h]
	if loc.state == StateRemoved {
		return ErrRemoved
	}
	loc.debug = append(loc.debug, d)
	return nil
}

func (l Location) RemoveDebugItem(index int) error {
	loc := &l.m.locs[l.h]
	if index < 0 || index >= len(loc.debug) {
		return fmt.Errorf("builder: debug item %d of %d", index, len(loc.debug))
	}
	loc.debug = slices.Delete(loc.debug, index, index+1)
	return nil
}

// Label names a location by identity. It stays valid across edits
// elsewhere in the method and follows its location through merges.
type Label struct {
	m  *MethodImplementation
	id int
}

func (l Label) Valid() bool { return l.m != nil }

func (l Label) Method() *MethodImplementation { return l.m }

// Location returns the labeled location. The label must be valid.
func (l Label) Location() Location { return Location{m: l.m, h: l.m.labels[l.id]} }

func (l Label) Index() int { return l.Location().Index() }

func (l Label) Address() (int, bool) { return l.Location().Address() }

func (l Label) String() string {
	if l.m == nil {
		return ":<unbound>"
	}
	return fmt.Sprintf(":L%d", l.id)
}
