package builder

import (
	"fmt"

	"dexkit/internal/insn"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// EncodedMethod is a resolved method body ready for a code item.
type EncodedMethod struct {
	Registers int
	Code      []byte
	Tries     []TryItem
	Debug     []DebugEvent
	Layout    *Layout
}

// CodeUnits is the length of Code in 16-bit units.
func (e *EncodedMethod) CodeUnits() int { return len(e.Code) / 2 }

type stringTable map[string]uint32

func (t stringTable) StringIndex(s string) (uint32, bool) {
	n, ok := t[s]
	return n, ok
}

// Encode interns every string constant, resolves offsets against the
// resulting indices and writes the code array, try items and debug events.
func (m *MethodImplementation) Encode(in ref.Interner, opts ResolveOptions) (*EncodedMethod, error) {
	strs := make(stringTable)
	for idx, h := range m.order[:m.Len()] {
		i := m.locs[h].insn
		s, ok := i.Ref.(ref.String)
		if !ok || (i.Op != opcode.ConstString && i.Op != opcode.ConstStringJumbo) {
			continue
		}
		if in == nil {
			return nil, fmt.Errorf("builder: instruction %d: no interner for %v", idx, s)
		}
		n, err := in.Intern(s)
		if err != nil {
			return nil, fmt.Errorf("builder: instruction %d: %w", idx, err)
		}
		strs[string(s)] = n
	}

	lay, err := m.Resolve(strs, opts)
	if err != nil {
		return nil, err
	}

	w := insn.NewWriter(in, lay.CodeUnits)
	switchAt := m.switchAddresses()
	for idx, h := range m.order[:m.Len()] {
		loc := &m.locs[h]
		x, err := m.materialize(loc, switchAt)
		if err != nil {
			return nil, fmt.Errorf("builder: instruction %d: %w", idx, err)
		}
		if err := w.Write(x); err != nil {
			return nil, fmt.Errorf("builder: instruction %d: %w", idx, err)
		}
		if end := w.CodeUnits(); end != loc.address+loc.insn.CodeUnits() {
			return nil, fmt.Errorf("builder: instruction %d ends at 0x%04x, layout says 0x%04x",
				idx, end, loc.address+loc.insn.CodeUnits())
		}
	}

	return &EncodedMethod{
		Registers: m.registers,
		Code:      w.Bytes(),
		Tries:     m.tryItems(),
		Debug:     m.debugEvents(),
		Layout:    lay,
	}, nil
}

// materialize converts the instruction at loc to its codec form using the
// resolved addresses.
func (m *MethodImplementation) materialize(loc *location, switchAt map[int]int) (insn.Instruction, error) {
	i := loc.insn
	var branch int32
	if i.Format().HasBranch() {
		branch = int32(m.locs[m.labels[i.Target.id]].address - loc.address)
	}
	var targets []int32
	if isSwitchPayload(i.Op) {
		base := switchAt[m.order[loc.index]]
		targets = make([]int32, len(i.Targets))
		for n, t := range i.Targets {
			targets[n] = int32(m.locs[m.labels[t.id]].address - base)
		}
	}
	return i.toInsn(branch, targets)
}

// Decoded returns the codec form of every instruction with its
// resolved address. Requires resolved addresses.
func (m *MethodImplementation) Decoded() ([]insn.Decoded, error) {
	if !m.resolved {
		return nil, fmt.Errorf("builder: addresses not resolved")
	}
	switchAt := m.switchAddresses()
	out := make([]insn.Decoded, 0, m.Len())
	for idx, h := range m.order[:m.Len()] {
		loc := &m.locs[h]
		x, err := m.materialize(loc, switchAt)
		if err != nil {
			return nil, fmt.Errorf("builder: instruction %d: %w", idx, err)
		}
		out = append(out, insn.Decoded{Offset: loc.address, Insn: x})
	}
	return out, nil
}
