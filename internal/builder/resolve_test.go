package builder

import (
	"fmt"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dexkit/internal/dexfmt"
	"dexkit/internal/insn"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

type fakeStrings map[string]uint32

func (f fakeStrings) StringIndex(s string) (uint32, bool) {
	n, ok := f[s]
	return n, ok
}

func TestResolveAddressesMonotonic(t *testing.T) {
	m := NewMethodImplementation(4)
	_, err := m.AddInstruction(op(opcode.Const4, 0))
	require.NoError(t, err)
	_, err = m.AddInstruction(&Instruction{Op: opcode.Const, Registers: []int{2}, Literal: 1 << 20})
	require.NoError(t, err)
	_, err = m.AddInstruction(op(opcode.ReturnVoid))
	require.NoError(t, err)
	arrLoc, err := m.AddInstruction(&Instruction{Op: opcode.ArrayPayload, ElementWidth: 4, Elements: []int64{1, 2, 3}})
	require.NoError(t, err)
	_, err = m.InsertInstruction(0, &Instruction{Op: opcode.FillArrayData, Registers: []int{1}, Target: arrLoc.NewLabel()})
	require.NoError(t, err)

	lay, err := m.Resolve(nil, ResolveOptions{})
	require.NoError(t, err)

	prev := -1
	for _, loc := range append(m.Instructions(), m.End()) {
		addr, ok := loc.Address()
		require.True(t, ok)
		assert.Greater(t, addr, prev)
		prev = addr
		for _, l := range loc.Labels() {
			la, ok := l.Address()
			require.True(t, ok)
			assert.Equal(t, addr, la)
		}
	}
	// fill-array-data(3) const/4(1) const(3) return-void(1) = 8, payload even
	addr, _ := arrLoc.Address()
	assert.Equal(t, 8, addr)
	assert.Equal(t, 0, lay.Padding)
	assert.Equal(t, 8+arrLoc.Instruction().CodeUnits(), lay.CodeUnits)
	assert.Equal(t, lay.CodeUnits, m.CodeUnits())

	// Any edit invalidates the layout.
	_, err = m.InsertInstruction(0, op(opcode.Nop))
	require.NoError(t, err)
	_, ok := arrLoc.Address()
	assert.False(t, ok)

	lay, err = m.Resolve(nil, ResolveOptions{})
	require.NoError(t, err)
	addr, _ = arrLoc.Address()
	assert.Equal(t, 10, addr, "payload at odd address gets a nop in front")
	assert.Equal(t, 1, lay.Padding)
}

func TestJumboFixpointWidensBranches(t *testing.T) {
	m := NewMethodImplementation(1)
	strs := fakeStrings{}
	self := m.EndLabel()
	gotoLoc, err := m.AddInstruction(&Instruction{Op: opcode.Goto, Target: self})
	require.NoError(t, err)
	var consts []*Instruction
	for k := 0; k < 50; k++ {
		s := fmt.Sprintf("s%d", k)
		strs[s] = uint32(0x10000 + k)
		i := &Instruction{Op: opcode.ConstString, Registers: []int{0}, Ref: ref.String(s)}
		consts = append(consts, i)
		_, err := m.AddInstruction(i)
		require.NoError(t, err)
	}
	strs["small"] = 3
	small := &Instruction{Op: opcode.ConstString, Registers: []int{0}, Ref: ref.String("small")}
	_, err = m.AddInstruction(small)
	require.NoError(t, err)
	ret, err := m.AddInstruction(op(opcode.ReturnVoid))
	require.NoError(t, err)
	gotoLoc.Instruction().Target = ret.NewLabel()

	// Before promotion the goto spans 50*2+2+1 units and fits 10t; after
	// it spans 50*3+2+1 and needs goto/16.
	lay, err := m.Resolve(strs, ResolveOptions{})
	require.NoError(t, err)
	assert.Greater(t, lay.Passes, 2)
	assert.Equal(t, 51, lay.Widened)
	for _, i := range consts {
		assert.Equal(t, opcode.ConstStringJumbo, i.Op)
	}
	assert.Equal(t, opcode.ConstString, small.Op)
	assert.Equal(t, opcode.Goto16, gotoLoc.Instruction().Op)

	addr, _ := ret.Address()
	assert.Equal(t, 2+50*3+2, addr)

	// Widening never reverses.
	lay, err = m.Resolve(fakeStrings{"small": 3, "s0": 0}, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, lay.Passes)
	assert.Equal(t, opcode.ConstStringJumbo, consts[0].Op)
}

func TestGotoToSelfUsesGoto32(t *testing.T) {
	m := NewMethodImplementation(1)
	l := m.EndLabel()
	loc, err := m.AddInstruction(&Instruction{Op: opcode.Goto, Target: l})
	require.NoError(t, err)
	_, err = m.Resolve(nil, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, opcode.Goto32, loc.Instruction().Op)
}

func TestResolvePassCap(t *testing.T) {
	m := NewMethodImplementation(1)
	_, err := m.AddInstruction(&Instruction{Op: opcode.ConstString, Registers: []int{0}, Ref: ref.String("x")})
	require.NoError(t, err)
	_, err = m.Resolve(fakeStrings{"x": 0x20000}, ResolveOptions{MaxPasses: 1})
	assert.ErrorIs(t, err, ErrNoFixedPoint)
}

func TestResolveReportsAllConsistencyErrors(t *testing.T) {
	m := NewMethodImplementation(2)
	nops(t, m, 2)
	start, _ := m.NewLabelAt(1)
	end, _ := m.NewLabelAt(0)
	handler, _ := m.NewLabelAt(0)
	require.NoError(t, m.AddCatchAll(start, end, handler))
	other := NewMethodImplementation(1)
	_, err := m.AddInstruction(&Instruction{Op: opcode.PackedSwitchPayload, Targets: []Label{start}})
	require.NoError(t, err)
	_, err = m.AddInstruction(&Instruction{Op: opcode.SparseSwitchPayload, Keys: []int32{1}, Targets: []Label{start}})
	require.NoError(t, err)
	// Corrupt an instruction after it was validated.
	m.Instruction(0).Op = opcode.Goto
	m.Instruction(0).Target = other.EndLabel()

	_, err = m.Resolve(nil, ResolveOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInconsistent)
	var me *multierror.Error
	require.ErrorAs(t, err, &me)
	assert.Len(t, me.Errors, 4)
	assert.False(t, m.Resolved())
}

func TestConditionalBranchOverflowIsAnError(t *testing.T) {
	m := NewMethodImplementation(1)
	end := m.EndLabel()
	_, err := m.AddInstruction(&Instruction{Op: opcode.IfEqz, Registers: []int{0}, Target: end})
	require.NoError(t, err)
	for k := 0; k < 11000; k++ {
		_, err := m.AddInstruction(&Instruction{Op: opcode.Const, Registers: []int{0}, Literal: int64(k)})
		require.NoError(t, err)
	}
	_, err = m.AddInstruction(op(opcode.ReturnVoid))
	require.NoError(t, err)
	// end was bound before the branch was added, so it names the branch
	// itself; point it at the return instead.
	ret, _ := m.Location(m.Len() - 1)
	m.Instruction(0).Target = ret.NewLabel()

	_, err = m.Resolve(nil, ResolveOptions{})
	var ce *ConsistencyError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, 0, ce.Index)
}

func TestTryEndingAtMethodEnd(t *testing.T) {
	m := NewMethodImplementation(2)
	_, err := m.AddInstruction(op(opcode.MoveException, 1)) // handler
	require.NoError(t, err)
	_, err = m.AddInstruction(&Instruction{Op: opcode.ConstString, Registers: []int{0}, Ref: ref.String("a")})
	require.NoError(t, err)
	_, err = m.AddInstruction(op(opcode.ReturnVoid))
	require.NoError(t, err)
	start, _ := m.NewLabelAt(1)
	handler, _ := m.NewLabelAt(0)
	require.NoError(t, m.AddCatchAll(start, m.EndLabel(), handler))

	pool := ref.NewPool()
	enc, err := m.Encode(pool, ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, enc.Tries, 1)
	assert.Equal(t, 1, enc.Tries[0].Start)
	assert.Equal(t, enc.CodeUnits()-1, enc.Tries[0].Count)
	assert.Equal(t, []HandlerItem{{Type: "", Address: 0}}, enc.Tries[0].Handlers)
	assert.Equal(t, 4, enc.CodeUnits())
	assert.Equal(t, []byte{0x0e, 0x00}, enc.Code[len(enc.Code)-2:], "no trailing padding after return-void")
}

func TestTryItemsSplitOverlaps(t *testing.T) {
	m := NewMethodImplementation(1)
	nops(t, m, 7)
	at := func(i int) Label {
		l, err := m.NewLabelAt(i)
		require.NoError(t, err)
		return l
	}
	h := at(6)
	require.NoError(t, m.AddCatch("LA;", at(0), at(4), h))
	require.NoError(t, m.AddCatch("LB;", at(2), at(6), h))
	s, e := at(5), at(6)
	require.NoError(t, m.AddCatchAll(s, e, h))
	require.NoError(t, m.AddCatch("LC;", s, e, h))
	require.Len(t, m.Tries(), 3)

	enc, err := m.Encode(nil, ResolveOptions{})
	require.NoError(t, err)
	a := HandlerItem{Type: "LA;", Address: 6}
	b := HandlerItem{Type: "LB;", Address: 6}
	all := HandlerItem{Type: "", Address: 6}
	assert.Equal(t, []TryItem{
		{Start: 0, Count: 2, Handlers: []HandlerItem{a}},
		{Start: 2, Count: 2, Handlers: []HandlerItem{a, b}},
		{Start: 4, Count: 1, Handlers: []HandlerItem{b}},
		{Start: 5, Count: 1, Handlers: []HandlerItem{b, all}},
	}, enc.Tries)
}

// switchMethod is const/4, packed-switch, goto, return-void x2 and the
// switch table, laid out so the table needs an alignment nop.
func switchMethod(t *testing.T) []byte {
	t.Helper()
	code, err := insn.Encode([]insn.Instruction{
		insn.Insn11n{Op: opcode.Const4, A: 0, Literal: 1},
		insn.Insn31t{Op: opcode.PackedSwitch, A: 0, Offset: 7},
		insn.Insn10t{Op: opcode.Goto, Offset: 2},
		insn.Insn10x{Op: opcode.ReturnVoid},
		insn.Insn10x{Op: opcode.ReturnVoid},
		insn.PackedSwitchPayload{FirstKey: 0, Targets: []int32{4, 5}},
	}, nil)
	require.NoError(t, err)
	require.Len(t, code, 2*(1+3+1+1+1+1+8))
	return code
}

func TestRoundTripThroughBuilder(t *testing.T) {
	code := switchMethod(t)
	m, err := FromCode(1, code, nil, dexfmt.Options{})
	require.NoError(t, err)
	assert.Equal(t, 6, m.Len(), "alignment nop is not an instruction")
	assert.True(t, m.Resolved())

	enc, err := m.Encode(nil, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, code, enc.Code)

	// Shift everything by one unit: the table becomes aligned on its own
	// and every relative offset must still land on the same instruction.
	_, err = m.InsertInstruction(0, op(opcode.Nop))
	require.NoError(t, err)
	enc, err = m.Encode(nil, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, len(code), len(enc.Code))

	seq, err := insn.DecodeAll(enc.Code, nil, dexfmt.Options{})
	require.NoError(t, err)
	require.Len(t, seq, 7)
	sw := seq[2].Insn.(insn.Insn31t)
	assert.Equal(t, 2, seq[2].Offset)
	assert.Equal(t, int32(6), sw.Offset)
	table := seq[6].Insn.(insn.PackedSwitchPayload)
	assert.Equal(t, 8, seq[6].Offset)
	assert.Equal(t, []int32{4, 5}, table.Targets)
	assert.Equal(t, insn.Insn10t{Op: opcode.Goto, Offset: 2}, seq[3].Insn)
}

func TestFromDecodedLabelsAndDebugEvents(t *testing.T) {
	m, err := FromCode(1, switchMethod(t), nil, dexfmt.Options{})
	require.NoError(t, err)

	sw := m.Instruction(1)
	assert.Equal(t, opcode.PackedSwitchPayload, sw.Target.Location().Instruction().Op)
	table := m.Instruction(5)
	require.Len(t, table.Targets, 2)
	assert.Equal(t, 3, table.Targets[0].Index())
	assert.Equal(t, 4, table.Targets[1].Index())
	assert.Equal(t, 4, m.Instruction(2).Target.Index())

	require.NoError(t, m.ApplyDebugEvents([]DebugEvent{
		{Address: 0, Item: LineNumber{Line: 1}},
		{Address: 2, Item: LineNumber{Line: 2}}, // inside packed-switch
		{Address: 4, Item: PrologueEnd{}},
		{Address: 16, Item: LineNumber{Line: 9}}, // method end
	}))
	loc, _ := m.Location(2)
	assert.Equal(t, []DebugItem{LineNumber{Line: 2}, PrologueEnd{}}, loc.DebugItems())
	assert.Equal(t, []DebugItem{LineNumber{Line: 9}}, m.End().DebugItems())
	assert.Error(t, m.ApplyDebugEvents([]DebugEvent{{Address: 17, Item: PrologueEnd{}}}))

	l, err := m.LabelAt(8)
	require.NoError(t, err)
	assert.Equal(t, 5, l.Index())
	_, err = m.LabelAt(3)
	assert.Error(t, err)

	enc, err := m.Encode(nil, ResolveOptions{})
	require.NoError(t, err)
	assert.Equal(t, []DebugEvent{
		{Address: 0, Item: LineNumber{Line: 1}},
		{Address: 4, Item: LineNumber{Line: 2}},
		{Address: 4, Item: PrologueEnd{}},
		{Address: 16, Item: LineNumber{Line: 9}},
	}, enc.Debug)
}

func TestFromDecodedRejectsOpaqueUnits(t *testing.T) {
	_, err := FromDecoded(1, []insn.Decoded{{Offset: 0, Insn: insn.Unknown{Unit: 0x3e}}})
	assert.ErrorIs(t, err, ErrUnbuildable)
}

func TestEncodeInternsReferences(t *testing.T) {
	pool := ref.NewPool()
	m := NewMethodImplementation(3)
	_, err := m.AddInstruction(&Instruction{Op: opcode.NewInstance, Registers: []int{0}, Ref: ref.Type("Ljava/lang/Object;")})
	require.NoError(t, err)
	_, err = m.AddInstruction(&Instruction{Op: opcode.InvokeDirect, Registers: []int{0},
		Ref: ref.Method{Class: "Ljava/lang/Object;", Name: "<init>", Return: "V"}})
	require.NoError(t, err)
	_, err = m.AddInstruction(&Instruction{Op: opcode.ConstString, Registers: []int{1}, Ref: ref.String("hello")})
	require.NoError(t, err)
	_, err = m.AddInstruction(op(opcode.ReturnVoid))
	require.NoError(t, err)

	enc, err := m.Encode(pool, ResolveOptions{})
	require.NoError(t, err)
	seq, err := insn.DecodeAll(enc.Code, pool, dexfmt.Options{})
	require.NoError(t, err)
	require.Len(t, seq, 4)
	assert.Equal(t, ref.Type("Ljava/lang/Object;"), insn.Reference(seq[0].Insn))
	assert.Equal(t, ref.String("hello"), insn.Reference(seq[2].Insn))
	assert.Equal(t, 3, enc.Registers)
}
