package analysis

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dexkit/internal/builder"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

const (
	baseType = "Lfoo/Base;"
	xType    = "Lfoo/X;"
	yType    = "Lfoo/Y;"
)

func testClassPath() *StaticClassPath {
	return NewStaticClassPath(
		Class{Name: baseType},
		Class{Name: xType, Super: baseType},
		Class{Name: yType, Super: baseType},
		Class{Name: "Lfoo/Err;", Super: throwableType},
	)
}

// line is one instruction of a test method. target and cases name the
// labels of other lines and are bound once every line has been added.
type line struct {
	label  string
	ins    *builder.Instruction
	target string
	cases  []string
}

func in(op opcode.Opcode, regs ...int) *builder.Instruction {
	return &builder.Instruction{Op: op, Registers: regs}
}

func withRef(i *builder.Instruction, r ref.Reference) *builder.Instruction {
	i.Ref = r
	return i
}

func lit(i *builder.Instruction, v int64) *builder.Instruction {
	i.Literal = v
	return i
}

func assemble(t *testing.T, regs int, lines ...line) *builder.MethodImplementation {
	t.Helper()
	m := builder.NewMethodImplementation(regs)
	index := make(map[string]int)
	for n, l := range lines {
		if l.label != "" {
			index[l.label] = n
		}
		ins := *l.ins
		if l.target != "" {
			ins.Target = m.EndLabel()
		}
		for range l.cases {
			ins.Targets = append(ins.Targets, m.EndLabel())
		}
		_, err := m.AddInstruction(&ins)
		require.NoError(t, err, "line %d %v", n, l.ins.Op)
	}
	for n, l := range lines {
		if l.target == "" && len(l.cases) == 0 {
			continue
		}
		ins := *m.Instruction(n)
		if l.target != "" {
			to, ok := index[l.target]
			require.True(t, ok, "label %q", l.target)
			lbl, err := m.NewLabelAt(to)
			require.NoError(t, err)
			ins.Target = lbl
		}
		ins.Targets = nil
		for _, c := range l.cases {
			lbl, err := m.NewLabelAt(index[c])
			require.NoError(t, err)
			ins.Targets = append(ins.Targets, lbl)
		}
		require.NoError(t, m.ReplaceInstruction(n, &ins))
	}
	return m
}

func static(params ...string) MethodInfo {
	return MethodInfo{Class: "Lfoo/T;", Name: "m", Params: params, Return: "V", Static: true}
}

func mustAnalyze(t *testing.T, m *builder.MethodImplementation, mi MethodInfo) *Result {
	t.Helper()
	res, err := Analyze(m, mi, testClassPath(), Options{})
	require.NoError(t, err)
	return res
}

func before(t *testing.T, res *Result, index, reg int) RegisterType {
	t.Helper()
	rt, ok := res.TypeBefore(index, reg)
	require.True(t, ok, "no state before %d", index)
	return rt
}

func TestInstanceOfNarrowing(t *testing.T) {
	// v1 is the parameter; A is the fall-through, B the branch target.
	build := func(branch opcode.Opcode) *builder.MethodImplementation {
		return assemble(t, 2,
			line{ins: withRef(in(opcode.InstanceOf, 0, 1), ref.Type(xType))},
			line{ins: in(branch, 0), target: "B"},
			line{ins: in(opcode.ReturnVoid)},
			line{label: "B", ins: in(opcode.ReturnVoid)},
		)
	}

	res := mustAnalyze(t, build(opcode.IfEqz), static(baseType))
	assert.Equal(t, Ref(xType), before(t, res, 2, 1), "if-eqz narrows the fall-through")
	assert.Equal(t, Ref(baseType), before(t, res, 3, 1), "if-eqz target keeps the declared type")

	res = mustAnalyze(t, build(opcode.IfNez), static(baseType))
	assert.Equal(t, Ref(baseType), before(t, res, 2, 1))
	assert.Equal(t, Ref(xType), before(t, res, 3, 1), "if-nez narrows the target")
}

func TestNarrowingThroughCopy(t *testing.T) {
	tests := []struct {
		name   string
		move   []int // move-object vA, vB
		tested int
		copied int
		regs   int
	}{
		// copy of the parameter, then test the parameter
		{"copy-from-tested", []int{1, 2}, 2, 1, 3},
		// parameter copied into the tested register
		{"copy-into-tested", []int{1, 2}, 1, 2, 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for _, branch := range []opcode.Opcode{opcode.IfEqz, opcode.IfNez} {
				m := assemble(t, tt.regs,
					line{ins: in(opcode.MoveObject, tt.move...)},
					line{ins: withRef(in(opcode.InstanceOf, 0, tt.tested), ref.Type(xType))},
					line{ins: in(branch, 0), target: "B"},
					line{ins: in(opcode.ReturnVoid)},
					line{label: "B", ins: in(opcode.ReturnVoid)},
				)
				res := mustAnalyze(t, m, static(baseType))
				narrowed, plain := 3, 4
				if branch == opcode.IfNez {
					narrowed, plain = 4, 3
				}
				for _, r := range []int{tt.tested, tt.copied} {
					assert.Equal(t, Ref(xType), before(t, res, narrowed, r), "%v v%d narrowed", branch, r)
					assert.Equal(t, Ref(baseType), before(t, res, plain, r), "%v v%d plain", branch, r)
				}
			}
		})
	}
}

func TestNarrowingKeepsMoreSpecificType(t *testing.T) {
	m := assemble(t, 2,
		line{ins: withRef(in(opcode.InstanceOf, 0, 1), ref.Type(baseType))},
		line{ins: in(opcode.IfEqz, 0), target: "B"},
		line{ins: in(opcode.ReturnVoid)},
		line{label: "B", ins: in(opcode.ReturnVoid)},
	)
	res := mustAnalyze(t, m, static(xType))
	assert.Equal(t, Ref(xType), before(t, res, 2, 1))
}

func TestNarrowingNeedsDirectPredecessor(t *testing.T) {
	// A second path into the branch defeats the pattern.
	m := assemble(t, 2,
		line{ins: withRef(in(opcode.InstanceOf, 0, 1), ref.Type(xType))},
		line{label: "IF", ins: in(opcode.IfEqz, 0), target: "B"},
		line{ins: in(opcode.Goto), target: "IF"},
		line{label: "B", ins: in(opcode.ReturnVoid)},
	)
	res := mustAnalyze(t, m, static(baseType))
	assert.Equal(t, Ref(baseType), before(t, res, 2, 1))
}

func TestDeadCodeDoesNotPropagate(t *testing.T) {
	m := assemble(t, 1,
		line{ins: in(opcode.Const4, 0)},
		line{ins: in(opcode.Goto), target: "R"},
		line{ins: withRef(in(opcode.ConstString, 0), ref.String("dead"))},
		line{label: "R", ins: in(opcode.Return, 0)},
	)
	res := mustAnalyze(t, m, static())
	assert.Equal(t, []int{2}, res.Dead())
	assert.True(t, res.Instructions[2].Dead)
	assert.Nil(t, res.Instructions[2].Pre)
	assert.Equal(t, NullType, before(t, res, 3, 0))
	assert.ElementsMatch(t, []int{1, 2}, res.Instructions[3].Predecessors)
}

func TestLoopReachesFixedPoint(t *testing.T) {
	m := assemble(t, 2,
		line{ins: lit(in(opcode.Const4, 0), 1)},
		line{label: "L", ins: lit(in(opcode.AddIntLit8, 0, 0), 1)},
		line{ins: in(opcode.IfLtz, 0), target: "L"},
		line{ins: in(opcode.Return, 0)},
	)
	res := mustAnalyze(t, m, static())
	assert.Equal(t, Prim(Integer), before(t, res, 1, 0), "One merged with Integer")
	assert.Equal(t, Prim(Integer), before(t, res, 3, 0))
	assert.Equal(t, UninitType, before(t, res, 3, 1))
}

func TestVisitBound(t *testing.T) {
	m := assemble(t, 1,
		line{label: "L", ins: in(opcode.Const4, 0)},
		line{ins: in(opcode.Goto), target: "L"},
	)
	_, err := Analyze(m, static(), nil, Options{MaxVisits: 2})
	require.ErrorIs(t, err, ErrNoFixedPoint)
	var aerr *Error
	require.True(t, errors.As(err, &aerr))
	assert.Equal(t, "Lfoo/T;->m()V", aerr.Method)
	assert.Equal(t, 0, aerr.Index)

	res, err := Analyze(m, static(), nil, Options{})
	require.NoError(t, err)
	assert.Equal(t, ConflictedType, before(t, res, 0, 0), "uninitialized merged with null")
}

func TestEntryState(t *testing.T) {
	m := assemble(t, 5, line{ins: in(opcode.ReturnVoid)})
	mi := MethodInfo{Class: "Lfoo/T;", Name: "m", Params: []string{"J", "[I", "Z"}, Return: "V"}
	res := mustAnalyze(t, m, mi)
	want := []RegisterType{Ref("Lfoo/T;"), Prim(LongLo), Prim(LongHi), Ref("[I"), Prim(Boolean)}
	assert.Equal(t, want, res.Instructions[0].Pre)

	_, err := Analyze(assemble(t, 2, line{ins: in(opcode.ReturnVoid)}), mi, nil, Options{})
	assert.ErrorIs(t, err, ErrSignature)
}

func TestConstructorTracking(t *testing.T) {
	initX := ref.Method{Class: xType, Name: "<init>", Return: "V"}
	m := assemble(t, 2,
		line{ins: withRef(in(opcode.NewInstance, 0), ref.Type(xType))},
		line{ins: in(opcode.MoveObject, 1, 0)},
		line{ins: withRef(in(opcode.InvokeDirect, 0), initX)},
		line{ins: in(opcode.ReturnObject, 1)},
	)
	res := mustAnalyze(t, m, static())
	uninit := RegisterType{Category: UninitRef, Type: xType, Site: 0}
	assert.Equal(t, uninit, before(t, res, 2, 0))
	assert.Equal(t, uninit, before(t, res, 2, 1))
	assert.Equal(t, Ref(xType), before(t, res, 3, 0))
	assert.Equal(t, Ref(xType), before(t, res, 3, 1))

	ctor := assemble(t, 1,
		line{ins: withRef(in(opcode.InvokeDirect, 0), ref.Method{Class: baseType, Name: "<init>", Return: "V"})},
		line{ins: in(opcode.ReturnVoid)},
	)
	res = mustAnalyze(t, ctor, MethodInfo{Class: xType, Name: "<init>", Return: "V"})
	assert.Equal(t, RegisterType{Category: UninitThis, Type: xType}, before(t, res, 0, 0))
	assert.Equal(t, Ref(xType), before(t, res, 1, 0))
}

func TestMoveResult(t *testing.T) {
	m := assemble(t, 3,
		line{ins: withRef(in(opcode.InvokeStatic), ref.Method{Class: xType, Name: "get", Return: "J"})},
		line{ins: in(opcode.MoveResultWide, 0)},
		line{ins: withRef(in(opcode.FilledNewArray, 2), ref.Type("[I"))},
		line{ins: in(opcode.MoveResultObject, 2)},
		line{ins: in(opcode.ReturnVoid)},
	)
	res := mustAnalyze(t, m, static())
	assert.Equal(t, Prim(LongLo), before(t, res, 2, 0))
	assert.Equal(t, Prim(LongHi), before(t, res, 2, 1))
	assert.Equal(t, Ref("[I"), before(t, res, 4, 2))
}

func TestExceptionEdges(t *testing.T) {
	m := assemble(t, 2,
		line{ins: in(opcode.Const4, 1)},
		line{label: "S", ins: withRef(in(opcode.ConstString, 1), ref.String("s"))},
		line{label: "E", ins: in(opcode.ReturnVoid)},
		line{label: "H", ins: in(opcode.MoveException, 0)},
		line{ins: in(opcode.Throw, 0)},
	)
	start, err := m.NewLabelAt(1)
	require.NoError(t, err)
	end, err := m.NewLabelAt(2)
	require.NoError(t, err)
	handler, err := m.NewLabelAt(3)
	require.NoError(t, err)
	require.NoError(t, m.AddCatch("Lfoo/Err;", start, end, handler))

	res := mustAnalyze(t, m, static())
	assert.False(t, res.Instructions[3].Dead)
	assert.Equal(t, []int{1}, res.Instructions[3].Predecessors)
	assert.Equal(t, NullType, before(t, res, 3, 1), "handler sees the state before the throwing instruction")
	assert.Equal(t, Ref("Lfoo/Err;"), before(t, res, 4, 0))
	assert.Equal(t, Ref(stringType), before(t, res, 2, 1))
}

func TestSwitchEdgesSkipPayload(t *testing.T) {
	m := assemble(t, 1,
		line{ins: in(opcode.Const4, 0)},
		line{ins: in(opcode.PackedSwitch, 0), target: "P"},
		line{label: "A", ins: in(opcode.ReturnVoid)},
		line{label: "B", ins: in(opcode.ReturnVoid)},
		line{label: "P", ins: &builder.Instruction{Op: opcode.PackedSwitchPayload}, cases: []string{"A", "B"}},
	)
	res := mustAnalyze(t, m, static())
	assert.ElementsMatch(t, []int{2, 3}, res.Instructions[1].Successors)
	p := res.Instructions[4]
	assert.True(t, p.Payload())
	assert.False(t, p.Dead)
	assert.Nil(t, p.Pre)
	assert.Empty(t, res.Dead())
}

func TestArithmeticAndArrays(t *testing.T) {
	m := assemble(t, 4,
		line{ins: lit(in(opcode.Const16, 0), 200)},
		line{ins: in(opcode.IntToByte, 1, 0)},
		line{ins: in(opcode.AgetWide, 2, 3, 0)},
		line{ins: in(opcode.AndInt2Addr, 1, 1)},
		line{ins: in(opcode.ReturnVoid)},
	)
	res := mustAnalyze(t, m, static("[D"))
	assert.Equal(t, Prim(PosShort), before(t, res, 1, 0))
	assert.Equal(t, Prim(Byte), before(t, res, 2, 1))
	assert.Equal(t, Prim(DoubleLo), before(t, res, 3, 2))
	assert.Equal(t, Prim(DoubleHi), before(t, res, 3, 3))
	assert.Equal(t, Prim(Integer), before(t, res, 4, 1))
}

func TestAnalyzeAll(t *testing.T) {
	ok := assemble(t, 1, line{ins: in(opcode.ReturnVoid)})
	bad := assemble(t, 0, line{ins: in(opcode.ReturnVoid)})
	other := assemble(t, 1, line{ins: in(opcode.Const4, 0)}, line{ins: in(opcode.Return, 0)})
	jobs := []Job{
		{Method: static(), Code: ok},
		{Method: static("I"), Code: bad},
		{Method: static(), Code: other},
	}
	out, err := AnalyzeAll(context.Background(), jobs, testClassPath(), Options{Workers: 2})
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.NoError(t, out[0].Err)
	assert.ErrorIs(t, out[1].Err, ErrSignature)
	assert.Nil(t, out[1].Result)
	require.NoError(t, out[2].Err)
	assert.Equal(t, NullType, before(t, out[2].Result, 1, 0))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = AnalyzeAll(ctx, jobs, nil, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBackEdgeToEntry(t *testing.T) {
	field := ref.Field{Class: "Lfoo/T;", Name: "y", Type: yType}
	m := assemble(t, 2,
		line{label: "TOP", ins: lit(in(opcode.Const4, 0), 1)},
		line{ins: withRef(in(opcode.SgetObject, 1), field)},
		line{ins: in(opcode.Goto), target: "TOP"},
	)
	res := mustAnalyze(t, m, static(xType))

	assert.Equal(t, []int{0}, res.Instructions[2].Successors)
	assert.Equal(t, []int{2}, res.Instructions[0].Predecessors)
	assert.Equal(t, Ref(baseType), before(t, res, 0, 1), "declared X merged with Y from the loop")
	assert.Equal(t, ConflictedType, before(t, res, 0, 0), "uninitialized merged with One")
	assert.Empty(t, res.Dead())
}

func TestHandlerAtEntry(t *testing.T) {
	m := assemble(t, 2,
		line{ins: withRef(in(opcode.ConstString, 0), ref.String("x"))},
		line{ins: withRef(in(opcode.SgetObject, 1), ref.Field{Class: "Lfoo/T;", Name: "y", Type: yType})},
		line{ins: in(opcode.ReturnVoid)},
	)
	start, err := m.NewLabelAt(1)
	require.NoError(t, err)
	end, err := m.NewLabelAt(2)
	require.NoError(t, err)
	entry, err := m.NewLabelAt(0)
	require.NoError(t, err)
	require.NoError(t, m.AddCatchAll(start, end, entry))

	res := mustAnalyze(t, m, static(xType))
	assert.Contains(t, res.Instructions[1].Successors, 0)
	assert.Contains(t, res.Instructions[0].Predecessors, 1)
	// The handler edge carries the state before sget-object overwrote v1.
	assert.Equal(t, Ref(xType), before(t, res, 0, 1))
	assert.Equal(t, ConflictedType, before(t, res, 0, 0), "uninitialized merged with String")
}
