package analysis

import (
	"fmt"
	"slices"

	"dexkit/internal/builder"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// transfer applies instruction n to pre and returns the outgoing state.
func (a *analyzer) transfer(n int, pre []RegisterType) ([]RegisterType, error) {
	ins := a.insns[n].Instruction
	info := opcode.MustLookup(ins.Op)
	for _, r := range ins.Registers {
		if r >= a.regs {
			return nil, fmt.Errorf("%w: v%d in a frame of %d", ErrRegister, r, a.regs)
		}
	}
	post := slices.Clone(pre)
	set := func(r int, t RegisterType) error {
		if r >= a.regs {
			return fmt.Errorf("%w: v%d in a frame of %d", ErrRegister, r, a.regs)
		}
		post[r] = t
		return nil
	}
	setPair := func(r int, lo, hi RegisterType) error {
		if err := set(r, lo); err != nil {
			return err
		}
		return set(r+1, hi)
	}
	dst := func(lo, hi RegisterType) error {
		if info.Has(opcode.SetsWideRegister) {
			return setPair(ins.Registers[0], lo, hi)
		}
		return set(ins.Registers[0], lo)
	}
	regs := ins.Registers

	switch info.Kind {
	case opcode.KindMove:
		if info.Has(opcode.SetsWideRegister) {
			if regs[1]+1 >= a.regs {
				return nil, fmt.Errorf("%w: v%d", ErrRegister, regs[1]+1)
			}
			return post, setPair(regs[0], pre[regs[1]], pre[regs[1]+1])
		}
		return post, set(regs[0], pre[regs[1]])

	case opcode.KindMoveResult:
		lo, hi := a.resultOf(n - 1)
		return post, dst(lo, hi)

	case opcode.KindMoveException:
		t, err := a.exceptionType(n)
		if err != nil {
			return nil, err
		}
		return post, set(regs[0], t)

	case opcode.KindConst:
		if info.Value == opcode.ValueLong {
			return post, dst(Prim(LongLo), Prim(LongHi))
		}
		return post, set(regs[0], literalType(ins.Literal))

	case opcode.KindConstString:
		return post, set(regs[0], Ref(stringType))
	case opcode.KindConstClass:
		return post, set(regs[0], Ref(classType))
	case opcode.KindConstMethodHandle:
		return post, set(regs[0], Ref("Ljava/lang/invoke/MethodHandle;"))
	case opcode.KindConstMethodType:
		return post, set(regs[0], Ref("Ljava/lang/invoke/MethodType;"))

	case opcode.KindCheckCast:
		if t, ok := typeOperand(ins); ok {
			return post, set(regs[0], a.narrow(pre[regs[0]], t))
		}
		return post, nil

	case opcode.KindInstanceOf:
		return post, set(regs[0], Prim(Boolean))
	case opcode.KindArrayLength:
		return post, set(regs[0], Prim(Integer))
	case opcode.KindCmp:
		return post, set(regs[0], Prim(Byte))

	case opcode.KindNewInstance:
		t, _ := typeOperand(ins)
		return post, set(regs[0], RegisterType{Category: UninitRef, Type: t, Site: n})
	case opcode.KindNewArray:
		t, ok := typeOperand(ins)
		if !ok {
			t = objectType
		}
		return post, set(regs[0], Ref(t))

	case opcode.KindAget:
		lo, hi := a.elementOf(pre[regs[1]], info.Value)
		return post, dst(lo, hi)

	case opcode.KindIget, opcode.KindSget:
		if f, ok := ins.Ref.(ref.Field); ok {
			lo, hi := FromDescriptor(f.Type)
			return post, dst(lo, hi)
		}
		lo, hi := valueType(info.Value)
		return post, dst(lo, hi)

	case opcode.KindInvoke:
		a.constructed(ins, pre, post)
		return post, nil

	case opcode.KindUnaryOp:
		lo, hi := valueType(info.Value)
		return post, dst(lo, hi)

	case opcode.KindBinaryOp, opcode.KindBinaryOp2Addr, opcode.KindBinaryOpLit:
		if isBitwise(ins.Op) && a.booleanOperands(ins, info.Kind, pre) {
			return post, set(regs[0], Prim(Boolean))
		}
		lo, hi := valueType(info.Value)
		return post, dst(lo, hi)
	}
	return post, nil
}

func typeOperand(ins *builder.Instruction) (string, bool) {
	if t, ok := ins.Ref.(ref.Type); ok {
		return string(t), true
	}
	return "", false
}

// valueType is the register type an instruction of value shape v writes
// when nothing more specific is known.
func valueType(v opcode.Value) (lo, hi RegisterType) {
	switch v {
	case opcode.ValueBoolean:
		return Prim(Boolean), UnknownType
	case opcode.ValueByte:
		return Prim(Byte), UnknownType
	case opcode.ValueShort:
		return Prim(Short), UnknownType
	case opcode.ValueChar:
		return Prim(Char), UnknownType
	case opcode.ValueInt:
		return Prim(Integer), UnknownType
	case opcode.ValueFloat:
		return Prim(Float), UnknownType
	case opcode.ValueLong:
		return Prim(LongLo), Prim(LongHi)
	case opcode.ValueDouble:
		return Prim(DoubleLo), Prim(DoubleHi)
	case opcode.ValueObject:
		return Ref(objectType), UnknownType
	}
	return ConflictedType, UnknownType
}

// elementOf types an aget result from the array register. Untyped int and
// wide loads take the float/double flavor from the array descriptor.
func (a *analyzer) elementOf(array RegisterType, v opcode.Value) (lo, hi RegisterType) {
	if array.Category == Null {
		if v == opcode.ValueObject {
			return NullType, UnknownType
		}
		return valueType(v)
	}
	elem, ok := componentType(array.Type)
	if array.Category != Reference || !ok {
		return valueType(v)
	}
	switch v {
	case opcode.ValueObject:
		if isPrimitiveDescriptor(elem) {
			return ConflictedType, UnknownType
		}
		return Ref(elem), UnknownType
	case opcode.ValueInt:
		if elem == "F" {
			return Prim(Float), UnknownType
		}
	case opcode.ValueLong:
		if elem == "D" {
			return Prim(DoubleLo), Prim(DoubleHi)
		}
	}
	return valueType(v)
}

// resultOf types the value a move-result at n+1 picks up from n.
func (a *analyzer) resultOf(n int) (lo, hi RegisterType) {
	if n < 0 {
		return ConflictedType, ConflictedType
	}
	ins := a.insns[n].Instruction
	info := opcode.MustLookup(ins.Op)
	if !info.Has(opcode.SetsResult) {
		return ConflictedType, ConflictedType
	}
	if info.Kind == opcode.KindFilledNewArray {
		if t, ok := typeOperand(ins); ok {
			return Ref(t), UnknownType
		}
		return Ref(objectType), UnknownType
	}
	var ret string
	switch r := ins.Ref.(type) {
	case ref.Method:
		ret = r.Return
	case ref.CallSite:
		ret = r.Proto.Return
	}
	if p, ok := ins.Proto.(ref.Proto); ok {
		ret = p.Return
	}
	if ret == "" || ret == "V" {
		return ConflictedType, ConflictedType
	}
	return FromDescriptor(ret)
}

// exceptionType merges every exception type routed to handler n.
func (a *analyzer) exceptionType(n int) (RegisterType, error) {
	types := a.catches[n]
	if len(types) == 0 {
		return Ref(throwableType), nil
	}
	var out RegisterType
	for _, t := range types {
		if t == "" {
			t = throwableType
		}
		var err error
		if out, err = Merge(out, Ref(t), a.cp); err != nil {
			return ConflictedType, err
		}
	}
	return out, nil
}

// constructed marks the receiver of a constructor call initialized in
// every register that holds the same uninitialized value.
func (a *analyzer) constructed(ins *builder.Instruction, pre, post []RegisterType) {
	if ins.Op != opcode.InvokeDirect && ins.Op != opcode.InvokeDirectRange {
		return
	}
	m, ok := ins.Ref.(ref.Method)
	if !ok || m.Name != "<init>" || len(ins.Registers) == 0 {
		return
	}
	recv := pre[ins.Registers[0]]
	if recv.Category != UninitRef && recv.Category != UninitThis {
		return
	}
	for r := range post {
		if post[r] == recv {
			post[r] = Ref(recv.Type)
		}
	}
}

func isBitwise(op opcode.Opcode) bool {
	switch op {
	case opcode.AndInt, opcode.OrInt, opcode.XorInt,
		opcode.AndInt2Addr, opcode.OrInt2Addr, opcode.XorInt2Addr,
		opcode.AndIntLit16, opcode.OrIntLit16, opcode.XorIntLit16,
		opcode.AndIntLit8, opcode.OrIntLit8, opcode.XorIntLit8:
		return true
	}
	return false
}

func isBooleanish(t RegisterType) bool {
	return t.Category == Null || t.Category == One || t.Category == Boolean
}

// booleanOperands reports whether both inputs of a bitwise int op are 0/1.
func (a *analyzer) booleanOperands(ins *builder.Instruction, kind opcode.Kind, pre []RegisterType) bool {
	regs := ins.Registers
	switch kind {
	case opcode.KindBinaryOp:
		return isBooleanish(pre[regs[1]]) && isBooleanish(pre[regs[2]])
	case opcode.KindBinaryOp2Addr:
		return isBooleanish(pre[regs[0]]) && isBooleanish(pre[regs[1]])
	case opcode.KindBinaryOpLit:
		return isBooleanish(pre[regs[1]]) && (ins.Literal == 0 || ins.Literal == 1)
	}
	return false
}

// narrow returns the type of a reference known to be an instance of t.
// A type that already satisfies t is kept; anything else becomes t.
func (a *analyzer) narrow(prior RegisterType, t string) RegisterType {
	if prior.Category != Reference {
		return prior
	}
	if a.cp != nil {
		if ok, err := a.cp.IsAssignable(t, prior.Type); err == nil && ok {
			return prior
		}
	}
	return Ref(t)
}

// narrowing recognizes
//
//	[move-object vX, vB | move-object vB, vX]
//	instance-of vA, vB, T
//	if-eqz/if-nez vA, :target
//
// and returns the state for the edge on which vA is nonzero, with vB (and
// vX) narrowed to T. The other edge keeps the unnarrowed state. Each
// instruction of the pattern must be the sole predecessor of the next.
func (a *analyzer) narrowing(n int, post []RegisterType) (edgeKind, []RegisterType) {
	ins := a.insns[n].Instruction
	var kind edgeKind
	switch ins.Op {
	case opcode.IfEqz:
		kind = edgeFall
	case opcode.IfNez:
		kind = edgeBranch
	default:
		return 0, nil
	}
	if !a.onlyPredecessor(n, n-1) {
		return 0, nil
	}
	test := a.insns[n-1].Instruction
	if test.Op != opcode.InstanceOf || len(test.Registers) != 2 {
		return 0, nil
	}
	vA, vB := test.Registers[0], test.Registers[1]
	if vA != ins.Registers[0] || vA == vB {
		return 0, nil
	}
	t, ok := typeOperand(test)
	if !ok {
		return 0, nil
	}
	out := slices.Clone(post)
	out[vB] = a.narrow(post[vB], t)
	if a.onlyPredecessor(n-1, n-2) {
		if mv := a.insns[n-2].Instruction; isMoveObject(mv.Op) {
			x := -1
			switch {
			case mv.Registers[0] == vB:
				x = mv.Registers[1]
			case mv.Registers[1] == vB:
				x = mv.Registers[0]
			}
			if x >= 0 && x != vA && x != vB {
				out[x] = a.narrow(post[x], t)
			}
		}
	}
	return kind, out
}

func (a *analyzer) onlyPredecessor(n, pred int) bool {
	if pred < 0 {
		return false
	}
	p := a.insns[n].Predecessors
	return len(p) == 1 && p[0] == pred
}

func isMoveObject(op opcode.Opcode) bool {
	return op == opcode.MoveObject || op == opcode.MoveObjectFrom16 || op == opcode.MoveObject16
}
