package disasm

import (
	"sort"

	"dexkit/internal/builder"
	"dexkit/internal/opcode"
)

// BasicBlock represents a sequence of instructions with a single entry point.
type BasicBlock struct {
	ID      int
	Start   int    // index into FuncCFG.Insts (inclusive)
	End     int    // index into FuncCFG.Insts (exclusive)
	Succs   []Succ // successor edges
	IsEntry bool
	IsTerm  bool // ends with return or throw
	IsData  bool // payload table, never executed
}

// Succ describes a control-flow successor edge.
type Succ struct {
	BlockID int
	// "" = unconditional, "T" = taken, "F" = fallthrough, "S" = switch case,
	// "E" = exception handler.
	Cond string
}

// FuncCFG is a per-method control flow graph.
type FuncCFG struct {
	Name   string
	Blocks []BasicBlock
	Insts  []Inst
}

// BlockOf returns the block holding instruction index, or -1.
func (f *FuncCFG) BlockOf(index int) int {
	i := sort.Search(len(f.Blocks), func(i int) bool { return f.Blocks[i].End > index })
	if i < len(f.Blocks) && f.Blocks[i].Start <= index {
		return i
	}
	return -1
}

// BuildCFG constructs a control flow graph from a method body.
// The algorithm:
//  1. Find block leaders: index 0, branch and case targets, instructions
//     after terminators, payloads, handler entries and try boundaries.
//  2. Partition instructions into blocks by leaders.
//  3. Compute successor edges from each block's last instruction, plus an
//     exception edge per handler of the try range the block sits in.
func BuildCFG(name string, m *builder.MethodImplementation) (FuncCFG, error) {
	insts, err := FromMethod(m)
	if err != nil {
		return FuncCFG{}, err
	}
	if len(insts) == 0 {
		return FuncCFG{Name: name, Insts: insts}, nil
	}
	n := len(insts)
	code := make([]*builder.Instruction, n)
	for i := range code {
		code[i] = m.Instruction(i)
	}
	tries := m.Tries()
	isPayload := func(i int) bool { return code[i].Format().IsPayload() }

	// Pass 1: Identify block leaders.
	leaders := map[int]bool{0: true}
	mark := func(i int) {
		if i >= 0 && i < n {
			leaders[i] = true
		}
	}
	for i, ins := range code {
		if isPayload(i) {
			mark(i)
			mark(i + 1)
			continue
		}
		if bi := DecodeBranch(ins); bi != nil {
			mark(i + 1)
			for _, t := range bi.Targets {
				mark(t)
			}
		}
	}
	for _, t := range tries {
		mark(t.Start.Index())
		mark(t.End.Index())
		for _, h := range t.Handlers {
			mark(h.Handler.Index())
		}
	}

	sorted := make([]int, 0, len(leaders))
	for idx := range leaders {
		sorted = append(sorted, idx)
	}
	sort.Ints(sorted)

	// Pass 2: Partition into blocks.
	blocks := make([]BasicBlock, len(sorted))
	leaderToBlock := make(map[int]int, len(sorted))
	for i, start := range sorted {
		end := n
		if i+1 < len(sorted) {
			end = sorted[i+1]
		}
		blocks[i] = BasicBlock{
			ID:      i,
			Start:   start,
			End:     end,
			IsEntry: start == 0,
			IsData:  isPayload(start),
		}
		leaderToBlock[start] = i
	}

	// Pass 3: Compute successors.
	for i := range blocks {
		blk := &blocks[i]
		if blk.IsData {
			continue
		}
		add := func(target int, cond string) {
			bid, ok := leaderToBlock[target]
			if !ok || blocks[bid].IsData {
				return
			}
			for _, s := range blk.Succs {
				if s.BlockID == bid && s.Cond == cond {
					return
				}
			}
			blk.Succs = append(blk.Succs, Succ{BlockID: bid, Cond: cond})
		}

		last := code[blk.End-1]
		bi := DecodeBranch(last)
		switch {
		case bi == nil:
			if !IsBranchTerminator(last) {
				add(blk.End, "")
			}
		case bi.IsRet || bi.IsThrow:
			blk.IsTerm = true
		case bi.Cond:
			add(bi.Targets[0], "T")
			add(blk.End, "F")
		case bi.Switch:
			for _, t := range bi.Targets {
				add(t, "S")
			}
			add(blk.End, "F")
		default:
			add(bi.Targets[0], "")
		}

		if !blockThrows(code[blk.Start:blk.End]) {
			continue
		}
		for _, t := range tries {
			if blk.Start < t.Start.Index() || blk.Start >= t.End.Index() {
				continue
			}
			for _, h := range t.Handlers {
				add(h.Handler.Index(), "E")
				if h.CatchAll() {
					break
				}
			}
		}
	}

	return FuncCFG{
		Name:   name,
		Blocks: blocks,
		Insts:  insts,
	}, nil
}

func blockThrows(code []*builder.Instruction) bool {
	for _, ins := range code {
		if info, err := opcode.Lookup(ins.Op); err == nil && info.Has(opcode.CanThrow) {
			return true
		}
	}
	return false
}
