package disasm

import (
	"dexkit/internal/builder"
	"dexkit/internal/opcode"
)

// BranchInfo describes the control transfer at the end of an instruction.
// Targets are instruction indices.
type BranchInfo struct {
	Targets []int
	Cond    bool // if-test: Targets[0] is taken, the next instruction is not
	Switch  bool // one target per case, plus the fall-through
	IsRet   bool // return-*
	IsThrow bool
}

// DecodeBranch returns branch info for a builder instruction, or nil if it
// does not transfer control. Labels must be bound to live locations.
func DecodeBranch(ins *builder.Instruction) *BranchInfo {
	info, err := opcode.Lookup(ins.Op)
	if err != nil {
		return nil
	}
	switch info.Kind {
	case opcode.KindReturn:
		return &BranchInfo{IsRet: true}
	case opcode.KindThrow:
		return &BranchInfo{IsThrow: true}
	case opcode.KindGoto:
		return &BranchInfo{Targets: []int{ins.Target.Index()}}
	case opcode.KindIf, opcode.KindIfZ:
		return &BranchInfo{Targets: []int{ins.Target.Index()}, Cond: true}
	case opcode.KindSwitch:
		bi := &BranchInfo{Switch: true}
		if !ins.Target.Valid() {
			return bi
		}
		if p := ins.Target.Location().Instruction(); p != nil {
			for _, l := range p.Targets {
				bi.Targets = append(bi.Targets, l.Index())
			}
		}
		return bi
	}
	return nil
}

// IsBranchTerminator reports whether control never falls through ins.
func IsBranchTerminator(ins *builder.Instruction) bool {
	info, err := opcode.Lookup(ins.Op)
	if err != nil {
		return true
	}
	return !info.Has(opcode.CanContinue)
}
