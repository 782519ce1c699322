package disasm

import (
	"fmt"
	"strings"

	"dexkit/internal/analysis"
	"dexkit/internal/builder"
	"dexkit/internal/opcode"
)

// Annotator returns an optional inline comment for an instruction.
// Empty string means no annotation.
type Annotator func(inst Inst) string

// Analysis annotators index by instruction, so they pair with FromMethod
// listings of the analyzed method.

// DeadAnnotator flags instructions the analysis never reached.
func DeadAnnotator(res *analysis.Result) Annotator {
	return func(inst Inst) string {
		if inst.Index < 0 || inst.Index >= len(res.Instructions) {
			return ""
		}
		if res.Instructions[inst.Index].Dead {
			return "dead"
		}
		return ""
	}
}

// TypeAnnotator prints the type an instruction leaves in its destination
// register, e.g. "v0=Reference,Ljava/lang/String;".
func TypeAnnotator(res *analysis.Result) Annotator {
	return func(inst Inst) string {
		if inst.Index < 0 || inst.Index >= len(res.Instructions) {
			return ""
		}
		ai := res.Instructions[inst.Index]
		info, err := opcode.Lookup(ai.Instruction.Op)
		if err != nil || ai.Post == nil || len(ai.Instruction.Registers) == 0 {
			return ""
		}
		if !info.Has(opcode.SetsRegister) && !info.Has(opcode.SetsWideRegister) {
			return ""
		}
		r := ai.Instruction.Registers[0]
		if r >= len(ai.Post) {
			return ""
		}
		return fmt.Sprintf("v%d=%v", r, ai.Post[r])
	}
}

// DebugAnnotator prints the debug items attached in front of an
// instruction, such as ".line 12". Inst indices must come from FromMethod.
func DebugAnnotator(m *builder.MethodImplementation) Annotator {
	return func(inst Inst) string {
		loc, err := m.Location(inst.Index)
		if err != nil {
			return ""
		}
		items := loc.DebugItems()
		if len(items) == 0 {
			return ""
		}
		parts := make([]string, len(items))
		for n, d := range items {
			parts[n] = d.String()
		}
		return strings.Join(parts, " ")
	}
}

// Chain combines annotators so that every non-empty comment is kept.
func Chain(annotators ...Annotator) Annotator {
	return func(inst Inst) string {
		var parts []string
		for _, ann := range annotators {
			if s := ann(inst); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "; ")
	}
}
