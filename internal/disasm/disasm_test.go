package disasm

import (
	"strings"
	"testing"

	"dexkit/internal/builder"
	"dexkit/internal/dexfmt"
	"dexkit/internal/insn"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

// encode assembles a code array, interning references in pool.
func encode(t *testing.T, pool *ref.Pool, seq ...insn.Instruction) []byte {
	t.Helper()
	code, err := insn.Encode(seq, pool)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return code
}

// method decodes code into a builder method.
func method(t *testing.T, regs int, pool *ref.Pool, seq ...insn.Instruction) *builder.MethodImplementation {
	t.Helper()
	m, err := builder.FromCode(regs, encode(t, pool, seq...), pool, dexfmt.Options{})
	if err != nil {
		t.Fatalf("FromCode: %v", err)
	}
	return m
}

// sample is laid out at 0x0, 0x1, 0x3 and 0x5.
func sample() []insn.Instruction {
	return []insn.Instruction{
		insn.Insn11n{Op: opcode.Const4, A: 0, Literal: 1},
		insn.Insn21t{Op: opcode.IfEqz, A: 0, Offset: 4},
		insn.Insn21c{Op: opcode.ConstString, A: 1, Ref: ref.String("hi")},
		insn.Insn10x{Op: opcode.ReturnVoid},
	}
}

func TestDisassemble(t *testing.T) {
	pool := ref.NewPool()
	insts, err := Disassemble(encode(t, pool, sample()...), Options{Resolver: pool})
	if err != nil {
		t.Fatal(err)
	}
	want := []struct {
		addr int
		text string
	}{
		{0x0, "const/4 v0, #1"},
		{0x1, "if-eqz v0, 0x0005"},
		{0x3, `const-string v1, "hi"`},
		{0x5, "return-void"},
	}
	if len(insts) != len(want) {
		t.Fatalf("got %d instructions, want %d", len(insts), len(want))
	}
	for i, w := range want {
		if insts[i].Addr != w.addr {
			t.Errorf("addr[%d] = 0x%x, want 0x%x", i, insts[i].Addr, w.addr)
		}
		if insts[i].Text != w.text {
			t.Errorf("text[%d] = %q, want %q", i, insts[i].Text, w.text)
		}
	}
	if insts[0].Units[0] != 0x1012 {
		t.Errorf("units[0] = %04x, want 1012", insts[0].Units[0])
	}
	if insts[1].Mnemonic != "if-eqz" || insts[1].Operands != "v0, 0x0005" {
		t.Errorf("split = %q / %q", insts[1].Mnemonic, insts[1].Operands)
	}
}

func TestDisassembleNoResolver(t *testing.T) {
	pool := ref.NewPool()
	insts, err := Disassemble(encode(t, pool, sample()...), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(insts[2].Text, "string@0") {
		t.Errorf("unresolved operand: %q", insts[2].Text)
	}
}

func TestDisassembleMaxSteps(t *testing.T) {
	seq := make([]insn.Instruction, 20)
	for i := range seq {
		seq[i] = insn.Insn10x{Op: opcode.Nop}
	}
	insts, err := Disassemble(encode(t, nil, seq...), Options{MaxSteps: 10})
	if err == nil {
		t.Fatal("expected step cap error")
	}
	if len(insts) != 10 {
		t.Fatalf("got %d instructions, want 10", len(insts))
	}
}

func TestDisassembleEmpty(t *testing.T) {
	insts, err := Disassemble(nil, Options{})
	if err != nil || len(insts) != 0 {
		t.Fatalf("got %d instructions, err %v for nil code", len(insts), err)
	}
}

func TestDisassembleOddLength(t *testing.T) {
	if _, err := Disassemble([]byte{0x0e}, Options{}); err == nil {
		t.Fatal("expected error for odd length")
	}
}

func TestDisassembleBestEffort(t *testing.T) {
	var diags dexfmt.Diags
	code := []byte{0x3e, 0x00, 0x0e, 0x00}
	insts, err := Disassemble(code, Options{Mode: dexfmt.ModeBestEffort, Diags: &diags})
	if err != nil {
		t.Fatal(err)
	}
	if len(insts) != 2 || insts[0].Text != ".unit 0x003e" || insts[1].Text != "return-void" {
		t.Fatalf("insts = %+v", insts)
	}
	if diags.Len() != 1 {
		t.Errorf("diags = %d, want 1", diags.Len())
	}

	if _, err := Disassemble(code, Options{}); err == nil {
		t.Error("strict mode should reject the unknown opcode")
	}
}

func TestDisassembleSwitchPayload(t *testing.T) {
	insts, err := Disassemble(encode(t, nil, switchSeq()...), Options{})
	if err != nil {
		t.Fatal(err)
	}
	last := insts[len(insts)-1]
	if last.Text != "packed-switch-payload first-key 0, +4, +6" {
		t.Errorf("payload = %q", last.Text)
	}
	if !strings.Contains(insts[0].Text, "0x0008") {
		t.Errorf("switch = %q", insts[0].Text)
	}
}

func TestFormat(t *testing.T) {
	pool := ref.NewPool()
	insts, err := Disassemble(encode(t, pool, sample()...), Options{Resolver: pool})
	if err != nil {
		t.Fatal(err)
	}
	lookup := func(addr int) (string, bool) {
		if addr == 5 {
			return "exit", true
		}
		return "", false
	}
	out := Format(insts, lookup, func(inst Inst) string {
		if inst.Op == opcode.ConstString {
			return "greeting"
		}
		return ""
	})
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "0x0000  1012     ") || !strings.HasSuffix(lines[0], "const/4 v0, #1") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], `const-string v1, "hi"  ; greeting`) {
		t.Errorf("line 2 = %q", lines[2])
	}
	if lines[3] != "exit:" {
		t.Errorf("line 3 = %q, want label", lines[3])
	}
}

func TestFromMethod(t *testing.T) {
	pool := ref.NewPool()
	m := method(t, 2, pool, sample()...)
	insts, err := FromMethod(m)
	if err != nil {
		t.Fatal(err)
	}
	if len(insts) != 4 {
		t.Fatalf("got %d instructions", len(insts))
	}
	if insts[3].Addr != 5 {
		t.Errorf("addr = %d, want 5", insts[3].Addr)
	}
	lookup := MethodLabels(m)
	name, ok := lookup(5)
	if !ok {
		t.Fatal("branch target has no label")
	}
	if want := "if-eqz v0, :" + name; insts[1].Text != want {
		t.Errorf("text = %q, want %q", insts[1].Text, want)
	}
	if _, ok := lookup(3); ok {
		t.Error("unlabeled address named")
	}
}
