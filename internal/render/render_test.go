package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"dexkit/internal/analysis"
	"dexkit/internal/builder"
	"dexkit/internal/dexfmt"
	"dexkit/internal/disasm"
	"dexkit/internal/insn"
	"dexkit/internal/opcode"
	"dexkit/internal/ref"
)

const (
	mainRun  = "Lapp/Main;->run()V"
	mainInit = "Lapp/Main;-><init>()V"
	utilGet  = "Lapp/Util;->get(I)I"
	logD     = "Landroid/util/Log;->d(Ljava/lang/String;Ljava/lang/String;)I"
)

func records() ([]disasm.FuncRecord, []disasm.CallEdgeRecord) {
	funcs := []disasm.FuncRecord{
		{Name: mainRun},
		{Name: mainInit},
		{Name: utilGet, Owner: "Lapp/Util;"},
	}
	edges := []disasm.CallEdgeRecord{
		{FromFunc: mainRun, FromAddr: "0x0000", Kind: "invoke-direct", Target: mainInit},
		{FromFunc: mainRun, FromAddr: "0x0003", Kind: "invoke-static", Target: utilGet},
		{FromFunc: mainRun, FromAddr: "0x0006", Kind: "invoke-static/range", Target: utilGet},
		{FromFunc: utilGet, FromAddr: "0x0002", Kind: "invoke-static", Target: logD},
		{FromFunc: utilGet, FromAddr: "0x0005", Kind: "invoke-virtual", Target: utilGet},
	}
	return funcs, edges
}

func TestHelpers(t *testing.T) {
	if got := ownerOf(mainRun); got != "Lapp/Main;" {
		t.Errorf("ownerOf = %q", got)
	}
	if got := ownerOf("run"); got != "" {
		t.Errorf("ownerOf(no owner) = %q", got)
	}
	if got := stripOwner(mainRun); got != "run()V" {
		t.Errorf("stripOwner = %q", got)
	}
	if got := javaName("Lfoo/bar/Baz;"); got != "foo.bar.Baz" {
		t.Errorf("javaName = %q", got)
	}
	if got := javaName("[I"); got != "[I" {
		t.Errorf("javaName(array) = %q", got)
	}
	if got := dotID("La;"); got != "n_La_003b" {
		t.Errorf("dotID = %q", got)
	}
	if got := truncLabel("abcdefgh", 6); got != "abc..." {
		t.Errorf("truncLabel = %q", got)
	}
	if got := dotEscape(`<a&"b">`); got != "&lt;a&amp;&quot;b&quot;&gt;" {
		t.Errorf("dotEscape = %q", got)
	}
}

func TestClassifyEdgeProv(t *testing.T) {
	cases := []struct {
		kind, want string
	}{
		{"invoke-virtual", ProvVirtual},
		{"invoke-interface/range", ProvInterface},
		{"invoke-super", ProvSuper},
		{"invoke-direct", ProvDirect},
		{"invoke-static/range", ProvStatic},
		{"invoke-polymorphic", ProvDynamic},
		{"invoke-custom", ProvDynamic},
	}
	for _, c := range cases {
		if got := ClassifyEdgeProv(disasm.CallEdgeRecord{Kind: c.kind}); got != c.want {
			t.Errorf("%s = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestCallgraphDOT(t *testing.T) {
	funcs, edges := records()
	dot := CallgraphDOT(funcs, edges, "app", NASA, 0)
	for _, want := range []string{
		"digraph callgraph {",
		"subgraph cluster_",
		dotID(mainRun) + " -> " + dotID(utilGet),
		dotID(logD),
		"app.Main",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("missing %q in:\n%s", want, dot)
		}
	}
	if dot != CallgraphDOT(funcs, edges, "app", NASA, 0) {
		t.Error("output is not deterministic")
	}
}

func TestComputeStats(t *testing.T) {
	funcs, edges := records()
	st := ComputeStats(funcs, edges)
	if st.TotalFunctions != 3 || st.TotalEdges != 5 {
		t.Errorf("totals = %d/%d", st.TotalFunctions, st.TotalEdges)
	}
	if st.UniqueOwners != 2 {
		t.Errorf("owners = %d, want 2", st.UniqueOwners)
	}
	if st.ProvCounts[ProvStatic] != 3 || st.ProvCounts[ProvDirect] != 1 {
		t.Errorf("prov = %v", st.ProvCounts)
	}
	if len(st.TopCallers) == 0 || st.TopCallers[0].Name != mainRun || st.TopCallers[0].Count != 3 {
		t.Errorf("top callers = %+v", st.TopCallers)
	}
}

func TestClassgraphDOT(t *testing.T) {
	funcs, edges := records()
	dot := ClassgraphDOT(funcs, edges, "", NASA, 0)
	if !strings.Contains(dot, dotID("Lapp/Main;")+" -> "+dotID("Lapp/Util;")) {
		t.Errorf("missing class edge:\n%s", dot)
	}
	if !strings.Contains(dot, "2 methods") {
		t.Errorf("missing method count:\n%s", dot)
	}
	if strings.Contains(dot, dotID("Lapp/Main;")+" -> "+dotID("Lapp/Main;")) {
		t.Error("intra-class call rendered")
	}
	// Log only appears as a target.
	if !strings.Contains(dot, `label="android.util.Log", style="dashed,rounded"`) {
		t.Errorf("external class not faded:\n%s", dot)
	}
	limited := ClassgraphDOT(funcs, edges, "", NASA, 1)
	if strings.Contains(limited, "android.util.Log") {
		t.Error("maxNodes not applied")
	}
}

func TestReachability(t *testing.T) {
	funcs, edges := records()
	funcs = append(funcs, disasm.FuncRecord{Name: "Lapp/Dead;->loop()V"})
	edges = append(edges, disasm.CallEdgeRecord{FromFunc: "Lapp/Dead;->loop()V", Kind: "invoke-static", Target: "Lapp/Dead;->loop()V"})

	entries := FindEntryPoints(funcs, edges)
	want := []string{"Lapp/Dead;->loop()V", mainRun}
	if strings.Join(entries, ",") != strings.Join(want, ",") {
		t.Fatalf("entries = %v, want %v", entries, want)
	}

	reach := ReachableSet([]string{mainRun}, edges)
	for _, name := range []string{mainRun, mainInit, utilGet, logD} {
		if !reach[name] {
			t.Errorf("%s not reachable", name)
		}
	}
	if un := Unreachable(funcs, reach); len(un) != 1 || un[0] != "Lapp/Dead;->loop()V" {
		t.Errorf("unreachable = %v", un)
	}

	dot := ReachabilityDOT(edges, reach, []string{mainRun}, "reach", NASA)
	if !strings.Contains(dot, "penwidth=1.5") {
		t.Errorf("entry not highlighted:\n%s", dot)
	}
	if strings.Contains(dot, "loop") {
		t.Error("unreachable method rendered")
	}
	// Two calls to get collapse into one thicker edge.
	if !strings.Contains(dot, dotID(mainRun)+" -> "+dotID(utilGet)+" [penwidth=0.7]") {
		t.Errorf("edge weight missing:\n%s", dot)
	}
}

func TestHierarchyDOT(t *testing.T) {
	cp := analysis.NewStaticClassPath(
		analysis.Class{Name: "Lapp/Shape;", Interface: true},
		analysis.Class{Name: "Lapp/Circle;", Interfaces: []string{"Lapp/Shape;", "Lmissing/I;"}},
	)
	dot := HierarchyDOT(cp.Classes(), "", NASA)
	if !strings.Contains(dot, dotID("Lapp/Circle;")+" -> "+dotID("Ljava/lang/Object;")+";") {
		t.Errorf("missing superclass edge:\n%s", dot)
	}
	if !strings.Contains(dot, dotID("Lapp/Circle;")+" -> "+dotID("Lapp/Shape;")+" [style=dashed") {
		t.Errorf("missing interface edge:\n%s", dot)
	}
	if strings.Contains(dot, dotID("Lmissing/I;")) {
		t.Error("unknown interface rendered")
	}
}

// branchy is laid out at 0x0, 0x2, 0x4 and 0x5; the if-eqz jumps to 0x5.
func branchy(t *testing.T) *builder.MethodImplementation {
	t.Helper()
	pool := ref.NewPool()
	code, err := insn.Encode([]insn.Instruction{
		insn.Insn21c{Op: opcode.ConstString, A: 0, Ref: ref.String("<tag>")},
		insn.Insn21t{Op: opcode.IfEqz, A: 1, Offset: 3},
		insn.Insn11n{Op: opcode.Const4, A: 1, Literal: 1},
		insn.Insn10x{Op: opcode.ReturnVoid},
	}, pool)
	if err != nil {
		t.Fatal(err)
	}
	m, err := builder.FromCode(2, code, pool, dexfmt.Options{})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestCFGDOT(t *testing.T) {
	m := branchy(t)
	cfg, err := disasm.BuildCFG("Lapp/Main;->run()V", m)
	if err != nil {
		t.Fatal(err)
	}
	dot := CFGDOT(cfg, NASA, CFGOptions{
		Annotate: func(inst disasm.Inst) string {
			if inst.Op == opcode.Const4 {
				return "one"
			}
			return ""
		},
	})
	for _, want := range []string{
		"bb0 -> bb2",
		"bb0 -> bb1",
		">T</font>",
		"&lt;tag&gt;",
		"; one",
		"penwidth=1.5",
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("missing %q in:\n%s", want, dot)
		}
	}
	if CFGDOT(disasm.FuncCFG{Name: "empty"}, NASA, CFGOptions{}) != "" {
		t.Error("empty CFG should render nothing")
	}
}

func TestCFGDOTDead(t *testing.T) {
	cfg, err := disasm.BuildCFG("m", branchy(t))
	if err != nil {
		t.Fatal(err)
	}
	dot := CFGDOT(cfg, NASA, CFGOptions{Dead: func(i int) bool { return i == 2 }})
	if !strings.Contains(dot, "bb1 [label=") || !strings.Contains(dot, NASA.DeadFill) {
		t.Errorf("dead block not filled:\n%s", dot)
	}
}

func TestListing(t *testing.T) {
	old := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = old }()

	m := branchy(t)
	insts, err := disasm.FromMethod(m)
	if err != nil {
		t.Fatal(err)
	}
	var buf bytes.Buffer
	err = Listing(&buf, insts, ListingOptions{
		Labels: disasm.MethodLabels(m),
		Dead:   func(i int) bool { return i == 2 },
	})
	if err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d, want 5:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "0000  const-string") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.HasSuffix(lines[2], "; dead") {
		t.Errorf("line 2 = %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], ":") {
		t.Errorf("line 3 = %q, want label", lines[3])
	}
}
