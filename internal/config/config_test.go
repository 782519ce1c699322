package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dexkit/internal/analysis"
	"dexkit/internal/builder"
	"dexkit/internal/dexfmt"
	"dexkit/internal/opcode"
)

// sampleProject has one method:
//
//	0x0000: const-string v0, "hi"
//	0x0002: invoke-static {v0}, Lfoo/Util;->log(Ljava/lang/String;)V
//	0x0005: return-void
//	0x0006: move-exception v0      (handler for Lfoo/Err;)
//	0x0007: return-void
const sampleProject = `
strings = ["hi"]
methods = ["Lfoo/Util;->log(Ljava/lang/String;)V"]

[[class]]
name = "Lfoo/Err;"
super = "Ljava/lang/Throwable;"

[[class]]
name = "Lfoo/A;"

[[method]]
class = "Lfoo/A;"
name = "run"
params = ["I"]
registers = 3
code = """
001a 0000
1071 0000 0000
000e
000d
000e
"""

  [[method.try]]
  start = 0
  end = 5
  handlers = [{ type = "Lfoo/Err;", addr = 6 }]

  [[method.debug]]
  addr = 0
  kind = "line"
  line = 10

  [[method.debug]]
  addr = 6
  kind = "line"
  line = 12
`

func TestParse(t *testing.T) {
	p, err := Parse([]byte(sampleProject))
	require.NoError(t, err)
	require.Len(t, p.Bodies, 1)
	m := &p.Bodies[0]
	assert.Equal(t, "V", m.Return, "return defaults to void")
	assert.Equal(t, "Lfoo/A;->run(I)V", m.Signature())
	assert.Equal(t, 2, m.InsSize())
	require.Len(t, m.Tries, 1)
	assert.Equal(t, "Lfoo/Err;", m.Tries[0].Handlers[0].Type)

	code, err := m.Bytes()
	require.NoError(t, err)
	assert.Equal(t, []byte{0x1a, 0x00, 0x00, 0x00}, code[:4])
	assert.Len(t, code, 16)
}

func TestParseUnknownKey(t *testing.T) {
	_, err := Parse([]byte("strings = []\nbogus = 1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bogus")
}

func TestBuild(t *testing.T) {
	p, err := Parse([]byte(sampleProject))
	require.NoError(t, err)
	pool, err := p.Pool()
	require.NoError(t, err)

	loaded, err := p.Build(pool, dexfmt.Options{})
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	impl := loaded[0].Impl
	require.Equal(t, 5, impl.Len())
	assert.Equal(t, opcode.InvokeStatic, impl.Instruction(1).Op)
	assert.Equal(t, "Lfoo/Util;->log(Ljava/lang/String;)V", impl.Instruction(1).Ref.String())

	tries := impl.Tries()
	require.Len(t, tries, 1)
	assert.Equal(t, 0, tries[0].Start.Index())
	assert.Equal(t, 2, tries[0].End.Index())
	assert.Equal(t, 3, tries[0].Handlers[0].Handler.Index())

	loc, err := impl.Location(3)
	require.NoError(t, err)
	assert.Equal(t, []builder.DebugItem{builder.LineNumber{Line: 12}}, loc.DebugItems())

	// Round trip through the encoder keeps the bytes.
	enc, err := impl.Encode(pool, builder.ResolveOptions{})
	require.NoError(t, err)
	code, _ := p.Bodies[0].Bytes()
	assert.Equal(t, code, enc.Code)
	require.Len(t, enc.Tries, 1)
	assert.Equal(t, 5, enc.Tries[0].Count)
}

func TestBuildAnalyze(t *testing.T) {
	p, err := Parse([]byte(sampleProject))
	require.NoError(t, err)
	pool, err := p.Pool()
	require.NoError(t, err)
	loaded, err := p.Build(pool, dexfmt.Options{})
	require.NoError(t, err)

	decl := loaded[0].Decl
	res, err := analysis.Analyze(loaded[0].Impl, decl.Info(), p.ClassPath(), analysis.Options{})
	require.NoError(t, err)
	assert.Equal(t, "Reference,Lfoo/Err;", res.Instructions[3].Post[0].String())
	// this and the int parameter occupy the last two registers.
	assert.Equal(t, "Reference,Lfoo/A;", res.Instructions[0].Pre[1].String())
	assert.Equal(t, "Integer", res.Instructions[0].Pre[2].String())
}

func TestBuildErrors(t *testing.T) {
	p := &Project{Bodies: []Method{
		{Class: "Lfoo/A;", Name: "bad", Return: "V", Static: true, Code: "0e"},
		{Class: "Lfoo/A;", Name: "ok", Return: "V", Static: true, Code: "000e"},
		{Class: "Lfoo/A;", Name: "dbg", Return: "V", Static: true, Code: "000e", Debug: []Debug{{Kind: "nope"}}},
		{Class: "Lfoo/A;", Name: "try", Return: "V", Static: true, Code: "000e", Tries: []Try{{Start: 0, End: 1}}},
		{Class: "Lfoo/A;", Name: "regs", Return: "V", Params: []string{"J"}, Registers: 1, Code: "000e"},
	}}
	pool, err := p.Pool()
	require.NoError(t, err)
	loaded, err := p.Build(pool, dexfmt.Options{})
	require.Error(t, err)
	var me *multierror.Error
	require.ErrorAs(t, err, &me)
	assert.Len(t, me.Errors, 4)
	require.Len(t, loaded, 1)
	assert.Equal(t, "ok", loaded[0].Decl.Name)
	assert.Equal(t, 0, loaded[0].Impl.RegisterCount())
}

func TestDebugItems(t *testing.T) {
	cases := []struct {
		d    Debug
		want builder.DebugItem
	}{
		{Debug{Kind: "line", Line: 3}, builder.LineNumber{Line: 3}},
		{Debug{Kind: "local", Reg: 1, Name: "s", Type: "Ljava/lang/String;"}, builder.StartLocal{Register: 1, Name: "s", Type: "Ljava/lang/String;"}},
		{Debug{Kind: "end-local", Reg: 1}, builder.EndLocal{Register: 1}},
		{Debug{Kind: "restart-local", Reg: 2}, builder.RestartLocal{Register: 2}},
		{Debug{Kind: "prologue"}, builder.PrologueEnd{}},
		{Debug{Kind: "epilogue"}, builder.EpilogueBegin{}},
		{Debug{Kind: "source", File: "A.java"}, builder.SetSourceFile{Name: "A.java"}},
	}
	for _, c := range cases {
		got, err := c.d.Item()
		require.NoError(t, err, c.d.Kind)
		assert.Equal(t, c.want, got)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "project.toml")
	require.NoError(t, os.WriteFile(path, []byte(sampleProject), 0644))
	p, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, p.Path)

	cp := p.ClassPath()
	ok, err := cp.IsAssignable("Ljava/lang/Throwable;", "Lfoo/Err;")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}
