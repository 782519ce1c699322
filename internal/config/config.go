// Package config loads dexkit project files: a TOML description of a
// reference pool, a class hierarchy and method bodies given as hex code
// units with their try ranges and debug events.
package config

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/hashicorp/go-multierror"

	"dexkit/internal/analysis"
	"dexkit/internal/builder"
	"dexkit/internal/dexfmt"
	"dexkit/internal/ref"
)

// Project is a parsed project file. Pool entries get indices in the order
// they are listed, kind by kind.
type Project struct {
	Strings []string `toml:"strings"`
	Types   []string `toml:"types"`
	Fields  []string `toml:"fields"`
	Methods []string `toml:"methods"`
	Protos  []string `toml:"protos"`

	Classes []Class  `toml:"class"`
	Bodies  []Method `toml:"method"`

	// Path is the file the project was loaded from (set at load time).
	Path string `toml:"-"`
}

type Class struct {
	Name       string   `toml:"name"`
	Super      string   `toml:"super"`
	Interfaces []string `toml:"interfaces"`
	Interface  bool     `toml:"interface"`
}

// Method is one method body. Code lists 16-bit code units in hex,
// separated by whitespace: "1210 0f00".
type Method struct {
	Class     string   `toml:"class"`
	Name      string   `toml:"name"`
	Params    []string `toml:"params"`
	Return    string   `toml:"return"`
	Static    bool     `toml:"static"`
	Registers int      `toml:"registers"`
	Code      string   `toml:"code"`
	Tries     []Try    `toml:"try"`
	Debug     []Debug  `toml:"debug"`
}

// Try covers code-unit addresses [Start, End).
type Try struct {
	Start    int       `toml:"start"`
	End      int       `toml:"end"`
	Handlers []Handler `toml:"handlers"`
}

// Handler jumps to Addr; an empty Type catches everything.
type Handler struct {
	Type string `toml:"type"`
	Addr int    `toml:"addr"`
}

// Debug is a debug event at a code-unit address. Kind is one of line,
// local, end-local, restart-local, prologue, epilogue and source.
type Debug struct {
	Addr      int    `toml:"addr"`
	Kind      string `toml:"kind"`
	Line      int    `toml:"line"`
	Reg       int    `toml:"reg"`
	Name      string `toml:"name"`
	Type      string `toml:"type"`
	Signature string `toml:"signature"`
	File      string `toml:"file"`
}

// Load parses the project file at path.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config: parse error in %s: %w", path, err)
	}
	p.Path = path
	return p, nil
}

// Parse decodes a project from TOML text. Unknown keys are an error.
func Parse(data []byte) (*Project, error) {
	var p Project
	md, err := toml.Decode(string(data), &p)
	if err != nil {
		return nil, err
	}
	if undec := md.Undecoded(); len(undec) > 0 {
		keys := make([]string, len(undec))
		for n, k := range undec {
			keys[n] = k.String()
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}
	for n := range p.Bodies {
		if p.Bodies[n].Return == "" {
			p.Bodies[n].Return = "V"
		}
	}
	return &p, nil
}

// Pool interns the declared pool entries. Strings, types and protos can
// also be added implicitly by encoding; fields and methods must be listed
// for decoding to resolve them.
func (p *Project) Pool() (*ref.Pool, error) {
	pool := ref.NewPool()
	for _, s := range p.Strings {
		pool.MustIntern(ref.String(s))
	}
	for _, t := range p.Types {
		pool.MustIntern(ref.Type(t))
	}
	for _, s := range p.Fields {
		f, err := ref.ParseField(s)
		if err != nil {
			return nil, err
		}
		pool.MustIntern(f)
	}
	for _, s := range p.Methods {
		m, err := ref.ParseMethod(s)
		if err != nil {
			return nil, err
		}
		pool.MustIntern(m)
	}
	for _, s := range p.Protos {
		pr, err := ref.ParseProto(s)
		if err != nil {
			return nil, err
		}
		pool.MustIntern(pr)
	}
	return pool, nil
}

// ClassPath returns the declared hierarchy on top of the built-in classes.
func (p *Project) ClassPath() *analysis.StaticClassPath {
	cp := analysis.NewStaticClassPath()
	for _, c := range p.Classes {
		cp.Add(analysis.Class{Name: c.Name, Super: c.Super, Interfaces: c.Interfaces, Interface: c.Interface})
	}
	return cp
}

// Loaded is a method body copied into the builder.
type Loaded struct {
	Decl *Method
	Impl *builder.MethodImplementation
}

// Build decodes every method body against pool. Methods that fail are
// skipped and their errors returned together.
func (p *Project) Build(pool *ref.Pool, opts dexfmt.Options) ([]Loaded, error) {
	var out []Loaded
	var errs *multierror.Error
	for n := range p.Bodies {
		decl := &p.Bodies[n]
		impl, err := decl.Build(pool, opts)
		if err != nil {
			errs = multierror.Append(errs, fmt.Errorf("%s: %w", decl.Signature(), err))
			continue
		}
		out = append(out, Loaded{Decl: decl, Impl: impl})
	}
	return out, errs.ErrorOrNil()
}

func (m *Method) Info() analysis.MethodInfo {
	return analysis.MethodInfo{Class: m.Class, Name: m.Name, Params: m.Params, Return: m.Return, Static: m.Static}
}

// Signature is the method's reference form, "C->name(P)R".
func (m *Method) Signature() string { return m.Info().String() }

// InsSize is the number of registers the parameters occupy.
func (m *Method) InsSize() int {
	n := 0
	if !m.Static {
		n++
	}
	for _, p := range m.Params {
		if p == "J" || p == "D" {
			n += 2
		} else {
			n++
		}
	}
	return n
}

// Bytes decodes Code into a little-endian code array.
func (m *Method) Bytes() ([]byte, error) {
	fields := strings.Fields(m.Code)
	out := make([]byte, 0, 2*len(fields))
	for _, f := range fields {
		if len(f) != 4 {
			return nil, fmt.Errorf("code unit %q: want 4 hex digits", f)
		}
		b, err := hex.DecodeString(f)
		if err != nil {
			return nil, fmt.Errorf("code unit %q: %w", f, err)
		}
		out = binary.LittleEndian.AppendUint16(out, binary.BigEndian.Uint16(b))
	}
	return out, nil
}

// Build decodes the body and attaches its try ranges and debug events.
// A zero register count defaults to InsSize.
func (m *Method) Build(pool *ref.Pool, opts dexfmt.Options) (*builder.MethodImplementation, error) {
	code, err := m.Bytes()
	if err != nil {
		return nil, err
	}
	regs := m.Registers
	if regs == 0 {
		regs = m.InsSize()
	}
	if regs < m.InsSize() {
		return nil, fmt.Errorf("%d registers cannot hold %d parameter registers", regs, m.InsSize())
	}
	impl, err := builder.FromCode(regs, code, pool, opts)
	if err != nil {
		return nil, err
	}
	for n, t := range m.Tries {
		if err := addTry(impl, t); err != nil {
			return nil, fmt.Errorf("try %d: %w", n, err)
		}
	}
	events := make([]builder.DebugEvent, len(m.Debug))
	for n, d := range m.Debug {
		item, err := d.Item()
		if err != nil {
			return nil, fmt.Errorf("debug %d: %w", n, err)
		}
		events[n] = builder.DebugEvent{Address: d.Addr, Item: item}
	}
	if err := impl.ApplyDebugEvents(events); err != nil {
		return nil, err
	}
	return impl, nil
}

func addTry(impl *builder.MethodImplementation, t Try) error {
	if len(t.Handlers) == 0 {
		return fmt.Errorf("no handlers")
	}
	start, err := impl.LabelAt(t.Start)
	if err != nil {
		return err
	}
	end, err := impl.LabelAt(t.End)
	if err != nil {
		return err
	}
	for _, h := range t.Handlers {
		target, err := impl.LabelAt(h.Addr)
		if err != nil {
			return err
		}
		if h.Type == "" {
			err = impl.AddCatchAll(start, end, target)
		} else {
			err = impl.AddCatch(h.Type, start, end, target)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// Item converts d to its builder debug item.
func (d Debug) Item() (builder.DebugItem, error) {
	switch d.Kind {
	case "line":
		return builder.LineNumber{Line: d.Line}, nil
	case "local":
		return builder.StartLocal{Register: d.Reg, Name: d.Name, Type: d.Type, Signature: d.Signature}, nil
	case "end-local":
		return builder.EndLocal{Register: d.Reg}, nil
	case "restart-local":
		return builder.RestartLocal{Register: d.Reg}, nil
	case "prologue":
		return builder.PrologueEnd{}, nil
	case "epilogue":
		return builder.EpilogueBegin{}, nil
	case "source":
		return builder.SetSourceFile{Name: d.File}, nil
	}
	return nil, fmt.Errorf("unknown debug kind %q", d.Kind)
}
