package main

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"dexkit/internal/analysis"
	"dexkit/internal/config"
	"dexkit/internal/dexfmt"
	"dexkit/internal/disasm"
	"dexkit/internal/output"
	"dexkit/internal/ref"
	"dexkit/internal/render"
)

type disasmFlags struct {
	project string
	method  string
	hex     string
	types   bool
	outDir  string
	window  int
}

func newDisasmCmd(g *globals) *cobra.Command {
	var f disasmFlags
	cmd := &cobra.Command{
		Use:   "disasm",
		Short: "Print method listings and write per-method records",
		Long: `disasm lists every method of a project (or the code units given with --hex).
With --out it also writes listing/<class>/<method>.txt, methods.jsonl,
call_edges.jsonl and string_refs.jsonl.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if f.hex != "" {
				return disasmHex(g, cmd.OutOrStdout(), f)
			}
			return disasmProject(g, cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.project, "project", "p", "", "project file (TOML)")
	fl.StringVarP(&f.method, "method", "m", "", "only methods whose signature contains this")
	fl.StringVar(&f.hex, "hex", "", "disassemble these hex code units instead of a project")
	fl.BoolVar(&f.types, "types", false, "annotate register types and dead code")
	fl.StringVarP(&f.outDir, "out", "o", "", "output directory for listings and JSONL records")
	fl.IntVar(&f.window, "window", disasm.DefaultWindow, "instructions a constant stays attached to a register for call edges")
	return cmd
}

// disasmHex lists raw code units. Pool indices resolve against the
// project when one is given.
func disasmHex(g *globals, w io.Writer, f disasmFlags) error {
	code, err := (&config.Method{Code: f.hex}).Bytes()
	if err != nil {
		return err
	}
	var resolver ref.Resolver
	if f.project != "" {
		proj, err := config.Load(f.project)
		if err != nil {
			return err
		}
		pool, err := proj.Pool()
		if err != nil {
			return err
		}
		resolver = pool
	}
	var diags dexfmt.Diags
	opts := g.decodeOptions(&diags)
	insts, err := disasm.Disassemble(code, disasm.Options{
		MaxSteps: opts.MaxSteps,
		Resolver: resolver,
		Mode:     opts.Mode,
		Diags:    opts.Diags,
	})
	for _, d := range diags.Items() {
		g.log.Warn().Str("kind", string(d.Kind)).Uint64("offset", d.Offset).Msg(d.Msg)
	}
	if lerr := render.Listing(w, insts, render.ListingOptions{}); lerr != nil {
		return lerr
	}
	return err
}

func disasmProject(g *globals, cmd *cobra.Command, f disasmFlags) error {
	ws, err := loadProject(g, f.project)
	if err != nil {
		return err
	}
	methods := ws.selected(f.method)
	if len(methods) == 0 {
		return fmt.Errorf("no method matches %q", f.method)
	}

	var outcomes []analysis.Outcome
	if f.types || f.outDir != "" {
		outcomes, err = analysis.AnalyzeAll(cmd.Context(), jobs(methods), ws.cp, analysis.Options{Logger: &g.log})
		if err != nil {
			return err
		}
	}

	var sink *recordSink
	if f.outDir != "" {
		sink, err = newRecordSink(f.outDir)
		if err != nil {
			return err
		}
		defer sink.Close()
	}

	w := cmd.OutOrStdout()
	for n, l := range methods {
		sig := l.Decl.Signature()
		insts, err := disasm.FromMethod(l.Impl)
		if err != nil {
			return fmt.Errorf("%s: %w", sig, err)
		}
		labels := disasm.MethodLabels(l.Impl)
		annotators := []disasm.Annotator{disasm.DebugAnnotator(l.Impl)}
		opts := render.ListingOptions{Labels: labels}

		var res *analysis.Result
		var aerr error
		if outcomes != nil {
			res, aerr = outcomes[n].Result, outcomes[n].Err
		}
		if res != nil && f.types {
			annotators = append([]disasm.Annotator{disasm.TypeAnnotator(res)}, annotators...)
			opts.Dead = func(i int) bool { return res.Instructions[i].Dead }
		}
		if aerr != nil {
			g.log.Warn().Err(aerr).Str("method", sig).Msg("analysis failed")
		}
		opts.Annotate = disasm.Chain(annotators...)

		if _, err := fmt.Fprintf(w, "%s  # registers=%d\n", sig, l.Impl.RegisterCount()); err != nil {
			return err
		}
		if err := render.Listing(w, insts, opts); err != nil {
			return err
		}
		fmt.Fprintln(w)

		if sink != nil {
			if err := output.WriteListing(f.outDir, output.MethodPath(sig), insts, labels, opts.Annotate); err != nil {
				return fmt.Errorf("write listing %s: %w", sig, err)
			}
			if err := sink.add(l, insts, res, aerr, f.window); err != nil {
				return err
			}
		}
	}
	if sink != nil {
		g.log.Info().Int("methods", sink.funcs.Count()).Int("edges", sink.edges.Count()).
			Int("strings", sink.strings.Count()).Str("dir", f.outDir).Msg("wrote records")
	}
	return nil
}

// recordSink owns the JSONL streams disasm writes.
type recordSink struct {
	funcs, edges, strings *output.JSONL
}

func newRecordSink(dir string) (*recordSink, error) {
	s := &recordSink{}
	var err error
	if s.funcs, err = output.CreateJSONL(filepath.Join(dir, "methods.jsonl")); err != nil {
		return nil, err
	}
	if s.edges, err = output.CreateJSONL(filepath.Join(dir, "call_edges.jsonl")); err != nil {
		s.funcs.Close()
		return nil, err
	}
	if s.strings, err = output.CreateJSONL(filepath.Join(dir, "string_refs.jsonl")); err != nil {
		s.funcs.Close()
		s.edges.Close()
		return nil, err
	}
	return s, nil
}

func (s *recordSink) add(l config.Loaded, insts []disasm.Inst, res *analysis.Result, aerr error, window int) error {
	sig := l.Decl.Signature()
	rec := funcRecord(l, len(insts), res, aerr)
	if cfg, err := disasm.BuildCFG(sig, l.Impl); err == nil {
		rec.Blocks = len(cfg.Blocks)
	}
	if err := s.funcs.Write(rec); err != nil {
		return err
	}
	if err := output.WriteAll(s.edges, disasm.EdgeRecords(sig, disasm.CallEdges(l.Impl, window))); err != nil {
		return err
	}
	return output.WriteAll(s.strings, disasm.StringRecords(sig, disasm.StringRefs(l.Impl)))
}

func (s *recordSink) Close() error {
	var first error
	for _, w := range []*output.JSONL{s.funcs, s.edges, s.strings} {
		if err := w.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

func funcRecord(l config.Loaded, ninsts int, res *analysis.Result, aerr error) disasm.FuncRecord {
	rec := disasm.FuncRecord{
		Name:         l.Decl.Signature(),
		Owner:        l.Decl.Class,
		Registers:    l.Impl.RegisterCount(),
		CodeUnits:    l.Impl.CodeUnits(),
		Instructions: ninsts,
	}
	if res != nil {
		rec.Dead = res.Dead()
		rec.Visits = res.Visits
	}
	if aerr != nil {
		rec.Error = aerr.Error()
	}
	return rec
}
