package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/zboralski/lattice"
	latticerender "github.com/zboralski/lattice/render"

	"dexkit/internal/analysis"
	"dexkit/internal/callgraph"
	"dexkit/internal/disasm"
	"dexkit/internal/output"
	"dexkit/internal/render"
)

type graphFlags struct {
	project  string
	method   string
	outDir   string
	title    string
	maxNodes int
	summary  bool
	svg      bool
}

func newGraphCmd(g *globals) *cobra.Command {
	var f graphFlags
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Write control flow, call and class graphs as DOT",
		Long: `graph writes one typed CFG per method under cfg/, the lattice CFG and
call graph, and the callgraph, classgraph, hierarchy and reachability views.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGraph(g, cmd, f)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&f.project, "project", "p", "", "project file (TOML)")
	fl.StringVarP(&f.method, "method", "m", "", "only methods whose signature contains this")
	fl.StringVarP(&f.outDir, "out", "o", "", "output directory (required)")
	fl.StringVar(&f.title, "title", "dexkit", "graph title")
	fl.IntVar(&f.maxNodes, "max-nodes", 0, "max method nodes in the call graph (0 = all)")
	fl.BoolVar(&f.summary, "summary", false, "one block per method in the lattice CFG")
	fl.BoolVar(&f.svg, "svg", false, "also render SVGs with graphviz dot")
	return cmd
}

func runGraph(g *globals, cmd *cobra.Command, f graphFlags) error {
	if f.outDir == "" {
		return fmt.Errorf("--out is required")
	}
	ws, err := loadProject(g, f.project)
	if err != nil {
		return err
	}
	methods := ws.selected(f.method)
	outcomes, err := analysis.AnalyzeAll(cmd.Context(), jobs(methods), ws.cp, analysis.Options{Logger: &g.log})
	if err != nil {
		return err
	}

	var (
		funcs     []disasm.FuncRecord
		edges     []disasm.CallEdgeRecord
		funcInfos []callgraph.FuncInfo
		lcfg      = &lattice.CFGGraph{}
	)
	for n, l := range methods {
		sig := l.Decl.Signature()
		res, aerr := outcomes[n].Result, outcomes[n].Err

		cfg, err := disasm.BuildCFG(sig, l.Impl)
		if err != nil {
			return fmt.Errorf("%s: %w", sig, err)
		}
		opts := render.CFGOptions{}
		if res != nil {
			opts.Annotate = disasm.TypeAnnotator(res)
			opts.Dead = func(i int) bool { return res.Instructions[i].Dead }
		}
		if dot := render.CFGDOT(cfg, render.NASA, opts); dot != "" {
			if err := output.WriteDOT(f.outDir, "cfg", output.MethodPath(sig), dot); err != nil {
				return err
			}
		}

		fi := callgraph.NewFuncInfo(sig, l.Impl)
		funcInfos = append(funcInfos, fi)
		if f.summary {
			lcfg.Funcs = append(lcfg.Funcs, callgraph.BuildSummaryFuncCFG(fi))
		} else {
			fc, _, err := callgraph.BuildFuncCFG(fi)
			if err != nil {
				return fmt.Errorf("%s: %w", sig, err)
			}
			lcfg.Funcs = append(lcfg.Funcs, fc)
		}

		rec := funcRecord(l, len(cfg.Insts), res, aerr)
		rec.Blocks = len(cfg.Blocks)
		funcs = append(funcs, rec)
		edges = append(edges, disasm.EdgeRecords(sig, fi.CallEdges)...)
	}

	files := []struct {
		name, dot string
	}{
		{"lattice_cfg.dot", latticerender.DOTCFG(lcfg, f.title)},
		{"lattice_callgraph.dot", latticerender.DOT(callgraph.BuildCallGraph(funcInfos), f.title)},
		{"hierarchy.dot", render.HierarchyDOT(ws.cp.Classes(), f.title+" (classes)", render.NASA)},
	}
	for _, file := range files {
		if err := writeDOT(g, filepath.Join(f.outDir, file.name), file.dot, f.svg); err != nil {
			return err
		}
	}
	return writeRecordGraphs(g, cmd, f.outDir, funcs, edges, f.title, f.maxNodes, f.svg)
}

// writeRecordGraphs writes the views derived from method and call edge
// records and prints their summary.
func writeRecordGraphs(g *globals, cmd *cobra.Command, dir string, funcs []disasm.FuncRecord, edges []disasm.CallEdgeRecord, title string, maxNodes int, svg bool) error {
	entryPoints := render.FindEntryPoints(funcs, edges)
	reachable := render.ReachableSet(entryPoints, edges)
	files := []struct {
		name, dot string
	}{
		{"callgraph.dot", render.CallgraphDOT(funcs, edges, title, render.NASA, maxNodes)},
		{"classgraph.dot", render.ClassgraphDOT(funcs, edges, title+" (class level)", render.NASA, maxNodes)},
		{"reachable.dot", render.ReachabilityDOT(edges, reachable, entryPoints, title+" (reachable)", render.NASA)},
	}
	for _, file := range files {
		if err := writeDOT(g, filepath.Join(dir, file.name), file.dot, svg); err != nil {
			return err
		}
	}

	st := render.ComputeStats(funcs, edges)
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "methods: %d  edges: %d (internal %d)  classes: %d\n",
		st.TotalFunctions, st.TotalEdges, st.InternalEdges, st.UniqueOwners)
	fmt.Fprintf(w, "entry points: %d  reachable: %d  unreachable: %d\n",
		len(entryPoints), len(reachable), len(render.Unreachable(funcs, reachable)))
	for _, prov := range []string{render.ProvVirtual, render.ProvInterface, render.ProvSuper, render.ProvDirect, render.ProvStatic, render.ProvDynamic} {
		if c := st.ProvCounts[prov]; c > 0 {
			fmt.Fprintf(w, "  %-10s %d\n", prov, c)
		}
	}
	for n, nc := range st.TopCallees {
		if n == 5 {
			break
		}
		fmt.Fprintf(w, "  callee %4d  %s\n", nc.Count, nc.Name)
	}
	return nil
}

func writeDOT(g *globals, path, dot string, svg bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(dot), 0644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	g.log.Debug().Str("path", path).Int("bytes", len(dot)).Msg("wrote")
	if svg {
		svgPath := path[:len(path)-len(filepath.Ext(path))] + ".svg"
		if err := runDot(path, svgPath, "svg"); err != nil {
			g.log.Warn().Err(err).Str("path", path).Msg("SVG failed")
		}
	}
	return nil
}
