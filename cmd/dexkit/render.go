package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/spf13/cobra"

	"dexkit/internal/disasm"
	"dexkit/internal/output"
)

func newRenderCmd(g *globals) *cobra.Command {
	var (
		inDir, title string
		maxNodes     int
		svg          bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render graphs from the JSONL records disasm --out wrote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if inDir == "" {
				return fmt.Errorf("--in is required")
			}
			funcs, err := output.ReadJSONL[disasm.FuncRecord](filepath.Join(inDir, "methods.jsonl"))
			if err != nil {
				return fmt.Errorf("read methods.jsonl: %w", err)
			}
			edges, err := output.ReadJSONL[disasm.CallEdgeRecord](filepath.Join(inDir, "call_edges.jsonl"))
			if err != nil {
				return fmt.Errorf("read call_edges.jsonl: %w", err)
			}
			g.log.Info().Int("methods", len(funcs)).Int("edges", len(edges)).Msg("read records")
			return writeRecordGraphs(g, cmd, filepath.Join(inDir, "render"), funcs, edges, title, maxNodes, svg)
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&inDir, "in", "i", "", "input directory (disasm --out)")
	fl.StringVar(&title, "title", "dexkit", "graph title")
	fl.IntVar(&maxNodes, "max-nodes", 0, "max method nodes in the call graph (0 = all)")
	fl.BoolVar(&svg, "svg", false, "also render SVGs with graphviz dot")
	return cmd
}

// runDot invokes graphviz dot to produce the given format.
func runDot(dotPath, outPath, format string) error {
	cmd := exec.Command("dot", "-T"+format, "-o", outPath, dotPath)
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
