package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dexkit/internal/analysis"
	"dexkit/internal/disasm"
	"dexkit/internal/output"
)

func newAnalyzeCmd(g *globals) *cobra.Command {
	var (
		project, method, outDir, format string
		maxVisits, workers              int
	)
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Infer register types for every method",
		Long: `analyze runs the register type analysis over each method concurrently and
prints a summary line per method. With --out the per-instruction states are
written to types.json or types.cbor.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != "json" && format != "cbor" {
				return fmt.Errorf("--format must be json or cbor, got %q", format)
			}
			ws, err := loadProject(g, project)
			if err != nil {
				return err
			}
			methods := ws.selected(method)
			outcomes, err := analysis.AnalyzeAll(cmd.Context(), jobs(methods), ws.cp, analysis.Options{
				MaxVisits: maxVisits,
				Workers:   workers,
				Logger:    &g.log,
			})
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			var records []disasm.TypeRecord
			var failed int
			for _, o := range outcomes {
				sig := o.Job.Method.String()
				if o.Err != nil {
					failed++
					fmt.Fprintf(w, "%-60s error: %v\n", sig, o.Err)
					continue
				}
				fmt.Fprintf(w, "%-60s insns=%d dead=%d visits=%d\n",
					sig, len(o.Result.Instructions), len(o.Result.Dead()), o.Result.Visits)
				records = append(records, disasm.TypeRecords(sig, o.Result)...)
			}

			if outDir != "" {
				path := filepath.Join(outDir, "types."+format)
				write := output.WriteJSON
				if format == "cbor" {
					write = output.WriteCBOR
				}
				if err := write(path, records); err != nil {
					return err
				}
				g.log.Info().Str("path", path).Int("records", len(records)).Msg("wrote types")
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d methods failed analysis", failed, len(outcomes))
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&project, "project", "p", "", "project file (TOML)")
	fl.StringVarP(&method, "method", "m", "", "only methods whose signature contains this")
	fl.StringVarP(&outDir, "out", "o", "", "output directory for the type dump")
	fl.StringVar(&format, "format", "json", "type dump format: json or cbor")
	fl.IntVar(&maxVisits, "max-visits", 0, "per-method visit cap (0 = derived from method size)")
	fl.IntVar(&workers, "workers", 0, "concurrent analyses (0 = unlimited)")
	return cmd
}
