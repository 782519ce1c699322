package main

import (
	"bytes"
	"fmt"

	"github.com/spf13/cobra"

	"dexkit/internal/builder"
	"dexkit/internal/output"
)

func newRoundtripCmd(g *globals) *cobra.Command {
	var (
		project, method, outDir string
		check                   bool
	)
	cmd := &cobra.Command{
		Use:   "roundtrip",
		Short: "Decode, rebuild and re-encode every method, comparing the bytes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := loadProject(g, project)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			var changed int
			for _, l := range ws.selected(method) {
				sig := l.Decl.Signature()
				orig, err := l.Decl.Bytes()
				if err != nil {
					return fmt.Errorf("%s: %w", sig, err)
				}
				enc, err := l.Impl.Encode(ws.pool, builder.ResolveOptions{Logger: &g.log})
				if err != nil {
					return fmt.Errorf("%s: %w", sig, err)
				}
				status := "same"
				if !bytes.Equal(orig, enc.Code) {
					status = fmt.Sprintf("changed %d -> %d units", len(orig)/2, enc.CodeUnits())
					changed++
				}
				fmt.Fprintf(w, "%-60s %s  tries=%d debug=%d\n", sig, status, len(enc.Tries), len(enc.Debug))
				if outDir != "" {
					if err := output.WriteCode(outDir, output.MethodPath(sig), enc.Code); err != nil {
						return err
					}
				}
			}
			if check && changed > 0 {
				return fmt.Errorf("%d methods changed on re-encode", changed)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVarP(&project, "project", "p", "", "project file (TOML)")
	fl.StringVarP(&method, "method", "m", "", "only methods whose signature contains this")
	fl.StringVarP(&outDir, "out", "o", "", "write re-encoded code to <out>/code")
	fl.BoolVar(&check, "check", false, "fail when any method's bytes change")
	return cmd
}
