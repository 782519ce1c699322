package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"dexkit/internal/dexfmt"
)

// globals holds the persistent flags shared by every subcommand.
type globals struct {
	logLevel string
	noColor  bool
	strict   bool
	maxSteps int

	log zerolog.Logger
}

func (g *globals) decodeOptions(diags *dexfmt.Diags) dexfmt.Options {
	mode := dexfmt.ModeBestEffort
	if g.strict {
		mode = dexfmt.ModeStrict
	}
	return dexfmt.Options{Mode: mode, MaxSteps: g.maxSteps, Diags: diags}
}

func newRootCmd() *cobra.Command {
	g := &globals{log: zerolog.Nop()}
	root := &cobra.Command{
		Use:   "dexkit",
		Short: "Dalvik bytecode assembler, disassembler and type analyzer",
		Long: `dexkit decodes, rebuilds and analyzes Dalvik method bodies described in
a TOML project file (pool entries, class hierarchy, hex code units).`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			lvl, err := zerolog.ParseLevel(g.logLevel)
			if err != nil {
				return fmt.Errorf("--log-level: %w", err)
			}
			if g.noColor {
				color.NoColor = true
			}
			g.log = zerolog.New(zerolog.ConsoleWriter{Out: cmd.ErrOrStderr(), NoColor: color.NoColor}).
				Level(lvl).With().Timestamp().Logger()
			return nil
		},
	}
	root.CompletionOptions.DisableDefaultCmd = true

	pf := root.PersistentFlags()
	pf.StringVar(&g.logLevel, "log-level", "warn", "log level (trace, debug, info, warn, error)")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colored output")
	pf.BoolVar(&g.strict, "strict", false, "fail on the first unknown opcode instead of passing it through")
	pf.IntVar(&g.maxSteps, "max-steps", 0, "global decode loop cap (0 = default)")

	root.AddCommand(
		newDisasmCmd(g),
		newRoundtripCmd(g),
		newAnalyzeCmd(g),
		newGraphCmd(g),
		newRenderCmd(g),
	)
	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
