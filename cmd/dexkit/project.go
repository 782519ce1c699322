package main

import (
	"fmt"
	"strings"

	"dexkit/internal/analysis"
	"dexkit/internal/config"
	"dexkit/internal/dexfmt"
	"dexkit/internal/ref"
)

// workspace is a loaded project with every method body in the builder.
type workspace struct {
	proj    *config.Project
	pool    *ref.Pool
	cp      *analysis.StaticClassPath
	methods []config.Loaded
}

// loadProject reads a project file. Methods that fail to decode are logged
// and left out; the call only fails when nothing usable remains.
func loadProject(g *globals, path string) (*workspace, error) {
	if path == "" {
		return nil, fmt.Errorf("--project is required")
	}
	proj, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	pool, err := proj.Pool()
	if err != nil {
		return nil, fmt.Errorf("pool: %w", err)
	}
	var diags dexfmt.Diags
	methods, err := proj.Build(pool, g.decodeOptions(&diags))
	for _, d := range diags.Items() {
		g.log.Warn().Str("kind", string(d.Kind)).Uint64("offset", d.Offset).Msg(d.Msg)
	}
	if err != nil {
		if len(methods) == 0 {
			return nil, err
		}
		g.log.Warn().Err(err).Int("loaded", len(methods)).Msg("some methods were skipped")
	}
	g.log.Debug().Str("project", path).Int("methods", len(methods)).Int("classes", len(proj.Classes)).Msg("loaded")
	return &workspace{proj: proj, pool: pool, cp: proj.ClassPath(), methods: methods}, nil
}

// selected returns the methods whose signature contains filter.
func (w *workspace) selected(filter string) []config.Loaded {
	if filter == "" {
		return w.methods
	}
	var out []config.Loaded
	for _, l := range w.methods {
		if strings.Contains(l.Decl.Signature(), filter) {
			out = append(out, l)
		}
	}
	return out
}

// jobs pairs each method with its declaration for batch analysis.
func jobs(methods []config.Loaded) []analysis.Job {
	out := make([]analysis.Job, len(methods))
	for n, l := range methods {
		out[n] = analysis.Job{Method: l.Decl.Info(), Code: l.Impl}
	}
	return out
}
