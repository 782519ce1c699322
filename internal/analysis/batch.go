package analysis

import (
	"context"

	"golang.org/x/sync/errgroup"

	"dexkit/internal/builder"
)

// Job is one method to analyze. Jobs must not share a MethodImplementation.
type Job struct {
	Method MethodInfo
	Code   *builder.MethodImplementation
}

// Outcome pairs a job with its result or its failure.
type Outcome struct {
	Job    Job
	Result *Result
	Err    error
}

// AnalyzeAll analyzes independent methods concurrently. A failing method
// is reported in its Outcome and does not stop the others; the returned
// error is only set when ctx is canceled. Outcomes are in job order.
func AnalyzeAll(ctx context.Context, jobs []Job, cp ClassPath, opts Options) ([]Outcome, error) {
	out := make([]Outcome, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if opts.Workers > 0 {
		g.SetLimit(opts.Workers)
	}
	for n, job := range jobs {
		out[n].Job = job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			out[n].Result, out[n].Err = Analyze(job.Code, job.Method, cp, opts)
			if out[n].Err != nil {
				opts.logger().Warn().Err(out[n].Err).Str("method", job.Method.String()).Msg("analysis failed")
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return out, err
	}
	return out, nil
}
