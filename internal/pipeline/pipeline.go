package pipeline

import (
	"context"
	"log/slog"

	"github.com/nao1215/mdcrawl/internal/config"
	"github.com/nao1215/mdcrawl/internal/crawler"
	"github.com/nao1215/mdcrawl/internal/model"
)

// Run is the state of one seed as it moves through the pipeline.
type Run struct {
	// Seed is the start URL as given by the user.
	Seed string

	// OutputDir is the directory of the markdown output file.
	OutputDir string

	// OutputPath is the file page texts are appended to.
	OutputPath string

	// Config is the effective configuration with site overrides applied.
	Config *config.Config

	// Site is the merged per-site configuration of the seed's host.
	Site config.SiteConfig

	// Report is set by the crawl step.
	Report *model.RunReport

	observers []crawler.Observer
}

// Observe registers a callback for every page record of the crawl.
func (r *Run) Observe(o crawler.Observer) {
	r.observers = append(r.observers, o)
}

func (r *Run) observer() crawler.Observer {
	if len(r.observers) == 0 {
		return nil
	}
	return func(p model.PageRecord) {
		for _, o := range r.observers {
			o(p)
		}
	}
}

// Step is one stage of a run.
type Step interface {
	// Do executes the step. A returned error ends the run.
	Do(ctx context.Context, run *Run) error

	// Name identifies the step in logs.
	Name() string
}

// Pipeline executes steps in order.
type Pipeline struct {
	steps  []Step
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// New creates an empty Pipeline.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{steps: make([]Step, 0)}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddSteps appends steps.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// StepNames returns the step names in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// Execute runs every step until one fails or ctx is done.
func (p *Pipeline) Execute(ctx context.Context, run *Run) error {
	for _, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("run canceled", "step", step.Name(), "seed", run.Seed, "reason", err)
			return err
		}

		p.logger.Debug("executing step", "step", step.Name(), "seed", run.Seed)
		if err := step.Do(ctx, run); err != nil {
			p.logger.Error("step failed", "step", step.Name(), "seed", run.Seed, "error", err)
			return err
		}
		p.logger.Debug("step completed", "step", step.Name(), "seed", run.Seed)
	}
	return nil
}
