package generator

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"ai_news_agent/metrics"
)

// Pipeline runs the planner, writer and editor stages for a topic. The stage
// templates and options are fixed at construction and shared read-only by
// every run.
type Pipeline struct {
	llm    LLMClient
	stages []Stage
	opts   Options
	mode   EditorMode
	logger zerolog.Logger
}

// PipelineOption customises a Pipeline.
type PipelineOption func(*Pipeline)

// WithEditorMode selects the editor stage variant.
func WithEditorMode(mode EditorMode) PipelineOption {
	return func(p *Pipeline) { p.mode = mode }
}

// WithLogger replaces the global zerolog logger.
func WithLogger(l zerolog.Logger) PipelineOption {
	return func(p *Pipeline) { p.logger = l }
}

func NewPipeline(llm LLMClient, opts Options, options ...PipelineOption) (*Pipeline, error) {
	if llm == nil {
		return nil, errors.New("llm client is required")
	}
	p := &Pipeline{
		llm:    llm,
		opts:   opts,
		mode:   EditorJSON,
		logger: log.Logger,
	}
	for _, o := range options {
		o(p)
	}
	if _, err := ParseEditorMode(string(p.mode)); err != nil {
		return nil, err
	}
	p.stages = DefaultStages(p.mode)
	return p, nil
}

// Stages returns a copy of the stage templates in run order.
func (p *Pipeline) Stages() []Stage {
	return append([]Stage(nil), p.stages...)
}

// Generate runs every stage in order, feeding each stage the previous one's
// output, and structures the editor's answer into an Article.
func (p *Pipeline) Generate(ctx context.Context, topic string) (Article, error) {
	logger := p.logger.With().Str("topic", topic).Logger()
	start := time.Now()

	var prev string
	for _, st := range p.stages {
		out, err := p.runStage(ctx, st, topic, prev, logger)
		if err != nil {
			logger.Error().Err(err).Str("stage", st.Name).Msg("pipeline failed")
			return Article{}, err
		}
		prev = out
	}

	art, structured := PostProcess(prev, topic, p.mode)
	if !structured {
		metrics.Fallbacks.Inc()
		logger.Warn().Str("mode", string(p.mode)).Msg("editor output not structured; using draft fallback")
	}
	logger.Info().
		Dur("elapsed", time.Since(start)).
		Int("sections", len(art.Sections)).
		Bool("structured", structured).
		Msg("article generated")
	return art, nil
}

func (p *Pipeline) runStage(ctx context.Context, st Stage, topic, prev string, logger zerolog.Logger) (string, error) {
	prompt := BuildStagePrompt(st, topic, prev)
	opts := p.opts
	opts.JSON = p.opts.JSON && st.JSONOutput

	stageCtx := ctx
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		stageCtx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	logger.Debug().Str("stage", st.Name).Bool("json", opts.JSON).Msg("stage started")
	began := time.Now()
	out, err := p.llm.Complete(stageCtx, prompt, opts)
	elapsed := time.Since(began)
	if err != nil {
		metrics.StageDuration.WithLabelValues(st.Name, metrics.OutcomeError).Observe(elapsed.Seconds())
		return "", &GenerationFailedError{Stage: st.Name, Err: err}
	}
	if strings.TrimSpace(out) == "" {
		metrics.StageDuration.WithLabelValues(st.Name, metrics.OutcomeEmpty).Observe(elapsed.Seconds())
		return "", &GenerationFailedError{Stage: st.Name, Err: ErrEmptyOutput}
	}
	metrics.StageDuration.WithLabelValues(st.Name, metrics.OutcomeOK).Observe(elapsed.Seconds())
	logger.Debug().Str("stage", st.Name).Dur("elapsed", elapsed).Int("bytes", len(out)).Msg("stage finished")
	return out, nil
}
