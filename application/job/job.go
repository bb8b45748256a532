// Package job implements the pipeline workers: the two collection sweeps
// and the enrichment and embedding passes, each runnable as a one-shot
// or an endless loop.
package job

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sort"
	"time"

	"github.com/newswaters/newswaters/domain/item"
	"github.com/newswaters/newswaters/domain/service"
	"github.com/newswaters/newswaters/internal/config"
)

// SearchEngine is the slice of the search-engine API the embed jobs use.
type SearchEngine interface {
	FindMissing(ctx context.Context, collection string, ids []int32) ([]int32, error)
	Upsert(ctx context.Context, collection string, id int32, embedding []float32, sentence *string) error
}

// Config carries the worker knobs plus the collection layout.
type Config struct {
	Env               config.JobEnv
	SummaryCollection string
	KeywordCollection string
}

// Jobs bundles the worker implementations over their shared dependencies.
type Jobs struct {
	cfg       Config
	store     item.Store
	feed      service.Feed
	fetcher   service.PageFetcher
	inference service.Inference
	engine    SearchEngine
	logger    *slog.Logger

	maxRetry   int
	retryDelay time.Duration
	urlTimeout time.Duration
	loopSleep  time.Duration
	rng        *rand.Rand
}

// Option configures Jobs.
type Option func(*Jobs)

// WithLogger overrides the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(j *Jobs) { j.logger = logger }
}

// WithRetry overrides the feed retry policy; used by tests.
func WithRetry(maxRetry int, delay time.Duration) Option {
	return func(j *Jobs) {
		j.maxRetry = maxRetry
		j.retryDelay = delay
	}
}

// WithURLTimeout overrides the per-page fetch deadline.
func WithURLTimeout(d time.Duration) Option {
	return func(j *Jobs) { j.urlTimeout = d }
}

// WithLoopSleep overrides the pause between loop sweeps.
func WithLoopSleep(d time.Duration) Option {
	return func(j *Jobs) { j.loopSleep = d }
}

// WithRand pins the random source of the random-passage prompt.
func WithRand(rng *rand.Rand) Option {
	return func(j *Jobs) { j.rng = rng }
}

// NewJobs creates the worker set.
func NewJobs(
	cfg Config,
	store item.Store,
	feed service.Feed,
	fetcher service.PageFetcher,
	inference service.Inference,
	engine SearchEngine,
	opts ...Option,
) *Jobs {
	j := &Jobs{
		cfg:        cfg,
		store:      store,
		feed:       feed,
		fetcher:    fetcher,
		inference:  inference,
		engine:     engine,
		logger:     slog.Default(),
		maxRetry:   100,
		retryDelay: time.Second,
		urlTimeout: 300 * time.Second,
		loopSleep:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(j)
	}
	return j
}

var jobRunners = map[string]func(*Jobs, context.Context) error{
	"collect-items":         (*Jobs).CollectItems,
	"collect-item-urls":     (*Jobs).CollectItemURLs,
	"summarize-texts":       (*Jobs).SummarizeTexts,
	"analyze-story-texts":   (*Jobs).AnalyzeStoryTexts,
	"analyze-comment-texts": (*Jobs).AnalyzeCommentTexts,
	"analyze-summaries":     (*Jobs).AnalyzeSummaries,
	"embed-summaries":       (*Jobs).EmbedSummaries,
	"embed-keywords":        (*Jobs).EmbedKeywords,
}

// Names returns the runnable job names, sorted.
func Names() []string {
	names := make([]string, 0, len(jobRunners))
	for name := range jobRunners {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Run executes the named job once, or forever with pauses between sweeps
// when the loop knob is set. In loop mode a failed sweep is logged and
// the next one still runs.
func (j *Jobs) Run(ctx context.Context, name string) error {
	runner, ok := jobRunners[name]
	if !ok {
		return fmt.Errorf("unknown job %q", name)
	}

	if !j.cfg.Env.Loop {
		return runner(j, ctx)
	}

	for {
		if err := runner(j, ctx); err != nil {
			j.logger.Error("job sweep failed", "job", name, "error", err)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(j.loopSleep):
		}
	}
}
