package duplicates

import (
	"context"
	"fmt"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"dupefinder/internal/config"
	"dupefinder/internal/logging"
	"dupefinder/internal/metrics"
	"dupefinder/internal/models"
	"dupefinder/internal/tracing"
)

var (
	// ErrAnalysisFailed is matched by every error caused by a failing strategy
	ErrAnalysisFailed = errors.New("duplicate analysis failed")
	// ErrFinderClosed is returned for analyses requested after Close
	ErrFinderClosed = errors.New("duplicate finder is closed")
	// ErrCloseTimeout is returned by Close when in-flight analyses outlive the close timeout
	ErrCloseTimeout = errors.New("timed out waiting for in-flight analyses")
)

// DefaultCloseTimeout bounds how long Close waits for in-flight analyses
const DefaultCloseTimeout = 10 * time.Second

// DefaultParallelThreshold is the input size at which grouping is partitioned across workers
const DefaultParallelThreshold = 10000

// AnalysisError reports the strategy that failed an analysis
type AnalysisError struct {
	Strategy string
	Err      error
}

func (e *AnalysisError) Error() string {
	return fmt.Sprintf("%s: %v", ErrAnalysisFailed, e.Err)
}

// Unwrap returns the strategy's error
func (e *AnalysisError) Unwrap() error { return e.Err }

// Is reports whether target is ErrAnalysisFailed
func (e *AnalysisError) Is(target error) bool { return target == ErrAnalysisFailed }

// Options configures a Finder. The zero value runs all three strategies with
// the default floor and threshold.
type Options struct {
	DisableMetadata     bool
	SimilarityThreshold float64
	SizeFloor           int64
	Workers             int
	ParallelThreshold   int
	CloseTimeout        time.Duration

	Logger  *logging.Logger
	Metrics *metrics.Metrics
	Tracer  trace.Tracer
}

// DefaultOptions returns the options used when nothing is configured
func DefaultOptions() Options {
	return Options{
		SimilarityThreshold: DefaultSimilarityThreshold,
		SizeFloor:           DefaultSizeFloor,
		Workers:             runtime.NumCPU(),
		ParallelThreshold:   DefaultParallelThreshold,
		CloseTimeout:        DefaultCloseTimeout,
	}
}

// OptionsFromConfig maps the detection and finder sections of cfg onto Options
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		DisableMetadata:     !cfg.Detection.UseMetadata,
		SimilarityThreshold: cfg.Detection.SimilarityThreshold,
		SizeFloor:           cfg.Detection.SizeFloorBytes,
		Workers:             cfg.Finder.Workers,
		ParallelThreshold:   cfg.Finder.ParallelThreshold,
		CloseTimeout:        cfg.Finder.CloseTimeout,
	}
}

// Finder runs the detection strategies over a file list and reconciles their findings.
// A Finder is safe for concurrent use until Close is called.
type Finder struct {
	opts    Options
	logger  *logging.Logger
	log     *zerolog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer

	exact    Strategy
	metadata Strategy
	size     Strategy

	mu       sync.Mutex
	closed   bool
	inflight sync.WaitGroup
}

// New creates a Finder. Unset numeric settings fall back to their defaults.
func New(opts Options) *Finder {
	if opts.SizeFloor <= 0 {
		opts.SizeFloor = DefaultSizeFloor
	}
	if opts.SimilarityThreshold <= 0 {
		opts.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if opts.ParallelThreshold <= 0 {
		opts.ParallelThreshold = DefaultParallelThreshold
	}
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.CloseTimeout <= 0 {
		opts.CloseTimeout = DefaultCloseTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.GetGlobalLogger()
	}
	if opts.Tracer == nil {
		opts.Tracer = tracing.DefaultTracer()
	}

	f := &Finder{
		opts:    opts,
		logger:  opts.Logger,
		log:     opts.Logger.WithModule("duplicates"),
		metrics: opts.Metrics,
		tracer:  opts.Tracer,
	}

	f.exact = &ChecksumStrategy{
		Workers:           opts.Workers,
		ParallelThreshold: opts.ParallelThreshold,
	}
	f.metadata = &MetadataStrategy{
		Threshold:         opts.SimilarityThreshold,
		Workers:           opts.Workers,
		ParallelThreshold: opts.ParallelThreshold,
		OnLowSimilarity:   f.reportLowSimilarity,
	}
	f.size = &SizeStrategy{
		Floor:             opts.SizeFloor,
		Workers:           opts.Workers,
		ParallelThreshold: opts.ParallelThreshold,
	}
	return f
}

func (f *Finder) reportLowSimilarity(group *models.DuplicateGroup, similarity float64) {
	f.metrics.LowSimilarityGroup()
	f.log.Debug().
		Str("signature", group.Key).
		Int("files", group.DuplicateCount()).
		Float64("similarity", similarity).
		Float64("threshold", f.opts.SimilarityThreshold).
		Msg("Metadata group below similarity threshold")
}

// Analyze runs every strategy over files and blocks until the reconciled result is ready.
// An empty list yields an empty result without running any strategy.
// If ctx is cancelled first, Analyze returns the context error while the
// strategies finish in the background.
func (f *Finder) Analyze(ctx context.Context, files []models.AudioFile) (*AnalysisResult, error) {
	if err := f.acquire(); err != nil {
		return nil, err
	}
	defer f.inflight.Done()

	return f.analyze(ctx, files)
}

// AnalyzeAsync starts an analysis and returns immediately.
// After Close the returned Pending is already resolved with ErrFinderClosed.
func (f *Finder) AnalyzeAsync(ctx context.Context, files []models.AudioFile) *Pending {
	p := newPending()
	if err := f.acquire(); err != nil {
		p.resolve(nil, err)
		return p
	}

	go func() {
		defer f.inflight.Done()
		p.resolve(f.analyze(ctx, files))
	}()
	return p
}

// Close stops the Finder from accepting analyses and waits, up to the close
// timeout, for those already started. In-flight analyses are never cancelled.
// Calling Close more than once is a no-op.
func (f *Finder) Close() error {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return nil
	}
	f.closed = true
	f.mu.Unlock()

	done := make(chan struct{})
	go func() {
		f.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		f.log.Debug().Msg("Duplicate finder closed")
		return nil
	case <-time.After(f.opts.CloseTimeout):
		f.log.Warn().
			Dur("timeout", f.opts.CloseTimeout).
			Msg("Closed with analyses still running")
		return errors.Wrapf(ErrCloseTimeout, "after %s", f.opts.CloseTimeout)
	}
}

func (f *Finder) acquire() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return ErrFinderClosed
	}
	f.inflight.Add(1)
	return nil
}

func (f *Finder) analyze(ctx context.Context, files []models.AudioFile) (*AnalysisResult, error) {
	id := uuid.NewString()
	startedAt := time.Now()

	if len(files) == 0 {
		f.log.Debug().Str("analysis_id", id).Msg("No files to analyze")
		return emptyResult(id, startedAt), nil
	}

	// Strategies share one read-only copy so callers may reuse their slice
	snapshot := slices.Clone(files)

	ctx, span := f.tracer.Start(ctx, "duplicates.Analyze", trace.WithAttributes(tracing.AnalysisAttrs(id, len(snapshot))...))
	f.metrics.AnalysisStarted()

	log := f.logger.WithContext(ctx).With().
		Str("module", "duplicates").
		Str("analysis_id", id).
		Logger()

	result, err := f.execute(ctx, &log, id, startedAt, snapshot)

	duration := time.Since(startedAt)
	status := "success"
	groups := 0
	if err != nil {
		status = "error"
	} else {
		result.Duration = duration
		groups = len(result.Groups)
	}
	tracing.EndSpan(span, err)
	f.metrics.AnalysisFinished(status, len(snapshot), duration)
	f.logger.LogAnalysis(id, len(snapshot), groups, duration, err)

	return result, err
}

func (f *Finder) execute(ctx context.Context, log *zerolog.Logger, id string, startedAt time.Time, files []models.AudioFile) (*AnalysisResult, error) {
	exact, metadata, size, err := f.runStrategies(ctx, log, files)
	if err != nil {
		return nil, err
	}

	groups := Reconcile(exact, metadata, size)
	stats := ComputeStatistics(groups, len(files))

	byType := make(map[string]int, len(stats.GroupsByType))
	for c, n := range stats.GroupsByType {
		byType[c.String()] = n
	}
	f.metrics.ObserveGroups(byType, stats.TotalWastedSpaceBytes)

	return &AnalysisResult{
		ID:                 id,
		StartedAt:          startedAt,
		ExactDuplicates:    exact,
		MetadataDuplicates: metadata,
		SizeDuplicates:     size,
		Groups:             groups,
		Statistics:         stats,
	}, nil
}

// runStrategies fans the strategies out over files and joins them. No list is
// returned unless every strategy succeeded.
func (f *Finder) runStrategies(ctx context.Context, log *zerolog.Logger, files []models.AudioFile) ([]*models.DuplicateGroup, []*models.DuplicateGroup, []*models.DuplicateGroup, error) {
	var exact, size []*models.DuplicateGroup
	metadata := []*models.DuplicateGroup{}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		exact, err = f.run(gctx, log, f.exact, files)
		return err
	})
	if !f.opts.DisableMetadata {
		g.Go(func() (err error) {
			metadata, err = f.run(gctx, log, f.metadata, files)
			return err
		})
	}
	g.Go(func() (err error) {
		size, err = f.run(gctx, log, f.size, files)
		return err
	})

	// The join goroutine counts as in flight so Close also waits for
	// strategies abandoned by a cancelled caller.
	f.inflight.Add(1)
	done := make(chan error, 1)
	go func() {
		defer f.inflight.Done()
		done <- g.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, nil, nil, err
		}
		return exact, metadata, size, nil
	case <-ctx.Done():
		return nil, nil, nil, errors.Wrap(ctx.Err(), "duplicate analysis interrupted")
	}
}

// run executes one strategy, converting a panic into an error
func (f *Finder) run(ctx context.Context, log *zerolog.Logger, s Strategy, files []models.AudioFile) (groups []*models.DuplicateGroup, err error) {
	ctx, span := f.tracer.Start(ctx, "duplicates.strategy."+s.Name(),
		trace.WithAttributes(tracing.StrategyAttrs(s.Name(), s.Classification().String())...))
	start := time.Now()

	recovered := panics.Try(func() {
		groups, err = s.Find(ctx, files)
	})
	if perr := recovered.AsError(); perr != nil {
		groups, err = nil, perr
	}
	if groups == nil && err == nil {
		groups = []*models.DuplicateGroup{}
	}

	elapsed := time.Since(start)
	status := "success"
	if err != nil {
		status = "error"
		err = &AnalysisError{Strategy: s.Name(), Err: errors.Wrapf(err, "%s strategy", s.Name())}
	}
	tracing.EndSpan(span, err)
	f.metrics.ObserveStrategy(s.Name(), status, len(groups), elapsed)

	log.Debug().
		Str("strategy", s.Name()).
		Int("groups", len(groups)).
		Dur("duration", elapsed).
		Err(err).
		Msg("Strategy finished")

	return groups, err
}
