package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// ReportSource lists events and recomputes their results.
// *submission.Service satisfies it.
type ReportSource interface {
	ListEvents(ctx context.Context) ([]*travel.Event, error)
	Results(ctx context.Context, slug string) (*submission.Results, error)
}

// Summary is the last computed headline of one event report.
type Summary struct {
	Slug         string    `json:"slug"`
	Participants int       `json:"participants"`
	FootprintKg  float64   `json:"footprint_kg"`
	DistanceKm   float64   `json:"distance_km"`
	NoData       bool      `json:"no_data"`
	ComputedAt   time.Time `json:"computed_at"`
}

// ReportJob recomputes event reports and keeps their latest summaries.
type ReportJob struct {
	config ReportConfig
	source ReportSource
	logger zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	summaries map[string]Summary
	metrics   ReportMetrics
}

// ReportMetrics tracks report job statistics.
type ReportMetrics struct {
	Runs         int64
	Recomputed   int64
	Failed       int64
	LastRunAt    time.Time
	LastDuration time.Duration
}

// ReportJobConfig holds configuration for creating a ReportJob.
type ReportJobConfig struct {
	Config ReportConfig
	Source ReportSource
	Logger zerolog.Logger
}

// NewReportJob creates a report job.
func NewReportJob(cfg ReportJobConfig) *ReportJob {
	return &ReportJob{
		config:    cfg.Config.withDefaults(),
		source:    cfg.Source,
		logger:    cfg.Logger,
		now:       time.Now,
		summaries: make(map[string]Summary),
	}
}

// RunResult contains the result of one run over several events.
type RunResult struct {
	Duration   time.Duration
	Total      int
	Successful int
	Failed     int
	Errors     map[string]string
}

// Recompute recomputes the report of one event and stores its summary.
func (j *ReportJob) Recompute(ctx context.Context, slug string) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, j.config.Timeout)
	defer cancel()

	res, err := j.source.Results(ctx, slug)
	if err != nil {
		j.mu.Lock()
		j.metrics.Failed++
		j.mu.Unlock()
		return Summary{}, fmt.Errorf("recomputing %s: %w", slug, err)
	}

	sum := Summary{Slug: slug, NoData: res.NoData, ComputedAt: j.now()}
	if res.Report != nil {
		sum.Participants = res.Report.TotalParticipants
		sum.FootprintKg = res.Report.TotalFootprintKg
		sum.DistanceKm = res.Report.TotalDistanceKm
	}

	j.mu.Lock()
	j.summaries[slug] = sum
	j.metrics.Recomputed++
	j.mu.Unlock()

	j.logger.Info().
		Str("event", slug).
		Bool("no_data", sum.NoData).
		Int("participants", sum.Participants).
		Float64("footprint_kg", sum.FootprintKg).
		Msg("event report recomputed")

	return sum, nil
}

// Run recomputes the given events, or every active event when slugs is
// empty, with a bounded pool of workers.
func (j *ReportJob) Run(ctx context.Context, slugs []string) (*RunResult, error) {
	start := time.Now()

	if len(slugs) == 0 {
		events, err := j.source.ListEvents(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing events: %w", err)
		}
		for _, e := range events {
			slugs = append(slugs, e.Slug)
		}
	}

	result := &RunResult{Total: len(slugs), Errors: make(map[string]string)}

	j.logger.Info().
		Int("events", len(slugs)).
		Int("concurrency", j.config.Concurrency).
		Msg("starting report job")

	jobs := make(chan string, len(slugs))
	type outcome struct {
		slug string
		err  error
	}
	outcomes := make(chan outcome, len(slugs))

	var wg sync.WaitGroup
	for i := 0; i < j.config.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for slug := range jobs {
				if ctx.Err() != nil {
					outcomes <- outcome{slug: slug, err: ctx.Err()}
					continue
				}
				_, err := j.Recompute(ctx, slug)
				outcomes <- outcome{slug: slug, err: err}
			}
		}()
	}

	for _, s := range slugs {
		jobs <- s
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(outcomes)
	}()

	for o := range outcomes {
		if o.err != nil {
			result.Failed++
			result.Errors[o.slug] = o.err.Error()
			continue
		}
		result.Successful++
	}

	result.Duration = time.Since(start)

	j.mu.Lock()
	j.metrics.Runs++
	j.metrics.LastRunAt = j.now()
	j.metrics.LastDuration = result.Duration
	j.mu.Unlock()

	j.logger.Info().
		Dur("duration", result.Duration).
		Int("successful", result.Successful).
		Int("failed", result.Failed).
		Msg("report job completed")

	return result, nil
}

// Latest returns the last summary computed for slug.
func (j *ReportJob) Latest(slug string) (Summary, bool) {
	j.mu.RLock()
	defer j.mu.RUnlock()

	s, ok := j.summaries[slug]
	return s, ok
}

// Forget drops the stored summary of slug.
func (j *ReportJob) Forget(slug string) {
	j.mu.Lock()
	delete(j.summaries, slug)
	j.mu.Unlock()
}

// Metrics returns a copy of the current metrics.
func (j *ReportJob) Metrics() ReportMetrics {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.metrics
}

// MetricsSnapshot returns the metrics as a JSON-friendly map.
func (j *ReportJob) MetricsSnapshot() map[string]any {
	m := j.Metrics()
	return map[string]any{
		"runs":          m.Runs,
		"recomputed":    m.Recomputed,
		"failed":        m.Failed,
		"last_run_at":   m.LastRunAt,
		"last_duration": m.LastDuration.String(),
	}
}

// Schedule runs a full recomputation every interval until ctx is done.
func (j *ReportJob) Schedule(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := j.Run(ctx, nil); err != nil {
				j.logger.Error().Err(err).Msg("scheduled report run failed")
			}
		}
	}
}
