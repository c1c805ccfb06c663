package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfootprint/eventfootprint/internal/notify"
	"github.com/eventfootprint/eventfootprint/internal/report"
	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/travel"
	"github.com/eventfootprint/eventfootprint/internal/worker"
)

type fakeSource struct {
	mu      sync.Mutex
	events  []*travel.Event
	results map[string]*submission.Results
	errs    map[string]error
	calls   map[string]int
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		results: make(map[string]*submission.Results),
		errs:    make(map[string]error),
		calls:   make(map[string]int),
	}
}

func (f *fakeSource) add(slug string, res *submission.Results) {
	f.events = append(f.events, &travel.Event{ID: slug + "-id", Slug: slug})
	f.results[slug] = res
}

func (f *fakeSource) ListEvents(context.Context) ([]*travel.Event, error) {
	return f.events, nil
}

func (f *fakeSource) Results(_ context.Context, slug string) (*submission.Results, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[slug]++
	if err := f.errs[slug]; err != nil {
		return nil, err
	}
	res, ok := f.results[slug]
	if !ok {
		return nil, submission.ErrEventNotFound
	}
	return res, nil
}

func newJob(src *fakeSource) *worker.ReportJob {
	return worker.NewReportJob(worker.ReportJobConfig{Source: src, Logger: zerolog.Nop()})
}

func encode(t *testing.T, msg notify.Message) []byte {
	t.Helper()
	data, err := json.Marshal(msg)
	require.NoError(t, err)
	return data
}

func TestDefaultReportConfig(t *testing.T) {
	cfg := worker.DefaultReportConfig()

	assert.Equal(t, 3, cfg.Concurrency)
	assert.Positive(t, cfg.Timeout)
}

func TestReportJob_Recompute(t *testing.T) {
	src := newFakeSource()
	src.add("summit", &submission.Results{Report: &report.EventResult{TotalParticipants: 4, TotalFootprintKg: 120.5}})
	src.add("empty", &submission.Results{NoData: true})
	job := newJob(src)

	sum, err := job.Recompute(context.Background(), "summit")
	require.NoError(t, err)
	assert.Equal(t, 4, sum.Participants)
	assert.Equal(t, 120.5, sum.FootprintKg)

	sum, err = job.Recompute(context.Background(), "empty")
	require.NoError(t, err)
	assert.True(t, sum.NoData)

	latest, ok := job.Latest("summit")
	require.True(t, ok)
	assert.Equal(t, 4, latest.Participants)
	assert.Equal(t, int64(2), job.Metrics().Recomputed)
}

func TestReportJob_RunAllActiveEvents(t *testing.T) {
	src := newFakeSource()
	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		src.add(slug, &submission.Results{NoData: true})
	}
	src.errs["c"] = &submission.PersistenceError{Op: "list", Err: errors.New("timeout")}
	job := newJob(src)

	result, err := job.Run(context.Background(), nil)
	require.NoError(t, err)

	assert.Equal(t, 5, result.Total)
	assert.Equal(t, 4, result.Successful)
	assert.Equal(t, 1, result.Failed)
	assert.Contains(t, result.Errors, "c")
	for _, slug := range []string{"a", "b", "c", "d", "e"} {
		assert.Equal(t, 1, src.calls[slug], slug)
	}
	assert.Equal(t, int64(1), job.Metrics().Runs)
	assert.Equal(t, int64(1), job.MetricsSnapshot()["runs"])
}

func TestDispatcher(t *testing.T) {
	src := newFakeSource()
	src.add("summit", &submission.Results{NoData: true})
	src.add("flaky", &submission.Results{NoData: true})
	src.errs["flaky"] = &submission.PersistenceError{Op: "list", Err: errors.New("reset")}
	job := newJob(src)
	d := worker.NewDispatcher(job, zerolog.Nop())
	ctx := context.Background()

	tests := []struct {
		name string
		data []byte
		want worker.Outcome
	}{
		{"malformed", []byte("{"), worker.Nack},
		{"unknown type", encode(t, notify.Message{Type: "something_else"}), worker.Ack},
		{"submission", encode(t, notify.Message{Type: notify.TypeSubmissionCompleted, EventSlug: "summit"}), worker.Ack},
		{"deleted event", encode(t, notify.Message{Type: notify.TypeSubmissionCompleted, EventSlug: "gone"}), worker.Ack},
		{"transient failure", encode(t, notify.Message{Type: notify.TypeSubmissionCompleted, EventSlug: "flaky"}), worker.Nack},
		{"report request", encode(t, notify.Message{Type: notify.TypeReportRequested, EventSlug: "summit"}), worker.Ack},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, d.Dispatch(ctx, tt.data, zerolog.Nop()))
		})
	}

	_, ok := job.Latest("summit")
	assert.True(t, ok)
	assert.Equal(t, 2, src.calls["summit"])
}

func TestReportJob_Schedule(t *testing.T) {
	src := newFakeSource()
	src.add("summit", &submission.Results{NoData: true})
	job := newJob(src)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Schedule(ctx, 5*time.Millisecond)
		close(done)
	}()

	require.Eventually(t, func() bool { return job.Metrics().Runs >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	_, ok := job.Latest("summit")
	assert.True(t, ok)
}
