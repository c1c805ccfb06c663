package intake_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfootprint/eventfootprint/internal/footprint"
	"github.com/eventfootprint/eventfootprint/internal/intake"
	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

func testCalculator() *footprint.Calculator {
	return footprint.NewCalculator(footprint.DefaultFactors())
}

type recordingNotifier struct {
	mu       sync.Mutex
	receipts []*intake.Receipt
	err      error
}

func (n *recordingNotifier) SubmissionCompleted(_ context.Context, r *intake.Receipt) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.receipts = append(n.receipts, r)
	return n.err
}

func newSessions(t *testing.T, store submission.Store, notifier intake.Notifier) *intake.Sessions {
	t.Helper()
	sessions, err := intake.NewSessions(intake.SessionsConfig{
		Store:    store,
		Form:     testConfig(),
		TTL:      time.Minute,
		Notifier: notifier,
		Logger:   zerolog.Nop(),
	})
	require.NoError(t, err)
	return sessions
}

func TestSessions_CreateUnknownEvent(t *testing.T) {
	sessions := newSessions(t, submission.NewInMemoryStore(), nil)

	_, err := sessions.Create(context.Background(), "ghost")

	assert.ErrorIs(t, err, submission.ErrEventNotFound)
	assert.Zero(t, sessions.Len())
}

func TestSessions_Lifecycle(t *testing.T) {
	notifier := &recordingNotifier{}
	sessions := newSessions(t, seededStore(t, "summit"), notifier)

	sess, err := sessions.Create(context.Background(), "summit")
	require.NoError(t, err)
	assert.Contains(t, sess.ID, "ses_")

	got, err := sessions.Get(sess.ID)
	require.NoError(t, err)
	form := got.Form
	require.NoError(t, form.SetUserType(travel.UserProvider, ""))
	require.NoError(t, form.Next())
	require.NoError(t, form.Next())
	require.NoError(t, form.Next())

	receipt, err := sessions.Submit(context.Background(), sess.ID)
	require.NoError(t, err)
	assert.Equal(t, "summit", receipt.EventSlug)
	require.Len(t, notifier.receipts, 1)
	assert.Equal(t, receipt.SubmissionID, notifier.receipts[0].SubmissionID)
}

func TestSessions_NotifierFailureDoesNotFailSubmit(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("topic gone")}
	sessions := newSessions(t, seededStore(t, "summit"), notifier)

	receipt, err := sessions.SubmitNow(context.Background(), "summit", travel.Submission{
		UserType: travel.UserStaff,
		Outbound: []travel.Segment{leg("A", "B")},
	}, true)

	require.NoError(t, err)
	assert.Len(t, receipt.Segments, 2)
}

func TestSessions_Expiry(t *testing.T) {
	sessions := newSessions(t, seededStore(t, "summit"), nil)
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	sessions.SetClock(func() time.Time { return now })

	expired, err := sessions.Create(context.Background(), "summit")
	require.NoError(t, err)
	now = now.Add(45 * time.Second)
	live, err := sessions.Create(context.Background(), "summit")
	require.NoError(t, err)

	now = now.Add(30 * time.Second)
	assert.Equal(t, 1, sessions.Sweep())

	_, err = sessions.Get(expired.ID)
	assert.ErrorIs(t, err, intake.ErrSessionNotFound)
	_, err = sessions.Get(live.ID)
	assert.NoError(t, err)

	now = now.Add(2 * time.Minute)
	_, err = sessions.Get(live.ID)
	assert.ErrorIs(t, err, intake.ErrSessionNotFound)
}

func TestSessions_UnknownSession(t *testing.T) {
	sessions := newSessions(t, submission.NewInMemoryStore(), nil)

	_, err := sessions.Submit(context.Background(), "ses_missing")

	assert.ErrorIs(t, err, intake.ErrSessionNotFound)
}
