package notify_test

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfootprint/eventfootprint/internal/intake"
	"github.com/eventfootprint/eventfootprint/internal/notify"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

func receipt() *intake.Receipt {
	return &intake.Receipt{
		SubmissionID:     "sub-1",
		EventID:          "evt-1",
		EventSlug:        "summit",
		Submission:       travel.Submission{UserType: travel.UserStaff},
		Segments:         make([]travel.SegmentRecord, 3),
		TotalFootprintKg: 42.5,
	}
}

func TestFromReceipt(t *testing.T) {
	at := time.Date(2025, 5, 1, 10, 0, 0, 0, time.FixedZone("CEST", 2*3600))

	msg := notify.FromReceipt(receipt(), at)

	assert.Equal(t, notify.TypeSubmissionCompleted, msg.Type)
	assert.Equal(t, "summit", msg.EventSlug)
	assert.Equal(t, "staff", msg.UserType)
	assert.Equal(t, 3, msg.Segments)
	assert.Equal(t, time.UTC, msg.OccurredAt.Location())

	data, err := json.Marshal(msg)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"submission_id":"sub-1"`)
	assert.Contains(t, string(data), `"footprint_kg":42.5`)
}

func TestLogNotifier(t *testing.T) {
	var buf bytes.Buffer
	n := notify.LogNotifier{Logger: zerolog.New(&buf).Level(zerolog.DebugLevel)}

	require.NoError(t, n.SubmissionCompleted(context.Background(), receipt()))

	assert.Contains(t, buf.String(), `"submission_id":"sub-1"`)
}
