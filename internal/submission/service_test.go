package submission_test

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eventfootprint/eventfootprint/internal/report"
	"github.com/eventfootprint/eventfootprint/internal/submission"
	"github.com/eventfootprint/eventfootprint/internal/travel"
)

func newService(store submission.Repository) *submission.Service {
	return submission.NewService(submission.ServiceConfig{Store: store, Logger: zerolog.Nop()})
}

func TestService_ResultsNoData(t *testing.T) {
	store := submission.NewInMemoryStore()
	seedEvent(t, store, "empty", "2025-01-01", true)

	res, err := newService(store).Results(context.Background(), "empty")

	require.NoError(t, err)
	assert.True(t, res.NoData)
	assert.Nil(t, res.Report)
	assert.Equal(t, "empty", res.Event.Slug)
}

func TestService_ResultsAggregatesStoredFootprints(t *testing.T) {
	ctx := context.Background()
	store := submission.NewInMemoryStore()
	event := seedEvent(t, store, "full", "2025-01-01", true)

	id, err := store.CreateSubmission(ctx, travel.SubmissionRecord{EventID: event.ID, UserType: travel.UserPublic, HotelNights: 3})
	require.NoError(t, err)
	require.NoError(t, store.CreateSegments(ctx, id, []travel.SegmentRecord{
		segment(travel.Outbound, 0, 4),
		segment(travel.Return, 1, 6),
	}))

	res, err := newService(store).Results(ctx, "full")
	require.NoError(t, err)
	require.False(t, res.NoData)

	assert.Equal(t, 10.0, res.Report.TotalFootprintKg)
	assert.Equal(t, 3, res.Report.TotalHotelNights)
	assert.Equal(t, 1, res.Report.ByUserType[report.Known("public")].Participants)
}

func TestService_ResultsUnknownEvent(t *testing.T) {
	_, err := newService(submission.NewInMemoryStore()).Results(context.Background(), "missing")

	assert.ErrorIs(t, err, submission.ErrEventNotFound)
}

func TestService_AdminCapability(t *testing.T) {
	ctx := context.Background()
	store := submission.NewInMemoryStore()
	svc := newService(store)
	event := seedEvent(t, store, "gated", "2025-01-01", true)

	_, err := svc.Dump(ctx, false, "gated")
	assert.ErrorIs(t, err, submission.ErrForbidden)

	_, err = svc.CreateEvent(ctx, false, submission.CreateEventInput{})
	assert.ErrorIs(t, err, submission.ErrForbidden)

	assert.ErrorIs(t, svc.DeleteEvent(ctx, false, event.ID), submission.ErrForbidden)
	assert.NoError(t, svc.DeleteEvent(ctx, true, event.ID))
}

func TestService_CreateEvent(t *testing.T) {
	svc := newService(submission.NewInMemoryStore())

	event, err := svc.CreateEvent(context.Background(), true, submission.CreateEventInput{
		Name:      "Climate Summit",
		Slug:      " Climate-Summit ",
		StartDate: "2025-09-01",
		EndDate:   "2025-09-03",
		IsActive:  true,
	})

	require.NoError(t, err)
	assert.Equal(t, "climate-summit", event.Slug)
	assert.NotEmpty(t, event.ID)
	assert.Equal(t, 3, event.EndDate.Day())
}

func TestService_CreateEventValidation(t *testing.T) {
	svc := newService(submission.NewInMemoryStore())

	_, err := svc.CreateEvent(context.Background(), true, submission.CreateEventInput{
		Slug:      "bad slug!",
		StartDate: "2025-09-03",
		EndDate:   "2025-09-01",
	})

	var verr *travel.ValidationError
	require.True(t, errors.As(err, &verr))
	assert.True(t, verr.Has("name"))
	assert.True(t, verr.Has("slug"))
	assert.True(t, verr.Has("endDate"))
}

func TestService_Dump(t *testing.T) {
	ctx := context.Background()
	store := submission.NewInMemoryStore()
	event := seedEvent(t, store, "dump", "2025-01-01", true)
	id, err := store.CreateSubmission(ctx, travel.SubmissionRecord{EventID: event.ID, UserType: travel.UserStaff})
	require.NoError(t, err)
	require.NoError(t, store.CreateSegments(ctx, id, []travel.SegmentRecord{segment(travel.Outbound, 0, 1)}))

	dump, err := newService(store).Dump(ctx, true, "dump")

	require.NoError(t, err)
	require.Len(t, dump.Submissions, 1)
	assert.Equal(t, id, dump.Submissions[0].Submission.ID)
}
