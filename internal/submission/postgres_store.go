package submission

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/eventfootprint/eventfootprint/internal/travel"
)

// PostgresStore is a PostgreSQL implementation of Repository.
type PostgresStore struct {
	pool *pgxpool.Pool
}

var _ Repository = (*PostgresStore)(nil)

// NewPostgresStore creates a store over an open pool.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const eventColumns = `id::text, name, slug, description, location, start_date, end_date, is_active, created_at`

// GetEventByIdentifier resolves an event slug.
func (r *PostgresStore) GetEventByIdentifier(ctx context.Context, slug string) (*travel.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE slug = $1`

	var e travel.Event
	err := r.pool.QueryRow(ctx, query, slug).Scan(
		&e.ID, &e.Name, &e.Slug, &e.Description, &e.Location,
		&e.StartDate, &e.EndDate, &e.IsActive, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, &PersistenceError{Op: "get event", Err: err}
	}
	return &e, nil
}

// ListSubmissionsWithSegments returns the submissions of an event with their
// segments. Submissions without segments are left out.
func (r *PostgresStore) ListSubmissionsWithSegments(ctx context.Context, eventID string) ([]travel.SubmissionWithSegments, error) {
	query := `
		SELECT
			s.id::text, s.event_id::text, s.user_type, COALESCE(s.user_type_other_details, ''),
			s.total_hotel_nights, COALESCE(s.comments, ''), s.created_at,
			g.id::text, g.segment_type, g.segment_order,
			g.vehicle_type, COALESCE(g.vehicle_type_other_details, ''),
			COALESCE(g.fuel_type, ''), COALESCE(g.fuel_type_other_details, ''),
			COALESCE(g.passengers, 0), COALESCE(g.number_of_vehicles, 0),
			COALESCE(g.van_size, ''), COALESCE(g.truck_size, ''),
			g.carbon_compensated, COALESCE(to_char(g.date, 'YYYY-MM-DD'), ''),
			g.origin, g.destination, g.distance, g.return_trip, g.frequency,
			g.calculated_carbon_footprint
		FROM travel_data_submissions s
		JOIN travel_segments g ON g.submission_id = s.id
		WHERE s.event_id = $1
		ORDER BY s.created_at, s.id, g.segment_order
	`

	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, &PersistenceError{Op: "list submissions", Err: err}
	}
	defer rows.Close()

	var out []travel.SubmissionWithSegments
	for rows.Next() {
		var sub travel.SubmissionRecord
		var seg travel.SegmentRecord
		if err := rows.Scan(
			&sub.ID, &sub.EventID, &sub.UserType, &sub.OtherUserTypeDetails,
			&sub.HotelNights, &sub.Comments, &sub.CreatedAt,
			&seg.ID, &seg.Direction, &seg.Order,
			&seg.VehicleType, &seg.OtherVehicleTypeDetails,
			&seg.FuelType, &seg.FuelTypeOtherDetails,
			&seg.Passengers, &seg.NumberOfVehicles,
			&seg.VanSize, &seg.TruckSize,
			&seg.CarbonCompensated, &seg.Date,
			&seg.Origin, &seg.Destination, &seg.Distance, &seg.ReturnTrip, &seg.Frequency,
			&seg.FootprintKg,
		); err != nil {
			return nil, &PersistenceError{Op: "scan submission", Err: err}
		}
		seg.SubmissionID = sub.ID

		if n := len(out); n > 0 && out[n-1].Submission.ID == sub.ID {
			out[n-1].Segments = append(out[n-1].Segments, seg)
			continue
		}
		out = append(out, travel.SubmissionWithSegments{Submission: sub, Segments: []travel.SegmentRecord{seg}})
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list submissions", Err: err}
	}

	return out, nil
}

// CreateSubmission stores a submission header.
func (r *PostgresStore) CreateSubmission(ctx context.Context, rec travel.SubmissionRecord) (string, error) {
	query := `
		INSERT INTO travel_data_submissions (
			event_id, user_type, user_type_other_details, total_hotel_nights, comments
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING id::text
	`

	if _, err := uuid.Parse(rec.EventID); err != nil {
		return "", ErrEventNotFound
	}

	var id string
	err := r.pool.QueryRow(ctx, query,
		rec.EventID, rec.UserType, nullString(rec.OtherUserTypeDetails), rec.HotelNights, nullString(rec.Comments),
	).Scan(&id)
	if err != nil {
		if hasCode(err, pgerrcode.ForeignKeyViolation) {
			return "", ErrEventNotFound
		}
		return "", &PersistenceError{Op: "create submission", Err: err}
	}
	return id, nil
}

// CreateSegments stores the segments of a submission in one transaction.
func (r *PostgresStore) CreateSegments(ctx context.Context, submissionID string, segs []travel.SegmentRecord) error {
	query := `
		INSERT INTO travel_segments (
			submission_id, segment_type, segment_order,
			vehicle_type, vehicle_type_other_details, fuel_type, fuel_type_other_details,
			passengers, number_of_vehicles, van_size, truck_size,
			calculated_carbon_footprint, carbon_compensated, date,
			distance, origin, destination, return_trip, frequency
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9, $10, $11,
			$12, $13, NULLIF($14, '')::date,
			$15, $16, $17, $18, $19
		)
	`

	if _, err := uuid.Parse(submissionID); err != nil {
		return ErrSubmissionNotFound
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return &PersistenceError{Op: "create segments", Err: err}
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, s := range segs {
		s = s.WithCountDefaults()
		batch.Queue(query,
			submissionID, s.Direction, s.Order,
			s.VehicleType, nullString(s.OtherVehicleTypeDetails), nullString(string(s.FuelType)), nullString(s.FuelTypeOtherDetails),
			s.Passengers, s.NumberOfVehicles, nullString(string(s.VanSize)), nullString(string(s.TruckSize)),
			s.FootprintKg, s.CarbonCompensated, s.Date,
			s.Distance, s.Origin, s.Destination, s.ReturnTrip, s.Frequency,
		)
	}

	br := tx.SendBatch(ctx, batch)
	for range segs {
		if _, err := br.Exec(); err != nil {
			_ = br.Close()
			if hasCode(err, pgerrcode.ForeignKeyViolation) {
				return ErrSubmissionNotFound
			}
			return &PersistenceError{Op: "create segments", Err: err}
		}
	}
	if err := br.Close(); err != nil {
		return &PersistenceError{Op: "create segments", Err: err}
	}

	if err := tx.Commit(ctx); err != nil {
		return &PersistenceError{Op: "create segments", Err: err}
	}
	return nil
}

// ListActiveEvents returns active events by start date.
func (r *PostgresStore) ListActiveEvents(ctx context.Context) ([]*travel.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE is_active ORDER BY start_date ASC, slug ASC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, &PersistenceError{Op: "list events", Err: err}
	}
	defer rows.Close()

	var events []*travel.Event
	for rows.Next() {
		var e travel.Event
		if err := rows.Scan(
			&e.ID, &e.Name, &e.Slug, &e.Description, &e.Location,
			&e.StartDate, &e.EndDate, &e.IsActive, &e.CreatedAt,
		); err != nil {
			return nil, &PersistenceError{Op: "scan event", Err: err}
		}
		events = append(events, &e)
	}
	if err := rows.Err(); err != nil {
		return nil, &PersistenceError{Op: "list events", Err: err}
	}

	return events, nil
}

// CreateEvent stores a new event.
func (r *PostgresStore) CreateEvent(ctx context.Context, event *travel.Event) error {
	query := `
		INSERT INTO events (name, slug, description, location, start_date, end_date, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id::text, created_at
	`

	err := r.pool.QueryRow(ctx, query,
		event.Name, event.Slug, event.Description, event.Location,
		event.StartDate, event.EndDate, event.IsActive,
	).Scan(&event.ID, &event.CreatedAt)
	if err != nil {
		if hasCode(err, pgerrcode.UniqueViolation) {
			return ErrDuplicateSlug
		}
		return &PersistenceError{Op: "create event", Err: err}
	}
	return nil
}

// DeleteEvent removes an event. Submissions and segments cascade.
func (r *PostgresStore) DeleteEvent(ctx context.Context, id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return ErrEventNotFound
	}

	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return &PersistenceError{Op: "delete event", Err: err}
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// Ping checks database connectivity.
func (r *PostgresStore) Ping(ctx context.Context) error {
	if err := r.pool.Ping(ctx); err != nil {
		return &PersistenceError{Op: "ping", Err: err}
	}
	return nil
}

func hasCode(err error, code string) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == code
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
