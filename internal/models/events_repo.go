package models

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var _ EventRepo = (*PostgresRepo)(nil)

const eventColumns = `e.id, e.title, e.category, e.description, e.date, e.location, e.city, e.area,
	e.zipcode, e.icon, e.attendees, e.max_attendees, e.created_by, e.created_at`

func scanEvent(row pgx.Row) (*Event, error) {
	var e Event
	err := row.Scan(
		&e.ID, &e.Title, &e.Category, &e.Description, &e.Date, &e.Location, &e.City, &e.Area,
		&e.Zipcode, &e.Icon, &e.Attendees, &e.MaxAttendees, &e.CreatedBy, &e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func collectEvents(rows pgx.Rows) ([]*Event, error) {
	defer rows.Close()
	events := []*Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}

func (r *PostgresRepo) queryEvents(ctx context.Context, sql string, args ...any) ([]*Event, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectEvents(rows)
}

func (r *PostgresRepo) ListEvents(ctx context.Context) ([]*Event, error) {
	events, err := r.queryEvents(ctx, `SELECT `+eventColumns+` FROM events e ORDER BY e.date, e.id`)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	return events, nil
}

func (r *PostgresRepo) GetEventByID(ctx context.Context, id int64) (*Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `SELECT `+eventColumns+` FROM events e WHERE e.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get event by id: %w", err)
	}
	return e, nil
}

// GetEventsByIDs returns the events that still exist, in the order of ids.
func (r *PostgresRepo) GetEventsByIDs(ctx context.Context, ids []int64) ([]*Event, error) {
	if len(ids) == 0 {
		return []*Event{}, nil
	}
	events, err := r.queryEvents(ctx, `
		SELECT `+eventColumns+`
		FROM unnest($1::bigint[]) WITH ORDINALITY AS wanted(id, pos)
		JOIN events e ON e.id = wanted.id
		ORDER BY wanted.pos`, ids)
	if err != nil {
		return nil, fmt.Errorf("get events by ids: %w", err)
	}
	return events, nil
}

func (r *PostgresRepo) CreateEvent(ctx context.Context, event *Event) (*Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `
		INSERT INTO events AS e (title, category, description, date, location, city, area, zipcode, icon, max_attendees, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+eventColumns,
		event.Title, event.Category, event.Description, event.Date, event.Location,
		event.City, event.Area, event.Zipcode, event.Icon, event.MaxAttendees, event.CreatedBy,
	))
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return e, nil
}

// UpdateEvent applies the non-nil fields of update. The capacity guard is part
// of the statement so a concurrent join cannot slip under a shrinking limit.
func (r *PostgresRepo) UpdateEvent(ctx context.Context, id int64, update *EventUpdate) (*Event, error) {
	e, err := scanEvent(r.pool.QueryRow(ctx, `
		UPDATE events AS e SET
			title         = COALESCE($2, e.title),
			category      = COALESCE($3, e.category),
			description   = COALESCE($4, e.description),
			date          = COALESCE($5, e.date),
			location      = COALESCE($6, e.location),
			city          = COALESCE($7, e.city),
			area          = COALESCE($8, e.area),
			zipcode       = COALESCE($9, e.zipcode),
			icon          = COALESCE($10, e.icon),
			max_attendees = COALESCE($11::int, e.max_attendees)
		WHERE e.id = $1 AND COALESCE($11::int, e.max_attendees) >= e.attendees
		RETURNING `+eventColumns,
		id, update.Title, update.Category, update.Description, update.Date, update.Location,
		update.City, update.Area, update.Zipcode, update.Icon, update.MaxAttendees,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		if _, getErr := r.GetEventByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrCapacityTooLow
	}
	if err != nil {
		return nil, fmt.Errorf("update event: %w", err)
	}
	return e, nil
}

func (r *PostgresRepo) DeleteEvent(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete event: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEventNotFound
	}
	return nil
}

// JoinEvent takes a seat with a single conditional increment and records the
// participant in the same transaction. A duplicate participant rolls the
// increment back.
func (r *PostgresRepo) JoinEvent(ctx context.Context, eventID int64, userID uuid.UUID) (*Event, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin join: %w", err)
	}
	defer tx.Rollback(ctx)

	e, err := scanEvent(tx.QueryRow(ctx, `
		UPDATE events AS e SET attendees = e.attendees + 1
		WHERE e.id = $1 AND e.attendees < e.max_attendees
		RETURNING `+eventColumns, eventID))
	if errors.Is(err, pgx.ErrNoRows) {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM events WHERE id = $1)`, eventID).Scan(&exists); err != nil {
			return nil, fmt.Errorf("check event exists: %w", err)
		}
		if !exists {
			return nil, ErrEventNotFound
		}
		// A full event still reports a repeat join as such.
		var joined bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)`, eventID, userID).Scan(&joined); err != nil {
			return nil, fmt.Errorf("check participant: %w", err)
		}
		if joined {
			return nil, ErrAlreadyJoined
		}
		return nil, ErrEventFull
	}
	if err != nil {
		return nil, fmt.Errorf("increment attendees: %w", err)
	}

	tag, err := tx.Exec(ctx, `
		INSERT INTO event_participants (user_id, event_id) VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING`, userID, eventID)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("insert participant: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrAlreadyJoined
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit join: %w", err)
	}
	return e, nil
}

func (r *PostgresRepo) LeaveEvent(ctx context.Context, eventID int64, userID uuid.UUID) (*Event, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin leave: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `DELETE FROM event_participants WHERE event_id = $1 AND user_id = $2`, eventID, userID)
	if err != nil {
		return nil, fmt.Errorf("delete participant: %w", err)
	}

	e, err := scanEvent(tx.QueryRow(ctx, `
		UPDATE events AS e SET attendees = GREATEST(e.attendees - $2, 0)
		WHERE e.id = $1
		RETURNING `+eventColumns, eventID, tag.RowsAffected()))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrEventNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("decrement attendees: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, ErrNotJoined
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit leave: %w", err)
	}
	return e, nil
}

func (r *PostgresRepo) HasJoined(ctx context.Context, eventID int64, userID uuid.UUID) (bool, error) {
	var joined bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM event_participants WHERE event_id = $1 AND user_id = $2)`,
		eventID, userID).Scan(&joined)
	if err != nil {
		return false, fmt.Errorf("check joined: %w", err)
	}
	return joined, nil
}

// escapeLike makes a user term match literally inside a LIKE pattern.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

func (r *PostgresRepo) SearchEvents(ctx context.Context, filter EventFilter) ([]*Event, error) {
	term := strings.TrimSpace(filter.Location)
	pattern := "%" + escapeLike(term) + "%"
	events, err := r.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM events e
		WHERE ($1::text = '' OR e.city ILIKE $2 OR e.area ILIKE $2 OR e.zipcode ILIKE $2)
		  AND ($3::text = '' OR e.category = $3)
		ORDER BY e.date, e.id`, term, pattern, strings.TrimSpace(filter.Category))
	if err != nil {
		return nil, fmt.Errorf("search events: %w", err)
	}
	return events, nil
}

func (r *PostgresRepo) ListEventsByCreator(ctx context.Context, userID uuid.UUID) ([]*Event, error) {
	events, err := r.queryEvents(ctx,
		`SELECT `+eventColumns+` FROM events e WHERE e.created_by = $1 ORDER BY e.date, e.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list created events: %w", err)
	}
	return events, nil
}

func (r *PostgresRepo) ListJoinedEvents(ctx context.Context, userID uuid.UUID) ([]*Event, error) {
	events, err := r.queryEvents(ctx, `
		SELECT `+eventColumns+` FROM events e
		JOIN event_participants p ON p.event_id = e.id
		WHERE p.user_id = $1
		ORDER BY e.date, e.id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list joined events: %w", err)
	}
	return events, nil
}

func (r *PostgresRepo) ListFriendsEvents(ctx context.Context, userID uuid.UUID) ([]*FriendsEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+eventColumns+`, `+userColumns+`
		FROM friends f
		JOIN event_participants p ON p.user_id = f.friend_id
		JOIN events e ON e.id = p.event_id
		JOIN users u ON u.id = f.friend_id
		WHERE f.user_id = $1
		ORDER BY e.date, e.id, u.first_name, u.last_name`, userID)
	if err != nil {
		return nil, fmt.Errorf("list friends events: %w", err)
	}
	defer rows.Close()

	out := []*FriendsEvent{}
	var current *FriendsEvent
	for rows.Next() {
		var e Event
		var u User
		err := rows.Scan(
			&e.ID, &e.Title, &e.Category, &e.Description, &e.Date, &e.Location, &e.City, &e.Area,
			&e.Zipcode, &e.Icon, &e.Attendees, &e.MaxAttendees, &e.CreatedBy, &e.CreatedAt,
			&u.ID, &u.Email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Bio, &u.City,
			&u.ProfileImageURL, &u.CreatedAt, &u.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan friends event: %w", err)
		}
		if current == nil || current.ID != e.ID {
			current = &FriendsEvent{Event: &e, FriendsAttending: []*User{}}
			out = append(out, current)
		}
		current.FriendsAttending = append(current.FriendsAttending, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate friends events: %w", err)
	}
	return out, nil
}
