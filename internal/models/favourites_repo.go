package models

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

var (
	_ FavouriteRepo = (*PostgresRepo)(nil)
	_ FavouriteRepo = (*MongodbRepo)(nil)
)

func (r *PostgresRepo) AddToFavourites(ctx context.Context, userID uuid.UUID, eventID int64) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO favorites (user_id, event_id) VALUES ($1, $2)
		ON CONFLICT (user_id, event_id) DO NOTHING`, userID, eventID)
	if err != nil {
		if pgErrorCode(err) == pgForeignKeyViolation {
			return ErrEventNotFound
		}
		return fmt.Errorf("add favourite: %w", err)
	}
	return nil
}

func (r *PostgresRepo) RemoveFromFavourites(ctx context.Context, userID uuid.UUID, eventID int64) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM favorites WHERE user_id = $1 AND event_id = $2`, userID, eventID); err != nil {
		return fmt.Errorf("remove favourite: %w", err)
	}
	return nil
}

func (r *PostgresRepo) GetFavouriteEventIDs(ctx context.Context, userID uuid.UUID) ([]int64, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT event_id FROM favorites WHERE user_id = $1 ORDER BY added_at DESC, event_id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favourites: %w", err)
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan favourite: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favourites: %w", err)
	}
	return ids, nil
}

func (r *PostgresRepo) IsFavourite(ctx context.Context, userID uuid.UUID, eventID int64) (bool, error) {
	var ok bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM favorites WHERE user_id = $1 AND event_id = $2)`, userID, eventID).Scan(&ok)
	if err != nil {
		return false, fmt.Errorf("check favourite: %w", err)
	}
	return ok, nil
}
