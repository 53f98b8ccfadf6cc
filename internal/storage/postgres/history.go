package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/haxroom/internal/geo"
	"github.com/cory-johannsen/haxroom/internal/history"
)

// HistoryRepository is a history.Store over the connections table. The
// location and join list are stored as JSONB.
type HistoryRepository struct {
	db *pgxpool.Pool
}

// NewHistoryRepository creates a HistoryRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool with the
// connections migration applied.
func NewHistoryRepository(db *pgxpool.Pool) *HistoryRepository {
	return &HistoryRepository{db: db}
}

var (
	_ history.Store  = (*HistoryRepository)(nil)
	_ history.Pinger = (*HistoryRepository)(nil)
)

// Get returns the record for ip.
//
// Postcondition: Returns history.ErrNotFound if ip has no row.
func (r *HistoryRepository) Get(ctx context.Context, ip string) (history.Record, error) {
	var geoJSON, playersJSON []byte
	err := r.db.QueryRow(ctx,
		`SELECT geo, players FROM connections WHERE ip = $1`, ip,
	).Scan(&geoJSON, &playersJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return history.Record{}, history.ErrNotFound
	}
	if err != nil {
		return history.Record{}, fmt.Errorf("querying connection %s: %w", ip, err)
	}

	rec := history.Record{IP: ip}
	if len(geoJSON) > 0 {
		var loc geo.Location
		if err := json.Unmarshal(geoJSON, &loc); err != nil {
			return history.Record{}, fmt.Errorf("decoding geo for %s: %w", ip, err)
		}
		rec.Geo = &loc
	}
	if err := json.Unmarshal(playersJSON, &rec.Players); err != nil {
		return history.Record{}, fmt.Errorf("decoding players for %s: %w", ip, err)
	}
	return rec, nil
}

// Set inserts or replaces the row for rec.IP.
//
// Precondition: rec.IP must be non-empty.
func (r *HistoryRepository) Set(ctx context.Context, rec history.Record) error {
	if rec.IP == "" {
		return errors.New("history record has no ip")
	}
	var geoJSON []byte
	if rec.Geo != nil {
		b, err := json.Marshal(rec.Geo)
		if err != nil {
			return fmt.Errorf("encoding geo: %w", err)
		}
		geoJSON = b
	}
	players := rec.Players
	if players == nil {
		players = []history.Entry{}
	}
	playersJSON, err := json.Marshal(players)
	if err != nil {
		return fmt.Errorf("encoding players: %w", err)
	}

	_, err = r.db.Exec(ctx,
		`INSERT INTO connections (ip, geo, players, updated_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (ip) DO UPDATE
		 SET geo = EXCLUDED.geo, players = EXCLUDED.players, updated_at = NOW()`,
		rec.IP, geoJSON, playersJSON,
	)
	if err != nil {
		return fmt.Errorf("upserting connection %s: %w", rec.IP, err)
	}
	return nil
}

// Remove deletes the row for ip. Removing a missing ip is not an error.
func (r *HistoryRepository) Remove(ctx context.Context, ip string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM connections WHERE ip = $1`, ip); err != nil {
		return fmt.Errorf("deleting connection %s: %w", ip, err)
	}
	return nil
}

// Clear deletes every row.
func (r *HistoryRepository) Clear(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM connections`); err != nil {
		return fmt.Errorf("clearing connections: %w", err)
	}
	return nil
}

// Keys returns every stored ip in ascending order.
func (r *HistoryRepository) Keys(ctx context.Context) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT ip FROM connections ORDER BY ip`)
	if err != nil {
		return nil, fmt.Errorf("listing connections: %w", err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scanning connections: %w", err)
	}
	return keys, nil
}
