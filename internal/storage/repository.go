// Package storage keeps city saves in SQLite. Each city is a set of segment
// records addressed by resource key.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"custombudget/internal/segment"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db  *sql.DB
	now func() time.Time
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	// Run migrations
	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db, now: time.Now}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// ReadSegment returns the payload stored for key in cityID's save.
func (r *SQLiteRepository) ReadSegment(ctx context.Context, cityID string, key segment.Key) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx,
		`SELECT payload FROM city_segments
		 WHERE city_id = ? AND type_id = ? AND group_id = ? AND instance_id = ?`,
		cityID, int64(key.Type), int64(key.Group), int64(key.Instance),
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("city %s %v: %w", cityID, key, segment.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("read segment: %w", err)
	}
	return payload, nil
}

// WriteSegment inserts or replaces the payload for key.
func (r *SQLiteRepository) WriteSegment(ctx context.Context, cityID string, key segment.Key, data []byte) error {
	if data == nil {
		data = []byte{}
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO city_segments (city_id, type_id, group_id, instance_id, payload, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT (city_id, type_id, group_id, instance_id)
		 DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		cityID, int64(key.Type), int64(key.Group), int64(key.Instance), data, r.now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("write segment: %w", err)
	}

	slog.DebugContext(ctx, "Segment saved to SQLite",
		"city_id", cityID,
		"key", key.String(),
		"bytes", len(data))
	return nil
}

// DeleteSegment removes the record for key. A missing record is not an error.
func (r *SQLiteRepository) DeleteSegment(ctx context.Context, cityID string, key segment.Key) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM city_segments
		 WHERE city_id = ? AND type_id = ? AND group_id = ? AND instance_id = ?`,
		cityID, int64(key.Type), int64(key.Group), int64(key.Instance),
	)
	if err != nil {
		return fmt.Errorf("delete segment: %w", err)
	}
	return nil
}

// CitySave summarizes one city's stored records.
type CitySave struct {
	CityID    string
	Records   int
	UpdatedAt time.Time
}

// ListCities returns every city with at least one record, ordered by id.
func (r *SQLiteRepository) ListCities(ctx context.Context) ([]CitySave, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT city_id, COUNT(*), MAX(updated_at)
		 FROM city_segments
		 GROUP BY city_id
		 ORDER BY city_id`)
	if err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	defer rows.Close()

	var out []CitySave
	for rows.Next() {
		var (
			c       CitySave
			updated int64
		)
		if err := rows.Scan(&c.CityID, &c.Records, &updated); err != nil {
			return nil, fmt.Errorf("scan city: %w", err)
		}
		c.UpdatedAt = time.Unix(updated, 0)
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list cities: %w", err)
	}
	return out, nil
}

// Segment returns the save of one city as a segment.Store.
func (r *SQLiteRepository) Segment(cityID string) *CitySegment {
	return &CitySegment{repo: r, cityID: cityID}
}

// CitySegment binds a repository to a city id.
type CitySegment struct {
	repo   *SQLiteRepository
	cityID string
}

var (
	_ segment.Store   = (*CitySegment)(nil)
	_ segment.Deleter = (*CitySegment)(nil)
)

func (s *CitySegment) CityID() string { return s.cityID }

func (s *CitySegment) Read(ctx context.Context, key segment.Key) ([]byte, error) {
	return s.repo.ReadSegment(ctx, s.cityID, key)
}

func (s *CitySegment) Write(ctx context.Context, key segment.Key, data []byte) error {
	return s.repo.WriteSegment(ctx, s.cityID, key, data)
}

func (s *CitySegment) Delete(ctx context.Context, key segment.Key) error {
	return s.repo.DeleteSegment(ctx, s.cityID, key)
}
