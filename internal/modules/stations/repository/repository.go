package repository

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"log/slog"

	"stationmap/internal/modules/stations/types"
)

//go:embed sql/list-stations.sql
var listStationsSQL string

//go:embed sql/get-station.sql
var getStationSQL string

//go:embed sql/insert-station.sql
var insertStationSQL string

//go:embed sql/update-station.sql
var updateStationSQL string

type StationRepository interface {
	List(ctx context.Context) ([]types.Station, error)
	Get(ctx context.Context, id int64) (types.Station, error)
	Create(ctx context.Context, in types.Input) (types.Station, error)
	Update(ctx context.Context, id int64, in types.Input) (types.Station, error)
}

type repositoryImpl struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) StationRepository {
	return &repositoryImpl{db: db}
}

func (r *repositoryImpl) List(ctx context.Context) ([]types.Station, error) {
	rows, err := r.db.QueryContext(ctx, listStationsSQL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("close stations rows", "error", err)
		}
	}()

	out := []types.Station{}
	for rows.Next() {
		s, err := scanStation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *repositoryImpl) Get(ctx context.Context, id int64) (types.Station, error) {
	s, err := scanStation(r.db.QueryRowContext(ctx, getStationSQL, id))
	if errors.Is(err, sql.ErrNoRows) {
		return types.Station{}, types.ErrNotFound
	}
	return s, err
}

func (r *repositoryImpl) Create(ctx context.Context, in types.Input) (types.Station, error) {
	res, err := r.db.ExecContext(ctx, insertStationSQL,
		*in.Lat, *in.Lng,
		deref(in.Name), deref(in.OpeningHour), deref(in.ClosingHour), deref(in.Phone),
	)
	if err != nil {
		return types.Station{}, fmt.Errorf("insert station: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return types.Station{}, fmt.Errorf("insert station id: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *repositoryImpl) Update(ctx context.Context, id int64, in types.Input) (types.Station, error) {
	res, err := r.db.ExecContext(ctx, updateStationSQL,
		nullable(in.Lat), nullable(in.Lng),
		nullable(in.Name), nullable(in.OpeningHour), nullable(in.ClosingHour), nullable(in.Phone),
		id,
	)
	if err != nil {
		return types.Station{}, fmt.Errorf("update station %d: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return types.Station{}, fmt.Errorf("update station %d: %w", id, err)
	}
	if n == 0 {
		return types.Station{}, types.ErrNotFound
	}
	return r.Get(ctx, id)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStation(row rowScanner) (types.Station, error) {
	var s types.Station
	err := row.Scan(&s.ID, &s.Lat, &s.Lng, &s.Name, &s.OpeningHour, &s.ClosingHour, &s.Phone)
	return s, err
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

// nullable turns a nil pointer into SQL NULL so COALESCE keeps the column.
func nullable[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}
