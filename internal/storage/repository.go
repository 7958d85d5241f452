package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotConfigured indicates the storage pool was not initialised.
	ErrNotConfigured = errors.New("storage: pool not configured")
)

const (
	insertCheckSampleSQL = `INSERT INTO check_samples (
        tick_ts,
        status,
        listing_count,
        matched_count,
        failures,
        error
    ) VALUES (
        $1,$2,$3,$4,$5,$6
    )
    ON CONFLICT (tick_ts) DO UPDATE
    SET
        status        = EXCLUDED.status,
        listing_count = EXCLUDED.listing_count,
        matched_count = EXCLUDED.matched_count,
        failures      = EXCLUDED.failures,
        error         = EXCLUDED.error;`

	listSamplesBetweenSQL = `SELECT
        tick_ts,
        status,
        listing_count,
        matched_count,
        failures,
        error,
        created_at
    FROM check_samples
    WHERE tick_ts >= $1
      AND tick_ts < $2
    ORDER BY tick_ts;`

	listRecentSamplesSQL = `SELECT
        tick_ts,
        status,
        listing_count,
        matched_count,
        failures,
        error,
        created_at
    FROM check_samples
    ORDER BY tick_ts DESC
    LIMIT $1;`

	countSamplesSQL = `SELECT COUNT(*) FROM check_samples;`

	insertAlertSQL = `INSERT INTO alerts (
        kind,
        skus,
        detail
    ) VALUES (
        $1,$2,$3
    )
    RETURNING id, kind, skus, detail, created_at;`

	listRecentAlertsSQL = `SELECT
        id,
        kind,
        skus,
        detail,
        created_at
    FROM alerts
    ORDER BY created_at DESC
    LIMIT $1;`

	deleteAlertsBeforeSQL = `DELETE FROM alerts WHERE created_at < $1;`

	tryAdvisoryLockSQL = `SELECT pg_try_advisory_lock($1);`
	advisoryUnlockSQL  = `SELECT pg_advisory_unlock($1);`
)

// CheckSampleStore defines operations for tick outcome persistence.
type CheckSampleStore interface {
	InsertCheckSample(ctx context.Context, sample CheckSample) error
	ListSamplesBetween(ctx context.Context, from, to time.Time) ([]CheckSample, error)
	ListRecentSamples(ctx context.Context, limit int) ([]CheckSample, error)
	CountSamples(ctx context.Context) (int64, error)
}

// AlertStore defines operations for alert auditing.
type AlertStore interface {
	InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error)
	ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error)
	DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error
}

// AdvisoryLocker exposes advisory lock helpers.
type AdvisoryLocker interface {
	TryAdvisoryLock(ctx context.Context, key int64) (unlock func(), acquired bool, err error)
}

// Store aggregates access to check samples and alerts.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore wires a pgx pool into a Store.
func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Close releases the underlying pool resources.
func (s *Store) Close() {
	if s == nil || s.pool == nil {
		return
	}
	s.pool.Close()
}

// TryAdvisoryLock attempts to acquire a postgres advisory lock and returns a release func.
func (s *Store) TryAdvisoryLock(ctx context.Context, key int64) (func(), bool, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, false, err
	}

	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("acquire connection: %w", err)
	}

	var acquired bool
	if err := conn.QueryRow(ctx, tryAdvisoryLockSQL, key).Scan(&acquired); err != nil {
		conn.Release()
		return nil, false, fmt.Errorf("try advisory lock: %w", err)
	}
	if !acquired {
		conn.Release()
		return nil, false, nil
	}

	unlock := func() {
		ctxUnlock, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		// Best-effort unlock; the session drop releases it regardless.
		_, _ = conn.Exec(ctxUnlock, advisoryUnlockSQL, key)
		conn.Release()
	}
	return unlock, true, nil
}

func (s *Store) getPool() (*pgxpool.Pool, error) {
	if s == nil || s.pool == nil {
		return nil, ErrNotConfigured
	}
	return s.pool, nil
}

// InsertCheckSample persists or updates one tick outcome.
func (s *Store) InsertCheckSample(ctx context.Context, sample CheckSample) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}

	var errMsg interface{}
	if sample.Error != nil {
		errMsg = *sample.Error
	}

	_, execErr := pool.Exec(ctx, insertCheckSampleSQL,
		sample.TickTS,
		sample.Status,
		sample.ListingCount,
		sample.MatchedCount,
		sample.Failures,
		errMsg,
	)
	if execErr != nil {
		return fmt.Errorf("insert check sample: %w", execErr)
	}
	return nil
}

// ListSamplesBetween lists samples within a time window.
func (s *Store) ListSamplesBetween(ctx context.Context, from, to time.Time) ([]CheckSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listSamplesBetweenSQL, from, to)
	if queryErr != nil {
		return nil, fmt.Errorf("list samples between: %w", queryErr)
	}
	defer rows.Close()

	samples := make([]CheckSample, 0)
	for rows.Next() {
		sample, scanErr := scanCheckSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

// ListRecentSamples lists the most recent samples ordered by descending tick.
func (s *Store) ListRecentSamples(ctx context.Context, limit int) ([]CheckSample, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentSamplesSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent samples: %w", queryErr)
	}
	defer rows.Close()

	samples := make([]CheckSample, 0, limit)
	for rows.Next() {
		sample, scanErr := scanCheckSample(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		samples = append(samples, sample)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return samples, nil
}

// CountSamples counts stored samples.
func (s *Store) CountSamples(ctx context.Context) (int64, error) {
	pool, err := s.getPool()
	if err != nil {
		return 0, err
	}
	var count int64
	if scanErr := pool.QueryRow(ctx, countSamplesSQL).Scan(&count); scanErr != nil {
		return 0, fmt.Errorf("count samples: %w", scanErr)
	}
	return count, nil
}

// InsertAlert persists an alert emission.
func (s *Store) InsertAlert(ctx context.Context, alert AlertRecord) (AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return AlertRecord{}, err
	}

	row := pool.QueryRow(ctx, insertAlertSQL,
		alert.Kind,
		alert.SKUs,
		alert.Detail,
	)

	var rec AlertRecord
	if scanErr := row.Scan(
		&rec.ID,
		&rec.Kind,
		&rec.SKUs,
		&rec.Detail,
		&rec.CreatedAt,
	); scanErr != nil {
		return AlertRecord{}, fmt.Errorf("insert alert: %w", scanErr)
	}

	return rec, nil
}

// ListRecentAlerts lists most recent alerts.
func (s *Store) ListRecentAlerts(ctx context.Context, limit int) ([]AlertRecord, error) {
	pool, err := s.getPool()
	if err != nil {
		return nil, err
	}

	rows, queryErr := pool.Query(ctx, listRecentAlertsSQL, limit)
	if queryErr != nil {
		return nil, fmt.Errorf("list recent alerts: %w", queryErr)
	}
	defer rows.Close()

	alerts := make([]AlertRecord, 0, limit)
	for rows.Next() {
		var rec AlertRecord
		if err := rows.Scan(
			&rec.ID,
			&rec.Kind,
			&rec.SKUs,
			&rec.Detail,
			&rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		alerts = append(alerts, rec)
	}
	if rows.Err() != nil {
		return nil, rows.Err()
	}
	return alerts, nil
}

// DeleteAlertsBefore deletes historical alerts.
func (s *Store) DeleteAlertsBefore(ctx context.Context, olderThan time.Time) error {
	pool, err := s.getPool()
	if err != nil {
		return err
	}
	if _, execErr := pool.Exec(ctx, deleteAlertsBeforeSQL, olderThan); execErr != nil {
		return fmt.Errorf("delete alerts before: %w", execErr)
	}
	return nil
}

func scanCheckSample(rows pgx.Rows) (CheckSample, error) {
	var (
		tick         time.Time
		status       string
		listingCount int
		matchedCount int
		failures     int
		errMsg       sql.NullString
		createdAt    time.Time
	)

	if err := rows.Scan(
		&tick,
		&status,
		&listingCount,
		&matchedCount,
		&failures,
		&errMsg,
		&createdAt,
	); err != nil {
		return CheckSample{}, err
	}

	sample := CheckSample{
		TickTS:       tick,
		Status:       status,
		ListingCount: listingCount,
		MatchedCount: matchedCount,
		Failures:     failures,
		CreatedAt:    createdAt,
	}
	if errMsg.Valid {
		msg := errMsg.String
		sample.Error = &msg
	}

	return sample, nil
}
