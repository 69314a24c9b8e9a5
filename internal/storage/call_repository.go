package storage

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/Takita08/Marko-Docu-Ai/internal/model"
)

// CallRepository handles persistence of AI call tracking.
// Go interfaces are implicit: any struct that has these methods satisfies it,
// so tests can swap in an in-memory fake without touching SQLite.
type CallRepository interface {
	Create(ctx context.Context, call *model.AnalysisCall) error
	Usage(ctx context.Context) (*Usage, error)
	ListRecent(ctx context.Context, limit int) ([]model.AnalysisCall, error)
}

// Usage aggregates the ledger for the usage endpoint and CLI.
type Usage struct {
	Total     int64 `json:"total"`
	Documents int64 `json:"documents"`
	Markets   int64 `json:"markets"`
	Failed    int64 `json:"failed"`
}

// sqliteCallRepository is the SQLite implementation of CallRepository.
// The struct is unexported; only the interface is public.
type sqliteCallRepository struct {
	db *sqlx.DB
}

// NewCallRepository creates a new SQLite-backed CallRepository.
func NewCallRepository(db *sqlx.DB) CallRepository {
	return &sqliteCallRepository{db: db}
}

func (r *sqliteCallRepository) Create(ctx context.Context, call *model.AnalysisCall) error {
	// NamedExecContext uses the struct's `db:` tags to map fields to :named placeholders.
	result, err := r.db.NamedExecContext(ctx, `
		INSERT INTO analysis_calls (kind, subject, provider, model, success, error_kind, duration_ms)
		VALUES (:kind, :subject, :provider, :model, :success, :error_kind, :duration_ms)
	`, call)
	if err != nil {
		return fmt.Errorf("creating analysis call record: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("getting last insert id: %w", err)
	}
	call.ID = id
	return nil
}

func (r *sqliteCallRepository) Usage(ctx context.Context) (*Usage, error) {
	var u Usage
	// COALESCE keeps the sums at 0 on an empty table instead of NULL.
	err := r.db.QueryRowxContext(ctx, `
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN kind = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), 0)
		FROM analysis_calls
	`, model.KindDocument, model.KindMarket).Scan(&u.Total, &u.Documents, &u.Markets, &u.Failed)
	if err != nil {
		return nil, fmt.Errorf("aggregating usage: %w", err)
	}
	return &u, nil
}

func (r *sqliteCallRepository) ListRecent(ctx context.Context, limit int) ([]model.AnalysisCall, error) {
	var calls []model.AnalysisCall
	err := r.db.SelectContext(ctx, &calls,
		"SELECT * FROM analysis_calls ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, fmt.Errorf("listing recent calls: %w", err)
	}
	return calls, nil
}
