package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/emiliopalmerini/dissolvo/internal/domain"
)

// ResultRepository persists analysis runs and factor results to libsql.
type ResultRepository struct {
	db *sql.DB
}

// NewResultRepository creates a ResultRepository.
func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// SaveRun records the start of a run.
func (r *ResultRepository) SaveRun(ctx context.Context, run *domain.Run) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO runs (id, source, started_at) VALUES (?, ?, ?)
	`, run.ID, run.Source, run.StartedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	return nil
}

// FinishRun records the completion time of a run.
func (r *ResultRepository) FinishRun(ctx context.Context, run *domain.Run) error {
	if run.FinishedAt == nil {
		return fmt.Errorf("run %s has no finish time", run.ID)
	}
	_, err := r.db.ExecContext(ctx, `
		UPDATE runs SET finished_at = ? WHERE id = ?
	`, run.FinishedAt.Format(time.RFC3339), run.ID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	return nil
}

// SavePairResult persists one R–T factor result.
func (r *ResultRepository) SavePairResult(ctx context.Context, res *domain.PairResult) error {
	points, err := json.Marshal(res.Result.Points)
	if err != nil {
		return fmt.Errorf("marshal points: %w", err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO factor_results (
			run_id, sample_id, reference_name, test_name,
			f1_all, f1_selected, f2, points, message, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.RunID,
		res.SampleID,
		res.Reference,
		res.Test,
		toNullFloat(res.Result.F1All),
		toNullFloat(res.Result.F1Selected),
		toNullFloat(res.Result.F2),
		string(points),
		res.Result.Message,
		time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("save factor result: %w", err)
	}
	return nil
}

// ListRecent returns the most recently stored factor results.
func (r *ResultRepository) ListRecent(ctx context.Context, limit int) ([]domain.PairResult, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT run_id, sample_id, reference_name, test_name,
		       f1_all, f1_selected, f2, points, message, created_at
		FROM factor_results
		ORDER BY id DESC
		LIMIT ?
	`, int64(limit))
	if err != nil {
		return nil, fmt.Errorf("list factor results: %w", err)
	}
	defer rows.Close()

	var results []domain.PairResult
	for rows.Next() {
		var (
			res        domain.PairResult
			f1All      sql.NullFloat64
			f1Selected sql.NullFloat64
			f2         sql.NullFloat64
			points     string
			createdAt  string
		)
		if err := rows.Scan(
			&res.RunID, &res.SampleID, &res.Reference, &res.Test,
			&f1All, &f1Selected, &f2, &points, &res.Result.Message, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scan factor result: %w", err)
		}
		res.Result.F1All = fromNullFloat(f1All)
		res.Result.F1Selected = fromNullFloat(f1Selected)
		res.Result.F2 = fromNullFloat(f2)
		if err := json.Unmarshal([]byte(points), &res.Result.Points); err != nil {
			return nil, fmt.Errorf("unmarshal points: %w", err)
		}
		res.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		results = append(results, res)
	}
	return results, rows.Err()
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func fromNullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	return &v.Float64
}
