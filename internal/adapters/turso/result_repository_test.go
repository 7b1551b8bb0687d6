package turso_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/emiliopalmerini/dissolvo/internal/adapters/turso"
	"github.com/emiliopalmerini/dissolvo/internal/domain"
	"github.com/emiliopalmerini/dissolvo/internal/migrate"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("Failed to open in-memory database: %v", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to enable foreign keys: %v", err)
	}

	ctx := context.Background()
	if err := migrate.RunAll(ctx, db); err != nil {
		_ = db.Close()
		t.Fatalf("Failed to run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func floatPtr(v float64) *float64 { return &v }

func TestResultRepositoryRoundtrip(t *testing.T) {
	db := testDB(t)
	repo := turso.NewResultRepository(db)
	ctx := context.Background()

	run := &domain.Run{
		ID:        "run-1",
		Source:    "batch.xlsx",
		StartedAt: time.Now().UTC(),
	}
	if err := repo.SaveRun(ctx, run); err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}

	computed := &domain.PairResult{
		RunID:     "run-1",
		SampleID:  "S1",
		Reference: "R1",
		Test:      "T1",
		Result: domain.FactorResult{
			F1All:      floatPtr(2.67),
			F1Selected: floatPtr(2.07),
			F2:         floatPtr(86.4),
			Points:     []int{1, 2, 3, 4},
		},
	}
	if err := repo.SavePairResult(ctx, computed); err != nil {
		t.Fatalf("SavePairResult error: %v", err)
	}

	failed := &domain.PairResult{
		RunID:     "run-1",
		SampleID:  "S2",
		Reference: "R1",
		Test:      "T1",
		Result:    domain.FactorResult{Message: "insufficient points for factor calculation"},
	}
	if err := repo.SavePairResult(ctx, failed); err != nil {
		t.Fatalf("SavePairResult error: %v", err)
	}

	finished := time.Now().UTC()
	run.FinishedAt = &finished
	if err := repo.FinishRun(ctx, run); err != nil {
		t.Fatalf("FinishRun error: %v", err)
	}

	results, err := repo.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent error: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results = %d, want 2", len(results))
	}

	// Most recent first.
	if results[0].SampleID != "S2" {
		t.Errorf("first result sample = %s, want S2", results[0].SampleID)
	}
	if results[0].Result.F2 != nil {
		t.Errorf("failed pair must keep f2 nil, got %v", *results[0].Result.F2)
	}
	if results[0].Result.Message == "" {
		t.Error("failed pair lost its message")
	}

	got := results[1]
	if got.Result.F2 == nil || *got.Result.F2 != 86.4 {
		t.Errorf("f2 = %v, want 86.4", got.Result.F2)
	}
	if got.Result.F1All == nil || *got.Result.F1All != 2.67 {
		t.Errorf("f1_all = %v, want 2.67", got.Result.F1All)
	}
	if len(got.Result.Points) != 4 || got.Result.Points[0] != 1 {
		t.Errorf("points = %v, want [1 2 3 4]", got.Result.Points)
	}
}

func TestFinishRunWithoutTimestamp(t *testing.T) {
	db := testDB(t)
	repo := turso.NewResultRepository(db)

	run := &domain.Run{ID: "run-2", Source: "x", StartedAt: time.Now().UTC()}
	if err := repo.SaveRun(context.Background(), run); err != nil {
		t.Fatalf("SaveRun error: %v", err)
	}
	if err := repo.FinishRun(context.Background(), run); err == nil {
		t.Fatal("expected error for missing finish time")
	}
}
