package excel

import (
	"context"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/emiliopalmerini/dissolvo/internal/ports"
)

func testWorkbook(t *testing.T) *Workbook {
	t.Helper()

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "S1"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}

	set := func(cell string, v any) {
		if err := f.SetCellValue("S1", cell, v); err != nil {
			t.Fatalf("set %s: %v", cell, err)
		}
	}

	set("A1", "t (min)")
	set("B1", "R1")
	set("C1", "R1")
	set("D1", "t1") // lower case headers are normalized
	set("E1", "T1")
	set("F1", "notes")

	times := []float64{5, 10, 15}
	r1 := [][]float64{{10, 40, 70}, {12, 42, 72}}
	t1 := [][]float64{{11, 39, 69}, {13, 41, 71}}
	for i, v := range times {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		set(cell, v)
	}
	for j, rep := range r1 {
		for i, v := range rep {
			cell, _ := excelize.CoordinatesToCellName(2+j, i+2)
			set(cell, v)
		}
	}
	for j, rep := range t1 {
		for i, v := range rep {
			cell, _ := excelize.CoordinatesToCellName(4+j, i+2)
			set(cell, v)
		}
	}
	set("F2", "free text")

	w := NewFromFile(f)
	t.Cleanup(func() { _ = w.Close() })
	return w
}

func TestSamplesDiscovery(t *testing.T) {
	w := testWorkbook(t)

	blocks, err := w.Samples(context.Background())
	if err != nil {
		t.Fatalf("Samples error: %v", err)
	}
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}

	b := blocks[0]
	if b.SampleID != "S1" {
		t.Errorf("sample = %s, want S1", b.SampleID)
	}
	if b.TimeCol != 0 {
		t.Errorf("time col = %d, want 0", b.TimeCol)
	}
	if b.DataRows != (ports.Range{Start: 1, End: 3}) {
		t.Errorf("data rows = %+v", b.DataRows)
	}
	if len(b.Profiles) != 2 {
		t.Fatalf("profiles = %+v, want R1 and T1", b.Profiles)
	}

	r1 := b.Profiles[0]
	if r1.Name != "R1" || r1.Kind != "R" || r1.Number != 1 || len(r1.Cols) != 2 {
		t.Errorf("R1 block = %+v", r1)
	}
	t1 := b.Profiles[1]
	if t1.Name != "T1" || t1.Kind != "T" || t1.Number != 1 || len(t1.Cols) != 2 {
		t.Errorf("T1 block = %+v", t1)
	}
}

func TestReadResolvedValues(t *testing.T) {
	w := testWorkbook(t)

	matrix, err := w.Read(context.Background(), "S1", ports.Range{Start: 1, End: 3}, ports.Range{Start: 1, End: 1})
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if len(matrix) != 3 {
		t.Fatalf("rows = %d, want 3", len(matrix))
	}
	want := []float64{10, 40, 70}
	for i, row := range matrix {
		if len(row) != 1 || !row[0].Valid || row[0].Float64 != want[i] {
			t.Errorf("row %d = %+v, want %v", i, row, want[i])
		}
	}
}

func TestReadMissingCells(t *testing.T) {
	w := testWorkbook(t)

	// Column F holds text; numeric parsing fails, so the cells are
	// missing data points rather than errors.
	matrix, err := w.Read(context.Background(), "S1", ports.Range{Start: 1, End: 2}, ports.Range{Start: 5, End: 5})
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if matrix[0][0].Valid {
		t.Errorf("text cell reported as resolved: %+v", matrix[0][0])
	}
	if matrix[1][0].Valid {
		t.Errorf("blank cell reported as resolved: %+v", matrix[1][0])
	}
}

func TestWriteThenRead(t *testing.T) {
	w := testWorkbook(t)
	ctx := context.Background()

	if err := w.WriteString(ctx, "S1", 0, 6, "R1"); err != nil {
		t.Fatalf("WriteString error: %v", err)
	}
	if err := w.Write(ctx, "S1", 1, 6, 10.1234); err != nil {
		t.Fatalf("Write error: %v", err)
	}
	if err := w.Commit(ctx); err != nil {
		t.Fatalf("Commit error: %v", err)
	}

	matrix, err := w.Read(ctx, "S1", ports.Range{Start: 1, End: 1}, ports.Range{Start: 6, End: 6})
	if err != nil {
		t.Fatalf("Read error: %v", err)
	}
	if !matrix[0][0].Valid || matrix[0][0].Float64 != 10.1234 {
		t.Errorf("written value read back as %+v", matrix[0][0])
	}

	// The new column joins the R1 block on the next discovery.
	blocks, err := w.Samples(ctx)
	if err != nil {
		t.Fatalf("Samples error: %v", err)
	}
	if got := len(blocks[0].Profiles[0].Cols); got != 3 {
		t.Errorf("R1 columns after write = %d, want 3", got)
	}
}
