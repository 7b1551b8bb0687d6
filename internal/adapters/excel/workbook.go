// Package excel adapts an xlsx workbook to the tabular ports. It is the
// only place that touches cell coordinates and sheet layout; the analytics
// core consumes resolved numbers.
package excel

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/emiliopalmerini/dissolvo/internal/ports"
)

// profileHeader matches profile column headers like "R1" or "t2".
var profileHeader = regexp.MustCompile(`^([RT])\s*(\d+)$`)

// Workbook implements ports.SampleSource, ports.TabularReader and
// ports.TabularWriter over one xlsx file.
//
// Layout convention: one sheet per sample; row 1 holds profile names above
// each replicate column, column A holds the time grid in minutes. Columns
// sharing a header name belong to the same profile.
type Workbook struct {
	file *excelize.File
	path string
}

// Open opens the workbook at path.
func Open(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	return &Workbook{file: f, path: path}, nil
}

// NewFromFile wraps an already-open excelize file. Commit is a no-op when
// the file has no backing path.
func NewFromFile(f *excelize.File) *Workbook {
	return &Workbook{file: f}
}

// Close releases the underlying file.
func (w *Workbook) Close() error {
	return w.file.Close()
}

// Samples discovers the sample blocks: every sheet with at least one
// profile header and a numeric time column.
func (w *Workbook) Samples(ctx context.Context) ([]ports.SampleBlock, error) {
	var blocks []ports.SampleBlock
	for _, sheet := range w.file.GetSheetList() {
		rows, err := w.file.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}

		profiles := discoverProfiles(rows[0])
		if len(profiles) == 0 {
			continue
		}

		lastRow := 0
		for r := 1; r < len(rows); r++ {
			if len(rows[r]) == 0 {
				break
			}
			if _, err := parseNumber(rows[r][0]); err != nil {
				break
			}
			lastRow = r
		}
		if lastRow == 0 {
			continue
		}

		blocks = append(blocks, ports.SampleBlock{
			SampleID: sheet,
			TimeCol:  0,
			DataRows: ports.Range{Start: 1, End: lastRow},
			Profiles: profiles,
		})
	}
	return blocks, nil
}

func discoverProfiles(header []string) []ports.ProfileBlock {
	byName := map[string]*ports.ProfileBlock{}
	var names []string
	for c := 1; c < len(header); c++ {
		name := strings.ToUpper(strings.TrimSpace(header[c]))
		m := profileHeader.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		pb, ok := byName[name]
		if !ok {
			num, _ := strconv.Atoi(m[2])
			pb = &ports.ProfileBlock{Name: name, Kind: m[1], Number: num}
			byName[name] = pb
			names = append(names, name)
		}
		pb.Cols = append(pb.Cols, c)
	}

	blocks := make([]ports.ProfileBlock, 0, len(names))
	for _, n := range names {
		blocks = append(blocks, *byName[n])
	}
	return blocks
}

// Read returns the resolved values of the requested cell range. Formulas
// come back as their calculated values; blank or non-numeric cells are
// missing data points, not errors.
func (w *Workbook) Read(ctx context.Context, sampleID string, rows, cols ports.Range) ([][]ports.Cell, error) {
	matrix := make([][]ports.Cell, 0, rows.Len())
	for r := rows.Start; r <= rows.End; r++ {
		row := make([]ports.Cell, 0, cols.Len())
		for c := cols.Start; c <= cols.End; c++ {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, fmt.Errorf("cell (%d,%d): %w", r, c, err)
			}
			raw, err := w.file.GetCellValue(sampleID, cell)
			if err != nil {
				return nil, fmt.Errorf("read %s!%s: %w", sampleID, cell, err)
			}
			if v, err := parseNumber(raw); err == nil {
				row = append(row, ports.Cell{Float64: v, Valid: true})
			} else {
				row = append(row, ports.Cell{})
			}
		}
		matrix = append(matrix, row)
	}
	return matrix, nil
}

// Write buffers a plain numeric value into the workbook.
func (w *Workbook) Write(ctx context.Context, sampleID string, row, col int, value float64) error {
	return w.setCell(sampleID, row, col, value)
}

// WriteString buffers a plain text value, used for generated-column headers.
func (w *Workbook) WriteString(ctx context.Context, sampleID string, row, col int, value string) error {
	return w.setCell(sampleID, row, col, value)
}

func (w *Workbook) setCell(sampleID string, row, col int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col+1, row+1)
	if err != nil {
		return fmt.Errorf("cell (%d,%d): %w", row, col, err)
	}
	if err := w.file.SetCellValue(sampleID, cell, value); err != nil {
		return fmt.Errorf("write %s!%s: %w", sampleID, cell, err)
	}
	return nil
}

// Commit saves the workbook, making buffered writes part of the next
// snapshot readers take.
func (w *Workbook) Commit(ctx context.Context) error {
	if w.path == "" {
		return nil
	}
	if err := w.file.Save(); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
