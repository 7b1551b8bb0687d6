package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/exp/rand"

	"github.com/emiliopalmerini/dissolvo/internal/analysis"
	"github.com/emiliopalmerini/dissolvo/internal/domain"
	"github.com/emiliopalmerini/dissolvo/internal/ports"
)

// Logger defines the interface for logging.
type Logger interface {
	Debug(msg string)
	Error(msg string)
}

// Config carries the analysis options recognized by the pipeline.
type Config struct {
	PlateauThreshold  float64
	RSDTolerance      float64
	FactorRSDLimit    float64
	TargetReplicates  int
	RoundingPrecision int
	Seed              uint64
	SourceLabel       string
}

// Service sequences the analytics engine over every sample of a tabular
// document: snapshot read, plateau detection, replicate augmentation,
// commit and re-read, dispersion advisories, and factor computation per
// R–T pair. Failures stay local to their sample or pair; the batch always
// runs to completion.
type Service struct {
	source  ports.SampleSource
	reader  ports.TabularReader
	writer  ports.TabularWriter
	results ports.ResultRepository
	metrics ports.MetricsExporter
	logger  Logger
	cfg     Config

	calc *analysis.Calculator
	aug  *analysis.Augmentor
}

// NewService creates a pipeline service. results and metrics may be nil;
// persistence and export are then skipped.
func NewService(
	source ports.SampleSource,
	reader ports.TabularReader,
	writer ports.TabularWriter,
	results ports.ResultRepository,
	metrics ports.MetricsExporter,
	logger Logger,
	cfg Config,
) *Service {
	return &Service{
		source:  source,
		reader:  reader,
		writer:  writer,
		results: results,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
		calc:    analysis.NewCalculator(cfg.FactorRSDLimit),
		aug:     analysis.NewAugmentor(cfg.RoundingPrecision, cfg.PlateauThreshold, rand.NewSource(cfg.Seed)),
	}
}

// RunSummary reports the outcome of one batch run.
type RunSummary struct {
	RunID     string
	StartedAt time.Time
	Duration  time.Duration
	Samples   []SampleOutcome
}

// SampleOutcome is the per-sample record of what happened.
type SampleOutcome struct {
	SampleID  string
	Generated int
	Pairs     []PairOutcome
	Err       string
}

// PairOutcome is one R–T comparison with its advisory, if any.
type PairOutcome struct {
	Reference string
	Test      string
	Result    domain.FactorResult
	Advisory  string
}

// Failures counts samples that could not be processed.
func (s *RunSummary) Failures() int64 {
	var n int64
	for _, sample := range s.Samples {
		if sample.Err != "" {
			n++
		}
	}
	return n
}

// Run executes the batch over every sample the source reports.
func (s *Service) Run(ctx context.Context) (*RunSummary, error) {
	run := &domain.Run{
		ID:        uuid.NewString(),
		Source:    s.cfg.SourceLabel,
		StartedAt: time.Now().UTC(),
	}
	summary := &RunSummary{RunID: run.ID, StartedAt: run.StartedAt}

	if s.results != nil {
		if err := s.results.SaveRun(ctx, run); err != nil {
			return nil, fmt.Errorf("save run: %w", err)
		}
	}

	blocks, err := s.source.Samples(ctx)
	if err != nil {
		return nil, fmt.Errorf("list samples: %w", err)
	}
	s.logger.Debug(fmt.Sprintf("Run %s: %d samples", run.ID, len(blocks)))

	for _, block := range blocks {
		outcome := s.processSample(ctx, run.ID, block)
		summary.Samples = append(summary.Samples, outcome)
		if outcome.Err != "" {
			s.logger.Error(fmt.Sprintf("Sample %s: %s", block.SampleID, outcome.Err))
		}
	}

	summary.Duration = time.Since(run.StartedAt)

	if s.results != nil {
		finished := time.Now().UTC()
		run.FinishedAt = &finished
		if err := s.results.FinishRun(ctx, run); err != nil {
			s.logger.Error(fmt.Sprintf("Failed to finish run: %v", err))
		}
	}

	s.exportMetrics(ctx, run, summary)
	return summary, nil
}

func (s *Service) processSample(ctx context.Context, runID string, block ports.SampleBlock) SampleOutcome {
	outcome := SampleOutcome{SampleID: block.SampleID}

	profiles, err := s.loadProfiles(ctx, block)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}

	generated, err := s.augmentProfiles(ctx, block, profiles)
	if err != nil {
		outcome.Err = err.Error()
		return outcome
	}
	outcome.Generated = generated

	if generated > 0 {
		// Two-phase contract: committed values become part of a fresh
		// snapshot before any factor is computed from them.
		if err := s.writer.Commit(ctx); err != nil {
			outcome.Err = fmt.Sprintf("commit generated replicates: %v", err)
			return outcome
		}
		fresh, err := s.refetchSample(ctx, block.SampleID)
		if err != nil {
			outcome.Err = err.Error()
			return outcome
		}
		profiles, err = s.loadProfiles(ctx, fresh)
		if err != nil {
			outcome.Err = err.Error()
			return outcome
		}
	}

	outcome.Pairs = s.comparePairs(ctx, runID, block.SampleID, profiles)
	return outcome
}

// loadProfiles builds the in-memory profiles from a resolved snapshot of
// the sample block. Unresolved cells truncate the affected series; they
// are missing points, not errors.
func (s *Service) loadProfiles(ctx context.Context, block ports.SampleBlock) ([]*domain.Profile, error) {
	gridCells, err := s.reader.Read(ctx, block.SampleID, block.DataRows, ports.Range{Start: block.TimeCol, End: block.TimeCol})
	if err != nil {
		return nil, fmt.Errorf("read time grid: %w", err)
	}
	var grid domain.TimeGrid
	for _, row := range gridCells {
		if len(row) == 0 || !row[0].Valid {
			break
		}
		grid = append(grid, row[0].Float64)
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("sample %s has no resolved time grid", block.SampleID)
	}

	var profiles []*domain.Profile
	for _, pb := range block.Profiles {
		p := &domain.Profile{
			Kind:   domain.ProfileKind(pb.Kind),
			Number: pb.Number,
			Name:   pb.Name,
			Grid:   grid,
		}
		for _, col := range pb.Cols {
			cells, err := s.reader.Read(ctx, block.SampleID, block.DataRows, ports.Range{Start: col, End: col})
			if err != nil {
				return nil, fmt.Errorf("read %s column %d: %w", pb.Name, col, err)
			}
			var rep domain.Replicate
			for i, row := range cells {
				if i >= len(grid) || len(row) == 0 || !row[0].Valid {
					break
				}
				rep = append(rep, row[0].Float64)
			}
			if len(rep) > 0 {
				p.Replicates = append(p.Replicates, rep)
			}
		}
		profiles = append(profiles, p)
	}
	return profiles, nil
}

// augmentProfiles brings every profile up to the target replicate count and
// writes the generated values back as plain numbers. Returns the number of
// generated replicates.
func (s *Service) augmentProfiles(ctx context.Context, block ports.SampleBlock, profiles []*domain.Profile) (int, error) {
	nextCol := block.TimeCol
	for _, pb := range block.Profiles {
		for _, c := range pb.Cols {
			if c > nextCol {
				nextCol = c
			}
		}
	}
	nextCol++

	total := 0
	for _, p := range profiles {
		numNew := s.cfg.TargetReplicates - len(p.Replicates)
		if numNew <= 0 {
			continue
		}
		existing := len(p.Replicates)

		if _, err := s.aug.Augment(p, numNew); err != nil {
			return total, fmt.Errorf("augment %s: %w", p.Name, err)
		}
		s.logger.Debug(fmt.Sprintf("Sample %s: generated %d replicates for %s", block.SampleID, numNew, p.Name))

		for _, rep := range p.Replicates[existing:] {
			if block.DataRows.Start > 0 {
				headerRow := block.DataRows.Start - 1
				if err := s.writer.WriteString(ctx, block.SampleID, headerRow, nextCol, p.Name); err != nil {
					return total, fmt.Errorf("write header for %s: %w", p.Name, err)
				}
			}
			for t, v := range rep {
				if err := s.writer.Write(ctx, block.SampleID, block.DataRows.Start+t, nextCol, v); err != nil {
					return total, fmt.Errorf("write generated value for %s: %w", p.Name, err)
				}
			}
			nextCol++
			total++
		}
	}
	return total, nil
}

func (s *Service) refetchSample(ctx context.Context, sampleID string) (ports.SampleBlock, error) {
	blocks, err := s.source.Samples(ctx)
	if err != nil {
		return ports.SampleBlock{}, fmt.Errorf("refetch samples: %w", err)
	}
	for _, b := range blocks {
		if b.SampleID == sampleID {
			return b, nil
		}
	}
	return ports.SampleBlock{}, fmt.Errorf("sample %s disappeared after commit", sampleID)
}

// comparePairs matches R and T profiles by number and computes the factors
// for each pair.
func (s *Service) comparePairs(ctx context.Context, runID, sampleID string, profiles []*domain.Profile) []PairOutcome {
	refs := map[int]*domain.Profile{}
	tests := map[int]*domain.Profile{}
	order := []int{}
	for _, p := range profiles {
		switch p.Kind {
		case domain.Reference:
			if _, seen := refs[p.Number]; !seen {
				order = append(order, p.Number)
			}
			refs[p.Number] = p
		case domain.Test:
			tests[p.Number] = p
		}
	}

	var outcomes []PairOutcome
	for _, num := range order {
		r := refs[num]
		t, ok := tests[num]
		if !ok {
			s.logger.Debug(fmt.Sprintf("Sample %s: no test profile paired with %s", sampleID, r.Name))
			continue
		}

		rSeries, tSeries := r.MeanSeries(), t.MeanSeries()
		rSets, tSets := r.ValueSets(), t.ValueSets()

		res := s.calc.Compute(analysis.FactorInput{
			TimePoints: r.Grid,
			R:          rSeries,
			T:          tSeries,
			RSets:      rSets,
			TSets:      tSets,
		})

		outcome := PairOutcome{
			Reference: r.Name,
			Test:      t.Name,
			Result:    res,
			Advisory:  s.dispersionAdvisory(rSets, tSets, r.Grid),
		}
		outcomes = append(outcomes, outcome)

		if s.results != nil {
			pr := &domain.PairResult{
				RunID:     runID,
				SampleID:  sampleID,
				Reference: r.Name,
				Test:      t.Name,
				Result:    res,
			}
			if err := s.results.SavePairResult(ctx, pr); err != nil {
				s.logger.Error(fmt.Sprintf("Failed to save result %s/%s vs %s: %v", sampleID, r.Name, t.Name, err))
			}
		}
	}
	return outcomes
}

// dispersionAdvisory applies the pipeline-level RSD tolerance at the last
// common time point. Advisory only.
func (s *Service) dispersionAdvisory(rSets, tSets [][]float64, grid domain.TimeGrid) string {
	last := min(len(rSets), len(tSets)) - 1
	if last < 0 {
		return ""
	}
	rsdR, rsdT := analysis.CheckDispersion(rSets[last], tSets[last])
	if rsdR > s.cfg.RSDTolerance || rsdT > s.cfg.RSDTolerance {
		label := fmt.Sprintf("index %d", last)
		if last < len(grid) {
			label = fmt.Sprintf("t=%v min", grid[last])
		}
		return fmt.Sprintf("replicate RSD above %.1f%% at %s (R %.2f%%, T %.2f%%)", s.cfg.RSDTolerance, label, rsdR, rsdT)
	}
	return ""
}

func (s *Service) exportMetrics(ctx context.Context, run *domain.Run, summary *RunSummary) {
	if s.metrics == nil {
		return
	}
	m := &ports.RunMetrics{
		RunID:    run.ID,
		Source:   run.Source,
		Failures: summary.Failures(),
		Duration: summary.Duration,
	}
	for _, sample := range summary.Samples {
		if sample.Err == "" {
			m.SamplesAnalyzed++
		}
		m.PairsCompared += int64(len(sample.Pairs))
		m.ReplicatesGenerated += int64(sample.Generated)
	}
	if err := s.metrics.ExportRunMetrics(ctx, m); err != nil {
		s.logger.Error(fmt.Sprintf("Failed to export run metrics: %v", err))
	}
}
