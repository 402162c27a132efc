// Package moderation runs the statistical moderation pass over a built
// report: grader outlier flags on score and feedback volume, rubric-sum
// consistency checks, and missing-feedback flags.
package moderation

import (
	"context"
	"math"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/canvaswizards/canvas-moderator/internal/report"
	"github.com/canvaswizards/canvas-moderator/internal/stats"
)

// Flag strings accumulated into the moderation_issue column.
const (
	IssueScoreHigher = "Grader median score is significantly higher than global median"
	IssueScoreLower  = "Grader median score is significantly lower than global median"
	IssueWordsHigher = "Grader median feedback word count is significantly higher than global median"
	IssueWordsLower  = "Grader median feedback word count is significantly lower than global median"
	IssueRubricDiff  = "Final score is different to rubric total"
	IssueNoFeedback  = "No written feedback"
)

// Options toggles the optional steps of a moderation pass.
type Options struct {
	Anonymize bool
}

// Outcome is everything a moderation pass produced: the flagged (filtered)
// table as persisted, and the per-metric detector results for the renderer.
type Outcome struct {
	Path  string
	Table *report.Table
	Score stats.Result
	Words stats.Result
}

// Flagger orchestrates one moderation pass over a persisted report.
type Flagger struct {
	store    *report.Store
	detector *stats.Detector
	logger   zerolog.Logger
}

// NewFlagger constructs the moderation flagger.
func NewFlagger(store *report.Store, detector *stats.Detector, logger zerolog.Logger) *Flagger {
	return &Flagger{
		store:    store,
		detector: detector,
		logger:   logger.With().Str("component", "moderation_flagger").Logger(),
	}
}

// Moderate loads the report at path, recomputes every moderation annotation
// from scratch, and writes the flagged table back. Only rows with workflow
// status "graded" and a strictly positive score take part in the statistics
// and the write-back.
func (f *Flagger) Moderate(ctx context.Context, path string, opts Options) (Outcome, error) {
	tracer := otel.Tracer("github.com/canvaswizards/canvas-moderator/internal/moderation")
	ctx, span := tracer.Start(ctx, "moderation.run")
	span.SetAttributes(attribute.String("report.path", path))
	defer span.End()

	runID := uuid.NewString()
	logger := f.logger.With().Str("run_id", runID).Logger()

	table, err := f.store.Load(path)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report_load_failed")
		return Outcome{}, err
	}

	table.AddColumn(report.ColModerationIssue)
	table.AddColumn(report.ColRubricScoreDiff)
	for _, row := range table.Rows {
		row[report.ColModerationIssue] = ""
		row[report.ColRubricScoreDiff] = "0"
	}

	flagged := table.Filter(func(row report.Row) bool {
		score, ok := row.Float(report.ColScore)
		return row[report.ColStatus] == report.StatusGraded && ok && score > 0
	})

	countFeedbackWords(flagged)

	if opts.Anonymize {
		if err := anonymizeGraders(flagged, report.SiblingPath(path, "grader_hash.csv")); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "anonymization_failed")
			return Outcome{}, err
		}
		logger.Info().Msg("graders anonymized")
	}

	scoreResult, err := f.detector.Detect(flagged, report.ColScore)
	if err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}
	flagSignificant(flagged, scoreResult, IssueScoreHigher, IssueScoreLower)

	wordsResult, err := f.detector.Detect(flagged, report.ColTotalWords)
	if err != nil {
		span.RecordError(err)
		return Outcome{}, err
	}
	flagSignificant(flagged, wordsResult, IssueWordsHigher, IssueWordsLower)

	flagRubricMismatch(flagged)
	flagMissingFeedback(flagged)

	if err := f.store.Save(path, flagged); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "report_save_failed")
		return Outcome{}, err
	}

	logger.Info().
		Int("rows", len(flagged.Rows)).
		Int("score_significant", len(scoreResult.Significant)).
		Int("words_significant", len(wordsResult.Significant)).
		Str("path", path).
		Msg("moderation pass complete")

	return Outcome{Path: path, Table: flagged, Score: scoreResult, Words: wordsResult}, nil
}

// flagSignificant appends a directional reason to every row of each
// significant grader, comparing that grader's median to the global median of
// the same metric. Each metric's result is consulted only for its own flags.
func flagSignificant(table *report.Table, result stats.Result, higher, lower string) {
	for _, graderStats := range result.Significant {
		issue := lower
		if graderStats.Median > result.GlobalMedian {
			issue = higher
		}
		for _, row := range table.Rows {
			if row[report.ColGrader] == graderStats.Grader {
				row.AppendIssue(issue)
			}
		}
	}
}

// flagRubricMismatch sums the rubric SCORE_ columns per row and records the
// signed difference whenever the total disagrees with the recorded score.
func flagRubricMismatch(table *report.Table) {
	var scoreColumns []string
	for _, header := range table.Headers {
		if strings.HasPrefix(header, report.ScorePrefix) {
			scoreColumns = append(scoreColumns, header)
		}
	}

	for _, row := range table.Rows {
		sum := 0.0
		for _, col := range scoreColumns {
			if v, ok := row.Float(col); ok {
				sum += v
			}
		}

		score, ok := row.Float(report.ColScore)
		if !ok {
			continue
		}

		if diff := sum - score; math.Abs(diff) > 1e-9 {
			row.AppendIssue(IssueRubricDiff)
			row[report.ColRubricScoreDiff] = report.FormatFloat(diff)
		}
	}
}

// flagMissingFeedback marks rows whose combined feedback word count is zero.
func flagMissingFeedback(table *report.Table) {
	for _, row := range table.Rows {
		if total, ok := row.Float(report.ColTotalWords); ok && total == 0 {
			row.AppendIssue(IssueNoFeedback)
		}
	}
}
