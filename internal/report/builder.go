package report

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/schollz/progressbar/v3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/canvaswizards/canvas-moderator/internal/canvas"
	"github.com/canvaswizards/canvas-moderator/internal/scrape"
)

// LMS is the upstream API surface the builder consumes.
type LMS interface {
	Course(ctx context.Context, courseID int64) (canvas.Course, error)
	Assignment(ctx context.Context, courseID, assignmentID int64) (canvas.Assignment, error)
	Submissions(ctx context.Context, courseID, assignmentID int64) ([]canvas.Submission, error)
	UserName(ctx context.Context, userID int64) (string, error)
	SpeedGraderURL(courseID, assignmentID, userID int64) string
}

// AnnotationFetcher pulls inline annotations for a submission's SpeedGrader
// URL. A nil fetcher disables the annotations column entirely.
type AnnotationFetcher interface {
	Annotations(ctx context.Context, url string) ([]scrape.Annotation, error)
}

// Builder assembles the incremental moderation report: it fetches submissions
// and the rubric, skips rows already present in the persisted report, and
// writes the workbook back after every appended row. Re-running with the same
// submissions is idempotent by SIS user id.
type Builder struct {
	lms         LMS
	annotations AnnotationFetcher
	store       *Store
	logger      zerolog.Logger
	progress    bool
}

// NewBuilder constructs the report builder. fetcher may be nil.
func NewBuilder(lms LMS, fetcher AnnotationFetcher, store *Store, logger zerolog.Logger) *Builder {
	return &Builder{
		lms:         lms,
		annotations: fetcher,
		store:       store,
		logger:      logger.With().Str("component", "report_builder").Logger(),
		progress:    true,
	}
}

// DisableProgress turns off the terminal progress bar, used by tests.
func (b *Builder) DisableProgress() { b.progress = false }

// Build fetches the assignment's submissions and folds them into the persisted
// report, returning the report path and the loaded table. Durability favors
// resumability over throughput: the workbook is rewritten after every
// successful append, so a crash between rows loses at most the in-flight row.
func (b *Builder) Build(ctx context.Context, courseID, assignmentID int64, outputDir string) (string, *Table, error) {
	tracer := otel.Tracer("github.com/canvaswizards/canvas-moderator/internal/report")
	ctx, span := tracer.Start(ctx, "report.build")
	span.SetAttributes(
		attribute.Int64("report.course_id", courseID),
		attribute.Int64("report.assignment_id", assignmentID),
	)
	defer span.End()

	course, err := b.lms.Course(ctx, courseID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "course_fetch_failed")
		return "", nil, err
	}

	assignment, err := b.lms.Assignment(ctx, courseID, assignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assignment_fetch_failed")
		return "", nil, err
	}

	submissions, err := b.lms.Submissions(ctx, courseID, assignmentID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "submissions_fetch_failed")
		return "", nil, err
	}

	dir, path := ReportPath(outputDir, course.CourseCode, assignment.Name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	headers := Headers(assignment.Rubric, b.annotations != nil)

	var table *Table
	if b.store.Exists(path) {
		table, err = b.store.Load(path)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "report_load_failed")
			return "", nil, err
		}
	} else {
		table = NewTable(headers)
	}

	seen := table.ColumnSet(ColSISUserID)

	var bar *progressbar.ProgressBar
	if b.progress {
		bar = progressbar.Default(int64(len(submissions)), "writing submissions")
	}

	appended := 0
	for _, submission := range submissions {
		if bar != nil {
			_ = bar.Add(1)
		}

		if _, ok := seen[submission.User.SISUserID]; ok {
			continue
		}

		row := b.buildRow(ctx, courseID, assignmentID, assignment.Rubric, submission)
		table.Append(row)
		seen[submission.User.SISUserID] = struct{}{}

		if err := b.store.Save(path, table); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "report_save_failed")
			return "", nil, err
		}
		appended++
	}

	b.logger.Info().
		Int("appended", appended).
		Int("total", len(table.Rows)).
		Str("path", path).
		Msg("report built")

	span.SetAttributes(attribute.Int("report.rows_appended", appended))

	return path, table, nil
}

// buildRow assembles one row, degrading grader-lookup, rubric-access and
// annotation-fetch failures to empty sentinels so a single bad row never
// aborts the run.
func (b *Builder) buildRow(ctx context.Context, courseID, assignmentID int64, rubric []canvas.RubricCriterion, submission canvas.Submission) Row {
	graderName := ""
	if submission.GraderID > 0 {
		name, err := b.lms.UserName(ctx, submission.GraderID)
		if err != nil {
			b.logger.Warn().Err(err).Int64("grader_id", submission.GraderID).Msg("grader lookup failed")
		} else {
			graderName = name
		}
	}

	url := b.lms.SpeedGraderURL(courseID, assignmentID, submission.UserID)

	annotation := ""
	if b.annotations != nil {
		fetched, err := b.annotations.Annotations(ctx, url)
		if err != nil {
			b.logger.Warn().Err(err).Int64("user_id", submission.UserID).Msg("annotation fetch failed")
		} else {
			parts := make([]string, 0, len(fetched))
			for _, a := range fetched {
				parts = append(parts, a.Comment)
			}
			annotation = strings.Join(parts, ",")
		}
	}

	ratings, scores := NormalizeAssessment(rubric, submission.RubricAssessment)

	return BuildRow(RowInput{
		Submission:  submission,
		Rubric:      rubric,
		Ratings:     ratings,
		Scores:      scores,
		GraderName:  graderName,
		Annotation:  annotation,
		Annotate:    b.annotations != nil,
		SpeedGrader: url,
	})
}
