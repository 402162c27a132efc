package report

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canvaswizards/canvas-moderator/internal/canvas"
	"github.com/canvaswizards/canvas-moderator/internal/scrape"
)

type fakeLMS struct {
	course      canvas.Course
	assignment  canvas.Assignment
	submissions []canvas.Submission
	userNames   map[int64]string
	nameCalls   int
}

func (f *fakeLMS) Course(ctx context.Context, courseID int64) (canvas.Course, error) {
	return f.course, nil
}

func (f *fakeLMS) Assignment(ctx context.Context, courseID, assignmentID int64) (canvas.Assignment, error) {
	return f.assignment, nil
}

func (f *fakeLMS) Submissions(ctx context.Context, courseID, assignmentID int64) ([]canvas.Submission, error) {
	return f.submissions, nil
}

func (f *fakeLMS) UserName(ctx context.Context, userID int64) (string, error) {
	f.nameCalls++
	name, ok := f.userNames[userID]
	if !ok {
		return "", canvas.ErrUserNotFound
	}
	return name, nil
}

func (f *fakeLMS) SpeedGraderURL(courseID, assignmentID, userID int64) string {
	return fmt.Sprintf("https://canvas.example.edu/courses/%d/gradebook/speed_grader?assignment_id=%d&student_id=%d",
		courseID, assignmentID, userID)
}

type fakeFetcher struct {
	annotations map[string][]scrape.Annotation
	err         error
}

func (f *fakeFetcher) Annotations(ctx context.Context, url string) ([]scrape.Annotation, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.annotations[url], nil
}

func fakeSubmission(sis string, userID int64, score float64, graderID int64) canvas.Submission {
	return canvas.Submission{
		UserID: userID,
		User: canvas.User{
			ID:           userID,
			SortableName: "Student, Test",
			SISUserID:    sis,
		},
		WorkflowState: "graded",
		Score:         &score,
		GraderID:      graderID,
		SubmissionComments: []canvas.SubmissionComment{
			{Comment: "looks fine"},
		},
		RubricAssessment: canvas.RubricAssessment{
			"crit_1": {RatingID: strPtr("r1")},
			"crit_2": {RatingID: strPtr("r3")},
		},
	}
}

func newFakeLMS() *fakeLMS {
	return &fakeLMS{
		course:     canvas.Course{ID: 1, CourseCode: "BIO101"},
		assignment: canvas.Assignment{ID: 2, Name: "Essay One", Rubric: testRubric()},
		submissions: []canvas.Submission{
			fakeSubmission("1001", 501, 85, 42),
			fakeSubmission("1002", 502, 64, 43),
		},
		userNames: map[int64]string{42: "Jones, Bob", 43: "Doe, Carol"},
	}
}

func newTestBuilder(lms LMS, fetcher AnnotationFetcher) *Builder {
	b := NewBuilder(lms, fetcher, NewStore(testLogger()), testLogger())
	b.DisableProgress()
	return b
}

func TestBuilderCreatesReport(t *testing.T) {
	lms := newFakeLMS()
	builder := newTestBuilder(lms, nil)

	path, table, err := builder.Build(context.Background(), 1, 2, t.TempDir())
	require.NoError(t, err)
	require.Len(t, table.Rows, 2)
	require.Equal(t, "Jones, Bob", table.Rows[0][ColGrader])
	require.Equal(t, "Excellent", table.Rows[0][RatingPrefix+"Structure"])

	loaded, err := NewStore(testLogger()).Load(path)
	require.NoError(t, err)
	require.Len(t, loaded.Rows, 2)
}

func TestBuilderRerunIsIdempotent(t *testing.T) {
	lms := newFakeLMS()
	builder := newTestBuilder(lms, nil)
	dir := t.TempDir()

	_, first, err := builder.Build(context.Background(), 1, 2, dir)
	require.NoError(t, err)

	_, second, err := builder.Build(context.Background(), 1, 2, dir)
	require.NoError(t, err)
	require.Equal(t, len(first.Rows), len(second.Rows))
}

func TestBuilderResumesWithNewSubmissions(t *testing.T) {
	lms := newFakeLMS()
	builder := newTestBuilder(lms, nil)
	dir := t.TempDir()

	_, _, err := builder.Build(context.Background(), 1, 2, dir)
	require.NoError(t, err)

	lms.submissions = append(lms.submissions, fakeSubmission("1003", 503, 71, 42))
	_, table, err := builder.Build(context.Background(), 1, 2, dir)
	require.NoError(t, err)
	require.Len(t, table.Rows, 3)
}

func TestBuilderGraderLookupFailureDegradesToEmpty(t *testing.T) {
	lms := newFakeLMS()
	lms.userNames = map[int64]string{}
	builder := newTestBuilder(lms, nil)

	_, table, err := builder.Build(context.Background(), 1, 2, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "", table.Rows[0][ColGrader])
	require.Equal(t, "", table.Rows[1][ColGrader])
}

func TestBuilderAnnotationFetchFailureDegradesToEmpty(t *testing.T) {
	lms := newFakeLMS()
	fetcher := &fakeFetcher{err: fmt.Errorf("session expired")}
	builder := newTestBuilder(lms, fetcher)

	_, table, err := builder.Build(context.Background(), 1, 2, t.TempDir())
	require.NoError(t, err)
	require.Contains(t, table.Headers, ColAnnotations)
	require.Equal(t, "", table.Rows[0][ColAnnotations])
}

func TestBuilderJoinsScrapedAnnotations(t *testing.T) {
	lms := newFakeLMS()
	url := lms.SpeedGraderURL(1, 2, 501)
	fetcher := &fakeFetcher{annotations: map[string][]scrape.Annotation{
		url: {{Comment: "fix figure 2"}, {Comment: "check citations"}},
	}}
	builder := newTestBuilder(lms, fetcher)

	_, table, err := builder.Build(context.Background(), 1, 2, t.TempDir())
	require.NoError(t, err)
	require.Equal(t, "fix figure 2,check citations", table.Rows[0][ColAnnotations])
}
