package report

import "github.com/canvaswizards/canvas-moderator/internal/canvas"

// Column names of the fixed part of the report schema. Rubric-derived columns
// are appended after these, one RATING_/SCORE_ pair per criterion.
const (
	ColLastName        = "last_name"
	ColFirstName       = "first_name"
	ColSISUserID       = "sis_user_id"
	ColSubmittedAt     = "submitted_at"
	ColSecondsLate     = "seconds_late"
	ColStatus          = "status"
	ColPostedAt        = "posted_at"
	ColScore           = "score"
	ColGrader          = "grader"
	ColComments        = "comments"
	ColAnnotations     = "annotations"
	ColURL             = "url"
	ColModerationIssue = "moderation_issue"
	ColRubricScoreDiff = "rubric_score_diff"
	ColAnnotationWords = "total_annotations_words"
	ColCommentWords    = "total_comments_words"
	ColTotalWords      = "total_words"
)

// Prefixes of the per-criterion rubric columns.
const (
	RatingPrefix = "RATING_"
	ScorePrefix  = "SCORE_"
)

// StatusGraded is the workflow state of a fully graded submission.
const StatusGraded = "graded"

// Headers returns the report header schema for a rubric. The annotations
// column only exists when annotation scraping is enabled, so the header shape
// depends on it.
func Headers(rubric []canvas.RubricCriterion, annotate bool) []string {
	headers := []string{
		ColLastName,
		ColFirstName,
		ColSISUserID,
		ColSubmittedAt,
		ColSecondsLate,
		ColStatus,
		ColPostedAt,
		ColScore,
		ColGrader,
		ColComments,
	}

	if annotate {
		headers = append(headers, ColAnnotations)
	}

	headers = append(headers, ColURL)

	for _, criterion := range rubric {
		headers = append(headers, RatingPrefix+criterion.Description)
	}
	for _, criterion := range rubric {
		headers = append(headers, ScorePrefix+criterion.Description)
	}

	return headers
}
