package report

import (
	"strings"

	"github.com/canvaswizards/canvas-moderator/internal/canvas"
)

// RowInput bundles everything needed to assemble one report row.
type RowInput struct {
	Submission  canvas.Submission
	Rubric      []canvas.RubricCriterion
	Ratings     []string
	Scores      []string
	GraderName  string
	Annotation  string
	Annotate    bool
	SpeedGrader string
}

// BuildRow maps one submission onto the report schema. Every field is bound
// to its column by name, so adding a column cannot silently misalign the rest.
func BuildRow(in RowInput) Row {
	sub := in.Submission
	lastName, firstName := splitSortableName(sub.User.SortableName)

	row := Row{
		ColLastName:    lastName,
		ColFirstName:   firstName,
		ColSISUserID:   sub.User.SISUserID,
		ColSubmittedAt: sub.SubmittedAt,
		ColSecondsLate: FormatFloat(sub.SecondsLate),
		ColStatus:      sub.WorkflowState,
		ColPostedAt:    sub.PostedAt,
		ColGrader:      in.GraderName,
		ColComments:    joinComments(sub.SubmissionComments),
		ColURL:         in.SpeedGrader,
	}

	if sub.Score != nil {
		row[ColScore] = FormatFloat(*sub.Score)
	} else {
		row[ColScore] = ""
	}

	if in.Annotate {
		row[ColAnnotations] = in.Annotation
	}

	for i, criterion := range in.Rubric {
		row[RatingPrefix+criterion.Description] = in.Ratings[i]
		row[ScorePrefix+criterion.Description] = in.Scores[i]
	}

	return row
}

// splitSortableName splits "Last, First" into its two parts. Names without a
// comma land entirely in the last-name column.
func splitSortableName(sortable string) (last, first string) {
	last, first, found := strings.Cut(sortable, ", ")
	if !found {
		return sortable, ""
	}
	return last, first
}

// joinComments flattens the comment thread into one string, preserving thread
// order.
func joinComments(comments []canvas.SubmissionComment) string {
	parts := make([]string, 0, len(comments))
	for _, c := range comments {
		parts = append(parts, c.Comment)
	}
	return strings.Join(parts, ", ")
}
