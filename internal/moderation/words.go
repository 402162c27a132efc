package moderation

import (
	"strconv"
	"strings"

	"github.com/canvaswizards/canvas-moderator/internal/report"
)

// countFeedbackWords derives per-row word counts for the annotation and
// comment text, plus their combined total. A missing annotations column
// counts as zero for every row.
func countFeedbackWords(table *report.Table) {
	hasAnnotations := table.HasColumn(report.ColAnnotations)

	table.AddColumn(report.ColAnnotationWords)
	table.AddColumn(report.ColCommentWords)
	table.AddColumn(report.ColTotalWords)

	for _, row := range table.Rows {
		annotationWords := 0
		if hasAnnotations {
			annotationWords = len(strings.Fields(row[report.ColAnnotations]))
		}
		commentWords := len(strings.Fields(row[report.ColComments]))

		row[report.ColAnnotationWords] = strconv.Itoa(annotationWords)
		row[report.ColCommentWords] = strconv.Itoa(commentWords)
		row[report.ColTotalWords] = strconv.Itoa(annotationWords + commentWords)
	}
}
