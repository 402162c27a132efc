// Package summary renders the moderation outcome into human-readable
// artifacts: two box-plot images and a Markdown summary document. Nothing in
// the engine ever reads these back.
package summary

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"github.com/rs/zerolog"

	"github.com/canvaswizards/canvas-moderator/internal/moderation"
	"github.com/canvaswizards/canvas-moderator/internal/report"
	"github.com/canvaswizards/canvas-moderator/internal/stats"
)

// scoreBands are the UK degree-classification bands reported in the summary,
// half-open [Low, High) except the final band which is inclusive.
var scoreBands = []struct {
	Label     string
	Low, High float64
	Inclusive bool
}{
	{Label: "Fail (<40)", Low: 0, High: 40},
	{Label: "Borderline fail (38 - 40)", Low: 38, High: 40},
	{Label: "Pass (40 - 50)", Low: 40, High: 50},
	{Label: "Borderline pass/2.2 (48 - 50)", Low: 48, High: 50},
	{Label: "2.2 (50 - 60)", Low: 50, High: 60},
	{Label: "Borderline 2.2/2.1 (58 - 60)", Low: 58, High: 60},
	{Label: "2.1 (60 - 70)", Low: 60, High: 70},
	{Label: "Borderline 2.1/1st (68 - 70)", Low: 68, High: 70},
	{Label: "1st (70 - 100)", Low: 70, High: 100, Inclusive: true},
}

const documentTemplate = `# Moderation Summary: {{.Path}}

Generated by the Canvas Assignment Auto Moderator.

## Table 1: Score ranges and counts

| Score Range | Submissions |
|---|---|
{{- range .Bands}}
| {{.Label}} | {{.Count}} |
{{- end}}

## Table 2: Summary of moderation issues

| Moderation Issue | Submissions Impacted |
|---|---|
{{- range .Issues}}
| {{.Label}} | {{.Count}} |
{{- end}}
| Total | {{.TotalFlagged}} |

![Score boxplot]({{.ScorePlot}})

Figure 1: Boxplot of scores by grader. Green line marks the global median
score ({{printf "%.2f" .Score.GlobalMedian}}). * marks graders whose median
differs significantly from the pooled rest.

## Table 3: Graders with significant score differences (global median {{printf "%.2f" .Score.GlobalMedian}})

| Grader | Median score | Mean score | P-Value |
|---|---|---|---|
{{- range .Score.Significant}}
| {{.Grader}} | {{printf "%.2f" .Median}} | {{printf "%.2f" .Mean}} | {{printf "%.2e" .P}} |
{{- end}}

![Word count boxplot]({{.WordsPlot}})

Figure 2: Boxplot of total feedback words (annotations + comments) by grader.
Green line marks the global median word count ({{printf "%.2f" .Words.GlobalMedian}}).

## Table 4: Graders with significant word-count differences (global median {{printf "%.2f" .Words.GlobalMedian}})

| Grader | Median total_words | Mean total_words | P-Value |
|---|---|---|---|
{{- range .Words.Significant}}
| {{.Grader}} | {{printf "%.2f" .Median}} | {{printf "%.2f" .Mean}} | {{printf "%.2e" .P}} |
{{- end}}
`

// Renderer turns a moderation outcome into the summary artifacts.
type Renderer struct {
	logger zerolog.Logger
}

// NewRenderer constructs a summary renderer.
func NewRenderer(logger zerolog.Logger) *Renderer {
	return &Renderer{logger: logger.With().Str("component", "summary_renderer").Logger()}
}

// WritePlots renders the score and word-count box plots next to the report.
func (r *Renderer) WritePlots(outcome moderation.Outcome) error {
	scorePlot := report.SiblingPath(outcome.Path, "score_boxplot.png")
	if err := boxPlot(scorePlot, outcome.Table, report.ColScore, outcome.Score); err != nil {
		return err
	}

	wordsPlot := report.SiblingPath(outcome.Path, "total_words_boxplot.png")
	if err := boxPlot(wordsPlot, outcome.Table, report.ColTotalWords, outcome.Words); err != nil {
		return err
	}

	r.logger.Info().Str("score_plot", scorePlot).Str("words_plot", wordsPlot).Msg("plots written")

	return nil
}

// WriteDocument renders the Markdown summary document and returns its path.
func (r *Renderer) WriteDocument(outcome moderation.Outcome) (string, error) {
	path := report.SiblingPath(outcome.Path, "moderation_summary.md")

	data := r.documentData(outcome)

	tmpl, err := template.New("summary").Parse(documentTemplate)
	if err != nil {
		return "", fmt.Errorf("failed to parse summary template: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create summary %s: %w", path, err)
	}
	defer f.Close()

	if err := tmpl.Execute(f, data); err != nil {
		return "", fmt.Errorf("failed to render summary: %w", err)
	}

	r.logger.Info().Str("path", path).Msg("summary written")

	return path, nil
}

type bandCount struct {
	Label string
	Count int
}

type issueCount struct {
	Label string
	Count int
}

type documentData struct {
	Path         string
	Bands        []bandCount
	Issues       []issueCount
	TotalFlagged int
	ScorePlot    string
	WordsPlot    string
	Score        stats.Result
	Words        stats.Result
}

func (r *Renderer) documentData(outcome moderation.Outcome) documentData {
	table := outcome.Table

	bands := make([]bandCount, 0, len(scoreBands))
	for _, band := range scoreBands {
		count := 0
		for _, row := range table.Rows {
			score, ok := row.Float(report.ColScore)
			if !ok {
				continue
			}
			if score >= band.Low && (score < band.High || (band.Inclusive && score <= band.High)) {
				count++
			}
		}
		bands = append(bands, bandCount{Label: band.Label, Count: count})
	}

	issueLabels := []string{
		moderation.IssueScoreLower,
		moderation.IssueScoreHigher,
		moderation.IssueWordsLower,
		moderation.IssueWordsHigher,
		moderation.IssueRubricDiff,
		moderation.IssueNoFeedback,
	}

	issues := make([]issueCount, 0, len(issueLabels))
	totalFlagged := 0
	for _, row := range table.Rows {
		if row[report.ColModerationIssue] != "" {
			totalFlagged++
		}
	}
	for _, label := range issueLabels {
		count := 0
		for _, row := range table.Rows {
			if strings.Contains(row[report.ColModerationIssue], label) {
				count++
			}
		}
		issues = append(issues, issueCount{Label: label, Count: count})
	}

	return documentData{
		Path:         outcome.Path,
		Bands:        bands,
		Issues:       issues,
		TotalFlagged: totalFlagged,
		ScorePlot:    report.SiblingPath(outcome.Path, "score_boxplot.png"),
		WordsPlot:    report.SiblingPath(outcome.Path, "total_words_boxplot.png"),
		Score:        outcome.Score,
		Words:        outcome.Words,
	}
}
