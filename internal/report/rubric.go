package report

import "github.com/canvaswizards/canvas-moderator/internal/canvas"

// NormalizeAssessment flattens a rubric assessment into two aligned lists: the
// chosen rating label and the awarded points, one pair per rubric criterion.
// Both lists are always exactly len(rubric) long; the empty string stands in
// wherever there is no matching rating or no awarded points.
func NormalizeAssessment(rubric []canvas.RubricCriterion, assessment canvas.RubricAssessment) (ratings, scores []string) {
	ratings = make([]string, 0, len(rubric))
	scores = make([]string, 0, len(rubric))

	for _, criterion := range rubric {
		ca, ok := assessment[criterion.ID]
		if !ok {
			ratings = append(ratings, "")
			scores = append(scores, "")
			continue
		}

		if ca.RatingID == nil {
			// Free-form score typed by the grader, no rating picked.
			ratings = append(ratings, "")
			if ca.Points != nil {
				scores = append(scores, FormatFloat(*ca.Points))
			} else {
				scores = append(scores, "")
			}
			continue
		}

		matched := false
		for _, rating := range criterion.Ratings {
			if rating.ID != *ca.RatingID {
				continue
			}
			ratings = append(ratings, rating.Description)
			scores = append(scores, FormatFloat(rating.Points))
			matched = true
			break
		}

		if !matched {
			// Stale rating id; fall back to the override points if any.
			ratings = append(ratings, "")
			if ca.Points != nil {
				scores = append(scores, FormatFloat(*ca.Points))
			} else {
				scores = append(scores, "")
			}
		}
	}

	return ratings, scores
}
