package report

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/canvaswizards/canvas-moderator/internal/canvas"
)

func testRubric() []canvas.RubricCriterion {
	return []canvas.RubricCriterion{
		{
			ID:          "crit_1",
			Description: "Structure",
			Ratings: []canvas.RubricRating{
				{ID: "r1", Description: "Excellent", Points: 40},
				{ID: "r2", Description: "Adequate", Points: 25},
			},
		},
		{
			ID:          "crit_2",
			Description: "Analysis",
			Ratings: []canvas.RubricRating{
				{ID: "r3", Description: "Strong", Points: 60},
				{ID: "r4", Description: "", Points: 30},
			},
		},
	}
}

func strPtr(s string) *string     { return &s }
func floatPtr(f float64) *float64 { return &f }

func TestNormalizeAssessmentFullMatch(t *testing.T) {
	rubric := testRubric()
	assessment := canvas.RubricAssessment{
		"crit_1": {RatingID: strPtr("r1")},
		"crit_2": {RatingID: strPtr("r3")},
	}

	ratings, scores := NormalizeAssessment(rubric, assessment)
	require.Equal(t, []string{"Excellent", "Strong"}, ratings)
	require.Equal(t, []string{"40", "60"}, scores)
}

func TestNormalizeAssessmentEmptyRatingDescription(t *testing.T) {
	rubric := testRubric()
	assessment := canvas.RubricAssessment{
		"crit_1": {RatingID: strPtr("r2")},
		"crit_2": {RatingID: strPtr("r4")},
	}

	ratings, scores := NormalizeAssessment(rubric, assessment)
	require.Equal(t, []string{"Adequate", ""}, ratings)
	require.Equal(t, []string{"25", "30"}, scores)
}

func TestNormalizeAssessmentFreeFormPoints(t *testing.T) {
	rubric := testRubric()
	assessment := canvas.RubricAssessment{
		"crit_1": {RatingID: nil, Points: floatPtr(33.5)},
		"crit_2": {RatingID: nil},
	}

	ratings, scores := NormalizeAssessment(rubric, assessment)
	require.Equal(t, []string{"", ""}, ratings)
	require.Equal(t, []string{"33.5", ""}, scores)
}

func TestNormalizeAssessmentEmptyAssessment(t *testing.T) {
	rubric := testRubric()

	ratings, scores := NormalizeAssessment(rubric, nil)
	require.Len(t, ratings, len(rubric))
	require.Len(t, scores, len(rubric))
	require.Equal(t, []string{"", ""}, ratings)
	require.Equal(t, []string{"", ""}, scores)
}

func TestNormalizeAssessmentStaleRatingID(t *testing.T) {
	rubric := testRubric()
	assessment := canvas.RubricAssessment{
		"crit_1": {RatingID: strPtr("gone"), Points: floatPtr(12)},
		"crit_2": {RatingID: strPtr("also_gone")},
	}

	ratings, scores := NormalizeAssessment(rubric, assessment)
	require.Equal(t, []string{"", ""}, ratings)
	require.Equal(t, []string{"12", ""}, scores)
}

func TestNormalizeAssessmentOutputsAlwaysRubricLength(t *testing.T) {
	rubric := testRubric()
	assessments := []canvas.RubricAssessment{
		nil,
		{},
		{"crit_1": {RatingID: strPtr("r1")}},
		{"unknown": {RatingID: strPtr("r1")}},
	}

	for _, assessment := range assessments {
		ratings, scores := NormalizeAssessment(rubric, assessment)
		require.Len(t, ratings, len(rubric))
		require.Len(t, scores, len(rubric))
	}
}
