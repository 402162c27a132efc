package canvas

// Course is the subset of the Canvas course object the pipeline needs.
type Course struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

// Assignment carries the assignment name and its rubric definition.
type Assignment struct {
	ID     int64             `json:"id"`
	Name   string            `json:"name"`
	Rubric []RubricCriterion `json:"rubric"`
}

// RubricRating is one labeled, point-valued choice within a criterion.
type RubricRating struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	Points      float64 `json:"points"`
}

// RubricCriterion is one scored dimension of the assignment. The ratings
// order is the order Canvas returns and is treated as immutable.
type RubricCriterion struct {
	ID          string         `json:"id"`
	Description string         `json:"description"`
	Points      float64        `json:"points"`
	Ratings     []RubricRating `json:"ratings"`
}

// CriterionAssessment is a grader's choice for a single criterion. RatingID is
// nil when the grader typed a free-form score instead of picking a rating, and
// Points is nil when nothing was awarded at all.
type CriterionAssessment struct {
	RatingID *string  `json:"rating_id"`
	Points   *float64 `json:"points"`
	Comments string   `json:"comments"`
}

// RubricAssessment maps criterion id to the grader's choice. A nil or empty
// map means the submission was never assessed against the rubric.
type RubricAssessment map[string]CriterionAssessment

// User is the submitting student as embedded in a submission.
type User struct {
	ID           int64  `json:"id"`
	SortableName string `json:"sortable_name"`
	SISUserID    string `json:"sis_user_id"`
}

// SubmissionComment is one entry of the submission's comment thread.
type SubmissionComment struct {
	Comment string `json:"comment"`
}

// Submission is one student's graded submission, fetched with the user,
// submission_comments and rubric_assessment includes.
type Submission struct {
	UserID             int64               `json:"user_id"`
	User               User                `json:"user"`
	SubmittedAt        string              `json:"submitted_at"`
	SecondsLate        float64             `json:"seconds_late"`
	WorkflowState      string              `json:"workflow_state"`
	PostedAt           string              `json:"posted_at"`
	Score              *float64            `json:"score"`
	GraderID           int64               `json:"grader_id"`
	SubmissionComments []SubmissionComment `json:"submission_comments"`
	RubricAssessment   RubricAssessment    `json:"rubric_assessment"`
}
