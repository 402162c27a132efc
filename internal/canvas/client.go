package canvas

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/rs/zerolog"
)

// ErrUserNotFound indicates the user lookup returned no usable record.
var ErrUserNotFound = errors.New("user not found")

const perPage = 100

var nextLinkPattern = regexp.MustCompile(`<([^>]+)>;\s*rel="next"`)

// Config contains the credentials required to talk to the Canvas API.
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is a typed client for the subset of the Canvas REST API the
// moderation pipeline consumes.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     zerolog.Logger
	nameCache  map[int64]string
}

// NewClient constructs a Canvas API client.
func NewClient(cfg Config, logger zerolog.Logger) (*Client, error) {
	if cfg.BaseURL == "" || cfg.Token == "" {
		return nil, fmt.Errorf("canvas url and token must be provided")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With().Str("component", "canvas_client").Logger(),
		nameCache:  make(map[int64]string),
	}, nil
}

// Course fetches the course record for its course code.
func (c *Client) Course(ctx context.Context, courseID int64) (Course, error) {
	var course Course
	path := fmt.Sprintf("/api/v1/courses/%d", courseID)
	if err := c.getJSON(ctx, c.baseURL+path, &course); err != nil {
		return Course{}, fmt.Errorf("failed to fetch course %d: %w", courseID, err)
	}

	return course, nil
}

// Assignment fetches the assignment record including its rubric definition.
func (c *Client) Assignment(ctx context.Context, courseID, assignmentID int64) (Assignment, error) {
	var assignment Assignment
	path := fmt.Sprintf("/api/v1/courses/%d/assignments/%d", courseID, assignmentID)
	if err := c.getJSON(ctx, c.baseURL+path, &assignment); err != nil {
		return Assignment{}, fmt.Errorf("failed to fetch assignment %d: %w", assignmentID, err)
	}

	return assignment, nil
}

// Submissions fetches every submission for the assignment, following Link
// pagination, with the user, submission_comments and rubric_assessment
// objects embedded.
func (c *Client) Submissions(ctx context.Context, courseID, assignmentID int64) ([]Submission, error) {
	query := url.Values{}
	query.Add("include[]", "user")
	query.Add("include[]", "submission_comments")
	query.Add("include[]", "rubric_assessment")
	query.Set("per_page", fmt.Sprintf("%d", perPage))

	next := fmt.Sprintf("%s/api/v1/courses/%d/assignments/%d/submissions?%s",
		c.baseURL, courseID, assignmentID, query.Encode())

	var submissions []Submission
	for next != "" {
		var page []Submission
		nextLink, err := c.getJSONPage(ctx, next, &page)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch submissions: %w", err)
		}

		submissions = append(submissions, page...)
		next = nextLink
	}

	c.logger.Info().Int("count", len(submissions)).Int64("assignment_id", assignmentID).Msg("fetched submissions")

	return submissions, nil
}

// UserName resolves a user id to the user's sortable display name. Lookups
// are cached for the lifetime of the client.
func (c *Client) UserName(ctx context.Context, userID int64) (string, error) {
	if name, ok := c.nameCache[userID]; ok {
		return name, nil
	}

	var user struct {
		ID           int64  `json:"id"`
		SortableName string `json:"sortable_name"`
	}
	path := fmt.Sprintf("/api/v1/users/%d", userID)
	if err := c.getJSON(ctx, c.baseURL+path, &user); err != nil {
		return "", fmt.Errorf("%w: user %d: %v", ErrUserNotFound, userID, err)
	}

	c.nameCache[userID] = user.SortableName

	return user.SortableName, nil
}

// SpeedGraderURL builds the deep link to a student's submission in the
// SpeedGrader view.
func (c *Client) SpeedGraderURL(courseID, assignmentID, userID int64) string {
	return fmt.Sprintf("%s/courses/%d/gradebook/speed_grader?assignment_id=%d&student_id=%d",
		c.baseURL, courseID, assignmentID, userID)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out interface{}) error {
	_, err := c.getJSONPage(ctx, rawURL, out)
	return err
}

func (c *Client) getJSONPage(ctx context.Context, rawURL string, out interface{}) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("unexpected status %d: %s", resp.StatusCode, body)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}

	return nextLink(resp.Header.Get("Link")), nil
}

func nextLink(header string) string {
	if header == "" {
		return ""
	}

	match := nextLinkPattern.FindStringSubmatch(header)
	if match == nil {
		return ""
	}

	return match[1]
}
