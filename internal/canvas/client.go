package canvas

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultFanOut bounds how many per-course assignment fetches run at once.
const DefaultFanOut = 4

// UpstreamError indicates the Canvas API call itself failed (network, auth,
// non-2xx), as opposed to the response being empty.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("canvas %s: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Course is an active enrollment.
type Course struct {
	ID         int    `json:"id"`
	Name       string `json:"name"`
	CourseCode string `json:"course_code"`
}

// Assignment is one unsubmitted assignment, annotated with the course it
// came from so the scheduler can build a provenance key.
type Assignment struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	DueAt          *time.Time `json:"due_at"`
	PointsPossible float64    `json:"points_possible"`
	HTMLURL        string     `json:"html_url"`
	CourseID       int        `json:"course_id"`
	CourseCode     string     `json:"course_code"`
}

// Client talks to the Canvas LMS REST API.
type Client struct {
	baseURL    string
	token      string
	fanOut     int
	httpClient *http.Client
}

// NewClient creates a Canvas client. baseURL is the institution's Canvas
// root, e.g. https://canvas.instructure.com.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		fanOut:  DefaultFanOut,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// IsConfigured reports whether the client has credentials to work with.
func (c *Client) IsConfigured() bool {
	return c.baseURL != "" && c.token != ""
}

// Courses lists the user's active enrollments, following pagination.
func (c *Client) Courses(ctx context.Context) ([]Course, error) {
	var courses []Course

	next := c.baseURL + "/api/v1/courses?enrollment_state=active&per_page=100"
	for next != "" {
		var page []Course
		nextLink, err := c.getJSON(ctx, "courses", next, &page)
		if err != nil {
			return nil, err
		}
		courses = append(courses, page...)
		next = nextLink
	}

	return courses, nil
}

// UnsubmittedAssignments lists the course's assignments the user has not
// turned in yet, following pagination.
func (c *Client) UnsubmittedAssignments(ctx context.Context, course Course) ([]Assignment, error) {
	var assignments []Assignment

	next := fmt.Sprintf("%s/api/v1/courses/%d/assignments?bucket=unsubmitted&per_page=100", c.baseURL, course.ID)
	for next != "" {
		var page []Assignment
		nextLink, err := c.getJSON(ctx, "assignments", next, &page)
		if err != nil {
			return nil, err
		}
		for i := range page {
			page[i].CourseID = course.ID
			page[i].CourseCode = course.CourseCode
		}
		assignments = append(assignments, page...)
		next = nextLink
	}

	return assignments, nil
}

// AllUnsubmitted fans out over every active course and merges the
// unsubmitted assignments, earliest due date first. At most fanOut courses
// are fetched concurrently.
func (c *Client) AllUnsubmitted(ctx context.Context) ([]Assignment, error) {
	courses, err := c.Courses(ctx)
	if err != nil {
		return nil, err
	}

	var (
		mu  sync.Mutex
		all []Assignment
	)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.fanOut)
	for _, course := range courses {
		g.Go(func() error {
			assignments, err := c.UnsubmittedAssignments(ctx, course)
			if err != nil {
				return err
			}
			mu.Lock()
			all = append(all, assignments...)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.SliceStable(all, func(i, j int) bool {
		// Assignments without a due date sort last.
		switch {
		case all[i].DueAt == nil:
			return false
		case all[j].DueAt == nil:
			return true
		default:
			return all[i].DueAt.Before(*all[j].DueAt)
		}
	})

	return all, nil
}

// getJSON performs one authenticated GET, decodes the body into out, and
// returns the rel="next" pagination link if the response carries one.
func (c *Client) getJSON(ctx context.Context, op, rawURL string, out interface{}) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &UpstreamError{Op: op, Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &UpstreamError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &UpstreamError{Op: op, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return "", &UpstreamError{Op: op, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return "", &UpstreamError{Op: op, Err: fmt.Errorf("decoding response: %w", err)}
	}

	return nextLink(resp.Header.Get("Link")), nil
}

// nextLink extracts the rel="next" URL from a Canvas Link header.
func nextLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		section := strings.Split(part, ";")
		if len(section) < 2 {
			continue
		}
		if strings.TrimSpace(section[1]) != `rel="next"` {
			continue
		}
		link := strings.Trim(strings.TrimSpace(section[0]), "<>")
		if _, err := url.Parse(link); err != nil {
			return ""
		}
		return link
	}
	return ""
}
