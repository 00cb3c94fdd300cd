// Package api implements the client for the remote spaced-repetition
// service: a REST/JSON API with bearer-token auth, a revision header, and
// opaque next-URL pagination on collection endpoints.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the production API root.
	DefaultBaseURL = "https://api.wanikani.com/v2"

	// apiRevision pins the response schema the client understands.
	apiRevision = "20170710"
)

// TokenProvider supplies the bearer token for each request. Injected so
// the client never reaches for ambient credential state.
type TokenProvider interface {
	Token() (string, error)
}

// StaticToken is a TokenProvider around a fixed string.
type StaticToken string

func (t StaticToken) Token() (string, error) { return string(t), nil }

// Client talks to the remote API.
type Client struct {
	baseURL string
	token   TokenProvider
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API root, primarily for tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient substitutes the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// NewClient creates a Client authenticating with the given token source.
func NewClient(token TokenProvider, opts ...Option) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs one request and decodes a 2xx response body into out.
func (c *Client) do(ctx context.Context, method, rawURL string, body any, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, reqBody)
	if err != nil {
		return &ErrInvalidURL{URL: rawURL}
	}

	tok, err := c.token.Token()
	if err != nil {
		return fmt.Errorf("resolve token: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+tok)
	req.Header.Set("Wanikani-Revision", apiRevision)
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &ErrNoConnection{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		if out == nil {
			return nil
		}
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &ErrDecode{Err: err}
		}
		return nil
	case resp.StatusCode == http.StatusUnauthorized:
		return &ErrUnauthorized{}
	case resp.StatusCode == http.StatusTooManyRequests:
		return &ErrRateLimited{RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	default:
		return &ErrServer{StatusCode: resp.StatusCode}
	}
}

// parseRetryAfter interprets the Retry-After header, defaulting to an
// interval long enough to clear the per-minute quota.
func parseRetryAfter(header string) time.Duration {
	if secs, err := strconv.Atoi(strings.TrimSpace(header)); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 60 * time.Second
}

// endpoint joins the base URL with a path and query values.
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// resolveNext turns the server's opaque next_url into a request URL,
// re-rooting it onto the configured base so tests against a local server
// still work with absolute production links.
func (c *Client) resolveNext(nextURL string) (string, error) {
	parsed, err := url.Parse(nextURL)
	if err != nil {
		return "", &ErrInvalidURL{URL: nextURL}
	}
	u := c.baseURL
	if idx := strings.Index(u, "://"); idx >= 0 {
		if slash := strings.Index(u[idx+3:], "/"); slash >= 0 {
			u = u[:idx+3+slash]
		}
	}
	resolved := u + parsed.Path
	if parsed.RawQuery != "" {
		resolved += "?" + parsed.RawQuery
	}
	return resolved, nil
}

// GetUser fetches the current account record.
func (c *Client) GetUser(ctx context.Context) (*User, error) {
	var env resource[User]
	if err := c.do(ctx, http.MethodGet, c.endpoint("/user", nil), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// GetSummary fetches the dashboard aggregate.
func (c *Client) GetSummary(ctx context.Context) (*Summary, error) {
	var env resource[Summary]
	if err := c.do(ctx, http.MethodGet, c.endpoint("/summary", nil), nil, &env); err != nil {
		return nil, err
	}
	return &env.Data, nil
}

// SubjectFilter narrows a subject collection fetch.
type SubjectFilter struct {
	Types        []SubjectType
	Levels       []int
	UpdatedAfter *time.Time
}

func (f SubjectFilter) query() url.Values {
	q := url.Values{}
	if len(f.Types) > 0 {
		parts := make([]string, len(f.Types))
		for i, t := range f.Types {
			parts[i] = string(t)
		}
		q.Set("types", strings.Join(parts, ","))
	}
	if len(f.Levels) > 0 {
		parts := make([]string, len(f.Levels))
		for i, l := range f.Levels {
			parts[i] = strconv.Itoa(l)
		}
		q.Set("levels", strings.Join(parts, ","))
	}
	if f.UpdatedAfter != nil {
		q.Set("updated_after", f.UpdatedAfter.UTC().Format(time.RFC3339))
	}
	return q
}

// GetAllSubjects fetches every subject matching the filter, following
// pagination to the end.
func (c *Client) GetAllSubjects(ctx context.Context, filter SubjectFilter) ([]Subject, error) {
	var all []Subject
	next := c.endpoint("/subjects", filter.query())

	for next != "" {
		var env collection[Subject]
		if err := c.do(ctx, http.MethodGet, next, nil, &env); err != nil {
			return nil, err
		}
		all = append(all, env.Data...)

		next = ""
		if env.Pages.NextURL != "" {
			resolved, err := c.resolveNext(env.Pages.NextURL)
			if err != nil {
				return nil, err
			}
			next = resolved
		}
	}
	return all, nil
}

// AssignmentFilter narrows an assignment collection fetch.
type AssignmentFilter struct {
	SubjectIDs      []int
	AvailableBefore *time.Time
	AvailableAfter  *time.Time
	UpdatedAfter    *time.Time
}

func (f AssignmentFilter) query() url.Values {
	q := url.Values{}
	if len(f.SubjectIDs) > 0 {
		parts := make([]string, len(f.SubjectIDs))
		for i, id := range f.SubjectIDs {
			parts[i] = strconv.Itoa(id)
		}
		q.Set("subject_ids", strings.Join(parts, ","))
	}
	if f.AvailableBefore != nil {
		q.Set("available_before", f.AvailableBefore.UTC().Format(time.RFC3339))
	}
	if f.AvailableAfter != nil {
		q.Set("available_after", f.AvailableAfter.UTC().Format(time.RFC3339))
	}
	if f.UpdatedAfter != nil {
		q.Set("updated_after", f.UpdatedAfter.UTC().Format(time.RFC3339))
	}
	return q
}

// GetAssignments fetches every assignment matching the filter, following
// pagination to the end.
func (c *Client) GetAssignments(ctx context.Context, filter AssignmentFilter) ([]Assignment, error) {
	var all []Assignment
	next := c.endpoint("/assignments", filter.query())

	for next != "" {
		var env collection[resource[assignmentData]]
		if err := c.do(ctx, http.MethodGet, next, nil, &env); err != nil {
			return nil, err
		}
		for _, r := range env.Data {
			all = append(all, assignmentFromResource(r))
		}

		next = ""
		if env.Pages.NextURL != "" {
			resolved, err := c.resolveNext(env.Pages.NextURL)
			if err != nil {
				return nil, err
			}
			next = resolved
		}
	}
	return all, nil
}

// StartAssignment marks an assignment as started, moving it out of the
// lesson queue. A nil startedAt lets the server stamp the current time.
func (c *Client) StartAssignment(ctx context.Context, id int, startedAt *time.Time) (*Assignment, error) {
	var body any
	if startedAt != nil {
		body = map[string]any{
			"assignment": map[string]any{
				"started_at": startedAt.UTC().Format(time.RFC3339),
			},
		}
	} else {
		body = map[string]any{}
	}

	var env resource[assignmentData]
	path := fmt.Sprintf("/assignments/%d/start", id)
	if err := c.do(ctx, http.MethodPut, c.endpoint(path, nil), body, &env); err != nil {
		return nil, err
	}
	a := assignmentFromResource(env)
	return &a, nil
}

// SubmitReview posts a finished review. The returned resource carries the
// server-computed stage transition, which is authoritative.
func (c *Client) SubmitReview(ctx context.Context, review CreateReview) (*Review, error) {
	body := map[string]CreateReview{"review": review}

	var env resource[Review]
	if err := c.do(ctx, http.MethodPost, c.endpoint("/reviews", nil), body, &env); err != nil {
		return nil, err
	}
	r := env.Data
	r.ID = env.ID
	return &r, nil
}

// GetReviewStatistics fetches per-subject accuracy aggregates.
func (c *Client) GetReviewStatistics(ctx context.Context, updatedAfter *time.Time) ([]ReviewStatistic, error) {
	q := url.Values{}
	if updatedAfter != nil {
		q.Set("updated_after", updatedAfter.UTC().Format(time.RFC3339))
	}

	var all []ReviewStatistic
	next := c.endpoint("/review_statistics", q)
	for next != "" {
		var env collection[resource[ReviewStatistic]]
		if err := c.do(ctx, http.MethodGet, next, nil, &env); err != nil {
			return nil, err
		}
		for _, r := range env.Data {
			stat := r.Data
			stat.ID = r.ID
			all = append(all, stat)
		}

		next = ""
		if env.Pages.NextURL != "" {
			resolved, err := c.resolveNext(env.Pages.NextURL)
			if err != nil {
				return nil, err
			}
			next = resolved
		}
	}
	return all, nil
}

// GetLevelProgressions fetches the user's level history.
func (c *Client) GetLevelProgressions(ctx context.Context) ([]LevelProgression, error) {
	var all []LevelProgression
	next := c.endpoint("/level_progressions", nil)
	for next != "" {
		var env collection[resource[LevelProgression]]
		if err := c.do(ctx, http.MethodGet, next, nil, &env); err != nil {
			return nil, err
		}
		for _, r := range env.Data {
			lp := r.Data
			lp.ID = r.ID
			all = append(all, lp)
		}

		next = ""
		if env.Pages.NextURL != "" {
			resolved, err := c.resolveNext(env.Pages.NextURL)
			if err != nil {
				return nil, err
			}
			next = resolved
		}
	}
	return all, nil
}
