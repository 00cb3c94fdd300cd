package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(StaticToken("test-token"), WithBaseURL(srv.URL))
}

func TestGetUser(t *testing.T) {
	var gotAuth, gotRevision string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRevision = r.Header.Get("Wanikani-Revision")
		require.Equal(t, "/user", r.URL.Path)

		fmt.Fprint(w, `{
			"object": "user",
			"url": "https://api.wanikani.com/v2/user",
			"data": {
				"id": "c6b14bb5-5ff5-4ab2-9a30-1b3e4d2ff866",
				"username": "crabigator",
				"level": 12,
				"profile_url": "https://www.wanikani.com/users/crabigator",
				"started_at": "2021-06-01T00:00:00Z",
				"current_vacation_started_at": null,
				"subscription": {"active": true, "type": "recurring", "max_level_granted": 60},
				"preferences": {"lessons_batch_size": 5}
			}
		}`)
	})

	user, err := c.GetUser(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "Bearer test-token", gotAuth)
	assert.Equal(t, "20170710", gotRevision)
	assert.Equal(t, "crabigator", user.Username)
	assert.Equal(t, 12, user.Level)
	assert.False(t, user.OnVacation())
	assert.Equal(t, 5, user.Preferences.LessonsBatchSize)
}

func TestGetAssignments_FollowsPagination(t *testing.T) {
	var requests []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r.URL.String())

		page := r.URL.Query().Get("page_after_id")
		var next string
		var data string
		if page == "" {
			// The API hands back absolute URLs; the client must re-root
			// them onto its configured host.
			next = fmt.Sprintf(`"%s/assignments?page_after_id=80000"`, "https://api.wanikani.com/v2")
			data = `{
				"id": 80000, "object": "assignment", "url": "",
				"data_updated_at": "2024-03-01T10:00:00Z",
				"data": {
					"created_at": "2024-01-01T00:00:00Z",
					"subject_id": 440, "subject_type": "kanji", "srs_stage": 2,
					"unlocked_at": "2024-01-01T00:00:00Z",
					"started_at": "2024-01-02T00:00:00Z",
					"available_at": "2024-02-01T00:00:00Z",
					"hidden": false
				}
			}`
		} else {
			next = "null"
			data = `{
				"id": 80001, "object": "assignment", "url": "",
				"data": {
					"created_at": "2024-01-01T00:00:00Z",
					"subject_id": 1, "subject_type": "radical", "srs_stage": 0,
					"unlocked_at": "2024-01-01T00:00:00Z",
					"hidden": false
				}
			}`
		}
		fmt.Fprintf(w, `{
			"object": "collection", "url": "", "total_count": 2,
			"pages": {"per_page": 500, "next_url": %s},
			"data": [%s]
		}`, next, data)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(StaticToken("tok"), WithBaseURL(srv.URL))
	got, err := c.GetAssignments(context.Background(), AssignmentFilter{})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, 80000, got[0].ID)
	assert.Equal(t, 440, got[0].SubjectID)
	assert.Equal(t, 2, got[0].SRSStage)
	require.NotNil(t, got[0].AvailableAt)
	assert.Nil(t, got[1].AvailableAt)
	assert.Len(t, requests, 2)
	assert.Contains(t, requests[1], "page_after_id=80000")
}

func TestGetAssignments_FilterQuery(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "1,2,3", q.Get("subject_ids"))
		assert.Equal(t, "2024-03-01T00:00:00Z", q.Get("updated_after"))
		fmt.Fprint(w, `{"object":"collection","url":"","total_count":0,"pages":{"per_page":500,"next_url":null},"data":[]}`)
	})

	after := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err := c.GetAssignments(context.Background(), AssignmentFilter{
		SubjectIDs:   []int{1, 2, 3},
		UpdatedAfter: &after,
	})
	require.NoError(t, err)
}

func TestSubmitReview(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/reviews", r.URL.Path)

		var body map[string]CreateReview
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, 1422, body["review"].AssignmentID)
		assert.Equal(t, 1, body["review"].IncorrectMeaningAnswers)

		w.WriteHeader(http.StatusCreated)
		fmt.Fprint(w, `{
			"id": 72, "object": "review", "url": "",
			"data": {
				"created_at": "2024-03-01T10:00:00Z",
				"assignment_id": 1422,
				"subject_id": 440,
				"starting_srs_stage": 4,
				"ending_srs_stage": 3,
				"incorrect_meaning_answers": 1,
				"incorrect_reading_answers": 0
			}
		}`)
	})

	review, err := c.SubmitReview(context.Background(), CreateReview{
		AssignmentID:            1422,
		IncorrectMeaningAnswers: 1,
	})
	require.NoError(t, err)

	assert.Equal(t, 72, review.ID)
	assert.Equal(t, 3, review.EndingSRSStage)
	assert.True(t, review.DidLevelDown())
	assert.False(t, review.IsCorrect())
}

func TestStartAssignment(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		require.Equal(t, "/assignments/525/start", r.URL.Path)

		fmt.Fprint(w, `{
			"id": 525, "object": "assignment", "url": "",
			"data": {
				"created_at": "2024-01-01T00:00:00Z",
				"subject_id": 9210, "subject_type": "kana_vocabulary", "srs_stage": 1,
				"unlocked_at": "2024-01-01T00:00:00Z",
				"started_at": "2024-03-01T10:00:00Z",
				"available_at": "2024-03-01T14:00:00Z",
				"hidden": false
			}
		}`)
	})

	a, err := c.StartAssignment(context.Background(), 525, nil)
	require.NoError(t, err)

	assert.Equal(t, 525, a.ID)
	assert.Equal(t, 1, a.SRSStage)
	require.NotNil(t, a.StartedAt)
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		headers map[string]string
		check   func(t *testing.T, err error)
	}{
		{
			name:   "unauthorized",
			status: http.StatusUnauthorized,
			check: func(t *testing.T, err error) {
				var e *ErrUnauthorized
				require.True(t, errors.As(err, &e))
			},
		},
		{
			name:    "rate limited with retry-after",
			status:  http.StatusTooManyRequests,
			headers: map[string]string{"Retry-After": "30"},
			check: func(t *testing.T, err error) {
				var e *ErrRateLimited
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 30*time.Second, e.RetryAfter)
			},
		},
		{
			name:   "rate limited without header falls back",
			status: http.StatusTooManyRequests,
			check: func(t *testing.T, err error) {
				var e *ErrRateLimited
				require.True(t, errors.As(err, &e))
				assert.Equal(t, 60*time.Second, e.RetryAfter)
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			check: func(t *testing.T, err error) {
				var e *ErrServer
				require.True(t, errors.As(err, &e))
				assert.Equal(t, http.StatusBadGateway, e.StatusCode)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				for k, v := range tt.headers {
					w.Header().Set(k, v)
				}
				w.WriteHeader(tt.status)
			})

			_, err := c.GetUser(context.Background())
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestDecodeFailure(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"object": "user", "data": `)
	})

	_, err := c.GetUser(context.Background())
	var e *ErrDecode
	require.True(t, errors.As(err, &e))
}

func TestNoConnection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close() // nothing listening anymore

	c := NewClient(StaticToken("tok"), WithBaseURL(url))
	_, err := c.GetUser(context.Background())

	var e *ErrNoConnection
	require.True(t, errors.As(err, &e))
}
