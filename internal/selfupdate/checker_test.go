package selfupdate

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestChecker(t *testing.T, tag string, status int) *Checker {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/repos/asamadder/kodama/releases/latest", r.URL.Path)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		fmt.Fprintf(w, `{"tag_name": %q, "html_url": "https://github.com/asamadder/kodama/releases/tag/%s"}`, tag, tag)
	}))
	t.Cleanup(srv.Close)
	return NewChecker("asamadder", "kodama", WithAPIBaseURL(srv.URL))
}

func TestCheckUpdateAvailable(t *testing.T) {
	c := newTestChecker(t, "v1.2.0", http.StatusOK)

	result, err := c.Check(context.Background(), &CheckInput{Version: "v1.1.0"})
	require.NoError(t, err)

	assert.True(t, result.UpdateAvailable)
	assert.Equal(t, "v1.2.0", result.LatestVersion)
	assert.Contains(t, result.ReleaseURL, "v1.2.0")
}

func TestCheckAlreadyLatest(t *testing.T) {
	c := newTestChecker(t, "v1.2.0", http.StatusOK)

	result, err := c.Check(context.Background(), &CheckInput{Version: "1.2.0"})
	require.NoError(t, err)
	assert.False(t, result.UpdateAvailable)
}

func TestCheckNewerLocalBuild(t *testing.T) {
	c := newTestChecker(t, "v1.2.0", http.StatusOK)

	result, err := c.Check(context.Background(), &CheckInput{Version: "v1.3.0-rc.1"})
	require.NoError(t, err)
	assert.False(t, result.UpdateAvailable)
}

func TestCheckDevBuild(t *testing.T) {
	c := newTestChecker(t, "v1.2.0", http.StatusOK)

	_, err := c.Check(context.Background(), &CheckInput{Version: "(devel)"})
	require.ErrorIs(t, err, ErrDevBuild)
}

func TestCheckServerError(t *testing.T) {
	c := newTestChecker(t, "", http.StatusForbidden)

	_, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestCheckBadTag(t *testing.T) {
	c := newTestChecker(t, "nightly", http.StatusOK)

	_, err := c.Check(context.Background(), &CheckInput{Version: "v1.0.0"})
	require.Error(t, err)
}
