package action

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/haldane-io/progressd/internal/tracking"
)

func TestWrapRequestCountsBodyAndResponseBytes(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/upload?X-Progress-Id=abc", strings.NewReader("hello world"))
	r.ContentLength = 11
	rec := httptest.NewRecorder()

	tr, w := WrapRequest(rec, r)
	require.Equal(t, http.MethodPost, tr.Method())
	require.False(t, tr.Linked())

	buf := make([]byte, 5)
	n, err := r.Body.Read(buf)
	require.NoError(t, err)
	require.Equal(t, 5, n)

	w.WriteHeader(200)
	_, err = w.Write([]byte("ok"))
	require.NoError(t, err)

	snap := tr.Observe()
	require.Equal(t, uint64(5), snap.BytesIn)
	require.Equal(t, uint64(2), snap.BytesOut)
	require.Equal(t, uint64(11), snap.RequestSize)
	require.Equal(t, 200, snap.StatusCode)
}

func TestLinkAndClearEntry(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	tr, _ := WrapRequest(rec, r)

	entry := tracking.NewLiveEntry("abc", tr)
	tr.Link("abc", entry)
	require.True(t, tr.Linked())
	require.Equal(t, "abc", tr.ID())

	tr.ClearEntry()
	require.False(t, tr.Linked())
}

func TestCloseIsNoopWhenNeverTracked(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/upload", nil)
	rec := httptest.NewRecorder()
	tr, _ := WrapRequest(rec, r)

	_, _, tracked := tr.Close(0)
	require.False(t, tracked)
}

func TestCloseFreezesCountersAndSetsExpiry(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("12345"))
	rec := httptest.NewRecorder()
	tr, w := WrapRequest(rec, r)
	entry := tracking.NewLiveEntry("abc", tr)
	tr.Link("abc", entry)

	_, _ = r.Body.Read(make([]byte, 5))
	w.WriteHeader(200)
	_, _ = w.Write([]byte("hi"))

	id, snap, tracked := tr.Close(30_000_000_000)
	require.True(t, tracked)
	require.Equal(t, "abc", id)
	require.Equal(t, uint64(5), snap.BytesIn)
	require.Equal(t, uint64(2), snap.BytesOut)
	require.Equal(t, 200, snap.StatusCode)
	require.False(t, snap.ExpiresAt.IsZero())
}
