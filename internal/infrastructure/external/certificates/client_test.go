package certificates

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alem-hub/course-schedule/internal/domain/course"
	"github.com/alem-hub/course-schedule/internal/domain/shared"
	"github.com/alem-hub/course-schedule/pkg/retry"
)

func newTestClient(url string) *Client {
	c := NewClient(DefaultClientConfig(url, "secret"))
	return c.WithRetryPolicy(retry.Policy{
		Attempts:  3,
		BaseDelay: time.Millisecond,
		MaxDelay:  time.Millisecond,
	})
}

func TestClient_Issue_PostsCertificates(t *testing.T) {
	var got []course.Certificate
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret", r.Header.Get(APIKeyHeader))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	certs := []course.Certificate{{StudentID: 1, Course: "Go (golang)", Name: "Ann Lee", Date: 1700000000000}}
	require.NoError(t, newTestClient(srv.URL).Issue(context.Background(), certs))
	assert.Equal(t, certs, got)
}

func TestClient_Issue_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	require.NoError(t, newTestClient(srv.URL).Issue(context.Background(), nil))
	assert.EqualValues(t, 3, atomic.LoadInt32(&calls))
}

func TestClient_Issue_ClientErrorIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		http.Error(w, "bad key", http.StatusForbidden)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Issue(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestClient_Issue_ExhaustedRetriesAreUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	err := newTestClient(srv.URL).Issue(context.Background(), nil)
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
}

func TestClient_Issue_RejectionsDoNotOpenBreaker(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	c := newTestClient(srv.URL)
	for i := 0; i < 8; i++ {
		err := c.Issue(context.Background(), nil)
		assert.ErrorIs(t, err, shared.ErrCertificateAPIRejected)
	}
	assert.EqualValues(t, 8, atomic.LoadInt32(&calls))
}

func TestClient_Issue_OpenBreakerSkipsRequests(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(DefaultClientConfig(srv.URL, "")).WithRetryPolicy(retry.Policy{Attempts: 1})
	for i := 0; i < 5; i++ {
		_ = c.Issue(context.Background(), nil)
	}
	before := atomic.LoadInt32(&calls)

	err := c.Issue(context.Background(), nil)
	assert.ErrorIs(t, err, shared.ErrServiceUnavailable)
	assert.Equal(t, before, atomic.LoadInt32(&calls))
}
