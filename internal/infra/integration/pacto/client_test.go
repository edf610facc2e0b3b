package pacto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pageOf(n, offset int) map[string]any {
	content := make([]map[string]any, n)
	for i := range content {
		content[i] = map[string]any{"nome": fmt.Sprintf("Aluno %d", offset+i), "matriculaZW": float64(offset + i)}
	}
	return map[string]any{"content": content}
}

func newTestClient(url string, attempts int, opts ...Option) *Client {
	return NewClient(url, "tok", "7", time.Millisecond, attempts, opts...)
}

func TestFetchAllStopsOnShortPage(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)

		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "7", r.Header.Get("empresaId"))
		assert.Equal(t, StudentsPath, r.URL.Path)
		assert.Equal(t, "dataMatriculaZW,desc", r.URL.Query().Get("sort"))
		assert.Equal(t, "100", r.URL.Query().Get("size"))

		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		n := 100
		if page == 2 {
			n = 30
		}
		json.NewEncoder(w).Encode(pageOf(n, page*100))
	}))
	defer srv.Close()

	ds, err := newTestClient(srv.URL, 3).Students(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 230, ds.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
	assert.Equal(t, "229", ds.Records[229].String("matriculaZW"))
}

func TestFetchAllStopsOnEmptyPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "0" {
			json.NewEncoder(w).Encode(pageOf(500, 0))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	}))
	defer srv.Close()

	ds, err := newTestClient(srv.URL, 1).Bookings(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 500, ds.Len())
}

func TestFetchAllRespectsMaxPages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(pageOf(100, 0))
	}))
	defer srv.Close()

	ds, err := newTestClient(srv.URL, 1, WithMaxPages(2)).Students(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 200, ds.Len())
}

// TestRetriesOn429ThenSucceeds - rate limit é retentado com backoff
func TestRetriesOn429ThenSucceeds(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) <= 2 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(pageOf(3, 0))
	}))
	defer srv.Close()

	ds, err := newTestClient(srv.URL, 5).Students(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, ds.Len())
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestRetriesExhausted(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 3).Students(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestUnexpectedStatusIsNotRetried(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token inválido"}`))
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL, 5).Students(context.Background())

	assert.ErrorIs(t, err, ErrUnexpectedStatus)
	assert.NotErrorIs(t, err, ErrRetriesExhausted)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

// TestFailedPageAbortsSnapshot - falha no meio não devolve base parcial
func TestFailedPageAbortsSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(pageOf(100, 0))
	}))
	defer srv.Close()

	ds, err := newTestClient(srv.URL, 2).Students(context.Background())

	assert.Error(t, err)
	assert.Nil(t, ds)
}

func TestEnrollmentsSendsDateRange(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, EnrollmentsPath, r.URL.Path)
		assert.Equal(t, "2025-01-14", r.URL.Query().Get("dataInicio"))
		assert.Equal(t, "2025-03-15", r.URL.Query().Get("dataFim"))
		assert.Equal(t, "1", r.URL.Query().Get("professorId"))
		json.NewEncoder(w).Encode(map[string]any{"content": []map[string]any{
			{"nome": "Ana", "matricula": "10", "dataInicio": "2025-03-01"},
		}})
	}))
	defer srv.Close()

	from := time.Date(2025, time.January, 14, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)

	ds, err := newTestClient(srv.URL, 1).Enrollments(context.Background(), from, to)

	require.NoError(t, err)
	assert.Equal(t, 1, ds.Len())
	assert.Equal(t, []string{"dataInicio", "matricula", "nome"}, ds.Columns)
}

func TestBookingsSendsFilters(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, `{"professorId":1}`, r.URL.Query().Get("filters"))
		assert.Equal(t, "nome,asc", r.URL.Query().Get("sort"))
		assert.Equal(t, "500", r.URL.Query().Get("size"))
		json.NewEncoder(w).Encode(map[string]any{"content": []any{}})
	}))
	defer srv.Close()

	ds, err := newTestClient(srv.URL, 1).Bookings(context.Background())

	require.NoError(t, err)
	assert.Zero(t, ds.Len())
}

func TestContextCancelStopsRetry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	c := NewClient(srv.URL, "tok", "7", time.Second, 10)
	_, err := c.Students(ctx)

	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestBackoffIsCapped(t *testing.T) {
	c := NewClient("http://x", "", "", time.Second, 3)

	assert.Equal(t, 2*time.Second, c.backoffFor(1))
	assert.Equal(t, 4*time.Second, c.backoffFor(2))
	assert.Equal(t, maxBackoff, c.backoffFor(10))
}
