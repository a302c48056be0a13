package signals

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"number", `7`, 7, false},
		{"array", `[{"id":1},{"id":2},{"id":3}]`, 3, false},
		{"empty array", `[]`, 0, false},
		{"count field", `{"count": 4, "data": []}`, 4, false},
		{"total field", `{"total": 12}`, 12, false},
		{"data array", `{"data": [1, 2]}`, 2, false},
		{"items array", `{"items": [1]}`, 1, false},
		{"nested data count", `{"data": {"count": 9}}`, 9, false},
		{"no count", `{"status": "ok"}`, 0, true},
		{"invalid json", `{`, 0, true},
		{"zero", `0`, 0, false},
		{"fractional count", `{"count": 2.9}`, 0, true},
		{"fractional number", `3.5`, 0, true},
		{"negative", `-1`, 0, true},
		{"huge exponent", `1e300`, 0, true},
		{"beyond int64", `9223372036854775808`, 0, true},
		{"nested out of range", `{"data": {"count": 4294967296}}`, 0, true},
		{"whole float", `{"total": 5.0}`, 5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCount([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHTTPCounter_GetCount(t *testing.T) {
	var gotAuth, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data": [{"id": "a"}, {"id": "b"}]}`))
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPCounter(srv.Client(), srv.URL+"/api/", "/appointments/today", "secret-token")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/api/appointments/today", c.URL())

	n, err := c.GetCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "/api/appointments/today", gotPath)
}

func TestHTTPCounter_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c, err := NewHTTPCounter(NewHTTPClient(time.Second), srv.URL, "inventory/low-stock", "")
	require.NoError(t, err)

	_, err = c.GetCount(context.Background())
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestHTTPCounter_RespectsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(func() {
		close(release)
		srv.Close()
	})

	c, err := NewHTTPCounter(srv.Client(), srv.URL, "billing/overdue", "")
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err = c.GetCount(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type pendingFunc func(time.Time) int

func (f pendingFunc) PendingCount(ref time.Time) int { return f(ref) }

func TestNewTaskCounter(t *testing.T) {
	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	var gotRef time.Time
	c := NewTaskCounter(pendingFunc(func(ref time.Time) int {
		gotRef = ref
		return 3
	}), func() time.Time { return now })

	n, err := c.GetCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, now, gotRef)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.GetCount(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
