package jira

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient spins up an httptest server and a Client pointed at it.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client, err := NewClient(Config{
		URL:   srv.URL,
		User:  "me@example.com",
		Token: "secret",
	}, nil)
	require.NoError(t, err)
	return client
}

func TestNewClient_Validation(t *testing.T) {
	_, err := NewClient(Config{Token: "x"}, nil)
	assert.Error(t, err, "missing URL must be rejected")

	_, err = NewClient(Config{URL: "https://example.com"}, nil)
	assert.Error(t, err, "missing token must be rejected")
}

func TestGetCurrentUser(t *testing.T) {
	var gotAuth string
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/latest/myself", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(User{
			AccountID:   "acc-1",
			Email:       "me@example.com",
			DisplayName: "Me",
			TimeZone:    "Europe/Oslo",
		})
	}))

	user, err := client.GetCurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acc-1", user.AccountID)
	assert.Equal(t, "Europe/Oslo", user.TimeZone)

	// user + token configured means HTTP Basic
	assert.Contains(t, gotAuth, "Basic ")
}

func TestBearerAuth(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(User{AccountID: "acc-1"})
	}))
	defer srv.Close()

	client, err := NewClient(Config{URL: srv.URL, Token: "secret"}, nil)
	require.NoError(t, err)

	_, err = client.GetCurrentUser(context.Background())
	require.NoError(t, err)
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   error
	}{
		{"unauthorized", http.StatusUnauthorized, ErrUnauthorized},
		{"forbidden", http.StatusForbidden, ErrUnauthorized},
		{"not found", http.StatusNotFound, ErrNotFound},
		{"rate limited", http.StatusTooManyRequests, ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))

			_, err := client.GetCurrentUser(context.Background())
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrorClassification_ServerFault(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("upstream broke"))
	}))

	_, err := client.GetCurrentUser(context.Background())
	require.Error(t, err)

	var fault *ServerFault
	require.ErrorAs(t, err, &fault)
	assert.Equal(t, http.StatusBadGateway, fault.Code)
	assert.Contains(t, fault.Body, "upstream broke")
}

func TestGetTimeTrackingConfiguration(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/rest/api/latest/configuration", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"timeTrackingConfiguration":{"workingHoursPerDay":7.5,"workingDaysPerWeek":5.0,"defaultUnit":"hour"}}`))
	}))

	tc, err := client.GetTimeTrackingConfiguration(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7.5, tc.WorkingHoursPerDay)
	assert.Equal(t, 5.0, tc.WorkingDaysPerWeek)
}

func TestNormalizeIssueKey(t *testing.T) {
	assert.Equal(t, "TIME-147", NormalizeIssueKey("time-147"))
	assert.Equal(t, "TIME-147", NormalizeIssueKey(" TIME-147 "))
	assert.Equal(t, "TIME-147", NormalizeIssueKey("Time-147"))
}
