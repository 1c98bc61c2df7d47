package health

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNothingConfiguredIsHealthy(t *testing.T) {
	h := NewChecker(nil, nil, nil)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var s Status
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&s))
	assert.Equal(t, Status{Database: StateDisabled, Redis: StateDisabled, NATS: StateDisabled}, s)
}

func TestHealthy(t *testing.T) {
	tests := []struct {
		status Status
		want   bool
	}{
		{Status{StateConnected, StateConnected, StateConnected}, true},
		{Status{StateConnected, StateDisabled, StateDisabled}, true},
		{Status{StateConnected, StateDisconnected, StateDisabled}, false},
		{Status{StateDisabled, StateDisabled, StateDisconnected}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.status.Healthy(), "%+v", tt.status)
	}
}
