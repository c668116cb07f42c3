package errors

import (
	stderrors "errors"
	"net/http"
	"testing"

	"github.com/richxcame/logistics-pricing/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSentry_NoDSN(t *testing.T) {
	enabled, err := InitSentry(SentryConfig{})
	require.NoError(t, err)
	assert.False(t, enabled)
}

func TestShouldReportError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		want   bool
	}{
		{"nil error", nil, http.StatusInternalServerError, false},
		{"validation failure", common.NewValidationError("invalid configuration", nil), http.StatusUnprocessableEntity, false},
		{"not found", common.NewNotFoundError("rule not found", nil), http.StatusNotFound, false},
		{"plain client error", stderrors.New("bad json"), http.StatusBadRequest, false},
		{"throttled", stderrors.New("too many"), http.StatusTooManyRequests, true},
		{"internal app error", common.NewInternalError("redis unavailable", nil), http.StatusInternalServerError, true},
		{"unexpected error", stderrors.New("pgx: conn closed"), http.StatusInternalServerError, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ShouldReportError(tt.err, tt.status))
		})
	}
}
