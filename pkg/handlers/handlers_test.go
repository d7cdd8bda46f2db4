package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
	"github.com/surecart/licensing-sdk/pkg/apierror"
	"github.com/surecart/licensing-sdk/pkg/handlers/types"
)

func Test_JSONError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "missing key",
			err:         apierror.New(apierror.KindMissingKey, ""),
			wantStatus:  http.StatusBadRequest,
			wantCode:    "missing_key",
			wantMessage: "Please enter a license key",
		},
		{
			name:        "wrapped invalid license",
			err:         errors.Wrap(apierror.New(apierror.KindInvalidLicense, ""), "failed to activate"),
			wantStatus:  http.StatusUnprocessableEntity,
			wantCode:    "invalid_license",
			wantMessage: apierror.DefaultMessage(apierror.KindInvalidLicense),
		},
		{
			name:        "server error keeps status and code",
			err:         apierror.Server(http.StatusTooManyRequests, "rate_limited", "Slow down"),
			wantStatus:  http.StatusTooManyRequests,
			wantCode:    "rate_limited",
			wantMessage: "Slow down",
		},
		{
			name:        "network error",
			err:         apierror.Network(errors.New("dial tcp")),
			wantStatus:  http.StatusBadGateway,
			wantCode:    "network_error",
			wantMessage: apierror.DefaultMessage(apierror.KindNetworkError),
		},
		{
			name:        "deactivated",
			err:         apierror.New(apierror.KindDeactivated, ""),
			wantStatus:  http.StatusForbidden,
			wantCode:    "deactivated",
			wantMessage: "Your license has been deactivated for this site.",
		},
		{
			name:        "foreign error",
			err:         errors.New("disk full"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "unknown_error",
			wantMessage: apierror.DefaultMessage(apierror.KindUnknownError),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			JSONError(rr, tt.err)

			require.Equal(t, tt.wantStatus, rr.Code)
			require.Equal(t, "application/json", rr.Header().Get("Content-Type"))

			var resp types.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
			require.Equal(t, tt.wantCode, resp.Code)
			require.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func Test_Healthz(t *testing.T) {
	rr := httptest.NewRecorder()
	Healthz(rr, httptest.NewRequest("GET", "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp HealthzResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Version)
}
