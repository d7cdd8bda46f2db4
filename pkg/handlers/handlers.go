package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/surecart/licensing-sdk/pkg/apierror"
	"github.com/surecart/licensing-sdk/pkg/handlers/types"
	"github.com/surecart/licensing-sdk/pkg/licensing"
	"github.com/surecart/licensing-sdk/pkg/logger"
)

// Handler serves the local licensing API of one project.
type Handler struct {
	client *licensing.Client
}

func New(client *licensing.Client) *Handler {
	return &Handler{
		client: client,
	}
}

func JSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error(err)
		w.WriteHeader(500)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// JSONError renders err as {code, message}. Errors without a kind are internal errors.
func JSONError(w http.ResponseWriter, err error) {
	apiErr, ok := apierror.As(err)
	if !ok {
		logger.Error(err)
		JSON(w, http.StatusInternalServerError, types.ErrorResponse{
			Code:    string(apierror.KindUnknownError),
			Message: apierror.DefaultMessage(apierror.KindUnknownError),
		})
		return
	}

	JSON(w, statusForKind(apiErr), types.ErrorResponse{
		Code:    apiErr.Code,
		Message: apiErr.Message,
	})
}

func statusForKind(apiErr *apierror.Error) int {
	switch apiErr.Kind {
	case apierror.KindMissingKey, apierror.KindLicenseKeyMissing, apierror.KindActivationIDMissing:
		return http.StatusBadRequest
	case apierror.KindInvalidLicense, apierror.KindActivationFailed, apierror.KindCouldNotActivate, apierror.KindReleaseMismatch:
		return http.StatusUnprocessableEntity
	case apierror.KindRevoked, apierror.KindDeactivated:
		return http.StatusForbidden
	case apierror.KindNotFound:
		return http.StatusNotFound
	case apierror.KindNetworkError:
		return http.StatusBadGateway
	case apierror.KindServerError:
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 600 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
