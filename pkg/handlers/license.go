package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/surecart/licensing-sdk/pkg/apierror"
	"github.com/surecart/licensing-sdk/pkg/handlers/types"
	"github.com/surecart/licensing-sdk/pkg/logger"
	"github.com/surecart/licensing-sdk/pkg/updater"
)

func (h *Handler) ActivateLicense(w http.ResponseWriter, r *http.Request) {
	var request types.ActivateLicenseRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		logger.Debugf("failed to decode activate request: %v", err)
		JSON(w, http.StatusBadRequest, types.ErrorResponse{Code: "invalid_request", Message: "could not parse request body"})
		return
	}

	activation, err := h.client.License().Activate(r.Context(), strings.TrimSpace(request.LicenseKey))
	if err != nil {
		JSONError(w, err)
		return
	}

	// a new license may expose a different release
	if err := h.client.Updater().ClearCache(r.Context()); err != nil {
		logger.Error(errors.Wrap(err, "failed to clear version info"))
	}

	JSON(w, http.StatusOK, types.MessageResponse{
		Code:         "activated",
		Message:      "This site was successfully activated.",
		ActivationID: activation.ID,
	})
}

func (h *Handler) DeactivateLicense(w http.ResponseWriter, r *http.Request) {
	var request types.DeactivateLicenseRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
			logger.Debugf("failed to decode deactivate request: %v", err)
			JSON(w, http.StatusBadRequest, types.ErrorResponse{Code: "invalid_request", Message: "could not parse request body"})
			return
		}
	}

	if err := h.client.License().Deactivate(r.Context(), request.ActivationID); err != nil {
		JSONError(w, err)
		return
	}

	if err := h.client.Updater().ClearCache(r.Context()); err != nil {
		logger.Error(errors.Wrap(err, "failed to clear version info"))
	}

	JSON(w, http.StatusOK, types.MessageResponse{
		Code:    "deactivated",
		Message: "This site has been deactivated.",
	})
}

func (h *Handler) GetLicenseStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.client.Status(r.Context())
	if err != nil {
		JSONError(w, err)
		return
	}

	JSON(w, http.StatusOK, types.LicenseStatusResponse{
		LicenseKey:   status.LicenseKey,
		ActivationID: status.ActivationID,
		IsValid:      status.IsValid,
		IsActive:     status.IsActive,
	})
}

func (h *Handler) GetUpdates(w http.ResponseWriter, r *http.Request) {
	hc := updater.Context{}
	if r.URL.Query().Get("force") == "true" {
		hc.Page = updater.ForceRefreshPage
	}

	installed := h.client.Project().Version
	info := h.client.Updater().GetVersionInfo(r.Context(), hc)

	response := types.UpdatesResponse{
		InstalledVersion: installed,
		Info:             info,
	}
	if info != nil {
		response.NewVersion = info.NewVersion
		response.UpdateAvailable = updater.UpdateAvailable(installed, info)
	}

	JSON(w, http.StatusOK, response)
}

func (h *Handler) GetPluginInformation(w http.ResponseWriter, r *http.Request) {
	action := r.URL.Query().Get("action")
	if action == "" {
		action = updater.PluginInformationAction
	}
	slug := r.URL.Query().Get("slug")
	if slug == "" {
		slug = h.client.Project().Slug
	}

	info, ok := h.client.Updater().PluginInformation(r.Context(), action, slug, updater.Context{})
	if !ok {
		JSONError(w, apierror.New(apierror.KindNotFound, ""))
		return
	}
	if info == nil {
		JSONError(w, apierror.New(apierror.KindNotFound, "No release information is available."))
		return
	}

	JSON(w, http.StatusOK, info)
}
