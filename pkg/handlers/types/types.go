package types

import (
	updatertypes "github.com/surecart/licensing-sdk/pkg/updater/types"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ActivateLicenseRequest struct {
	LicenseKey string `json:"license_key"`
}

type DeactivateLicenseRequest struct {
	ActivationID string `json:"activation_id,omitempty"`
}

// MessageResponse is returned by activate and deactivate.
type MessageResponse struct {
	Code         string `json:"code"`
	Message      string `json:"message"`
	ActivationID string `json:"activation_id,omitempty"`
}

type LicenseStatusResponse struct {
	LicenseKey   string `json:"license_key"`
	ActivationID string `json:"activation_id"`
	IsValid      bool   `json:"is_valid"`
	IsActive     bool   `json:"is_active"`
}

type UpdatesResponse struct {
	InstalledVersion string                    `json:"installed_version"`
	NewVersion       string                    `json:"new_version,omitempty"`
	UpdateAvailable  bool                      `json:"update_available"`
	Info             *updatertypes.VersionInfo `json:"info,omitempty"`
}
