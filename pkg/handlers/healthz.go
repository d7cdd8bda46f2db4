package handlers

import (
	"net/http"

	"github.com/surecart/licensing-sdk/pkg/buildversion"
)

type HealthzResponse struct {
	Version string `json:"version"`
	GitSHA  string `json:"gitSHA,omitempty"`
}

func Healthz(w http.ResponseWriter, r *http.Request) {
	healthzResponse := HealthzResponse{
		Version: buildversion.Version(),
		GitSHA:  buildversion.GitSHA(),
	}

	JSON(w, http.StatusOK, healthzResponse)
}
