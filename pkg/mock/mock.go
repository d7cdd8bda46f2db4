// Package mock is an in-memory implementation of the public licensing API,
// used by tests and by the mock-server command for local development.
package mock

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/segmentio/ksuid"
	activationtypes "github.com/surecart/licensing-sdk/pkg/activation/types"
	"github.com/surecart/licensing-sdk/pkg/client"
	licensetypes "github.com/surecart/licensing-sdk/pkg/license/types"
	"gopkg.in/yaml.v2"
)

type MockData struct {
	Licenses []MockLicense `yaml:"licenses"`
}

type MockLicense struct {
	ID              string       `yaml:"id"`
	Key             string       `yaml:"key"`
	Status          string       `yaml:"status"`
	ProductSlug     string       `yaml:"productSlug"`
	ActivationLimit int          `yaml:"activationLimit"`
	Release         *MockRelease `yaml:"release"`
}

type MockRelease struct {
	URL       string `yaml:"url"`
	UpdatedAt int64  `yaml:"updatedAt"`
	// ReleaseJSON is the manifest as a JSON document.
	ReleaseJSON string `yaml:"releaseJSON"`
}

func ParseMockData(data []byte) (*MockData, error) {
	var md MockData
	if err := yaml.Unmarshal(data, &md); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal mock data")
	}
	for _, l := range md.Licenses {
		if l.Release != nil && l.Release.ReleaseJSON != "" && !json.Valid([]byte(l.Release.ReleaseJSON)) {
			return nil, errors.Errorf("release json of license %s is not valid json", l.Key)
		}
	}
	return &md, nil
}

type RecordedRequest struct {
	Method     string
	Path       string
	Query      string
	SDKVersion string
}

type injectedFailure struct {
	method string
	prefix string
	status int
	body   string
}

// Server is a fake licensing API.
type Server struct {
	licenses    map[string]*licensetypes.License
	releases    map[string]licensetypes.CurrentRelease
	activations map[string]*activationtypes.Activation
	failures    []injectedFailure
	requests    []RecordedRequest
	mu          sync.Mutex
	now         func() time.Time
}

func NewServer() *Server {
	return &Server{
		licenses:    map[string]*licensetypes.License{},
		releases:    map[string]licensetypes.CurrentRelease{},
		activations: map[string]*activationtypes.Activation{},
		now:         time.Now,
	}
}

func (s *Server) Seed(md MockData) {
	for _, l := range md.Licenses {
		license := licensetypes.License{
			ID:              l.ID,
			Key:             l.Key,
			Status:          l.Status,
			ProductSlug:     l.ProductSlug,
			ActivationLimit: l.ActivationLimit,
		}
		var release *licensetypes.CurrentRelease
		if l.Release != nil {
			release = &licensetypes.CurrentRelease{
				URL:       l.Release.URL,
				UpdatedAt: l.Release.UpdatedAt,
			}
			if l.Release.ReleaseJSON != "" {
				release.ReleaseJSON = json.RawMessage(l.Release.ReleaseJSON)
			}
		}
		s.AddLicense(license, release)
	}
}

// AddLicense registers a license, generating an id when none is set. It returns the license id.
func (s *Server) AddLicense(license licensetypes.License, release *licensetypes.CurrentRelease) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if license.ID == "" {
		license.ID = "lic_" + ksuid.New().String()
	}
	if license.Status == "" {
		license.Status = licensetypes.StatusActive
	}
	s.licenses[license.Key] = &license
	if release != nil {
		r := *release
		if r.ID == "" {
			r.ID = "rel_" + ksuid.New().String()
		}
		s.releases[license.Key] = r
	}
	return license.ID
}

func (s *Server) SetLicenseStatus(key string, status string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if l, ok := s.licenses[key]; ok {
		l.Status = status
	}
}

func (s *Server) SetRelease(key string, release licensetypes.CurrentRelease) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.releases[key] = release
}

func (s *Server) Activations() []activationtypes.Activation {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]activationtypes.Activation, 0, len(s.activations))
	for _, a := range s.activations {
		out = append(out, *a)
	}
	return out
}

// RemoveActivation deletes an activation behind the client's back, as a vendor would from the dashboard.
func (s *Server) RemoveActivation(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.activations, id)
}

// FailNext makes the next request matching method and path prefix fail with status and body.
func (s *Server) FailNext(method string, pathPrefix string, status int, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.failures = append(s.failures, injectedFailure{
		method: method,
		prefix: pathPrefix,
		status: status,
		body:   body,
	})
}

// RequestCount counts recorded requests matching method and path prefix. An empty method matches all.
func (s *Server) RequestCount(method string, pathPrefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, r := range s.requests {
		if (method == "" || r.Method == method) && strings.HasPrefix(r.Path, pathPrefix) {
			count++
		}
	}
	return count
}

func (s *Server) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]RecordedRequest(nil), s.requests...)
}

func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.recordMiddleware)

	r.HandleFunc("/v1/public/licenses/{key}", s.getLicense).Methods("GET")
	r.HandleFunc("/v1/public/licenses/{key}/expose_current_release", s.exposeCurrentRelease).Methods("GET")

	r.HandleFunc("/v1/public/activations", s.createActivation).Methods("POST")
	r.HandleFunc("/v1/public/activations/{id}", s.getActivation).Methods("GET")
	r.HandleFunc("/v1/public/activations/{id}", s.updateActivation).Methods("PATCH")
	r.HandleFunc("/v1/public/activations/{id}", s.deleteActivation).Methods("DELETE")

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Not found")
	})

	return r
}

func (s *Server) recordMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:     r.Method,
			Path:       r.URL.Path,
			Query:      r.URL.RawQuery,
			SDKVersion: r.Header.Get(client.SDKVersionHeader),
		})

		for i, f := range s.failures {
			if f.method == r.Method && strings.HasPrefix(r.URL.Path, f.prefix) {
				s.failures = append(s.failures[:i], s.failures[i+1:]...)
				s.mu.Unlock()
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(f.status)
				w.Write([]byte(f.body))
				return
			}
		}
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) getLicense(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	license, ok := s.licenses[mux.Vars(r)["key"]]
	if !ok {
		writeError(w, http.StatusNotFound, "license.not_found", "License not found")
		return
	}
	writeJSON(w, http.StatusOK, license)
}

func (s *Server) exposeCurrentRelease(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := mux.Vars(r)["key"]
	license, ok := s.licenses[key]
	if !ok {
		writeError(w, http.StatusNotFound, "license.not_found", "License not found")
		return
	}

	activation, ok := s.activations[r.URL.Query().Get("activation_id")]
	if !ok || activation.License != license.ID {
		writeError(w, http.StatusForbidden, "activation.invalid", "This activation does not belong to the license.")
		return
	}

	if _, err := strconv.Atoi(r.URL.Query().Get("expose_for")); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "expose_for.invalid", "expose_for must be a number of seconds.")
		return
	}

	release, ok := s.releases[key]
	if !ok {
		writeError(w, http.StatusNotFound, "release.not_found", "No release found")
		return
	}
	writeJSON(w, http.StatusOK, release)
}

func (s *Server) licenseByID(id string) *licensetypes.License {
	for _, l := range s.licenses {
		if l.ID == id {
			return l
		}
	}
	return nil
}

func (s *Server) createActivation(w http.ResponseWriter, r *http.Request) {
	var req activationtypes.CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "request.invalid", "Could not parse the request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	license := s.licenseByID(req.Activation.License)
	if license == nil {
		writeError(w, http.StatusUnprocessableEntity, "activation.license.invalid", "The license is not valid.")
		return
	}
	if license.IsRevoked() {
		writeError(w, http.StatusUnprocessableEntity, "activation.license.revoked", "The license has been revoked.")
		return
	}

	if license.ActivationLimit > 0 {
		count := 0
		for _, a := range s.activations {
			if a.License == license.ID {
				count++
			}
		}
		if count >= license.ActivationLimit {
			writeError(w, http.StatusUnprocessableEntity, "activation.limit_reached", "This license has reached its activation limit.")
			return
		}
	}

	now := s.now().Unix()
	activation := &activationtypes.Activation{
		ID:          "act_" + ksuid.New().String(),
		License:     license.ID,
		Fingerprint: req.Activation.Fingerprint,
		Name:        req.Activation.Name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	s.activations[activation.ID] = activation

	writeJSON(w, http.StatusCreated, activation)
}

func (s *Server) getActivation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	activation, ok := s.activations[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "activation.not_found", "Activation not found")
		return
	}
	writeJSON(w, http.StatusOK, activation)
}

func (s *Server) updateActivation(w http.ResponseWriter, r *http.Request) {
	var payload activationtypes.Payload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "request.invalid", "Could not parse the request.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	activation, ok := s.activations[mux.Vars(r)["id"]]
	if !ok {
		writeError(w, http.StatusNotFound, "activation.not_found", "Activation not found")
		return
	}
	if s.licenseByID(payload.License) == nil {
		writeError(w, http.StatusUnprocessableEntity, "activation.license.invalid", "The license is not valid.")
		return
	}

	activation.Fingerprint = payload.Fingerprint
	activation.Name = payload.Name
	activation.License = payload.License
	activation.UpdatedAt = s.now().Unix()

	writeJSON(w, http.StatusOK, activation)
}

func (s *Server) deleteActivation(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := mux.Vars(r)["id"]
	activation, ok := s.activations[id]
	if !ok {
		writeError(w, http.StatusNotFound, "activation.not_found", "Activation not found")
		return
	}
	delete(s.activations, id)

	writeJSON(w, http.StatusOK, activation)
}

func writeJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func writeError(w http.ResponseWriter, code int, errCode string, message string) {
	writeJSON(w, code, map[string]string{
		"code":    errCode,
		"message": message,
	})
}
