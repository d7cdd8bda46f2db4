package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/surecart/licensing-sdk/pkg/apierror"
)

func TestNew(t *testing.T) {
	c := New()
	require.Equal(t, DefaultEndpoint, c.Endpoint())
	require.Equal(t, DefaultTimeout, c.timeout)

	c = New(WithEndpoint("http://localhost:3000/"), WithTimeout(time.Second), WithSDKVersion("9.9.9"))
	require.Equal(t, "http://localhost:3000", c.Endpoint())
	require.Equal(t, time.Second, c.timeout)
	require.Equal(t, "9.9.9", c.sdkVersion)

	custom := &http.Client{}
	c = New(WithHTTPClient(custom), WithEndpoint(""))
	require.Same(t, custom, c.httpClient)
	require.Equal(t, DefaultEndpoint, c.Endpoint())
}

func TestSendRequest_Headers(t *testing.T) {
	var gotVersion, gotAccept, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotVersion = r.Header.Get(SDKVersionHeader)
		gotAccept = r.Header.Get("Accept")
		gotPath = r.URL.Path
		w.Write([]byte(`{"id":"lic_1"}`))
	}))
	defer srv.Close()

	c := New(WithEndpoint(srv.URL), WithSDKVersion("1.2.3"))
	raw, err := c.SendRequest(context.Background(), http.MethodGet, "v1/public/licenses/abc", nil)
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"lic_1"}`, string(raw))
	require.Equal(t, "1.2.3", gotVersion)
	require.Equal(t, "application/json", gotAccept)
	require.Equal(t, "/v1/public/licenses/abc", gotPath)
}

func TestSendRequest_GetQuery(t *testing.T) {
	var gotQuery url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	c := New(WithEndpoint(srv.URL))
	_, err := c.SendRequest(context.Background(), http.MethodGet, "release", map[string]string{
		"activation_id": "act_1",
		"expose_for":    "900",
	})
	require.NoError(t, err)
	require.Equal(t, "act_1", gotQuery.Get("activation_id"))
	require.Equal(t, "900", gotQuery.Get("expose_for"))
}

func TestSendRequest_JSONBody(t *testing.T) {
	var gotBody map[string]interface{}
	var gotContentType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		b, _ := io.ReadAll(r.Body)
		json.Unmarshal(b, &gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"act_1"}`))
	}))
	defer srv.Close()

	c := New(WithEndpoint(srv.URL))
	raw, err := c.SendRequest(context.Background(), http.MethodPost, "v1/public/activations", map[string]string{"license": "lic_1"})
	require.NoError(t, err)
	require.JSONEq(t, `{"id":"act_1"}`, string(raw))
	require.Equal(t, "application/json", gotContentType)
	require.Equal(t, "lic_1", gotBody["license"])
}

func TestSendRequest_StatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   apierror.Kind
		wantCode   string
		wantErr    bool
		wantResult string
	}{
		{
			name:       "200 ok",
			status:     http.StatusOK,
			body:       `{"ok":true}`,
			wantResult: `{"ok":true}`,
		},
		{
			name:   "200 empty body",
			status: http.StatusOK,
			body:   "",
		},
		{
			name:     "204 is not a success status",
			status:   http.StatusNoContent,
			wantErr:  true,
			wantKind: apierror.KindUnknownError,
			wantCode: "unknown_error",
		},
		{
			name:     "404 not found",
			status:   http.StatusNotFound,
			body:     `{"code":"license.not_found","message":"missing"}`,
			wantErr:  true,
			wantKind: apierror.KindNotFound,
			wantCode: "not_found",
		},
		{
			name:     "422 server code passthrough",
			status:   http.StatusUnprocessableEntity,
			body:     `{"code":"activation.limit","message":"Activation limit reached"}`,
			wantErr:  true,
			wantKind: apierror.KindServerError,
			wantCode: "activation.limit",
		},
		{
			name:     "500 without json",
			status:   http.StatusInternalServerError,
			body:     "something went wrong",
			wantErr:  true,
			wantKind: apierror.KindUnknownError,
			wantCode: "unknown_error",
		},
		{
			name:     "400 json missing message",
			status:   http.StatusBadRequest,
			body:     `{"code":"bad"}`,
			wantErr:  true,
			wantKind: apierror.KindUnknownError,
			wantCode: "unknown_error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := New(WithEndpoint(srv.URL))
			raw, err := c.SendRequest(context.Background(), http.MethodGet, "x", nil)
			if !tt.wantErr {
				require.NoError(t, err)
				if tt.wantResult == "" {
					require.Nil(t, raw)
				} else {
					require.JSONEq(t, tt.wantResult, string(raw))
				}
				return
			}

			require.Error(t, err)
			apiErr, ok := apierror.As(err)
			require.True(t, ok)
			require.Equal(t, tt.wantKind, apiErr.Kind)
			require.Equal(t, tt.wantCode, apiErr.Code)
			require.Equal(t, tt.status, apiErr.StatusCode)
		})
	}
}

func TestSendRequest_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := srv.URL
	srv.Close()

	c := New(WithEndpoint(endpoint))
	_, err := c.SendRequest(context.Background(), http.MethodGet, "x", nil)
	require.Error(t, err)
	require.True(t, apierror.IsKind(err, apierror.KindNetworkError))
}

func TestDo_NonBlocking(t *testing.T) {
	received := make(chan string, 1)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		received <- r.Method
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := New(WithEndpoint(srv.URL))
	raw, err := c.Do(context.Background(), Request{Method: http.MethodDelete, Route: "x", NonBlocking: true})
	require.NoError(t, err)
	require.Nil(t, raw)

	select {
	case method := <-received:
		require.Equal(t, http.MethodDelete, method)
	case <-time.After(5 * time.Second):
		t.Fatal("non-blocking request was never sent")
	}
}

func TestDoInto(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"lic_1","status":"active"}`))
	}))
	defer srv.Close()

	var dest struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	}
	c := New(WithEndpoint(srv.URL))
	err := c.DoInto(context.Background(), Request{Method: http.MethodGet, Route: "x"}, &dest)
	require.NoError(t, err)
	require.Equal(t, "lic_1", dest.ID)
	require.Equal(t, "active", dest.Status)
}

func TestExists(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/icon.svg" {
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := New()
	require.True(t, c.Exists(context.Background(), srv.URL+"/icon.svg"))
	require.False(t, c.Exists(context.Background(), srv.URL+"/icon-128x128.png"))
	require.False(t, c.Exists(context.Background(), "://bad-url"))
}
