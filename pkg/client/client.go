package client

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/surecart/licensing-sdk/pkg/apierror"
	"github.com/surecart/licensing-sdk/pkg/buildversion"
	"github.com/surecart/licensing-sdk/pkg/logger"
	"github.com/surecart/licensing-sdk/pkg/metrics"
)

const (
	DefaultEndpoint  = "https://api.surecart.com"
	DefaultTimeout   = 30 * time.Second
	SDKVersionHeader = "X-SURECART-WP-LICENSING-SDK-VERSION"
)

// Client sends requests to the remote licensing API.
type Client struct {
	endpoint   string
	httpClient *http.Client
	timeout    time.Duration
	sdkVersion string
}

// Option configures a Client.
type Option func(*Client)

// WithEndpoint overrides the default licensing endpoint (https://api.surecart.com).
func WithEndpoint(endpoint string) Option {
	return func(c *Client) {
		if endpoint != "" {
			c.endpoint = strings.TrimRight(endpoint, "/")
		}
	}
}

// WithHTTPClient sets a custom http.Client for requests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTimeout sets the per request timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithSDKVersion overrides the version sent in the SDK version header.
func WithSDKVersion(version string) Option {
	return func(c *Client) {
		c.sdkVersion = version
	}
}

func New(opts ...Option) *Client {
	c := &Client{
		endpoint:   DefaultEndpoint,
		httpClient: http.DefaultClient,
		timeout:    DefaultTimeout,
		sdkVersion: buildversion.Version(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) Endpoint() string {
	return c.endpoint
}

// Request describes a single call to the licensing API.
type Request struct {
	Method string
	// Route is relative to the endpoint, e.g. "v1/public/licenses/abc".
	Route string
	// Query is appended to the url. GET requests carry their parameters here.
	Query url.Values
	// Body is encoded as JSON for non GET requests.
	Body interface{}
	// NonBlocking requests are dispatched in the background and their response is discarded.
	NonBlocking bool
}

// SendRequest issues a blocking request. For GET requests a url.Values or
// map[string]string body is sent as query parameters.
func (c *Client) SendRequest(ctx context.Context, method string, route string, body interface{}) (json.RawMessage, error) {
	req := Request{
		Method: method,
		Route:  route,
	}
	if method == http.MethodGet {
		req.Query = toQuery(body)
	} else {
		req.Body = body
	}
	return c.Do(ctx, req)
}

// Do executes r. Successful responses return the raw JSON body, which is nil
// when the server sent no content.
func (c *Client) Do(ctx context.Context, r Request) (json.RawMessage, error) {
	if r.NonBlocking {
		go func() {
			bgCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
			defer cancel()
			if _, err := c.execute(bgCtx, r); err != nil {
				logger.Debugf("non-blocking %s %s failed: %v", r.Method, r.Route, err)
			}
		}()
		return nil, nil
	}
	return c.execute(ctx, r)
}

// DoInto executes r and decodes a successful response into dest.
func (c *Client) DoInto(ctx context.Context, r Request, dest interface{}) error {
	raw, err := c.Do(ctx, r)
	if err != nil {
		return err
	}
	if dest == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}

func (c *Client) execute(ctx context.Context, r Request) (json.RawMessage, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	method := r.Method
	if method == "" {
		method = http.MethodPost
	}

	reqURL := c.endpoint + "/" + strings.TrimLeft(r.Route, "/")
	if len(r.Query) > 0 {
		reqURL += "?" + r.Query.Encode()
	}

	var body io.Reader
	if r.Body != nil && method != http.MethodGet {
		data, err := json.Marshal(r.Body)
		if err != nil {
			return nil, errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to create request")
	}
	req.Header.Set(SDKVersionHeader, c.sdkVersion)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	logger.Debugf("licensing api request %s %s", method, r.Route)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveRequest(method, string(apierror.KindNetworkError), time.Since(start))
		return nil, apierror.Network(err)
	}
	defer resp.Body.Close()
	metrics.ObserveRequest(method, strconv.Itoa(resp.StatusCode), time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apierror.Network(errors.Wrap(err, "failed to read response body"))
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, errorFromResponse(resp.StatusCode, respBody)
	}

	respBody = bytes.TrimSpace(respBody)
	if len(respBody) == 0 {
		return nil, nil
	}
	if !json.Valid(respBody) {
		return nil, apierror.New(apierror.KindUnknownError, "")
	}
	return json.RawMessage(respBody), nil
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errorFromResponse(statusCode int, body []byte) error {
	if statusCode == http.StatusNotFound {
		e := apierror.New(apierror.KindNotFound, "")
		e.StatusCode = statusCode
		return e
	}

	var errResp errorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Code != "" && errResp.Message != "" {
		return apierror.Server(statusCode, errResp.Code, errResp.Message)
	}

	e := apierror.New(apierror.KindUnknownError, "")
	e.StatusCode = statusCode
	return e
}

// Exists reports whether an absolute url answers a HEAD request with a 2xx status.
// Any failure counts as absent.
func (c *Client) Exists(ctx context.Context, rawURL string) bool {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		logger.Debugf("asset probe %s: %v", rawURL, err)
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debugf("asset probe %s: %v", rawURL, err)
		return false
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

func toQuery(body interface{}) url.Values {
	switch b := body.(type) {
	case nil:
		return nil
	case url.Values:
		return b
	case map[string]string:
		q := url.Values{}
		for k, v := range b {
			q.Set(k, v)
		}
		return q
	default:
		return nil
	}
}
