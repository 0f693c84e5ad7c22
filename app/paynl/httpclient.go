package paynl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

type API int

const (
	APITGU API = iota
	APIREST
	APIRESTV3
)

func (a API) String() string {
	switch a {
	case APIREST:
		return "rest"
	case APIRESTV3:
		return "rest_v3"
	default:
		return "tgu"
	}
}

// RequestObserver receives one observation per outbound gateway call.
// statusCode is 0 when the call failed before a response was read.
type RequestObserver interface {
	ObserveGatewayRequest(api, method string, statusCode int, duration time.Duration)
}

type HTTPClientConfig struct {
	AccountCode string
	APIToken    string

	TGUURL    string
	RESTURL   string
	RESTV3URL string

	TestMode bool
	Debug    bool

	Timeout        time.Duration
	RateLimitRPS   float64
	RateLimitBurst int
}

type Request struct {
	API      API
	Method   string
	Endpoint string
	// Body is sent as JSON with the integration test flag injected.
	Body interface{}
	// Form is sent url-encoded; values are stringified.
	Form map[string]interface{}
}

type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	JSON       bool
}

// Text returns the raw body for non-JSON responses.
func (r *Response) Text() string {
	return string(r.Body)
}

func (r *Response) Decode(v interface{}) error {
	if !r.JSON {
		return &Error{
			Type:       ErrorTypeUnexpectedState,
			Message:    "unexpected non-JSON response from Pay.",
			StatusCode: r.StatusCode,
		}
	}
	if len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	return json.Unmarshal(r.Body, v)
}

type HTTPClient struct {
	cfg        HTTPClientConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	observer   RequestObserver
	logger     logrus.FieldLogger
}

func NewHTTPClient(cfg HTTPClientConfig, observer RequestObserver) *HTTPClient {
	if cfg.TGUURL == "" {
		cfg.TGUURL = DefaultTGUAPIURL
	}
	if cfg.RESTURL == "" {
		cfg.RESTURL = DefaultRESTAPIURL
	}
	if cfg.RESTV3URL == "" {
		cfg.RESTV3URL = DefaultRESTAPIV3URL
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		burst := cfg.RateLimitBurst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), burst)
	}

	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
		limiter:    limiter,
		observer:   observer,
		logger:     logrus.WithField("module", "paynl-http"),
	}
}

func (c *HTTPClient) TestMode() bool {
	return c.cfg.TestMode
}

func (c *HTTPClient) TGURequest(ctx context.Context, method, endpoint string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{API: APITGU, Method: method, Endpoint: endpoint, Body: body})
}

func (c *HTTPClient) APIRequest(ctx context.Context, method, endpoint string, body interface{}) (*Response, error) {
	return c.Do(ctx, Request{API: APIREST, Method: method, Endpoint: endpoint, Body: body})
}

func (c *HTTPClient) RestV3Request(ctx context.Context, method, endpoint string, form map[string]interface{}) (*Response, error) {
	return c.Do(ctx, Request{API: APIRESTV3, Method: method, Endpoint: endpoint, Form: form})
}

func (c *HTTPClient) Do(ctx context.Context, r Request) (*Response, error) {
	method := r.Method
	if method == "" {
		method = http.MethodPost
	}
	target := c.baseURL(r.API) + r.Endpoint

	contentType := "application/json"
	var payload []byte
	var err error
	switch {
	case r.Form != nil:
		contentType = "application/x-www-form-urlencoded"
		payload = []byte(encodeForm(r.Form))
	case r.Body != nil:
		payload, err = withIntegration(r.Body, c.cfg.TestMode)
		if err != nil {
			return nil, fmt.Errorf("encode pay request: %w", err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	req.SetBasicAuth(c.cfg.AccountCode, c.cfg.APIToken)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(r.API, method, 0, start)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	c.observe(r.API, method, resp.StatusCode, start)
	if err != nil {
		return nil, err
	}

	out := &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
		JSON:       strings.Contains(resp.Header.Get("Content-Type"), "application/json"),
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if c.cfg.TestMode || c.cfg.Debug {
			c.logger.WithFields(logrus.Fields{
				"url":    target,
				"method": method,
				"body":   string(payload),
			}).Debug("pay_request")
			c.logger.WithField("response", string(raw)).Debug("pay_error_response")
		}
		gatewayErr := parseErrorResponse(resp.StatusCode, raw, out.JSON)
		c.logger.WithFields(logrus.Fields{
			"api":    r.API.String(),
			"method": method,
			"status": resp.StatusCode,
		}).WithError(gatewayErr).Warn("Pay. request failed")
		return nil, gatewayErr
	}

	return out, nil
}

func (c *HTTPClient) baseURL(api API) string {
	switch api {
	case APIREST:
		return c.cfg.RESTURL
	case APIRESTV3:
		return c.cfg.RESTV3URL
	default:
		return c.cfg.TGUURL
	}
}

func (c *HTTPClient) observe(api API, method string, statusCode int, start time.Time) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveGatewayRequest(api.String(), method, statusCode, time.Since(start))
}

// withIntegration encodes body and sets integration.test on JSON objects.
func withIntegration(body interface{}, testMode bool) ([]byte, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(encoded, &fields); err != nil || fields == nil {
		return encoded, nil
	}
	integration, err := json.Marshal(map[string]bool{"test": testMode})
	if err != nil {
		return nil, err
	}
	fields["integration"] = integration
	return json.Marshal(fields)
}

func encodeForm(form map[string]interface{}) string {
	values := url.Values{}
	for key, value := range form {
		if value == nil {
			continue
		}
		values.Set(key, fmt.Sprint(value))
	}
	return values.Encode()
}
