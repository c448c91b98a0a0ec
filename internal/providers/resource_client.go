package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"time"
	"translit/internal/structures"
)

const maxResponseBodySize = 8 << 20 // 8 MB

var ErrResponseTooLarge = errors.New("response too large")

// HttpError is returned for every response outside the 2xx range.
type HttpError struct {
	Status  int
	Message string
}

func (e *HttpError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

// IsHttpStatus reports whether err carries an HttpError with the given status.
func IsHttpStatus(err error, status int) bool {
	var httpErr *HttpError
	return errors.As(err, &httpErr) && httpErr.Status == status
}

type RequestOptions struct {
	Method  string
	Headers http.Header
	// Body is sent verbatim when it is a string or []byte, otherwise it is
	// encoded as JSON.
	Body any
}

type ResourceClientInterface interface {
	Request(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, error)
}

type ResourceClient struct {
	baseURL    string
	httpClient *http.Client
	cache      CacheProviderInterface
	logger     Logger
	maxBody    int64
}

// cachedResponse is the response cache entry for conditional GETs.
type cachedResponse struct {
	ETag string          `json:"etag"`
	Body json.RawMessage `json:"body"`
}

func NewResourceClient(conf *structures.Config, logger Logger, metrics MetricsProviderInterface, cache CacheProviderInterface) (ResourceClientInterface, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}
	return &ResourceClient{
		baseURL: strings.TrimRight(conf.Api.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   conf.Api.Timeout,
			Jar:       jar,
			Transport: MetricsTransport(metrics, nil),
		},
		cache:   cache,
		logger:  logger,
		maxBody: maxResponseBodySize,
	}, nil
}

func encodeBody(body any, headers http.Header) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case string:
		return strings.NewReader(b), nil
	case []byte:
		return bytes.NewReader(b), nil
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshalling request: %w", err)
	}
	if headers.Get("Content-Type") == "" {
		headers.Set("Content-Type", "application/json")
	}
	return bytes.NewReader(data), nil
}

func (c *ResourceClient) Request(ctx context.Context, path string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	headers := opts.Headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}

	bodyReader, err := encodeBody(opts.Body, headers)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, err
	}
	req.Header = headers
	requestID := uuid.NewString()
	req.Header.Set("X-Request-Id", requestID)
	req.Header.Set("Accept", "application/json")

	var cached *cachedResponse
	if method == http.MethodGet {
		cached = c.lookup(path)
		if cached != nil {
			req.Header.Set("If-None-Match", cached.ETag)
		}
	}

	logType := GetLogTypeByRequestType(method)
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Errorf(logType, "%s %s failed [%s]: %s", method, path, requestID, err)
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(data)) > c.maxBody {
		c.logger.Errorf(logType, "%s %s body exceeds %d bytes [%s]", method, path, c.maxBody, requestID)
		return nil, fmt.Errorf("%s %s: %w: more than %d bytes", method, path, ErrResponseTooLarge, c.maxBody)
	}
	c.logger.Debugf(logType, "%s %s -> %d in %s [%s]", method, path, resp.StatusCode, time.Since(start), requestID)

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		return cached.Body, nil
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := string(data)
		if message == "" {
			message = http.StatusText(resp.StatusCode)
		}
		return nil, &HttpError{Status: resp.StatusCode, Message: message}
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%s %s: response is not valid JSON", method, path)
	}

	if method == http.MethodGet {
		c.store(path, resp.Header.Get("ETag"), data)
	}
	return json.RawMessage(data), nil
}

func (c *ResourceClient) lookup(path string) *cachedResponse {
	raw, ok := c.cache.Get(path)
	if !ok {
		return nil
	}
	var entry cachedResponse
	if err := json.Unmarshal(raw, &entry); err != nil || entry.ETag == "" {
		c.cache.Del(path)
		return nil
	}
	return &entry
}

func (c *ResourceClient) store(path, etag string, body []byte) {
	if etag == "" {
		c.cache.Del(path)
		return
	}
	raw, err := json.Marshal(cachedResponse{ETag: etag, Body: body})
	if err != nil {
		return
	}
	c.cache.Set(path, raw)
}
