package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/sony/gobreaker/v2"
)

const (
	defaultBaseURL           = "https://dummyjson.com"
	responseBodyLimit  int64 = 8 << 20
	errorBodyReadLimit int64 = 1024
)

// FetchError reports a non-2xx answer from the catalog.
type FetchError struct {
	StatusCode int
	Body       string
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
}

// HTTPStatusCode exposes the upstream status to error dumps.
func (e *FetchError) HTTPStatusCode() int {
	return e.StatusCode
}

// StatusCode extracts the upstream HTTP status from err, or 0 when the failure
// happened before a response was received.
func StatusCode(err error) int {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.StatusCode
	}
	return 0
}

// BreakerSettings tunes the optional circuit breaker in front of the catalog.
type BreakerSettings struct {
	Name          string
	MinRequests   uint32
	FailureRatio  float64
	OpenTimeout   time.Duration
	OnStateChange func(name string, from, to gobreaker.State)
}

// Client is a read-only client for the product catalog API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	breaker    *gobreaker.CircuitBreaker[[]byte]
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithBaseURL overrides the catalog base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		trimmed := strings.TrimSpace(baseURL)
		if trimmed != "" {
			c.baseURL = trimmed
		}
	}
}

// WithBreaker guards every call with a circuit breaker. Client errors (4xx)
// and calls abandoned by their caller do not count towards tripping it.
func WithBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		c.breaker = newBreaker(settings)
	}
}

func newBreaker(settings BreakerSettings) *gobreaker.CircuitBreaker[[]byte] {
	name := settings.Name
	if name == "" {
		name = "catalog"
	}
	minRequests := settings.MinRequests
	if minRequests == 0 {
		minRequests = 3
	}
	ratio := settings.FailureRatio
	if ratio <= 0 {
		ratio = 0.6
	}

	var st gobreaker.Settings
	st.Name = name
	st.Timeout = settings.OpenTimeout
	st.ReadyToTrip = func(counts gobreaker.Counts) bool {
		failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
		return counts.Requests >= minRequests && failureRatio >= ratio
	}
	st.IsSuccessful = func(err error) bool {
		if err == nil || errors.Is(err, context.Canceled) {
			return true
		}
		status := StatusCode(err)
		return status >= 400 && status < 500
	}
	st.OnStateChange = settings.OnStateChange

	return gobreaker.NewCircuitBreaker[[]byte](st)
}

// NewClient builds a catalog client.
func NewClient(opts ...Option) *Client {
	client := &Client{
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}

	return client
}

// ListProducts returns the full product collection available at call time.
func (c *Client) ListProducts(ctx context.Context) (*ProductPage, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}

	// limit=0 asks the catalog for every product instead of its default page.
	body, err := c.get(ctx, "products?limit=0")
	if err != nil {
		return nil, wrapFetch(err, "list products")
	}

	var page ProductPage
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product list")
	}
	if page.Products == nil {
		page.Products = []Product{}
	}
	return &page, nil
}

// GetProduct fetches a single product by id. A missing product surfaces as a
// FetchError like any other non-2xx answer.
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	if c == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "catalog client not configured")
	}
	if id <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id must be positive")
	}

	body, err := c.get(ctx, "products/"+strconv.Itoa(id))
	if err != nil {
		return nil, wrapFetch(err, "get product")
	}

	var product Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode product")
	}
	return &product, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	if c.breaker == nil {
		return c.do(ctx, path)
	}
	return c.breaker.Execute(func() ([]byte, error) {
		return c.do(ctx, path)
	})
}

func (c *Client) do(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.buildURL(path), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyReadLimit))
		return nil, &FetchError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(msg))}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, responseBodyLimit))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return body, nil
}

func wrapFetch(err error, op string) error {
	msg := op + " failed"
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		msg = "catalog temporarily unavailable"
	case StatusCode(err) != 0:
		msg = err.Error()
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg).
		WithDetails(map[string]any{"status": StatusCode(err), "operation": op})
}

func (c *Client) buildURL(path string) string {
	trimmed := strings.TrimRight(c.baseURL, "/")
	path = strings.TrimLeft(path, "/")
	return fmt.Sprintf("%s/%s", trimmed, path)
}
