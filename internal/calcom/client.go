package calcom

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/wolfman30/retell-calcom-bridge/internal/tenancy"
	"github.com/wolfman30/retell-calcom-bridge/pkg/logging"
)

const (
	defaultBaseURL = "https://api.cal.com/v1"
	defaultTimeout = 15 * time.Second

	// dayTimestampLayout renders the UTC-qualified bounds Cal.com expects.
	dayTimestampLayout = "2006-01-02T15:04:05.000Z"
)

var tracer = otel.Tracer("scheduling.internal.calcom")

// RequestObserver receives per-call outcomes, typically Prometheus metrics.
type RequestObserver interface {
	ObserveCalendarRequest(operation, status string, seconds float64)
}

// Client wraps the Cal.com endpoints used for availability and booking.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logging.Logger
	observer   RequestObserver
}

// NewClient constructs a Cal.com REST client. A zero timeout uses the default.
func NewClient(baseURL string, timeout time.Duration, logger *logging.Logger) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		logger:     logger,
	}
}

// WithObserver attaches a request observer and returns the client.
func (c *Client) WithObserver(o RequestObserver) *Client {
	c.observer = o
	return c
}

// GetSlots lists open slots for an event type between q.Start and q.End.
func (c *Client) GetSlots(ctx context.Context, apiKey string, q SlotsQuery) (*SlotsResponse, error) {
	params := url.Values{}
	params.Set("apiKey", apiKey)
	params.Set("eventTypeId", q.EventTypeID)
	params.Set("startTime", q.Start.UTC().Format(dayTimestampLayout))
	params.Set("endTime", q.End.UTC().Format(dayTimestampLayout))
	params.Set("timeZone", q.TimeZone)

	var resp SlotsResponse
	if err := c.doJSON(ctx, "get_slots", http.MethodGet, "/slots", params, nil, &resp); err != nil {
		return nil, fmt.Errorf("get slots: %w", err)
	}
	return &resp, nil
}

// CreateBooking submits a booking and returns what Cal.com actually booked.
func (c *Client) CreateBooking(ctx context.Context, apiKey string, req BookingRequest) (*Booking, error) {
	params := url.Values{}
	params.Set("apiKey", apiKey)

	var booking Booking
	if err := c.doJSON(ctx, "create_booking", http.MethodPost, "/bookings", params, req, &booking); err != nil {
		return nil, fmt.Errorf("create booking: %w", err)
	}
	if strings.TrimSpace(booking.StartTime) == "" {
		return nil, fmt.Errorf("create booking: response missing startTime")
	}
	return &booking, nil
}

func (c *Client) doJSON(ctx context.Context, operation, method, path string, params url.Values, body interface{}, out interface{}) (err error) {
	ctx, span := tracer.Start(ctx, "calcom."+operation)
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("calcom.path", path),
	)
	tenantID, _ := tenancy.TenantIDFromContext(ctx)
	if tenantID != "" {
		span.SetAttributes(attribute.String("tenant.id", tenantID))
	}

	start := time.Now()
	status := "error"
	defer func() {
		if c.observer != nil {
			c.observer.ObserveCalendarRequest(operation, status, time.Since(start).Seconds())
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	endpoint := c.baseURL + path
	if len(params) > 0 {
		endpoint += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, bodyReader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()
	status = strconv.Itoa(resp.StatusCode)
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(respBody)
		if len(msg) > 300 {
			msg = msg[:300]
		}
		c.logger.Warn("cal.com API non-2xx response", "tenant_id", tenantID, "status", resp.StatusCode, "path", path, "body", msg)
		return &APIError{StatusCode: resp.StatusCode, Body: msg}
	}

	if len(respBody) == 0 || out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
