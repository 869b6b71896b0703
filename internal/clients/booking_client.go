package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"voltswap/internal/models"
)

const (
	defaultRetryAttempts = 3
	defaultRetryBackoff  = 500 * time.Millisecond
)

// HTTPDoer defines http.Client interface subset.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// BookingClient talks to the booking service. Completion updates are retried
// with backoff: a completed swap must never leave the booking stuck.
type BookingClient struct {
	baseURL string
	client  HTTPDoer
	logger  *zap.Logger
}

// NewBookingClient builds client with base URL.
func NewBookingClient(baseURL string, client HTTPDoer, logger *zap.Logger) *BookingClient {
	return &BookingClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		logger:  logger,
	}
}

// NewDefaultHTTPClient returns *http.Client with timeout.
func NewDefaultHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{Timeout: timeout}
}

// GetBooking fetches the booking the swap flow gates on.
func (c *BookingClient) GetBooking(ctx context.Context, bookingID string) (*models.Booking, error) {
	status, body, err := c.do(ctx, http.MethodGet, "/bookings/"+bookingID, nil)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("booking service: get booking %s: status %d", bookingID, status)
	}
	var booking models.Booking
	if err := json.Unmarshal(body, &booking); err != nil {
		return nil, fmt.Errorf("booking service: decode booking: %w", err)
	}
	return &booking, nil
}

// MarkCompleted transitions the booking to completed, retrying transient
// failures so the booking subsystem observes the swap outcome.
func (c *BookingClient) MarkCompleted(ctx context.Context, bookingID string) error {
	payload, _ := json.Marshal(map[string]string{"status": models.BookingStatusCompleted})
	path := "/bookings/" + bookingID + "/status"

	var lastErr error
	for attempt := 1; attempt <= defaultRetryAttempts; attempt++ {
		status, _, err := c.do(ctx, http.MethodPut, path, payload)
		if err == nil && status < http.StatusInternalServerError {
			if status >= http.StatusBadRequest {
				return fmt.Errorf("booking service: mark completed %s: status %d", bookingID, status)
			}
			return nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("booking service: mark completed %s: status %d", bookingID, status)
		}
		c.logger.Warn("booking completion update failed",
			zap.String("booking_id", bookingID),
			zap.Int("attempt", attempt),
			zap.Error(lastErr),
		)
		if attempt == defaultRetryAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(defaultRetryBackoff * time.Duration(attempt)):
		}
	}
	return lastErr
}

func (c *BookingClient) do(ctx context.Context, method, path string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if len(body) > 0 {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()
	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}
