package client

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"hallbook/pkg/model"
)

const headerUserID = "X-User-ID"

// BookingClient calls the bookings HTTP API on behalf of one requester.
type BookingClient struct {
	httpClient *HttpClient
}

func NewBookingClient(baseURL, userID string) *BookingClient {
	httpClient := NewHttpClient(baseURL)
	if userID != "" {
		httpClient.Headers[headerUserID] = userID
	}
	return &BookingClient{httpClient: httpClient}
}

func (c *BookingClient) Create(ctx context.Context, resourceID string, req model.CreateBookingRequest) (*model.BookingSummary, error) {
	path := "/api/v1/resources/" + url.PathEscape(resourceID) + "/bookings"
	var summary model.BookingSummary
	resp, err := c.httpClient.POST(ctx, path, req)
	if err := decode(resp, err, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *BookingClient) ListMine(ctx context.Context) ([]model.BookingSummary, error) {
	var summaries []model.BookingSummary
	resp, err := c.httpClient.GET(ctx, "/api/v1/bookings/me")
	if err := decode(resp, err, &summaries); err != nil {
		return nil, err
	}
	return summaries, nil
}

func (c *BookingClient) GetByID(ctx context.Context, id string) (*model.BookingSummary, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id)
	var summary model.BookingSummary
	resp, err := c.httpClient.GET(ctx, path)
	if err := decode(resp, err, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *BookingClient) Cancel(ctx context.Context, id string) (*model.BookingSummary, error) {
	path := "/api/v1/bookings/id/" + url.PathEscape(id) + "/cancel"
	var summary model.BookingSummary
	resp, err := c.httpClient.POST(ctx, path, nil)
	if err := decode(resp, err, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (c *BookingClient) Availability(ctx context.Context, resourceID, startDate, endDate string) (*model.Availability, error) {
	q := url.Values{}
	q.Set("start", startDate)
	q.Set("end", endDate)
	path := "/api/v1/resources/" + url.PathEscape(resourceID) + "/availability?" + q.Encode()

	var availability model.Availability
	resp, err := c.httpClient.GET(ctx, path)
	if err := decode(resp, err, &availability); err != nil {
		return nil, err
	}
	return &availability, nil
}

// WaitForHealthy blocks until the API answers its health check or maxWait passes.
func (c *BookingClient) WaitForHealthy(ctx context.Context, maxWait time.Duration) error {
	return c.httpClient.WaitForHealthy(ctx, maxWait)
}

// decode unwraps the "data" envelope written by the API.
func decode(resp *Response, err error, target any) error {
	if err != nil {
		return err
	}
	if !resp.IsSuccess() {
		return &APIError{StatusCode: resp.StatusCode, Message: GetErrorMessage(resp)}
	}

	envelope := struct {
		Data any `json:"data"`
	}{Data: target}
	if err := resp.DecodeJSON(&envelope); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// APIError is a non-2xx answer from the bookings API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}
