// Package basehiring is a thin client for the Base Hiring and Base Account
// public APIs. It owns transport, decoding and the error taxonomy; shaping
// and caching of the collections live in the catalog package.
package basehiring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	hiringAPIURL  = "https://hiring.base.vn/publicapi/v2"
	accountAPIURL = "https://account.base.vn/extapi/v1"
	userAgent     = "tranvh/hiregate"

	// Upstream status code for an opening that is actively hiring.
	StatusActive = "10"
)

// ErrNotFound signals a well-formed upstream response carrying a business
// "not found" result, as opposed to a connectivity failure.
var ErrNotFound = errors.New("entity not found upstream")

// APIError is a logical failure reported inside a 200 response body.
type APIError struct {
	Code    int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("base api error (code %d): %s", e.Code, e.Message)
}

type Client struct {
	// ctx is used for outgoing http requests only.
	ctx        context.Context
	token      string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	HiringURL  string
	AccountURL string
}

func New(ctx context.Context, logger *zap.Logger, token string) *Client {
	return &Client{
		ctx:        ctx,
		token:      token,
		logger:     logger,
		HiringURL:  hiringAPIURL,
		AccountURL: accountAPIURL,
		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		UserAgent: userAgent,
	}
}
