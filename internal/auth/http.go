package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/go-trellis/trellis/internal/core"

	retry "github.com/appleboy/go-httpretry"
)

// maxBodySize caps how much of an upstream response is read.
const maxBodySize = 1 << 20

// graphError is the error envelope returned by the Instagram graph API.
type graphError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
	ErrorMessage string `json:"error_message"`
}

func (e graphError) message() string {
	switch {
	case e.Error != nil && e.Error.Message != "":
		return e.Error.Message
	case e.ErrorMessage != "":
		return e.ErrorMessage
	default:
		return ""
	}
}

// decodeResponse reads resp and unmarshals a 2xx body into out.
func decodeResponse(resp *http.Response, out any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return fmt.Errorf("%w: failed to read response: %v", ErrUpstreamExchange, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var ge graphError
		if json.Unmarshal(body, &ge) == nil && ge.message() != "" {
			return fmt.Errorf("%w: HTTP %d: %s", ErrUpstreamExchange, resp.StatusCode, ge.message())
		}
		return fmt.Errorf("%w: HTTP %d", ErrUpstreamExchange, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamResponse, err)
	}
	return nil
}

// getJSON performs a retried GET and decodes the JSON response into out.
func getJSON(
	ctx context.Context,
	rc *retry.Client,
	metrics core.Recorder,
	provider, url string,
	out any,
	opts ...retry.RequestOption,
) error {
	start := time.Now()
	resp, err := rc.Get(ctx, url, opts...)
	metrics.RecordExternalAPICall(provider, time.Since(start))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamExchange, err)
	}
	return decodeResponse(resp, out)
}
