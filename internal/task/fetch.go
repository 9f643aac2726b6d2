// Package task provides ready-made interruptible operations for the sigrace
// runner. Each constructor returns a [sigrace.Op]; the caller decides where
// to apply [sigrace.WithInterruptAsError].
package task

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"tools.zach/dev/sigrace"
)

// maxBodyBytes bounds how much of a response body the fetch step reads.
const maxBodyBytes = 4 << 20

// Fetch returns an operation that downloads url with GET, retrying up to
// retryMax times on connection errors and retryable status codes. Each
// attempt is bounded by timeout; the operation as a whole stops when its
// context is cancelled, which is how an interrupted race abandons an
// in-flight download.
func Fetch(url string, retryMax int, timeout time.Duration) sigrace.Op[[]byte] {
	return func(ctx context.Context) ([]byte, error) {
		client := retryablehttp.NewClient()
		client.RetryMax = retryMax
		client.RetryWaitMin = 100 * time.Millisecond
		client.RetryWaitMax = time.Second
		client.HTTPClient.Timeout = timeout
		client.Logger = nil // errors are reported through the operation result

		req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, fmt.Errorf("GET %s: %w", url, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("GET %s: status %d", url, resp.StatusCode)
		}
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return body, nil
	}
}
