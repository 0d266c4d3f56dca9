package sink

import (
	"context"
	stderrors "errors"
	"net"
	"time"

	"github.com/aws/smithy-go"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// transientCodes are service error codes worth retrying. Everything in this
// set indicates load or a momentary hiccup on the store side.
var transientCodes = map[string]bool{
	"InternalError":        true,
	"SlowDown":             true,
	"ServiceUnavailable":   true,
	"RequestTimeout":       true,
	"Throttling":           true,
	"ThrottlingException":  true,
	"RequestLimitExceeded": true,
	"TooManyRequests":      true,
}

// nonTransientCodes are configuration and authorization failures. Retrying
// these wastes attempts: the request will fail the same way every time.
var nonTransientCodes = map[string]bool{
	"AccessDenied":                 true,
	"NoSuchBucket":                 true,
	"NoSuchUpload":                 true,
	"InvalidAccessKeyId":           true,
	"SignatureDoesNotMatch":        true,
	"InvalidPart":                  true,
	"EntityTooSmall":               true,
	"EntityTooLarge":               true,
	"MalformedXML":                 true,
	"InvalidBucketName":            true,
	"MethodNotAllowed":             true,
	"InvalidRequest":               true,
	"AuthorizationHeaderMalformed": true,
}

// isTransient reports whether an upload attempt failure is worth retrying.
// Attempt timeouts and network-level errors count as transient; a cancelled
// parent context does not (the caller checks that separately and stops).
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, context.Canceled) {
		return false
	}
	// Per-attempt deadline fired. The part may succeed with a fresh attempt.
	if stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}

	var apiErr smithy.APIError
	if stderrors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		if transientCodes[code] {
			return true
		}
		if nonTransientCodes[code] {
			return false
		}
		// An unrecognized service code is most likely a request problem.
		var respErr *smithyhttp.ResponseError
		if stderrors.As(err, &respErr) {
			status := respErr.HTTPStatusCode()
			return status >= 500 || status == 429
		}
		return false
	}

	var netErr net.Error
	if stderrors.As(err, &netErr) {
		return true
	}

	// Connection resets and other transport failures surface as plain
	// errors without an API code. Treat them as retryable.
	return true
}

// sleepBackoff waits base*2^attempt or until the context is cancelled.
func sleepBackoff(ctx context.Context, base time.Duration, attempt int) error {
	delay := base << uint(attempt)

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
