package transfer

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/internal/validation"
	"github.com/objstream/transfer/transfertypes"
)

// PresignedURL mints a time-limited retrieval URL for an uploaded object.
// The expiry is clamped to [1h, 7d]; zero uses the client default.
func (c *Client) PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return "", err
	}
	if c.presignClient == nil {
		return "", errors.NewError("presign", errors.ErrInvalidInput).
			WithKey(key).
			WithMessage("presigning is not available on this client")
	}

	expiry = clampExpiry(expiry, c.cfg.PresignExpiry)

	req, err := c.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}, s3.WithPresignExpires(expiry))
	if err != nil {
		return "", errors.NewError("presign", err).WithKey(key)
	}

	return req.URL, nil
}

// clampExpiry bounds a retrieval URL lifetime, substituting the fallback
// (or the package default) when none is given.
func clampExpiry(expiry, fallback time.Duration) time.Duration {
	if expiry <= 0 {
		expiry = fallback
	}
	if expiry <= 0 {
		expiry = transfertypes.DefaultPresignExpiry
	}
	if expiry < transfertypes.MinPresignExpiry {
		return transfertypes.MinPresignExpiry
	}
	if expiry > transfertypes.MaxPresignExpiry {
		return transfertypes.MaxPresignExpiry
	}
	return expiry
}
