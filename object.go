package transfer

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	awstypes "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/internal/validation"
)

// Exists reports whether an object is already present at the given key.
func (c *Client) Exists(ctx context.Context, key string) (bool, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return false, err
	}

	_, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var notFound *awstypes.NotFound
		if stderrors.As(err, &notFound) {
			return false, nil
		}
		var apiErr smithy.APIError
		if stderrors.As(err, &apiErr) && apiErr.ErrorCode() == "NotFound" {
			return false, nil
		}
		return false, errors.NewError("exists", err).WithKey(key)
	}
	return true, nil
}

// Delete removes an uploaded object. Deleting a missing object is not an
// error on S3-compatible stores.
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := validation.ValidateObjectKey(key); err != nil {
		return err
	}

	if _, err := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	}); err != nil {
		return errors.NewError("delete", err).WithKey(key)
	}
	return nil
}

// Size returns the stored byte size of an uploaded object.
func (c *Client) Size(ctx context.Context, key string) (int64, error) {
	if err := validation.ValidateObjectKey(key); err != nil {
		return 0, err
	}

	output, err := c.s3Client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return 0, errors.NewError("size", err).WithKey(key)
	}
	return aws.ToInt64(output.ContentLength), nil
}
