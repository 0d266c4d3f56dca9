// Package validation provides centralized input validation logic.
// This includes destination key validation, bucket name checks, and
// pipeline tuning bounds.
//
// All user inputs are validated before any network call is made so that
// configuration mistakes surface as ErrInvalidInput rather than opaque
// service errors mid-transfer.
package validation

import (
	"path/filepath"
	"strings"
	"unicode"

	"github.com/objstream/transfer/errors"
	"github.com/objstream/transfer/transfertypes"
)

// ValidateBucketName validates that a bucket name is DNS-compliant.
// Returns ErrInvalidInput if the bucket name is invalid.
func ValidateBucketName(bucket string) error {
	if bucket == "" {
		return errors.NewError("validateBucketName", errors.ErrInvalidInput).
			WithMessage("bucket name cannot be empty")
	}

	if len(bucket) < 3 || len(bucket) > 63 {
		return errors.NewError("validateBucketName", errors.ErrInvalidInput).
			WithMessage("bucket name must be between 3 and 63 characters long")
	}

	for _, char := range bucket {
		if !isValidBucketChar(char) {
			return errors.NewError("validateBucketName", errors.ErrInvalidInput).
				WithMessage("bucket name can only contain lowercase letters, numbers, dots, and hyphens")
		}
	}

	if bucket[0] == '-' || bucket[0] == '.' || bucket[len(bucket)-1] == '-' || bucket[len(bucket)-1] == '.' {
		return errors.NewError("validateBucketName", errors.ErrInvalidInput).
			WithMessage("bucket name cannot start or end with a hyphen or dot")
	}

	if hasAdjacentSpecialChars(bucket) {
		return errors.NewError("validateBucketName", errors.ErrInvalidInput).
			WithMessage("bucket name cannot contain two adjacent periods or hyphens")
	}

	return nil
}

// ValidateObjectKey validates that a destination key is acceptable.
// This includes preventing path traversal attacks and ensuring valid characters.
func ValidateObjectKey(key string) error {
	if key == "" {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot be empty")
	}

	if hasPathTraversal(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain path traversal sequences")
	}

	// S3-compatible stores support keys up to 1024 bytes
	if len(key) > 1024 {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot exceed 1024 characters")
	}

	if hasControlCharacters(key) {
		return errors.NewError("validateObjectKey", errors.ErrInvalidObjectKey).
			WithKey(key).
			WithMessage("object key cannot contain control characters")
	}

	return nil
}

// ValidatePipeline validates the tuning parameters of a transfer before it
// starts: part size bounds, resulting part count, and worker pool size.
func ValidatePipeline(totalSize, partSize int64, concurrency, maxAttempts int) error {
	if totalSize < 0 {
		return errors.NewError("validatePipeline", errors.ErrInvalidInput).
			WithMessage("total size cannot be negative")
	}

	if partSize < transfertypes.MinPartSize {
		return errors.NewError("validatePipeline", errors.ErrInvalidInput).
			WithMessage("part size must be at least 5MB")
	}

	numParts := (totalSize + partSize - 1) / partSize
	if numParts > transfertypes.MaxParts {
		return errors.NewError("validatePipeline", errors.ErrInvalidInput).
			WithMessage("part size too small for file: more than 10000 parts")
	}

	if concurrency <= 0 {
		return errors.NewError("validatePipeline", errors.ErrInvalidInput).
			WithMessage("concurrency must be positive")
	}

	if maxAttempts <= 0 {
		return errors.NewError("validatePipeline", errors.ErrInvalidInput).
			WithMessage("max attempts must be positive")
	}

	return nil
}

// isValidBucketChar checks if a character is valid in a bucket name
func isValidBucketChar(char rune) bool {
	return (char >= '0' && char <= '9') || (char >= 'a' && char <= 'z') || char == '.' || char == '-'
}

// hasAdjacentSpecialChars checks for adjacent special characters
func hasAdjacentSpecialChars(bucket string) bool {
	for i := 0; i < len(bucket)-1; i++ {
		if (bucket[i] == '.' && bucket[i+1] == '.') || (bucket[i] == '-' && bucket[i+1] == '-') {
			return true
		}
	}
	return false
}

// hasPathTraversal checks for path traversal attempts in object keys
func hasPathTraversal(key string) bool {
	if strings.Contains(key, "..") {
		return true
	}

	cleaned := filepath.Clean(key)
	if strings.HasPrefix(cleaned, "..") {
		return true
	}
	if strings.HasPrefix(cleaned, "/") {
		return true
	}

	// Windows-style absolute paths
	if len(cleaned) >= 3 && cleaned[1] == ':' && (cleaned[2] == '\\' || cleaned[2] == '/') {
		return true
	}

	return false
}

// hasControlCharacters checks for control characters in the key
func hasControlCharacters(key string) bool {
	for _, char := range key {
		if unicode.IsControl(char) {
			return true
		}
	}
	return false
}
