package rekognition

import "errors"

var (
	// ErrInvalidCredentials indicates that AWS credentials are invalid or missing
	ErrInvalidCredentials = errors.New("invalid or missing AWS credentials")

	// ErrThrottled indicates that Rekognition rejected the call due to rate limits
	ErrThrottled = errors.New("rekognition request throttled")
)
