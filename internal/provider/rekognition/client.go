package rekognition

import (
	"context"
	"errors"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/smithy-go"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

const (
	errCodeAccessDenied       = "AccessDeniedException"
	errCodeInvalidParameter   = "InvalidParameterException"
	errCodeInvalidImageFormat = "InvalidImageFormatException"
	errCodeImageTooLarge      = "ImageTooLargeException"
	errCodeThrottling         = "ThrottlingException"
	errCodeThroughput         = "ProvisionedThroughputExceededException"
)

// RekognitionAPI is the subset of the Rekognition client used by Detector
type RekognitionAPI interface {
	DetectFaces(ctx context.Context, params *rekognition.DetectFacesInput, optFns ...func(*rekognition.Options)) (*rekognition.DetectFacesOutput, error)
}

// NewClient creates a Rekognition client for the configured region.
// It uses the AWS default credential chain to authenticate
func NewClient(ctx context.Context, cfg Config) (*rekognition.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return rekognition.NewFromConfig(awsCfg), nil
}

// mapAPIError translates Rekognition API error codes into errors callers can match
func mapAPIError(err error) error {
	var apiErr smithy.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("detect faces: %w", err)
	}

	switch apiErr.ErrorCode() {
	case errCodeInvalidImageFormat, errCodeImageTooLarge, errCodeInvalidParameter:
		return domain.ErrInvalidImage.WithError(err)
	case errCodeAccessDenied:
		return fmt.Errorf("detect faces: %w", ErrInvalidCredentials)
	case errCodeThrottling, errCodeThroughput:
		return fmt.Errorf("detect faces: %w", ErrThrottled)
	}
	return fmt.Errorf("detect faces: %w", err)
}
