package handler

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/service"
)

const (
	maxImageSize = 10 * 1024 * 1024 // 10MB
	timeLayout   = time.RFC3339Nano
)

var validImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/webp": true,
	"image/bmp":  true,
}

type GatePassService interface {
	Enroll(ctx context.Context, identity string, imageBytes []byte) (*domain.EnrollmentRecord, error)
	Verify(ctx context.Context, identity string, imageBytes []byte) (*service.VerifyResult, error)
}

type GatePassHandler struct {
	service GatePassService
}

func NewGatePassHandler(service GatePassService) *GatePassHandler {
	return &GatePassHandler{service: service}
}

type EnrollResponse struct {
	Identity   string `json:"identity"`
	EnrolledAt string `json:"enrolled_at"`
	Dimension  int    `json:"dimension"`
}

type CredentialResponse struct {
	Token    string `json:"token"`
	Identity string `json:"identity"`
	IssuedAt string `json:"issued_at"`
	QRPNG    string `json:"qr_png"`
}

type VerifyResponse struct {
	Identity   string              `json:"identity"`
	Match      bool                `json:"match"`
	Distance   float64             `json:"distance"`
	Threshold  float64             `json:"threshold"`
	Credential *CredentialResponse `json:"credential,omitempty"`
}

// Enroll POST /v1/enrollments
func (h *GatePassHandler) Enroll(c *fiber.Ctx) error {
	identity, imageBytes, err := extractEnrollmentForm(c)
	if err != nil {
		return fmt.Errorf("enroll: %w", err)
	}

	record, err := h.service.Enroll(c.Context(), identity, imageBytes)
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(EnrollResponse{
		Identity:   record.Identity,
		EnrolledAt: record.EnrolledAt.Format(timeLayout),
		Dimension:  len(record.Embedding),
	})
}

// Verify POST /v1/verifications
func (h *GatePassHandler) Verify(c *fiber.Ctx) error {
	identity, imageBytes, err := extractEnrollmentForm(c)
	if err != nil {
		return fmt.Errorf("verify: %w", err)
	}

	result, err := h.service.Verify(c.Context(), identity, imageBytes)
	if err != nil {
		return err
	}

	resp := VerifyResponse{
		Identity:  result.Identity,
		Match:     result.Decision.Match,
		Distance:  result.Decision.Distance,
		Threshold: result.Decision.Threshold,
	}
	if result.Credential != nil {
		resp.Credential = &CredentialResponse{
			Token:    result.Credential.Token,
			Identity: result.Credential.Identity,
			IssuedAt: result.Credential.IssuedAt.Format(timeLayout),
			QRPNG:    base64.StdEncoding.EncodeToString(result.QRCode),
		}
	}

	return c.JSON(resp)
}

func extractEnrollmentForm(c *fiber.Ctx) (string, []byte, error) {
	identity := strings.TrimSpace(c.FormValue("identity"))
	if identity == "" {
		return "", nil, domain.ErrInvalidIdentity.WithError(errors.New("identity is required"))
	}

	imageBytes, err := extractAndValidateImage(c)
	if err != nil {
		return "", nil, err
	}

	return identity, imageBytes, nil
}

func extractAndValidateImage(c *fiber.Ctx) ([]byte, error) {
	file, err := c.FormFile("image")
	if err != nil {
		return nil, domain.ErrValidationFailed.WithError(err)
	}

	if file.Size == 0 || file.Size > maxImageSize {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("image size %d out of range", file.Size))
	}

	contentType := file.Header.Get("Content-Type")
	if !validImageTypes[contentType] {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("unsupported content type %q", contentType))
	}

	f, err := file.Open()
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}
	defer func() {
		_ = f.Close()
	}()

	imageBytes, err := io.ReadAll(f)
	if err != nil {
		return nil, domain.ErrInvalidImage.WithError(err)
	}

	return imageBytes, nil
}
