package docs

import (
	"github.com/go-swagno/swagno"
	"github.com/go-swagno/swagno/components/endpoint"
	"github.com/go-swagno/swagno/components/http/response"
	"github.com/go-swagno/swagno/components/mime"
)

type EnrollResponse struct {
	Identity   string `json:"identity" example:"alice"`
	EnrolledAt string `json:"enrolled_at" example:"2024-01-01T00:00:00Z"`
	Dimension  int    `json:"dimension" example:"512"`
}

type CredentialData struct {
	Token    string `json:"token" example:"0f8fad5b-d9cb-469f-a165-70867728950e"`
	Identity string `json:"identity" example:"alice"`
	IssuedAt string `json:"issued_at" example:"2024-01-01T00:00:00Z"`
	QRPNG    string `json:"qr_png" example:"iVBORw0KGgo..."`
}

type VerifyResponse struct {
	Identity   string          `json:"identity" example:"alice"`
	Match      bool            `json:"match" example:"true"`
	Distance   float64         `json:"distance" example:"0.42"`
	Threshold  float64         `json:"threshold" example:"0.6"`
	Credential *CredentialData `json:"credential,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code" example:"VALIDATION_FAILED"`
	Message string `json:"message" example:"Request validation failed"`
}

type HealthResponse struct {
	Status  string `json:"status" example:"ok"`
	Version string `json:"version,omitempty" example:"0.1.0"`
}

var multipart = []mime.MIME{mime.MIME("multipart/form-data")}

func NewSwagger() *swagno.Swagger {
	sw := swagno.New(swagno.Config{
		Title:       "Gate Pass API",
		Version:     "v1.0.0",
		Description: "Face enrollment and verification issuing one-time QR gate passes",
		Host:        "localhost:3000",
		Path:        "/",
	})

	endpoints := []*endpoint.EndPoint{
		endpoint.New(
			endpoint.POST,
			"/v1/enrollments",
			endpoint.WithTags("GatePass"),
			endpoint.WithSummary("Enroll a face template"),
			endpoint.WithDescription("Multipart form with fields identity and image. Replaces any template already stored for identity."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(EnrollResponse{}, "201", "Template stored"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "INVALID_IDENTITY", Message: "Identity must be a non-empty string"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "INVALID_REGION", Message: "Face region is empty after clipping to image bounds"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "MODEL_INVOCATION_ERROR", Message: "Embedding model failed to execute"}, "502", "Bad Gateway"),
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Template store could not be reached"}, "503", "Service Unavailable"),
			}),
		),

		endpoint.New(
			endpoint.POST,
			"/v1/verifications",
			endpoint.WithTags("GatePass"),
			endpoint.WithSummary("Verify a face and issue a gate pass"),
			endpoint.WithDescription("Multipart form with fields identity and image. On a match the response carries a fresh credential and its QR code as base64 PNG."),
			endpoint.WithConsume(multipart),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(VerifyResponse{}, "200", "Verification completed"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(ErrorResponse{Code: "TEMPLATE_NOT_FOUND", Message: "No enrollment found for identity"}, "404", "Not Found"),
				response.New(ErrorResponse{Code: "NO_FACE_DETECTED", Message: "No face detected in the image"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "DIMENSION_MISMATCH", Message: "Embedding dimensions do not match"}, "422", "Unprocessable Entity"),
				response.New(ErrorResponse{Code: "RATE_LIMIT_EXCEEDED", Message: "Rate limit exceeded, please try again later"}, "429", "Too Many Requests"),
				response.New(ErrorResponse{Code: "ENCODING_ERROR", Message: "Credential could not be encoded"}, "500", "Internal Server Error"),
				response.New(ErrorResponse{Code: "STORE_UNAVAILABLE", Message: "Template store could not be reached"}, "503", "Service Unavailable"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/health",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Liveness probe"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{}, "200", "Process is up"),
			}),
		),

		endpoint.New(
			endpoint.GET,
			"/ready",
			endpoint.WithTags("Health"),
			endpoint.WithSummary("Readiness probe"),
			endpoint.WithDescription("Pings the configured template store"),
			endpoint.WithProduce([]mime.MIME{mime.JSON}),
			endpoint.WithSuccessfulReturns([]response.Response{
				response.New(HealthResponse{Status: "ready"}, "200", "Store reachable"),
			}),
			endpoint.WithErrors([]response.Response{
				response.New(HealthResponse{Status: "unavailable"}, "503", "Store unreachable"),
			}),
		),
	}

	sw.AddEndpoints(endpoints)

	return sw
}
