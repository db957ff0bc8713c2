package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"time"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/audit"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/match"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/preprocess"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/provider"
)

const auditSource = "gatepass"

type TemplateStoreInterface interface {
	Save(ctx context.Context, identity string, embedding domain.Embedding, enrolledAt time.Time) error
	Lookup(ctx context.Context, identity string) (domain.EnrollmentRecord, error)
}

type CredentialIssuerInterface interface {
	Issue(identity string) (domain.Credential, error)
}

type CredentialRendererInterface interface {
	RenderPNG(token string) ([]byte, error)
}

// VerifyResult is the outcome of one verification. Credential and QRCode are
// set only when Decision.Match is true.
type VerifyResult struct {
	Identity   string
	Decision   domain.MatchDecision
	Credential *domain.Credential
	QRCode     []byte
}

type GatePassService struct {
	store     TemplateStoreInterface
	detector  provider.FaceDetector
	embedder  provider.EmbeddingProvider
	issuer    CredentialIssuerInterface
	renderer  CredentialRendererInterface
	matcher   *match.Engine
	policy    provider.SelectionPolicy
	dimension int
	audit     audit.Logger
	now       func() time.Time
}

func NewGatePassService(
	store TemplateStoreInterface,
	detector provider.FaceDetector,
	embedder provider.EmbeddingProvider,
	issuer CredentialIssuerInterface,
	renderer CredentialRendererInterface,
) *GatePassService {
	return &GatePassService{
		store:     store,
		detector:  detector,
		embedder:  embedder,
		issuer:    issuer,
		renderer:  renderer,
		matcher:   match.NewEngine(),
		policy:    provider.SelectFirst,
		dimension: domain.DefaultEmbeddingDimension,
		audit:     &audit.NoOpLogger{},
		now:       time.Now,
	}
}

func (s *GatePassService) WithThreshold(threshold float64) *GatePassService {
	s.matcher = s.matcher.WithThreshold(threshold)
	return s
}

func (s *GatePassService) WithSelectionPolicy(policy provider.SelectionPolicy) *GatePassService {
	s.policy = policy
	return s
}

func (s *GatePassService) WithDimension(dimension int) *GatePassService {
	s.dimension = dimension
	return s
}

func (s *GatePassService) WithAuditLogger(logger audit.Logger) *GatePassService {
	s.audit = logger
	return s
}

func (s *GatePassService) WithClock(now func() time.Time) *GatePassService {
	s.now = now
	return s
}

// Threshold returns the distance below which a probe matches
func (s *GatePassService) Threshold() float64 {
	return s.matcher.Threshold()
}

// Dimension returns the expected embedding length
func (s *GatePassService) Dimension() int {
	return s.dimension
}

// Enroll detects a face in imageBytes and stores its embedding as the
// template for identity, replacing any previous one.
func (s *GatePassService) Enroll(ctx context.Context, identity string, imageBytes []byte) (*domain.EnrollmentRecord, error) {
	if identity == "" {
		return nil, domain.ErrInvalidIdentity
	}

	embedding, err := s.embedImage(ctx, imageBytes)
	if err != nil {
		s.logAudit(ctx, audit.EventTemplateEnrolled, identity, err, nil)
		return nil, fmt.Errorf("identity %s: %w", identity, err)
	}

	return s.save(ctx, identity, embedding)
}

// EnrollEmbedding stores a precomputed embedding for identity
func (s *GatePassService) EnrollEmbedding(ctx context.Context, identity string, embedding domain.Embedding) (*domain.EnrollmentRecord, error) {
	if identity == "" {
		return nil, domain.ErrInvalidIdentity
	}
	if len(embedding) != s.dimension {
		err := domain.ErrDimensionMismatch.WithError(
			fmt.Errorf("got %d dimensions, expected %d", len(embedding), s.dimension))
		s.logAudit(ctx, audit.EventTemplateEnrolled, identity, err, nil)
		return nil, err
	}

	return s.save(ctx, identity, embedding)
}

func (s *GatePassService) save(ctx context.Context, identity string, embedding domain.Embedding) (*domain.EnrollmentRecord, error) {
	enrolledAt := s.now().UTC()

	if err := s.store.Save(ctx, identity, embedding, enrolledAt); err != nil {
		s.logAudit(ctx, audit.EventTemplateEnrolled, identity, err, nil)
		return nil, fmt.Errorf("identity %s: save template: %w", identity, err)
	}

	s.logAudit(ctx, audit.EventTemplateEnrolled, identity, nil, map[string]string{
		"dimension": strconv.Itoa(len(embedding)),
	})

	return &domain.EnrollmentRecord{
		Identity:   identity,
		Embedding:  embedding.Clone(),
		EnrolledAt: enrolledAt,
	}, nil
}

// Verify compares the face in imageBytes against the template enrolled for
// identity and issues a credential when it matches.
func (s *GatePassService) Verify(ctx context.Context, identity string, imageBytes []byte) (*VerifyResult, error) {
	if identity == "" {
		return nil, domain.ErrInvalidIdentity
	}

	record, err := s.store.Lookup(ctx, identity)
	if err != nil {
		s.logAudit(ctx, audit.EventIdentityVerified, identity, err, nil)
		return nil, err
	}

	probe, err := s.embedImage(ctx, imageBytes)
	if err != nil {
		s.logAudit(ctx, audit.EventIdentityVerified, identity, err, nil)
		return nil, fmt.Errorf("identity %s: %w", identity, err)
	}

	return s.decide(ctx, record, probe)
}

// VerifyEmbedding is Verify for a precomputed probe embedding
func (s *GatePassService) VerifyEmbedding(ctx context.Context, identity string, probe domain.Embedding) (*VerifyResult, error) {
	if identity == "" {
		return nil, domain.ErrInvalidIdentity
	}

	record, err := s.store.Lookup(ctx, identity)
	if err != nil {
		s.logAudit(ctx, audit.EventIdentityVerified, identity, err, nil)
		return nil, err
	}

	return s.decide(ctx, record, probe)
}

func (s *GatePassService) decide(ctx context.Context, record domain.EnrollmentRecord, probe domain.Embedding) (*VerifyResult, error) {
	decision, err := s.matcher.Decide(probe, record.Embedding)
	if err != nil {
		s.logAudit(ctx, audit.EventIdentityVerified, record.Identity, err, nil)
		return nil, fmt.Errorf("identity %s: %w", record.Identity, err)
	}

	s.logAudit(ctx, audit.EventIdentityVerified, record.Identity, nil, map[string]string{
		"match":     strconv.FormatBool(decision.Match),
		"distance":  strconv.FormatFloat(decision.Distance, 'f', 6, 64),
		"threshold": strconv.FormatFloat(decision.Threshold, 'f', 6, 64),
	})

	result := &VerifyResult{
		Identity: record.Identity,
		Decision: decision,
	}
	if !decision.Match {
		return result, nil
	}

	cred, err := s.issuer.Issue(record.Identity)
	if err != nil {
		s.logAudit(ctx, audit.EventCredentialIssued, record.Identity, err, nil)
		return nil, fmt.Errorf("identity %s: issue credential: %w", record.Identity, err)
	}

	qr, err := s.renderer.RenderPNG(cred.Token)
	if err != nil {
		s.logAudit(ctx, audit.EventCredentialIssued, record.Identity, err, nil)
		return nil, fmt.Errorf("identity %s: render credential: %w", record.Identity, err)
	}

	s.logAudit(ctx, audit.EventCredentialIssued, record.Identity, nil, map[string]string{
		"token_fingerprint": fingerprint(cred.Token),
	})

	result.Credential = &cred
	result.QRCode = qr
	return result, nil
}

// embedImage runs decode, detection, face selection, preprocessing and embedding
func (s *GatePassService) embedImage(ctx context.Context, imageBytes []byte) (domain.Embedding, error) {
	img, _, err := preprocess.Decode(imageBytes)
	if err != nil {
		return nil, err
	}
	bounds := img.Bounds()

	faces, err := s.detector.DetectFaces(ctx, imageBytes, bounds.Dx(), bounds.Dy())
	if err != nil {
		return nil, fmt.Errorf("detect faces: %w", err)
	}

	face, err := provider.SelectFace(faces, s.policy)
	if err != nil {
		return nil, err
	}

	tensor, err := preprocess.ExtractAndNormalize(img, face.Region)
	if err != nil {
		return nil, err
	}

	embedding, err := s.embedder.Embed(ctx, tensor)
	if err != nil {
		return nil, fmt.Errorf("embed face: %w", err)
	}
	if len(embedding) != s.dimension {
		return nil, domain.ErrModelInvocation.WithError(
			fmt.Errorf("model returned %d dimensions, expected %d", len(embedding), s.dimension))
	}

	return embedding, nil
}

// logAudit is fire-and-forget: audit failures never fail the operation
func (s *GatePassService) logAudit(ctx context.Context, eventType audit.EventType, identity string, err error, metadata map[string]string) {
	event := audit.Event{
		EventType: eventType,
		Identity:  identity,
		Source:    auditSource,
		Success:   err == nil,
		Metadata:  metadata,
	}
	if err != nil {
		event.Error = err.Error()
	}

	_ = s.audit.Log(ctx, event)
}

// fingerprint identifies a token in logs without revealing it
func fingerprint(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:4])
}
