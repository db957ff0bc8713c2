// Package cli implements the gatepass command line tool.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/audit"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/config"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/face"
	"github.com/nilesh0210977/facial-recognition-implementation/internal/service"
)

// Service is the part of the gate pass service the commands drive
type Service interface {
	Enroll(ctx context.Context, identity string, imageBytes []byte) (*domain.EnrollmentRecord, error)
	Verify(ctx context.Context, identity string, imageBytes []byte) (*service.VerifyResult, error)
}

// Wiring builds the service for one command run. The returned func releases
// whatever the service holds open.
type Wiring func(ctx context.Context) (Service, func(), error)

// NewRootCommand assembles the command tree. A nil wiring uses configuration
// from the environment.
func NewRootCommand(wire Wiring) *cobra.Command {
	if wire == nil {
		wire = wireFromEnv
	}

	root := &cobra.Command{
		Use:   "gatepass",
		Short: "Enroll faces and issue one-time QR gate passes",
		Long: `gatepass enrolls face templates and verifies probe images against them.
A successful verification issues a fresh one-time credential rendered as a QR code.

Configuration is read from the environment (and a .env file when present),
the same variables the API server uses.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newEnrollCommand(wire),
		newVerifyCommand(wire),
		newEnrollDirCommand(wire),
	)

	return root
}

func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional
	_ = godotenv.Load()
}

func wireFromEnv(ctx context.Context) (Service, func(), error) {
	return wireWithLogs(ctx, os.Stderr)
}

// wireWithLogs keeps log output off stdout, which carries command results
func wireWithLogs(ctx context.Context, logs io.Writer) (Service, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	logger := config.NewLoggerTo(cfg.Environment, logs)

	gatePass, err := face.NewGatePass(ctx, cfg, audit.NewSlogLogger(logger))
	if err != nil {
		return nil, nil, err
	}

	return gatePass.Service, gatePass.Close, nil
}
