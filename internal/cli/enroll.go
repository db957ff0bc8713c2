package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

func newEnrollCommand(wire Wiring) *cobra.Command {
	var identity, imagePath string

	cmd := &cobra.Command{
		Use:   "enroll",
		Short: "Enroll the face in an image under an identity",
		Long: `Detect the face in an image and store its embedding as the template for
an identity. An existing template for the identity is replaced.

Examples:
  gatepass enroll --identity alice --image alice.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			identity = strings.TrimSpace(identity)

			imageBytes, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("read image: %w", err)
			}

			svc, release, err := wire(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			record, err := svc.Enroll(cmd.Context(), identity, imageBytes)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Enrolled %s (%d dimensions) at %s\n",
				record.Identity, len(record.Embedding), record.EnrolledAt.Format(time.RFC3339))
			return nil
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Identity to enroll")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to the enrollment image")
	_ = cmd.MarkFlagRequired("identity")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
