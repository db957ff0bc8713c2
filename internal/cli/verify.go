package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// ErrNoMatch is returned when the probe face does not match the template
var ErrNoMatch = errors.New("face does not match enrolled template")

func newVerifyCommand(wire Wiring) *cobra.Command {
	var identity, imagePath, qrOut string

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Verify a face and write the issued gate pass QR code",
		Long: `Compare the face in an image with the template enrolled for an identity.
On a match a new one-time credential is issued and its QR code is written as PNG.

Examples:
  gatepass verify --identity alice --image probe.jpg
  gatepass verify --identity alice --image probe.jpg --qr-out pass.png`,
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

			result, err := svc.Verify(cmd.Context(), identity, imageBytes)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !result.Decision.Match {
				fmt.Fprintf(out, "No match for %s: distance %.4f, threshold %.4f\n",
					result.Identity, result.Decision.Distance, result.Decision.Threshold)
				return ErrNoMatch
			}

			path := qrOut
			if path == "" {
				path = result.Identity + "-pass.png"
			}
			if err := os.WriteFile(path, result.QRCode, 0o600); err != nil {
				return fmt.Errorf("write qr code: %w", err)
			}

			fmt.Fprintf(out, "Match for %s: distance %.4f, threshold %.4f\n",
				result.Identity, result.Decision.Distance, result.Decision.Threshold)
			fmt.Fprintf(out, "Credential %s issued at %s\n",
				result.Credential.Token, result.Credential.IssuedAt.Format(time.RFC3339))
			fmt.Fprintf(out, "QR code written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().StringVar(&identity, "identity", "", "Identity to verify against")
	cmd.Flags().StringVar(&imagePath, "image", "", "Path to the probe image")
	cmd.Flags().StringVar(&qrOut, "qr-out", "", "Where to write the QR PNG (default <identity>-pass.png)")
	_ = cmd.MarkFlagRequired("identity")
	_ = cmd.MarkFlagRequired("image")

	return cmd
}
