package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".webp": true,
}

type enrollFailure struct {
	identity string
	err      error
}

func newEnrollDirCommand(wire Wiring) *cobra.Command {
	var dir string
	var concurrency int

	cmd := &cobra.Command{
		Use:   "enroll-dir",
		Short: "Enroll every image in a directory",
		Long: `Enroll each image in a directory, using the file name without its extension
as the identity. Subdirectories and unsupported files are skipped.

Examples:
  gatepass enroll-dir --dir ./faces
  gatepass enroll-dir --dir ./faces --concurrency 8`,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := listImages(dir)
			if err != nil {
				return err
			}
			if len(files) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No images found in %s\n", dir)
				return nil
			}

			svc, release, err := wire(cmd.Context())
			if err != nil {
				return err
			}
			defer release()

			bar := progressbar.NewOptions(len(files),
				progressbar.OptionSetWriter(cmd.ErrOrStderr()),
				progressbar.OptionSetDescription("Enrolling"),
				progressbar.OptionShowCount(),
				progressbar.OptionShowIts(),
				progressbar.OptionSetItsString("faces"),
				progressbar.OptionShowElapsedTimeOnFinish(),
				progressbar.OptionFullWidth(),
			)

			var (
				mu       sync.Mutex
				failures []enrollFailure
			)

			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(max(concurrency, 1))

			for _, path := range files {
				g.Go(func() error {
					defer func() { _ = bar.Add(1) }()

					identity := identityFromPath(path)
					imageBytes, err := os.ReadFile(path)
					if err == nil {
						_, err = svc.Enroll(ctx, identity, imageBytes)
					}
					if err != nil {
						mu.Lock()
						failures = append(failures, enrollFailure{identity: identity, err: err})
						mu.Unlock()
					}
					return nil
				})
			}
			_ = g.Wait()
			_ = bar.Finish()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "\nEnrolled %d of %d\n", len(files)-len(failures), len(files))

			if len(failures) > 0 {
				sort.Slice(failures, func(i, j int) bool { return failures[i].identity < failures[j].identity })
				fmt.Fprintf(out, "Errors: %d\n", len(failures))
				for _, f := range failures {
					fmt.Fprintf(out, "  - %s: %v\n", f.identity, f.err)
				}
				return fmt.Errorf("%d of %d enrollments failed", len(failures), len(files))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", "", "Directory of enrollment images")
	cmd.Flags().IntVar(&concurrency, "concurrency", 4, "Number of parallel enrollments")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		files = append(files, filepath.Join(dir, entry.Name()))
	}

	return files, nil
}

func identityFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
