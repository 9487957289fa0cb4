package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dudu/facerec/internal/face"
	"github.com/dudu/facerec/internal/imageio"
	"github.com/dudu/facerec/internal/matching"
)

var matchCmd = &cobra.Command{
	Use:   "match <query-image> <gallery-dir>",
	Short: "Find the gallery images showing the query face",
	Long: `Index the first face of every image below gallery-dir, then score the
first face of the query image against all of them. Matches at or above the
threshold are printed best first.

Examples:
  facerec match me.jpg ./photos
  facerec match me.jpg ./photos --best --threshold 0.6`,
	Args: cobra.ExactArgs(2),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Float64("threshold", 0, "Match threshold (default from configuration)")
	matchCmd.Flags().Bool("best", false, "Print only the best match")
	matchCmd.Flags().Int("concurrency", 4, "Number of gallery images indexed in parallel")
}

// galleryID derives a stable identity for a gallery file
func galleryID(path string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(path))
}

func runMatch(cmd *cobra.Command, args []string) error {
	threshold := thresholdFlag(cmd)
	best := mustGetBool(cmd, "best")
	concurrency := mustGetInt(cmd, "concurrency")

	paths, err := imageio.ListImages(args[1])
	if err != nil {
		return fmt.Errorf("failed to list gallery: %w", err)
	}
	if len(paths) == 0 {
		return fmt.Errorf("no images in %s", args[1])
	}

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	_, query, err := e.facesIn(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	if len(query) == 0 {
		return fmt.Errorf("no face found in %s", args[0])
	}

	bar := progressbar.NewOptions(len(paths),
		progressbar.OptionSetDescription("Indexing gallery"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("images"),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionFullWidth(),
	)

	var (
		mu      sync.Mutex
		gallery = make(map[uuid.UUID]face.FaceIndex, len(paths))
		names   = make(map[uuid.UUID]string, len(paths))
		skipped int
	)

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(concurrency, 1))
	for _, path := range paths {
		g.Go(func() error {
			defer bar.Add(1)

			_, infos, err := e.facesIn(ctx, path)
			mu.Lock()
			defer mu.Unlock()
			if err != nil || len(infos) == 0 {
				if err != nil {
					log.WithError(err).WithField("path", path).Warn("Skipping gallery image")
				}
				skipped++
				return nil
			}
			id := galleryID(path)
			gallery[id] = infos[0].Index
			names[id] = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	_ = bar.Finish()

	fmt.Printf("\nIndexed %d images (%d without a usable face)\n", len(gallery), skipped)

	if best {
		m, found, err := e.index.BestMatch(query[0].Index, gallery, threshold)
		if err != nil {
			return err
		}
		if !found {
			fmt.Println("Match not found")
			return nil
		}
		printMatches([]matching.Match{m}, names)
		return nil
	}

	matches, err := e.index.MatchOneToManyWithThreshold(query[0].Index, gallery, threshold)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		fmt.Println("Match not found")
		return nil
	}
	printMatches(matches, names)
	return nil
}

func printMatches(matches []matching.Match, names map[uuid.UUID]string) {
	for _, m := range matches {
		fmt.Printf("%.4f  %s\n", m.Score, names[m.ID])
	}
}
