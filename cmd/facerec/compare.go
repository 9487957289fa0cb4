package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var compareCmd = &cobra.Command{
	Use:   "compare <image1> <image2>",
	Short: "Compare the first face of two images",
	Long: `Extract faces from both images and compare the first face of each.
A similarity above the match threshold (FACEREC_MATCH_THRESHOLD, default 0.7)
is reported as a match.

Examples:
  facerec compare images/1_0.png images/1_1.png
  facerec compare a.jpg b.jpg --threshold 0.6`,
	Args: cobra.ExactArgs(2),
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)

	compareCmd.Flags().Float64("threshold", 0, "Match threshold (default from configuration)")
}

func runCompare(cmd *cobra.Command, args []string) error {
	threshold := thresholdFlag(cmd)

	e, err := openEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	log.Info("Extracting face data...")
	_, first, err := e.facesIn(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	_, second, err := e.facesIn(cmd.Context(), args[1])
	if err != nil {
		return err
	}
	if len(first) == 0 {
		return fmt.Errorf("no face found in %s", args[0])
	}
	if len(second) == 0 {
		return fmt.Errorf("no face found in %s", args[1])
	}

	similarity, err := e.index.MatchOneToOne(first[0].Index, second[0].Index)
	if err != nil {
		return err
	}

	fmt.Printf("Similarity between faces = %.4f\n", similarity)
	fmt.Println(verdict(similarity, threshold))
	return nil
}

// verdict reports a match only when similarity is strictly above threshold
func verdict(similarity, threshold float32) string {
	if similarity > threshold {
		return "Face match found!"
	}
	return "Match not found"
}

// thresholdFlag returns --threshold when set, otherwise the configured value
func thresholdFlag(cmd *cobra.Command) float32 {
	if !cmd.Flags().Changed("threshold") {
		return cfg.MatchThreshold
	}
	return float32(mustGetFloat64(cmd, "threshold"))
}
