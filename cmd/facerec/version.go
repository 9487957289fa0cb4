package main

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/dudu/facerec/internal/imageio"
	"github.com/dudu/facerec/internal/matching"
)

// Build metadata variables, set by -ldflags at compile time.
var (
	Version   = "dev"
	CommitSHA = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("facerec %s\n", Version)
		fmt.Printf("  Commit:      %s\n", CommitSHA)
		fmt.Printf("  Built:       %s\n", BuildDate)
		fmt.Printf("  Platform:    %s/%s\n", runtime.GOOS, runtime.GOARCH)
		fmt.Printf("  OpenCV:      %t\n", imageio.OpenCVEnabled)
		fmt.Printf("  Index types: %v\n", matching.SupportedIndexTypes())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
