package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	ort "github.com/yalue/onnxruntime_go"

	"github.com/dudu/facerec/internal/inference"
	"github.com/dudu/facerec/internal/models"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Model bundle tools",
}

var modelsInspectCmd = &cobra.Command{
	Use:   "inspect <model.onnx>",
	Short: "Print the tensors and metadata of an ONNX model",
	Long: `Load a model with ONNX Runtime and print its inputs, outputs and
metadata. With --metal the model is also imported with go-metal, which is
only available on macOS.

Examples:
  facerec models inspect models/fd/retina50.onnx
  facerec models inspect models/fi/arcface50.onnx --metal`,
	Args: cobra.ExactArgs(1),
	RunE: runModelsInspect,
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsInspectCmd)

	modelsInspectCmd.Flags().Bool("metal", false, "Also try importing the model with go-metal")
}

func runModelsInspect(cmd *cobra.Command, args []string) error {
	path := args[0]

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read model: %w", err)
	}

	if err := inference.Initialize(cfg.ORTLibrary); err != nil {
		return err
	}
	defer inference.Shutdown()

	info, err := models.Inspect(data)
	if err != nil {
		return err
	}

	fmt.Printf("Inputs (%d):\n", len(info.Inputs))
	for _, t := range info.Inputs {
		fmt.Printf("  %s\n", t)
	}
	fmt.Printf("\nOutputs (%d):\n", len(info.Outputs))
	for _, t := range info.Outputs {
		fmt.Printf("  %s\n", t)
	}

	printMetadata(path)

	if mustGetBool(cmd, "metal") {
		fmt.Println()
		return inspectMetal(path)
	}
	return nil
}

func printMetadata(path string) {
	fmt.Println("\nMetadata:")
	metadata, err := ort.GetModelMetadata(path)
	if err != nil {
		fmt.Printf("  (Could not read metadata: %v)\n", err)
		return
	}
	defer metadata.Destroy()

	if producer, err := metadata.GetProducerName(); err == nil {
		fmt.Printf("  Producer: %s\n", producer)
	}
	if version, err := metadata.GetVersion(); err == nil {
		fmt.Printf("  Version: %d\n", version)
	}
	if domain, err := metadata.GetDomain(); err == nil {
		fmt.Printf("  Domain: %s\n", domain)
	}
	if desc, err := metadata.GetDescription(); err == nil {
		fmt.Printf("  Description: %s\n", desc)
	}
}
