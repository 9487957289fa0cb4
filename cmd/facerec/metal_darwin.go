//go:build darwin
// +build darwin

package main

import (
	"fmt"

	"github.com/tsawler/go-metal/checkpoints"
)

func inspectMetal(path string) error {
	fmt.Println("Importing with go-metal...")
	importer := checkpoints.NewONNXImporter()
	checkpoint, err := importer.ImportFromONNX(path)
	if err != nil {
		return fmt.Errorf("go-metal import failed, the model likely uses unsupported operations: %w", err)
	}

	fmt.Printf("  Layers: %d\n", len(checkpoint.ModelSpec.Layers))
	fmt.Printf("  Weights: %d tensors\n", len(checkpoint.Weights))
	for i, layer := range checkpoint.ModelSpec.Layers {
		fmt.Printf("  %d: %s (%s)\n", i+1, layer.Name, layer.Type)
	}
	return nil
}
