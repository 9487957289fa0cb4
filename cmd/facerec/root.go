package main

import (
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dudu/facerec/internal/config"
	"github.com/dudu/facerec/internal/logging"
)

var (
	configPath string
	cfg        *config.Config
	log        *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "facerec",
	Short: "Face detection, description and matching on ONNX Runtime",
	Long: `facerec extracts faces from images, describes each one with an
embedding, mask status, gender and age, and compares embeddings.

Models are read from the models directory (FACEREC_MODELS_DIR, default
"models") using the published bundle layout.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		log, err = logging.New(cfg.Log.Level, cfg.Log.Format)
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML configuration file")
}
