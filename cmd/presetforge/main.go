package main

import (
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}

var (
	rootCmd = &cobra.Command{
		Use:   "presetforge",
		Short: "Generate .cube color presets from images and apply them",
		Long: `presetforge builds a 3D LUT (.cube) toned toward an image's dominant
color, reduces LUTs to a per channel tone shift and applies that shift
to images. It runs as a CLI or as an HTTP service.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := loadConfig(envFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg = c
			setupLogging(os.Stderr, cfg.Debug)
			logrus.Debugf("config: %+v", cfg)
			return nil
		},
	}
	envFile string
	cfg     Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file with PROJECT_NAME, ENVIRONMENT, DEBUG, ...")
	rootCmd.PersistentFlags().String("data-dir", ".", "root of lut_exports, uploads, processed and outputs")
	rootCmd.PersistentFlags().Bool("debug", false, "debug logging")
	rootCmd.PersistentFlags().Int("lut-size", 33, "grid size of generated LUTs")
	rootCmd.PersistentFlags().String("title", "", "TITLE written into generated LUTs")

	rootCmd.AddCommand(generateCmd, extractCmd, applyCmd, analyzeCmd, serveCmd)
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		logrus.WithError(err).Error("presetforge failed")
	}
	return err
}
