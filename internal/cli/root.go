package cli

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	configPath string
	storage    string
	port       string
}

// Execute runs the CLI.
func Execute() error {
	// A missing .env is the normal case.
	_ = godotenv.Load()
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	opts := &rootOptions{}
	cmd := &cobra.Command{
		Use:          "wellness-quiz",
		Short:        "Wellness questionnaire with personalized health metrics",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", envConfig, "path to YAML config")
	cmd.PersistentFlags().StringVar(&opts.storage, "storage", os.Getenv("WELLNESS_STORAGE"), "storage driver override (sqlite, redis, postgres, memory)")
	cmd.PersistentFlags().StringVar(&opts.port, "port", os.Getenv("PORT"), "port to listen on")

	cmd.AddCommand(
		newQuestionCmd(opts),
		newAnswerCmd(opts),
		newToggleCmd(opts),
		newBackCmd(opts),
		newResetCmd(opts),
		newResultsCmd(opts),
		newHistoryCmd(opts),
		newServeCmd(opts),
		newMigrateCmd(opts),
	)
	return cmd
}
