package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kpauljoseph/cardsheet/internal/config"
	"github.com/kpauljoseph/cardsheet/internal/profile"
	"github.com/kpauljoseph/cardsheet/pkg/logger"
)

const defaultConfigFile = "cardsheet.yaml"

var (
	configPath string
	dataDir    string
	verbose    bool
	debug      bool

	log *logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "cardsheet",
	Short: "Lay out card images on print-ready sheets",
	Long: `cardsheet turns folders of card fronts and backs into a print-ready PDF
or page images, with cards packed in a centered grid, optional registration
marks and printer offset correction from saved calibration profiles.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := logger.LevelInfo
		switch {
		case debug:
			level = logger.LevelTrace
		case verbose:
			level = logger.LevelDebug
		}
		log = logger.New(logger.WithPrefix("[cardsheet] "), logger.WithLevel(level))
		log.Debug("Verbose logging enabled")
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file (default ./"+defaultConfigFile+" when present)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "directory holding offset profiles (overrides config and CARDSHEET_DATA_DIR)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug mode with trace logging")
}

func initConfig() {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()
}

// loadConfig reads --config, or ./cardsheet.yaml when present, or the defaults.
func loadConfig() (*config.Config, error) {
	path := configPath
	if path == "" {
		if _, err := os.Stat(defaultConfigFile); err != nil {
			cfg := config.Default()
			applyDataDir(cfg)
			return cfg, nil
		}
		path = defaultConfigFile
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	log.Debug("Loaded config from %s", path)
	applyDataDir(cfg)
	return cfg, nil
}

func applyDataDir(cfg *config.Config) {
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
}

func openStore() (*profile.Store, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return profile.NewStore(cfg.DataDir, log), nil
}
