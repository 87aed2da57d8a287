package cmd

import (
	"context"
	"log/slog"
	"os"

	"github.com/shiroyk/cookiejar"
	"github.com/shiroyk/cookiejar/lib/config"
	"github.com/shiroyk/cookiejar/lib/logger"
	"github.com/shiroyk/cookiejar/persist"
	"github.com/spf13/cobra"
)

var (
	configArg    string
	configGenArg string
	debugArg     bool
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "cookiejar configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if configGenArg != "" {
			if err := config.WriteConfig(configGenArg, config.DefaultConfig()); err != nil {
				return err
			}
			cmd.Printf("configuration written to %s\n", configGenArg)
		}
		return nil
	},
}

func init() {
	configCmd.Flags().StringVarP(&configGenArg, "gen", "g", "", "generate default configuration file")
	rootCmd.PersistentFlags().StringVar(&configArg, "config", config.DefaultPath, "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debugArg, "debug", "d", false, "output the debug log")
	rootCmd.AddCommand(configCmd)
}

// initConfig installs the logger and stores the configuration in the
// context of the executing command.
func initConfig(cmd *cobra.Command, _ []string) {
	level := slog.LevelInfo
	if debugArg {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(logger.NewConsoleHandler(os.Stderr, level)))

	cfg, err := config.ReadConfig(configArg)
	if err != nil {
		slog.Error("error reading config file", "error", err)
		cfg = config.DefaultConfig()
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(config.NewContext(ctx, cfg))
}

// openJar opens the configured persistor and returns a jar over it,
// the returned function closes the persistor.
func openJar(ctx context.Context) (*cookiejar.Jar, func(), error) {
	cfg := config.FromContext(ctx)
	persistor, err := persist.Open(cfg.Persist)
	if err != nil {
		return nil, nil, err
	}
	jar := cookiejar.New(cookiejar.NewSetCache(), persistor, cookiejar.Options{Policy: &cfg.Jar})
	return jar, func() {
		if err := persist.Close(persistor); err != nil {
			slog.Error("error closing cookie persistor", "error", err)
		}
	}, nil
}
