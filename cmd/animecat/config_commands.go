package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"animecat/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration utilities",
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var (
		targetPath string
		overwrite  bool
		sample     config.SampleOptions
	)

	cmd := &cobra.Command{
		Use:         "init",
		Short:       "Create a configuration file for a store backend and Shikimori user agent",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			target, err := configInitTarget(targetPath)
			if err != nil {
				return err
			}
			exists, err := configFileExists(target)
			if err != nil {
				return err
			}
			if exists && !overwrite {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			}
			if err := config.CreateSample(target, sample); err != nil {
				return fmt.Errorf("create config: %w", err)
			}

			cfg, _, _, err := config.Load(target)
			if err != nil {
				return fmt.Errorf("reload new config: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote configuration to %s\n", target)
			fmt.Fprintf(out, "Store: %s (%s)\n", cfg.Store.Backend, cfg.StorePath())
			if strings.TrimSpace(sample.UserAgent) == "" {
				fmt.Fprintln(out, "Set shikimori.user_agent (or --user-agent / SHIKIMORI_USER_AGENT) so Shikimori can identify your client.")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	cmd.Flags().StringVar(&sample.Backend, "backend", config.BackendFile, "Store backend: file, sqlite, badger, or memory")
	cmd.Flags().StringVar(&sample.UserAgent, "user-agent", "", "User-Agent sent to the Shikimori API")
	return cmd
}

// configInitTarget expands path, or returns the default config location when
// path is blank.
func configInitTarget(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		target, err := config.DefaultConfigPath()
		if err != nil {
			return "", fmt.Errorf("determine default config path: %w", err)
		}
		return target, nil
	}
	target, err := config.ExpandPath(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}
	return target, nil
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			exists, err := configFileExists(ctx.configPath)
			if err != nil {
				return err
			}
			if ctx.JSONMode() {
				return writeJSON(cmd, map[string]any{
					"path":    ctx.configPath,
					"exists":  exists,
					"valid":   true,
					"backend": cfg.Store.Backend,
					"store":   cfg.StorePath(),
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", ctx.configPath)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Store: %s (%s)\n", cfg.Store.Backend, cfg.StorePath())
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}

func configFileExists(path string) (bool, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("check config path: %w", err)
	}
	return true, nil
}
