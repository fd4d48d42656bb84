package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"framextract/internal/config"
	"framextract/internal/failures"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:         "config",
		Short:       "Configuration utilities",
		Annotations: map[string]string{"skipConfigLoad": "true"},
	}

	configCmd.AddCommand(newConfigValidateCommand(ctx))
	configCmd.AddCommand(newConfigInitCommand())

	return configCmd
}

func newConfigInitCommand() *cobra.Command {
	var targetPath string
	var overwrite bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a sample configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				target string
				err    error
			)
			if trimmed := strings.TrimSpace(targetPath); trimmed == "" {
				target, err = config.DefaultConfigPath()
			} else {
				target, err = config.ExpandPath(trimmed)
			}
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}

			if !overwrite {
				if _, err := os.Stat(target); err == nil {
					return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
				} else if !os.IsNotExist(err) {
					return fmt.Errorf("check config path: %w", err)
				}
			}

			if err := config.CreateSample(target); err != nil {
				return fmt.Errorf("create sample config: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
			fmt.Fprintln(out, "Edit [paths] to point at your annotations, videos and images before using managed mode.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "path", "p", "", "Destination for the configuration file")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Overwrite existing configuration if present")
	return cmd
}

func newConfigValidateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, exists, err := config.Load(ctx.configPath())
			if err != nil {
				return failures.Wrap(failures.ErrConfiguration, "cli", "validate config", "", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Config path: %s\n", path)
			if !exists {
				fmt.Fprintln(out, "Config file did not exist; defaults were used")
			}
			fmt.Fprintf(out, "Decoder: %s\n", cfg.Extraction.Decoder)
			fmt.Fprintf(out, "Default window: %d\n", cfg.Extraction.Window)
			fmt.Fprintln(out, "Configuration valid")
			return nil
		},
	}
}
