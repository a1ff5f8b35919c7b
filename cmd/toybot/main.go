package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/m3rciful/toybot/bot/app"
	"github.com/m3rciful/toybot/bot/phrasebook"
	"github.com/m3rciful/toybot/core/buildinfo"
	corecmd "github.com/m3rciful/toybot/core/cmd"
	coreconfig "github.com/m3rciful/toybot/core/config"
)

const defaultConfigPath = "config.yaml"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string
	root := &cobra.Command{
		Use:           "toybot",
		Short:         "Toy store chat bot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default $CONFIG_PATH or "+defaultConfigPath+")")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the Telegram bot and the ops server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(configPath, app.Options{Mode: app.ModeServe})
			},
		},
		&cobra.Command{
			Use:   "chat",
			Short: "Talk to the bot in the terminal",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(configPath, app.Options{Mode: app.ModeConsole, In: cmd.InOrStdin(), Out: cmd.OutOrStdout()})
			},
		},
		newFitCmd(&configPath),
		&cobra.Command{
			Use:   "version",
			Short: "Print build information",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintf(cmd.OutOrStdout(), "toybot %s (%s) %s\n", buildinfo.Version, buildinfo.Commit, buildinfo.Date)
			},
		},
	)
	return root
}

func run(configPath string, opts app.Options) error {
	return corecmd.Run(corecmd.Options{
		ConfigPath:        configPath,
		DefaultConfigPath: defaultConfigPath,
		LoadConfig:        loadConfig,
		Bootstrap: func(ctx context.Context, cfg corecmd.ConfigCarrier) (corecmd.App, error) {
			return app.Bootstrap(ctx, cfg.CoreConfig(), opts)
		},
	})
}

func loadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

func newFitCmd(configPath *string) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "fit",
		Short: "Fit the intent and retrieval models and write the artifact",
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := corecmd.ResolveConfigPath(corecmd.Options{ConfigPath: *configPath, DefaultConfigPath: defaultConfigPath})
			if err != nil {
				return err
			}
			cfg, err := coreconfig.Load(path)
			if err != nil {
				return err
			}
			phrases, err := phrasebook.Load(cfg.Data.Phrasebook)
			if err != nil {
				return err
			}
			norm, err := app.NewNormalizer(cfg.Data)
			if err != nil {
				return err
			}
			mdl, err := app.FitModel(cfg.Data, norm, phrases)
			if err != nil {
				return err
			}
			if err := mdl.Save(out); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "model written to %s: %d intents, %d corpus pairs\n", out, len(mdl.Labels()), mdl.CorpusSize())
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "models/model.json", "artifact path")
	return cmd
}
