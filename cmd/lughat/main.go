package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/lughat/internal/cli"
	"codeberg.org/snonux/lughat/internal/completion"
	"codeberg.org/snonux/lughat/internal/logging"
	"codeberg.org/snonux/lughat/internal/models"
	"codeberg.org/snonux/lughat/internal/processor"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		if err := cli.LoadEnvFile(flags.EnvFile); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, args, flags)
	}
	rootCmd.SilenceUsage = true

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, args []string, flags *cli.Flags) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	settings, err := cli.LoadSettings()
	if err != nil {
		return err
	}
	if err := logging.Configure(os.Stderr, settings.LogLevel); err != nil {
		return err
	}

	// Handle --archive flag
	if flags.Archive {
		target, err := processor.Archive(settings)
		if err != nil {
			return fmt.Errorf("failed to archive audio: %w", err)
		}
		fmt.Printf("Audio archived to: %s\n", target)
		return nil
	}

	// Handle --list-models flag
	if flags.ListModels {
		return listModels(ctx, settings)
	}

	proc, err := processor.NewProcessor(ctx, settings)
	if err != nil {
		if completion.IsConfigurationError(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\nSet %v or completion.api_key in the config file.\n",
				err, completion.APIKeyEnvVars(settings.Provider))
		}
		return err
	}
	defer proc.Close()

	switch {
	case flags.BatchFile != "":
		return proc.ProcessBatch(ctx, flags.BatchFile)
	case len(args) > 0:
		return proc.ProcessText(ctx, args[0])
	default:
		// No input provided - start an interactive session
		return proc.RunInteractive(ctx, os.Stdin)
	}
}

func listModels(ctx context.Context, settings *cli.Settings) error {
	catalog, err := models.NewLister(settings.Provider, settings.APIKey, settings.BaseURL).List(ctx)
	if err != nil {
		return err
	}
	catalog.Print(os.Stdout)
	return nil
}
