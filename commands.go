package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"comic_backend/core"
	"comic_backend/core/validation"
)

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "panelcfg",
		Short: "Resolve comic panel generation settings",
		Long: `panelcfg turns size, quality and model presets, page-layout slots and
explicit overrides into a generation configuration that records where every
value came from, and composes multi-condition requests on top of it.

Configuration is read from the environment and from an optional .env file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.loadConfig()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.envFile, "env", core.DefaultEnvFile, "dotenv file to load")
	flags.BoolVar(&a.envRequired, "require-env", false, "fail when the dotenv file is missing")
	flags.StringVar(&a.panelsFile, "panels", "", "YAML file mapping panel ids to their slot and presets")

	root.AddCommand(
		newPresetsCommand(a),
		newTemplatesCommand(a),
		newResolveCommand(a),
		newSlotCommand(a),
		newCatalogCommand(a),
		newConditionsCommand(a),
		newComposeCommand(a),
		newValidateCommand(a),
		newVersionCommand(a),
	)
	return root
}

func newVersionCommand(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print build information",
		Args:  cobra.NoArgs,
		// version works without a valid configuration
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON {
				return writeJSON(a.stdout, core.GetBuildInfo())
			}
			_, err := fmt.Fprintf(a.stdout, "panelcfg %s\n", core.GetVersionInfo())
			return err
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

func newValidateCommand(a *app) *cobra.Command {
	var quick, failFast bool
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check configuration, presets, templates and the model catalog",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a.logger.Info("Starting validation...")

			suite := validation.NewValidationSuite(a.config).
				WithOutput(a.stdout).
				WithEnvPath(a.envFile, a.envRequired).
				WithFailFast(failFast)

			var result validation.SuiteResult
			if quick {
				result = suite.ValidateQuick()
			} else {
				result = suite.Validate(cmd.Context())
			}

			if !result.Success {
				for _, step := range result.Steps {
					if step.Status == validation.StepFailed {
						a.logger.Error("Validation step failed",
							zap.String("step", step.Name),
							zap.String("code", core.GetErrorCode(step.Error)),
							zap.String("message", step.Message),
							zap.Error(step.Error),
						)
					}
				}
				return fmt.Errorf("%w: %s", errValidationFailed, result.Summary())
			}

			a.logger.Info("Validation passed",
				zap.Int("checks_passed", result.PassedSteps),
				zap.Int("warnings", result.Warnings),
				zap.Duration("duration", result.Duration),
			)
			return nil
		},
	}
	cmd.Flags().BoolVar(&quick, "quick", false, "skip the catalog database and composition checks")
	cmd.Flags().BoolVar(&failFast, "fail-fast", false, "stop at the first failed check")
	return cmd
}
