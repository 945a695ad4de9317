package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/depsync/internal/domain/commands"
	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// SubmitController handles the "submit" subcommand (full pipeline).
type SubmitController struct {
	command commands.Sync
	log     logger.FieldLogger
}

// NewSubmitController creates a new SubmitController.
func NewSubmitController(command commands.Sync, log logger.FieldLogger) *SubmitController {
	return &SubmitController{command: command, log: log}
}

// GetBind returns the Cobra command metadata for the submit controller.
func (it *SubmitController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "submit",
		Short: "Update dependencies and open or refresh the pull request",
		Long: `Run every configured updater, then commit the changes, push them to an
UpdateDependencies branch of the bot fork and open a pull request against
the configured repository.

An open pull request created by the bot is reused by pushing to its branch.
This is the command intended to be used in a cronjob.`,
	}
}

// Execute runs the updaters and submits the result.
func (it *SubmitController) Execute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	settings, err := loadSettings(cmd)
	if err != nil {
		it.log.Errorf("%v", err)
		return err
	}

	if dryRun {
		it.log.Warn("Dry-run: nothing will be committed, pushed or submitted")
	}
	it.log.Info("Starting depsync submit...")

	result, err := it.command.Execute(ctx, settings, commands.SyncOptions{DryRun: dryRun, Submit: true})
	if err != nil {
		it.log.Errorf("Submit failed: %v", err)
		return err
	}

	reportResult(it.log, result)
	return nil
}
