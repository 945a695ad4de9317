package controllers

import (
	"context"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/depsync/internal/domain/commands"
	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// UpdateController handles the "update" subcommand.
type UpdateController struct {
	command commands.Sync
	log     logger.FieldLogger
}

// NewUpdateController creates a new UpdateController.
func NewUpdateController(command commands.Sync, log logger.FieldLogger) *UpdateController {
	return &UpdateController{command: command, log: log}
}

// GetBind returns the Cobra command metadata for the update controller.
func (it *UpdateController) GetBind() entities.ControllerBind {
	return entities.ControllerBind{
		Use:   "update",
		Short: "Apply dependency updates to the working tree",
		Long: `Load the configured build infos and repository heads, then run every
configured updater against the working tree.

Nothing is committed. The command reports whether files changed and the
commit message that would describe the change. With --dry-run the edits are
only logged as diffs.`,
	}
}

// Execute runs the updaters once.
func (it *UpdateController) Execute(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	settings, err := loadSettings(cmd)
	if err != nil {
		it.log.Errorf("%v", err)
		return err
	}

	it.log.Info("Starting depsync update...")

	result, err := it.command.Execute(ctx, settings, commands.SyncOptions{DryRun: dryRun})
	if err != nil {
		it.log.Errorf("Update failed: %v", err)
		return err
	}

	reportResult(it.log, result)
	return nil
}
