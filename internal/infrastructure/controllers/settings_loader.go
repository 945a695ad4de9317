package controllers

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/depsync/internal/domain/commands"
	"github.com/rios0rios0/depsync/internal/domain/entities"
)

// loadSettings reads the file given by --config or the first one found in
// the default locations.
func loadSettings(cmd *cobra.Command) (*entities.Settings, error) {
	cfgPath, _ := cmd.Flags().GetString("config")
	if cfgPath == "" {
		var err error
		cfgPath, err = entities.FindConfigFile()
		if err != nil {
			return nil, fmt.Errorf(
				"no config file found: %w\nSpecify one with --config or create .depsync.yaml", err,
			)
		}
	}

	logger.Infof("Using config file: %s", cfgPath)

	settings, err := entities.NewSettings(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return settings, nil
}

// reportResult logs the outcome of a run.
func reportResult(log logger.FieldLogger, result *commands.UpdateResult) {
	if !result.ChangesMade {
		log.Info("MadeChanges: false")
		return
	}

	log.Info("MadeChanges: true")
	log.Infof("Suggested commit message: %s", result.CommitMessage)
	for _, info := range result.UsedInfos {
		log.Infof("Used: %s", info)
	}
	if result.Branch != "" {
		log.Infof("Branch: %s (%s)", result.Branch, result.State)
	}
	if result.PullRequest != nil {
		log.Infof("Pull request #%d: %s %s", result.PullRequest.ID, result.PullRequest.Title, result.PullRequest.URL)
	}
}
