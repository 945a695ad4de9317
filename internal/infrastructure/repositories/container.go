package repositories

import (
	logger "github.com/sirupsen/logrus"
	"go.uber.org/dig"
)

// RegisterProviders registers all repository providers with the DIG container.
func RegisterProviders(container *dig.Container) error {
	if err := container.Provide(func() logger.FieldLogger {
		return logger.StandardLogger()
	}); err != nil {
		return err
	}

	if err := container.Provide(NewRepositoryFactory); err != nil {
		return err
	}

	// Register updater registry with all updater implementations
	if err := container.Provide(NewDefaultUpdaterRegistry); err != nil {
		return err
	}

	return nil
}
