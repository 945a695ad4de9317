package entities

import (
	"time"

	"go.uber.org/dig"
)

// Clock returns the current time; tests replace it to pin branch names.
type Clock func() time.Time

// RegisterProviders registers all entity providers with the DIG container.
// Settings requires a config file path and is loaded by the controllers.
func RegisterProviders(container *dig.Container) error {
	return container.Provide(func() Clock { return time.Now })
}
