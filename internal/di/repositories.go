// Package di provides dependency injection for repositories.
package di

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/donkruger/share-transfer-template-sub000/internal/modules/sessions"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/settings"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/universe"
)

// InitializeRepositories creates the data access layer over the databases
func InitializeRepositories(container *Container, log zerolog.Logger) error {
	if container == nil {
		return fmt.Errorf("container cannot be nil")
	}

	container.UniverseRepo = universe.NewRepository(container.UniverseDB.Conn(), log)
	container.SettingsRepo = settings.NewRepository(container.ConfigDB.Conn(), log)
	container.SessionStore = sessions.NewStore(container.SessionsDB.Conn(), log)

	log.Info().Msg("Repositories initialized")

	return nil
}
