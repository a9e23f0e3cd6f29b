package testing

import (
	"testing"

	"github.com/donkruger/share-transfer-template-sub000/internal/database"
	"github.com/donkruger/share-transfer-template-sub000/internal/events"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/search"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/sessions"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/settings"
	"github.com/donkruger/share-transfer-template-sub000/internal/modules/universe"
	"github.com/rs/zerolog"
)

// Stack wires the search service, session registry and their databases the
// way the application does, seeded with the instrument fixtures. Handler
// and job tests build on it instead of repeating the wiring.
type Stack struct {
	UniverseDB *database.DB
	SessionsDB *database.DB
	ConfigDB   *database.DB

	Universe *universe.Repository
	Cache    *universe.Cache
	Settings *settings.Repository
	Bus      *events.Bus
	Events   *events.Manager
	Search   *search.Service
	Store    *sessions.Store
	Registry *sessions.Registry

	Log zerolog.Logger
}

// NewStack builds a fully wired stack over temporary databases. Cleanup is
// registered on the test automatically.
func NewStack(t *testing.T) *Stack {
	t.Helper()
	log := zerolog.New(nil).Level(zerolog.Disabled)

	universeDB, cleanupUniverse := NewTestDB(t, "universe")
	t.Cleanup(cleanupUniverse)
	sessionsDB, cleanupSessions := NewTestDB(t, "sessions")
	t.Cleanup(cleanupSessions)
	configDB, cleanupConfig := NewTestDB(t, "config")
	t.Cleanup(cleanupConfig)

	universeRepo := universe.NewRepository(universeDB.Conn(), log)
	if err := universeRepo.UpsertBatch(NewInstrumentFixtures()); err != nil {
		t.Fatalf("Failed to seed instrument fixtures: %v", err)
	}

	cache := universe.NewCache(universeRepo, log)
	if err := cache.Reload(); err != nil {
		t.Fatalf("Failed to load universe cache: %v", err)
	}

	settingsRepo := settings.NewRepository(configDB.Conn(), log)
	bus := events.NewBus(log)
	eventManager := events.NewManager(bus, log)
	searchService := search.NewService(cache, settingsRepo, eventManager, log)
	store := sessions.NewStore(sessionsDB.Conn(), log)
	registry := sessions.NewRegistry(searchService, store, settingsRepo, eventManager, log)

	return &Stack{
		UniverseDB: universeDB,
		SessionsDB: sessionsDB,
		ConfigDB:   configDB,
		Universe:   universeRepo,
		Cache:      cache,
		Settings:   settingsRepo,
		Bus:        bus,
		Events:     eventManager,
		Search:     searchService,
		Store:      store,
		Registry:   registry,
		Log:        log,
	}
}
