package wallets

import (
	"fmt"
	"os"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// directoryFile is the on-disk shape of the wallet directory.
type directoryFile struct {
	Wallets map[string]walletEntry `yaml:"wallets"`
}

type walletEntry struct {
	Name        string `yaml:"name"`
	DisplayName string `yaml:"display_name"`
	Currency    string `yaml:"currency"`
	Active      *bool  `yaml:"active"`
}

// LoadDirectory reads the wallet directory from a YAML file and returns it
// keyed by wallet id. A missing file is not an error: the service can run
// without wallet filtering, so it logs a warning and returns an empty
// directory. Malformed YAML is an error.
func LoadDirectory(path string, log zerolog.Logger) (map[string]domain.Wallet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			log.Warn().Str("path", path).Msg("Wallet directory file not found, starting with empty directory")
			return map[string]domain.Wallet{}, nil
		}
		return nil, fmt.Errorf("failed to read wallet directory %s: %w", path, err)
	}

	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse wallet directory %s: %w", path, err)
	}

	wallets := make(map[string]domain.Wallet, len(file.Wallets))
	for id, entry := range file.Wallets {
		// Wallets are active unless the file says otherwise.
		active := true
		if entry.Active != nil {
			active = *entry.Active
		}

		wallets[id] = domain.Wallet{
			ID:          id,
			Name:        entry.Name,
			DisplayName: entry.DisplayName,
			Currency:    entry.Currency,
			Active:      active,
		}
	}

	log.Info().Int("count", len(wallets)).Str("path", path).Msg("Wallet directory loaded")

	return wallets, nil
}
