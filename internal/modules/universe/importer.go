package universe

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/donkruger/share-transfer-template-sub000/internal/utils"
	"github.com/rs/zerolog"
)

// ImportStats summarizes one import run.
type ImportStats struct {
	Imported int `json:"imported"`
	Skipped  int `json:"skipped"`
}

// Importer loads instrument tables from CSV files into universe.db.
//
// Columns are resolved by header name, not position, so exports with extra
// or reordered columns still import. Rows missing an id or a name are
// skipped and counted, never fatal.
type Importer struct {
	repo *Repository
	log  zerolog.Logger
}

// NewImporter creates a CSV importer writing through the given repository.
func NewImporter(repo *Repository, log zerolog.Logger) *Importer {
	return &Importer{
		repo: repo,
		log:  log.With().Str("component", "importer").Logger(),
	}
}

// ImportCSV reads the file at path and upserts its rows in one transaction.
func (i *Importer) ImportCSV(path string) (*ImportStats, error) {
	timer := utils.NewTimer("universe_csv_import", i.log)
	defer timer.Stop()

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open csv %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("csv %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	columns := headerIndex(header)
	if _, ok := columns["id"]; !ok {
		return nil, fmt.Errorf("csv %s has no id column", path)
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("csv %s has no name column", path)
	}

	stats := &ImportStats{}
	batch := make([]domain.Instrument, 0)

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A malformed row is data trouble, not a reason to abort the file
			i.log.Warn().Err(err).Msg("Skipping malformed csv row")
			stats.Skipped++
			continue
		}

		inst, ok := i.parseRow(record, columns)
		if !ok {
			stats.Skipped++
			continue
		}
		batch = append(batch, inst)
	}

	if err := i.repo.UpsertBatch(batch); err != nil {
		return nil, fmt.Errorf("failed to store imported instruments: %w", err)
	}
	stats.Imported = len(batch)

	i.log.Info().
		Int("imported", stats.Imported).
		Int("skipped", stats.Skipped).
		Str("path", path).
		Msg("Universe import completed")

	return stats, nil
}

func (i *Importer) parseRow(record []string, columns map[string]int) (domain.Instrument, bool) {
	field := func(name string) string {
		idx, ok := columns[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	idStr := field("id")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		i.log.Warn().Str("id", idStr).Msg("Skipping row with invalid id")
		return domain.Instrument{}, false
	}

	name := field("name")
	if name == "" {
		i.log.Warn().Int64("id", id).Msg("Skipping row with empty name")
		return domain.Instrument{}, false
	}

	return domain.Instrument{
		ID:             id,
		Name:           name,
		Ticker:         field("ticker"),
		ISIN:           field("isin"),
		ContractCode:   field("contract_code"),
		AssetType:      field("asset_type"),
		Exchange:       field("exchange"),
		Currency:       field("currency"),
		Active:         parseActive(field("active")),
		AccountFilters: field("account_filters"),
	}, true
}

// parseActive interprets the active flag column. Blank means active; both
// numeric ("0"/"1") and textual ("true"/"false") forms are accepted.
func parseActive(s string) bool {
	if s == "" {
		return true
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n != 0
	}
	if b, err := strconv.ParseBool(strings.ToLower(s)); err == nil {
		return b
	}
	return true
}

func headerIndex(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, name := range header {
		columns[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return columns
}
