// Package universe owns the instrument table: persistence in universe.db,
// tabular imports, and the in-memory cache the search stack reads from.
package universe

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/donkruger/share-transfer-template-sub000/internal/database"
	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/rs/zerolog"
)

// instrumentColumns lists the columns of the instruments table in schema
// order, so queries never rely on SELECT *.
const instrumentColumns = `id, name, ticker, isin, contract_code, asset_type,
exchange, currency, active, account_filters`

// Repository handles instrument database operations against universe.db.
type Repository struct {
	db  *sql.DB
	log zerolog.Logger
}

// NewRepository creates a new instrument repository.
func NewRepository(db *sql.DB, log zerolog.Logger) *Repository {
	return &Repository{
		db:  db,
		log: log.With().Str("repository", "universe").Logger(),
	}
}

// GetAll returns every instrument, active or not.
func (r *Repository) GetAll() ([]domain.Instrument, error) {
	query := "SELECT " + instrumentColumns + " FROM instruments ORDER BY id"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments: %w", err)
	}
	defer rows.Close()

	return collectInstruments(rows)
}

// GetAllActive returns every instrument whose active flag is set.
func (r *Repository) GetAllActive() ([]domain.Instrument, error) {
	query := "SELECT " + instrumentColumns + " FROM instruments WHERE active != 0 ORDER BY id"

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query active instruments: %w", err)
	}
	defer rows.Close()

	return collectInstruments(rows)
}

// GetByID returns one instrument, or nil if the id is unknown.
func (r *Repository) GetByID(id int64) (*domain.Instrument, error) {
	query := "SELECT " + instrumentColumns + " FROM instruments WHERE id = ?"

	rows, err := r.db.Query(query, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query instrument %d: %w", id, err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, nil
	}

	inst, err := scanInstrument(rows)
	if err != nil {
		return nil, fmt.Errorf("failed to scan instrument: %w", err)
	}
	return &inst, nil
}

// GetByTicker returns the instruments listed under a ticker,
// case-insensitively. An unknown ticker yields an empty slice.
func (r *Repository) GetByTicker(ticker string) ([]domain.Instrument, error) {
	query := "SELECT " + instrumentColumns + " FROM instruments WHERE UPPER(ticker) = ? ORDER BY id"

	rows, err := r.db.Query(query, strings.ToUpper(strings.TrimSpace(ticker)))
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments by ticker: %w", err)
	}
	defer rows.Close()

	return collectInstruments(rows)
}

// GetByISIN returns the instruments carrying an ISIN, case-insensitively.
func (r *Repository) GetByISIN(isin string) ([]domain.Instrument, error) {
	query := "SELECT " + instrumentColumns + " FROM instruments WHERE UPPER(isin) = ? ORDER BY id"

	rows, err := r.db.Query(query, strings.ToUpper(strings.TrimSpace(isin)))
	if err != nil {
		return nil, fmt.Errorf("failed to query instruments by isin: %w", err)
	}
	defer rows.Close()

	return collectInstruments(rows)
}

// Upsert inserts or updates one instrument by id.
func (r *Repository) Upsert(inst domain.Instrument) error {
	if inst.Name == "" {
		return fmt.Errorf("instrument name is required")
	}

	_, err := r.db.Exec(`
		INSERT INTO instruments
		(id, name, ticker, isin, contract_code, asset_type, exchange, currency,
		 active, account_filters, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			ticker = excluded.ticker,
			isin = excluded.isin,
			contract_code = excluded.contract_code,
			asset_type = excluded.asset_type,
			exchange = excluded.exchange,
			currency = excluded.currency,
			active = excluded.active,
			account_filters = excluded.account_filters,
			updated_at = excluded.updated_at
	`,
		inst.ID,
		inst.Name,
		inst.Ticker,
		inst.ISIN,
		inst.ContractCode,
		inst.AssetType,
		inst.Exchange,
		inst.Currency,
		boolToInt(inst.Active),
		inst.AccountFilters,
		time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert instrument %d: %w", inst.ID, err)
	}
	return nil
}

// UpsertBatch writes a batch of instruments inside one transaction.
func (r *Repository) UpsertBatch(instruments []domain.Instrument) error {
	if len(instruments) == 0 {
		return nil
	}

	now := time.Now().Unix()

	return database.WithTransaction(r.db, func(tx *sql.Tx) error {
		stmt, err := tx.Prepare(`
			INSERT INTO instruments
			(id, name, ticker, isin, contract_code, asset_type, exchange, currency,
			 active, account_filters, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				ticker = excluded.ticker,
				isin = excluded.isin,
				contract_code = excluded.contract_code,
				asset_type = excluded.asset_type,
				exchange = excluded.exchange,
				currency = excluded.currency,
				active = excluded.active,
				account_filters = excluded.account_filters,
				updated_at = excluded.updated_at
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare upsert: %w", err)
		}
		defer stmt.Close()

		for _, inst := range instruments {
			if inst.Name == "" {
				return fmt.Errorf("instrument %d has no name", inst.ID)
			}
			if _, err := stmt.Exec(
				inst.ID, inst.Name, inst.Ticker, inst.ISIN, inst.ContractCode,
				inst.AssetType, inst.Exchange, inst.Currency,
				boolToInt(inst.Active), inst.AccountFilters, now,
			); err != nil {
				return fmt.Errorf("failed to upsert instrument %d: %w", inst.ID, err)
			}
		}
		return nil
	})
}

// Count returns the number of stored instruments.
func (r *Repository) Count() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM instruments").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count instruments: %w", err)
	}
	return count, nil
}

// DistinctExchanges returns the distinct non-empty exchanges of active
// instruments, sorted.
func (r *Repository) DistinctExchanges() ([]string, error) {
	return r.distinctColumn("exchange")
}

// DistinctAssetTypes returns the distinct non-empty asset types of active
// instruments, sorted.
func (r *Repository) DistinctAssetTypes() ([]string, error) {
	return r.distinctColumn("asset_type")
}

func (r *Repository) distinctColumn(column string) ([]string, error) {
	query := fmt.Sprintf(`SELECT DISTINCT %s FROM instruments
		WHERE %s != '' AND active != 0 ORDER BY %s`, column, column, column)

	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query distinct %s: %w", column, err)
	}
	defer rows.Close()

	values := make([]string, 0)
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", column, err)
		}
		values = append(values, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating %s values: %w", column, err)
	}

	return values, nil
}

func collectInstruments(rows *sql.Rows) ([]domain.Instrument, error) {
	instruments := make([]domain.Instrument, 0)
	for rows.Next() {
		inst, err := scanInstrument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan instrument: %w", err)
		}
		instruments = append(instruments, inst)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating instruments: %w", err)
	}

	return instruments, nil
}

func scanInstrument(rows *sql.Rows) (domain.Instrument, error) {
	var inst domain.Instrument
	var ticker, isin, contractCode, assetType, exchange, currency, accountFilters sql.NullString
	var active sql.NullInt64

	err := rows.Scan(
		&inst.ID,
		&inst.Name,
		&ticker,
		&isin,
		&contractCode,
		&assetType,
		&exchange,
		&currency,
		&active,
		&accountFilters,
	)
	if err != nil {
		return inst, err
	}

	inst.Ticker = ticker.String
	inst.ISIN = isin.String
	inst.ContractCode = contractCode.String
	inst.AssetType = assetType.String
	inst.Exchange = exchange.String
	inst.Currency = currency.String
	inst.AccountFilters = accountFilters.String
	inst.Active = active.Valid && active.Int64 != 0

	return inst, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
