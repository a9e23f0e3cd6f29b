package wallets

import (
	"testing"

	"github.com/donkruger/share-transfer-template-sub000/internal/domain"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDirectory() map[string]domain.Wallet {
	return map[string]domain.Wallet{
		"2":  {ID: "2", Name: "eur-main", DisplayName: "EUR Main Account", Currency: "EUR", Active: true},
		"7":  {ID: "7", Name: "usd-trading", DisplayName: "", Currency: "USD", Active: true},
		"10": {ID: "10", Name: "gbp-savings", DisplayName: "GBP Savings", Currency: "GBP", Active: true},
		"15": {ID: "15", Name: "retired", DisplayName: "Closed Account", Currency: "EUR", Active: false},
	}
}

func newTestEngine() *Engine {
	return NewEngine(testDirectory(), zerolog.Nop())
}

func TestParseAccountFilters(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "simple list", input: "2,10", expected: []string{"2", "10"}},
		{name: "whitespace around tokens", input: " 2 , 10 ", expected: []string{"2", "10"}},
		{name: "quoted tokens", input: `"2",'10'`, expected: []string{"2", "10"}},
		{name: "empty tokens dropped", input: "2,,10,", expected: []string{"2", "10"}},
		{name: "empty string", input: "", expected: []string{}},
		{name: "whitespace only", input: "   ", expected: []string{}},
		{name: "quotes only", input: `""`, expected: []string{}},
		{name: "single id", input: "7", expected: []string{"7"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAccountFilters(tt.input)
			require.Len(t, got, len(tt.expected))
			for _, id := range tt.expected {
				assert.Contains(t, got, id)
			}
		})
	}
}

func TestFilterContains_WholeTokenOnly(t *testing.T) {
	// "27" is not listed, "127" is; substring containment must not match
	assert.False(t, FilterContains("127,300", "27"))
	assert.True(t, FilterContains("127,300", "127"))
}

func TestFilterContains_NoNumericNormalization(t *testing.T) {
	// Identifiers compare as raw strings, so a leading zero is a different id
	assert.False(t, FilterContains("7", "07"))
	assert.True(t, FilterContains("07", "07"))
}

func TestFilterContains_BlankInputs(t *testing.T) {
	assert.False(t, FilterContains("", "2"))
	assert.False(t, FilterContains("2,10", ""))
	assert.False(t, FilterContains("2,10", "   "))
}

func TestIsAvailableInWallet(t *testing.T) {
	engine := newTestEngine()

	assert.True(t, engine.IsAvailableInWallet("2,10", "eur-main"))
	assert.True(t, engine.IsAvailableInWallet("2,10", "gbp-savings"))
	assert.False(t, engine.IsAvailableInWallet("2,10", "usd-trading"))
}

func TestIsAvailableInWallet_UnknownName(t *testing.T) {
	engine := newTestEngine()

	assert.False(t, engine.IsAvailableInWallet("2,10", "no-such-wallet"))
}

func TestIsAvailableInWallet_NameIsCaseInsensitive(t *testing.T) {
	engine := newTestEngine()

	assert.True(t, engine.IsAvailableInWallet("2", "EUR-Main"))
	assert.True(t, engine.IsAvailableInWallet("2", "  eur-main  "))
}

func TestGetAvailableWallets_SortedAndFiltered(t *testing.T) {
	engine := newTestEngine()

	// 999 is unknown and must be silently dropped
	available := engine.GetAvailableWallets("10,2,999")

	require.Len(t, available, 2)
	assert.Equal(t, "eur-main", available[0].Name)
	assert.Equal(t, "gbp-savings", available[1].Name)
}

func TestGetAvailableWallets_EmptyFilter(t *testing.T) {
	engine := newTestEngine()

	available := engine.GetAvailableWallets("")

	require.NotNil(t, available)
	assert.Empty(t, available)
}

func TestGetWalletDisplayName_Fallbacks(t *testing.T) {
	engine := newTestEngine()

	tests := []struct {
		name     string
		walletID string
		expected string
	}{
		{name: "display name preferred", walletID: "2", expected: "EUR Main Account"},
		{name: "falls back to short name", walletID: "7", expected: "usd-trading"},
		{name: "unknown id synthesized", walletID: "999", expected: "Wallet 999"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, engine.GetWalletDisplayName(tt.walletID))
		})
	}
}

func TestGetAllWallets_ActiveOnlySortedByName(t *testing.T) {
	engine := newTestEngine()

	all := engine.GetAllWallets()

	require.Len(t, all, 3)
	assert.Equal(t, []string{"eur-main", "gbp-savings", "usd-trading"},
		[]string{all[0].Name, all[1].Name, all[2].Name})
	for _, w := range all {
		assert.True(t, w.Active)
	}
}

func TestEngine_EmptyDirectory(t *testing.T) {
	engine := NewEngine(map[string]domain.Wallet{}, zerolog.Nop())

	assert.Empty(t, engine.GetAllWallets())
	assert.Empty(t, engine.GetAvailableWallets("1,2,3"))
	assert.False(t, engine.IsAvailableInWallet("1", "anything"))
	assert.Equal(t, "Wallet 5", engine.GetWalletDisplayName("5"))
	assert.Equal(t, 0, engine.Count())
}
