package domain

// Wallet represents an account/product context that restricts which
// instruments are visible and selectable. Wallet data comes from static
// configuration and is immutable at runtime.
type Wallet struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Currency    string `json:"currency"`
	Active      bool   `json:"active"`
}
