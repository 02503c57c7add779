package locator

import "context"

// StockRepository reads the public side of the registry: approved
// pharmacies and their in-stock medicines.
type StockRepository interface {
	ApprovedPharmacies(ctx context.Context) ([]Place, error)
	// SearchStock returns approved pharmacies with the medicines
	// matching term (case-insensitive substring) and stock >= minStock.
	SearchStock(ctx context.Context, term string, minStock int) ([]*Candidate, error)
	// SuggestNames returns up to limit distinct in-stock medicine
	// names matching term.
	SuggestNames(ctx context.Context, term string, limit int) ([]string, error)
}
