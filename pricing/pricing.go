// Package pricing computes order totals from a catalog snapshot.
// It is pure: callers supply the snapshot, nothing here touches storage.
package pricing

import (
	"fmt"
	"math"

	"github.com/socialcoffee/coffee-api/models"
)

// BonusRate is the loyalty accrual applied to authenticated orders.
const BonusRate = 0.01

// Catalog is the read-only product view priced against. Prices seen through
// it are copied into the quote, so later catalog edits cannot change it.
type Catalog interface {
	ProductByID(id uint) (models.Product, bool)
}

type SelectedOption struct {
	GroupName string
	Name      string
	Price     float64
}

type CartLine struct {
	ProductID uint
	Quantity  int
	Options   []SelectedOption
}

type PricedLine struct {
	Product   models.Product
	Quantity  int
	Options   []SelectedOption
	LineTotal float64
}

// Quote is a frozen price computation for one cart.
type Quote struct {
	Lines       []PricedLine
	Total       float64
	BonusEarned int
}

// UnknownProductError signals a cart line referencing a product that does not
// resolve in the snapshot. Order creation must abort without persisting.
type UnknownProductError struct {
	ProductID uint
}

func (e *UnknownProductError) Error() string {
	return fmt.Sprintf("unknown product %d", e.ProductID)
}

// Price computes line totals, the order total and the bonus accrual.
// line total = (base price + sum of option prices) * quantity.
// Bonus is earned only when the order is attributed to an account.
func Price(catalog Catalog, lines []CartLine, authenticated bool) (Quote, error) {
	var quote Quote
	for _, line := range lines {
		product, ok := catalog.ProductByID(line.ProductID)
		if !ok {
			return Quote{}, &UnknownProductError{ProductID: line.ProductID}
		}

		unit := product.BasePrice
		for _, opt := range line.Options {
			unit += opt.Price
		}
		total := unit * float64(line.Quantity)

		quote.Lines = append(quote.Lines, PricedLine{
			Product:   product,
			Quantity:  line.Quantity,
			Options:   line.Options,
			LineTotal: total,
		})
		quote.Total += total
	}

	if authenticated {
		quote.BonusEarned = int(math.Floor(quote.Total * BonusRate))
	}
	return quote, nil
}
