package cart

import (
	"github.com/google/uuid"

	"github.com/ovenline/storefront-backend/pkg/types"
)

// Line is one cart entry. Quantity is always >= 1; a zero/negative update
// removes the line instead of storing it.
type Line struct {
	LineKey        string           `json:"line_key"`
	ProductID      uuid.UUID        `json:"product_id"`
	Name           string           `json:"name"`
	VariantKey     string           `json:"variant_key,omitempty"`
	UnitPriceMinor int64            `json:"unit_price_minor"`
	Quantity       int              `json:"quantity"`
	Addons         types.LineAddons `json:"addons,omitempty"`
}

// TotalMinor is the line contribution: unit price times quantity plus every
// addon's price times its own quantity.
func (l Line) TotalMinor() int64 {
	total := l.UnitPriceMinor * int64(l.Quantity)
	for _, addon := range l.Addons {
		total += addon.PriceMinor * int64(addon.Quantity)
	}
	return total
}

// Cart is the session-scoped cart document stored in Redis. It is owned by
// a single browser session; there is no cross-session sharing.
type Cart struct {
	Token    string    `json:"token"`
	BranchID uuid.UUID `json:"branch_id"`
	Lines    []Line    `json:"lines"`
}

// LineKeyFor derives the merge identity of a line: same product and same
// variant merge, anything else is a separate line.
func LineKeyFor(productID uuid.UUID, variantKey string) string {
	if variantKey == "" {
		return productID.String()
	}
	return productID.String() + ":" + variantKey
}

// FindLine returns the index of the line with the given key, or -1.
func (c *Cart) FindLine(lineKey string) int {
	for i, line := range c.Lines {
		if line.LineKey == lineKey {
			return i
		}
	}
	return -1
}

// SubtotalMinor sums every line total. Always non-negative because
// quantities and captured prices are.
func (c *Cart) SubtotalMinor() int64 {
	var total int64
	for _, line := range c.Lines {
		total += line.TotalMinor()
	}
	return total
}

// ItemCount is the sum of line quantities.
func (c *Cart) ItemCount() int {
	var count int
	for _, line := range c.Lines {
		count += line.Quantity
	}
	return count
}

// IsEmpty reports whether the cart has no lines.
func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}
