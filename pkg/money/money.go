package money

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/ovenline/storefront-backend/pkg/enums"
)

// MinimumChargeMinor is the gateway's minimum charge in minor units. Stripe
// applies the same floor to every currency the storefront supports.
const MinimumChargeMinor = 100

var symbols = map[enums.Currency]string{
	enums.CurrencyGBP: "£",
	enums.CurrencyPKR: "Rs",
	enums.CurrencyUSD: "$",
	enums.CurrencyEUR: "€",
}

// Symbol returns the display symbol for the currency.
func Symbol(c enums.Currency) string {
	if s, ok := symbols[c]; ok {
		return s
	}
	return string(c)
}

// FormatMinor renders an amount of minor units as a human-readable string,
// e.g. 100 GBP minor units -> "£1.00".
func FormatMinor(c enums.Currency, amountMinor int64) string {
	major := decimal.NewFromInt(amountMinor).Div(decimal.NewFromInt(100))
	return fmt.Sprintf("%s%s", Symbol(c), major.StringFixed(2))
}

// MinimumChargeLabel spells out the minimum chargeable amount in the
// currency, for validation messages.
func MinimumChargeLabel(c enums.Currency) string {
	return FormatMinor(c, MinimumChargeMinor)
}

// CurrencyForCountry maps a branch country code to its charge currency.
// Pakistani branches bill in PKR, everything else in GBP.
func CurrencyForCountry(countryCode string) enums.Currency {
	if countryCode == "PK" || countryCode == "pk" {
		return enums.CurrencyPKR
	}
	return enums.CurrencyGBP
}

// GSTMinor computes the GST portion of a subtotal. The rate is expressed in
// basis points (500 = 5%). Money stays in integer minor units; the single
// rate multiplication goes through decimal and rounds half-up to the
// nearest minor unit.
func GSTMinor(subtotalMinor int64, rateBasisPoints int) int64 {
	if subtotalMinor <= 0 || rateBasisPoints <= 0 {
		return 0
	}
	gst := decimal.NewFromInt(subtotalMinor).
		Mul(decimal.NewFromInt(int64(rateBasisPoints))).
		Div(decimal.NewFromInt(10000))
	return gst.Round(0).IntPart()
}
