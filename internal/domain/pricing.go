package domain

import "math"

// PriceBracket defines one tier of the markup table: wholesale prices in
// [Min, Max] (inclusive on both ends) are marked up by Markup percent.
type PriceBracket struct {
	Min    float64
	Max    float64
	Markup int // percent
}

// MarkupTable is the tiered margin schedule applied to wholesale prices.
// Brackets are checked in order and the first match wins, so the shared
// boundary at 10 resolves to the lower bracket (90%).
var MarkupTable = []PriceBracket{
	{Min: 0, Max: 10, Markup: 90},
	{Min: 10, Max: 20.99, Markup: 80},
	{Min: 21, Max: 29.99, Markup: 70},
	{Min: 30, Max: 49.99, Markup: 60},
	{Min: 50, Max: math.Inf(1), Markup: 50},
}

// RetailPrice converts a wholesale unit price into the customer-facing price
// by applying the markup bracket the wholesale price falls into, rounded to
// 2 decimal places.
//
// The input is in major currency units (dollars, not cents). Callers that
// receive minor units from a supplier must convert before calling; this
// function never performs unit conversion.
//
// A zero or negative wholesale price yields 0 rather than an error - upstream
// catalog data is not always validated, and the caller is expected to log the
// anomaly and skip or flag the plan.
func RetailPrice(wholesale float64) float64 {
	if wholesale <= 0 {
		return 0
	}
	return round2(wholesale * (1 + float64(AppliedMarkup(wholesale))/100))
}

// AppliedMarkup returns the markup percentage that RetailPrice would apply
// to the given wholesale price. Exposed for margin display and debugging.
func AppliedMarkup(wholesale float64) int {
	for _, b := range MarkupTable {
		if wholesale >= b.Min && wholesale <= b.Max {
			return b.Markup
		}
	}
	// Prices that fall between two brackets' printed bounds (e.g. 20.995)
	// belong to the bracket below them, keeping the table exhaustive.
	markup := MarkupTable[0].Markup
	for _, b := range MarkupTable {
		if wholesale >= b.Min {
			markup = b.Markup
		}
	}
	return markup
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
