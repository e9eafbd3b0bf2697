// Package zakat evaluates zakatable wealth against the Nisab threshold and
// computes the Zakat owed on it. All amounts are exact decimals.
package zakat

import (
	"github.com/shopspring/decimal"
)

var (
	// NisabGoldGrams is the gold Nisab (7.5 tola).
	NisabGoldGrams = decimal.RequireFromString("87.48")
	// NisabSilverGrams is the silver Nisab (52.5 tola).
	NisabSilverGrams = decimal.RequireFromString("612.36")
	// Rate is the Zakat rate applied to wealth that completed a Hawl.
	Rate = decimal.RequireFromString("0.025")

	// GramsPerVori is the weight of one vori (bhori), the unit prices are quoted in.
	GramsPerVori = decimal.RequireFromString("11.664")
	// AnaPerVori and RotiPerVori subdivide a vori.
	AnaPerVori  = decimal.NewFromInt(16)
	RotiPerVori = decimal.NewFromInt(96)
)

// Breakdown is a user's wealth split by asset category. Every field is a
// non-negative amount in the snapshot currency.
type Breakdown struct {
	CashAndBank      decimal.Decimal
	Gold             decimal.Decimal
	Silver           decimal.Decimal
	BusinessAssets   decimal.Decimal
	Stocks           decimal.Decimal
	OtherInvestments decimal.Decimal
	Receivables      decimal.Decimal
	Liabilities      decimal.Decimal
}

// Assets returns the sum of all asset categories before liabilities.
func (b Breakdown) Assets() decimal.Decimal {
	return decimal.Sum(
		b.CashAndBank,
		b.Gold,
		b.Silver,
		b.BusinessAssets,
		b.Stocks,
		b.OtherInvestments,
		b.Receivables,
	)
}

// NisabValues holds the gold and silver thresholds. Either may be null when
// the corresponding metal price is unknown.
type NisabValues struct {
	Gold   decimal.NullDecimal
	Silver decimal.NullDecimal
}

// TotalWealth returns assets minus liabilities, floored at zero.
func TotalWealth(b Breakdown) decimal.Decimal {
	net := b.Assets().Sub(b.Liabilities)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

// CalculateNisab prices the fixed gram thresholds. A nil price yields a null value.
func CalculateNisab(goldPricePerGram, silverPricePerGram *decimal.Decimal) NisabValues {
	var v NisabValues
	if goldPricePerGram != nil {
		v.Gold = decimal.NewNullDecimal(goldPricePerGram.Mul(NisabGoldGrams))
	}
	if silverPricePerGram != nil {
		v.Silver = decimal.NewNullDecimal(silverPricePerGram.Mul(NisabSilverGrams))
	}
	return v
}

// Threshold picks the lower of the two Nisab values, or whichever is present.
func Threshold(gold, silver decimal.NullDecimal) decimal.NullDecimal {
	switch {
	case gold.Valid && silver.Valid:
		return decimal.NewNullDecimal(decimal.Min(gold.Decimal, silver.Decimal))
	case gold.Valid:
		return gold
	case silver.Valid:
		return silver
	default:
		return decimal.NullDecimal{}
	}
}

// Threshold is a shortcut for Threshold(v.Gold, v.Silver).
func (v NisabValues) Threshold() decimal.NullDecimal {
	return Threshold(v.Gold, v.Silver)
}

// IsNisabMet reports whether wealth reaches the threshold (inclusive).
func IsNisabMet(totalWealth, threshold decimal.Decimal) bool {
	return totalWealth.GreaterThanOrEqual(threshold)
}

// CalculateZakat returns 2.5% of the wealth rounded to two decimal places.
func CalculateZakat(totalWealth decimal.Decimal) decimal.Decimal {
	return totalWealth.Mul(Rate).Round(2)
}

// VoriToGram converts a price per vori to a price per gram.
func VoriToGram(pricePerVori decimal.Decimal) decimal.Decimal {
	return pricePerVori.DivRound(GramsPerVori, 8)
}

// GramToVori converts a price per gram to a price per vori.
func GramToVori(pricePerGram decimal.Decimal) decimal.Decimal {
	return pricePerGram.Mul(GramsPerVori)
}

// VoriFromParts combines a vori/ana/roti quantity into decimal vori.
func VoriFromParts(vori, ana, roti decimal.Decimal) decimal.Decimal {
	return vori.
		Add(ana.DivRound(AnaPerVori, 8)).
		Add(roti.DivRound(RotiPerVori, 8))
}

// Assessment is the frozen result of evaluating a breakdown at capture time.
type Assessment struct {
	TotalWealth decimal.Decimal
	Nisab       NisabValues
	// Threshold is zero when no metal price was supplied.
	Threshold decimal.Decimal
	NisabMet  bool
	Zakat     decimal.Decimal
}

// Evaluate runs the full Nisab evaluation. Without any price there is no
// threshold, and Nisab is never met. NisabMet is judged against the reported
// Threshold, rounded to cents, so wealth within half a cent below the exact
// value counts as meeting it and vori prices converted to grams do not miss
// by a sub-cent remainder.
func Evaluate(b Breakdown, goldPricePerGram, silverPricePerGram *decimal.Decimal) Assessment {
	total := TotalWealth(b)
	nisab := CalculateNisab(goldPricePerGram, silverPricePerGram)
	threshold := nisab.Threshold()

	a := Assessment{
		TotalWealth: total,
		Nisab:       nisab,
		Threshold:   decimal.Zero,
		Zakat:       CalculateZakat(total),
	}
	if threshold.Valid {
		a.Threshold = threshold.Decimal.Round(2)
		a.NisabMet = IsNisabMet(total, a.Threshold)
	}
	return a
}

// PriceUnit is the weight unit a metal price is quoted in.
type PriceUnit string

const (
	PriceUnitGram PriceUnit = "gram"
	PriceUnitVori PriceUnit = "vori"
)

// IsValid reports whether u is a known unit.
func (u PriceUnit) IsValid() bool {
	return u == PriceUnitGram || u == PriceUnitVori
}

// PerGram converts a price quoted in u to a price per gram.
func (u PriceUnit) PerGram(price decimal.Decimal) decimal.Decimal {
	if u == PriceUnitVori {
		return VoriToGram(price)
	}
	return price
}

// PerVori converts a price quoted in u to a price per vori.
func (u PriceUnit) PerVori(price decimal.Decimal) decimal.Decimal {
	if u == PriceUnitGram {
		return GramToVori(price)
	}
	return price
}
