package domain

import "math"

// PriceQuote is a service price as shown to a guest: the original amount,
// plus the discounted amount when a discount actually applies.
type PriceQuote struct {
	Original   float64  `json:"original"`
	Discounted *float64 `json:"discounted,omitempty"`
}

// EffectivePrice applies the guest's discount to a price. A nil guest or a
// zero discount leaves the price unchanged. Results are rounded to cents.
func EffectivePrice(price float64, g *Guest) float64 {
	if g == nil || g.Discount <= 0 {
		return price
	}
	return roundCents(price * (1 - g.Discount))
}

// Quote pairs the original price with the discounted one when they differ.
func Quote(price float64, g *Guest) PriceQuote {
	q := PriceQuote{Original: roundCents(price)}
	if eff := EffectivePrice(price, g); eff != q.Original {
		q.Discounted = &eff
	}
	return q
}

// HighDiscount reports whether the guest holds a discount above 10%.
func HighDiscount(g *Guest) bool {
	return g != nil && g.Discount > 0.10
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
