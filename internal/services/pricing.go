package services

// Bust prices in euro cents, keyed by bust height in millimetres.
var bustPrices = map[int]int64{
	100: 3900,
	200: 6900,
	300: 9900,
}

// RetryPriceCents is the price of one extra preview generation.
const RetryPriceCents int64 = 299

// ValidBustSize reports whether mm is an orderable bust height.
func ValidBustSize(mm int) bool {
	_, ok := bustPrices[mm]
	return ok
}

func PriceCents(mm int) (int64, bool) {
	p, ok := bustPrices[mm]
	return p, ok
}

// ShippingCents is the flat shipping rate for a bust height.
func ShippingCents(mm int) int64 {
	switch {
	case mm <= 100:
		return 990
	case mm <= 200:
		return 1290
	default:
		return 1590
	}
}
