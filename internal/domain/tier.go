package domain

// Tier is a client's loyalty classification, derived from lifetime value.
type Tier string

const (
	TierNew     Tier = "new"
	TierRegular Tier = "regular"
	TierVIP     Tier = "vip"
	TierVVIP    Tier = "vvip"
)

// Lifetime-value thresholds, in catalog currency units.
const (
	ltvRegular = 5000
	ltvVIP     = 20000
	ltvVVIP    = 50000
)

// TierFor maps accumulated lifetime value to a tier. Pure; callers persist
// the result whenever ltv changes rather than recomputing at read time.
func TierFor(ltv float64) Tier {
	switch {
	case ltv >= ltvVVIP:
		return TierVVIP
	case ltv >= ltvVIP:
		return TierVIP
	case ltv >= ltvRegular:
		return TierRegular
	default:
		return TierNew
	}
}
