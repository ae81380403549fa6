// Package policy holds the static cost and reward tables callers consult
// before invoking the ledger engine. Pricing here is configuration, not
// ledger state.
package policy

import "github.com/shopspring/decimal"

const (
	ListingCost = 10
	SignupBonus = 50

	// Daily bonus policy is assumed, not inherited: amount 5, eligible
	// again 24 hours after the previous grant.
	DailyBonus            = 5
	DailyBonusWindowHours = 24
)

type BoostTier struct {
	Name         string `json:"name"`
	Cost         int64  `json:"cost"`
	DurationDays int    `json:"duration_days"`
}

var boostTiers = map[string]BoostTier{
	"basic":   {Name: "basic", Cost: 5, DurationDays: 3},
	"premium": {Name: "premium", Cost: 15, DurationDays: 10},
}

func BoostTierByName(name string) (BoostTier, bool) {
	tier, ok := boostTiers[name]
	return tier, ok
}

func BoostTiers() []BoostTier {
	return []BoostTier{boostTiers["basic"], boostTiers["premium"]}
}

// CoinPackage is a purchasable bundle. Price is in minor currency units
// (centavos); BonusCoins are credited on top of Coins when the purchase is
// promoted.
type CoinPackage struct {
	ID              string `json:"id"`
	Coins           int64  `json:"coins"`
	PriceMinorUnits int64  `json:"price_minor_units"`
	BonusCoins      int64  `json:"bonus_coins"`
}

var coinPackages = []CoinPackage{
	{ID: "starter", Coins: 100, PriceMinorUnits: 10000, BonusCoins: 0},
	{ID: "value", Coins: 500, PriceMinorUnits: 50000, BonusCoins: 50},
	{ID: "pro", Coins: 1000, PriceMinorUnits: 100000, BonusCoins: 200},
}

func Packages() []CoinPackage {
	out := make([]CoinPackage, len(coinPackages))
	copy(out, coinPackages)
	return out
}

func PackageByID(id string) (CoinPackage, bool) {
	for _, pkg := range coinPackages {
		if pkg.ID == id {
			return pkg, true
		}
	}
	return CoinPackage{}, false
}

// DefaultSaleFeePercent is the fraction of the sale price charged to the
// seller when a listing is marked sold.
const DefaultSaleFeePercent = "0.10"

// SaleFee charges percent of the sale price (whole pesos), rounded up to the
// next whole coin. A non-zero price always costs at least one coin.
func SaleFee(price int64, percent decimal.Decimal) int64 {
	if price <= 0 {
		return 0
	}
	return decimal.NewFromInt(price).Mul(percent).Ceil().IntPart()
}

func ParseFeePercent(raw string) decimal.Decimal {
	parsed, err := decimal.NewFromString(raw)
	if err != nil || parsed.IsNegative() {
		parsed, _ = decimal.NewFromString(DefaultSaleFeePercent)
	}
	return parsed
}
