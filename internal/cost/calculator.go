// Package cost prices Places nearby-search requests by billing SKU.
package cost

import "github.com/sells-group/placesweep/pkg/google"

// Rates holds Nearby Search pricing in USD per 1000 requests.
type Rates struct {
	LegacyNearby               float64 `yaml:"legacy_nearby" mapstructure:"legacy_nearby"`
	NearbyPro                  float64 `yaml:"nearby_pro" mapstructure:"nearby_pro"`
	NearbyEnterprise           float64 `yaml:"nearby_enterprise" mapstructure:"nearby_enterprise"`
	NearbyEnterpriseAtmosphere float64 `yaml:"nearby_enterprise_atmosphere" mapstructure:"nearby_enterprise_atmosphere"`
}

// Calculator computes costs for API usage.
type Calculator struct {
	rates Rates
}

// NewCalculator creates a Calculator with the given rates.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{rates: rates}
}

// PerRequest returns the price of one request billed at sku.
func (c *Calculator) PerRequest(sku google.SKU) float64 {
	var per1000 float64
	switch sku {
	case google.SKULegacyNearby:
		per1000 = c.rates.LegacyNearby
	case google.SKUNearbyPro:
		per1000 = c.rates.NearbyPro
	case google.SKUNearbyEnterprise:
		per1000 = c.rates.NearbyEnterprise
	case google.SKUNearbyEnterpriseAtmosphere:
		per1000 = c.rates.NearbyEnterpriseAtmosphere
	}
	return per1000 / 1000
}

// Requests prices n requests billed at sku.
func (c *Calculator) Requests(sku google.SKU, n int) float64 {
	if n <= 0 {
		return 0
	}
	return float64(n) * c.PerRequest(sku)
}

// Estimate prices the worst case of a sweep: every tile using all its pages.
func (c *Calculator) Estimate(sku google.SKU, tiles, pagesPerTile int) float64 {
	if pagesPerTile <= 0 {
		pagesPerTile = 1
	}
	return c.Requests(sku, tiles*pagesPerTile)
}

// DefaultRates returns the list prices for Nearby Search.
func DefaultRates() Rates {
	return Rates{
		LegacyNearby:               32.00,
		NearbyPro:                  32.00,
		NearbyEnterprise:           35.00,
		NearbyEnterpriseAtmosphere: 40.00,
	}
}
