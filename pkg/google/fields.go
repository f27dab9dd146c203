package google

import (
	"sort"
	"strings"
)

// SKU is the Nearby Search billing tier a request falls into.
type SKU int

const (
	// SKULegacyNearby is the legacy Nearby Search request.
	SKULegacyNearby SKU = iota
	// SKUNearbyPro covers identity, address and location fields.
	SKUNearbyPro
	// SKUNearbyEnterprise adds rating, contact and opening-hours fields.
	SKUNearbyEnterprise
	// SKUNearbyEnterpriseAtmosphere adds amenity and review fields.
	SKUNearbyEnterpriseAtmosphere
)

// String returns the SKU name used in config and logs.
func (s SKU) String() string {
	switch s {
	case SKULegacyNearby:
		return "legacy_nearby"
	case SKUNearbyPro:
		return "nearby_pro"
	case SKUNearbyEnterprise:
		return "nearby_enterprise"
	case SKUNearbyEnterpriseAtmosphere:
		return "nearby_enterprise_atmosphere"
	default:
		return "unknown"
	}
}

// DefaultFields is the field selection used when none is configured.
var DefaultFields = []string{
	"id",
	"displayName",
	"formattedAddress",
	"location",
	"types",
	"primaryType",
	"rating",
	"userRatingCount",
	"businessStatus",
}

var enterpriseFields = map[string]bool{
	"currentOpeningHours":          true,
	"currentSecondaryOpeningHours": true,
	"internationalPhoneNumber":     true,
	"nationalPhoneNumber":          true,
	"priceLevel":                   true,
	"priceRange":                   true,
	"rating":                       true,
	"regularOpeningHours":          true,
	"regularSecondaryOpeningHours": true,
	"userRatingCount":              true,
	"websiteUri":                   true,
}

var atmosphereFields = map[string]bool{
	"allowsDogs":             true,
	"curbsidePickup":         true,
	"delivery":               true,
	"dineIn":                 true,
	"editorialSummary":       true,
	"evChargeAmenitySummary": true,
	"evChargeOptions":        true,
	"fuelOptions":            true,
	"generativeSummary":      true,
	"goodForChildren":        true,
	"goodForGroups":          true,
	"goodForWatchingSports":  true,
	"liveMusic":              true,
	"menuForChildren":        true,
	"neighborhoodSummary":    true,
	"parkingOptions":         true,
	"paymentOptions":         true,
	"outdoorSeating":         true,
	"reservable":             true,
	"restroom":               true,
	"reviews":                true,
	"reviewSummary":          true,
	"routingSummaries":       true,
	"servesBeer":             true,
	"servesBreakfast":        true,
	"servesBrunch":           true,
	"servesCocktails":        true,
	"servesCoffee":           true,
	"servesDessert":          true,
	"servesDinner":           true,
	"servesLunch":            true,
	"servesVegetarianFood":   true,
	"servesWine":             true,
	"takeout":                true,
}

// SKUForFields returns the highest tier any of fields triggers. Unknown
// fields are billed as Pro.
func SKUForFields(fields []string) SKU {
	sku := SKUNearbyPro
	for _, f := range fields {
		f = strings.TrimPrefix(f, "places.")
		switch {
		case atmosphereFields[f]:
			return SKUNearbyEnterpriseAtmosphere
		case enterpriseFields[f]:
			sku = SKUNearbyEnterprise
		}
	}
	return sku
}

// FieldMask renders fields as an X-Goog-FieldMask value, prefixing each with
// "places." and dropping duplicates. An empty selection uses DefaultFields.
func FieldMask(fields []string) string {
	if len(fields) == 0 {
		fields = DefaultFields
	}
	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !strings.HasPrefix(f, "places.") {
			f = "places." + f
		}
		if seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	sort.Strings(out)
	return strings.Join(out, ",")
}
