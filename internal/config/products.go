package config

import (
	"sort"
	"strings"
	"time"
)

// Product is one donation tier offered through the platform store.
type Product struct {
	ID          string
	DisplayName string
	PriceCents  int64
}

type productPriceVersion struct {
	EffectiveFrom time.Time
	PriceCents    int64
}

// Donation product identifiers. They must match the store configuration.
const (
	ProductSmallCoffee     = "com.chantingcounter.donation.small"
	ProductLargeCoffee     = "com.chantingcounter.donation.large"
	ProductGenerousSupport = "com.chantingcounter.donation.generous"
	ProductSpiritualPatron = "com.chantingcounter.donation.patron"
)

// DefaultProducts lists the donation tiers in display order.
var DefaultProducts = []Product{
	{ID: ProductSmallCoffee, DisplayName: "Small Coffee", PriceCents: 299},
	{ID: ProductLargeCoffee, DisplayName: "Large Coffee", PriceCents: 499},
	{ID: ProductGenerousSupport, DisplayName: "Generous Support", PriceCents: 999},
	{ID: ProductSpiritualPatron, DisplayName: "Spiritual Patron", PriceCents: 1999},
}

// productPriceHistory stores effective-dated prices per product.
// Entries must be sorted by EffectiveFrom ascending.
var productPriceHistory = makeProductPriceHistory(DefaultProducts)

func makeProductPriceHistory(base []Product) map[string][]productPriceVersion {
	history := make(map[string][]productPriceVersion, len(base))
	for _, p := range base {
		history[p.ID] = []productPriceVersion{{PriceCents: p.PriceCents}}
	}
	return history
}

// NormalizeProductID accepts either a full identifier or its short tier
// suffix ("small", "patron") and returns the full identifier.
func NormalizeProductID(raw string) string {
	raw = strings.TrimSpace(strings.ToLower(raw))
	if _, ok := productPriceHistory[raw]; ok {
		return raw
	}
	for _, p := range DefaultProducts {
		if strings.HasSuffix(p.ID, "."+raw) {
			return p.ID
		}
	}
	return raw
}

// LookupProduct returns the product with its current price.
func LookupProduct(id string) (Product, bool) {
	return LookupProductAt(id, time.Now())
}

// LookupProductAt returns the product priced as of at.
// If at is zero, the latest known price is used.
func LookupProductAt(id string, at time.Time) (Product, bool) {
	id = NormalizeProductID(id)

	var product Product
	found := false
	for _, p := range DefaultProducts {
		if p.ID == id {
			product = p
			found = true
			break
		}
	}
	if !found {
		return Product{}, false
	}

	versions := productPriceHistory[id]
	if len(versions) == 0 {
		return product, true
	}
	if at.IsZero() {
		product.PriceCents = versions[len(versions)-1].PriceCents
		return product, true
	}

	at = at.UTC()
	selected := versions[0].PriceCents
	for _, v := range versions {
		if v.EffectiveFrom.IsZero() || !at.Before(v.EffectiveFrom.UTC()) {
			selected = v.PriceCents
			continue
		}
		break
	}
	product.PriceCents = selected
	return product, true
}

// ProductIDs returns every known product identifier, sorted.
func ProductIDs() []string {
	ids := make([]string, 0, len(DefaultProducts))
	for _, p := range DefaultProducts {
		ids = append(ids, p.ID)
	}
	sort.Strings(ids)
	return ids
}
