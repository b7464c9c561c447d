package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func TestLookupProductAt_UsesEffectiveDate(t *testing.T) {
	id := ProductSmallCoffee
	orig := productPriceHistory[id]
	defer func() { productPriceHistory[id] = orig }()

	productPriceHistory[id] = []productPriceVersion{
		{EffectiveFrom: mustDate(t, "2025-01-01"), PriceCents: 299},
		{EffectiveFrom: mustDate(t, "2025-07-01"), PriceCents: 349},
	}

	apr, ok := LookupProductAt(id, mustDate(t, "2025-04-15"))
	require.True(t, ok)
	require.Equal(t, int64(299), apr.PriceCents)

	aug, ok := LookupProductAt(id, mustDate(t, "2025-08-15"))
	require.True(t, ok)
	require.Equal(t, int64(349), aug.PriceCents)

	latest, ok := LookupProductAt(id, time.Time{})
	require.True(t, ok)
	require.Equal(t, int64(349), latest.PriceCents)
}

func TestLookupProduct_ShortNames(t *testing.T) {
	p, ok := LookupProduct("patron")
	require.True(t, ok)
	require.Equal(t, ProductSpiritualPatron, p.ID)
	require.Equal(t, int64(1999), p.PriceCents)

	_, ok = LookupProduct("com.example.unknown")
	require.False(t, ok)
}

func TestDisplayLabel(t *testing.T) {
	require.Equal(t, "🕉️ Om", DisplayLabel("om", false))
	require.Equal(t, "🕉️ ॐ", DisplayLabel("Om", true))
	require.Equal(t, "Gayatri", DisplayLabel("Gayatri", true))
	require.Equal(t, "Waheguru", CanonicalLabel(" waheguru "))
}
