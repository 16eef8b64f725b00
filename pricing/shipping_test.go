package pricing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/junaidrashid-git/marinetex-api/models"
)

type failingSettings struct{}

func (failingSettings) ShippingRates(context.Context) (ShippingRates, error) {
	return ShippingRates{}, errors.New("settings service unavailable")
}

func setupSettingsDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ShippingSetting{}))
	return db
}

func TestIsDomestic(t *testing.T) {
	for _, c := range []string{"Turkey", "TURKEY", "TÜRKİYE", "türkiye", " turkiye ", "TR", "tur"} {
		assert.True(t, IsDomestic(c), c)
	}
	for _, c := range []string{"Greece", "Northern Cyprus", "", "Turkmenistan"} {
		assert.False(t, IsDomestic(c), c)
	}
}

func TestPick(t *testing.T) {
	r := DefaultShippingRates
	assert.True(t, r.Pick("Turkey", "tr").Equal(d("200")))
	assert.True(t, r.Pick("Greece", "tr").Equal(d("1500")))
	assert.True(t, r.Pick("Turkey", "en").Equal(d("10")))
	assert.True(t, r.Pick("Greece", "en").Equal(d("50")))
}

func TestResolve_FallsBackToDefaults(t *testing.T) {
	resolver := NewShippingResolver(failingSettings{}, nil)
	fallbacks := 0
	resolver.OnFallback = func() { fallbacks++ }

	fee := resolver.Resolve(context.Background(), "Türkiye", "tr")

	assert.True(t, fee.Equal(DefaultShippingRates.DomesticTRY), "got %s", fee)
	assert.Equal(t, 1, fallbacks)
}

func TestResolve_MissingRowFallsBack(t *testing.T) {
	db := setupSettingsDB(t)
	resolver := NewShippingResolver(NewGormSettings(db), nil)

	fee := resolver.Resolve(context.Background(), "Germany", "en")

	assert.True(t, fee.Equal(DefaultShippingRates.InternationalUSD))
}

func TestGormSettings_SaveAndResolve(t *testing.T) {
	db := setupSettingsDB(t)
	store := NewGormSettings(db)
	ctx := context.Background()

	require.NoError(t, store.SaveShippingRates(ctx, ShippingRates{
		DomesticTRY: d("250"), InternationalTRY: d("1750"),
		DomesticUSD: d("12"), InternationalUSD: d("55"),
	}))
	// second save updates the same row
	require.NoError(t, store.SaveShippingRates(ctx, ShippingRates{
		DomesticTRY: d("300"), InternationalTRY: d("1750"),
		DomesticUSD: d("12"), InternationalUSD: d("55"),
	}))

	var count int64
	db.Model(&models.ShippingSetting{}).Count(&count)
	assert.Equal(t, int64(1), count)

	resolver := NewShippingResolver(store, nil)
	assert.True(t, resolver.Resolve(ctx, "turkey", "tr").Equal(d("300")))
	assert.True(t, resolver.Resolve(ctx, "Italy", "en").Equal(d("55")))
}

func TestSaveShippingRates_RejectsNegative(t *testing.T) {
	db := setupSettingsDB(t)
	err := NewGormSettings(db).SaveShippingRates(context.Background(), ShippingRates{DomesticTRY: d("-1")})
	assert.ErrorContains(t, err, "domesticTry")
}
