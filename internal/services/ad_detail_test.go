package services_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdDetailRelatedSameCategory(t *testing.T) {
	db := setup(t)
	seller := testutil.CreateUser(t, db, "seller")
	testutil.CreateAddress(t, db, seller.ID)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	product := testutil.CreateListing(t, db, models.Product{UserID: seller.ID, CategoryID: testutil.CategoryMaison, CreatedAt: base})
	for i := 0; i < 6; i++ {
		testutil.CreateListing(t, db, models.Product{
			UserID:     seller.ID,
			Title:      fmt.Sprintf("Meuble %d", i),
			CategoryID: testutil.CategoryMaison,
			CreatedAt:  base.Add(time.Duration(i+1) * time.Hour),
		})
	}
	testutil.CreateListing(t, db, models.Product{UserID: seller.ID, CategoryID: testutil.CategoryVehicules})

	detail, err := services.GetAdDetail(db, product.ID, 0)
	require.NoError(t, err)
	assert.Equal(t, "seller", detail.Owner)
	require.NotNil(t, detail.Address)
	assert.Equal(t, "Paris", detail.Address.City.Name)

	require.Len(t, detail.Related, services.RelatedLimit)
	assert.Equal(t, "Meuble 5", detail.Related[0].Title)
	for _, p := range detail.Related {
		assert.NotEqual(t, product.ID, p.ID)
		assert.Equal(t, testutil.CategoryMaison, p.CategoryID)
	}
	assert.Empty(t, detail.Others)
	assert.False(t, detail.Edit)
	assert.False(t, detail.Favorite)
}

func TestAdDetailFallsBackToOtherListings(t *testing.T) {
	db := setup(t)
	seller := testutil.CreateUser(t, db, "seller")
	product := testutil.CreateListing(t, db, models.Product{UserID: seller.ID, CategoryID: testutil.CategoryImmobilier})
	for i := 0; i < 5; i++ {
		testutil.CreateListing(t, db, models.Product{UserID: seller.ID, CategoryID: testutil.CategoryVehicules})
	}

	detail, err := services.GetAdDetail(db, product.ID, seller.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Related)
	require.Len(t, detail.Others, services.RelatedLimit)
	for _, p := range detail.Others {
		assert.NotEqual(t, product.ID, p.ID)
	}
	assert.True(t, detail.Edit)
	assert.Nil(t, detail.Address)
}

func TestAdDetailFavoriteFlag(t *testing.T) {
	db := setup(t)
	seller := testutil.CreateUser(t, db, "seller")
	fan := testutil.CreateUser(t, db, "fan")
	product := testutil.CreateListing(t, db, models.Product{UserID: seller.ID})

	_, err := services.ToggleFavorite(db, fan.ID, product.ID)
	require.NoError(t, err)

	detail, err := services.GetAdDetail(db, product.ID, fan.ID)
	require.NoError(t, err)
	assert.True(t, detail.Favorite)
	assert.False(t, detail.Edit)
}

func TestAdDetailNotFound(t *testing.T) {
	db := setup(t)

	_, err := services.GetAdDetail(db, 12345, 0)
	assert.ErrorIs(t, err, services.ErrNotFound)

	_, err = services.GetOfferDetail(db, 12345)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestOfferDetail(t *testing.T) {
	db := setup(t)
	seller := testutil.CreateUser(t, db, "seller")
	testutil.CreateAddress(t, db, seller.ID)
	product := testutil.CreateListing(t, db, models.Product{UserID: seller.ID})

	offer, err := services.GetOfferDetail(db, product.ID)
	require.NoError(t, err)
	assert.Equal(t, "seller", offer.Owner)
	assert.Equal(t, "0612345678", offer.Address.PhoneNumber)
}

func TestCatalogLists(t *testing.T) {
	db := setup(t)

	categories, err := services.ListCategories(db)
	require.NoError(t, err)
	require.Len(t, categories, 10)
	assert.Equal(t, "Animaux", categories[0].Name)

	regions, err := services.ListRegions(db, testutil.CountryBE)
	require.NoError(t, err)
	assert.Len(t, regions, 3)

	cities, err := services.ListCities(db, testutil.RegionIDF)
	require.NoError(t, err)
	assert.Len(t, cities, 2)
}
