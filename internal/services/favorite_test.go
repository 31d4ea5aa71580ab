package services_test

import (
	"testing"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleFavoriteTwice(t *testing.T) {
	db := setup(t)
	seller := testutil.CreateUser(t, db, "seller")
	fan := testutil.CreateUser(t, db, "fan")
	product := testutil.CreateListing(t, db, models.Product{UserID: seller.ID})

	on, err := services.ToggleFavorite(db, fan.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, on)

	is, err := services.IsFavorite(db, fan.ID, product.ID)
	require.NoError(t, err)
	assert.True(t, is)

	off, err := services.ToggleFavorite(db, fan.ID, product.ID)
	require.NoError(t, err)
	assert.False(t, off)

	var n int64
	db.Model(&models.Favorite{}).Count(&n)
	assert.Zero(t, n)
}

func TestToggleFavoriteUnknownProduct(t *testing.T) {
	db := setup(t)
	fan := testutil.CreateUser(t, db, "fan")

	_, err := services.ToggleFavorite(db, fan.ID, 404)
	assert.ErrorIs(t, err, services.ErrNotFound)
}

func TestListFavoritesOrderedByTitle(t *testing.T) {
	db := setup(t)
	seller := testutil.CreateUser(t, db, "seller")
	fan := testutil.CreateUser(t, db, "fan")

	for _, title := range []string{"Zèbre en peluche", "Armoire", "Maquette"} {
		p := testutil.CreateListing(t, db, models.Product{UserID: seller.ID, Title: title})
		_, err := services.ToggleFavorite(db, fan.ID, p.ID)
		require.NoError(t, err)
	}

	favorites, err := services.ListFavorites(db, fan.ID)
	require.NoError(t, err)
	require.Len(t, favorites, 3)
	assert.Equal(t, "Armoire", favorites[0].Title)
	assert.Equal(t, "Maquette", favorites[1].Title)
	assert.Equal(t, "Zèbre en peluche", favorites[2].Title)
	assert.NotNil(t, favorites[0].Picture)

	other, err := services.ListFavorites(db, seller.ID)
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestRemoveFavorite(t *testing.T) {
	db := setup(t)
	seller := testutil.CreateUser(t, db, "seller")
	fan := testutil.CreateUser(t, db, "fan")
	product := testutil.CreateListing(t, db, models.Product{UserID: seller.ID})

	_, err := services.ToggleFavorite(db, fan.ID, product.ID)
	require.NoError(t, err)

	require.NoError(t, services.RemoveFavorite(db, fan.ID, product.ID))
	assert.ErrorIs(t, services.RemoveFavorite(db, fan.ID, product.ID), services.ErrNotFound)
}
