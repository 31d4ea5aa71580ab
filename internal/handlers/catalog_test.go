package handlers_test

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listing struct {
	Categories []models.Category `json:"categories"`
	Products   []models.Product  `json:"products"`
	Search     string            `json:"search"`
}

func TestSearchingRedirects(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest("POST", "/api/searching", strings.NewReader("input-search=v%C3%A9lo+rouge"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp := a.do(t, req, nil)
	testutil.AssertRedirect(t, resp, "/api/search/v%C3%A9lo%20rouge")

	req = httptest.NewRequest("POST", "/api/searching", strings.NewReader("input-search=+"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp = a.do(t, req, nil)
	testutil.AssertRedirect(t, resp, "/api/search")
}

func TestSearchByTitleAndCategory(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	testutil.CreateListing(t, a.db, models.Product{UserID: user.ID, Title: "Télévision", CategoryID: testutil.CategoryMultimedia})
	testutil.CreateListing(t, a.db, models.Product{UserID: user.ID, Title: "Maison de ville", CategoryID: testutil.CategoryImmobilier})
	// Without pictures an ad is not listed
	testutil.CreateProduct(t, a.db, models.Product{UserID: user.ID, Title: "Ville fantôme"})

	resp := a.do(t, httptest.NewRequest("GET", "/api/search/VILLE", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var found listing
	testutil.ParseJSON(t, resp, &found)
	assert.Equal(t, "VILLE", found.Search)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "Maison de ville", found.Products[0].Title)
	assert.NotEmpty(t, found.Categories)

	resp = a.do(t, httptest.NewRequest("GET", "/api/search/MULTIM", nil), nil)
	testutil.ParseJSON(t, resp, &found)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "Télévision", found.Products[0].Title)

	resp = a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/search/categorie/%d", testutil.CategoryImmobilier), nil), nil)
	testutil.ParseJSON(t, resp, &found)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "Maison de ville", found.Products[0].Title)

	resp = a.do(t, httptest.NewRequest("GET", "/api/search", nil), nil)
	testutil.ParseJSON(t, resp, &found)
	assert.Len(t, found.Products, 2)
}

func TestSearchAccentedCapital(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	testutil.CreateListing(t, a.db, models.Product{UserID: user.ID, Title: "Écran 24 pouces"})

	resp := a.do(t, httptest.NewRequest("GET", "/api/search/%C3%89CRAN", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var found listing
	testutil.ParseJSON(t, resp, &found)
	assert.Equal(t, "ÉCRAN", found.Search)
	require.Len(t, found.Products, 1)
	assert.Equal(t, "Écran 24 pouces", found.Products[0].Title)
}

func TestIndexListsNewestFirst(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	testutil.CreateListing(t, a.db, models.Product{UserID: user.ID, Title: "Premier"})
	testutil.CreateListing(t, a.db, models.Product{UserID: user.ID, Title: "Second"})

	resp := a.do(t, httptest.NewRequest("GET", "/api/", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var home listing
	testutil.ParseJSON(t, resp, &home)
	require.Len(t, home.Products, 2)
	assert.Equal(t, "Second", home.Products[0].Title)
	require.NotNil(t, home.Products[0].Picture)
	assert.Equal(t, []string{"/uploads/fixture/1.png"}, home.Products[0].Picture.URLs)
}

func TestFavorites(t *testing.T) {
	a := newTestApp(t)
	owner := testutil.CreateUser(t, a.db, "paul")
	fan := testutil.CreateUser(t, a.db, "jacques")
	product := testutil.CreateListing(t, a.db, models.Product{UserID: owner.ID})
	target := fmt.Sprintf("/api/fav/%d", product.ID)

	resp := a.do(t, httptest.NewRequest("POST", target, nil), fan)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var m message
	testutil.ParseJSON(t, resp, &m)
	assert.Equal(t, true, m.Data["favorite"])
	assert.Equal(t, fmt.Sprintf("/api/ad/%d", product.ID), m.Location)

	resp = a.do(t, httptest.NewRequest("GET", "/api/profil/favorites", nil), fan)
	testutil.AssertStatus(t, resp, http.StatusOK)

	resp = a.do(t, httptest.NewRequest("POST", target, nil), fan)
	testutil.ParseJSON(t, resp, &m)
	assert.Equal(t, false, m.Data["favorite"])

	resp = a.do(t, httptest.NewRequest("POST", "/api/fav/999", nil), fan)
	testutil.AssertStatus(t, resp, http.StatusNotFound)

	resp = a.do(t, httptest.NewRequest("DELETE", fmt.Sprintf("/api/profil/favorites/%d", product.ID), nil), fan)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
}

func TestRemoveFavorite(t *testing.T) {
	a := newTestApp(t)
	owner := testutil.CreateUser(t, a.db, "paul")
	fan := testutil.CreateUser(t, a.db, "jacques")
	product := testutil.CreateListing(t, a.db, models.Product{UserID: owner.ID})

	resp := a.do(t, httptest.NewRequest("POST", fmt.Sprintf("/api/fav/%d", product.ID), nil), fan)
	testutil.AssertStatus(t, resp, http.StatusOK)

	resp = a.do(t, httptest.NewRequest("DELETE", fmt.Sprintf("/api/profil/favorites/%d", product.ID), nil), fan)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var m message
	testutil.ParseJSON(t, resp, &m)
	assert.Equal(t, "/api/profil/favorites", m.Location)

	var n int64
	a.db.Model(&models.Favorite{}).Count(&n)
	assert.Zero(t, n)
}

func TestGeographyLists(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, httptest.NewRequest("GET", "/api/countries/be/regions", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var regions []models.Region
	testutil.ParseJSON(t, resp, &regions)
	assert.Len(t, regions, 3)

	resp = a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/regions/%d/cities", testutil.RegionIDF), nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var cities []models.City
	testutil.ParseJSON(t, resp, &cities)
	assert.Len(t, cities, 2)

	resp = a.do(t, httptest.NewRequest("GET", "/api/countries/fra/regions", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
}

func TestAddressFlow(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	intruder := testutil.CreateUser(t, a.db, "jacques")

	resp := a.do(t, httptest.NewRequest("GET", "/api/profil/information/address", nil), user)
	testutil.AssertStatus(t, resp, http.StatusOK)

	resp = a.do(t, testutil.JSONRequest(t, "POST", "/api/profil/information/address", map[string]any{
		"country":      testutil.CountryFR,
		"region":       testutil.RegionBretagne,
		"city":         testutil.CityRennes,
		"address":      "3 place de la Mairie",
		"phone_number": "+33612345678",
	}), user)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var created message
	testutil.ParseJSON(t, resp, &created)
	addressID := dataID(t, created)
	own := fmt.Sprintf("/api/profil/information/address/%d", addressID)
	assert.Equal(t, own, created.Location)

	resp = a.do(t, httptest.NewRequest("GET", "/api/profil/information/address", nil), user)
	testutil.AssertRedirect(t, resp, own)

	// Someone without an address is sent to the creation form
	resp = a.do(t, httptest.NewRequest("GET", own, nil), intruder)
	testutil.AssertRedirect(t, resp, "/api/profil/information/address")

	resp = a.do(t, testutil.JSONRequest(t, "POST", "/api/profil/information/address", map[string]any{
		"country":      testutil.CountryFR,
		"region":       testutil.RegionBretagne,
		"city":         testutil.CityParis,
		"address":      "3 place de la Mairie",
		"phone_number": "0612345678",
	}), intruder)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	var f failure
	testutil.ParseJSON(t, resp, &f)
	assert.Contains(t, f.Errors, "city")
}

func TestVersionHeader(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest("GET", "/api/categories", nil)
	req.Header.Set("X-Api-Version", "2")
	resp := a.do(t, req, nil)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	var body struct {
		Type         string `json:"type"`
		VersionError bool   `json:"versionError"`
	}
	testutil.ParseJSON(t, resp, &body)
	assert.Equal(t, "version", body.Type)
	assert.True(t, body.VersionError)

	resp = a.do(t, httptest.NewRequest("GET", "/api/categories", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	assert.Equal(t, "1.0.0", resp.Header.Get("X-Api-Version"))
}

func TestUnknownRoute(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, httptest.NewRequest("GET", "/nowhere", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	var body struct {
		URL string `json:"url"`
		Ok  bool   `json:"ok"`
	}
	testutil.ParseJSON(t, resp, &body)
	assert.Equal(t, "/nowhere", body.URL)
	assert.False(t, body.Ok)
}

func TestHealth(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, httptest.NewRequest("GET", "/api/health", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var body struct {
		Status string `json:"status"`
	}
	testutil.ParseJSON(t, resp, &body)
	assert.Equal(t, "healthy", body.Status)
}
