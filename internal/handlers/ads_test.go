package handlers_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func adForm() map[string]any {
	return map[string]any{
		"category":    testutil.CategoryMultimedia,
		"title":       "Console de jeux",
		"price":       "120",
		"description": "Vendue avec deux manettes.",
		"condition":   testutil.ConditionBonEtat,
	}
}

func TestNewAdRequiresAddress(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")

	resp := a.do(t, httptest.NewRequest("GET", "/api/ad/new", nil), user)
	testutil.AssertRedirect(t, resp, "/api/profil/information/address")

	resp = a.do(t, testutil.JSONRequest(t, "POST", "/api/ad/new", adForm()), user)
	testutil.AssertRedirect(t, resp, "/api/profil/information/address")
}

func TestAdWizard(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	testutil.CreateAddress(t, a.db, user.ID)

	resp := a.do(t, httptest.NewRequest("GET", "/api/ad/new", nil), user)
	testutil.AssertStatus(t, resp, http.StatusOK)

	resp = a.do(t, testutil.JSONRequest(t, "POST", "/api/ad/new", adForm()), user)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var created message
	testutil.ParseJSON(t, resp, &created)
	productID := dataID(t, created)
	assert.Equal(t, fmt.Sprintf("/api/ad/new/%d", productID), created.Location)
	assert.EqualValues(t, 120, created.Data["price"])

	png := testutil.PNG(t)
	target := fmt.Sprintf("/api/ad/new/%d", productID)
	resp = a.do(t, testutil.MultipartRequest(t, "POST", target, map[string][]byte{
		"picture_1": png,
		"picture_3": png,
	}), user)
	testutil.AssertStatus(t, resp, http.StatusCreated)
	var published message
	testutil.ParseJSON(t, resp, &published)
	assert.Equal(t, "/api/profil/ads", published.Location)
	pictureID := dataID(t, published)

	// A product keeps a single picture set
	resp = a.do(t, testutil.MultipartRequest(t, "POST", target, map[string][]byte{"picture_1": png}), user)
	testutil.AssertRedirect(t, resp, fmt.Sprintf("/api/profil/ad/picture/%d", pictureID))

	resp = a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/ad/%d", productID), nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var detail struct {
		Product models.Product `json:"product"`
		Owner   string         `json:"owner"`
		Edit    bool           `json:"edit"`
	}
	testutil.ParseJSON(t, resp, &detail)
	assert.Equal(t, "paul", detail.Owner)
	assert.False(t, detail.Edit)
	require.NotNil(t, detail.Product.Picture)
	require.Len(t, detail.Product.Picture.URLs, 2)
	assert.True(t, strings.HasPrefix(detail.Product.Picture.URLs[0], "/uploads/"))

	// The stored file is served back
	resp = a.do(t, httptest.NewRequest("GET", detail.Product.Picture.URLs[0], nil), nil)
	testutil.AssertStatus(t, resp, http.StatusOK)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, png, body)
}

func TestCreatePicturesRequiresFirstSlot(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	product := testutil.CreateProduct(t, a.db, models.Product{UserID: user.ID})

	resp := a.do(t, testutil.MultipartRequest(t, "POST", fmt.Sprintf("/api/ad/new/%d", product.ID), map[string][]byte{
		"picture_2": testutil.PNG(t),
	}), user)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
	var f failure
	testutil.ParseJSON(t, resp, &f)
	assert.Contains(t, f.Errors, "picture_1")
}

func TestCreatePicturesForeignProduct(t *testing.T) {
	a := newTestApp(t)
	owner := testutil.CreateUser(t, a.db, "paul")
	other := testutil.CreateUser(t, a.db, "jacques")
	product := testutil.CreateProduct(t, a.db, models.Product{UserID: owner.ID})

	resp := a.do(t, testutil.MultipartRequest(t, "POST", fmt.Sprintf("/api/ad/new/%d", product.ID), map[string][]byte{
		"picture_1": testutil.PNG(t),
	}), other)
	testutil.AssertRedirect(t, resp, "/api/ad/new")
}

func TestOwnAdRedirects(t *testing.T) {
	a := newTestApp(t)
	owner := testutil.CreateUser(t, a.db, "paul")
	other := testutil.CreateUser(t, a.db, "jacques")
	foreign := testutil.CreateProduct(t, a.db, models.Product{UserID: owner.ID})

	// Nothing owned yet
	resp := a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/profil/ad/%d", foreign.ID), nil), other)
	testutil.AssertRedirect(t, resp, "/api/ad/new")

	testutil.CreateProduct(t, a.db, models.Product{UserID: other.ID, Title: "Ancien"})
	latest := testutil.CreateProduct(t, a.db, models.Product{UserID: other.ID, Title: "Récent"})

	resp = a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/profil/ad/%d", foreign.ID), nil), other)
	testutil.AssertRedirect(t, resp, fmt.Sprintf("/api/profil/ad/%d", latest.ID))

	resp = a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/profil/ad/%d/edit", foreign.ID), nil), other)
	testutil.AssertRedirect(t, resp, fmt.Sprintf("/api/profil/ad/%d/edit", latest.ID))

	resp = a.do(t, httptest.NewRequest("DELETE", fmt.Sprintf("/api/profil/ad/%d/delete", foreign.ID), nil), other)
	testutil.AssertRedirect(t, resp, fmt.Sprintf("/api/profil/ad/%d/delete", latest.ID))

	var n int64
	a.db.Model(&models.Product{}).Where("id = ?", foreign.ID).Count(&n)
	assert.EqualValues(t, 1, n)
}

func TestEditAndDeleteAd(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	product := testutil.CreateListing(t, a.db, models.Product{UserID: user.ID})

	form := adForm()
	form["title"] = "Console rétro"
	resp := a.do(t, testutil.JSONRequest(t, "PUT", fmt.Sprintf("/api/profil/ad/%d/edit", product.ID), form), user)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var edited message
	testutil.ParseJSON(t, resp, &edited)
	assert.Equal(t, "Console rétro", edited.Data["title"])
	assert.Equal(t, fmt.Sprintf("/api/profil/ad/%d", product.ID), edited.Location)

	resp = a.do(t, httptest.NewRequest("DELETE", fmt.Sprintf("/api/profil/ad/%d/delete", product.ID), nil), user)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var removed message
	testutil.ParseJSON(t, resp, &removed)
	assert.Equal(t, "/api/profil/ads", removed.Location)

	resp = a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/ad/%d", product.ID), nil), nil)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
}

func TestEditPicturesRedirect(t *testing.T) {
	a := newTestApp(t)
	owner := testutil.CreateUser(t, a.db, "paul")
	other := testutil.CreateUser(t, a.db, "jacques")
	foreign := testutil.CreateListing(t, a.db, models.Product{UserID: owner.ID})

	var picture models.Picture
	require.NoError(t, a.db.Where("product_id = ?", foreign.ID).First(&picture).Error)

	resp := a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/profil/ad/picture/%d", picture.ID), nil), other)
	testutil.AssertRedirect(t, resp, "/api/ad/new")

	own := testutil.CreateListing(t, a.db, models.Product{UserID: other.ID})
	var ownPicture models.Picture
	require.NoError(t, a.db.Where("product_id = ?", own.ID).First(&ownPicture).Error)

	resp = a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/profil/ad/picture/%d", picture.ID), nil), other)
	testutil.AssertRedirect(t, resp, fmt.Sprintf("/api/profil/ad/picture/%d", ownPicture.ID))
}

func TestAdDetailNotFound(t *testing.T) {
	a := newTestApp(t)

	resp := a.do(t, httptest.NewRequest("GET", "/api/ad/4242", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusNotFound)
	var f struct {
		Message string `json:"message"`
	}
	testutil.ParseJSON(t, resp, &f)
	assert.Equal(t, "Ad '4242' not found", f.Message)

	resp = a.do(t, httptest.NewRequest("GET", "/api/ad/abc", nil), nil)
	testutil.AssertStatus(t, resp, http.StatusBadRequest)
}

func TestAdDetailSeenByOwner(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	testutil.CreateAddress(t, a.db, user.ID)
	product := testutil.CreateListing(t, a.db, models.Product{UserID: user.ID})

	resp := a.do(t, httptest.NewRequest("GET", fmt.Sprintf("/api/ad/%d", product.ID), nil), user)
	testutil.AssertStatus(t, resp, http.StatusOK)
	var detail struct {
		Edit bool `json:"edit"`
	}
	testutil.ParseJSON(t, resp, &detail)
	assert.True(t, detail.Edit)
}

func TestOfferNeedsLogin(t *testing.T) {
	a := newTestApp(t)
	user := testutil.CreateUser(t, a.db, "paul")
	testutil.CreateAddress(t, a.db, user.ID)
	product := testutil.CreateListing(t, a.db, models.Product{UserID: user.ID})
	target := fmt.Sprintf("/api/ad/%d/offer", product.ID)

	resp := a.do(t, httptest.NewRequest("GET", target, nil), nil)
	assert.Equal(t, http.StatusFound, resp.StatusCode)

	buyer := testutil.CreateUser(t, a.db, "jacques")
	resp = a.do(t, httptest.NewRequest("GET", target, nil), buyer)
	testutil.AssertStatus(t, resp, http.StatusOK)
}
