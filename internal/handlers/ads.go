package handlers

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/utils"
	"gorm.io/gorm"
)

const newAdPath = "/api/ad/new"

// AdHandler handles the ad wizard, the caller's ads and the public ad pages
type AdHandler struct {
	DB       *gorm.DB
	Pictures *services.PictureService
	Storage  storage.Storage
}

// redirectToLatest applies the ownership redirect policy for ads: the caller's most
// recent ad, or the creation wizard when they have none
func (h *AdHandler) redirectToLatest(c *fiber.Ctx, userID uint64, suffix string) error {
	latest, err := services.LatestOwnedProduct(h.DB, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Redirect(newAdPath, fiber.StatusFound)
		}
		return err
	}
	return redirect(c, "/api/profil/ad/%d%s", latest.ID, suffix)
}

// NewAdForm handles GET /api/ad/new
// @Summary Ad creation form
// @Tags Ads
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 302 "The caller has no address yet"
// @Security CookieAuth
// @Router /ad/new [get]
func (h *AdHandler) NewAdForm(c *fiber.Ctx) error {
	user := currentUser(c)
	ok, err := services.HasAddress(h.DB, user.ID)
	if err != nil {
		return err
	}
	if !ok {
		return c.Redirect(addressCreationPath, fiber.StatusFound)
	}
	return h.formChoices(c, nil)
}

func (h *AdHandler) formChoices(c *fiber.Ctx, extra fiber.Map) error {
	categories, err := services.ListCategories(h.DB)
	if err != nil {
		return err
	}
	conditions, err := services.ListConditions(h.DB)
	if err != nil {
		return err
	}
	body := fiber.Map{"categories": categories, "conditions": conditions}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

// CreateAd handles POST /api/ad/new
// @Summary Create an ad (wizard step 1)
// @Tags Ads
// @Accept json
// @Produce json
// @Param body body services.AdInput true "Ad form"
// @Success 201 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ValidationErrorResponseStruct
// @Security CookieAuth
// @Router /ad/new [post]
func (h *AdHandler) CreateAd(c *fiber.Ctx) error {
	user := currentUser(c)

	var in services.AdInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c)
	}

	product, err := services.CreateAd(h.DB, user.ID, in)
	if errors.Is(err, services.ErrAddressRequired) {
		return c.Redirect(addressCreationPath, fiber.StatusFound)
	}
	if err != nil {
		return serviceError(c, err, "")
	}
	return utils.MessageResponse(c, fiber.StatusCreated, "Now add your pictures.", utils.PathFor(newAdPath, product.ID), product)
}

// readSlots opens picture_1..picture_3 of a multipart form
func readSlots(c *fiber.Ctx) ([services.PictureSlots]*services.Upload, func(), error) {
	var slots [services.PictureSlots]*services.Upload
	var files []multipart.File
	closeAll := func() {
		for _, f := range files {
			_ = f.Close()
		}
	}

	if !strings.HasPrefix(c.Get(fiber.HeaderContentType), fiber.MIMEMultipartForm) {
		// no files submitted
		return slots, closeAll, nil
	}
	form, err := c.MultipartForm()
	if err != nil {
		return slots, closeAll, err
	}

	for i := range slots {
		headers := form.File[fmt.Sprintf("picture_%d", i+1)]
		if len(headers) == 0 {
			continue
		}
		f, err := headers[0].Open()
		if err != nil {
			closeAll()
			return slots, func() {}, err
		}
		files = append(files, f)
		slots[i] = &services.Upload{Filename: headers[0].Filename, Reader: f}
	}
	return slots, closeAll, nil
}

// CreatePictures handles POST /api/ad/new/:id
// @Summary Attach pictures to an ad (wizard step 2)
// @Tags Ads
// @Accept mpfd
// @Produce json
// @Param id path int true "Product ID"
// @Param picture_1 formData file true "First picture"
// @Param picture_2 formData file false "Second picture"
// @Param picture_3 formData file false "Third picture"
// @Success 201 {object} utils.MessageResponseStruct
// @Success 302 "Not the caller's ad, or pictures already exist"
// @Failure 400 {object} utils.ValidationErrorResponseStruct
// @Security CookieAuth
// @Router /ad/new/{id} [post]
func (h *AdHandler) CreatePictures(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	slots, closeAll, err := readSlots(c)
	defer closeAll()
	if err != nil {
		return badInput(c)
	}

	picture, err := h.Pictures.CreatePictures(c.UserContext(), user.ID, id, slots)
	switch {
	case errors.Is(err, services.ErrNotFound):
		return h.redirectToLatest(c, user.ID, "")
	case errors.Is(err, services.ErrPicturesExist):
		return redirect(c, "/api/profil/ad/picture/%d", picture.ID)
	case err != nil:
		return serviceError(c, err, "")
	}

	withURLs(h.Storage, picture)
	return utils.MessageResponse(c, fiber.StatusCreated, "Your ad has been published.", "/api/profil/ads", picture)
}

// ListUserAds handles GET /api/profil/ads
// @Summary The caller's ads
// @Tags Ads
// @Produce json
// @Success 200 {array} models.Product
// @Security CookieAuth
// @Router /profil/ads [get]
func (h *AdHandler) ListUserAds(c *fiber.Ctx) error {
	user := currentUser(c)
	products, err := services.ListUserAds(h.DB, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(productsWithURLs(h.Storage, products))
}

// ViewOwnAd handles GET /api/profil/ad/:id
func (h *AdHandler) ViewOwnAd(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	product, err := services.GetOwnedProduct(h.DB, user.ID, id)
	if errors.Is(err, services.ErrNotFound) {
		return h.redirectToLatest(c, user.ID, "")
	}
	if err != nil {
		return err
	}
	withURLs(h.Storage, product.Picture)
	return c.JSON(product)
}

// EditAdForm handles GET /api/profil/ad/:id/edit
func (h *AdHandler) EditAdForm(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	product, err := services.GetOwnedProduct(h.DB, user.ID, id)
	if errors.Is(err, services.ErrNotFound) {
		return h.redirectToLatest(c, user.ID, "/edit")
	}
	if err != nil {
		return err
	}
	withURLs(h.Storage, product.Picture)
	return h.formChoices(c, fiber.Map{"product": product})
}

// EditAd handles PUT /api/profil/ad/:id/edit
// @Summary Edit one of the caller's ads
// @Tags Ads
// @Accept json
// @Produce json
// @Param id path int true "Product ID"
// @Param body body services.AdInput true "Ad form"
// @Success 200 {object} utils.MessageResponseStruct
// @Success 302 "Not the caller's ad"
// @Failure 400 {object} utils.ValidationErrorResponseStruct
// @Security CookieAuth
// @Router /profil/ad/{id}/edit [put]
func (h *AdHandler) EditAd(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}
	if _, err := services.GetOwnedProduct(h.DB, user.ID, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return h.redirectToLatest(c, user.ID, "/edit")
		}
		return err
	}

	var in services.AdInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c)
	}

	product, err := services.UpdateAd(h.DB, user.ID, id, in)
	if err != nil {
		return serviceError(c, err, "")
	}
	withURLs(h.Storage, product.Picture)
	return utils.MessageResponse(c, fiber.StatusOK, "The ad has been modified.", utils.PathFor("/api/profil/ad", id), product)
}

// DeleteAd handles DELETE /api/profil/ad/:id/delete
// @Summary Delete one of the caller's ads
// @Tags Ads
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Success 302 "Not the caller's ad"
// @Security CookieAuth
// @Router /profil/ad/{id}/delete [delete]
func (h *AdHandler) DeleteAd(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	keys, err := services.DeleteAd(h.DB, user.ID, id)
	if errors.Is(err, services.ErrNotFound) {
		return h.redirectToLatest(c, user.ID, "/delete")
	}
	if err != nil {
		return err
	}
	h.Pictures.Purge(context.WithoutCancel(c.UserContext()), keys)
	return utils.MessageResponse(c, fiber.StatusOK, "The ad has been removed.", "/api/profil/ads", nil)
}

// DeleteAdConfirm handles GET /api/profil/ad/:id/delete
func (h *AdHandler) DeleteAdConfirm(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	product, err := services.GetOwnedProduct(h.DB, user.ID, id)
	if errors.Is(err, services.ErrNotFound) {
		return h.redirectToLatest(c, user.ID, "/delete")
	}
	if err != nil {
		return err
	}
	withURLs(h.Storage, product.Picture)
	return c.JSON(fiber.Map{
		"product": product,
		"message": "Deleting this ad also removes its pictures.",
	})
}

// EditPictures handles PUT /api/profil/ad/picture/:id
// @Summary Replace pictures of one of the caller's ads
// @Tags Ads
// @Accept mpfd
// @Produce json
// @Param id path int true "Picture set ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Success 302 "Not the caller's picture set"
// @Failure 400 {object} utils.ValidationErrorResponseStruct
// @Security CookieAuth
// @Router /profil/ad/picture/{id} [put]
func (h *AdHandler) EditPictures(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}
	if _, err := services.GetOwnedPicture(h.DB, user.ID, id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return h.redirectToOwnPicture(c, user.ID)
		}
		return err
	}

	slots, closeAll, err := readSlots(c)
	defer closeAll()
	if err != nil {
		return badInput(c)
	}

	picture, err := h.Pictures.UpdatePictures(c.UserContext(), user.ID, id, slots)
	if err != nil {
		return serviceError(c, err, "")
	}
	withURLs(h.Storage, picture)
	return utils.MessageResponse(c, fiber.StatusOK, "The image(s) have been modified.", utils.PathFor("/api/profil/ad", picture.ProductID), picture)
}

// EditPicturesForm handles GET /api/profil/ad/picture/:id
func (h *AdHandler) EditPicturesForm(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}
	picture, err := services.GetOwnedPicture(h.DB, user.ID, id)
	if errors.Is(err, services.ErrNotFound) {
		return h.redirectToOwnPicture(c, user.ID)
	}
	if err != nil {
		return err
	}
	withURLs(h.Storage, picture)
	return c.JSON(picture)
}

func (h *AdHandler) redirectToOwnPicture(c *fiber.Ctx, userID uint64) error {
	latest, err := services.LatestOwnedPicture(h.DB, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Redirect(newAdPath, fiber.StatusFound)
		}
		return err
	}
	return redirect(c, "/api/profil/ad/picture/%d", latest.ID)
}

// AdDetail handles GET /api/ad/:id
// @Summary Public ad page
// @Tags Ads
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} services.AdDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Router /ad/{id} [get]
func (h *AdHandler) AdDetail(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	detail, err := services.GetAdDetail(h.DB, id, viewerID(c))
	if err != nil {
		return serviceError(c, err, fmt.Sprintf("Ad '%d' not found", id))
	}

	withURLs(h.Storage, detail.Product.Picture)
	detail.Related = productsWithURLs(h.Storage, detail.Related)
	if detail.Others != nil {
		detail.Others = productsWithURLs(h.Storage, detail.Others)
	}
	return c.JSON(detail)
}

// Offer handles GET /api/ad/:id/offer
// @Summary Contact details of an ad
// @Tags Ads
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} services.OfferDetail
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /ad/{id}/offer [get]
func (h *AdHandler) Offer(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	offer, err := services.GetOfferDetail(h.DB, id)
	if err != nil {
		return serviceError(c, err, fmt.Sprintf("Ad '%d' not found", id))
	}
	withURLs(h.Storage, offer.Product.Picture)
	return c.JSON(offer)
}
