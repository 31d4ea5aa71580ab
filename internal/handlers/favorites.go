package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/utils"
	"gorm.io/gorm"
)

// FavoriteHandler handles the favorites of the current user
type FavoriteHandler struct {
	DB      *gorm.DB
	Storage storage.Storage
}

// Toggle handles POST /api/fav/:id
// @Summary Add or remove an ad from the caller's favorites
// @Tags Favorites
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /fav/{id} [post]
func (h *FavoriteHandler) Toggle(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	favorite, err := services.ToggleFavorite(h.DB, user.ID, id)
	if err != nil {
		return serviceError(c, err, fmt.Sprintf("Ad '%d' not found", id))
	}

	message := "The ad has been removed from your favorites."
	if favorite {
		message = "The ad has been added to your favorites."
	}
	return utils.MessageResponse(c, fiber.StatusOK, message, utils.PathFor("/api/ad", id), fiber.Map{"favorite": favorite})
}

// List handles GET /api/profil/favorites
// @Summary The caller's favorite ads
// @Tags Favorites
// @Produce json
// @Success 200 {array} models.Product
// @Security CookieAuth
// @Router /profil/favorites [get]
func (h *FavoriteHandler) List(c *fiber.Ctx) error {
	user := currentUser(c)
	products, err := services.ListFavorites(h.DB, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(productsWithURLs(h.Storage, products))
}

// Remove handles DELETE /api/profil/favorites/:id
// @Summary Remove an ad from the caller's favorites
// @Tags Favorites
// @Produce json
// @Param id path int true "Product ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Security CookieAuth
// @Router /profil/favorites/{id} [delete]
func (h *FavoriteHandler) Remove(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	if err := services.RemoveFavorite(h.DB, user.ID, id); err != nil {
		return serviceError(c, err, fmt.Sprintf("Ad '%d' is not in your favorites", id))
	}
	return utils.MessageResponse(c, fiber.StatusOK, "The ad has been removed from your favorites.", "/api/profil/favorites", nil)
}
