package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/utils"
	"gorm.io/gorm"
)

const addressCreationPath = "/api/profil/information/address"

// AddressHandler handles the address of the current user
type AddressHandler struct {
	DB *gorm.DB
}

// redirectToOwn sends the caller to their address, or to the creation form when they have none
func (h *AddressHandler) redirectToOwn(c *fiber.Ctx, userID uint64, suffix string) error {
	address, err := services.GetUserAddress(h.DB, userID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return c.Redirect(addressCreationPath, fiber.StatusFound)
		}
		return err
	}
	return redirect(c, "%s/%d%s", addressCreationPath, address.ID, suffix)
}

// NewAddressForm handles GET /api/profil/information/address
// @Summary Address creation form
// @Tags Address
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Success 302 "The caller already has an address"
// @Security CookieAuth
// @Router /profil/information/address [get]
func (h *AddressHandler) NewAddressForm(c *fiber.Ctx) error {
	user := currentUser(c)
	address, err := services.GetUserAddress(h.DB, user.ID)
	if err == nil {
		return redirect(c, "%s/%d", addressCreationPath, address.ID)
	}
	if !errors.Is(err, services.ErrNotFound) {
		return err
	}

	countries, err := services.ListCountries(h.DB)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"countries": countries})
}

// CreateAddress handles POST /api/profil/information/address
// @Summary Register the caller's address
// @Tags Address
// @Accept json
// @Produce json
// @Param body body services.AddressInput true "Address form"
// @Success 201 {object} utils.MessageResponseStruct
// @Success 302 "The caller already has an address"
// @Failure 400 {object} utils.ValidationErrorResponseStruct
// @Security CookieAuth
// @Router /profil/information/address [post]
func (h *AddressHandler) CreateAddress(c *fiber.Ctx) error {
	user := currentUser(c)

	var in services.AddressInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c)
	}

	address, err := services.CreateAddress(h.DB, user.ID, in)
	if errors.Is(err, services.ErrAddressExists) {
		return redirect(c, "%s/%d", addressCreationPath, address.ID)
	}
	if err != nil {
		return serviceError(c, err, "")
	}
	return utils.MessageResponse(c, fiber.StatusCreated, "Your address has been registered.",
		utils.PathFor(addressCreationPath, address.ID), address)
}

// ViewAddress handles GET /api/profil/information/address/:id
func (h *AddressHandler) ViewAddress(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	address, err := services.GetAddress(h.DB, id)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return err
	}
	if address == nil || address.UserID != user.ID {
		return h.redirectToOwn(c, user.ID, "")
	}
	return c.JSON(address)
}

// AddressForm handles GET /api/profil/information/address/:id/edit
func (h *AddressHandler) AddressForm(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	address, err := services.GetAddress(h.DB, id)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return err
	}
	if address == nil || address.UserID != user.ID {
		return h.redirectToOwn(c, user.ID, "/edit")
	}

	countries, err := services.ListCountries(h.DB)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"address": address, "countries": countries})
}

// EditAddress handles PUT /api/profil/information/address/:id/edit
// @Summary Edit the caller's address
// @Tags Address
// @Accept json
// @Produce json
// @Param id path int true "Address ID"
// @Param body body services.AddressInput true "Address form"
// @Success 200 {object} utils.MessageResponseStruct
// @Success 302 "Not the caller's address"
// @Failure 400 {object} utils.ValidationErrorResponseStruct
// @Security CookieAuth
// @Router /profil/information/address/{id}/edit [put]
func (h *AddressHandler) EditAddress(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	owned, err := services.GetAddress(h.DB, id)
	if err != nil && !errors.Is(err, services.ErrNotFound) {
		return err
	}
	if owned == nil || owned.UserID != user.ID {
		return h.redirectToOwn(c, user.ID, "/edit")
	}

	var in services.AddressInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c)
	}

	address, err := services.UpdateAddress(h.DB, user.ID, id, in)
	if err != nil {
		return serviceError(c, err, "")
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Your new address has been registered.",
		utils.PathFor(addressCreationPath, address.ID), address)
}
