package handlers

import (
	"context"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/middleware"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/utils"
	"gorm.io/gorm"
)

// AccountHandler handles registration, login and profile routes
type AccountHandler struct {
	DB           *gorm.DB
	Hasher       services.PasswordHasher
	Sessions     *services.SessionManager
	Pictures     *services.PictureService
	SecureCookie bool
	Now          func() time.Time
}

func (h *AccountHandler) today() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Register handles POST /api/register
// @Summary Create an account
// @Tags Account
// @Accept json
// @Produce json
// @Param body body services.RegisterInput true "Registration form"
// @Success 201 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ValidationErrorResponseStruct
// @Router /register [post]
func (h *AccountHandler) Register(c *fiber.Ctx) error {
	var in services.RegisterInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c)
	}

	user, err := services.RegisterUser(h.DB, h.Hasher, in, h.today())
	if err != nil {
		return serviceError(c, err, "")
	}

	return utils.MessageResponse(c, fiber.StatusCreated, "Your account has been created! You must now login.", "/api/login", user)
}

// LoginForm handles GET /api/login, where anonymous visitors of protected pages are sent
// @Summary Login form
// @Tags Account
// @Produce json
// @Param next query string false "Where to go after login"
// @Success 200 {object} map[string]interface{}
// @Success 302 "Already logged in"
// @Router /login [get]
func (h *AccountHandler) LoginForm(c *fiber.Ctx) error {
	next := safeNext(c.Query("next"), "/api/profil")
	if currentUser(c) != nil {
		return c.Redirect(next, fiber.StatusFound)
	}

	action := middleware.LoginPath
	if c.Query("next") != "" {
		action += "?next=" + url.QueryEscape(next)
	}
	return c.JSON(fiber.Map{
		"fields": []string{"username", "password"},
		"next":   next,
		"action": action,
	})
}

// Login handles POST /api/login
// @Summary Log in
// @Tags Account
// @Accept json
// @Produce json
// @Param next query string false "Where to go after login"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 401 {object} utils.ErrorResponseStruct
// @Router /login [post]
func (h *AccountHandler) Login(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username" form:"username"`
		Password string `json:"password" form:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badInput(c)
	}

	user, err := services.Authenticate(h.DB, h.Hasher, body.Username, body.Password)
	if err != nil {
		return serviceError(c, err, "")
	}

	token, expires, err := h.Sessions.Issue(user)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   h.SecureCookie,
		SameSite: fiber.CookieSameSiteLaxMode,
	})

	return utils.MessageResponse(c, fiber.StatusOK, "You are now logged in.", safeNext(c.Query("next"), "/api/profil"), user)
}

// Logout handles GET|POST /api/logout
func (h *AccountHandler) Logout(c *fiber.Ctx) error {
	c.ClearCookie(middleware.SessionCookie)
	return c.Redirect("/api/", fiber.StatusFound)
}

// Profil handles GET /api/profil
// @Summary Current account
// @Tags Account
// @Produce json
// @Success 200 {object} models.User
// @Security CookieAuth
// @Router /profil [get]
func (h *AccountHandler) Profil(c *fiber.Ctx) error {
	user := currentUser(c)
	hasAddress, err := services.HasAddress(h.DB, user.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"user":        user,
		"has_address": hasAddress,
	})
}

// ViewInformation handles GET /api/profil/information/:id
// @Summary Account information
// @Tags Account
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Success 302 "Not the caller's account"
// @Security CookieAuth
// @Router /profil/information/{id} [get]
func (h *AccountHandler) ViewInformation(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}
	if id != user.ID {
		return redirect(c, "/api/profil/information/%d", user.ID)
	}
	return c.JSON(user)
}

// InformationForm handles GET /api/profil/information/:id/edit
func (h *AccountHandler) InformationForm(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}
	if id != user.ID {
		return redirect(c, "/api/profil/information/%d/edit", user.ID)
	}
	return c.JSON(user)
}

// EditInformation handles PUT /api/profil/information/:id/edit
// @Summary Edit account information
// @Tags Account
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param body body services.InformationInput true "Information form"
// @Success 200 {object} utils.MessageResponseStruct
// @Failure 400 {object} utils.ValidationErrorResponseStruct
// @Security CookieAuth
// @Router /profil/information/{id}/edit [put]
func (h *AccountHandler) EditInformation(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}
	if id != user.ID {
		return redirect(c, "/api/profil/information/%d/edit", user.ID)
	}

	var in services.InformationInput
	if err := c.BodyParser(&in); err != nil {
		return badInput(c)
	}

	updated, err := services.UpdateInformation(h.DB, user.ID, in, h.today())
	if err != nil {
		return serviceError(c, err, "Account not found")
	}
	return utils.MessageResponse(c, fiber.StatusOK, "Your information has been modified.", "/api/profil/information/"+c.Params("id"), updated)
}

// DeleteProfilConfirm handles GET /api/profil/delete/:id
func (h *AccountHandler) DeleteProfilConfirm(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}
	if id != user.ID {
		return redirect(c, "/api/profil/delete/%d", user.ID)
	}
	return c.JSON(fiber.Map{
		"user":    user,
		"message": "Deleting your account also removes your address, your ads and your favorites.",
	})
}

// DeleteProfil handles DELETE /api/profil/delete/:id
// @Summary Delete the account
// @Tags Account
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} utils.MessageResponseStruct
// @Security CookieAuth
// @Router /profil/delete/{id} [delete]
func (h *AccountHandler) DeleteProfil(c *fiber.Ctx) error {
	user := currentUser(c)
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}
	if id != user.ID {
		return redirect(c, "/api/profil/delete/%d", user.ID)
	}

	keys, err := services.DeleteAccount(h.DB, user.ID)
	if err != nil {
		return serviceError(c, err, "Account not found")
	}
	h.Pictures.Purge(context.WithoutCancel(c.UserContext()), keys)

	c.ClearCookie(middleware.SessionCookie)
	return utils.MessageResponse(c, fiber.StatusOK, "Your account has been removed.", "/api/", nil)
}
