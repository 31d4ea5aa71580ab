package middleware

import (
	"errors"
	"net/url"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"gorm.io/gorm"
)

// SessionCookie is the name of the cookie carrying the signed session
const SessionCookie = "cookie_session"

// LoginPath is where anonymous visitors of protected routes are sent
const LoginPath = "/api/login"

const localsUser = "user"

// SessionParser verifies a session token and returns its user id
type SessionParser interface {
	Parse(token string) (uint64, error)
}

// resolveUser returns the active user behind the session cookie, or nil
func resolveUser(c *fiber.Ctx, db *gorm.DB, sessions SessionParser) (*models.User, error) {
	token := c.Cookies(SessionCookie)
	if token == "" {
		return nil, nil
	}

	id, err := sessions.Parse(token)
	if err != nil {
		return nil, nil
	}

	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, nil
	}
	return &user, nil
}

// AuthUser requires a valid session; anonymous requests are redirected to the login page
func AuthUser(db *gorm.DB, sessions SessionParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(c, db, sessions)
		if err != nil {
			return err
		}
		if user == nil {
			if c.Cookies(SessionCookie) != "" {
				c.ClearCookie(SessionCookie)
			}
			return c.Redirect(LoginPath+"?next="+url.QueryEscape(c.OriginalURL()), fiber.StatusFound)
		}

		// Set user data in context
		c.Locals(localsUser, user)
		return c.Next()
	}
}

// OptionalUser attaches the session user when there is one and always continues
func OptionalUser(db *gorm.DB, sessions SessionParser) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(c, db, sessions)
		if err != nil {
			return err
		}
		if user != nil {
			c.Locals(localsUser, user)
		}
		return c.Next()
	}
}

// RedirectAuthenticated sends already logged in users to target
func RedirectAuthenticated(db *gorm.DB, sessions SessionParser, target string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, err := resolveUser(c, db, sessions)
		if err != nil {
			return err
		}
		if user != nil {
			return c.Redirect(target, fiber.StatusFound)
		}
		return c.Next()
	}
}

// CurrentUser returns the user attached by AuthUser or OptionalUser
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(localsUser).(*models.User)
	return user
}
