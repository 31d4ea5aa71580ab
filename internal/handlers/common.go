// common.go
//
// LeBonRecoin classifieds service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of lebonrecoin.
// lebonrecoin is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// lebonrecoin is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with lebonrecoin.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/middleware"
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
	"github.com/lp-dev-web/lebonrecoin/internal/utils"
)

// parseID reads a positive integer route parameter
func parseID(c *fiber.Ctx, name string) (uint64, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", name)
	}
	return id, nil
}

// badID answers a malformed identifier
func badID(c *fiber.Ctx, name string) error {
	return utils.ErrorResponse(c, fmt.Sprintf("Invalid identifier '%s'", c.Params(name)), fiber.StatusBadRequest, "validation.id")
}

// badInput answers a body that could not be decoded
func badInput(c *fiber.Ctx) error {
	return utils.ErrorResponse(c, "Invalid input", fiber.StatusBadRequest, "validation.input")
}

// currentUser returns the authenticated user; routes using it sit behind AuthUser
func currentUser(c *fiber.Ctx) *models.User {
	return middleware.CurrentUser(c)
}

// viewerID is 0 for anonymous visitors
func viewerID(c *fiber.Ctx) uint64 {
	if user := middleware.CurrentUser(c); user != nil {
		return user.ID
	}
	return 0
}

func redirect(c *fiber.Ctx, format string, args ...any) error {
	return c.Redirect(fmt.Sprintf(format, args...), fiber.StatusFound)
}

// serviceError maps service errors onto responses. Unknown errors go to the app error handler.
func serviceError(c *fiber.Ctx, err error, notFound string) error {
	var verr *types.ValidationError
	switch {
	case errors.As(err, &verr):
		return utils.ValidationErrorResponse(c, verr)
	case errors.Is(err, services.ErrNotFound):
		return utils.NotFoundResponse(c, notFound)
	case errors.Is(err, services.ErrBadCredentials):
		return utils.ErrorResponse(c, err.Error(), fiber.StatusUnauthorized, "authentication")
	}
	return err
}

// withURLs fills the public URLs of picture sets from the configured storage
func withURLs(store storage.Storage, pictures ...*models.Picture) {
	for _, p := range pictures {
		if p == nil {
			continue
		}
		p.URLs = p.URLs[:0]
		for _, key := range p.Keys() {
			p.URLs = append(p.URLs, store.URL(key))
		}
	}
}

func productsWithURLs(store storage.Storage, products []models.Product) []models.Product {
	for i := range products {
		withURLs(store, products[i].Picture)
	}
	if products == nil {
		return []models.Product{}
	}
	return products
}

// safeNext keeps post-login redirects on this API
func safeNext(next, fallback string) string {
	if strings.HasPrefix(next, "/api/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return fallback
}
