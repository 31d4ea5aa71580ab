package handlers

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/services"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"gorm.io/gorm"
)

// CatalogHandler serves the landing page, search and reference lists
type CatalogHandler struct {
	DB      *gorm.DB
	Storage storage.Storage
}

func (h *CatalogHandler) listings(c *fiber.Ctx, products []models.Product, extra fiber.Map) error {
	categories, err := services.ListCategories(h.DB)
	if err != nil {
		return err
	}
	body := fiber.Map{
		"categories": categories,
		"products":   productsWithURLs(h.Storage, products),
	}
	for k, v := range extra {
		body[k] = v
	}
	return c.JSON(body)
}

// Index handles GET /api/
// @Summary Landing page
// @Tags Catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router / [get]
func (h *CatalogHandler) Index(c *fiber.Ctx) error {
	products, err := services.IndexListings(h.DB)
	if err != nil {
		return err
	}
	return h.listings(c, products, nil)
}

// Searching handles POST /api/searching and redirects to the search results
// @Summary Submit the search bar
// @Tags Catalog
// @Accept x-www-form-urlencoded
// @Param input-search formData string false "Search terms"
// @Success 302 "Redirect to the results"
// @Router /searching [post]
func (h *CatalogHandler) Searching(c *fiber.Ctx) error {
	var body struct {
		Input string `json:"input-search" form:"input-search"`
	}
	if err := c.BodyParser(&body); err != nil {
		return badInput(c)
	}

	q := strings.TrimSpace(body.Input)
	if q == "" {
		return c.Redirect("/api/search", fiber.StatusFound)
	}
	return c.Redirect("/api/search/"+url.PathEscape(q), fiber.StatusFound)
}

// SearchAll handles GET /api/search
// @Summary Newest listings
// @Tags Catalog
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /search [get]
func (h *CatalogHandler) SearchAll(c *fiber.Ctx) error {
	products, err := services.SearchAll(h.DB)
	if err != nil {
		return err
	}
	return h.listings(c, products, nil)
}

// Search handles GET /api/search/:search
// @Summary Search listings by title or category
// @Tags Catalog
// @Produce json
// @Param search path string true "Search terms"
// @Success 200 {object} map[string]interface{}
// @Router /search/{search} [get]
func (h *CatalogHandler) Search(c *fiber.Ctx) error {
	q, err := url.PathUnescape(c.Params("search"))
	if err != nil {
		q = c.Params("search")
	}

	products, err := services.SearchListings(h.DB, q)
	if err != nil {
		return err
	}
	return h.listings(c, products, fiber.Map{"search": q})
}

// SearchCategory handles GET /api/search/categorie/:id
// @Summary Listings of a category
// @Tags Catalog
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} map[string]interface{}
// @Router /search/categorie/{id} [get]
func (h *CatalogHandler) SearchCategory(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return badID(c, "id")
	}

	products, err := services.SearchCategory(h.DB, id)
	if err != nil {
		return err
	}
	return h.listings(c, products, fiber.Map{"category": id})
}

// Categories handles GET /api/categories
func (h *CatalogHandler) Categories(c *fiber.Ctx) error {
	categories, err := services.ListCategories(h.DB)
	if err != nil {
		return err
	}
	return c.JSON(categories)
}

// Conditions handles GET /api/conditions
func (h *CatalogHandler) Conditions(c *fiber.Ctx) error {
	conditions, err := services.ListConditions(h.DB)
	if err != nil {
		return err
	}
	return c.JSON(conditions)
}

// Countries handles GET /api/countries
func (h *CatalogHandler) Countries(c *fiber.Ctx) error {
	countries, err := services.ListCountries(h.DB)
	if err != nil {
		return err
	}
	return c.JSON(countries)
}

// Regions handles GET /api/countries/:code/regions
// @Summary Regions of a country
// @Tags Catalog
// @Produce json
// @Param code path string true "Country code"
// @Success 200 {array} models.Region
// @Router /countries/{code}/regions [get]
func (h *CatalogHandler) Regions(c *fiber.Ctx) error {
	code := strings.ToUpper(c.Params("code"))
	if len(code) != 2 {
		return badID(c, "code")
	}
	regions, err := services.ListRegions(h.DB, code)
	if err != nil {
		return err
	}
	return c.JSON(regions)
}

// Cities handles GET /api/regions/:code/cities
// @Summary Cities of a region
// @Tags Catalog
// @Produce json
// @Param code path int true "Region code"
// @Success 200 {array} models.City
// @Router /regions/{code}/cities [get]
func (h *CatalogHandler) Cities(c *fiber.Ctx) error {
	code, err := strconv.Atoi(c.Params("code"))
	if err != nil {
		return badID(c, "code")
	}
	cities, err := services.ListCities(h.DB, code)
	if err != nil {
		return err
	}
	return c.JSON(cities)
}
