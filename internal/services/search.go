package services

import (
	"strings"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"gorm.io/gorm"
	"gorm.io/hints"
)

const (
	SearchLimit  = 32
	IndexLimit   = 8
	RelatedLimit = 4
)

// listingQuery selects products that have a picture set, with their associations
func listingQuery(db *gorm.DB) *gorm.DB {
	return db.Model(&models.Product{}).
		Select("products.*").
		Joins("JOIN pictures ON pictures.product_id = products.id").
		Preload("Category").Preload("Condition").Preload("Picture")
}

func newestFirst(db *gorm.DB) *gorm.DB {
	return db.Order("products.created_at DESC").Order("products.id DESC")
}

// escapeLike escapes LIKE wildcards with '!' as the escape character
func escapeLike(s string) string {
	r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
	return r.Replace(s)
}

// SearchListings returns listings whose title or category name contains query, case-insensitively
func SearchListings(db *gorm.DB, query string) ([]models.Product, error) {
	pattern := "%" + escapeLike(models.SearchKey(query)) + "%"

	var products []models.Product
	err := newestFirst(listingQuery(db.Clauses(hints.CommentBefore("select", "listing_search")))).
		Joins("JOIN categories ON categories.id = products.category_id").
		Where("products.title_search LIKE ? ESCAPE '!' OR categories.name_search LIKE ? ESCAPE '!'", pattern, pattern).
		Limit(SearchLimit).
		Find(&products).Error
	return products, err
}

// SearchCategory returns the listings of categoryID
func SearchCategory(db *gorm.DB, categoryID uint64) ([]models.Product, error) {
	var products []models.Product
	err := newestFirst(listingQuery(db.Clauses(hints.CommentBefore("select", "listing_category")))).
		Where("products.category_id = ?", categoryID).
		Limit(SearchLimit).
		Find(&products).Error
	return products, err
}

// SearchAll returns the newest listings
func SearchAll(db *gorm.DB) ([]models.Product, error) {
	return latestListings(db, SearchLimit, "listing_all")
}

// IndexListings returns the listings shown on the landing page
func IndexListings(db *gorm.DB) ([]models.Product, error) {
	return latestListings(db, IndexLimit, "listing_index")
}

func latestListings(db *gorm.DB, limit int, tag string) ([]models.Product, error) {
	var products []models.Product
	err := newestFirst(listingQuery(db.Clauses(hints.CommentBefore("select", tag)))).
		Limit(limit).
		Find(&products).Error
	return products, err
}
