package services

import (
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"gorm.io/gorm"
)

// ListCategories returns every category ordered by name
func ListCategories(db *gorm.DB) ([]models.Category, error) {
	var categories []models.Category
	err := db.Order("name").Find(&categories).Error
	return categories, err
}

// ListConditions returns every product condition
func ListConditions(db *gorm.DB) ([]models.Condition, error) {
	var conditions []models.Condition
	err := db.Order("id").Find(&conditions).Error
	return conditions, err
}

// ListCountries returns every country ordered by name
func ListCountries(db *gorm.DB) ([]models.Country, error) {
	var countries []models.Country
	err := db.Order("name").Find(&countries).Error
	return countries, err
}

// ListRegions returns the regions of a country
func ListRegions(db *gorm.DB, countryCode string) ([]models.Region, error) {
	var regions []models.Region
	err := db.Where("country_code = ?", countryCode).Order("name").Find(&regions).Error
	return regions, err
}

// ListCities returns the cities of a region
func ListCities(db *gorm.DB, regionCode int) ([]models.City, error) {
	var cities []models.City
	err := db.Where("region_code = ?", regionCode).Order("name").Find(&cities).Error
	return cities, err
}
