package database

import (
	"encoding/json"
	"fmt"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type referenceDocument struct {
	Countries []models.Country `json:"countries"`
	Regions   []struct {
		Code    int    `json:"code"`
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"regions"`
	Cities []struct {
		Code    int    `json:"code"`
		Name    string `json:"name"`
		Country string `json:"country"`
		Region  int    `json:"region"`
	} `json:"cities"`
	Categories []string `json:"categories"`
	Conditions []string `json:"conditions"`
}

// SeedReferenceData inserts countries, regions, cities, categories and conditions
// from the given JSON document. Rows that already exist are left untouched.
func SeedReferenceData(db *gorm.DB, raw []byte) error {
	var doc referenceDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return fmt.Errorf("invalid reference data: %w", err)
	}

	return db.Transaction(func(tx *gorm.DB) error {
		ignore := clause.OnConflict{DoNothing: true}

		if len(doc.Countries) > 0 {
			if err := tx.Clauses(ignore).Create(&doc.Countries).Error; err != nil {
				return fmt.Errorf("seed countries: %w", err)
			}
		}

		regions := make([]models.Region, 0, len(doc.Regions))
		for _, r := range doc.Regions {
			regions = append(regions, models.Region{Code: r.Code, Name: r.Name, CountryCode: r.Country})
		}
		if len(regions) > 0 {
			if err := tx.Clauses(ignore).Create(&regions).Error; err != nil {
				return fmt.Errorf("seed regions: %w", err)
			}
		}

		cities := make([]models.City, 0, len(doc.Cities))
		for _, c := range doc.Cities {
			cities = append(cities, models.City{Code: c.Code, Name: c.Name, CountryCode: c.Country, RegionCode: c.Region})
		}
		if len(cities) > 0 {
			if err := tx.Clauses(ignore).Create(&cities).Error; err != nil {
				return fmt.Errorf("seed cities: %w", err)
			}
		}

		// Categories and conditions have generated ids, so match on name
		for _, name := range doc.Categories {
			if err := tx.Where(models.Category{Name: name}).FirstOrCreate(&models.Category{}).Error; err != nil {
				return fmt.Errorf("seed category %q: %w", name, err)
			}
		}
		for _, name := range doc.Conditions {
			if err := tx.Where(models.Condition{Name: name}).FirstOrCreate(&models.Condition{}).Error; err != nil {
				return fmt.Errorf("seed condition %q: %w", name, err)
			}
		}

		return nil
	})
}
