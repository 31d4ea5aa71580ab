package models

import "gorm.io/gorm"

// Country is reference data keyed by its two letter code
type Country struct {
	Code string `gorm:"primaryKey;size:2" json:"code"`
	Name string `gorm:"size:50;not null" json:"name"`
}

// Region belongs to a country
type Region struct {
	Code        int    `gorm:"primaryKey;autoIncrement:false" json:"code"`
	Name        string `gorm:"size:50;not null" json:"name"`
	CountryCode string `gorm:"size:2;not null;index" json:"country"`
}

// City belongs to a region and, redundantly, to a country
type City struct {
	Code        int    `gorm:"primaryKey;autoIncrement:false" json:"code"`
	Name        string `gorm:"size:50;not null" json:"name"`
	CountryCode string `gorm:"size:2;not null;index" json:"country"`
	RegionCode  int    `gorm:"not null;index" json:"region"`
}

// Category classifies products
type Category struct {
	ID         uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name       string `gorm:"size:60;not null" json:"name"`
	NameSearch string `gorm:"size:60;not null;default:''" json:"-"`
}

// BeforeSave keeps the search key in step with the name
func (c *Category) BeforeSave(_ *gorm.DB) error {
	if c.Name != "" {
		c.NameSearch = SearchKey(c.Name)
	}
	return nil
}

// Condition describes the state of a product (new, used, ...)
type Condition struct {
	ID   uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	Name string `gorm:"size:60;not null" json:"name"`
}

// TableName overrides the table name for Country
func (Country) TableName() string {
	return "countries"
}

// TableName overrides the table name for Region
func (Region) TableName() string {
	return "regions"
}

// TableName overrides the table name for City
func (City) TableName() string {
	return "cities"
}

// TableName overrides the table name for Category
func (Category) TableName() string {
	return "categories"
}

// TableName overrides the table name for Condition
func (Condition) TableName() string {
	return "conditions"
}
