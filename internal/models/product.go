package models

import (
	"time"

	"gorm.io/gorm"
)

// Product is a classified ad
type Product struct {
	ID          uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64    `gorm:"not null;index" json:"user_id"`
	CategoryID  uint64    `gorm:"not null;index" json:"category_id"`
	Title       string    `gorm:"size:50;not null" json:"title"`
	TitleSearch string    `gorm:"size:50;not null;default:'';index" json:"-"`
	Price       int       `gorm:"not null;default:10" json:"price"`
	Description string    `gorm:"size:1000;not null" json:"description"`
	ConditionID uint64    `gorm:"not null" json:"condition_id"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime;<-:create;index" json:"created_at"`
	User        User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Category    Category  `json:"category"`
	Condition   Condition `json:"condition"`
	Picture     *Picture  `gorm:"constraint:OnDelete:CASCADE" json:"picture,omitempty"`
}

// BeforeSave keeps the search key in step with the title
func (p *Product) BeforeSave(_ *gorm.DB) error {
	if p.Title != "" {
		p.TitleSearch = SearchKey(p.Title)
	}
	return nil
}

// Picture holds the storage keys of up to three images for one product
type Picture struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement" json:"id"`
	ProductID uint64 `gorm:"not null;uniqueIndex" json:"product_id"`
	Picture1  string `gorm:"size:255" json:"picture_1"`
	Picture2  string `gorm:"size:255" json:"picture_2"`
	Picture3  string `gorm:"size:255" json:"picture_3"`

	// URLs is filled at response time from the configured storage
	URLs []string `gorm:"-" json:"urls,omitempty"`
}

// Keys returns the non-empty storage keys of the picture set
func (p *Picture) Keys() []string {
	keys := make([]string, 0, 3)
	for _, k := range []string{p.Picture1, p.Picture2, p.Picture3} {
		if k != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// TableName overrides the table name for Product
func (Product) TableName() string {
	return "products"
}

// TableName overrides the table name for Picture
func (Picture) TableName() string {
	return "pictures"
}
