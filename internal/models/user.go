package models

import (
	"time"

	"gorm.io/datatypes"
)

// User is a registered marketplace account
type User struct {
	ID           uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string         `gorm:"size:20;not null;uniqueIndex" json:"username"`
	FirstName    string         `gorm:"size:150;not null" json:"first_name"`
	LastName     string         `gorm:"size:150;not null" json:"last_name"`
	Email        string         `gorm:"size:254;not null;uniqueIndex" json:"email"`
	PasswordHash string         `gorm:"size:255;not null" json:"-"`
	BirthDate    datatypes.Date `gorm:"not null" json:"birth_date"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Address is the single postal address attached to a user
type Address struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint64  `gorm:"not null;uniqueIndex" json:"user_id"`
	CountryCode string  `gorm:"size:2;not null" json:"country"`
	RegionCode  int     `gorm:"not null" json:"region"`
	CityCode    int     `gorm:"not null" json:"city"`
	Address     string  `gorm:"size:200;not null" json:"address"`
	PhoneNumber string  `gorm:"size:13;not null" json:"phone_number"`
	User        User    `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Country     Country `gorm:"foreignKey:CountryCode;references:Code" json:"country_detail"`
	Region      Region  `gorm:"foreignKey:RegionCode;references:Code" json:"region_detail"`
	City        City    `gorm:"foreignKey:CityCode;references:Code" json:"city_detail"`
}

// Favorite records that a user bookmarked a product
type Favorite struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    uint64    `gorm:"not null;uniqueIndex:idx_favorite_user_product" json:"user_id"`
	ProductID uint64    `gorm:"not null;uniqueIndex:idx_favorite_user_product;index" json:"product_id"`
	CreatedAt time.Time `json:"created_at"`
	User      User      `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	Product   Product   `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}

// TableName overrides the table name for User
func (User) TableName() string {
	return "users"
}

// TableName overrides the table name for Address
func (Address) TableName() string {
	return "addresses"
}

// TableName overrides the table name for Favorite
func (Favorite) TableName() string {
	return "favorites"
}
