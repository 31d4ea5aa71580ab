package services

import (
	"errors"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
	"github.com/lp-dev-web/lebonrecoin/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const messageInvalidChoice = "Select a valid choice. That choice is not one of the available choices."

// AddressInput is the address form
type AddressInput struct {
	Country     string `json:"country" form:"country" validate:"required,len=2"`
	Region      int    `json:"region" form:"region" validate:"required"`
	City        int    `json:"city" form:"city" validate:"required"`
	Address     string `json:"address" form:"address" validate:"required,max=200"`
	PhoneNumber string `json:"phone_number" form:"phone_number" validate:"required,max=13,frphone"`
}

// validateAddress runs the field rules and the geography check against stored reference data
func validateAddress(db *gorm.DB, in AddressInput) error {
	verr := validation.Struct(in)

	var country models.Country
	var region models.Region
	var city models.City
	found := true

	if !verr.Has("country") {
		if err := db.First(&country, "code = ?", in.Country).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			verr.Add("country", types.CodeInvalidChoice, messageInvalidChoice)
			found = false
		}
	}
	if !verr.Has("region") {
		if err := db.First(&region, "code = ?", in.Region).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			verr.Add("region", types.CodeInvalidChoice, messageInvalidChoice)
			found = false
		}
	}
	if !verr.Has("city") {
		if err := db.First(&city, "code = ?", in.City).Error; err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
			verr.Add("city", types.CodeInvalidChoice, messageInvalidChoice)
			found = false
		}
	}

	if found && !verr.Has("country") && !verr.Has("region") && !verr.Has("city") {
		validation.CheckGeography(country, region, city, verr)
	}
	return verr.OrNil()
}

// CreateAddress registers the single address of userID.
// When the user already has one, it is returned together with ErrAddressExists.
func CreateAddress(db *gorm.DB, userID uint64, in AddressInput) (*models.Address, error) {
	if err := validateAddress(db, in); err != nil {
		return nil, err
	}

	address := models.Address{
		UserID:      userID,
		CountryCode: in.Country,
		RegionCode:  in.Region,
		CityCode:    in.City,
		Address:     in.Address,
		PhoneNumber: in.PhoneNumber,
	}
	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(&address)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		return nil, res.Error
	}
	if res.Error != nil || res.RowsAffected == 0 {
		existing, err := GetUserAddress(db, userID)
		if err != nil {
			return nil, err
		}
		return existing, ErrAddressExists
	}
	return GetAddress(db, address.ID)
}

// GetAddress loads an address with its geography
func GetAddress(db *gorm.DB, id uint64) (*models.Address, error) {
	var address models.Address
	err := db.Preload("Country").Preload("Region").Preload("City").First(&address, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &address, nil
}

// GetUserAddress loads the address of userID
func GetUserAddress(db *gorm.DB, userID uint64) (*models.Address, error) {
	var address models.Address
	err := db.Preload("Country").Preload("Region").Preload("City").Where("user_id = ?", userID).First(&address).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &address, nil
}

// HasAddress reports whether userID registered an address
func HasAddress(db *gorm.DB, userID uint64) (bool, error) {
	var count int64
	err := db.Model(&models.Address{}).Where("user_id = ?", userID).Count(&count).Error
	return count > 0, err
}

// UpdateAddress applies the address form to address id owned by userID
func UpdateAddress(db *gorm.DB, userID, id uint64, in AddressInput) (*models.Address, error) {
	if err := validateAddress(db, in); err != nil {
		return nil, err
	}

	var address models.Address
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&address).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	err := db.Model(&address).Updates(map[string]any{
		"country_code": in.Country,
		"region_code":  in.Region,
		"city_code":    in.City,
		"address":      in.Address,
		"phone_number": in.PhoneNumber,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetAddress(db, id)
}
