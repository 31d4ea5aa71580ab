package services

import (
	"errors"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
	"github.com/lp-dev-web/lebonrecoin/internal/validation"
	"gorm.io/gorm"
)

// DefaultPrice applies when an ad is submitted without a price
const DefaultPrice = 10

// AdInput is the ad form
type AdInput struct {
	Category    uint64        `json:"category" form:"category" validate:"required"`
	Title       string        `json:"title" form:"title" validate:"required,max=50"`
	Price       types.FlexInt `json:"price" form:"price"`
	Description string        `json:"description" form:"description" validate:"required,max=1000"`
	Condition   uint64        `json:"condition" form:"condition" validate:"required"`
}

func validateAd(db *gorm.DB, in AdInput) error {
	verr := validation.Struct(in)

	if in.Price.Or(DefaultPrice) < 0 {
		verr.Add("price", types.CodeInvalid, "Ensure this value is greater than or equal to 0.")
	}
	if !verr.Has("category") {
		var count int64
		if err := db.Model(&models.Category{}).Where("id = ?", in.Category).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			verr.Add("category", types.CodeInvalidChoice, messageInvalidChoice)
		}
	}
	if !verr.Has("condition") {
		var count int64
		if err := db.Model(&models.Condition{}).Where("id = ?", in.Condition).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			verr.Add("condition", types.CodeInvalidChoice, messageInvalidChoice)
		}
	}
	return verr.OrNil()
}

// CreateAd publishes the first step of an ad for userID, who must have an address
func CreateAd(db *gorm.DB, userID uint64, in AdInput) (*models.Product, error) {
	ok, err := HasAddress(db, userID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrAddressRequired
	}
	if err := validateAd(db, in); err != nil {
		return nil, err
	}

	product := models.Product{
		UserID:      userID,
		CategoryID:  in.Category,
		Title:       in.Title,
		Price:       in.Price.Or(DefaultPrice),
		Description: in.Description,
		ConditionID: in.Condition,
	}
	if err := db.Omit("User", "Category", "Condition", "Picture").Create(&product).Error; err != nil {
		return nil, err
	}
	return GetProduct(db, product.ID)
}

// UpdateAd applies the ad form to product id owned by userID. created_at never changes.
func UpdateAd(db *gorm.DB, userID, id uint64, in AdInput) (*models.Product, error) {
	product, err := GetOwnedProduct(db, userID, id)
	if err != nil {
		return nil, err
	}
	if err := validateAd(db, in); err != nil {
		return nil, err
	}

	err = db.Model(&models.Product{ID: product.ID}).Updates(map[string]any{
		"category_id":  in.Category,
		"title":        in.Title,
		"title_search": models.SearchKey(in.Title),
		"price":        in.Price.Or(DefaultPrice),
		"description":  in.Description,
		"condition_id": in.Condition,
	}).Error
	if err != nil {
		return nil, err
	}
	return GetProduct(db, id)
}

// DeleteAd removes product id owned by userID with its favorites and pictures.
// It returns the storage keys that must be purged.
func DeleteAd(db *gorm.DB, userID, id uint64) ([]string, error) {
	var keys []string

	err := db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&product).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var picture models.Picture
		err := tx.Where("product_id = ?", id).Limit(1).Find(&picture).Error
		if err != nil {
			return err
		}
		keys = picture.Keys()

		if err := tx.Where("product_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("product_id = ?", id).Delete(&models.Picture{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Product{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func productQuery(db *gorm.DB) *gorm.DB {
	return db.Preload("Category").Preload("Condition").Preload("Picture")
}

// GetProduct loads a product with its category, condition and picture set
func GetProduct(db *gorm.DB, id uint64) (*models.Product, error) {
	var product models.Product
	if err := productQuery(db).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// GetOwnedProduct loads product id only when userID owns it
func GetOwnedProduct(db *gorm.DB, userID, id uint64) (*models.Product, error) {
	var product models.Product
	if err := productQuery(db).Where("user_id = ?", userID).First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// LatestOwnedProduct returns the most recently created product of userID
func LatestOwnedProduct(db *gorm.DB, userID uint64) (*models.Product, error) {
	var product models.Product
	if err := db.Where("user_id = ?", userID).Order("id DESC").First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// ListUserAds returns the products of userID, newest first
func ListUserAds(db *gorm.DB, userID uint64) ([]models.Product, error) {
	var products []models.Product
	err := productQuery(db).Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&products).Error
	return products, err
}
