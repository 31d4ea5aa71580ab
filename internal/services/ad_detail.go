package services

import (
	"errors"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"gorm.io/gorm"
)

// AdDetail is everything shown on the public page of an ad
type AdDetail struct {
	Product  *models.Product  `json:"product"`
	Owner    string           `json:"owner"`
	Address  *models.Address  `json:"address"`
	Related  []models.Product `json:"related"`
	Others   []models.Product `json:"others,omitempty"`
	Favorite bool             `json:"favorite"`
	Edit     bool             `json:"edit"`
}

// OfferDetail is the contact page of an ad
type OfferDetail struct {
	Product *models.Product `json:"product"`
	Owner   string          `json:"owner"`
	Address *models.Address `json:"address"`
}

func loadProductWithOwner(db *gorm.DB, id uint64) (*models.Product, *models.Address, error) {
	var product models.Product
	if err := productQuery(db).Preload("User").First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}

	address, err := GetUserAddress(db, product.UserID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, err
	}
	return &product, address, nil
}

// GetAdDetail builds the ad page of productID. viewerID is 0 for anonymous visitors.
// Related listings come from the same category; when there are none, up to four
// listings of any category are returned in Others instead.
func GetAdDetail(db *gorm.DB, productID, viewerID uint64) (*AdDetail, error) {
	product, address, err := loadProductWithOwner(db, productID)
	if err != nil {
		return nil, err
	}

	detail := &AdDetail{
		Product: product,
		Owner:   product.User.Username,
		Address: address,
		Edit:    viewerID != 0 && viewerID == product.UserID,
	}

	err = newestFirst(listingQuery(db)).
		Where("products.category_id = ? AND products.id <> ?", product.CategoryID, product.ID).
		Limit(RelatedLimit).
		Find(&detail.Related).Error
	if err != nil {
		return nil, err
	}

	if len(detail.Related) == 0 {
		err = newestFirst(listingQuery(db)).
			Where("products.id <> ?", product.ID).
			Limit(RelatedLimit).
			Find(&detail.Others).Error
		if err != nil {
			return nil, err
		}
	}

	if viewerID != 0 {
		if detail.Favorite, err = IsFavorite(db, viewerID, product.ID); err != nil {
			return nil, err
		}
	}
	return detail, nil
}

// GetOfferDetail returns the product with its owner's address
func GetOfferDetail(db *gorm.DB, productID uint64) (*OfferDetail, error) {
	product, address, err := loadProductWithOwner(db, productID)
	if err != nil {
		return nil, err
	}
	return &OfferDetail{Product: product, Owner: product.User.Username, Address: address}, nil
}
