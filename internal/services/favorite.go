package services

import (
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ToggleFavorite flips the favorite state of productID for userID and returns the new state.
// Delete-then-insert runs in one transaction and the unique (user_id, product_id) index
// absorbs a concurrent insert.
func ToggleFavorite(db *gorm.DB, userID, productID uint64) (bool, error) {
	var favorited bool

	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Product{}).Where("id = ?", productID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}

		res := tx.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			favorited = false
			return nil
		}

		favorite := models.Favorite{UserID: userID, ProductID: productID}
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Omit(clause.Associations).Create(&favorite).Error; err != nil {
			return err
		}
		favorited = true
		return nil
	})
	return favorited, err
}

// IsFavorite reports whether userID favorited productID
func IsFavorite(db *gorm.DB, userID, productID uint64) (bool, error) {
	var count int64
	err := db.Model(&models.Favorite{}).Where("user_id = ? AND product_id = ?", userID, productID).Count(&count).Error
	return count > 0, err
}

// ListFavorites returns the listings favorited by userID ordered by title
func ListFavorites(db *gorm.DB, userID uint64) ([]models.Product, error) {
	var products []models.Product
	err := listingQuery(db).
		Joins("JOIN favorites ON favorites.product_id = products.id").
		Where("favorites.user_id = ?", userID).
		Order("products.title").
		Find(&products).Error
	return products, err
}

// RemoveFavorite deletes the favorite of productID for userID
func RemoveFavorite(db *gorm.DB, userID, productID uint64) error {
	res := db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.Favorite{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
