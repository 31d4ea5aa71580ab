package services

import (
	"errors"
	"time"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
	"github.com/lp-dev-web/lebonrecoin/internal/validation"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	messageUserExists     = "This user already exists."
	messageUsernameExists = "A user with that username already exists."
	messageInvalidDate    = "Enter a valid date."
	dateLayout            = "2006-01-02"
)

// RegisterInput is the registration form
type RegisterInput struct {
	Username  string `json:"username" form:"username" validate:"required,max=20,username"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=150"`
	Email     string `json:"email" form:"email" validate:"required,max=254,email"`
	Password1 string `json:"password1" form:"password1" validate:"required,min=8,max=100"`
	Password2 string `json:"password2" form:"password2" validate:"required,max=100"`
	BirthDate string `json:"birth_date" form:"birth_date" validate:"required"`
}

// InformationInput is the profile edit form
type InformationInput struct {
	Username  string `json:"username" form:"username" validate:"required,max=20,username"`
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=150"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=150"`
	Email     string `json:"email" form:"email" validate:"required,max=254,email"`
	BirthDate string `json:"birth_date" form:"birth_date" validate:"required"`
}

// RegisterUser validates in and creates the account
func RegisterUser(db *gorm.DB, hasher PasswordHasher, in RegisterInput, today time.Time) (*models.User, error) {
	verr := validation.Struct(in)
	validation.CheckPasswords(in.Password1, in.Password2, verr)
	birth := checkBirthDate(in.BirthDate, today, validation.MessageUnderageRegister, verr)
	if err := checkIdentityUnique(db, 0, in.Username, in.Email, verr); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	hash, err := hasher.Hash(in.Password1)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		PasswordHash: hash,
		BirthDate:    datatypes.Date(birth),
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			verr.Add("email", types.CodeAlreadyExists, messageUserExists)
			return nil, verr
		}
		return nil, err
	}
	return &user, nil
}

// GetUser loads a user by id
func GetUser(db *gorm.DB, id uint64) (*models.User, error) {
	var user models.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// UpdateInformation applies the profile edit form to user id
func UpdateInformation(db *gorm.DB, id uint64, in InformationInput, today time.Time) (*models.User, error) {
	user, err := GetUser(db, id)
	if err != nil {
		return nil, err
	}

	verr := validation.Struct(in)
	birth := checkBirthDate(in.BirthDate, today, validation.MessageUnderageEdit, verr)
	if err := checkIdentityUnique(db, id, in.Username, in.Email, verr); err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	err = db.Model(user).Updates(map[string]any{
		"username":   in.Username,
		"first_name": in.FirstName,
		"last_name":  in.LastName,
		"email":      in.Email,
		"birth_date": datatypes.Date(birth),
	}).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			verr.Add("email", types.CodeAlreadyExists, messageUserExists)
			return nil, verr
		}
		return nil, err
	}
	return GetUser(db, id)
}

// DeleteAccount removes the user and everything hanging off it in one transaction.
// It returns the storage keys of the pictures that belonged to the user's products.
func DeleteAccount(db *gorm.DB, id uint64) ([]string, error) {
	var keys []string

	err := db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.Select("id").First(&user, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		var productIDs []uint64
		if err := tx.Model(&models.Product{}).Where("user_id = ?", id).Pluck("id", &productIDs).Error; err != nil {
			return err
		}

		if len(productIDs) > 0 {
			var pictures []models.Picture
			if err := tx.Where("product_id IN ?", productIDs).Find(&pictures).Error; err != nil {
				return err
			}
			for i := range pictures {
				keys = append(keys, pictures[i].Keys()...)
			}

			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Favorite{}).Error; err != nil {
				return err
			}
			if err := tx.Where("product_id IN ?", productIDs).Delete(&models.Picture{}).Error; err != nil {
				return err
			}
		}

		if err := tx.Where("user_id = ?", id).Delete(&models.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Product{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&models.Address{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, id).Error
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func checkBirthDate(raw string, today time.Time, underage string, verr *types.ValidationError) time.Time {
	if verr.Has("birth_date") {
		return time.Time{}
	}
	birth, err := time.Parse(dateLayout, raw)
	if err != nil {
		verr.Add("birth_date", types.CodeInvalid, messageInvalidDate)
		return time.Time{}
	}
	if !validation.IsAdult(birth, today) {
		verr.Add("birth_date", types.CodeUnderage, underage)
	}
	return birth
}

// checkIdentityUnique flags username/email collisions with any user other than self
func checkIdentityUnique(db *gorm.DB, self uint64, username, email string, verr *types.ValidationError) error {
	if !verr.Has("email") {
		var count int64
		if err := db.Model(&models.User{}).Where("email = ? AND id <> ?", email, self).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			verr.Add("email", types.CodeAlreadyExists, messageUserExists)
		}
	}
	if !verr.Has("username") {
		var count int64
		if err := db.Model(&models.User{}).Where("username = ? AND id <> ?", username, self).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			verr.Add("username", types.CodeAlreadyExists, messageUsernameExists)
		}
	}
	return nil
}
