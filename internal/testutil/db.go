// db.go
//
// LeBonRecoin classifieds service
// Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC
//
// This file is part of lebonrecoin.
// lebonrecoin is free software: you can redistribute it and/or modify it
// under the terms of the GNU Affero General Public License as published by the Free Software
// Foundation, either version 3 of the License, or (at your option) any later version.
// lebonrecoin is distributed in the hope that it will be useful, but WITHOUT ANY WARRANTY;
// without even the implied warranty of MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.
// See the GNU Affero General Public License for more details.
// You should have received a copy of the GNU Affero General Public License along with lebonrecoin.
// If not, see <https://www.gnu.org/licenses/>.
// Additional terms under GNU AGPL version 3 section 7:
// a) The reasonable legal notice of original copyright and author attribution must be preserved
//    by including the string: "Copyright (c) 2026 Alex Grant <info@localnerve.com> (https://www.localnerve.com), LocalNerve LLC"
//    in this material, copies, or source code of derived works.

package testutil

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/lp-dev-web/lebonrecoin/data"
	"github.com/lp-dev-web/lebonrecoin/internal/config"
	"github.com/lp-dev-web/lebonrecoin/internal/database"
	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Password is the clear text password of every fixture user
const Password = "Sup3rSecret!"

// Reference data ids of the seeded fixture set
const (
	CountryFR      = "FR"
	CountryBE      = "BE"
	RegionIDF      = 11
	RegionBretagne = 53
	RegionWallonie = 1002
	CityParis      = 75056
	CityRennes     = 35238
	CityLiege      = 100002

	CategoryVehicules  uint64 = 1
	CategoryImmobilier uint64 = 2
	CategoryMultimedia uint64 = 3
	CategoryMaison     uint64 = 4
	ConditionNeuf      uint64 = 1
	ConditionBonEtat   uint64 = 3
)

// TestConfig returns a configuration backed by a sqlite file in a temporary directory
func TestConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	return &config.Config{
		Port:              "3000",
		DBType:            "sqlite",
		DBDatabase:        filepath.Join(dir, "lebonrecoin.db"),
		DBConnectionLimit: 1,
		DBLogLevel:        "silent",
		SeedReferenceData: true,
		StorageDriver:     "local",
		UploadRoot:        filepath.Join(dir, "uploads"),
		UploadURLPrefix:   "/uploads",
		UploadMaxBytes:    5 * 1024 * 1024,
		SessionSecret:     "test-secret",
		SessionTTL:        time.Hour,
		BcryptCost:        bcrypt.MinCost,
		LogLevel:          "error",
	}
}

// NewTestDB opens a migrated and seeded database for cfg
func NewTestDB(t *testing.T, cfg *config.Config) *gorm.DB {
	t.Helper()

	db, err := database.Connect(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close(db) })

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	if err := database.SeedReferenceData(db, data.ReferenceData); err != nil {
		t.Fatalf("Failed to seed test database: %v", err)
	}
	return db
}

// CreateUser inserts an active adult user whose password is Password
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(Password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("Failed to hash password: %v", err)
	}
	user := models.User{
		Username:     username,
		FirstName:    "Jean",
		LastName:     "Dupont",
		Email:        username + "@example.com",
		PasswordHash: string(hash),
		BirthDate:    datatypes.Date(time.Date(1990, 6, 15, 0, 0, 0, 0, time.UTC)),
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", username, err)
	}
	return &user
}

// CreateAddress gives userID an address in Paris
func CreateAddress(t *testing.T, db *gorm.DB, userID uint64) *models.Address {
	t.Helper()

	address := models.Address{
		UserID:      userID,
		CountryCode: CountryFR,
		RegionCode:  RegionIDF,
		CityCode:    CityParis,
		Address:     "1 rue de Rivoli",
		PhoneNumber: "0612345678",
	}
	if err := db.Omit(clause.Associations).Create(&address).Error; err != nil {
		t.Fatalf("Failed to create address: %v", err)
	}
	return &address
}

// CreateProduct inserts p after filling the mandatory fields left empty
func CreateProduct(t *testing.T, db *gorm.DB, p models.Product) *models.Product {
	t.Helper()

	if p.Title == "" {
		p.Title = "Vélo de course"
	}
	if p.Description == "" {
		p.Description = "Très peu servi"
	}
	if p.CategoryID == 0 {
		p.CategoryID = CategoryVehicules
	}
	if p.ConditionID == 0 {
		p.ConditionID = ConditionBonEtat
	}
	if p.Price == 0 {
		p.Price = 10
	}
	if err := db.Omit(clause.Associations).Create(&p).Error; err != nil {
		t.Fatalf("Failed to create product: %v", err)
	}
	return &p
}

// CreatePicture attaches a picture set to productID; empty keys leave slots empty
func CreatePicture(t *testing.T, db *gorm.DB, productID uint64, keys ...string) *models.Picture {
	t.Helper()

	picture := models.Picture{ProductID: productID}
	if len(keys) == 0 {
		keys = []string{"fixture/1.png"}
	}
	for i, k := range keys {
		switch i {
		case 0:
			picture.Picture1 = k
		case 1:
			picture.Picture2 = k
		case 2:
			picture.Picture3 = k
		}
	}
	if err := db.Create(&picture).Error; err != nil {
		t.Fatalf("Failed to create picture: %v", err)
	}
	return &picture
}

// CreateListing inserts a product with a picture set so it shows up in listings
func CreateListing(t *testing.T, db *gorm.DB, p models.Product) *models.Product {
	t.Helper()
	product := CreateProduct(t, db, p)
	product.Picture = CreatePicture(t, db, product.ID)
	return product
}
