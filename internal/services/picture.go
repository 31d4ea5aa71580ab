package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/storage"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
	"github.com/lp-dev-web/lebonrecoin/internal/validation"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PictureSlots is the number of images an ad can carry
const PictureSlots = 3

// Upload is one submitted image
type Upload struct {
	Filename string
	Reader   io.Reader
}

// PictureService stores ad images and keeps the picture rows in sync with storage
type PictureService struct {
	DB       *gorm.DB
	Storage  storage.Storage
	MaxBytes int64
	Log      *zap.Logger
	Now      func() time.Time
}

type storedUpload struct {
	key         string
	content     []byte
	contentType string
}

func (s *PictureService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// checkUploads validates every provided slot and reads its content
func (s *PictureService) checkUploads(productID uint64, slots [PictureSlots]*Upload, verr *types.ValidationError) [PictureSlots]*storedUpload {
	var out [PictureSlots]*storedUpload
	for i, up := range slots {
		if up == nil {
			continue
		}
		field := fmt.Sprintf("picture_%d", i+1)
		content, _, err := validation.CheckImage(up.Reader, s.MaxBytes)
		switch {
		case errors.Is(err, validation.ErrTooLarge):
			verr.Add(field, types.CodeTooLarge, fmt.Sprintf("The file may not exceed %d bytes.", s.MaxBytes))
			continue
		case err != nil:
			verr.Add(field, types.CodeInvalidImage, validation.MessageInvalidImage)
			continue
		}
		out[i] = &storedUpload{
			key:         storage.NewKey(productID, up.Filename, s.now()),
			content:     content,
			contentType: http.DetectContentType(content),
		}
	}
	return out
}

func (s *PictureService) save(ctx context.Context, uploads [PictureSlots]*storedUpload) ([]string, error) {
	var saved []string
	for _, up := range uploads {
		if up == nil {
			continue
		}
		if err := s.Storage.Save(ctx, up.key, up.content, up.contentType); err != nil {
			s.Purge(ctx, saved)
			return nil, err
		}
		saved = append(saved, up.key)
	}
	return saved, nil
}

// Purge removes stored files, logging failures
func (s *PictureService) Purge(ctx context.Context, keys []string) {
	for _, key := range keys {
		if err := s.Storage.Delete(ctx, key); err != nil && s.Log != nil {
			s.Log.Warn("failed to delete stored picture", zap.String("key", key), zap.Error(err))
		}
	}
}

// CreatePictures attaches the picture set of product productID owned by userID.
// The first slot is mandatory. A product gets one picture set; a second attempt
// returns the existing set with ErrPicturesExist.
func (s *PictureService) CreatePictures(ctx context.Context, userID, productID uint64, slots [PictureSlots]*Upload) (*models.Picture, error) {
	if _, err := GetOwnedProduct(s.DB, userID, productID); err != nil {
		return nil, err
	}
	if existing, err := PictureForProduct(s.DB, productID); err == nil {
		return existing, ErrPicturesExist
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	verr := types.NewValidationError()
	if slots[0] == nil {
		verr.Add("picture_1", types.CodeMissingPicture, validation.MessageMissingPicture)
	}
	uploads := s.checkUploads(productID, slots, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	saved, err := s.save(ctx, uploads)
	if err != nil {
		return nil, err
	}

	picture := models.Picture{ProductID: productID}
	for i, up := range uploads {
		if up != nil {
			setSlot(&picture, i, up.key)
		}
	}

	res := s.DB.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "product_id"}}, DoNothing: true}).Create(&picture)
	if res.Error != nil && !errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		s.Purge(ctx, saved)
		return nil, res.Error
	}
	if res.Error != nil || res.RowsAffected == 0 {
		s.Purge(ctx, saved)
		existing, err := PictureForProduct(s.DB, productID)
		if err != nil {
			return nil, err
		}
		return existing, ErrPicturesExist
	}
	return &picture, nil
}

// UpdatePictures replaces the provided slots of picture set pictureID owned by userID
func (s *PictureService) UpdatePictures(ctx context.Context, userID, pictureID uint64, slots [PictureSlots]*Upload) (*models.Picture, error) {
	picture, err := GetOwnedPicture(s.DB, userID, pictureID)
	if err != nil {
		return nil, err
	}

	verr := types.NewValidationError()
	uploads := s.checkUploads(picture.ProductID, slots, verr)
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	saved, err := s.save(ctx, uploads)
	if err != nil {
		return nil, err
	}
	if len(saved) == 0 {
		return picture, nil
	}

	var replaced []string
	updates := map[string]any{}
	for i, up := range uploads {
		if up == nil {
			continue
		}
		if old := slot(picture, i); old != "" {
			replaced = append(replaced, old)
		}
		setSlot(picture, i, up.key)
		updates[fmt.Sprintf("picture%d", i+1)] = up.key
	}

	if err := s.DB.Model(&models.Picture{ID: picture.ID}).Updates(updates).Error; err != nil {
		s.Purge(ctx, saved)
		return nil, err
	}
	s.Purge(ctx, replaced)
	return picture, nil
}

func slot(p *models.Picture, i int) string {
	switch i {
	case 0:
		return p.Picture1
	case 1:
		return p.Picture2
	}
	return p.Picture3
}

func setSlot(p *models.Picture, i int, key string) {
	switch i {
	case 0:
		p.Picture1 = key
	case 1:
		p.Picture2 = key
	default:
		p.Picture3 = key
	}
}

// PictureForProduct loads the picture set of productID
func PictureForProduct(db *gorm.DB, productID uint64) (*models.Picture, error) {
	var picture models.Picture
	if err := db.Where("product_id = ?", productID).First(&picture).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &picture, nil
}

// GetOwnedPicture loads picture set id when its product belongs to userID
func GetOwnedPicture(db *gorm.DB, userID, id uint64) (*models.Picture, error) {
	var picture models.Picture
	err := db.Joins("JOIN products ON products.id = pictures.product_id").
		Where("pictures.id = ? AND products.user_id = ?", id, userID).
		Select("pictures.*").
		First(&picture).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &picture, nil
}

// LatestOwnedPicture returns the picture set of the most recent product of userID that has one
func LatestOwnedPicture(db *gorm.DB, userID uint64) (*models.Picture, error) {
	var picture models.Picture
	err := db.Joins("JOIN products ON products.id = pictures.product_id").
		Where("products.user_id = ?", userID).
		Order("products.id DESC").
		Select("pictures.*").
		First(&picture).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &picture, nil
}
