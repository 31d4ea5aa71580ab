package validation

import (
	"bytes"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"time"
	"unicode"

	"github.com/lp-dev-web/lebonrecoin/internal/models"
	"github.com/lp-dev-web/lebonrecoin/internal/types"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	MessageRegionMismatch   = "The region does not correspond with the country."
	MessageCityMismatch     = "The city does not correspond with the region."
	MessagePasswordMismatch = "Passwords must be equal."
	MessageUnderageRegister = "You must be 18 years old to register."
	MessageUnderageEdit     = "You must be 18 years old."
	MessageMissingPicture   = "You must add at least one image."
	MessageInvalidImage     = "Upload a valid image. The file you uploaded was either not an image or a corrupted image."
)

// IsAdult compares (year+18, month, day) of birth against today's (year, month, day).
// The tuples are compared lexicographically so Feb 29 births need no calendar normalisation.
func IsAdult(birth, today time.Time) bool {
	by, bm, bd := birth.Date()
	ty, tm, td := today.Date()

	switch {
	case by+18 != ty:
		return by+18 < ty
	case bm != tm:
		return bm < tm
	default:
		return bd <= td
	}
}

// CheckGeography verifies region belongs to country and city belongs to region and country
func CheckGeography(country models.Country, region models.Region, city models.City, verr *types.ValidationError) {
	if region.CountryCode != country.Code {
		verr.Add("region", types.CodeRegionMismatch, MessageRegionMismatch)
	}
	if city.RegionCode != region.Code || city.CountryCode != country.Code {
		verr.Add("city", types.CodeCityMismatch, MessageCityMismatch)
	}
}

// CheckPasswords applies the account password rules to a password/confirmation pair
func CheckPasswords(password1, password2 string, verr *types.ValidationError) {
	if password1 != password2 {
		verr.Add("password2", types.CodePasswordMismatch, MessagePasswordMismatch)
		return
	}
	if verr.Has("password1") {
		return
	}
	numeric := password1 != ""
	for _, r := range password1 {
		if !unicode.IsDigit(r) {
			numeric = false
			break
		}
	}
	if numeric {
		verr.Add("password1", types.CodePasswordNumeric, "This password is entirely numeric.")
	}
}

// CheckImage decodes the header of an upload and returns its format.
// The reader is consumed; the returned bytes hold the full content.
func CheckImage(r io.Reader, maxBytes int64) ([]byte, string, error) {
	content, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, "", err
	}
	if int64(len(content)) > maxBytes {
		return nil, "", ErrTooLarge
	}
	_, format, err := image.DecodeConfig(bytes.NewReader(content))
	if err != nil {
		return nil, "", ErrNotImage
	}
	return content, format, nil
}
