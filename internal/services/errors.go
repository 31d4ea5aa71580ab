package services

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrBadCredentials  = errors.New("The username or password is incorrect.")
	ErrInvalidSession  = errors.New("invalid session")
	ErrAddressRequired = errors.New("an address is required before publishing an ad")
	ErrAddressExists   = errors.New("address already exists")
	ErrPicturesExist   = errors.New("pictures already exist for this product")
)
