package gho

import "errors"

var (
	ErrNilState               = errors.New("gho: state not configured")
	ErrInvalidInput           = errors.New("gho: invalid input")
	ErrInvalidLabel           = errors.New("gho: invalid facilitator label")
	ErrUnauthorized           = errors.New("gho: caller is not governance")
	ErrFacilitatorExists      = errors.New("gho: facilitator already exists")
	ErrFacilitatorNotFound    = errors.New("gho: facilitator does not exist")
	ErrBucketLevelNotZero     = errors.New("gho: facilitator bucket level not zero")
	ErrInvalidFacilitator     = errors.New("gho: caller is not an active facilitator")
	ErrBucketCapacityExceeded = errors.New("gho: facilitator bucket capacity exceeded")
	ErrInvalidMintAmount      = errors.New("gho: mint amount must be positive")
	ErrInvalidBurnAmount      = errors.New("gho: burn amount must be positive")
	ErrInsufficientBalance    = errors.New("gho: insufficient balance")
)
