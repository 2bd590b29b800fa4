package debt

import "errors"

var (
	ErrNilState                    = errors.New("debt engine: state not configured")
	ErrUnauthorized                = errors.New("debt engine: caller is not governance")
	ErrCallerNotAToken             = errors.New("debt engine: caller is not the atoken")
	ErrCallerNotDiscountToken      = errors.New("debt engine: caller is not the discount token")
	ErrATokenAlreadySet            = errors.New("debt engine: atoken address already set")
	ErrInvalidMintAmount           = errors.New("debt engine: invalid mint amount")
	ErrInvalidBurnAmount           = errors.New("debt engine: invalid burn amount")
	ErrInvalidIndex                = errors.New("debt engine: index must be positive")
	ErrInvalidAddress              = errors.New("debt engine: zero address")
	ErrInsufficientBorrowAllowance = errors.New("debt engine: insufficient borrow allowance")
	ErrRebalanceConditionNotMet    = errors.New("debt engine: rebalance condition not met")
	ErrOperationNotSupported       = errors.New("debt engine: operation not supported")
)
