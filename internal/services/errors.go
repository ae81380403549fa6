package services

import "errors"

var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrInvalidAmount        = errors.New("invalid amount")
	ErrInvalidType          = errors.New("invalid transaction type")
	ErrInvalidStatus        = errors.New("invalid transaction status")
	ErrInsufficientBalance  = errors.New("insufficient balance")
	ErrAlreadyRefunded      = errors.New("transaction already refunded")
	ErrNotRefundable        = errors.New("only spend transactions can be refunded")
	ErrNotPending           = errors.New("transaction is not a pending purchase")
	ErrAlreadyApproved      = errors.New("account already approved")
	ErrBonusNotYetAvailable = errors.New("daily bonus not yet available")
	ErrUnknownPackage       = errors.New("unknown coin package")
	ErrUnknownBoostTier     = errors.New("unknown boost tier")
	ErrListingNotFound      = errors.New("listing not found")
	ErrNotListingOwner      = errors.New("listing does not belong to user")
	ErrListingNotActive     = errors.New("listing is not active")
)
