package payment

import "errors"

var (
	ErrInvalidPaymentID = errors.New("invalid payment id")
	ErrPaymentNotFound  = errors.New("payment not found")
	ErrUpstreamSync     = errors.New("upstream sync failed")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidPayload   = errors.New("invalid webhook payload")

	ErrInvalidTarget   = errors.New("payment target must be exactly one reserva or inscripcion")
	ErrTargetNotFound  = errors.New("payment target not found")
	ErrTargetCancelled = errors.New("payment target is cancelled")
	ErrAlreadyPaid     = errors.New("already paid")
	ErrForbidden       = errors.New("forbidden")

	ErrCheckoutInProgress = errors.New("a checkout for this booking is already being opened")
)
