package ledger

import "errors"

var (
	// ErrParcelNotFound is used by read helpers. Mutations on a missing
	// parcel report Outcome.Applied == false instead.
	ErrParcelNotFound  = errors.New("parcel not found")
	ErrUnknownStatus   = errors.New("unknown parcel status")
	ErrInvalidAmount   = errors.New("invalid amount")
	ErrNothingToSettle = errors.New("nothing to settle")
	ErrDuplicateParcel = errors.New("parcel id already exists")
)
