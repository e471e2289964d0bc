package ledger

import (
	"fmt"
	"strings"
)

// Status is the lifecycle label of a parcel.
type Status string

const (
	StatusPending         Status = "Pending"
	StatusInTransit       Status = "In Transit"
	StatusDelivered       Status = "Delivered"
	StatusReturned        Status = "Returned"
	StatusPartialDelivery Status = "Partial Delivery"
	StatusPaid            Status = "Paid"
	StatusHold            Status = "Hold"
	StatusInReview        Status = "In Review"
	StatusWaitingApproval Status = "Waiting Approval"
	StatusCancelled       Status = "Cancelled"
)

// Statuses lists every status in dashboard order.
var Statuses = []Status{
	StatusPending,
	StatusInTransit,
	StatusDelivered,
	StatusReturned,
	StatusPartialDelivery,
	StatusPaid,
	StatusHold,
	StatusInReview,
	StatusWaitingApproval,
	StatusCancelled,
}

// ParseStatus maps a label to a Status. Matching ignores case and
// surrounding spaces; "in_transit" style keys are accepted too.
func ParseStatus(s string) (Status, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("_", " ", "-", " ").Replace(key)
	for _, st := range Statuses {
		if strings.ToLower(string(st)) == key {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
}

// Valid reports whether s is one of the ten known statuses.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusInTransit, StatusDelivered, StatusReturned,
		StatusPartialDelivery, StatusPaid, StatusHold, StatusInReview,
		StatusWaitingApproval, StatusCancelled:
		return true
	}
	return false
}

// IsRevenue reports whether a parcel in this status counts toward the
// merchant balance.
func (s Status) IsRevenue() bool {
	switch s {
	case StatusDelivered, StatusPaid:
		return true
	case StatusPending, StatusInTransit, StatusReturned, StatusPartialDelivery,
		StatusHold, StatusInReview, StatusWaitingApproval, StatusCancelled:
		return false
	}
	return false
}

func (s Status) String() string { return string(s) }
