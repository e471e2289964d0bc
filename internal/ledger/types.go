package ledger

import "time"

// TrackingStep is one entry of a parcel's history. Steps are never edited
// once appended.
type TrackingStep struct {
	Status       string    `json:"status"`
	Description  string    `json:"description"`
	Location     string    `json:"location"`
	Timestamp    time.Time `json:"timestamp"`
	HandlerName  string    `json:"handler_name"`
	HandlerPhone string    `json:"handler_phone"`
	HubPhone     string    `json:"hub_phone"`
}

// Parcel is a consignment owned by the ledger.
type Parcel struct {
	ID              string         `json:"id"`
	CustomerName    string         `json:"customer_name"`
	Phone           string         `json:"phone"`
	Address         string         `json:"address"`
	Amount          float64        `json:"amount"`
	Weight          string         `json:"weight"`
	Exchange        bool           `json:"exchange"`
	Note            string         `json:"note"`
	Type            string         `json:"type,omitempty"` // Pickup / Drop
	Status          Status         `json:"status"`
	CreatedAt       time.Time      `json:"created_at"`
	TrackingHistory []TrackingStep `json:"tracking_history"`
}

// Net returns the parcel's net receivable.
func (p Parcel) Net() float64 { return NetAmount(p.Amount, p.Weight) }

func (p Parcel) clone() Parcel {
	p.TrackingHistory = append([]TrackingStep(nil), p.TrackingHistory...)
	return p
}

// Draft carries the merchant-entered fields of a new parcel.
type Draft struct {
	ID           string
	CustomerName string
	Phone        string
	Address      string
	Amount       float64
	Weight       string
	Exchange     bool
	Note         string
	Type         string
}

// TransactionType classifies balance movements; the sign is implied.
type TransactionType string

const (
	TxTopUp       TransactionType = "Top-up"
	TxWithdrawal  TransactionType = "Withdrawal"
	TxOrderIncome TransactionType = "Order Income"
	TxCharge      TransactionType = "Charge"
)

type TransactionStatus string

const (
	TxCompleted TransactionStatus = "Completed"
	TxPending   TransactionStatus = "Pending"
	TxFailed    TransactionStatus = "Failed"
)

const (
	MethodCorrection = "Correction"
	MethodSystem     = "System"
	MethodSettlement = "Settlement"
)

// Transaction is an immutable balance event. Amount is never negative.
type Transaction struct {
	ID        string            `json:"id"`
	Type      TransactionType   `json:"type"`
	Amount    float64           `json:"amount"`
	Method    string            `json:"method,omitempty"`
	Status    TransactionStatus `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Note      string            `json:"note,omitempty"`
}

// Merchant is the identity used to attribute creation steps.
type Merchant struct {
	MerchantID string `json:"merchant_id"`
	Name       string `json:"name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
}

// State is everything the persistence collaborator stores for one
// merchant. Parcels and Transactions are newest-first.
type State struct {
	Parcels      []Parcel      `json:"parcels"`
	Balance      float64       `json:"balance"`
	Transactions []Transaction `json:"transactions"`
}

func (s State) clone() State {
	out := State{
		Balance:      s.Balance,
		Parcels:      make([]Parcel, 0, len(s.Parcels)),
		Transactions: append([]Transaction(nil), s.Transactions...),
	}
	for _, p := range s.Parcels {
		out.Parcels = append(out.Parcels, p.clone())
	}
	return out
}

// Outcome describes the effect of one ledger mutation.
type Outcome struct {
	Applied     bool
	Parcel      *Parcel
	Previous    *Parcel
	Delta       float64
	Transaction *Transaction
	Settled     []Parcel
}

// InvoiceLine is one delivered parcel awaiting settlement.
type InvoiceLine struct {
	ParcelID     string `json:"parcel_id"`
	CustomerName string `json:"customer_name"`
	Breakdown
}

// Invoice summarises a pending settlement.
type Invoice struct {
	Lines         []InvoiceLine `json:"lines"`
	TotalAmount   float64       `json:"total_amount"`
	TotalDelivery float64       `json:"total_delivery"`
	TotalCOD      float64       `json:"total_cod"`
	TotalNet      float64       `json:"total_net"`
}
