package ledger

import (
	"fmt"
	"math"
	"sync"
	"time"
)

// Ledger owns one merchant's parcels, running balance and transaction
// log. Every mutation goes through its methods and holds mu for the whole
// operation, so callers never observe a partially applied change.
//
// The balance is never recomputed: each operation applies its own delta.
type Ledger struct {
	mu       sync.Mutex
	merchant Merchant
	parcels  []Parcel
	balance  float64
	txns     []Transaction

	now      func() time.Time
	parcelID func() string
	txID     func(time.Time) string
}

type Option func(*Ledger)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(l *Ledger) { l.now = now }
}

// WithParcelIDs replaces the parcel id generator used for drafts without id.
func WithParcelIDs(gen func() string) Option {
	return func(l *Ledger) { l.parcelID = gen }
}

// WithTransactionIDs replaces the transaction id generator.
func WithTransactionIDs(gen func(time.Time) string) Option {
	return func(l *Ledger) { l.txID = gen }
}

// New builds a ledger from previously persisted state. The state is
// copied; later changes to st do not affect the ledger.
func New(m Merchant, st State, opts ...Option) *Ledger {
	c := st.clone()
	l := &Ledger{
		merchant: m,
		parcels:  c.Parcels,
		balance:  c.Balance,
		txns:     c.Transactions,
		now:      time.Now,
		parcelID: NewParcelID,
		txID:     NewTransactionID,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// AddParcel commits a new parcel in Pending status with its creation step
// and puts it at the head of the collection. The balance is not touched.
func (l *Ledger) AddParcel(d Draft) (Outcome, error) {
	if err := checkAmount(d.Amount, true); err != nil {
		return Outcome{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	id := d.ID
	if id == "" {
		id = l.freshParcelID()
	} else if l.indexOf(id) >= 0 {
		return Outcome{}, fmt.Errorf("%w: %s", ErrDuplicateParcel, id)
	}

	now := l.now()
	p := Parcel{
		ID:              id,
		CustomerName:    d.CustomerName,
		Phone:           d.Phone,
		Address:         d.Address,
		Amount:          d.Amount,
		Weight:          d.Weight,
		Exchange:        d.Exchange,
		Note:            d.Note,
		Type:            d.Type,
		Status:          StatusPending,
		CreatedAt:       now,
		TrackingHistory: []TrackingStep{orderPlacedStep(l.merchant, now)},
	}
	l.parcels = append([]Parcel{p}, l.parcels...)

	out := p.clone()
	return Outcome{Applied: true, Parcel: &out}, nil
}

// UpdateParcel replaces the stored record with u, keeping the original
// creation time and tracking history. A missing id is a no-op.
func (l *Ledger) UpdateParcel(u Parcel) (Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(u.ID)
	if i < 0 {
		return Outcome{}, nil
	}
	if !u.Status.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownStatus, u.Status)
	}
	if err := checkAmount(u.Amount, true); err != nil {
		return Outcome{}, err
	}

	old := l.parcels[i]
	delta := RevenueDelta(old.Status, u.Status, old.Net(), u.Net())

	next := u
	next.CreatedAt = old.CreatedAt
	next.TrackingHistory = old.TrackingHistory
	l.parcels[i] = next

	now := l.now()
	tx := l.applyDelta(delta, MethodCorrection, "Updated Order "+u.ID, now)

	prev, cur := old.clone(), next.clone()
	return Outcome{Applied: true, Parcel: &cur, Previous: &prev, Delta: delta, Transaction: tx}, nil
}

// DeleteParcel removes a parcel. If it was counting toward the balance its
// net is reversed with a Charge. A missing id is a no-op.
func (l *Ledger) DeleteParcel(id string) Outcome {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return Outcome{}
	}
	old := l.parcels[i]

	var delta float64
	var tx *Transaction
	if old.Status.IsRevenue() {
		delta = -old.Net()
		tx = l.applyDelta(delta, MethodCorrection, "Deleted Order "+id, l.now())
	}
	l.parcels = append(l.parcels[:i:i], l.parcels[i+1:]...)

	prev := old.clone()
	return Outcome{Applied: true, Previous: &prev, Delta: delta, Transaction: tx}
}

// UpdateStatus moves a parcel to s, appends a tracking step and applies the
// revenue delta. Missing ids and unchanged statuses are no-ops. Any status
// may follow any other.
func (l *Ledger) UpdateStatus(id string, s Status) (Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i := l.indexOf(id)
	if i < 0 {
		return Outcome{}, nil
	}
	if !s.Valid() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	p := &l.parcels[i]
	if p.Status == s {
		return Outcome{}, nil
	}

	prev := p.clone()
	net := p.Net()
	delta := RevenueDelta(p.Status, s, net, net)

	now := l.now()
	p.Status = s
	p.TrackingHistory = append(p.TrackingHistory, statusChangeStep(s, now))
	tx := l.applyDelta(delta, MethodSystem, fmt.Sprintf("Status: %s (%s)", s, id), now)

	cur := p.clone()
	return Outcome{Applied: true, Parcel: &cur, Previous: &prev, Delta: delta, Transaction: tx}, nil
}

// SettleDelivered pays out every Delivered parcel in one batch: each
// becomes Paid with a "Paid" step, the balance is zeroed and a single
// Withdrawal for the summed net is logged.
func (l *Ledger) SettleDelivered() (Outcome, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var (
		total float64
		idx   []int
	)
	for i := range l.parcels {
		if l.parcels[i].Status == StatusDelivered {
			total += l.parcels[i].Net()
			idx = append(idx, i)
		}
	}
	if len(idx) == 0 || total <= 0 {
		return Outcome{}, ErrNothingToSettle
	}

	now := l.now()
	settled := make([]Parcel, 0, len(idx))
	for _, i := range idx {
		p := &l.parcels[i]
		p.Status = StatusPaid
		p.TrackingHistory = append(p.TrackingHistory, paidStep(now))
		settled = append(settled, p.clone())
	}

	delta := -l.balance
	l.balance = 0
	tx := l.appendTx(TxWithdrawal, total, MethodSettlement, "Settled all delivered parcels", now)

	return Outcome{Applied: true, Delta: delta, Transaction: tx, Settled: settled}, nil
}

// TopUp adds money to the balance.
func (l *Ledger) TopUp(amount float64, method string) (Outcome, error) {
	if err := checkAmount(amount, false); err != nil {
		return Outcome{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.balance += amount
	tx := l.appendTx(TxTopUp, amount, method, "Added money via "+method, l.now())
	return Outcome{Applied: true, Delta: amount, Transaction: tx}, nil
}

// SetMerchant updates the identity used for new creation steps. It never
// touches the balance.
func (l *Ledger) SetMerchant(m Merchant) {
	l.mu.Lock()
	l.merchant = m
	l.mu.Unlock()
}

func (l *Ledger) Merchant() Merchant {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.merchant
}

func (l *Ledger) Balance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balance
}

// Parcels returns a copy of the collection, newest first.
func (l *Ledger) Parcels() []Parcel {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Parcel, 0, len(l.parcels))
	for _, p := range l.parcels {
		out = append(out, p.clone())
	}
	return out
}

func (l *Ledger) Parcel(id string) (Parcel, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i := l.indexOf(id)
	if i < 0 {
		return Parcel{}, ErrParcelNotFound
	}
	return l.parcels[i].clone(), nil
}

// Transactions returns the log, newest first.
func (l *Ledger) Transactions() []Transaction {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Transaction(nil), l.txns...)
}

// Snapshot returns a deep copy of the persisted part of the ledger.
func (l *Ledger) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{Parcels: l.parcels, Balance: l.balance, Transactions: l.txns}.clone()
}

// Counts returns the number of parcels per status, with every status present.
func (l *Ledger) Counts() map[Status]int {
	l.mu.Lock()
	defer l.mu.Unlock()
	counts := make(map[Status]int, len(Statuses))
	for _, s := range Statuses {
		counts[s] = 0
	}
	for _, p := range l.parcels {
		counts[p.Status]++
	}
	return counts
}

// SettlementPreview builds the invoice SettleDelivered would pay out.
func (l *Ledger) SettlementPreview() Invoice {
	l.mu.Lock()
	defer l.mu.Unlock()
	inv := Invoice{Lines: []InvoiceLine{}}
	for _, p := range l.parcels {
		if p.Status != StatusDelivered {
			continue
		}
		b := Charges(p.Amount, p.Weight)
		inv.Lines = append(inv.Lines, InvoiceLine{ParcelID: p.ID, CustomerName: p.CustomerName, Breakdown: b})
		inv.TotalAmount += b.Amount
		inv.TotalDelivery += b.Delivery
		inv.TotalCOD += b.COD
		inv.TotalNet += b.Net
	}
	return inv
}

func (l *Ledger) indexOf(id string) int {
	for i := range l.parcels {
		if l.parcels[i].ID == id {
			return i
		}
	}
	return -1
}

func (l *Ledger) freshParcelID() string {
	id := l.parcelID()
	for attempt := 0; attempt < 16 && l.indexOf(id) >= 0; attempt++ {
		id = l.parcelID()
	}
	return id
}

func (l *Ledger) applyDelta(delta float64, method, note string, at time.Time) *Transaction {
	if delta == 0 {
		return nil
	}
	l.balance += delta
	typ := TxOrderIncome
	if delta < 0 {
		typ = TxCharge
	}
	return l.appendTx(typ, math.Abs(delta), method, note, at)
}

func (l *Ledger) appendTx(typ TransactionType, amount float64, method, note string, at time.Time) *Transaction {
	tx := Transaction{
		ID:        l.txID(at),
		Type:      typ,
		Amount:    amount,
		Method:    method,
		Status:    TxCompleted,
		Timestamp: at,
		Note:      note,
	}
	l.txns = append([]Transaction{tx}, l.txns...)
	return &tx
}

func checkAmount(v float64, allowZero bool) error {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 || (!allowZero && v == 0) {
		return fmt.Errorf("%w: %v", ErrInvalidAmount, v)
	}
	return nil
}
