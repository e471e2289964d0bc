package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/cache"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/events"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/monitor"
)

type account struct {
	mu sync.Mutex
	l  *ledger.Ledger
	// stale is set when the account was evicted while a caller waited on mu.
	stale bool
}

// LedgerService is the only entry point for ledger mutations. It keeps one
// in-memory ledger per merchant and writes a snapshot to the store after
// every applied change.
type LedgerService struct {
	store ledger.Store
	pub   events.Publisher
	cache cache.Cache
	opts  []ledger.Option

	mu       sync.Mutex
	accounts map[string]*account
	feeds    map[string]*feed
}

func NewLedgerService(store ledger.Store, pub events.Publisher, c cache.Cache, opts ...ledger.Option) *LedgerService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &LedgerService{
		store:    store,
		pub:      pub,
		cache:    c,
		opts:     opts,
		accounts: make(map[string]*account),
		feeds:    make(map[string]*feed),
	}
}

func (s *LedgerService) AddParcel(ctx context.Context, m ledger.Merchant, d ledger.Draft) (ledger.Outcome, error) {
	return s.mutate(ctx, m, events.ParcelCreated, func(l *ledger.Ledger) (ledger.Outcome, error) {
		return l.AddParcel(d)
	})
}

func (s *LedgerService) UpdateParcel(ctx context.Context, m ledger.Merchant, p ledger.Parcel) (ledger.Outcome, error) {
	return s.mutate(ctx, m, events.ParcelUpdated, func(l *ledger.Ledger) (ledger.Outcome, error) {
		return l.UpdateParcel(p)
	})
}

func (s *LedgerService) DeleteParcel(ctx context.Context, m ledger.Merchant, id string) (ledger.Outcome, error) {
	return s.mutate(ctx, m, events.ParcelDeleted, func(l *ledger.Ledger) (ledger.Outcome, error) {
		return l.DeleteParcel(id), nil
	})
}

func (s *LedgerService) UpdateStatus(ctx context.Context, m ledger.Merchant, id string, st ledger.Status) (ledger.Outcome, error) {
	return s.mutate(ctx, m, events.ParcelStatusChanged, func(l *ledger.Ledger) (ledger.Outcome, error) {
		return l.UpdateStatus(id, st)
	})
}

func (s *LedgerService) Settle(ctx context.Context, m ledger.Merchant) (ledger.Outcome, error) {
	return s.mutate(ctx, m, events.SettlementCompleted, func(l *ledger.Ledger) (ledger.Outcome, error) {
		return l.SettleDelivered()
	})
}

func (s *LedgerService) TopUp(ctx context.Context, m ledger.Merchant, amount float64, method string) (ledger.Outcome, error) {
	return s.mutate(ctx, m, events.BalanceToppedUp, func(l *ledger.Ledger) (ledger.Outcome, error) {
		return l.TopUp(amount, method)
	})
}

// Restore replaces the merchant's whole state, e.g. from a snapshot file.
// The in-memory ledger is swapped only after the store accepted the state.
func (s *LedgerService) Restore(ctx context.Context, m ledger.Merchant, st ledger.State) error {
	f, ticket, err := s.restore(ctx, m, st)
	if err != nil {
		return err
	}
	s.after(ctx, f, ticket, events.Event{
		Type:       events.LedgerRestored,
		MerchantID: m.MerchantID,
		Balance:    st.Balance,
		At:         time.Now(),
	})
	return nil
}

func (s *LedgerService) restore(ctx context.Context, m ledger.Merchant, st ledger.State) (*feed, uint64, error) {
	a, err := s.lock(ctx, m)
	if err != nil {
		return nil, 0, err
	}
	defer a.mu.Unlock()

	next := ledger.New(m, st, s.opts...)
	save := s.store.Save
	if r, ok := s.store.(ledger.Replacer); ok {
		save = r.Replace
	}
	if err := save(ctx, m.MerchantID, next.Snapshot()); err != nil {
		monitor.PersistFailuresTotal.Inc()
		logger.Error("restore ledger failed", zap.String("merchant_id", m.MerchantID), zap.Error(err))
		return nil, 0, fmt.Errorf("persist ledger %s: %w", m.MerchantID, err)
	}
	a.l = next
	f := s.feed(m.MerchantID)
	return f, f.take(), nil
}

// Forget drops the cached ledger; the next call reloads it from the store.
func (s *LedgerService) Forget(merchantID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[merchantID]; ok {
		a.stale = true
		delete(s.accounts, merchantID)
	}
	delete(s.feeds, merchantID)
}

// Version changes with every applied mutation of the merchant's ledger.
func (s *LedgerService) Version(merchantID string) uint64 {
	return s.feed(merchantID).version()
}

func (s *LedgerService) Balance(ctx context.Context, m ledger.Merchant) (float64, error) {
	var out float64
	err := s.view(ctx, m, func(l *ledger.Ledger) { out = l.Balance() })
	return out, err
}

func (s *LedgerService) Parcels(ctx context.Context, m ledger.Merchant) ([]ledger.Parcel, error) {
	var out []ledger.Parcel
	err := s.view(ctx, m, func(l *ledger.Ledger) { out = l.Parcels() })
	return out, err
}

func (s *LedgerService) Parcel(ctx context.Context, m ledger.Merchant, id string) (ledger.Parcel, error) {
	var (
		out  ledger.Parcel
		gerr error
	)
	if err := s.view(ctx, m, func(l *ledger.Ledger) { out, gerr = l.Parcel(id) }); err != nil {
		return ledger.Parcel{}, err
	}
	return out, gerr
}

func (s *LedgerService) Transactions(ctx context.Context, m ledger.Merchant) ([]ledger.Transaction, error) {
	var out []ledger.Transaction
	err := s.view(ctx, m, func(l *ledger.Ledger) { out = l.Transactions() })
	return out, err
}

func (s *LedgerService) Snapshot(ctx context.Context, m ledger.Merchant) (ledger.State, error) {
	var out ledger.State
	err := s.view(ctx, m, func(l *ledger.Ledger) { out = l.Snapshot() })
	return out, err
}

func (s *LedgerService) Counts(ctx context.Context, m ledger.Merchant) (map[ledger.Status]int, error) {
	var out map[ledger.Status]int
	err := s.view(ctx, m, func(l *ledger.Ledger) { out = l.Counts() })
	return out, err
}

func (s *LedgerService) Preview(ctx context.Context, m ledger.Merchant) (ledger.Invoice, error) {
	var out ledger.Invoice
	err := s.view(ctx, m, func(l *ledger.Ledger) { out = l.SettlementPreview() })
	return out, err
}

func (s *LedgerService) mutate(ctx context.Context, m ledger.Merchant, typ events.Type, op func(*ledger.Ledger) (ledger.Outcome, error)) (ledger.Outcome, error) {
	out, ev, f, ticket, err := s.apply(ctx, m, typ, op)
	if err != nil || !out.Applied {
		return out, err
	}
	s.after(ctx, f, ticket, ev)
	return out, nil
}

// apply runs op and persists the result under the account lock.
func (s *LedgerService) apply(ctx context.Context, m ledger.Merchant, typ events.Type, op func(*ledger.Ledger) (ledger.Outcome, error)) (ledger.Outcome, events.Event, *feed, uint64, error) {
	a, err := s.lock(ctx, m)
	if err != nil {
		return ledger.Outcome{}, events.Event{}, nil, 0, err
	}
	defer a.mu.Unlock()

	out, err := op(a.l)
	if err != nil || !out.Applied {
		return out, events.Event{}, nil, 0, err
	}

	if err := s.store.Save(ctx, m.MerchantID, a.l.Snapshot()); err != nil {
		// memory is ahead of the store now; reload on next access
		s.evict(m.MerchantID, a)
		monitor.PersistFailuresTotal.Inc()
		logger.Error("persist ledger failed",
			zap.String("merchant_id", m.MerchantID),
			zap.String("event", string(typ)),
			zap.Error(err))
		return ledger.Outcome{}, events.Event{}, nil, 0, fmt.Errorf("persist ledger %s: %w", m.MerchantID, err)
	}

	record(typ, out)
	f := s.feed(m.MerchantID)
	return out, eventFor(typ, m.MerchantID, a.l.Balance(), out), f, f.take(), nil
}

func (s *LedgerService) view(ctx context.Context, m ledger.Merchant, fn func(*ledger.Ledger)) error {
	a, err := s.lock(ctx, m)
	if err != nil {
		return err
	}
	defer a.mu.Unlock()
	fn(a.l)
	return nil
}

// lock returns the merchant's live account with its mutex held.
func (s *LedgerService) lock(ctx context.Context, m ledger.Merchant) (*account, error) {
	for {
		a, err := s.account(ctx, m)
		if err != nil {
			return nil, err
		}
		a.mu.Lock()
		if !a.stale {
			a.l.SetMerchant(m)
			return a, nil
		}
		a.mu.Unlock()
	}
}

func (s *LedgerService) account(ctx context.Context, m ledger.Merchant) (*account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.accounts[m.MerchantID]; ok {
		return a, nil
	}
	st, err := s.store.Load(ctx, m.MerchantID)
	if err != nil {
		return nil, fmt.Errorf("load ledger %s: %w", m.MerchantID, err)
	}
	a := &account{l: ledger.New(m, st, s.opts...)}
	s.accounts[m.MerchantID] = a
	return a, nil
}

func (s *LedgerService) feed(merchantID string) *feed {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.feeds[merchantID]
	if !ok {
		f = newFeed()
		s.feeds[merchantID] = f
	}
	return f
}

// evict is called with a.mu held.
func (s *LedgerService) evict(merchantID string, a *account) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a.stale = true
	if s.accounts[merchantID] == a {
		delete(s.accounts, merchantID)
	}
}

// after runs the side effects of a persisted change outside the account
// lock, in commit order. None of them can fail the operation.
func (s *LedgerService) after(ctx context.Context, f *feed, ticket uint64, ev events.Event) {
	// the change is committed even if the caller has gone away
	ctx = context.WithoutCancel(ctx)
	f.run(ticket, func() {
		if s.cache != nil {
			if err := s.cache.Delete(ctx, DashboardKey(ev.MerchantID)); err != nil {
				logger.Warn("invalidate dashboard failed", zap.String("merchant_id", ev.MerchantID), zap.Error(err))
			}
		}
		if err := s.pub.Publish(ctx, ev); err != nil {
			logger.Warn("publish ledger event failed",
				zap.String("merchant_id", ev.MerchantID),
				zap.String("event", string(ev.Type)),
				zap.Error(err))
		}
	})
}

func eventFor(typ events.Type, merchantID string, balance float64, out ledger.Outcome) events.Event {
	ev := events.Event{
		Type:        typ,
		MerchantID:  merchantID,
		Delta:       out.Delta,
		Balance:     balance,
		Transaction: out.Transaction,
		At:          time.Now(),
	}
	switch {
	case out.Parcel != nil:
		ev.ParcelID = out.Parcel.ID
		ev.Status = out.Parcel.Status
	case out.Previous != nil:
		ev.ParcelID = out.Previous.ID
	}
	if out.Previous != nil {
		ev.PrevStatus = out.Previous.Status
	}
	if out.Transaction != nil {
		ev.At = out.Transaction.Timestamp
	}
	for _, p := range out.Settled {
		ev.ParcelIDs = append(ev.ParcelIDs, p.ID)
	}
	return ev
}

func record(typ events.Type, out ledger.Outcome) {
	switch typ {
	case events.ParcelCreated:
		monitor.ParcelsCreatedTotal.Inc()
	case events.ParcelStatusChanged:
		monitor.StatusTransitionsTotal.WithLabelValues(string(out.Parcel.Status)).Inc()
	case events.SettlementCompleted:
		monitor.SettlementsTotal.Inc()
	}
	if tx := out.Transaction; tx != nil {
		monitor.TransactionsTotal.WithLabelValues(string(tx.Type)).Inc()
		monitor.TransactionAmountTotal.WithLabelValues(string(tx.Type)).Add(tx.Amount)
	}
}
