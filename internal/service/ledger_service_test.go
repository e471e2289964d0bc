package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/cache"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/events"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
)

var merchant = ledger.Merchant{MerchantID: "MID-12345", Name: "Rahim Store", Phone: "01711111111", Address: "Mirpur 10"}

type recorder struct {
	mu  sync.Mutex
	got []events.Event
	err error
}

func (r *recorder) Publish(_ context.Context, ev events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.got = append(r.got, ev)
	return r.err
}

func (r *recorder) types() []events.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]events.Type, 0, len(r.got))
	for _, ev := range r.got {
		out = append(out, ev.Type)
	}
	return out
}

// flakyStore fails Save while fail is set.
type flakyStore struct {
	*ledger.MemoryStore
	mu   sync.Mutex
	fail bool
}

func (f *flakyStore) setFail(v bool) {
	f.mu.Lock()
	f.fail = v
	f.mu.Unlock()
}

func (f *flakyStore) Save(ctx context.Context, id string, st ledger.State) error {
	f.mu.Lock()
	fail := f.fail
	f.mu.Unlock()
	if fail {
		return errors.New("disk full")
	}
	return f.MemoryStore.Save(ctx, id, st)
}

func newService(t *testing.T) (*LedgerService, *flakyStore, *recorder, *cache.MemoryCache) {
	t.Helper()
	st := &flakyStore{MemoryStore: ledger.NewMemoryStore()}
	pub := &recorder{}
	c := cache.NewMemoryCache(time.Minute, time.Minute)
	return NewLedgerService(st, pub, c), st, pub, c
}

func TestMutationsArePersisted(t *testing.T) {
	ctx := context.Background()
	svc, st, _, _ := newService(t)

	out, err := svc.AddParcel(ctx, merchant, ledger.Draft{CustomerName: "Karim", Amount: 1000, Weight: "1"})
	require.NoError(t, err)
	require.True(t, out.Applied)
	id := out.Parcel.ID

	_, err = svc.UpdateStatus(ctx, merchant, id, ledger.StatusDelivered)
	require.NoError(t, err)

	saved, err := st.Load(ctx, merchant.MerchantID)
	require.NoError(t, err)
	assert.InDelta(t, 910.0, saved.Balance, 1e-9)
	require.Len(t, saved.Parcels, 1)
	assert.Equal(t, ledger.StatusDelivered, saved.Parcels[0].Status)
	require.Len(t, saved.Transactions, 1)
	assert.Equal(t, ledger.TxOrderIncome, saved.Transactions[0].Type)
	placed := saved.Parcels[0].TrackingHistory[0]
	assert.Equal(t, ledger.StepOrderPlaced, placed.Status)
	assert.Equal(t, "Mirpur 10", placed.Location)
	assert.Equal(t, "Rahim Store", placed.HandlerName)
}

func TestLedgerIsLoadedFromStore(t *testing.T) {
	ctx := context.Background()
	svc, st, _, _ := newService(t)
	require.NoError(t, st.MemoryStore.Save(ctx, merchant.MerchantID, ledger.State{Balance: 55}))

	bal, err := svc.Balance(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, 55.0, bal)
}

func TestNoOpIsNotPublished(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, _ := newService(t)

	out, err := svc.UpdateStatus(ctx, merchant, "EKS-404404", ledger.StatusDelivered)
	require.NoError(t, err)
	assert.False(t, out.Applied)

	out, err = svc.DeleteParcel(ctx, merchant, "EKS-404404")
	require.NoError(t, err)
	assert.False(t, out.Applied)
	assert.Empty(t, pub.types())
}

func TestEventsFollowMutations(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, _ := newService(t)

	out, err := svc.AddParcel(ctx, merchant, ledger.Draft{ID: "EKS-000001", Amount: 1000, Weight: "1"})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, merchant, out.Parcel.ID, ledger.StatusDelivered)
	require.NoError(t, err)
	_, err = svc.Settle(ctx, merchant)
	require.NoError(t, err)
	_, err = svc.TopUp(ctx, merchant, 100, "Nagad")
	require.NoError(t, err)
	_, err = svc.DeleteParcel(ctx, merchant, out.Parcel.ID)
	require.NoError(t, err)

	assert.Equal(t, []events.Type{
		events.ParcelCreated,
		events.ParcelStatusChanged,
		events.SettlementCompleted,
		events.BalanceToppedUp,
		events.ParcelDeleted,
	}, pub.types())

	status := pub.got[1]
	assert.Equal(t, "EKS-000001", status.ParcelID)
	assert.Equal(t, ledger.StatusPending, status.PrevStatus)
	assert.Equal(t, ledger.StatusDelivered, status.Status)
	assert.InDelta(t, 910.0, status.Delta, 1e-9)

	settle := pub.got[2]
	assert.Equal(t, []string{"EKS-000001"}, settle.ParcelIDs)
	assert.Equal(t, 0.0, settle.Balance)

	// deleting a Paid parcel does not touch the balance
	assert.Equal(t, "EKS-000001", pub.got[4].ParcelID)
	assert.Equal(t, 100.0, pub.got[4].Balance)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, _ := newService(t)
	pub.err = errors.New("broker down")

	out, err := svc.TopUp(ctx, merchant, 50, "bKash")
	require.NoError(t, err)
	assert.True(t, out.Applied)
}

func TestSaveFailureRollsBackToStoredState(t *testing.T) {
	ctx := context.Background()
	svc, st, pub, _ := newService(t)

	_, err := svc.TopUp(ctx, merchant, 100, "bKash")
	require.NoError(t, err)

	st.setFail(true)
	_, err = svc.TopUp(ctx, merchant, 900, "bKash")
	require.Error(t, err)
	st.setFail(false)

	bal, err := svc.Balance(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, 100.0, bal)

	txns, err := svc.Transactions(ctx, merchant)
	require.NoError(t, err)
	assert.Len(t, txns, 1)
	assert.Len(t, pub.types(), 1)
}

func TestValidationErrorsPassThrough(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newService(t)

	_, err := svc.TopUp(ctx, merchant, 0, "bKash")
	assert.ErrorIs(t, err, ledger.ErrInvalidAmount)

	_, err = svc.Settle(ctx, merchant)
	assert.ErrorIs(t, err, ledger.ErrNothingToSettle)

	out, err := svc.AddParcel(ctx, merchant, ledger.Draft{Amount: 10})
	require.NoError(t, err)
	_, err = svc.UpdateStatus(ctx, merchant, out.Parcel.ID, ledger.Status("Lost"))
	assert.ErrorIs(t, err, ledger.ErrUnknownStatus)

	_, err = svc.Parcel(ctx, merchant, "EKS-404404")
	assert.ErrorIs(t, err, ledger.ErrParcelNotFound)
}

func TestRestoreReplacesState(t *testing.T) {
	ctx := context.Background()
	svc, st, pub, _ := newService(t)

	_, err := svc.TopUp(ctx, merchant, 100, "bKash")
	require.NoError(t, err)

	snap := ledger.State{
		Balance: 300,
		Parcels: []ledger.Parcel{{ID: "EKS-777777", Amount: 500, Weight: "1", Status: ledger.StatusPending}},
	}
	require.NoError(t, svc.Restore(ctx, merchant, snap))

	bal, err := svc.Balance(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, 300.0, bal)
	saved, err := st.Load(ctx, merchant.MerchantID)
	require.NoError(t, err)
	assert.Equal(t, "EKS-777777", saved.Parcels[0].ID)
	assert.Equal(t, events.LedgerRestored, pub.types()[1])

	st.setFail(true)
	assert.Error(t, svc.Restore(ctx, merchant, ledger.State{}))
	bal, err = svc.Balance(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, 300.0, bal)
}

func TestMutationInvalidatesDashboard(t *testing.T) {
	ctx := context.Background()
	svc, _, _, c := newService(t)
	dash := NewDashboardService(svc, c, time.Minute)

	d, err := dash.Get(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, 0.0, d.Balance)

	_, err = svc.TopUp(ctx, merchant, 75, "Rocket")
	require.NoError(t, err)

	d, err = dash.Get(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, 75.0, d.Balance)
	assert.Equal(t, 1, d.Transactions)
}

func TestConcurrentMutationsKeepBalanceConsistent(t *testing.T) {
	ctx := context.Background()
	svc, st, _, _ := newService(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.TopUp(ctx, merchant, 10, "bKash")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	saved, err := st.Load(ctx, merchant.MerchantID)
	require.NoError(t, err)
	assert.Equal(t, 200.0, saved.Balance)
	assert.Len(t, saved.Transactions, 20)
}

func TestForgetReloads(t *testing.T) {
	ctx := context.Background()
	svc, st, _, _ := newService(t)

	_, err := svc.TopUp(ctx, merchant, 10, "bKash")
	require.NoError(t, err)
	require.NoError(t, st.MemoryStore.Save(ctx, merchant.MerchantID, ledger.State{Balance: 999}))

	svc.Forget(merchant.MerchantID)
	bal, err := svc.Balance(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, 999.0, bal)
}

// gatePublisher blocks in Publish until release is closed.
type gatePublisher struct {
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (g *gatePublisher) Publish(_ context.Context, _ events.Event) error {
	g.once.Do(func() { close(g.entered) })
	<-g.release
	return nil
}

func TestSlowPublisherDoesNotBlockReads(t *testing.T) {
	ctx := context.Background()
	gate := &gatePublisher{entered: make(chan struct{}), release: make(chan struct{})}
	svc := NewLedgerService(ledger.NewMemoryStore(), gate, nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.TopUp(ctx, merchant, 100, "bKash")
		done <- err
	}()
	<-gate.entered

	start := time.Now()
	bal, err := svc.Balance(ctx, merchant)
	require.NoError(t, err)
	assert.Equal(t, 100.0, bal)
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	// a second mutation commits while the first publish is stuck; its own
	// event waits its turn
	second := make(chan error, 1)
	go func() {
		_, err := svc.AddParcel(ctx, merchant, ledger.Draft{Amount: 10})
		second <- err
	}()
	assert.Eventually(t, func() bool {
		parcels, err := svc.Parcels(ctx, merchant)
		return err == nil && len(parcels) == 1
	}, time.Second, 5*time.Millisecond)

	close(gate.release)
	require.NoError(t, <-done)
	require.NoError(t, <-second)
}

func TestEventsKeepCommitOrder(t *testing.T) {
	ctx := context.Background()
	svc, _, pub, _ := newService(t)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.TopUp(ctx, merchant, 10, "bKash")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	pub.mu.Lock()
	defer pub.mu.Unlock()
	require.Len(t, pub.got, 20)
	for i, ev := range pub.got {
		assert.Equal(t, float64(10*(i+1)), ev.Balance, "event %d", i)
	}
}

// replacingStore records calls to Replace.
type replacingStore struct {
	*ledger.MemoryStore
	replaced int
}

func (r *replacingStore) Replace(ctx context.Context, id string, st ledger.State) error {
	r.replaced++
	return r.MemoryStore.Save(ctx, id, st)
}

func TestRestoreUsesReplace(t *testing.T) {
	ctx := context.Background()
	st := &replacingStore{MemoryStore: ledger.NewMemoryStore()}
	svc := NewLedgerService(st, nil, nil)

	_, err := svc.TopUp(ctx, merchant, 40, "Card")
	require.NoError(t, err)
	assert.Zero(t, st.replaced)

	before := svc.Version(merchant.MerchantID)
	require.NoError(t, svc.Restore(ctx, merchant, ledger.State{Balance: 5}))
	assert.Equal(t, 1, st.replaced)
	assert.NotEqual(t, before, svc.Version(merchant.MerchantID))
}
