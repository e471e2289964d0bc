package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 业务监控指标
var (
	ParcelsCreatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "merchant_parcels_created_total",
		Help: "Parcels booked by merchants.",
	})

	StatusTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "merchant_parcel_status_transitions_total",
		Help: "Applied parcel status changes, by new status.",
	}, []string{"status"})

	TransactionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "merchant_transactions_total",
		Help: "Ledger transactions written, by type.",
	}, []string{"type"})

	TransactionAmountTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "merchant_transaction_amount_total",
		Help: "Sum of ledger transaction amounts, by type.",
	}, []string{"type"})

	SettlementsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "merchant_settlements_total",
		Help: "Completed bulk settlements.",
	})

	PersistFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "merchant_ledger_persist_failures_total",
		Help: "Ledger snapshots that failed to save.",
	})

	PurgedAccountsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "merchant_purged_accounts_total",
		Help: "Accounts permanently removed by the purge job.",
	})
)
