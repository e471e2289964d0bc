package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"
)

// ListTransactions 交易流水，最新在前，可按 type 筛选
func (h *LedgerHandler) ListTransactions(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	txns, err := h.Ledgers.Transactions(c.Request.Context(), merchantOf(user))
	if err != nil {
		ledgerFail(c, err)
		return
	}

	if typ := c.Query("type"); typ != "" {
		filtered := make([]ledger.Transaction, 0, len(txns))
		for _, t := range txns {
			if strings.EqualFold(string(t.Type), typ) {
				filtered = append(filtered, t)
			}
		}
		txns = filtered
	}
	if txns == nil {
		txns = []ledger.Transaction{}
	}

	page, size := pageParams(c, h.PageSize)
	util.Success(c, util.Response{
		"items": paginate(txns, page, size),
		"total": len(txns),
		"page":  page,
		"size":  size,
	})
}

type topUpReq struct {
	Amount float64 `json:"amount" binding:"required"`
	Method string  `json:"method" binding:"required,oneof=bKash Nagad Bank Card"`
}

// TopUp 充值
func (h *LedgerHandler) TopUp(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	var req topUpReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := util.ValidateAmount(req.Amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	ctx := c.Request.Context()
	m := merchantOf(user)
	out, err := h.Ledgers.TopUp(ctx, m, req.Amount, strings.TrimSpace(req.Method))
	if err != nil {
		ledgerFail(c, err)
		return
	}
	balance, err := h.Ledgers.Balance(ctx, m)
	if err != nil {
		ledgerFail(c, err)
		return
	}
	util.Success(c, util.Response{
		"transaction": out.Transaction,
		"balance":     balance,
	})
}

// SettlementPreview 待结算发票
func (h *LedgerHandler) SettlementPreview(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	inv, err := h.Ledgers.Preview(c.Request.Context(), merchantOf(user))
	if err != nil {
		ledgerFail(c, err)
		return
	}
	util.Success(c, util.Response{
		"invoice":      inv,
		"total_net_bd": util.FormatMoney(inv.TotalNet),
	})
}

// Settle 一次性结算所有已送达包裹
func (h *LedgerHandler) Settle(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Ledgers.Settle(c.Request.Context(), merchantOf(user))
	if err != nil {
		ledgerFail(c, err)
		return
	}
	ids := make([]string, 0, len(out.Settled))
	for _, p := range out.Settled {
		ids = append(ids, p.ID)
	}
	util.Success(c, util.Response{
		"settled":     ids,
		"transaction": out.Transaction,
		"balance":     0,
	})
}

// Dashboard 首页统计
func (h *LedgerHandler) Dashboard(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	d, err := h.Dash.Get(c.Request.Context(), merchantOf(user))
	if err != nil {
		ledgerFail(c, err)
		return
	}
	util.Success(c, util.Response{"dashboard": d})
}
