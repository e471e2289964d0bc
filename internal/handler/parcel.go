package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/service"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"
)

// LedgerHandler 负责包裹、交易、结算等账本接口
type LedgerHandler struct {
	Ledgers  *service.LedgerService
	Dash     *service.DashboardService
	PageSize int
}

func NewLedgerHandler(ledgers *service.LedgerService, dash *service.DashboardService, pageSize int) *LedgerHandler {
	return &LedgerHandler{Ledgers: ledgers, Dash: dash, PageSize: pageSize}
}

type parcelReq struct {
	ID           string   `json:"id" binding:"max=32"`
	CustomerName string   `json:"customer_name" binding:"required,max=128"`
	Phone        string   `json:"phone" binding:"required"`
	Address      string   `json:"address" binding:"required,max=512"`
	Amount       *float64 `json:"amount" binding:"required"`
	Weight       string   `json:"weight" binding:"max=16"`
	Exchange     bool     `json:"exchange"`
	Note         string   `json:"note" binding:"max=512"`
	Type         string   `json:"type" binding:"omitempty,oneof=Pickup Drop"`
	Status       string   `json:"status"`
}

func (r *parcelReq) validate() error {
	if err := util.ValidatePhone(r.Phone); err != nil {
		return err
	}
	r.Phone = util.NormalizePhone(r.Phone)
	return util.ValidateCollectAmount(*r.Amount)
}

type parcelResp struct {
	ledger.Parcel
	Charges ledger.Breakdown `json:"charges"`
}

func parcelView(p ledger.Parcel) parcelResp {
	return parcelResp{Parcel: p, Charges: ledger.Charges(p.Amount, p.Weight)}
}

// ListParcels 列出包裹，支持状态、类型筛选和关键字搜索（客户名 / 单号 / 电话）
func (h *LedgerHandler) ListParcels(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var status ledger.Status
	if s := c.Query("status"); s != "" {
		st, err := ledger.ParseStatus(s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
		status = st
	}
	typ := c.Query("type")
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	parcels, err := h.Ledgers.Parcels(c.Request.Context(), merchantOf(user))
	if err != nil {
		ledgerFail(c, err)
		return
	}

	filtered := make([]parcelResp, 0, len(parcels))
	for _, p := range parcels {
		if status != "" && p.Status != status {
			continue
		}
		if typ != "" && p.Type != typ {
			continue
		}
		if q != "" && !matchParcel(p, q) {
			continue
		}
		filtered = append(filtered, parcelView(p))
	}

	page, size := pageParams(c, h.PageSize)
	util.Success(c, util.Response{
		"items": paginate(filtered, page, size),
		"total": len(filtered),
		"page":  page,
		"size":  size,
	})
}

func matchParcel(p ledger.Parcel, q string) bool {
	return strings.Contains(strings.ToLower(p.CustomerName), q) ||
		strings.Contains(strings.ToLower(p.ID), q) ||
		strings.Contains(p.Phone, q)
}

// GetParcel 单个包裹详情
func (h *LedgerHandler) GetParcel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.Ledgers.Parcel(c.Request.Context(), merchantOf(user), c.Param("id"))
	if err != nil {
		ledgerFail(c, err)
		return
	}
	util.Success(c, util.Response{"parcel": parcelView(p)})
}

// CreateParcel 新建包裹，状态固定为 Pending
func (h *LedgerHandler) CreateParcel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req parcelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if err := req.validate(); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	out, err := h.Ledgers.AddParcel(c.Request.Context(), merchantOf(user), ledger.Draft{
		ID:           strings.TrimSpace(req.ID),
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        req.Phone,
		Address:      strings.TrimSpace(req.Address),
		Amount:       *req.Amount,
		Weight:       strings.TrimSpace(req.Weight),
		Exchange:     req.Exchange,
		Note:         req.Note,
		Type:         req.Type,
	})
	if err != nil {
		ledgerFail(c, err)
		return
	}
	util.Success(c, util.Response{"parcel": parcelView(*out.Parcel)})
}

// UpdateParcel 整体替换包裹字段；status 为空时保持原状态
func (h *LedgerHandler) UpdateParcel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	m := merchantOf(user)
	id := c.Param("id")

	var req parcelReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}

	cur, err := h.Ledgers.Parcel(ctx, m, id)
	if err != nil {
		ledgerFail(c, err)
		return
	}
	if err := req.validate(); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	status := cur.Status
	if req.Status != "" {
		if status, err = ledger.ParseStatus(req.Status); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
			return
		}
	}

	out, err := h.Ledgers.UpdateParcel(ctx, m, ledger.Parcel{
		ID:           id,
		CustomerName: strings.TrimSpace(req.CustomerName),
		Phone:        req.Phone,
		Address:      strings.TrimSpace(req.Address),
		Amount:       *req.Amount,
		Weight:       strings.TrimSpace(req.Weight),
		Exchange:     req.Exchange,
		Note:         req.Note,
		Type:         req.Type,
		Status:       status,
	})
	if err != nil {
		ledgerFail(c, err)
		return
	}
	if !out.Applied {
		ledgerFail(c, ledger.ErrParcelNotFound)
		return
	}
	util.Success(c, util.Response{
		"parcel":      parcelView(*out.Parcel),
		"delta":       out.Delta,
		"transaction": out.Transaction,
	})
}

// DeleteParcel 删除包裹；已计入余额的金额会被冲回
func (h *LedgerHandler) DeleteParcel(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	out, err := h.Ledgers.DeleteParcel(c.Request.Context(), merchantOf(user), c.Param("id"))
	if err != nil {
		ledgerFail(c, err)
		return
	}
	if !out.Applied {
		ledgerFail(c, ledger.ErrParcelNotFound)
		return
	}
	util.Success(c, util.Response{
		"message":     "parcel deleted",
		"delta":       out.Delta,
		"transaction": out.Transaction,
	})
}

type statusReq struct {
	Status string `json:"status" binding:"required"`
}

// UpdateStatus 修改包裹状态；状态未变化时 applied=false
func (h *LedgerHandler) UpdateStatus(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	m := merchantOf(user)
	id := c.Param("id")

	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid parameters")
		return
	}
	if _, err := h.Ledgers.Parcel(ctx, m, id); err != nil {
		ledgerFail(c, err)
		return
	}
	status, err := ledger.ParseStatus(req.Status)
	if err != nil {
		ledgerFail(c, err)
		return
	}

	out, err := h.Ledgers.UpdateStatus(ctx, m, id, status)
	if err != nil {
		ledgerFail(c, err)
		return
	}
	resp := util.Response{
		"applied":     out.Applied,
		"delta":       out.Delta,
		"transaction": out.Transaction,
	}
	if out.Parcel != nil {
		resp["parcel"] = parcelView(*out.Parcel)
	}
	util.Success(c, resp)
}

// GetTracking 包裹的物流节点
func (h *LedgerHandler) GetTracking(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	p, err := h.Ledgers.Parcel(c.Request.Context(), merchantOf(user), c.Param("id"))
	if err != nil {
		ledgerFail(c, err)
		return
	}
	history := p.TrackingHistory
	if history == nil {
		history = []ledger.TrackingStep{}
	}
	util.Success(c, util.Response{
		"parcel_id": p.ID,
		"status":    p.Status,
		"steps":     history,
	})
}

// Quote 运费试算：GET /charges/quote?amount=1000&weight=1.5
func (h *LedgerHandler) Quote(c *gin.Context) {
	amount, err := strconv.ParseFloat(c.DefaultQuery("amount", "0"), 64)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid amount")
		return
	}
	if err := util.ValidateCollectAmount(amount); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}
	util.Success(c, util.Response{"charges": ledger.Charges(amount, c.Query("weight"))})
}
