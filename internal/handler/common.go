package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/logger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/middleware"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"
)

// currentUser 取当前登录用户，失败时已写好 401 响应
func currentUser(c *gin.Context) (*models.User, bool) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return u, true
}

// merchantOf 是账本在创建节点里使用的商户身份
func merchantOf(u *models.User) ledger.Merchant {
	return ledger.Merchant{
		MerchantID: u.MerchantID,
		Name:       u.Name,
		Phone:      u.Phone,
		Address:    u.Address,
	}
}

// pageParams 读取 page / page_size，size 上限 100
func pageParams(c *gin.Context, defSize int) (page, size int) {
	if defSize <= 0 {
		defSize = 20
	}
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page <= 0 {
		page = 1
	}
	size, _ = strconv.Atoi(c.DefaultQuery("page_size", strconv.Itoa(defSize)))
	if size <= 0 || size > 100 {
		size = defSize
	}
	return page, size
}

// paginate 对内存切片分页
func paginate[T any](items []T, page, size int) []T {
	start := (page - 1) * size
	if start >= len(items) {
		return []T{}
	}
	end := start + size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// ledgerFail 把账本错误映射为 HTTP 响应
func ledgerFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrParcelNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "parcel not found")
	case errors.Is(err, ledger.ErrDuplicateParcel):
		util.Error(c, http.StatusConflict, util.CodeConflict, err.Error())
	case errors.Is(err, ledger.ErrNothingToSettle):
		util.Error(c, http.StatusConflict, util.CodeConflict, "no delivered parcels to settle")
	case errors.Is(err, ledger.ErrUnknownStatus), errors.Is(err, ledger.ErrInvalidAmount):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
	default:
		logger.Error("ledger operation failed", zap.String("path", c.FullPath()), zap.Error(err))
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "ledger operation failed")
	}
}
