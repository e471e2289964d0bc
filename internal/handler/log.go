package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// LogHandler 负责操作日志查询接口
type LogHandler struct {
	DB         *gorm.DB
	EncryptKey string
}

func NewLogHandler(db *gorm.DB, encryptKey string) *LogHandler {
	return &LogHandler{
		DB:         db,
		EncryptKey: encryptKey,
	}
}

type logResp struct {
	ID        uint      `json:"id"`
	Action    string    `json:"action"`
	Path      string    `json:"path"`
	Method    string    `json:"method"`
	Status    int       `json:"status"`
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `json:"created_at"`
}

func (h *LogHandler) decode(l *models.AuditLog) logResp {
	return logResp{
		ID:        l.ID,
		Action:    util.DecryptField(h.EncryptKey, l.ActionEnc),
		Path:      util.DecryptField(h.EncryptKey, l.PathEnc),
		Method:    l.Method,
		Status:    l.Status,
		IP:        l.IP,
		UserAgent: l.UserAgent,
		CreatedAt: l.CreatedAt,
	}
}

// scoped 按用户和日期（start / end，YYYY-MM-DD）过滤
func (h *LogHandler) scoped(c *gin.Context, userID uint) (*gorm.DB, bool) {
	base := h.DB.Model(&models.AuditLog{}).Where("user_id = ?", userID)
	if s := c.Query("start"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid start date")
			return nil, false
		}
		base = base.Where("created_at >= ?", t)
	}
	if s := c.Query("end"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid end date")
			return nil, false
		}
		base = base.Where("created_at < ?", t.Add(24*time.Hour))
	}
	return base, true
}

// ListLogs 列出当前用户的操作日志（分页 + 时间 + 关键字）。
// path 和 action 是密文，关键字只能解密后在内存里匹配。
func (h *LogHandler) ListLogs(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, size := pageParams(c, 20)
	base, ok := h.scoped(c, user.ID)
	if !ok {
		return
	}
	q := strings.ToLower(strings.TrimSpace(c.Query("q")))

	if q == "" {
		var total int64
		if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			return
		}
		var logs []models.AuditLog
		if err := base.Order("created_at DESC, id DESC").Limit(size).Offset((page - 1) * size).Find(&logs).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
			return
		}
		items := make([]logResp, 0, len(logs))
		for i := range logs {
			items = append(items, h.decode(&logs[i]))
		}
		util.Success(c, util.Response{"items": items, "total": total, "page": page, "size": size})
		return
	}

	items, ok := h.filter(c, base, func(r logResp) bool {
		return strings.Contains(strings.ToLower(r.Path), q) || strings.Contains(strings.ToLower(r.Action), q)
	})
	if !ok {
		return
	}
	util.Success(c, util.Response{
		"items": paginate(items, page, size),
		"total": len(items),
		"page":  page,
		"size":  size,
	})
}

// ListParcelHistory 只看包裹相关的增删改和状态变更
func (h *LogHandler) ListParcelHistory(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	page, size := pageParams(c, 50)
	base, ok := h.scoped(c, user.ID)
	if !ok {
		return
	}

	items, ok := h.filter(c, base.Where("method IN ?", []string{http.MethodPost, http.MethodPut, http.MethodDelete}), func(r logResp) bool {
		return parcelOperation(r.Method, r.Path) != ""
	})
	if !ok {
		return
	}

	type historyResp struct {
		logResp
		Operation string `json:"operation"`
	}
	out := make([]historyResp, 0, len(items))
	for _, r := range paginate(items, page, size) {
		out = append(out, historyResp{logResp: r, Operation: parcelOperation(r.Method, r.Path)})
	}
	util.Success(c, util.Response{"items": out, "total": len(items), "page": page, "size": size})
}

func (h *LogHandler) filter(c *gin.Context, base *gorm.DB, keep func(logResp) bool) ([]logResp, bool) {
	var logs []models.AuditLog
	if err := base.Order("created_at DESC, id DESC").Find(&logs).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return nil, false
	}
	items := make([]logResp, 0, len(logs))
	for i := range logs {
		if r := h.decode(&logs[i]); keep(r) {
			items = append(items, r)
		}
	}
	return items, true
}

func parcelOperation(method, path string) string {
	const prefix = "/api/parcels"
	if !strings.HasPrefix(path, prefix) {
		return ""
	}
	rest := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	switch {
	case method == http.MethodPost && rest == "":
		return "create"
	case method == http.MethodPut && rest != "" && !strings.Contains(rest, "/"):
		return "update"
	case method == http.MethodDelete && rest != "" && !strings.Contains(rest, "/"):
		return "delete"
	case method == http.MethodPost && strings.HasSuffix(rest, "/status"):
		return "status"
	}
	return ""
}
