package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/ledger"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/models"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/service"
	"github.com/sohelkhandaker52-pixel/Ebrahim-Khandaker/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SnapshotHandler 负责账本快照（加密备份）接口
type SnapshotHandler struct {
	DB         *gorm.DB
	Ledgers    *service.LedgerService
	EncryptKey string
	Dir        string
}

// NewSnapshotHandler 构造函数
func NewSnapshotHandler(db *gorm.DB, ledgers *service.LedgerService, encryptKey, dir string) *SnapshotHandler {
	return &SnapshotHandler{
		DB:         db,
		Ledgers:    ledgers,
		EncryptKey: encryptKey,
		Dir:        dir,
	}
}

// snapshotData 是写入快照文件的内容
type snapshotData struct {
	MerchantID string       `json:"merchant_id"`
	Created    time.Time    `json:"created"`
	State      ledger.State `json:"state"`
}

func snapshotView(s *models.Snapshot) gin.H {
	return gin.H{
		"id":           s.ID,
		"file_name":    s.FileName,
		"size":         s.Size,
		"parcel_count": s.ParcelCount,
		"balance":      s.Balance,
		"created_at":   s.CreatedAt,
	}
}

// Create 生成当前商户账本的加密快照
func (h *SnapshotHandler) Create(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	st, err := h.Ledgers.Snapshot(c.Request.Context(), merchantOf(user))
	if err != nil {
		ledgerFail(c, err)
		return
	}

	raw, err := json.Marshal(&snapshotData{MerchantID: user.MerchantID, Created: time.Now(), State: st})
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to encode snapshot")
		return
	}
	enc, err := util.EncryptAES(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to encrypt snapshot")
		return
	}

	if err := os.MkdirAll(h.Dir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create snapshot dir")
		return
	}

	// 使用 uuid 作为文件名
	fileName := fmt.Sprintf("snapshot-%s-%s.bin", user.MerchantID, uuid.NewString())
	filePath := filepath.Join(h.Dir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to write snapshot")
		return
	}

	snap := models.Snapshot{
		UserID:      user.ID,
		FileName:    fileName,
		FilePath:    filePath,
		Size:        int64(len(enc)),
		ParcelCount: len(st.Parcels),
		Balance:     st.Balance,
	}
	if err := h.DB.Create(&snap).Error; err != nil {
		_ = os.Remove(filePath)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save snapshot record")
		return
	}

	util.Success(c, util.Response{"snapshot": snapshotView(&snap)})
}

// List 列出当前商户的快照
func (h *SnapshotHandler) List(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var list []models.Snapshot
	if err := h.DB.Where("user_id = ?", user.ID).Order("created_at DESC, id DESC").Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		return
	}
	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, snapshotView(&list[i]))
	}
	util.Success(c, util.Response{"items": items})
}

// Download 下载快照文件（仍为密文）
func (h *SnapshotHandler) Download(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	snap, ok := h.find(c, user.ID)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", snap.FileName))
	c.File(snap.FilePath)
}

// Delete 删除快照记录及文件
func (h *SnapshotHandler) Delete(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	snap, ok := h.find(c, user.ID)
	if !ok {
		return
	}

	// 先删文件，再删记录
	if err := os.Remove(snap.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to remove snapshot file")
		return
	}
	if err := h.DB.Delete(&snap).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete snapshot record")
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

// Restore 用快照替换当前账本（包裹、余额、流水）
func (h *SnapshotHandler) Restore(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	snap, ok := h.find(c, user.ID)
	if !ok {
		return
	}

	encData, err := os.ReadFile(snap.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to read snapshot file")
		return
	}
	raw, err := util.DecryptAES(h.EncryptKey, encData)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to decrypt snapshot")
		return
	}
	var data snapshotData
	if err := json.Unmarshal(raw, &data); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to decode snapshot")
		return
	}
	if data.MerchantID != user.MerchantID {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "snapshot belongs to another merchant")
		return
	}
	for _, p := range data.State.Parcels {
		if !p.Status.Valid() {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "snapshot contains an unknown status")
			return
		}
	}

	if err := h.Ledgers.Restore(c.Request.Context(), merchantOf(user), data.State); err != nil {
		ledgerFail(c, err)
		return
	}
	util.Success(c, util.Response{
		"message":      "restored",
		"parcel_count": len(data.State.Parcels),
		"balance":      data.State.Balance,
	})
}

func (h *SnapshotHandler) find(c *gin.Context, userID uint) (models.Snapshot, bool) {
	var snap models.Snapshot
	err := h.DB.Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&snap).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "snapshot not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "query failed")
		}
		return snap, false
	}
	return snap, true
}
