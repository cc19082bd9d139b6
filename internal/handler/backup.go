package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"money-tracking/internal/ledger"
	"money-tracking/internal/models"
	"money-tracking/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// BackupHandler writes encrypted ledger snapshots to the backup directory
// and restores them.
type BackupHandler struct {
	DB         *gorm.DB
	Ledger     *ledger.Service
	EncryptKey string
	BackupDir  string
}

func NewBackupHandler(db *gorm.DB, svc *ledger.Service, encryptKey, backupDir string) *BackupHandler {
	return &BackupHandler{
		DB:         db,
		Ledger:     svc,
		EncryptKey: encryptKey,
		BackupDir:  backupDir,
	}
}

func backupView(b *models.Backup) gin.H {
	return gin.H{
		"id":         b.ID,
		"file_name":  b.FileName,
		"size":       b.Size,
		"created_at": b.CreatedAt,
	}
}

// CreateBackup snapshots the ledger into an AES-GCM encrypted file.
func (h *BackupHandler) CreateBackup(c *gin.Context) {
	if h.EncryptKey == "" {
		badRequest(c, "security.encryption_key is not configured")
		return
	}
	snap, err := h.Ledger.Snapshot(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "serialize failed")
		return
	}
	enc, err := util.SealBackup(h.EncryptKey, raw)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "encrypt failed")
		return
	}

	if err := os.MkdirAll(h.BackupDir, 0o755); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "create backup dir failed")
		return
	}

	id := util.NewID()
	fileName := fmt.Sprintf("ledger-%s-%s.bin", snap.CreatedAt.Format("20060102-150405"), id[:8])
	filePath := filepath.Join(h.BackupDir, fileName)
	if err := os.WriteFile(filePath, enc, 0o600); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "write backup file failed")
		return
	}

	backup := models.Backup{
		ID:       id,
		FileName: fileName,
		FilePath: filePath,
		Size:     int64(len(enc)),
	}
	if err := h.DB.WithContext(c.Request.Context()).Create(&backup).Error; err != nil {
		_ = os.Remove(filePath)
		log.Printf("handler: save backup record: %v", err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "save backup record failed")
		return
	}

	util.Success(c, util.Response{"backup": backupView(&backup)})
}

func (h *BackupHandler) ListBackups(c *gin.Context) {
	var list []models.Backup
	if err := h.DB.WithContext(c.Request.Context()).
		Order("created_at DESC").
		Find(&list).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "list backups failed")
		return
	}
	items := make([]gin.H, 0, len(list))
	for i := range list {
		items = append(items, backupView(&list[i]))
	}
	util.Success(c, util.Response{"items": items})
}

func (h *BackupHandler) find(c *gin.Context) (*models.Backup, bool) {
	var backup models.Backup
	err := h.DB.WithContext(c.Request.Context()).Where("id = ?", c.Param("id")).First(&backup).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "backup not found")
		return nil, false
	}
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "find backup failed")
		return nil, false
	}
	return &backup, true
}

func (h *BackupHandler) DownloadBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	c.Header("Content-Type", "application/octet-stream")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", backup.FileName))
	c.File(backup.FilePath)
}

// DeleteBackup removes the file first, then the record.
func (h *BackupHandler) DeleteBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	_ = os.Remove(backup.FilePath)
	if err := h.DB.WithContext(c.Request.Context()).Delete(backup).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "delete backup record failed")
		return
	}
	util.Success(c, util.Response{"message": "deleted"})
}

// RestoreBackup replaces the ledger with the content of a backup.
func (h *BackupHandler) RestoreBackup(c *gin.Context) {
	backup, ok := h.find(c)
	if !ok {
		return
	}
	encData, err := os.ReadFile(backup.FilePath)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "read backup file failed")
		return
	}
	raw, err := util.OpenBackup(h.EncryptKey, encData)
	switch {
	case errors.Is(err, util.ErrNotBackup):
		badRequest(c, "file is not a ledger backup")
		return
	case errors.Is(err, util.ErrBackupVersion):
		badRequest(c, "backup was written by a newer version")
		return
	case err != nil:
		badRequest(c, "backup cannot be decrypted with the configured key")
		return
	}
	var snap ledger.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		badRequest(c, "backup content is corrupt")
		return
	}
	if err := h.Ledger.Restore(c.Request.Context(), &snap); err != nil {
		fail(c, err)
		return
	}
	util.Success(c, util.Response{
		"message":            "restored",
		"transactions_count": len(snap.Transactions),
	})
}
