package handler

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopbill/shopbill-api/internal/application/service"
	"github.com/shopbill/shopbill-api/internal/presentation/http/dto/response"
)

// BackupHandler handles backup export/import HTTP requests (admin only)
type BackupHandler struct {
	backupService *service.BackupService
}

// NewBackupHandler creates a new backup handler
func NewBackupHandler(backupService *service.BackupService) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Export handles downloading the full shop backup as JSON
func (h *BackupHandler) Export(c *gin.Context) {
	backup, err := h.backupService.Export(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	filename := fmt.Sprintf("shopbill-backup-%s.json", time.Now().Format("20060102-150405"))
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.JSON(200, backup)
}

// Import handles restoring a backup document
func (h *BackupHandler) Import(c *gin.Context) {
	var backup service.Backup
	if err := c.ShouldBindJSON(&backup); err != nil {
		response.BadRequest(c, "Invalid backup document: "+err.Error())
		return
	}

	if err := h.backupService.Import(c.Request.Context(), &backup); err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Backup imported successfully", gin.H{
		"products":  len(backup.Products),
		"sales":     len(backup.Sales),
		"customers": len(backup.Customers),
	})
}
