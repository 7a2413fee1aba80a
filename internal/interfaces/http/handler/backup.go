package handler

import (
	"time"

	backupapp "github.com/epharmacy/backend/internal/application/backup"
	"github.com/gin-gonic/gin"
)

// BackupHandler handles the admin backup and restore endpoints
type BackupHandler struct {
	BaseHandler
	backupService *backupapp.Service
}

// NewBackupHandler creates a new BackupHandler
func NewBackupHandler(backupService *backupapp.Service) *BackupHandler {
	return &BackupHandler{backupService: backupService}
}

// Run snapshots the database into the object store
func (h *BackupHandler) Run(c *gin.Context) {
	adminID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	resp, err := h.backupService.Run(c.Request.Context(), adminID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// List returns backup records
func (h *BackupHandler) List(c *gin.Context) {
	var filter backupapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.backupService.List(c.Request.Context(), &filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Get returns a single backup record
func (h *BackupHandler) Get(c *gin.Context) {
	backupID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid backup ID format")
		return
	}

	resp, err := h.backupService.Get(c.Request.Context(), backupID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// Download returns a time-limited URL for the backup archive
func (h *BackupHandler) Download(c *gin.Context) {
	backupID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid backup ID format")
		return
	}

	url, expiresAt, err := h.backupService.DownloadURL(c.Request.Context(), backupID, 15*time.Minute)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, gin.H{"url": url, "expires_at": expiresAt})
}

// Restore replaces the database contents with a completed backup
func (h *BackupHandler) Restore(c *gin.Context) {
	adminID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	backupID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid backup ID format")
		return
	}

	resp, err := h.backupService.Restore(c.Request.Context(), backupID, adminID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}
