package backup

import (
	"time"

	"github.com/epharmacy/backend/internal/domain/backup"
	"github.com/epharmacy/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ListFilter carries backup list query parameters
type ListFilter struct {
	Page     int `form:"page" binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// Response represents a backup record in API responses
type Response struct {
	ID          uuid.UUID  `json:"id"`
	FileName    string     `json:"file_name"`
	SizeBytes   int64      `json:"size_bytes"`
	TableCounts string     `json:"table_counts,omitempty"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// RestoreResponse represents a restore record in API responses
type RestoreResponse struct {
	ID          uuid.UUID  `json:"id"`
	BackupID    uuid.UUID  `json:"backup_id"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	CreatedBy   uuid.UUID  `json:"created_by"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// ToResponse converts a backup record to Response
func ToResponse(r *backup.Record) Response {
	return Response{
		ID:          r.ID,
		FileName:    r.FileName,
		SizeBytes:   r.SizeBytes,
		TableCounts: r.TableCounts,
		Status:      string(r.Status),
		Error:       r.Error,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

// ToResponses converts a slice of backup records
func ToResponses(records []backup.Record) []Response {
	out := make([]Response, 0, len(records))
	for i := range records {
		out = append(out, ToResponse(&records[i]))
	}
	return out
}

// ToRestoreResponse converts a restore record to RestoreResponse
func ToRestoreResponse(r *backup.RestoreRecord) RestoreResponse {
	return RestoreResponse{
		ID:          r.ID,
		BackupID:    r.BackupID,
		Status:      string(r.Status),
		Error:       r.Error,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
		CompletedAt: r.CompletedAt,
	}
}

func buildFilter(filter *ListFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	return f
}
