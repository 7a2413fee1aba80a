package handler

import (
	"context"
	"io"
	"net/http"

	prescriptionapp "github.com/epharmacy/backend/internal/application/prescription"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// PrescriptionHandler handles prescription upload and review endpoints
type PrescriptionHandler struct {
	BaseHandler
	prescriptionService *prescriptionapp.Service
}

// NewPrescriptionHandler creates a new PrescriptionHandler
func NewPrescriptionHandler(prescriptionService *prescriptionapp.Service) *PrescriptionHandler {
	return &PrescriptionHandler{prescriptionService: prescriptionService}
}

// Upload accepts a multipart form with prescription details and the scan file
func (h *PrescriptionHandler) Upload(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req prescriptionapp.UploadRequest
	if err := c.ShouldBind(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	fileHeader, err := c.FormFile("scan")
	if err != nil {
		h.BadRequest(c, "A scan file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Could not read the scan file")
		return
	}
	defer file.Close()

	scan, err := io.ReadAll(file)
	if err != nil {
		h.BadRequest(c, "Could not read the scan file")
		return
	}

	contentType := fileHeader.Header.Get("Content-Type")

	resp, err := h.prescriptionService.Upload(c.Request.Context(), customerID, &req, scan, contentType)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, resp)
}

// Get returns a prescription; customers only see their own
func (h *PrescriptionHandler) Get(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	prescriptionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid prescription ID format")
		return
	}

	resp, err := h.prescriptionService.Get(c.Request.Context(), customerID, isAdmin(c), prescriptionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

// DownloadScan streams the stored scan back to the caller
func (h *PrescriptionHandler) DownloadScan(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	prescriptionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid prescription ID format")
		return
	}

	data, contentType, err := h.prescriptionService.DownloadScan(c.Request.Context(), customerID, isAdmin(c), prescriptionID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	c.Data(http.StatusOK, contentType, data)
}

// ListOwn returns the caller's prescriptions
func (h *PrescriptionHandler) ListOwn(c *gin.Context) {
	customerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter prescriptionapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.prescriptionService.ListOwn(c.Request.Context(), customerID, &filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListAll returns prescriptions for the pharmacist review queue
func (h *PrescriptionHandler) ListAll(c *gin.Context) {
	var filter prescriptionapp.ListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.prescriptionService.ListAll(c.Request.Context(), &filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Approve marks a pending prescription as approved
func (h *PrescriptionHandler) Approve(c *gin.Context) {
	h.review(c, h.prescriptionService.Approve)
}

// Reject marks a pending prescription as rejected
func (h *PrescriptionHandler) Reject(c *gin.Context) {
	h.review(c, h.prescriptionService.Reject)
}

func (h *PrescriptionHandler) review(c *gin.Context, apply reviewFunc) {
	reviewerID, err := getCustomerID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	prescriptionID, err := parseIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid prescription ID format")
		return
	}

	var req prescriptionapp.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	resp, err := apply(c.Request.Context(), reviewerID, prescriptionID, &req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, resp)
}

type reviewFunc func(ctx context.Context, reviewerID, id uuid.UUID, req *prescriptionapp.ReviewRequest) (*prescriptionapp.Response, error)
