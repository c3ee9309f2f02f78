package httpinterface

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/morphcodes/morphd/internal/core/application"
	"github.com/morphcodes/morphd/internal/core/domain"
	"github.com/morphcodes/morphd/pkg/hashchain"
)

const (
	defaultScanPageSize = 50

	// policy bounds enforced at the API boundary, the core itself accepts
	// any positive length
	minChainLength = 10
	maxChainLength = 10000
)

type handler struct {
	svc application.Service
}

func newHandler(svc application.Service) *handler {
	return &handler{svc}
}

type publicScanRequest struct {
	// Payload is the full encoded document, e.g. from a QR reader.
	Payload string `json:"payload"`
	// ChainID and Value may be supplied directly instead of a payload.
	ChainID string `json:"chainId"`
	Value   string `json:"value"`
}

type scanResponse struct {
	Accepted bool   `json:"accepted"`
	Message  string `json:"message"`
	// owner-facing fields, omitted on the public endpoint
	Reason         string `json:"reason,omitempty"`
	Position       *int   `json:"position,omitempty"`
	NewCursor      *int   `json:"newCursor,omitempty"`
	Remaining      *int   `json:"remaining,omitempty"`
	ChainExhausted *bool  `json:"chainExhausted,omitempty"`
}

func (h *handler) publicScan(c *gin.Context) {
	var req publicScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request"})
		return
	}

	chainID, value := req.ChainID, req.Value
	if req.Payload != "" {
		payload, err := hashchain.DecodePayload(req.Payload)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
			return
		}
		chainID, value = payload.ChainID, payload.Value
	}
	if chainID == "" || value == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing chain id or value"})
		return
	}

	outcome, err := h.svc.Scan(c.Request.Context(), chainID, value, scanMeta(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := scanResponse{
		Accepted: outcome.Accepted,
		Message:  outcome.PublicMessage(),
	}
	if !outcome.Accepted {
		c.JSON(http.StatusBadRequest, resp)
		return
	}
	remaining := outcome.NewCursor + 1
	resp.NewCursor = &outcome.NewCursor
	resp.Remaining = &remaining
	resp.ChainExhausted = &outcome.ChainExhausted
	c.JSON(http.StatusOK, resp)
}

type createChainRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Length      int    `json:"length" binding:"required"`
}

type chainResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Length      int    `json:"length"`
	Cursor      int    `json:"cursor"`
	Active      bool   `json:"active"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt"`
}

func toChainResponse(chain *domain.Chain) chainResponse {
	return chainResponse{
		ID:          chain.ID,
		Name:        chain.Name,
		Description: chain.Description,
		Length:      chain.Length,
		Cursor:      chain.Cursor,
		Active:      chain.Active,
		Status:      chain.Status().String(),
		CreatedAt:   chain.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *handler) createChain(c *gin.Context) {
	org := orgFromContext(c)

	var req createChainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Length < minChainLength || req.Length > maxChainLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf(
			"length must be between %d and %d", minChainLength, maxChainLength,
		)})
		return
	}

	chain, err := h.svc.CreateChain(
		c.Request.Context(), org.ID, org.OwnerID, req.Name, req.Description, req.Length,
	)
	if err != nil {
		if errors.Is(err, application.ErrChainQuotaExceeded) {
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, toChainResponse(chain))
}

func (h *handler) listChains(c *gin.Context) {
	org := orgFromContext(c)

	chains, err := h.svc.ListChains(c.Request.Context(), org.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]chainResponse, 0, len(chains))
	for i := range chains {
		out = append(out, toChainResponse(&chains[i]))
	}
	c.JSON(http.StatusOK, gin.H{"chains": out})
}

func (h *handler) getChain(c *gin.Context) {
	org := orgFromContext(c)

	chain, err := h.svc.GetChain(c.Request.Context(), org.ID, c.Param("chainId"))
	if err != nil {
		abortChainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toChainResponse(chain))
}

func (h *handler) getCurrentToken(c *gin.Context) {
	org := orgFromContext(c)
	chainID := c.Param("chainId")

	// scope the lookup to the caller's organization before touching tokens
	if _, err := h.svc.GetChain(c.Request.Context(), org.ID, chainID); err != nil {
		abortChainError(c, err)
		return
	}

	current, err := h.svc.GetCurrentToken(c.Request.Context(), chainID)
	if err != nil {
		abortChainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"chainId":   current.ChainID,
		"position":  current.Position,
		"value":     current.Value,
		"payload":   current.Payload,
		"remaining": current.Remaining,
	})
}

type ownerScanRequest struct {
	Value string `json:"value" binding:"required"`
}

func (h *handler) ownerScan(c *gin.Context) {
	org := orgFromContext(c)
	chainID := c.Param("chainId")

	if _, err := h.svc.GetChain(c.Request.Context(), org.ID, chainID); err != nil {
		abortChainError(c, err)
		return
	}

	var req ownerScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	outcome, err := h.svc.Scan(c.Request.Context(), chainID, req.Value, scanMeta(c))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	resp := scanResponse{
		Accepted: outcome.Accepted,
		Message:  outcome.PublicMessage(),
	}
	if outcome.Accepted {
		remaining := outcome.NewCursor + 1
		resp.Position = &outcome.ConsumedPosition
		resp.NewCursor = &outcome.NewCursor
		resp.Remaining = &remaining
		resp.ChainExhausted = &outcome.ChainExhausted
	} else {
		// owners see the precise reason for diagnostics
		resp.Reason = outcome.Reason.String()
	}
	c.JSON(http.StatusOK, resp)
}

func (h *handler) deactivateChain(c *gin.Context) {
	org := orgFromContext(c)

	if err := h.svc.Deactivate(c.Request.Context(), org.ID, c.Param("chainId")); err != nil {
		abortChainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deactivated": true})
}

func (h *handler) getScans(c *gin.Context) {
	org := orgFromContext(c)

	limit := defaultScanPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	scans, err := h.svc.GetScans(c.Request.Context(), org.ID, c.Param("chainId"), limit)
	if err != nil {
		abortChainError(c, err)
		return
	}

	out := make([]gin.H, 0, len(scans))
	for _, scan := range scans {
		entry := gin.H{
			"id":        scan.ID,
			"value":     scan.Value,
			"position":  scan.Position,
			"accepted":  scan.Accepted,
			"ip":        scan.IP,
			"userAgent": scan.UserAgent,
			"scannedAt": scan.ScannedAt.UTC().Format(time.RFC3339),
		}
		if !scan.Accepted {
			entry["reason"] = scan.Reason.String()
		}
		out = append(out, entry)
	}
	c.JSON(http.StatusOK, gin.H{"scans": out})
}

func (h *handler) getStats(c *gin.Context) {
	org := orgFromContext(c)

	stats, err := h.svc.GetStats(c.Request.Context(), org.ID, c.Param("chainId"))
	if err != nil {
		abortChainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"length":          stats.Length,
		"cursor":          stats.Cursor,
		"remaining":       stats.Remaining,
		"scanned":         stats.Scanned,
		"percentComplete": stats.PercentComplete,
		"totalScans":      stats.TotalScans,
		"acceptedScans":   stats.AcceptedScans,
		"rejectedScans":   stats.RejectedScans,
	})
}

func (h *handler) exportScans(c *gin.Context) {
	org := orgFromContext(c)
	chainID := c.Param("chainId")

	c.Header("Content-Type", "text/csv")
	c.Header(
		"Content-Disposition",
		fmt.Sprintf(`attachment; filename="scans-%s.csv"`, chainID),
	)
	if err := application.ExportScansCSV(
		c.Request.Context(), h.svc, org.ID, chainID, c.Writer,
	); err != nil {
		abortChainError(c, err)
		return
	}
}

func scanMeta(c *gin.Context) application.ScanMeta {
	return application.ScanMeta{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

func abortChainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrChainNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrChainExhausted):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrChainInactive):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
