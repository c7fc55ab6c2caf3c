package http

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/nurpe/weighbridge-billing/internal/billing"
	"github.com/nurpe/weighbridge-billing/internal/excel"
	"github.com/nurpe/weighbridge-billing/internal/http/middleware"
	"github.com/nurpe/weighbridge-billing/internal/model"
	"github.com/nurpe/weighbridge-billing/internal/pdf"
	"github.com/nurpe/weighbridge-billing/internal/repository"
)

type Handler struct {
	bills     *billing.Service
	providers *repository.ProviderRepository
	trucks    *repository.TruckRepository
	rates     *repository.RateRepository
	pdf       *pdf.Generator
	log       zerolog.Logger
}

func NewHandler(
	bills *billing.Service,
	providers *repository.ProviderRepository,
	trucks *repository.TruckRepository,
	rates *repository.RateRepository,
	pdfGenerator *pdf.Generator,
	log zerolog.Logger,
) *Handler {
	return &Handler{
		bills:     bills,
		providers: providers,
		trucks:    trucks,
		rates:     rates,
		pdf:       pdfGenerator,
		log:       log,
	}
}

func (h *Handler) Register(router *gin.Engine, authMiddleware gin.HandlerFunc) {
	protected := router.Group("/")
	protected.Use(authMiddleware)

	protected.GET("/providers", h.listProviders)
	protected.POST("/providers", h.createProvider)
	protected.PUT("/providers/:id", h.renameProvider)
	protected.GET("/providers/:id/trucks", h.listTrucks)
	protected.POST("/trucks", h.registerTruck)
	protected.PUT("/trucks/:code", h.reassignTruck)
	protected.POST("/rates", h.uploadRates)
	protected.GET("/rates/export", h.exportRates)
	protected.GET("/providers/:id/bill", h.generateBill)
	protected.GET("/providers/:id/bill/pdf", h.generateBillPDF)
}

type billLineResponse struct {
	Product     string `json:"product"`
	TotalWeight int64  `json:"total_weight"`
	UnitPrice   int64  `json:"unit_price"`
	Amount      int64  `json:"amount"`
}

type billResponse struct {
	ProviderID      string             `json:"provider_id"`
	ProviderName    string             `json:"provider_name"`
	From            string             `json:"from"`
	To              string             `json:"to"`
	Lines           []billLineResponse `json:"lines"`
	GrandTotal      int64              `json:"grand_total"`
	OmittedProducts []string           `json:"omitted_products,omitempty"`
}

func (h *Handler) generateBill(c *gin.Context) {
	bill, ok := h.computeBill(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, toBillResponse(bill))
}

func (h *Handler) generateBillPDF(c *gin.Context) {
	bill, ok := h.computeBill(c)
	if !ok {
		return
	}

	content, err := h.pdf.Generate(*bill)
	if err != nil {
		h.handleError(c, err)
		return
	}

	fileName := "bill-" + bill.ProviderID.String() + "-" + billing.FormatTimestamp(bill.From) + ".pdf"
	c.Header("Content-Disposition", "attachment; filename=\""+fileName+"\"")
	c.Data(http.StatusOK, "application/pdf", content)
}

func (h *Handler) computeBill(c *gin.Context) (*model.Bill, bool) {
	providerID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return nil, false
	}

	bill, err := h.bills.GenerateBill(c.Request.Context(), providerID, c.Query("from"), c.Query("to"))
	if err != nil {
		h.handleError(c, err)
		return nil, false
	}
	return bill, true
}

func toBillResponse(bill *model.Bill) billResponse {
	lines := make([]billLineResponse, 0, len(bill.Lines))
	for _, line := range bill.Lines {
		lines = append(lines, billLineResponse{
			Product:     line.ProductID,
			TotalWeight: line.TotalWeight,
			UnitPrice:   line.UnitPrice,
			Amount:      line.Amount,
		})
	}
	return billResponse{
		ProviderID:      bill.ProviderID.String(),
		ProviderName:    bill.ProviderName,
		From:            billing.FormatTimestamp(bill.From),
		To:              billing.FormatTimestamp(bill.To),
		Lines:           lines,
		GrandTotal:      bill.GrandTotal,
		OmittedProducts: bill.OmittedProducts,
	}
}

func (h *Handler) listProviders(c *gin.Context) {
	providers, err := h.providers.List(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, providers)
}

type createProviderRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *Handler) createProvider(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var req createProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider, err := h.providers.Create(c.Request.Context(), strings.TrimSpace(req.Name))
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, provider)
}

func (h *Handler) renameProvider(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	providerID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	var req createProviderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.providers.Rename(c.Request.Context(), providerID, strings.TrimSpace(req.Name)); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listTrucks(c *gin.Context) {
	providerID, err := uuid.Parse(strings.TrimSpace(c.Param("id")))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider id"})
		return
	}

	trucks, err := h.trucks.GetByProvider(c.Request.Context(), providerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusOK, trucks)
}

type registerTruckRequest struct {
	Code       string `json:"code" binding:"required"`
	ProviderID string `json:"provider_id" binding:"required"`
}

func (h *Handler) registerTruck(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var req registerTruckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	providerID, err := uuid.Parse(strings.TrimSpace(req.ProviderID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider_id"})
		return
	}

	truck, err := h.trucks.Register(c.Request.Context(), strings.TrimSpace(req.Code), providerID)
	if err != nil {
		h.handleError(c, err)
		return
	}
	c.JSON(http.StatusCreated, truck)
}

type reassignTruckRequest struct {
	ProviderID string `json:"provider_id" binding:"required"`
}

func (h *Handler) reassignTruck(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	var req reassignTruckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	providerID, err := uuid.Parse(strings.TrimSpace(req.ProviderID))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid provider_id"})
		return
	}

	if err := h.trucks.Reassign(c.Request.Context(), strings.TrimSpace(c.Param("code")), providerID); err != nil {
		h.handleError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadRates(c *gin.Context) {
	if !h.requireAdmin(c) {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.handleError(c, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		h.handleError(c, err)
		return
	}

	rates, err := excel.ParseRates(data)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.rates.ReplaceAll(c.Request.Context(), rates); err != nil {
		h.handleError(c, err)
		return
	}

	h.log.Info().Int("rates", len(rates)).Msg("rate table replaced")
	c.JSON(http.StatusOK, gin.H{"uploaded": len(rates)})
}

func (h *Handler) exportRates(c *gin.Context) {
	rates, err := h.rates.GetAll(c.Request.Context())
	if err != nil {
		h.handleError(c, err)
		return
	}

	content, err := excel.ExportRates(rates)
	if err != nil {
		h.handleError(c, err)
		return
	}

	c.Header("Content-Disposition", "attachment; filename=\"rates.xlsx\"")
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", content)
}

func (h *Handler) requireAdmin(c *gin.Context) bool {
	principal, ok := middleware.MustPrincipal(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing principal"})
		return false
	}
	if !principal.IsAdmin() {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
		return false
	}
	return true
}

func (h *Handler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, billing.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, billing.ErrNotFound), errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, billing.ErrUpstreamUnavailable):
		h.log.Error().Err(err).Msg("weight service unavailable")
		c.JSON(http.StatusBadGateway, gin.H{"error": "weight service unavailable"})
	default:
		h.log.Error().Err(err).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
