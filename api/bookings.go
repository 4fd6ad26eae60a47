package api

import (
	"fmt"
	"net/http"

	"github.com/Domenick1991/carestaff/internal/domain"
	"github.com/Domenick1991/carestaff/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type paymentResponse struct {
	Booking bookingResponse  `json:"booking"`
	Invoice *invoiceResponse `json:"invoice"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts /bookings.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("/:id/confirm", h.confirm)
	router.POST("/:id/complete", h.complete)
	router.POST("/:id/authorize-payment", h.authorizePayment)
}

// RegisterLines mounts /lines.
func (h *BookingHandler) RegisterLines(router *gin.RouterGroup) {
	router.GET("/:kind/:id", h.lineDetails)
	router.DELETE("/:kind/:id", h.cancelLine)
}

// RegisterInvoices mounts /invoices.
func (h *BookingHandler) RegisterInvoices(router *gin.RouterGroup) {
	router.GET("/:bookingId/download", h.downloadInvoice)
}

func (h *BookingHandler) list(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	lines, err := h.service.ListForActor(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]lineResponse, 0, len(lines))
	for i := range lines {
		resp = append(resp, toLineResponse(&lines[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) confirm(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	b, err := h.service.Confirm(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) complete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	b, err := h.service.Complete(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) authorizePayment(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	b, invoice, err := h.service.AuthorizePayment(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, paymentResponse{Booking: toBookingResponse(b), Invoice: toInvoiceResponse(invoice)})
}

func lineRef(c *gin.Context) (domain.LineRef, error) {
	kind, err := domain.ParseLineKind(c.Param("kind"))
	if err != nil {
		return domain.LineRef{}, err
	}
	return domain.LineRef{Kind: kind, ID: c.Param("id")}, nil
}

func (h *BookingHandler) lineDetails(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	ref, err := lineRef(c)
	if err != nil {
		writeError(c, err)
		return
	}
	line, err := h.service.GetLineDetails(c.Request.Context(), actor, ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLineResponse(line))
}

func (h *BookingHandler) cancelLine(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	ref, err := lineRef(c)
	if err != nil {
		writeError(c, err)
		return
	}
	line, err := h.service.CancelLine(c.Request.Context(), actor, ref)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toLineResponse(line))
}

func (h *BookingHandler) downloadInvoice(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	bookingID := c.Param("bookingId")
	body, contentType, err := h.service.RenderInvoice(c.Request.Context(), actor, bookingID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="invoice-%s.txt"`, bookingID))
	c.Data(http.StatusOK, contentType, body)
}
