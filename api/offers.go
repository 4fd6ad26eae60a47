package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/carestaff/internal/service/booking"
	"github.com/Domenick1991/carestaff/internal/service/offers"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type OfferHandler struct {
	offers   offers.OfferUseCase
	bookings booking.BookingUseCase
}

type createOfferRequest struct {
	Title       string          `json:"title" binding:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
}

type bookOfferRequest struct {
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
}

func NewOfferHandler(offerService offers.OfferUseCase, bookingService booking.BookingUseCase) *OfferHandler {
	return &OfferHandler{offers: offerService, bookings: bookingService}
}

func (h *OfferHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.POST("/:id/book", h.book)
}

func (h *OfferHandler) create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req createOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	offer, err := h.offers.Create(c.Request.Context(), actor, offers.CreateOfferInput{
		Title:       req.Title,
		Description: req.Description,
		Price:       req.Price,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOfferResponse(offer))
}

func (h *OfferHandler) get(c *gin.Context) {
	offer, err := h.offers.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOfferResponse(offer))
}

func (h *OfferHandler) book(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req bookOfferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	b, err := h.bookings.BookService(c.Request.Context(), actor, booking.BookServiceInput{
		ServiceID:   c.Param("id"),
		ScheduledAt: req.ScheduledAt,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}
