package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/carestaff/internal/service/quotes"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type QuoteHandler struct {
	service quotes.QuoteUseCase
}

type proposeQuoteRequest struct {
	EstablishmentID string          `json:"establishment_id" binding:"required"`
	FreelanceID     string          `json:"freelance_id" binding:"required"`
	MissionID       *string         `json:"mission_id"`
	Amount          decimal.Decimal `json:"amount"`
	Description     string          `json:"description"`
	Start           time.Time       `json:"start" binding:"required"`
	End             time.Time       `json:"end" binding:"required"`
}

type acceptQuoteResponse struct {
	Quote   quoteResponse   `json:"quote"`
	Booking bookingResponse `json:"booking"`
}

func NewQuoteHandler(service quotes.QuoteUseCase) *QuoteHandler {
	return &QuoteHandler{service: service}
}

func (h *QuoteHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.propose)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/accept", h.accept)
	router.POST("/:id/reject", h.reject)
}

func (h *QuoteHandler) propose(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req proposeQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	quote, err := h.service.Propose(c.Request.Context(), actor, quotes.ProposeInput{
		EstablishmentID: req.EstablishmentID,
		FreelanceID:     req.FreelanceID,
		MissionID:       req.MissionID,
		Amount:          req.Amount,
		Description:     req.Description,
		Start:           req.Start,
		End:             req.End,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toQuoteResponse(quote))
}

func (h *QuoteHandler) list(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	list, err := h.service.ListForActor(c.Request.Context(), actor)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]quoteResponse, 0, len(list))
	for i := range list {
		resp = append(resp, toQuoteResponse(&list[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *QuoteHandler) get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	quote, err := h.service.Get(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(quote))
}

func (h *QuoteHandler) accept(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	quote, b, err := h.service.Accept(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, acceptQuoteResponse{Quote: toQuoteResponse(quote), Booking: toBookingResponse(b)})
}

func (h *QuoteHandler) reject(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	quote, err := h.service.Reject(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toQuoteResponse(quote))
}
