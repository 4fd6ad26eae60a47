package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/carestaff/internal/service/booking"
	"github.com/Domenick1991/carestaff/internal/service/missions"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type MissionHandler struct {
	missions missions.MissionUseCase
	bookings booking.BookingUseCase
}

type createMissionRequest struct {
	Title      string          `json:"title" binding:"required"`
	Start      time.Time       `json:"start" binding:"required"`
	End        time.Time       `json:"end" binding:"required"`
	HourlyRate decimal.Decimal `json:"hourly_rate"`
	Address    string          `json:"address" binding:"required"`
}

func NewMissionHandler(missionService missions.MissionUseCase, bookingService booking.BookingUseCase) *MissionHandler {
	return &MissionHandler{missions: missionService, bookings: bookingService}
}

func (h *MissionHandler) Register(router *gin.RouterGroup) {
	router.POST("", h.create)
	router.GET("", h.list)
	router.GET("/:id", h.get)
	router.POST("/:id/apply", h.apply)
}

func (h *MissionHandler) create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	var req createMissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	mission, err := h.missions.CreateMission(c.Request.Context(), actor, missions.CreateMissionInput{
		Title:      req.Title,
		Start:      req.Start,
		End:        req.End,
		HourlyRate: req.HourlyRate,
		Address:    req.Address,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toMissionResponse(mission))
}

func (h *MissionHandler) list(c *gin.Context) {
	filter, err := parseListFilter(c)
	if err != nil {
		badRequest(c, err)
		return
	}

	open, err := h.missions.ListOpenMissions(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	resp := make([]missionResponse, 0, len(open))
	for i := range open {
		resp = append(resp, toMissionResponse(&open[i]))
	}
	c.JSON(http.StatusOK, resp)
}

func (h *MissionHandler) get(c *gin.Context) {
	mission, err := h.missions.GetMission(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMissionResponse(mission))
}

func (h *MissionHandler) apply(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	b, err := h.bookings.Apply(c.Request.Context(), actor, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func parseListFilter(c *gin.Context) (missions.ListFilter, error) {
	var filter missions.ListFilter
	if raw := c.Query("date"); raw != "" {
		day, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", raw)
		}
		filter.Date = &day
	}
	filter.Location = c.Query("location")

	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		return filter, err
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		return filter, err
	}
	return filter, nil
}

func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return v, nil
}
