package schedule

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/bcdservices/dashboard-api/internal/model"
	"github.com/bcdservices/dashboard-api/internal/schedule"
	"github.com/bcdservices/dashboard-api/internal/service/scheduler"
	apperrors "github.com/bcdservices/dashboard-api/pkg/errors"
	"github.com/bcdservices/dashboard-api/pkg/httputil"
)

type Handler struct {
	service scheduler.Scheduler
}

func NewHandler(service scheduler.Scheduler) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	s := r.Group("/schedule")
	{
		s.GET("", h.GetWeek)
		s.GET("/summary", h.GetSummary)
		s.GET("/slots", h.GetSlot)
		s.POST("/navigate", h.Navigate)
		s.POST("/next", h.Next)
		s.POST("/prev", h.Previous)
		s.POST("/refresh", h.Refresh)
		s.POST("/days/:day/block", h.ToggleDayBlock)
		s.POST("/slots/block", h.ToggleSlotBlock)
		s.POST("/appointments", h.CreateAppointment)
		s.PUT("/appointments/:id", h.UpdateAppointment)
		s.DELETE("/appointments/:id", h.DeleteAppointment)
	}
}

type weekQuery struct {
	Now string `form:"now"`
}

type navigateRequest struct {
	Date string `json:"date" binding:"required,datetime=2006-01-02"`
}

type slotRequest struct {
	Day  *int   `json:"day" form:"day" binding:"required,gte=0,lte=4"`
	Slot string `json:"slot" form:"slot" binding:"required,slotlabel"`
}

type dayParam struct {
	Day *int `uri:"day" binding:"required,gte=0,lte=4"`
}

type deleteQuery struct {
	Day  *int   `form:"day" binding:"required,gte=0,lte=4"`
	Slot string `form:"slot" binding:"required,slotlabel"`
}

// parseNow accepts an RFC 3339 timestamp or a plain date. Empty means now.
func (h *Handler) parseNow(raw string) (time.Time, error) {
	if raw == "" {
		return h.service.Now(), nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t.In(h.service.Location()), nil
	}
	t, err := time.ParseInLocation(time.DateOnly, raw, h.service.Location())
	if err != nil {
		return time.Time{}, apperrors.NewBadRequest("now must be RFC 3339 or YYYY-MM-DD", err)
	}
	return t, nil
}

func (h *Handler) GetWeek(c *gin.Context) {
	var q weekQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	now, err := h.parseNow(q.Now)
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, h.service.View(now))
}

func (h *Handler) GetSummary(c *gin.Context) {
	httputil.RespondWithSuccess(c, h.service.Summary())
}

func (h *Handler) GetSlot(c *gin.Context) {
	var q slotRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	slot, err := h.service.Slot(*q.Day, q.Slot, h.service.Now())
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, slot)
}

// respondWithWeek answers with the reloaded week. Fetch failures are part
// of the view, so they are logged here and never fail the request.
func (h *Handler) respondWithWeek(c *gin.Context, load func(ctx context.Context) error) {
	if err := load(c.Request.Context()); err != nil {
		log.Warn().Err(err).Str("request_id", c.GetString(httputil.ContextRequestID)).Msg("week loaded with errors")
	}
	httputil.RespondWithSuccess(c, h.service.View(h.service.Now()))
}

func (h *Handler) Navigate(c *gin.Context) {
	var req navigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	ref, err := time.ParseInLocation(time.DateOnly, req.Date, h.service.Location())
	if err != nil {
		httputil.Abort(c, apperrors.NewBadRequest("date must be YYYY-MM-DD", err))
		return
	}
	h.respondWithWeek(c, func(ctx context.Context) error { return h.service.Navigate(ctx, ref) })
}

func (h *Handler) Next(c *gin.Context) {
	h.respondWithWeek(c, func(ctx context.Context) error { return h.service.Shift(ctx, 1) })
}

func (h *Handler) Previous(c *gin.Context) {
	h.respondWithWeek(c, func(ctx context.Context) error { return h.service.Shift(ctx, -1) })
}

func (h *Handler) Refresh(c *gin.Context) {
	h.respondWithWeek(c, h.service.Refresh)
}

func (h *Handler) ToggleDayBlock(c *gin.Context) {
	var p dayParam
	if err := c.ShouldBindUri(&p); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	res, err := h.service.ToggleDayBlock(c.Request.Context(), *p.Day)
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) ToggleSlotBlock(c *gin.Context) {
	var req slotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	res, err := h.service.ToggleSlotBlock(c.Request.Context(), *req.Day, req.Slot)
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, res)
}

func (h *Handler) CreateAppointment(c *gin.Context) {
	var req model.SaveAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	req.ID = ""
	apt, err := h.service.SaveAppointment(c.Request.Context(), req)
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondCreated(c, apt)
}

func (h *Handler) UpdateAppointment(c *gin.Context) {
	var req model.SaveAppointmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	req.ID = c.Param("id")
	apt, err := h.service.SaveAppointment(c.Request.Context(), req)
	if err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, apt)
}

func (h *Handler) DeleteAppointment(c *gin.Context) {
	var q deleteQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		httputil.AbortBinding(c, err)
		return
	}
	key := schedule.SlotKey{Day: *q.Day, Label: q.Slot}
	if err := h.service.DeleteAppointment(c.Request.Context(), key, c.Param("id")); err != nil {
		httputil.Abort(c, err)
		return
	}
	httputil.RespondWithSuccess(c, gin.H{"id": c.Param("id"), "deleted": true})
}
