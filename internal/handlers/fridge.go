package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"smart_fridge/internal/logger"
	"smart_fridge/internal/service"

	"github.com/gin-gonic/gin"
)

// levelRequestTimeout bounds the wait for the monitor loop to apply a level.
const levelRequestTimeout = 3 * time.Second

const (
	statusOK       = "ok"
	statusLevelSet = "level_set"
	statusPressed  = "pressed"

	errGetStatus      = "failed to load status"
	errGetDisplay     = "failed to load display"
	errNoDisplay      = "nothing rendered yet"
	errInvalidLevel   = "level must be 0 (DEBUG) to 3 (ERROR)"
	errLoopBusy       = "monitor loop unavailable, retry later"
	errSetLevel       = "failed to set log level"
	errPressButton    = "failed to press button"
	errInvalidBodyPre = "invalid body: "
)

// Centralized error logging and response.
func (h *Handler) logAndJSONError(c *gin.Context, httpCode int, userMsg, logKey string, err error, kv ...interface{}) {
	if h.log != nil && err != nil {
		fields := append([]interface{}{"err", err}, kv...)
		h.log.Errorw(logKey, fields...)
	}
	c.JSON(httpCode, gin.H{"error": userMsg})
}

// SetLevelRequest is the body of PUT /api/v1/log-level.
type SetLevelRequest struct {
	// Level 0..3 (DEBUG, INFO, WARNING, ERROR)
	Level *int `json:"level" binding:"required" example:"1"`
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": statusOK,
	})
}

// @Summary      Current status
// @Description  Snapshot published by the monitor loop after its last tick
// @Tags         fridge
// @Produce      json
// @Success      200  {object}  service.Snapshot
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/status [get]
// @Security     BearerAuth
func (h *Handler) getStatus(c *gin.Context) {
	st, err := h.services.GetStatus(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetStatus, "fridge_get_status_failed", err)
		return
	}
	c.JSON(http.StatusOK, st)
}

// @Summary      Last rendered display
// @Description  Persisted copy of the two display lines, kept across restarts
// @Tags         fridge
// @Produce      json
// @Success      200  {object}  repository.DisplayRecord
// @Failure      401  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/display [get]
// @Security     BearerAuth
func (h *Handler) getDisplay(c *gin.Context) {
	rec, err := h.services.GetDisplay(c.Request.Context())
	if err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errGetDisplay, "fridge_get_display_failed", err)
		return
	}
	if rec.ID == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": errNoDisplay})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// @Summary      Set log level
// @Description  Same effect as a button press cycle: the display confirms the new level
// @Tags         fridge
// @Accept       json
// @Produce      json
// @Param        body  body      SetLevelRequest  true  "Level payload"
// @Success      200   {object}  map[string]interface{}
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Failure      503   {object}  map[string]string
// @Router       /api/v1/log-level [put]
// @Security     BearerAuth
func (h *Handler) setLogLevel(c *gin.Context) {
	var req SetLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidBodyPre + err.Error()})
		return
	}

	level := logger.Level(*req.Level)
	if int(level) != *req.Level || !level.Valid() {
		if h.log != nil {
			h.log.Warnw("rejected log level", "level", *req.Level, "operator", operatorID(c))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLevel})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), h.levelTimeout)
	defer cancel()
	err := h.services.SetLevel(ctx, level)
	switch {
	case err == nil:
	case errors.Is(err, service.ErrInvalidLevel):
		c.JSON(http.StatusBadRequest, gin.H{"error": errInvalidLevel})
		return
	case errors.Is(err, service.ErrLoopUnavailable):
		h.logAndJSONError(c, http.StatusServiceUnavailable, errLoopBusy, "fridge_set_level_unavailable", err,
			"operator", operatorID(c))
		return
	default:
		h.logAndJSONError(c, http.StatusInternalServerError, errSetLevel, "fridge_set_level_failed", err,
			"operator", operatorID(c))
		return
	}

	if h.log != nil {
		h.log.Infow("fridge_level_set", "level", level.String(), "operator", operatorID(c))
	}
	c.JSON(http.StatusOK, gin.H{"status": statusLevelSet, "level": level.String()})
}

// @Summary      Press the button
// @Description  Injects a press; the loop cycles the log level on its next button poll
// @Tags         fridge
// @Produce      json
// @Success      202  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/button [post]
// @Security     BearerAuth
func (h *Handler) pressButton(c *gin.Context) {
	if err := h.services.PressButton(c.Request.Context()); err != nil {
		h.logAndJSONError(c, http.StatusInternalServerError, errPressButton, "fridge_press_button_failed", err,
			"operator", operatorID(c))
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": statusPressed})
}
