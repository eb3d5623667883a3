package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/julianstephens/slotbook/internal/availability"
	"github.com/julianstephens/slotbook/internal/logger"
	"github.com/julianstephens/slotbook/internal/models"
	"github.com/julianstephens/slotbook/internal/storage"
	"github.com/julianstephens/slotbook/internal/utils"
)

type bookRequest struct {
	Date  string `json:"date" binding:"required"`
	Start string `json:"start" binding:"required"`
	End   string `json:"end" binding:"required"`
}

func (s *Server) listCalendars(c *gin.Context) {
	summaries, err := s.store.ListCalendars(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) getCalendar(c *gin.Context) {
	cal, err := s.store.GetCalendar(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, cal)
}

func (s *Server) getSpots(c *gin.Context) {
	duration, err := strconv.Atoi(c.Query("duration"))
	if err != nil {
		respondError(c, availability.ErrInvalidDuration)
		return
	}

	spots, err := s.finder.GetAvailableSpots(c.Request.Context(), c.Param("id"), c.Query("date"), duration)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, spots)
}

func (s *Server) getWindows(c *gin.Context) {
	free, err := s.finder.FreeWindows(c.Request.Context(), c.Param("id"), c.Query("date"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, free)
}

func (s *Server) bookSession(c *gin.Context) {
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request payload: " + err.Error()})
		return
	}
	date, err := utils.ParseDayKey(req.Date)
	if err != nil {
		respondError(c, availability.ErrInvalidDate)
		return
	}
	day := utils.DayKey(date)
	start, errStart := models.ParseClock(req.Start)
	end, errEnd := models.ParseClock(req.End)
	if errStart != nil || errEnd != nil || start >= end {
		respondError(c, models.ErrInvalidWindow)
		return
	}
	session := models.TimeWindow{Start: start, End: end}

	if err := s.store.AddSession(c.Request.Context(), c.Param("id"), day, session, false); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"date": day, "session": session})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, availability.ErrInvalidDate),
		errors.Is(err, availability.ErrInvalidDuration),
		errors.Is(err, models.ErrInvalidWindow),
		errors.Is(err, storage.ErrInvalidID):
		return http.StatusBadRequest
	case errors.Is(err, storage.ErrCalendarNotFound):
		return http.StatusNotFound
	case errors.Is(err, storage.ErrSessionConflict):
		return http.StatusConflict
	case errors.Is(err, storage.ErrMalformedCalendar):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error("Request failed", "path", c.Request.URL.Path, "error", err)
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
