package rest

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"ppe-gate/internal/domain/entity"
)

const maxPassesLimit = 500

type HealthResponse struct {
	Status string `json:"status"`
	GateID string `json:"gate_id"`
}

type RequiredResponse struct {
	Required []entity.PPEClass `json:"required"`
}

type RequiredRequest struct {
	Required []string `json:"required" binding:"required"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{Status: "healthy", GateID: s.deps.GateID})
}

func (s *Server) status(c *gin.Context) {
	c.JSON(http.StatusOK, s.deps.Board.Snapshot())
}

func (s *Server) reset(c *gin.Context) {
	s.deps.Board.Reset(s.deps.Clock.Now())
	c.Status(http.StatusNoContent)
}

func (s *Server) getRequired(c *gin.Context) {
	c.JSON(http.StatusOK, RequiredResponse{Required: s.deps.Session.Required().Classes()})
}

func (s *Server) putRequired(c *gin.Context) {
	var req RequiredRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	next := make(entity.RequiredSet, len(req.Required))
	for _, name := range req.Required {
		class, err := entity.ParsePPEClass(name)
		if err != nil {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			return
		}
		next[class] = true
	}

	rs, err := s.deps.Session.SetRequired(next)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	s.log.Info().Str("required", rs.String()).Msg("required ppe updated")
	c.JSON(http.StatusOK, RequiredResponse{Required: rs.Classes()})
}

func (s *Server) toggleRequired(c *gin.Context) {
	class, err := entity.ParsePPEClass(c.Param("class"))
	if err != nil {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}

	rs, err := s.deps.Session.Toggle(class)
	if errors.Is(err, entity.ErrEmptyRequiredSet) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	s.log.Info().Str("class", class.String()).Str("required", rs.String()).Msg("required ppe toggled")
	c.JSON(http.StatusOK, RequiredResponse{Required: rs.Classes()})
}

func (s *Server) listPasses(c *gin.Context) {
	if s.deps.History == nil {
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "pass history is disabled"})
		return
	}

	limit := 20
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxPassesLimit {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be between 1 and 500"})
			return
		}
		limit = n
	}

	passes, err := s.deps.History.Recent(c.Request.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("list passes")
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to read pass history"})
		return
	}
	if passes == nil {
		passes = []entity.PassOutcome{}
	}
	c.JSON(http.StatusOK, passes)
}
