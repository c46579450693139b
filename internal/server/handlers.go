package server

import (
	"net/http"
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/roach88/asksql/internal/assistant"
	"github.com/roach88/asksql/internal/dates"
	"github.com/roach88/asksql/internal/intent"
	"github.com/roach88/asksql/internal/pipeline"
	"github.com/roach88/asksql/internal/registry"
	"github.com/roach88/asksql/internal/store"
)

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"functions": s.assistant.Pipeline().Registry().Len(),
	})
}

func (s *Server) handleFunctions(c *gin.Context) {
	reg := s.assistant.Pipeline().Registry()
	resp := FunctionsResponse{Functions: []FunctionInfo{}}
	for _, name := range reg.Names() {
		g, _ := reg.Lookup(name)
		resp.Functions = append(resp.Functions, FunctionInfo{
			Name:        name,
			Signature:   registry.Signature(g),
			Description: registry.Description(g),
			Params:      g.Params(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

// handleResolve renders the query for an expression without executing it.
// Resolution failures answer 422 with the outcome and error in the body.
func (s *Server) handleResolve(c *gin.Context) {
	var req ResolveRequest
	if !bind(c, &req) {
		return
	}
	anchor, ok := s.anchor(c, req.Anchor)
	if !ok {
		return
	}

	res := s.assistant.Pipeline().Run(req.Expression, anchor)
	c.JSON(statusFor(res.Outcome), newResolutionResponse(req.Expression, anchor, res))
}

func (s *Server) handleDates(c *gin.Context) {
	var req DatesRequest
	if !bind(c, &req) {
		return
	}
	anchor, ok := s.anchor(c, req.Anchor)
	if !ok {
		return
	}

	r, rule := dates.ResolveRule(req.Phrase, anchor)
	c.JSON(http.StatusOK, DatesResponse{
		Phrase:    req.Phrase,
		Anchor:    anchor,
		StartDate: r.Start,
		EndDate:   r.End,
		Rule:      string(rule),
		Days:      r.Days(),
	})
}

func (s *Server) handleAsk(c *gin.Context) {
	var req AskRequest
	if !bind(c, &req) {
		return
	}

	ans, err := s.assistant.Ask(c.Request.Context(), req.Question)
	if err != nil {
		s.log.Warn("ask failed",
			zap.String("request_id", c.GetString(requestIDHeader)),
			zap.Error(err))
		if errors.Is(err, intent.ErrNoIntent) {
			c.JSON(http.StatusUnprocessableEntity, ErrorResponse{
				Error: err.Error(),
				Code:  CodeNoIntent,
			})
			return
		}
		c.JSON(http.StatusBadGateway, ErrorResponse{
			Error: err.Error(),
			Code:  CodeIntentFailed,
			Hint:  strings.Join(errors.GetAllHints(err), "; "),
		})
		return
	}
	c.JSON(statusFor(ans.Result.Outcome), newAnswerResponse(ans))
}

func (s *Server) handleHistory(c *gin.Context) {
	f := store.Filter{
		Outcome:  c.Query("outcome"),
		Function: c.Query("function"),
	}
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			c.JSON(http.StatusBadRequest, ErrorResponse{
				Error: "limit must be a non-negative integer",
				Code:  CodeInvalidRequest,
			})
			return
		}
		f.Limit = n
	}

	recs, err := s.assistant.History(c.Request.Context(), f)
	if err != nil {
		if errors.Is(err, assistant.ErrHistoryDisabled) {
			c.JSON(http.StatusNotFound, ErrorResponse{
				Error: err.Error(),
				Code:  CodeHistoryDisabled,
			})
			return
		}
		s.log.Error("history query failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: "history query failed",
			Code:  CodeInternal,
		})
		return
	}
	c.JSON(http.StatusOK, HistoryResponse{Records: recs})
}

// anchor parses an optional YYYY-MM-DD override, defaulting to the
// assistant's clock.
func (s *Server) anchor(c *gin.Context, raw string) (civil.Date, bool) {
	if raw == "" {
		return s.assistant.Clock().Today(), true
	}
	d, err := civil.ParseDate(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: "anchor must be a YYYY-MM-DD date",
			Code:  CodeInvalidRequest,
		})
		return civil.Date{}, false
	}
	return d, true
}

func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error: err.Error(),
			Code:  CodeInvalidRequest,
		})
		return false
	}
	return true
}

func statusFor(o pipeline.Outcome) int {
	switch o {
	case pipeline.OutcomeSuccess:
		return http.StatusOK
	case pipeline.OutcomeExecutionError:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}
