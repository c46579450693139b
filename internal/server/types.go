package server

import (
	"cloud.google.com/go/civil"

	"github.com/roach88/asksql/internal/assistant"
	"github.com/roach88/asksql/internal/ir"
	"github.com/roach88/asksql/internal/pipeline"
	"github.com/roach88/asksql/internal/registry"
	"github.com/roach88/asksql/internal/store"
)

// ErrorResponse is returned for request-level failures (bad JSON, missing
// fields, intent failures). Resolution failures use ResolutionResponse.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Hint  string `json:"hint,omitempty"`
}

// Request-level error codes.
const (
	CodeInvalidRequest  = "INVALID_REQUEST"
	CodeIntentFailed    = "INTENT_FAILED"
	CodeNoIntent        = "NO_INTENT"
	CodeHistoryDisabled = "HISTORY_DISABLED"
	CodeInternal        = "INTERNAL"
)

type FunctionInfo struct {
	Name        string           `json:"name"`
	Signature   string           `json:"signature"`
	Description string           `json:"description,omitempty"`
	Params      []registry.Param `json:"params"`
}

type FunctionsResponse struct {
	Functions []FunctionInfo `json:"functions"`
}

type ResolveRequest struct {
	Expression string `json:"expression" binding:"required"`
	Anchor     string `json:"anchor"`
}

type DatesRequest struct {
	Phrase string `json:"phrase" binding:"required"`
	Anchor string `json:"anchor"`
}

type DatesResponse struct {
	Phrase    string     `json:"phrase"`
	Anchor    civil.Date `json:"anchor"`
	StartDate civil.Date `json:"start_date"`
	EndDate   civil.Date `json:"end_date"`
	Rule      string     `json:"rule"`
	Days      int        `json:"days"`
}

type AskRequest struct {
	Question string `json:"question" binding:"required"`
}

// ResolutionError is the wire form of ir.ResolutionError.
type ResolutionError struct {
	Code        string `json:"code"`
	Message     string `json:"message"`
	UserMessage string `json:"user_message"`
	Function    string `json:"function,omitempty"`
	Argument    string `json:"argument,omitempty"`
	Raw         string `json:"raw,omitempty"`
}

type ResolutionResponse struct {
	ID         string           `json:"id,omitempty"`
	Question   string           `json:"question,omitempty"`
	Expression string           `json:"expression"`
	Anchor     civil.Date       `json:"anchor"`
	Outcome    pipeline.Outcome `json:"outcome"`
	Function   string           `json:"function,omitempty"`
	Arguments  *ir.Args         `json:"arguments,omitempty"`
	Query      string           `json:"query,omitempty"`
	Columns    []string         `json:"columns,omitempty"`
	Rows       []map[string]any `json:"rows,omitempty"`
	Error      *ResolutionError `json:"error,omitempty"`
}

type HistoryResponse struct {
	Records []store.Record `json:"records"`
}

func newResolutionError(e *ir.ResolutionError) *ResolutionError {
	if e == nil {
		return nil
	}
	return &ResolutionError{
		Code:        string(e.Code),
		Message:     e.Message,
		UserMessage: e.UserMessage(),
		Function:    e.Function,
		Argument:    e.Argument,
		Raw:         e.Raw,
	}
}

func newResolutionResponse(expression string, anchor civil.Date, res *pipeline.Result) ResolutionResponse {
	return ResolutionResponse{
		Expression: expression,
		Anchor:     anchor,
		Outcome:    res.Outcome,
		Function:   res.Function(),
		Arguments:  res.Arguments,
		Query:      res.Query,
		Error:      newResolutionError(res.Err),
	}
}

func newAnswerResponse(a *assistant.Answer) ResolutionResponse {
	resp := newResolutionResponse(a.Expression, a.Anchor, a.Result)
	resp.ID = a.ID
	resp.Question = a.Question
	if a.Rows != nil {
		resp.Columns = a.Rows.Columns
		resp.Rows = a.Rows.Records()
	}
	return resp
}
