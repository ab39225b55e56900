package serializer

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sitedash-io/sitedash/internal/infra/sheets"
	"github.com/sitedash-io/sitedash/internal/modules/repo"
)

// Response
type Response struct {
	Code  int         `json:"code"`
	Data  interface{} `json:"data,omitempty"`
	Msg   string      `json:"msg"`
	Error string      `json:"error,omitempty"`
}

// TraceErrorResponse
type TrackedErrorResponse struct {
	Response
	TraceID string `json:"trace_id"`
}

// Err
func Err(errCode int, msg string, err error) Response {
	res := Response{
		Code: errCode,
		Msg:  msg,
	}
	// development mode, show error detail
	if err != nil && gin.Mode() != gin.ReleaseMode {
		res.Error = fmt.Sprintf("%+v", err)
	}
	return res
}

// DBErr
func DBErr(msg string, err error) Response {
	if msg == "" {
		msg = "database error"
	}
	return Err(http.StatusInternalServerError, msg, err)
}

// StoreErr maps record-store failures onto HTTP codes: a missing record
// is 404, a backend rejection is 502, anything else is 500.
func StoreErr(msg string, err error) Response {
	if errors.Is(err, repo.ErrNotFound) {
		if msg == "" {
			msg = "record not found"
		}
		return Err(http.StatusNotFound, msg, err)
	}
	var (
		te *sheets.TransportError
		se *sheets.StoreError
		fe *sheets.FormatError
	)
	if errors.As(err, &te) || errors.As(err, &se) || errors.As(err, &fe) {
		if msg == "" {
			msg = "store backend error"
		}
		return Err(http.StatusBadGateway, msg, err)
	}
	return DBErr(msg, err)
}

// ParamErr
func ParamErr(msg string, err error) Response {
	if msg == "" {
		msg = "parameter error"
	}
	return Err(http.StatusBadRequest, msg, err)
}

// AuthErr
func AuthErr(msg string) Response {
	if msg == "" {
		msg = "authentication error"
	}
	return Err(http.StatusUnauthorized, msg, nil)
}
