package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"paralog-backend/queries"
	"paralog-backend/results"
	"paralog-backend/triplestore"

	"github.com/gin-gonic/gin"
)

// JSONError is the body of every error response.
type JSONError struct {
	Message string `json:"message"`
}

// paramError is a missing or empty request parameter.
type paramError struct {
	name string
}

func (e *paramError) Error() string {
	return "missing query parameter: " + e.name
}

// requireQuery returns a non-empty query parameter.
func requireQuery(c *gin.Context, name string) (string, error) {
	value := c.Query(name)
	if value == "" {
		return "", &paramError{name: name}
	}
	return value, nil
}

// requireQueryArray returns a repeated query parameter with at least one value.
func requireQueryArray(c *gin.Context, name string) ([]string, error) {
	values := c.QueryArray(name)
	if len(values) == 0 {
		return nil, &paramError{name: name}
	}
	return values, nil
}

// statusFor maps an error to a status code and a client-safe message.
// Upstream details stay in the logs.
func statusFor(err error) (int, string) {
	var param *paramError
	var upstream *triplestore.UpstreamError
	switch {
	case errors.As(err, &param):
		return http.StatusBadRequest, param.Error()
	case errors.Is(err, queries.ErrInvalidIRI), errors.Is(err, queries.ErrInvalidLiteral):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, results.ErrNoResults):
		return http.StatusNotFound, "not found"
	case errors.Is(err, triplestore.ErrTimeout):
		return http.StatusGatewayTimeout, "triplestore request timed out"
	case errors.As(err, &upstream):
		return http.StatusBadGateway, "triplestore request failed"
	case errors.Is(err, results.ErrMalformedResponse):
		return http.StatusBadGateway, "malformed triplestore response"
	case errors.Is(err, triplestore.ErrUnavailable):
		return http.StatusBadGateway, "triplestore unavailable"
	default:
		return http.StatusInternalServerError, "Internal Server Error"
	}
}

// abortWithError logs err and writes the mapped JSON error.
func abortWithError(c *gin.Context, err error) {
	status, message := statusFor(err)
	switch {
	case errors.Is(err, context.Canceled):
		slog.Debug("request cancelled", "path", c.FullPath(), "error", err)
	case status >= http.StatusInternalServerError:
		slog.Error("failed handling request", "path", c.FullPath(), "request_id", c.GetString(requestIDKey), "error", err)
	default:
		slog.Info("rejected request", "path", c.FullPath(), "status", status, "error", err)
	}
	c.Error(err)
	c.AbortWithStatusJSON(status, JSONError{Message: message})
}
