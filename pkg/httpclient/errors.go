package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/Luiza-Bandeira/VarandaJK/pkg/errors"
)

// upstreamError accepts both the {"error":{code,message}} envelope used by
// this service and the flat {code,message,hint} body returned by PostgREST.
type upstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Hint    string `json:"hint"`
}

func (u upstreamError) codeAndMessage() (string, string, bool) {
	if u.Error != nil {
		return u.Error.Code, u.Error.Message, true
	}
	if u.Message != "" {
		msg := u.Message
		if u.Hint != "" {
			msg += " (" + u.Hint + ")"
		}
		return u.Code, msg, true
	}
	return "", "", false
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an error. Structured bodies keep their code and message.
func ParseResponseError(resp *http.Response, upstream string) error {
	defer func() { _ = resp.Body.Close() }()

	bodyBytes, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (failed to read body: %w)", upstream, resp.StatusCode, err)
	}

	var parsed upstreamError
	if json.Unmarshal(bodyBytes, &parsed) == nil {
		if code, message, ok := parsed.codeAndMessage(); ok {
			return mapUpstreamError(resp.StatusCode, code, message, upstream)
		}
	}

	return fmt.Errorf("%s returned status %d: %s", upstream, resp.StatusCode, string(bodyBytes))
}

func mapUpstreamError(status int, code, message, upstream string) error {
	qualifiedMsg := fmt.Sprintf("%s: %s", upstream, message)
	if code == "" {
		code = "UPSTREAM_ERROR"
	}

	switch {
	case status == http.StatusNotFound:
		return apperrors.NotFound(upstream, message)
	case status == http.StatusBadRequest:
		return apperrors.InvalidInput(qualifiedMsg)
	case status == http.StatusConflict:
		return apperrors.Conflict(qualifiedMsg)
	case status == http.StatusServiceUnavailable:
		return apperrors.Unavailable("SERVICE_UNAVAILABLE", qualifiedMsg, fmt.Errorf("%s returned 503", upstream))
	case status >= 500:
		return fmt.Errorf("%s server error (%d/%s): %s", upstream, status, code, message)
	default:
		return &apperrors.AppError{
			Code:    code,
			Message: qualifiedMsg,
			Status:  status,
		}
	}
}

// IsClientError reports whether status is a 4xx.
func IsClientError(status int) bool {
	return status >= 400 && status < 500
}
