package backend

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"frame/internal/services"
)

const unknownErrorDetail = "Unknown error"

// APIError is a non-2xx response from the ingestion API.
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Is classifies the error for services.Kind and errors.Is checks.
func (e *APIError) Is(target error) bool {
	switch target {
	case services.ErrBackend:
		return e.StatusCode >= http.StatusInternalServerError
	case services.ErrTransport:
		return e.StatusCode < http.StatusInternalServerError
	case services.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

type validationError struct {
	Loc  []any  `json:"loc"`
	Msg  string `json:"msg"`
	Type string `json:"type"`
}

// decodeError builds an APIError from a response body. A body that is not JSON
// yields "Unknown error"; JSON without a detail yields "HTTP <status>".
func decodeError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		apiErr.Detail = unknownErrorDetail
		return apiErr
	}
	if len(envelope.Detail) == 0 || string(envelope.Detail) == "null" {
		return apiErr
	}

	var text string
	if err := json.Unmarshal(envelope.Detail, &text); err == nil {
		apiErr.Detail = strings.TrimSpace(text)
		return apiErr
	}
	var list []validationError
	if err := json.Unmarshal(envelope.Detail, &list); err == nil {
		msgs := make([]string, 0, len(list))
		for _, item := range list {
			if msg := strings.TrimSpace(item.Msg); msg != "" {
				msgs = append(msgs, msg)
			}
		}
		apiErr.Detail = strings.Join(msgs, "; ")
		return apiErr
	}
	apiErr.Detail = strings.TrimSpace(string(envelope.Detail))
	return apiErr
}
