package envelope

import (
	"encoding/json"

	pkgerrors "github.com/agrilink-hq/agrilink-client/pkg/errors"
)

// Success is the backend's standard response wrapper.
type Success[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Message string `json:"message,omitempty"`
}

// Page is the backend's pagination wrapper.
type Page[T any] struct {
	Content       []T   `json:"content"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
}

// DecodeData unwraps a `{success, data, message}` body into its payload.
// A body that parses but carries success=false becomes a dependency error
// with the server-provided message.
func DecodeData[T any](body []byte) (T, error) {
	var env Success[T]
	if err := json.Unmarshal(body, &env); err != nil {
		var zero T
		return zero, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode response envelope")
	}
	if !env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected by server"
		}
		return env.Data, pkgerrors.New(pkgerrors.CodeDependency, msg)
	}
	return env.Data, nil
}

// DecodePage normalizes both shapes the backend serves for lists: the
// standard envelope wrapping a page, and a bare page object.
func DecodePage[T any](body []byte) (Page[T], error) {
	var env Success[Page[T]]
	if err := json.Unmarshal(body, &env); err == nil && env.Data.Content != nil {
		if !env.Success && env.Message != "" {
			return Page[T]{}, pkgerrors.New(pkgerrors.CodeDependency, env.Message)
		}
		return env.Data, nil
	}

	var page Page[T]
	if err := json.Unmarshal(body, &page); err != nil {
		return Page[T]{}, pkgerrors.Wrap(pkgerrors.CodeDecode, err, "decode paginated response")
	}
	if page.Content == nil {
		page.Content = []T{}
	}
	return page, nil
}

// ErrorBody is the error payload the backend returns on non-2xx statuses.
type ErrorBody struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ErrorMessage extracts the most specific server message from an error
// body, tolerating either the flat or nested error shape.
func ErrorMessage(body []byte) string {
	var parsed ErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Error.Message != "" {
		return parsed.Error.Message
	}
	return parsed.Message
}
