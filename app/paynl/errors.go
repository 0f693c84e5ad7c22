package paynl

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

type ErrorType string

const (
	ErrorTypeInvalidData     ErrorType = "INVALID_DATA"
	ErrorTypeNotFound        ErrorType = "NOT_FOUND"
	ErrorTypeUnexpectedState ErrorType = "UNEXPECTED_STATE"
)

const genericErrorMessage = "There was an error in the Pay. response"

var (
	ErrInvalidData     = &Error{Type: ErrorTypeInvalidData, Message: "invalid data"}
	ErrNotFound        = &Error{Type: ErrorTypeNotFound, Message: "not found"}
	ErrUnexpectedState = &Error{Type: ErrorTypeUnexpectedState, Message: "unexpected state"}
)

// Error is the normalized error raised for gateway failures and for
// invalid input detected by the provider layer. errors.Is matches on Type.
type Error struct {
	Type       ErrorType
	Code       string
	Message    string
	StatusCode int
}

func NewError(errType ErrorType, format string, args ...interface{}) *Error {
	return &Error{Type: errType, Message: fmt.Sprintf(format, args...)}
}

func (e *Error) Error() string {
	if e.Code != "" {
		return "[" + e.Code + "]: " + e.Message
	}
	return e.Message
}

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Type == e.Type
}

// errorEnvelope is the documented gateway error body.
type errorEnvelope struct {
	Type       string         `json:"type"`
	Title      string         `json:"title"`
	Detail     string         `json:"detail"`
	Message    string         `json:"message"`
	Code       flexibleString `json:"code"`
	Violations []struct {
		PropertyPath string         `json:"propertyPath"`
		Message      string         `json:"message"`
		Code         flexibleString `json:"code"`
	} `json:"violations"`
}

// parseErrorResponse turns a non-2xx body into an *Error. Bodies that are not
// a JSON object are treated as opaque and get the generic message.
func parseErrorResponse(statusCode int, body []byte, isJSON bool) *Error {
	out := &Error{
		Type:       ErrorTypeUnexpectedState,
		Message:    genericErrorMessage,
		StatusCode: statusCode,
	}
	if !isJSON {
		return out
	}

	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return out
	}

	switch {
	case strings.TrimSpace(env.Message) != "":
		out.Message = env.Message
	case strings.TrimSpace(env.Detail) != "":
		out.Message = env.Detail
	case len(env.Violations) > 0 && strings.TrimSpace(env.Violations[0].Message) != "":
		out.Message = env.Violations[0].Message
	case strings.TrimSpace(env.Title) != "":
		out.Message = env.Title
	}

	if len(env.Violations) > 0 && env.Violations[0].Code != "" {
		out.Code = string(env.Violations[0].Code)
	} else {
		out.Code = string(env.Code)
	}

	return out
}

// flexibleString accepts both JSON strings and numbers.
type flexibleString string

func (s *flexibleString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" || raw == "" {
		*s = ""
		return nil
	}
	if strings.HasPrefix(raw, `"`) {
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return err
		}
		*s = flexibleString(v)
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return fmt.Errorf("code: unsupported value %s", raw)
	}
	*s = flexibleString(raw)
	return nil
}
