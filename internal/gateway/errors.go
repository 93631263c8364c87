package gateway

import (
	"errors"
	"fmt"
	"net/http"
)

// RequestError is the only error kind the gateway returns. Message is the
// server-provided text when there is one.
type RequestError struct {
	Op      string
	Status  int // 0 when no response was received
	Message string
	Err     error
}

func (e *RequestError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%s: %s (HTTP %d)", e.Op, e.Message, e.Status)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	default:
		return fmt.Sprintf("%s: request failed", e.Op)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// UserMessage is the text shown next to the action that failed.
func UserMessage(err error) string {
	var re *RequestError
	if errors.As(err, &re) && re.Message != "" {
		return re.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	var re *RequestError
	return errors.As(err, &re) && re.Status == http.StatusNotFound
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var re *RequestError
	if errors.As(err, &re) {
		return re.Status
	}
	return 0
}
