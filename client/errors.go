package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sort"
	"strings"
	"syscall"
)

// ErrorClass partitions client failures for the status callback.
type ErrorClass string

const (
	// ErrorConnection covers refused, timed out and endpoint-not-found
	// failures.
	ErrorConnection ErrorClass = "connection"
	// ErrorAuth covers forbidden responses.
	ErrorAuth ErrorClass = "auth"
	// ErrorProtocol covers malformed websocket payloads and missing
	// expected output nodes.
	ErrorProtocol ErrorClass = "protocol"
	// ErrorValidation covers backend-reported graph/node errors.
	ErrorValidation ErrorClass = "validation"
)

// Error is a classified client failure. Upload and submit return it to
// the caller after emitting the matching status.
type Error struct {
	Class   ErrorClass
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// classifyTransportError maps a transport-level failure of an HTTP call
// onto the error taxonomy.
func classifyTransportError(op string, err error) *Error {
	var dnsErr *net.DNSError
	switch {
	case errors.As(err, &dnsErr):
		return &Error{Class: ErrorConnection, Message: op + " failed: endpoint not found", Err: err}
	case errors.Is(err, syscall.ECONNREFUSED):
		return &Error{Class: ErrorConnection, Message: op + " failed: connection refused", Err: err}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &Error{Class: ErrorConnection, Message: op + " failed: request timed out", Err: err}
	}
	return &Error{Class: ErrorConnection, Message: op + " failed", Err: err}
}

// classifyHTTPStatus maps a non-200 response onto the error taxonomy.
func classifyHTTPStatus(op string, code int) *Error {
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &Error{Class: ErrorAuth, Message: fmt.Sprintf("%s forbidden (%d): check auth credentials", op, code)}
	case http.StatusNotFound:
		return &Error{Class: ErrorConnection, Message: op + " failed: endpoint not found"}
	default:
		return &Error{Class: ErrorConnection, Message: fmt.Sprintf("%s failed: %s", op, http.StatusText(code))}
	}
}

// promptErrorBody is the backend's structured validation failure for a
// submitted graph: a top level error object plus a per-node error map.
type promptErrorBody struct {
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"error"`
	NodeErrors map[string]promptNodeError `json:"node_errors"`
}

type promptNodeError struct {
	ClassType string `json:"class_type"`
	Message   string `json:"message"`
	Errors    []struct {
		Message string `json:"message"`
		Details string `json:"details"`
	} `json:"errors"`
}

// decodeValidationError flattens a structured validation response into a
// single human-readable error. Returns nil when the body is not a
// validation payload.
func decodeValidationError(body []byte) *Error {
	var perr promptErrorBody
	if err := json.Unmarshal(body, &perr); err != nil {
		return nil
	}
	if perr.Error == nil && len(perr.NodeErrors) == 0 {
		return nil
	}

	var parts []string
	if perr.Error != nil && perr.Error.Message != "" {
		msg := perr.Error.Message
		if perr.Error.Details != "" {
			msg += " (" + perr.Error.Details + ")"
		}
		parts = append(parts, msg)
	}
	ids := make([]string, 0, len(perr.NodeErrors))
	for id := range perr.NodeErrors {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		ne := perr.NodeErrors[id]
		label := "node " + id
		if ne.ClassType != "" {
			label += " (" + ne.ClassType + ")"
		}
		if len(ne.Errors) > 0 {
			msgs := make([]string, 0, len(ne.Errors))
			for _, sub := range ne.Errors {
				m := sub.Message
				if sub.Details != "" {
					m += ": " + sub.Details
				}
				msgs = append(msgs, m)
			}
			parts = append(parts, label+": "+strings.Join(msgs, "; "))
		} else if ne.Message != "" {
			parts = append(parts, label+": "+ne.Message)
		}
	}
	if len(parts) == 0 {
		return nil
	}
	return &Error{Class: ErrorValidation, Message: strings.Join(parts, "; ")}
}
