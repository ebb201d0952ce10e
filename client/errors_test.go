package client

import (
	"net/http"
	"strings"
	"testing"
)

func TestClassifyHTTPStatus(t *testing.T) {
	cases := []struct {
		code  int
		class ErrorClass
	}{
		{http.StatusUnauthorized, ErrorAuth},
		{http.StatusForbidden, ErrorAuth},
		{http.StatusNotFound, ErrorConnection},
		{http.StatusInternalServerError, ErrorConnection},
		{http.StatusBadGateway, ErrorConnection},
	}
	for _, tc := range cases {
		err := classifyHTTPStatus("upload", tc.code)
		if err.Class != tc.class {
			t.Errorf("code %d: expected class %s, got %s", tc.code, tc.class, err.Class)
		}
		if err.Message == "" {
			t.Errorf("code %d: expected a message", tc.code)
		}
	}
}

func TestDecodeValidationErrorFlattensNodeErrors(t *testing.T) {
	body := `{
		"error": {"type": "prompt_outputs_failed_validation", "message": "Prompt outputs failed validation", "details": ""},
		"node_errors": {
			"10": {
				"class_type": "LoadImage",
				"errors": [
					{"message": "Custom validation failed for node", "details": "image not in input folder"},
					{"message": "Value not in list"}
				]
			},
			"4": {"class_type": "CheckpointLoaderSimple", "message": "ckpt_name not found"}
		}
	}`
	err := decodeValidationError([]byte(body))
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if err.Class != ErrorValidation {
		t.Errorf("expected validation class, got %s", err.Class)
	}
	msg := err.Message
	for _, want := range []string{
		"Prompt outputs failed validation",
		"node 10 (LoadImage)",
		"Custom validation failed for node: image not in input folder",
		"Value not in list",
		"node 4 (CheckpointLoaderSimple): ckpt_name not found",
	} {
		if !strings.Contains(msg, want) {
			t.Errorf("flattened message missing %q: %s", want, msg)
		}
	}
	// node ids are sorted so the message is deterministic
	if strings.Index(msg, "node 10") > strings.Index(msg, "node 4") {
		t.Errorf("expected node 10 before node 4 in %q", msg)
	}
}

func TestDecodeValidationErrorTopLevelOnly(t *testing.T) {
	body := `{"error": {"type": "prompt_no_outputs", "message": "Prompt has no outputs", "details": ""}, "node_errors": {}}`
	err := decodeValidationError([]byte(body))
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if err.Message != "Prompt has no outputs" {
		t.Errorf("unexpected message: %q", err.Message)
	}
}

func TestDecodeValidationErrorWithDetails(t *testing.T) {
	body := `{"error": {"type": "invalid_prompt", "message": "Cannot execute", "details": "missing node 3"}}`
	err := decodeValidationError([]byte(body))
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if err.Message != "Cannot execute (missing node 3)" {
		t.Errorf("unexpected message: %q", err.Message)
	}
}

func TestDecodeValidationErrorIgnoresOtherBodies(t *testing.T) {
	for _, body := range []string{
		`not json at all`,
		`{"message": "some other error shape"}`,
		`{}`,
		``,
	} {
		if err := decodeValidationError([]byte(body)); err != nil {
			t.Errorf("body %q: expected nil, got %v", body, err)
		}
	}
}

func TestErrorStringIncludesWrappedError(t *testing.T) {
	inner := &Error{Class: ErrorConnection, Message: "upload failed"}
	if inner.Error() != "upload failed" {
		t.Errorf("unexpected: %q", inner.Error())
	}
	wrapped := &Error{Class: ErrorProtocol, Message: "malformed history response", Err: http.ErrBodyNotAllowed}
	if !strings.Contains(wrapped.Error(), "malformed history response") {
		t.Errorf("unexpected: %q", wrapped.Error())
	}
	if wrapped.Unwrap() != http.ErrBodyNotAllowed {
		t.Error("Unwrap must return the inner error")
	}
}
