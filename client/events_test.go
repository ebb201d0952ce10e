package client

import (
	"encoding/json"
	"testing"
)

func TestUnmarshalProgressEvent(t *testing.T) {
	raw := `{"type":"progress","data":{"value":7,"max":20,"prompt_id":"abc"}}`
	ev := &Event{}
	if err := json.Unmarshal([]byte(raw), ev); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	p, ok := ev.Data.(*EventDataProgress)
	if !ok {
		t.Fatalf("expected *EventDataProgress, got %T", ev.Data)
	}
	if p.Value != 7 || p.Max != 20 || p.PromptID != "abc" {
		t.Errorf("unexpected progress data: %+v", p)
	}
}

func TestUnmarshalStatusEvent(t *testing.T) {
	raw := `{"type":"status","data":{"status":{"exec_info":{"queue_remaining":3}}}}`
	ev := &Event{}
	if err := json.Unmarshal([]byte(raw), ev); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	s, ok := ev.Data.(*EventDataStatus)
	if !ok {
		t.Fatalf("expected *EventDataStatus, got %T", ev.Data)
	}
	if s.Status.ExecInfo.QueueRemaining != 3 {
		t.Errorf("expected queue_remaining 3, got %d", s.Status.ExecInfo.QueueRemaining)
	}
}

func TestUnmarshalExecutingEventWithNode(t *testing.T) {
	raw := `{"type":"executing","data":{"node":"3","prompt_id":"abc"}}`
	ev := &Event{}
	if err := json.Unmarshal([]byte(raw), ev); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	ex, ok := ev.Data.(*EventDataExecuting)
	if !ok {
		t.Fatalf("expected *EventDataExecuting, got %T", ev.Data)
	}
	if ex.Node == nil || *ex.Node != "3" {
		t.Errorf("expected node \"3\", got %v", ex.Node)
	}
}

func TestUnmarshalExecutingEventWithNullNode(t *testing.T) {
	raw := `{"type":"executing","data":{"node":null,"prompt_id":"abc"}}`
	ev := &Event{}
	if err := json.Unmarshal([]byte(raw), ev); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	ex := ev.Data.(*EventDataExecuting)
	if ex.Node != nil {
		t.Errorf("expected nil node, got %v", *ex.Node)
	}
	if ex.PromptID != "abc" {
		t.Errorf("expected prompt id abc, got %q", ex.PromptID)
	}
}

func TestUnmarshalUnknownEventKind(t *testing.T) {
	raw := `{"type":"execution_cached","data":{"nodes":[],"prompt_id":"abc"}}`
	ev := &Event{}
	if err := json.Unmarshal([]byte(raw), ev); err != nil {
		t.Fatalf("unknown kinds must not error: %v", err)
	}
	if ev.Type != "execution_cached" {
		t.Errorf("expected type carried through, got %q", ev.Type)
	}
	if ev.Data != nil {
		t.Errorf("expected nil data for unknown kind, got %v", ev.Data)
	}
}

func TestUnmarshalMalformedDataFails(t *testing.T) {
	raw := `{"type":"progress","data":"not an object"}`
	ev := &Event{}
	if err := json.Unmarshal([]byte(raw), ev); err == nil {
		t.Fatal("expected an error for malformed progress data")
	}
}
