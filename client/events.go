package client

import "encoding/json"

// Event is a message pushed by the backend over the websocket channel.
// Data is decoded into the kind-specific type; unrecognized kinds leave
// Data nil and are ignored by the dispatcher.
type Event struct {
	Type string
	Data interface{}
}

func (e *Event) UnmarshalJSON(b []byte) error {
	// Unmarshal into an anonymous equivalent to avoid infinite recursion
	var temp struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(b, &temp); err != nil {
		return err
	}

	e.Type = temp.Type

	switch e.Type {
	case "status":
		e.Data = &EventDataStatus{}
	case "progress":
		e.Data = &EventDataProgress{}
	case "executing":
		e.Data = &EventDataExecuting{}
	default:
		e.Data = nil
	}

	if e.Data != nil && len(temp.Data) > 0 {
		if err := json.Unmarshal(temp.Data, e.Data); err != nil {
			return err
		}
	}

	return nil
}

// EventDataStatus is informational queue state.
type EventDataStatus struct {
	Status struct {
		ExecInfo struct {
			QueueRemaining int `json:"queue_remaining"`
		} `json:"exec_info"`
	} `json:"status"`
}

/*
{"type": "status", "data": {"status": {"exec_info": {"queue_remaining": 1}}}}
*/

// EventDataProgress reports sampler progress for a job.
type EventDataProgress struct {
	Value    int    `json:"value"`
	Max      int    `json:"max"`
	PromptID string `json:"prompt_id"`
}

/*
{"type": "progress", "data": {"value": 1, "max": 20, "prompt_id": "ed986d60-..."}}
*/

// EventDataExecuting announces the node currently being executed. A null
// node with the tracked prompt id signals that the job has finished.
type EventDataExecuting struct {
	Node     *string `json:"node"`
	PromptID string  `json:"prompt_id"`
}

/*
{"type": "executing", "data": {"node": "12", "prompt_id": "ed986d60-..."}}
{"type": "executing", "data": {"node": null, "prompt_id": "ed986d60-..."}}
*/
