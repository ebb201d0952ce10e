// Package graph builds the node graph submitted to the generation
// backend. The format is an external contract: a map of node id to
// {class_type, inputs}, where inputs reference other nodes as
// [nodeID, outputSlot] pairs. The graph is a serialization target only;
// nothing in this client interprets it beyond construction.
package graph

// Node is a single processing step in the job graph.
type Node struct {
	ClassType string                 `json:"class_type"`
	Inputs    map[string]interface{} `json:"inputs"`
}

// Graph is the full job description keyed by node id.
type Graph map[string]Node

// Ref builds a connection to another node's output slot. It serializes
// to the [id, slot] pair the backend expects.
func Ref(nodeID string, slot int) []interface{} {
	return []interface{}{nodeID, slot}
}

// Well-known node ids of the fixed template. The backend reports outputs
// keyed by these ids, so they must stay stable across submissions.
const (
	KSamplerNodeID     = "3"
	CheckpointNodeID   = "4"
	EmptyLatentNodeID  = "5"
	PositiveNodeID     = "6"
	NegativeNodeID     = "7"
	VAEDecodeNodeID    = "8"
	SaveImageNodeID    = "9"
	LoadImageNodeID    = "10"
	VAEEncodeNodeID    = "11"
	PreviewImageNodeID = "12"
)
