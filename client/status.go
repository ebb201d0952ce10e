package client

// StatusKind tags a status notification pushed to the UI layer.
type StatusKind string

const (
	StatusConnected    StatusKind = "connected"
	StatusDisconnected StatusKind = "disconnected"
	StatusUploading    StatusKind = "uploading"
	StatusGenerating   StatusKind = "generating"
	StatusProgress     StatusKind = "progress"
	StatusCompleted    StatusKind = "completed"
	StatusError        StatusKind = "error"
)

// Status is the single notification type delivered through
// Callbacks.OnStatusChange. Every state change and every failure of the
// client surfaces as one of these; websocket-side failures are never
// returned as errors to the caller.
type Status struct {
	Kind    StatusKind
	Message string

	// Percent is set for StatusProgress only (0-100).
	Percent int

	// Class is set for StatusError only.
	Class ErrorClass

	// Attempt carries the reconnect attempt count for connection errors.
	Attempt int

	// Terminal marks an error after which the client stops retrying on
	// its own. Recovery requires Reconnect or new settings.
	Terminal bool
}

// Callbacks is the push-style observer interface of the client. A status
// change always precedes the image-ready notification for the same job.
// Either callback may be nil.
type Callbacks struct {
	OnStatusChange   func(Status)
	OnImageGenerated func(url string)
}
