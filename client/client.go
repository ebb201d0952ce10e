package client

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bongobongo2020/craft/graph"
	"github.com/bongobongo2020/craft/settings"
)

// ConnState is the lifecycle state of the websocket channel.
type ConnState int

const (
	StateIdle ConnState = iota
	StateConnecting
	StateOpen
	StateClosing
	StateClosed
)

func (s ConnState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	case StateClosing:
		return "closing"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

const (
	defaultRequestTimeout = 30 * time.Second
	defaultHistoryTimeout = 10 * time.Second
)

// Client is the generation session client. It owns one reconnecting
// websocket for pushed progress events, a per-instance session identity
// for correlating those events, and the HTTP request sequence for
// uploading an image, submitting a job, and recovering its output. At
// most one job is tracked at a time; submitting again replaces the
// tracked job and late events for the old one are dropped.
type Client struct {
	mu        sync.Mutex
	settings  settings.Settings
	headers   http.Header
	clientID  string
	callbacks *Callbacks

	httpClient    *http.Client
	historyClient *http.Client

	conn           *websocket.Conn
	state          ConnState
	connecting     bool
	closedByClient bool

	retryCount           int
	maxReconnectAttempts int
	reconnectBase        time.Duration
	reconnectCeiling     time.Duration
	reconnectTimer       *time.Timer

	// promptID is the currently tracked job, empty when none
	promptID string
	genopts  graph.Options
}

// New creates a client for the given settings. The session identity is
// generated once here and lives as long as the client instance.
func New(s settings.Settings, callbacks *Callbacks) *Client {
	return &Client{
		settings:             s,
		headers:              deriveHeaders(s),
		clientID:             uuid.New().String(),
		callbacks:            callbacks,
		httpClient:           &http.Client{Timeout: defaultRequestTimeout},
		historyClient:        &http.Client{Timeout: defaultHistoryTimeout},
		state:                StateIdle,
		maxReconnectAttempts: defaultMaxReconnectAttempts,
		reconnectBase:        reconnectBaseDelay,
		reconnectCeiling:     reconnectMaxDelay,
		genopts:              graph.DefaultOptions(),
	}
}

// ClientID returns the session identity embedded in the websocket URL
// and every job submission.
func (c *Client) ClientID() string {
	return c.clientID
}

// State returns the current connection state.
func (c *Client) State() ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Settings returns the current settings snapshot.
func (c *Client) Settings() settings.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// SetGenerationOptions replaces the graph template parameters used by
// GenerateImage.
func (c *Client) SetGenerationOptions(o graph.Options) {
	c.mu.Lock()
	c.genopts = o
	c.mu.Unlock()
}

// SetReconnectPolicy overrides the retry bound and the backoff window.
// Intended for tests and callers with unusual network conditions.
func (c *Client) SetReconnectPolicy(maxAttempts int, base, ceiling time.Duration) {
	c.mu.Lock()
	c.maxReconnectAttempts = maxAttempts
	c.reconnectBase = base
	c.reconnectCeiling = ceiling
	c.mu.Unlock()
}

// UpdateSettings replaces the connection settings. A snapshot equal to
// the current one is a no-op and keeps the connection. Otherwise the
// connection is torn down, headers are recomputed, and the retry state
// is reset. Reconnection is left to the caller; it never happens as a
// side effect of a settings change.
func (c *Client) UpdateSettings(s settings.Settings) {
	c.mu.Lock()
	if c.settings.Equal(s) {
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	c.Disconnect()

	c.mu.Lock()
	c.settings = s
	c.headers = deriveHeaders(s)
	c.retryCount = 0
	c.closedByClient = false
	c.mu.Unlock()
}

// handleMessage dispatches one inbound websocket payload. Malformed
// payloads are reported as a non-fatal protocol error and the channel
// stays open. Events for jobs other than the tracked one are dropped.
func (c *Client) handleMessage(raw []byte) {
	ev := &Event{}
	if err := json.Unmarshal(raw, ev); err != nil {
		slog.Error("deserializing event", "error", err)
		c.emitStatus(Status{Kind: StatusError, Class: ErrorProtocol, Message: "malformed event from backend"})
		return
	}

	switch ev.Type {
	case "status":
		s := ev.Data.(*EventDataStatus)
		slog.Debug("queue status", "remaining", s.Status.ExecInfo.QueueRemaining)
	case "progress":
		p := ev.Data.(*EventDataProgress)
		c.mu.Lock()
		tracked := c.promptID
		c.mu.Unlock()
		if tracked == "" || p.PromptID != tracked {
			return
		}
		percent := 0
		if p.Max > 0 {
			percent = int(math.Round(float64(p.Value) / float64(p.Max) * 100))
		}
		c.emitStatus(Status{
			Kind:    StatusProgress,
			Percent: percent,
			Message: fmt.Sprintf("generating: %d%%", percent),
		})
	case "executing":
		ex := ev.Data.(*EventDataExecuting)
		c.mu.Lock()
		tracked := c.promptID
		c.mu.Unlock()
		// a null node means the final node of the job was processed
		if ex.Node == nil && tracked != "" && ex.PromptID == tracked {
			c.resolveOutput(tracked)
		}
	default:
		// other event kinds are not interesting to this client
	}
}

func (c *Client) emitStatus(st Status) {
	c.mu.Lock()
	cb := c.callbacks
	c.mu.Unlock()
	if cb != nil && cb.OnStatusChange != nil {
		cb.OnStatusChange(st)
	}
}

func (c *Client) emitError(e *Error) {
	c.emitStatus(Status{Kind: StatusError, Class: e.Class, Message: e.Message})
}
