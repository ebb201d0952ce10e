package client

import (
	"fmt"
	"log/slog"
	"math"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

const (
	defaultMaxReconnectAttempts = 5
	reconnectBaseDelay          = 3 * time.Second
	reconnectMaxDelay           = 48 * time.Second
	handshakeTimeout            = 10 * time.Second
	closeWriteTimeout           = time.Second
)

// Connect opens the websocket channel with the session identity embedded
// in the URL. It is a no-op when a connection attempt is already in
// flight, a connection is open, or the client was explicitly
// disconnected. A failed dial enters the same bounded-retry path as an
// abnormal closure.
func (c *Client) Connect() error {
	c.mu.Lock()
	if c.connecting || c.closedByClient || c.state == StateOpen {
		c.mu.Unlock()
		return nil
	}
	c.connecting = true
	c.state = StateConnecting
	wsURL := c.settings.WSEndpoint + "/ws?clientId=" + url.QueryEscape(c.clientID)
	c.mu.Unlock()

	dialer := websocket.Dialer{HandshakeTimeout: handshakeTimeout}
	conn, resp, err := dialer.Dial(wsURL, nil)
	if err != nil {
		if resp != nil && resp.Body != nil {
			resp.Body.Close()
		}
		slog.Error("websocket connect failed", "url", wsURL, "error", err)
		c.mu.Lock()
		c.connecting = false
		c.state = StateClosed
		aborted := c.closedByClient
		c.mu.Unlock()
		if !aborted {
			c.handleConnectionLoss()
		}
		return err
	}

	c.mu.Lock()
	if c.closedByClient {
		// Disconnect raced the dial; drop the fresh connection
		c.connecting = false
		c.state = StateClosed
		c.mu.Unlock()
		conn.Close()
		return nil
	}
	c.conn = conn
	c.connecting = false
	c.state = StateOpen
	c.retryCount = 0
	c.mu.Unlock()

	slog.Info("websocket connected", "client_id", c.clientID)
	c.emitStatus(Status{Kind: StatusConnected, Message: "connected to backend"})
	go c.readLoop(conn)
	return nil
}

// Disconnect closes the channel with a normal close code and cancels any
// pending reconnect. Close events observed for this connection afterward
// are expected and never trigger reconnection. The client stays closed
// until Reconnect or a settings change.
func (c *Client) Disconnect() {
	c.mu.Lock()
	c.closedByClient = true
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
	conn := c.conn
	c.conn = nil
	if conn != nil {
		c.state = StateClosing
	} else if c.state != StateIdle {
		c.state = StateClosed
	}
	c.mu.Unlock()

	if conn == nil {
		return
	}

	deadline := time.Now().Add(closeWriteTimeout)
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
	conn.Close()

	c.mu.Lock()
	c.state = StateClosed
	c.mu.Unlock()
	c.emitStatus(Status{Kind: StatusDisconnected, Message: "disconnected"})
}

// Reconnect clears the explicit-disconnect flag and the retry counter,
// then connects. This is the recovery path after Disconnect or after
// retries were exhausted.
func (c *Client) Reconnect() error {
	c.mu.Lock()
	c.closedByClient = false
	c.retryCount = 0
	c.mu.Unlock()
	return c.Connect()
}

// readLoop pumps inbound messages for one connection. On a read error it
// hands over to the retry path unless the closure was client initiated
// or the connection was already replaced.
func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			c.mu.Lock()
			stale := c.conn != conn
			if !stale {
				c.conn = nil
				c.state = StateClosed
			}
			expected := stale || c.closedByClient
			c.mu.Unlock()
			if expected {
				return
			}
			slog.Warn("websocket closed", "error", err)
			c.handleConnectionLoss()
			return
		}
		c.handleMessage(raw)
	}
}

// handleConnectionLoss advances the retry counter and either schedules a
// reconnect with exponential backoff or, when the bound is exceeded,
// emits a terminal error and stops retrying.
func (c *Client) handleConnectionLoss() {
	c.mu.Lock()
	c.retryCount++
	attempt := c.retryCount
	max := c.maxReconnectAttempts
	if attempt > max {
		c.mu.Unlock()
		c.emitStatus(Status{
			Kind:     StatusError,
			Class:    ErrorConnection,
			Attempt:  attempt,
			Terminal: true,
			Message:  fmt.Sprintf("connection lost: giving up after %d reconnect attempts", max),
		})
		return
	}
	delay := reconnectDelay(attempt, c.reconnectBase, c.reconnectCeiling)
	c.reconnectTimer = time.AfterFunc(delay, func() {
		c.mu.Lock()
		c.reconnectTimer = nil
		closed := c.closedByClient
		c.mu.Unlock()
		if closed {
			return
		}
		c.Connect()
	})
	c.mu.Unlock()

	c.emitStatus(Status{
		Kind:    StatusError,
		Class:   ErrorConnection,
		Attempt: attempt,
		Message: fmt.Sprintf("connection lost, reconnecting in %s (attempt %d/%d)", delay, attempt, max),
	})
}

// reconnectDelay is base * 2^(attempt-1), capped at ceiling.
func reconnectDelay(attempt int, base, ceiling time.Duration) time.Duration {
	delay := base * time.Duration(math.Pow(2, float64(attempt-1)))
	if delay <= 0 || delay > ceiling {
		delay = ceiling
	}
	return delay
}
