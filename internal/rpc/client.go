package rpc

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/google/uuid"
)

// Client is a one-connection-per-call dialer for the annactl CLI: it
// is not meant to stay open across many requests, mirroring a CLI
// invocation's lifetime.
type Client struct {
	socketPath string
	timeout    time.Duration
}

// NewClient constructs a Client. timeout bounds the whole call,
// including dial, write, and read of the response line.
func NewClient(socketPath string, timeout time.Duration) *Client {
	return &Client{socketPath: socketPath, timeout: timeout}
}

// Call dials the daemon socket, sends one request with method/params,
// and returns the decoded result or a *WireError. Any transport failure
// (daemon not running, socket missing) is surfaced as a WireError with
// code DAEMON_UNAVAILABLE so the CLI's exit-code mapping stays uniform.
func (c *Client) Call(method string, params any, result any) *WireError {
	conn, err := net.DialTimeout("unix", c.socketPath, c.timeout)
	if err != nil {
		return &WireError{Code: "DAEMON_UNAVAILABLE", Message: err.Error()}
	}
	defer conn.Close()

	if c.timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(c.timeout))
	}

	var rawParams json.RawMessage
	if params != nil {
		buf, err := json.Marshal(params)
		if err != nil {
			return &WireError{Code: "PARSE_ERROR", Message: err.Error()}
		}
		rawParams = buf
	}

	req := Request{ID: uuid.NewString(), Method: method, Params: rawParams}
	buf, err := json.Marshal(req)
	if err != nil {
		return &WireError{Code: "PARSE_ERROR", Message: err.Error()}
	}
	buf = append(buf, '\n')
	if _, err := conn.Write(buf); err != nil {
		return &WireError{Code: "DAEMON_UNAVAILABLE", Message: err.Error()}
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return &WireError{Code: "DAEMON_UNAVAILABLE", Message: err.Error()}
		}
		return &WireError{Code: "DAEMON_UNAVAILABLE", Message: "connection closed with no response"}
	}

	var resp Response
	if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
		return &WireError{Code: "INVALID_RESPONSE", Message: fmt.Sprintf("malformed response: %v", err)}
	}
	if resp.Error != nil {
		return resp.Error
	}
	if result != nil && len(resp.Result) > 0 {
		if err := json.Unmarshal(resp.Result, result); err != nil {
			return &WireError{Code: "INVALID_RESPONSE", Message: fmt.Sprintf("malformed result: %v", err)}
		}
	}
	return nil
}
