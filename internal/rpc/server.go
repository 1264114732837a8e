package rpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jjgarcianorway/anna-assistant-sub019/internal/logging"
	"github.com/jjgarcianorway/anna-assistant-sub019/internal/rpcerr"
)

// Deps is everything a method handler may need. Handlers close over a
// *Deps rather than a grab-bag of package-level globals, mirroring the
// teacher's Server-holds-*core.State shape generalized to this system's
// several collaborating components.
type Deps struct {
	Facts      FactsPort
	Orch       OrchestratorPort
	Changes    ChangesPort
	Tracker    TrackerPort
	Drift      DriftFunc
	IsPrivileged func(uid uint32) bool
	Logger     logging.Logger
	Clock      func() time.Time
}

// handlerFunc processes one decoded request's params and returns a
// JSON-marshalable result or an error (mapped to a wire code by
// rpcerr.Classify).
type handlerFunc func(ctx context.Context, d *Deps, params json.RawMessage) (any, error)

// methodSpec pairs a handler with whether it mutates state (and so
// requires a privileged peer uid).
type methodSpec struct {
	handler   handlerFunc
	mutating  bool
}

var methods = map[string]methodSpec{
	"status":       {handler: handleStatus},
	"show":         {handler: handleShow},
	"ask":          {handler: handleAsk},
	"plan_submit":  {handler: handlePlanSubmit, mutating: true},
	"plan_show":    {handler: handlePlanShow},
	"plan_confirm": {handler: handlePlanConfirm, mutating: true},
	"change_list":  {handler: handleChangeList},
	"change_undo":  {handler: handleChangeUndo, mutating: true},
	"drift":        {handler: handleDrift},
}

// Server listens on a Unix-domain socket and serves the NDJSON protocol.
type Server struct {
	deps       *Deps
	socketPath string
	listener   net.Listener

	mu       sync.Mutex
	conns    map[net.Conn]struct{}
	closed   bool
}

// New constructs a Server. ListenAndServe creates socketPath's parent
// directory (mode 0755) if it is missing.
func New(deps *Deps, socketPath string) *Server {
	return &Server{deps: deps, socketPath: socketPath, conns: make(map[net.Conn]struct{})}
}

// ListenAndServe removes a stale socket file (if any), binds, sets mode
// 0660, and serves connections until ctx is canceled or Close is called.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.socketPath), 0o755); err != nil {
		return fmt.Errorf("rpc: create socket dir: %w", err)
	}
	if err := removeStaleSocket(s.socketPath); err != nil {
		return fmt.Errorf("rpc: remove stale socket: %w", err)
	}

	ln, err := net.Listen("unix", s.socketPath)
	if err != nil {
		return fmt.Errorf("rpc: listen: %w", err)
	}
	if err := os.Chmod(s.socketPath, 0o660); err != nil {
		ln.Close()
		return fmt.Errorf("rpc: chmod socket: %w", err)
	}
	s.listener = ln

	go func() {
		<-ctx.Done()
		s.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.mu.Lock()
			closed := s.closed
			s.mu.Unlock()
			if closed {
				return nil
			}
			return fmt.Errorf("rpc: accept: %w", err)
		}
		s.trackConn(conn)
		go s.handleConn(ctx, conn)
	}
}

func (s *Server) trackConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conns[conn] = struct{}{}
}

func (s *Server) untrackConn(conn net.Conn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.conns, conn)
}

// Close stops accepting new connections and closes every open one,
// which unblocks any in-flight Read and cancels that request's context.
func (s *Server) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	conns := make([]net.Conn, 0, len(s.conns))
	for c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	var err error
	if s.listener != nil {
		err = s.listener.Close()
	}
	for _, c := range conns {
		_ = c.Close()
	}
	return err
}

// removeStaleSocket removes a leftover socket file from an unclean prior
// shutdown; it never removes a live listening socket (one that still
// accepts a connection is left in place and reported as an error, which
// ListenAndServe surfaces).
func removeStaleSocket(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	if conn, err := net.DialTimeout("unix", path, time.Second); err == nil {
		conn.Close()
		return fmt.Errorf("socket %s is in use by a live listener", path)
	}
	return os.Remove(path)
}

// handleConn serves one connection: a reader goroutine decodes
// newline-delimited requests and dispatches each to its own goroutine
// with its own context, so requests on one connection can still be
// computed concurrently. A single writer goroutine drains a channel of
// per-request result channels in the exact order requests arrived,
// blocking on each one until that request's dispatch finishes before
// moving to the next — this is what keeps a slow early request from
// letting a faster later one's response jump ahead of it on the wire
// (responses are serialized in request order within a connection).
// Closing the connection (read EOF/error) cancels connCtx, the parent
// of every in-flight request's context, which is how a client
// disconnecting mid-request cancels that request's top-level task
// cooperatively.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer s.untrackConn(conn)
	defer conn.Close()

	uc, _ := conn.(*net.UnixConn)

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	enc := json.NewEncoder(conn)

	order := make(chan chan Response, 64)
	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		for resultCh := range order {
			resp := <-resultCh
			_ = enc.Encode(resp)
		}
	}()

	var wg sync.WaitGroup
	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for scanner.Scan() {
		line := append([]byte(nil), scanner.Bytes()...)
		if len(line) == 0 {
			continue
		}
		resultCh := make(chan Response, 1)
		order <- resultCh
		wg.Add(1)
		go func() {
			defer wg.Done()
			resultCh <- s.dispatch(connCtx, uc, line)
		}()
	}
	cancel()
	wg.Wait()
	close(order)
	<-writerDone
}

func (s *Server) dispatch(ctx context.Context, uc *net.UnixConn, line []byte) Response {
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return errorResponse("", rpcerr.ParseError, "malformed request: "+err.Error())
	}

	spec, ok := methods[req.Method]
	if !ok {
		return errorResponse(req.ID, rpcerr.CommandNotAvailable, "unknown method: "+req.Method)
	}

	if spec.mutating {
		if uc == nil {
			return errorResponse(req.ID, rpcerr.PermissionDenied, "mutating methods require a Unix-domain peer")
		}
		uid, err := peerUID(uc)
		if err != nil {
			return errorResponse(req.ID, rpcerr.PermissionDenied, err.Error())
		}
		if s.deps.IsPrivileged == nil || !s.deps.IsPrivileged(uid) {
			return errorResponse(req.ID, rpcerr.PermissionDenied, "peer uid is not privileged for mutating methods")
		}
	}

	result, err := spec.handler(ctx, s.deps, req.Params)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return errorResponse(req.ID, rpcerr.GeneralError, "cancelled")
		}
		code := rpcerr.Classify(err)
		return errorResponse(req.ID, code, err.Error())
	}

	raw, merr := json.Marshal(result)
	if merr != nil {
		return errorResponse(req.ID, rpcerr.GeneralError, "marshal result: "+merr.Error())
	}
	return Response{ID: req.ID, Result: raw}
}

func errorResponse(id string, code rpcerr.Code, msg string) Response {
	return Response{ID: id, Error: &WireError{Code: string(code), Message: msg}}
}
