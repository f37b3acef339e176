// Package langserver owns the language server subprocess and the framed
// message exchange with it: outbound requests and notifications, and the
// single read loop that correlates responses to pending callers by id and
// routes server-initiated notifications to subscribers.
package langserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/uuid"
	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/wire"
	"github.com/refactor-tools/refactor-lsp/src/refactor/mapper"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	_configKey = "langserver"
	_rootKey   = "workspace.root"

	_defaultRequestTimeout = 30 * time.Second
	_defaultShutdownGrace  = 5 * time.Second
	_defaultQueueSize      = 64
)

// Module is an fx module providing the language server gateway.
var Module = fx.Provide(New)

// Gateway is the single session to the language server for one workspace
// root. Requests may be issued concurrently; responses are matched solely by
// id, never by arrival order.
type Gateway interface {
	// Start spawns the subprocess and performs the initialize handshake.
	Start(ctx context.Context) (*entity.Session, error)
	// Request sends a request and blocks until its response arrives, the
	// configured timeout elapses, or the session terminates. A non-nil result
	// receives the unmarshaled response payload.
	Request(ctx context.Context, method string, params, result interface{}) error
	// Notify sends a fire-and-forget notification.
	Notify(ctx context.Context, method string, params interface{}) error
	// Subscribe returns a bounded queue of server-initiated notifications for
	// one method.
	Subscribe(method string) <-chan Notification
	// Session returns the session entity, or nil before Start.
	Session() *entity.Session
	// State returns the current session lifecycle state.
	State() entity.SessionState
	// Shutdown drains and fails all pending requests, then stops the
	// subprocess, forcibly if it outlives the grace window.
	Shutdown(ctx context.Context) error
}

// Params define values to be used by the gateway.
type Params struct {
	fx.In

	Config    config.Provider
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
}

type gatewayConfig struct {
	Command               string   `yaml:"command"`
	Args                  []string `yaml:"args"`
	RequestTimeoutSeconds int      `yaml:"requestTimeoutSeconds"`
	ShutdownGraceSeconds  int      `yaml:"shutdownGraceSeconds"`
	NotificationQueueSize int      `yaml:"notificationQueueSize"`
}

type pendingResult struct {
	msg *wire.Message
	err error
}

type pendingRequest struct {
	id       int64
	method   string
	issuedAt time.Time
	result   chan pendingResult
}

type gateway struct {
	cfg           gatewayConfig
	workspaceRoot string
	logger        *zap.SugaredLogger
	stats         tally.Scope
	router        *Router

	mu      sync.Mutex
	state   entity.SessionState
	session *entity.Session
	pending map[int64]*pendingRequest
	nextID  atomic.Int64

	cmd      *exec.Cmd
	stdin    io.WriteCloser
	writeMu  sync.Mutex
	procExit chan error
	done     chan struct{}
	doneOnce sync.Once

	pendingGauge     tally.Gauge
	unmatchedCounter tally.Counter
}

// New creates the language server gateway and hooks its lifecycle into the
// application: started on fx OnStart, shut down on OnStop.
func New(p Params) (Gateway, error) {
	g, err := newGateway(p.Config, p.Logger, p.Stats)
	if err != nil {
		return nil, err
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			_, err := g.Start(ctx)
			return err
		},
		OnStop: g.Shutdown,
	})
	return g, nil
}

func newGateway(cfg config.Provider, logger *zap.SugaredLogger, stats tally.Scope) (*gateway, error) {
	var c gatewayConfig
	if err := cfg.Get(_configKey).Populate(&c); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}
	if c.Command == "" {
		return nil, fmt.Errorf("missing field %q in config", _configKey+".command")
	}
	if c.NotificationQueueSize <= 0 {
		c.NotificationQueueSize = _defaultQueueSize
	}

	var root string
	if err := cfg.Get(_rootKey).Populate(&root); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _rootKey, err)
	}
	if root == "" {
		root = "."
	}

	scope := stats.SubScope("langserver")
	log := logger.With("component", "langserver")
	return &gateway{
		cfg:              c,
		workspaceRoot:    root,
		logger:           log,
		stats:            scope,
		router:           newRouter(c.NotificationQueueSize, log, scope),
		state:            entity.SessionStateStarting,
		pending:          make(map[int64]*pendingRequest),
		procExit:         make(chan error, 1),
		done:             make(chan struct{}),
		pendingGauge:     scope.Gauge("pending_requests"),
		unmatchedCounter: scope.Counter("responses_unmatched"),
	}, nil
}

// Start spawns the language server and performs the initialize handshake.
func (g *gateway) Start(ctx context.Context) (*entity.Session, error) {
	path, err := exec.LookPath(g.cfg.Command)
	if err != nil {
		return nil, &refactorerrors.TransportError{Op: fmt.Sprintf("locating %q", g.cfg.Command), Err: err}
	}

	cmd := exec.Command(path, g.cfg.Args...)
	cmd.Dir = g.workspaceRoot
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, &refactorerrors.TransportError{Op: "creating stdin pipe", Err: err}
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &refactorerrors.TransportError{Op: "creating stdout pipe", Err: err}
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return nil, &refactorerrors.TransportError{Op: "creating stderr pipe", Err: err}
	}

	if err := cmd.Start(); err != nil {
		return nil, &refactorerrors.TransportError{Op: "starting language server", Err: err}
	}

	rootURI, err := mapper.PathToURI(g.workspaceRoot)
	if err != nil {
		cmd.Process.Kill()
		return nil, err
	}

	session := &entity.Session{
		UUID:          uuid.Must(uuid.NewV4()),
		WorkspaceRoot: g.workspaceRoot,
		RootURI:       rootURI,
		Command:       path,
		PID:           cmd.Process.Pid,
	}

	g.mu.Lock()
	g.cmd = cmd
	g.session = session
	g.state = entity.SessionStateInitializing
	g.mu.Unlock()

	go g.logStderr(stderr)
	go func() {
		g.procExit <- cmd.Wait()
	}()
	g.attach(stdin, stdout)

	if err := g.handshake(ctx, session); err != nil {
		g.logger.Errorw("initialize handshake failed", "error", err)
		cmd.Process.Kill()
		g.terminate(&refactorerrors.TransportError{Op: "initialize handshake", Err: err})
		return nil, &refactorerrors.TransportError{Op: "initialize handshake", Err: err}
	}

	g.mu.Lock()
	g.state = entity.SessionStateReady
	g.mu.Unlock()
	g.logger.Infow("language server ready", "command", path, "pid", session.PID, "workspaceRoot", g.workspaceRoot)
	return session, nil
}

// attach connects the gateway to its streams and starts the read loop. Split
// from Start so tests can drive the wire without a real subprocess.
func (g *gateway) attach(stdin io.WriteCloser, stdout io.Reader) {
	g.stdin = stdin
	go g.readLoop(stdout)
}

func (g *gateway) handshake(ctx context.Context, session *entity.Session) error {
	var result struct {
		Capabilities json.RawMessage `json:"capabilities"`
	}
	if err := g.Request(ctx, protocol.MethodInitialize, newInitializeParams(os.Getpid(), session), &result); err != nil {
		return err
	}
	session.ServerCapabilities = result.Capabilities

	return g.Notify(ctx, protocol.MethodInitialized, struct{}{})
}

func (g *gateway) Request(ctx context.Context, method string, params, result interface{}) error {
	if err := g.checkState(method); err != nil {
		return err
	}

	id := g.nextID.Add(1)
	msg, err := wire.NewRequest(id, method, params)
	if err != nil {
		return err
	}

	pr := &pendingRequest{
		id:       id,
		method:   method,
		issuedAt: time.Now(),
		result:   make(chan pendingResult, 1),
	}
	g.addPending(pr)

	if err := g.write(msg); err != nil {
		g.removePending(id)
		return &refactorerrors.TransportError{Op: fmt.Sprintf("writing request %q", method), Err: err}
	}

	timeout := g.requestTimeout()
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case res := <-pr.result:
		if res.err != nil {
			return res.err
		}
		if res.msg.Error != nil {
			return res.msg.Error
		}
		if result != nil && len(res.msg.Result) > 0 && string(res.msg.Result) != "null" {
			if err := json.Unmarshal(res.msg.Result, result); err != nil {
				return &refactorerrors.ProtocolError{Reason: fmt.Sprintf("decoding %q result", method), Err: err}
			}
		}
		return nil
	case <-timer.C:
		g.removePending(id)
		return &refactorerrors.TimeoutError{Method: method, Timeout: timeout}
	case <-ctx.Done():
		g.removePending(id)
		return ctx.Err()
	}
}

func (g *gateway) Notify(ctx context.Context, method string, params interface{}) error {
	if err := g.checkState(method); err != nil {
		return err
	}

	msg, err := wire.NewNotification(method, params)
	if err != nil {
		return err
	}
	if err := g.write(msg); err != nil {
		return &refactorerrors.TransportError{Op: fmt.Sprintf("writing notification %q", method), Err: err}
	}
	return nil
}

func (g *gateway) Subscribe(method string) <-chan Notification {
	return g.router.Subscribe(method)
}

func (g *gateway) Session() *entity.Session {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.session
}

func (g *gateway) State() entity.SessionState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Shutdown performs the shutdown request within the grace window, then exits
// or kills the subprocess. Outstanding requests are failed first: none may
// outlive the subprocess handle.
func (g *gateway) Shutdown(ctx context.Context) error {
	g.mu.Lock()
	switch g.state {
	case entity.SessionStateTerminated:
		g.mu.Unlock()
		return nil
	case entity.SessionStateShuttingDown:
		g.mu.Unlock()
		return refactorerrors.New("shutdown already in progress")
	}
	g.state = entity.SessionStateShuttingDown
	g.mu.Unlock()

	g.failPending(&refactorerrors.TransportError{Op: "session shutting down"})

	grace := g.shutdownGrace()
	var errs error

	reqCtx, cancel := context.WithTimeout(ctx, grace)
	defer cancel()
	if err := g.Request(reqCtx, protocol.MethodShutdown, nil, nil); err != nil {
		errs = multierr.Append(errs, err)
	} else if err := g.Notify(reqCtx, protocol.MethodExit, nil); err != nil {
		errs = multierr.Append(errs, err)
	}

	if g.cmd != nil {
		select {
		case <-g.procExit:
		case <-time.After(grace):
			g.logger.Warnw("language server did not exit within grace window, killing", "grace", grace)
			if err := g.cmd.Process.Kill(); err != nil {
				errs = multierr.Append(errs, err)
			}
			<-g.procExit
		}
	}

	g.terminate(&refactorerrors.TransportError{Op: "session shutting down"})
	if g.stdin != nil {
		multierr.AppendInto(&errs, g.stdin.Close())
	}
	g.logger.Infow("language server session terminated")
	return errs
}

// readLoop is the single reader draining the subprocess's output stream. It
// resolves pending requests by id and routes notifications; any read failure
// terminates the session and fails every outstanding request.
func (g *gateway) readLoop(stdout io.Reader) {
	reader := bufio.NewReader(stdout)
	for {
		msg, err := wire.Read(reader)
		if err != nil {
			g.handleReadFailure(err)
			return
		}

		switch {
		case msg.IsResponse():
			g.resolve(msg)
		case msg.IsNotification():
			g.router.Dispatch(msg)
		default:
			// Server-to-client request; this client-side subset answers none.
			g.logger.Debugw("rejecting server request", "method", msg.Method)
			g.write(wire.NewErrorResponse(msg.ID, wire.CodeMethodNotFound, fmt.Sprintf("method not supported: %s", msg.Method)))
		}
	}
}

func (g *gateway) resolve(msg *wire.Message) {
	id, ok := msg.IntID()
	if !ok {
		g.unmatchedCounter.Inc(1)
		g.logger.Warnw("response with non-numeric id", "id", string(*msg.ID))
		return
	}

	g.mu.Lock()
	pr, ok := g.pending[id]
	if ok {
		delete(g.pending, id)
	}
	g.pendingGauge.Update(float64(len(g.pending)))
	g.mu.Unlock()

	if !ok {
		// Timed out or cancelled requests may still complete server side.
		g.unmatchedCounter.Inc(1)
		g.logger.Debugw("response with no pending request", "id", id)
		return
	}
	pr.result <- pendingResult{msg: msg}
}

func (g *gateway) handleReadFailure(err error) {
	g.mu.Lock()
	state := g.state
	g.mu.Unlock()

	if state == entity.SessionStateShuttingDown || state == entity.SessionStateTerminated {
		g.terminate(&refactorerrors.TransportError{Op: "session shutting down"})
		return
	}

	g.logger.Errorw("language server stream failed", "error", err)
	g.terminate(&refactorerrors.TransportError{Op: "language server exited unexpectedly", Err: err})
}

// terminate moves the session to Terminated, fails all pending requests with
// the given error, and closes the notification queues.
func (g *gateway) terminate(cause error) {
	g.mu.Lock()
	g.state = entity.SessionStateTerminated
	g.mu.Unlock()

	g.failPending(cause)
	g.doneOnce.Do(func() {
		close(g.done)
	})
	g.router.Close()
}

func (g *gateway) failPending(cause error) {
	g.mu.Lock()
	pending := g.pending
	g.pending = make(map[int64]*pendingRequest)
	g.pendingGauge.Update(0)
	g.mu.Unlock()

	for _, pr := range pending {
		pr.result <- pendingResult{err: cause}
	}
}

func (g *gateway) addPending(pr *pendingRequest) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending[pr.id] = pr
	g.pendingGauge.Update(float64(len(g.pending)))
}

func (g *gateway) removePending(id int64) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.pending, id)
	g.pendingGauge.Update(float64(len(g.pending)))
}

func (g *gateway) write(msg *wire.Message) error {
	g.writeMu.Lock()
	defer g.writeMu.Unlock()
	if g.stdin == nil {
		return refactorerrors.SessionNotReadyError
	}
	return wire.Write(g.stdin, msg)
}

// checkState gates traffic on the session lifecycle. The handshake methods
// are permitted before Ready, and the shutdown methods after it.
func (g *gateway) checkState(method string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch g.state {
	case entity.SessionStateReady:
		return nil
	case entity.SessionStateInitializing:
		if method == protocol.MethodInitialize || method == protocol.MethodInitialized {
			return nil
		}
		return refactorerrors.SessionNotReadyError
	case entity.SessionStateShuttingDown:
		if method == protocol.MethodShutdown || method == protocol.MethodExit {
			return nil
		}
		return &refactorerrors.TransportError{Op: "session shutting down"}
	case entity.SessionStateTerminated:
		return &refactorerrors.TransportError{Op: "session terminated", Err: refactorerrors.SessionTerminatedError}
	default:
		return refactorerrors.SessionNotReadyError
	}
}

func (g *gateway) requestTimeout() time.Duration {
	if g.cfg.RequestTimeoutSeconds <= 0 {
		return _defaultRequestTimeout
	}
	return time.Duration(g.cfg.RequestTimeoutSeconds) * time.Second
}

func (g *gateway) shutdownGrace() time.Duration {
	if g.cfg.ShutdownGraceSeconds <= 0 {
		return _defaultShutdownGrace
	}
	return time.Duration(g.cfg.ShutdownGraceSeconds) * time.Second
}

func (g *gateway) logStderr(stderr io.Reader) {
	scanner := bufio.NewScanner(stderr)
	for scanner.Scan() {
		g.logger.Debugw("language server stderr", "line", scanner.Text())
	}
}
