package langserver

import (
	"encoding/json"
	"sync"

	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/wire"
	"github.com/uber-go/tally"
	"go.uber.org/zap"
)

// Notification is a server-initiated message carrying no request id.
type Notification struct {
	Method string
	Params json.RawMessage
}

// Router fans server-initiated notifications out to bounded per-method
// queues. A full queue drops the oldest pending delivery opportunity: the
// incoming notification is discarded and counted, never buffered unbounded.
type Router struct {
	mu       sync.Mutex
	subs     map[string][]chan Notification
	capacity int
	closed   bool

	logger  *zap.SugaredLogger
	dropped tally.Counter
}

func newRouter(capacity int, logger *zap.SugaredLogger, stats tally.Scope) *Router {
	return &Router{
		subs:     make(map[string][]chan Notification),
		capacity: capacity,
		logger:   logger,
		dropped:  stats.Counter("notifications_dropped"),
	}
}

// Subscribe registers a listener for one notification method and returns its
// bounded queue. Subscriptions live for the session lifetime; the channel is
// closed when the session terminates.
func (r *Router) Subscribe(method string) <-chan Notification {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan Notification, r.capacity)
	if r.closed {
		close(ch)
		return ch
	}
	r.subs[method] = append(r.subs[method], ch)
	return ch
}

// Dispatch routes one notification to all subscribers of its method without
// blocking the read loop.
func (r *Router) Dispatch(msg *wire.Message) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	subs := r.subs[msg.Method]
	if len(subs) == 0 {
		r.logger.Debugw("notification without subscriber", "method", msg.Method)
		return
	}

	n := Notification{Method: msg.Method, Params: msg.Params}
	for _, ch := range subs {
		select {
		case ch <- n:
		default:
			r.dropped.Inc(1)
			r.logger.Warnw("notification queue full, dropping", "method", msg.Method)
		}
	}
}

// Close closes every subscriber queue. Dispatch becomes a no-op.
func (r *Router) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	for _, subs := range r.subs {
		for _, ch := range subs {
			close(ch)
		}
	}
	r.subs = nil
}
