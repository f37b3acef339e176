package langserver

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally"
	"go.uber.org/config"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/wire"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// stubServer drives the gateway's wire from the far end of two pipes.
type stubServer struct {
	in  *bufio.Reader
	out io.WriteCloser
	mu  sync.Mutex
}

func (s *stubServer) read(t *testing.T) *wire.Message {
	t.Helper()
	msg, err := wire.Read(s.in)
	require.NoError(t, err)
	return msg
}

// drain consumes one message, ignoring pipe teardown errors.
func (s *stubServer) drain() {
	wire.Read(s.in)
}

func (s *stubServer) write(t *testing.T, msg *wire.Message) {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	require.NoError(t, wire.Write(s.out, msg))
}

func newTestGateway(t *testing.T, timeoutSeconds int) (*gateway, *stubServer) {
	t.Helper()

	cfgYAML := fmt.Sprintf(`
langserver:
  command: fake-langserver
  requestTimeoutSeconds: %d
  shutdownGraceSeconds: 1
  notificationQueueSize: 4
workspace:
  root: .
`, timeoutSeconds)
	provider, err := config.NewYAML(config.Source(strings.NewReader(cfgYAML)))
	require.NoError(t, err)

	g, err := newGateway(provider, zap.NewNop().Sugar(), tally.NewTestScope("testing", nil))
	require.NoError(t, err)

	stdinR, stdinW := io.Pipe()
	stdoutR, stdoutW := io.Pipe()
	g.mu.Lock()
	g.state = entity.SessionStateReady
	g.mu.Unlock()
	g.attach(stdinW, stdoutR)

	t.Cleanup(func() {
		stdoutW.Close()
		stdinR.Close()
		// Wait for the read loop to observe the closed pipe.
		<-g.done
	})
	return g, &stubServer{in: bufio.NewReader(stdinR), out: stdoutW}
}

func TestRequestCorrelation(t *testing.T) {
	t.Run("should resolve each caller to its own result out of order", func(t *testing.T) {
		g, server := newTestGateway(t, 30)
		const n = 10

		type marker struct {
			Marker int `json:"marker"`
		}

		// Echo all requests back in reverse arrival order.
		go func() {
			pending := make([]*wire.Message, 0, n)
			for i := 0; i < n; i++ {
				pending = append(pending, server.read(t))
			}
			for i := len(pending) - 1; i >= 0; i-- {
				msg := pending[i]
				resp, err := wire.NewResponse(msg.ID, json.RawMessage(msg.Params))
				require.NoError(t, err)
				server.write(t, resp)
			}
		}()

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				var result marker
				err := g.Request(context.Background(), "echo", marker{Marker: i}, &result)
				assert.NoError(t, err)
				assert.Equal(t, i, result.Marker)
			}(i)
		}
		wg.Wait()
	})

	t.Run("should surface a server error response", func(t *testing.T) {
		g, server := newTestGateway(t, 30)

		go func() {
			msg := server.read(t)
			server.write(t, wire.NewErrorResponse(msg.ID, wire.CodeInvalidParams, "bad position"))
		}()

		err := g.Request(context.Background(), "textDocument/definition", nil, nil)
		require.Error(t, err)
		var respErr *wire.ResponseError
		require.ErrorAs(t, err, &respErr)
		assert.Equal(t, int64(wire.CodeInvalidParams), respErr.Code)
	})

	t.Run("should time out a request with no response", func(t *testing.T) {
		g, server := newTestGateway(t, 1)

		go server.drain()

		start := time.Now()
		err := g.Request(context.Background(), "slow", nil, nil)
		require.Error(t, err)
		var timeoutErr *refactorerrors.TimeoutError
		require.ErrorAs(t, err, &timeoutErr)
		assert.Equal(t, "slow", timeoutErr.Method)
		assert.GreaterOrEqual(t, time.Since(start), 1*time.Second)
		assert.False(t, refactorerrors.IsRetryable(err))
	})

	t.Run("should honor context cancellation", func(t *testing.T) {
		g, server := newTestGateway(t, 30)

		go server.drain()

		ctx, cancel := context.WithCancel(context.Background())
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		err := g.Request(ctx, "slow", nil, nil)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSessionCrash(t *testing.T) {
	t.Run("should fail all pending requests when the stream breaks", func(t *testing.T) {
		g, server := newTestGateway(t, 30)
		const n = 5

		var started sync.WaitGroup
		started.Add(n)
		go func() {
			for i := 0; i < n; i++ {
				server.read(t)
				started.Done()
			}
			server.out.Close()
		}()

		var wg sync.WaitGroup
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				err := g.Request(context.Background(), "doomed", nil, nil)
				require.Error(t, err)
				var transportErr *refactorerrors.TransportError
				assert.ErrorAs(t, err, &transportErr)
				assert.True(t, refactorerrors.IsRetryable(err))
			}()
		}
		started.Wait()
		wg.Wait()

		assert.Equal(t, entity.SessionStateTerminated, g.State())
	})

	t.Run("should reject new requests after termination", func(t *testing.T) {
		g, server := newTestGateway(t, 30)
		server.out.Close()
		<-g.done

		err := g.Request(context.Background(), "late", nil, nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, refactorerrors.SessionTerminatedError)
	})
}

func TestStateGating(t *testing.T) {
	t.Run("should reject traffic before the handshake", func(t *testing.T) {
		g, _ := newTestGateway(t, 30)
		g.mu.Lock()
		g.state = entity.SessionStateInitializing
		g.mu.Unlock()

		err := g.Notify(context.Background(), "textDocument/didOpen", nil)
		assert.ErrorIs(t, err, refactorerrors.SessionNotReadyError)
	})

	t.Run("should allow the handshake methods while initializing", func(t *testing.T) {
		g, server := newTestGateway(t, 30)
		g.mu.Lock()
		g.state = entity.SessionStateInitializing
		g.mu.Unlock()

		done := make(chan struct{})
		go func() {
			defer close(done)
			msg := server.read(t)
			assert.Equal(t, "initialize", msg.Method)
		}()
		require.NoError(t, g.Notify(context.Background(), "initialize", nil))
		<-done
	})
}

func TestNotificationRouting(t *testing.T) {
	t.Run("should route a notification to its subscriber", func(t *testing.T) {
		g, server := newTestGateway(t, 30)
		ch := g.Subscribe("textDocument/publishDiagnostics")

		notification, err := wire.NewNotification("textDocument/publishDiagnostics", map[string]string{"uri": "file:///a.py"})
		require.NoError(t, err)
		server.write(t, notification)

		got := <-ch
		assert.Equal(t, "textDocument/publishDiagnostics", got.Method)
		assert.JSONEq(t, `{"uri":"file:///a.py"}`, string(got.Params))
	})

	t.Run("should close subscriptions on termination", func(t *testing.T) {
		g, server := newTestGateway(t, 30)
		ch := g.Subscribe("some/event")
		server.out.Close()

		_, open := <-ch
		assert.False(t, open)
	})
}

func TestStartFailures(t *testing.T) {
	t.Run("should fail when the command cannot be located", func(t *testing.T) {
		cfgYAML := `
langserver:
  command: definitely-not-a-real-langserver-binary
workspace:
  root: .
`
		provider, err := config.NewYAML(config.Source(strings.NewReader(cfgYAML)))
		require.NoError(t, err)
		g, err := newGateway(provider, zap.NewNop().Sugar(), tally.NewTestScope("testing", nil))
		require.NoError(t, err)

		_, err = g.Start(context.Background())
		require.Error(t, err)
		var transportErr *refactorerrors.TransportError
		assert.ErrorAs(t, err, &transportErr)
	})

	t.Run("should reject a config without a command", func(t *testing.T) {
		provider, err := config.NewYAML(config.Source(strings.NewReader("langserver: {}\nworkspace:\n  root: .")))
		require.NoError(t, err)
		_, err = newGateway(provider, zap.NewNop().Sugar(), tally.NewTestScope("testing", nil))
		assert.Error(t, err)
	})
}
