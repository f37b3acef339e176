// Package app assembles the application graph.
package app

import (
	"context"
	"os"
	"time"

	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/docsync"
	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/editapply"
	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/refactor"
	"github.com/refactor-tools/refactor-lsp/src/refactor/gateway/langserver"
	"github.com/refactor-tools/refactor-lsp/src/refactor/handler"
	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/core"
	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/fs"
	"github.com/refactor-tools/refactor-lsp/src/refactor/repository/planstore"
	"github.com/uber-go/tally"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module defines the refactor-lsp application module.
var Module = fx.Options(
	langserver.Module, // outbound
	handler.Module,    // inbound
	docsync.Module,
	editapply.Module,
	refactor.Module,
	planstore.Module,
	fs.Module,
	core.ConfigModule,
	core.LoggerModule,
	fx.Provide(func(lc fx.Lifecycle) tally.Scope {
		rs, closer := tally.NewRootScope(tally.ScopeOptions{
			Tags: map[string]string{
				"service": "refactor-lsp",
			},
		}, 1*time.Second)

		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				return closer.Close()
			},
		})

		return rs
	}),
	fx.Invoke(serveStdio),
)

// ServeParams is the set of dependencies required to serve the tool surface.
type ServeParams struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Shutdowner fx.Shutdowner
	Logger     *zap.SugaredLogger
	Handler    *handler.Handler
}

// serveStdio runs the tool surface over the process's standard streams for
// the application lifetime. EOF on stdin shuts the application down.
func serveStdio(p ServeParams) {
	ctx, cancel := context.WithCancel(context.Background())
	p.Lifecycle.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			go func() {
				if err := p.Handler.Serve(ctx, os.Stdin, os.Stdout); err != nil {
					p.Logger.Errorw("tool stream failed", "error", err)
				}
				if err := p.Shutdowner.Shutdown(); err != nil {
					p.Logger.Errorw("shutdown failed", "error", err)
				}
			}()
			return nil
		},
		OnStop: func(_ context.Context) error {
			cancel()
			return nil
		},
	})
}
