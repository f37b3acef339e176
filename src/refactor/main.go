package main

import (
	"github.com/refactor-tools/refactor-lsp/src/refactor/app"
	"go.uber.org/fx"
)

func opts() fx.Option {
	return fx.Options(
		app.Module,
	)
}

func main() {
	fx.New(opts()).Run()
}
