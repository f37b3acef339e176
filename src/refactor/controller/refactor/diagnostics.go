package refactor

import (
	"encoding/json"
	"sync"

	"github.com/refactor-tools/refactor-lsp/src/refactor/gateway/langserver"
	"github.com/refactor-tools/refactor-lsp/src/refactor/mapper"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
)

// diagnosticsCache holds the last published diagnostics per document. The
// server pushes full replacements, so each publish overwrites the previous
// set for its file.
type diagnosticsCache struct {
	mu    sync.RWMutex
	byURI map[uri.URI][]protocol.Diagnostic
}

func newDiagnosticsCache() *diagnosticsCache {
	return &diagnosticsCache{byURI: make(map[uri.URI][]protocol.Diagnostic)}
}

func (d *diagnosticsCache) set(u uri.URI, diags []protocol.Diagnostic) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.byURI[u] = diags
}

func (d *diagnosticsCache) get(u uri.URI) []protocol.Diagnostic {
	d.mu.RLock()
	defer d.mu.RUnlock()
	diags := d.byURI[u]
	copied := make([]protocol.Diagnostic, len(diags))
	copy(copied, diags)
	return copied
}

// consumeDiagnostics drains the publishDiagnostics subscription until the
// session terminates and the channel closes.
func (c *controller) consumeDiagnostics(ch <-chan langserver.Notification) {
	for n := range ch {
		var params protocol.PublishDiagnosticsParams
		if err := json.Unmarshal(n.Params, &params); err != nil {
			c.logger.Warnw("unparseable diagnostics notification", "error", err)
			continue
		}
		c.diagnostics.set(params.URI, params.Diagnostics)
		c.stats.Counter("diagnostics_published").Inc(1)
	}
}

// Diagnostics returns the last published diagnostics for the file.
func (c *controller) Diagnostics(path string) ([]protocol.Diagnostic, error) {
	u, err := mapper.PathToURI(path)
	if err != nil {
		return nil, err
	}
	return c.diagnostics.get(u), nil
}
