// Package docsync mirrors workspace files into the language server's view of
// open documents and keeps the per-document version counter that all
// position-based queries are validated against.
package docsync

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	"github.com/refactor-tools/refactor-lsp/src/refactor/gateway/langserver"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/fs"
	"github.com/refactor-tools/refactor-lsp/src/refactor/mapper"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const _configKey = "docsync"

// Module is an fx module providing the document synchronizer.
var Module = fx.Provide(New)

// Synchronizer keeps the language server's set of open documents in sync with
// workspace file content. All methods are safe for concurrent use.
type Synchronizer interface {
	// Open reads the file at path and opens it with the language server at
	// version 1. Opening an already open document is a no-op returning the
	// current state.
	Open(ctx context.Context, path string) (*entity.OpenDocument, error)
	// NotifyChanged replaces the document's full text, increments its version,
	// and forwards the change to the language server. Returns the new version.
	NotifyChanged(ctx context.Context, u uri.URI, text string) (int32, error)
	// Close closes the document with the language server. Closing a document
	// that is not open is a no-op.
	Close(ctx context.Context, u uri.URI) error
	// Document returns the open document for the URI.
	Document(u uri.URI) (*entity.OpenDocument, error)
	// Version returns the current version of an open document.
	Version(u uri.URI) (int32, bool)
}

// Params define values to be used by the synchronizer.
type Params struct {
	fx.In

	Config    config.Provider
	Lifecycle fx.Lifecycle
	Logger    *zap.SugaredLogger
	Stats     tally.Scope
	Gateway   langserver.Gateway
	FS        fs.FS
}

type syncConfig struct {
	MaxFileSizeBytes     int64 `yaml:"maxFileSizeBytes"`
	WatchExternalChanges bool  `yaml:"watchExternalChanges"`
}

type synchronizer struct {
	cfg     syncConfig
	logger  *zap.SugaredLogger
	gateway langserver.Gateway
	fs      fs.FS

	mu   sync.RWMutex
	docs map[uri.URI]*entity.OpenDocument

	opened  tally.Counter
	changed tally.Counter

	watcher *watcher
}

// New creates the document synchronizer.
func New(p Params) (Synchronizer, error) {
	var c syncConfig
	if err := p.Config.Get(_configKey).Populate(&c); err != nil {
		return nil, fmt.Errorf("getting config field %q: %w", _configKey, err)
	}

	scope := p.Stats.SubScope("docsync")
	s := &synchronizer{
		cfg:     c,
		logger:  p.Logger.With("component", "docsync"),
		gateway: p.Gateway,
		fs:      p.FS,
		docs:    make(map[uri.URI]*entity.OpenDocument),
		opened:  scope.Counter("documents_opened"),
		changed: scope.Counter("documents_changed"),
	}

	if c.WatchExternalChanges {
		w, err := newWatcher(s, s.logger)
		if err != nil {
			return nil, err
		}
		s.watcher = w
		p.Lifecycle.Append(fx.Hook{
			OnStart: func(_ context.Context) error {
				w.run()
				return nil
			},
			OnStop: func(_ context.Context) error {
				return w.close()
			},
		})
	}
	return s, nil
}

func (s *synchronizer) Open(ctx context.Context, path string) (*entity.OpenDocument, error) {
	u, err := mapper.PathToURI(path)
	if err != nil {
		return nil, err
	}

	s.mu.RLock()
	doc, ok := s.docs[u]
	s.mu.RUnlock()
	if ok {
		return doc, nil
	}

	absPath := u.Filename()
	info, err := s.fs.Stat(absPath)
	if err != nil {
		return nil, &refactorerrors.FileSystemError{Op: "stat", Path: absPath, Err: err}
	}
	if s.cfg.MaxFileSizeBytes > 0 && info.Size() > s.cfg.MaxFileSizeBytes {
		return nil, &refactorerrors.DocumentSizeLimitError{URI: u, Size: info.Size()}
	}

	content, err := s.fs.ReadFile(absPath)
	if err != nil {
		return nil, &refactorerrors.FileSystemError{Op: "read", Path: absPath, Err: err}
	}

	doc = &entity.OpenDocument{
		URI:         u,
		Path:        absPath,
		LanguageID:  languageID(absPath),
		Version:     1,
		Text:        string(content),
		ContentHash: contentHash(content),
	}

	s.mu.Lock()
	// A concurrent Open may have won the race; the first one in stays.
	if existing, ok := s.docs[u]; ok {
		s.mu.Unlock()
		return existing, nil
	}
	s.docs[u] = doc
	s.mu.Unlock()

	err = s.gateway.Notify(ctx, protocol.MethodTextDocumentDidOpen, &protocol.DidOpenTextDocumentParams{
		TextDocument: protocol.TextDocumentItem{
			URI:        u,
			LanguageID: doc.LanguageID,
			Version:    doc.Version,
			Text:       doc.Text,
		},
	})
	if err != nil {
		s.mu.Lock()
		delete(s.docs, u)
		s.mu.Unlock()
		return nil, err
	}

	if s.watcher != nil {
		if err := s.watcher.add(absPath); err != nil {
			s.logger.Warnw("watching file failed", "path", absPath, "error", err)
		}
	}

	s.opened.Inc(1)
	s.logger.Debugw("document opened", "uri", u, "languageId", doc.LanguageID, "bytes", len(content))
	return doc, nil
}

func (s *synchronizer) NotifyChanged(ctx context.Context, u uri.URI, text string) (int32, error) {
	s.mu.Lock()
	doc, ok := s.docs[u]
	if !ok {
		s.mu.Unlock()
		return 0, &refactorerrors.DocumentNotFoundError{URI: u}
	}
	doc.Version++
	doc.Text = text
	doc.ContentHash = contentHash([]byte(text))
	version := doc.Version
	s.mu.Unlock()

	err := s.gateway.Notify(ctx, protocol.MethodTextDocumentDidChange, &protocol.DidChangeTextDocumentParams{
		TextDocument: protocol.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: protocol.TextDocumentIdentifier{URI: u},
			Version:                version,
		},
		ContentChanges: []protocol.TextDocumentContentChangeEvent{
			{Text: text},
		},
	})
	if err != nil {
		return 0, err
	}

	s.changed.Inc(1)
	s.logger.Debugw("document changed", "uri", u, "version", version)
	return version, nil
}

func (s *synchronizer) Close(ctx context.Context, u uri.URI) error {
	s.mu.Lock()
	doc, ok := s.docs[u]
	if ok {
		delete(s.docs, u)
	}
	s.mu.Unlock()
	if !ok {
		return nil
	}

	if s.watcher != nil {
		s.watcher.remove(doc.Path)
	}

	return s.gateway.Notify(ctx, protocol.MethodTextDocumentDidClose, &protocol.DidCloseTextDocumentParams{
		TextDocument: protocol.TextDocumentIdentifier{URI: u},
	})
}

func (s *synchronizer) Document(u uri.URI) (*entity.OpenDocument, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[u]
	if !ok {
		return nil, &refactorerrors.DocumentNotFoundError{URI: u}
	}
	copied := *doc
	return &copied, nil
}

// lookupByPath finds an open document by filesystem path.
func (s *synchronizer) lookupByPath(path string) (uri.URI, *entity.OpenDocument, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for u, doc := range s.docs {
		if doc.Path == path {
			copied := *doc
			return u, &copied, true
		}
	}
	return "", nil, false
}

func (s *synchronizer) Version(u uri.URI) (int32, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[u]
	if !ok {
		return 0, false
	}
	return doc.Version, true
}

func contentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

var _languageIDs = map[string]protocol.LanguageIdentifier{
	".py":   "python",
	".pyi":  "python",
	".go":   "go",
	".ts":   "typescript",
	".tsx":  "typescriptreact",
	".js":   "javascript",
	".jsx":  "javascriptreact",
	".java": "java",
	".rb":   "ruby",
	".rs":   "rust",
	".c":    "c",
	".cpp":  "cpp",
	".h":    "c",
	".json": "json",
	".yaml": "yaml",
	".yml":  "yaml",
	".md":   "markdown",
}

func languageID(path string) protocol.LanguageIdentifier {
	if id, ok := _languageIDs[strings.ToLower(filepath.Ext(path))]; ok {
		return id
	}
	return "plaintext"
}
