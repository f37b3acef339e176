package mapper

import (
	"fmt"
	"net/url"
	"path/filepath"
	"runtime"
	"strings"

	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"go.lsp.dev/uri"
)

// PathToURI converts a file path to its canonical file:// URI. Relative paths
// are resolved against the current working directory so that one path always
// maps to exactly one URI.
func PathToURI(path string) (uri.URI, error) {
	if path == "" {
		return "", &refactorerrors.ValidationError{Reason: "empty file path"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", &refactorerrors.ValidationError{Reason: fmt.Sprintf("resolving path %q: %v", path, err)}
	}
	return uri.File(abs), nil
}

// URIToPath converts a file:// URI back to a platform file path. A malformed
// URI or a non-file scheme fails with a ValidationError rather than silently
// producing a wrong path.
func URIToPath(u uri.URI) (string, error) {
	parsed, err := url.Parse(string(u))
	if err != nil {
		return "", &refactorerrors.ValidationError{Reason: fmt.Sprintf("malformed URI %q: %v", u, err)}
	}
	if parsed.Scheme != "file" {
		return "", &refactorerrors.ValidationError{Reason: fmt.Sprintf("unsupported URI scheme %q in %q", parsed.Scheme, u)}
	}
	if parsed.Host != "" && parsed.Host != "localhost" {
		return "", &refactorerrors.ValidationError{Reason: fmt.Sprintf("unexpected host %q in file URI %q", parsed.Host, u)}
	}

	path := parsed.Path
	if path == "" {
		return "", &refactorerrors.ValidationError{Reason: fmt.Sprintf("empty path in URI %q", u)}
	}

	// Windows URIs carry a leading slash before the drive letter: /C:/dir.
	if runtime.GOOS == "windows" || hasDrivePrefix(path) {
		path = strings.TrimPrefix(path, "/")
	}

	return filepath.FromSlash(path), nil
}

func hasDrivePrefix(path string) bool {
	return len(path) >= 3 && path[0] == '/' && path[2] == ':'
}
