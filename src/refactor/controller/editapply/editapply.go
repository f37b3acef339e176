// Package editapply turns edit plans into file content. Staging computes the
// full post-edit content for every touched file without writing anything;
// application commits staged content with atomic per-file writes only after
// every file in the plan has validated.
package editapply

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/refactor-tools/refactor-lsp/src/refactor/controller/docsync"
	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
	"github.com/refactor-tools/refactor-lsp/src/refactor/internal/fs"
	internalprotocol "github.com/refactor-tools/refactor-lsp/src/refactor/internal/protocol"
	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/uber-go/tally"
	"go.lsp.dev/protocol"
	"go.lsp.dev/uri"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Module is an fx module providing the edit applier.
var Module = fx.Provide(New)

// Applier stages and applies edit plans.
type Applier interface {
	// Stage validates the plan against the live workspace and returns the
	// complete post-edit content per file. No file is modified.
	Stage(plan *entity.EditPlan) (map[uri.URI]string, error)
	// Apply stages the plan and commits every staged file with an atomic
	// write, then forwards the new content to the document synchronizer.
	// Only an Approved plan may apply; a validation failure on any file
	// leaves every file untouched.
	Apply(ctx context.Context, plan *entity.EditPlan) (*entity.ApplyResult, error)
	// Preview renders the plan's staged changes as a reviewable patch.
	Preview(plan *entity.EditPlan) (string, error)
}

// Params define values to be used by the applier.
type Params struct {
	fx.In

	Logger    *zap.SugaredLogger
	Stats     tally.Scope
	Documents docsync.Synchronizer
	FS        fs.FS
}

type applier struct {
	logger    *zap.SugaredLogger
	documents docsync.Synchronizer
	fs        fs.FS

	// applyMu serializes commits so two plans can never interleave writes.
	applyMu sync.Mutex

	applied tally.Counter
	staged  tally.Counter
}

// New creates the edit applier.
func New(p Params) Applier {
	scope := p.Stats.SubScope("editapply")
	return &applier{
		logger:    p.Logger.With("component", "editapply"),
		documents: p.Documents,
		fs:        p.FS,
		applied:   scope.Counter("plans_applied"),
		staged:    scope.Counter("plans_staged"),
	}
}

func (a *applier) Stage(plan *entity.EditPlan) (map[uri.URI]string, error) {
	staged := make(map[uri.URI]string, len(plan.Edits))
	for u, edits := range plan.Edits {
		doc, err := a.documents.Document(u)
		if err != nil {
			return nil, err
		}

		if planVersion, ok := plan.SourceVersions[u]; ok && planVersion != doc.Version {
			return nil, &refactorerrors.StalePlanError{URI: u, PlanVersion: planVersion, CurrentVersion: doc.Version}
		}

		// The file must still exist on disk: a document may outlive its file.
		exists, err := a.fs.FileExists(doc.Path)
		if err != nil {
			return nil, &refactorerrors.FileSystemError{Op: "stat", Path: doc.Path, Err: err}
		}
		if !exists {
			return nil, &refactorerrors.FileSystemError{Op: "stage", Path: doc.Path, Err: refactorerrors.New("file no longer exists")}
		}

		content, err := spliceEdits(u, doc.Text, edits)
		if err != nil {
			return nil, err
		}
		staged[u] = content
	}

	a.staged.Inc(1)
	return staged, nil
}

func (a *applier) Apply(ctx context.Context, plan *entity.EditPlan) (*entity.ApplyResult, error) {
	a.applyMu.Lock()
	defer a.applyMu.Unlock()

	// The store gates transitions too; this keeps an unapproved plan from
	// mutating files no matter how it reached the applier.
	if plan.State != entity.PlanStateApproved {
		return nil, &refactorerrors.PlanStateError{UUID: plan.UUID, From: plan.State.String(), To: entity.PlanStateApplied.String()}
	}

	staged, err := a.Stage(plan)
	if err != nil {
		return nil, err
	}

	result := &entity.ApplyResult{
		PlanUUID:     plan.UUID,
		FileVersions: make(map[uri.URI]int32, len(staged)),
	}

	for u, content := range staged {
		path := u.Filename()
		if err := a.fs.WriteFileAtomic(path, []byte(content)); err != nil {
			return nil, &refactorerrors.FileSystemError{Op: "commit", Path: path, Err: err}
		}
		result.ModifiedFiles = append(result.ModifiedFiles, path)

		version, err := a.documents.NotifyChanged(ctx, u, content)
		if err != nil {
			return nil, err
		}
		result.FileVersions[u] = version
	}
	sort.Strings(result.ModifiedFiles)

	a.applied.Inc(1)
	a.logger.Infow("plan applied", "plan", plan.UUID, "files", len(result.ModifiedFiles))
	return result, nil
}

func (a *applier) Preview(plan *entity.EditPlan) (string, error) {
	staged, err := a.Stage(plan)
	if err != nil {
		return "", err
	}

	files := make([]uri.URI, 0, len(staged))
	for u := range staged {
		files = append(files, u)
	}
	sort.Slice(files, func(i, j int) bool { return files[i] < files[j] })

	dmp := diffmatchpatch.New()
	var b strings.Builder
	for _, u := range files {
		doc, err := a.documents.Document(u)
		if err != nil {
			return "", err
		}
		patches := dmp.PatchMake(doc.Text, staged[u])
		if len(patches) == 0 {
			continue
		}
		fmt.Fprintf(&b, "--- %s\n", u.Filename())
		b.WriteString(dmp.PatchToText(patches))
	}
	return b.String(), nil
}

// spliceEdits applies the edit set to content. Offsets are all computed
// against the original content, then spliced in descending order so earlier
// splices never shift later offsets.
func spliceEdits(u uri.URI, content string, edits []protocol.TextEdit) (string, error) {
	if len(edits) == 0 {
		return content, nil
	}

	crlf := strings.Contains(content, "\r\n")
	m := internalprotocol.NewTextOffsetMapper([]byte(content))

	type span struct {
		start, end int
		rng        protocol.Range
		newText    string
	}
	spans := make([]span, 0, len(edits))
	for _, e := range edits {
		start, err := m.PositionOffset(e.Range.Start)
		if err != nil {
			return "", &refactorerrors.ValidationError{Reason: fmt.Sprintf("edit start in %q: %v", u, err)}
		}
		end, err := m.PositionOffset(e.Range.End)
		if err != nil {
			return "", &refactorerrors.ValidationError{Reason: fmt.Sprintf("edit end in %q: %v", u, err)}
		}
		if end < start {
			return "", &refactorerrors.ValidationError{Reason: fmt.Sprintf("edit range in %q ends before it starts", u)}
		}

		newText := e.NewText
		if crlf {
			newText = normalizeToCRLF(newText)
		}
		spans = append(spans, span{start: start, end: end, rng: e.Range, newText: newText})
	}

	sort.SliceStable(spans, func(i, j int) bool {
		if spans[i].start != spans[j].start {
			return spans[i].start < spans[j].start
		}
		return spans[i].end < spans[j].end
	})

	// Touching ranges are fine; strict overlap is not.
	for i := 1; i < len(spans); i++ {
		if spans[i-1].end > spans[i].start {
			return "", &refactorerrors.EditConflictError{URI: u, First: spans[i-1].rng, Second: spans[i].rng}
		}
	}

	result := content
	for i := len(spans) - 1; i >= 0; i-- {
		s := spans[i]
		result = result[:s.start] + s.newText + result[s.end:]
	}
	return result, nil
}

// normalizeToCRLF rewrites bare line feeds in replacement text to match a
// CRLF file, leaving already paired sequences alone.
func normalizeToCRLF(s string) string {
	if !strings.Contains(s, "\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\n", "\r\n")
}
