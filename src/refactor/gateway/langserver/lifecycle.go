package langserver

import (
	"github.com/refactor-tools/refactor-lsp/src/refactor/entity"
)

// initializeParams is the subset of the initialize request this client sends.
// Local structs keep the advertised capability set explicit and stable rather
// than depending on the full protocol type with its many optional members.
type initializeParams struct {
	ProcessID             int                `json:"processId"`
	RootURI               string             `json:"rootUri"`
	Capabilities          clientCapabilities `json:"capabilities"`
	WorkspaceFolders      []workspaceFolder  `json:"workspaceFolders"`
	InitializationOptions interface{}        `json:"initializationOptions,omitempty"`
}

type workspaceFolder struct {
	URI  string `json:"uri"`
	Name string `json:"name"`
}

type clientCapabilities struct {
	TextDocument textDocumentCapabilities `json:"textDocument"`
	Workspace    workspaceCapabilities    `json:"workspace"`
}

type textDocumentCapabilities struct {
	Synchronization    syncCapabilities        `json:"synchronization"`
	Definition         dynamicCapability       `json:"definition"`
	References         dynamicCapability       `json:"references"`
	Hover              hoverCapabilities       `json:"hover"`
	Rename             renameCapabilities      `json:"rename"`
	CodeAction         dynamicCapability       `json:"codeAction"`
	PublishDiagnostics diagnosticsCapabilities `json:"publishDiagnostics"`
}

type syncCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
	DidSave             bool `json:"didSave"`
}

type dynamicCapability struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
}

type hoverCapabilities struct {
	DynamicRegistration bool     `json:"dynamicRegistration"`
	ContentFormat       []string `json:"contentFormat"`
}

type renameCapabilities struct {
	DynamicRegistration bool `json:"dynamicRegistration"`
	PrepareSupport      bool `json:"prepareSupport"`
}

type diagnosticsCapabilities struct {
	RelatedInformation bool `json:"relatedInformation"`
	VersionSupport     bool `json:"versionSupport"`
}

type workspaceCapabilities struct {
	ApplyEdit     bool                      `json:"applyEdit"`
	WorkspaceEdit workspaceEditCapabilities `json:"workspaceEdit"`
}

type workspaceEditCapabilities struct {
	DocumentChanges bool `json:"documentChanges"`
}

// newInitializeParams advertises the capability surface this client actually
// consumes. Edits are applied locally, so applyEdit is disabled; document
// changes are accepted in WorkspaceEdit responses.
func newInitializeParams(pid int, session *entity.Session) *initializeParams {
	rootURI := string(session.RootURI)
	return &initializeParams{
		ProcessID: pid,
		RootURI:   rootURI,
		Capabilities: clientCapabilities{
			TextDocument: textDocumentCapabilities{
				Synchronization: syncCapabilities{},
				Hover: hoverCapabilities{
					ContentFormat: []string{"markdown", "plaintext"},
				},
				Rename: renameCapabilities{},
				PublishDiagnostics: diagnosticsCapabilities{
					RelatedInformation: true,
					VersionSupport:     true,
				},
			},
			Workspace: workspaceCapabilities{
				WorkspaceEdit: workspaceEditCapabilities{
					DocumentChanges: true,
				},
			},
		},
		WorkspaceFolders: []workspaceFolder{
			{URI: rootURI, Name: "workspace"},
		},
	}
}
