// Package wire implements the length-prefixed JSON message framing used on
// both the language server connection and the stdio tool surface.
//
// Each frame is "Content-Length: <N>\r\n\r\n" followed by exactly N bytes of
// UTF-8 JSON.
package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	refactorerrors "github.com/refactor-tools/refactor-lsp/src/refactor/internal/errors"
)

const (
	// Version is the JSON-RPC protocol version sent on every message.
	Version = "2.0"

	_headerContentLength = "Content-Length"
)

// Well-known JSON-RPC error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// Message is a single JSON-RPC message. A request carries ID and Method, a
// response carries ID and exactly one of Result or Error, and a notification
// carries Method with no ID.
type Message struct {
	JSONRPC string           `json:"jsonrpc"`
	ID      *json.RawMessage `json:"id,omitempty"`
	Method  string           `json:"method,omitempty"`
	Params  json.RawMessage  `json:"params,omitempty"`
	Result  json.RawMessage  `json:"result,omitempty"`
	Error   *ResponseError   `json:"error,omitempty"`
}

// ResponseError is the error member of a response message.
type ResponseError struct {
	Code    int64           `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error is an implementation of the error interface.
func (e *ResponseError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.Code, e.Message)
}

// NewID builds a numeric message id.
func NewID(id int64) *json.RawMessage {
	raw := json.RawMessage(strconv.FormatInt(id, 10))
	return &raw
}

// IntID returns the message id as an int64. The second return is false for
// notifications and for non-numeric ids.
func (m *Message) IntID() (int64, bool) {
	if m.ID == nil {
		return 0, false
	}
	id, err := strconv.ParseInt(string(*m.ID), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// IsResponse reports whether the message is a response to an earlier request.
func (m *Message) IsResponse() bool {
	return m.ID != nil && m.Method == ""
}

// IsNotification reports whether the message is a server-initiated notification.
func (m *Message) IsNotification() bool {
	return m.ID == nil && m.Method != ""
}

// Read consumes exactly one framed message from the reader. Incomplete input
// returns the reader's error (io.EOF at a clean frame boundary); malformed
// headers or bodies return a ProtocolError.
func Read(reader *bufio.Reader) (*Message, error) {
	length := -1
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, err
		}

		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}

		name, value, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &refactorerrors.ProtocolError{Reason: fmt.Sprintf("malformed header line %q", line)}
		}
		if strings.TrimSpace(name) != _headerContentLength {
			// Unknown headers such as Content-Type are tolerated.
			continue
		}

		length, err = strconv.Atoi(strings.TrimSpace(value))
		if err != nil || length < 0 {
			return nil, &refactorerrors.ProtocolError{Reason: fmt.Sprintf("invalid %s value %q", _headerContentLength, strings.TrimSpace(value))}
		}
	}

	if length < 0 {
		return nil, &refactorerrors.ProtocolError{Reason: "missing " + _headerContentLength + " header"}
	}

	body := make([]byte, length)
	if _, err := io.ReadFull(reader, body); err != nil {
		return nil, &refactorerrors.ProtocolError{Reason: "truncated message body", Err: err}
	}

	var msg Message
	if err := json.Unmarshal(body, &msg); err != nil {
		return nil, &refactorerrors.ProtocolError{Reason: "unparseable message body", Err: err}
	}
	return &msg, nil
}

// Write emits one framed message. The header states the exact byte length of
// the JSON payload.
func Write(w io.Writer, msg *Message) error {
	if msg.JSONRPC == "" {
		msg.JSONRPC = Version
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return &refactorerrors.ProtocolError{Reason: "marshaling message", Err: err}
	}

	if _, err := fmt.Fprintf(w, "%s: %d\r\n\r\n", _headerContentLength, len(body)); err != nil {
		return err
	}
	_, err = w.Write(body)
	return err
}

// NewRequest builds a request message with marshaled params.
func NewRequest(id int64, method string, params interface{}) (*Message, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Message{JSONRPC: Version, ID: NewID(id), Method: method, Params: raw}, nil
}

// NewNotification builds a notification message with marshaled params.
func NewNotification(method string, params interface{}) (*Message, error) {
	raw, err := marshalParams(params)
	if err != nil {
		return nil, err
	}
	return &Message{JSONRPC: Version, Method: method, Params: raw}, nil
}

// NewResponse builds a success response echoing the request id.
func NewResponse(id *json.RawMessage, result interface{}) (*Message, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, &refactorerrors.ProtocolError{Reason: "marshaling result", Err: err}
	}
	return &Message{JSONRPC: Version, ID: id, Result: raw}, nil
}

// NewErrorResponse builds an error response echoing the request id.
func NewErrorResponse(id *json.RawMessage, code int64, message string) *Message {
	return &Message{JSONRPC: Version, ID: id, Error: &ResponseError{Code: code, Message: message}}
}

func marshalParams(params interface{}) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, &refactorerrors.ProtocolError{Reason: "marshaling params", Err: err}
	}
	return raw, nil
}
