// Package transport bridges a duplex message-oriented connection (WebSocket)
// to the live actor core. It is a thin translation layer: inbound envelopes
// become supervisor/session calls, replies become outbound envelopes. The
// core itself is transport-agnostic.
package transport

import (
	"errors"

	derrors "github.com/djust-dev/djust/internal/errors"
	"github.com/djust-dev/djust/pkg/vdom"
)

// Inbound envelope types.
const (
	TypeMount = "mount"
	TypeEvent = "event"
	TypePing  = "ping"
)

// Outbound envelope types.
const (
	TypeMounted    = "mounted"
	TypePatch      = "patch"
	TypeHTMLUpdate = "html_update"
	TypePong       = "pong"
	TypeError      = "error"
)

// Envelope is an inbound client message.
type Envelope struct {
	Type string `json:"type"`

	// Mount fields.
	View string `json:"view,omitempty"`

	// Event fields. ViewID may be empty: the session then routes to the
	// first-mounted view.
	ViewID string         `json:"view_id,omitempty"`
	Event  string         `json:"event,omitempty"`
	Params map[string]any `json:"params,omitempty"`
}

// Reply is an outbound server message.
type Reply struct {
	Type       string        `json:"type"`
	SessionKey string        `json:"session,omitempty"`
	ViewID     string        `json:"view_id,omitempty"`
	HTML       string        `json:"html,omitempty"`
	Patches    vdom.PatchSet `json:"patches,omitempty"`
	Version    uint64        `json:"version,omitempty"`
	Error      *ErrorInfo    `json:"error,omitempty"`
}

// ErrorInfo carries a typed error to the client.
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func errInvalidEnvelope(kind string) error {
	return derrors.Newf("E060", "unsupported envelope type %q", kind)
}

// errorReply converts a core error into an error envelope, preserving the
// stable code when the error carries one.
func errorReply(err error) Reply {
	info := &ErrorInfo{Message: err.Error()}
	var coded *derrors.Error
	if errors.As(err, &coded) {
		info.Code = coded.Code
	}
	return Reply{Type: TypeError, Error: info}
}
