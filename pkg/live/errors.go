package live

import (
	derrors "github.com/djust-dev/djust/internal/errors"
)

// Sentinel errors for every failure mode an actor can reply with. Callers
// match with errors.Is; replies carry detailed instances of the same codes.
var (
	// ErrMailboxFull means backpressure exhausted the bounded send wait.
	// Retryable.
	ErrMailboxFull = derrors.New("E001")

	// ErrShutdown means the target actor is gone. The caller must re-mount
	// or re-create.
	ErrShutdown = derrors.New("E002")

	// ErrTimeout means no reply arrived within the bound. The target must be
	// treated as unresponsive; whether the side effect happened is unknown.
	ErrTimeout = derrors.New("E003")

	// ErrViewNotFound means the routing target view is absent.
	ErrViewNotFound = derrors.New("E020")

	// ErrComponentNotFound means the routing target component is absent.
	ErrComponentNotFound = derrors.New("E021")

	// ErrDuplicateComponent means a component id is already taken in its view.
	ErrDuplicateComponent = derrors.New("E022")

	// ErrNoViews means default routing found nothing mounted.
	ErrNoViews = derrors.New("E023")

	// ErrRenderFailed propagates a render function failure. State unchanged.
	ErrRenderFailed = derrors.New("E040")

	// ErrHandlerInvocation means a bound handler's method raised or the
	// call-out failed. No partial state mutation is committed.
	ErrHandlerInvocation = derrors.New("E050")

	// ErrUnknownEvent means a handler is bound but does not recognize the
	// event name. Distinct from the no-handler fallback, which is fine.
	ErrUnknownEvent = derrors.New("E051")
)
