package errors

// ErrorTemplate defines a registered error type.
type ErrorTemplate struct {
	Category Category
	Message  string
}

// registry maps error codes to their templates.
var registry = map[string]ErrorTemplate{
	// ============================================
	// Actor Errors (E001-E019)
	// ============================================

	"E001": {
		Category: CategoryActor,
		Message:  "mailbox full",
	},
	"E002": {
		Category: CategoryActor,
		Message:  "actor shut down",
	},
	"E003": {
		Category: CategoryActor,
		Message:  "request timed out",
	},

	// ============================================
	// Routing Errors (E020-E039)
	// ============================================

	"E020": {
		Category: CategoryRouting,
		Message:  "view not found",
	},
	"E021": {
		Category: CategoryRouting,
		Message:  "component not found",
	},
	"E022": {
		Category: CategoryRouting,
		Message:  "duplicate component id",
	},
	"E023": {
		Category: CategoryRouting,
		Message:  "no views mounted",
	},

	// ============================================
	// Render Errors (E040-E049)
	// ============================================

	"E040": {
		Category: CategoryRender,
		Message:  "render failed",
	},

	// ============================================
	// Handler Errors (E050-E059)
	// ============================================

	"E050": {
		Category: CategoryHandler,
		Message:  "handler invocation failed",
	},
	"E051": {
		Category: CategoryHandler,
		Message:  "handler does not recognize event",
	},

	// ============================================
	// Protocol Errors (E060-E069)
	// ============================================

	"E060": {
		Category: CategoryProtocol,
		Message:  "invalid envelope",
	},

	// ============================================
	// Config Errors (E070-E079)
	// ============================================

	"E070": {
		Category: CategoryConfig,
		Message:  "invalid configuration",
	},
}
