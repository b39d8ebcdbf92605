// Package errors provides structured, code-backed errors for the live core.
//
// Every failure mode an actor can reply with has a stable code (E001, E020,
// ...) registered in registry.go. Packages export sentinels created with
// New(code); call sites attach per-occurrence context with WithDetail/Wrap,
// and errors.Is matches instances by code.
package errors
