// Package ui provides the terminal user interface for Kitbag.
//
// # Architecture Overview
//
// The UI is a Bubble Tea program. The Model holds only presentation state
// (theme, key map, form inputs, overlay flags); everything the tools share
// lives outside the package in the session store, the notification queue,
// and the orchestrator, so a request that finishes after its modal closed
// still lands in the right place.
//
// # Package Structure
//
//   - app.go: root Model, message loop, key routing, and the Run function
//   - form.go: per-tool input forms (text, choice, and toggle fields)
//   - views.go: dashboard, modal phases, toast stack, and command bar
//   - header.go: status bar with toolbox reachability
//   - theme.go: color themes and Lipgloss styles
//   - keys.go: key bindings
//   - help.go: help overlay
//
// # Screens
//
// The dashboard lists the four tools with a phase badge each. Pressing a
// number opens that tool's modal; at most one modal is open at a time, and
// opening a second one closes and resets the first. Each modal moves
// through a fixed lifecycle: an editable form, a working state while the
// request is in flight, and a rendered result or error. Escape closes the
// modal at any point; a request already in flight keeps running and its
// outcome is recorded against the tool for the next visit.
//
// # Event Flow
//
//  1. Run() builds the Model and starts the Bubble Tea program
//  2. Submitting a form dispatches the request as a command; the reply
//     arrives as a resultMsg and is handed to the orchestrator
//  3. A half-second tick repaints the header and lets expired toasts fall
//     out of the stack
//  4. Context cancellation shuts the program down cleanly
//
// # Design Principles
//
//   - One modal at a time, always closable, never blocking the dashboard
//   - Forms are rebuilt fresh on open; enum picks persist via preferences
//   - All I/O happens in commands, never in Update or View
package ui
