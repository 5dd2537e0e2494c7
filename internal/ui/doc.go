// Package ui implements the interactive audit-event browser.
//
// Built with bubbletea in the Elm style: [Model] holds the list and detail
// views, keyboard input moves between them, and lipgloss styles the output.
// The browser is read-only; events are loaded once before the program
// starts and never mutated.
package ui
