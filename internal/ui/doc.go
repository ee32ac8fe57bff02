// Package ui implements the bubbletea browse interface: a picker over the
// user's own playlists that drills into the track listing, with duplicate
// occurrences flagged using the same grouping as the dedup flow.
//
// The cleaning flows themselves stay on the line-oriented menu; the TUI is
// for inspecting a playlist before deciding what to clean.
package ui
