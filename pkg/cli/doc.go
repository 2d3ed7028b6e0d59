// Package cli holds terminal helpers for the interviewai command: encoding
// command results and rendering answers with lipgloss.
package cli
