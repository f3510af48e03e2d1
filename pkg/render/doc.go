// Package render holds the in-memory visual state of a drawn diagram.
//
// Table implements ports.Renderer. It snapshots every connection's resting
// stroke when the diagram is rendered and restores from that snapshot, never
// from whatever stroke is currently applied. Every mutation is published as a
// Command to subscribers, which is how terminal and HTTP surfaces follow an
// animation.
package render
