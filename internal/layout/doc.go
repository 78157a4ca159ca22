// Package layout holds table column widths and the drag controllers that
// resize rows and columns.
//
// A drag is a Begin, any number of Move calls, and an End. Moves outside an
// active drag are ignored, which mirrors removing the pointer listeners on
// release. Every result is clamped to the configured bounds.
package layout
