// Package render turns feed payloads into list entries, HTML and terminal
// lines, and serves the gallery page with its subscriber script.
package render
