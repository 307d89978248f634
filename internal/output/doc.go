// Package output renders a ResultSet as a Markdown task-list document and
// picks a destination that never clobbers an existing file.
package output
