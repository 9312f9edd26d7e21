// Package filesystem abstracts directory traversal and file reads so the
// walker can run against the OS or an in-memory tree in tests.
//
// Implementations:
//   - OSFileSystem: the real filesystem
//   - MemoryFileSystem: an in-memory tree with forward-slash paths
package filesystem
