// Package files groups input discovery for pgetl.
//
//   - filesystem: OS and in-memory filesystem abstraction
//   - walker: recursive, sorted discovery of input files by extension
package files
