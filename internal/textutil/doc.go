// Package textutil provides small text helpers shared by the pipeline and its
// outputs.
//
// The primary use cases are:
//   - Bounding prompt context by Unicode code points (Head, Tail)
//   - Sanitizing filenames and building export slugs
//   - Title-casing persona and topic names for display
package textutil
