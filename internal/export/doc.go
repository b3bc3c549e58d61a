// Package export renders generated scripts as plain text and writes them to
// an export directory.
//
// A part renders as its rows separated by blank lines. The full script opens
// with a TITLE line and separates parts with "=== PART N ===" headers. Files
// are written under an advisory lock so concurrent exports of the same
// session cannot interleave.
package export
