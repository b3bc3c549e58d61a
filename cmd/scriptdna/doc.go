// Command scriptdna turns a subtitle transcript into a narrator script written
// in the transcript's own voice.
//
// The run command drives the whole pipeline from the terminal: it analyzes the
// transcript, extracts the style DNA, proposes strategies, and writes every
// script part to the export directory. The serve command exposes the same
// pipeline over HTTP, one in-memory session per uploaded transcript.
package main
