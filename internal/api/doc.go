// Package api serves pipeline sessions over HTTP.
//
// The server keeps sessions in memory, keyed by id, and exposes one route per
// pipeline operation. Each session runs one generation at a time; a second
// concurrent request for the same session is refused with 409.
//
// # Routes
//
//	POST   /api/sessions                     body: SubRip text, ?name=file.srt
//	GET    /api/sessions/:id                 session snapshot
//	DELETE /api/sessions/:id
//	POST   /api/sessions/:id/analyze
//	POST   /api/sessions/:id/dna
//	POST   /api/sessions/:id/strategies
//	POST   /api/sessions/:id/strategy        {"id": "..."}
//	POST   /api/sessions/:id/script/config   {"targetWordCount", "parts", "instructions"}
//	POST   /api/sessions/:id/script/next
//	DELETE /api/sessions/:id/script
//	GET    /api/sessions/:id/export[?part=N] plain text
//	POST   /api/sessions/:id/export          write files to the export directory
//	GET    /api/health[?deep=1]
//
// # Errors
//
// Errors are JSON {"error": message, "kind": kind}. Missing prerequisites and
// busy sessions map to 409, validation failures to 400, unknown sessions to
// 404, and stage failures to 502 with the stage's one-line message only.
package api
