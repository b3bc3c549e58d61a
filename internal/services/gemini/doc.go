// Package gemini provides a Google Gemini provider for the generation
// pipeline, built on the Google Gen AI SDK.
//
// Requests are sent with a JSON response MIME type and, when the stage
// supplies one, a response schema converted from generation.Schema. Gemini
// accepts array-rooted schemas, so every stage gets schema enforcement on
// this provider. A stage's thinking budget is forwarded as the model's
// thinking configuration.
package gemini
