// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes session transcripts to Markdown or JSON files.
//
// Export is an explicit user action (ctrl+s in the TUI, /export in the REPL).
// Nothing written here is ever read back.
//
// # Key Types
//
//   - Exporter: Format interface (Export, FileExtension, MimeType)
//   - Document: Snapshot of a controller's transcript and statistics
//   - MarkdownExporter, JSONExporter: the two formats
//
// # Usage
//
//	doc := export.NewDocument(controller, cfg.Service.URL)
//	path, err := export.Export(doc, "markdown", &export.Options{OutputDir: dir})
package export
