// Package domain binds the catalog query engine to MCP tools and resources.
//
// Each tool is declared as a Tool() definition plus a Handler() factory:
// - arguments are checked against a declared JSON schema by the SDK,
// - handlers convert the loose arguments into a validated query,
// - and results are rendered as pretty-printed JSON text content.
//
// Lookup failures come back inside the tool result with IsError set so that
// callers can render them; invalid arguments are protocol errors.
package domain
