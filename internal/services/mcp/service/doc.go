// Package service wires protocol transport to the catalog procedures.
//
// It is the transport adapter layer: the package knows how to run MCP over
// stdio or HTTP and delegates query meaning to the handlers in the domain
// package. Over HTTP every POST /mcp gets its own MCP server and session.
package service
