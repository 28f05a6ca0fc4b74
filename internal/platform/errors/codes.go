// Package errors provides structured domain errors keyed by machine-readable codes.
package errors

import "github.com/modelcontextprotocol/go-sdk/jsonrpc"

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Catalog query errors
	CodeNotFound         Code = "NOT_FOUND"
	CodeMissingComponent Code = "MISSING_COMPONENT"

	// Argument errors
	CodeInvalidArgument Code = "INVALID_ARGUMENT"

	// Loader errors
	CodeManifestInvalid Code = "MANIFEST_INVALID"
)

// Logical reports whether the code describes a query outcome that should be
// returned to the caller inside a successful envelope rather than as a
// protocol failure.
func (c Code) Logical() bool {
	switch c {
	case CodeNotFound, CodeMissingComponent:
		return true
	default:
		return false
	}
}

// RPCCode maps a domain error code to the JSON-RPC error code used when the
// failure surfaces at the protocol level.
func (c Code) RPCCode() int64 {
	switch c {
	case CodeInvalidArgument:
		return jsonrpc.CodeInvalidParams
	default:
		return jsonrpc.CodeInternalError
	}
}
