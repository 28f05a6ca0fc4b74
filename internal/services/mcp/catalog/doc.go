// Package catalog holds the immutable plugin catalog and the read-only query
// engine behind the MCP tools.
//
// A Catalog is built once from loader output and never mutated afterwards, so
// any number of goroutines may query it concurrently without locking. Every
// query is a stable filter: results keep catalog order.
package catalog
