// Package server implements the procedure console HTTP API.
//
// # Overview
//
// The server exposes the editor core over REST for the ops admin console:
// stored procedures (list, fetch with derived canvas graph, save, delete),
// stateless conversion and layout services for canvas state the client
// owns, a pre-save validate endpoint, and rendered SVG/DOT diagrams with
// artifact caching.
//
// Editing happens in the clients; the API persists whole trees and the
// last write wins. The one node-level route, delete, exists so thin
// clients get the root protection rule enforced server-side: deleting the
// entry node answers 409.
//
// # Routes
//
//	GET    /healthz
//	GET    /api/procedures
//	GET    /api/procedures/{id}
//	PUT    /api/procedures/{id}
//	DELETE /api/procedures/{id}
//	DELETE /api/procedures/{id}/nodes/{node}
//	GET    /api/procedures/{id}/render?format=svg|dot&pinned=1&detailed=1
//	POST   /api/convert/graph
//	POST   /api/convert/tree
//	POST   /api/layout
//	POST   /api/validate
//
// Saves are guarded twice: the wire schema rejects malformed payloads with
// 400 and the pre-save validator rejects trees with empty descriptions
// with 422, naming the failing step.
package server
