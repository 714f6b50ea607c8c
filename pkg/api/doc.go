// Package api exposes an editing session over HTTP.
//
// It is the rendering collaborator's side of the editor as a JSON API: a
// browser canvas posts drops, connections and deletions, and every mutating
// call answers with the updated [editor.View] so the client can redraw nodes,
// edges and the issue panel from a single response.
//
// # Routes
//
//	GET    /api/templates          node palette
//	GET    /api/funnel             current view
//	POST   /api/nodes              {"type", "position"}       -> 201 view
//	PATCH  /api/nodes/{id}         {"label", "buttonLabel"}   -> view
//	DELETE /api/nodes              {"ids": [...]}             -> view
//	POST   /api/edges              {"source", "target"}       -> 201 view, 409 if rejected
//	DELETE /api/edges/{id}                                    -> view
//	POST   /api/funnel/clear                                  -> view
//	GET    /api/funnel/export                                 -> document
//	POST   /api/funnel/import      document                   -> view, 400 if malformed
//	GET    /api/funnel/render.svg                             -> image/svg+xml
//	GET    /healthz
//
// # Errors
//
// Failures are returned as {"code": "...", "message": "..."} with the status
// derived from the error code: INVALID_* is 400, *_NOT_FOUND is 404,
// CONNECTION_REJECTED is 409 and anything else is 500.
//
// [editor.View]: github.com/matzehuels/funnelkit/pkg/editor.View
package api
