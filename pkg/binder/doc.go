// Package binder fills request structs from HTTP requests.
//
// Each binder reads one source and only the fields tagged for it:
//
//   - Path(extractor) reads `path:"name"` from router parameters
//   - Query() reads `query:"name"` from the URL query
//   - Signals() decodes DataStar signals into `json:"name"` fields
//
// Untagged fields fall back to their lowercased name for Path and Query.
// A `-` tag skips the field. Supported kinds are strings, integers, floats,
// bools, pointers to those and slices of those.
//
// Binders return ErrNotApplicable when the request does not carry their
// source, so several of them can be chained on one route.
package binder
