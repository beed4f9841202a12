// Package openapi imports field lists from OpenAPI 3 documents. An object
// schema, picked by component name or by the request body of an operation,
// becomes one field per property. Documents exported by pkg/schema carry
// their variant and order as extensions and import back to the same list.
package openapi
