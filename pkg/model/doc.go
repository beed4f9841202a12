// Package model defines the field descriptor model edited by the form builder.
// A FieldList is an ordered sequence of entries where each entry is either a
// single Field or a row group of Fields rendered as columns. Every mutator in
// this package is persistent: it returns a new FieldList and never writes into
// slices or maps reachable from the snapshot it was given, so renderers that
// memoise on a previous list keep a consistent view.
//
// Call-time bindings (SetValue, OnChange, OnSelect) live on Field.Bindings and
// are never part of the persisted identity of a field. Unknown JSON attributes
// survive in Field.Extensions as compact raw JSON.
package model
