// Package template defines the engine-agnostic rendering contract used by code
// generation. Adapters live in sub-packages so callers can swap the engine
// without touching the generators that depend on this seam.
package template
