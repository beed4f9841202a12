package codegen

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var templateFS embed.FS

// Templates exposes the built-in skeleton and field templates, rooted at
// the templates directory.
func Templates() fs.FS {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}
