package model

import (
	"strings"

	"github.com/google/uuid"
)

// NamePrefix starts every generated field name so names are valid
// identifiers in generated code.
const NamePrefix = "name_"

// NewName returns a field name drawn from a random (version 4) UUID: the
// prefix followed by 16 lowercase hex characters.
func NewName() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return NamePrefix + id[:16]
}

func uniqueName(list FieldList) string {
	for {
		name := NewName()
		if _, taken := FindPath(list, name); !taken {
			return name
		}
	}
}
