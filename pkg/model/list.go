package model

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// ErrPathNotFound is returned when a path does not address a field.
	ErrPathNotFound = errors.New("model: path not found")
	// ErrDuplicateName is returned when an update would reuse another
	// field's name.
	ErrDuplicateName = errors.New("model: duplicate field name")
	// ErrInvalidName is returned when a name cannot be used as a JavaScript
	// identifier. Generated code uses names unquoted as object keys.
	ErrInvalidName = errors.New("model: field name must be a JavaScript identifier")
)

var identifier = regexp.MustCompile(`^[A-Za-z_$][A-Za-z0-9_$]*$`)

// ValidName reports whether name is usable as a field name: a JavaScript
// identifier made of ASCII letters, digits, underscores and dollar signs.
func ValidName(name string) bool {
	return identifier.MatchString(name)
}

// Path addresses a field: {i} for a top-level field, {i, j} for member j of
// the group at index i.
type Path []int

func (p Path) String() string {
	parts := make([]string, len(p))
	for i, idx := range p {
		parts[i] = strconv.Itoa(idx)
	}
	return strings.Join(parts, ".")
}

// Flatten expands groups and returns every field in list order.
func Flatten(list FieldList) []Field {
	var out []Field
	for _, entry := range list {
		out = append(out, entry.Fields...)
	}
	return out
}

// Names returns the flattened field names in list order.
func Names(list FieldList) []string {
	fields := Flatten(list)
	names := make([]string, len(fields))
	for i, field := range fields {
		names[i] = field.Name
	}
	return names
}

// Len returns the number of fields in the flattened list.
func Len(list FieldList) int {
	total := 0
	for _, entry := range list {
		total += len(entry.Fields)
	}
	return total
}

// FindPath performs a depth-first search for name and returns the path that
// addresses it.
func FindPath(list FieldList, name string) (Path, bool) {
	for i, entry := range list {
		if !entry.Grouped {
			if len(entry.Fields) == 1 && entry.Fields[0].Name == name {
				return Path{i}, true
			}
			continue
		}
		for j, field := range entry.Fields {
			if field.Name == name {
				return Path{i, j}, true
			}
		}
	}
	return nil, false
}

// Get returns the field addressed by path.
func Get(list FieldList, path Path) (Field, error) {
	i, j, err := resolve(list, path)
	if err != nil {
		return Field{}, err
	}
	return list[i].Fields[j], nil
}

// AddField creates a field of the given variant with a fresh random name and
// inserts it as a single entry at index; out-of-range indices append. Display
// strings come from lookup; unknown variants get empty strings.
func AddField(list FieldList, variant string, index int, lookup DefaultsLookup) (FieldList, Field) {
	index = clamp(index, len(list))

	var defaults Defaults
	if lookup != nil {
		defaults, _ = lookup(variant)
	}

	field := Field{
		Variant:     variant,
		Name:        uniqueName(list),
		Label:       defaults.Label,
		Description: defaults.Description,
		Placeholder: defaults.Placeholder,
		Value:       StringValue(""),
		Checked:     true,
		Required:    true,
		RowIndex:    index,
		Bindings:    NoopBindings(),
	}
	return InsertEntry(list, index, Single(field)), field
}

// InsertEntry inserts entry at index (out-of-range appends) and returns the
// new list.
func InsertEntry(list FieldList, index int, entry Entry) FieldList {
	index = clamp(index, len(list))
	out := make(FieldList, 0, len(list)+1)
	out = append(out, list[:index]...)
	out = append(out, Entry{Fields: cloneFields(entry.Fields), Grouped: entry.Grouped})
	out = append(out, list[index:]...)
	return out
}

// UpdateField replaces the field at path with a shallow merge of the existing
// attributes and patch. Entries not on the path are shared with the input
// list; the addressed entry is copied before it is written.
func UpdateField(list FieldList, path Path, patch Patch) (FieldList, error) {
	i, j, err := resolve(list, path)
	if err != nil {
		return nil, err
	}
	current := list[i].Fields[j]
	updated := patch.Apply(current)

	if updated.Name != current.Name {
		if !ValidName(updated.Name) {
			return nil, fmt.Errorf("%w: %q", ErrInvalidName, updated.Name)
		}
		if other, ok := FindPath(list, updated.Name); ok {
			return nil, fmt.Errorf("%w: %q already used at %s", ErrDuplicateName, updated.Name, other)
		}
	}

	out := make(FieldList, len(list))
	copy(out, list)
	fields := make([]Field, len(list[i].Fields))
	copy(fields, list[i].Fields)
	fields[j] = updated
	out[i] = Entry{Fields: fields, Grouped: list[i].Grouped}
	return out, nil
}

// RemoveField deletes the field at path. A group left without members is
// removed entirely.
func RemoveField(list FieldList, path Path) (FieldList, error) {
	i, j, err := resolve(list, path)
	if err != nil {
		return nil, err
	}
	entry := list[i]
	out := make(FieldList, 0, len(list))
	out = append(out, list[:i]...)
	if entry.Grouped && len(entry.Fields) > 1 {
		fields := make([]Field, 0, len(entry.Fields)-1)
		fields = append(fields, entry.Fields[:j]...)
		fields = append(fields, entry.Fields[j+1:]...)
		out = append(out, Entry{Fields: fields, Grouped: true})
	}
	out = append(out, list[i+1:]...)
	return out, nil
}

// ResetAll returns an empty list.
func ResetAll() FieldList {
	return FieldList{}
}

// Clone deep-copies the list.
func Clone(list FieldList) FieldList {
	if list == nil {
		return nil
	}
	out := make(FieldList, len(list))
	for i, entry := range list {
		out[i] = Entry{Fields: cloneFields(entry.Fields), Grouped: entry.Grouped}
	}
	return out
}

// DuplicateNames returns the names that occur more than once in the
// flattened list, in order of their second occurrence.
func DuplicateNames(list FieldList) []string {
	seen := make(map[string]int)
	var dups []string
	for _, field := range Flatten(list) {
		seen[field.Name]++
		if seen[field.Name] == 2 {
			dups = append(dups, field.Name)
		}
	}
	return dups
}

func resolve(list FieldList, path Path) (int, int, error) {
	switch len(path) {
	case 1:
		i := path[0]
		if i < 0 || i >= len(list) || list[i].Grouped || len(list[i].Fields) != 1 {
			return 0, 0, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return i, 0, nil
	case 2:
		i, j := path[0], path[1]
		if i < 0 || i >= len(list) || !list[i].Grouped || j < 0 || j >= len(list[i].Fields) {
			return 0, 0, fmt.Errorf("%w: %s", ErrPathNotFound, path)
		}
		return i, j, nil
	default:
		return 0, 0, fmt.Errorf("%w: %q", ErrPathNotFound, path.String())
	}
}

func cloneFields(fields []Field) []Field {
	out := make([]Field, len(fields))
	for i, field := range fields {
		out[i] = field.Clone()
	}
	return out
}

func clamp(index, length int) int {
	if index < 0 || index > length {
		return length
	}
	return index
}
