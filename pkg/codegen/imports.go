package codegen

import (
	"sort"
	"strings"
)

// Import is one ES module import. Names are named imports; Default and
// Namespace cover `import X from` and `import * as X from`.
type Import struct {
	From      string
	Names     []string
	Default   string
	Namespace string
}

// Named builds an Import of named bindings.
func Named(from string, names ...string) Import {
	return Import{From: from, Names: names}
}

type importSet struct {
	modules map[string]*Import
}

func newImportSet() *importSet {
	return &importSet{modules: make(map[string]*Import)}
}

func (s *importSet) add(imports ...Import) {
	for _, imp := range imports {
		from := strings.TrimSpace(imp.From)
		if from == "" {
			continue
		}
		current, ok := s.modules[from]
		if !ok {
			current = &Import{From: from}
			s.modules[from] = current
		}
		if imp.Default != "" {
			current.Default = imp.Default
		}
		if imp.Namespace != "" {
			current.Namespace = imp.Namespace
		}
		current.Names = append(current.Names, imp.Names...)
	}
}

// lines renders the imports sorted with package imports before "@/" aliases
// and named bindings deduplicated.
func (s *importSet) lines() []string {
	froms := make([]string, 0, len(s.modules))
	for from := range s.modules {
		froms = append(froms, from)
	}
	sort.Slice(froms, func(i, j int) bool {
		ai, aj := strings.HasPrefix(froms[i], "@/"), strings.HasPrefix(froms[j], "@/")
		if ai != aj {
			return !ai
		}
		return froms[i] < froms[j]
	})

	out := make([]string, 0, len(froms))
	for _, from := range froms {
		imp := s.modules[from]
		out = append(out, renderImport(*imp)...)
	}
	return out
}

func renderImport(imp Import) []string {
	from := jsString(imp.From)
	var out []string
	if imp.Namespace != "" {
		out = append(out, "import * as "+imp.Namespace+" from "+from)
	}

	names := uniqueSorted(imp.Names)
	var clause []string
	if imp.Default != "" {
		clause = append(clause, imp.Default)
	}
	if len(names) > 0 {
		single := "{ " + strings.Join(names, ", ") + " }"
		if len("import  from ")+len(single)+len(from) > 80 {
			single = "{\n  " + strings.Join(names, ",\n  ") + ",\n}"
		}
		clause = append(clause, single)
	}
	if len(clause) > 0 {
		out = append(out, "import "+strings.Join(clause, ", ")+" from "+from)
	}
	return out
}

func uniqueSorted(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
