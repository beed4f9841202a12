package variants

import (
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// DefaultCatalogURL is the base URL of the component catalogue linked from
// the special component notice.
const DefaultCatalogURL = "https://shadcn-form.com/components"

// NoticeMessage introduces the special component list.
const NoticeMessage = "This form includes special components, add the component in your directory."

// SpecialComponent is one entry of the notice shown next to generated code.
type SpecialComponent struct {
	Variant string `json:"variant"`
	URL     string `json:"url"`
}

// SpecialComponents lists the special variants used by top-level single
// fields, once each, in table order. Group members are not inspected.
func (t *Table) SpecialComponents(list model.FieldList, baseURL string) []SpecialComponent {
	used := make(map[string]struct{})
	for _, entry := range list {
		field, ok := entry.Field()
		if !ok {
			continue
		}
		used[normalize(field.Variant)] = struct{}{}
	}
	if len(used) == 0 {
		return nil
	}
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		base = DefaultCatalogURL
	}

	var out []SpecialComponent
	for _, v := range t.Variants() {
		if v.Special == "" {
			continue
		}
		if _, ok := used[normalize(v.Name)]; !ok {
			continue
		}
		out = append(out, SpecialComponent{Variant: v.Name, URL: base + "/" + v.Special})
	}
	return out
}
