package codegen

import (
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// SnippetContext is what a snippet sees of one field.
type SnippetContext struct {
	Field model.Field
	// Ident is a JavaScript identifier unique within the document, used to
	// name module-level declarations of the field.
	Ident      string
	Binding    Binding
	Options    []variants.Option
	Constraint variants.Constraint
}

// Control is the generated source of one form control.
type Control struct {
	Markup string
	// Imports are merged into the document imports.
	Imports []Import
	// Declarations are emitted at module level before the schema.
	Declarations []string
	// Hooks are emitted at the top of the component body.
	Hooks []string
	// Inline places the label beside the control instead of above it.
	Inline bool
}

// Snippet renders the control of one variant.
type Snippet func(SnippetContext) Control

// Snippets maps variant names to snippets. Lookups ignore case and
// surrounding whitespace.
type Snippets struct {
	mu      sync.RWMutex
	entries map[string]Snippet
}

// NewSnippets returns an empty snippet registry.
func NewSnippets() *Snippets {
	return &Snippets{entries: make(map[string]Snippet)}
}

// Register adds or replaces the snippet for variant.
func (s *Snippets) Register(variant string, snippet Snippet) {
	key := normalizeVariant(variant)
	if key == "" || snippet == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = snippet
}

// Lookup returns the snippet registered for variant.
func (s *Snippets) Lookup(variant string) (Snippet, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snippet, ok := s.entries[normalizeVariant(variant)]
	return snippet, ok
}

// Has reports whether variant has a snippet.
func (s *Snippets) Has(variant string) bool {
	_, ok := s.Lookup(variant)
	return ok
}

// Clone returns an independent copy.
func (s *Snippets) Clone() *Snippets {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := NewSnippets()
	for key, snippet := range s.entries {
		out.entries[key] = snippet
	}
	return out
}

var (
	defaultSnippets     *Snippets
	defaultSnippetsOnce sync.Once
)

// DefaultSnippets returns the shared registry of built-in snippets.
func DefaultSnippets() *Snippets {
	defaultSnippetsOnce.Do(func() {
		defaultSnippets = NewBuiltinSnippets()
	})
	return defaultSnippets
}

// NewBuiltinSnippets returns a fresh registry with a snippet for every
// built-in variant.
func NewBuiltinSnippets() *Snippets {
	s := NewSnippets()
	s.Register(variants.Input, inputSnippet)
	s.Register(variants.Password, passwordSnippet)
	s.Register(variants.Textarea, textareaSnippet)
	s.Register(variants.Checkbox, checkboxSnippet)
	s.Register(variants.Switch, switchSnippet)
	s.Register(variants.Combobox, comboboxSnippet)
	s.Register(variants.Select, selectSnippet)
	s.Register(variants.RadioGroup, radioGroupSnippet)
	s.Register(variants.MultiSelect, multiSelectSnippet)
	s.Register(variants.DatePicker, datePickerSnippet)
	s.Register(variants.DatetimePicker, datetimePickerSnippet)
	s.Register(variants.SmartDatetimeInput, smartDatetimeSnippet)
	s.Register(variants.FileInput, fileInputSnippet)
	s.Register(variants.InputOTP, inputOTPSnippet)
	s.Register(variants.LocationInput, locationSnippet)
	s.Register(variants.Phone, phoneSnippet)
	s.Register(variants.SignatureInput, signatureInputSnippet)
	s.Register(variants.SignaturePad, signaturePadSnippet)
	s.Register(variants.Slider, sliderSnippet)
	s.Register(variants.TagsInput, tagsInputSnippet)
	s.Register(variants.Rating, ratingSnippet)
	s.Register(variants.CreditCard, creditCardSnippet)
	return s
}

func normalizeVariant(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

const (
	uiButton  = "@/components/ui/button"
	uiPopover = "@/components/ui/popover"
	libUtils  = "@/lib/utils"
	icons     = "lucide-react"
)

// tag renders a self-closing JSX element, skipping empty attributes.
func tag(name string, attrs ...string) string {
	return "<" + joinAttrs(name, attrs) + " />"
}

func open(name string, attrs ...string) string {
	return "<" + joinAttrs(name, attrs) + ">"
}

func joinAttrs(name string, attrs []string) string {
	parts := []string{name}
	for _, attr := range attrs {
		if attr = strings.TrimSpace(attr); attr != "" {
			parts = append(parts, attr)
		}
	}
	return strings.Join(parts, " ")
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}

func attr(name, value string) string {
	if value == "" {
		return ""
	}
	return name + "=" + jsxAttr(value)
}

func exprAttr(name, expr string) string {
	return name + "={" + expr + "}"
}

func disabledAttr(field model.Field) string {
	if field.Disabled {
		return "disabled"
	}
	return ""
}

func classAttr(field model.Field, base string) string {
	class := strings.TrimSpace(strings.Join([]string{base, field.ClassName}, " "))
	return attr("className", class)
}

func placeholderOr(field model.Field, fallback string) string {
	if field.Placeholder != "" {
		return field.Placeholder
	}
	return fallback
}

func number(n float64) string {
	return strconv.FormatFloat(n, 'f', -1, 64)
}

func boundOr(value *float64, fallback *float64, def float64) float64 {
	switch {
	case value != nil:
		return *value
	case fallback != nil:
		return *fallback
	default:
		return def
	}
}

// optionsDeclaration declares the choices of a select-like control.
func optionsDeclaration(ident string, options []variants.Option) (string, string) {
	name := ident + "Options"
	var b strings.Builder
	b.WriteString("const " + name + " = [")
	if len(options) == 0 {
		b.WriteString("]")
		return name, b.String()
	}
	b.WriteString("\n")
	for _, opt := range options {
		b.WriteString("  { label: " + jsString(opt.Label) + ", value: " + jsString(opt.Value) + " },\n")
	}
	b.WriteString("] as const")
	return name, b.String()
}

func inputSnippet(ctx SnippetContext) Control {
	f := ctx.Field
	return Control{
		Markup: tag("Input",
			ctx.Binding.ID,
			attr("placeholder", f.Placeholder),
			attr("type", strings.TrimSpace(f.Type)),
			classAttr(f, ""),
			disabledAttr(f),
			ctx.Binding.TextAttrs(),
		),
		Imports: []Import{Named("@/components/ui/input", "Input")},
	}
}

func passwordSnippet(ctx SnippetContext) Control {
	f := ctx.Field
	return Control{
		Markup: tag("Input",
			ctx.Binding.ID,
			`type="password"`,
			attr("placeholder", f.Placeholder),
			classAttr(f, ""),
			disabledAttr(f),
			ctx.Binding.TextAttrs(),
		),
		Imports: []Import{Named("@/components/ui/input", "Input")},
	}
}

func textareaSnippet(ctx SnippetContext) Control {
	f := ctx.Field
	return Control{
		Markup: tag("Textarea",
			ctx.Binding.ID,
			attr("placeholder", f.Placeholder),
			classAttr(f, "resize-none"),
			disabledAttr(f),
			ctx.Binding.TextAttrs(),
		),
		Imports: []Import{Named("@/components/ui/textarea", "Textarea")},
	}
}

func checkboxSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	return Control{
		Markup: tag("Checkbox",
			b.ID,
			exprAttr("checked", b.Value),
			exprAttr("onCheckedChange", b.Handler("checked", "checked === true")),
			disabledAttr(ctx.Field),
		),
		Imports: []Import{Named("@/components/ui/checkbox", "Checkbox")},
		Inline:  true,
	}
}

func switchSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	return Control{
		Markup: tag("Switch",
			b.ID,
			exprAttr("checked", b.Value),
			exprAttr("onCheckedChange", b.Handler("checked", "checked")),
			disabledAttr(ctx.Field),
		),
		Imports: []Import{Named("@/components/ui/switch", "Switch")},
		Inline:  true,
	}
}

func comboboxSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	name, decl := optionsDeclaration(ctx.Ident, ctx.Options)
	placeholder := placeholderOr(ctx.Field, "Select an option")
	markup := lines(
		"<Popover>",
		"  <PopoverTrigger asChild>",
		"    "+open("Button",
			`variant="outline"`,
			`role="combobox"`,
			b.ID,
			disabledAttr(ctx.Field),
			`className={cn("w-[200px] justify-between", !`+b.Value+` && "text-muted-foreground")}`,
		),
		"      {"+b.Value,
		"        ? "+name+".find((option) => option.value === "+b.Value+")?.label",
		"        : "+jsString(placeholder)+"}",
		`      <ChevronsUpDown className="ml-2 h-4 w-4 shrink-0 opacity-50" />`,
		"    </Button>",
		"  </PopoverTrigger>",
		`  <PopoverContent className="w-[200px] p-0">`,
		"    <Command>",
		`      <CommandInput placeholder="Search..." />`,
		"      <CommandList>",
		"        <CommandEmpty>No option found.</CommandEmpty>",
		"        <CommandGroup>",
		"          {"+name+".map((option) => (",
		"            <CommandItem",
		"              value={option.label}",
		"              key={option.value}",
		"              onSelect={() => "+b.Set("option.value")+"}",
		"            >",
		`              <Check className={cn("mr-2 h-4 w-4", option.value === `+b.Value+` ? "opacity-100" : "opacity-0")} />`,
		"              {option.label}",
		"            </CommandItem>",
		"          ))}",
		"        </CommandGroup>",
		"      </CommandList>",
		"    </Command>",
		"  </PopoverContent>",
		"</Popover>",
	)
	return Control{
		Markup: markup,
		Imports: []Import{
			Named(uiButton, "Button"),
			Named(uiPopover, "Popover", "PopoverContent", "PopoverTrigger"),
			Named("@/components/ui/command", "Command", "CommandEmpty", "CommandGroup", "CommandInput", "CommandItem", "CommandList"),
			Named(libUtils, "cn"),
			Named(icons, "Check", "ChevronsUpDown"),
		},
		Declarations: []string{decl},
	}
}

func selectSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	name, decl := optionsDeclaration(ctx.Ident, ctx.Options)
	markup := lines(
		open("Select", exprAttr("value", b.Value), exprAttr("onValueChange", b.Handler("value", "value")), disabledAttr(ctx.Field)),
		"  "+open("SelectTrigger", b.ID),
		"    "+tag("SelectValue", attr("placeholder", placeholderOr(ctx.Field, "Select an option"))),
		"  </SelectTrigger>",
		"  <SelectContent>",
		"    {"+name+".map((option) => (",
		"      <SelectItem key={option.value} value={option.value}>",
		"        {option.label}",
		"      </SelectItem>",
		"    ))}",
		"  </SelectContent>",
		"</Select>",
	)
	return Control{
		Markup:       markup,
		Imports:      []Import{Named("@/components/ui/select", "Select", "SelectContent", "SelectItem", "SelectTrigger", "SelectValue")},
		Declarations: []string{decl},
	}
}

func radioGroupSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	name, decl := optionsDeclaration(ctx.Ident, ctx.Options)
	itemID := "{`" + ctx.Ident + "-${option.value}`}"
	markup := lines(
		open("RadioGroup", exprAttr("value", b.Value), exprAttr("onValueChange", b.Handler("value", "value")), `className="flex flex-col space-y-1"`, disabledAttr(ctx.Field)),
		"  {"+name+".map((option) => (",
		`    <div key={option.value} className="flex items-center space-x-3">`,
		"      <RadioGroupItem value={option.value} id="+itemID+" />",
		"      <Label htmlFor="+itemID+` className="font-normal">`,
		"        {option.label}",
		"      </Label>",
		"    </div>",
		"  ))}",
		"</RadioGroup>",
	)
	return Control{
		Markup: markup,
		Imports: []Import{
			Named("@/components/ui/radio-group", "RadioGroup", "RadioGroupItem"),
			Named("@/components/ui/label", "Label"),
		},
		Declarations: []string{decl},
	}
}

func multiSelectSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	name, decl := optionsDeclaration(ctx.Ident, ctx.Options)
	markup := lines(
		open("MultiSelector", exprAttr("values", b.Value), exprAttr("onValuesChange", b.Handler("values", "values")), "loop", `className="max-w-xs"`),
		"  <MultiSelectorTrigger>",
		"    "+tag("MultiSelectorInput", attr("placeholder", placeholderOr(ctx.Field, "Select options"))),
		"  </MultiSelectorTrigger>",
		"  <MultiSelectorContent>",
		"    <MultiSelectorList>",
		"      {"+name+".map((option) => (",
		"        <MultiSelectorItem key={option.value} value={option.value}>",
		"          {option.label}",
		"        </MultiSelectorItem>",
		"      ))}",
		"    </MultiSelectorList>",
		"  </MultiSelectorContent>",
		"</MultiSelector>",
	)
	return Control{
		Markup: markup,
		Imports: []Import{Named("@/components/ui/multi-select",
			"MultiSelector", "MultiSelectorContent", "MultiSelectorInput", "MultiSelectorItem", "MultiSelectorList", "MultiSelectorTrigger")},
		Declarations: []string{decl},
	}
}

func datePickerSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	markup := lines(
		"<Popover>",
		"  <PopoverTrigger asChild>",
		"    "+open("Button",
			`variant="outline"`,
			b.ID,
			disabledAttr(ctx.Field),
			`className={cn("w-[240px] pl-3 text-left font-normal", !`+b.Value+` && "text-muted-foreground")}`,
		),
		"      {"+b.Value+" ? format(new Date("+b.Value+`), "PPP") : <span>`+jsxText(placeholderOr(ctx.Field, "Pick a date"))+"</span>}",
		`      <CalendarIcon className="ml-auto h-4 w-4 opacity-50" />`,
		"    </Button>",
		"  </PopoverTrigger>",
		`  <PopoverContent className="w-auto p-0" align="start">`,
		"    <Calendar",
		`      mode="single"`,
		"      selected={"+b.Value+" ? new Date("+b.Value+") : undefined}",
		"      onSelect={"+b.Handler("date", `date ? date.toISOString() : ""`)+"}",
		"      initialFocus",
		"    />",
		"  </PopoverContent>",
		"</Popover>",
	)
	return Control{
		Markup: markup,
		Imports: []Import{
			Named(uiButton, "Button"),
			Named(uiPopover, "Popover", "PopoverContent", "PopoverTrigger"),
			Named("@/components/ui/calendar", "Calendar"),
			Named(libUtils, "cn"),
			Named("date-fns", "format"),
			Named(icons, "CalendarIcon"),
		},
	}
}

func datetimePickerSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	f := ctx.Field
	hourCycle := ""
	if f.Hour12 != nil {
		cycle := "24"
		if *f.Hour12 {
			cycle = "12"
		}
		hourCycle = "hourCycle={" + cycle + "}"
	}
	return Control{
		Markup: tag("DatetimePicker",
			b.ID,
			exprAttr("value", b.Value+" ? new Date("+b.Value+") : undefined"),
			exprAttr("onChange", b.Handler("date", `date ? date.toISOString() : ""`)),
			`format={[["months", "days", "years"], ["hours", "minutes", "am/pm"]]}`,
			hourCycle,
			disabledAttr(f),
		),
		Imports: []Import{Named("@/components/ui/datetime-picker", "DatetimePicker")},
	}
}

func smartDatetimeSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	f := ctx.Field
	hour12 := ""
	if f.Hour12 != nil {
		hour12 = "hour12={" + strconv.FormatBool(*f.Hour12) + "}"
	}
	return Control{
		Markup: tag("SmartDatetimeInput",
			b.ID,
			exprAttr("value", b.Value+" ? new Date("+b.Value+") : undefined"),
			exprAttr("onValueChange", b.Handler("date", "date.toISOString()")),
			attr("placeholder", placeholderOr(f, "e.g. Tomorrow morning 9am")),
			attr("locale", f.Locale),
			hour12,
			disabledAttr(f),
		),
		Imports: []Import{Named("@/components/ui/smart-datetime-input", "SmartDatetimeInput")},
	}
}

func fileInputSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	return Control{
		Markup: tag("Input",
			b.ID,
			`type="file"`,
			"multiple",
			classAttr(ctx.Field, ""),
			disabledAttr(ctx.Field),
			exprAttr("onChange", b.Handler("e", "Array.from(e.target.files ?? []).map((file) => file.name)")),
		),
		Imports: []Import{Named("@/components/ui/input", "Input")},
	}
}

func inputOTPSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	length := ctx.Constraint.Length
	if length <= 0 {
		length = 6
	}
	slots := make([]string, 0, length)
	for i := 0; i < length; i++ {
		slots = append(slots, "    <InputOTPSlot index={"+strconv.Itoa(i)+"} />")
	}
	markup := lines(
		open("InputOTP", b.ID, "maxLength={"+strconv.Itoa(length)+"}", exprAttr("value", b.Value), exprAttr("onChange", b.Handler("value", "value")), disabledAttr(ctx.Field)),
		"  <InputOTPGroup>",
		strings.Join(slots, "\n"),
		"  </InputOTPGroup>",
		"</InputOTP>",
	)
	return Control{
		Markup:  markup,
		Imports: []Import{Named("@/components/ui/input-otp", "InputOTP", "InputOTPGroup", "InputOTPSlot")},
	}
}

func locationSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	markup := lines(
		"<LocationSelector",
		"  onCountryChange={"+b.Handler("country", `[country?.name ?? "", `+b.Value+`?.[1] ?? ""]`)+"}",
		"  onStateChange={"+b.Handler("state", "["+b.Value+`?.[0] ?? "", state?.name ?? ""]`)+"}",
		"/>",
	)
	return Control{
		Markup:  markup,
		Imports: []Import{{From: "@/components/ui/location-input", Default: "LocationSelector"}},
	}
}

func phoneSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	return Control{
		Markup: tag("PhoneInput",
			b.ID,
			exprAttr("value", b.Value),
			exprAttr("onChange", b.Handler("value", `value ?? ""`)),
			attr("placeholder", ctx.Field.Placeholder),
			disabledAttr(ctx.Field),
		),
		Imports: []Import{Named("@/components/ui/phone-input", "PhoneInput")},
	}
}

func signatureInputSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	ref := ctx.Ident + "CanvasRef"
	return Control{
		Markup: tag("SignatureInput",
			exprAttr("canvasRef", ref),
			exprAttr("onSignatureChange", b.Handler("signature", `signature ?? ""`)),
		),
		Imports: []Import{
			Named("react", "useRef"),
			Named("@/components/ui/signature-input", "SignatureInput"),
		},
		Hooks: []string{"const " + ref + " = useRef<HTMLCanvasElement>(null)"},
	}
}

func signaturePadSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	return Control{
		Markup: tag("SignaturePad",
			b.ID,
			exprAttr("value", b.Value),
			exprAttr("onChange", b.Handler("value", "value")),
			disabledAttr(ctx.Field),
		),
		Imports: []Import{Named("@/components/ui/signature-pad", "SignaturePad")},
	}
}

func sliderSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	f := ctx.Field
	lower := boundOr(f.Min, ctx.Constraint.DefaultMin, 0)
	upper := boundOr(f.Max, ctx.Constraint.DefaultMax, 100)
	step := 1.0
	if f.Step != nil && *f.Step > 0 {
		step = *f.Step
	}
	return Control{
		Markup: tag("Slider",
			b.ID,
			"min={"+number(lower)+"}",
			"max={"+number(upper)+"}",
			"step={"+number(step)+"}",
			exprAttr("value", "["+b.Value+"]"),
			exprAttr("onValueChange", b.Handler("values", "values[0]")),
			disabledAttr(f),
		),
		Imports: []Import{Named("@/components/ui/slider", "Slider")},
	}
}

func tagsInputSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	return Control{
		Markup: tag("TagsInput",
			b.ID,
			exprAttr("value", b.Value),
			exprAttr("onValueChange", b.Handler("values", "values")),
			attr("placeholder", placeholderOr(ctx.Field, "Enter your tags")),
			disabledAttr(ctx.Field),
		),
		Imports: []Import{Named("@/components/ui/tags-input", "TagsInput")},
	}
}

func ratingSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	upper := boundOr(ctx.Field.Max, ctx.Constraint.DefaultMax, 5)
	return Control{
		Markup: tag("Rating",
			b.ID,
			exprAttr("value", b.Value),
			"max={"+number(upper)+"}",
			exprAttr("onValueChange", b.Handler("value", "value")),
			disabledAttr(ctx.Field),
		),
		Imports: []Import{Named("@/components/ui/rating", "Rating")},
	}
}

func creditCardSnippet(ctx SnippetContext) Control {
	b := ctx.Binding
	return Control{
		Markup: tag("CreditCard",
			b.ID,
			exprAttr("value", b.Value),
			exprAttr("onChange", b.Handler("value", "value")),
			disabledAttr(ctx.Field),
		),
		Imports: []Import{Named("@/components/ui/credit-card", "CreditCard")},
	}
}
