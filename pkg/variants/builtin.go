package variants

import (
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-formbuilder/pkg/model"
)

// Built-in variant names.
const (
	Checkbox           = "Checkbox"
	Combobox           = "Combobox"
	DatePicker         = "Date Picker"
	DatetimePicker     = "Datetime Picker"
	FileInput          = "File Input"
	Input              = "Input"
	InputOTP           = "Input OTP"
	LocationInput      = "Location Input"
	MultiSelect        = "Multi Select"
	Password           = "Password"
	Phone              = "Phone"
	Select             = "Select"
	SignatureInput     = "Signature Input"
	SignaturePad       = "Signature Pad"
	Slider             = "Slider"
	SmartDatetimeInput = "Smart Datetime Input"
	Switch             = "Switch"
	TagsInput          = "Tags Input"
	Textarea           = "Textarea"
	Rating             = "Rating"
	RadioGroup         = "RadioGroup"
	CreditCard         = "Credit Card"
)

// Shape patterns for fixed-format variants.
const (
	PatternOTP        = `^[0-9]{6}$`
	PatternPhone      = `^\+?[1-9][0-9]{6,14}$`
	PatternCreditCard = `^[0-9]{13,19}$`
	PatternEmail      = `^[^\s@]+@[^\s@]+\.[^\s@]+$`
)

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the shared built-in table. Callers that register their own
// variants should work on Default().Clone().
func Default() *Table {
	defaultOnce.Do(func() {
		defaultTable = NewBuiltin()
	})
	return defaultTable
}

// NewBuiltin constructs a table holding the built-in variants and
// refinement rules.
func NewBuiltin() *Table {
	t := New()
	for _, v := range builtin() {
		t.MustRegister(v)
	}
	registerBuiltinRules(t)
	return t
}

func builtin() []Variant {
	return []Variant{
		{
			Name: Checkbox,
			Defaults: model.Defaults{
				Label:       "Use different settings for my mobile devices",
				Description: "You can manage your mobile notifications in the mobile settings page.",
			},
			Constraint: Constraint{Kind: KindBool, Agreement: true},
		},
		{
			Name: Combobox,
			Defaults: model.Defaults{
				Label:       "Language",
				Description: "This is the language that will be used in the dashboard.",
			},
			Constraint: Constraint{Kind: KindText},
			Options: []Option{
				{Label: "English", Value: "en"},
				{Label: "French", Value: "fr"},
				{Label: "German", Value: "de"},
				{Label: "Spanish", Value: "es"},
				{Label: "Portuguese", Value: "pt"},
				{Label: "Russian", Value: "ru"},
				{Label: "Japanese", Value: "ja"},
				{Label: "Korean", Value: "ko"},
				{Label: "Chinese", Value: "zh"},
			},
		},
		{
			Name: DatePicker,
			Defaults: model.Defaults{
				Label:       "Date of birth",
				Description: "Your date of birth is used to calculate your age.",
			},
			Constraint: Constraint{Kind: KindDate},
		},
		{
			Name: DatetimePicker,
			Defaults: model.Defaults{
				Label:       "Submission Date",
				Description: "Add the date of submission with detailly.",
			},
			Constraint: Constraint{Kind: KindDate},
			Special:    "datetime-picker",
		},
		{
			Name: FileInput,
			Defaults: model.Defaults{
				Label:       "Select File",
				Description: "Select a file to upload.",
			},
			Constraint: Constraint{Kind: KindList},
		},
		{
			Name: Input,
			Defaults: model.Defaults{
				Label:       "Username",
				Description: "This is your public display name.",
				Placeholder: "shadcn",
			},
			Constraint: Constraint{Kind: KindText},
		},
		{
			Name: InputOTP,
			Defaults: model.Defaults{
				Label:       "One-Time Password",
				Description: "Please enter the one-time password sent to your phone.",
			},
			Constraint: Constraint{Kind: KindText, Pattern: PatternOTP, PatternLabel: "one-time password", Length: 6},
		},
		{
			Name: LocationInput,
			Defaults: model.Defaults{
				Label:       "Select Country",
				Description: "If your country has states, it will be appear after selecting country",
			},
			Constraint: Constraint{Kind: KindList},
			Special:    "location-input",
		},
		{
			Name: MultiSelect,
			Defaults: model.Defaults{
				Label:       "Select your framework",
				Description: "Select multiple options.",
			},
			Constraint: Constraint{Kind: KindList},
			Options: []Option{
				{Label: "React", Value: "react"},
				{Label: "Vue", Value: "vue"},
				{Label: "Svelte", Value: "svelte"},
			},
			Special: "multi-select",
		},
		{
			Name: Password,
			Defaults: model.Defaults{
				Label:       "Password",
				Description: "Enter your password.",
			},
			Constraint: Constraint{Kind: KindText},
		},
		{
			Name: Phone,
			Defaults: model.Defaults{
				Label:       "Phone number",
				Description: "Enter your phone number.",
			},
			Constraint: Constraint{Kind: KindText, Pattern: PatternPhone, PatternLabel: "phone number"},
			Special:    "phone-input",
		},
		{
			Name: Select,
			Defaults: model.Defaults{
				Label:       "Email",
				Description: "You can manage email addresses in your email settings.",
				Placeholder: "Select a verified email to display",
			},
			Constraint: Constraint{Kind: KindText},
			Options: []Option{
				{Label: "m@example.com", Value: "m@example.com"},
				{Label: "m@google.com", Value: "m@google.com"},
				{Label: "m@support.com", Value: "m@support.com"},
			},
		},
		{
			Name: SignatureInput,
			Defaults: model.Defaults{
				Label:       "Sign here",
				Description: "Please provide your signature above",
			},
			Constraint: Constraint{Kind: KindText},
			Special:    "signature-input",
		},
		{
			Name: SignaturePad,
			Defaults: model.Defaults{
				Label:       "Your Signature",
				Description: "Click the pen button to sign",
			},
			Constraint: Constraint{Kind: KindText},
		},
		{
			Name: Slider,
			Defaults: model.Defaults{
				Label:       "Set Price Range",
				Description: "Adjust the price by sliding.",
			},
			Constraint: Constraint{Kind: KindNumber, DefaultMin: model.Float(0), DefaultMax: model.Float(100)},
		},
		{
			Name: SmartDatetimeInput,
			Defaults: model.Defaults{
				Label:       "What's the best time for you?",
				Description: "Please select the full time",
			},
			Constraint: Constraint{Kind: KindDate},
			Special:    "smart-datetime-input",
		},
		{
			Name: Switch,
			Defaults: model.Defaults{
				Label:       "Marketing emails",
				Description: "Receive emails about new products, features, and more.",
			},
			Constraint: Constraint{Kind: KindBool},
		},
		{
			Name:       TagsInput,
			Defaults:   model.Defaults{Label: "Enter your tech stack.", Description: "Add tags."},
			Constraint: Constraint{Kind: KindList},
			Special:    "tags-input",
		},
		{
			Name: Textarea,
			Defaults: model.Defaults{
				Label:       "Bio",
				Description: "You can @mention other users and organizations.",
			},
			Constraint: Constraint{Kind: KindText},
		},
		{
			Name: Rating,
			Defaults: model.Defaults{
				Label:       "Rating",
				Description: "Please provide your rating.",
			},
			Constraint: Constraint{Kind: KindNumber, DefaultMin: model.Float(0), DefaultMax: model.Float(5)},
			Special:    "rating",
		},
		{
			Name: RadioGroup,
			Defaults: model.Defaults{
				Label:       "Gender",
				Description: "Select your gender",
			},
			Constraint: Constraint{Kind: KindText},
			Options: []Option{
				{Label: "Male", Value: "male"},
				{Label: "Female", Value: "female"},
				{Label: "Other", Value: "other"},
			},
		},
		{
			Name: CreditCard,
			Defaults: model.Defaults{
				Label:       "Credit Card Information",
				Description: "Enter your credit card details for payment.",
			},
			Constraint: Constraint{Kind: KindText, Pattern: PatternCreditCard, PatternLabel: "card number"},
			Special:    "credit-card",
		},
	}
}

func registerBuiltinRules(t *Table) {
	t.RegisterRule("number-input", 90, func(field model.Field) bool {
		return isVariant(field, Input) && inputType(field) == "number"
	}, func(_ model.Field, base Constraint) Constraint {
		base.Kind = KindNumber
		return base
	})

	t.RegisterRule("email-input", 80, func(field model.Field) bool {
		return isVariant(field, Input) && inputType(field) == "email"
	}, func(_ model.Field, base Constraint) Constraint {
		base.Format = "email"
		base.Pattern = PatternEmail
		base.PatternLabel = "email address"
		return base
	})

	t.RegisterRule("otp-length", 70, func(field model.Field) bool {
		return isVariant(field, InputOTP) && field.Max != nil && *field.Max >= 1 && *field.Max <= 12
	}, func(field model.Field, base Constraint) Constraint {
		length := int(*field.Max)
		base.Length = length
		base.Pattern = "^[0-9]{" + strconv.Itoa(length) + "}$"
		return base
	})
}

func isVariant(field model.Field, name string) bool {
	return normalize(field.Variant) == normalize(name)
}

func inputType(field model.Field) string {
	return strings.ToLower(strings.TrimSpace(field.Type))
}
