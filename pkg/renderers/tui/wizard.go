package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formbuilder/pkg/builder"
	"github.com/goliatone/go-formbuilder/pkg/model"
	"github.com/goliatone/go-formbuilder/pkg/variants"
)

// Wizard menu entries.
const (
	ActionAdd     = "Add field"
	ActionEdit    = "Edit field"
	ActionRemove  = "Remove field"
	ActionLibrary = "Choose form library"
	ActionReset   = "Reset"
	ActionFinish  = "Finish"
)

var actions = []string{ActionAdd, ActionEdit, ActionRemove, ActionLibrary, ActionReset, ActionFinish}

// Builder composes a field list on a terminal by driving a builder session.
type Builder struct {
	cfg     config
	session *builder.Session
}

// NewBuilder returns a wizard editing session.
func NewBuilder(session *builder.Session, options ...Option) *Builder {
	cfg := newConfig(options)
	if session != nil {
		cfg.table = session.Table()
	}
	return &Builder{cfg: cfg, session: session}
}

// Run shows the action menu until the user picks Finish and returns the
// composed list.
func (b *Builder) Run(ctx context.Context) (model.FieldList, error) {
	if b.session == nil {
		return nil, errors.New("tui: builder session is nil")
	}
	for {
		idx, err := b.cfg.driver.Select(ctx, SelectConfig{
			Message:  fmt.Sprintf("Form (%d fields, %s)", model.Len(b.session.Fields()), b.session.Library()),
			Options:  actions,
			PageSize: b.cfg.pageSize,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(actions) {
			continue
		}

		switch actions[idx] {
		case ActionAdd:
			err = b.add(ctx)
		case ActionEdit:
			err = b.edit(ctx)
		case ActionRemove:
			err = b.remove(ctx)
		case ActionLibrary:
			err = b.library(ctx)
		case ActionReset:
			err = b.reset(ctx)
		case ActionFinish:
			return b.session.Fields(), nil
		}
		if errors.Is(err, ErrNoFields) {
			b.info(ctx, "No fields yet.")
			continue
		}
		if err != nil {
			return nil, err
		}
	}
}

func (b *Builder) add(ctx context.Context) error {
	names := b.cfg.table.Names()
	idx, err := b.cfg.driver.Select(ctx, SelectConfig{
		Message:  "Field type",
		Options:  names,
		PageSize: b.cfg.pageSize,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(names) {
		return nil
	}
	field := b.session.AppendField(names[idx])
	b.info(ctx, fmt.Sprintf("Added %s (%s)", displayLabel(field), field.Name))
	return nil
}

func (b *Builder) edit(ctx context.Context) error {
	field, err := b.pickField(ctx, "Field to edit")
	if err != nil {
		return err
	}

	var patch model.Patch
	if patch.Label, err = b.text(ctx, "Label", field.Label); err != nil {
		return err
	}
	if patch.Description, err = b.text(ctx, "Description", field.Description); err != nil {
		return err
	}
	if patch.Placeholder, err = b.text(ctx, "Placeholder", field.Placeholder); err != nil {
		return err
	}
	name, err := b.cfg.driver.Input(ctx, InputConfig{
		Message:   "Name",
		Default:   field.Name,
		Required:  true,
		Validator: b.nameValidator(field.Name),
	})
	if err != nil {
		return err
	}
	if err := b.nameValidator(field.Name)(name); err != nil {
		b.warn(ctx, err.Error())
		name = field.Name
	}
	if name = strings.TrimSpace(name); name != field.Name {
		patch.Name = &name
	}
	if patch.Required, err = b.flag(ctx, "Required", field.Required); err != nil {
		return err
	}
	if patch.Disabled, err = b.flag(ctx, "Disabled", field.Disabled); err != nil {
		return err
	}
	if b.cfg.table.Constraint(field).Kind == variants.KindNumber {
		if err := b.bounds(ctx, field, &patch); err != nil {
			return err
		}
	}

	if patch.Empty() {
		return nil
	}
	if _, err := b.session.UpdateField(field.Name, patch); err != nil {
		b.warn(ctx, err.Error())
	}
	return nil
}

func (b *Builder) bounds(ctx context.Context, field model.Field, patch *model.Patch) error {
	for _, bound := range []struct {
		label   string
		attr    string
		current *float64
		dst     **float64
	}{
		{"Minimum", model.AttrMin, field.Min, &patch.Min},
		{"Maximum", model.AttrMax, field.Max, &patch.Max},
		{"Step", model.AttrStep, field.Step, &patch.Step},
	} {
		current := ""
		if bound.current != nil {
			current = strconv.FormatFloat(*bound.current, 'f', -1, 64)
		}
		raw, err := b.cfg.driver.Input(ctx, InputConfig{
			Message:   bound.label,
			Default:   current,
			Help:      "Leave empty to clear.",
			Validator: optionalNumber,
		})
		if err != nil {
			return err
		}
		raw = strings.TrimSpace(raw)
		if raw == "" {
			if bound.current != nil {
				patch.Unset = append(patch.Unset, bound.attr)
			}
			continue
		}
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			b.warn(ctx, fmt.Sprintf("%s must be a number", bound.label))
			continue
		}
		if bound.current == nil || *bound.current != n {
			*bound.dst = model.Float(n)
		}
	}
	return nil
}

func (b *Builder) remove(ctx context.Context) error {
	field, err := b.pickField(ctx, "Field to remove")
	if err != nil {
		return err
	}
	ok, err := b.cfg.driver.Confirm(ctx, ConfirmConfig{Message: fmt.Sprintf("Remove %s?", displayLabel(field))})
	if err != nil || !ok {
		return err
	}
	return b.session.RemoveField(field.Name)
}

func (b *Builder) library(ctx context.Context) error {
	targets := b.session.Targets().List()
	labels := make([]string, len(targets))
	current := 0
	for i, target := range targets {
		labels[i] = target.Label
		if target.ID == b.session.Library() {
			current = i
		}
	}
	idx, err := b.cfg.driver.Select(ctx, SelectConfig{
		Message:      "Form library",
		Options:      labels,
		DefaultIndex: current,
	})
	if err != nil {
		return err
	}
	if idx < 0 || idx >= len(targets) {
		return nil
	}
	_, err = b.session.SetLibrary(ctx, targets[idx].ID)
	return err
}

func (b *Builder) reset(ctx context.Context) error {
	ok, err := b.cfg.driver.Confirm(ctx, ConfirmConfig{Message: "Remove all fields?"})
	if err != nil || !ok {
		return err
	}
	b.session.Reset()
	return nil
}

func (b *Builder) pickField(ctx context.Context, message string) (model.Field, error) {
	fields := model.Flatten(b.session.Fields())
	if len(fields) == 0 {
		return model.Field{}, ErrNoFields
	}
	options := make([]string, len(fields))
	for i, field := range fields {
		options[i] = fmt.Sprintf("%s (%s, %s)", displayLabel(field), field.Name, field.Variant)
	}
	idx, err := b.cfg.driver.Select(ctx, SelectConfig{
		Message:  message,
		Options:  options,
		PageSize: b.cfg.pageSize,
	})
	if err != nil {
		return model.Field{}, err
	}
	if idx < 0 || idx >= len(fields) {
		return model.Field{}, ErrNoFields
	}
	return fields[idx], nil
}

// text prompts for a string attribute and returns nil when it is unchanged.
func (b *Builder) text(ctx context.Context, message, current string) (*string, error) {
	value, err := b.cfg.driver.Input(ctx, InputConfig{Message: message, Default: current})
	if err != nil || value == current {
		return nil, err
	}
	return &value, nil
}

func (b *Builder) flag(ctx context.Context, message string, current bool) (*bool, error) {
	value, err := b.cfg.driver.Confirm(ctx, ConfirmConfig{Message: message, Default: current})
	if err != nil || value == current {
		return nil, err
	}
	return &value, nil
}

func (b *Builder) nameValidator(current string) func(string) error {
	return func(name string) error {
		name = strings.TrimSpace(name)
		if name == "" {
			return errors.New("name is required")
		}
		if name == current {
			return nil
		}
		if _, taken := model.FindPath(b.session.Fields(), name); taken {
			return fmt.Errorf("%q is already used", name)
		}
		return nil
	}
}

func (b *Builder) info(ctx context.Context, msg string) {
	_ = b.cfg.driver.Info(ctx, b.cfg.theme.InfoPrefix+msg)
}

func (b *Builder) warn(ctx context.Context, msg string) {
	_ = b.cfg.driver.Info(ctx, b.cfg.theme.ErrorPrefix+msg)
}

func optionalNumber(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		return errors.New("enter a number or leave empty")
	}
	return nil
}

func displayLabel(field model.Field) string {
	if strings.TrimSpace(field.Label) != "" {
		return field.Label
	}
	return field.Name
}
