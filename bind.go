package decree

import (
	"github.com/reeflective/decree/internal/scan"
)

// BindOption configures a struct binding.
type BindOption func(*scan.Opts)

// WithValidation enables the `validate` struct tag on bound fields,
// backed by the go-playground validator.
func WithValidation() BindOption {
	return func(o *scan.Opts) { o.Validate = true }
}

// binding connects a bound struct field to its parameter, so resolved
// values flow back into the struct before the command runs.
type binding struct {
	param *Parameter
	set   func(value any) error
}

// Bind scans a pointer to a tagged struct and attaches one parameter
// per field: options for flag fields, arguments for fields tagged arg.
// After parsing, resolved values are written back into the struct, so
// the run function reads plain fields instead of the context.
//
// See the internal scan package documentation for the tag dialect.
func (c *Command) Bind(data any, opts ...BindOption) error {
	options := scan.Opts{}
	for _, opt := range opts {
		opt(&options)
	}

	fields, err := scan.Parse(data, options)
	if err != nil {
		return err
	}

	for _, field := range fields {
		param := bindParam(field)

		c.params = append(c.params, param)

		if field.Set != nil {
			c.binds = append(c.binds, &binding{param: param, set: field.Set})
		}
	}

	return nil
}

func bindParam(field *scan.Field) *Parameter {
	var mods []ParamOption

	if field.Help != "" {
		mods = append(mods, Help(field.Help))
	}

	if field.Hidden {
		mods = append(mods, Hidden())
	}

	if field.Metavar != "" {
		mods = append(mods, Metavar(field.Metavar))
	}

	if field.EnvVars != nil {
		mods = append(mods, Env(field.EnvVars...))
	}

	if field.ConfigKeys != nil {
		mods = append(mods, ConfigKey(field.ConfigKeys...))
	}

	if field.HasDefault {
		mods = append(mods, Default(field.Default), ShowDefault())
	}

	if field.HasRequired {
		if field.Required {
			mods = append(mods, Required())
		} else {
			mods = append(mods, NotRequired())
		}
	}

	for _, check := range field.Validators {
		mods = append(mods, Validators(check))
	}

	if field.Positional {
		return NewArgument(field.Name, field.Type, mods...)
	}

	return NewOption(field.Name, field.Type, field.Flags, mods...)
}
