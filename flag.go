package flagtree

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
	"github.com/spf13/pflag"
)

// FlagType is the declared value type of a flag.
type FlagType int

// Flag types.
const (
	TypeString FlagType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeStringSlice
	TypeStringArray
	TypeChoice
	TypeRange
	TypeFile
	TypeDirectory
)

func (t FlagType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeStringSlice:
		return "stringSlice"
	case TypeStringArray:
		return "stringArray"
	case TypeChoice:
		return "choice"
	case TypeRange:
		return "range"
	case TypeFile:
		return "file"
	case TypeDirectory:
		return "dir"
	default:
		return fmt.Sprintf("FlagType(%d)", int(t))
	}
}

// accumulates reports whether repeated occurrences append instead of replacing.
func (t FlagType) accumulates() bool {
	return t == TypeStringSlice || t == TypeStringArray
}

// ConstraintKind identifies a cross-flag rule.
type ConstraintKind int

// Constraint kinds.
const (
	ConstraintRequiredIf ConstraintKind = iota + 1
	ConstraintConflictsWith
	ConstraintRequires
)

// Constraint relates the flag that declares it to other flags, by long name.
type Constraint struct {
	Kind  ConstraintKind
	Flags []string
}

// RequiredIf makes the declaring flag mandatory whenever flag is present.
func RequiredIf(flag string) Constraint {
	return Constraint{Kind: ConstraintRequiredIf, Flags: []string{flag}}
}

// ConflictsWith rejects the declaring flag together with any of flags.
func ConflictsWith(flags ...string) Constraint {
	return Constraint{Kind: ConstraintConflictsWith, Flags: flags}
}

// Requires demands every one of flags whenever the declaring flag is present.
func Requires(flags ...string) Constraint {
	return Constraint{Kind: ConstraintRequires, Flags: flags}
}

// Flag describes a named option. Flags are immutable once added to a command.
type Flag struct {
	Name      string
	Shorthand rune
	Usage     string
	Type      FlagType

	// Choices lists the accepted values of a TypeChoice flag.
	Choices []string
	// Min and Max bound a TypeRange flag, inclusive.
	Min, Max int64

	// Default is the textual default. Slice types split it on commas.
	Default string

	Required    bool
	Hidden      bool
	Constraints []Constraint

	// Completion produces candidate values for this flag.
	Completion CompletionFunc
}

// StringFlag declares a string flag.
func StringFlag(name string) *Flag { return &Flag{Name: name, Type: TypeString} }

// BoolFlag declares a boolean flag.
func BoolFlag(name string) *Flag { return &Flag{Name: name, Type: TypeBool} }

// IntFlag declares a 64-bit integer flag.
func IntFlag(name string) *Flag { return &Flag{Name: name, Type: TypeInt} }

// FloatFlag declares a 64-bit float flag.
func FloatFlag(name string) *Flag { return &Flag{Name: name, Type: TypeFloat} }

// StringSliceFlag declares a flag whose occurrences accumulate, each split on commas.
func StringSliceFlag(name string) *Flag { return &Flag{Name: name, Type: TypeStringSlice} }

// StringArrayFlag declares a flag whose occurrences accumulate verbatim.
func StringArrayFlag(name string) *Flag { return &Flag{Name: name, Type: TypeStringArray} }

// ChoiceFlag declares a string flag restricted to choices.
func ChoiceFlag(name string, choices ...string) *Flag {
	return &Flag{Name: name, Type: TypeChoice, Choices: choices}
}

// RangeFlag declares an integer flag bounded by min and max inclusive.
func RangeFlag(name string, min, max int64) *Flag {
	return &Flag{Name: name, Type: TypeRange, Min: min, Max: max}
}

// FileFlag declares a flag naming an existing file.
func FileFlag(name string) *Flag { return &Flag{Name: name, Type: TypeFile} }

// DirFlag declares a flag naming an existing directory.
func DirFlag(name string) *Flag { return &Flag{Name: name, Type: TypeDirectory} }

// WithShort sets the single-character alias.
func (f *Flag) WithShort(short rune) *Flag {
	f.Shorthand = short
	return f
}

// WithUsage sets the help text.
func (f *Flag) WithUsage(usage string) *Flag {
	f.Usage = usage
	return f
}

// WithDefault sets the textual default value.
func (f *Flag) WithDefault(value string) *Flag {
	f.Default = value
	return f
}

// WithConstraint appends cross-flag constraints.
func (f *Flag) WithConstraint(constraints ...Constraint) *Flag {
	f.Constraints = append(f.Constraints, constraints...)
	return f
}

// WithCompletion sets the value completion callback.
func (f *Flag) WithCompletion(fn CompletionFunc) *Flag {
	f.Completion = fn
	return f
}

// MarkRequired makes the flag mandatory.
func (f *Flag) MarkRequired() *Flag {
	f.Required = true
	return f
}

// MarkHidden hides the flag from help and completion.
func (f *Flag) MarkHidden() *Flag {
	f.Hidden = true
	return f
}

// TakesValue reports whether the flag consumes a value token. Only bools do not.
func (f *Flag) TakesValue() bool {
	return f.Type != TypeBool
}

// TypeLabel is the human readable type shown in help and errors.
func (f *Flag) TypeLabel() string {
	switch f.Type {
	case TypeChoice:
		return "{" + strings.Join(f.Choices, "|") + "}"
	case TypeRange:
		return fmt.Sprintf("int[%d-%d]", f.Min, f.Max)
	case TypeStringSlice, TypeStringArray:
		return "strings"
	default:
		return f.Type.String()
	}
}

// valueHint describes the accepted input in words.
func (f *Flag) valueHint() string {
	switch f.Type {
	case TypeBool:
		return "use one of: true, false, yes, no, 1, 0"
	case TypeInt:
		return "use a whole number such as 42"
	case TypeFloat:
		return "use a number such as 1.5"
	case TypeChoice:
		return "use one of: " + strings.Join(f.Choices, ", ")
	case TypeRange:
		return fmt.Sprintf("use a number between %d and %d (inclusive)", f.Min, f.Max)
	case TypeFile:
		return "use the path of an existing file"
	case TypeDirectory:
		return "use the path of an existing directory"
	default:
		return ""
	}
}

func (f *Flag) shorthand() string {
	if f.Shorthand == 0 {
		return ""
	}
	return string(f.Shorthand)
}

// validate checks the declaration itself, including that the default satisfies the type.
func (f *Flag) validate() error {
	if f.Name == "" || strings.HasPrefix(f.Name, "-") || strings.ContainsAny(f.Name, "= \t\n") {
		return validationError(f.Name, "invalid flag name %q", f.Name)
	}
	if f.Shorthand != 0 && !isShorthandRune(f.Shorthand) {
		return validationError(f.Name, "invalid shorthand %q for flag --%s: must be a single ASCII letter or digit", f.Shorthand, f.Name)
	}
	switch f.Type {
	case TypeChoice:
		if len(f.Choices) == 0 {
			return validationError(f.Name, "choice flag --%s declares no choices", f.Name)
		}
	case TypeRange:
		if f.Min > f.Max {
			return validationError(f.Name, "range flag --%s has min %d greater than max %d", f.Name, f.Min, f.Max)
		}
	}
	for _, c := range f.Constraints {
		if len(c.Flags) == 0 {
			return validationError(f.Name, "constraint on --%s names no flags", f.Name)
		}
		if lo.Contains(c.Flags, f.Name) {
			return validationError(f.Name, "flag --%s cannot constrain itself", f.Name)
		}
	}
	scratch := pflag.NewFlagSet(f.Name, pflag.ContinueOnError)
	if _, err := f.register(scratch, true); err != nil {
		return err
	}
	return nil
}

func isShorthandRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}

// register adds a fresh value for f, initialised to its default, to fs.
func (f *Flag) register(fs *pflag.FlagSet, withShort bool) (*pflag.Flag, error) {
	short := ""
	if withShort {
		short = f.shorthand()
	}
	badDefault := func(err error) error {
		e := validationError(f.Name, "invalid default %q for flag --%s: expected %s", f.Default, f.Name, f.TypeLabel())
		e.Cause = err
		return e
	}

	switch f.Type {
	case TypeString:
		fs.StringP(f.Name, short, f.Default, f.Usage)
	case TypeInt:
		var def int64
		if f.Default != "" {
			n, err := strconv.ParseInt(f.Default, 0, 64)
			if err != nil {
				return nil, badDefault(err)
			}
			def = n
		}
		fs.Int64P(f.Name, short, def, f.Usage)
	case TypeFloat:
		var def float64
		if f.Default != "" {
			n, err := strconv.ParseFloat(f.Default, 64)
			if err != nil {
				return nil, badDefault(err)
			}
			def = n
		}
		fs.Float64P(f.Name, short, def, f.Usage)
	case TypeStringSlice:
		fs.StringSliceP(f.Name, short, splitDefault(f.Default), f.Usage)
	case TypeStringArray:
		fs.StringArrayP(f.Name, short, splitDefault(f.Default), f.Usage)
	default:
		v, err := f.customValue()
		if err != nil {
			return nil, badDefault(err)
		}
		pf := fs.VarPF(v, f.Name, short, f.Usage)
		pf.DefValue = v.String()
		if f.Type == TypeBool {
			pf.NoOptDefVal = "true"
		}
	}
	return fs.Lookup(f.Name), nil
}

func (f *Flag) customValue() (pflag.Value, error) {
	switch f.Type {
	case TypeBool:
		v := &boolValue{}
		if f.Default != "" {
			if err := v.Set(f.Default); err != nil {
				return nil, err
			}
		}
		return v, nil
	case TypeChoice:
		v := &choiceValue{choices: f.Choices}
		if f.Default != "" {
			if err := v.Set(f.Default); err != nil {
				return nil, err
			}
		}
		return v, nil
	case TypeRange:
		v := &rangeValue{min: f.Min, max: f.Max, value: f.Min}
		if f.Default != "" {
			if err := v.Set(f.Default); err != nil {
				return nil, err
			}
		}
		return v, nil
	case TypeFile, TypeDirectory:
		// Defaults may point at paths created later, so they are not checked here.
		return &pathValue{dir: f.Type == TypeDirectory, value: f.Default}, nil
	default:
		return nil, fmt.Errorf("unsupported flag type %s", f.Type)
	}
}

func splitDefault(def string) []string {
	if def == "" {
		return []string{}
	}
	return strings.Split(def, ",")
}
