package extension

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// OptionType describes how a directive option value is interpreted.
type OptionType int

const (
	String OptionType = iota // any text
	Flag                     // present or absent; takes no value
	Int                      // decimal integer
	Bool                     // true/false, yes/no, on/off, 1/0
	Choice                   // one of Option.Choices
)

func (t OptionType) String() string {
	switch t {
	case String:
		return "string"
	case Flag:
		return "flag"
	case Int:
		return "int"
	case Bool:
		return "bool"
	case Choice:
		return "choice"
	}
	return fmt.Sprintf("option-type(%d)", int(t))
}

// Option declares one option a directive accepts.
type Option struct {
	Name    string
	Type    OptionType
	Default string
	Example string
	Choices []string
}

// ErrInvalidOption is wrapped by every option validation error.
var ErrInvalidOption = errors.New("invalid option")

// Options holds validated option values. Declared options that were not
// given carry their default.
type Options struct {
	values map[string]string
	given  map[string]bool
}

// ParseOptions checks raw option values against the declared options.
// Unknown names and malformed values are reported in the returned error;
// the valid remainder is still usable.
func ParseOptions(decl []Option, raw map[string]string) (Options, error) {
	o := Options{values: map[string]string{}, given: map[string]bool{}}
	for _, d := range decl {
		if d.Default != "" {
			o.values[d.Name] = d.Default
		}
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	slices.Sort(names)

	var errs []error
	for _, name := range names {
		value := strings.TrimSpace(raw[name])
		i := slices.IndexFunc(decl, func(d Option) bool { return d.Name == name })
		if i < 0 {
			errs = append(errs, fmt.Errorf("%w: unknown option %q", ErrInvalidOption, name))
			continue
		}
		if err := checkValue(decl[i], value); err != nil {
			errs = append(errs, err)
			continue
		}
		o.values[name] = value
		o.given[name] = true
	}
	return o, errors.Join(errs...)
}

func checkValue(d Option, value string) error {
	switch d.Type {
	case Flag:
		if value != "" {
			return fmt.Errorf("%w: %q is a flag and takes no value", ErrInvalidOption, d.Name)
		}
	case Int:
		if _, err := strconv.Atoi(value); err != nil {
			return fmt.Errorf("%w: %q must be an integer, got %q", ErrInvalidOption, d.Name, value)
		}
	case Bool:
		if _, ok := parseBool(value); !ok {
			return fmt.Errorf("%w: %q must be a boolean, got %q", ErrInvalidOption, d.Name, value)
		}
	case Choice:
		if !slices.Contains(d.Choices, value) {
			return fmt.Errorf("%w: %q must be one of %s, got %q",
				ErrInvalidOption, d.Name, strings.Join(d.Choices, ", "), value)
		}
	}
	return nil
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "", "true", "yes", "on", "1":
		return true, true
	case "false", "no", "off", "0":
		return false, true
	}
	return false, false
}

// Has reports whether the option was written in the source.
func (o Options) Has(name string) bool {
	return o.given[name]
}

// String returns the option value or its default.
func (o Options) String(name string) string {
	return o.values[name]
}

// Flag reports whether a flag option was given.
func (o Options) Flag(name string) bool {
	return o.given[name]
}

// Int returns an integer option, or 0 when unset.
func (o Options) Int(name string) int {
	n, _ := strconv.Atoi(o.values[name])
	return n
}

// Bool returns a boolean option, or false when unset.
func (o Options) Bool(name string) bool {
	if _, ok := o.values[name]; !ok {
		return false
	}
	b, _ := parseBool(o.values[name])
	return b
}

// Classes splits the conventional "class" option into class names.
func (o Options) Classes() []string {
	return strings.Fields(o.values["class"])
}
