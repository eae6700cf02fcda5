package flagtree

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

var (
	errNotBool      = errors.New("not a boolean")
	errNotInChoices = errors.New("not one of the allowed values")
	errOutOfRange   = errors.New("out of range")
	errNotFile      = errors.New("not a file")
	errNotDirectory = errors.New("not a directory")
)

// boolValue accepts the usual spellings of yes and no.
type boolValue struct {
	value bool
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "1", "yes", "y":
		return true, nil
	case "false", "f", "0", "no", "n":
		return false, nil
	default:
		return false, errNotBool
	}
}

func (b *boolValue) Set(s string) error {
	v, err := parseBool(s)
	if err != nil {
		return err
	}
	b.value = v
	return nil
}

func (b *boolValue) String() string   { return strconv.FormatBool(b.value) }
func (b *boolValue) Type() string     { return "bool" }
func (b *boolValue) IsBoolFlag() bool { return true }

// choiceValue holds one member of a fixed set.
type choiceValue struct {
	value   string
	choices []string
}

func (c *choiceValue) Set(s string) error {
	if !lo.Contains(c.choices, s) {
		return fmt.Errorf("%w: %s", errNotInChoices, strings.Join(c.choices, ", "))
	}
	c.value = s
	return nil
}

func (c *choiceValue) String() string { return c.value }
func (c *choiceValue) Type() string   { return "choice" }

// rangeValue holds an integer within [min, max].
type rangeValue struct {
	value    int64
	min, max int64
}

func (r *rangeValue) Set(s string) error {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 0, 64)
	if err != nil {
		return err
	}
	if n < r.min || n > r.max {
		return fmt.Errorf("%w: %d is not between %d and %d", errOutOfRange, n, r.min, r.max)
	}
	r.value = n
	return nil
}

func (r *rangeValue) String() string { return strconv.FormatInt(r.value, 10) }
func (r *rangeValue) Type() string   { return "range" }

// pathValue holds the path of an existing file or directory.
type pathValue struct {
	value string
	dir   bool
}

func (p *pathValue) Set(s string) error {
	info, err := os.Stat(s)
	if err != nil {
		return err
	}
	switch {
	case p.dir && !info.IsDir():
		return errNotDirectory
	case !p.dir && info.IsDir():
		return errNotFile
	}
	p.value = s
	return nil
}

func (p *pathValue) String() string { return p.value }

func (p *pathValue) Type() string {
	if p.dir {
		return "dir"
	}
	return "file"
}
