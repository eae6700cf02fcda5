package flagtree

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"
)

// writeHelp renders the help of the resolved command of ctx.
func (c *Command) writeHelp(ctx *Context) error {
	text := renderHelp(newFlagScope(ctx.chain))
	if _, err := io.WriteString(c.OutOrStdout(), text); err != nil {
		return ioError("write help", err)
	}
	return nil
}

// HelpText renders the help of c as if it were the root command.
func (c *Command) HelpText() string {
	return renderHelp(newFlagScope([]*Command{c}))
}

type helpRow struct {
	left, right string
}

// renderRows aligns rows in two columns.
func renderRows(b *strings.Builder, rows []helpRow) {
	width := lo.Max(lo.Map(rows, func(r helpRow, _ int) int { return lipgloss.Width(r.left) }))
	col := lipgloss.NewStyle().Width(width + 3)
	for _, r := range rows {
		if r.right == "" {
			b.WriteString("  " + r.left + "\n")
			continue
		}
		b.WriteString("  " + col.Render(r.left) + r.right + "\n")
	}
}

func renderHelp(scope *flagScope) string {
	chain := scope.chain
	leaf := chain[len(chain)-1]
	path := strings.Join(lo.Map(chain, func(c *Command, _ int) string { return c.Name }), " ")

	var b strings.Builder
	switch {
	case leaf.Long != "":
		b.WriteString(strings.TrimSpace(leaf.Long) + "\n\n")
	case leaf.Short != "":
		b.WriteString(leaf.Short + "\n\n")
	}

	b.WriteString("Usage:\n")
	if leaf.Runnable() {
		fmt.Fprintf(&b, "  %s [flags]\n", path)
	}
	visible := lo.Filter(leaf.children, func(c *Command, _ int) bool { return !c.Hidden })
	if len(visible) > 0 {
		fmt.Fprintf(&b, "  %s [command]\n", path)
	}

	if len(leaf.Aliases) > 0 {
		b.WriteString("\nAliases:\n")
		b.WriteString("  " + strings.Join(leaf.names(), ", ") + "\n")
	}

	if leaf.Example != "" {
		b.WriteString("\nExamples:\n")
		b.WriteString(strings.TrimRight(leaf.Example, "\n") + "\n")
	}

	writeCommandGroups(&b, visible)

	var local, inherited []helpRow
	var required []helpRow
	for _, f := range scope.order {
		if f.Hidden {
			continue
		}
		row := flagRow(f, scope)
		switch {
		case scope.inherited(f):
			inherited = append(inherited, row)
		case f.Required:
			required = append(required, row)
		default:
			local = append(local, row)
		}
	}
	if scope.help != nil {
		local = append(local, flagRow(scope.help, scope))
	}
	if len(required) > 0 {
		b.WriteString("\nRequired Flags:\n")
		renderRows(&b, required)
	}
	if len(local) > 0 {
		b.WriteString("\nFlags:\n")
		renderRows(&b, local)
	}
	if len(inherited) > 0 {
		b.WriteString("\nGlobal Flags:\n")
		renderRows(&b, inherited)
	}

	if len(visible) > 0 {
		fmt.Fprintf(&b, "\nUse \"%s [command] --help\" for more information about a command.\n", path)
	}
	return b.String()
}

// writeCommandGroups lists ungrouped commands first, then each group in order of first appearance.
func writeCommandGroups(b *strings.Builder, commands []*Command) {
	if len(commands) == 0 {
		return
	}
	groups := lo.Uniq(lo.Map(commands, func(c *Command, _ int) string { return c.Group }))
	// Ungrouped commands come first.
	groups = append(lo.Filter(groups, func(g string, _ int) bool { return g == "" }),
		lo.Filter(groups, func(g string, _ int) bool { return g != "" })...)

	for _, g := range groups {
		title := "Available Commands:"
		if g != "" {
			title = g + " Commands:"
		}
		b.WriteString("\n" + title + "\n")
		members := lo.Filter(commands, func(c *Command, _ int) bool { return c.Group == g })
		renderRows(b, lo.Map(members, func(c *Command, _ int) helpRow {
			return helpRow{left: c.Name, right: c.Short}
		}))
	}
}

func flagRow(f *Flag, scope *flagScope) helpRow {
	left := "    --" + f.Name
	if f.Shorthand != 0 && scope.byShort[f.Shorthand] == f {
		left = "-" + string(f.Shorthand) + ", --" + f.Name
	}
	if f.Type != TypeBool {
		left += " " + f.TypeLabel()
	}
	right := f.Usage
	if def := defaultText(f); def != "" {
		right = strings.TrimSpace(right + " " + def)
	}
	return helpRow{left: left, right: right}
}

func defaultText(f *Flag) string {
	if f.Default == "" {
		return ""
	}
	switch f.Type {
	case TypeString, TypeChoice, TypeFile, TypeDirectory:
		return fmt.Sprintf("(default %q)", f.Default)
	case TypeStringSlice, TypeStringArray:
		return fmt.Sprintf("(default [%s])", f.Default)
	case TypeBool:
		if v, err := parseBool(f.Default); err == nil && !v {
			return ""
		}
		return "(default true)"
	default:
		return "(default " + f.Default + ")"
	}
}
