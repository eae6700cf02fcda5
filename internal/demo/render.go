package demo

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by --output.
const (
	FormatTable = "table"
	FormatWide  = "wide"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

func render(w io.Writer, format string, resources []Resource) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(resources)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(resources); err != nil {
			return err
		}
		return enc.Close()
	default:
		if len(resources) == 0 {
			_, err := fmt.Fprintln(w, "No resources found.")
			return err
		}
		_, err := fmt.Fprintln(w, renderTable(format == FormatWide, resources))
		return err
	}
}

func renderTable(wide bool, resources []Resource) string {
	headers := []string{"NAME", "STATUS"}
	if wide {
		headers = append(headers, "NAMESPACE", "LABELS")
	}
	rows := make([][]string, 0, len(resources))
	for _, r := range resources {
		row := []string{r.Name, r.Status}
		if wide {
			row = append(row, r.Namespace, formatLabels(r.Labels))
		}
		rows = append(rows, row)
	}
	return table.New().
		Border(lipgloss.HiddenBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers(headers...).
		Rows(rows...).
		String()
}

func formatLabels(labels map[string]string) string {
	if len(labels) == 0 {
		return "<none>"
	}
	pairs := make([]string, 0, len(labels))
	for k, v := range labels {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return strings.Join(pairs, ",")
}

func describe(w io.Writer, r Resource) error {
	rows := [][2]string{
		{"Name:", r.Name},
		{"Kind:", r.Kind},
		{"Namespace:", r.Namespace},
		{"Status:", r.Status},
		{"Labels:", formatLabels(r.Labels)},
	}
	label := lipgloss.NewStyle().Width(12)
	for _, row := range rows {
		if _, err := fmt.Fprintln(w, label.Render(row[0])+row[1]); err != nil {
			return err
		}
	}
	return nil
}
