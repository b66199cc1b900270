// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package output

import (
	"encoding/json"
	"fmt"
	"image/color"
	"io"
	"os"
	"reflect"
	"strconv"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/lipgloss/v2/table"
	"github.com/tidwall/gjson"
	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v2"

	"github.com/tfctl/rowsync/internal/attrs"
	"github.com/tfctl/rowsync/internal/config"
	"github.com/tfctl/rowsync/internal/filters"
	"github.com/tfctl/rowsync/internal/log"
)

// Formats accepted by --output.
var Formats = []string{"text", "json", "yaml", "raw"}

// InterfaceToString converts supported primitive or composite values to a
// string. A custom empty value may be provided for nil and zero values.
func InterfaceToString(value interface{}, emptyValue ...string) string {
	if len(emptyValue) == 0 {
		emptyValue = []string{""}
	}

	if value == nil || reflect.ValueOf(value).IsZero() {
		return emptyValue[0]
	}

	switch value := value.(type) {
	case string:
		return value
	case int:
		return strconv.Itoa(value)
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		jsonBytes, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(jsonBytes)
	}
}

// SliceDiceSpit filters, transforms, sorts and renders raw, a JSON array of
// objects, according to the command's --output, --filter and --sort flags.
// Header and footer lines come from cmd.Metadata and are only printed for
// text output. postProcess hooks run after sorting.
func SliceDiceSpit(raw []byte, list attrs.AttrList, cmd *cli.Command, w io.Writer, postProcess ...func([]map[string]interface{}) error) error {
	if w == nil {
		w = os.Stdout
	}

	output := cmd.String("output")
	if output == "raw" {
		_, err := w.Write(raw)
		return err
	}

	if !gjson.ValidBytes(raw) {
		return fmt.Errorf("invalid dataset")
	}

	fs, err := filters.Parse(cmd.String("filter"))
	if err != nil {
		return err
	}
	rows := gjson.ParseBytes(raw).Array()
	dataset := filters.Apply(rows, list, fs)
	log.Debugf("dataset: %d rows, %d after filters", len(rows), len(dataset))

	for _, row := range dataset {
		for _, attr := range list {
			if attr.TransformSpec != "" {
				row[attr.OutputKey] = attr.Transform(row[attr.OutputKey])
			}
		}
	}

	SortDataset(dataset, cmd.String("sort"))

	for _, pp := range postProcess {
		if err := pp(dataset); err != nil {
			return err
		}
	}

	switch output {
	case "json":
		b, err := json.Marshal(dataset)
		if err != nil {
			return fmt.Errorf("failed to marshal json: %w", err)
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	case "yaml":
		b, err := yaml.Marshal(dataset)
		if err != nil {
			return fmt.Errorf("failed to marshal yaml: %w", err)
		}
		_, err = w.Write(b)
		return err
	default:
		TableWriter(dataset, list, cmd, w)
		return nil
	}
}

// TableWriter renders the result set in a tabular form honoring the color,
// titles and padding flags.
func TableWriter(resultSet []map[string]interface{}, list attrs.AttrList, cmd *cli.Command, w io.Writer) {
	if w == nil {
		w = os.Stdout
	}

	var (
		headerStyle  = lipgloss.NewStyle().Align(lipgloss.Left).Bold(true)
		cellStyle    = lipgloss.NewStyle().Padding(0, 0).Align(lipgloss.Left)
		evenRowStyle = cellStyle
		oddRowStyle  = cellStyle
	)

	if cmd.Bool("color") {
		headerColor, evenColor, oddColor := getColors("colors")

		headerStyle = headerStyle.Foreground(headerColor)
		evenRowStyle = evenRowStyle.Foreground(evenColor)
		oddRowStyle = oddRowStyle.Foreground(oddColor)
	}

	if header, ok := cmd.Metadata["header"].(string); ok && header != "" {
		fmt.Fprintln(w, headerStyle.Render(header))
	}

	if len(resultSet) > 0 {
		var rows [][]string
		for _, result := range resultSet {
			row := make([]string, 0, len(list))
			for _, attr := range list {
				if attr.Include {
					row = append(row, InterfaceToString(result[attr.OutputKey], "-"))
				}
			}
			rows = append(rows, row)
		}

		pad := cmd.Int("padding")
		t := table.New().
			BorderBottom(false).
			BorderTop(false).
			BorderLeft(false).
			BorderRight(false).
			Border(lipgloss.HiddenBorder()).
			StyleFunc(func(row, col int) lipgloss.Style {
				var style lipgloss.Style
				switch {
				case row == table.HeaderRow:
					style = headerStyle
				case row%2 == 0:
					style = evenRowStyle
				default:
					style = oddRowStyle
				}

				if col > 0 {
					style = style.PaddingLeft(pad)
				}

				return style
			}).
			Headers().
			Rows(rows...)

		if cmd.Bool("titles") {
			var headers []string
			for _, attr := range list {
				if attr.Include {
					headers = append(headers, attr.OutputKey)
				}
			}

			// https://github.com/charmbracelet/lipgloss/issues/261
			t = t.Headers(headers...).BorderHeader(false)
		}
		fmt.Fprintln(w, t)
	}

	if footer, ok := cmd.Metadata["footer"].(string); ok && footer != "" {
		fmt.Fprintln(w, headerStyle.Render(footer))
	}
}

// getColors returns the configured table colors. Unset colors are picked to
// suit the terminal background.
func getColors(key string) (header, even, odd color.Color) {
	isDark := lipgloss.HasDarkBackground(os.Stdin, os.Stdout)

	resolveColor := func(key string, light string, dark string) color.Color {
		colorCfg, err := config.GetString(key)
		if err == nil {
			return lipgloss.Color(colorCfg)
		}

		if isDark {
			return lipgloss.Color(dark)
		}
		return lipgloss.Color(light)
	}

	header = resolveColor(key+".title", "#b08800", "#f6be00")
	even = resolveColor(key+".even", "#333333", "#ffffff")
	odd = resolveColor(key+".odd", "#0088a0", "#00c8f0")

	return
}
