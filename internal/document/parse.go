// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"gopkg.in/yaml.v3"

	"github.com/tfctl/rowsync/internal/attrs"
	"github.com/tfctl/rowsync/internal/driller"
	"github.com/tfctl/rowsync/internal/filters"
	"github.com/tfctl/rowsync/internal/log"
)

// Format is a document syntax.
type Format string

const (
	FormatAuto Format = ""
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
	FormatHCL  Format = "hcl"
)

// ParseFormat maps a --format value onto a Format.
func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(name))); f {
	case FormatAuto, FormatYAML, FormatJSON, FormatHCL:
		return f, nil
	case "yml":
		return FormatYAML, nil
	default:
		return FormatAuto, fmt.Errorf("unknown document format: %s", name)
	}
}

// DetectFormat picks a format from the name's extension, falling back to
// sniffing the content: valid JSON is JSON, anything else YAML.
func DetectFormat(name string, data []byte) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json":
		return FormatJSON
	case ".hcl":
		return FormatHCL
	}
	if gjson.ValidBytes(data) {
		return FormatJSON
	}
	return FormatYAML
}

// Options shape how rows are read. The zero value reads each row object's
// "key" and "text" fields and keeps every row.
type Options struct {
	Format  Format
	Attrs   attrs.AttrList
	Filters []filters.Filter
}

func (o Options) attrs() attrs.AttrList {
	if len(o.Attrs) == 0 {
		return attrs.Defaults()
	}
	return o.Attrs
}

// Parse decodes data and builds a validated Document. name labels errors and
// drives format detection.
func Parse(name string, data []byte, opts Options) (*Document, error) {
	format := opts.Format
	if format == FormatAuto {
		format = DetectFormat(name, data)
	}
	log.Debugf("parsing %s as %s: %d bytes", name, format, len(data))

	var tree interface{}
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &tree); err != nil {
			return nil, fmt.Errorf("%s: invalid yaml: %w", name, err)
		}
	case FormatJSON:
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("%s: invalid json", name)
		}
		tree = gjson.ParseBytes(data).Value()
	case FormatHCL:
		var err error
		if tree, err = decodeHCL(name, data); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%s: unknown document format: %s", name, format)
	}

	raw, err := Normalize(tree)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	doc, err := build(name, raw, opts)
	if err != nil {
		return nil, err
	}
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

// Normalize turns a decoded document tree into canonical JSON: a top level
// object whose sections each carry a rows array of objects. An empty
// document is an empty list.
func Normalize(tree interface{}) ([]byte, error) {
	if tree == nil {
		tree = map[string]interface{}{}
	}

	root, ok := stringKeys(tree).(map[string]interface{})
	if !ok {
		return nil, fmt.Errorf("document must be a mapping, got %T", tree)
	}

	sections, _ := root["sections"].([]interface{})
	if root["sections"] != nil && sections == nil {
		return nil, fmt.Errorf("sections must be a list, got %T", root["sections"])
	}
	if sections == nil {
		sections = []interface{}{}
	}

	for i, s := range sections {
		sec, ok := s.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("section %d must be a mapping, got %T", i, s)
		}
		rows, _ := sec["rows"].([]interface{})
		if sec["rows"] != nil && rows == nil {
			return nil, fmt.Errorf("section %d: rows must be a list, got %T", i, sec["rows"])
		}
		if rows == nil {
			rows = []interface{}{}
		}
		for j, r := range rows {
			if _, ok := r.(map[string]interface{}); ok {
				continue
			}
			if r == nil {
				return nil, fmt.Errorf("section %d: row %d is empty", i, j)
			}
			v := scalar(r)
			rows[j] = map[string]interface{}{attrs.KeyName: v, attrs.TextName: v}
		}
		sec["rows"] = rows
	}
	root["sections"] = sections

	return json.Marshal(root)
}

// stringKeys converts nested map[interface{}]interface{} values into
// map[string]interface{}.
func stringKeys(v interface{}) interface{} {
	switch t := v.(type) {
	case map[interface{}]interface{}:
		m := make(map[string]interface{}, len(t))
		for k, val := range t {
			m[fmt.Sprint(k)] = stringKeys(val)
		}
		return m
	case map[string]interface{}:
		for k, val := range t {
			t[k] = stringKeys(val)
		}
		return t
	case []interface{}:
		for i, val := range t {
			t[i] = stringKeys(val)
		}
		return t
	default:
		return v
	}
}

func scalar(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func build(name string, raw []byte, opts Options) (*Document, error) {
	root := gjson.ParseBytes(raw)
	doc := &Document{
		Source:  name,
		Editing: root.Get("editing").Bool(),
		Raw:     raw,
	}

	list := opts.attrs()
	for i, sec := range root.Get("sections").Array() {
		id, _ := driller.String(sec.Raw, "id")
		title, _ := driller.String(sec.Raw, "title")
		section := Section{ID: id, Title: title, Rows: []Row{}}

		for j, fields := range filters.Apply(sec.Get("rows").Array(), list, opts.Filters) {
			row, err := toRow(fields, list)
			if err != nil {
				return nil, fmt.Errorf("%s: section %d row %d: %w", name, i, j, err)
			}
			section.Rows = append(section.Rows, row)
		}

		doc.Sections = append(doc.Sections, section)
	}

	log.Debugf("built %s: sections=%d rows=%d", name, len(doc.Sections), doc.RowCount())
	return doc, nil
}

// toRow assembles a Row from filtered fields. Included attrs other than key
// and text are appended to the text.
func toRow(fields map[string]interface{}, list attrs.AttrList) (Row, error) {
	var row Row
	var extra []string

	for _, attr := range list {
		v := fields[attr.OutputKey]
		if attr.Key == "*" || v == nil {
			continue
		}
		s := scalar(attr.Transform(v))

		switch {
		case attr.OutputKey == attrs.KeyName:
			row.Key = s
		case attr.OutputKey == attrs.TextName:
			row.Text = s
		case attr.Include:
			extra = append(extra, s)
		}
	}

	switch {
	case row.Key == "" && row.Text == "":
		return Row{}, fmt.Errorf("row has neither key nor text")
	case row.Key == "":
		row.Key = row.Text
	case row.Text == "":
		row.Text = row.Key
	}

	if len(extra) > 0 {
		row.Text = strings.Join(append([]string{row.Text}, extra...), " ")
	}
	return row, nil
}
