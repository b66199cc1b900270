// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package filters

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/apex/log"
	"github.com/tidwall/gjson"

	"github.com/tfctl/rowsync/internal/attrs"
	"github.com/tfctl/rowsync/internal/driller"
)

// EnvDelim overrides the "," between filter expressions, for values that
// contain commas.
const EnvDelim = "ROWSYNC_FILTER_DELIM"

// filterRegex splits an expression into key, optionally negated operator and
// target.
var filterRegex = regexp.MustCompile(`^([^!?=^~<>@/]*)(!?[=^~<>@/])?(.*)$`)

// Filter is a single parsed --filter expression. An empty Operand tests that
// the key is present and truthy.
type Filter struct {
	Key     string `yaml:"key" json:"Key"`
	Negate  bool   `yaml:"negate" json:"Negate"`
	Operand string `yaml:"operand" json:"Operand"`
	Value   string `yaml:"value" json:"Value"`

	re *regexp.Regexp
}

// Parse splits spec on the delimiter and parses each expression. Empty
// expressions are skipped; an empty key or a bad regex is an error.
func Parse(spec string) ([]Filter, error) {
	delim := ","
	if d, ok := os.LookupEnv(EnvDelim); ok && d != "" {
		delim = d
	}

	var filters []Filter
	for _, expr := range strings.Split(spec, delim) {
		expr = strings.TrimSpace(expr)
		if expr == "" {
			continue
		}

		f, err := parseOne(expr)
		if err != nil {
			return nil, err
		}
		filters = append(filters, f)
	}

	log.Debugf("filters parsed: %d from %q", len(filters), spec)
	return filters, nil
}

func parseOne(expr string) (Filter, error) {
	// "!done" negates a presence test.
	if strings.HasPrefix(expr, "!") && !strings.ContainsAny(expr[1:], "!=^~<>@/") {
		key := strings.TrimSpace(expr[1:])
		if key == "" {
			return Filter{}, fmt.Errorf("invalid filter %q: empty key", expr)
		}
		return Filter{Key: key, Negate: true}, nil
	}

	parts := filterRegex.FindStringSubmatch(expr)
	f := Filter{
		Key:     strings.TrimSpace(parts[1]),
		Operand: parts[2],
		Value:   parts[3],
	}
	if f.Key == "" {
		return Filter{}, fmt.Errorf("invalid filter %q: empty key", expr)
	}

	if strings.HasPrefix(f.Operand, "!") {
		f.Negate = true
		f.Operand = f.Operand[1:]
	}

	if f.Operand == "/" {
		re, err := regexp.Compile(f.Value)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid filter %q: %w", expr, err)
		}
		f.re = re
	}

	return f, nil
}

// Apply keeps the rows matching every filter, each reduced to a map of attr
// output name to raw value. Transforms are left to the caller.
func Apply(rows []gjson.Result, list attrs.AttrList, filters []Filter) []map[string]interface{} {
	kept := make([]map[string]interface{}, 0, len(rows))
	for _, row := range rows {
		if !Match(row, list, filters) {
			continue
		}

		fields := make(map[string]interface{}, len(list))
		for _, attr := range list {
			if attr.Key == "*" {
				continue
			}
			fields[attr.OutputKey] = driller.Driller(row.Raw, attr.Key).Value()
		}
		kept = append(kept, fields)
	}
	return kept
}

// Match reports whether row satisfies every filter. Filter keys name attr
// output names; a key with no attr is logged and ignored.
func Match(row gjson.Result, list attrs.AttrList, filters []Filter) bool {
	for _, filter := range filters {
		attr, ok := list.Lookup(filter.Key)
		if !ok {
			log.Warnf("filter key not found: %s", filter.Key)
			continue
		}

		value := driller.Driller(row.Raw, attr.Key).Value()
		if !check(value, filter) {
			return false
		}
	}
	return true
}

func check(value interface{}, filter Filter) bool {
	if filter.Operand == "" {
		return truthy(value) != filter.Negate
	}
	if value == nil {
		return false
	}

	switch v := value.(type) {
	case string:
		return checkStringOperand(v, filter)
	case bool:
		return checkStringOperand(strconv.FormatBool(v), filter)
	}
	if num, ok := toFloat64(value); ok {
		return checkNumericOperand(num, filter)
	}
	if filter.Operand == "@" {
		return checkContainsOperand(value, filter)
	}
	return true
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case []interface{}:
		return len(v) > 0
	case map[string]interface{}:
		return len(v) > 0
	}
	if num, ok := toFloat64(value); ok {
		return num != 0
	}
	return true
}

// checkContainsOperand tests membership in an array or map value.
func checkContainsOperand(value interface{}, filter Filter) bool {
	switch val := value.(type) {
	case []interface{}:
		for _, item := range val {
			if fmt.Sprint(item) == filter.Value {
				return !filter.Negate
			}
		}
		return filter.Negate
	case map[string]interface{}:
		_, found := val[filter.Value]
		return found != filter.Negate
	default:
		log.Errorf("unsupported type for contains filtering: %T", value)
		return false
	}
}

// checkNumericOperand supports =, > and <.
func checkNumericOperand(value float64, filter Filter) bool {
	tgt, err := strconv.ParseFloat(strings.TrimSpace(filter.Value), 64)
	if err != nil {
		log.Errorf("invalid numeric value: %s", filter.Value)
		return false
	}

	switch filter.Operand {
	case "=":
		return (value == tgt) != filter.Negate
	case ">":
		return (value > tgt) != filter.Negate
	case "<":
		return (value < tgt) != filter.Negate
	default:
		log.Errorf("unsupported numeric operand: %s", filter.Operand)
		return false
	}
}

func checkStringOperand(value string, filter Filter) bool {
	var ok bool
	switch filter.Operand {
	case "=":
		ok = value == filter.Value
	case "~":
		ok = strings.EqualFold(value, filter.Value)
	case "^":
		ok = strings.HasPrefix(value, filter.Value)
	case ">":
		ok = value > filter.Value
	case "<":
		ok = value < filter.Value
	case "@":
		ok = strings.Contains(value, filter.Value)
	case "/":
		re := filter.re
		if re == nil {
			var err error
			if re, err = regexp.Compile(filter.Value); err != nil {
				log.Errorf("invalid regex: %s", filter.Value)
				return false
			}
		}
		ok = re.MatchString(value)
	default:
		log.Errorf("unsupported filtering operand: %s", filter.Operand)
		return false
	}
	return ok != filter.Negate
}

// toFloat64 normalizes numeric types.
func toFloat64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	case uint32:
		return float64(n), true
	default:
		return 0, false
	}
}
