// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

// Package attrs maps fields of document row objects onto row roles. Each
// --attrs spec is path[:name[:transform]]; the names "key" and "text" feed the
// row identity and its displayed text, other included names are appended to
// the text and excluded (!) names only serve filters.
package attrs

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/tfctl/rowsync/internal/log"
)

const (
	// KeyName is the output name of the attr that identifies a row.
	KeyName = "key"
	// TextName is the output name of the attr holding the row text.
	TextName = "text"
)

var lengthRegex = regexp.MustCompile(`-?\d+`)

// Attr is one row field. Key is the driller path inside the row object.
type Attr struct {
	Key string `yaml:"key" json:"Key"`
	// Should this Attr contribute to the row text or is it just
	// intended for filtering?
	Include       bool   `yaml:"include" json:"Include"`
	OutputKey     string `yaml:"outputKey" json:"OutputKey"`
	TransformSpec string `yaml:"transformSpec" json:"TransformSpec"`
}

// Transform applies the attr's transform spec to value. Only strings are
// transformed; anything else is returned unchanged.
func (a *Attr) Transform(value interface{}) interface{} {
	result, ok := value.(string)
	if !ok {
		log.Tracef("non-string value: value=%v", value)
		return value
	}

	// Convert UTC time to local or time ago.
	if strings.ContainsAny(a.TransformSpec, "tT") {
		if t, err := time.Parse(time.RFC3339, result); err == nil {
			local := t.In(time.Now().Location())
			if strings.Contains(a.TransformSpec, "T") {
				result = humanize.Time(local)
				log.Tracef("time ago: result=%s", result)
			} else {
				result = local.Format("2006-01-02T15:04:05MST")
				log.Tracef("time local: result=%s", result)
			}
		}
	}

	// The last case letter wins so a per-attr spec overrides a global one
	// prepended by SetGlobalTransformSpec.
	lastL := strings.LastIndexAny(a.TransformSpec, "lL")
	lastU := strings.LastIndexAny(a.TransformSpec, "uU")

	if lastL > lastU {
		result = strings.ToLower(result)
	} else if lastU > lastL {
		result = strings.ToUpper(result)
	}

	// Length: n truncates, -n elides the middle. Last one wins.
	match := lengthRegex.FindAllString(a.TransformSpec, -1)
	if len(match) != 0 {
		l, _ := strconv.Atoi(match[len(match)-1])
		abs := int(math.Abs(float64(l)))
		if len(result) > abs {
			if l < 0 {
				lr := max(abs/2-1, 0)
				result = result[0:lr] + ".." + result[len(result)-lr:]
				log.Tracef("length middle: result=%s", result)
			} else {
				result = result[:l]
				log.Tracef("length trunc: result=%s", result)
			}
		}
	}

	return result
}

// AttrList is a collection of Attr. The zero value has no attrs; see Defaults.
type AttrList []Attr

// Defaults returns the attrs used when a document row object is read as-is:
// its "key" and "text" fields.
func Defaults() AttrList {
	return AttrList{
		{Key: KeyName, Include: true, OutputKey: KeyName},
		{Key: TextName, Include: true, OutputKey: TextName},
	}
}

// Set parses a comma separated list of specs and merges them into the list.
func (a *AttrList) Set(value string) error {
	if value == "" || value == "*" {
		log.Debugf("early return: value=%s", value)
		return nil
	}

	const (
		pathIdx = iota
		outputIdx
		transformIdx
	)

	specs := strings.Split(value, ",")
	log.Debugf("specs split: specs=%v", specs)
specloop:
	for _, spec := range specs {
		if strings.TrimSpace(spec) == "" {
			continue
		}

		attr := Attr{Include: true}
		fields := strings.Split(spec, ":")
		if len(fields) > transformIdx+1 {
			return fmt.Errorf("invalid attr spec %q: too many fields", spec)
		}

		attr.Key = strings.TrimSpace(fields[pathIdx])
		if strings.HasPrefix(attr.Key, "!") {
			attr.Include = false
			attr.Key = attr.Key[1:]
		}
		attr.Key = strings.TrimPrefix(attr.Key, ".")
		if attr.Key == "" {
			return fmt.Errorf("invalid attr spec %q: empty path", spec)
		}
		if attr.Key == "*" {
			attr.Include = false
		}

		// The output name defaults to the last segment of the path.
		if len(fields) > outputIdx && strings.TrimSpace(fields[outputIdx]) != "" {
			attr.OutputKey = strings.TrimSpace(fields[outputIdx])
		} else {
			segments := strings.Split(attr.Key, ".")
			attr.OutputKey = segments[len(segments)-1]
		}

		if len(fields) > transformIdx {
			attr.TransformSpec = strings.TrimSpace(fields[transformIdx])
		}
		log.Tracef("attr parsed: key=%s, output=%s, include=%v, spec=%s",
			attr.Key, attr.OutputKey, attr.Include, attr.TransformSpec)

		// A spec naming an existing attr (by path or output name) replaces it in
		// place, which is how "key" and "text" get remapped.
		for i := range *a {
			if (*a)[i].OutputKey == attr.OutputKey || ((*a)[i].Key == attr.Key && attr.Key != "*") {
				(*a)[i] = attr
				continue specloop
			}
		}

		*a = append(*a, attr)
	}

	return nil
}

// SetGlobalTransformSpec prepends the spec of the "*" attr, if any, to every
// attr's spec.
func (a *AttrList) SetGlobalTransformSpec() error {
	spec := ""
	for i := range *a {
		if (*a)[i].Key == "*" {
			spec = (*a)[i].TransformSpec
			break
		}
	}

	if spec == "" {
		return nil
	}
	log.Debugf("global spec: spec=%s", spec)

	for i := range *a {
		(*a)[i].TransformSpec = spec + "," + (*a)[i].TransformSpec
	}

	return nil
}

// Lookup returns the attr with the given output name.
func (a AttrList) Lookup(outputKey string) (Attr, bool) {
	for _, attr := range a {
		if attr.OutputKey == outputKey {
			return attr, true
		}
	}
	return Attr{}, false
}

// String renders the list in --attrs form.
func (a *AttrList) String() string {
	result := make([]string, 0, len(*a))
	for _, attr := range *a {
		key := attr.Key
		if !attr.Include && key != "*" {
			key = "!" + key
		}
		result = append(result, fmt.Sprintf("%s:%s:%s", key, attr.OutputKey, attr.TransformSpec))
	}
	return strings.Join(result, ",")
}

// Type returns the flag type for use with the flag.Value interface.
func (a *AttrList) Type() string { return "list" }
