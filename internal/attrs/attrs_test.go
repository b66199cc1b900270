// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package attrs

import (
	"embed"
	"fmt"
	"testing"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

//go:embed testdata/*.yaml
var testdata embed.FS

// cases decodes the YAML case list in testdata/name.
func cases[T any](t *testing.T, name string) []T {
	t.Helper()
	data, err := testdata.ReadFile("testdata/" + name)
	require.NoError(t, err)

	var out []T
	require.NoError(t, yaml.Unmarshal(data, &out))
	require.NotEmpty(t, out, name)
	return out
}

func TestSet(t *testing.T) {
	type setCase struct {
		Name      string `yaml:"name"`
		Initial   []Attr `yaml:"initial"`
		Value     string `yaml:"value"`
		WantLen   int    `yaml:"wantLen"`
		WantAttrs []Attr `yaml:"wantAttrs"`
		WantErr   bool   `yaml:"wantErr"`
	}

	for _, tt := range cases[setCase](t, "set_cases.yaml") {
		t.Run(tt.Name, func(t *testing.T) {
			list := AttrList(tt.Initial)
			err := list.Set(tt.Value)
			if tt.WantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)
			require.Len(t, list, tt.WantLen)
			for i, want := range tt.WantAttrs {
				assert.Equal(t, want, list[i], "attr %d", i)
			}
		})
	}
}

func TestTransform(t *testing.T) {
	type transformCase struct {
		Name          string      `yaml:"name"`
		TransformSpec string      `yaml:"transformSpec"`
		Input         interface{} `yaml:"input"`
		Want          interface{} `yaml:"want"`
	}

	// Time expectations depend on the local zone and the clock, so the
	// fixtures name them and they are computed here.
	dynamic := map[string]func(time.Time) string{
		"DYNAMIC_LOCAL_TIME": func(ts time.Time) string {
			return ts.In(time.Now().Location()).Format("2006-01-02T15:04:05MST")
		},
		"DYNAMIC_RELATIVE_TIME": func(ts time.Time) string {
			return humanize.Time(ts.In(time.Now().Location()))
		},
	}

	for _, tt := range cases[transformCase](t, "transform_cases.yaml") {
		t.Run(tt.Name, func(t *testing.T) {
			attr := Attr{TransformSpec: tt.TransformSpec}
			got := attr.Transform(tt.Input)

			if name, ok := tt.Want.(string); ok && dynamic[name] != nil {
				ts, err := time.Parse(time.RFC3339, fmt.Sprint(tt.Input))
				require.NoError(t, err)
				assert.Equal(t, dynamic[name](ts), fmt.Sprint(got))
				return
			}
			assert.Equal(t, tt.Want, got)
		})
	}
}

func TestSetGlobalTransformSpec(t *testing.T) {
	list := AttrList{
		{Key: "*", OutputKey: "*", TransformSpec: "l"},
		{Key: KeyName, OutputKey: KeyName},
		{Key: "title", OutputKey: TextName, TransformSpec: "U"},
	}
	require.NoError(t, list.SetGlobalTransformSpec())
	assert.Equal(t, "l,l", list[0].TransformSpec)
	assert.Equal(t, "l,", list[1].TransformSpec)
	assert.Equal(t, "l,U", list[2].TransformSpec)

	// Without a "*" attr nothing changes.
	plain := Defaults()
	plain[1].TransformSpec = "U"
	require.NoError(t, plain.SetGlobalTransformSpec())
	assert.Equal(t, "", plain[0].TransformSpec)
	assert.Equal(t, "U", plain[1].TransformSpec)
}

func TestString(t *testing.T) {
	tests := []struct {
		name string
		list AttrList
		want string
	}{
		{name: "empty", want: ""},
		{name: "defaults", list: Defaults(), want: "key:key:,text:text:"},
		{
			name: "excluded and transformed",
			list: AttrList{
				{Key: "title", Include: true, OutputKey: TextName, TransformSpec: "U10"},
				{Key: "meta.priority", OutputKey: "prio"},
			},
			want: "title:text:U10,!meta.priority:prio:",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.list.String())
			assert.Equal(t, "list", tt.list.Type())
		})
	}
}

func TestDefaults(t *testing.T) {
	d := Defaults()
	require.Len(t, d, 2)

	key, ok := d.Lookup(KeyName)
	require.True(t, ok)
	assert.Equal(t, "key", key.Key)
	assert.True(t, key.Include)

	text, ok := d.Lookup(TextName)
	require.True(t, ok)
	assert.Equal(t, "text", text.Key)

	_, ok = d.Lookup("due")
	assert.False(t, ok)

	// Defaults hands out a fresh list each time.
	d[0].Key = "id"
	assert.Equal(t, "key", Defaults()[0].Key)
}

func TestSetRemapsRowRoles(t *testing.T) {
	list := Defaults()
	require.NoError(t, list.Set("id:key,title:text:U,!done"))
	require.Len(t, list, 3)

	key, _ := list.Lookup(KeyName)
	assert.Equal(t, Attr{Key: "id", Include: true, OutputKey: KeyName}, key)
	text, _ := list.Lookup(TextName)
	assert.Equal(t, Attr{Key: "title", Include: true, OutputKey: TextName, TransformSpec: "U"}, text)
	done, _ := list.Lookup("done")
	assert.False(t, done.Include)
}
