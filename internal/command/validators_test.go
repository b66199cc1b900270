// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tfctl/rowsync/internal/reconciler"
)

func TestValidators(t *testing.T) {
	tests := []struct {
		name      string
		validator FlagValidatorType
		value     any
		wantErr   bool
	}{
		{"output text", OutputValidator, "text", false},
		{"output raw", OutputValidator, "raw", false},
		{"output xml", OutputValidator, "xml", true},
		{"output not a string", OutputValidator, 1, true},
		{"engine lcs", EngineValidator, "lcs", false},
		{"engine empty", EngineValidator, "", false},
		{"engine bogus", EngineValidator, "patience", true},
		{"format yml", FormatValidator, "yml", false},
		{"format toml", FormatValidator, "toml", true},
		{"animation rows", AnimationValidator, "rows", false},
		{"animation bogus", AnimationValidator, "spin", true},
		{"transitions one", TransitionsValidator, "fade", false},
		{"transitions bogus", TransitionsValidator, "fade,wobble", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.validator)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParseTransitions(t *testing.T) {
	got, err := parseTransitions("fade")
	require.NoError(t, err)
	assert.Equal(t, [3]reconciler.Transition{reconciler.TransitionFade, reconciler.TransitionFade, reconciler.TransitionFade}, got)

	got, err = parseTransitions("none, top")
	require.NoError(t, err)
	assert.Equal(t, [3]reconciler.Transition{reconciler.TransitionNone, reconciler.TransitionTop, reconciler.TransitionTop}, got)

	_, err = parseTransitions("fade,left,right,top")
	assert.Error(t, err)
}
