// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package differ

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/apex/log"
	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"
)

// Delta writes a structural delta between two JSON documents to w and reports
// whether they differ. Top level keys named in omit are left out of the
// rendered left-hand document. Nothing is written when the documents are
// identical.
func Delta(w io.Writer, left, right []byte, omit []string) (bool, error) {
	log.Debugf("delta: len(left)=%d len(right)=%d", len(left), len(right))

	if len(left) == 0 || len(right) == 0 {
		return false, nil
	}

	delta, err := gojsondiff.New().Compare(left, right)
	if err != nil {
		return false, fmt.Errorf("failed to compare documents: %w", err)
	}

	if !delta.Modified() {
		return false, nil
	}

	var jdoc map[string]interface{}
	if err := json.Unmarshal(left, &jdoc); err != nil {
		return false, fmt.Errorf("failed to unmarshal document: %w", err)
	}

	for _, key := range omit {
		if key != "" {
			delete(jdoc, key)
		}
	}

	config := formatter.AsciiFormatterConfig{
		ShowArrayIndex: false,
		Coloring:       true,
	}

	text, err := formatter.NewAsciiFormatter(jdoc, config).Format(delta)
	if err != nil {
		return false, err
	}

	fmt.Fprintln(w, text)
	return true, nil
}
