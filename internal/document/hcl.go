// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/ext/tryfunc"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
	"github.com/zclconf/go-cty/cty/function/stdlib"
)

// HCL documents look like
//
//	editing = false
//
//	locals {
//	  owner = "me"
//	}
//
//	section "inbox" {
//	  title = upper("inbox")
//	  rows  = [{ key = "inv-1", text = "Pay rent" }, "Call ${local.owner}"]
//	}
var (
	hclRootSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "editing"}},
		Blocks: []hcl.BlockHeaderSchema{
			{Type: "locals"},
			{Type: "section", LabelNames: []string{"id"}},
		},
	}
	hclSectionSchema = &hcl.BodySchema{
		Attributes: []hcl.AttributeSchema{{Name: "title"}, {Name: "rows"}},
	}
)

// decodeHCL evaluates an HCL document into the same generic tree the YAML and
// JSON decoders produce.
func decodeHCL(name string, data []byte) (interface{}, error) {
	file, diags := hclsyntax.ParseConfig(data, name, hcl.InitialPos)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: invalid hcl: %s", name, diags.Error())
	}

	content, diags := file.Body.Content(hclRootSchema)
	if diags.HasErrors() {
		return nil, fmt.Errorf("%s: %s", name, diags.Error())
	}

	ctx := &hcl.EvalContext{Functions: hclFunctions()}

	locals := map[string]cty.Value{}
	for _, block := range content.Blocks.OfType("locals") {
		attrs, diags := block.Body.JustAttributes()
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: locals: %s", name, diags.Error())
		}
		for n, attr := range attrs {
			v, diags := attr.Expr.Value(ctx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%s: local.%s: %s", name, n, diags.Error())
			}
			locals[n] = v
		}
	}
	ctx.Variables = map[string]cty.Value{"local": cty.ObjectVal(locals)}

	root := map[string]interface{}{}
	if attr, ok := content.Attributes["editing"]; ok {
		v, diags := attr.Expr.Value(ctx)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: editing: %s", name, diags.Error())
		}
		root["editing"] = ctyToGo(v)
	}

	sections := []interface{}{}
	for _, block := range content.Blocks.OfType("section") {
		body, diags := block.Body.Content(hclSectionSchema)
		if diags.HasErrors() {
			return nil, fmt.Errorf("%s: section %q: %s", name, block.Labels[0], diags.Error())
		}

		sec := map[string]interface{}{"id": block.Labels[0]}
		for _, key := range []string{"title", "rows"} {
			attr, ok := body.Attributes[key]
			if !ok {
				continue
			}
			v, diags := attr.Expr.Value(ctx)
			if diags.HasErrors() {
				return nil, fmt.Errorf("%s: section %q: %s: %s", name, block.Labels[0], key, diags.Error())
			}
			sec[key] = ctyToGo(v)
		}
		sections = append(sections, sec)
	}
	root["sections"] = sections

	return root, nil
}

// hclFunctions is the function table available to HCL documents.
func hclFunctions() map[string]function.Function {
	return map[string]function.Function{
		"concat":     stdlib.ConcatFunc,
		"distinct":   stdlib.DistinctFunc,
		"flatten":    stdlib.FlattenFunc,
		"format":     stdlib.FormatFunc,
		"formatlist": stdlib.FormatListFunc,
		"join":       stdlib.JoinFunc,
		"length":     stdlib.LengthFunc,
		"lower":      stdlib.LowerFunc,
		"merge":      stdlib.MergeFunc,
		"range":      stdlib.RangeFunc,
		"replace":    stdlib.ReplaceFunc,
		"reverse":    stdlib.ReverseListFunc,
		"slice":      stdlib.SliceFunc,
		"sort":       stdlib.SortFunc,
		"split":      stdlib.SplitFunc,
		"title":      stdlib.TitleFunc,
		"trimspace":  stdlib.TrimSpaceFunc,
		"upper":      stdlib.UpperFunc,
		"can":        tryfunc.CanFunc,
		"try":        tryfunc.TryFunc,
	}
}

// ctyToGo converts an evaluated value into plain Go values. Unknown values
// become nil.
func ctyToGo(val cty.Value) interface{} {
	if val.IsNull() || !val.IsKnown() {
		return nil
	}

	ty := val.Type()
	switch {
	case ty == cty.Bool:
		return val.True()
	case ty == cty.Number:
		f, _ := val.AsBigFloat().Float64()
		return f
	case ty == cty.String:
		return val.AsString()
	case ty.IsTupleType() || ty.IsListType() || ty.IsSetType():
		result := []interface{}{}
		for it := val.ElementIterator(); it.Next(); {
			_, elem := it.Element()
			result = append(result, ctyToGo(elem))
		}
		return result
	case ty.IsObjectType() || ty.IsMapType():
		result := map[string]interface{}{}
		for it := val.ElementIterator(); it.Next(); {
			k, elem := it.Element()
			result[k.AsString()] = ctyToGo(elem)
		}
		return result
	default:
		return val.GoString()
	}
}
