package knowledge

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format identifies a knowledge document encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ErrMalformedDocument is returned when a document is not a mapping at its root.
var ErrMalformedDocument = errors.New("malformed knowledge document")

const (
	maxNesting = 64
	// One decoded value per 8 bytes of the largest accepted document.
	maxYAMLNodes = maxDocumentBytes / 8
)

var (
	errTooDeep  = fmt.Errorf("nesting deeper than %d levels", maxNesting)
	errTooLarge = fmt.Errorf("document expands to more than %d values", maxYAMLNodes)
)

// FormatFor picks a format from a path or object key extension. JSON is the default.
func FormatFor(name string) Format {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// field and orderedMap keep the key order of the source document.
type field struct {
	key   string
	value any
}

type orderedMap []field

func (o orderedMap) get(key string) (any, bool) {
	for i := len(o) - 1; i >= 0; i-- {
		if o[i].key == key {
			return o[i].value, true
		}
	}
	return nil, false
}

// Parse decodes a knowledge document. Missing sections become empty collections;
// malformed sections degrade rather than fail.
func Parse(data []byte, format Format) (*Base, error) {
	var (
		root any
		err  error
	)
	switch format {
	case FormatYAML:
		root, err = parseYAML(data)
	default:
		root, err = parseJSON(data)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedDocument, err)
	}
	doc, ok := root.(orderedMap)
	if !ok {
		return nil, fmt.Errorf("%w: root must be a mapping", ErrMalformedDocument)
	}
	return New(contentsFrom(doc)), nil
}

func contentsFrom(doc orderedMap) Contents {
	var c Contents

	if raw, ok := doc.get("explanations"); ok {
		if explanations, ok := raw.(orderedMap); ok {
			for _, f := range explanations {
				if exp := explanationFrom(f.value); exp != nil {
					c.Explanations = append(c.Explanations, Entry{Key: f.key, Explanation: exp})
				}
			}
		}
	}

	if raw, ok := doc.get("risk_categories"); ok {
		if categories, ok := raw.(orderedMap); ok {
			for _, f := range categories {
				c.RiskCategories = append(c.RiskCategories, categoryFrom(f.key, f.value))
			}
		}
	}

	if raw, ok := doc.get("important_clauses"); ok {
		c.ImportantClauses = stringList(raw)
	}

	if raw, ok := doc.get("sample_rental_agreement"); ok {
		c.SampleAgreement, _ = raw.(string)
	}
	return c
}

func explanationFrom(v any) Explanation {
	switch t := v.(type) {
	case string:
		return PlainDefinition(t)
	case orderedMap:
		return StructuredRecord{
			Definition:       stringField(t, "definition"),
			Importance:       stringField(t, "importance"),
			Category:         stringField(t, "category"),
			TypicalAmount:    stringField(t, "typical_amount"),
			RefundConditions: stringField(t, "refund_conditions"),
			TypicalPenalty:   stringField(t, "typical_penalty"),
			NoticePeriod:     stringField(t, "notice_period"),
			Penalties:        stringField(t, "penalties"),
		}
	default:
		return nil
	}
}

func categoryFrom(name string, v any) RiskCategory {
	cat := RiskCategory{Name: name}
	info, ok := v.(orderedMap)
	if !ok {
		return cat
	}
	if raw, ok := info.get("keywords"); ok {
		cat.Keywords = stringList(raw)
	}
	cat.Description = stringField(info, "description")
	cat.Severity = stringField(info, "severity")
	return cat
}

func stringField(o orderedMap, key string) string {
	raw, ok := o.get(key)
	if !ok {
		return ""
	}
	s, _ := raw.(string)
	return s
}

func stringList(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func parseJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := parseJSONValue(dec, 0)
	if err != nil {
		return nil, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("trailing data after document")
	}
	return v, nil
}

func parseJSONValue(dec *json.Decoder, depth int) (any, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	switch t := tok.(type) {
	case json.Delim:
		if depth >= maxNesting {
			return nil, errTooDeep
		}
		switch t {
		case '{':
			var obj orderedMap
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return nil, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return nil, fmt.Errorf("unexpected object key %v", keyTok)
				}
				val, err := parseJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				obj = append(obj, field{key: key, value: val})
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			if obj == nil {
				obj = orderedMap{}
			}
			return obj, nil
		case '[':
			list := []any{}
			for dec.More() {
				val, err := parseJSONValue(dec, depth+1)
				if err != nil {
					return nil, err
				}
				list = append(list, val)
			}
			if _, err := dec.Token(); err != nil {
				return nil, err
			}
			return list, nil
		default:
			return nil, fmt.Errorf("unexpected delimiter %v", t)
		}
	case json.Number:
		return t.String(), nil
	default:
		// string, bool or nil
		return t, nil
	}
}

func parseYAML(data []byte) (any, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, err
	}
	if node.Kind == 0 {
		return nil, errors.New("empty document")
	}
	w := yamlWalker{expanding: map[*yaml.Node]bool{}, budget: maxYAMLNodes}
	return w.value(&node, 0)
}

// yamlWalker converts a node tree into decoded values. Aliases are expanded
// in place, so it refuses alias cycles and stops once budget nodes have been
// produced.
type yamlWalker struct {
	expanding map[*yaml.Node]bool
	budget    int
}

func (w *yamlWalker) value(n *yaml.Node, depth int) (any, error) {
	if w.budget--; w.budget < 0 {
		return nil, errTooLarge
	}
	if depth >= maxNesting {
		return nil, errTooDeep
	}
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil, nil
		}
		return w.value(n.Content[0], depth)
	case yaml.MappingNode:
		obj := make(orderedMap, 0, len(n.Content)/2)
		for i := 0; i+1 < len(n.Content); i += 2 {
			v, err := w.value(n.Content[i+1], depth+1)
			if err != nil {
				return nil, err
			}
			obj = append(obj, field{key: n.Content[i].Value, value: v})
		}
		return obj, nil
	case yaml.SequenceNode:
		list := make([]any, 0, len(n.Content))
		for _, c := range n.Content {
			v, err := w.value(c, depth+1)
			if err != nil {
				return nil, err
			}
			list = append(list, v)
		}
		return list, nil
	case yaml.AliasNode:
		if n.Alias == nil {
			return nil, nil
		}
		if w.expanding[n.Alias] {
			return nil, fmt.Errorf("alias %q refers to itself", n.Value)
		}
		w.expanding[n.Alias] = true
		v, err := w.value(n.Alias, depth)
		delete(w.expanding, n.Alias)
		return v, err
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	default:
		return nil, nil
	}
}
