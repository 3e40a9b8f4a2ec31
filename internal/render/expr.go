// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

var (
	// placeholderPattern finds {{ ... }} tokens in concatenated paragraph text.
	placeholderPattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

	// exprPattern is a dotted field path with an optional default filter:
	// "kit_name", "item.name", "lot_number|default('N/A')".
	exprPattern = regexp.MustCompile(`^\s*([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*)\s*(?:\|\s*default\(\s*(?:'([^']*)'|"([^"]*)")\s*\))?\s*$`)

	// tagPattern is a whole-paragraph or whole-row block tag.
	tagPattern = regexp.MustCompile(`^\{%-?(?:(p|tr)\s+|\s+)(.*?)\s*-?%\}$`)

	pathPattern  = regexp.MustCompile(`^[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)*$`)
	identPattern = regexp.MustCompile(`^[A-Za-z_]\w*$`)
)

// expr is a parsed placeholder expression.
type expr struct {
	path       []string
	def        string
	hasDefault bool
}

func (e expr) String() string { return strings.Join(e.path, ".") }

func parseExpr(s string) (expr, bool) {
	m := exprPattern.FindStringSubmatch(s)
	if m == nil {
		return expr{}, false
	}
	e := expr{path: strings.Split(m[1], ".")}
	if strings.Contains(s, "|") {
		e.hasDefault = true
		e.def = m[2] + m[3]
	}
	return e, true
}

type tagKind int

const (
	tagIf tagKind = iota
	tagElse
	tagEndIf
	tagFor
	tagEndFor
)

// tag is a parsed {% ... %} block tag.
type tag struct {
	kind   tagKind
	row    bool
	negate bool
	cond   []string

	// loop variable and list path for tagFor
	name string
	list []string

	raw string
}

// parseTag parses s as a block tag. ok is false when s is not a tag at
// all; err is set when s is a tag with invalid content.
func parseTag(s string) (t tag, ok bool, err error) {
	s = strings.TrimSpace(s)
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return tag{}, false, nil
	}
	t = tag{row: m[1] == "tr", raw: s}
	fields := strings.Fields(m[2])
	if len(fields) == 0 {
		return t, true, fmt.Errorf("empty block tag")
	}

	switch fields[0] {
	case "if":
		t.kind = tagIf
		rest := fields[1:]
		if len(rest) > 0 && rest[0] == "not" {
			t.negate = true
			rest = rest[1:]
		}
		if len(rest) != 1 || !pathPattern.MatchString(rest[0]) {
			return t, true, fmt.Errorf("if expects a single field path")
		}
		t.cond = strings.Split(rest[0], ".")
	case "else":
		t.kind = tagElse
	case "endif":
		t.kind = tagEndIf
	case "for":
		t.kind = tagFor
		if len(fields) != 4 || fields[2] != "in" || !identPattern.MatchString(fields[1]) || !pathPattern.MatchString(fields[3]) {
			return t, true, fmt.Errorf("for expects 'for NAME in LIST'")
		}
		if fields[1] == "loop" {
			return t, true, fmt.Errorf("loop is a reserved name")
		}
		t.name = fields[1]
		t.list = strings.Split(fields[3], ".")
	case "endfor":
		t.kind = tagEndFor
	default:
		return t, true, fmt.Errorf("unknown block tag %q", fields[0])
	}
	if (t.kind == tagElse || t.kind == tagEndIf || t.kind == tagEndFor) && len(fields) != 1 {
		return t, true, fmt.Errorf("%s takes no arguments", fields[0])
	}
	return t, true, nil
}

// scope resolves field paths against the root data and loop variables.
type scope struct {
	parent *scope
	name   string
	value  any
	root   map[string]any

	// unresolved collects missing paths; shared by every scope of a render.
	unresolved map[string]bool
}

func newScope(root map[string]any) *scope {
	return &scope{root: root, unresolved: make(map[string]bool)}
}

func (s *scope) with(name string, value any) *scope {
	return &scope{parent: s, name: name, value: value, root: s.root, unresolved: s.unresolved}
}

// lookup resolves path. ok is false when any segment is missing.
func (s *scope) lookup(path []string) (any, bool) {
	v, ok := s.head(path[0])
	for _, seg := range path[1:] {
		if !ok {
			break
		}
		v, ok = field(v, seg)
	}
	if !ok {
		s.unresolved[strings.Join(path, ".")] = true
		return nil, false
	}
	return v, true
}

func (s *scope) head(name string) (any, bool) {
	for c := s; c != nil; c = c.parent {
		if c.parent != nil && c.name == name {
			return c.value, true
		}
	}
	v, ok := s.root[name]
	return v, ok
}

func (s *scope) missing() []string {
	out := make([]string, 0, len(s.unresolved))
	for k := range s.unresolved {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func field(v any, name string) (any, bool) {
	switch m := v.(type) {
	case map[string]string:
		x, ok := m[name]
		return x, ok
	case map[string]any:
		x, ok := m[name]
		return x, ok
	}
	return nil, false
}

// truthy treats empty strings, empty collections, zero and nil as false.
func truthy(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(x) != ""
	case bool:
		return x
	case int:
		return x != 0
	case []string:
		return len(x) > 0
	case []map[string]string:
		return len(x) > 0
	case []map[string]any:
		return len(x) > 0
	case []any:
		return len(x) > 0
	case map[string]string:
		return len(x) > 0
	case map[string]any:
		return len(x) > 0
	}
	return true
}

// items returns the elements of a list value.
func items(v any) []any {
	switch x := v.(type) {
	case []string:
		out := make([]any, len(x))
		for i, s := range x {
			out[i] = s
		}
		return out
	case []map[string]string:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out
	case []map[string]any:
		out := make([]any, len(x))
		for i, m := range x {
			out[i] = m
		}
		return out
	case []any:
		return x
	}
	return nil
}

// stringify renders a value as placeholder text. Lists of strings become
// one line per element; structured values render as "".
func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case int:
		return strconv.Itoa(x)
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case []string:
		return strings.Join(x, "\n")
	}
	return ""
}

// loopInfo is exposed to loop bodies as "loop".
func loopInfo(i, n int) map[string]any {
	return map[string]any{
		"index":  i + 1,
		"index0": i,
		"first":  i == 0,
		"last":   i == n-1,
		"length": n,
	}
}

// evaluate resolves a placeholder expression to its text.
func (s *scope) evaluate(e expr) string {
	v, ok := s.head(e.path[0])
	for _, seg := range e.path[1:] {
		if !ok {
			break
		}
		v, ok = field(v, seg)
	}
	if !ok && !e.hasDefault {
		s.unresolved[e.String()] = true
	}
	text := stringify(v)
	if e.hasDefault && strings.TrimSpace(text) == "" {
		return e.def
	}
	return text
}
