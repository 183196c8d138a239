// Copyright 2025 Tom Barlow
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package node

import (
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	nodeerrors "github.com/tombee/conductor-httpnodes/pkg/errors"
)

// Params resolves node parameters for an item.
type Params interface {
	// Value returns the evaluated parameter, or def when it is unset.
	Value(name string, itemIndex int, def any) (any, error)

	// Values returns every set parameter evaluated for the item.
	Values(itemIndex int) (map[string]any, error)
}

// templatePattern matches one {{ expression }} segment.
var templatePattern = regexp.MustCompile(`\{\{(.*?)\}\}`)

// MapParams holds raw parameter values from a params file. A string
// starting with "=" is a template: "={{ json.id }}" evaluates to the
// expression's value, while "=id-{{ json.id }}" interpolates into a
// string. Expressions see json (the item), itemIndex, and $json and
// $itemIndex as aliases.
type MapParams struct {
	values map[string]any
	items  []Item

	mu    sync.RWMutex
	cache map[string]*vm.Program
}

// NewMapParams returns params over values evaluated against items.
func NewMapParams(values map[string]any, items []Item) *MapParams {
	if values == nil {
		values = map[string]any{}
	}
	return &MapParams{values: values, items: items, cache: make(map[string]*vm.Program)}
}

// Value implements Params.
func (p *MapParams) Value(name string, itemIndex int, def any) (any, error) {
	raw, ok := p.values[name]
	if !ok {
		return def, nil
	}
	v, err := p.evaluate(raw, p.env(itemIndex))
	if err != nil {
		return nil, fmt.Errorf("parameter %q: %w", name, err)
	}
	return v, nil
}

// Values implements Params.
func (p *MapParams) Values(itemIndex int) (map[string]any, error) {
	env := p.env(itemIndex)
	out := make(map[string]any, len(p.values))
	for name, raw := range p.values {
		v, err := p.evaluate(raw, env)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

func (p *MapParams) env(itemIndex int) map[string]any {
	var item Item
	if itemIndex >= 0 && itemIndex < len(p.items) {
		item = p.items[itemIndex]
	}
	if item == nil {
		item = Item{}
	}
	return map[string]any{
		"json":       item,
		"$json":      item,
		"itemIndex":  itemIndex,
		"$itemIndex": itemIndex,
	}
}

func (p *MapParams) evaluate(raw any, env map[string]any) (any, error) {
	switch v := raw.(type) {
	case string:
		return p.template(v, env)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, item := range v {
			ev, err := p.evaluate(item, env)
			if err != nil {
				return nil, err
			}
			out[k] = ev
		}
		return out, nil
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			ev, err := p.evaluate(item, env)
			if err != nil {
				return nil, err
			}
			out[i] = ev
		}
		return out, nil
	default:
		return raw, nil
	}
}

func (p *MapParams) template(s string, env map[string]any) (any, error) {
	if !strings.HasPrefix(s, "=") {
		return s, nil
	}
	body := s[1:]

	// A template consisting of a single expression keeps its type.
	if m := templatePattern.FindStringSubmatchIndex(body); m != nil && m[0] == 0 && m[1] == len(body) {
		return p.run(body[m[2]:m[3]], env)
	}

	var firstErr error
	out := templatePattern.ReplaceAllStringFunc(body, func(seg string) string {
		code := templatePattern.FindStringSubmatch(seg)[1]
		v, err := p.run(code, env)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			return ""
		}
		if v == nil {
			return ""
		}
		return fmt.Sprint(v)
	})
	if firstErr != nil {
		return nil, firstErr
	}
	return out, nil
}

func (p *MapParams) run(code string, env map[string]any) (any, error) {
	code = strings.TrimSpace(code)
	prog, err := p.compile(code)
	if err != nil {
		return nil, &nodeerrors.ValidationError{
			Field:   "expression",
			Message: fmt.Sprintf("failed to compile %q: %v", code, err),
			Hint:    "expressions read the current item as json, e.g. {{ json.id }}",
		}
	}
	v, err := expr.Run(prog, env)
	if err != nil {
		return nil, &nodeerrors.ValidationError{
			Field:   "expression",
			Message: fmt.Sprintf("evaluating %q: %v", code, err),
		}
	}
	return v, nil
}

func (p *MapParams) compile(code string) (*vm.Program, error) {
	p.mu.RLock()
	prog, ok := p.cache[code]
	p.mu.RUnlock()
	if ok {
		return prog, nil
	}

	prog, err := expr.Compile(code, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	p.cache[code] = prog
	p.mu.Unlock()
	return prog, nil
}
