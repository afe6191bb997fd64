package document

import (
	"fmt"
	"strconv"
	"strings"
)

// Dotted-string accessors for programmatic navigation. The grammar here is
// deliberately simple ("a.b[0].c" — field names and bracketed indexes) and
// is distinct from the mapping language's path syntax; it exists for host
// code and codecs, not for mapping programs.

type accessorStep struct {
	field   string
	index   int
	isIndex bool
}

func parseAccessor(path string) ([]accessorStep, error) {
	if path == "" {
		return nil, fmt.Errorf("empty path")
	}
	var steps []accessorStep
	for _, part := range strings.Split(path, ".") {
		for {
			open := strings.IndexByte(part, '[')
			if open == -1 {
				if part != "" {
					steps = append(steps, accessorStep{field: part})
				}
				break
			}
			if open > 0 {
				steps = append(steps, accessorStep{field: part[:open]})
			}
			end := strings.IndexByte(part, ']')
			if end < open {
				return nil, fmt.Errorf("unbalanced brackets in path %q", part)
			}
			n, err := strconv.Atoi(part[open+1 : end])
			if err != nil {
				return nil, fmt.Errorf("invalid index in path %q", part)
			}
			steps = append(steps, accessorStep{index: n, isIndex: true})
			part = part[end+1:]
		}
	}
	if len(steps) == 0 {
		return nil, fmt.Errorf("empty path")
	}
	return steps, nil
}

// GetPath navigates v by a dotted path like "user.emails[0]".
// Returns (nil, false) if any step does not resolve.
func GetPath(v Value, path string) (Value, bool) {
	steps, err := parseAccessor(path)
	if err != nil {
		return nil, false
	}
	cur := v
	for _, s := range steps {
		if s.isIndex {
			arr, ok := cur.(*Array)
			if !ok || s.index < 0 || s.index >= len(arr.Elements) {
				return nil, false
			}
			cur = arr.Elements[s.index]
			continue
		}
		m, ok := cur.(*Map)
		if !ok {
			return nil, false
		}
		cur, ok = m.Get(s.field)
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

// SetPath returns a copy of v with the value at the dotted path replaced.
// Intermediate maps are created when traversal passes through null or a
// missing key; traversing through any other non-container value, or past
// the end of an array, is an error.
func SetPath(v Value, path string, value Value) (Value, error) {
	steps, err := parseAccessor(path)
	if err != nil {
		return nil, err
	}
	out := Clone(v)
	if err := setSteps(&out, steps, value, path); err != nil {
		return nil, err
	}
	return out, nil
}

func setSteps(slot *Value, steps []accessorStep, value Value, path string) error {
	if len(steps) == 0 {
		*slot = value
		return nil
	}
	s := steps[0]
	if s.isIndex {
		arr, ok := (*slot).(*Array)
		if !ok {
			return fmt.Errorf("cannot index into %s at %q", strings.ToLower(string((*slot).Type())), path)
		}
		if s.index < 0 || s.index >= len(arr.Elements) {
			return fmt.Errorf("index %d out of range (length %d) at %q", s.index, len(arr.Elements), path)
		}
		return setSteps(&arr.Elements[s.index], steps[1:], value, path)
	}
	switch cur := (*slot).(type) {
	case *Map:
		child, ok := cur.Get(s.field)
		if !ok {
			child = NULL
		}
		if err := setSteps(&child, steps[1:], value, path); err != nil {
			return err
		}
		cur.Set(s.field, child)
		return nil
	case *Null:
		m := NewMap()
		var child Value = NULL
		if err := setSteps(&child, steps[1:], value, path); err != nil {
			return err
		}
		m.Set(s.field, child)
		*slot = m
		return nil
	default:
		return fmt.Errorf("cannot traverse %s at %q", strings.ToLower(string((*slot).Type())), path)
	}
}
