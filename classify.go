package restcall

import (
	"fmt"
	"reflect"
	"strings"
)

// boundParam links a declared argument to the name under which its
// value is sent. index is the position in the call's argument list.
type boundParam struct {
	name  string
	index int
}

// paramSet is the role classification of a method's arguments,
// computed once at compile time. Query, path and header arguments keep
// their declaration order. Plain entries (a bare name in the args tag)
// are query parameters keyed by that name and live in the query list.
type paramSet struct {
	ctxIndex  int // -1 if the method has no context argument
	bodyIndex int // -1 if the method has no body argument
	bodyMode  BodyEncoding

	query  []boundParam
	path   []boundParam
	header []boundParam
}

// pathNames returns names of path arguments in declaration order.
func (s *paramSet) pathNames() []string {
	names := make([]string, 0, len(s.path))
	for _, p := range s.path {
		names = append(names, p.name)
	}
	return names
}

// splitArgsTag splits the args tag into per-argument entries.
// An empty tag means no entries.
func splitArgsTag(tag string) []string {
	if strings.TrimSpace(tag) == "" {
		return nil
	}
	entries := strings.Split(tag, ",")
	for i, e := range entries {
		entries[i] = strings.TrimSpace(e)
	}
	return entries
}

// classifyArgs assigns exactly one role to every argument of a method.
// Arguments of type context.Context are matched by type and consume no
// args tag entry; every other argument consumes the next entry, in
// declaration order. Role precedence is fixed: context type match,
// then body, query, path, header tags, then the plain fallback (a bare
// name, treated as a query parameter under that name).
//
// At most one context argument and at most one body argument are
// allowed; a second one is an error, not a warning, because the
// request could not be built unambiguously.
func classifyArgs(method string, fnType reflect.Type, argsTag string) (*paramSet, error) {
	if fnType.IsVariadic() {
		return nil, fmt.Errorf("method %s must not be variadic", method)
	}
	entries := splitArgsTag(argsTag)
	set := &paramSet{ctxIndex: -1, bodyIndex: -1}
	next := 0
	for i := 0; i < fnType.NumIn(); i++ {
		in := fnType.In(i)
		if in.Implements(contextType) && in.Kind() == reflect.Interface {
			if set.ctxIndex != -1 {
				return nil, fmt.Errorf("method %s declares more than one context.Context argument", method)
			}
			set.ctxIndex = i
			continue
		}
		if next >= len(entries) {
			return nil, fmt.Errorf("method %s has %d non-context arguments, but the args tag has only %d entries", method, countNonContext(fnType), len(entries))
		}
		entry := entries[next]
		next++
		if entry == "" {
			return nil, fmt.Errorf("method %s: empty entry in args tag", method)
		}
		role, name, tagged := strings.Cut(entry, "=")
		if !tagged {
			// Plain fallback: a query parameter under the bare name.
			// Only the explicit body= tag selects the body role, so a
			// parameter named "body" is still a query parameter.
			role, name = "query", entry
		}
		if name == "" {
			return nil, fmt.Errorf("method %s: entry %q in args tag has empty name", method, entry)
		}
		switch role {
		case "body":
			if set.bodyIndex != -1 {
				return nil, fmt.Errorf("method %s declares more than one body argument", method)
			}
			mode := BodyEncoding(name)
			switch mode {
			case BodyJSON, BodyProto, BodyRaw:
			default:
				return nil, fmt.Errorf("method %s: unknown body encoding %q, want json, proto or raw", method, name)
			}
			set.bodyIndex = i
			set.bodyMode = mode
		case "query":
			set.query = append(set.query, boundParam{name: name, index: i})
		case "path":
			set.path = append(set.path, boundParam{name: name, index: i})
		case "header":
			set.header = append(set.header, boundParam{name: name, index: i})
		default:
			return nil, fmt.Errorf("method %s: unknown role %q in args tag entry %q", method, role, entry)
		}
	}
	if next != len(entries) {
		return nil, fmt.Errorf("method %s has %d non-context arguments, but the args tag has %d entries", method, next, len(entries))
	}
	return set, nil
}

func countNonContext(fnType reflect.Type) int {
	n := 0
	for i := 0; i < fnType.NumIn(); i++ {
		in := fnType.In(i)
		if in.Implements(contextType) && in.Kind() == reflect.Interface {
			continue
		}
		n++
	}
	return n
}
