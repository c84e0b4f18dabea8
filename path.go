package restcall

import (
	"fmt"
	"net/url"
	"strings"
)

// pathPlaceholders extracts {name} placeholders from a path template,
// in the order they appear. Braces do not nest; the shortest closing
// brace terminates a placeholder.
func pathPlaceholders(mask string) ([]string, error) {
	var keys []string
	rest := mask
	for {
		_, after, found := strings.Cut(rest, "{")
		if !found {
			return keys, nil
		}
		key, after, found := strings.Cut(after, "}")
		if !found {
			return nil, fmt.Errorf("unclosed { in path template %q", mask)
		}
		if key == "" || strings.Contains(key, "{") || strings.Contains(key, "/") {
			return nil, fmt.Errorf("bad placeholder {%s} in path template %q", key, mask)
		}
		keys = append(keys, key)
		rest = after
	}
}

// validatePath checks that placeholders of the path template and the
// declared path argument names match exactly, one to one. Both a
// placeholder without a declaration and a declaration without a
// placeholder are errors.
func validatePath(mask string, declared []string) error {
	keys, err := pathPlaceholders(mask)
	if err != nil {
		return err
	}
	keySet := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if _, has := keySet[key]; has {
			return fmt.Errorf("placeholder {%s} appears twice in path template %q", key, mask)
		}
		keySet[key] = struct{}{}
	}
	declaredSet := make(map[string]struct{}, len(declared))
	for _, name := range declared {
		if _, has := declaredSet[name]; has {
			return fmt.Errorf("path argument %q is declared twice", name)
		}
		declaredSet[name] = struct{}{}
	}
	for _, key := range keys {
		if _, has := declaredSet[key]; !has {
			return fmt.Errorf("path parameter %q needs both a {%s} placeholder in the path template and a path argument declaration; the declaration is missing", key, key)
		}
	}
	for _, name := range declared {
		if _, has := keySet[name]; !has {
			return fmt.Errorf("path parameter %q needs both a {%s} placeholder in the path template and a path argument declaration; the placeholder is missing", name, name)
		}
	}
	return nil
}

// buildPath substitutes path parameter values into the template.
// Values are escaped with url.PathEscape. All placeholders must be
// provided and all provided parameters must be used.
func buildPath(mask string, params []Param) (string, error) {
	param2value := make(map[string]string, len(params))
	for _, p := range params {
		param2value[p.Name] = p.Value
	}
	var b strings.Builder
	replaced := make(map[string]struct{}, len(param2value))
	rest := mask
	for {
		before, after, found := strings.Cut(rest, "{")
		b.WriteString(before)
		if !found {
			break
		}
		key, tail, found := strings.Cut(after, "}")
		if !found {
			return "", fmt.Errorf("unclosed { in path template %q", mask)
		}
		value, has := param2value[key]
		if !has {
			return "", fmt.Errorf("unknown path parameter: %s", key)
		}
		b.WriteString(url.PathEscape(value))
		replaced[key] = struct{}{}
		rest = tail
	}
	if len(replaced) != len(param2value) {
		return "", fmt.Errorf("not all parameters were built into the path: want %d, got %d", len(param2value), len(replaced))
	}
	return b.String(), nil
}
