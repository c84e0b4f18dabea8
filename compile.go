package restcall

import (
	"fmt"
	"net/http"
	"reflect"
	"strings"
)

// returnShape selects the Backend entry point of a method.
// It is computed once at compile time from the declared result list.
type returnShape int

const (
	returnVoid     returnShape = iota // func(...) error
	returnTyped                       // func(...) (T, error)
	returnRaw                         // func(...) (*http.Response, error)
	returnEnvelope                    // func(...) (*Envelope[T], error)
)

// methodDesc is the compiled plan of one method. It is immutable
// after compilation and shared by all bound instances of the service.
type methodDesc struct {
	service    string
	name       string
	fieldIndex int
	fnType     reflect.Type

	httpMethod string
	path       string

	classHeaders  []Param
	methodHeaders []Param

	params *paramSet

	shape returnShape
	// resultType is T for returnTyped and the Envelope[T] struct type
	// for returnEnvelope; nil otherwise.
	resultType    reflect.Type
	envValueIndex int
	envRespIndex  int
}

// serviceDesc is the compiled plan of a whole service definition type,
// one methodDesc per func field. Compiled once per type, cached by a
// Factory, never mutated.
type serviceDesc struct {
	serviceType reflect.Type
	methods     []*methodDesc
}

var knownMethods = map[string]bool{
	http.MethodGet:     true,
	http.MethodHead:    true,
	http.MethodPost:    true,
	http.MethodPut:     true,
	http.MethodPatch:   true,
	http.MethodDelete:  true,
	http.MethodConnect: true,
	http.MethodOptions: true,
	http.MethodTrace:   true,
}

// parseCallTag parses `call:"VERB /path"` into its parts.
func parseCallTag(method, tag string) (httpMethod, path string, err error) {
	verb, path, found := strings.Cut(strings.TrimSpace(tag), " ")
	if !found {
		return "", "", fmt.Errorf("method %s: call tag %q must be \"VERB /path\"", method, tag)
	}
	path = strings.TrimSpace(path)
	if !knownMethods[verb] {
		return "", "", fmt.Errorf("method %s: unknown HTTP method %q in call tag", method, verb)
	}
	if !strings.HasPrefix(path, "/") {
		return "", "", fmt.Errorf("method %s: path %q in call tag must start with /", method, path)
	}
	return verb, path, nil
}

// parseHeadersTag parses `headers:"Name: Value | Name2: Value2"`.
// Order of entries is preserved.
func parseHeadersTag(method, tag string) ([]Param, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, nil
	}
	entries := strings.Split(tag, "|")
	headers := make([]Param, 0, len(entries))
	for _, entry := range entries {
		name, value, found := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		value = strings.TrimSpace(value)
		if !found || name == "" {
			return nil, fmt.Errorf("method %s: header entry %q must be \"Name: Value\"", method, strings.TrimSpace(entry))
		}
		headers = append(headers, Param{Name: name, Value: value})
	}
	return headers, nil
}

// classifyReturn determines which Backend entry point the method uses.
func classifyReturn(d *methodDesc) error {
	fnType := d.fnType
	switch fnType.NumOut() {
	case 1:
		if fnType.Out(0) != errorType {
			return fmt.Errorf("method %s: single result must be error, got %s", d.name, fnType.Out(0))
		}
		d.shape = returnVoid
		return nil
	case 2:
		if fnType.Out(1) != errorType {
			return fmt.Errorf("method %s: second result must be error, got %s", d.name, fnType.Out(1))
		}
		out := fnType.Out(0)
		switch {
		case out == responseType:
			d.shape = returnRaw
		case isEnvelopeType(out):
			d.shape = returnEnvelope
			d.resultType = out.Elem()
			valueField, has := d.resultType.FieldByName("Value")
			if !has || len(valueField.Index) != 1 {
				return fmt.Errorf("method %s: malformed envelope type %s", d.name, out)
			}
			d.envValueIndex = valueField.Index[0]
			respField, _ := d.resultType.FieldByName("Response")
			d.envRespIndex = respField.Index[0]
		default:
			d.shape = returnTyped
			d.resultType = out
		}
		return nil
	default:
		return fmt.Errorf("method %s: results must be error, (T, error), (*http.Response, error) or (*Envelope[T], error), got %d results", d.name, fnType.NumOut())
	}
}

// compileService builds the serviceDesc of one service definition
// type. All declaration errors are reported from here, naming the
// offending method; a type that fails to compile is never partially
// usable.
func compileService(t reflect.Type) (*serviceDesc, error) {
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("service definition %s must be a struct, got %s", t, t.Kind())
	}

	var classHeaders []Param
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type != headerType {
			continue
		}
		name := field.Tag.Get("name")
		if name == "" {
			return nil, fmt.Errorf("service %s: header marker field needs a name tag", t.Name())
		}
		classHeaders = append(classHeaders, Param{Name: name, Value: field.Tag.Get("value")})
	}

	desc := &serviceDesc{serviceType: t}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.Type.Kind() != reflect.Func {
			continue
		}
		method := t.Name() + "." + field.Name
		if field.PkgPath != "" {
			return nil, fmt.Errorf("method %s must be exported", method)
		}
		callTag, has := field.Tag.Lookup("call")
		if !has {
			return nil, fmt.Errorf("method %s has no call tag with HTTP method and path", method)
		}
		d := &methodDesc{
			service:      t.Name(),
			name:         method,
			fieldIndex:   i,
			fnType:       field.Type,
			classHeaders: classHeaders,
		}
		var err error
		d.httpMethod, d.path, err = parseCallTag(method, callTag)
		if err != nil {
			return nil, err
		}
		d.methodHeaders, err = parseHeadersTag(method, field.Tag.Get("headers"))
		if err != nil {
			return nil, err
		}
		d.params, err = classifyArgs(method, field.Type, field.Tag.Get("args"))
		if err != nil {
			return nil, err
		}
		if err := validatePath(d.path, d.params.pathNames()); err != nil {
			return nil, fmt.Errorf("method %s: %w", method, err)
		}
		if err := classifyReturn(d); err != nil {
			return nil, err
		}
		desc.methods = append(desc.methods, d)
	}
	if len(desc.methods) == 0 {
		return nil, fmt.Errorf("service definition %s has no func fields", t)
	}
	return desc, nil
}
