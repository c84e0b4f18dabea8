package restcall

import (
	"context"
	"encoding"
	"fmt"
	"net/http"
	"reflect"
)

// formatValue converts a live argument to its textual form: through
// encoding.TextMarshaler if the value implements it, with fmt
// otherwise.
func formatValue(v reflect.Value) (string, error) {
	obj := v.Interface()
	if marshaler, ok := obj.(encoding.TextMarshaler); ok {
		valueBytes, err := marshaler.MarshalText()
		if err != nil {
			return "", fmt.Errorf("failed to marshal value: %w", err)
		}
		return string(valueBytes), nil
	}
	return fmt.Sprintf("%v", obj), nil
}

// newCall assembles the request description of one call from the
// compiled descriptor and the live arguments. Header, query and path
// values are appended in declaration order; static headers come from
// the descriptor unchanged.
func (d *methodDesc) newCall(args []reflect.Value) (*Call, error) {
	call := &Call{
		Method:        d.httpMethod,
		Path:          d.path,
		ClassHeaders:  append([]Param(nil), d.classHeaders...),
		MethodHeaders: append([]Param(nil), d.methodHeaders...),
	}
	if d.params.bodyIndex != -1 {
		call.HasBody = true
		call.Body = args[d.params.bodyIndex].Interface()
		call.BodyEncoding = d.params.bodyMode
	}
	appendParams := func(src []boundParam, dst *[]Param) error {
		for _, p := range src {
			value, err := formatValue(args[p.index])
			if err != nil {
				return fmt.Errorf("method %s, parameter %s: %w", d.name, p.name, err)
			}
			*dst = append(*dst, Param{Name: p.name, Value: value})
		}
		return nil
	}
	if err := appendParams(d.params.query, &call.QueryParams); err != nil {
		return nil, err
	}
	if err := appendParams(d.params.path, &call.PathParams); err != nil {
		return nil, err
	}
	if err := appendParams(d.params.header, &call.HeaderParams); err != nil {
		return nil, err
	}
	return call, nil
}

// errValue wraps err into a reflect.Value of static type error,
// usable as a result of reflect.MakeFunc.
func errValue(err error) reflect.Value {
	v := reflect.New(errorType).Elem()
	if err != nil {
		v.Set(reflect.ValueOf(err))
	}
	return v
}

// invoke returns the body of one generated method: build the request
// description from live arguments and hand it to the backend entry
// point fixed by the method's result shape. Exactly one backend call
// is made per invocation; the description is not reused.
func (d *methodDesc) invoke(backend Backend) func(args []reflect.Value) []reflect.Value {
	return func(args []reflect.Value) []reflect.Value {
		ctx := context.Background()
		if d.params.ctxIndex != -1 {
			ctx = args[d.params.ctxIndex].Interface().(context.Context)
		}
		call, err := d.newCall(args)

		switch d.shape {
		case returnVoid:
			if err == nil {
				err = backend.ExecVoid(ctx, call)
			}
			return []reflect.Value{errValue(err)}

		case returnRaw:
			var res *http.Response
			if err == nil {
				res, err = backend.ExecRaw(ctx, call)
			}
			return []reflect.Value{reflect.ValueOf(&res).Elem(), errValue(err)}

		case returnTyped:
			result := reflect.New(d.resultType)
			if err == nil {
				err = backend.ExecTyped(ctx, call, result.Interface())
			}
			return []reflect.Value{result.Elem(), errValue(err)}

		case returnEnvelope:
			env := reflect.New(d.resultType)
			var res *http.Response
			if err == nil {
				value := env.Elem().Field(d.envValueIndex).Addr()
				res, err = backend.ExecEnvelope(ctx, call, value.Interface())
			}
			if err != nil {
				return []reflect.Value{reflect.Zero(d.fnType.Out(0)), errValue(err)}
			}
			env.Elem().Field(d.envRespIndex).Set(reflect.ValueOf(res))
			return []reflect.Value{env, errValue(nil)}

		default:
			panic(fmt.Sprintf("method %s: unknown return shape %d", d.name, d.shape))
		}
	}
}
