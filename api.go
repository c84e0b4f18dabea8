package restcall

import (
	"context"
	"net/http"
	"reflect"
	"strings"
)

// Param is one (name, value) pair of a request description.
// Pairs are kept in ordered lists, not maps: parameters are sent in
// the order in which they were declared.
type Param struct {
	Name  string
	Value string
}

// BodyEncoding tells the backend how to render the body argument.
type BodyEncoding string

const (
	// BodyJSON marshals the body argument with encoding/json.
	BodyJSON BodyEncoding = "json"

	// BodyProto marshals the body argument as binary protobuf.
	// The argument must implement proto.Message.
	BodyProto BodyEncoding = "proto"

	// BodyRaw sends the body argument as is.
	// The argument must be []byte, string or io.Reader.
	BodyRaw BodyEncoding = "raw"
)

// Call describes one HTTP request to be performed by a Backend.
// It is built from a compiled method descriptor and the live arguments
// of one call, passed to the backend and discarded. Values of query,
// path and header parameters are already converted to their textual
// form; the body is kept raw and left for the backend to encode.
type Call struct {
	// HTTP method, e.g. http.MethodGet.
	Method string

	// Path template with {name} placeholders, e.g. "/users/{id}".
	Path string

	// Static headers of the service definition, in declaration order.
	ClassHeaders []Param

	// Static headers of the method, in declaration order.
	MethodHeaders []Param

	// Values of header, query and path arguments, in declaration order.
	HeaderParams []Param
	QueryParams  []Param
	PathParams   []Param

	// HasBody reports whether the method declares a body argument.
	// Body is the live value of that argument, not converted.
	HasBody      bool
	Body         interface{}
	BodyEncoding BodyEncoding
}

// Backend executes request descriptions. Which of the four entry
// points is used by a method is fixed at compile time by the method's
// result shape, see package documentation.
//
// The backend owns all I/O. This package only builds the Call and
// passes the caller's context (or context.Background() for methods
// without a context argument).
type Backend interface {
	// ExecVoid is used by methods returning just error.
	ExecVoid(ctx context.Context, call *Call) error

	// ExecTyped is used by methods returning (T, error).
	// result is a *T allocated by the caller.
	ExecTyped(ctx context.Context, call *Call, result interface{}) error

	// ExecRaw is used by methods returning (*http.Response, error).
	// The caller owns the response and must close its body.
	ExecRaw(ctx context.Context, call *Call) (*http.Response, error)

	// ExecEnvelope is used by methods returning (*Envelope[T], error).
	// result is a *T; the returned response is stored in the envelope.
	ExecEnvelope(ctx context.Context, call *Call, result interface{}) (*http.Response, error)
}

// Envelope carries the raw HTTP response alongside the decoded value.
// Declare a method result as (*Envelope[T], error) to get both.
type Envelope[T any] struct {
	Response *http.Response
	Value    T
}

// Header is the type of blank marker fields declaring service-level
// headers, sent with every request of the service:
//
//	type GitHub struct {
//		_ restcall.Header `name:"Accept" value:"application/vnd.github.v3+json"`
//
//		GetUser func(ctx context.Context, id int64) (*User, error) `call:"GET /users/{id}" args:"path=id"`
//	}
type Header struct{}

var (
	contextType  = reflect.TypeOf((*context.Context)(nil)).Elem()
	errorType    = reflect.TypeOf((*error)(nil)).Elem()
	responseType = reflect.TypeOf((*http.Response)(nil))
	headerType   = reflect.TypeOf(Header{})

	selfPkgPath = headerType.PkgPath()
)

// isEnvelopeType detects instantiations of Envelope. An instantiated
// generic type keeps the package path of the generic declaration and
// has a name of the form "Envelope[...]".
func isEnvelopeType(t reflect.Type) bool {
	if t.Kind() != reflect.Ptr || t.Elem().Kind() != reflect.Struct {
		return false
	}
	e := t.Elem()
	return e.PkgPath() == selfPkgPath && strings.HasPrefix(e.Name(), "Envelope[")
}
