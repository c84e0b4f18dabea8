/*
Package restcall turns a declarative description of a remote HTTP API
into a ready to use, type checked client, removing the request-building
boilerplate.

How to use this package. Describe the remote API as a struct type whose
func fields are the remote operations. Each field carries a call tag
with the HTTP method and the path template, and an args tag assigning a
role to every argument:

	type GitHub struct {
		_ restcall.Header `name:"Accept" value:"application/vnd.github.v3+json"`

		GetUser func(ctx context.Context, id int64, page int) (*User, error) `call:"GET /users/{id}" args:"path=id,page"`
		Create  func(ctx context.Context, user *User) (*User, error)         `call:"POST /users" args:"body=json"`
		Delete  func(ctx context.Context, id int64) error                    `call:"DELETE /users/{id}" args:"path=id"`
	}

The args tag has one comma-separated entry per non-context argument, in
declaration order:

  - "path=NAME" substitutes the argument into the {NAME} placeholder of
    the path template. Placeholders and path declarations must match
    exactly, one to one; an unused placeholder and an undeclared path
    argument are both compile errors.
  - "query=NAME" sends the argument as a query parameter.
  - "header=NAME" sends the argument as a header value.
  - "body=MODE" sends the argument as the request body, encoded as
    MODE (json, proto or raw). At most one body per method.
  - a bare "NAME" is a query parameter under that name.

Arguments of type context.Context are recognized by type, need no args
entry and carry cancellation into the backend. At most one per method.

Non-body values are converted to text with encoding.TextMarshaler if
implemented, with fmt otherwise.

The declared results select how the response is delivered:

	func(...) error                       // status only
	func(...) (T, error)                  // decoded body
	func(...) (*http.Response, error)     // raw response, caller closes body
	func(...) (*restcall.Envelope[T], error) // decoded body plus raw response

Any other result list fails compilation with an error naming the
method.

Bind an instance to a backend and call the fields as normal functions:

	github, err := restcall.New[GitHub](restcall.NewHTTPBackend("https://api.github.com"))
	if err != nil {
		panic(err)
	}
	user, err := github.GetUser(ctx, 42, 1)

A service definition type is compiled once per process and the plan is
cached; binding more instances, with the same or different backends, is
cheap. Compilation errors are definitional, so they are cached as well
and reported again on every attempt to bind the broken type.

NewHTTPBackend returns a production backend speaking JSON (and binary
protobuf for proto.Message bodies and results). Any other transport can
be plugged in by implementing the four methods of the Backend
interface; see package debugclient for a logging wrapper of the HTTP
client used by the default backend.

GenerateOpenAPI builds an OpenAPI 3.0 document from the same compiled
plans. Package gen generates a plain-method wrapper around a service
definition for callers preferring ordinary methods over func fields.
*/
package restcall
