package restcall

import (
	"fmt"
	"reflect"
	"sync"
)

// Factory compiles service definition types and caches the result.
// Each distinct type is compiled exactly once per Factory for the
// lifetime of the process; a compilation error is cached too and
// returned on every later use of the type, because it is a defect of
// the declaration, not a transient condition.
//
// The zero value is not usable, call NewFactory. Most programs can use
// the package-level Bind and New, which share one default factory.
type Factory struct {
	mu       sync.Mutex
	compiled map[reflect.Type]*compileResult
}

type compileResult struct {
	desc *serviceDesc
	err  error
}

// NewFactory creates an empty factory with its own compile cache.
func NewFactory() *Factory {
	return &Factory{
		compiled: make(map[reflect.Type]*compileResult),
	}
}

func (f *Factory) getOrCompile(t reflect.Type) (*serviceDesc, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r, has := f.compiled[t]; has {
		return r.desc, r.err
	}
	desc, err := compileService(t)
	f.compiled[t] = &compileResult{desc: desc, err: err}
	return desc, err
}

// Bind compiles the type of the service definition pointed to by
// servicePtr (or reuses the cached plan) and fills its func fields
// with implementations that build requests and execute them through
// backend. Many instances may be bound from one compiled plan, each
// with its own backend.
func (f *Factory) Bind(servicePtr interface{}, backend Backend) error {
	v := reflect.ValueOf(servicePtr)
	if !v.IsValid() || v.Kind() != reflect.Ptr || v.IsNil() || v.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("Bind needs a non-nil pointer to a service definition struct, got %v", reflect.TypeOf(servicePtr))
	}
	desc, err := f.getOrCompile(v.Elem().Type())
	if err != nil {
		return err
	}
	return desc.bind(v.Elem(), backend)
}

// bind fills func fields of one instance with closures over the
// compiled descriptors and the backend.
func (desc *serviceDesc) bind(service reflect.Value, backend Backend) error {
	if backend == nil {
		return fmt.Errorf("service %s: backend must not be nil", desc.serviceType.Name())
	}
	for _, d := range desc.methods {
		field := service.Field(d.fieldIndex)
		if !field.CanSet() {
			return fmt.Errorf("failed to construct implementation of %s: field %s is not settable", desc.serviceType, d.name)
		}
		field.Set(reflect.MakeFunc(d.fnType, d.invoke(backend)))
	}
	return nil
}

var defaultFactory = NewFactory()

// Bind is Factory.Bind on a process-wide default factory.
func Bind(servicePtr interface{}, backend Backend) error {
	return defaultFactory.Bind(servicePtr, backend)
}

// MustBind is like Bind, but panics on error. Useful in package
// initialization, where a declaration error is a programming bug.
func MustBind(servicePtr interface{}, backend Backend) {
	if err := Bind(servicePtr, backend); err != nil {
		panic(err)
	}
}

// New allocates a service definition of type S and binds it to
// backend using the default factory.
func New[S any](backend Backend) (*S, error) {
	s := new(S)
	if err := Bind(s, backend); err != nil {
		return nil, err
	}
	return s, nil
}

// Must is like New, but panics on error.
func Must[S any](backend Backend) *S {
	s, err := New[S](backend)
	if err != nil {
		panic(err)
	}
	return s
}
