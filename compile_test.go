package restcall

import (
	"context"
	"net/http"
	"reflect"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

type compileUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type usersAPI struct {
	_ Header `name:"Accept" value:"application/json"`
	_ Header `name:"X-Api-Version" value:"2"`

	Get    func(ctx context.Context, id int64) (*compileUser, error)            `call:"GET /users/{id}" args:"path=id"`
	List   func(ctx context.Context, page int) ([]compileUser, error)           `call:"GET /users" args:"page" headers:"X-List: on | X-Limit: 10"`
	Create func(ctx context.Context, user *compileUser) (*compileUser, error)   `call:"POST /users" args:"body=json"`
	Delete func(ctx context.Context, id int64) error                            `call:"DELETE /users/{id}" args:"path=id"`
	Raw    func(ctx context.Context, id int64) (*http.Response, error)          `call:"GET /users/{id}/avatar" args:"path=id"`
	Stat   func(ctx context.Context, id int64) (*Envelope[*compileUser], error) `call:"GET /users/{id}/stat" args:"path=id"`
}

func TestCompileService(t *testing.T) {
	desc, err := compileService(reflect.TypeOf(usersAPI{}))
	require.NoError(t, err)
	require.Len(t, desc.methods, 6)

	get := desc.methods[0]
	require.Equal(t, "usersAPI.Get", get.name)
	require.Equal(t, http.MethodGet, get.httpMethod)
	require.Equal(t, "/users/{id}", get.path)
	require.Equal(t, []Param{
		{Name: "Accept", Value: "application/json"},
		{Name: "X-Api-Version", Value: "2"},
	}, get.classHeaders)
	require.Empty(t, get.methodHeaders)
	require.Equal(t, returnTyped, get.shape)
	require.Equal(t, reflect.TypeOf(&compileUser{}), get.resultType)

	list := desc.methods[1]
	require.Equal(t, []Param{
		{Name: "X-List", Value: "on"},
		{Name: "X-Limit", Value: "10"},
	}, list.methodHeaders)

	require.Equal(t, returnVoid, desc.methods[3].shape)
	require.Equal(t, returnRaw, desc.methods[4].shape)

	stat := desc.methods[5]
	require.Equal(t, returnEnvelope, stat.shape)
	require.Equal(t, reflect.TypeOf(&compileUser{}), stat.resultType.Field(stat.envValueIndex).Type)
}

func TestCompileErrors(t *testing.T) {
	type noCallTag struct {
		Get func(ctx context.Context) error
	}
	type badVerb struct {
		Get func(ctx context.Context) error `call:"FETCH /users"`
	}
	type badPath struct {
		Get func(ctx context.Context) error `call:"GET users"`
	}
	type missingPlaceholder struct {
		Search func(ctx context.Context, q string) error `call:"GET /search" args:"path=q"`
	}
	type missingDeclaration struct {
		Get func(ctx context.Context) error `call:"GET /users/{id}"`
	}
	type twoBodies struct {
		Create func(ctx context.Context, a, b string) error `call:"POST /users" args:"body=json,body=json"`
	}
	type twoContexts struct {
		Get func(a, b context.Context) error `call:"GET /users"`
	}
	type badResults struct {
		Get func(ctx context.Context) (int, string) `call:"GET /users"`
	}
	type threeResults struct {
		Get func(ctx context.Context) (int, int, error) `call:"GET /users"`
	}
	type noResults struct {
		Get func(ctx context.Context) `call:"GET /users"`
	}
	type unexported struct {
		get func(ctx context.Context) error `call:"GET /users"`
	}
	type badHeader struct {
		Get func(ctx context.Context) error `call:"GET /users" headers:"NoColon"`
	}
	type empty struct {
		Name string
	}

	cases := []struct {
		name      string
		typ       reflect.Type
		wantError string
	}{
		{
			name:      "not a struct",
			typ:       reflect.TypeOf(0),
			wantError: "must be a struct",
		},
		{
			name:      "missing call tag",
			typ:       reflect.TypeOf(noCallTag{}),
			wantError: "noCallTag.Get has no call tag",
		},
		{
			name:      "unknown HTTP method",
			typ:       reflect.TypeOf(badVerb{}),
			wantError: "unknown HTTP method",
		},
		{
			name:      "path without leading slash",
			typ:       reflect.TypeOf(badPath{}),
			wantError: "must start with /",
		},
		{
			name:      "declaration without placeholder",
			typ:       reflect.TypeOf(missingPlaceholder{}),
			wantError: "missingPlaceholder.Search",
		},
		{
			name:      "placeholder without declaration",
			typ:       reflect.TypeOf(missingDeclaration{}),
			wantError: "missingDeclaration.Get",
		},
		{
			name:      "two bodies",
			typ:       reflect.TypeOf(twoBodies{}),
			wantError: "twoBodies.Create declares more than one body",
		},
		{
			name:      "two contexts",
			typ:       reflect.TypeOf(twoContexts{}),
			wantError: "twoContexts.Get declares more than one context.Context",
		},
		{
			name:      "second result is not error",
			typ:       reflect.TypeOf(badResults{}),
			wantError: "badResults.Get",
		},
		{
			name:      "three results",
			typ:       reflect.TypeOf(threeResults{}),
			wantError: "threeResults.Get",
		},
		{
			name:      "no results",
			typ:       reflect.TypeOf(noResults{}),
			wantError: "noResults.Get",
		},
		{
			name:      "unexported method",
			typ:       reflect.TypeOf(unexported{}),
			wantError: "must be exported",
		},
		{
			name:      "malformed header entry",
			typ:       reflect.TypeOf(badHeader{}),
			wantError: "header entry",
		},
		{
			name:      "no methods",
			typ:       reflect.TypeOf(empty{}),
			wantError: "no func fields",
		},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileService(tc.typ)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantError)
		})
	}
}

func TestFactoryCompilesOnce(t *testing.T) {
	f := NewFactory()
	typ := reflect.TypeOf(usersAPI{})
	first, err := f.getOrCompile(typ)
	require.NoError(t, err)
	second, err := f.getOrCompile(typ)
	require.NoError(t, err)
	require.Same(t, first, second)
}

func TestFactoryCachesErrors(t *testing.T) {
	type broken struct {
		Get func(ctx context.Context) error `call:"GET /users/{id}"`
	}
	f := NewFactory()
	typ := reflect.TypeOf(broken{})
	_, err1 := f.getOrCompile(typ)
	require.Error(t, err1)
	_, err2 := f.getOrCompile(typ)
	require.Error(t, err2)
	// The failure is permanent and cached, not recomputed.
	require.Same(t, err1, err2)
}

func TestFactoryConcurrentBind(t *testing.T) {
	f := NewFactory()
	backend := &fakeBackend{}
	const n = 16
	descs := make([]*serviceDesc, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			var service usersAPI
			if err := f.Bind(&service, backend); err != nil {
				t.Error(err)
				return
			}
			desc, err := f.getOrCompile(reflect.TypeOf(service))
			if err != nil {
				t.Error(err)
				return
			}
			descs[i] = desc
		}()
	}
	wg.Wait()
	for i := 1; i < n; i++ {
		require.Same(t, descs[0], descs[i])
	}
}

func TestBindArgumentChecks(t *testing.T) {
	backend := &fakeBackend{}
	require.Error(t, Bind(nil, backend))
	require.Error(t, Bind(usersAPI{}, backend))
	var service usersAPI
	require.Error(t, Bind(&service, nil))
	require.NoError(t, Bind(&service, backend))
	require.NotNil(t, service.Get)
}
