// Package gen generates a plain-method wrapper around a restcall
// service definition, for callers preferring ordinary methods over
// func fields. The wrapper compiles the definition through restcall
// at construction time, so the generated code stays a thin shim.
//
//	err := gen.Generate(out, ".", "GitHub")
package gen

import (
	"fmt"
	"go/types"
	"io"
	"sort"
	"strings"

	"golang.org/x/tools/go/packages"
)

// Model describes one wrapper to emit. Load builds it from source;
// tests can build it by hand.
type Model struct {
	// Package is the name of the package the wrapper belongs to.
	Package string

	// Struct is the name of the service definition struct.
	Struct string

	// Imports maps import paths to package names, restcall included.
	Imports map[string]string

	Methods []Method
}

// Method is one func field of the service definition.
type Method struct {
	Name    string
	Params  []Param
	Results []string
}

// Param is one parameter of a generated method.
type Param struct {
	Name string
	Type string
}

// Load loads the package matching pattern and builds the Model of the
// service definition struct named structName.
func Load(pattern, structName string) (*Model, error) {
	cfg := &packages.Config{
		Mode: packages.NeedName | packages.NeedTypes | packages.NeedTypesInfo | packages.NeedImports,
	}
	pkgs, err := packages.Load(cfg, pattern)
	if err != nil {
		return nil, fmt.Errorf("failed to load package %s: %w", pattern, err)
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("pattern %s matched %d packages, want 1", pattern, len(pkgs))
	}
	pkg := pkgs[0]
	if len(pkg.Errors) != 0 {
		return nil, fmt.Errorf("package %s has errors, first: %v", pkg.PkgPath, pkg.Errors[0])
	}

	obj := pkg.Types.Scope().Lookup(structName)
	if obj == nil {
		return nil, fmt.Errorf("struct %s not found in package %s", structName, pkg.PkgPath)
	}
	st, ok := obj.Type().Underlying().(*types.Struct)
	if !ok {
		return nil, fmt.Errorf("%s in package %s is not a struct", structName, pkg.PkgPath)
	}

	model := &Model{
		Package: pkg.Name,
		Struct:  structName,
		Imports: map[string]string{"github.com/starius/restcall": "restcall"},
	}
	qualify := func(p *types.Package) string {
		if p == pkg.Types {
			return ""
		}
		model.Imports[p.Path()] = p.Name()
		return p.Name()
	}

	for i := 0; i < st.NumFields(); i++ {
		field := st.Field(i)
		sig, ok := field.Type().(*types.Signature)
		if !ok {
			continue
		}
		method := Method{Name: field.Name()}
		for j := 0; j < sig.Params().Len(); j++ {
			p := sig.Params().At(j)
			typeStr := types.TypeString(p.Type(), qualify)
			name := fmt.Sprintf("a%d", j)
			if typeStr == "context.Context" {
				name = "ctx"
			}
			method.Params = append(method.Params, Param{Name: name, Type: typeStr})
		}
		for j := 0; j < sig.Results().Len(); j++ {
			method.Results = append(method.Results, types.TypeString(sig.Results().At(j).Type(), qualify))
		}
		model.Methods = append(model.Methods, method)
	}
	if len(model.Methods) == 0 {
		return nil, fmt.Errorf("struct %s has no func fields", structName)
	}
	return model, nil
}

// Emit writes the wrapper source for the model to w.
func Emit(w io.Writer, model *Model) error {
	var b strings.Builder
	fmt.Fprintf(&b, "// Code generated by github.com/starius/restcall/gen. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", model.Package)

	paths := make([]string, 0, len(model.Imports))
	for path := range model.Imports {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	fmt.Fprintf(&b, "import (\n")
	for _, path := range paths {
		name := model.Imports[path]
		if defaultImportName(path) == name {
			fmt.Fprintf(&b, "\t%q\n", path)
		} else {
			fmt.Fprintf(&b, "\t%s %q\n", name, path)
		}
	}
	fmt.Fprintf(&b, ")\n\n")

	fmt.Fprintf(&b, "// %sClient wraps a bound %s with plain methods.\n", model.Struct, model.Struct)
	fmt.Fprintf(&b, "type %sClient struct {\n\tsvc %s\n}\n\n", model.Struct, model.Struct)

	fmt.Fprintf(&b, "// New%sClient compiles %s and binds it to backend.\n", model.Struct, model.Struct)
	fmt.Fprintf(&b, "func New%sClient(backend restcall.Backend) (*%sClient, error) {\n", model.Struct, model.Struct)
	fmt.Fprintf(&b, "\tc := &%sClient{}\n", model.Struct)
	fmt.Fprintf(&b, "\tif err := restcall.Bind(&c.svc, backend); err != nil {\n\t\treturn nil, err\n\t}\n")
	fmt.Fprintf(&b, "\treturn c, nil\n}\n")

	for _, m := range model.Methods {
		params := make([]string, 0, len(m.Params))
		names := make([]string, 0, len(m.Params))
		for _, p := range m.Params {
			params = append(params, p.Name+" "+p.Type)
			names = append(names, p.Name)
		}
		results := strings.Join(m.Results, ", ")
		if len(m.Results) > 1 {
			results = "(" + results + ")"
		}
		fmt.Fprintf(&b, "\nfunc (c *%sClient) %s(%s) %s {\n", model.Struct, m.Name, strings.Join(params, ", "), results)
		fmt.Fprintf(&b, "\treturn c.svc.%s(%s)\n}\n", m.Name, strings.Join(names, ", "))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// Generate is Load followed by Emit.
func Generate(w io.Writer, pattern, structName string) error {
	model, err := Load(pattern, structName)
	if err != nil {
		return err
	}
	return Emit(w, model)
}

func defaultImportName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i != -1 {
		return path[i+1:]
	}
	return path
}
