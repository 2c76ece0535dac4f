package codegen

import (
	"context"
	"fmt"
	"strings"

	"github.com/windjammer-lang/windjammer/internal/ast"
	"github.com/windjammer-lang/windjammer/internal/codegen/rust"
)

// WasmBackend emits Rust with wasm_bindgen exports, a cdylib manifest, an
// HTML harness and TypeScript declarations for the exported functions.
type WasmBackend struct{}

func (WasmBackend) Name() string   { return "WebAssembly" }
func (WasmBackend) Target() Target { return TargetWasm }

func (WasmBackend) Generate(ctx context.Context, unit *Unit, cfg Config) (*Output, error) {
	out, err := generateRust(ctx, unit, rust.Config{Target: rust.TargetWasm}, cfg.Format)
	if err != nil {
		return nil, err
	}
	manifest, err := cargoManifest(out.Source, cfg, true)
	if err != nil {
		return nil, err
	}
	name := PackageIdent(cfg.PackageName)
	if cfg.PackageName == "" {
		name = "windjammer_app"
	}
	exports := exportedFunctions(unit.Program)
	out.TypeDefinitions = typeDefinitions(exports)
	out.AdditionalFiles = append(out.AdditionalFiles,
		File{Name: "Cargo.toml", Content: manifest},
		File{Name: "index.html", Content: htmlHarness(strings.ReplaceAll(name, "-", "_"), exports)},
	)
	return out, nil
}

func exportedFunctions(program *ast.Program) []*ast.FunctionDecl {
	var out []*ast.FunctionDecl
	for _, item := range program.Items {
		fn, ok := item.(*ast.FunctionDecl)
		if !ok || fn.ParentType != "" {
			continue
		}
		if ast.FindDecorator(fn.Decorators, "export") != nil {
			out = append(out, fn)
		}
	}
	return out
}

// typeDefinitions renders a .d.ts module for the exported functions
func typeDefinitions(fns []*ast.FunctionDecl) string {
	var b strings.Builder
	b.WriteString("/* tslint:disable */\n/* eslint-disable */\n")
	for _, fn := range fns {
		params := make([]string, 0, len(fn.Parameters))
		for _, p := range fn.Parameters {
			params = append(params, p.Name+": "+tsType(p.Type))
		}
		fmt.Fprintf(&b, "export function %s(%s): %s;\n", fn.Name, strings.Join(params, ", "), tsType(fn.ReturnType))
	}
	b.WriteString("export default function init(input?: RequestInfo | URL): Promise<void>;\n")
	return b.String()
}

func tsType(t ast.Type) string {
	switch ty := t.(type) {
	case nil:
		return "void"
	case *ast.PrimitiveType:
		switch ty.Kind {
		case ast.TypeBool:
			return "boolean"
		case ast.TypeString:
			return "string"
		case ast.TypeInt, ast.TypeUint:
			return "bigint"
		}
		return "number"
	case *ast.CustomType:
		switch ty.Name {
		case "bool":
			return "boolean"
		case "String", "str", "char":
			return "string"
		case "i64", "u64", "i128", "u128":
			return "bigint"
		case "i8", "i16", "i32", "u8", "u16", "u32", "isize", "usize", "f32", "f64":
			return "number"
		}
		return "any"
	case *ast.VecType:
		return tsArray(ty.Elem)
	case *ast.ArrayType:
		return tsArray(ty.Elem)
	case *ast.OptionType:
		return tsType(ty.Inner) + " | undefined"
	case *ast.ReferenceType:
		return tsType(ty.Inner)
	case *ast.MutableReferenceType:
		return tsType(ty.Inner)
	case *ast.TupleType:
		if len(ty.Elems) == 0 {
			return "void"
		}
	}
	return "any"
}

func tsArray(elem ast.Type) string {
	if ct, ok := elem.(*ast.CustomType); ok {
		switch ct.Name {
		case "u8":
			return "Uint8Array"
		case "i32":
			return "Int32Array"
		case "f32":
			return "Float32Array"
		case "f64":
			return "Float64Array"
		}
	}
	inner := tsType(elem)
	if strings.Contains(inner, " ") {
		inner = "(" + inner + ")"
	}
	return inner + "[]"
}

// htmlHarness renders a page that loads the wasm-pack output from ./pkg
func htmlHarness(module string, fns []*ast.FunctionDecl) string {
	var calls strings.Builder
	for _, fn := range fns {
		if len(fn.Parameters) == 0 {
			fmt.Fprintf(&calls, "      log(\"%s() = \" + wasm.%s());\n", fn.Name, fn.Name)
		} else {
			fmt.Fprintf(&calls, "      window.%s = wasm.%s;\n", fn.Name, fn.Name)
		}
	}
	return `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8">
  <title>` + module + `</title>
</head>
<body>
  <pre id="output"></pre>
  <script type="module">
    import init, * as wasm from "./pkg/` + module + `.js";

    function log(line) {
      document.getElementById("output").textContent += line + "\n";
    }

    init().then(() => {
      log("module loaded");
` + calls.String() + `    });
  </script>
</body>
</html>
`
}
