// Package gogen emits Go source for validated Avro schemas.
//
// One file is produced per top-level schema, at the namespace directory of
// that schema. Named types declared inline (nested records, enums and
// fixeds) are emitted into the same file in order of first appearance.
package gogen

import (
	"bytes"
	"fmt"
	"go/format"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/EmundoT/avrogen/internal/schema"
	"github.com/EmundoT/avrogen/internal/types"
)

const generatedMarker = "// Code generated by avrogen. DO NOT EDIT."

// Generate renders the Go source file for a top-level named schema.
func Generate(node schema.Node, opts types.CompilerOptions) ([]byte, error) {
	name, namespace, ok := schema.NameOf(node)
	if !ok || !schema.IsNamed(node) {
		return nil, fmt.Errorf("cannot generate code for unnamed %s schema", schema.Kind(node))
	}

	fallback := opts.PackageName
	if fallback == "" {
		fallback = "avro"
	}
	e := &emitter{
		opts:     opts,
		home:     namespace,
		pkg:      packageName(namespace, fallback),
		fallback: fallback,
		imports:  make(map[string]string),
		declared: make(map[string]string),
	}
	if err := e.enqueue(node); err != nil {
		return nil, err
	}
	for i := 0; i < len(e.queue); i++ {
		if err := e.emit(e.queue[i]); err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
	}

	var file bytes.Buffer
	if opts.CustomHeader != "" {
		for _, line := range strings.Split(strings.TrimRight(opts.CustomHeader, "\n"), "\n") {
			file.WriteString(strings.TrimRight("// "+line, " "))
			file.WriteByte('\n')
		}
		file.WriteByte('\n')
	}
	file.WriteString(generatedMarker)
	file.WriteString("\n\npackage ")
	file.WriteString(e.pkg)
	file.WriteString("\n\n")
	e.writeImports(&file)
	file.Write(e.body.Bytes())

	out, err := format.Source(file.Bytes())
	if err != nil {
		return nil, fmt.Errorf("format generated source for %s: %w", name, err)
	}
	return out, nil
}

type emitter struct {
	opts     types.CompilerOptions
	home     string // namespace of the top-level schema
	pkg      string
	fallback string

	queue    []schema.Node
	declared map[string]string // Go type name -> Avro full name
	imports  map[string]string // import path -> local name
	body     bytes.Buffer
}

// enqueue schedules a named declaration for emission, once.
func (e *emitter) enqueue(n schema.Node) error {
	goName := e.typeName(n)
	full := schema.FullName(n)
	if prev, ok := e.declared[goName]; ok {
		if prev == full {
			return nil
		}
		return fmt.Errorf("types %s and %s both map to Go type %s", prev, full, goName)
	}
	e.declared[goName] = full
	e.queue = append(e.queue, n)
	return nil
}

func (e *emitter) typeName(n schema.Node) string {
	name, _, _ := schema.NameOf(n)
	return exportedName(name)
}

func (e *emitter) printf(format string, args ...any) {
	fmt.Fprintf(&e.body, format, args...)
}

func (e *emitter) emit(n schema.Node) error {
	switch v := n.(type) {
	case *schema.Record:
		return e.emitRecord(v)
	case *schema.Enum:
		e.emitEnum(v)
		return nil
	case *schema.Fixed:
		e.emitFixed(v)
		return nil
	case *schema.Array, *schema.Map, *schema.Union, *schema.Primitive, *schema.Ref:
		return fmt.Errorf("cannot declare unnamed %s", schema.Kind(n))
	default:
		panic(fmt.Sprintf("gogen: unknown schema node %T", n))
	}
}

type fieldInfo struct {
	avroName string
	goName   string // struct field name
	accessor string // exported accessor base name
	goType   string
	nullable bool
	pointer  bool // nullable wrapped in a pointer by us
	elem     string
	doc      string
}

func (e *emitter) emitRecord(r *schema.Record) error {
	typeName := exportedName(r.Name)
	private := e.opts.FieldVisibility == types.VisibilityPrivate

	fields := make([]fieldInfo, 0, len(r.Fields))
	seen := make(map[string]string, len(r.Fields))
	for _, f := range r.Fields {
		goType, err := e.goType(f.Type)
		if err != nil {
			return fmt.Errorf("field %s: %w", f.Name, err)
		}
		info := fieldInfo{
			avroName: f.Name,
			accessor: exportedName(f.Name),
			goType:   goType,
			doc:      f.Doc,
		}
		if u, ok := f.Type.(*schema.Union); ok {
			if inner, ok := u.NullableOf(); ok {
				info.nullable = true
				elem, err := e.goType(inner)
				if err != nil {
					return fmt.Errorf("field %s: %w", f.Name, err)
				}
				info.elem = elem
				info.pointer = !nillable(elem)
			}
		}
		info.goName = info.accessor
		if private {
			info.goName = unexportedName(f.Name)
		}
		if prev, dup := seen[info.accessor]; dup {
			return fmt.Errorf("fields %s and %s both map to %s", prev, f.Name, info.accessor)
		}
		seen[info.accessor] = f.Name
		fields = append(fields, info)
	}

	e.writeDoc(typeName, r.Doc, fmt.Sprintf("is the Avro record %s.", schema.FullName(r)))
	e.printf("type %s struct {\n", typeName)
	for _, f := range fields {
		if f.doc != "" {
			e.writeComment(f.doc, "\t")
		}
		tag := fmt.Sprintf("avro:%q", f.avroName)
		if e.opts.NullSafeAnnotations {
			tag += fmt.Sprintf(" nullable:%q", strconv.FormatBool(f.nullable))
		}
		e.printf("\t%s %s `%s`\n", f.goName, f.goType, tag)
	}
	e.printf("}\n\n")

	recv := receiverName(typeName)
	if private {
		for _, f := range fields {
			e.printf("// %s returns the %s field.\n", f.accessor, f.avroName)
			e.printf("func (%s *%s) %s() %s { return %s.%s }\n\n", recv, typeName, f.accessor, f.goType, recv, f.goName)
			e.printf("// Set%s sets the %s field.\n", f.accessor, f.avroName)
			e.printf("func (%s *%s) Set%s(v %s) { %s.%s = v }\n\n", recv, typeName, f.accessor, f.goType, recv, f.goName)
		}
	}
	if e.opts.OptionalGetters {
		for _, f := range fields {
			if !f.nullable {
				continue
			}
			e.printf("// Get%sOptional returns the %s field and whether it is set.\n", f.accessor, f.avroName)
			e.printf("func (%s *%s) Get%sOptional() (%s, bool) {\n", recv, typeName, f.accessor, f.elem)
			if f.pointer {
				e.printf("\tif %s.%s == nil {\n\t\tvar zero %s\n\t\treturn zero, false\n\t}\n", recv, f.goName, f.elem)
				e.printf("\treturn *%s.%s, true\n}\n\n", recv, f.goName)
			} else {
				e.printf("\treturn %s.%s, %s.%s != nil\n}\n\n", recv, f.goName, recv, f.goName)
			}
		}
	}
	return nil
}

func (e *emitter) emitEnum(en *schema.Enum) {
	typeName := exportedName(en.Name)
	e.writeDoc(typeName, en.Doc, fmt.Sprintf("is the Avro enum %s.", schema.FullName(en)))
	e.printf("type %s string\n\n", typeName)

	if len(en.Symbols) > 0 {
		e.printf("const (\n")
		for _, s := range en.Symbols {
			e.printf("\t%s%s %s = %q\n", typeName, exportedName(s), typeName, s)
		}
		e.printf(")\n\n")
	}

	recv := receiverName(typeName)
	e.printf("// Valid reports whether %s is one of the declared symbols.\n", recv)
	e.printf("func (%s %s) Valid() bool {\n", recv, typeName)
	if len(en.Symbols) > 0 {
		e.printf("\tswitch %s {\n\tcase ", recv)
		for i, s := range en.Symbols {
			if i > 0 {
				e.printf(", ")
			}
			e.printf("%s%s", typeName, exportedName(s))
		}
		e.printf(":\n\t\treturn true\n\t}\n")
	}
	e.printf("\treturn false\n}\n\n")
}

func (e *emitter) emitFixed(f *schema.Fixed) {
	typeName := exportedName(f.Name)
	e.writeDoc(typeName, "", fmt.Sprintf("is the Avro fixed %s of %d bytes.", schema.FullName(f), f.Size))
	e.printf("type %s [%d]byte\n\n", typeName, f.Size)

	if e.opts.DecimalLogicalType && f.LogicalType == "decimal" {
		e.imports["math/big"] = "big"
		recv := receiverName(typeName)
		e.printf("// Decimal decodes the two's-complement unscaled value with scale %d.\n", f.Scale)
		e.printf("func (%s %s) Decimal() *big.Rat {\n", recv, typeName)
		e.printf("\tn := new(big.Int).SetBytes(%s[:])\n", recv)
		e.printf("\tif len(%s) > 0 && %s[0]&0x80 != 0 {\n", recv, recv)
		e.printf("\t\tn.Sub(n, new(big.Int).Lsh(big.NewInt(1), uint(len(%s)*8)))\n\t}\n", recv)
		e.printf("\treturn new(big.Rat).SetFrac(n, new(big.Int).Exp(big.NewInt(10), big.NewInt(%d), nil))\n}\n\n", f.Scale)
	}
}

// goType maps a schema node to the Go type used for a field or element.
// Inline named declarations are queued for emission as a side effect.
func (e *emitter) goType(n schema.Node) (string, error) {
	switch v := n.(type) {
	case *schema.Primitive:
		return e.primitiveType(v), nil
	case *schema.Record, *schema.Enum, *schema.Fixed:
		if err := e.enqueue(v); err != nil {
			return "", err
		}
		return e.typeName(v), nil
	case *schema.Ref:
		return e.refType(v)
	case *schema.Array:
		elem, err := e.goType(v.Items)
		if err != nil {
			return "", err
		}
		return "[]" + elem, nil
	case *schema.Map:
		elem, err := e.goType(v.Values)
		if err != nil {
			return "", err
		}
		return "map[string]" + elem, nil
	case *schema.Union:
		// Every member is resolved so nested declarations are still emitted.
		members := make([]string, len(v.Members))
		for i, m := range v.Members {
			t, err := e.goType(m)
			if err != nil {
				return "", err
			}
			members[i] = t
		}
		if inner, ok := v.NullableOf(); ok {
			t, _ := e.goType(inner)
			if nillable(t) {
				return t, nil
			}
			return "*" + t, nil
		}
		return "any", nil
	default:
		panic(fmt.Sprintf("gogen: unknown schema node %T", n))
	}
}

func (e *emitter) primitiveType(p *schema.Primitive) string {
	switch p.Kind {
	case schema.Null:
		return "struct{}"
	case schema.Boolean:
		return "bool"
	case schema.Int:
		return "int32"
	case schema.Long:
		return "int64"
	case schema.Float:
		return "float32"
	case schema.Double:
		return "float64"
	case schema.Bytes:
		if e.opts.DecimalLogicalType && p.LogicalType == "decimal" {
			e.imports["math/big"] = "big"
			return "*big.Rat"
		}
		return "[]byte"
	case schema.String:
		switch e.opts.StringType {
		case types.StringTypeCharSequence:
			return "[]rune"
		case types.StringTypeUtf8:
			return "[]byte"
		default:
			return "string"
		}
	default:
		panic(fmt.Sprintf("gogen: unknown primitive %q", p.Kind))
	}
}

// refType names a previously declared type. Types declared by another
// top-level schema in a different namespace live in another package and
// need the module path to be imported.
func (e *emitter) refType(r *schema.Ref) (string, error) {
	local := exportedName(r.Name)
	if r.Home == e.home {
		return local, nil
	}
	if e.opts.ModulePath == "" {
		return "", fmt.Errorf("reference to %s in namespace %q requires module_path to import its package",
			schema.FullName(r), r.Home)
	}
	importPath := e.opts.ModulePath
	if r.Home != "" {
		importPath = path.Join(importPath, strings.ReplaceAll(r.Home, ".", "/"))
	}
	return e.importName(importPath, packageName(r.Home, e.fallback)) + "." + local, nil
}

// importName registers an import and returns its local name, suffixing a
// number when two paths share a package name.
func (e *emitter) importName(importPath, want string) string {
	if name, ok := e.imports[importPath]; ok {
		return name
	}
	taken := make(map[string]bool, len(e.imports))
	for _, n := range e.imports {
		taken[n] = true
	}
	name := want
	for i := 2; taken[name]; i++ {
		name = fmt.Sprintf("%s%d", want, i)
	}
	e.imports[importPath] = name
	return name
}

func (e *emitter) writeImports(w *bytes.Buffer) {
	if len(e.imports) == 0 {
		return
	}
	paths := make([]string, 0, len(e.imports))
	for p := range e.imports {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	w.WriteString("import (\n")
	for _, p := range paths {
		name := e.imports[p]
		if name == path.Base(p) {
			fmt.Fprintf(w, "\t%q\n", p)
		} else {
			fmt.Fprintf(w, "\t%s %q\n", name, p)
		}
	}
	w.WriteString(")\n\n")
}

func (e *emitter) writeDoc(typeName, doc, fallback string) {
	if doc == "" {
		e.printf("// %s %s\n", typeName, fallback)
		return
	}
	e.writeComment(typeName+": "+doc, "")
}

func (e *emitter) writeComment(text, indent string) {
	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		e.printf("%s// %s\n", indent, strings.TrimSpace(line))
	}
}

func nillable(goType string) bool {
	return goType == "any" ||
		strings.HasPrefix(goType, "[]") ||
		strings.HasPrefix(goType, "map[") ||
		strings.HasPrefix(goType, "*")
}

func receiverName(typeName string) string {
	return strings.ToLower(typeName[:1])
}
