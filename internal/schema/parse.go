package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/EmundoT/avrogen/internal/types"
)

// File is the parse result of one schema document. An .avsc file holds
// exactly one schema; an .avpr protocol holds one per declared type.
type File struct {
	Path      string
	Kind      types.SourceKind
	Protocol  string
	Namespace string
	Schemas   []Node
}

// ParseError reports malformed schema text.
type ParseError struct {
	Path string
	Msg  string
	Err  error
}

func (e *ParseError) Error() string {
	var b strings.Builder
	if e.Path != "" {
		b.WriteString(filepath.Base(e.Path))
		b.WriteString(": ")
	}
	b.WriteString(e.Msg)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *ParseError) Unwrap() error { return e.Err }

var nameRE = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// KindForPath maps a file extension to its source kind.
func KindForPath(path string) (types.SourceKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".avsc":
		return types.KindAVSC, true
	case ".avpr":
		return types.KindAVPR, true
	default:
		return "", false
	}
}

// ParseFile parses data according to the extension of path.
func ParseFile(path string, data []byte) (*File, error) {
	kind, ok := KindForPath(path)
	if !ok {
		return nil, &ParseError{Path: path, Msg: "unsupported schema file extension " + filepath.Ext(path)}
	}

	var (
		f   *File
		err error
	)
	if kind == types.KindAVPR {
		f, err = ParseProtocol(data)
	} else {
		var n Node
		n, err = ParseSchema(data)
		if err == nil {
			f = &File{Kind: types.KindAVSC, Schemas: []Node{n}}
		}
	}
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Path = path
			return nil, pe
		}
		return nil, &ParseError{Path: path, Msg: "parse", Err: err}
	}
	f.Path = path
	return f, nil
}

// ParseSchema parses a single .avsc document. The top-level schema must be
// a named type.
func ParseSchema(data []byte) (Node, error) {
	raw, err := decode(data)
	if err != nil {
		return nil, err
	}
	p := newParser()
	n, err := p.parseTopLevel(raw, "")
	if err != nil {
		return nil, err
	}
	return n, nil
}

// ParseProtocol parses an .avpr document and returns its declared types in order.
func ParseProtocol(data []byte) (*File, error) {
	raw, err := decode(data)
	if err != nil {
		return nil, err
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, &ParseError{Msg: "protocol must be a JSON object"}
	}
	name, _ := obj["protocol"].(string)
	if strings.TrimSpace(name) == "" {
		return nil, &ParseError{Msg: "protocol is missing a name"}
	}
	namespace, _ := obj["namespace"].(string)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		namespace, name = name[:i], name[i+1:]
	}

	f := &File{Kind: types.KindAVPR, Protocol: name, Namespace: namespace}
	rawTypes, present := obj["types"]
	if !present {
		return f, nil
	}
	list, ok := rawTypes.([]any)
	if !ok {
		return nil, &ParseError{Msg: fmt.Sprintf("protocol %s: types must be an array", name)}
	}

	p := newParser()
	for i, rt := range list {
		n, err := p.parseTopLevel(rt, namespace)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Msg = fmt.Sprintf("protocol %s type #%d: %s", name, i, pe.Msg)
				return nil, pe
			}
			return nil, err
		}
		f.Schemas = append(f.Schemas, n)
	}
	return f, nil
}

func decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, &ParseError{Msg: "invalid JSON", Err: err}
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, &ParseError{Msg: "unexpected data after schema"}
	}
	return raw, nil
}

type parser struct {
	declared map[string]Node
	homes    map[string]string
	home     string
}

func newParser() *parser {
	return &parser{
		declared: make(map[string]Node),
		homes:    make(map[string]string),
	}
}

func (p *parser) parseTopLevel(raw any, namespace string) (Node, error) {
	p.home = topLevelNamespace(raw, namespace)
	n, err := p.parse(raw, namespace)
	if err != nil {
		return nil, err
	}
	if !IsNamed(n) {
		return nil, &ParseError{Msg: fmt.Sprintf("top-level schema must be a named type (record, enum or fixed), got %s", Kind(n))}
	}
	return n, nil
}

// topLevelNamespace predicts the namespace a top-level named schema will get,
// so nested declarations can record where they live before the parent finishes.
func topLevelNamespace(raw any, enclosing string) string {
	obj, ok := raw.(map[string]any)
	if !ok {
		return enclosing
	}
	name, _ := obj["name"].(string)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		return name[:i]
	}
	if ns, ok := obj["namespace"].(string); ok {
		return ns
	}
	return enclosing
}

func (p *parser) parse(raw any, namespace string) (Node, error) {
	switch v := raw.(type) {
	case string:
		return p.resolve(v, namespace)
	case []any:
		u := &Union{Members: make([]Node, 0, len(v))}
		for _, m := range v {
			n, err := p.parse(m, namespace)
			if err != nil {
				return nil, err
			}
			u.Members = append(u.Members, n)
		}
		return u, nil
	case map[string]any:
		return p.parseObject(v, namespace)
	default:
		return nil, &ParseError{Msg: fmt.Sprintf("unexpected schema value %v", raw)}
	}
}

func (p *parser) parseObject(obj map[string]any, namespace string) (Node, error) {
	rawType, ok := obj["type"]
	if !ok {
		return nil, &ParseError{Msg: "schema object is missing \"type\""}
	}
	typeName, ok := rawType.(string)
	if !ok {
		return p.parse(rawType, namespace)
	}

	switch typeName {
	case "record", "error":
		return p.parseRecord(obj, namespace)
	case "enum":
		return p.parseEnum(obj, namespace)
	case "fixed":
		return p.parseFixed(obj, namespace)
	case "array":
		items, ok := obj["items"]
		if !ok {
			return nil, &ParseError{Msg: "array is missing \"items\""}
		}
		n, err := p.parse(items, namespace)
		if err != nil {
			return nil, err
		}
		return &Array{Items: n}, nil
	case "map":
		values, ok := obj["values"]
		if !ok {
			return nil, &ParseError{Msg: "map is missing \"values\""}
		}
		n, err := p.parse(values, namespace)
		if err != nil {
			return nil, err
		}
		return &Map{Values: n}, nil
	}

	if kind, ok := primitiveKinds[typeName]; ok {
		prim := &Primitive{Kind: kind}
		prim.LogicalType, _ = obj["logicalType"].(string)
		prim.Precision = intAttr(obj, "precision")
		prim.Scale = intAttr(obj, "scale")
		return prim, nil
	}
	return p.resolve(typeName, namespace)
}

func (p *parser) parseRecord(obj map[string]any, enclosing string) (Node, error) {
	name, namespace, err := p.declName(obj, enclosing, "record")
	if err != nil {
		return nil, err
	}
	rec := &Record{Name: name, Namespace: namespace}
	rec.Doc, _ = obj["doc"].(string)
	// Registered before the fields so self references resolve.
	if err := p.declare(rec); err != nil {
		return nil, err
	}

	rawFields, present := obj["fields"]
	if !present {
		return rec, nil
	}
	list, ok := rawFields.([]any)
	if !ok {
		return nil, &ParseError{Msg: fmt.Sprintf("record %s: fields must be an array", name)}
	}

	seen := make(map[string]bool, len(list))
	rec.Fields = make([]Field, 0, len(list))
	for i, rf := range list {
		fobj, ok := rf.(map[string]any)
		if !ok {
			return nil, &ParseError{Msg: fmt.Sprintf("record %s: field #%d must be an object", name, i)}
		}
		fname, _ := fobj["name"].(string)
		if strings.TrimSpace(fname) != "" {
			if seen[fname] {
				return nil, &ParseError{Msg: fmt.Sprintf("record %s: duplicate field %q", name, fname)}
			}
			seen[fname] = true
		}
		rawType, ok := fobj["type"]
		if !ok {
			return nil, &ParseError{Msg: fmt.Sprintf("record %s: field %q is missing \"type\"", name, fname)}
		}
		ft, err := p.parse(rawType, namespace)
		if err != nil {
			return nil, err
		}
		field := Field{Name: fname, Type: ft}
		field.Doc, _ = fobj["doc"].(string)
		_, field.HasDefault = fobj["default"]
		rec.Fields = append(rec.Fields, field)
	}
	return rec, nil
}

func (p *parser) parseEnum(obj map[string]any, enclosing string) (Node, error) {
	name, namespace, err := p.declName(obj, enclosing, "enum")
	if err != nil {
		return nil, err
	}
	enum := &Enum{Name: name, Namespace: namespace}
	enum.Doc, _ = obj["doc"].(string)

	if rawSymbols, present := obj["symbols"]; present {
		list, ok := rawSymbols.([]any)
		if !ok {
			return nil, &ParseError{Msg: fmt.Sprintf("enum %s: symbols must be an array", name)}
		}
		seen := make(map[string]bool, len(list))
		for _, rs := range list {
			s, ok := rs.(string)
			if !ok || !nameRE.MatchString(s) {
				return nil, &ParseError{Msg: fmt.Sprintf("enum %s: invalid symbol %v", name, rs)}
			}
			if seen[s] {
				return nil, &ParseError{Msg: fmt.Sprintf("enum %s: duplicate symbol %q", name, s)}
			}
			seen[s] = true
			enum.Symbols = append(enum.Symbols, s)
		}
	}
	if err := p.declare(enum); err != nil {
		return nil, err
	}
	return enum, nil
}

func (p *parser) parseFixed(obj map[string]any, enclosing string) (Node, error) {
	name, namespace, err := p.declName(obj, enclosing, "fixed")
	if err != nil {
		return nil, err
	}
	if _, ok := obj["size"]; !ok {
		return nil, &ParseError{Msg: fmt.Sprintf("fixed %s is missing \"size\"", name)}
	}
	size := intAttr(obj, "size")
	if size < 0 {
		return nil, &ParseError{Msg: fmt.Sprintf("fixed %s has negative size %d", name, size)}
	}
	fixed := &Fixed{Name: name, Namespace: namespace, Size: size}
	fixed.LogicalType, _ = obj["logicalType"].(string)
	fixed.Precision = intAttr(obj, "precision")
	fixed.Scale = intAttr(obj, "scale")
	if err := p.declare(fixed); err != nil {
		return nil, err
	}
	return fixed, nil
}

// declName resolves the simple name and namespace of a named declaration.
func (p *parser) declName(obj map[string]any, enclosing, what string) (string, string, error) {
	raw, _ := obj["name"].(string)
	if raw == "" {
		return "", "", &ParseError{Msg: what + " is missing a name"}
	}
	name, namespace := raw, enclosing
	if ns, ok := obj["namespace"].(string); ok {
		namespace = ns
	}
	if i := strings.LastIndexByte(raw, '.'); i >= 0 {
		namespace, name = raw[:i], raw[i+1:]
	}
	if !nameRE.MatchString(name) {
		return "", "", &ParseError{Msg: fmt.Sprintf("invalid %s name %q", what, raw)}
	}
	return name, namespace, nil
}

func (p *parser) declare(n Node) error {
	full := FullName(n)
	if _, dup := p.declared[full]; dup {
		return &ParseError{Msg: fmt.Sprintf("type %s is defined more than once", full)}
	}
	p.declared[full] = n
	p.homes[full] = p.home
	return nil
}

// resolve turns a type name into a primitive or a reference to an earlier
// declaration. Unqualified names are tried in the enclosing namespace first.
func (p *parser) resolve(name, namespace string) (Node, error) {
	if kind, ok := primitiveKinds[name]; ok {
		return &Primitive{Kind: kind}, nil
	}
	candidates := []string{name}
	if !strings.Contains(name, ".") && namespace != "" {
		candidates = []string{namespace + "." + name, name}
	}
	for _, full := range candidates {
		decl, ok := p.declared[full]
		if !ok {
			continue
		}
		declName, declNS, _ := NameOf(decl)
		return &Ref{Name: declName, Namespace: declNS, Home: p.homes[full]}, nil
	}
	return nil, &ParseError{Msg: fmt.Sprintf("unknown type %q", name)}
}

func intAttr(obj map[string]any, key string) int {
	switch v := obj[key].(type) {
	case json.Number:
		i, err := v.Int64()
		if err != nil {
			return 0
		}
		return int(i)
	case float64:
		return int(v)
	default:
		return 0
	}
}
