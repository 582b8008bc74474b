// Package schema models Avro schemas as a closed tree of node variants and
// parses .avsc and .avpr documents into it.
//
// A Node is one of *Record, *Enum, *Array, *Map, *Union, *Fixed, *Primitive
// or *Ref. The set is closed: only this package can add variants, and every
// type switch over Node ends in a default branch that panics.
//
// Trees are immutable once returned by the parser. Named types referenced a
// second time (including recursive references) appear as *Ref leaves, so a
// tree never contains cycles.
package schema

import (
	"fmt"
	"strings"
)

// Node is a schema tree node.
type Node interface {
	node()
}

// PrimitiveKind enumerates the Avro primitive types.
type PrimitiveKind string

const (
	Null    PrimitiveKind = "null"
	Boolean PrimitiveKind = "boolean"
	Int     PrimitiveKind = "int"
	Long    PrimitiveKind = "long"
	Float   PrimitiveKind = "float"
	Double  PrimitiveKind = "double"
	Bytes   PrimitiveKind = "bytes"
	String  PrimitiveKind = "string"
)

var primitiveKinds = map[string]PrimitiveKind{
	"null":    Null,
	"boolean": Boolean,
	"int":     Int,
	"long":    Long,
	"float":   Float,
	"double":  Double,
	"bytes":   Bytes,
	"string":  String,
}

// Record is a named record with an ordered field list.
type Record struct {
	Name      string
	Namespace string
	Doc       string
	Fields    []Field
}

// Field is one record field.
type Field struct {
	Name       string
	Doc        string
	Type       Node
	HasDefault bool
}

// Enum is a named enumeration.
type Enum struct {
	Name      string
	Namespace string
	Doc       string
	Symbols   []string
}

// Array is an unnamed array of Items.
type Array struct {
	Items Node
}

// Map is an unnamed string-keyed map of Values.
type Map struct {
	Values Node
}

// Union is an ordered list of member types.
type Union struct {
	Members []Node
}

// Fixed is a named fixed-size byte sequence.
type Fixed struct {
	Name        string
	Namespace   string
	Size        int
	LogicalType string
	Precision   int
	Scale       int
}

// Primitive is a primitive type, optionally annotated with a logical type.
type Primitive struct {
	Kind        PrimitiveKind
	LogicalType string
	Precision   int
	Scale       int
}

// Ref points at a named type declared earlier in the same document.
// Home is the namespace of the top-level schema that declared it.
type Ref struct {
	Name      string
	Namespace string
	Home      string
}

func (*Record) node()    {}
func (*Enum) node()      {}
func (*Array) node()     {}
func (*Map) node()       {}
func (*Union) node()     {}
func (*Fixed) node()     {}
func (*Primitive) node() {}
func (*Ref) node()       {}

// FullName returns namespace.name for named nodes and refs, "" otherwise.
func FullName(n Node) string {
	switch v := n.(type) {
	case *Record:
		return qualify(v.Namespace, v.Name)
	case *Enum:
		return qualify(v.Namespace, v.Name)
	case *Fixed:
		return qualify(v.Namespace, v.Name)
	case *Ref:
		return qualify(v.Namespace, v.Name)
	case *Array, *Map, *Union, *Primitive:
		return ""
	default:
		panic(fmt.Sprintf("schema: unknown node %T", n))
	}
}

// NameOf returns the simple name and namespace of a named node.
// ok is false for unnamed variants.
func NameOf(n Node) (name, namespace string, ok bool) {
	switch v := n.(type) {
	case *Record:
		return v.Name, v.Namespace, true
	case *Enum:
		return v.Name, v.Namespace, true
	case *Fixed:
		return v.Name, v.Namespace, true
	case *Ref:
		return v.Name, v.Namespace, true
	case *Array, *Map, *Union, *Primitive:
		return "", "", false
	default:
		panic(fmt.Sprintf("schema: unknown node %T", n))
	}
}

// IsNamed reports whether n declares a named type.
func IsNamed(n Node) bool {
	switch n.(type) {
	case *Record, *Enum, *Fixed:
		return true
	case *Array, *Map, *Union, *Primitive, *Ref:
		return false
	default:
		panic(fmt.Sprintf("schema: unknown node %T", n))
	}
}

// Kind returns the Avro type name of the node ("record", "enum", "array", ...).
func Kind(n Node) string {
	switch v := n.(type) {
	case *Record:
		return "record"
	case *Enum:
		return "enum"
	case *Array:
		return "array"
	case *Map:
		return "map"
	case *Union:
		return "union"
	case *Fixed:
		return "fixed"
	case *Primitive:
		return string(v.Kind)
	case *Ref:
		return "ref"
	default:
		panic(fmt.Sprintf("schema: unknown node %T", n))
	}
}

// NullableOf returns T when the union is exactly ["null", T] or [T, "null"].
func (u *Union) NullableOf() (Node, bool) {
	if len(u.Members) != 2 {
		return nil, false
	}
	if isNull(u.Members[0]) && !isNull(u.Members[1]) {
		return u.Members[1], true
	}
	if isNull(u.Members[1]) && !isNull(u.Members[0]) {
		return u.Members[0], true
	}
	return nil, false
}

func isNull(n Node) bool {
	p, ok := n.(*Primitive)
	return ok && p.Kind == Null
}

// OutputPath derives the slash-separated relative output path of a named
// top-level schema: namespace segments, then the name plus ext.
func OutputPath(n Node, ext string) (string, error) {
	name, namespace, ok := NameOf(n)
	if !ok || name == "" {
		return "", fmt.Errorf("cannot derive output path for unnamed %s schema", Kind(n))
	}
	file := name + ext
	if namespace == "" {
		return file, nil
	}
	return strings.ReplaceAll(namespace, ".", "/") + "/" + file, nil
}

func qualify(namespace, name string) string {
	if namespace == "" {
		return name
	}
	return namespace + "." + name
}

// Walk calls visit for n and every node below it, depth-first in
// declaration order. Refs are visited but not followed.
func Walk(n Node, visit func(Node)) {
	visit(n)
	switch v := n.(type) {
	case *Record:
		for _, f := range v.Fields {
			Walk(f.Type, visit)
		}
	case *Array:
		Walk(v.Items, visit)
	case *Map:
		Walk(v.Values, visit)
	case *Union:
		for _, m := range v.Members {
			Walk(m, visit)
		}
	case *Enum, *Fixed, *Primitive, *Ref:
	default:
		panic(fmt.Sprintf("schema: unknown node %T", n))
	}
}

// Declarations returns the full names of every named type declared in the
// tree rooted at n, including n itself.
func Declarations(n Node) []string {
	var names []string
	Walk(n, func(v Node) {
		if IsNamed(v) {
			names = append(names, FullName(v))
		}
	})
	return names
}

// References returns the distinct full names the tree rooted at n refers to
// by name, in order of first appearance.
func References(n Node) []string {
	var names []string
	seen := make(map[string]bool)
	Walk(n, func(v Node) {
		if r, ok := v.(*Ref); ok && !seen[FullName(r)] {
			seen[FullName(r)] = true
			names = append(names, FullName(r))
		}
	})
	return names
}
