package core

import (
	"fmt"
	"strings"

	"github.com/EmundoT/avrogen/internal/schema"
	"github.com/EmundoT/avrogen/internal/types"
)

// SchemaValidator checks the structural invariants of one top-level schema.
type SchemaValidator interface {
	Validate(node schema.Node, ctx ValidationContext) types.ValidationOutcome
}

// ValidationContext identifies the file a schema came from.
type ValidationContext struct {
	FileName string
}

// Compile-time interface satisfaction check.
var _ SchemaValidator = (*StructuralValidator)(nil)

// StructuralValidator walks a schema tree depth-first and collects every
// violation instead of stopping at the first one:
//   - records need at least one field and no blank field names
//   - enums need at least one symbol
//   - unions need at least one member
//
// Arrays, maps and unions are descended into; nested records are held to
// the same rules as top-level ones. Refs are leaves, their declaration is
// checked where it appears.
type StructuralValidator struct{}

// NewStructuralValidator creates a new StructuralValidator
func NewStructuralValidator() *StructuralValidator {
	return &StructuralValidator{}
}

// Validate returns a fresh outcome for node. The context is not used in the
// messages; callers prefix the file name when they record failures.
func (v *StructuralValidator) Validate(node schema.Node, _ ValidationContext) types.ValidationOutcome {
	var errs []string
	walkSchema(node, "", &errs)
	return types.ValidationOutcome{Errors: errs}
}

// walkSchema appends violations under node. where names the enclosing
// record field, e.g. "User.tags", for messages about unnamed types.
func walkSchema(node schema.Node, where string, errs *[]string) {
	switch n := node.(type) {
	case *schema.Record:
		if len(n.Fields) == 0 {
			*errs = append(*errs, fmt.Sprintf("Record %s has no fields", n.Name))
		}
		for i, f := range n.Fields {
			if strings.TrimSpace(f.Name) == "" {
				*errs = append(*errs, fmt.Sprintf("Record %s has a blank field name at position %d", n.Name, i))
			}
			walkSchema(f.Type, fieldPath(n.Name, f.Name, i), errs)
		}
	case *schema.Enum:
		if len(n.Symbols) == 0 {
			*errs = append(*errs, fmt.Sprintf("Enum %s has no symbols", n.Name))
		}
	case *schema.Array:
		walkSchema(n.Items, where, errs)
	case *schema.Map:
		walkSchema(n.Values, where, errs)
	case *schema.Union:
		if len(n.Members) == 0 {
			if where == "" {
				where = "schema"
			}
			*errs = append(*errs, fmt.Sprintf("empty union in %s", where))
		}
		for _, m := range n.Members {
			walkSchema(m, where, errs)
		}
	case *schema.Fixed, *schema.Primitive, *schema.Ref:
	default:
		panic(fmt.Sprintf("validator: unknown schema node %T", node))
	}
}

func fieldPath(record, field string, i int) string {
	if strings.TrimSpace(field) == "" {
		field = fmt.Sprintf("#%d", i)
	}
	return record + "." + field
}
