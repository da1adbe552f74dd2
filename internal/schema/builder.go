package schema

import (
	"fmt"
)

// Builder accumulates type declarations and produces an immutable Schema.
// Build fails on any reference to an undeclared type, a missing root query
// type, or a duplicate declaration; a schema that builds is safe to resolve
// against without runtime checks.
type Builder struct {
	s    *Schema
	errs []error
}

// NewBuilder returns a Builder preloaded with the built-in scalars and the
// @skip/@include directives.
func NewBuilder() *Builder {
	b := &Builder{s: &Schema{
		Types:      make(map[string]*Type),
		Directives: make(map[string]*Directive),
	}}
	for _, t := range []*Type{stringType, intType, floatType, booleanType, idType} {
		b.s.Types[t.Name] = t
	}
	b.s.Directives[includeDirective.Name] = includeDirective
	b.s.Directives[skipDirective.Name] = skipDirective
	return b
}

// QueryType declares which object type serves as the query root.
func (b *Builder) QueryType(name string) *Builder {
	b.s.QueryType = name
	return b
}

// Object declares an object type with the given fields.
func (b *Builder) Object(name, description string, fields ...*Field) *Builder {
	if _, dup := b.s.Types[name]; dup {
		b.errs = append(b.errs, fmt.Errorf("type %q declared twice", name))
		return b
	}
	b.s.Types[name] = &Type{Name: name, Kind: TypeKindObject, Description: description, Fields: fields}
	return b
}

// Build validates the accumulated declarations and returns the Schema.
func (b *Builder) Build() (*Schema, error) {
	if len(b.errs) > 0 {
		return nil, b.errs[0]
	}
	if b.s.QueryType == "" {
		return nil, fmt.Errorf("schema: no query type declared")
	}
	if qt := b.s.Types[b.s.QueryType]; qt == nil || qt.Kind != TypeKindObject {
		return nil, fmt.Errorf("schema: query type %q is not a declared object type", b.s.QueryType)
	}
	for _, t := range b.s.Types {
		if t.Kind != TypeKindObject {
			continue
		}
		seen := make(map[string]struct{}, len(t.Fields))
		for _, f := range t.Fields {
			if _, dup := seen[f.Name]; dup {
				return nil, fmt.Errorf("schema: field %s.%s declared twice", t.Name, f.Name)
			}
			seen[f.Name] = struct{}{}
			if err := b.checkRef(t.Name, f.Name, f.Type); err != nil {
				return nil, err
			}
			for _, arg := range f.Arguments {
				if err := b.checkRef(t.Name, f.Name+"("+arg.Name+")", arg.Type); err != nil {
					return nil, err
				}
			}
		}
	}
	return b.s, nil
}

// MustBuild is Build for startup paths where a broken declaration set is a
// programming error.
func MustBuild(b *Builder) *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

func (b *Builder) checkRef(typeName, fieldName string, ref *TypeRef) error {
	if ref == nil {
		return fmt.Errorf("schema: field %s.%s has no type", typeName, fieldName)
	}
	named := ref.GetNamedType()
	if named == "" {
		return fmt.Errorf("schema: field %s.%s has a malformed type reference", typeName, fieldName)
	}
	if _, ok := b.s.Types[named]; !ok {
		return fmt.Errorf("schema: field %s.%s references undeclared type %q", typeName, fieldName, named)
	}
	return nil
}

// FieldDef is a convenience constructor used by domain schema declarations.
func FieldDef(name string, t *TypeRef) *Field { return &Field{Name: name, Type: t} }

// AsyncField declares a store-backed field with its relation binding.
func AsyncField(name string, t *TypeRef, rel *Relation, args ...*InputValue) *Field {
	return &Field{Name: name, Type: t, Async: true, Relation: rel, Arguments: args}
}

// Arg declares a field argument.
func Arg(name string, t *TypeRef) *InputValue { return &InputValue{Name: name, Type: t} }
