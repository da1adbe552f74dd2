// Package schema is the static registry of GraphQL types served by the API.
// A Schema is built once at startup through the Builder and never mutated
// afterwards; every type and field reference is checked at construction time
// so that resolution can trust the registry unconditionally.
package schema

// Schema is the complete, immutable type registry.
type Schema struct {
	QueryType   string
	Types       map[string]*Type // all named types keyed by name
	Directives  map[string]*Directive
	Description string
}

// GetQueryType returns the root query type (nil if absent).
func (s *Schema) GetQueryType() *Type { return s.Types[s.QueryType] }

// Lookup returns the field descriptor for (typeName, fieldName), or nil when
// either the type or the field is not declared.
func (s *Schema) Lookup(typeName, fieldName string) *Field {
	t := s.Types[typeName]
	if t == nil {
		return nil
	}
	for _, f := range t.Fields {
		if f.Name == fieldName {
			return f
		}
	}
	return nil
}

// Type is a named GraphQL type. The registry carries only the kinds this API
// uses: scalars and objects.
type Type struct {
	Name        string
	Kind        TypeKind
	Description string
	Fields      []*Field // for OBJECT
}

// Field describes one field of an object type.
type Field struct {
	Name        string
	Description string
	Type        *TypeRef
	Arguments   []*InputValue

	// Async marks fields whose values come from the entity store. The
	// executor collects async fields per depth and resolves them in one
	// batch; sync fields read directly off the parent value.
	Async bool

	// Relation is set on async fields and names the collection (and, for
	// foreign-key relations, the predicate field) that populates the value.
	// The resolver runtime builds its batch resolvers from this binding, so
	// an async field without one cannot be served.
	Relation *Relation
}

// Relation binds a store-backed field to its data source.
type Relation struct {
	Collection string
	// ForeignKey is the predicate field on Collection matched against the
	// parent's key ("authorId", "userId", ...). Empty for by-id lookups and
	// whole-collection fetches.
	ForeignKey string
}

// TypeKind represents the kind of GraphQL type.
type TypeKind string

const (
	TypeKindScalar TypeKind = "SCALAR"
	TypeKindObject TypeKind = "OBJECT"
)

// TypeRef references a type, possibly wrapped in List or Non-Null.
type TypeRef struct {
	Kind   TypeRefKind
	OfType *TypeRef // for LIST and NON_NULL
	Named  string   // for named types
}

type TypeRefKind string

const (
	TypeRefKindNamed   TypeRefKind = "NAMED"
	TypeRefKindList    TypeRefKind = "LIST"
	TypeRefKindNonNull TypeRefKind = "NON_NULL"
)

func (t *TypeRef) IsNonNull() bool {
	return t != nil && t.Kind == TypeRefKindNonNull
}

func (t *TypeRef) IsList() bool {
	if t.Kind == TypeRefKindList {
		return true
	}
	if t.Kind == TypeRefKindNonNull && t.OfType != nil {
		return t.OfType.Kind == TypeRefKindList
	}
	return false
}

func (t *TypeRef) Unwrap() *TypeRef {
	if t.Kind == TypeRefKindNonNull || t.Kind == TypeRefKindList {
		return t.OfType
	}
	return t
}

func (t *TypeRef) GetNamedType() string {
	current := t
	for current != nil {
		if current.Named != "" {
			return current.Named
		}
		current = current.OfType
	}
	return ""
}

// InputValue describes a field argument.
type InputValue struct {
	Name         string
	Description  string
	Type         *TypeRef
	DefaultValue any
}

// Directive describes an executable directive.
type Directive struct {
	Name        string
	Description string
	Locations   []string
	Arguments   []*InputValue
}

func NonNullType(t *TypeRef) *TypeRef { return &TypeRef{Kind: TypeRefKindNonNull, OfType: t} }
func ListType(t *TypeRef) *TypeRef    { return &TypeRef{Kind: TypeRefKindList, OfType: t} }
func NamedType(name string) *TypeRef  { return &TypeRef{Kind: TypeRefKindNamed, Named: name} }

// IsNonNull reports whether the type is wrapped with Non-Null.
func IsNonNull(t *TypeRef) bool { return t != nil && t.IsNonNull() }

// IsList reports whether the type is (or is wrapped by) a list type.
func IsList(t *TypeRef) bool { return t != nil && t.IsList() }

// Unwrap removes one layer of Non-Null or List wrapping and returns the inner type.
func Unwrap(t *TypeRef) *TypeRef { return t.Unwrap() }

// GetNamedType returns the innermost named type for the given reference.
func GetNamedType(t *TypeRef) string { return t.GetNamedType() }
