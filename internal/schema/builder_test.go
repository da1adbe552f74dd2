package schema

import (
	"strings"
	"testing"
)

func TestBuild_ValidDeclarations(t *testing.T) {
	b := NewBuilder().QueryType("Query")
	b.Object("Thing", "",
		FieldDef("id", NonNullType(NamedType("ID"))),
		AsyncField("other", NamedType("Thing"), &Relation{Collection: "things", ForeignKey: "otherId"}),
	)
	b.Object("Query", "",
		AsyncField("thing", NamedType("Thing"), &Relation{Collection: "things"}, Arg("id", NonNullType(NamedType("ID")))),
	)
	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	f := s.Lookup("Thing", "other")
	if f == nil || !f.Async || f.Relation.ForeignKey != "otherId" {
		t.Fatalf("lookup returned wrong field: %+v", f)
	}
	if s.Lookup("Thing", "missing") != nil {
		t.Fatalf("lookup of undeclared field must be nil")
	}
	if s.Lookup("Nope", "id") != nil {
		t.Fatalf("lookup of undeclared type must be nil")
	}
}

func TestBuild_UndeclaredTypeReference(t *testing.T) {
	b := NewBuilder().QueryType("Query")
	b.Object("Query", "", FieldDef("ghost", NamedType("Ghost")))
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "undeclared type") {
		t.Fatalf("expected undeclared type error, got %v", err)
	}
}

func TestBuild_DuplicateField(t *testing.T) {
	b := NewBuilder().QueryType("Query")
	b.Object("Query", "",
		FieldDef("a", NamedType("String")),
		FieldDef("a", NamedType("String")),
	)
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "declared twice") {
		t.Fatalf("expected duplicate field error, got %v", err)
	}
}

func TestBuild_DuplicateType(t *testing.T) {
	b := NewBuilder().QueryType("Query")
	b.Object("Query", "", FieldDef("a", NamedType("String")))
	b.Object("Query", "", FieldDef("b", NamedType("String")))
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "declared twice") {
		t.Fatalf("expected duplicate type error, got %v", err)
	}
}

func TestBuild_MissingQueryRoot(t *testing.T) {
	b := NewBuilder()
	b.Object("Thing", "", FieldDef("id", NamedType("ID")))
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "query type") {
		t.Fatalf("expected missing query type error, got %v", err)
	}
}

func TestBuild_UndeclaredArgumentType(t *testing.T) {
	b := NewBuilder().QueryType("Query")
	b.Object("Query", "",
		AsyncField("thing", NamedType("String"), nil, Arg("id", NamedType("Ghost"))),
	)
	_, err := b.Build()
	if err == nil || !strings.Contains(err.Error(), "undeclared type") {
		t.Fatalf("expected undeclared argument type error, got %v", err)
	}
}

func TestTypeRefHelpers(t *testing.T) {
	ref := NonNullType(ListType(NonNullType(NamedType("User"))))
	if !IsNonNull(ref) {
		t.Fatalf("outer wrapper must be non-null")
	}
	if !IsList(ref) {
		t.Fatalf("ref must report list through the non-null wrapper")
	}
	if got := GetNamedType(ref); got != "User" {
		t.Fatalf("named type = %q, want User", got)
	}
	inner := Unwrap(ref)
	if inner.Kind != TypeRefKindList {
		t.Fatalf("unwrap must peel one wrapper, got %v", inner.Kind)
	}
}
