package schema

import (
	"strings"
	"testing"
)

func TestRender_QueryRootFirst(t *testing.T) {
	b := NewBuilder().QueryType("Query")
	b.Object("Animal", "", FieldDef("id", NonNullType(NamedType("ID"))))
	b.Object("Query", "",
		AsyncField("animal", NamedType("Animal"), &Relation{Collection: "animals"}, Arg("id", NonNullType(NamedType("ID")))),
	)
	s, err := b.Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}

	sdl := Render(s)
	qi := strings.Index(sdl, "type Query")
	ai := strings.Index(sdl, "type Animal")
	if qi < 0 || ai < 0 || qi > ai {
		t.Fatalf("query root must render first:\n%s", sdl)
	}
	if !strings.Contains(sdl, "animal(id: ID!): Animal") {
		t.Fatalf("argument rendering wrong:\n%s", sdl)
	}
}

func TestRender_TypeRefWrapping(t *testing.T) {
	got := renderTypeRef(NonNullType(ListType(NonNullType(NamedType("User")))))
	if got != "[User!]!" {
		t.Fatalf("renderTypeRef = %q, want [User!]!", got)
	}
}
