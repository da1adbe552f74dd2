package language

import (
	"testing"
)

const testSDL = `
type Query {
  user(id: ID!): User
}

type User {
  id: ID!
  name: String!
}
`

func TestParseQuery_SyntaxError(t *testing.T) {
	if _, err := ParseQuery("{ user("); err == nil {
		t.Fatalf("expected syntax error")
	}
	doc, err := ParseQuery(`{ user(id: "1") { id name } }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(doc.Operations) != 1 {
		t.Fatalf("expected one operation, got %d", len(doc.Operations))
	}
}

func TestValidate_UnknownField(t *testing.T) {
	sch, err := LoadSchema("test", testSDL)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}

	doc, err := ParseQuery(`{ user(id: "1") { id email } }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if errs := Validate(sch, doc); len(errs) == 0 {
		t.Fatalf("expected validation error for unknown field")
	}

	doc, err = ParseQuery(`{ user(id: "1") { id name } }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if errs := Validate(sch, doc); len(errs) != 0 {
		t.Fatalf("unexpected validation errors: %v", errs)
	}
}

func TestValidate_UnknownArgument(t *testing.T) {
	sch, err := LoadSchema("test", testSDL)
	if err != nil {
		t.Fatalf("load schema: %v", err)
	}
	doc, err := ParseQuery(`{ user(name: "x") { id } }`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if errs := Validate(sch, doc); len(errs) == 0 {
		t.Fatalf("expected validation error for unknown argument")
	}
}
