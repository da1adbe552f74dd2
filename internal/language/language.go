// Package language wraps the gqlparser AST, parser and validator behind the
// small surface the rest of the service needs: parse a query, load the SDL
// rendering of the registry, and validate a document against it before any
// resolver runs.
package language

import (
	gqlparser "github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
)

// ParseQuery parses a query document, reporting syntax errors only.
func ParseQuery(source string) (*QueryDocument, error) {
	doc, err := parser.ParseQuery(&ast.Source{Input: source})
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// LoadSchema parses and validates an SDL string into a validation schema.
func LoadSchema(name, sdl string) (*ValidationSchema, error) {
	return gqlparser.LoadSchema(&ast.Source{Name: name, Input: sdl})
}

// Validate checks doc against the schema. A non-empty result means the query
// references undeclared types, fields or arguments and must not execute.
func Validate(schema *ValidationSchema, doc *QueryDocument) []error {
	errs := validator.Validate(schema, doc)
	if len(errs) == 0 {
		return nil
	}
	out := make([]error, len(errs))
	for i, e := range errs {
		out[i] = e
	}
	return out
}
