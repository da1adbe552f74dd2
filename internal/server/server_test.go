package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	graphrt "github.com/usergraph-io/usergraph/internal/graphrt"
	memstore "github.com/usergraph-io/usergraph/internal/memstore"
	model "github.com/usergraph-io/usergraph/internal/model"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T, opts ...Option) *Handler {
	t.Helper()
	st := memstore.New(memstore.Data{
		Users: []*model.User{{ID: "u1", Name: "Ada", Balance: 10}},
		Posts: []*model.Post{{ID: "p1", Title: "hello", Content: "world", AuthorID: "u1"}},
	})
	sch, err := graphrt.NewSchema()
	require.NoError(t, err)
	rt, err := graphrt.NewRuntime(sch, st)
	require.NoError(t, err)
	h, err := New(rt, sch, opts...)
	require.NoError(t, err)
	return h
}

func postQuery(t *testing.T, h *Handler, body string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	return w, res
}

func TestServeQuery(t *testing.T) {
	h := newTestHandler(t)
	w, res := postQuery(t, h, `{"query":"{ post(id: \"p1\") { id title author { name } } }"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, res["errors"])
	post := res["data"].(map[string]any)["post"].(map[string]any)
	require.Equal(t, "hello", post["title"])
	require.Equal(t, "Ada", post["author"].(map[string]any)["name"])
}

func TestServeQuery_AbsenceIsNullNotError(t *testing.T) {
	h := newTestHandler(t)
	w, res := postQuery(t, h, `{"query":"{ post(id: \"nope\") { id } }"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, res["errors"])
	require.Equal(t, map[string]any{"post": nil}, res["data"])
}

func TestServeQuery_ValidationRejectsUnknownField(t *testing.T) {
	h := newTestHandler(t)
	w, res := postQuery(t, h, `{"query":"{ post(id: \"p1\") { id flavor } }"}`)

	require.Equal(t, http.StatusOK, w.Code)
	errs, ok := res["errors"].([]any)
	require.True(t, ok, "expected errors, got %v", res)
	require.NotEmpty(t, errs)
	msg := errs[0].(map[string]any)["message"].(string)
	require.Contains(t, msg, "flavor")
	// Validation failures never produce data.
	require.Nil(t, res["data"])
}

func TestServeQuery_SyntaxError(t *testing.T) {
	h := newTestHandler(t)
	w, res := postQuery(t, h, `{"query":"{ post("}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, res["errors"])
}

func TestServeQuery_Variables(t *testing.T) {
	h := newTestHandler(t)
	w, res := postQuery(t, h, `{"query":"query Q($id: ID!) { post(id: $id) { title } }","variables":{"id":"p1"}}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Nil(t, res["errors"])
	post := res["data"].(map[string]any)["post"].(map[string]any)
	require.Equal(t, "hello", post["title"])
}

func TestServeBatch(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(
		`[{"query":"{ post(id: \"p1\") { id } }"},{"query":"{ user(id: \"u1\") { name } }"}]`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res []map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Len(t, res, 2)
}

func TestServeGet(t *testing.T) {
	h := newTestHandler(t)
	q := url.Values{"query": {`{ user(id: "u1") { name } }`}}
	req := httptest.NewRequest("GET", "/graphql?"+q.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var res map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.Nil(t, res["errors"])
}

func TestServeGraphiQL(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("GET", "/graphql", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/html")
	require.Contains(t, w.Body.String(), "GraphiQL")
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t)
	req := httptest.NewRequest("DELETE", "/graphql", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestBodyTooLarge(t *testing.T) {
	h := newTestHandler(t, WithMaxBodyBytes(8))
	w, _ := postQuery(t, h, `{"query":"{ user(id: \"u1\") { name } }"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestCORS(t *testing.T) {
	h := newTestHandler(t, WithCORS("https://example.com"))
	req := httptest.NewRequest("POST", "/graphql", bytes.NewBufferString(`{"query":"{ user(id: \"u1\") { name } }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	require.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}
