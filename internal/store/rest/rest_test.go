package rest

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

type capturedRequest struct {
	method string
	path   string
	query  url.Values
	header http.Header
	body   []byte
}

func newTestClient(t *testing.T, status int, response string) (*Client, *capturedRequest) {
	t.Helper()
	captured := &capturedRequest{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured.method = r.Method
		captured.path = r.URL.Path
		captured.query = r.URL.Query()
		captured.header = r.Header.Clone()
		captured.body, _ = io.ReadAll(r.Body)
		w.WriteHeader(status)
		w.Write([]byte(response))
	}))
	t.Cleanup(srv.Close)
	return New(srv.URL, "chave-teste"), captured
}

func TestSelect(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `[{"id":"1","razao_social":"Acme"}]`)

	rows, err := client.Select(context.Background(), "clientes_escritorio",
		[]string{"id", "razao_social"},
		[]store.Filter{store.Eq("cnpj", "12345678000195"), store.IsNull("resolvido_at")})
	if err != nil {
		t.Fatalf("Select: %v", err)
	}
	if len(rows) != 1 || rows[0]["razao_social"] != "Acme" {
		t.Fatalf("rows = %v", rows)
	}

	if captured.path != "/rest/v1/clientes_escritorio" {
		t.Errorf("path = %q", captured.path)
	}
	if got := captured.query.Get("select"); got != "id,razao_social" {
		t.Errorf("select = %q", got)
	}
	if got := captured.query.Get("cnpj"); got != "eq.12345678000195" {
		t.Errorf("cnpj = %q", got)
	}
	if got := captured.query.Get("resolvido_at"); got != "is.null" {
		t.Errorf("resolvido_at = %q", got)
	}
	if captured.header.Get("apikey") != "chave-teste" {
		t.Errorf("apikey = %q", captured.header.Get("apikey"))
	}
	if captured.header.Get("Authorization") != "Bearer chave-teste" {
		t.Errorf("Authorization = %q", captured.header.Get("Authorization"))
	}
}

func TestUpsert(t *testing.T) {
	client, captured := newTestClient(t, http.StatusCreated, "")

	rows := []store.Row{{"ci_titulo": 1001, "ci_parcela": 1}}
	if err := client.Upsert(context.Background(), "relatorio_financeiro", rows, []string{"ci_titulo", "ci_parcela"}); err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if captured.method != http.MethodPost {
		t.Errorf("method = %q", captured.method)
	}
	if got := captured.query.Get("on_conflict"); got != "ci_titulo,ci_parcela" {
		t.Errorf("on_conflict = %q", got)
	}
	if got := captured.header.Get("Prefer"); got != "resolution=merge-duplicates,return=minimal" {
		t.Errorf("Prefer = %q", got)
	}
	var sent []map[string]any
	if err := json.Unmarshal(captured.body, &sent); err != nil || len(sent) != 1 {
		t.Fatalf("body = %s (%v)", captured.body, err)
	}
}

func TestUpdateContaLinhas(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `[{"id":"1"},{"id":"2"}]`)

	n, err := client.Update(context.Background(), "clients_inadimplencia",
		store.Row{"status_classe": "B"}, []store.Filter{store.Eq("id", "1")})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if n != 2 {
		t.Errorf("n = %d; esperado 2 (linhas da representação)", n)
	}
	if captured.method != http.MethodPatch {
		t.Errorf("method = %q", captured.method)
	}
	if got := captured.header.Get("Prefer"); got != "return=representation" {
		t.Errorf("Prefer = %q", got)
	}
}

func TestDeleteComIn(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `[{"id":"1"}]`)

	n, err := client.Delete(context.Background(), "timesheets",
		[]store.Filter{store.In("data", []any{"2025-01-15", "2025-01-16"})})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if n != 1 {
		t.Errorf("n = %d; esperado 1", n)
	}
	if got := captured.query.Get("data"); got != "in.(2025-01-15,2025-01-16)" {
		t.Errorf("data = %q", got)
	}
}

func TestIlikeTrocaCuringa(t *testing.T) {
	client, captured := newTestClient(t, http.StatusOK, `[]`)

	if _, err := client.Select(context.Background(), "clientes_escritorio", nil,
		[]store.Filter{store.Ilike("razao_social", "%Acme%")}); err != nil {
		t.Fatalf("Select: %v", err)
	}
	if got := captured.query.Get("razao_social"); got != "ilike.*Acme*" {
		t.Errorf("razao_social = %q", got)
	}
}

func TestQuoteInValue(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"2025-01-15", "2025-01-15"},
		{"a,b", `"a,b"`},
		{"Acme (SP)", `"Acme (SP)"`},
		{42, "42"},
	}
	for _, tt := range tests {
		if got := quoteInValue(tt.in); got != tt.want {
			t.Errorf("quoteInValue(%v) = %q; esperado %q", tt.in, got, tt.want)
		}
	}
}

func TestErroHTTPTrazCorpo(t *testing.T) {
	client, _ := newTestClient(t, http.StatusUnauthorized, `{"message":"invalid key"}`)

	if _, err := client.Select(context.Background(), "clientes_escritorio", nil, nil); err == nil {
		t.Fatal("status 401 deveria ser erro")
	}
}
