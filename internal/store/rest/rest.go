// Package rest implementa store.Store sobre a API REST do Supabase
// (PostgREST). Cada operação vira uma chamada HTTP com os filtros na query
// string e a service key nos cabeçalhos.
package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/LeoMarquesSilva/financeiro-bp/internal/store"
)

type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New cria um cliente apontando para <baseURL>/rest/v1. A key é usada tanto
// como apikey quanto como Bearer (padrão da service role key).
func New(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/") + "/rest/v1",
		apiKey:  apiKey,
		http:    &http.Client{Timeout: 60 * time.Second},
	}
}

func (c *Client) Select(ctx context.Context, table string, columns []string, filters []store.Filter) ([]store.Row, error) {
	query, err := filterQuery(filters)
	if err != nil {
		return nil, err
	}
	if len(columns) > 0 {
		query.Set("select", strings.Join(columns, ","))
	}
	body, err := c.do(ctx, http.MethodGet, table, query, nil, nil)
	if err != nil {
		return nil, err
	}
	var rows []store.Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("resposta inesperada de %s: %w", table, err)
	}
	return rows, nil
}

func (c *Client) Insert(ctx context.Context, table string, rows []store.Row) error {
	if len(rows) == 0 {
		return nil
	}
	_, err := c.do(ctx, http.MethodPost, table, nil, rows, map[string]string{
		"Prefer": "return=minimal",
	})
	return err
}

func (c *Client) Update(ctx context.Context, table string, values store.Row, filters []store.Filter) (int, error) {
	query, err := filterQuery(filters)
	if err != nil {
		return 0, err
	}
	body, err := c.do(ctx, http.MethodPatch, table, query, values, map[string]string{
		"Prefer": "return=representation",
	})
	if err != nil {
		return 0, err
	}
	return countRows(body), nil
}

func (c *Client) Upsert(ctx context.Context, table string, rows []store.Row, conflictColumns []string) error {
	if len(rows) == 0 {
		return nil
	}
	query := url.Values{}
	if len(conflictColumns) > 0 {
		query.Set("on_conflict", strings.Join(conflictColumns, ","))
	}
	_, err := c.do(ctx, http.MethodPost, table, query, rows, map[string]string{
		"Prefer": "resolution=merge-duplicates,return=minimal",
	})
	return err
}

func (c *Client) Delete(ctx context.Context, table string, filters []store.Filter) (int, error) {
	query, err := filterQuery(filters)
	if err != nil {
		return 0, err
	}
	body, err := c.do(ctx, http.MethodDelete, table, query, nil, map[string]string{
		"Prefer": "return=representation",
	})
	if err != nil {
		return 0, err
	}
	return countRows(body), nil
}

func (c *Client) do(ctx context.Context, method, table string, query url.Values, payload any, headers map[string]string) ([]byte, error) {
	endpoint := c.baseURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reqBody io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("erro ao chamar %s %s: %w", method, table, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%s %s retornou %d: %s", method, table, resp.StatusCode, truncate(string(body), 300))
	}
	return body, nil
}

// filterQuery converte os filtros do contrato para a sintaxe de query do
// PostgREST (col=op.valor). O curinga de ilike muda de % para *.
func filterQuery(filters []store.Filter) (url.Values, error) {
	query := url.Values{}
	for _, f := range filters {
		switch f.Op {
		case store.OpEq, store.OpGte, store.OpLte:
			query.Add(f.Column, f.Op+"."+fmt.Sprint(f.Value))
		case store.OpIlike:
			pattern, ok := f.Value.(string)
			if !ok {
				return nil, fmt.Errorf("ilike exige padrão string, recebeu %T", f.Value)
			}
			query.Add(f.Column, "ilike."+strings.ReplaceAll(pattern, "%", "*"))
		case store.OpIn:
			values, ok := f.Value.([]any)
			if !ok {
				return nil, fmt.Errorf("in exige slice de valores, recebeu %T", f.Value)
			}
			parts := make([]string, len(values))
			for i, v := range values {
				parts[i] = quoteInValue(v)
			}
			query.Add(f.Column, "in.("+strings.Join(parts, ",")+")")
		case store.OpIs:
			if f.Value != nil {
				return nil, fmt.Errorf("is suporta apenas NULL")
			}
			query.Add(f.Column, "is.null")
		default:
			return nil, fmt.Errorf("operador de filtro desconhecido: %q", f.Op)
		}
	}
	return query, nil
}

// quoteInValue protege valores de in.(...) que contêm vírgula ou parêntese.
func quoteInValue(v any) string {
	s := fmt.Sprint(v)
	if strings.ContainsAny(s, ",()\" ") {
		return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
	}
	return s
}

func countRows(body []byte) int {
	var rows []json.RawMessage
	if err := json.Unmarshal(body, &rows); err != nil {
		return 0
	}
	return len(rows)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
