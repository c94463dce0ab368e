package xbz

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/GetListaDeProdutos" {
			t.Errorf("path = %s, want /GetListaDeProdutos", r.URL.Path)
		}
		if r.URL.Query().Get("token") != "test-token" {
			t.Error("missing token query param")
		}
		if r.URL.Query().Get("cnpj") != "11222333000144" {
			t.Error("missing cnpj query param")
		}
		json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"CodigoComposto":                       "XBZ-1001-AZ",
				"Nome":                                 "Caneta Executiva",
				"CorWebPrincipal":                      " Azul ",
				"Descricao":                            "Caneta esferografica em metal",
				"PrecoVenda":                           12.5,
				"PrecoVendaFormatado":                  "12,50",
				"Altura":                               1.2,
				"Peso":                                 38.0,
				"QuantidadeDisponivelEstoquePrincipal": 730,
				"Ncm":                                  "9608.10.00",
			},
		})
	}))
	defer server.Close()

	client := NewClient(Config{
		BaseURL: server.URL,
		Token:   "test-token",
		CNPJ:    "11222333000144",
	})
	client.SetHTTPClient(server.Client())

	products, err := client.FetchAll(context.Background())
	if err != nil {
		t.Fatalf("FetchAll failed: %v", err)
	}
	if len(products) != 1 {
		t.Fatalf("len(products) = %d, want 1", len(products))
	}

	p := products[0]
	if p.CodigoComposto != "XBZ-1001-AZ" {
		t.Errorf("CodigoComposto = %s", p.CodigoComposto)
	}
	if float64(p.PrecoVenda) != 12.5 {
		t.Errorf("PrecoVenda = %v, want 12.5", p.PrecoVenda)
	}
	if float64(p.PrecoVendaFormatado) != 12.5 {
		t.Errorf("PrecoVendaFormatado = %v, want 12.5", p.PrecoVendaFormatado)
	}
	if p.QuantidadeDisponivelEstoquePrincipal != 730 {
		t.Errorf("quantity = %d, want 730", p.QuantidadeDisponivelEstoquePrincipal)
	}
}

func TestFetchAllSourceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "t", CNPJ: "c"})
	client.SetHTTPClient(server.Client())

	_, err := client.FetchAll(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestFetchAllMalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not json</html>"))
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Token: "t", CNPJ: "c"})
	client.SetHTTPClient(server.Client())

	_, err := client.FetchAll(context.Background())
	if !errors.Is(err, ErrSourceUnavailable) {
		t.Fatalf("err = %v, want ErrSourceUnavailable", err)
	}
}

func TestCommaFloatUnmarshal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{`12.5`, 12.5},
		{`"12,50"`, 12.5},
		{`"1.234,56"`, 1234.56},
		{`"1234.56"`, 1234.56},
		{`null`, 0},
		{`""`, 0},
		{`"abc"`, 0},
	}
	for _, tt := range tests {
		var f CommaFloat
		if err := json.Unmarshal([]byte(tt.in), &f); err != nil {
			t.Errorf("Unmarshal(%s) errored: %v", tt.in, err)
			continue
		}
		if float64(f) != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.in, float64(f), tt.want)
		}
	}
}
