package mapping

import (
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/ignite/catalog-sync/internal/xbz"
)

func TestMarkupTiers(t *testing.T) {
	tests := []struct {
		quantity int
		want     float64
	}{
		{5000, 1.80},
		{1000, 1.80},
		{999, 1.85},
		{500, 1.85},
		{499, 1.90},
		{250, 1.90},
		{249, 2.15},
		{150, 2.15},
		{149, 2.22},
		{50, 2.22},
		{49, 2.32},
		{0, 2.32},
		{-10, 2.32}, // clamped to 0 before bucketing
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Markup(tt.quantity), "quantity %d", tt.quantity)
	}
}

func TestUnitPrice(t *testing.T) {
	assert.Equal(t, 37.0, UnitPrice(20, 600))
	assert.Equal(t, 23.2, UnitPrice(10, 10))
	assert.Equal(t, 0.0, UnitPrice(0, 100))
	assert.Equal(t, 0.0, UnitPrice(-5, 100))
	// rounding to 2 decimals: 12.44 × 2.22 = 27.6168
	assert.Equal(t, 27.62, UnitPrice(12.44, 100))
}

func TestSanitizeNCM(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"9608.10.00", "96081000"},
		{"96O8.1O.0O", "96081000"},   // letter O transcription error
		{"96081000123", "96081000"},  // excess length
		{"ab96-08/10 00xx", "96081000"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeNCM(tt.in), "input %q", tt.in)
	}
}

func TestSanitizeNCMInvariants(t *testing.T) {
	inputs := []string{"9608.10.00", "O123456789O", "x!@#", "", "999999999999"}
	for _, in := range inputs {
		got := SanitizeNCM(in)
		if len(got) > 8 {
			t.Errorf("SanitizeNCM(%q) length %d > 8", in, len(got))
		}
		if strings.ContainsFunc(got, func(r rune) bool { return r < '0' || r > '9' }) {
			t.Errorf("SanitizeNCM(%q) = %q contains non-digits", in, got)
		}
	}
}

func sampleProduct() xbz.Product {
	return xbz.Product{
		CodigoComposto:                       "XBZ-1001-AZ",
		Nome:                                 "Caneta Executiva",
		CorWebPrincipal:                      " Azul ",
		Descricao:                            "Caneta esferografica em metal com acabamento fosco",
		PrecoVenda:                           20,
		Altura:                               1.2,
		Largura:                              0,
		Profundidade:                         14.5,
		Peso:                                 38.4,
		QuantidadeDisponivelEstoquePrincipal: 600,
		Ncm:                                  "96O8.10.00",
	}
}

func TestMap(t *testing.T) {
	got := Map(sampleProduct())

	assert.Equal(t, "XBZ-1001-AZ", got.Codigo)
	assert.Equal(t, "XBZ-1001-AZ", got.CodigoProdutoIntegracao)
	assert.Equal(t, "Caneta Executiva - Cor: Azul - Codigo: XBZ-1001-AZ", got.Descricao)
	assert.Equal(t, "Caneta esferografica em metal com acabamento fosco", got.DescrDetalhada)
	assert.Equal(t, 1.2, got.Altura)
	assert.Equal(t, 0.0, got.Largura)
	assert.Equal(t, 14.5, got.Profundidade)
	assert.Equal(t, 0.038, got.PesoBruto)
	assert.Equal(t, 37.0, got.ValorUnitario) // 20 × 1.85 at 600 units
	assert.Equal(t, "96081000", got.NCM)
	assert.Equal(t, 600, got.QuantidadeEstoque)
	assert.Equal(t, "UN", got.Unidade)
	assert.Equal(t, "N", got.Bloqueado)
	assert.Equal(t, "S", got.ImportadoAPI)
}

func TestMapIsPure(t *testing.T) {
	p := sampleProduct()
	first := Map(p)
	second := Map(p)
	if !reflect.DeepEqual(first, second) {
		t.Error("Map produced different output for the same input")
	}
}

func TestMapDescriptionTruncation(t *testing.T) {
	p := sampleProduct()
	p.Nome = strings.Repeat("Garrafa Térmica Personalizada ", 10)
	got := Map(p)
	if n := utf8.RuneCountInString(got.Descricao); n > 120 {
		t.Errorf("descricao length = %d runes, want <= 120", n)
	}
}

func TestMapNegativeQuantityClamped(t *testing.T) {
	p := sampleProduct()
	p.QuantidadeDisponivelEstoquePrincipal = -3
	got := Map(p)
	assert.Equal(t, 0, got.QuantidadeEstoque)
	// clamped quantity lands in the < 50 tier
	assert.Equal(t, 46.4, got.ValorUnitario)
}

func TestMapAbsentValuesDefaultToZero(t *testing.T) {
	got := Map(xbz.Product{CodigoComposto: "X"})
	assert.Equal(t, 0.0, got.ValorUnitario)
	assert.Equal(t, 0.0, got.PesoBruto)
	assert.Equal(t, 0.0, got.Altura)
	assert.Equal(t, "", got.NCM)
}

func TestMapUpdate(t *testing.T) {
	p := sampleProduct()
	p.PrecoVendaFormatado = 20 // repricing reads the formatted price
	got := MapUpdate(p)

	assert.Equal(t, "XBZ-1001-AZ", got.CodigoProdutoIntegracao)
	assert.Equal(t, 37.0, got.ValorUnitario)
	assert.Equal(t, 0.038, got.PesoBruto)
	assert.Equal(t, 600, got.QuantidadeEstoque)
	assert.Equal(t, 0.0, got.Largura)
}
