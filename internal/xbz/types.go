package xbz

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
)

// Product is one item of the XBZ catalog as returned by
// GetListaDeProdutos. Field names follow the provider's JSON exactly.
// Records are immutable after fetch.
type Product struct {
	CodigoComposto      string     `json:"CodigoComposto"`
	Nome                string     `json:"Nome"`
	CorWebPrincipal     string     `json:"CorWebPrincipal"`
	Descricao           string     `json:"Descricao"`
	PrecoVenda          CommaFloat `json:"PrecoVenda"`
	PrecoVendaFormatado CommaFloat `json:"PrecoVendaFormatado"`
	Altura              float64    `json:"Altura"`
	Largura             float64    `json:"Largura"`
	Profundidade        float64    `json:"Profundidade"`
	// Peso is the gross weight in grams.
	Peso float64 `json:"Peso"`
	// QuantidadeDisponivelEstoquePrincipal can come back negative when
	// the provider oversells; consumers clamp to zero.
	QuantidadeDisponivelEstoquePrincipal int `json:"QuantidadeDisponivelEstoquePrincipal"`
	// Ncm carries transcription noise (letter O for zero, stray
	// punctuation, excess length); it is sanitized at mapping time.
	Ncm string `json:"Ncm"`
}

// CommaFloat is a float64 that also accepts JSON strings using a comma
// as the decimal separator ("1.234,56"), which the provider emits for
// formatted price fields. Absent, null and unparsable values decode to 0.
type CommaFloat float64

// UnmarshalJSON implements json.Unmarshaler.
func (f *CommaFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	if data[0] == '"' {
		s, err := strconv.Unquote(string(data))
		if err != nil {
			return fmt.Errorf("comma float: %w", err)
		}
		*f = CommaFloat(parseCommaDecimal(s))
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = CommaFloat(v)
	return nil
}

// parseCommaDecimal normalizes "1.234,56" or "1234,56" to a float.
// Unparsable input yields 0, matching the cost-defaults-to-zero contract.
func parseCommaDecimal(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}
