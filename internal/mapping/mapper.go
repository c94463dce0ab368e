// Package mapping transforms XBZ catalog records into Omie payloads.
// Everything here is pure: errors are data errors, handled by defaulting,
// never by retrying.
package mapping

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/ignite/catalog-sync/internal/omie"
	"github.com/ignite/catalog-sync/internal/xbz"
)

// Omie hard field limits.
const (
	maxDescriptionLen = 120
	maxNCMLen         = 8
)

var nonDigits = regexp.MustCompile(`[^\d]`)

// Markup returns the quantity-bucketed multiplier applied to unit cost.
// Negative quantities are clamped to zero before bucketing.
func Markup(quantity int) float64 {
	if quantity < 0 {
		quantity = 0
	}
	switch {
	case quantity >= 1000:
		return 1.80
	case quantity >= 500:
		return 1.85
	case quantity >= 250:
		return 1.90
	case quantity >= 150:
		return 2.15
	case quantity >= 50:
		return 2.22
	default:
		return 2.32
	}
}

// UnitPrice computes the sale price: round(cost × markup(quantity), 2).
// Cost defaults to zero upstream, so the result is never negative.
func UnitPrice(cost float64, quantity int) float64 {
	if cost < 0 {
		cost = 0
	}
	return round2(cost * Markup(quantity))
}

// Map derives the IncluirProduto payload from one source record.
func Map(p xbz.Product) omie.CreateProduct {
	quantity := p.QuantidadeDisponivelEstoquePrincipal
	if quantity < 0 {
		quantity = 0
	}

	return omie.CreateProduct{
		Codigo:                  p.CodigoComposto,
		CodigoProdutoIntegracao: p.CodigoComposto,
		Descricao:               description(p),
		DescrDetalhada:          p.Descricao,
		Altura:                  positiveOrZero(p.Altura),
		Largura:                 positiveOrZero(p.Largura),
		Profundidade:            positiveOrZero(p.Profundidade),
		PesoBruto:               gramsToKilos(p.Peso),
		ValorUnitario:           UnitPrice(float64(p.PrecoVenda), quantity),
		NCM:                     SanitizeNCM(p.Ncm),
		QuantidadeEstoque:       quantity,
		Unidade:                 "UN",
		Bloqueado:               "N",
		ImportadoAPI:            "S",
	}
}

// MapUpdate derives the AlterarProduto payload used by the repricing
// pass: price, weight, stock and the sparse dimensions.
func MapUpdate(p xbz.Product) omie.UpdateProduct {
	quantity := p.QuantidadeDisponivelEstoquePrincipal
	if quantity < 0 {
		quantity = 0
	}

	return omie.UpdateProduct{
		CodigoProdutoIntegracao: p.CodigoComposto,
		ValorUnitario:           UnitPrice(float64(p.PrecoVendaFormatado), quantity),
		PesoBruto:               gramsToKilos(p.Peso),
		QuantidadeEstoque:       quantity,
		Altura:                  positiveOrZero(p.Altura),
		Largura:                 positiveOrZero(p.Largura),
		Profundidade:            positiveOrZero(p.Profundidade),
	}
}

// SanitizeNCM repairs transcription noise in the commodity code: the
// letter O read as zero, stray punctuation, excess length. The result is
// digits only, at most 8 characters.
func SanitizeNCM(raw string) string {
	fixed := strings.ReplaceAll(strings.ToUpper(raw), "O", "0")
	digits := nonDigits.ReplaceAllString(fixed, "")
	if len(digits) > maxNCMLen {
		digits = digits[:maxNCMLen]
	}
	return digits
}

// description composes name, color and integration code, truncated to
// the provider's 120-character field limit. Truncation, not rejection,
// is the required behavior.
func description(p xbz.Product) string {
	d := fmt.Sprintf("%s - Cor: %s - Codigo: %s",
		p.Nome, strings.TrimSpace(p.CorWebPrincipal), p.CodigoComposto)
	if r := []rune(d); len(r) > maxDescriptionLen {
		d = string(r[:maxDescriptionLen])
	}
	return d
}

func positiveOrZero(v float64) float64 {
	if v > 0 {
		return v
	}
	return 0
}

// gramsToKilos converts the source weight to kilograms, 3 decimals.
func gramsToKilos(grams float64) float64 {
	if grams < 0 {
		grams = 0
	}
	return math.Round(grams/1000*1000) / 1000
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
