package omie

import "encoding/json"

// rpcRequest is the envelope every Omie call carries. Credentials travel
// in the body, not in headers.
type rpcRequest struct {
	Call      string `json:"call"`
	AppKey    string `json:"app_key"`
	AppSecret string `json:"app_secret"`
	Param     []any  `json:"param"`
}

// listParams are the ListarProdutos parameters.
type listParams struct {
	Pagina               int    `json:"pagina"`
	RegistrosPorPagina   int    `json:"registros_por_pagina"`
	ApenasImportadoAPI   string `json:"apenas_importado_api"`
	FiltrarApenasOmiePDV string `json:"filtrar_apenas_omiepdv"`
}

// listResponse is the ListarProdutos page shape. Only the pagination
// bookkeeping and the integration codes are consumed.
type listResponse struct {
	Pagina         int             `json:"pagina"`
	TotalDePaginas int             `json:"total_de_paginas"`
	Produtos       []ListedProduct `json:"produto_servico_cadastro"`
}

// ListedProduct is the minimal target-side record: the integration code
// used to decide whether a source product already exists.
type ListedProduct struct {
	CodigoProdutoIntegracao string `json:"codigo_produto_integracao"`
}

// Fault is the error shape Omie returns in place of a result payload.
type Fault struct {
	Code    string `json:"faultcode"`
	Message string `json:"faultstring"`
}

// CreateProduct is the IncluirProduto payload. The dimension fields are
// emitted only when strictly positive; Omie rejects explicit zeros on
// some accounts, so absence is the contract, not an oversight.
type CreateProduct struct {
	Codigo                  string  `json:"codigo"`
	CodigoProdutoIntegracao string  `json:"codigo_produto_integracao"`
	Descricao               string  `json:"descricao"`
	DescrDetalhada          string  `json:"descr_detalhada"`
	Altura                  float64 `json:"altura,omitempty"`
	Largura                 float64 `json:"largura,omitempty"`
	Profundidade            float64 `json:"profundidade,omitempty"`
	PesoBruto               float64 `json:"peso_bruto"`
	ValorUnitario           float64 `json:"valor_unitario"`
	NCM                     string  `json:"ncm"`
	QuantidadeEstoque       int     `json:"quantidade_estoque"`
	Unidade                 string  `json:"unidade"`
	Bloqueado               string  `json:"bloqueado"`
	ImportadoAPI            string  `json:"importado_api"`
}

// UpdateProduct is the AlterarProduto payload used by the secondary
// repricing pass. Same sparse dimension contract as CreateProduct.
type UpdateProduct struct {
	CodigoProdutoIntegracao string  `json:"codigo_produto_integracao"`
	ValorUnitario           float64 `json:"valor_unitario"`
	PesoBruto               float64 `json:"peso_bruto"`
	QuantidadeEstoque       int     `json:"quantidade_estoque"`
	Altura                  float64 `json:"altura,omitempty"`
	Largura                 float64 `json:"largura,omitempty"`
	Profundidade            float64 `json:"profundidade,omitempty"`
}

// Availability is the prober result.
type Availability struct {
	Available bool
	Message   string
}

// Status tags a write outcome.
type Status string

const (
	StatusInserted    Status = "inserted"
	StatusSkipped     Status = "skipped"
	StatusRateLimited Status = "rate_limited"
	StatusFailed      Status = "failed"
)

// Outcome is the tagged result of one Write call. Reason is set for
// skipped and failed outcomes; Message and FaultCode carry the provider's
// words when a fault produced the outcome; Response is the raw success
// payload for inserted outcomes.
type Outcome struct {
	Status    Status
	Reason    string
	Message   string
	FaultCode string
	Response  json.RawMessage
}
