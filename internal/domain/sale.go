package domain

// Sale é o registro canônico de uma venda. O identificador vem do sistema de
// caixa que enviou a venda, nunca é gerado pelo servidor. Payload guarda o
// corpo original da requisição para que campos extras não sejam perdidos.
type Sale struct {
	ID         string         `json:"id"`
	Company    string         `json:"company"`
	Agency     string         `json:"agency"`
	Seller     string         `json:"seller"`
	TotalCents int64          `json:"total_cents"`
	Payload    map[string]any `json:"-"`
	CreatedAt  string         `json:"created_at"`
}

// SaleFilter descreve o predicado de listagem montado pela camada de
// autorização. Agency (filtro explícito) e Agencies (conjunto permitido do
// usuário) são mutuamente exclusivos.
type SaleFilter struct {
	Company  string
	Agency   string
	Agencies []string
	Limit    uint64
}
