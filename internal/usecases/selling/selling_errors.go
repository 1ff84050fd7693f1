package selling

import "errors"

var (
	// ErrMissingSaleID: o id da venda vem do sistema de caixa e é
	// obrigatório; sem ele não há chave de upsert.
	ErrMissingSaleID = errors.New("id da venda ausente")
)
