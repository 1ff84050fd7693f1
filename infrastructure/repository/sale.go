package repository

import (
	"database/sql"
	"encoding/json"

	"github.com/Masterminds/squirrel"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/vfg2006/pos-backend-api/infrastructure/database/sqlite"
	"github.com/vfg2006/pos-backend-api/internal/domain"
)

const (
	salesTable = "sales"

	// defaultSalesLimit limita a resposta quando o chamador não informa um
	// teto próprio.
	defaultSalesLimit = 2000
)

type SaleRepository interface {
	Upsert(sale *domain.Sale) error
	List(filter domain.SaleFilter) ([]*domain.Sale, error)
	Delete(id string) error
}

type saleRepository struct {
	conn *sqlite.Connection
}

func NewSaleRepository(conn *sqlite.Connection) SaleRepository {
	return &saleRepository{
		conn: conn,
	}
}

// Upsert insere a venda ou, se o id já existir, sobrescreve os campos
// normalizados e o snapshot. created_at nunca é tocado no conflito, o que
// torna o registro idempotente sob retries.
func (r *saleRepository) Upsert(sale *domain.Sale) error {
	payloadJSON, err := json.Marshal(sale.Payload)
	if err != nil {
		return errors.Wrap(err, "erro ao serializar payload da venda")
	}

	saleSQL, saleArgs, err := squirrel.StatementBuilder.
		Insert(salesTable).
		Columns("id", "company", "agency", "seller", "total_cents", "payload_json").
		Values(sale.ID, sale.Company, sale.Agency, sale.Seller, sale.TotalCents, string(payloadJSON)).
		Suffix(`
			ON CONFLICT (id) DO UPDATE SET
				company = EXCLUDED.company,
				agency = EXCLUDED.agency,
				seller = EXCLUDED.seller,
				total_cents = EXCLUDED.total_cents,
				payload_json = EXCLUDED.payload_json`).
		PlaceholderFormat(squirrel.Question).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.conn.Exec(saleSQL, saleArgs...); err != nil {
		return errors.Wrap(err, "erro ao gravar venda")
	}

	return nil
}

func (r *saleRepository) List(filter domain.SaleFilter) ([]*domain.Sale, error) {
	builder := squirrel.
		Select("id", "company", "agency", "seller", "total_cents", "payload_json", "created_at").
		From(salesTable)

	if filter.Company != "" {
		builder = builder.Where(squirrel.Eq{"company": filter.Company})
	}

	if filter.Agency != "" {
		builder = builder.Where(squirrel.Eq{"agency": filter.Agency})
	} else if len(filter.Agencies) > 0 {
		builder = builder.Where(squirrel.Eq{"agency": filter.Agencies})
	}

	limit := filter.Limit
	if limit == 0 {
		limit = defaultSalesLimit
	}

	salesSQL, salesArgs, err := builder.
		OrderBy("datetime(created_at) DESC").
		Limit(limit).
		PlaceholderFormat(squirrel.Question).
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "erro ao construir consulta de vendas")
	}

	rows, err := r.conn.Query(salesSQL, salesArgs...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar vendas")
	}
	defer rows.Close()

	sales := make([]*domain.Sale, 0)
	for rows.Next() {
		sale, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, sale)
	}

	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "erro durante iteração de vendas")
	}

	return sales, nil
}

// Delete é idempotente, como a remoção de usuários.
func (r *saleRepository) Delete(id string) error {
	deleteSQL, deleteArgs, err := squirrel.
		Delete(salesTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Question).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.conn.Exec(deleteSQL, deleteArgs...); err != nil {
		return errors.Wrap(err, "erro ao remover venda")
	}

	return nil
}

func scanSale(rows *sql.Rows) (*domain.Sale, error) {
	var (
		sale        domain.Sale
		company     sql.NullString
		agency      sql.NullString
		seller      sql.NullString
		totalCents  sql.NullInt64
		payloadJSON sql.NullString
		createdAt   sql.NullString
	)

	// Linhas criadas por versões antigas do schema podem ter colunas NULL.
	if err := rows.Scan(
		&sale.ID,
		&company,
		&agency,
		&seller,
		&totalCents,
		&payloadJSON,
		&createdAt,
	); err != nil {
		return nil, errors.Wrap(err, "erro ao escanear venda")
	}

	sale.Company = company.String
	sale.Agency = agency.String
	sale.Seller = seller.String
	sale.TotalCents = totalCents.Int64
	sale.CreatedAt = createdAt.String

	if payloadJSON.Valid && payloadJSON.String != "" {
		if err := json.Unmarshal([]byte(payloadJSON.String), &sale.Payload); err != nil {
			// Snapshot corrompido não derruba a listagem; a linha sai só
			// com os campos canônicos.
			logrus.WithError(err).Warnf("payload_json inválido para venda %s", sale.ID)
		}
	}

	return &sale, nil
}
