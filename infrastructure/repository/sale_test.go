package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pos-backend-api/infrastructure/database/sqlite"
	"github.com/vfg2006/pos-backend-api/internal/domain"
)

func newMockSaleRepo(t *testing.T) (SaleRepository, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewSaleRepository(&sqlite.Connection{DB: db}), mock
}

func TestSaleRepository_Upsert(t *testing.T) {
	repo, mock := newMockSaleRepo(t)

	mock.ExpectExec(`INSERT INTO sales \(id,company,agency,seller,total_cents,payload_json\) VALUES \(\?,\?,\?,\?,\?,\?\)\s+ON CONFLICT \(id\) DO UPDATE SET`).
		WithArgs("v1", "THEFLISS", "Valence", "caixa@thefliss.com", int64(1250), `{"id":"v1","total":12.5}`).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.Upsert(&domain.Sale{
		ID:         "v1",
		Company:    "THEFLISS",
		Agency:     "Valence",
		Seller:     "caixa@thefliss.com",
		TotalCents: 1250,
		Payload:    map[string]any{"id": "v1", "total": 12.5},
	})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSaleRepository_List(t *testing.T) {
	t.Run("filtra por empresa e conjunto de agências", func(t *testing.T) {
		repo, mock := newMockSaleRepo(t)

		rows := sqlmock.NewRows([]string{"id", "company", "agency", "seller", "total_cents", "payload_json", "created_at"}).
			AddRow("v2", "THEFLISS", "Valence", "a@x.com", 2000, `{"note":"ok"}`, "2024-02-01 09:00:00").
			AddRow("v1", "THEFLISS", "Pierrelatte", "b@x.com", 1000, ``, "2024-01-31 09:00:00")

		mock.ExpectQuery(`SELECT id, company, agency, seller, total_cents, payload_json, created_at FROM sales WHERE company = \? AND agency IN \(\?,\?\) ORDER BY datetime\(created_at\) DESC LIMIT 2000`).
			WithArgs("THEFLISS", "Valence", "Pierrelatte").
			WillReturnRows(rows)

		sales, err := repo.List(domain.SaleFilter{
			Company:  "THEFLISS",
			Agencies: []string{"Valence", "Pierrelatte"},
		})
		require.NoError(t, err)
		require.Len(t, sales, 2)
		assert.Equal(t, "ok", sales[0].Payload["note"])
		assert.Nil(t, sales[1].Payload)
	})

	t.Run("agência explícita tem precedência sobre o conjunto", func(t *testing.T) {
		repo, mock := newMockSaleRepo(t)

		mock.ExpectQuery(`SELECT .* FROM sales WHERE company = \? AND agency = \? ORDER BY`).
			WithArgs("THEFLISS", "Valence").
			WillReturnRows(sqlmock.NewRows([]string{"id", "company", "agency", "seller", "total_cents", "payload_json", "created_at"}))

		sales, err := repo.List(domain.SaleFilter{
			Company:  "THEFLISS",
			Agency:   "Valence",
			Agencies: []string{"Valence", "Pierrelatte"},
		})
		require.NoError(t, err)
		assert.Empty(t, sales)
	})

	t.Run("snapshot corrompido não derruba a listagem", func(t *testing.T) {
		repo, mock := newMockSaleRepo(t)

		rows := sqlmock.NewRows([]string{"id", "company", "agency", "seller", "total_cents", "payload_json", "created_at"}).
			AddRow("v3", "THEFLISS", "", "", 500, `{invalido`, "2024-02-01 09:00:00")

		mock.ExpectQuery(`SELECT .* FROM sales ORDER BY`).
			WillReturnRows(rows)

		sales, err := repo.List(domain.SaleFilter{})
		require.NoError(t, err)
		require.Len(t, sales, 1)
		assert.Nil(t, sales[0].Payload)
		assert.Equal(t, int64(500), sales[0].TotalCents)
	})
}

func TestSaleRepository_Delete(t *testing.T) {
	repo, mock := newMockSaleRepo(t)

	mock.ExpectExec(`DELETE FROM sales WHERE id = \?`).
		WithArgs("v1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete("v1"))
}
