package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/sirupsen/logrus"
)

// A inicialização do schema é idempotente e só adiciona: cada tabela é criada
// com IF NOT EXISTS e, em seguida, colunas que faltam (bancos criados por
// versões antigas do schema) são acrescentadas com ALTER TABLE. Nunca há
// migração destrutiva.

const createUsersTable = `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE,
		password_hash TEXT,
		role TEXT,
		company TEXT,
		agencies TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	)`

const createSalesTable = `
	CREATE TABLE IF NOT EXISTS sales (
		id TEXT PRIMARY KEY,
		company TEXT,
		agency TEXT,
		seller TEXT,
		total_cents INTEGER,
		payload_json TEXT,
		created_at TEXT DEFAULT (datetime('now'))
	)`

type column struct {
	name    string
	sqlType string
}

var usersColumns = []column{
	{"password_hash", "TEXT"},
	{"role", "TEXT"},
	{"company", "TEXT"},
	{"agencies", "TEXT"},
	{"created_at", "TEXT"},
}

var salesColumns = []column{
	{"company", "TEXT"},
	{"agency", "TEXT"},
	{"seller", "TEXT"},
	{"total_cents", "INTEGER"},
	{"payload_json", "TEXT"},
	{"created_at", "TEXT"},
}

// InitSchema garante as tabelas e colunas do serviço. Pode ser executado
// quantas vezes for preciso contra o mesmo banco.
func InitSchema(ctx context.Context, conn *Connection) error {
	return conn.RunInTransaction(ctx, func(tx *sql.Tx) error {
		if err := ensureTable(tx, "users", createUsersTable, usersColumns); err != nil {
			return err
		}
		return ensureTable(tx, "sales", createSalesTable, salesColumns)
	})
}

func ensureTable(tx *sql.Tx, table, createSQL string, columns []column) error {
	if _, err := tx.Exec(createSQL); err != nil {
		return fmt.Errorf("erro ao criar tabela %s: %w", table, err)
	}

	existing, err := tableColumns(tx, table)
	if err != nil {
		return err
	}

	for _, col := range columns {
		if existing[col.name] {
			continue
		}

		// Colunas novas entram com default NULL; linhas antigas continuam
		// válidas.
		alter := fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, col.name, col.sqlType)
		if _, err := tx.Exec(alter); err != nil {
			return fmt.Errorf("erro ao adicionar coluna %s.%s: %w", table, col.name, err)
		}

		logrus.Infof("Schema: coluna %s.%s adicionada", table, col.name)
	}

	return nil
}

func tableColumns(tx *sql.Tx, table string) (map[string]bool, error) {
	rows, err := tx.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, fmt.Errorf("erro ao inspecionar tabela %s: %w", table, err)
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var (
			cid        int
			name       string
			sqlType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &sqlType, &notNull, &defaultVal, &pk); err != nil {
			return nil, err
		}
		columns[name] = true
	}

	return columns, rows.Err()
}
