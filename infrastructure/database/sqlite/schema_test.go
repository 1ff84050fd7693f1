package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/pos-backend-api/internal/config"
)

func openTestConnection(t *testing.T) *Connection {
	t.Helper()

	conn, err := NewConnection(context.Background(), config.Database{
		Path: filepath.Join(t.TempDir(), "pos.sqlite"),
	})
	require.NoError(t, err)

	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func columnNames(t *testing.T, conn *Connection, table string) map[string]int {
	t.Helper()

	rows, err := conn.Query("PRAGMA table_info(" + table + ")")
	require.NoError(t, err)
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			cid, notNull, pk int
			name, sqlType    string
			defaultVal       any
		)
		require.NoError(t, rows.Scan(&cid, &name, &sqlType, &notNull, &defaultVal, &pk))
		counts[name]++
	}
	require.NoError(t, rows.Err())

	return counts
}

func TestInitSchema(t *testing.T) {
	conn := openTestConnection(t)
	ctx := context.Background()

	require.NoError(t, InitSchema(ctx, conn))

	users := columnNames(t, conn, "users")
	for _, col := range []string{"id", "email", "password_hash", "role", "company", "agencies", "created_at"} {
		assert.Equal(t, 1, users[col], "coluna users.%s", col)
	}

	sales := columnNames(t, conn, "sales")
	for _, col := range []string{"id", "company", "agency", "seller", "total_cents", "payload_json", "created_at"} {
		assert.Equal(t, 1, sales[col], "coluna sales.%s", col)
	}
}

func TestInitSchema_Idempotent(t *testing.T) {
	conn := openTestConnection(t)
	ctx := context.Background()

	require.NoError(t, InitSchema(ctx, conn))
	require.NoError(t, InitSchema(ctx, conn))

	for name, count := range columnNames(t, conn, "users") {
		assert.Equal(t, 1, count, "coluna users.%s duplicada", name)
	}
	for name, count := range columnNames(t, conn, "sales") {
		assert.Equal(t, 1, count, "coluna sales.%s duplicada", name)
	}
}

func TestInitSchema_UpgradesOldDatabase(t *testing.T) {
	conn := openTestConnection(t)
	ctx := context.Background()

	// Schema de uma versão antiga, sem as colunas novas.
	_, err := conn.Exec(`CREATE TABLE users (id TEXT PRIMARY KEY, email TEXT UNIQUE)`)
	require.NoError(t, err)

	_, err = conn.Exec(`INSERT INTO users (id, email) VALUES ('u1', 'old@example.com')`)
	require.NoError(t, err)

	require.NoError(t, InitSchema(ctx, conn))

	users := columnNames(t, conn, "users")
	for _, col := range []string{"password_hash", "role", "company", "agencies", "created_at"} {
		assert.Equal(t, 1, users[col], "coluna users.%s", col)
	}

	// A linha antiga sobrevive com as colunas novas em NULL.
	var email string
	require.NoError(t, conn.QueryRow(`SELECT email FROM users WHERE id = 'u1'`).Scan(&email))
	assert.Equal(t, "old@example.com", email)
}
