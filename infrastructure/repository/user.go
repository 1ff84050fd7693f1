package repository

import (
	"database/sql"
	"strings"

	"github.com/Masterminds/squirrel"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/pkg/errors"
	"github.com/vfg2006/pos-backend-api/infrastructure/database/sqlite"
	"github.com/vfg2006/pos-backend-api/internal/domain"
	sqlitedrv "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const (
	usersTable = "users"

	idLength   = 12
	characters = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// ErrDuplicateEmail sinaliza violação da constraint UNIQUE de email; a camada
// HTTP traduz para 409.
var ErrDuplicateEmail = errors.New("email já cadastrado")

type UserRepository interface {
	CreateUser(user *domain.User) (*domain.User, error)
	GetUserByEmail(email string) (*domain.User, error)
	ListUsers() ([]*domain.User, error)
	DeleteUser(id string) error
}

type userRepository struct {
	conn *sqlite.Connection
}

func NewUserRepository(conn *sqlite.Connection) UserRepository {
	return &userRepository{
		conn: conn,
	}
}

func (r *userRepository) CreateUser(user *domain.User) (*domain.User, error) {
	id, err := gonanoid.Generate(characters, idLength)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao gerar id de usuário")
	}
	user.ID = id

	usersSQL, usersArgs, err := squirrel.
		Insert(usersTable).
		Columns("id", "email", "password_hash", "role", "company", "agencies").
		Values(user.ID, user.Email, user.PasswordHash, user.Role, user.Company, user.Agencies).
		PlaceholderFormat(squirrel.Question).
		ToSql()
	if err != nil {
		return nil, err
	}

	if _, err := r.conn.Exec(usersSQL, usersArgs...); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, errors.Wrap(err, "erro ao inserir usuário")
	}

	return user, nil
}

func (r *userRepository) GetUserByEmail(email string) (*domain.User, error) {
	var (
		user         domain.User
		passwordHash sql.NullString
		role         sql.NullString
		company      sql.NullString
		agencies     sql.NullString
		createdAt    sql.NullString
	)

	// Colunas adicionadas por migração aditiva podem estar NULL em bancos
	// antigos.
	err := r.conn.QueryRow(
		"SELECT id, email, password_hash, role, company, agencies, created_at FROM users WHERE email = ?",
		email,
	).Scan(
		&user.ID,
		&user.Email,
		&passwordHash,
		&role,
		&company,
		&agencies,
		&createdAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "erro ao consultar usuário por email")
	}

	user.PasswordHash = passwordHash.String
	user.Role = role.String
	user.Company = company.String
	user.Agencies = agencies.String
	user.CreatedAt = createdAt.String
	return &user, nil
}

// ListUsers nunca expõe o hash de senha.
func (r *userRepository) ListUsers() ([]*domain.User, error) {
	usersSQL, usersArgs, err := squirrel.
		Select("id", "email", "role", "company", "agencies", "created_at").
		From(usersTable).
		OrderBy("created_at DESC").
		PlaceholderFormat(squirrel.Question).
		ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.conn.Query(usersSQL, usersArgs...)
	if err != nil {
		return nil, errors.Wrap(err, "erro ao listar usuários")
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var (
			user      domain.User
			role      sql.NullString
			company   sql.NullString
			agencies  sql.NullString
			createdAt sql.NullString
		)
		if err := rows.Scan(
			&user.ID,
			&user.Email,
			&role,
			&company,
			&agencies,
			&createdAt,
		); err != nil {
			return nil, err
		}

		user.Role = role.String
		user.Company = company.String
		user.Agencies = agencies.String
		user.CreatedAt = createdAt.String
		users = append(users, &user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

// DeleteUser é idempotente: apagar um id inexistente não é erro.
func (r *userRepository) DeleteUser(id string) error {
	deleteSQL, deleteArgs, err := squirrel.
		Delete(usersTable).
		Where(squirrel.Eq{"id": id}).
		PlaceholderFormat(squirrel.Question).
		ToSql()
	if err != nil {
		return err
	}

	if _, err := r.conn.Exec(deleteSQL, deleteArgs...); err != nil {
		return errors.Wrap(err, "erro ao remover usuário")
	}

	return nil
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}

	var se *sqlitedrv.Error
	if errors.As(err, &se) {
		code := se.Code()
		return code == sqlite3.SQLITE_CONSTRAINT_UNIQUE ||
			code == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY ||
			code == sqlite3.SQLITE_CONSTRAINT
	}

	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
