package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

type User struct {
	ID          string    `db:"id"`
	Email       string    `db:"email"`
	Password    string    `db:"password"`
	DisplayName string    `db:"display_name"`
	CreatedAt   time.Time `db:"created_at"`
}

// Document is a stored loader output. Source holds the loader JSON as-is.
type Document struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Name      string    `db:"name"`
	Source    []byte    `db:"source"`
	Revision  int32     `db:"revision"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// DocumentInfo is a Document without its source.
type DocumentInfo struct {
	ID        string    `db:"id"`
	OwnerID   string    `db:"owner_id"`
	Name      string    `db:"name"`
	Revision  int32     `db:"revision"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

const userColumns = `id, email, password, display_name, created_at`

const documentColumns = `id, owner_id, name, source, revision, created_at, updated_at`

const documentInfoColumns = `id, owner_id, name, revision, created_at, updated_at`

type CreateUserParams struct {
	ID          string
	Email       string
	Password    string
	DisplayName string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	rows, err := q.db.Query(ctx,
		`INSERT INTO users (id, email, password, display_name)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		arg.ID, arg.Email, arg.Password, arg.DisplayName)
	if err != nil {
		return User{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[User])
}

func (q *Queries) GetUserByEmail(ctx context.Context, email string) (User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	if err != nil {
		return User{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[User])
}

func (q *Queries) GetUserByID(ctx context.Context, id string) (User, error) {
	rows, err := q.db.Query(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return User{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[User])
}

type CreateDocumentParams struct {
	ID      string
	OwnerID string
	Name    string
	Source  []byte
}

func (q *Queries) CreateDocument(ctx context.Context, arg CreateDocumentParams) (Document, error) {
	rows, err := q.db.Query(ctx,
		`INSERT INTO documents (id, owner_id, name, source)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+documentColumns,
		arg.ID, arg.OwnerID, arg.Name, arg.Source)
	if err != nil {
		return Document{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Document])
}

func (q *Queries) GetDocument(ctx context.Context, id string) (Document, error) {
	rows, err := q.db.Query(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = $1`, id)
	if err != nil {
		return Document{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Document])
}

func (q *Queries) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]DocumentInfo, error) {
	rows, err := q.db.Query(ctx,
		`SELECT `+documentInfoColumns+` FROM documents
		 WHERE owner_id = $1
		 ORDER BY updated_at DESC`,
		ownerID)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[DocumentInfo])
}

type UpdateDocumentSourceParams struct {
	ID     string
	Source []byte
}

// UpdateDocumentSource replaces the source and bumps the revision.
func (q *Queries) UpdateDocumentSource(ctx context.Context, arg UpdateDocumentSourceParams) (Document, error) {
	rows, err := q.db.Query(ctx,
		`UPDATE documents
		 SET source = $2, revision = revision + 1, updated_at = now()
		 WHERE id = $1
		 RETURNING `+documentColumns,
		arg.ID, arg.Source)
	if err != nil {
		return Document{}, err
	}
	return pgx.CollectOneRow(rows, pgx.RowToStructByName[Document])
}

// DeleteDocument returns pgx.ErrNoRows when nothing was deleted.
func (q *Queries) DeleteDocument(ctx context.Context, id string) error {
	tag, err := q.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
