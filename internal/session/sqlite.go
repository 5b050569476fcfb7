package session

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SqliteStore persists a room's sessions to an embedded-SQL database,
// for operators who want session membership to survive a room process
// restart. Grounded on original_source's SqliteSessionIo
// (meltos_backend/src/session/sqlite.rs); the raw rusqlite calls there
// are replaced by goose-managed migrations over database/sql, matching
// how the rest of this module reaches for goose + modernc.org/sqlite
// instead of a CGO driver.
type SqliteStore struct {
	db         *sql.DB
	createdCnt uint
}

// OpenSqliteStore opens (creating if absent) the sqlite database at path
// and brings its schema up to date.
func OpenSqliteStore(ctx context.Context, path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("session: open sqlite database: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("session: run migrations: %w", err)
	}

	return &SqliteStore{db: db, createdCnt: 0}, nil
}

func (s *SqliteStore) Register(ctx context.Context, userId *UserId) (UserId, SessionId, error) {
	s.createdCnt++

	var id UserId
	if userId != nil {
		id = *userId
	} else {
		id = UserId(fmt.Sprintf("guest%d", s.createdCnt))
	}
	sessionId := newSessionId()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO session(session_id, user_id) VALUES(?, ?)`,
		sessionId.String(), id.String(),
	)
	if err != nil {
		if isUniqueConstraint(err) {
			return "", "", &Error{Kind: ErrUserIdConflict, UserId: id}
		}
		return "", "", fmt.Errorf("session: register: %w", err)
	}
	return id, sessionId, nil
}

func (s *SqliteStore) Unregister(ctx context.Context, userId UserId) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM session WHERE user_id = ?`, userId.String())
	if err != nil {
		return fmt.Errorf("session: unregister: %w", err)
	}
	return nil
}

func (s *SqliteStore) Fetch(ctx context.Context, sessionId SessionId) (UserId, error) {
	row := s.db.QueryRowContext(ctx, `SELECT user_id FROM session WHERE session_id = ?`, sessionId.String())

	var userId string
	switch err := row.Scan(&userId); {
	case errors.Is(err, sql.ErrNoRows):
		return "", &Error{Kind: ErrSessionIdNotExists}
	case err != nil:
		return "", fmt.Errorf("session: fetch: %w", err)
	}
	return UserId(userId), nil
}

func (s *SqliteStore) UserCount(ctx context.Context) (uint64, error) {
	row := s.db.QueryRowContext(ctx, `SELECT count(user_id) FROM session`)

	var count uint64
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("session: user count: %w", err)
	}
	return count, nil
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

// isUniqueConstraint reports whether err is a UNIQUE constraint
// violation, the sqlite analogue of the original's SQLITE_CONSTRAINT
// (extended code 2067) match on session.user_id.
func isUniqueConstraint(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
