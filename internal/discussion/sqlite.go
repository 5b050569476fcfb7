package discussion

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/meltosdev/meltos/internal/session"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SqliteStore persists a room's discussion log to an embedded-SQL
// database. Grounded on original_source's SqliteDiscussionIo
// (meltos_backend/src/discussion/global/sqlite.rs); table layout
// collapses the original's separate discussion_message/reply_message
// join tables into a single message table with a nullable reply_to
// column, since every message here already carries its owning
// discussion id.
type SqliteStore struct {
	db *sql.DB
}

func OpenSqliteStore(ctx context.Context, path string) (*SqliteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("discussion: open sqlite database: %w", err)
	}

	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		db.Close()
		return nil, fmt.Errorf("discussion: set goose dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		db.Close()
		return nil, fmt.Errorf("discussion: run migrations: %w", err)
	}

	return &SqliteStore{db: db}, nil
}

func (s *SqliteStore) Create(ctx context.Context, title string, creator session.UserId) (Meta, error) {
	meta := Meta{Id: newDiscussionId(), Title: title, Creator: creator}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO discussion_meta(discussion_id, title, creator) VALUES(?, ?, ?)`,
		meta.Id.String(), meta.Title, meta.Creator.String(),
	)
	if err != nil {
		return Meta{}, fmt.Errorf("discussion: create: %w", err)
	}
	return meta, nil
}

func (s *SqliteStore) Speak(ctx context.Context, discussionId DiscussionId, userId session.UserId, text string) (Message, error) {
	if err := s.requireOpen(ctx, discussionId); err != nil {
		return Message{}, err
	}

	msg := Message{Id: newMessageId(), UserId: userId, Text: text}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message(message_id, discussion_id, user_id, text, reply_to) VALUES(?, ?, ?, ?, NULL)`,
		msg.Id.String(), discussionId.String(), msg.UserId.String(), msg.Text,
	)
	if err != nil {
		return Message{}, fmt.Errorf("discussion: speak: %w", err)
	}
	return msg, nil
}

func (s *SqliteStore) Reply(ctx context.Context, userId session.UserId, to MessageId, text string) (Message, error) {
	var discussionId string
	row := s.db.QueryRowContext(ctx, `SELECT discussion_id FROM message WHERE message_id = ?`, to.String())
	switch err := row.Scan(&discussionId); {
	case errors.Is(err, sql.ErrNoRows):
		return Message{}, &Error{Kind: ErrMessageNotExists, MessageId: to}
	case err != nil:
		return Message{}, fmt.Errorf("discussion: reply: %w", err)
	}

	reply := Message{Id: newMessageId(), UserId: userId, Text: text, ReplyTo: to}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO message(message_id, discussion_id, user_id, text, reply_to) VALUES(?, ?, ?, ?, ?)`,
		reply.Id.String(), discussionId, reply.UserId.String(), reply.Text, to.String(),
	)
	if err != nil {
		return Message{}, fmt.Errorf("discussion: reply: %w", err)
	}
	return reply, nil
}

func (s *SqliteStore) Close(ctx context.Context, discussionId DiscussionId) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE discussion_meta SET closed = 1 WHERE discussion_id = ?`, discussionId.String(),
	)
	if err != nil {
		return fmt.Errorf("discussion: close: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &Error{Kind: ErrDiscussionNotExists, DiscussionId: discussionId}
	}
	return nil
}

func (s *SqliteStore) requireOpen(ctx context.Context, discussionId DiscussionId) error {
	var closed bool
	row := s.db.QueryRowContext(ctx, `SELECT closed FROM discussion_meta WHERE discussion_id = ?`, discussionId.String())
	switch err := row.Scan(&closed); {
	case errors.Is(err, sql.ErrNoRows):
		return &Error{Kind: ErrDiscussionNotExists, DiscussionId: discussionId}
	case err != nil:
		return fmt.Errorf("discussion: lookup: %w", err)
	}
	if closed {
		return &Error{Kind: ErrDiscussionNotExists, DiscussionId: discussionId}
	}
	return nil
}

func (s *SqliteStore) DiscussionBy(ctx context.Context, discussionId DiscussionId) (Bundle, error) {
	var meta Meta
	meta.Id = discussionId
	row := s.db.QueryRowContext(ctx,
		`SELECT title, creator FROM discussion_meta WHERE discussion_id = ?`, discussionId.String())
	var creator string
	switch err := row.Scan(&meta.Title, &creator); {
	case errors.Is(err, sql.ErrNoRows):
		return Bundle{}, &Error{Kind: ErrDiscussionNotExists, DiscussionId: discussionId}
	case err != nil:
		return Bundle{}, fmt.Errorf("discussion: discussion by: %w", err)
	}
	meta.Creator = session.UserId(creator)

	rows, err := s.db.QueryContext(ctx,
		`SELECT message_id, user_id, text, reply_to FROM message WHERE discussion_id = ? ORDER BY rowid`,
		discussionId.String(),
	)
	if err != nil {
		return Bundle{}, fmt.Errorf("discussion: messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var id, userId, text string
		var replyTo sql.NullString
		if err := rows.Scan(&id, &userId, &text, &replyTo); err != nil {
			return Bundle{}, fmt.Errorf("discussion: scan message: %w", err)
		}
		msg := Message{Id: MessageId(id), UserId: session.UserId(userId), Text: text}
		if replyTo.Valid {
			msg.ReplyTo = MessageId(replyTo.String)
		}
		messages = append(messages, msg)
	}
	if err := rows.Err(); err != nil {
		return Bundle{}, fmt.Errorf("discussion: messages: %w", err)
	}

	return Bundle{Meta: meta, Messages: messages}, nil
}

func (s *SqliteStore) AllDiscussions(ctx context.Context) ([]Bundle, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT discussion_id FROM discussion_meta WHERE closed = 0`)
	if err != nil {
		return nil, fmt.Errorf("discussion: all discussions: %w", err)
	}
	var ids []DiscussionId
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, fmt.Errorf("discussion: scan discussion id: %w", err)
		}
		ids = append(ids, DiscussionId(id))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	bundles := make([]Bundle, 0, len(ids))
	for _, id := range ids {
		bundle, err := s.DiscussionBy(ctx, id)
		if err != nil {
			return nil, err
		}
		bundles = append(bundles, bundle)
	}
	return bundles, nil
}

func (s *SqliteStore) CloseStore() error {
	return s.db.Close()
}
