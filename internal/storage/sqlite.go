// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// =============================================================================
// SQLITE STORE
// =============================================================================

const schema = `
CREATE TABLE IF NOT EXISTS folders (
	id         TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS workbooks (
	id         TEXT PRIMARY KEY,
	title      TEXT NOT NULL,
	folder_id  TEXT NOT NULL DEFAULT '',
	favorite   INTEGER NOT NULL DEFAULT 0,
	content    BLOB,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS chats (
	id          TEXT PRIMARY KEY,
	workbook_id TEXT NOT NULL DEFAULT '',
	title       TEXT NOT NULL,
	created_at  INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
	id         TEXT PRIMARY KEY,
	chat_id    TEXT NOT NULL,
	role       TEXT NOT NULL,
	parts      BLOB,
	created_at INTEGER NOT NULL,
	FOREIGN KEY (chat_id) REFERENCES chats(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_workbooks_updated ON workbooks(updated_at DESC);
CREATE INDEX IF NOT EXISTS idx_messages_chat ON messages(chat_id, created_at);
`

// SQLiteStore implements Store over an embedded SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// Open opens (creating if necessary) the database at the given path.
func Open(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create data dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// The embedded driver serializes writes; a single connection avoids
	// SQLITE_BUSY under concurrent access.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Close releases the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// WORKBOOKS
// =============================================================================

// CreateWorkbook inserts a new workbook and returns it.
func (s *SQLiteStore) CreateWorkbook(title string, content json.RawMessage) (*Workbook, error) {
	now := time.Now()
	wb := &Workbook{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}
	_, err := s.db.Exec(
		`INSERT INTO workbooks (id, title, folder_id, favorite, content, created_at, updated_at) VALUES (?, ?, '', 0, ?, ?, ?)`,
		wb.ID, wb.Title, []byte(wb.Content), now.UnixMilli(), now.UnixMilli(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert workbook: %w", err)
	}
	return wb, nil
}

// GetWorkbook retrieves a workbook with its content.
func (s *SQLiteStore) GetWorkbook(id string) (*Workbook, error) {
	row := s.db.QueryRow(
		`SELECT id, title, folder_id, favorite, content, created_at, updated_at FROM workbooks WHERE id = ?`, id)
	return scanWorkbook(row)
}

// ListWorkbooks returns all workbooks, most recently updated first,
// without their content payloads.
func (s *SQLiteStore) ListWorkbooks() ([]*Workbook, error) {
	rows, err := s.db.Query(
		`SELECT id, title, folder_id, favorite, created_at, updated_at FROM workbooks ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list workbooks: %w", err)
	}
	defer rows.Close()

	var out []*Workbook
	for rows.Next() {
		var wb Workbook
		var fav int
		var created, updated int64
		if err := rows.Scan(&wb.ID, &wb.Title, &wb.FolderID, &fav, &created, &updated); err != nil {
			return nil, err
		}
		wb.Favorite = fav != 0
		wb.CreatedAt = time.UnixMilli(created)
		wb.UpdatedAt = time.UnixMilli(updated)
		out = append(out, &wb)
	}
	return out, rows.Err()
}

// UpdateWorkbookContent replaces the content snapshot and bumps the
// updated timestamp.
func (s *SQLiteStore) UpdateWorkbookContent(id string, content json.RawMessage) error {
	res, err := s.db.Exec(
		`UPDATE workbooks SET content = ?, updated_at = ? WHERE id = ?`,
		[]byte(content), time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update workbook: %w", err)
	}
	return requireRow(res)
}

// RenameWorkbook changes a workbook's title.
func (s *SQLiteStore) RenameWorkbook(id, title string) error {
	res, err := s.db.Exec(
		`UPDATE workbooks SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("rename workbook: %w", err)
	}
	return requireRow(res)
}

// DuplicateWorkbook copies a workbook, content included, under a
// "(copy)" title.
func (s *SQLiteStore) DuplicateWorkbook(id string) (*Workbook, error) {
	orig, err := s.GetWorkbook(id)
	if err != nil {
		return nil, err
	}
	copyTitle := orig.Title + " (copy)"
	dup, err := s.CreateWorkbook(copyTitle, orig.Content)
	if err != nil {
		return nil, err
	}
	if orig.FolderID != "" {
		if err := s.MoveWorkbook(dup.ID, orig.FolderID); err != nil {
			return nil, err
		}
		dup.FolderID = orig.FolderID
	}
	return dup, nil
}

// MoveWorkbook assigns a workbook to a folder ("" for the root).
func (s *SQLiteStore) MoveWorkbook(id, folderID string) error {
	res, err := s.db.Exec(
		`UPDATE workbooks SET folder_id = ?, updated_at = ? WHERE id = ?`,
		folderID, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("move workbook: %w", err)
	}
	return requireRow(res)
}

// ToggleFavorite flips the favorite flag and returns the new value.
func (s *SQLiteStore) ToggleFavorite(id string) (bool, error) {
	wb, err := s.GetWorkbook(id)
	if err != nil {
		return false, err
	}
	next := !wb.Favorite
	fav := 0
	if next {
		fav = 1
	}
	_, err = s.db.Exec(`UPDATE workbooks SET favorite = ? WHERE id = ?`, fav, id)
	if err != nil {
		return false, fmt.Errorf("toggle favorite: %w", err)
	}
	return next, nil
}

// DeleteWorkbook removes a workbook.
func (s *SQLiteStore) DeleteWorkbook(id string) error {
	res, err := s.db.Exec(`DELETE FROM workbooks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workbook: %w", err)
	}
	return requireRow(res)
}

func scanWorkbook(row *sql.Row) (*Workbook, error) {
	var wb Workbook
	var fav int
	var content []byte
	var created, updated int64
	err := row.Scan(&wb.ID, &wb.Title, &wb.FolderID, &fav, &content, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	wb.Favorite = fav != 0
	wb.Content = content
	wb.CreatedAt = time.UnixMilli(created)
	wb.UpdatedAt = time.UnixMilli(updated)
	return &wb, nil
}

// =============================================================================
// FOLDERS
// =============================================================================

// CreateFolder inserts a new folder.
func (s *SQLiteStore) CreateFolder(name string) (*Folder, error) {
	f := &Folder{ID: uuid.NewString(), Name: name, CreatedAt: time.Now()}
	_, err := s.db.Exec(
		`INSERT INTO folders (id, name, created_at) VALUES (?, ?, ?)`,
		f.ID, f.Name, f.CreatedAt.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert folder: %w", err)
	}
	return f, nil
}

// ListFolders returns all folders by name.
func (s *SQLiteStore) ListFolders() ([]*Folder, error) {
	rows, err := s.db.Query(`SELECT id, name, created_at FROM folders ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	defer rows.Close()

	var out []*Folder
	for rows.Next() {
		var f Folder
		var created int64
		if err := rows.Scan(&f.ID, &f.Name, &created); err != nil {
			return nil, err
		}
		f.CreatedAt = time.UnixMilli(created)
		out = append(out, &f)
	}
	return out, rows.Err()
}

// RenameFolder changes a folder's name.
func (s *SQLiteStore) RenameFolder(id, name string) error {
	res, err := s.db.Exec(`UPDATE folders SET name = ? WHERE id = ?`, name, id)
	if err != nil {
		return fmt.Errorf("rename folder: %w", err)
	}
	return requireRow(res)
}

// DeleteFolder removes a folder; its workbooks move to the root.
func (s *SQLiteStore) DeleteFolder(id string) error {
	if _, err := s.db.Exec(`UPDATE workbooks SET folder_id = '' WHERE folder_id = ?`, id); err != nil {
		return fmt.Errorf("detach workbooks: %w", err)
	}
	res, err := s.db.Exec(`DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	return requireRow(res)
}

// =============================================================================
// CHATS
// =============================================================================

// CreateChat inserts a new chat.
func (s *SQLiteStore) CreateChat(workbookID, title string) (*Chat, error) {
	now := time.Now()
	c := &Chat{
		ID:         uuid.NewString(),
		WorkbookID: workbookID,
		Title:      title,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	_, err := s.db.Exec(
		`INSERT INTO chats (id, workbook_id, title, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.WorkbookID, c.Title, now.UnixMilli(), now.UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("insert chat: %w", err)
	}
	return c, nil
}

// ListChats returns the chats for a workbook ("" lists all), most
// recently updated first.
func (s *SQLiteStore) ListChats(workbookID string) ([]*Chat, error) {
	query := `SELECT id, workbook_id, title, created_at, updated_at FROM chats`
	args := []interface{}{}
	if workbookID != "" {
		query += ` WHERE workbook_id = ?`
		args = append(args, workbookID)
	}
	query += ` ORDER BY updated_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list chats: %w", err)
	}
	defer rows.Close()

	var out []*Chat
	for rows.Next() {
		var c Chat
		var created, updated int64
		if err := rows.Scan(&c.ID, &c.WorkbookID, &c.Title, &created, &updated); err != nil {
			return nil, err
		}
		c.CreatedAt = time.UnixMilli(created)
		c.UpdatedAt = time.UnixMilli(updated)
		out = append(out, &c)
	}
	return out, rows.Err()
}

// GetChat retrieves a chat with its messages in order.
func (s *SQLiteStore) GetChat(id string) (*Chat, []*ChatMessage, error) {
	row := s.db.QueryRow(
		`SELECT id, workbook_id, title, created_at, updated_at FROM chats WHERE id = ?`, id)

	var c Chat
	var created, updated int64
	err := row.Scan(&c.ID, &c.WorkbookID, &c.Title, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	c.CreatedAt = time.UnixMilli(created)
	c.UpdatedAt = time.UnixMilli(updated)

	rows, err := s.db.Query(
		`SELECT id, chat_id, role, parts, created_at FROM messages WHERE chat_id = ? ORDER BY created_at, id`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []*ChatMessage
	for rows.Next() {
		var m ChatMessage
		var parts []byte
		var ts int64
		if err := rows.Scan(&m.ID, &m.ChatID, &m.Role, &parts, &ts); err != nil {
			return nil, nil, err
		}
		m.Parts = parts
		m.CreatedAt = time.UnixMilli(ts)
		msgs = append(msgs, &m)
	}
	return &c, msgs, rows.Err()
}

// AddMessage appends a message to its chat and bumps the chat timestamp.
func (s *SQLiteStore) AddMessage(msg *ChatMessage) error {
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(
		`INSERT INTO messages (id, chat_id, role, parts, created_at) VALUES (?, ?, ?, ?, ?)`,
		msg.ID, msg.ChatID, msg.Role, []byte(msg.Parts), msg.CreatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	_, err = s.db.Exec(`UPDATE chats SET updated_at = ? WHERE id = ?`,
		time.Now().UnixMilli(), msg.ChatID)
	return err
}

// UpdateChatTitle renames a chat.
func (s *SQLiteStore) UpdateChatTitle(id, title string) error {
	res, err := s.db.Exec(
		`UPDATE chats SET title = ?, updated_at = ? WHERE id = ?`,
		title, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("update chat: %w", err)
	}
	return requireRow(res)
}

// DeleteChat removes a chat and its messages.
func (s *SQLiteStore) DeleteChat(id string) error {
	if _, err := s.db.Exec(`DELETE FROM messages WHERE chat_id = ?`, id); err != nil {
		return fmt.Errorf("delete messages: %w", err)
	}
	res, err := s.db.Exec(`DELETE FROM chats WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete chat: %w", err)
	}
	return requireRow(res)
}

// =============================================================================
// HELPERS
// =============================================================================

// requireRow converts a zero-row update into ErrNotFound.
func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
