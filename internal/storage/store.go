// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides durable persistence for workbooks, folders and
// chat transcripts.
package storage

import (
	"encoding/json"
	"time"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// Workbook is a persisted spreadsheet document.
type Workbook struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	FolderID  string    `json:"folder_id,omitempty"`
	Favorite  bool      `json:"favorite"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Content is the serialized document snapshot.
	Content json.RawMessage `json:"content,omitempty"`
}

// Folder groups workbooks.
type Folder struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Chat is a persisted conversation attached to a workbook.
type Chat struct {
	ID         string    `json:"id"`
	WorkbookID string    `json:"workbook_id,omitempty"`
	Title      string    `json:"title"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ChatMessage is one persisted message of a chat. Parts carries the
// serialized content sequence, including embedded tool invocations.
type ChatMessage struct {
	ID        string          `json:"id"`
	ChatID    string          `json:"chat_id"`
	Role      string          `json:"role"`
	Parts     json.RawMessage `json:"parts,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// =============================================================================
// STORE INTERFACE
// =============================================================================

// Store is the persistence backend. All methods are safe for concurrent
// use. Lookups for missing records return ErrNotFound.
type Store interface {
	// Workbooks
	CreateWorkbook(title string, content json.RawMessage) (*Workbook, error)
	GetWorkbook(id string) (*Workbook, error)
	ListWorkbooks() ([]*Workbook, error)
	UpdateWorkbookContent(id string, content json.RawMessage) error
	RenameWorkbook(id, title string) error
	DuplicateWorkbook(id string) (*Workbook, error)
	MoveWorkbook(id, folderID string) error
	ToggleFavorite(id string) (bool, error)
	DeleteWorkbook(id string) error

	// Folders
	CreateFolder(name string) (*Folder, error)
	ListFolders() ([]*Folder, error)
	RenameFolder(id, name string) error
	DeleteFolder(id string) error

	// Chats
	CreateChat(workbookID, title string) (*Chat, error)
	ListChats(workbookID string) ([]*Chat, error)
	GetChat(id string) (*Chat, []*ChatMessage, error)
	AddMessage(msg *ChatMessage) error
	UpdateChatTitle(id, title string) error
	DeleteChat(id string) error

	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a record does not exist.
// Use errors.Is(err, ErrNotFound) to check for this error.
var ErrNotFound = &StoreError{Message: "record not found"}

// StoreError represents a storage-related error.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
