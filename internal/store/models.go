package store

import "time"

type User struct {
	ID           string
	Email        string
	DisplayName  string
	PasswordHash string
	Tier         string
	Tokens       int
	LastFreeUse  *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type Document struct {
	ID        string
	OwnerID   string
	Title     string
	Content   string
	WordCount int
	Date      string
	UpdatedAt time.Time
}

// TokenTransaction is one row of the append-only token ledger. The balance on
// the user row is adjusted inside the same database transaction; mistakes are
// corrected with opposite-sign entries, never edits.
type TokenTransaction struct {
	ID        int64
	UserID    string
	Amount    int
	Kind      string
	Note      string
	CreatedAt time.Time
}

type BlacklistWord struct {
	Word      string
	AddedBy   string
	CreatedAt time.Time
}

type Complaint struct {
	ID         string
	FiledBy    string
	AboutEmail string
	Body       string
	Status     string
	Resolution string
	CreatedAt  time.Time
	ResolvedAt *time.Time
}

// SuggestionReport records a correction a user flagged as wrong, for admin
// review.
type SuggestionReport struct {
	ID        string
	UserID    string
	Kind      string
	Original  string
	Corrected string
	Message   string
	Note      string
	Status    string
	CreatedAt time.Time
}

// Revision describes one entry in a document's saved history.
type Revision struct {
	Hash      string    `json:"hash"`
	Message   string    `json:"message"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}

type Collaborator struct {
	ID         string
	DocumentID string
	Email      string
	InvitedBy  string
	CreatedAt  time.Time
}
