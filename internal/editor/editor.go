// Package editor implements the correction-session state controller: a text
// buffer, a ledger of proposed corrections anchored to byte offsets inside
// that buffer, and the submission lifecycle that drives the external
// correction engine and token billing.
package editor

import (
	"context"
	"errors"
)

type Tier string

const (
	TierFree  Tier = "free"
	TierPaid  Tier = "paid"
	TierSuper Tier = "super"
)

type CheckType string

const (
	CheckLLM  CheckType = "llm"
	CheckSelf CheckType = "self"
)

type SubmissionState string

const (
	StateIdle      SubmissionState = "idle"
	StateSubmitted SubmissionState = "submitted"
)

// Correction is one proposed change to the buffer. StartIndex/EndIndex are
// half-open byte offsets into the buffer as it was when the correction was
// generated.
type Correction struct {
	ID         int    `json:"id"`
	Kind       string `json:"type"`
	Original   string `json:"original"`
	Corrected  string `json:"corrected"`
	StartIndex int    `json:"startIndex"`
	EndIndex   int    `json:"endIndex"`
	Message    string `json:"message"`
}

// Document is the persistence shape exchanged with the document collaborator.
type Document struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Date      string `json:"date"`
	Content   string `json:"content"`
	WordCount int    `json:"wordCount"`
}

// Account is the acting user's view supplied by the auth collaborator.
type Account struct {
	Tier       Tier
	Tokens     int
	CanUseFree bool
}

// Engine produces corrections for a piece of text.
type Engine interface {
	Correct(ctx context.Context, text string) ([]Correction, error)
}

// Billing issues token debit/credit intents against the account service.
// The authoritative balance lives there, not in the session.
type Billing interface {
	Debit(ctx context.Context, amount int) error
	Credit(ctx context.Context, amount int) error
}

// Accounts supplies the acting user's tier and balance and records free-tier
// usage.
type Accounts interface {
	Account(ctx context.Context) (Account, error)
	RecordFreeUse(ctx context.Context) error
}

// Documents persists saved documents.
type Documents interface {
	Create(ctx context.Context, doc Document) error
	Update(ctx context.Context, doc Document) error
}

// OverlapPolicy controls what happens to corrections whose range overlaps an
// accepted correction's range. Their offsets cannot be trusted after the
// splice, so the safe default drops them.
type OverlapPolicy int

const (
	DropOverlapping OverlapPolicy = iota
	KeepOverlapping
)

const (
	// DefaultTitle is the placeholder title for an unsaved session.
	DefaultTitle = "Untitled Document"

	// FreeWordLimit caps the text length free-tier users may submit.
	FreeWordLimit = 20

	// SaveFee is the flat token cost of persisting a document.
	SaveFee = 5

	// RewardBonus is credited when a paid user's longer text comes back
	// from the engine without a single correction.
	RewardBonus      = 3
	rewardMinWords   = 10
	tokenRatePerWord = 0.05
)

var (
	ErrEmptyText          = errors.New("enter at least one word")
	ErrWordLimitExceeded  = errors.New("free users can only edit texts up to 20 words")
	ErrInsufficientTokens = errors.New("insufficient tokens")
	ErrCorrectionFailed   = errors.New("failed to analyze text")
	ErrPaidTierRequired   = errors.New("only paid users can save documents")
	ErrSaveTokensRequired = errors.New("you need 5 tokens to save a document")
)
