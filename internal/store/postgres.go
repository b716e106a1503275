package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var ErrNotFound = errors.New("not found")

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) DB() *sql.DB {
	return s.db
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// ---- users ----

func (s *PostgresStore) CreateUser(ctx context.Context, user User) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, display_name, password_hash, tier, tokens)
		VALUES ($1, LOWER($2), $3, $4, $5, $6)
	`, user.ID, user.Email, user.DisplayName, user.PasswordHash, user.Tier, user.Tokens)
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, tier, tokens, last_free_use, created_at, updated_at
		FROM users WHERE email = LOWER($1)
	`, email))
}

func (s *PostgresStore) GetUserByID(ctx context.Context, id string) (User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx, `
		SELECT id, email, display_name, password_hash, tier, tokens, last_free_use, created_at, updated_at
		FROM users WHERE id = $1
	`, id))
}

func (s *PostgresStore) scanUser(row *sql.Row) (User, error) {
	var user User
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.PasswordHash,
		&user.Tier, &user.Tokens, &user.LastFreeUse, &user.CreatedAt, &user.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("scan user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) UpdateUserTier(ctx context.Context, userID, tier string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET tier=$2, updated_at=NOW() WHERE id=$1`, userID, tier)
	if err != nil {
		return fmt.Errorf("update tier: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) RecordFreeUse(ctx context.Context, userID string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE users SET last_free_use=NOW(), updated_at=NOW() WHERE id=$1`, userID)
	if err != nil {
		return fmt.Errorf("record free use: %w", err)
	}
	return requireRow(res)
}

// ---- token ledger ----

// AdjustTokens appends a ledger entry and moves the cached balance on the
// user row in one transaction. Negative amounts debit, positive credit.
func (s *PostgresStore) AdjustTokens(ctx context.Context, userID string, amount int, kind, note string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin token tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var balance int
	err = tx.QueryRowContext(ctx, `
		UPDATE users SET tokens = tokens + $2, updated_at=NOW()
		WHERE id = $1
		RETURNING tokens
	`, userID, amount).Scan(&balance)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("adjust balance: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO token_transactions (user_id, amount, kind, note)
		VALUES ($1, $2, $3, $4)
	`, userID, amount, kind, note); err != nil {
		return 0, fmt.Errorf("append token transaction: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit token tx: %w", err)
	}
	return balance, nil
}

func (s *PostgresStore) ListTokenTransactions(ctx context.Context, userID string, limit int) ([]TokenTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, amount, kind, note, created_at
		FROM token_transactions
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list token transactions: %w", err)
	}
	defer rows.Close()

	items := make([]TokenTransaction, 0)
	for rows.Next() {
		var t TokenTransaction
		if err := rows.Scan(&t.ID, &t.UserID, &t.Amount, &t.Kind, &t.Note, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan token transaction: %w", err)
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

// ---- documents ----

func (s *PostgresStore) InsertDocument(ctx context.Context, doc Document) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO documents (id, owner_id, title, content, word_count, date)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, doc.ID, doc.OwnerID, doc.Title, doc.Content, doc.WordCount, doc.Date)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

func (s *PostgresStore) UpdateDocument(ctx context.Context, doc Document) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE documents
		SET title=$2, content=$3, word_count=$4, date=$5, updated_at=NOW()
		WHERE id=$1 AND owner_id=$6
	`, doc.ID, doc.Title, doc.Content, doc.WordCount, doc.Date, doc.OwnerID)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	return requireRow(res)
}

func (s *PostgresStore) GetDocument(ctx context.Context, id string) (Document, error) {
	var doc Document
	err := s.db.QueryRowContext(ctx, `
		SELECT id, owner_id, title, content, word_count, date, updated_at
		FROM documents WHERE id=$1
	`, id).Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Content, &doc.WordCount, &doc.Date, &doc.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("get document: %w", err)
	}
	return doc, nil
}

func (s *PostgresStore) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, owner_id, title, content, word_count, date, updated_at
		FROM documents WHERE owner_id=$1
		ORDER BY updated_at DESC
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]Document, 0)
	for rows.Next() {
		var doc Document
		if err := rows.Scan(&doc.ID, &doc.OwnerID, &doc.Title, &doc.Content, &doc.WordCount, &doc.Date, &doc.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

func (s *PostgresStore) DeleteDocument(ctx context.Context, id, ownerID string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id=$1 AND owner_id=$2`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	return requireRow(res)
}

// ---- blacklist ----

func (s *PostgresStore) ListBlacklistWords(ctx context.Context) ([]BlacklistWord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT word, added_by, created_at FROM blacklist_words ORDER BY word
	`)
	if err != nil {
		return nil, fmt.Errorf("list blacklist: %w", err)
	}
	defer rows.Close()

	words := make([]BlacklistWord, 0)
	for rows.Next() {
		var w BlacklistWord
		if err := rows.Scan(&w.Word, &w.AddedBy, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan blacklist word: %w", err)
		}
		words = append(words, w)
	}
	return words, rows.Err()
}

func (s *PostgresStore) InsertBlacklistWord(ctx context.Context, word, addedBy string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO blacklist_words (word, added_by)
		VALUES (LOWER($1), $2)
		ON CONFLICT (word) DO NOTHING
	`, word, addedBy)
	if err != nil {
		return fmt.Errorf("insert blacklist word: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteBlacklistWord(ctx context.Context, word string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM blacklist_words WHERE word=LOWER($1)`, word)
	if err != nil {
		return fmt.Errorf("delete blacklist word: %w", err)
	}
	return nil
}

// ---- complaints ----

func (s *PostgresStore) InsertComplaint(ctx context.Context, c Complaint) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO complaints (id, filed_by, about_email, body, status)
		VALUES ($1, $2, LOWER($3), $4, 'open')
	`, c.ID, c.FiledBy, c.AboutEmail, c.Body)
	if err != nil {
		return fmt.Errorf("insert complaint: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListComplaints(ctx context.Context, status string) ([]Complaint, error) {
	query := `
		SELECT id, filed_by, about_email, body, status, resolution, created_at, resolved_at
		FROM complaints
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list complaints: %w", err)
	}
	defer rows.Close()

	items := make([]Complaint, 0)
	for rows.Next() {
		var c Complaint
		if err := rows.Scan(&c.ID, &c.FiledBy, &c.AboutEmail, &c.Body, &c.Status, &c.Resolution, &c.CreatedAt, &c.ResolvedAt); err != nil {
			return nil, fmt.Errorf("scan complaint: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (s *PostgresStore) ResolveComplaint(ctx context.Context, id, resolution string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE complaints SET status='resolved', resolution=$2, resolved_at=NOW()
		WHERE id=$1 AND status='open'
	`, id, resolution)
	if err != nil {
		return fmt.Errorf("resolve complaint: %w", err)
	}
	return requireRow(res)
}

// ---- suggestion reports ----

func (s *PostgresStore) InsertSuggestionReport(ctx context.Context, r SuggestionReport) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO suggestion_reports (id, user_id, kind, original, corrected, message, note, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'open')
	`, r.ID, r.UserID, r.Kind, r.Original, r.Corrected, r.Message, r.Note)
	if err != nil {
		return fmt.Errorf("insert suggestion report: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSuggestionReports(ctx context.Context, status string) ([]SuggestionReport, error) {
	query := `
		SELECT id, user_id, kind, original, corrected, message, note, status, created_at
		FROM suggestion_reports
	`
	args := []any{}
	if status != "" {
		query += ` WHERE status=$1`
		args = append(args, status)
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list suggestion reports: %w", err)
	}
	defer rows.Close()

	items := make([]SuggestionReport, 0)
	for rows.Next() {
		var r SuggestionReport
		if err := rows.Scan(&r.ID, &r.UserID, &r.Kind, &r.Original, &r.Corrected, &r.Message, &r.Note, &r.Status, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan suggestion report: %w", err)
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

func (s *PostgresStore) CloseSuggestionReport(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE suggestion_reports SET status='closed' WHERE id=$1 AND status='open'
	`, id)
	if err != nil {
		return fmt.Errorf("close suggestion report: %w", err)
	}
	return requireRow(res)
}

// ---- collaborators ----

func (s *PostgresStore) InsertCollaborator(ctx context.Context, c Collaborator) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO collaborators (id, document_id, email, invited_by)
		VALUES ($1, $2, LOWER($3), $4)
		ON CONFLICT (document_id, email) DO NOTHING
	`, c.ID, c.DocumentID, c.Email, c.InvitedBy)
	if err != nil {
		return fmt.Errorf("insert collaborator: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListCollaborators(ctx context.Context, documentID string) ([]Collaborator, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, document_id, email, invited_by, created_at
		FROM collaborators WHERE document_id=$1
		ORDER BY created_at
	`, documentID)
	if err != nil {
		return nil, fmt.Errorf("list collaborators: %w", err)
	}
	defer rows.Close()

	items := make([]Collaborator, 0)
	for rows.Next() {
		var c Collaborator
		if err := rows.Scan(&c.ID, &c.DocumentID, &c.Email, &c.InvitedBy, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan collaborator: %w", err)
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (s *PostgresStore) DeleteCollaborator(ctx context.Context, documentID, email string) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM collaborators WHERE document_id=$1 AND email=LOWER($2)
	`, documentID, email)
	if err != nil {
		return fmt.Errorf("delete collaborator: %w", err)
	}
	return nil
}

// ---- refresh sessions (postgres fallback when redis is not configured) ----

func (s *PostgresStore) SaveRefreshSession(ctx context.Context, tokenHash, userID string, expiresAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_sessions (token_hash, user_id, expires_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (token_hash) DO UPDATE SET user_id=EXCLUDED.user_id, expires_at=EXCLUDED.expires_at, revoked_at=NULL
	`, tokenHash, userID, expiresAt)
	if err != nil {
		return fmt.Errorf("save refresh session: %w", err)
	}
	return nil
}

func (s *PostgresStore) LookupRefreshSession(ctx context.Context, tokenHash string) (User, error) {
	var userID string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id FROM refresh_sessions
		WHERE token_hash=$1 AND revoked_at IS NULL AND expires_at > NOW()
	`, tokenHash).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("lookup refresh session: %w", err)
	}
	return s.GetUserByID(ctx, userID)
}

func (s *PostgresStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	_, err := s.db.ExecContext(ctx, `UPDATE refresh_sessions SET revoked_at=NOW() WHERE token_hash=$1`, tokenHash)
	if err != nil {
		return fmt.Errorf("revoke refresh session: %w", err)
	}
	return nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
