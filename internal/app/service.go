package app

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"redline/api/internal/archive"
	"redline/api/internal/auth"
	"redline/api/internal/authpw"
	"redline/api/internal/config"
	"redline/api/internal/editor"
	"redline/api/internal/email"
	"redline/api/internal/export"
	"redline/api/internal/gitrepo"
	"redline/api/internal/search"
	"redline/api/internal/store"
	"redline/api/internal/util"
)

type Session struct {
	Token        string
	RefreshToken string
	UserID       string
	Email        string
	DisplayName  string
	Tier         string
	JTI          string
	ExpiresAt    time.Time
}

type dataStore interface {
	CreateUser(context.Context, store.User) error
	GetUserByEmail(context.Context, string) (store.User, error)
	GetUserByID(context.Context, string) (store.User, error)
	UpdateUserTier(context.Context, string, string) error
	RecordFreeUse(context.Context, string) error
	AdjustTokens(context.Context, string, int, string, string) (int, error)
	ListTokenTransactions(context.Context, string, int) ([]store.TokenTransaction, error)
	InsertDocument(context.Context, store.Document) error
	UpdateDocument(context.Context, store.Document) error
	GetDocument(context.Context, string) (store.Document, error)
	ListDocumentsByOwner(context.Context, string) ([]store.Document, error)
	DeleteDocument(context.Context, string, string) error
	ListBlacklistWords(context.Context) ([]store.BlacklistWord, error)
	InsertBlacklistWord(context.Context, string, string) error
	DeleteBlacklistWord(context.Context, string) error
	InsertComplaint(context.Context, store.Complaint) error
	ListComplaints(context.Context, string) ([]store.Complaint, error)
	ResolveComplaint(context.Context, string, string) error
	InsertSuggestionReport(context.Context, store.SuggestionReport) error
	ListSuggestionReports(context.Context, string) ([]store.SuggestionReport, error)
	CloseSuggestionReport(context.Context, string) error
	InsertCollaborator(context.Context, store.Collaborator) error
	ListCollaborators(context.Context, string) ([]store.Collaborator, error)
	DeleteCollaborator(context.Context, string, string) error
	Ping(ctx context.Context) error
}

// refreshStore holds refresh sessions. Redis-backed in production with a
// Postgres fallback when Redis is not configured.
type refreshStore interface {
	SaveRefreshSession(ctx context.Context, tokenHash string, user store.User, expiresAt time.Time) error
	LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error)
	RevokeRefreshSession(ctx context.Context, tokenHash string) error
}

// PostgresSessionStore adapts the relational store to refreshStore for
// deployments without Redis.
type PostgresSessionStore struct {
	Store *store.PostgresStore
}

func (p PostgresSessionStore) SaveRefreshSession(ctx context.Context, tokenHash string, user store.User, expiresAt time.Time) error {
	return p.Store.SaveRefreshSession(ctx, tokenHash, user.ID, expiresAt)
}

func (p PostgresSessionStore) LookupRefreshSession(ctx context.Context, tokenHash string) (store.User, error) {
	return p.Store.LookupRefreshSession(ctx, tokenHash)
}

func (p PostgresSessionStore) RevokeRefreshSession(ctx context.Context, tokenHash string) error {
	return p.Store.RevokeRefreshSession(ctx, tokenHash)
}

type gitService interface {
	EnsureDocumentRepo(string, gitrepo.Content, string) error
	CommitContent(string, gitrepo.Content, string, string) (store.Revision, error)
	History(string, int) ([]store.Revision, error)
	GetContentByHash(string, string) (gitrepo.Content, error)
}

type searchService interface {
	Search(q search.Query) (search.Response, error)
	IndexDocument(doc search.DocumentRecord)
	DeleteDocument(id string)
}

type archiveStore interface {
	Put(ctx context.Context, ownerID, filename, mimeType string, data []byte) (string, error)
	List(ctx context.Context, ownerID string) ([]archive.Entry, error)
	PresignedURL(ctx context.Context, key string, expiry time.Duration) (string, error)
}

type mailer interface {
	IsConfigured() bool
	SendWelcomeEmail(to, userName string) error
	SendInvitationEmail(to, inviterName, documentTitle, documentURL string) error
}

// hostedSession is one user's editor session plus the mutex that serializes
// access to it. The session itself is single-threaded by contract.
type hostedSession struct {
	mu   sync.Mutex
	sess *editor.Session
}

type Service struct {
	cfg       config.Config
	store     dataStore
	sessions  refreshStore
	passwords *authpw.Service
	engine    editor.Engine
	exporter  *export.Service

	git     gitService
	search  searchService
	archive archiveStore
	mail    mailer

	editorMu sync.Mutex
	editors  map[string]*hostedSession
}

// Deps wires the service's collaborators. Git, Search, Archive and Mail are
// optional; the corresponding features degrade when absent.
type Deps struct {
	Config   config.Config
	Store    dataStore
	Sessions refreshStore
	Engine   editor.Engine
	Git      *gitrepo.Service
	Search   *search.Service
	Exporter *export.Service
	Archive  *archive.Service
	Mail     *email.Service
}

func New(deps Deps) *Service {
	s := &Service{
		cfg:       deps.Config,
		store:     deps.Store,
		sessions:  deps.Sessions,
		passwords: authpw.NewService(deps.Store),
		engine:    deps.Engine,
		exporter:  deps.Exporter,
		editors:   make(map[string]*hostedSession),
	}
	if deps.Git != nil {
		s.git = deps.Git
	}
	if deps.Search != nil {
		s.search = deps.Search
	}
	if deps.Archive != nil {
		s.archive = deps.Archive
	}
	if deps.Mail != nil {
		s.mail = deps.Mail
	}
	return s
}

func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

func (s *Service) SMTPConfigured() bool {
	return s.mail != nil && s.mail.IsConfigured()
}

// Auth

func (s *Service) SignUp(ctx context.Context, emailAddr, password, displayName string) (Session, error) {
	user, err := s.passwords.SignUp(ctx, emailAddr, password, displayName)
	if err != nil {
		return Session{}, err
	}

	if s.SMTPConfigured() {
		name := user.DisplayName
		if name == "" {
			name = user.Email
		}
		if err := s.mail.SendWelcomeEmail(user.Email, name); err != nil {
			log.Printf("app: welcome email to %s failed: %v", user.Email, err)
		}
	}

	return s.issueSession(ctx, user)
}

func (s *Service) SignIn(ctx context.Context, emailAddr, password string) (Session, error) {
	user, err := s.passwords.SignIn(ctx, emailAddr, password)
	if err != nil {
		return Session{}, err
	}
	return s.issueSession(ctx, user)
}

// Refresh rotates the refresh token: the presented token is revoked and a new
// pair is issued.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (Session, error) {
	tokenHash := auth.HashToken(refreshToken)
	user, err := s.sessions.LookupRefreshSession(ctx, tokenHash)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}
	if err := s.sessions.RevokeRefreshSession(ctx, tokenHash); err != nil {
		return Session{}, err
	}
	// Tier or balance may have changed since the session was minted.
	if fresh, err := s.store.GetUserByID(ctx, user.ID); err == nil {
		user = fresh
	}
	return s.issueSession(ctx, user)
}

func (s *Service) Logout(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}
	return s.sessions.RevokeRefreshSession(ctx, auth.HashToken(refreshToken))
}

func (s *Service) issueSession(ctx context.Context, user store.User) (Session, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTTL)
	jti := util.NewID("jti")

	token, err := auth.IssueToken([]byte(s.cfg.JWTSecret), auth.Claims{
		Sub:   user.ID,
		Email: user.Email,
		Tier:  user.Tier,
		JTI:   jti,
		Exp:   expiresAt.Unix(),
	})
	if err != nil {
		return Session{}, err
	}

	refresh := util.NewID("rft") + util.NewID("")
	refreshExpires := now.Add(s.cfg.RefreshTTL)
	if err := s.sessions.SaveRefreshSession(ctx, auth.HashToken(refresh), user, refreshExpires); err != nil {
		return Session{}, err
	}

	return Session{
		Token:        token,
		RefreshToken: refresh,
		UserID:       user.ID,
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		Tier:         user.Tier,
		JTI:          jti,
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *Service) SessionFromToken(ctx context.Context, token string) (Session, error) {
	claims, err := auth.ParseToken([]byte(s.cfg.JWTSecret), token)
	if err != nil {
		return Session{}, err
	}

	user, err := s.store.GetUserByID(ctx, claims.Sub)
	if err != nil {
		return Session{}, auth.ErrInvalidToken
	}

	return Session{
		Token:       token,
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Tier:        user.Tier,
		JTI:         claims.JTI,
		ExpiresAt:   time.Unix(claims.Exp, 0),
	}, nil
}

// Editor session hosting

// editorFor returns the user's hosted editor session, creating it on first
// use. The blacklist is loaded from the store at creation time.
func (s *Service) editorFor(ctx context.Context, userID string) *hostedSession {
	s.editorMu.Lock()
	defer s.editorMu.Unlock()

	hosted, ok := s.editors[userID]
	if ok {
		return hosted
	}

	var words []string
	if rows, err := s.store.ListBlacklistWords(ctx); err != nil {
		log.Printf("app: load blacklist: %v", err)
	} else {
		for _, row := range rows {
			words = append(words, row.Word)
		}
	}

	sess := editor.NewSession(editor.Deps{
		Engine:    s.engine,
		Billing:   &billingAdapter{store: s.store, userID: userID},
		Accounts:  &accountsAdapter{store: s.store, userID: userID},
		Documents: &documentsAdapter{svc: s, userID: userID},
		Blacklist: words,
	})
	hosted = &hostedSession{sess: sess}
	s.editors[userID] = hosted
	return hosted
}

// billingAdapter turns the session's debit/credit intents into ledger rows.
type billingAdapter struct {
	store  dataStore
	userID string
}

func (b *billingAdapter) Debit(ctx context.Context, amount int) error {
	if amount == 0 {
		return nil
	}
	_, err := b.store.AdjustTokens(ctx, b.userID, -amount, "debit", "editor session")
	return err
}

func (b *billingAdapter) Credit(ctx context.Context, amount int) error {
	if amount == 0 {
		return nil
	}
	_, err := b.store.AdjustTokens(ctx, b.userID, amount, "credit", "editor session")
	return err
}

type accountsAdapter struct {
	store  dataStore
	userID string
}

func (a *accountsAdapter) Account(ctx context.Context) (editor.Account, error) {
	user, err := a.store.GetUserByID(ctx, a.userID)
	if err != nil {
		return editor.Account{}, err
	}

	canUseFree := true
	if user.LastFreeUse != nil {
		y1, m1, d1 := user.LastFreeUse.Date()
		y2, m2, d2 := time.Now().Date()
		canUseFree = !(y1 == y2 && m1 == m2 && d1 == d2)
	}

	return editor.Account{
		Tier:       editor.Tier(user.Tier),
		Tokens:     user.Tokens,
		CanUseFree: canUseFree,
	}, nil
}

func (a *accountsAdapter) RecordFreeUse(ctx context.Context) error {
	return a.store.RecordFreeUse(ctx, a.userID)
}

// documentsAdapter persists saved documents and feeds the revision history
// and search index.
type documentsAdapter struct {
	svc    *Service
	userID string
}

func (d *documentsAdapter) Create(ctx context.Context, doc editor.Document) error {
	rec := d.record(doc)
	if err := d.svc.store.InsertDocument(ctx, rec); err != nil {
		return err
	}
	d.svc.afterDocumentSave(ctx, rec, "Initial save")
	return nil
}

func (d *documentsAdapter) Update(ctx context.Context, doc editor.Document) error {
	rec := d.record(doc)
	if err := d.svc.store.UpdateDocument(ctx, rec); err != nil {
		return err
	}
	d.svc.afterDocumentSave(ctx, rec, "Save document")
	return nil
}

func (d *documentsAdapter) record(doc editor.Document) store.Document {
	return store.Document{
		ID:        doc.ID,
		OwnerID:   d.userID,
		Title:     doc.Title,
		Content:   doc.Content,
		WordCount: doc.WordCount,
		Date:      doc.Date,
	}
}

// afterDocumentSave records the revision and indexes the document. Both are
// best-effort: the relational row is already the source of truth.
func (s *Service) afterDocumentSave(ctx context.Context, rec store.Document, message string) {
	author := rec.OwnerID
	if user, err := s.store.GetUserByID(ctx, rec.OwnerID); err == nil {
		if user.DisplayName != "" {
			author = user.DisplayName
		} else {
			author = user.Email
		}
	}

	if s.git != nil {
		content := gitrepo.Content{Title: rec.Title, Text: rec.Content}
		if err := s.git.EnsureDocumentRepo(rec.ID, content, author); err != nil {
			log.Printf("app: ensure repo for %s: %v", rec.ID, err)
		} else if _, err := s.git.CommitContent(rec.ID, content, author, message); err != nil {
			log.Printf("app: commit revision for %s: %v", rec.ID, err)
		}
	}

	if s.search != nil {
		s.search.IndexDocument(search.DocumentRecord{
			ID:      rec.ID,
			Title:   rec.Title,
			Content: rec.Content,
			OwnerID: rec.OwnerID,
		})
	}
}

// Editor operations

type UpdateEditorInput struct {
	Text      *string `json:"text"`
	Title     *string `json:"title"`
	CheckType *string `json:"checkType"`
}

func (s *Service) EditorState(ctx context.Context, userID string) map[string]any {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	return editorPayload(hosted.sess)
}

func (s *Service) UpdateEditor(ctx context.Context, userID string, input UpdateEditorInput) (map[string]any, error) {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()

	sess := hosted.sess
	if input.Text != nil {
		if sess.ReadOnly() {
			return nil, domainError(http.StatusConflict, "READ_ONLY", "Buffer is read-only while corrections are pending", nil)
		}
		sess.SetText(*input.Text)
	}
	if input.Title != nil {
		sess.SetTitle(*input.Title)
	}
	if input.CheckType != nil {
		kind, err := parseCheckType(*input.CheckType)
		if err != nil {
			return nil, err
		}
		sess.SetCheckType(kind)
	}
	return editorPayload(sess), nil
}

func (s *Service) ClearEditor(ctx context.Context, userID string) map[string]any {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	hosted.sess.Clear()
	return editorPayload(hosted.sess)
}

func (s *Service) SubmitEditor(ctx context.Context, userID, checkType string) (map[string]any, error) {
	kind := editor.CheckLLM
	if checkType != "" {
		parsed, err := parseCheckType(checkType)
		if err != nil {
			return nil, err
		}
		kind = parsed
	}

	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()

	if err := hosted.sess.SubmitForCorrection(ctx, kind); err != nil {
		return nil, err
	}
	return editorPayload(hosted.sess), nil
}

func (s *Service) AcceptCorrection(ctx context.Context, userID string, correctionID int) map[string]any {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	hosted.sess.Accept(correctionID)
	return editorPayload(hosted.sess)
}

func (s *Service) RejectCorrection(ctx context.Context, userID string, correctionID int) map[string]any {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	hosted.sess.Reject(correctionID)
	return editorPayload(hosted.sess)
}

func (s *Service) SelectCorrection(ctx context.Context, userID string, correctionID int) map[string]any {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	hosted.sess.Select(correctionID)
	return editorPayload(hosted.sess)
}

func (s *Service) ClearCorrectionSelection(ctx context.Context, userID string) map[string]any {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	hosted.sess.ClearSelection()
	return editorPayload(hosted.sess)
}

func (s *Service) SaveEditorDocument(ctx context.Context, userID string) (map[string]any, error) {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()

	doc, err := hosted.sess.SaveDocument(ctx, time.Now())
	if err != nil {
		return nil, err
	}
	payload := editorPayload(hosted.sess)
	payload["document"] = doc
	return payload, nil
}

// LoadEditorDocument hydrates the editor from a saved document the user owns.
func (s *Service) LoadEditorDocument(ctx context.Context, userID, documentID string) (map[string]any, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != userID {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Document not found", nil)
	}

	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()

	applied := hosted.sess.LoadDocument(editor.Document{
		ID:        doc.ID,
		Title:     doc.Title,
		Date:      doc.Date,
		Content:   doc.Content,
		WordCount: doc.WordCount,
	})
	payload := editorPayload(hosted.sess)
	payload["applied"] = applied
	return payload, nil
}

// ExportEditorFile downloads the live buffer as plain text. Ungated.
func (s *Service) ExportEditorFile(ctx context.Context, userID string) (filename string, data []byte) {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	return hosted.sess.ExportFile()
}

func (s *Service) UploadEditorFile(ctx context.Context, userID, filename string, content []byte) map[string]any {
	hosted := s.editorFor(ctx, userID)
	hosted.mu.Lock()
	defer hosted.mu.Unlock()
	hosted.sess.LoadFile(filename, content)
	return editorPayload(hosted.sess)
}

func parseCheckType(value string) (editor.CheckType, error) {
	switch editor.CheckType(strings.ToLower(strings.TrimSpace(value))) {
	case editor.CheckLLM:
		return editor.CheckLLM, nil
	case editor.CheckSelf:
		return editor.CheckSelf, nil
	default:
		return "", domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "checkType must be llm or self", nil)
	}
}

func editorPayload(sess *editor.Session) map[string]any {
	corrections := sess.Corrections()
	if corrections == nil {
		corrections = []editor.Correction{}
	}

	var activeID any
	if active, ok := sess.ActiveCorrection(); ok {
		activeID = active.ID
	}

	return map[string]any{
		"text":               sess.Text(),
		"redactedText":       sess.Redacted(),
		"title":              sess.Title(),
		"wordCount":          sess.WordCount(),
		"tokensForLLM":       sess.TokensForLLM(),
		"tokensForSelf":      sess.TokensForSelf(),
		"state":              sess.State(),
		"checkType":          sess.CheckType(),
		"readOnly":           sess.ReadOnly(),
		"corrections":        corrections,
		"activeCorrectionId": activeID,
		"documentId":         sess.DocumentID(),
		"reEdit":             sess.ReEdit(),
	}
}

// Documents

func (s *Service) ListDocuments(ctx context.Context, userID string) ([]map[string]any, error) {
	documents, err := s.store.ListDocumentsByOwner(ctx, userID)
	if err != nil {
		return nil, err
	}
	items := make([]map[string]any, 0, len(documents))
	for _, doc := range documents {
		items = append(items, documentSummary(doc))
	}
	return items, nil
}

func (s *Service) GetDocumentDetail(ctx context.Context, userID, documentID string) (map[string]any, error) {
	doc, err := s.requireOwnedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}
	payload := documentSummary(doc)
	payload["content"] = doc.Content
	return payload, nil
}

func (s *Service) DeleteDocument(ctx context.Context, userID, documentID string) error {
	if err := s.store.DeleteDocument(ctx, documentID, userID); err != nil {
		return err
	}
	if s.search != nil {
		s.search.DeleteDocument(documentID)
	}
	return nil
}

func (s *Service) DocumentHistory(ctx context.Context, userID, documentID string, limit int) ([]store.Revision, error) {
	if _, err := s.requireOwnedDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}
	if s.git == nil {
		return []store.Revision{}, nil
	}
	revisions, err := s.git.History(documentID, limit)
	if err != nil {
		return nil, fmt.Errorf("document history: %w", err)
	}
	return revisions, nil
}

func (s *Service) DocumentRevision(ctx context.Context, userID, documentID, hash string) (map[string]any, error) {
	if _, err := s.requireOwnedDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}
	if s.git == nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Revision history not available", nil)
	}
	content, err := s.git.GetContentByHash(documentID, hash)
	if err != nil {
		return nil, domainError(http.StatusNotFound, "NOT_FOUND", "Revision not found", nil)
	}
	return map[string]any{
		"hash":  hash,
		"title": content.Title,
		"text":  content.Text,
	}, nil
}

// ExportDocument renders a saved document and, when object storage is
// configured, archives the result for later download.
func (s *Service) ExportDocument(ctx context.Context, userID, documentID string, format export.Format) (*export.Result, error) {
	doc, err := s.requireOwnedDocument(ctx, userID, documentID)
	if err != nil {
		return nil, err
	}

	author := ""
	if user, err := s.store.GetUserByID(ctx, userID); err == nil {
		author = user.DisplayName
	}

	result, err := s.exporter.Export(export.Document{
		Title:  doc.Title,
		Text:   doc.Content,
		Author: author,
		Date:   doc.Date,
	}, format)
	if err != nil {
		return nil, err
	}

	if s.archive != nil {
		if _, err := s.archive.Put(ctx, userID, result.Filename, result.MimeType, result.Data); err != nil {
			log.Printf("app: archive export %s: %v", result.Filename, err)
		}
	}
	return result, nil
}

func (s *Service) ListArchivedExports(ctx context.Context, userID string) ([]archive.Entry, error) {
	if s.archive == nil {
		return []archive.Entry{}, nil
	}
	return s.archive.List(ctx, userID)
}

func (s *Service) ArchivedExportURL(ctx context.Context, userID, key string) (string, error) {
	if s.archive == nil || !strings.HasPrefix(key, userID+"/") {
		return "", domainError(http.StatusNotFound, "NOT_FOUND", "Export not found", nil)
	}
	return s.archive.PresignedURL(ctx, key, 15*time.Minute)
}

func (s *Service) requireOwnedDocument(ctx context.Context, userID, documentID string) (store.Document, error) {
	doc, err := s.store.GetDocument(ctx, documentID)
	if err != nil {
		return store.Document{}, err
	}
	if doc.OwnerID != userID {
		return store.Document{}, domainError(http.StatusNotFound, "NOT_FOUND", "Document not found", nil)
	}
	return doc, nil
}

func documentSummary(doc store.Document) map[string]any {
	return map[string]any{
		"id":        doc.ID,
		"title":     doc.Title,
		"date":      doc.Date,
		"wordCount": doc.WordCount,
		"updatedAt": doc.UpdatedAt,
	}
}

// Collaborators

func (s *Service) AddCollaborator(ctx context.Context, session Session, documentID, collaboratorEmail string) (map[string]any, error) {
	doc, err := s.requireOwnedDocument(ctx, session.UserID, documentID)
	if err != nil {
		return nil, err
	}

	collaboratorEmail = strings.ToLower(strings.TrimSpace(collaboratorEmail))
	if collaboratorEmail == "" || !strings.Contains(collaboratorEmail, "@") {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "A valid collaborator email is required", nil)
	}

	collab := store.Collaborator{
		ID:         util.NewID("collab"),
		DocumentID: documentID,
		Email:      collaboratorEmail,
		InvitedBy:  session.UserID,
	}
	if err := s.store.InsertCollaborator(ctx, collab); err != nil {
		return nil, err
	}

	if s.SMTPConfigured() {
		inviter := session.DisplayName
		if inviter == "" {
			inviter = session.Email
		}
		if err := s.mail.SendInvitationEmail(collaboratorEmail, inviter, doc.Title, s.documentURL(documentID)); err != nil {
			log.Printf("app: invitation email to %s failed: %v", collaboratorEmail, err)
		}
	}

	return map[string]any{"id": collab.ID, "email": collab.Email}, nil
}

func (s *Service) ListDocumentCollaborators(ctx context.Context, userID, documentID string) ([]store.Collaborator, error) {
	if _, err := s.requireOwnedDocument(ctx, userID, documentID); err != nil {
		return nil, err
	}
	return s.store.ListCollaborators(ctx, documentID)
}

func (s *Service) RemoveCollaborator(ctx context.Context, userID, documentID, collaboratorEmail string) error {
	if _, err := s.requireOwnedDocument(ctx, userID, documentID); err != nil {
		return err
	}
	return s.store.DeleteCollaborator(ctx, documentID, strings.ToLower(strings.TrimSpace(collaboratorEmail)))
}

func (s *Service) documentURL(documentID string) string {
	origin := strings.TrimSuffix(s.cfg.CORSOrigin, "/")
	if origin == "" || origin == "*" {
		return "/documents/" + documentID
	}
	return origin + "/documents/" + documentID
}

// Tokens

func (s *Service) TokenBalance(ctx context.Context, userID string) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return map[string]any{"tokens": user.Tokens, "tier": user.Tier}, nil
}

func (s *Service) PurchaseTokens(ctx context.Context, userID string, amount int) (map[string]any, error) {
	if amount <= 0 {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "amount must be positive", nil)
	}
	balance, err := s.store.AdjustTokens(ctx, userID, amount, "purchase", "token purchase")
	if err != nil {
		return nil, err
	}
	return map[string]any{"tokens": balance}, nil
}

func (s *Service) TokenHistory(ctx context.Context, userID string, limit int) ([]store.TokenTransaction, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.ListTokenTransactions(ctx, userID, limit)
}

// Account

func (s *Service) AccountProfile(ctx context.Context, userID string) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"id":          user.ID,
		"email":       user.Email,
		"displayName": user.DisplayName,
		"tier":        user.Tier,
		"tokens":      user.Tokens,
	}, nil
}

// UpgradeAccount moves a free user to the paid tier.
func (s *Service) UpgradeAccount(ctx context.Context, userID string) (map[string]any, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Tier != "free" {
		return nil, domainError(http.StatusConflict, "ALREADY_UPGRADED", "Account is already on a paid tier", nil)
	}
	if err := s.store.UpdateUserTier(ctx, userID, "paid"); err != nil {
		return nil, err
	}
	return map[string]any{"tier": "paid"}, nil
}

// Search

func (s *Service) SearchDocuments(ctx context.Context, userID, query string, limit, offset int) (search.Response, error) {
	if s.search == nil {
		return search.Response{Results: []search.Result{}, Query: query}, nil
	}
	return s.search.Search(search.Query{
		Text:    query,
		OwnerID: userID,
		Limit:   limit,
		Offset:  offset,
	})
}

// Moderation

type SuggestionReportInput struct {
	Kind      string `json:"type"`
	Original  string `json:"original"`
	Corrected string `json:"corrected"`
	Message   string `json:"message"`
	Note      string `json:"note"`
}

func (s *Service) ReportSuggestion(ctx context.Context, userID string, input SuggestionReportInput) (map[string]any, error) {
	if strings.TrimSpace(input.Original) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "original text is required", nil)
	}
	report := store.SuggestionReport{
		ID:        util.NewID("rep"),
		UserID:    userID,
		Kind:      input.Kind,
		Original:  input.Original,
		Corrected: input.Corrected,
		Message:   input.Message,
		Note:      input.Note,
		Status:    "open",
	}
	if err := s.store.InsertSuggestionReport(ctx, report); err != nil {
		return nil, err
	}
	return map[string]any{"id": report.ID}, nil
}

func (s *Service) FileComplaint(ctx context.Context, userID, aboutEmail, body string) (map[string]any, error) {
	if strings.TrimSpace(body) == "" {
		return nil, domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "complaint body is required", nil)
	}
	complaint := store.Complaint{
		ID:         util.NewID("comp"),
		FiledBy:    userID,
		AboutEmail: strings.ToLower(strings.TrimSpace(aboutEmail)),
		Body:       body,
		Status:     "open",
	}
	if err := s.store.InsertComplaint(ctx, complaint); err != nil {
		return nil, err
	}
	return map[string]any{"id": complaint.ID}, nil
}

// Admin

func (s *Service) ListBlacklist(ctx context.Context) ([]store.BlacklistWord, error) {
	return s.store.ListBlacklistWords(ctx)
}

// AddBlacklistWord persists the word and pushes it into every hosted editor
// session so redaction applies without a restart.
func (s *Service) AddBlacklistWord(ctx context.Context, adminID, word string) error {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "word is required", nil)
	}
	if err := s.store.InsertBlacklistWord(ctx, word, adminID); err != nil {
		return err
	}

	s.editorMu.Lock()
	hosted := make([]*hostedSession, 0, len(s.editors))
	for _, h := range s.editors {
		hosted = append(hosted, h)
	}
	s.editorMu.Unlock()

	for _, h := range hosted {
		h.mu.Lock()
		h.sess.Blacklist().Add(word)
		h.mu.Unlock()
	}
	return nil
}

// RemoveBlacklistWord only affects sessions created after the removal.
func (s *Service) RemoveBlacklistWord(ctx context.Context, word string) error {
	return s.store.DeleteBlacklistWord(ctx, strings.ToLower(strings.TrimSpace(word)))
}

func (s *Service) ListComplaints(ctx context.Context, status string) ([]store.Complaint, error) {
	return s.store.ListComplaints(ctx, status)
}

func (s *Service) ResolveComplaint(ctx context.Context, complaintID, resolution string) error {
	if strings.TrimSpace(resolution) == "" {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "resolution is required", nil)
	}
	return s.store.ResolveComplaint(ctx, complaintID, resolution)
}

func (s *Service) ListSuggestionReports(ctx context.Context, status string) ([]store.SuggestionReport, error) {
	return s.store.ListSuggestionReports(ctx, status)
}

func (s *Service) CloseSuggestionReport(ctx context.Context, reportID string) error {
	return s.store.CloseSuggestionReport(ctx, reportID)
}

var allowedTiers = map[string]struct{}{
	"free":  {},
	"paid":  {},
	"super": {},
}

func (s *Service) SetUserTier(ctx context.Context, targetUserID, tier string) error {
	tier = strings.ToLower(strings.TrimSpace(tier))
	if _, ok := allowedTiers[tier]; !ok {
		return domainError(http.StatusUnprocessableEntity, "VALIDATION_ERROR", "tier must be free, paid or super", nil)
	}
	if _, err := s.store.GetUserByID(ctx, targetUserID); err != nil {
		return err
	}
	return s.store.UpdateUserTier(ctx, targetUserID, tier)
}
