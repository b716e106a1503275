package editor

import (
	"context"
	"time"

	"redline/api/internal/util"
)

// SubmitForCorrection runs the submission state machine for one round.
// Preconditions fail fast without touching state, with one deliberate
// exception: a paid user short on tokens is still debited half their balance
// as a penalty before the call aborts.
//
// The transition to submitted happens before any collaborator call so the UI
// sees read-only mode immediately, and the LLM debit lands before the engine
// call so the round is charged regardless of its outcome. An engine failure
// reverts to idle and surfaces a retryable error; the debit stays.
//
// Guarding against a second submit while already submitted is the caller's
// job (the submit action is disabled in that state).
func (s *Session) SubmitForCorrection(ctx context.Context, kind CheckType) error {
	acct, err := s.accounts.Account(ctx)
	if err != nil {
		return err
	}

	wordCount := s.WordCount()
	if wordCount == 0 {
		return ErrEmptyText
	}
	if acct.Tier == TierFree && wordCount > FreeWordLimit {
		return ErrWordLimitExceeded
	}

	cost := s.TokensForLLM()
	if kind == CheckSelf {
		cost = s.TokensForSelf()
	}
	if acct.Tier == TierPaid && acct.Tokens < cost {
		if err := s.billing.Debit(ctx, acct.Tokens/2); err != nil {
			return err
		}
		return ErrInsufficientTokens
	}

	s.state = StateSubmitted
	s.checkType = kind

	if kind == CheckSelf {
		// No engine round: the user reviews their own text. Charged at the
		// half rate; intentionally leaves the ledger untouched.
		if err := s.charge(ctx, acct, cost); err != nil {
			s.state = StateIdle
			return err
		}
		return nil
	}

	if err := s.charge(ctx, acct, cost); err != nil {
		s.state = StateIdle
		return err
	}

	generation := s.generation
	results, err := s.engine.Correct(ctx, s.text)
	if generation != s.generation {
		// The session was cleared or rehydrated while the call was in
		// flight; the response belongs to a buffer that no longer exists.
		return nil
	}
	if err != nil {
		s.state = StateIdle
		return ErrCorrectionFailed
	}

	s.SetCorrections(results)
	if acct.Tier == TierPaid && wordCount > rewardMinWords && len(results) == 0 {
		if err := s.billing.Credit(ctx, RewardBonus); err != nil {
			return err
		}
	}
	return nil
}

func (s *Session) charge(ctx context.Context, acct Account, cost int) error {
	switch acct.Tier {
	case TierPaid:
		return s.billing.Debit(ctx, cost)
	case TierFree:
		return s.accounts.RecordFreeUse(ctx)
	default:
		return nil
	}
}

// SaveDocument persists the buffer through the document collaborator,
// creating or updating depending on whether the session re-edits an existing
// document, then debits the flat save fee. Paid tier only.
func (s *Session) SaveDocument(ctx context.Context, now time.Time) (Document, error) {
	acct, err := s.accounts.Account(ctx)
	if err != nil {
		return Document{}, err
	}
	if acct.Tier != TierPaid {
		return Document{}, ErrPaidTierRequired
	}
	if acct.Tokens < SaveFee {
		return Document{}, ErrSaveTokensRequired
	}

	doc := Document{
		ID:        s.documentID,
		Title:     s.title,
		Date:      now.Format("2006-01-02"),
		Content:   s.text,
		WordCount: s.WordCount(),
	}

	if s.reEdit && s.documentID != "" {
		err = s.documents.Update(ctx, doc)
	} else {
		doc.ID = util.NewID("doc")
		err = s.documents.Create(ctx, doc)
	}
	if err != nil {
		return Document{}, err
	}

	if err := s.billing.Debit(ctx, SaveFee); err != nil {
		return Document{}, err
	}
	return doc, nil
}
