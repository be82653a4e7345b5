package payments

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/ManuelReschke/SaturnGames/app/models"
	"github.com/ManuelReschke/SaturnGames/internal/pkg/supabase"
)

// Store is the subset of the data-store client the payment pipeline needs.
// *supabase.Client satisfies it; tests inject fakes.
type Store interface {
	GetUser(ctx context.Context, accessToken string) (*supabase.AuthUser, error)
	GetGame(ctx context.Context, gameID string) (*models.Game, error)
	FindAccessGrant(ctx context.Context, userID, gameID string) (*models.AccessGrant, error)
	InsertAccessGrant(ctx context.Context, grant *models.AccessGrant) error
	ExtendAccessGrant(ctx context.Context, grantID string, expiration time.Time, paymentID string) error
	InsertPaymentRecord(ctx context.Context, record *models.PaymentRecord) error
	HasPaymentRecord(ctx context.Context, paymentSessionID string) (bool, error)
}

// SessionCreator opens hosted checkout sessions with the payment processor.
type SessionCreator interface {
	CreateCheckoutSession(ctx context.Context, user *supabase.AuthUser, game *models.Game) (string, error)
}

// Locker serializes reconciliation for one (user, game) pair. Release must be
// called when done. Locking hardens against concurrent redeliveries; the
// service degrades to unlocked operation when the locker is unavailable.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

const reconcileLockTTL = 30 * time.Second

// Service ties checkout initiation and webhook reconciliation together.
type Service struct {
	store  Store
	stripe SessionCreator
	locks  Locker

	// Now is injectable for deterministic expiration tests.
	Now func() time.Time
}

// NewService creates the payment service from its collaborators. locks may be
// nil when no lock backend is configured.
func NewService(store Store, stripe SessionCreator, locks Locker) *Service {
	return &Service{
		store:  store,
		stripe: stripe,
		locks:  locks,
		Now:    time.Now,
	}
}

// InitiateCheckout resolves the caller and the game, then opens a checkout
// session. Nothing is persisted; the license is granted only when the
// processor confirms payment via webhook.
func (s *Service) InitiateCheckout(ctx context.Context, gameID, accessToken string) (string, error) {
	user, err := s.store.GetUser(ctx, accessToken)
	if err != nil {
		if errors.Is(err, supabase.ErrInvalidToken) {
			return "", ErrUnauthenticated
		}
		return "", fmt.Errorf("resolve user: %w", err)
	}

	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, supabase.ErrNoRows) {
			return "", ErrGameNotFound
		}
		return "", fmt.Errorf("resolve game: %w", err)
	}

	sessionID, err := s.stripe.CreateCheckoutSession(ctx, user, game)
	if err != nil {
		return "", err
	}
	return sessionID, nil
}

// ReconcileResult reports what a completed-checkout event changed.
type ReconcileResult struct {
	// Duplicate is true when the session was already credited and the event
	// was acknowledged without writes.
	Duplicate bool
	// Created is true when a new grant row was inserted, false when an
	// existing one was extended.
	Created bool
	// Expiration is the license expiration after crediting.
	Expiration time.Time
}

// ReconcileCompletedCheckout credits one month of access for a completed
// checkout session and appends the audit row. Safe under at-least-once
// delivery: a session id that already has a payment_history row is never
// credited twice. Any store failure is returned so the caller responds 5xx
// and the processor redelivers.
func (s *Service) ReconcileCompletedCheckout(ctx context.Context, session *CheckoutSession, rawSession json.RawMessage) (*ReconcileResult, error) {
	userID := session.UserID()
	gameID := session.GameID()
	if userID == "" || gameID == "" {
		return nil, ErrMissingMetadata
	}

	seen, err := s.store.HasPaymentRecord(ctx, session.ID)
	if err != nil {
		return nil, fmt.Errorf("dedup lookup for session %s: %w", session.ID, err)
	}
	if seen {
		return &ReconcileResult{Duplicate: true}, nil
	}

	if s.locks != nil {
		release, err := s.locks.Acquire(ctx, "reconcile:"+userID+":"+gameID, reconcileLockTTL)
		if err != nil {
			log.Printf("payments: reconcile lock unavailable for user=%s game=%s: %v", userID, gameID, err)
		} else {
			defer release()
		}
	}

	now := s.Now()
	result := &ReconcileResult{}

	grant, err := s.store.FindAccessGrant(ctx, userID, gameID)
	switch {
	case err == nil:
		result.Expiration = grant.ExtendedExpiration(now)
		if err := s.store.ExtendAccessGrant(ctx, grant.ID, result.Expiration, session.ID); err != nil {
			return nil, fmt.Errorf("extend grant %s: %w", grant.ID, err)
		}
	case errors.Is(err, supabase.ErrNoRows):
		fresh := models.NewAccessGrant(userID, gameID, session.ID, now)
		if err := s.store.InsertAccessGrant(ctx, fresh); err != nil {
			return nil, fmt.Errorf("insert grant for user=%s game=%s: %w", userID, gameID, err)
		}
		result.Created = true
		result.Expiration = fresh.ExpirationDate
	default:
		return nil, fmt.Errorf("grant lookup for user=%s game=%s: %w", userID, gameID, err)
	}

	record := &models.PaymentRecord{
		UserID:           userID,
		GameID:           gameID,
		PaymentSessionID: session.ID,
		PaymentIntentID:  session.PaymentIntent,
		AmountCents:      session.AmountTotal,
		Currency:         session.Currency,
		PaymentMethod:    session.PaymentMethods(),
		PaymentStatus:    session.PaymentStatus,
		RawPayload:       rawSession,
	}
	if err := s.store.InsertPaymentRecord(ctx, record); err != nil {
		return nil, fmt.Errorf("insert payment history for session %s: %w", session.ID, err)
	}

	return result, nil
}
