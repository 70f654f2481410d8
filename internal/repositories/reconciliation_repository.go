package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"boutique/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrClaimHeld is returned when another request is reconciling the same session.
var ErrClaimHeld = errors.New("checkout session is being reconciled")

// ReconciliationRepository is the idempotency ledger of hosted checkout.
type ReconciliationRepository interface {
	// Claim reserves sessionID. When the session was already completed the
	// existing record is returned with claimed == false.
	Claim(ctx context.Context, sessionID string) (rec *models.CheckoutReconciliation, claimed bool, err error)
	// Reserve stores the order code on a claimed session before the order is
	// written, so whoever takes the claim over can look the order up.
	Reserve(ctx context.Context, sessionID, orderCode string) error
	Complete(ctx context.Context, sessionID, orderCode, orderDocumentID string) error
	Release(ctx context.Context, sessionID string) error
}

// GORMReconciliationRepository keeps the ledger in the local database.
type GORMReconciliationRepository struct {
	db *gorm.DB
	// staleAfter lets a crashed claim be taken over.
	staleAfter time.Duration
	now        func() time.Time
}

// NewGORMReconciliationRepository creates a new instance of GORMReconciliationRepository.
func NewGORMReconciliationRepository(db *gorm.DB, staleAfter time.Duration) *GORMReconciliationRepository {
	return &GORMReconciliationRepository{db: db, staleAfter: staleAfter, now: time.Now}
}

// Claim inserts a claimed row for sessionID, relying on the unique index to
// arbitrate between concurrent callers.
func (r *GORMReconciliationRepository) Claim(ctx context.Context, sessionID string) (*models.CheckoutReconciliation, bool, error) {
	db := r.db.WithContext(ctx)
	now := r.now()
	rec := &models.CheckoutReconciliation{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		State:     models.ReconciliationClaimed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	res := db.Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "session_id"}}, DoNothing: true}).Create(rec)
	if res.Error != nil {
		return nil, false, fmt.Errorf("failed to claim session %s: %w", sessionID, res.Error)
	}
	if res.RowsAffected == 1 {
		return rec, true, nil
	}

	var existing models.CheckoutReconciliation
	if err := db.First(&existing, "session_id = ?", sessionID).Error; err != nil {
		return nil, false, fmt.Errorf("failed to read claim for session %s: %w", sessionID, err)
	}
	if existing.State == models.ReconciliationCompleted {
		return &existing, false, nil
	}

	// Take over a claim left behind by a request that never finished.
	if r.staleAfter > 0 && now.Sub(existing.UpdatedAt) > r.staleAfter {
		res := db.Model(&models.CheckoutReconciliation{}).
			Where("session_id = ? AND state = ? AND updated_at < ?", sessionID, models.ReconciliationClaimed, now.Add(-r.staleAfter)).
			Update("updated_at", now)
		if res.Error != nil {
			return nil, false, fmt.Errorf("failed to take over session %s: %w", sessionID, res.Error)
		}
		if res.RowsAffected == 1 {
			existing.UpdatedAt = now
			return &existing, true, nil
		}
	}
	return nil, false, fmt.Errorf("session %s: %w", sessionID, ErrClaimHeld)
}

// Reserve records the order code chosen for a claimed session.
func (r *GORMReconciliationRepository) Reserve(ctx context.Context, sessionID, orderCode string) error {
	res := r.db.WithContext(ctx).Model(&models.CheckoutReconciliation{}).
		Where("session_id = ? AND state = ?", sessionID, models.ReconciliationClaimed).
		Updates(map[string]any{
			"order_code": orderCode,
			"updated_at": r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to reserve order code for session %s: %w", sessionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

// Complete records the order created for sessionID.
func (r *GORMReconciliationRepository) Complete(ctx context.Context, sessionID, orderCode, orderDocumentID string) error {
	res := r.db.WithContext(ctx).Model(&models.CheckoutReconciliation{}).
		Where("session_id = ?", sessionID).
		Updates(map[string]any{
			"state":             models.ReconciliationCompleted,
			"order_code":        orderCode,
			"order_document_id": orderDocumentID,
			"updated_at":        r.now(),
		})
	if res.Error != nil {
		return fmt.Errorf("failed to complete session %s: %w", sessionID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("session %s: %w", sessionID, ErrNotFound)
	}
	return nil
}

// Release drops an unfinished claim so the session can be retried.
func (r *GORMReconciliationRepository) Release(ctx context.Context, sessionID string) error {
	err := r.db.WithContext(ctx).
		Where("session_id = ? AND state = ?", sessionID, models.ReconciliationClaimed).
		Delete(&models.CheckoutReconciliation{}).Error
	if err != nil {
		return fmt.Errorf("failed to release session %s: %w", sessionID, err)
	}
	return nil
}
