package sqlite

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/lojf/kidstrack/internal/models"
)

func (s *Notes) Create(ctx context.Context, n *models.BehavioralNote) error {
	return translate(s.db.WithContext(ctx).Create(n).Error)
}

// Update is version-checked; moderation decisions must not clobber each
// other or a concurrent erasure.
func (s *Notes) Update(ctx context.Context, n *models.BehavioralNote) error {
	fetched := n.Version
	res := s.db.WithContext(ctx).Model(&models.BehavioralNote{}).
		Where("id = ? AND version = ?", n.ID, fetched).
		Updates(map[string]any{
			"content":          n.Content,
			"status":           n.Status,
			"rejection_reason": n.RejectionReason,
			"submitted_at":     n.SubmittedAt,
			"reviewed_at":      n.ReviewedAt,
			"version":          fetched + 1,
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(ctx, s.db, &models.BehavioralNote{}, n.ID)
	}
	n.Version = fetched + 1
	return nil
}

func (s *Notes) GetByID(ctx context.Context, id uint) (*models.BehavioralNote, error) {
	var n models.BehavioralNote
	if err := s.db.WithContext(ctx).First(&n, id).Error; err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *Notes) GetByIDAndProvider(ctx context.Context, id, providerID uint) (*models.BehavioralNote, error) {
	var n models.BehavioralNote
	err := s.db.WithContext(ctx).
		Where("id = ? AND provider_id = ?", id, providerID).
		First(&n).Error
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *Notes) GetByIDAndParent(ctx context.Context, id, parentID uint) (*models.BehavioralNote, error) {
	var n models.BehavioralNote
	err := s.db.WithContext(ctx).
		Where("id = ? AND parent_id = ?", id, parentID).
		First(&n).Error
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *Notes) GetByRecordAndProvider(ctx context.Context, recordID, providerID uint) (*models.BehavioralNote, error) {
	var n models.BehavioralNote
	err := s.db.WithContext(ctx).
		Where("participation_record_id = ? AND provider_id = ?", recordID, providerID).
		First(&n).Error
	if err != nil {
		return nil, translate(err)
	}
	return &n, nil
}

func (s *Notes) ListByRecordsAndProvider(ctx context.Context, recordIDs []uint, providerID uint) ([]models.BehavioralNote, error) {
	if len(recordIDs) == 0 {
		return nil, nil
	}
	var out []models.BehavioralNote
	err := s.db.WithContext(ctx).
		Where("participation_record_id IN ? AND provider_id = ?", recordIDs, providerID).
		Order("id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Notes) ListPendingByParent(ctx context.Context, parentID uint) ([]models.BehavioralNote, error) {
	var out []models.BehavioralNote
	err := s.db.WithContext(ctx).
		Where("parent_id = ? AND status = ?", parentID, models.NotePendingApproval).
		Order("submitted_at ASC, id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Notes) ListApprovedByChild(ctx context.Context, childID uint) ([]models.BehavioralNote, error) {
	var out []models.BehavioralNote
	err := s.db.WithContext(ctx).
		Where("child_id = ? AND status = ?", childID, models.NoteApproved).
		Order("submitted_at ASC, id ASC").
		Find(&out).Error
	return out, translate(err)
}

// ListApprovedByChildren fetches all approved notes for the given children
// in a single query and groups them by child id.
func (s *Notes) ListApprovedByChildren(ctx context.Context, childIDs []uint) (map[uint][]models.BehavioralNote, error) {
	out := make(map[uint][]models.BehavioralNote)
	if len(childIDs) == 0 {
		return out, nil
	}
	var notes []models.BehavioralNote
	err := s.db.WithContext(ctx).
		Where("child_id IN ? AND status = ?", childIDs, models.NoteApproved).
		Order("child_id ASC, submitted_at ASC, id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, n := range notes {
		out[n.ChildID] = append(out[n.ChildID], n)
	}
	return out, nil
}

// AnonymizeAllForChild redacts every note for the child in one UPDATE:
// content replaced, status forced to rejected, reason cleared. Counting by
// child id (not by changed rows) keeps the reported count stable on re-runs.
func (s *Notes) AnonymizeAllForChild(ctx context.Context, childID uint) (int64, error) {
	var total int64
	err := s.db.WithContext(ctx).Model(&models.BehavioralNote{}).
		Where("child_id = ?", childID).
		Count(&total).Error
	if err != nil {
		return 0, translate(err)
	}
	if total == 0 {
		return 0, nil
	}
	res := s.db.WithContext(ctx).Model(&models.BehavioralNote{}).
		Where("child_id = ?", childID).
		Updates(map[string]any{
			"content":          models.AnonymizedNoteContent,
			"status":           models.NoteRejected,
			"rejection_reason": nil,
			"reviewed_at":      time.Now(),
			"version":          gorm.Expr("version + 1"),
			"updated_at":       time.Now(),
		})
	if res.Error != nil {
		return 0, translate(res.Error)
	}
	return total, nil
}
