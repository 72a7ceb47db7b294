package sqlite

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lojf/kidstrack/internal/models"
)

func (s *Attendance) Create(ctx context.Context, r *models.ParticipationRecord) error {
	return translate(s.db.WithContext(ctx).Create(r).Error)
}

func (s *Attendance) GetByID(ctx context.Context, id uint) (*models.ParticipationRecord, error) {
	var rec models.ParticipationRecord
	if err := s.db.WithContext(ctx).First(&rec, id).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *Attendance) GetByCode(ctx context.Context, code string) (*models.ParticipationRecord, error) {
	var rec models.ParticipationRecord
	if err := s.db.WithContext(ctx).Where("code = ?", code).First(&rec).Error; err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *Attendance) GetBySessionAndChild(ctx context.Context, sessionID, childID uint) (*models.ParticipationRecord, error) {
	var rec models.ParticipationRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ? AND child_id = ?", sessionID, childID).
		First(&rec).Error
	if err != nil {
		return nil, translate(err)
	}
	return &rec, nil
}

func (s *Attendance) GetManyByIDs(ctx context.Context, ids []uint) ([]models.ParticipationRecord, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.ParticipationRecord
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, translate(err)
}

// Update is version-checked like session updates.
func (s *Attendance) Update(ctx context.Context, r *models.ParticipationRecord) error {
	fetched := r.Version
	res := s.db.WithContext(ctx).Model(&models.ParticipationRecord{}).
		Where("id = ? AND version = ?", r.ID, fetched).
		Updates(map[string]any{
			"status":          r.Status,
			"check_in_at":     r.CheckInAt,
			"check_in_by":     r.CheckInBy,
			"check_in_notes":  r.CheckInNotes,
			"check_out_at":    r.CheckOutAt,
			"check_out_by":    r.CheckOutBy,
			"check_out_notes": r.CheckOutNotes,
			"version":         fetched + 1,
			"updated_at":      time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(ctx, s.db, &models.ParticipationRecord{}, r.ID)
	}
	r.Version = fetched + 1
	return nil
}

func (s *Attendance) ListBySession(ctx context.Context, sessionID uint) ([]models.ParticipationRecord, error) {
	var out []models.ParticipationRecord
	err := s.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Attendance) ListBySessionIDs(ctx context.Context, sessionIDs []uint) ([]models.ParticipationRecord, error) {
	if len(sessionIDs) == 0 {
		return nil, nil
	}
	var out []models.ParticipationRecord
	err := s.db.WithContext(ctx).
		Where("session_id IN ?", sessionIDs).
		Order("session_id ASC, id ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Attendance) ListByChild(ctx context.Context, childID uint) ([]models.ParticipationRecord, error) {
	var out []models.ParticipationRecord
	err := s.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("id DESC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Attendance) ListByParent(ctx context.Context, parentID uint) ([]models.ParticipationRecord, error) {
	var out []models.ParticipationRecord
	err := s.db.WithContext(ctx).
		Where("parent_id = ?", parentID).
		Order("id DESC").
		Find(&out).Error
	return out, translate(err)
}

// CheckInAtomic relies on sqlite's ON CONFLICT DO UPDATE so two concurrent
// first check-ins for the same (session_id, child_id) can never produce two
// rows or a lost update. An existing row keeps its identity, code and
// registration fields; only the check-in fields are overwritten.
func (s *Attendance) CheckInAtomic(ctx context.Context, r *models.ParticipationRecord) (*models.ParticipationRecord, error) {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "session_id"}, {Name: "child_id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"status":         models.RecordCheckedIn,
			"check_in_at":    r.CheckInAt,
			"check_in_by":    r.CheckInBy,
			"check_in_notes": r.CheckInNotes,
			"updated_at":     time.Now(),
		}),
	}).Create(r).Error
	if err != nil {
		return nil, translate(err)
	}
	// Re-read so the caller sees the row as persisted (the conflict path
	// keeps the original id and version).
	return s.GetBySessionAndChild(ctx, r.SessionID, r.ChildID)
}

// SubmitBatch inserts registered records in one transaction; one bad row
// fails the whole batch, which is what bulk import wants.
func (s *Attendance) SubmitBatch(ctx context.Context, rs []models.ParticipationRecord) error {
	if len(rs) == 0 {
		return nil
	}
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range rs {
			if err := tx.Create(&rs[i]).Error; err != nil {
				return err
			}
		}
		return nil
	}))
}
