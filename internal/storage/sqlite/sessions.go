package sqlite

import (
	"context"
	"time"

	"github.com/lojf/kidstrack/internal/models"
)

func (s *Sessions) Create(ctx context.Context, sess *models.ProgramSession) error {
	return translate(s.db.WithContext(ctx).Create(sess).Error)
}

func (s *Sessions) GetByID(ctx context.Context, id uint) (*models.ProgramSession, error) {
	var sess models.ProgramSession
	if err := s.db.WithContext(ctx).First(&sess, id).Error; err != nil {
		return nil, translate(err)
	}
	return &sess, nil
}

// Update writes the session conditioned on the version it was fetched at.
// On success the passed struct carries the incremented version.
func (s *Sessions) Update(ctx context.Context, sess *models.ProgramSession) error {
	fetched := sess.Version
	res := s.db.WithContext(ctx).Model(&models.ProgramSession{}).
		Where("id = ? AND version = ?", sess.ID, fetched).
		Updates(map[string]any{
			"program_id":   sess.ProgramID,
			"session_date": sess.SessionDate,
			"start_time":   sess.StartTime,
			"end_time":     sess.EndTime,
			"location":     sess.Location,
			"max_capacity": sess.MaxCapacity,
			"notes":        sess.Notes,
			"provider_id":  sess.ProviderID,
			"status":       sess.Status,
			"version":      fetched + 1,
			"updated_at":   time.Now(),
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return staleOrMissing(ctx, s.db, &models.ProgramSession{}, sess.ID)
	}
	sess.Version = fetched + 1
	return nil
}

func (s *Sessions) ListByProgram(ctx context.Context, programID uint) ([]models.ProgramSession, error) {
	var out []models.ProgramSession
	err := s.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("session_date ASC, start_time ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Sessions) ListTodaySessions(ctx context.Context) ([]models.ProgramSession, error) {
	from, to := dayBounds(time.Now())
	var out []models.ProgramSession
	err := s.db.WithContext(ctx).
		Where("session_date >= ? AND session_date < ?", from, to).
		Order("start_time ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Sessions) ListByProviderAndDate(ctx context.Context, providerID uint, date time.Time) ([]models.ProgramSession, error) {
	from, to := dayBounds(date)
	var out []models.ProgramSession
	err := s.db.WithContext(ctx).
		Where("provider_id = ? AND session_date >= ? AND session_date < ?", providerID, from, to).
		Order("start_time ASC").
		Find(&out).Error
	return out, translate(err)
}

func (s *Sessions) GetManyByIDs(ctx context.Context, ids []uint) ([]models.ProgramSession, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var out []models.ProgramSession
	err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, translate(err)
}
