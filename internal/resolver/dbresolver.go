package resolver

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/lojf/kidstrack/internal/models"
)

// DB implements ChildInfoResolver and ConsentResolver against the family
// tables. Soft-deleted children are invisible here, which is what makes
// roster rows degrade to a placeholder after an account deletion.
type DB struct {
	db *gorm.DB
}

func NewDB(db *gorm.DB) *DB {
	return &DB{db: db}
}

func (r *DB) ResolveChildName(ctx context.Context, id uint) (string, bool, error) {
	var child models.Child
	err := r.db.WithContext(ctx).Select("id", "name").First(&child, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return child.Name, true, nil
}

func (r *DB) ResolveChildSafetyInfo(ctx context.Context, id uint) (*SafetyInfo, error) {
	var child models.Child
	if err := r.db.WithContext(ctx).First(&child, id).Error; err != nil {
		return nil, err
	}
	return &SafetyInfo{
		Allergies:    child.Allergies,
		MedicalNotes: child.MedicalNotes,
	}, nil
}

// ResolveChildrenInfo joins children to parents once for the whole id set.
func (r *DB) ResolveChildrenInfo(ctx context.Context, ids []uint) (map[uint]ChildInfo, error) {
	out := make(map[uint]ChildInfo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	type row struct {
		ID           uint
		ParentID     uint
		Name         string
		BirthDate    time.Time
		Allergies    string
		MedicalNotes string
		Consent      bool
	}
	var rows []row
	err := r.db.WithContext(ctx).Table("children").
		Select(`children.id, children.parent_id, children.name, children.birth_date,
		        children.allergies, children.medical_notes,
		        parents.data_sharing_consent AS consent`).
		Joins("JOIN parents ON parents.id = children.parent_id").
		Where("children.id IN ? AND children.deleted_at IS NULL", ids).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	for _, c := range rows {
		info := ChildInfo{
			ID:         c.ID,
			ParentID:   c.ParentID,
			Name:       c.Name,
			BirthDate:  c.BirthDate,
			HasConsent: c.Consent,
		}
		if c.Consent {
			allergies, medical := c.Allergies, c.MedicalNotes
			info.Allergies = &allergies
			info.MedicalNotes = &medical
		}
		out[c.ID] = info
	}
	return out, nil
}

func (r *DB) HasDataSharingConsent(ctx context.Context, childID uint) (bool, error) {
	var consent bool
	err := r.db.WithContext(ctx).Table("children").
		Select("parents.data_sharing_consent").
		Joins("JOIN parents ON parents.id = children.parent_id").
		Where("children.id = ? AND children.deleted_at IS NULL", childID).
		Scan(&consent).Error
	if err != nil {
		return false, err
	}
	return consent, nil
}
