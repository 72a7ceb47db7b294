// Package resolver exposes read-only lookups into the family/identity
// subsystem. The attendance core depends on these ports only; caching, if
// ever wanted, belongs in an adapter, not here.
package resolver

import (
	"context"
	"time"
)

// ChildInfo is the display projection of a child for roster composition.
// Safety fields are only populated when the guardian has data-sharing
// consent.
type ChildInfo struct {
	ID        uint
	ParentID  uint
	Name      string
	BirthDate time.Time

	HasConsent bool

	// nil unless HasConsent.
	Allergies    *string
	MedicalNotes *string
}

// SafetyInfo is the subset a provider may need during a session.
type SafetyInfo struct {
	Allergies    string
	MedicalNotes string
}

// ChildInfoResolver resolves children by id. A missing or deleted child is
// reported via the found flag, not an error.
type ChildInfoResolver interface {
	ResolveChildName(ctx context.Context, id uint) (name string, found bool, err error)
	ResolveChildSafetyInfo(ctx context.Context, id uint) (*SafetyInfo, error)
	// ResolveChildrenInfo resolves many children in one round trip; absent
	// ids are simply missing from the map.
	ResolveChildrenInfo(ctx context.Context, ids []uint) (map[uint]ChildInfo, error)
}

// ConsentResolver answers the read-time consent gate.
type ConsentResolver interface {
	HasDataSharingConsent(ctx context.Context, childID uint) (bool, error)
}
