package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// worth_on_creation travels as a JSON number, as existing clients expect.
	decimal.MarshalJSONWithoutQuotes = true
}

// Asset types.
const (
	AssetTypeJewellery = "JEWELLERY"
	AssetTypeDocument  = "DOCUMENT"
	AssetTypeMisc      = "MISC"
)

// ValidAssetType reports whether t is one of the known asset types.
func ValidAssetType(t string) bool {
	switch t {
	case AssetTypeJewellery, AssetTypeDocument, AssetTypeMisc:
		return true
	}
	return false
}

// Asset is a tracked physical item kept in a locker.
type Asset struct {
	ID           int64               `json:"id"`
	LockerID     int64               `json:"locker_id"`
	Type         string              `json:"asset_type"`
	Name         string              `json:"name"`
	Worth        decimal.NullDecimal `json:"worth_on_creation"`
	Details      string              `json:"details,omitempty"`
	CreationDate string              `json:"creation_date,omitempty"`
	Jewellery    *JewelleryDetails   `json:"jewellery_details,omitempty"`
	Document     *DocumentDetails    `json:"document_details,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at"`

	// Derived on read, never stored.
	Status AssetStatus `json:"status,omitempty"`
}

// JewelleryDetails is the type-specific block of a JEWELLERY asset.
type JewelleryDetails struct {
	MaterialType   string `json:"material_type,omitempty"`
	MaterialGrade  string `json:"material_grade,omitempty"`
	GiftingDetails string `json:"gifting_details,omitempty"`
}

// DocumentDetails is the type-specific block of a DOCUMENT asset.
type DocumentDetails struct {
	DocumentType string `json:"document_type,omitempty"`
}

// NormalizeDetails drops the detail block that does not belong to the asset's
// type and fills in an empty one for the type that needs it.
func (a *Asset) NormalizeDetails() {
	switch a.Type {
	case AssetTypeJewellery:
		a.Document = nil
		if a.Jewellery == nil {
			a.Jewellery = &JewelleryDetails{}
		}
	case AssetTypeDocument:
		a.Jewellery = nil
		if a.Document == nil {
			a.Document = &DocumentDetails{}
		}
	default:
		a.Jewellery = nil
		a.Document = nil
	}
}

// AssetPatch holds a partial asset update. Nil fields are left unchanged.
type AssetPatch struct {
	Name           *string    `json:"name"`
	Type           *string    `json:"asset_type"`
	Worth          WorthPatch `json:"worth_on_creation"`
	Details        *string    `json:"details"`
	CreationDate   *string    `json:"creation_date"`
	MaterialType   *string    `json:"material_type"`
	MaterialGrade  *string    `json:"material_grade"`
	GiftingDetails *string    `json:"gifting_details"`
	DocumentType   *string    `json:"document_type"`
}

// WorthPatch is the worth_on_creation field of an AssetPatch. An explicit
// JSON null clears the worth; leaving the field out keeps it.
type WorthPatch struct {
	Set   bool
	Value decimal.NullDecimal
}

// SetWorth returns a patch that sets the worth to d.
func SetWorth(d decimal.Decimal) WorthPatch {
	return WorthPatch{Set: true, Value: decimal.NewNullDecimal(d)}
}

// ClearWorth returns a patch that removes the worth.
func ClearWorth() WorthPatch {
	return WorthPatch{Set: true}
}

func (w *WorthPatch) UnmarshalJSON(b []byte) error {
	w.Set = true
	return w.Value.UnmarshalJSON(b)
}

// Apply overlays the patch onto a copy of a and returns it.
func (p AssetPatch) Apply(a Asset) Asset {
	if p.Name != nil {
		a.Name = *p.Name
	}
	if p.Type != nil {
		a.Type = *p.Type
	}
	if p.Worth.Set {
		a.Worth = p.Worth.Value
	}
	if p.Details != nil {
		a.Details = *p.Details
	}
	if p.CreationDate != nil {
		a.CreationDate = *p.CreationDate
	}

	// Copy detail blocks so the caller's snapshot is not mutated.
	if a.Jewellery != nil {
		j := *a.Jewellery
		a.Jewellery = &j
	}
	if a.Document != nil {
		d := *a.Document
		a.Document = &d
	}
	a.NormalizeDetails()

	if a.Jewellery != nil {
		if p.MaterialType != nil {
			a.Jewellery.MaterialType = *p.MaterialType
		}
		if p.MaterialGrade != nil {
			a.Jewellery.MaterialGrade = *p.MaterialGrade
		}
		if p.GiftingDetails != nil {
			a.Jewellery.GiftingDetails = *p.GiftingDetails
		}
	}
	if a.Document != nil && p.DocumentType != nil {
		a.Document.DocumentType = *p.DocumentType
	}
	return a
}
