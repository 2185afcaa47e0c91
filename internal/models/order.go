package models

import (
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle stage of an order.
type Status string

const (
	StatusCreated      Status = "created"
	StatusProcessing   Status = "processing"
	StatusPreviewReady Status = "preview_ready"
	StatusPaid         Status = "paid"
	StatusInProduction Status = "in_production"
	StatusShipped      Status = "shipped"
	StatusFailed       Status = "failed"
)

var knownStatuses = map[Status]bool{
	StatusCreated:      true,
	StatusProcessing:   true,
	StatusPreviewReady: true,
	StatusPaid:         true,
	StatusInProduction: true,
	StatusShipped:      true,
	StatusFailed:       true,
}

// PaidLikeStatuses are the statuses in which the customer has paid for the
// bust. The 3D phase only runs in one of these.
var PaidLikeStatuses = []Status{StatusPaid, StatusInProduction, StatusShipped}

// IsPaidLike reports whether s is paid, in_production or shipped.
func (s Status) IsPaidLike() bool {
	switch s {
	case StatusPaid, StatusInProduction, StatusShipped:
		return true
	}
	return false
}

// IsOperatorSettable reports whether an operator may set s from the admin panel.
func (s Status) IsOperatorSettable() bool {
	return s.IsPaidLike()
}

// CanRetryPreview reports whether a new preview generation may be started from s.
func (s Status) CanRetryPreview() bool {
	switch s {
	case StatusPreviewReady, StatusFailed, StatusCreated:
		return true
	}
	return false
}

func (s Status) Valid() bool {
	return knownStatuses[s]
}

// ParseStatus normalises user input ("  Shipped ") into a Status.
func ParseStatus(raw string) (Status, bool) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	return s, s.Valid()
}

type BustStyle string

const (
	StyleClassical BustStyle = "classical"
	StyleModern    BustStyle = "modern"
	StyleCustom    BustStyle = "custom"
)

func (s BustStyle) Valid() bool {
	switch s {
	case StyleClassical, StyleModern, StyleCustom:
		return true
	}
	return false
}

type FilamentColor string

const (
	FilamentMarbleWhite FilamentColor = "marble_white"
	FilamentStoneGray   FilamentColor = "stone_gray"
	FilamentWoodTone    FilamentColor = "wood_tone"
)

func (f FilamentColor) Valid() bool {
	switch f {
	case FilamentMarbleWhite, FilamentStoneGray, FilamentWoodTone:
		return true
	}
	return false
}

type Order struct {
	ID                  uuid.UUID
	Status              Status
	Email               string
	Notes               sql.NullString
	StyleHint           sql.NullString
	BustStyle           BustStyle
	BustHeightMM        int
	PriceCents          int64
	FilamentColor       sql.NullString
	PhoneUploadToken    sql.NullString
	PreviewAttempts     int
	RetryCredits        int
	GenerationStartedAt sql.NullTime

	MeshyImageTaskID    sql.NullString
	MeshyModelTaskID    sql.NullString
	PreviewLastError    sql.NullString
	ClayPreviewPath     sql.NullString
	ModelGLBPath        sql.NullString
	ModelOBJPath        sql.NullString
	MeshyModelAttempts  int
	MeshyModelLastError sql.NullString

	Shipping Shipping

	CreatedAt time.Time
	UpdatedAt time.Time
}

// HasModel reports whether at least one 3D artifact has been stored.
func (o *Order) HasModel() bool {
	return o.ModelGLBPath.Valid || o.ModelOBJPath.Valid
}

// ReadyForProduction is the admin "ready" filter: paid, filament chosen and a
// model file available.
func (o *Order) ReadyForProduction() bool {
	return o.Status.IsPaidLike() && o.FilamentColor.Valid && o.FilamentColor.String != "" && o.HasModel()
}

// Shipping is the contact and address block captured from checkout.
type Shipping struct {
	Name       sql.NullString
	Email      sql.NullString
	Phone      sql.NullString
	Line1      sql.NullString
	Line2      sql.NullString
	City       sql.NullString
	Region     sql.NullString
	PostalCode sql.NullString
	Country    sql.NullString
}

type Upload struct {
	ID          uuid.UUID
	OrderID     uuid.UUID
	StoragePath string
	CreatedAt   time.Time
}

// OrderFilter narrows the admin order list.
type OrderFilter struct {
	Status Status
	Query  string
	Ready  bool
	Limit  int
}

// NullString converts s into a sql.NullString that is invalid when s is blank.
func NullString(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}
