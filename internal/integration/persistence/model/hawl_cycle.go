package model

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/entity"
	"github.com/zakat-tracker/backend/internal/domain/hijri"
)

// HawlCycleModel represents the hawl_cycles table in the database.
// A user has at most one tracking cycle, enforced by a partial unique index.
type HawlCycleModel struct {
	ID              uuid.UUID           `gorm:"type:uuid;primaryKey"`
	UserID          uuid.UUID           `gorm:"type:uuid;not null;index;uniqueIndex:idx_hawl_cycles_one_tracking,where:status = 'tracking'"`
	Status          string              `gorm:"type:varchar(20);not null;index"`
	StartSnapshotID uuid.UUID           `gorm:"type:uuid;not null"`
	HawlStartDate   time.Time           `gorm:"type:date;not null"`
	HawlStartHijri  string              `gorm:"type:varchar(10);not null"`
	HawlDueDate     time.Time           `gorm:"type:date;not null"`
	HawlDueHijri    string              `gorm:"type:varchar(10);not null"`
	EndDate         *time.Time          `gorm:"type:timestamptz"`
	ResetSnapshotID *uuid.UUID          `gorm:"type:uuid"`
	ZakatAmount     decimal.NullDecimal `gorm:"type:decimal(15,2)"`
	WealthAtDue     decimal.NullDecimal `gorm:"type:decimal(15,2)"`
	Currency        string              `gorm:"type:varchar(3);not null;default:'BDT'"`
	Notes           *string             `gorm:"type:text"`
	CreatedAt       time.Time           `gorm:"not null"`
	UpdatedAt       time.Time           `gorm:"not null"`
}

// TableName returns the table name for the HawlCycleModel.
func (HawlCycleModel) TableName() string {
	return "hawl_cycles"
}

// ToEntity converts a HawlCycleModel to a domain HawlCycle entity.
func (m *HawlCycleModel) ToEntity() *entity.HawlCycle {
	return &entity.HawlCycle{
		ID:              m.ID,
		UserID:          m.UserID,
		Status:          entity.HawlStatus(m.Status),
		StartSnapshotID: m.StartSnapshotID,
		HawlStartDate:   dateOnly(m.HawlStartDate),
		HawlStartHijri:  parseHijri(m.HawlStartHijri, m.HawlStartDate, m.ID),
		HawlDueDate:     dateOnly(m.HawlDueDate),
		HawlDueHijri:    parseHijri(m.HawlDueHijri, m.HawlDueDate, m.ID),
		EndDate:         m.EndDate,
		ResetSnapshotID: m.ResetSnapshotID,
		ZakatAmount:     m.ZakatAmount,
		WealthAtDue:     m.WealthAtDue,
		Currency:        m.Currency,
		Notes:           m.Notes,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// HawlCycleFromEntity creates a HawlCycleModel from a domain HawlCycle entity.
func HawlCycleFromEntity(c *entity.HawlCycle) *HawlCycleModel {
	return &HawlCycleModel{
		ID:              c.ID,
		UserID:          c.UserID,
		Status:          string(c.Status),
		StartSnapshotID: c.StartSnapshotID,
		HawlStartDate:   c.HawlStartDate,
		HawlStartHijri:  c.HawlStartHijri.String(),
		HawlDueDate:     c.HawlDueDate,
		HawlDueHijri:    c.HawlDueHijri.String(),
		EndDate:         c.EndDate,
		ResetSnapshotID: c.ResetSnapshotID,
		ZakatAmount:     c.ZakatAmount,
		WealthAtDue:     c.WealthAtDue,
		Currency:        c.Currency,
		Notes:           c.Notes,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// parseHijri reads a stored Hijri date, recomputing it from the Gregorian
// column if the stored text is unreadable.
func parseHijri(s string, gregorian time.Time, cycleID uuid.UUID) hijri.Date {
	d, err := hijri.Parse(s)
	if err != nil {
		slog.Warn("Failed to parse stored hijri date", "error", err, "cycleID", cycleID, "value", s)
		return hijri.FromGregorian(gregorian)
	}
	return d
}
