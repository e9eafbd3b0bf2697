// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/zakat-tracker/backend/internal/domain/entity"
	"github.com/zakat-tracker/backend/internal/domain/zakat"
)

// AssetSnapshotModel represents the asset_snapshots table in the database.
type AssetSnapshotModel struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID       `gorm:"type:uuid;not null;index:idx_asset_snapshots_user_date,priority:1"`
	CashAndBank      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Gold             decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Silver           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	BusinessAssets   decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Stocks           decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	OtherInvestments decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Receivables      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`
	Liabilities      decimal.Decimal `gorm:"type:decimal(15,2);not null;default:0"`

	GoldPricePerVori   decimal.NullDecimal `gorm:"type:decimal(15,2)"`
	SilverPricePerVori decimal.NullDecimal `gorm:"type:decimal(15,2)"`
	GoldVori           decimal.NullDecimal `gorm:"type:decimal(12,4)"`
	SilverVori         decimal.NullDecimal `gorm:"type:decimal(12,4)"`

	TotalWealth    decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	NisabThreshold decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	NisabMet       bool            `gorm:"not null"`

	Currency     string    `gorm:"type:varchar(3);not null;default:'BDT'"`
	Notes        *string   `gorm:"type:text"`
	SnapshotDate time.Time `gorm:"type:date;not null;index:idx_asset_snapshots_user_date,priority:2"`
	CreatedAt    time.Time `gorm:"not null"`
}

// TableName returns the table name for the AssetSnapshotModel.
func (AssetSnapshotModel) TableName() string {
	return "asset_snapshots"
}

// ToEntity converts an AssetSnapshotModel to a domain AssetSnapshot entity.
func (m *AssetSnapshotModel) ToEntity() *entity.AssetSnapshot {
	return &entity.AssetSnapshot{
		ID:     m.ID,
		UserID: m.UserID,
		Breakdown: zakat.Breakdown{
			CashAndBank:      m.CashAndBank,
			Gold:             m.Gold,
			Silver:           m.Silver,
			BusinessAssets:   m.BusinessAssets,
			Stocks:           m.Stocks,
			OtherInvestments: m.OtherInvestments,
			Receivables:      m.Receivables,
			Liabilities:      m.Liabilities,
		},
		GoldPricePerVori:   m.GoldPricePerVori,
		SilverPricePerVori: m.SilverPricePerVori,
		GoldVori:           m.GoldVori,
		SilverVori:         m.SilverVori,
		TotalWealth:        m.TotalWealth,
		NisabThreshold:     m.NisabThreshold,
		NisabMet:           m.NisabMet,
		Currency:           m.Currency,
		Notes:              m.Notes,
		SnapshotDate:       dateOnly(m.SnapshotDate),
		CreatedAt:          m.CreatedAt,
	}
}

// AssetSnapshotFromEntity creates an AssetSnapshotModel from a domain AssetSnapshot entity.
func AssetSnapshotFromEntity(s *entity.AssetSnapshot) *AssetSnapshotModel {
	return &AssetSnapshotModel{
		ID:                 s.ID,
		UserID:             s.UserID,
		CashAndBank:        s.Breakdown.CashAndBank,
		Gold:               s.Breakdown.Gold,
		Silver:             s.Breakdown.Silver,
		BusinessAssets:     s.Breakdown.BusinessAssets,
		Stocks:             s.Breakdown.Stocks,
		OtherInvestments:   s.Breakdown.OtherInvestments,
		Receivables:        s.Breakdown.Receivables,
		Liabilities:        s.Breakdown.Liabilities,
		GoldPricePerVori:   s.GoldPricePerVori,
		SilverPricePerVori: s.SilverPricePerVori,
		GoldVori:           s.GoldVori,
		SilverVori:         s.SilverVori,
		TotalWealth:        s.TotalWealth,
		NisabThreshold:     s.NisabThreshold,
		NisabMet:           s.NisabMet,
		Currency:           s.Currency,
		Notes:              s.Notes,
		SnapshotDate:       s.SnapshotDate,
		CreatedAt:          s.CreatedAt,
	}
}

// dateOnly normalises a DATE column to midnight UTC. Drivers differ in the
// location they attach to dates.
func dateOnly(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}
