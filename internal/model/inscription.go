package model

import (
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/datatypes"
)

// InscriptionStatus 报名单状态
type InscriptionStatus string

const (
	StatusOpen      InscriptionStatus = "open"
	StatusValidated InscriptionStatus = "validated"
	StatusFrozen    InscriptionStatus = "frozen"
)

// Valid reports whether s is one of the known statuses.
func (s InscriptionStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusValidated, StatusFrozen:
		return true
	}
	return false
}

// Inscription one organizer's entry request for a FIS event.
type Inscription struct {
	ID        uint64            `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EventID   uint64            `gorm:"column:event_id;type:bigint;not null;index" json:"eventId"`
	EventData datatypes.JSON    `gorm:"column:event_data;type:jsonb;not null" json:"eventData"` // place, dates, competitions per codex
	Status    InscriptionStatus `gorm:"column:status;type:varchar(16);not null;default:open" json:"status"`
	CreatedBy string            `gorm:"column:created_by;type:varchar(64);not null" json:"createdBy"` // identity provider user id
	CreatedAt time.Time         `gorm:"column:created_at;not null" json:"createdAt"`
	UpdatedAt time.Time         `gorm:"column:updated_at;not null" json:"updatedAt"`
	DeletedAt *time.Time        `gorm:"column:deleted_at;index" json:"deletedAt,omitempty"`
	DeletedBy *string           `gorm:"column:deleted_by;type:varchar(64)" json:"deletedBy,omitempty"`
}

func (Inscription) TableName() string { return "inscriptions" }

// Event decodes EventData.
func (i *Inscription) Event() (*EventData, error) {
	var data EventData
	if len(i.EventData) == 0 {
		return &data, nil
	}
	if err := json.Unmarshal(i.EventData, &data); err != nil {
		return nil, fmt.Errorf("decode event_data of inscription %d: %w", i.ID, err)
	}
	return &data, nil
}

// SetEvent encodes data into EventData.
func (i *Inscription) SetEvent(data *EventData) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	i.EventData = datatypes.JSON(raw)
	return nil
}
