package model

import "time"

// InscriptionCompetitor registers one competitor on one codex of an inscription.
// A competitor entered in three races has three rows.
type InscriptionCompetitor struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InscriptionID uint64     `gorm:"column:inscription_id;type:bigint;not null;index" json:"inscriptionId"`
	CompetitorID  uint64     `gorm:"column:competitor_id;type:bigint;not null;index" json:"competitorId"`
	CodexNumber   string     `gorm:"column:codex_number;type:varchar(16);not null" json:"codexNumber"`
	AddedBy       string     `gorm:"column:added_by;type:varchar(64);not null" json:"addedBy"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	DeletedAt     *time.Time `gorm:"column:deleted_at;index" json:"deletedAt,omitempty"`
	DeletedBy     *string    `gorm:"column:deleted_by;type:varchar(64)" json:"deletedBy,omitempty"`
}

func (InscriptionCompetitor) TableName() string { return "inscription_competitors" }

// InscriptionCoach team staff attached to an inscription for a date range.
type InscriptionCoach struct {
	ID            uint64     `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	InscriptionID uint64     `gorm:"column:inscription_id;type:bigint;not null;index" json:"inscriptionId"`
	FirstName     string     `gorm:"column:first_name;type:varchar(128);not null" json:"firstName"`
	LastName      string     `gorm:"column:last_name;type:varchar(128);not null" json:"lastName"`
	Team          string     `gorm:"column:team;type:varchar(128)" json:"team,omitempty"`
	Gender        string     `gorm:"column:gender;type:varchar(4);not null" json:"gender"` // M, W or BOTH
	StartDate     time.Time  `gorm:"column:start_date;type:date;not null" json:"startDate"`
	EndDate       time.Time  `gorm:"column:end_date;type:date;not null" json:"endDate"`
	AddedBy       string     `gorm:"column:added_by;type:varchar(64);not null" json:"addedBy"`
	CreatedAt     time.Time  `gorm:"column:created_at;not null" json:"createdAt"`
	DeletedAt     *time.Time `gorm:"column:deleted_at;index" json:"deletedAt,omitempty"`
	DeletedBy     *string    `gorm:"column:deleted_by;type:varchar(64)" json:"deletedBy,omitempty"`
}

func (InscriptionCoach) TableName() string { return "inscription_coaches" }

// Covers reports whether the coach accompanies athletes of the given gender.
func (c *InscriptionCoach) Covers(gender string) bool {
	return c.Gender == GenderBoth || gender == "" || c.Gender == gender
}
