package model

import "time"

const (
	GenderMen   = "M"
	GenderWomen = "W"
	// GenderBoth only applies to coaches.
	GenderBoth = "BOTH"
)

// Competitor federation-wide athlete record, sourced from the FIS points list.
type Competitor struct {
	CompetitorID uint64     `gorm:"column:competitor_id;primaryKey;autoIncrement:false" json:"competitorId"`
	FisCode      string     `gorm:"column:fis_code;type:varchar(16);uniqueIndex;not null" json:"fisCode"`
	LastName     string     `gorm:"column:last_name;type:varchar(128);not null" json:"lastName"`
	FirstName    string     `gorm:"column:first_name;type:varchar(128);not null" json:"firstName"`
	NationCode   string     `gorm:"column:nation_code;type:varchar(3);not null;index" json:"nationCode"`
	Gender       string     `gorm:"column:gender;type:varchar(1);not null" json:"gender"`
	Birthdate    *time.Time `gorm:"column:birthdate;type:date" json:"birthdate,omitempty"`
	SkiClub      string     `gorm:"column:ski_club;type:varchar(128)" json:"skiClub,omitempty"`
	DHPoints     *float64   `gorm:"column:dh_points;type:numeric(8,2)" json:"dhPoints,omitempty"`
	SLPoints     *float64   `gorm:"column:sl_points;type:numeric(8,2)" json:"slPoints,omitempty"`
	GSPoints     *float64   `gorm:"column:gs_points;type:numeric(8,2)" json:"gsPoints,omitempty"`
	SGPoints     *float64   `gorm:"column:sg_points;type:numeric(8,2)" json:"sgPoints,omitempty"`
	ACPoints     *float64   `gorm:"column:ac_points;type:numeric(8,2)" json:"acPoints,omitempty"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;not null" json:"updatedAt"`
}

func (Competitor) TableName() string { return "competitors" }

