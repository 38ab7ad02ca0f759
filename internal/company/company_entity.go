package company

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Company struct {
	ID       uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	Name     string    `gorm:"column:name;type:varchar(150);not null"`
	Timezone string    `gorm:"column:timezone;type:varchar(64);not null;default:'UTC'"`
	Active   bool      `gorm:"column:active;not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Company) TableName() string {
	return "companies"
}

// Location resolves the stored IANA timezone, falling back to UTC when the
// stored value is unknown so a bad row cannot take the scheduler down.
func (c Company) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
