package holiday

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Holiday struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"column:company_id;type:uuid;not null;uniqueIndex:uq_holiday_company_date"`
	HolidayDate time.Time `gorm:"column:holiday_date;type:date;not null;uniqueIndex:uq_holiday_company_date"`
	Name        string    `gorm:"column:name;type:varchar(150);not null"`

	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (Holiday) TableName() string {
	return "holidays"
}
