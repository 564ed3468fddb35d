package models

import "time"

// ScheduleBlock marks a barber unavailable on Date. Nil StartMinute and
// EndMinute block the whole day; a single nil bound extends the block to
// opening or closing time.
type ScheduleBlock struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	BarberID uint   `gorm:"index:idx_blocks_barber_date;not null" json:"barber_id"`
	Date     string `gorm:"size:10;index:idx_blocks_barber_date;not null" json:"date"`

	StartMinute *int `json:"start_minute"`
	EndMinute   *int `json:"end_minute"`

	Reason    string `gorm:"size:255" json:"reason"`
	CreatedBy *uint  `json:"created_by"`

	CreatedAt time.Time `json:"created_at"`
}

func (b ScheduleBlock) FullDay() bool {
	return b.StartMinute == nil && b.EndMinute == nil
}
