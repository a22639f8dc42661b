package models

// Sequence is a named counter used to hand out numeric ids.
type Sequence struct {
	Name  string `gorm:"primaryKey;type:varchar(50)"`
	Value uint64 `gorm:"not null"`
}
