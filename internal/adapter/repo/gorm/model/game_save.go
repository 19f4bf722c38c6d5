package model

import "time"

const TableNameGameSave = "game_saves"

// GameSave mapped from table <game_saves>
type GameSave struct {
	Name      string    `gorm:"column:name;primaryKey;size:64" json:"name"`
	Payload   []byte    `gorm:"column:payload;not null" json:"payload"`
	SavedAt   time.Time `gorm:"column:saved_at;not null;index" json:"saved_at"`
	UpdatedAt time.Time `gorm:"column:updated_at" json:"updated_at"`
}

// TableName GameSave's table name
func (*GameSave) TableName() string {
	return TableNameGameSave
}
