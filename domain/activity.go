package domain

import (
	"time"

	"gorm.io/datatypes"
)

type ActivityAction string

const (
	ActionCreate     ActivityAction = "create"
	ActionUpdate     ActivityAction = "update"
	ActionDelete     ActivityAction = "delete"
	ActionLogin      ActivityAction = "login"
	ActionSwitchRole ActivityAction = "switch_role"
)

type ActivityLog struct {
	ID          uint64            `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID      uint              `gorm:"column:user_id;not null;index" json:"user_id"`
	Action      ActivityAction    `gorm:"column:action;type:varchar(20);not null" json:"action"`
	ModelName   string            `gorm:"column:model_name;type:varchar(100)" json:"model_name"`
	ObjectID    string            `gorm:"column:object_id;type:varchar(100)" json:"object_id"`
	Description string            `gorm:"column:description;type:text" json:"description"`
	Changes     datatypes.JSONMap `gorm:"column:changes" json:"changes,omitempty"`
	IPAddress   string            `gorm:"column:ip_address;type:varchar(64)" json:"ip_address,omitempty"`
	CreatedAt   time.Time         `gorm:"column:created_at;index" json:"created_at"`
}

func (ActivityLog) TableName() string {
	return "activity_logs"
}

type ActivityFilter struct {
	UserID uint
	Page   int
	Limit  int
}

// Actor is the staff member behind a mutation, for the activity log.
type Actor struct {
	UserID uint
	IP     string
}

func (a Actor) Log(action ActivityAction, model, objectID, description string, changes map[string]any) ActivityLog {
	return ActivityLog{
		UserID:      a.UserID,
		Action:      action,
		ModelName:   model,
		ObjectID:    objectID,
		Description: description,
		Changes:     changes,
		IPAddress:   a.IP,
	}
}
