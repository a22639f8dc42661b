package models

import "time"

// AuditEntry records one mutating admin action.
type AuditEntry struct {
	ID            string    `json:"id" bson:"_id" gorm:"primaryKey;type:varchar(36)"`
	ActorID       uint64    `json:"actorId" bson:"actor_id" gorm:"index"`
	ActorUsername string    `json:"actorUsername" bson:"actor_username" gorm:"type:varchar(100)"`
	Action        string    `json:"action" bson:"action" gorm:"type:varchar(50);index"`
	Resource      string    `json:"resource" bson:"resource" gorm:"type:varchar(50);index"`
	ResourceID    uint64    `json:"resourceId" bson:"resource_id" gorm:"index"`
	Detail        string    `json:"detail,omitempty" bson:"detail,omitempty" gorm:"type:text"`
	CreatedAt     time.Time `json:"createdAt" bson:"created_at" gorm:"index"`
}
