package models

import (
	"time"

	"github.com/angelmondragon/iacol-backend/pkg/enums"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserSubscription records a user's entitlement to an agent.
type UserSubscription struct {
	ID        uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	UserID    uuid.UUID                `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_user_subscriptions_user_agent"`
	User      *User                    `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	AgentID   uuid.UUID                `gorm:"column:agent_id;type:uuid;not null;uniqueIndex:idx_user_subscriptions_user_agent"`
	Agent     *Agent                   `gorm:"foreignKey:AgentID;constraint:OnDelete:CASCADE"`
	Status    enums.SubscriptionStatus `gorm:"column:status;type:text;not null"`
	StartDate time.Time                `gorm:"column:start_date;not null"`
	EndDate   time.Time                `gorm:"column:end_date;not null"`
	AutoRenew bool                     `gorm:"column:auto_renew;not null"`
	CreatedAt time.Time                `gorm:"column:created_at;autoCreateTime"`
}

func (s *UserSubscription) BeforeCreate(*gorm.DB) error {
	assignID(&s.ID)
	return nil
}
