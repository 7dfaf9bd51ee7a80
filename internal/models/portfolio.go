package models

import "gorm.io/gorm"

// Portfolio represents a user's portfolio. A private portfolio is
// visible to its owner and to users with an active copy relationship to
// the owner; a public one is visible to everyone.
type Portfolio struct {
	gorm.Model
	Name     string `gorm:"not null" json:"name"`
	OwnerID  uint   `gorm:"not null;index" json:"ownerId"`
	IsPublic bool   `gorm:"not null;default:false" json:"isPublic"`

	Owner *User `gorm:"foreignKey:OwnerID" json:"-"`
}

// CopyRelationship links a follower to a leader whose trades they copy.
// Only an active relationship grants access to the leader's private
// portfolios; a paused or ended one does not.
type CopyRelationship struct {
	gorm.Model
	FollowerID uint `gorm:"not null;index:idx_copy_follower_leader" json:"followerId"`
	LeaderID   uint `gorm:"not null;index:idx_copy_follower_leader" json:"leaderId"`
	Active     bool `gorm:"not null;default:true" json:"active"`
}
