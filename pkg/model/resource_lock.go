package model

import "time"

// ResourceLock is the per-resource document every booking transaction writes before
// reading the resource's live bookings. Two transactions touching the same lock
// document cannot both commit, which serializes creates on one resource.
type ResourceLock struct {
	ID        string    `bson:"_id" json:"id"`
	Version   int64     `bson:"version" json:"version"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
