package models

import "time"

// Plan identifiers. PRO users are exempt from the daily analysis quota.
const (
	PlanFree = "FREE"
	PlanPro  = "PRO"
)

// User represents a user in the system.
type User struct {
	ID                 string    `json:"id" firestore:"-"` // Firebase Auth UID, will be the document ID
	Email              string    `json:"email"`
	DisplayName        string    `json:"displayName,omitempty"`
	PhotoURL           string    `json:"photoURL,omitempty"`
	Plan               string    `json:"plan"` // "FREE" or "PRO"
	SubscriptionStatus string    `json:"subscriptionStatus,omitempty"` // e.g., "active", "canceled"
	CreatedAt          time.Time `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt          time.Time `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsPro reports whether the user is on the unmetered paid tier.
func (u *User) IsPro() bool {
	return u != nil && u.Plan == PlanPro
}
