package model

import "time"

// NotificationType identifies the operational signal behind a notification.
type NotificationType string

const (
	NotificationPendingTasks           NotificationType = "pending_tasks"
	NotificationLowStock               NotificationType = "low_stock"
	NotificationOverduePayment         NotificationType = "overdue_payment"
	NotificationTodaysAppointments     NotificationType = "todays_appointments"
	NotificationExpiredItems           NotificationType = "expired_items"
	NotificationNewPatientRegistration NotificationType = "new_patient_registration"
)

// NotificationTypes lists every signal type.
var NotificationTypes = []NotificationType{
	NotificationPendingTasks,
	NotificationLowStock,
	NotificationOverduePayment,
	NotificationTodaysAppointments,
	NotificationExpiredItems,
	NotificationNewPatientRegistration,
}

// Notification is one entry of the operational feed.
type Notification struct {
	ID                string           `json:"id"`
	Type              NotificationType `json:"type"`
	Priority          Priority         `json:"priority"`
	Title             string           `json:"title"`
	Message           string           `json:"message"`
	IsRead            bool             `json:"is_read"`
	IsActionRequired  bool             `json:"is_action_required"`
	CreatedAt         time.Time        `json:"created_at"`
	ActionURL         string           `json:"action_url,omitempty"`
	RelatedEntityType string           `json:"related_entity_type,omitempty"`
	Metadata          map[string]int   `json:"metadata,omitempty"`
}

// Clone returns a copy that shares no map with n.
func (n Notification) Clone() Notification {
	if n.Metadata != nil {
		md := make(map[string]int, len(n.Metadata))
		for k, v := range n.Metadata {
			md[k] = v
		}
		n.Metadata = md
	}
	return n
}

// FeedStats summarizes the feed for the badge.
type FeedStats struct {
	Total          int `json:"total"`
	Unread         int `json:"unread"`
	ActionRequired int `json:"action_required"`
}
