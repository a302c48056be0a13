// Package notification turns collaborator counts into the prioritized
// operational feed: the aggregator builds one pass, the feed owns read
// state across passes, and the poller drives the cycle.
package notification

import (
	"fmt"
	"sort"
	"time"

	"github.com/DevishMittal/eljay-console/internal/model"
)

type entry struct {
	priority       model.Priority
	actionRequired bool
	title          string
	singular       string
	plural         string
	actionURL      string
	entityType     string
}

var catalog = map[model.NotificationType]entry{
	model.NotificationPendingTasks: {
		priority:       model.PriorityHigh,
		actionRequired: true,
		title:          "Pending Tasks",
		singular:       "%d task is pending",
		plural:         "%d tasks are pending",
		actionURL:      "/tasks",
		entityType:     "task",
	},
	model.NotificationOverduePayment: {
		priority:       model.PriorityHigh,
		actionRequired: true,
		title:          "Overdue Payments",
		singular:       "%d payment is overdue",
		plural:         "%d payments are overdue",
		actionURL:      "/billing/invoices",
		entityType:     "invoice",
	},
	model.NotificationExpiredItems: {
		priority:       model.PriorityHigh,
		actionRequired: true,
		title:          "Expiring Inventory",
		singular:       "%d inventory item is expired or expiring soon",
		plural:         "%d inventory items are expired or expiring soon",
		actionURL:      "/inventory",
		entityType:     "inventory",
	},
	model.NotificationLowStock: {
		priority:       model.PriorityMedium,
		actionRequired: true,
		title:          "Low Stock Alert",
		singular:       "%d item is running low on stock",
		plural:         "%d items are running low on stock",
		actionURL:      "/inventory",
		entityType:     "inventory",
	},
	model.NotificationTodaysAppointments: {
		priority:   model.PriorityMedium,
		title:      "Today's Appointments",
		singular:   "%d appointment scheduled for today",
		plural:     "%d appointments scheduled for today",
		actionURL:  "/appointments",
		entityType: "appointment",
	},
	model.NotificationNewPatientRegistration: {
		priority:   model.PriorityLow,
		title:      "New Patients",
		singular:   "%d new patient registered recently",
		plural:     "%d new patients registered recently",
		actionURL:  "/patients",
		entityType: "patient",
	},
}

// Known reports whether t has a catalog entry.
func Known(t model.NotificationType) bool {
	_, ok := catalog[t]
	return ok
}

// Build returns the unread notification for a nonzero count of type t.
// It reports false for unknown types and counts below one.
func Build(t model.NotificationType, count int, id string, createdAt time.Time) (model.Notification, bool) {
	e, ok := catalog[t]
	if !ok || count < 1 {
		return model.Notification{}, false
	}

	format := e.plural
	if count == 1 {
		format = e.singular
	}

	return model.Notification{
		ID:                id,
		Type:              t,
		Priority:          e.priority,
		Title:             e.title,
		Message:           fmt.Sprintf(format, count),
		IsActionRequired:  e.actionRequired,
		CreatedAt:         createdAt,
		ActionURL:         e.actionURL,
		RelatedEntityType: e.entityType,
		Metadata:          map[string]int{"count": count},
	}, true
}

// Sort orders ns by priority, highest first, then by type name.
func Sort(ns []model.Notification) {
	sort.SliceStable(ns, func(i, j int) bool {
		if ns[i].Priority != ns[j].Priority {
			return ns[i].Priority > ns[j].Priority
		}
		return ns[i].Type < ns[j].Type
	})
}
