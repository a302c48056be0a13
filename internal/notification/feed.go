package notification

import (
	"sync"

	"github.com/DevishMittal/eljay-console/internal/model"
)

// Feed owns the live notifications and their read state. It holds at most
// one notification per type.
type Feed struct {
	mu    sync.RWMutex
	items []model.Notification
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Replace merges a fresh aggregation pass. A type that was already live
// keeps its ID, CreatedAt and read state while its title, message and
// metadata are refreshed. Types missing from ns are dropped, and only the
// first notification of a repeated type is kept. It returns the new list.
func (f *Feed) Replace(ns []model.Notification) []model.Notification {
	f.mu.Lock()
	defer f.mu.Unlock()

	live := make(map[model.NotificationType]model.Notification, len(f.items))
	for _, n := range f.items {
		live[n.Type] = n
	}

	seen := make(map[model.NotificationType]bool, len(ns))
	next := make([]model.Notification, 0, len(ns))
	for _, n := range ns {
		if seen[n.Type] {
			continue
		}
		seen[n.Type] = true

		n = n.Clone()
		if prev, ok := live[n.Type]; ok {
			n.ID = prev.ID
			n.CreatedAt = prev.CreatedAt
			n.IsRead = prev.IsRead
		}
		next = append(next, n)
	}
	f.items = next

	return cloneAll(next)
}

// MarkRead marks the notification with the given id as read. Unknown ids
// and already read notifications are left alone. It reports whether the
// feed changed.
func (f *Feed) MarkRead(id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.items {
		if f.items[i].ID != id {
			continue
		}
		if f.items[i].IsRead {
			return false
		}
		f.items[i].IsRead = true
		return true
	}
	return false
}

// MarkAllRead marks every notification as read and returns how many
// changed.
func (f *Feed) MarkAllRead() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	changed := 0
	for i := range f.items {
		if !f.items[i].IsRead {
			f.items[i].IsRead = true
			changed++
		}
	}
	return changed
}

// List returns a copy of the live notifications in feed order.
func (f *Feed) List() []model.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return cloneAll(f.items)
}

// Stats folds the live notifications into badge counters.
func (f *Feed) Stats() model.FeedStats {
	f.mu.RLock()
	defer f.mu.RUnlock()

	stats := model.FeedStats{Total: len(f.items)}
	for _, n := range f.items {
		if !n.IsRead {
			stats.Unread++
		}
		if n.IsActionRequired {
			stats.ActionRequired++
		}
	}
	return stats
}

// UnreadCount returns the number of unread notifications.
func (f *Feed) UnreadCount() int64 {
	return int64(f.Stats().Unread)
}

func cloneAll(ns []model.Notification) []model.Notification {
	out := make([]model.Notification, len(ns))
	for i, n := range ns {
		out[i] = n.Clone()
	}
	return out
}
