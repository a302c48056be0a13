package notification

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevishMittal/eljay-console/internal/model"
)

func mustBuild(t *testing.T, typ model.NotificationType, count int, id string, at time.Time) model.Notification {
	t.Helper()
	n, ok := Build(typ, count, id, at)
	require.True(t, ok)
	return n
}

func TestFeed_ReplacePreservesReadState(t *testing.T) {
	f := NewFeed()
	first := fixedNow
	f.Replace([]model.Notification{
		mustBuild(t, model.NotificationOverduePayment, 2, "pay-1", first),
		mustBuild(t, model.NotificationPendingTasks, 3, "task-1", first),
	})
	require.True(t, f.MarkRead("pay-1"))

	later := first.Add(time.Minute)
	got := f.Replace([]model.Notification{
		mustBuild(t, model.NotificationOverduePayment, 5, "pay-2", later),
		mustBuild(t, model.NotificationPendingTasks, 3, "task-2", later),
	})

	require.Len(t, got, 2)
	assert.Equal(t, "pay-1", got[0].ID)
	assert.True(t, got[0].IsRead)
	assert.Equal(t, first, got[0].CreatedAt)
	assert.Equal(t, "5 payments are overdue", got[0].Message)
	assert.Equal(t, 5, got[0].Metadata["count"])

	assert.Equal(t, "task-1", got[1].ID)
	assert.False(t, got[1].IsRead)
}

func TestFeed_ReplaceDropsClearedTypes(t *testing.T) {
	f := NewFeed()
	f.Replace([]model.Notification{
		mustBuild(t, model.NotificationLowStock, 2, "stock-1", fixedNow),
		mustBuild(t, model.NotificationPendingTasks, 1, "task-1", fixedNow),
	})
	f.MarkRead("stock-1")

	f.Replace([]model.Notification{mustBuild(t, model.NotificationPendingTasks, 1, "task-2", fixedNow)})
	assert.Equal(t, []model.NotificationType{model.NotificationPendingTasks}, types(f.List()))

	// A type that returns after being cleared starts over as unread.
	got := f.Replace([]model.Notification{mustBuild(t, model.NotificationLowStock, 2, "stock-2", fixedNow)})
	require.Len(t, got, 1)
	assert.Equal(t, "stock-2", got[0].ID)
	assert.False(t, got[0].IsRead)
}

func TestFeed_ReplaceKeepsFirstOfDuplicateType(t *testing.T) {
	f := NewFeed()
	got := f.Replace([]model.Notification{
		mustBuild(t, model.NotificationLowStock, 2, "a", fixedNow),
		mustBuild(t, model.NotificationLowStock, 7, "b", fixedNow),
	})

	require.Len(t, got, 1)
	assert.Equal(t, "a", got[0].ID)
	assert.Equal(t, 2, got[0].Metadata["count"])
}

func TestFeed_MarkRead(t *testing.T) {
	f := NewFeed()
	f.Replace([]model.Notification{mustBuild(t, model.NotificationLowStock, 2, "a", fixedNow)})

	assert.False(t, f.MarkRead("missing"))
	assert.True(t, f.MarkRead("a"))
	assert.False(t, f.MarkRead("a"))
	assert.Equal(t, int64(0), f.UnreadCount())
}

func TestFeed_MarkAllReadAndStats(t *testing.T) {
	f := NewFeed()
	f.Replace([]model.Notification{
		mustBuild(t, model.NotificationExpiredItems, 1, "a", fixedNow),
		mustBuild(t, model.NotificationLowStock, 2, "b", fixedNow),
		mustBuild(t, model.NotificationTodaysAppointments, 6, "c", fixedNow),
	})
	f.MarkRead("b")

	assert.Equal(t, model.FeedStats{Total: 3, Unread: 2, ActionRequired: 2}, f.Stats())
	assert.Equal(t, 2, f.MarkAllRead())
	assert.Equal(t, 0, f.MarkAllRead())
	assert.Equal(t, model.FeedStats{Total: 3, Unread: 0, ActionRequired: 2}, f.Stats())
}

func TestFeed_ListReturnsCopies(t *testing.T) {
	f := NewFeed()
	f.Replace([]model.Notification{mustBuild(t, model.NotificationLowStock, 2, "a", fixedNow)})

	list := f.List()
	list[0].IsRead = true
	list[0].Metadata["count"] = 99

	again := f.List()
	assert.False(t, again[0].IsRead)
	assert.Equal(t, 2, again[0].Metadata["count"])
}

func TestFeed_Empty(t *testing.T) {
	f := NewFeed()
	assert.Empty(t, f.List())
	assert.Equal(t, model.FeedStats{}, f.Stats())
	assert.Equal(t, 0, f.MarkAllRead())
}
