package main

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DevishMittal/eljay-console/internal/config"
	"github.com/DevishMittal/eljay-console/internal/model"
	"github.com/DevishMittal/eljay-console/internal/signals"
)

type pendingStub int

func (p pendingStub) PendingCount(time.Time) int { return int(p) }

func sourceTypes(t *testing.T, cfg *config.Config) map[model.NotificationType]bool {
	t.Helper()
	sources, err := buildSources(cfg, pendingStub(4), time.Now, slog.New(slog.DiscardHandler))
	require.NoError(t, err)

	out := make(map[model.NotificationType]bool, len(sources))
	for _, s := range sources {
		out[s.Type] = true
	}
	return out
}

func TestBuildSources_NoBaseURLUsesTaskStoreOnly(t *testing.T) {
	cfg := &config.Config{
		SignalTimeout: time.Second,
		SignalPaths: map[model.NotificationType]string{
			model.NotificationLowStock: "inventory/low-stock",
		},
	}

	got := sourceTypes(t, cfg)
	assert.Equal(t, map[model.NotificationType]bool{model.NotificationPendingTasks: true}, got)
}

func TestBuildSources_RESTPaths(t *testing.T) {
	cfg := &config.Config{
		ClinicAPIBaseURL: "https://clinic.example.test/api",
		SignalTimeout:    time.Second,
		SignalPaths: map[model.NotificationType]string{
			model.NotificationLowStock:           "inventory/low-stock",
			model.NotificationTodaysAppointments: "appointments/today",
		},
	}

	got := sourceTypes(t, cfg)
	assert.Len(t, got, 3)
	assert.True(t, got[model.NotificationPendingTasks])
	assert.True(t, got[model.NotificationLowStock])
	assert.True(t, got[model.NotificationTodaysAppointments])
}

func TestBuildSources_PendingTasksFromStore(t *testing.T) {
	cfg := &config.Config{SignalTimeout: time.Second}
	sources, err := buildSources(cfg, pendingStub(4), time.Now, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	require.Len(t, sources, 1)

	_, isHTTP := sources[0].Collaborator.(*signals.HTTPCounter)
	assert.False(t, isHTTP)

	n, err := sources[0].Collaborator.GetCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}
