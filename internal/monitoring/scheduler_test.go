package monitoring

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/isdelr/glossary-be/internal/models"
	"github.com/isdelr/glossary-be/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeEventService struct {
	removed  int64
	pruneErr error
	cutoffs  []time.Time
	created  []string
}

func (f *fakeEventService) CreateEvent(_ context.Context, eventType, _, _ string, _ *int64) error {
	f.created = append(f.created, eventType)
	return nil
}

func (f *fakeEventService) GetRecentEvents(_ context.Context, _ int) ([]models.Event, error) {
	return nil, nil
}

func (f *fakeEventService) PruneEvents(_ context.Context, before time.Time) (int64, error) {
	f.cutoffs = append(f.cutoffs, before)
	return f.removed, f.pruneErr
}

func TestScheduler_PruneExpiredEvents(t *testing.T) {
	events := &fakeEventService{removed: 4}
	s, err := NewScheduler(events, "@daily", 30*24*time.Hour)
	require.NoError(t, err)

	now := time.Date(2024, 3, 31, 3, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	removed, err := s.PruneExpiredEvents(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), removed)
	require.Len(t, events.cutoffs, 1)
	assert.Equal(t, time.Date(2024, 3, 1, 3, 0, 0, 0, time.UTC), events.cutoffs[0])
	assert.Equal(t, []string{services.EventRetentionCleanup}, events.created)
}

func TestScheduler_NothingToPrune(t *testing.T) {
	events := &fakeEventService{}
	s, err := NewScheduler(events, "0 3 * * *", time.Hour)
	require.NoError(t, err)

	removed, err := s.PruneExpiredEvents(context.Background())
	require.NoError(t, err)
	assert.Zero(t, removed)
	assert.Empty(t, events.created)
}

func TestScheduler_PruneError(t *testing.T) {
	events := &fakeEventService{pruneErr: errors.New("disk I/O error")}
	s, err := NewScheduler(events, "@hourly", time.Hour)
	require.NoError(t, err)

	_, err = s.PruneExpiredEvents(context.Background())
	assert.Error(t, err)
}

func TestScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler(&fakeEventService{}, "every tuesday", time.Hour)
	assert.Error(t, err)
}

func TestScheduler_RunStop(t *testing.T) {
	s, err := NewScheduler(&fakeEventService{}, "@daily", time.Hour)
	require.NoError(t, err)

	s.Run()
	s.Stop()
}
