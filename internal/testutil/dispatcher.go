package testutil

import (
	"context"
	"sync"

	"warden/internal/models"
)

// RecordingDispatcher captures notices and admin events in memory.
type RecordingDispatcher struct {
	mu      sync.Mutex
	notices map[uint][]models.Notice
	events  []models.AdminEvent
	// Err, when set, is returned from every call after recording it.
	Err error
}

// NewRecordingDispatcher returns an empty RecordingDispatcher.
func NewRecordingDispatcher() *RecordingDispatcher {
	return &RecordingDispatcher{notices: make(map[uint][]models.Notice)}
}

// NotifyUser records notice for userID.
func (d *RecordingDispatcher) NotifyUser(_ context.Context, userID uint, notice models.Notice) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notices[userID] = append(d.notices[userID], notice)
	return d.Err
}

// PublishAdminEvent records event.
func (d *RecordingDispatcher) PublishAdminEvent(_ context.Context, event models.AdminEvent) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return d.Err
}

// Notices returns the notices sent to userID.
func (d *RecordingDispatcher) Notices(userID uint) []models.Notice {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]models.Notice(nil), d.notices[userID]...)
}

// EventTypes returns the types of every admin event in publish order.
func (d *RecordingDispatcher) EventTypes() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]string, 0, len(d.events))
	for _, e := range d.events {
		out = append(out, e.Type)
	}
	return out
}

// Events returns the admin events of the given type.
func (d *RecordingDispatcher) Events(eventType string) []models.AdminEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []models.AdminEvent
	for _, e := range d.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
