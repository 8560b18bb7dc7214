package model

import "time"

// Activity is one sellable event in the catalog.  The reservation core
// only reads activities; creating and editing them belongs to the
// activity-management service.
//
// Fields:
//
//	ID             – primary key identifier.
//	Name           – display name of the event.
//	StartTime      – when the event itself begins.
//	SalesStartTime – bookings are rejected before this instant.
//	SalesEndTime   – bookings are rejected after this instant.
//	IsDeleted      – soft-delete flag; deleted activities are unsellable.
type Activity struct {
	ID             int64     // activities.id
	Name           string    // activities.name
	StartTime      time.Time // activities.start_time
	SalesStartTime time.Time // activities.sales_start_time
	SalesEndTime   time.Time // activities.sales_end_time
	IsDeleted      bool      // activities.is_deleted
	CreatedAt      time.Time // activities.created_at
	UpdatedAt      time.Time // activities.updated_at
}

// SalesOpenAt reports whether bookings are accepted at the given instant.
func (a *Activity) SalesOpenAt(now time.Time) bool {
	return !now.Before(a.SalesStartTime) && !now.After(a.SalesEndTime)
}
