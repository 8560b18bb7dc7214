package model

import "time"

// Showtime is one scheduled occurrence of an activity at a site.  Once
// sales have begun it is treated as immutable by this service.
type Showtime struct {
	ID         string    // showtimes.id (UUID)
	ActivityID int64     // showtimes.activity_id
	SiteID     string    // showtimes.site_id (UUID)
	StartTime  time.Time // showtimes.start_time
	CreatedAt  time.Time // showtimes.created_at
	UpdatedAt  time.Time // showtimes.updated_at

	// Sections carries the priced zones of the showtime when loaded with
	// the showtime; nil when only the header row was fetched.
	Sections []ShowtimeSection
}

// ShowtimeSection is a priced zone of a showtime's seating.  Vacancy is the
// durable authoritative remaining count; the Redis counter mirrors it and
// resolves concurrent reservation races ahead of the database write.
type ShowtimeSection struct {
	ID         string // showtime_sections.id (UUID)
	ShowtimeID string // showtime_sections.showtime_id
	Section    string // showtime_sections.section (zone label, e.g. "VIP")
	Price      int    // showtime_sections.price
	Capacity   int    // showtime_sections.capacity
	Vacancy    int    // showtime_sections.vacancy
}

// SectionByZone returns the section with the given zone label, or nil when
// the showtime has no such zone.
func (s *Showtime) SectionByZone(zone string) *ShowtimeSection {
	for i := range s.Sections {
		if s.Sections[i].Section == zone {
			return &s.Sections[i]
		}
	}
	return nil
}

// ZoneCapacity pairs a zone label with its full capacity.  It is the unit
// of work for seeding the seat counter cache.
type ZoneCapacity struct {
	Zone     string `json:"zone"`
	Capacity int    `json:"capacity"`
}
