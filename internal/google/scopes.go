package google

import calendar "google.golang.org/api/calendar/v3"

// DefaultOAuthScopes are the scopes shiftclaim asks for: reading events to
// detect conflicts and inserting the entry for a claimed slot.
var DefaultOAuthScopes = []string{
	calendar.CalendarEventsScope,
}
