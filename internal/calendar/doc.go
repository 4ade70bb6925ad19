// Package calendar adapts the Google Calendar API to the schedule reader and
// writer the claim watcher uses.
//
// BusyInWindow lists the events overlapping a window and turns them into
// busy intervals. CreateBusy inserts the entry for a claimed slot. Errors from
// the API are wrapped in *APIError, which reports authorization failures as
// fatal so the watcher stops instead of polling with a dead token.
//
// Example usage:
//
//	client, err := calendar.NewClient(ctx, google.NewFileTokenProvider(),
//	    calendar.WithCalendarID("primary"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	busy, err := client.BusyInWindow(ctx, start, end)
package calendar
