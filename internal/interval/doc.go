// Package interval extracts a single time range such as "2 to 4" or
// "9:30-11am" from free-form chat text and turns it into a timezone-aware
// TimeInterval anchored to the current day.
//
// Extraction is heuristic and lossy. Hours written without am/pm are
// assigned one by a MeridiemPolicy, the calendar day is chosen by a
// DatePolicy, and when the text holds more than one range a
// SelectionPolicy decides which candidate wins. The defaults are
// DaytimeShift, SameDay and FirstValid.
//
// Example usage:
//
//	loc, _ := time.LoadLocation("America/New_York")
//	p := interval.NewParser(loc)
//	iv, ok := p.Extract("cancelling office hours 2 to 4 today", time.Now())
//	if ok {
//	    fmt.Println(iv) // 14:00-16:00 on today's date
//	}
package interval
