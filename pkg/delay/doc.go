// Package delay paces page visits with a random pause.
//
// After every navigation the scraper waits a whole number of seconds drawn
// uniformly from [Min, Max] so the listing site sees an irregular, human
// looking request pattern.
//
// Usage:
//
//	pacer := delay.NewRandom(3, 5)
//	if err := pacer.Pause(ctx); err != nil {
//	    // ctx was cancelled
//	}
package delay
