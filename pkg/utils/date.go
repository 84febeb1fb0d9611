package utils

import (
	"log"
	"time"
)

// TimeNowET returns the current time in US Eastern Time, the reference
// timezone for market headlines and publish timestamps.
func TimeNowET() time.Time {
	return time.Now().In(GetETTimeLocation())
}

// GetETTimeLocation loads the America/New_York location.
func GetETTimeLocation() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

// PrettyDate formats t for human-readable alert messages.
func PrettyDate(t time.Time) string {
	return t.Format("Mon, 02 Jan 2006 15:04 MST")
}
