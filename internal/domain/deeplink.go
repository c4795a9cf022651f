package domain

import (
	"fmt"
	"net/url"
	"time"
)

// DeepLinkState is the one-shot selection encoded in a shared URL's query
// parameters. It is parsed once on page load, drives an auto-submitted
// selection, and is then discarded.
type DeepLinkState struct {
	Date     time.Time
	Number   string
	Overlays []string
}

// ParseDeepLink extracts a deep link from a raw query string. The boolean is
// false when the query carries no selection; both date and mpd are required.
func ParseDeepLink(rawQuery string) (DeepLinkState, bool, error) {
	values, err := url.ParseQuery(rawQuery)
	if err != nil {
		return DeepLinkState{}, false, fmt.Errorf("parse deep link query: %w", err)
	}

	dateStr := values.Get("date")
	number := values.Get("mpd")
	if dateStr == "" || number == "" {
		return DeepLinkState{}, false, nil
	}

	date, err := ParseDateKey(dateStr)
	if err != nil {
		return DeepLinkState{}, false, err
	}

	return DeepLinkState{
		Date:     date,
		Number:   number,
		Overlays: values["overlay"],
	}, true, nil
}

// EncodeShareQuery serializes a selection back into the deep-link query
// shape: date, mpd, and one overlay parameter per visible layer.
func EncodeShareQuery(date time.Time, number string, overlays []string) string {
	values := url.Values{}
	values.Set("date", DateKey(date))
	values.Set("mpd", number)
	for _, id := range overlays {
		values.Add("overlay", id)
	}
	return values.Encode()
}
