package algo

import (
	"time"

	"github.com/upec/tracklane/schema"
)

// at parses a minute-precision UTC timestamp for test fixtures.
func at(s string) *time.Time {
	t, err := time.Parse(schema.MinuteLayout, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func slot(id, start, end string) *schema.Interval {
	iv := &schema.Interval{ID: id}
	if start != "" {
		iv.StartTime = at(start)
	}
	if end != "" {
		iv.EndTime = at(end)
	}
	return iv
}

func trackIDs(tracks []schema.Track) [][]string {
	ids := make([][]string, len(tracks))
	for i, track := range tracks {
		for _, p := range track.Intervals {
			ids[i] = append(ids[i], p.ID)
		}
	}
	return ids
}
