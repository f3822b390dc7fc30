package models

import (
	"fmt"
	"strings"
	"time"
)

// ChartID identifies one of the dashboard charts and its storage partition
type ChartID string

const (
	VoiceQuality ChartID = "voiceQuality"
	CallVolume   ChartID = "callVolume"
)

// ChartIDs lists every chart in display order
var ChartIDs = []ChartID{VoiceQuality, CallVolume}

// ChartKind is how a chart is drawn
type ChartKind int

const (
	KindLine ChartKind = iota
	KindBar
)

// ParseChartID converts user input into a ChartID
func ParseChartID(s string) (ChartID, error) {
	for _, id := range ChartIDs {
		if strings.EqualFold(s, string(id)) {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown chart: %s (available: voiceQuality, callVolume)", s)
}

// Valid reports whether c is a known chart
func (c ChartID) Valid() bool {
	return c == VoiceQuality || c == CallVolume
}

func (c ChartID) String() string {
	return string(c)
}

// Title returns the human readable chart name
func (c ChartID) Title() string {
	switch c {
	case VoiceQuality:
		return "Voice Quality"
	case CallVolume:
		return "Call Volume"
	default:
		return string(c)
	}
}

// MetricKey returns the numeric field plotted for the chart
func (c ChartID) MetricKey() string {
	if c == CallVolume {
		return "calls"
	}
	return "quality"
}

// Kind returns whether the chart is a line or bar chart
func (c ChartID) Kind() ChartKind {
	if c == CallVolume {
		return KindBar
	}
	return KindLine
}

// Next returns the chart after c, wrapping around
func (c ChartID) Next() ChartID {
	for i, id := range ChartIDs {
		if id == c {
			return ChartIDs[(i+1)%len(ChartIDs)]
		}
	}
	return ChartIDs[0]
}

// SavedEntry is the persisted series for one (email, chart) pair
type SavedEntry struct {
	ID        int       `json:"id"`
	Email     string    `json:"email"`
	ChartID   ChartID   `json:"chart_id"`
	Values    Series    `json:"values"`
	UpdatedAt time.Time `json:"updated_at"`
	Published bool      `json:"published"`
}
