package models

var defaultVoiceQuality = Series{
	{{"name", "00:00"}, {"quality", 72.0}},
	{{"name", "04:00"}, {"quality", 75.0}},
	{{"name", "08:00"}, {"quality", 80.0}},
	{{"name", "12:00"}, {"quality", 78.0}},
	{{"name", "16:00"}, {"quality", 76.0}},
	{{"name", "20:00"}, {"quality", 74.0}},
	{{"name", "24:00"}, {"quality", 73.0}},
}

var defaultCallVolume = Series{
	{{"name", "Mon"}, {"calls", 120.0}},
	{{"name", "Tue"}, {"calls", 150.0}},
	{{"name", "Wed"}, {"calls", 200.0}},
	{{"name", "Thu"}, {"calls", 170.0}},
	{{"name", "Fri"}, {"calls", 220.0}},
	{{"name", "Sat"}, {"calls", 90.0}},
	{{"name", "Sun"}, {"calls", 60.0}},
}

// DefaultSeries returns a fresh copy of the built-in imaginary dataset for a chart
func DefaultSeries(id ChartID) Series {
	switch id {
	case CallVolume:
		return defaultCallVolume.Clone()
	default:
		return defaultVoiceQuality.Clone()
	}
}
