package render

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/callcharts/pkg/models"
)

func TestSVG_LineChart(t *testing.T) {
	out := SVG(models.VoiceQuality, models.DefaultSeries(models.VoiceQuality))

	assert.True(t, strings.HasPrefix(out, `<svg id="chart"`))
	assert.Contains(t, out, `<polyline class="line"`)
	assert.NotContains(t, out, `class="bar"`)
	assert.Equal(t, 7, strings.Count(out, `class="label"`))
	assert.Contains(t, out, ">Voice Quality<")
}

func TestSVG_BarChart(t *testing.T) {
	out := SVG(models.CallVolume, models.DefaultSeries(models.CallVolume))

	assert.Equal(t, 7, strings.Count(out, `class="bar"`))
	assert.Contains(t, out, ">Mon<")
	// top grid line label is the max value
	assert.Contains(t, out, ">220<")
}

func TestSVG_EscapesLabels(t *testing.T) {
	s, err := models.ParseSeries(`[{"name":"<b>","calls":1}]`)
	require.NoError(t, err)

	out := SVG(models.CallVolume, s)
	assert.Contains(t, out, "&lt;b&gt;")
	assert.NotContains(t, out, "<b>")
}

func TestSVG_EmptySeries(t *testing.T) {
	out := SVG(models.VoiceQuality, nil)
	assert.Contains(t, out, `points=""`)
	assert.True(t, strings.HasSuffix(Document(models.VoiceQuality, nil), "</svg></body></html>"))
}
