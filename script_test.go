package lilfast

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = `[
	{"type": "down", "x": 10, "y": 10},
	{"type": "move", "x": 50, "y": 10},
	{"type": "move", "x": 50, "y": 50, "color": "#ff0000"},
	{"type": "up", "x": 50, "y": 50},
	{"type": "style", "brush": 10}
]`

func TestScript_Replay(t *testing.T) {
	script, err := ReadScript(strings.NewReader(sampleScript))
	require.NoError(t, err)
	require.Len(t, script, 5)

	c := NewCanvas(CanvasSize, CanvasSize)
	st, err := script.Replay(c, DefaultStyle())
	require.NoError(t, err)

	assert.Equal(t, black, c.Visible().NRGBAAt(30, 10))
	assert.Equal(t, red, c.Visible().NRGBAAt(50, 30))
	assert.Equal(t, Idle, c.State())
	assert.Equal(t, Style{Color: red, Width: BrushLarge}, st)
}

func TestScript_Events(t *testing.T) {
	script := Script{
		{Type: "down", X: 1, Y: 2, Brush: 2},
		{Type: "clear"},
		{Type: "clear_background"},
		{Type: "leave"},
	}
	events, err := script.Events(DefaultStyle())
	require.NoError(t, err)

	assert.Equal(t, []any{
		StyleEvent{Style: Style{Color: black, Width: BrushSmall}},
		PointerEvent{Type: PointerDown, Client: Pt(1, 2)},
		ClearStrokesEvent{},
		ClearBackgroundEvent{},
		PointerEvent{Type: PointerLeave, Client: Pt(0, 0)},
	}, events)
}

func TestScript_Errors(t *testing.T) {
	_, err := Script{{Type: "jump"}}.Events(DefaultStyle())
	assert.ErrorContains(t, err, "unknown event type")

	_, err = Script{{Type: "down", Color: "#12"}}.Events(DefaultStyle())
	assert.ErrorIs(t, err, ErrInvalidColor)

	_, err = Script{{Type: "down", Brush: -1}}.Events(DefaultStyle())
	assert.ErrorIs(t, err, ErrInvalidBrush)

	_, err = ReadScript(strings.NewReader("{"))
	assert.Error(t, err)
}

func TestScript_FailedReplayLeavesCanvas(t *testing.T) {
	c := NewCanvas(CanvasSize, CanvasSize)
	_, err := Script{{Type: "down"}, {Type: "move", X: 40, Y: 40}, {Type: "nope"}}.Replay(c, DefaultStyle())

	assert.Error(t, err)
	assert.True(t, isUniform(c.Visible(), white))
}

func TestScript_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "strokes.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleScript), 0644))

	script, err := LoadScript(path)
	require.NoError(t, err)
	assert.Equal(t, "#ff0000", script[2].Color)

	_, err = LoadScript(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
