package tui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/gopxl/beep/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/satindergrewal/soundscape/internal/audio"
	"github.com/satindergrewal/soundscape/internal/catalog"
	"github.com/satindergrewal/soundscape/internal/console"
)

type stubOutput struct{ err error }

func (o stubOutput) Resume(ctx context.Context) error { return o.err }

type stubLoader struct{}

func (stubLoader) Load(ctx context.Context, location string) (*beep.Buffer, error) {
	buf := beep.NewBuffer(audio.Format)
	buf.Append(beep.Take(96, beep.Silence(-1)))
	return buf, nil
}

func newModel(t *testing.T, out console.Output) (Model, *console.Console, *audio.Mixer) {
	t.Helper()
	cat, err := catalog.Load()
	require.NoError(t, err)
	m := audio.NewMixer(cat, stubLoader{}, zerolog.Nop())
	c := console.New(cat, m, out, zerolog.Nop())
	return New(context.Background(), c), c, m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// send feeds msg to the model. A start command returned for a key press
// is run and its result fed back.
func send(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, cmd := m.Update(msg)
	model := next.(Model)
	if _, isKey := msg.(tea.KeyMsg); isKey && cmd != nil {
		if out, ok := cmd().(startedMsg); ok {
			next, _ = model.Update(out)
			model = next.(Model)
		}
	}
	return model
}

func started(t *testing.T, m Model, c *console.Console) Model {
	t.Helper()
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	c.Wait()
	return send(t, m, tickMsg{})
}

func TestStartKey(t *testing.T) {
	m, c, mixer := newModel(t, stubOutput{})
	assert.Contains(t, m.View(), "press enter to start")

	m = started(t, m, c)
	assert.False(t, m.status.StartVisible)
	assert.NotContains(t, m.View(), "press enter to start")
	assert.Equal(t, audio.Playing, mixer.State("rain"))

	// start is gone; pressing again does nothing
	_, cmd := m.Update(runes("s"))
	assert.Nil(t, cmd)
}

func TestStartFailureShown(t *testing.T) {
	m, _, _ := newModel(t, stubOutput{err: errors.New("no sound card")})
	m = send(t, m, runes("s"))

	assert.True(t, m.status.StartVisible)
	assert.Contains(t, m.View(), "no sound card")
	assert.Contains(t, m.View(), "press enter to start")
}

func TestSelectAndNudge(t *testing.T) {
	m, c, mixer := newModel(t, stubOutput{})
	m = started(t, m, c)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m = send(t, m, runes("j"))
	assert.Equal(t, 2, m.selected)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	m = send(t, m, runes("h"))
	g, ok := mixer.Volume("fire")
	require.True(t, ok)
	assert.InDelta(t, 0.9, g, 1e-9)

	m = send(t, m, tea.KeyMsg{Type: tea.KeyRight})
	m = send(t, m, runes("l"))
	m = send(t, m, runes("l"))
	g, _ = mixer.Volume("fire")
	assert.Equal(t, 1.0, g, "clamped at full volume")

	m = send(t, m, tea.KeyMsg{Type: tea.KeyUp})
	m = send(t, m, runes("k"))
	m = send(t, m, runes("k"))
	assert.Zero(t, m.selected)
}

func TestNudgeClampsAtZero(t *testing.T) {
	m, c, mixer := newModel(t, stubOutput{})
	m = started(t, m, c)
	m = send(t, m, runes("0"))
	m = send(t, m, tea.KeyMsg{Type: tea.KeyLeft})

	g, _ := mixer.Volume("rain")
	assert.Equal(t, 0.0, g)
	assert.Empty(t, m.errLine)
}

func TestPresetKeys(t *testing.T) {
	m, c, mixer := newModel(t, stubOutput{})
	m = started(t, m, c)

	m = send(t, m, runes("1"))
	g, _ := mixer.Volume("thunder")
	assert.Equal(t, 0.3, g)
	v, _ := c.Slider("ocean")
	assert.Equal(t, 0.5, v)

	m = send(t, m, runes("3"))
	g, _ = mixer.Volume("fire")
	assert.Equal(t, 1.0, g)

	m = send(t, m, runes("0"))
	for _, tv := range m.status.Tracks {
		assert.Equal(t, 0.0, tv.Value, tv.ID)
	}

	// keys past the preset table are ignored
	m = send(t, m, runes("9"))
	assert.Empty(t, m.errLine)
}

func TestQuit(t *testing.T) {
	m, _, _ := newModel(t, stubOutput{})
	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyCtrlC}} {
		_, cmd := m.Update(key)
		require.NotNil(t, cmd)
		assert.Equal(t, tea.Quit(), cmd())
	}
}

func TestTickReschedules(t *testing.T) {
	m, _, _ := newModel(t, stubOutput{})
	_, cmd := m.Update(tickMsg{})
	assert.NotNil(t, cmd)
	assert.NotNil(t, m.Init())
}

func TestBar(t *testing.T) {
	assert.Equal(t, sliderWidth, len([]rune(bar(0))))
	assert.Equal(t, sliderWidth, len([]rune(bar(0.5))))
	assert.Equal(t, sliderWidth, len([]rune(bar(1))))
}

func TestHelpFollowsWindowWidth(t *testing.T) {
	m, _, _ := newModel(t, stubOutput{})
	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	assert.Equal(t, 120, m.help.Width)
	assert.Contains(t, m.View(), "quit")
}
