package testing_test

import (
	"testing"

	"github.com/go-drift/weave/pkg/core"
	"github.com/go-drift/weave/pkg/events"
	"github.com/go-drift/weave/pkg/graphics"
	weavetest "github.com/go-drift/weave/pkg/testing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type journal struct {
	calls []string
}

func (j *journal) on(name string) events.Handler {
	return events.Listen(func(*events.Event) { j.calls = append(j.calls, name) })
}

func TestTap(t *testing.T) {
	tester := weavetest.NewTester(t)
	var j journal
	require.NoError(t, tester.Render(core.Node("Column", nil,
		box("button", 100, 40, core.Props{
			"onPointerDown": j.on("down"),
			"onPointerUp":   j.on("up"),
			"onClick":       j.on("click"),
		}),
	)))

	require.NoError(t, tester.Tap(weavetest.ByKey("button")))
	assert.Equal(t, []string{"down", "up", "click"}, j.calls)
	assert.Equal(t, "button", tester.Runtime().Focused().Key())
}

func TestTap_Errors(t *testing.T) {
	tester := weavetest.NewTester(t)
	require.NoError(t, tester.Render(core.Node("Column", nil, box("empty", 0, 0, nil))))

	err := tester.Tap(weavetest.ByKey("missing"))
	assert.EqualError(t, err, `Tap: finder matched no widgets: ByKey("missing")`)
	err = tester.Tap(weavetest.ByKey("empty"))
	assert.EqualError(t, err, `Tap: widget has no size: ByKey("empty")`)
}

func TestHoverAndLeave(t *testing.T) {
	tester := weavetest.NewTester(t)
	var j journal
	require.NoError(t, tester.Render(core.Node("Column", nil,
		box("link", 80, 20, core.Props{
			"cursor":         "pointer",
			"onPointerEnter": j.on("enter"),
			"onPointerLeave": j.on("leave"),
		}),
	)))

	require.NoError(t, tester.Hover(weavetest.ByKey("link")))
	assert.Equal(t, "pointer", tester.Cursor())
	assert.Equal(t, "link", tester.Runtime().Hovered().Key())

	tester.Leave()
	assert.Nil(t, tester.Runtime().Hovered())
	assert.Equal(t, []string{"enter", "leave"}, j.calls)
}

func TestDragFrom(t *testing.T) {
	tester := weavetest.NewTester(t)
	var moves []graphics.Offset
	require.NoError(t, tester.Render(core.Node("Column", nil,
		box("track", 200, 50, core.Props{
			"onPointerMove": events.Listen(func(e *events.Event) {
				moves = append(moves, graphics.Offset{X: e.X, Y: e.Y})
			}),
		}),
	)))

	tester.DragFrom(graphics.Offset{X: 10, Y: 10}, graphics.Offset{X: 50, Y: 5})
	assert.Equal(t, []graphics.Offset{{X: 60, Y: 15}}, moves)
}

func TestPressKey(t *testing.T) {
	tester := weavetest.NewTester(t)
	var keys []string
	require.NoError(t, tester.Render(core.Node("Column", nil,
		box("field", 100, 20, core.Props{
			"onKeyDown": events.Listen(func(e *events.Event) {
				if e.Modifiers.Shift() {
					keys = append(keys, "shift+"+e.Key)
					return
				}
				keys = append(keys, e.Key)
			}),
		}),
	)))

	tester.TapAt(graphics.Offset{X: 5, Y: 5})
	assert.True(t, tester.PressKey("a", 0))
	assert.True(t, tester.PressKey("b", events.ModShift))
	assert.Equal(t, []string{"a", "shift+b"}, keys)
}
