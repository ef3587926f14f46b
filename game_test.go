package main

import (
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGame(t *testing.T, args []string, store *StateStore) (*Game, *fakeDecoder) {
	t.Helper()
	status := ConfigLoadResult{Config: defaultConfig(), Status: "Default"}
	status.Config.Keybindings = GetDefaultKeybindings()
	status.Config.Mousebindings = GetDefaultMousebindings()

	dec := newFakeDecoder()
	g := NewGame(status, args, dec, nil, store)
	g.dispatch(ViewportEvent{Width: 400, Height: 200})
	return g, dec
}

func TestGameOpenShowsFirst(t *testing.T) {
	g, _ := newTestGame(t, nil, nil)
	require.NoError(t, g.Open(makeSources("img", 4)))

	assert.Equal(t, 0, g.GetCurrentIndex())
	assert.Equal(t, 4, g.GetTotalPagesCount())
	src, ok := g.GetCurrentSource()
	require.True(t, ok)
	assert.Equal(t, "img00.png", src.Path)
}

func TestGameOpenEmpty(t *testing.T) {
	g, _ := newTestGame(t, nil, nil)
	assert.ErrorIs(t, g.Open(nil), ErrEmptyInput)
}

func TestGameResumesSavedPosition(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	defer store.Close()

	sources := makeSources("img", 5)
	store.SavePosition(galleryKey(sources), 3)

	g, _ := newTestGame(t, nil, store)
	require.NoError(t, g.Open(sources))
	assert.Equal(t, 3, g.GetCurrentIndex())

	g.config.Resume = false
	require.NoError(t, g.Open(sources))
	assert.Equal(t, 0, g.GetCurrentIndex())
}

func TestGameSavesPositionOnMove(t *testing.T) {
	store := openTestStore(t, filepath.Join(t.TempDir(), "state.db"))
	defer store.Close()

	sources := makeSources("img", 5)
	g, _ := newTestGame(t, nil, store)
	g.config.Resume = false
	require.NoError(t, g.Open(sources))

	g.NavigateNext()
	g.NavigateNext()
	g.savePosition()

	idx, ok, err := store.Position(galleryKey(sources))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, 2, idx)
}

func TestGameNavigateClick(t *testing.T) {
	g, _ := newTestGame(t, nil, nil)
	require.NoError(t, g.Open(makeSources("img", 3)))

	g.NavigateClick(390, 100)
	assert.Equal(t, 1, g.GetCurrentIndex())

	g.NavigateClick(200, 100)
	assert.Equal(t, 1, g.GetCurrentIndex(), "centre clicks do not page")

	g.NavigateClick(5, 100)
	assert.Equal(t, 0, g.GetCurrentIndex())

	g.ToggleReadingDirection()
	g.NavigateClick(5, 100)
	assert.Equal(t, 1, g.GetCurrentIndex(), "left edge advances right-to-left")
	assert.Equal(t, "RTL", g.GetOverlayMessage())
}

func TestGameGestures(t *testing.T) {
	g, _ := newTestGame(t, nil, nil)
	require.NoError(t, g.Open(makeSources("img", 3)))

	g.NavigateGesture(GestureRight)
	g.NavigateGesture(GestureDown)
	assert.Equal(t, 2, g.GetCurrentIndex())

	g.JumpToFirst()
	assert.Equal(t, 0, g.GetCurrentIndex())
	g.JumpToLast()
	assert.Equal(t, 2, g.GetCurrentIndex())
}

func TestGameExpandToDirectory(t *testing.T) {
	dir := t.TempDir()
	createEmptyFiles(t, dir, "a.png", "b.png", "c.png", "notes.txt")
	b := filepath.Join(dir, "b.png")

	g, _ := newTestGame(t, []string{b}, nil)
	require.NoError(t, g.Open([]ImagePath{{Path: b}}))

	g.ExpandToDirectory()
	assert.Equal(t, 3, g.GetTotalPagesCount())
	assert.Equal(t, 1, g.GetCurrentIndex())
	src, _ := g.GetCurrentSource()
	assert.Equal(t, b, src.Path)
	assert.Equal(t, "Directory: 3 images", g.GetOverlayMessage())

	// a second expansion is a no-op
	g.NavigateNext()
	g.ExpandToDirectory()
	assert.Equal(t, 2, g.GetCurrentIndex())
}

func TestGameCycleSortMethodKeepsCurrent(t *testing.T) {
	dir := t.TempDir()
	createEmptyFiles(t, dir, "img10.png", "img2.png", "img1.png")

	g, _ := newTestGame(t, []string{dir}, nil)
	sources, err := collectImages([]string{dir}, SortNatural)
	require.NoError(t, err)
	require.NoError(t, g.Open(sources))
	g.NavigateNext()
	g.ZoomIn()
	g.RotateClockwise()
	zoom, rotation := g.vc.Zoom(), g.vc.Rotation()

	src, _ := g.GetCurrentSource()
	require.Equal(t, filepath.Join(dir, "img2.png"), src.Path)

	g.CycleSortMethod()
	assert.InDelta(t, zoom*math.Pow(1.09, 10), g.vc.Zoom(), 1e-9, "re-sorting keeps the zoom")
	assert.InDelta(t, rotation+20, g.vc.Rotation(), 1e-9)
	assert.Equal(t, "Sort: Simple", g.GetOverlayMessage())
	assert.Equal(t, 2, g.GetCurrentIndex(), "img1, img10, img2")
	src, _ = g.GetCurrentSource()
	assert.Equal(t, filepath.Join(dir, "img2.png"), src.Path)
}

func TestGameViewActions(t *testing.T) {
	g, _ := newTestGame(t, nil, nil)
	require.NoError(t, g.Open(makeSources("img", 3)))

	g.SetDisplayMode(FitInView)
	assert.Equal(t, FitInView, g.GetDisplayMode())
	assert.Equal(t, "fit", g.GetOverlayMessage())

	g.CycleDisplayMode()
	assert.Equal(t, FitWidth, g.GetDisplayMode())

	g.ToggleOrientation()
	assert.Equal(t, Vertical, g.GetOrientation())

	g.ToggleSlideshow()
	assert.True(t, g.IsSlideshowActive())
	assert.Equal(t, "Slideshow: 5s", g.GetOverlayMessage())
	g.ToggleSlideshow()
	assert.False(t, g.IsSlideshowActive())

	g.ZoomIn()
	assert.True(t, g.vc.Animating())
	g.ResetView()
	assert.False(t, g.vc.Animating())
	assert.Equal(t, 1.0, g.vc.Zoom())
}

func TestGamePanFollowsOrientation(t *testing.T) {
	g, _ := newTestGame(t, nil, nil)
	require.NoError(t, g.Open(makeSources("img", 2)))

	g.PanBackward()
	tr := g.vc.Transform()
	assert.Equal(t, panStep, tr.PanX)
	assert.Zero(t, tr.PanY)

	g.ToggleOrientation()
	g.PanForward()
	tr = g.vc.Transform()
	assert.Zero(t, tr.PanX)
	assert.Equal(t, -panStep, tr.PanY)

	g.PanByDelta(3, 4)
	tr = g.vc.Transform()
	assert.Equal(t, 3.0, tr.PanX)
	assert.Equal(t, -panStep+4, tr.PanY)
}

func TestGameExit(t *testing.T) {
	g, _ := newTestGame(t, nil, nil)
	require.NoError(t, g.Open(makeSources("img", 2)))

	g.Exit()
	assert.True(t, g.exiting)
}

func TestRenderStateSnapshotEquals(t *testing.T) {
	g, _ := newTestGame(t, nil, nil)

	a := NewRenderStateSnapshot(g, 800, 600)
	assert.False(t, a.Equals(nil))
	assert.True(t, a.Equals(NewRenderStateSnapshot(g, 800, 600)))
	assert.False(t, a.Equals(NewRenderStateSnapshot(g, 640, 480)), "resize")

	g.ShowOverlayMessage("hello")
	b := NewRenderStateSnapshot(g, 800, 600)
	assert.False(t, a.Equals(b), "message appeared")

	g.overlayMessageTime = time.Now().Add(-2 * overlayMessageDuration)
	c := NewRenderStateSnapshot(g, 800, 600)
	assert.False(t, b.Equals(c), "message expired")
	assert.True(t, c.Equals(NewRenderStateSnapshot(g, 800, 600)))
}
