package main

import (
	"errors"
	"fmt"
	"image/color"
	"log"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/hajimehoshi/ebiten/v2"
)

// panStep is the keyboard pan distance in pixels
const panStep = 50.0

// Game is the ebiten entry point. It translates input into view controller
// calls and exposes the read-only state the renderer draws from.
type Game struct {
	vc           *ViewController
	renderer     *Renderer
	inputHandler *InputHandler
	decoder      Decoder
	preload      *PreloadManager // nil when preloading is disabled
	store        *StateStore     // nil when state cannot be persisted

	config       Config
	configStatus ConfigLoadResult

	keybindingManager   *KeybindingManager
	mousebindingManager *MousebindingManager

	args       []string // command line sources, re-collected on sort change
	sortMethod int
	expanded   bool // single file expanded to its directory
	stateKey   string
	savedIndex int

	showHelp           bool
	showInfo           bool
	overlayMessage     string
	overlayMessageTime time.Time

	layoutW, layoutH     int
	savedWinW, savedWinH int
	exiting              bool
}

// NewGame wires the viewer together. preload and store may be nil.
func NewGame(status ConfigLoadResult, args []string, decoder Decoder, preload *PreloadManager, store *StateStore) *Game {
	g := &Game{
		decoder:      decoder,
		preload:      preload,
		store:        store,
		config:       status.Config,
		configStatus: status,
		args:         args,
		sortMethod:   status.Config.SortMethod,
		savedIndex:   -1,
	}

	g.keybindingManager = NewKeybindingManager(g.config.Keybindings)
	g.mousebindingManager = NewMousebindingManager(g.config.Mousebindings, g.config.Mouse)
	g.inputHandler = NewInputHandler(g, g, g.keybindingManager, g.mousebindingManager)
	g.renderer = NewRenderer(g)

	// a nil *PreloadManager must not end up in a non-nil interface
	var prefetch Prefetcher
	if preload != nil {
		prefetch = preload
	}
	g.vc = NewViewController(g.renderer, prefetch, g.config.ViewOptions())
	return g
}

// Open shows sources, resuming at the saved position when enabled
func (g *Game) Open(sources []ImagePath) error {
	start := -1
	if g.config.Resume && g.store != nil {
		idx, ok, err := g.store.Position(galleryKey(sources))
		if err != nil {
			log.Printf("Warning: Failed to read saved position: %v", err)
		} else if ok {
			debugLog("Resuming at index %d", idx)
			start = idx
		}
	}
	return g.showSources(sources, start)
}

// showSources replaces the gallery. A decode failure at the start index is
// reported but still leaves the gallery open.
func (g *Game) showSources(sources []ImagePath, index int) error {
	gallery := NewGallery(g.decoder, g.config.WindowRadius)
	if err := gallery.AddSources(sources); err != nil {
		return err
	}

	g.stateKey = galleryKey(sources)
	g.savedIndex = -1

	err := g.vc.SetGalleryAt(gallery, index)
	var derr *DecodeError
	if errors.As(err, &derr) {
		return nil
	}
	return err
}

// StartSlideshow starts the slideshow at the given interval
func (g *Game) StartSlideshow(interval time.Duration) {
	g.dispatch(SlideshowToggleEvent{Interval: interval})
}

// ApplyStartupFullscreen switches to fullscreen when configured
func (g *Game) ApplyStartupFullscreen() {
	if g.config.Fullscreen {
		g.savedWinW, g.savedWinH = g.config.WindowWidth, g.config.WindowHeight
		g.vc.SetFullscreen(true)
	}
}

func (g *Game) Update() error {
	if g.exiting {
		return ebiten.Termination
	}

	if g.layoutW > 0 && g.layoutH > 0 {
		g.dispatch(ViewportEvent{Width: float64(g.layoutW), Height: float64(g.layoutH)})
	}

	if g.inputHandler.HandleInput() {
		g.renderer.Invalidate()
	}
	if g.exiting {
		return ebiten.Termination
	}

	elapsed := time.Second / time.Duration(ebiten.TPS())
	g.dispatch(TickEvent{Elapsed: elapsed})
	g.renderer.Tick(elapsed)
	g.savePosition()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.renderer.Draw(screen)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.layoutW, g.layoutH = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

// dispatch forwards an event and logs what went wrong. Decode failures have
// already been shown on the surface by then.
func (g *Game) dispatch(ev Event) {
	err := g.vc.Dispatch(ev)
	if err == nil {
		return
	}
	var derr *DecodeError
	if errors.As(err, &derr) {
		debugLog("Decode failure shown: %v", derr)
		return
	}
	log.Printf("Warning: %T failed: %v", ev, err)
}

// savePosition records the cursor when it moved. The store debounces writes.
func (g *Game) savePosition() {
	if g.store == nil {
		return
	}
	gallery := g.vc.Gallery()
	if gallery == nil || gallery.Cursor() < 0 || gallery.Cursor() == g.savedIndex {
		return
	}
	g.savedIndex = gallery.Cursor()
	g.store.SavePosition(g.stateKey, g.savedIndex)
}

// saveCurrentWindowSize stores the window size, or the pre-fullscreen size
func (g *Game) saveCurrentWindowSize() {
	if g.store == nil {
		return
	}
	w, h := ebiten.WindowSize()
	if g.vc.IsFullscreen() {
		w, h = g.savedWinW, g.savedWinH
	}
	if err := g.store.SaveWindowSize(w, h); err != nil {
		log.Printf("Error: Failed to save window size: %v", err)
	}
}

// InputActions implementation

func (g *Game) Exit() {
	if g.preload != nil {
		s := g.preload.GetStats()
		debugLog("Preload stats: loaded=%d failed=%d hits=%d", s.LoadedCount, s.FailedCount, s.HitCount)
	}
	g.savePosition()
	g.saveCurrentWindowSize()
	g.exiting = true
}

func (g *Game) ToggleHelp() {
	g.showHelp = !g.showHelp
}

func (g *Game) ToggleInfo() {
	g.showInfo = !g.showInfo
}

func (g *Game) ToggleFullscreen() {
	if !g.vc.IsFullscreen() {
		g.savedWinW, g.savedWinH = ebiten.WindowSize()
		g.dispatch(FullscreenToggleEvent{})
		return
	}

	g.dispatch(FullscreenToggleEvent{})
	if g.savedWinW > 0 && g.savedWinH > 0 {
		ebiten.SetWindowSize(g.savedWinW, g.savedWinH)
	}
}

func (g *Game) ResetWindowSize() {
	if g.vc.IsFullscreen() {
		return
	}
	ebiten.SetWindowSize(g.config.WindowWidth, g.config.WindowHeight)
	g.ShowOverlayMessage(fmt.Sprintf("Window: %dx%d", g.config.WindowWidth, g.config.WindowHeight))
}

func (g *Game) NavigateNext() {
	g.dispatch(AdvanceEvent{})
}

func (g *Game) NavigatePrevious() {
	g.dispatch(RetreatEvent{})
}

func (g *Game) NavigateGesture(gesture Gesture) {
	g.dispatch(GestureEvent{Gesture: gesture})
}

func (g *Game) JumpToFirst() {
	g.dispatch(FirstEvent{})
}

func (g *Game) JumpToLast() {
	g.dispatch(LastEvent{})
}

// NavigateClick pages when the click lands in a nav region of the layout
func (g *Game) NavigateClick(x, y float64) {
	layout := g.vc.Layout()
	switch {
	case layout.Forward.Contains(x, y):
		g.dispatch(AdvanceEvent{})
	case layout.Backward.Contains(x, y):
		g.dispatch(RetreatEvent{})
	}
}

// ExpandToDirectory replaces a single opened file with every image in its
// directory, keeping that file selected.
func (g *Game) ExpandToDirectory() {
	gallery := g.vc.Gallery()
	if g.expanded || gallery == nil || gallery.Len() != 1 {
		return
	}
	current, ok := gallery.Source(0)
	if !ok || current.ArchivePath != "" {
		return
	}

	sources, err := collectImagesFromSameDirectory(current.Path, g.sortMethod)
	if err != nil {
		log.Printf("Error: Failed to expand directory: %v", err)
		g.ShowOverlayMessage("Directory scan failed")
		return
	}
	if len(sources) <= 1 {
		g.ShowOverlayMessage("No other images in directory")
		return
	}

	if err := g.showSources(sources, indexOfSource(sources, current)); err != nil {
		log.Printf("Error: Failed to open directory: %v", err)
		return
	}
	g.expanded = true
	g.ShowOverlayMessage(fmt.Sprintf("Directory: %s images", humanize.Comma(int64(len(sources)))))
}

func (g *Game) SetDisplayMode(mode DisplayMode) {
	g.dispatch(ModeChangeEvent{Mode: mode})
	g.ShowOverlayMessage(mode.String())
}

func (g *Game) CycleDisplayMode() {
	g.dispatch(CycleModeEvent{})
	g.ShowOverlayMessage(g.vc.DisplayMode().String())
}

func (g *Game) ToggleOrientation() {
	g.dispatch(OrientationToggleEvent{})
	g.ShowOverlayMessage(g.vc.Orientation().String())
}

func (g *Game) ToggleReadingDirection() {
	g.dispatch(ReadingDirectionToggleEvent{})
	g.ShowOverlayMessage(g.vc.ReadingDirection().String())
}

func (g *Game) ToggleSlideshow() {
	g.dispatch(SlideshowToggleEvent{})
	if g.vc.SlideshowActive() {
		g.ShowOverlayMessage(fmt.Sprintf("Slideshow: %v", g.vc.SlideshowInterval()))
	} else {
		g.ShowOverlayMessage("Slideshow stopped")
	}
}

// CycleSortMethod re-collects the sources in the next sort order and keeps
// the current image selected.
func (g *Game) CycleSortMethod() {
	gallery := g.vc.Gallery()
	if gallery == nil {
		return
	}
	current, _ := gallery.Source(gallery.Cursor())

	next := (g.sortMethod + 1) % len(GetAllSortStrategies())
	var sources []ImagePath
	var err error
	if g.expanded {
		sources, err = collectImagesFromSameDirectory(current.Path, next)
	} else {
		sources, err = collectImages(g.args, next)
	}
	if err != nil {
		log.Printf("Error: Failed to re-sort images: %v", err)
		return
	}

	if err := g.showSources(sources, indexOfSource(sources, current)); err != nil {
		log.Printf("Error: Failed to reopen images: %v", err)
		return
	}
	g.sortMethod = next
	g.ShowOverlayMessage("Sort: " + getSortMethodName(next))
}

func (g *Game) ZoomIn() {
	g.dispatch(ZoomEvent{In: true})
}

func (g *Game) ZoomOut() {
	g.dispatch(ZoomEvent{In: false})
}

func (g *Game) RotateClockwise() {
	g.dispatch(RotateEvent{Clockwise: true})
}

func (g *Game) RotateCounterClockwise() {
	g.dispatch(RotateEvent{Clockwise: false})
}

func (g *Game) ResetView() {
	g.dispatch(ResetViewEvent{})
}

func (g *Game) PanForward() {
	g.dispatch(PanEvent{Step: -panStep})
}

func (g *Game) PanBackward() {
	g.dispatch(PanEvent{Step: panStep})
}

func (g *Game) PanByDelta(deltaX, deltaY float64) {
	g.dispatch(PanEvent{DX: deltaX, DY: deltaY})
}

func (g *Game) ShowOverlayMessage(message string) {
	g.overlayMessage = message
	g.overlayMessageTime = time.Now()
}

// RenderState and InputState implementation

func (g *Game) GetCurrentIndex() int {
	if gallery := g.vc.Gallery(); gallery != nil {
		return gallery.Cursor()
	}
	return 0
}

func (g *Game) GetTotalPagesCount() int {
	if gallery := g.vc.Gallery(); gallery != nil {
		return gallery.Len()
	}
	return 0
}

func (g *Game) GetCurrentSource() (ImagePath, bool) {
	gallery := g.vc.Gallery()
	if gallery == nil {
		return ImagePath{}, false
	}
	return gallery.Source(gallery.Cursor())
}

func (g *Game) GetDisplayMode() DisplayMode {
	return g.vc.DisplayMode()
}

func (g *Game) GetOrientation() Orientation {
	return g.vc.Orientation()
}

func (g *Game) GetReadingDirection() ReadingDirection {
	return g.vc.ReadingDirection()
}

func (g *Game) IsSlideshowActive() bool {
	return g.vc.SlideshowActive()
}

func (g *Game) GetBackgroundColor() color.RGBA {
	return g.config.Background()
}

func (g *Game) IsShowingHelp() bool {
	return g.showHelp
}

func (g *Game) IsShowingInfo() bool {
	return g.showInfo
}

func (g *Game) GetOverlayMessage() string {
	return g.overlayMessage
}

func (g *Game) GetOverlayMessageTime() time.Time {
	return g.overlayMessageTime
}

func (g *Game) GetFontSize() float64 {
	return g.config.FontSize
}

func (g *Game) GetConfigStatus() ConfigLoadResult {
	return g.configStatus
}

func (g *Game) GetKeybindings() map[string][]string {
	return g.keybindingManager.GetKeybindings()
}

func (g *Game) GetMousebindings() map[string][]string {
	return g.mousebindingManager.GetMousebindings()
}

// indexOfSource returns the position of src in sources, or -1
func indexOfSource(sources []ImagePath, src ImagePath) int {
	for i, s := range sources {
		if s.Path == src.Path {
			return i
		}
	}
	return -1
}
