package main

import (
	"errors"
	"image"
	"path"
	"path/filepath"
	"strings"
)

// ErrEmptyInput is returned by AddSources when an empty gallery receives no sources.
var ErrEmptyInput = errors.New("no image sources given")

type ImagePath struct {
	Path        string // Local file path or archive:entry format
	ArchivePath string // Empty for regular files, path to archive for entries
	EntryPath   string // Empty for regular files, path within archive for entries
}

// Name returns the base name of the image without its extension
func (p ImagePath) Name() string {
	name := p.Path
	if p.EntryPath != "" {
		name = p.EntryPath
	}
	base := path.Base(filepath.ToSlash(name))
	return strings.TrimSuffix(base, path.Ext(base))
}

// MaterializedImage is a decoded image plus its intrinsic size.
// It only exists while its slot is inside the gallery window.
type MaterializedImage struct {
	Source ImagePath
	Width  int
	Height int
	Size   int64 // encoded size in bytes, 0 when unknown
	Handle image.Image

	// Frames is set for animated images; Frames[0].Handle is Handle
	Frames    []AnimationFrame
	LoopCount int
}

type slotState int

const (
	slotUnmaterialized slotState = iota
	slotMaterialized
	slotFailed
)

// slot is one gallery entry. image is set only in slotMaterialized,
// err only in slotFailed.
type slot struct {
	source ImagePath
	state  slotState
	image  *MaterializedImage
	err    *DecodeError
}

// GalleryEvent is emitted every time the cursor lands on an index.
type GalleryEvent struct {
	Index int
	Image *MaterializedImage // nil when decoding failed
	Err   *DecodeError
	Move  NavigationDirection // how the cursor got here
}

// Gallery is an ordered image collection that keeps only a sliding window
// of decoded images. The window trails the cursor: besides the current item
// at most windowRadius neighbours behind the direction of travel stay
// materialized.
type Gallery struct {
	slots        []slot
	cursor       int
	windowRadius int
	decoder      Decoder
	listener     func(GalleryEvent)
}

// NewGallery creates an empty gallery
func NewGallery(decoder Decoder, windowRadius int) *Gallery {
	if windowRadius < 0 {
		windowRadius = 0
	}
	return &Gallery{
		cursor:       -1,
		windowRadius: windowRadius,
		decoder:      decoder,
	}
}

// SetListener registers the function that receives navigation events.
// Pass nil to detach.
func (g *Gallery) SetListener(fn func(GalleryEvent)) {
	g.listener = fn
}

// AddSources appends sources in display order.
func (g *Gallery) AddSources(sources []ImagePath) error {
	if len(sources) == 0 {
		if len(g.slots) == 0 {
			return ErrEmptyInput
		}
		return nil
	}
	for _, src := range sources {
		g.slots = append(g.slots, slot{source: src})
	}
	return nil
}

func (g *Gallery) Len() int {
	return len(g.slots)
}

func (g *Gallery) Cursor() int {
	return g.cursor
}

func (g *Gallery) WindowRadius() int {
	return g.windowRadius
}

// Sources returns a copy of the source list
func (g *Gallery) Sources() []ImagePath {
	sources := make([]ImagePath, len(g.slots))
	for i, s := range g.slots {
		sources[i] = s.source
	}
	return sources
}

// Source returns the source at idx
func (g *Gallery) Source(idx int) (ImagePath, bool) {
	if idx < 0 || idx >= len(g.slots) {
		return ImagePath{}, false
	}
	return g.slots[idx].source, true
}

// Current returns the materialized image at the cursor, or nil.
func (g *Gallery) Current() *MaterializedImage {
	if g.cursor < 0 || g.cursor >= len(g.slots) {
		return nil
	}
	s := &g.slots[g.cursor]
	if s.state != slotMaterialized {
		return nil
	}
	return s.image
}

// CurrentError returns the decode failure at the cursor, if any.
func (g *Gallery) CurrentError() *DecodeError {
	if g.cursor < 0 || g.cursor >= len(g.slots) {
		return nil
	}
	return g.slots[g.cursor].err
}

// MaterializedCount returns how many slots currently hold a decoded image.
func (g *Gallery) MaterializedCount() int {
	n := 0
	for i := range g.slots {
		if g.slots[i].state == slotMaterialized {
			n++
		}
	}
	return n
}

func (g *Gallery) isMaterialized(idx int) bool {
	return idx >= 0 && idx < len(g.slots) && g.slots[idx].state == slotMaterialized
}

// Advance moves to the next item. At the last item it returns nil, nil and
// the cursor does not move.
func (g *Gallery) Advance() (*MaterializedImage, error) {
	next := g.cursor + 1
	if next >= len(g.slots) {
		return nil, nil
	}
	img, derr := g.materialize(next)
	g.cursor = next
	g.evict(g.cursor - g.windowRadius - 1)
	return g.finishMove(img, derr, NavigationForward)
}

// Retreat moves to the previous item. At the first item (or with no
// current item) it returns nil, nil and the cursor does not move.
func (g *Gallery) Retreat() (*MaterializedImage, error) {
	prev := g.cursor - 1
	if prev < 0 {
		return nil, nil
	}
	img, derr := g.materialize(prev)
	g.cursor = prev
	g.evict(g.cursor + g.windowRadius + 1)
	return g.finishMove(img, derr, NavigationBackward)
}

// First jumps to index 0
func (g *Gallery) First() (*MaterializedImage, error) {
	if len(g.slots) == 0 {
		return nil, nil
	}
	return g.JumpTo(0)
}

// Last jumps to the final index
func (g *Gallery) Last() (*MaterializedImage, error) {
	if len(g.slots) == 0 {
		return nil, nil
	}
	return g.JumpTo(len(g.slots) - 1)
}

// JumpTo moves the cursor to idx. A jump breaks the contiguity of the
// window, so every other materialized slot is released afterwards.
// Out-of-range indices are a no-op.
func (g *Gallery) JumpTo(idx int) (*MaterializedImage, error) {
	if idx < 0 || idx >= len(g.slots) {
		return nil, nil
	}
	img, derr := g.materialize(idx)
	g.cursor = idx
	for i := range g.slots {
		if i != idx {
			g.evict(i)
		}
	}
	return g.finishMove(img, derr, NavigationJump)
}

// Close releases every materialized image and clears the cursor.
func (g *Gallery) Close() {
	for i := range g.slots {
		g.evict(i)
	}
	g.cursor = -1
}

func (g *Gallery) finishMove(img *MaterializedImage, derr *DecodeError, move NavigationDirection) (*MaterializedImage, error) {
	if g.listener != nil {
		g.listener(GalleryEvent{Index: g.cursor, Image: img, Err: derr, Move: move})
	}
	if derr != nil {
		return nil, derr
	}
	return img, nil
}

// materialize decodes the slot at idx if needed. A failed slot is retried.
func (g *Gallery) materialize(idx int) (*MaterializedImage, *DecodeError) {
	s := &g.slots[idx]
	if s.state == slotMaterialized {
		return s.image, nil
	}

	img, err := g.decoder.Decode(s.source)
	if err != nil {
		var derr *DecodeError
		if !errors.As(err, &derr) {
			derr = &DecodeError{Source: s.source, Err: err}
		}
		s.state = slotFailed
		s.image = nil
		s.err = derr
		debugLog("Materialize failed [%d] %s: %v", idx+1, s.source.Path, err)
		return nil, derr
	}

	s.state = slotMaterialized
	s.image = img
	s.err = nil
	debugLog("Materialized [%d] %s (%dx%d)", idx+1, s.source.Path, img.Width, img.Height)
	return img, nil
}

// evict returns the slot at idx to its unmaterialized form.
func (g *Gallery) evict(idx int) {
	if idx < 0 || idx >= len(g.slots) {
		return
	}
	s := &g.slots[idx]
	switch s.state {
	case slotMaterialized:
		g.decoder.Release(s.image)
		debugLog("Evicted [%d] %s", idx+1, s.source.Path)
	case slotUnmaterialized:
		return
	}
	s.state = slotUnmaterialized
	s.image = nil
	s.err = nil
}
