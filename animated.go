package main

import (
	"bytes"
	"fmt"
	"image"
	"image/gif"
	"time"

	"golang.org/x/image/draw"
)

// minFrameDelay is what a GIF frame with a zero or near-zero delay gets,
// the same floor browsers apply.
const minFrameDelay = 100 * time.Millisecond

// AnimationFrame is one uploaded frame of an animated image
type AnimationFrame struct {
	Handle image.Image
	Delay  time.Duration
}

// animatedImage is a decoded multi-frame GIF. It behaves as its first frame
// wherever a plain image.Image is expected.
type animatedImage struct {
	image.Image
	frames    []image.Image // fully composited, canvas sized
	delays    []time.Duration
	loopCount int // image/gif semantics: 0 forever, -1 once, n plays n+1 times
}

func isGIF(data []byte) bool {
	return bytes.HasPrefix(data, []byte("GIF87a")) || bytes.HasPrefix(data, []byte("GIF89a"))
}

// decodeGIF decodes every frame of a GIF. Single-frame files come back as a
// plain image.
func decodeGIF(data []byte) (image.Image, error) {
	g, err := gif.DecodeAll(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	if len(g.Image) == 0 {
		return nil, fmt.Errorf("gif has no frames")
	}
	if len(g.Image) == 1 {
		return g.Image[0], nil
	}

	frames := compositeGIF(g)
	delays := make([]time.Duration, len(frames))
	for i := range delays {
		if i < len(g.Delay) {
			delays[i] = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		if delays[i] <= 10*time.Millisecond {
			delays[i] = minFrameDelay
		}
	}
	return &animatedImage{Image: frames[0], frames: frames, delays: delays, loopCount: g.LoopCount}, nil
}

// compositeGIF renders each frame onto the logical screen, applying the
// disposal method of the frame before it.
func compositeGIF(g *gif.GIF) []image.Image {
	bounds := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if bounds.Empty() {
		for _, frame := range g.Image {
			bounds = bounds.Union(frame.Bounds())
		}
	}

	canvas := image.NewRGBA(bounds)
	frames := make([]image.Image, 0, len(g.Image))
	for i, frame := range g.Image {
		disposal := byte(gif.DisposalNone)
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}

		var saved *image.RGBA
		if disposal == gif.DisposalPrevious {
			saved = cloneRGBA(canvas)
		}

		draw.Draw(canvas, frame.Bounds(), frame, frame.Bounds().Min, draw.Over)
		frames = append(frames, cloneRGBA(canvas))

		switch disposal {
		case gif.DisposalBackground:
			draw.Draw(canvas, frame.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case gif.DisposalPrevious:
			canvas = saved
		}
	}
	return frames
}

func cloneRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	copy(dst.Pix, src.Pix)
	return dst
}

// framePlayer steps through the frames of an animated image as time passes
type framePlayer struct {
	delays    []time.Duration
	index     int
	elapsed   time.Duration
	forever   bool
	playsLeft int
	stopped   bool
}

func newFramePlayer(frames []AnimationFrame, loopCount int) framePlayer {
	p := framePlayer{delays: make([]time.Duration, len(frames))}
	for i, f := range frames {
		p.delays[i] = f.Delay
		if p.delays[i] <= 0 {
			p.delays[i] = minFrameDelay
		}
	}
	switch {
	case loopCount == 0:
		p.forever = true
	case loopCount < 0:
		p.playsLeft = 1
	default:
		p.playsLeft = loopCount + 1
	}
	return p
}

// Frame returns the index of the frame to show
func (p *framePlayer) Frame() int {
	return p.index
}

// advance moves time forward and reports whether the frame changed. After
// the last play the player holds the final frame.
func (p *framePlayer) advance(dt time.Duration) bool {
	if len(p.delays) < 2 || p.stopped {
		return false
	}

	p.elapsed += dt
	changed := false
	for p.elapsed >= p.delays[p.index] {
		if p.index == len(p.delays)-1 && !p.forever {
			p.playsLeft--
			if p.playsLeft <= 0 {
				p.stopped = true
				p.elapsed = 0
				break
			}
		}
		p.elapsed -= p.delays[p.index]
		p.index = (p.index + 1) % len(p.delays)
		changed = true
	}
	return changed
}
