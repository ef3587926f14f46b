package main

import (
	"math"
	"time"

	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	defaultAnimationFrames   = 10
	defaultAnimationDuration = 200 * time.Millisecond
	defaultZoomFactor        = 0.09
	defaultRotateStep        = 2.0 // degrees per frame
)

// frameAnimation is a timeline that runs from frame 0 to frames over a fixed
// duration. Callers derive their value from the frame reached, so a long
// tick that skips frames still lands on the same result.
type frameAnimation struct {
	tween  *gween.Tween
	frames int
}

func newFrameAnimation(frames int, duration time.Duration) *frameAnimation {
	if frames < 1 {
		frames = 1
	}
	return &frameAnimation{
		tween:  gween.New(0, float32(frames), float32(duration.Seconds()), ease.Linear),
		frames: frames,
	}
}

// update advances the timeline by dt and returns the whole frame reached.
func (a *frameAnimation) update(dt time.Duration) (frame int, done bool) {
	v, done := a.tween.Update(float32(dt.Seconds()))
	if done {
		return a.frames, true
	}
	frame = int(v)
	if frame > a.frames {
		frame = a.frames
	}
	return frame, false
}

// zoomRun is one zoom gesture in flight. base is the zoom accumulator
// before the gesture started.
type zoomRun struct {
	anim   *frameAnimation
	base   float64
	factor float64
}

func newZoomRun(base float64, zoomIn bool, zoomFactor float64, frames int, duration time.Duration) *zoomRun {
	factor := 1 + zoomFactor
	if !zoomIn {
		factor = 1 - zoomFactor
	}
	return &zoomRun{
		anim:   newFrameAnimation(frames, duration),
		base:   base,
		factor: factor,
	}
}

// valueAt returns the accumulator after frame ticks
func (r *zoomRun) valueAt(frame int) float64 {
	return r.base * math.Pow(r.factor, float64(frame))
}

// rotateRun is one rotation gesture in flight
type rotateRun struct {
	anim *frameAnimation
	base float64
	step float64 // signed degrees per frame
}

func newRotateRun(base float64, clockwise bool, step float64, frames int, duration time.Duration) *rotateRun {
	if !clockwise {
		step = -step
	}
	return &rotateRun{
		anim: newFrameAnimation(frames, duration),
		base: base,
		step: step,
	}
}

func (r *rotateRun) valueAt(frame int) float64 {
	return r.base + r.step*float64(frame)
}

// normalizeDegrees maps an angle into [0, 360)
func normalizeDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
