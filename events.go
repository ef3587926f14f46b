package main

import "time"

// Event is the closed set of inputs the ViewController reacts to.
// Only types in this file implement it.
type Event interface {
	isEvent()
}

type AdvanceEvent struct{}

type RetreatEvent struct{}

type FirstEvent struct{}

type LastEvent struct{}

// JumpEvent moves to a zero-based index
type JumpEvent struct {
	Index int
}

// GestureEvent is a physical direction whose meaning depends on the
// orientation and reading direction.
type GestureEvent struct {
	Gesture Gesture
}

type ModeChangeEvent struct {
	Mode DisplayMode
}

type CycleModeEvent struct{}

type ZoomEvent struct {
	In bool
}

type RotateEvent struct {
	Clockwise bool
}

type OrientationToggleEvent struct{}

type ReadingDirectionToggleEvent struct{}

type FullscreenToggleEvent struct{}

// SlideshowToggleEvent toggles the slideshow. Zero Interval means the
// configured default.
type SlideshowToggleEvent struct {
	Interval time.Duration
}

// ViewportEvent reports the size of the drawable area
type ViewportEvent struct {
	Width  float64
	Height float64
}

// TickEvent carries the time elapsed since the previous tick
type TickEvent struct {
	Elapsed time.Duration
}

// PanEvent moves the image. A non-zero Step pans along the current pan
// axis; otherwise DX/DY are applied as is (mouse drag).
type PanEvent struct {
	DX, DY float64
	Step   float64
}

type ResetViewEvent struct{}

func (AdvanceEvent) isEvent()                {}
func (RetreatEvent) isEvent()                {}
func (FirstEvent) isEvent()                  {}
func (LastEvent) isEvent()                   {}
func (JumpEvent) isEvent()                   {}
func (GestureEvent) isEvent()                {}
func (ModeChangeEvent) isEvent()             {}
func (CycleModeEvent) isEvent()              {}
func (ZoomEvent) isEvent()                   {}
func (RotateEvent) isEvent()                 {}
func (OrientationToggleEvent) isEvent()      {}
func (ReadingDirectionToggleEvent) isEvent() {}
func (FullscreenToggleEvent) isEvent()       {}
func (SlideshowToggleEvent) isEvent()        {}
func (ViewportEvent) isEvent()               {}
func (TickEvent) isEvent()                   {}
func (PanEvent) isEvent()                    {}
func (ResetViewEvent) isEvent()              {}

// Gesture is a physical navigation direction
type Gesture int

const (
	GestureLeft Gesture = iota
	GestureRight
	GestureUp
	GestureDown
)

// Command is what a gesture resolves to
type Command int

const (
	CommandNone Command = iota
	CommandAdvance
	CommandRetreat
)

func (c Command) String() string {
	switch c {
	case CommandAdvance:
		return "advance"
	case CommandRetreat:
		return "retreat"
	default:
		return "none"
	}
}
