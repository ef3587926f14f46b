package main

import (
	"bytes"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/mattn/go-runewidth"
	"golang.org/x/image/font/gofont/goregular"
)

var (
	errorFill   = color.RGBA{120, 30, 30, 255}
	errorBorder = color.RGBA{255, 255, 255, 255}
)

const errorBorderWidth = 3

// Global font source for error image generation
var globalFontSource *text.GoTextFaceSource

// InitGraphics initializes the global font source for text rendering
func InitGraphics() error {
	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		return err
	}
	globalFontSource = s
	return nil
}

// DrawText draws text with specified position and color
func DrawText(screen *ebiten.Image, textString string, font *text.GoTextFace, x, y float64, textColor color.RGBA) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(textColor)
	text.Draw(screen, textString, font, op)
}

// DrawFilledRect draws filled rectangles with float64 coordinates
func DrawFilledRect(screen *ebiten.Image, x, y, w, h float64, bgColor color.RGBA) {
	vector.DrawFilledRect(screen, float32(x), float32(y), float32(w), float32(h), bgColor, false)
}

// CreateErrorImage creates a placeholder for an image that failed to decode.
// Without a font source only the framed box is drawn.
func CreateErrorImage(width, height int, name, errorMsg string) *ebiten.Image {
	if width <= 0 || height <= 0 {
		width, height = 400, 300
	}

	img := ebiten.NewImage(width, height)
	img.Fill(errorFill)

	w, h := float64(width), float64(height)
	DrawFilledRect(img, 0, 0, w, errorBorderWidth, errorBorder)
	DrawFilledRect(img, 0, h-errorBorderWidth, w, errorBorderWidth, errorBorder)
	DrawFilledRect(img, 0, 0, errorBorderWidth, h, errorBorder)
	DrawFilledRect(img, w-errorBorderWidth, 0, errorBorderWidth, h, errorBorder)

	if globalFontSource == nil {
		return img
	}

	face := &text.GoTextFace{
		Source: globalFontSource,
		Size:   20.0,
	}

	// roughly 10px per column at this size
	maxCols := (width - 20) / 10
	lines := []string{
		"ERROR",
		truncateColumns("File: "+name, maxCols),
		truncateColumns("Reason: "+errorMsg, maxCols),
	}
	for i, line := range lines {
		DrawText(img, line, face, 10, float64(30+30*i), errorBorder)
	}

	return img
}

// truncateColumns shortens s to at most cols display columns, counting
// wide (CJK) runes as two.
func truncateColumns(s string, cols int) string {
	if cols <= 3 {
		return runewidth.Truncate(s, max(cols, 0), "")
	}
	return runewidth.Truncate(s, cols, "...")
}
