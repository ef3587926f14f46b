package main

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	testRed  = color.RGBA{255, 0, 0, 255}
	testBlue = color.RGBA{0, 0, 255, 255}
)

// encodeTwoFrameGIF writes a 4x4 red frame followed by a 2x2 blue patch in
// the bottom right corner.
func encodeTwoFrameGIF(t *testing.T, delays []int, loopCount int) []byte {
	t.Helper()
	palette := color.Palette{color.RGBA{0, 0, 0, 255}, testRed, testBlue}

	first := image.NewPaletted(image.Rect(0, 0, 4, 4), palette)
	for i := range first.Pix {
		first.Pix[i] = 1
	}
	second := image.NewPaletted(image.Rect(2, 2, 4, 4), palette)
	for i := range second.Pix {
		second.Pix[i] = 2
	}

	var buf bytes.Buffer
	require.NoError(t, gif.EncodeAll(&buf, &gif.GIF{
		Image:     []*image.Paletted{first, second},
		Delay:     delays,
		Disposal:  []byte{gif.DisposalNone, gif.DisposalNone},
		LoopCount: loopCount,
	}))
	return buf.Bytes()
}

// recordingTextures hands images back unchanged and counts frees
type recordingTextures struct {
	uploaded int
	freed    []image.Image
}

func (r *recordingTextures) Upload(img image.Image) image.Image {
	r.uploaded++
	return img
}

func (r *recordingTextures) Free(handle image.Image) {
	r.freed = append(r.freed, handle)
}

func TestDecodeAnimatedGIF(t *testing.T) {
	img, err := decodeBytes(encodeTwoFrameGIF(t, []int{0, 25}, 0))
	require.NoError(t, err)

	anim, ok := img.(*animatedImage)
	require.True(t, ok, "multi-frame gif keeps its frames")
	require.Len(t, anim.frames, 2)
	assert.Equal(t, image.Rect(0, 0, 4, 4), anim.Bounds())
	assert.Equal(t, []time.Duration{minFrameDelay, 250 * time.Millisecond}, anim.delays)
	assert.Equal(t, 0, anim.loopCount)

	// the second frame is drawn over the first
	assert.Equal(t, testRed, anim.frames[0].At(3, 3))
	assert.Equal(t, testRed, anim.frames[1].At(0, 0))
	assert.Equal(t, testBlue, anim.frames[1].At(3, 3))
	assert.Equal(t, image.Rect(0, 0, 4, 4), anim.frames[1].Bounds())
}

func TestDecodeSingleFrameGIF(t *testing.T) {
	palette := color.Palette{testRed}
	var buf bytes.Buffer
	require.NoError(t, gif.Encode(&buf, image.NewPaletted(image.Rect(0, 0, 3, 2), palette), nil))

	img, err := decodeBytes(buf.Bytes())
	require.NoError(t, err)
	_, animated := img.(*animatedImage)
	assert.False(t, animated)
	assert.Equal(t, image.Rect(0, 0, 3, 2), img.Bounds())
}

func TestCompositeGIFDisposal(t *testing.T) {
	palette := color.Palette{color.Transparent, testRed, testBlue}
	full := image.NewPaletted(image.Rect(0, 0, 2, 1), palette)
	full.Pix[0], full.Pix[1] = 1, 1
	patch := image.NewPaletted(image.Rect(1, 0, 2, 1), palette)
	patch.Pix[0] = 2
	empty := image.NewPaletted(image.Rect(0, 0, 1, 1), palette)

	tests := []struct {
		name     string
		disposal byte
		want     color.Color // pixel (1,0) of the third frame
	}{
		{"none keeps the patch", gif.DisposalNone, testBlue},
		{"background clears the patch", gif.DisposalBackground, color.RGBA{}},
		{"previous restores the frame below", gif.DisposalPrevious, testRed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			frames := compositeGIF(&gif.GIF{
				Image:    []*image.Paletted{full, patch, empty},
				Disposal: []byte{gif.DisposalNone, tt.disposal, gif.DisposalNone},
				Config:   image.Config{Width: 2, Height: 1},
			})
			require.Len(t, frames, 3)
			assert.Equal(t, testBlue, frames[1].At(1, 0))
			assert.Equal(t, tt.want, frames[2].At(1, 0))
		})
	}
}

func TestEbitenDecoderUploadsAndReleasesEveryFrame(t *testing.T) {
	path := filepath.Join(t.TempDir(), "anim.gif")
	require.NoError(t, os.WriteFile(path, encodeTwoFrameGIF(t, []int{5, 5}, -1), 0o644))

	textures := &recordingTextures{}
	dec := &EbitenDecoder{loader: fileLoader{}, textures: textures}

	img, err := dec.Decode(ImagePath{Path: path})
	require.NoError(t, err)
	require.Len(t, img.Frames, 2)
	assert.Equal(t, 2, textures.uploaded)
	assert.Same(t, img.Frames[0].Handle, img.Handle)
	assert.Equal(t, 50*time.Millisecond, img.Frames[1].Delay)
	assert.Equal(t, -1, img.LoopCount)
	assert.Equal(t, 4, img.Width)

	dec.Release(img)
	require.Len(t, textures.freed, 2)
	assert.Same(t, img.Frames[0].Handle, textures.freed[0])
	assert.Same(t, img.Frames[1].Handle, textures.freed[1])
}

func TestEbitenDecoderStillImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "still.png")
	require.NoError(t, os.WriteFile(path, encodePNG(t, 6, 4), 0o644))

	textures := &recordingTextures{}
	dec := &EbitenDecoder{loader: fileLoader{}, textures: textures}

	img, err := dec.Decode(ImagePath{Path: path})
	require.NoError(t, err)
	assert.Empty(t, img.Frames)
	dec.Release(img)
	assert.Equal(t, []image.Image{img.Handle}, textures.freed)
}

func testFrames(delays ...time.Duration) []AnimationFrame {
	frames := make([]AnimationFrame, len(delays))
	for i, d := range delays {
		frames[i] = AnimationFrame{Delay: d}
	}
	return frames
}

func TestFramePlayerLoopsForever(t *testing.T) {
	p := newFramePlayer(testFrames(100*time.Millisecond, 200*time.Millisecond), 0)

	assert.False(t, p.advance(50*time.Millisecond))
	assert.Equal(t, 0, p.Frame())
	assert.True(t, p.advance(50*time.Millisecond))
	assert.Equal(t, 1, p.Frame())
	assert.True(t, p.advance(200*time.Millisecond))
	assert.Equal(t, 0, p.Frame(), "wraps around")

	// a long tick skips whole frames
	assert.True(t, p.advance(time.Second+100*time.Millisecond))
	assert.Equal(t, 1, p.Frame())
}

func TestFramePlayerStopsOnLastFrame(t *testing.T) {
	tests := []struct {
		name      string
		loopCount int
		plays     int
	}{
		{"play once", -1, 1},
		{"one extra loop", 1, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newFramePlayer(testFrames(100*time.Millisecond, 100*time.Millisecond), tt.loopCount)
			p.advance(time.Duration(tt.plays)*200*time.Millisecond - time.Millisecond)
			assert.Equal(t, 1, p.Frame())

			p.advance(time.Hour)
			assert.Equal(t, 1, p.Frame(), "holds the last frame")
			assert.False(t, p.advance(time.Second))
		})
	}
}

func TestFramePlayerStillImage(t *testing.T) {
	var zero framePlayer
	assert.False(t, zero.advance(time.Second))
	assert.Equal(t, 0, zero.Frame())

	p := newFramePlayer(testFrames(0), 0)
	assert.False(t, p.advance(time.Second))
}
