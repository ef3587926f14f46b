package main

import (
	"archive/zip"
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/bodgit/sevenzip"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/nfnt/resize"
	"github.com/nwaples/rardecode"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

// DecodeError reports a source that could not be materialized.
type DecodeError struct {
	Source ImagePath
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decoding %s: %v", e.Source.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Decoder turns a source into a MaterializedImage and releases it again.
type Decoder interface {
	Decode(src ImagePath) (*MaterializedImage, error)
	Release(img *MaterializedImage)
}

// SourceLoader produces the CPU-side decoded image for a source together
// with its encoded size.
type SourceLoader interface {
	Load(src ImagePath) (image.Image, int64, error)
}

// fileLoader reads sources straight from disk or archives
type fileLoader struct{}

func (fileLoader) Load(src ImagePath) (image.Image, int64, error) {
	data, err := readSource(src)
	if err != nil {
		return nil, 0, err
	}
	img, err := decodeBytes(data)
	if err != nil {
		return nil, 0, err
	}
	return img, int64(len(data)), nil
}

// textureStore moves images to and from the GPU
type textureStore interface {
	Upload(img image.Image) image.Image
	Free(handle image.Image)
}

type ebitenTextures struct{}

func (ebitenTextures) Upload(img image.Image) image.Image {
	return ebiten.NewImageFromImage(img)
}

func (ebitenTextures) Free(handle image.Image) {
	if eimg, ok := handle.(*ebiten.Image); ok && eimg != nil {
		eimg.Deallocate()
	}
}

// EbitenDecoder uploads loaded images to GPU textures. Images larger than
// maxTextureSize on either side are downscaled before upload; the reported
// Width/Height stay the intrinsic ones. Animated GIFs upload every frame.
type EbitenDecoder struct {
	loader         SourceLoader
	maxTextureSize int
	textures       textureStore
}

// NewEbitenDecoder creates a decoder backed by loader
func NewEbitenDecoder(loader SourceLoader, maxTextureSize int) *EbitenDecoder {
	return &EbitenDecoder{
		loader:         loader,
		maxTextureSize: maxTextureSize,
		textures:       ebitenTextures{},
	}
}

func (d *EbitenDecoder) Decode(src ImagePath) (*MaterializedImage, error) {
	img, size, err := d.loader.Load(src)
	if err != nil {
		return nil, &DecodeError{Source: src, Err: err}
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= 0 || h <= 0 {
		return nil, &DecodeError{Source: src, Err: fmt.Errorf("empty image %dx%d", w, h)}
	}

	m := &MaterializedImage{
		Source: src,
		Width:  w,
		Height: h,
		Size:   size,
	}

	if anim, ok := img.(*animatedImage); ok {
		m.Frames = make([]AnimationFrame, len(anim.frames))
		for i, frame := range anim.frames {
			m.Frames[i] = AnimationFrame{
				Handle: d.textures.Upload(fitTexture(frame, d.maxTextureSize)),
				Delay:  anim.delays[i],
			}
		}
		m.Handle = m.Frames[0].Handle
		m.LoopCount = anim.loopCount
		debugLog("Uploaded %d frames for %s", len(m.Frames), src.Path)
		return m, nil
	}

	m.Handle = d.textures.Upload(fitTexture(img, d.maxTextureSize))
	return m, nil
}

// Release frees every texture of img
func (d *EbitenDecoder) Release(img *MaterializedImage) {
	if img == nil {
		return
	}
	if len(img.Frames) == 0 {
		d.textures.Free(img.Handle)
		return
	}
	for _, frame := range img.Frames {
		d.textures.Free(frame.Handle)
	}
}

// fitTexture downscales img so that neither side exceeds limit.
// A limit <= 0 disables downscaling.
func fitTexture(img image.Image, limit int) image.Image {
	if limit <= 0 {
		return img
	}
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if w <= limit && h <= limit {
		return img
	}
	debugLog("Downscaling %dx%d texture to fit %d", w, h, limit)
	return resize.Thumbnail(uint(limit), uint(limit), img, resize.Lanczos3)
}

// handleScale returns the factors mapping handle pixels to intrinsic size.
func handleScale(img *MaterializedImage) (float64, float64) {
	b := img.Handle.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return 1, 1
	}
	return float64(img.Width) / float64(b.Dx()), float64(img.Height) / float64(b.Dy())
}

// Source reading functions

func decodeBytes(data []byte) (image.Image, error) {
	if isGIF(data) {
		return decodeGIF(data)
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return img, nil
}

func readSource(src ImagePath) ([]byte, error) {
	if src.ArchivePath == "" {
		return os.ReadFile(src.Path)
	}

	ext := strings.ToLower(filepath.Ext(src.ArchivePath))
	switch ext {
	case ".zip", ".cbz":
		return readFromZip(src.ArchivePath, src.EntryPath)
	case ".rar", ".cbr":
		return readFromRar(src.ArchivePath, src.EntryPath)
	case ".7z":
		return readFrom7z(src.ArchivePath, src.EntryPath)
	default:
		return nil, fmt.Errorf("unsupported archive format: %s", ext)
	}
}

func readFromZip(archivePath, entryPath string) ([]byte, error) {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readFromRar(archivePath, entryPath string) ([]byte, error) {
	f, err := os.Open(archivePath)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	r, err := rardecode.NewReader(f, "")
	if err != nil {
		return nil, err
	}

	for {
		header, err := r.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if header.Name == entryPath {
			return io.ReadAll(r)
		}
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}

func readFrom7z(archivePath, entryPath string) ([]byte, error) {
	r, err := sevenzip.OpenReader(archivePath)
	if err != nil {
		return nil, err
	}
	defer r.Close()

	for _, f := range r.File {
		if f.Name != entryPath {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("entry %s not found in %s", entryPath, archivePath)
}
