package thumbs

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"

	"taskhub.com/taskhub/internal/storage"

	// Register decoders for the raster formats imaging does not handle
	// natively.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

const (
	Width   = 100
	Height  = 100
	Quality = 75
)

// rasterExtensions is the allow-list of extensions eligible for a thumbnail.
var rasterExtensions = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"bmp":  true,
	"webp": true,
}

// Result reports whether a thumbnail was produced. A skipped thumbnail is
// not an error: the attachment keeps a null thumb and Reason says why.
type Result struct {
	Path    string
	Skipped bool
	Reason  string
}

func (r Result) Produced() bool {
	return !r.Skipped
}

func skipped(format string, args ...any) Result {
	return Result{Skipped: true, Reason: fmt.Sprintf(format, args...)}
}

type Generator struct {
	store storage.Store
}

func NewGenerator(store storage.Store) *Generator {
	return &Generator{store: store}
}

// Generate produces a fixed-size cropped thumbnail for the given upload and
// persists it under the task's thumbs namespace. The filename is reused so
// original and thumbnail stay parallel. Every failure degrades to a skip.
func (g *Generator) Generate(ctx context.Context, taskID, filename string, data []byte) Result {
	ext := strings.TrimPrefix(Extension(filename), ".")
	if !rasterExtensions[ext] {
		return skipped("extension %q is not a raster image type", ext)
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return skipped("decode failed: %v", err)
	}

	thumb := imaging.Fill(img, Width, Height, imaging.Center, imaging.Lanczos)

	// webp has no encoder in this stack; such thumbnails are written as
	// JPEG bytes under the original extension, which browsers sniff.
	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		format = imaging.JPEG
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, format, imaging.JPEGQuality(Quality)); err != nil {
		return skipped("encode failed: %v", err)
	}

	path := fmt.Sprintf("tasks/%s/thumbs/%s", taskID, filename)
	if err := g.store.Put(ctx, path, &buf); err != nil {
		return skipped("store write failed: %v", err)
	}

	return Result{Path: path}
}

// Extension returns the lowercased filename extension including the dot, or
// "" when the filename has none. Attachment ingestion and the raster
// allow-list share it so the two can't drift.
func Extension(filename string) string {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		return strings.ToLower(filename[i:])
	}
	return ""
}
