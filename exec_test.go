package seamcarve

import (
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, path string, width, height int) {
	t.Helper()

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, toImage(newPatternBuffer(t, width, height))))
}

func readBounds(t *testing.T, path string) image.Rectangle {
	t.Helper()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	require.NoError(t, err)
	return image.Rect(0, 0, cfg.Width, cfg.Height)
}

func TestExec_SingleFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sample.png")
	dst := filepath.Join(dir, "sample_out.png")
	writePNG(t, src, 20, 10)

	op := &Ops{Src: src, Dst: dst, PipeName: "-", Stderr: io.Discard}
	require.NoError(t, op.Execute(&Processor{RetainRatio: 0.5, Debug: true}))

	assert.Equal(t, image.Rect(0, 0, 10, 10), readBounds(t, dst))
	assert.Equal(t, image.Rect(0, 0, 20, 10), readBounds(t, filepath.Join(dir, "sample_out_mask.png")))
}

func TestExec_Directory(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "out")

	require.NoError(t, os.Mkdir(filepath.Join(srcDir, "nested"), 0755))
	writePNG(t, filepath.Join(srcDir, "a.png"), 16, 8)
	writePNG(t, filepath.Join(srcDir, "nested", "b.png"), 12, 6)
	require.NoError(t, os.WriteFile(filepath.Join(srcDir, "notes.txt"), []byte("skip me"), 0644))

	p := &Processor{RetainRatio: 0.75}
	op := &Ops{Src: srcDir, Dst: dstDir, PipeName: "-", Workers: 2, Stderr: io.Discard}
	require.NoError(t, op.Execute(p))

	assert.Equal(t, image.Rect(0, 0, 12, 8), readBounds(t, filepath.Join(dstDir, "a.png")))
	assert.Equal(t, image.Rect(0, 0, 9, 6), readBounds(t, filepath.Join(dstDir, "nested", "b.png")))
	assert.NoFileExists(t, filepath.Join(dstDir, "notes.txt"))

	// The shared processor is left untouched by the workers.
	assert.Nil(t, p.DebugMask)
}

func TestExec_DirectoryKeepsTreeLayout(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "out")

	// Images sharing the same name in different directories.
	require.NoError(t, os.MkdirAll(filepath.Join(srcDir, "a", "b"), 0755))
	writePNG(t, filepath.Join(srcDir, "img.png"), 10, 4)
	writePNG(t, filepath.Join(srcDir, "a", "img.png"), 20, 4)
	writePNG(t, filepath.Join(srcDir, "a", "b", "img.png"), 40, 4)

	op := &Ops{Src: srcDir, Dst: dstDir, PipeName: "-", Workers: 3, Stderr: io.Discard}
	require.NoError(t, op.Execute(&Processor{RetainRatio: 0.5}))

	assert.Equal(t, image.Rect(0, 0, 5, 4), readBounds(t, filepath.Join(dstDir, "img.png")))
	assert.Equal(t, image.Rect(0, 0, 10, 4), readBounds(t, filepath.Join(dstDir, "a", "img.png")))
	assert.Equal(t, image.Rect(0, 0, 20, 4), readBounds(t, filepath.Join(dstDir, "a", "b", "img.png")))
}

func TestExec_DirectoryEncodesWebpAsPNG(t *testing.T) {
	srcDir := t.TempDir()
	dstDir := filepath.Join(t.TempDir(), "out")

	// The decoder sniffs the content, so a PNG stream stands in for the WebP source.
	writePNG(t, filepath.Join(srcDir, "photo.webp"), 12, 6)

	op := &Ops{Src: srcDir, Dst: dstDir, PipeName: "-", Stderr: io.Discard}
	require.NoError(t, op.Execute(&Processor{RetainRatio: 0.5}))

	assert.NoFileExists(t, filepath.Join(dstDir, "photo.webp"))
	assert.Equal(t, image.Rect(0, 0, 6, 6), readBounds(t, filepath.Join(dstDir, "photo.png")))
}

func TestExec_UnsupportedDestination(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "sample.png")
	writePNG(t, src, 8, 8)

	for _, name := range []string{"out.txt", "out.webp"} {
		dst := filepath.Join(dir, name)
		op := &Ops{Src: src, Dst: dst, PipeName: "-", Stderr: io.Discard}
		assert.Error(t, op.Execute(&Processor{RetainRatio: 0.5}), name)
		assert.NoFileExists(t, dst)
	}
}

func TestExec_DstPath(t *testing.T) {
	root := filepath.Join("in", "photos")

	testCases := []struct {
		src, want string
	}{
		{filepath.Join(root, "a.jpg"), filepath.Join("out", "a.jpg")},
		{filepath.Join(root, "x", "a.jpg"), filepath.Join("out", "x", "a.jpg")},
		{filepath.Join(root, "x", "a.webp"), filepath.Join("out", "x", "a.png")},
		{filepath.Join(root, "A.WEBP"), filepath.Join("out", "A.png")},
		{filepath.Join(root, "b.TIFF"), filepath.Join("out", "b.TIFF")},
	}
	for _, tc := range testCases {
		got, err := dstPath(root, "out", tc.src)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got)
	}
}

func TestExec_MissingSource(t *testing.T) {
	op := &Ops{Src: filepath.Join(t.TempDir(), "missing.png"), Dst: "out.png", PipeName: "-", Stderr: io.Discard}
	assert.Error(t, op.Execute(&Processor{}))
}

func TestExec_RemovesOutputOnFailure(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "broken.png")
	dst := filepath.Join(dir, "broken_out.png")
	require.NoError(t, os.WriteFile(src, []byte("not a png"), 0644))

	op := &Ops{Src: src, Dst: dst, PipeName: "-", Stderr: io.Discard}
	assert.Error(t, op.Execute(&Processor{}))
	assert.NoFileExists(t, dst)
}

func TestExec_MaskPath(t *testing.T) {
	assert.Equal(t, filepath.Join("out", "img_mask.png"), maskPath(filepath.Join("out", "img.jpg")))
	assert.Equal(t, "img_mask.png", maskPath("img"))
}
