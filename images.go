package inkwell

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/image/draw"

	"github.com/eringen/inkwell/content"
)

const jpegQuality = 85

// ErrUndecodableImage marks a JPEG or PNG file that could not be decoded.
var ErrUndecodableImage = errors.New("undecodable image")

// Image describes one processed file under the images directory.
type Image struct {
	Name    string // Path relative to the images directory
	Width   int
	Height  int
	Size    int64
	Resized bool
	Copied  bool // Written verbatim (GIF or non-image file)
}

// ProcessImages mirrors srcDir of src into dstDir of dst. JPEG and PNG
// files wider than maxWidth are downscaled and re-encoded in their own
// format; everything else is copied. Files whose destination is at least
// as new as the source are left alone. Undecodable images are reported as
// skipped and not written.
func ProcessImages(ctx context.Context, src fs.FS, srcDir string, dst afero.Fs, dstDir string, maxWidth int) ([]Image, []content.Skipped, error) {
	var (
		images  []Image
		skipped []content.Skipped
	)
	err := fs.WalkDir(src, srcDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == srcDir && errors.Is(err, fs.ErrNotExist) {
				return fs.SkipDir
			}
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		rel := strings.TrimPrefix(p, srcDir+"/")
		target := filepath.Join(dstDir, filepath.FromSlash(rel))

		info, err := d.Info()
		if err != nil {
			return err
		}
		if st, err := dst.Stat(target); err == nil && !st.ModTime().Before(info.ModTime()) {
			images = append(images, Image{Name: rel, Size: st.Size()})
			return nil
		}
		if err := dst.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		img, err := processImage(src, p, dst, target, maxWidth)
		if errors.Is(err, ErrUndecodableImage) {
			skipped = append(skipped, content.Skipped{Path: p, Err: err})
			return nil
		}
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		img.Name = rel
		images = append(images, img)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return images, skipped, nil
}

func processImage(src fs.FS, p string, dst afero.Fs, target string, maxWidth int) (Image, error) {
	ext := strings.ToLower(path.Ext(p))
	if ext != ".jpg" && ext != ".jpeg" && ext != ".png" {
		return copyFile(src, p, dst, target)
	}

	f, err := src.Open(p)
	if err != nil {
		return Image{}, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return Image{}, fmt.Errorf("%w: %v", ErrUndecodableImage, err)
	}
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if maxWidth <= 0 || w <= maxWidth {
		out, err := copyFile(src, p, dst, target)
		out.Width, out.Height = w, h
		return out, err
	}

	newH := h * maxWidth / w
	scaled := image.NewRGBA(image.Rect(0, 0, maxWidth, newH))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, bounds, draw.Over, nil)

	out, err := dst.Create(target)
	if err != nil {
		return Image{}, err
	}
	if ext == ".png" {
		err = png.Encode(out, scaled)
	} else {
		err = jpeg.Encode(out, scaled, &jpeg.Options{Quality: jpegQuality})
	}
	if err != nil {
		out.Close()
		return Image{}, fmt.Errorf("encode image: %w", err)
	}
	if err := out.Close(); err != nil {
		return Image{}, err
	}
	st, err := dst.Stat(target)
	if err != nil {
		return Image{}, err
	}
	return Image{Width: maxWidth, Height: newH, Size: st.Size(), Resized: true}, nil
}

// copyFile copies p verbatim. GIF dimensions are read from the header.
func copyFile(src fs.FS, p string, dst afero.Fs, target string) (Image, error) {
	in, err := src.Open(p)
	if err != nil {
		return Image{}, err
	}
	defer in.Close()
	out, err := dst.Create(target)
	if err != nil {
		return Image{}, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Image{}, err
	}
	img := Image{Size: n, Copied: true}
	if strings.EqualFold(path.Ext(p), ".gif") {
		if g, err := src.Open(p); err == nil {
			if cfg, err := gif.DecodeConfig(g); err == nil {
				img.Width, img.Height = cfg.Width, cfg.Height
			}
			g.Close()
		}
	}
	return img, nil
}
