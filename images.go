package folio

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/image/draw"
)

const (
	maxImageWidth = 800
	jpegQuality   = 80
	imagesSubdir  = "images"
)

// Image describes a processed image.
type Image struct {
	Filename string
	Width    int
	Height   int
	Size     int
	Resized  bool
}

// ProcessImage decodes a JPEG or PNG from src, downscales it to maxImageWidth
// when wider, and re-encodes it in its original format.
func ProcessImage(src io.Reader, name string) (Image, []byte, error) {
	img, format, err := image.Decode(src)
	if err != nil {
		return Image{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	resized := false

	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w, h = maxImageWidth, newH
		resized = true
	}

	var buf bytes.Buffer
	switch format {
	case "png":
		err = png.Encode(&buf, img)
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality})
	default:
		return Image{}, nil, fmt.Errorf("unsupported image format %q", format)
	}
	if err != nil {
		return Image{}, nil, fmt.Errorf("encode %s: %w", format, err)
	}

	return Image{
		Filename: name,
		Width:    w,
		Height:   h,
		Size:     buf.Len(),
		Resized:  resized,
	}, buf.Bytes(), nil
}

// ProcessImages copies the content tree's images/ directory into outDir.
// JPEG and PNG files go through ProcessImage; everything else (SVG, GIF,
// PDF) is copied verbatim. It returns the processed images.
func ProcessImages(ctx context.Context, log *zap.Logger, contentDir, outDir string) ([]Image, error) {
	srcRoot := filepath.Join(contentDir, imagesSubdir)
	if _, err := os.Stat(srcRoot); os.IsNotExist(err) {
		return nil, nil
	}
	var images []Image
	err := filepath.WalkDir(srcRoot, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(contentDir, p)
		if err != nil {
			return err
		}
		dst := filepath.Join(outDir, rel)
		if d.IsDir() {
			return os.MkdirAll(dst, 0o755)
		}
		switch strings.ToLower(filepath.Ext(p)) {
		case ".jpg", ".jpeg", ".png":
			img, err := processImageFile(p, dst)
			if err != nil {
				log.Warn("image copied unprocessed", zap.String("path", p), zap.Error(err))
				return copyFile(p, dst)
			}
			images = append(images, img)
			return nil
		default:
			return copyFile(p, dst)
		}
	})
	return images, err
}

func processImageFile(src, dst string) (Image, error) {
	f, err := os.Open(src)
	if err != nil {
		return Image{}, err
	}
	defer f.Close()
	img, data, err := ProcessImage(f, filepath.Base(src))
	if err != nil {
		return Image{}, err
	}
	if err := os.WriteFile(dst, data, 0o644); err != nil {
		return Image{}, fmt.Errorf("write image: %w", err)
	}
	return img, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
