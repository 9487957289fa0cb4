// Package imageio acquires images for the pipeline: files on disk and,
// with the gocv build tag, OpenCV matrices and cameras.
package imageio

import (
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"

	"github.com/dudu/facerec/internal/face"
)

var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// Open decodes the image file at path, applying its EXIF orientation
func Open(path string) (face.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return face.Image{}, fmt.Errorf("failed to open image %s: %w", path, err)
	}
	return toFaceImage(img), nil
}

// Decode reads an image from r, applying its EXIF orientation
func Decode(r io.Reader) (face.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return face.Image{}, fmt.Errorf("failed to decode image: %w", err)
	}
	return toFaceImage(img), nil
}

// IsImageFile reports whether name has a supported image extension
func IsImageFile(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// ListImages returns every supported image below dir, sorted by path
func ListImages(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if IsImageFile(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list images in %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}
