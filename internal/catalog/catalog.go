// Package catalog enumerates the wallpaper images in a directory.
package catalog

import (
	"errors"
	"fmt"
	"image"
	"os"
	"path/filepath"

	// register image formats so DecodeConfig can recognize them
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/charmbracelet/log"
)

// MinImages is the smallest wallpaper set a transition can be made from.
const MinImages = 2

var ErrTooFewImages = errors.New("wallpaper directory contains less than 2 valid image files")

type Catalog struct {
	logger *log.Logger
}

func New(logger *log.Logger) *Catalog {
	if logger == nil {
		logger = log.Default()
	}
	return &Catalog{logger: logger}
}

// List returns the absolute paths of the decodable images directly inside
// dir, in directory order. Only the image header is read.
func (c *Catalog) List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error reading wallpapers directory: %w", err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(abs, entry.Name())
		if !IsImage(path) {
			c.logger.Debugf("Skipping %v: not a supported image", path)
			continue
		}
		paths = append(paths, path)
	}

	if len(paths) < MinImages {
		return nil, fmt.Errorf("%w: found %d in %v", ErrTooFewImages, len(paths), dir)
	}

	c.logger.Infof("Found %d wallpapers in %s", len(paths), dir)
	return paths, nil
}

// IsImage reports whether path holds an image in a registered format.
func IsImage(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	_, _, err = image.DecodeConfig(f)
	return err == nil
}
