package upload

import (
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const MaxFileSize = 5 * 1024 * 1024 // 5MB

// Image kinds, each stored in its own subdirectory.
const (
	KindMarkets  = "markets"
	KindProducts = "products"
	KindProfiles = "profiles"
)

var allowedExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
	".gif":  {},
	".webp": {},
}

// Init creates the upload directory tree.
func Init(baseDir string) error {
	for _, kind := range []string{KindMarkets, KindProducts, KindProfiles} {
		if err := os.MkdirAll(filepath.Join(baseDir, kind), 0o755); err != nil {
			return err
		}
	}
	return nil
}

func ValidExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	_, ok := allowedExtensions[ext]
	return ok
}

// NewFilename keeps the original extension and replaces the name with
// a uuid so uploads can never collide or traverse paths.
func NewFilename(original string) string {
	ext := strings.ToLower(filepath.Ext(original))
	return uuid.NewString() + ext
}

// SaveImage validates and stores a multipart image, returning the
// generated filename.
func SaveImage(c *fiber.Ctx, file *multipart.FileHeader, baseDir, kind string) (string, error) {
	if file == nil {
		return "", fiber.NewError(fiber.StatusBadRequest, "Image file is required")
	}
	if !ValidExtension(file.Filename) {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid image file")
	}
	if ct := file.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		return "", fiber.NewError(fiber.StatusBadRequest, "Invalid image file")
	}
	if file.Size > MaxFileSize {
		return "", fiber.NewError(fiber.StatusBadRequest, "File too large")
	}

	filename := NewFilename(file.Filename)
	dest := filepath.Join(baseDir, kind, filename)

	if err := c.SaveFile(file, dest); err != nil {
		return "", fiber.NewError(fiber.StatusInternalServerError, "Failed to save image")
	}
	return filename, nil
}

// DeleteImage removes a stored image; missing files are not an error.
func DeleteImage(baseDir, kind, filename string) {
	if filename == "" {
		return
	}
	// filename is always one of our uuid names, but guard anyway
	if filepath.Base(filename) != filename {
		return
	}
	_ = os.Remove(filepath.Join(baseDir, kind, filename))
}
