package healthmap

import (
	"fmt"
	"image"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

func (a *App) captureFrame(img *ebiten.Image) {
	if a.CaptureDir == "" {
		log.Printf("Capture requested but no capture directory is set")
		return
	}
	rgba := image.NewRGBA(img.Bounds())
	img.ReadPixels(rgba.Pix)

	path := filepath.Join(a.CaptureDir, captureName(string(a.dash.Attribute()), time.Now()))
	go func() {
		if err := SavePNG(path, rgba); err != nil {
			log.Printf("Error saving capture: %v", err)
			return
		}
		log.Printf("Captured frame: %s", path)
	}()
}

func captureName(suffix string, timestamp time.Time) string {
	return fmt.Sprintf("health-%s-%s.png", timestamp.Format("20060102-150405"), suffix)
}

// SavePNG writes img to path, creating the parent directory.
func SavePNG(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create capture directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
