package utils

import (
	"bytes"
	"fmt"
	"image"
	"image/png"

	"github.com/blacktop/go-termimg"
)

// DisplayImageInTerminal displays an image in the terminal (iTerm2, Kitty and sixel capable terminals)
func DisplayImageInTerminal(img image.Image) error {
	var dat bytes.Buffer
	if err := png.Encode(&dat, img); err != nil {
		return fmt.Errorf("failed to encode terminal image: %w", err)
	}
	ti, err := termimg.From(bytes.NewReader(dat.Bytes()))
	if err != nil {
		return fmt.Errorf("failed to create termimg from image: %v", err)
	}
	if err := ti.Print(); err != nil {
		return fmt.Errorf("failed to print termimg: %v", err)
	}
	return nil
}
