package util

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
)

const DefaultJPEGQuality = 90

// EncodeJPEG quality 超出 1..100 时使用默认值
func EncodeJPEG(w io.Writer, img image.Image, quality int) error {
	if quality < 1 || quality > 100 {
		quality = DefaultJPEGQuality
	}
	if err := jpeg.Encode(w, img, &jpeg.Options{Quality: quality}); err != nil {
		return fmt.Errorf("encode jpeg: %w", err)
	}
	return nil
}

func EncodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// JPEGBytes EncodeJPEG 到内存
func JPEGBytes(img image.Image, quality int) ([]byte, error) {
	buf := &bytes.Buffer{}
	if err := EncodeJPEG(buf, img, quality); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
