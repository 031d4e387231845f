package util

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"

	nhttp "github.com/chaos-io/prettify/util/http"
)

var downloader = nhttp.NewHTTPClient()

// DownloadImage 下载图片，沿用 util/http 客户端的默认超时
func DownloadImage(ctx context.Context, url string) (image.Image, error) {
	var data []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: url,
		Method:     "GET",
		Response:   &data,
	}
	if err := downloader.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("download %s: %w", url, err)
	}
	return DecodeImage(bytes.NewReader(data))
}

// OpenImage 打开本地图片，按 EXIF 方向摆正
func OpenImage(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("open image %s: %w", path, err)
	}
	return img, nil
}

// DecodeImage 解码 JPEG/PNG/WebP，按 EXIF 方向摆正
func DecodeImage(r io.Reader) (image.Image, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	return img, nil
}

// IsRemote 是否是 http(s) 地址
func IsRemote(path string) bool {
	return strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://")
}

// LoadImage 本地路径或 http(s) 地址
func LoadImage(ctx context.Context, path string) (image.Image, error) {
	if IsRemote(path) {
		return DownloadImage(ctx, path)
	}
	return OpenImage(path)
}
