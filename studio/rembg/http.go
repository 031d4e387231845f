package rembg

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"mime/multipart"
	"time"

	_ "golang.org/x/image/webp"

	"github.com/chaos-io/prettify/studio"
	nhttp "github.com/chaos-io/prettify/util/http"
)

// HTTPOracle 远程抠图服务
/*
	curl -X POST "$URL" \
	  -F "image=@photo.png" \
	  -F "type=input"

响应体是一张图片：带透明度时取 alpha，否则取亮度作为遮罩
*/
type HTTPOracle struct {
	URL     string
	Timeout time.Duration
	cli     nhttp.IClient
}

func NewHTTPOracle(url string, cli nhttp.IClient) *HTTPOracle {
	if cli == nil {
		cli = nhttp.NewHTTPClient()
	}
	return &HTTPOracle{URL: url, cli: cli}
}

func (o *HTTPOracle) Mask(ctx context.Context, img image.Image) (*image.Gray, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("image", "photo.png")
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if err := png.Encode(part, img); err != nil {
		return nil, fmt.Errorf("encode photo: %w", err)
	}
	if err := writer.WriteField("type", "input"); err != nil {
		return nil, fmt.Errorf("write form field: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart: %w", err)
	}

	var resp []byte
	reqParam := &nhttp.RequestParam{
		RequestURI: o.URL,
		Method:     "POST",
		Header:     map[string]string{"Content-Type": writer.FormDataContentType()},
		Body:       body,
		Response:   &resp,
		Timeout:    o.Timeout,
	}
	if err := o.cli.DoHTTPRequest(ctx, reqParam); err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}

	out, _, err := image.Decode(bytes.NewReader(resp))
	if err != nil {
		return nil, fmt.Errorf("decode mask: %w", err)
	}
	return maskFromImage(out), nil
}

// maskFromImage 有透明度时用 alpha，否则用亮度 (299R + 587G + 114B) / 1000
func maskFromImage(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok {
		return g
	}

	nrgba := studio.ToNRGBA(img)
	if hasUsefulAlpha(nrgba) {
		return studio.ExtractAlpha(nrgba)
	}

	b := nrgba.Bounds()
	w, h := b.Dx(), b.Dy()
	mask := image.NewGray(b)
	for y := 0; y < h; y++ {
		src := nrgba.Pix[y*nrgba.Stride:]
		dst := mask.Pix[y*mask.Stride:]
		for x := 0; x < w; x++ {
			i := x * 4
			r, g, bl := int(src[i]), int(src[i+1]), int(src[i+2])
			dst[x] = uint8((299*r + 587*g + 114*bl + 500) / 1000)
		}
	}
	return mask
}
