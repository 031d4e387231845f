package studio

import (
	"image"
	"image/color"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var red = color.NRGBA{R: 255, A: 255}

func TestNormalize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		cutout       *image.NRGBA
		paddingRatio float64
		targetAspect float64
		wantSize     image.Point
		wantOffset   image.Point
		contentSize  image.Point
	}{
		{
			name:         "高度不足时加高",
			cutout:       squareCutout(300, 400, image.Rect(100, 150, 200, 250), red),
			paddingRatio: 0.1,
			targetAspect: 1.333,
			wantSize:     image.Pt(120, 159),
			wantOffset:   image.Pt(10, 29),
			contentSize:  image.Pt(100, 100),
		},
		{
			name:         "过高时加宽",
			cutout:       squareCutout(400, 400, image.Rect(50, 20, 150, 320), red),
			paddingRatio: 0,
			targetAspect: 1.333,
			wantSize:     image.Pt(225, 300),
			wantOffset:   image.Pt(62, 0),
			contentSize:  image.Pt(100, 300),
		},
		{
			name:         "比例正好时不变",
			cutout:       squareCutout(64, 64, image.Rect(8, 8, 40, 40), red),
			paddingRatio: 0,
			targetAspect: 1,
			wantSize:     image.Pt(32, 32),
			wantOffset:   image.Pt(0, 0),
			contentSize:  image.Pt(32, 32),
		},
		{
			name:         "padding 向下取整",
			cutout:       squareCutout(50, 50, image.Rect(0, 0, 15, 15), red),
			paddingRatio: 0.1,
			targetAspect: 1,
			wantSize:     image.Pt(17, 17),
			wantOffset:   image.Pt(1, 1),
			contentSize:  image.Pt(15, 15),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := Normalize(tt.cutout, tt.paddingRatio, tt.targetAspect)
			require.NoError(t, err)
			assert.Equal(t, tt.wantSize, got.Bounds().Size())

			bbox, err := alphaBBox(got)
			require.NoError(t, err)
			assert.Equal(t, tt.wantOffset, bbox.Min)
			assert.Equal(t, tt.contentSize, bbox.Size())

			// 画幅误差不超过扩展方向上的一个像素：加宽时 int(ph/r) 截断，高度方向最多差 r，与原有行为一致
			w, h := float64(got.Bounds().Dx()), float64(got.Bounds().Dy())
			assert.LessOrEqual(t, math.Abs(h-w*tt.targetAspect), math.Max(1, tt.targetAspect))
		})
	}
}

func TestNormalize_EmptyContent(t *testing.T) {
	t.Parallel()

	cutout := image.NewNRGBA(image.Rect(0, 0, 20, 20))
	_, err := Normalize(cutout, 0.1, 1.333)
	assert.ErrorIs(t, err, ErrEmptyContent)
}

func TestNormalize_CopiesPixelsExactly(t *testing.T) {
	t.Parallel()

	cutout := image.NewNRGBA(image.Rect(0, 0, 10, 10))
	cutout.SetNRGBA(3, 4, color.NRGBA{R: 10, G: 20, B: 30, A: 7})
	cutout.SetNRGBA(5, 6, color.NRGBA{R: 200, G: 100, B: 50, A: 128})
	before := append([]uint8(nil), cutout.Pix...)

	got, err := Normalize(cutout, 0, 1)
	require.NoError(t, err)
	require.Equal(t, image.Pt(3, 3), got.Bounds().Size())

	assert.Equal(t, color.NRGBA{R: 10, G: 20, B: 30, A: 7}, got.NRGBAAt(0, 0))
	assert.Equal(t, color.NRGBA{R: 200, G: 100, B: 50, A: 128}, got.NRGBAAt(2, 2))
	assert.Equal(t, color.NRGBA{}, got.NRGBAAt(1, 1))
	assert.Equal(t, before, cutout.Pix, "input must not be mutated")
}

func TestNormalize_SubImageBounds(t *testing.T) {
	t.Parallel()

	full := squareCutout(100, 100, image.Rect(40, 40, 60, 60), red)
	sub := full.SubImage(image.Rect(30, 30, 80, 80)).(*image.NRGBA)

	got, err := Normalize(sub, 0, 1)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(20, 20), got.Bounds().Size())
	assert.Equal(t, red, got.NRGBAAt(0, 0))
	assert.Equal(t, red, got.NRGBAAt(19, 19))
}

func TestNormalize_FloorCentering(t *testing.T) {
	t.Parallel()

	// 10 宽，画幅 1.55 -> 高 15，上方 (15-10)/2 = 2
	cutout := squareCutout(10, 10, image.Rect(0, 0, 10, 10), red)
	got, err := Normalize(cutout, 0, 1.55)
	require.NoError(t, err)
	assert.Equal(t, image.Pt(10, 15), got.Bounds().Size())

	bbox, err := alphaBBox(got)
	require.NoError(t, err)
	assert.Equal(t, 2, bbox.Min.Y)
}

func randomCutout(r *rand.Rand) *image.NRGBA {
	w, h := 1+r.IntN(60), 1+r.IntN(60)
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < len(img.Pix); i += 4 {
		if r.IntN(4) != 0 {
			continue
		}
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = uint8(r.IntN(256)), uint8(r.IntN(256)), uint8(r.IntN(256)), uint8(1+r.IntN(255))
	}
	img.Pix[4*r.IntN(w*h)+3] = 255
	return img
}

func TestNormalize_RandomCutouts(t *testing.T) {
	t.Parallel()

	r := rand.New(rand.NewPCG(7, 42))
	for i := 0; i < 500; i++ {
		cutout := randomCutout(r)
		ratio := r.Float64() * 0.5
		aspect := 0.25 + r.Float64()*2.75

		once, err := Normalize(cutout, ratio, aspect)
		require.NoError(t, err)
		twice, err := Normalize(once, ratio, aspect)
		require.NoError(t, err)

		// 对自己的输出再做一次不改变任何像素
		require.Equal(t, once.Bounds(), twice.Bounds(), "case %d", i)
		require.Equal(t, once.Pix, twice.Pix, "case %d", i)

		// 居中：两侧留白相差不超过 1
		bbox, err := alphaBBox(once)
		require.NoError(t, err)
		b := once.Bounds()
		left, right := bbox.Min.X-b.Min.X, b.Max.X-bbox.Max.X
		top, bottom := bbox.Min.Y-b.Min.Y, b.Max.Y-bbox.Max.Y
		assert.LessOrEqual(t, abs(left-right), 1, "case %d horizontal", i)
		assert.LessOrEqual(t, abs(top-bottom), 1, "case %d vertical", i)

		w, h := float64(b.Dx()), float64(b.Dy())
		assert.LessOrEqual(t, math.Abs(h-w*aspect), math.Max(1, aspect), "case %d aspect", i)
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
