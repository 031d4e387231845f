package studio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVignette(t *testing.T) {
	t.Parallel()

	t.Run("scale 为 0 时不变", func(t *testing.T) {
		t.Parallel()

		in := uniformRGB(9, 7, 180)
		out := Vignette(in, 2, 0)
		assert.Equal(t, in.Pix, out.Pix)
	})

	t.Run("中心不变暗", func(t *testing.T) {
		t.Parallel()

		out := Vignette(uniformRGB(5, 5, 180), 2, 0.1)
		assert.Equal(t, []uint8{180, 180, 180, 255}, out.Pix[out.PixOffset(2, 2):out.PixOffset(2, 2)+4])
	})

	t.Run("四角最暗", func(t *testing.T) {
		t.Parallel()

		in := uniformRGB(100, 100, 128)
		out := Vignette(in, 2, 0.1)

		corner := out.Pix[0]
		assert.InDelta(t, 77, int(corner), 1)
		assert.Equal(t, corner, out.Pix[out.PixOffset(99, 99)])
		assert.Equal(t, corner, out.Pix[out.PixOffset(0, 99)])
		assert.Less(t, corner, out.Pix[out.PixOffset(50, 50)])
		assert.Less(t, out.Pix[out.PixOffset(0, 0)], out.Pix[out.PixOffset(0, 50)])
		assert.Equal(t, uint8(128), in.Pix[0], "input must not be mutated")
	})

	t.Run("指数为 0 时整体均匀变暗", func(t *testing.T) {
		t.Parallel()

		// mask = 255·0.5 = 127，每个通道减 128
		out := Vignette(uniformRGB(4, 3, 200), 0, 0.5)
		for i := 0; i < len(out.Pix); i += 4 {
			assert.Equal(t, []uint8{72, 72, 72, 255}, out.Pix[i:i+4])
		}
	})

	t.Run("饱和到 0", func(t *testing.T) {
		t.Parallel()

		out := Vignette(uniformRGB(4, 3, 100), 0, 0.5)
		assert.Equal(t, uint8(0), out.Pix[0])
	})

	t.Run("超大 scale 全黑", func(t *testing.T) {
		t.Parallel()

		out := Vignette(uniformRGB(5, 5, 250), 2, 100)
		assert.Equal(t, uint8(0), out.Pix[0])
	})
}
