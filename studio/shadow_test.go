package studio

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoxBlur(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   *image.Gray
		size int
		want []uint8
	}{
		{name: "奇数核 reflect-101", in: grayRow(0, 255, 0), size: 3, want: []uint8{170, 85, 170}},
		{name: "偶数核锚点 k/2", in: grayRow(0, 100, 200), size: 2, want: []uint8{50, 50, 150}},
		{name: "核为 1 时原样返回", in: grayRow(1, 2, 3), size: 1, want: []uint8{1, 2, 3}},
		{name: "核为 0 时原样返回", in: grayRow(9, 8, 7), size: 0, want: []uint8{9, 8, 7}},
		{name: "单像素", in: grayRow(77), size: 5, want: []uint8{77}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := BoxBlur(tt.in, tt.size)
			assert.Equal(t, tt.want, got.Pix)
			assert.Equal(t, tt.in.Bounds(), got.Bounds())
		})
	}
}

func TestBoxBlur_UniformStaysUniform(t *testing.T) {
	t.Parallel()

	// 面积 > 256 时走倒数乘法分支
	for _, size := range []int{3, 16, 17, 32} {
		got := BoxBlur(uniformGray(40, 30, 200), size)
		for _, v := range got.Pix {
			if !assert.Equal(t, uint8(200), v, "size %d", size) {
				break
			}
		}
	}
}

func TestBoxBlur_DoesNotMutate(t *testing.T) {
	t.Parallel()

	in := grayRow(0, 255, 0)
	_ = BoxBlur(in, 3)
	assert.Equal(t, []uint8{0, 255, 0}, in.Pix)
}

func TestOffsetAlpha(t *testing.T) {
	t.Parallel()

	in := image.NewGray(image.Rect(0, 0, 4, 4))
	in.SetGray(1, 1, grayAt(255))

	got := OffsetAlpha(in, image.Pt(2, -1))
	assert.Equal(t, uint8(255), got.GrayAt(3, 0).Y)
	assert.Equal(t, uint8(0), got.GrayAt(1, 1).Y)

	sum := 0
	for _, v := range got.Pix {
		sum += int(v)
	}
	assert.Equal(t, 255, sum)
}

func TestOffsetAlpha_LeavesFrame(t *testing.T) {
	t.Parallel()

	got := OffsetAlpha(uniformGray(4, 4, 255), image.Pt(5, 0))
	assert.Equal(t, make([]uint8, 16), got.Pix)

	got = OffsetAlpha(uniformGray(4, 4, 255), image.Pt(0, 2))
	assert.Equal(t, make([]uint8, 8), got.Pix[:8], "vacated rows are zero")
	assert.Equal(t, []uint8{255, 255, 255, 255}, got.Pix[8:12])
}

func TestShadow(t *testing.T) {
	t.Parallel()

	t.Run("全零遮罩的阴影仍为零", func(t *testing.T) {
		t.Parallel()

		got := Shadow(image.NewGray(image.Rect(0, 0, 50, 50)), image.Pt(-25, 60), 32)
		assert.Equal(t, make([]uint8, 50*50), got.Pix)
	})

	t.Run("阴影跟随偏移方向", func(t *testing.T) {
		t.Parallel()

		alpha := image.NewGray(image.Rect(0, 0, 60, 60))
		for y := 20; y < 30; y++ {
			for x := 20; x < 30; x++ {
				alpha.SetGray(x, y, grayAt(255))
			}
		}

		got := Shadow(alpha, image.Pt(-10, 15), 3)
		assert.Equal(t, uint8(255), got.GrayAt(15, 40).Y)
		assert.Equal(t, uint8(0), got.GrayAt(25, 25).Y)
	})
}

func TestReflect101(t *testing.T) {
	t.Parallel()

	cases := map[int]int{-2: 2, -1: 1, 0: 0, 4: 4, 5: 3, 6: 2}
	for in, want := range cases {
		assert.Equal(t, want, reflect101(in, 5), "reflect101(%d, 5)", in)
	}
	assert.Equal(t, 0, reflect101(-3, 1))
	assert.Equal(t, 1, reflect101(7, 2))
}
