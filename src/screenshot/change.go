package screenshot

import (
	"fmt"
	"image"
	"image/color"
)

// ChangeScore returns the mean absolute gray-level difference between a and
// b, scaled to [0, 1]. Identical images score 0; black against white scores 1.
func ChangeScore(a, b image.Image) (float64, error) {
	ab, bb := a.Bounds(), b.Bounds()
	if ab.Dx() != bb.Dx() || ab.Dy() != bb.Dy() {
		return 0, fmt.Errorf("image sizes differ: %dx%d vs %dx%d", ab.Dx(), ab.Dy(), bb.Dx(), bb.Dy())
	}
	w, h := ab.Dx(), ab.Dy()
	if w == 0 || h == 0 {
		return 0, nil
	}

	var sum uint64
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			ga := gray(a.At(ab.Min.X+x, ab.Min.Y+y))
			gb := gray(b.At(bb.Min.X+x, bb.Min.Y+y))
			if ga > gb {
				sum += uint64(ga - gb)
			} else {
				sum += uint64(gb - ga)
			}
		}
	}
	return float64(sum) / float64(w*h) / 255.0, nil
}

func gray(c color.Color) uint8 {
	return color.GrayModel.Convert(c).(color.Gray).Y
}
