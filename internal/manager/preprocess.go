package manager

import (
	"image"

	"github.com/disintegration/imaging"
)

// ImageNet channel statistics, the normalization most exported vision
// models expect.
var (
	imagenetMean = [3]float32{0.485, 0.456, 0.406}
	imagenetStd  = [3]float32{0.229, 0.224, 0.225}
)

// preprocessSpec describes how an image becomes an input tensor.
type preprocessSpec struct {
	Size int
	Mean [3]float32
	Std  [3]float32
}

// toTensor center-crops img to a square, resizes it to spec.Size and returns
// a CHW float32 tensor scaled to [0,1] and normalized per channel.
func toTensor(img image.Image, spec preprocessSpec) []float32 {
	size := spec.Size
	fitted := imaging.Fill(img, size, size, imaging.Center, imaging.Lanczos)
	plane := size * size
	out := make([]float32, 3*plane)
	for y := 0; y < size; y++ {
		row := fitted.Pix[y*fitted.Stride:]
		for x := 0; x < size; x++ {
			px := row[x*4 : x*4+3]
			idx := y*size + x
			for c := 0; c < 3; c++ {
				v := float32(px[c]) / 255
				out[c*plane+idx] = (v - spec.Mean[c]) / spec.Std[c]
			}
		}
	}
	return out
}
