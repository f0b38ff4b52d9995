package preprocess

import "image"

// adaptiveWindow and adaptiveC follow the block size and constant used for
// adaptive mean thresholding of uneven receipt lighting.
const (
	adaptiveWindow = 31
	adaptiveC      = 2
)

// medianFilter removes salt-and-pepper noise with a (2r+1)² median window,
// computed per pixel from a 256-bin histogram.
func medianFilter(src *image.Gray, radius int) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	side := 2*radius + 1
	half := (side * side) / 2

	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			for i := range hist {
				hist[i] = 0
			}
			count := 0
			for dy := -radius; dy <= radius; dy++ {
				yy := clamp(y+dy, 0, h-1)
				for dx := -radius; dx <= radius; dx++ {
					xx := clamp(x+dx, 0, w-1)
					hist[src.GrayAt(b.Min.X+xx, b.Min.Y+yy).Y]++
					count++
				}
			}
			// countdown to the median bin
			seen := 0
			for v := 0; v < 256; v++ {
				seen += hist[v]
				if seen > half {
					dst.Pix[y*dst.Stride+x] = uint8(v)
					break
				}
			}
		}
	}
	return dst
}

// adaptiveThreshold binarizes against the local window mean minus a small
// constant, using a summed-area table so the window mean is O(1) per pixel.
func adaptiveThreshold(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := image.NewGray(image.Rect(0, 0, w, h))

	// integral[y][x] holds the sum over the rectangle [0,x) x [0,y)
	integral := make([]uint64, (w+1)*(h+1))
	stride := w + 1
	for y := 0; y < h; y++ {
		var rowSum uint64
		for x := 0; x < w; x++ {
			rowSum += uint64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)
			integral[(y+1)*stride+x+1] = integral[y*stride+x+1] + rowSum
		}
	}

	radius := adaptiveWindow / 2
	for y := 0; y < h; y++ {
		y0 := clamp(y-radius, 0, h-1)
		y1 := clamp(y+radius, 0, h-1)
		for x := 0; x < w; x++ {
			x0 := clamp(x-radius, 0, w-1)
			x1 := clamp(x+radius, 0, w-1)

			area := uint64((x1 - x0 + 1) * (y1 - y0 + 1))
			sum := integral[(y1+1)*stride+x1+1] - integral[y0*stride+x1+1] -
				integral[(y1+1)*stride+x0] + integral[y0*stride+x0]
			mean := sum / area

			v := uint8(0)
			if uint64(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y)+adaptiveC > mean {
				v = 255
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}

// otsuThreshold binarizes with the global threshold that maximizes the
// between-class variance of the intensity histogram.
func otsuThreshold(src *image.Gray) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()

	var hist [256]int
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			hist[src.GrayAt(b.Min.X+x, b.Min.Y+y).Y]++
		}
	}

	total := w * h
	var sum float64
	for v, n := range hist {
		sum += float64(v) * float64(n)
	}

	var (
		sumBack    float64
		weightBack int
		bestVar    float64
		threshold  int
	)
	for v := 0; v < 256; v++ {
		weightBack += hist[v]
		if weightBack == 0 {
			continue
		}
		weightFore := total - weightBack
		if weightFore == 0 {
			break
		}
		sumBack += float64(v) * float64(hist[v])

		meanBack := sumBack / float64(weightBack)
		meanFore := (sum - sumBack) / float64(weightFore)
		diff := meanBack - meanFore
		between := float64(weightBack) * float64(weightFore) * diff * diff
		if between > bestVar {
			bestVar = between
			threshold = v
		}
	}

	dst := image.NewGray(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			v := uint8(0)
			if int(src.GrayAt(b.Min.X+x, b.Min.Y+y).Y) > threshold {
				v = 255
			}
			dst.Pix[y*dst.Stride+x] = v
		}
	}
	return dst
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
