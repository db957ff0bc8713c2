// Package preprocess turns a detected face into the tensor layout expected by
// the embedding model.
//
// The crop is resized with nearest-neighbour sampling (x/image/draw
// NearestNeighbor, which samples source pixel centres). The same kernel must
// be used at enrollment and verification time, so it is not configurable.
package preprocess

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"github.com/nilesh0210977/facial-recognition-implementation/internal/domain"
)

const (
	channelOffset = 128.0
	channelScale  = 128.0
)

// ExtractAndNormalize clips region to the image, crops it, scales the crop to
// domain.TensorSize square and maps every 8-bit channel to (c-128)/128.
// Pixels are emitted row-major, channels in R, G, B order.
func ExtractAndNormalize(img image.Image, region domain.FaceRegion) (domain.NormalizedTensor, error) {
	if img == nil {
		return nil, domain.ErrInvalidImage.WithError(fmt.Errorf("nil image"))
	}

	bounds := img.Bounds()
	clipped := region.Clip(bounds)
	if clipped.Width() <= 0 || clipped.Height() <= 0 {
		return nil, domain.ErrInvalidRegion.WithError(
			fmt.Errorf("region %+v clipped to %dx%d image is empty", region, bounds.Dx(), bounds.Dy()),
		)
	}

	src := image.Rect(
		bounds.Min.X+clipped.Left,
		bounds.Min.Y+clipped.Top,
		bounds.Min.X+clipped.Right,
		bounds.Min.Y+clipped.Bottom,
	)

	// NRGBA keeps straight (non-premultiplied) channel values.
	dst := image.NewNRGBA(image.Rect(0, 0, domain.TensorSize, domain.TensorSize))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), img, src, draw.Src, nil)

	return normalize(dst), nil
}

func normalize(img *image.NRGBA) domain.NormalizedTensor {
	tensor := make(domain.NormalizedTensor, 0, domain.TensorLength)
	for y := 0; y < domain.TensorSize; y++ {
		row := img.Pix[y*img.Stride : y*img.Stride+domain.TensorSize*4]
		for x := 0; x < len(row); x += 4 {
			tensor = append(tensor,
				(float32(row[x])-channelOffset)/channelScale,
				(float32(row[x+1])-channelOffset)/channelScale,
				(float32(row[x+2])-channelOffset)/channelScale,
			)
		}
	}
	return tensor
}
