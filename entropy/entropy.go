// Package entropy computes local Shannon-entropy maps of whole images.
//
// Grayscale images are filtered once on the calling goroutine. Color images are
// split into R, G and B planes that are filtered concurrently, one goroutine per
// channel, and joined back into a color map of the input's pixel format.
package entropy

import (
	"context"
	"image"
	"sync"

	"github.com/nvr-ai/go-entropy/images"
	"github.com/nvr-ai/go-entropy/images/kernels"
)

// Options configures the entropy computation.
type Options = kernels.Options

// DefaultOptions returns an 11x11 window with the fast filter.
func DefaultOptions() Options {
	return kernels.DefaultOptions()
}

// Calculate returns the entropy map of img. The result has the dimensions and
// pixel format of img and is always opaque.
func Calculate(img images.Image, opt Options) images.Image {
	if img.IsGrayscale() {
		return calculateGrayscale(img, opt)
	}
	return calculateRGB(img, opt)
}

func calculateGrayscale(img images.Image, opt Options) images.Image {
	plane := images.ExtractGrayPlane(img)
	return images.RecombineGray(kernels.Apply(plane, opt))
}

func calculateRGB(img images.Image, opt Options) images.Image {
	planes := CalculateChannels(images.Decompose(img), opt)
	return images.RecombineRGB(planes[0], planes[1], planes[2], img.Format)
}

// CalculateChannels filters already decomposed planes, concurrently when more
// than one is given, and returns the entropy planes in the same order.
func CalculateChannels(planes []*images.Plane, opt Options) []*images.Plane {
	out := make([]*images.Plane, len(planes))
	filter := opt.Filter()
	if len(planes) == 1 {
		out[0] = filter(planes[0], opt)
		return out
	}

	var wg sync.WaitGroup
	for i, p := range planes {
		wg.Add(1)
		go func(i int, p *images.Plane) {
			defer wg.Done()
			out[i] = filter(p, opt)
		}(i, p)
	}
	wg.Wait()
	return out
}

// CalculateImage is Calculate for Go images. Gray and Gray16 sources produce an
// *image.Gray, everything else an *image.NRGBA.
func CalculateImage(src image.Image, opt Options) image.Image {
	return images.ToImage(Calculate(images.FromImage(src), opt))
}

// Result is delivered by CalculateAsync.
type Result struct {
	Image images.Image
	Err   error
}

// CalculateAsync runs Calculate on a new goroutine and delivers the result on
// the returned channel, which receives exactly one value and is then closed.
//
// The filter itself cannot be interrupted. If ctx is done first the channel
// receives ctx.Err() and the finished computation is discarded.
func CalculateAsync(ctx context.Context, img images.Image, opt Options) <-chan Result {
	results := make(chan Result, 1)
	done := make(chan images.Image, 1)

	go func() {
		done <- Calculate(img, opt)
	}()

	go func() {
		defer close(results)
		select {
		case out := <-done:
			results <- Result{Image: out}
		case <-ctx.Done():
			results <- Result{Err: ctx.Err()}
		}
	}()
	return results
}
