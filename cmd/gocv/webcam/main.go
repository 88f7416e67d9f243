package main

import (
	"flag"
	"fmt"
	"image"
	"image/color"
	"log"
	"time"

	"github.com/nvr-ai/go-entropy/entropy"
	"github.com/nvr-ai/go-entropy/images/cvmat"
	"github.com/nvr-ai/go-entropy/images/kernels"
	"gocv.io/x/gocv"
)

func main() {
	var (
		deviceID int
		radius   int
		scale    float64
		gray     bool
	)
	flag.IntVar(&deviceID, "device", 0, "Video capture device ID")
	flag.IntVar(&radius, "radius", kernels.DefaultRadius, "Neighborhood half extent")
	flag.Float64Var(&scale, "scale", 0.5, "Resize factor applied to frames before filtering")
	flag.BoolVar(&gray, "gray", false, "Filter a grayscale version of each frame")
	flag.Parse()

	// open webcam
	webcam, err := gocv.OpenVideoCapture(deviceID)
	if err != nil {
		log.Fatalf("Error opening video capture device: %v", deviceID)
	}
	defer webcam.Close()

	// open display window
	window := gocv.NewWindow("Local Entropy")
	defer window.Close()

	// prepare image matrices
	img := gocv.NewMat()
	defer img.Close()
	small := gocv.NewMat()
	defer small.Close()

	opt := kernels.DefaultOptions().WithRadius(radius)

	// FPS tracking variables
	fps := 0.0
	frameCount := 0
	lastTime := time.Now()

	fmt.Printf("start reading camera device: %v\n", deviceID)
	for {
		if ok := webcam.Read(&img); !ok {
			fmt.Printf("cannot read device %v\n", deviceID)
			return
		}
		if img.Empty() {
			continue
		}

		// Update FPS calculation
		frameCount++
		currentTime := time.Now()
		elapsed := currentTime.Sub(lastTime).Seconds()
		if elapsed >= 1.0 {
			fps = float64(frameCount) / elapsed
			frameCount = 0
			lastTime = currentTime
		}

		gocv.Resize(img, &small, image.Point{}, scale, scale, gocv.InterpolationArea)
		if gray {
			gocv.CvtColor(small, &small, gocv.ColorBGRToGray)
		}

		frame, err := cvmat.FromMat(small)
		if err != nil {
			log.Printf("frame conversion failed: %v", err)
			continue
		}

		start := time.Now()
		heat := entropy.Calculate(frame, opt)
		took := time.Since(start)

		out, err := cvmat.ToMat(heat)
		if err != nil {
			log.Printf("entropy conversion failed: %v", err)
			continue
		}

		text := fmt.Sprintf("FPS: %.1f | entropy: %v", fps, took.Truncate(time.Millisecond))
		gocv.PutText(&out, text, image.Pt(10, 20), gocv.FontHersheyPlain, 1.2, color.RGBA{255, 255, 255, 0}, 2)

		// show the image in the window, and wait 1 millisecond
		window.IMShow(out)
		out.Close()
		if window.WaitKey(1) == 27 {
			return
		}
	}
}
