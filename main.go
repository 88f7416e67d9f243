package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/nvr-ai/go-entropy/entropy"
	"github.com/nvr-ai/go-entropy/images"
	"github.com/nvr-ai/go-entropy/images/cvmat"
	"github.com/nvr-ai/go-entropy/images/kernels"
	"github.com/nvr-ai/go-entropy/images/rawplane"
	"github.com/nvr-ai/go-entropy/profiler"
	"github.com/nvr-ai/go-entropy/util"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultSuffix is appended to output names in batch mode.
	DefaultSuffix = "-entropy"
	// RawExtension is the extension of raw entropy plane files.
	RawExtension = ".epln"
)

// Backend selects the image codec implementation.
type Backend string

const (
	BackendStd    Backend = "std"
	BackendOpenCV Backend = "opencv"
)

// Config holds the command line configuration.
type Config struct {
	Input   string
	Output  string
	Dir     string
	OutDir  string
	Suffix  string
	Format  string
	Raw     bool
	Workers int
	Profile bool
	Backend Backend
	MaxSize int
	Quality int
	Options kernels.Options
}

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		log.Fatal(err)
	}

	var prof *profiler.RuntimeProfiler
	if cfg.Profile {
		prof = profiler.NewRuntimeProfiler(profiler.ProfilingOptions{
			ReportInterval: 5 * time.Second,
			Output:         os.Stderr,
		})
		prof.Start()
	}

	start := time.Now()
	if cfg.Dir != "" {
		err = runBatch(context.Background(), cfg, prof)
	} else {
		err = processFile(cfg, cfg.Input, cfg.Output, prof)
	}

	if prof != nil {
		prof.Stop()
		prof.Report(os.Stderr)
	}
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("done in %v", time.Since(start).Truncate(time.Millisecond))
}

// parseFlags parses and validates the command line.
func parseFlags(args []string) (*Config, error) {
	fs := flag.NewFlagSet("entropy", flag.ContinueOnError)

	var (
		cfg      Config
		radius   int
		radiusX  int
		radiusY  int
		method   string
		exponent float64
		backend  string
	)
	fs.StringVar(&cfg.Input, "input", "", "Path to the input image (.bmp, .gif, .jpg, .png, .webp)")
	fs.StringVar(&cfg.Output, "output", "", "Path of the entropy image; the extension selects the format")
	fs.StringVar(&cfg.Dir, "dir", "", "Process every image in this directory")
	fs.StringVar(&cfg.OutDir, "out-dir", "", "Output directory for -dir (default: next to the inputs)")
	fs.StringVar(&cfg.Suffix, "suffix", DefaultSuffix, "Suffix added to output names in -dir mode")
	fs.StringVar(&cfg.Format, "format", "", "Output format for -dir mode (default: same as input)")
	fs.BoolVar(&cfg.Raw, "raw", false, "Also write the entropy planes as a zstd compressed "+RawExtension+" file")
	fs.IntVar(&cfg.Workers, "workers", runtime.NumCPU(), "Files processed concurrently in -dir mode")
	fs.BoolVar(&cfg.Profile, "profile", false, "Report stage timings on stderr")
	fs.StringVar(&backend, "backend", string(BackendStd), "Image codec backend: std or opencv")
	fs.IntVar(&cfg.MaxSize, "max-size", 0, "Downscale inputs so no side exceeds this many pixels (0 = off)")
	fs.IntVar(&cfg.Quality, "quality", images.DefaultQuality, "JPEG/WebP output quality (1-100)")
	fs.IntVar(&radius, "radius", kernels.DefaultRadius, "Neighborhood half extent on both axes")
	fs.IntVar(&radiusX, "radius-x", -1, "Horizontal half extent (overrides -radius)")
	fs.IntVar(&radiusY, "radius-y", -1, "Vertical half extent (overrides -radius)")
	fs.StringVar(&method, "method", kernels.MethodFast.String(), "Entropy filter: fast or naive")
	fs.Float64Var(&exponent, "exponent", kernels.DefaultExponent, "Contrast curve exponent applied to proportional entropy")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	m, err := kernels.ParseMethod(method)
	if err != nil {
		return nil, err
	}
	if exponent <= 0 {
		return nil, fmt.Errorf("-exponent must be positive, got %v", exponent)
	}
	if radius < 0 {
		return nil, fmt.Errorf("-radius must not be negative, got %d", radius)
	}

	cfg.Options = kernels.DefaultOptions().WithRadius(radius)
	if radiusX >= 0 {
		cfg.Options.RadiusX = radiusX
	}
	if radiusY >= 0 {
		cfg.Options.RadiusY = radiusY
	}
	cfg.Options.Method = m
	cfg.Options.Exponent = exponent
	cfg.Backend = Backend(backend)

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validateConfig checks that exactly one of the single file and batch modes is
// selected and that the outputs can be encoded.
func validateConfig(cfg *Config) error {
	if cfg.Backend != BackendStd && cfg.Backend != BackendOpenCV {
		return fmt.Errorf("unknown backend %q", cfg.Backend)
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}

	switch {
	case cfg.Dir != "" && cfg.Input != "":
		return fmt.Errorf("cannot specify both -dir and -input")
	case cfg.Dir == "" && cfg.Input == "":
		return fmt.Errorf("one of -input or -dir is required")
	case cfg.Dir != "":
		if cfg.Format != "" {
			if _, err := images.ParseFormat(cfg.Format); err != nil {
				return err
			}
		}
		return nil
	}

	if err := validateFile(cfg.Input); err != nil {
		return errors.Wrap(err, "image validation error")
	}
	if cfg.Output == "" {
		cfg.Output = util.OutputPath(cfg.Input, "", DefaultSuffix, ".png")
	}
	if _, err := images.FormatFromPath(cfg.Output); err != nil {
		return errors.Wrap(err, "output")
	}
	return nil
}

// validateFile checks if the file exists and has a supported extension
func validateFile(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("%s is a directory", path)
	}
	if !images.IsSupportedPath(path) {
		return fmt.Errorf("unsupported file extension: %s", path)
	}
	return nil
}

// runBatch processes every image of cfg.Dir with a bounded worker pool. The
// first failure stops scheduling further files and is returned.
func runBatch(ctx context.Context, cfg *Config, prof *profiler.RuntimeProfiler) error {
	files, err := util.LoadDirectoryImageFiles(cfg.Dir)
	if err != nil {
		return err
	}
	jobs, err := planBatch(cfg, files)
	if err != nil {
		return err
	}
	if len(jobs) == 0 {
		return fmt.Errorf("no images found in %s", cfg.Dir)
	}
	if cfg.OutDir != "" {
		if err := os.MkdirAll(cfg.OutDir, 0o755); err != nil {
			return errors.Wrap(err, "failed to create output directory")
		}
	}

	log.Printf("processing %d images from %s with %d workers", len(jobs), cfg.Dir, cfg.Workers)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(cfg.Workers)
	for _, job := range jobs {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return processFile(cfg, job.input, job.output, prof)
		})
	}
	return g.Wait()
}

type batchJob struct {
	input  string
	output string
}

// planBatch maps inputs to output paths. Inputs that are themselves entropy
// maps (their name ends in cfg.Suffix) are skipped. Two inputs sharing an
// output, or an output overwriting an input, is an error.
func planBatch(cfg *Config, files []util.ImageFile) ([]batchJob, error) {
	ext := ""
	if cfg.Format != "" {
		format, err := images.ParseFormat(cfg.Format)
		if err != nil {
			return nil, err
		}
		ext = "." + string(format)
	}

	var sources []string
	for _, file := range files {
		name := filepath.Base(file.Path)
		if cfg.Suffix != "" && strings.HasSuffix(strings.TrimSuffix(name, filepath.Ext(name)), cfg.Suffix) {
			log.Printf("skipping %s: already an entropy map", file.Path)
			continue
		}
		sources = append(sources, file.Path)
	}

	inputs := make(map[string]bool, len(sources))
	for _, path := range sources {
		inputs[path] = true
	}

	owners := make(map[string]string, len(sources))
	jobs := make([]batchJob, 0, len(sources))
	for _, path := range sources {
		out := util.OutputPath(path, cfg.OutDir, cfg.Suffix, ext)
		if inputs[out] {
			return nil, fmt.Errorf("output %s would overwrite an input", out)
		}
		if prev, ok := owners[out]; ok {
			return nil, fmt.Errorf("%s and %s both write %s", prev, path, out)
		}
		owners[out] = path
		jobs = append(jobs, batchJob{input: path, output: out})
	}
	return jobs, nil
}

// processFile decodes input, computes its entropy map and writes output (and
// the raw planes when requested).
func processFile(cfg *Config, input, output string, prof *profiler.RuntimeProfiler) error {
	timed := func(name string, fn func() error) error {
		if prof == nil {
			return fn()
		}
		stop := prof.StartOperation(name)
		defer stop()
		return fn()
	}
	run := func(name string, fn func()) {
		if prof == nil {
			fn()
			return
		}
		prof.Time(name, fn)
	}

	var img images.Image
	err := timed("decode", func() (err error) {
		img, err = loadImage(cfg.Backend, input)
		return err
	})
	if err != nil {
		return err
	}

	if cfg.MaxSize > 0 {
		run("downscale", func() {
			img = images.DownscaleImage(img, cfg.MaxSize)
		})
	}

	var out images.Image
	run("entropy", func() {
		out = entropy.Calculate(img, cfg.Options)
	})
	if prof != nil {
		prof.RecordMetric("megapixels", float64(img.Width*img.Height)/1e6)
		prof.RecordMetric("mean_entropy", meanSample(out))
		log.Printf("%s entropy checksum %s", output, images.ComputeChecksum(out))
	}

	if cfg.Raw {
		err = timed("raw", func() error {
			return writeRaw(util.OutputPath(output, "", "", RawExtension), out)
		})
		if err != nil {
			return err
		}
	}

	err = timed("encode", func() error {
		return saveImage(cfg.Backend, output, out, images.EncodeOptions{Quality: cfg.Quality})
	})
	if err != nil {
		return err
	}

	log.Printf("%s -> %s (%dx%d %v, r=%d,%d, %v)", input, output, out.Width, out.Height,
		img.Format, cfg.Options.RadiusX, cfg.Options.RadiusY, cfg.Options.Method)
	return nil
}

func loadImage(backend Backend, path string) (images.Image, error) {
	if backend == BackendOpenCV {
		return cvmat.ReadFile(path)
	}
	return images.DecodeFile(path)
}

func saveImage(backend Backend, path string, img images.Image, opts images.EncodeOptions) error {
	if backend == BackendOpenCV {
		return cvmat.WriteFile(path, img)
	}
	return images.EncodeFile(path, img, opts)
}

func writeRaw(path string, img images.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "failed to create raw plane file")
	}
	if err := rawplane.WriteImage(f, img); err != nil {
		f.Close()
		return errors.Wrapf(err, "failed to write %s", path)
	}
	return f.Close()
}

// meanSample returns the mean 8-bit sample of an entropy map over all channels.
func meanSample(img images.Image) float64 {
	if img.Empty() {
		return 0
	}
	var sum uint64
	if img.IsGrayscale() {
		for _, v := range img.Gray {
			sum += uint64(v)
		}
		return float64(sum) / float64(len(img.Gray))
	}
	for _, px := range img.ARGB {
		sum += uint64(px>>16&0xff) + uint64(px>>8&0xff) + uint64(px&0xff)
	}
	return float64(sum) / float64(3*len(img.ARGB))
}
