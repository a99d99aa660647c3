package app

import (
	"errors"
	"flag"
	"fmt"
	"strings"
)

const (
	ImagePNG  = "png"
	ImageJPEG = "jpeg"
)

type ImageFormat string

type Config struct {
	DBPath     string
	SessionID  int64
	Channel    int
	OutputFile string
	Format     ImageFormat
	FFTSize    int
	Overlap    float64
	Theme      ColorTheme
	MinPower   *float64
	MaxPower   *float64
	Verbose    bool
}

var validImageFormats = map[ImageFormat]struct{}{
	ImagePNG:  {},
	ImageJPEG: {},
}

func NewConfig() *Config {
	return &Config{
		Format:  ImagePNG,
		FFTSize: 256,
		Overlap: 0.5,
		Theme:   ClassicTheme,
	}
}

func NewConfigFromCLI() (*Config, error) {
	c := NewConfig()

	var imageFormat, theme string
	var minPower, maxPower float64
	flag.StringVar(&c.DBPath, "db", "", "Path to the capture database file")
	flag.Int64Var(&c.SessionID, "s", 1, "Session ID")
	flag.IntVar(&c.Channel, "ch", 0, "Channel to analyze")
	flag.StringVar(&c.OutputFile, "o", "", "Path to the output file")
	flag.StringVar(&imageFormat, "f", string(ImagePNG), "Output image format. [png, jpeg]")
	flag.IntVar(&c.FFTSize, "fft", c.FFTSize, "Analysis segment length in samples")
	flag.Float64Var(&c.Overlap, "overlap", c.Overlap, "Segment overlap fraction [0, 1)")
	flag.StringVar(&theme, "theme", string(ClassicTheme), "Color theme. [classic, grayscale, thermal]")
	flag.Float64Var(&minPower, "min-power", 0, "Define a manual minimum power in dB (format nn.n)")
	flag.Float64Var(&maxPower, "max-power", 0, "Define a manual maximum power in dB (format nn.n)")
	flag.BoolVar(&c.Verbose, "verbose", false, "Enable more verbose output")
	flag.Parse()

	imageFormat = strings.ToLower(imageFormat)

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "min-power" {
			c.MinPower = &minPower
		}
		if f.Name == "max-power" {
			c.MaxPower = &maxPower
		}
	})

	var err error
	if c.DBPath == "" {
		err = errors.New("db path is required")
	} else if c.SessionID <= 0 {
		err = errors.New("session id is required")
	} else if c.Channel < 0 {
		err = fmt.Errorf("invalid channel: %d", c.Channel)
	} else if c.OutputFile == "" {
		err = errors.New("output file is required")
	} else if _, ok := validImageFormats[ImageFormat(imageFormat)]; !ok {
		err = fmt.Errorf("invalid image format: %s", imageFormat)
	} else if c.FFTSize < 8 {
		err = fmt.Errorf("invalid segment length: %d", c.FFTSize)
	} else if c.Overlap < 0 || c.Overlap >= 1 {
		err = fmt.Errorf("invalid overlap fraction: %v", c.Overlap)
	} else if _, ok := validThemes[ColorTheme(theme)]; !ok {
		err = fmt.Errorf("invalid color theme: %s", theme)
	}

	if err != nil {
		flag.Usage()
		return nil, err
	}

	c.Format = ImageFormat(imageFormat)
	c.Theme = ColorTheme(theme)
	return c, nil
}
