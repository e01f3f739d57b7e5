// Package codectest provides an in-memory codec.Codec for pipeline tests.
// Its "images" are byte strings of the form name:WxH and it records every
// call it receives.
package codectest

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/phambaophuc/dali/internal/codec"
	"github.com/phambaophuc/dali/internal/models"
)

// Encode builds a fixture the fake codec can decode.
func Encode(name string, w, h int) []byte {
	return []byte(fmt.Sprintf("%s:%dx%d", name, w, h))
}

type Image struct {
	Name        string
	W, H        int
	Alpha       bool
	AlphaFactor float64
	Closed      bool
	orientation int
}

func (i *Image) Width() int  { return i.W }
func (i *Image) Height() int { return i.H }
func (i *Image) Close()      { i.Closed = true }

type Codec struct {
	// Orientations maps fixture names to an EXIF orientation.
	Orientations map[string]int
	// FailOn makes the named operation fail, e.g. "encode" or "composite".
	FailOn map[string]bool
	// Unsupported lists formats Supports rejects.
	Unsupported map[models.OutputFormat]bool

	mu     sync.Mutex
	calls  []string
	images []*Image
}

func New() *Codec {
	return &Codec{
		Orientations: map[string]int{},
		FailOn:       map[string]bool{},
		Unsupported:  map[models.OutputFormat]bool{},
	}
}

func (c *Codec) record(format string, args ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls = append(c.calls, fmt.Sprintf(format, args...))
}

func (c *Codec) fail(op string) error {
	if c.FailOn[op] {
		return codec.ProcessingError(op, errors.New("injected failure"))
	}
	return nil
}

// Calls returns every recorded call in order.
func (c *Codec) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// Composited returns the overlay names composited, in order.
func (c *Codec) Composited() []string {
	var names []string
	for _, call := range c.Calls() {
		if rest, ok := strings.CutPrefix(call, "composite "); ok {
			names = append(names, strings.Fields(rest)[0])
		}
	}
	return names
}

// Decoded reports how many images were opened.
func (c *Codec) Decoded() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.images)
}

// AllClosed reports whether every decoded image was released.
func (c *Codec) AllClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, img := range c.images {
		if !img.Closed {
			return false
		}
	}
	return true
}

func parse(data []byte) (string, int, int, error) {
	name, dims, ok := strings.Cut(string(data), ":")
	if !ok {
		return "", 0, 0, errors.New("not a fixture")
	}
	var w, h int
	if _, err := fmt.Sscanf(dims, "%dx%d", &w, &h); err != nil || w <= 0 || h <= 0 {
		return "", 0, 0, errors.New("bad fixture dimensions")
	}
	return name, w, h, nil
}

func (c *Codec) Name() string { return "fake" }

func (c *Codec) Supports(format models.OutputFormat) bool {
	return !c.Unsupported[format]
}

func (c *Codec) Decode(data []byte, randomAccess bool) (codec.Image, error) {
	name, w, h, err := parse(data)
	if err != nil {
		c.record("decode <invalid>")
		return nil, codec.OpenError("decode", err)
	}
	c.record("decode %s random=%t", name, randomAccess)

	img := &Image{Name: name, W: w, H: h, AlphaFactor: 1, orientation: c.Orientations[name]}
	c.mu.Lock()
	c.images = append(c.images, img)
	c.mu.Unlock()
	return img, nil
}

func (c *Codec) Orientation(data []byte) int {
	name, _, _, err := parse(data)
	if err != nil {
		return 0
	}
	return c.Orientations[name]
}

func (c *Codec) AutoRotate(img codec.Image) (codec.Image, error) {
	i := img.(*Image)
	c.record("autorotate %s", i.Name)
	if err := c.fail("autorotate"); err != nil {
		return img, err
	}
	if i.orientation >= 5 {
		i.W, i.H = i.H, i.W
	}
	i.orientation = 1
	return i, nil
}

func (c *Codec) Rotate(img codec.Image, angle codec.Angle) (codec.Image, error) {
	i := img.(*Image)
	c.record("rotate %s %d", i.Name, angle)
	if err := c.fail("rotate"); err != nil {
		return img, err
	}
	if angle == codec.Angle90 || angle == codec.Angle270 {
		i.W, i.H = i.H, i.W
	}
	return i, nil
}

func (c *Codec) Resize(img codec.Image, scale float64) (codec.Image, error) {
	i := img.(*Image)
	c.record("resize %s %.4f", i.Name, scale)
	if err := c.fail("resize"); err != nil {
		return img, err
	}
	i.W = max(1, int(math.Round(float64(i.W)*scale)))
	i.H = max(1, int(math.Round(float64(i.H)*scale)))
	return i, nil
}

func (c *Codec) EnsureAlpha(img codec.Image) (codec.Image, error) {
	i := img.(*Image)
	c.record("alpha %s", i.Name)
	i.Alpha = true
	return i, nil
}

func (c *Codec) ScaleAlpha(img codec.Image, factor float64) (codec.Image, error) {
	i := img.(*Image)
	c.record("scalealpha %s %g", i.Name, factor)
	i.AlphaFactor *= factor
	return i, nil
}

func (c *Codec) CompositeOver(base, overlay codec.Image, x, y int) (codec.Image, error) {
	b, o := base.(*Image), overlay.(*Image)
	c.record("composite %s %dx%d at %d,%d", o.Name, o.W, o.H, x, y)
	if err := c.fail("composite"); err != nil {
		return base, err
	}
	return b, nil
}

func (c *Codec) Encode(img codec.Image, format models.OutputFormat, opts codec.EncodeOptions) ([]byte, error) {
	i := img.(*Image)
	c.record("encode %s %s q=%d", i.Name, format, opts.Quality)
	if err := c.fail("encode"); err != nil {
		return nil, err
	}
	return []byte(fmt.Sprintf("%s:%dx%d.%s", i.Name, i.W, i.H, format)), nil
}
