package models

import (
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/phambaophuc/dali/internal/apperror"
)

// ParseImageRequest decodes the bracketed query string, e.g.
//
//	image_address=a.jpg&size[width]=100&watermarks[0][position][x][origin]=Left&watermarks[0][position][x][pos]=10
//
// Unknown keys are ignored. Every decoding failure is an InvalidRequest.
func ParseImageRequest(values url.Values, policy ValidationPolicy) (*ImageRequest, error) {
	source := strings.TrimSpace(values.Get("image_address"))
	if source == "" {
		return nil, apperror.InvalidRequest("image_address is required")
	}

	req := NewImageRequest(source)

	var err error
	if req.Size.Width, err = parseOptionalInt(values, "size[width]"); err != nil {
		return nil, err
	}
	if req.Size.Height, err = parseOptionalInt(values, "size[height]"); err != nil {
		return nil, err
	}

	if v := values.Get("format"); v != "" {
		if req.Format, err = ParseOutputFormat(v); err != nil {
			return nil, apperror.InvalidRequest(err.Error())
		}
	}

	if v := values.Get("quality"); v != "" {
		if req.Quality, err = parseInt(v, "quality"); err != nil {
			return nil, err
		}
	}

	if v := values.Get("rotation"); v != "" {
		if req.Rotation, err = ParseRotation(v); err != nil {
			return nil, apperror.InvalidRequest(err.Error())
		}
	}

	if req.Watermarks, err = parseWatermarks(values); err != nil {
		return nil, err
	}

	if err := policy.Apply(req); err != nil {
		return nil, err
	}

	return req, nil
}

type watermarkFields struct {
	source  string
	alpha   *float64
	size    *float64
	xOrigin string
	xPos    *int
	yOrigin string
	yPos    *int
}

func parseWatermarks(values url.Values) ([]WatermarkSpec, error) {
	fields := make(map[int]*watermarkFields)

	for key, vals := range values {
		if !strings.HasPrefix(key, "watermarks[") || len(vals) == 0 {
			continue
		}

		path, err := splitBracketKey(key)
		if err != nil || len(path) < 3 {
			return nil, apperror.InvalidRequest(fmt.Sprintf("malformed parameter %q", key))
		}

		index, err := strconv.Atoi(path[1])
		if err != nil || index < 0 {
			return nil, apperror.InvalidRequest(fmt.Sprintf("invalid watermark index in %q", key))
		}

		f, ok := fields[index]
		if !ok {
			f = &watermarkFields{}
			fields[index] = f
		}

		if err := f.set(key, path[2:], vals[0]); err != nil {
			return nil, err
		}
	}

	indexes := make([]int, 0, len(fields))
	for i := range fields {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	watermarks := make([]WatermarkSpec, 0, len(indexes))
	for _, i := range indexes {
		wm, err := fields[i].build(i)
		if err != nil {
			return nil, err
		}
		watermarks = append(watermarks, wm)
	}

	return watermarks, nil
}

func (f *watermarkFields) set(key string, path []string, value string) error {
	var err error
	switch strings.Join(path, ".") {
	case "image_address":
		f.source = strings.TrimSpace(value)
	case "alpha":
		f.alpha, err = parseFloatPtr(value, key)
	case "size":
		f.size, err = parseFloatPtr(value, key)
	case "position.x.origin":
		f.xOrigin = value
	case "position.x.pos":
		f.xPos, err = parseIntPtr(value, key)
	case "position.y.origin":
		f.yOrigin = value
	case "position.y.pos":
		f.yPos, err = parseIntPtr(value, key)
	}
	return err
}

func (f *watermarkFields) build(index int) (WatermarkSpec, error) {
	if f.source == "" {
		return WatermarkSpec{}, apperror.InvalidRequest(fmt.Sprintf("watermarks[%d][image_address] is required", index))
	}

	wm := NewWatermarkSpec(f.source)
	if f.alpha != nil {
		wm.Alpha = *f.alpha
	}
	if f.size != nil {
		wm.SizePercent = *f.size
	}

	x, err := horizontalAnchor(f.xOrigin, f.xPos)
	if err != nil {
		return WatermarkSpec{}, apperror.InvalidRequest(fmt.Sprintf("watermarks[%d][position][x]: %v", index, err))
	}
	y, err := verticalAnchor(f.yOrigin, f.yPos)
	if err != nil {
		return WatermarkSpec{}, apperror.InvalidRequest(fmt.Sprintf("watermarks[%d][position][y]: %v", index, err))
	}
	wm.Position = Point{X: x, Y: y}

	return wm, nil
}

func horizontalAnchor(origin string, pos *int) (HorizontalAnchor, error) {
	if origin == "" {
		if pos != nil {
			return HorizontalAnchor{}, fmt.Errorf("pos given without origin")
		}
		return Left(0), nil
	}

	o, err := parseHorizontalOrigin(origin)
	if err != nil {
		return HorizontalAnchor{}, err
	}
	if o == OriginHCenter {
		return HCenter(), nil
	}
	if pos == nil {
		return HorizontalAnchor{}, fmt.Errorf("origin %s requires pos", o)
	}
	return HorizontalAnchor{Origin: o, Offset: *pos}, nil
}

func verticalAnchor(origin string, pos *int) (VerticalAnchor, error) {
	if origin == "" {
		if pos != nil {
			return VerticalAnchor{}, fmt.Errorf("pos given without origin")
		}
		return Top(0), nil
	}

	o, err := parseVerticalOrigin(origin)
	if err != nil {
		return VerticalAnchor{}, err
	}
	if o == OriginVCenter {
		return VCenter(), nil
	}
	if pos == nil {
		return VerticalAnchor{}, fmt.Errorf("origin %s requires pos", o)
	}
	return VerticalAnchor{Origin: o, Offset: *pos}, nil
}

// splitBracketKey turns "a[b][c]" into ["a", "b", "c"].
func splitBracketKey(key string) ([]string, error) {
	open := strings.IndexByte(key, '[')
	if open <= 0 {
		return nil, fmt.Errorf("no brackets in %q", key)
	}

	parts := []string{key[:open]}
	rest := key[open:]
	for rest != "" {
		if rest[0] != '[' {
			return nil, fmt.Errorf("unexpected %q in %q", rest[0], key)
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			return nil, fmt.Errorf("unbalanced brackets in %q", key)
		}
		parts = append(parts, rest[1:end])
		rest = rest[end+1:]
	}

	return parts, nil
}

func parseInt(value, fieldName string) (int, error) {
	num, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0, apperror.InvalidRequest(fmt.Sprintf("invalid %s: must be a number", fieldName))
	}
	return num, nil
}

func parseOptionalInt(values url.Values, key string) (*int, error) {
	v := values.Get(key)
	if v == "" {
		return nil, nil
	}
	return parseIntPtr(v, key)
}

func parseIntPtr(value, fieldName string) (*int, error) {
	num, err := parseInt(value, fieldName)
	if err != nil {
		return nil, err
	}
	return &num, nil
}

func parseFloatPtr(value, fieldName string) (*float64, error) {
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return nil, apperror.InvalidRequest(fmt.Sprintf("invalid %s: must be a number", fieldName))
	}
	return &num, nil
}
