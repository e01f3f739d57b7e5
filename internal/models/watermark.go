package models

import (
	"fmt"
	"strings"
)

const DefaultWatermarkSize = 10.0

type HorizontalOrigin string

const (
	OriginLeft    HorizontalOrigin = "Left"
	OriginRight   HorizontalOrigin = "Right"
	OriginHCenter HorizontalOrigin = "Center"
)

type VerticalOrigin string

const (
	OriginTop     VerticalOrigin = "Top"
	OriginBottom  VerticalOrigin = "Bottom"
	OriginVCenter VerticalOrigin = "Center"
)

// HorizontalAnchor is Left(offset), Right(offset) or Center. Offset is ignored for Center.
type HorizontalAnchor struct {
	Origin HorizontalOrigin `json:"origin"`
	Offset int              `json:"pos,omitempty"`
}

// VerticalAnchor is Top(offset), Bottom(offset) or Center. Offset is ignored for Center.
type VerticalAnchor struct {
	Origin VerticalOrigin `json:"origin"`
	Offset int            `json:"pos,omitempty"`
}

func Left(offset int) HorizontalAnchor  { return HorizontalAnchor{Origin: OriginLeft, Offset: offset} }
func Right(offset int) HorizontalAnchor { return HorizontalAnchor{Origin: OriginRight, Offset: offset} }
func HCenter() HorizontalAnchor         { return HorizontalAnchor{Origin: OriginHCenter} }
func Top(offset int) VerticalAnchor     { return VerticalAnchor{Origin: OriginTop, Offset: offset} }
func Bottom(offset int) VerticalAnchor  { return VerticalAnchor{Origin: OriginBottom, Offset: offset} }
func VCenter() VerticalAnchor           { return VerticalAnchor{Origin: OriginVCenter} }

func (a HorizontalAnchor) String() string {
	if a.Origin == OriginHCenter {
		return "Center"
	}
	return fmt.Sprintf("%s(%d)", a.Origin, a.Offset)
}

func (a VerticalAnchor) String() string {
	if a.Origin == OriginVCenter {
		return "Center"
	}
	return fmt.Sprintf("%s(%d)", a.Origin, a.Offset)
}

// Point places an overlay on the canvas.
type Point struct {
	X HorizontalAnchor `json:"x"`
	Y VerticalAnchor   `json:"y"`
}

// DefaultPoint is the top-left corner.
func DefaultPoint() Point {
	return Point{X: Left(0), Y: Top(0)}
}

func (p Point) String() string {
	return fmt.Sprintf("x: %s, y: %s", p.X, p.Y)
}

// WatermarkSpec describes one overlay. SizePercent bounds the overlay to that
// percentage of the base image width and height.
type WatermarkSpec struct {
	Source      string  `json:"image_address"`
	Position    Point   `json:"position"`
	Alpha       float64 `json:"alpha"`
	SizePercent float64 `json:"size"`
}

func parseHorizontalOrigin(value string) (HorizontalOrigin, error) {
	switch strings.ToLower(value) {
	case "left":
		return OriginLeft, nil
	case "right":
		return OriginRight, nil
	case "center":
		return OriginHCenter, nil
	default:
		return "", fmt.Errorf("unknown horizontal origin %q", value)
	}
}

func parseVerticalOrigin(value string) (VerticalOrigin, error) {
	switch strings.ToLower(value) {
	case "top":
		return OriginTop, nil
	case "bottom":
		return OriginBottom, nil
	case "center":
		return OriginVCenter, nil
	default:
		return "", fmt.Errorf("unknown vertical origin %q", value)
	}
}
