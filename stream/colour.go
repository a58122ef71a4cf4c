package stream

import (
	"github.com/lucasb-eyer/go-colorful"

	"github.com/matt-g-everett/ledanim/animation"
)

// Suffixes of the HCL props a named colour expands into.
const (
	hueSuffix    = ".h"
	chromaSuffix = ".c"
	lumSuffix    = ".l"
)

// ColourProps splits c into HCL keyframe props named name.h, name.c and
// name.l so that colours animate like any other number.
func ColourProps(name string, c colorful.Color) map[string]*float64 {
	h, ch, l := c.Hcl()
	return map[string]*float64{
		name + hueSuffix:    animation.V(h),
		name + chromaSuffix: animation.V(ch),
		name + lumSuffix:    animation.V(l),
	}
}

// ColourFromProps rebuilds the colour stored under name. It reports false if
// any component is missing.
func ColourFromProps(props animation.Props, name string) (colorful.Color, bool) {
	h, ok := props[name+hueSuffix]
	if !ok {
		return colorful.Color{}, false
	}
	c, ok := props[name+chromaSuffix]
	if !ok {
		return colorful.Color{}, false
	}
	l, ok := props[name+lumSuffix]
	if !ok {
		return colorful.Color{}, false
	}
	return colorful.Hcl(h, c, l), true
}
