// Package easing maps curve names to easing functions.
package easing

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/fogleman/ease"
)

// ErrUnknownEasing is returned by Lookup for names not in the catalog.
var ErrUnknownEasing = errors.New("unknown easing")

// Linear is the curve used when a keyframe names none.
const Linear = "linear"

// Default is the identity curve.
var Default ease.Function = ease.Linear

var catalog = map[string]ease.Function{
	"linear":       ease.Linear,
	"inQuad":       ease.InQuad,
	"outQuad":      ease.OutQuad,
	"inOutQuad":    ease.InOutQuad,
	"inCubic":      ease.InCubic,
	"outCubic":     ease.OutCubic,
	"inOutCubic":   ease.InOutCubic,
	"inQuart":      ease.InQuart,
	"outQuart":     ease.OutQuart,
	"inOutQuart":   ease.InOutQuart,
	"inQuint":      ease.InQuint,
	"outQuint":     ease.OutQuint,
	"inOutQuint":   ease.InOutQuint,
	"inSine":       ease.InSine,
	"outSine":      ease.OutSine,
	"inOutSine":    ease.InOutSine,
	"inExpo":       ease.InExpo,
	"outExpo":      ease.OutExpo,
	"inOutExpo":    ease.InOutExpo,
	"inCirc":       ease.InCirc,
	"outCirc":      ease.OutCirc,
	"inOutCirc":    ease.InOutCirc,
	"inElastic":    ease.InElastic,
	"outElastic":   ease.OutElastic,
	"inOutElastic": ease.InOutElastic,
	"inBack":       ease.InBack,
	"outBack":      ease.OutBack,
	"inOutBack":    ease.InOutBack,
	"inBounce":     ease.InBounce,
	"outBounce":    ease.OutBounce,
	"inOutBounce":  ease.InOutBounce,
}

// folded indexes the catalog by lower-cased name.
var folded = func() map[string]string {
	m := make(map[string]string, len(catalog))
	for name := range catalog {
		m[strings.ToLower(name)] = name
	}
	return m
}()

// Canonical returns the catalog spelling of name. An empty name is linear.
func Canonical(name string) (string, error) {
	if name == "" {
		return Linear, nil
	}
	canonical, ok := folded[strings.ToLower(name)]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEasing, name)
	}
	return canonical, nil
}

// Lookup returns the curve registered under name. Matching ignores case.
func Lookup(name string) (ease.Function, error) {
	canonical, err := Canonical(name)
	if err != nil {
		return nil, err
	}
	return catalog[canonical], nil
}

// Names lists every curve in the catalog, sorted.
func Names() []string {
	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
