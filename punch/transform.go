package punch

import (
	"fmt"
	"strings"

	"github.com/samber/lo"

	"github.com/treepunch/treepunch/antglob"
)

// NameTransform maps an entry's path segments to transformed segments. It
// must preserve the number of segments. A nil NameTransform preserves names
// as they are.
type NameTransform func(parts []string, entry antglob.Entry) []string

// LowerNameTransform changes all path segments to lower case.
var LowerNameTransform NameTransform = func(parts []string, _ antglob.Entry) []string {
	return lo.Map(parts, func(part string, _ int) string { return strings.ToLower(part) })
}

// UpperNameTransform changes all path segments to upper case.
var UpperNameTransform NameTransform = func(parts []string, _ antglob.Entry) []string {
	return lo.Map(parts, func(part string, _ int) string { return strings.ToUpper(part) })
}

// NameTransformByName resolves a transformation mode name: "preserve",
// "lower" or "upper".
func NameTransformByName(name string) (NameTransform, error) {
	switch name {
	case "preserve":
		return nil, nil
	case "lower":
		return LowerNameTransform, nil
	case "upper":
		return UpperNameTransform, nil
	}
	return nil, fmt.Errorf("name transformation is %q but must be one of: lower, preserve, upper", name)
}
