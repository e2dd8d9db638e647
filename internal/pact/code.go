package pact

import (
	"fmt"
	"strconv"
	"strings"
)

// AssembleCode renders a Pact function call from a function name and its
// arguments. Strings are quoted; numbers and booleans are rendered as-is.
func AssembleCode(function string, args ...interface{}) string {
	parts := make([]string, 0, len(args)+1)
	parts = append(parts, function)
	for _, arg := range args {
		parts = append(parts, formatArg(arg))
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func formatArg(arg interface{}) string {
	switch v := arg.(type) {
	case string:
		return `"` + v + `"`
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
