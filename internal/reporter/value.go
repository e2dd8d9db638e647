package reporter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/tellor-io/telliot-kadena/internal/pact"
)

// FormatValue renders a price as the oracle's wire value: the decimal string
// of price*1e18, base64url-encoded. The on-chain records store the grains in
// fixed notation with a ".0" suffix below 1e16 and in two-digit exponent
// notation from 1e16 up, so the same thresholds are applied here.
func FormatValue(price float64) string {
	return pact.Base64URLEncodeString(formatGrains(price * 1e18))
}

// formatGrains renders a float with shortest round-trip digits, switching
// from fixed to exponent notation at 1e16 and below 1e-4.
func formatGrains(v float64) string {
	sci := strconv.FormatFloat(v, 'e', -1, 64)
	i := strings.IndexByte(sci, 'e')
	mant, expPart := sci[:i], sci[i+1:]
	exp, _ := strconv.Atoi(expPart)

	sign := ""
	if strings.HasPrefix(mant, "-") {
		sign, mant = "-", mant[1:]
	}
	digits := strings.Replace(mant, ".", "", 1)

	if exp >= -4 && exp < 16 {
		switch {
		case exp >= len(digits)-1:
			return sign + digits + strings.Repeat("0", exp-len(digits)+1) + ".0"
		case exp >= 0:
			return sign + digits[:exp+1] + "." + digits[exp+1:]
		default:
			return sign + "0." + strings.Repeat("0", -exp-1) + digits
		}
	}

	out := digits[:1]
	if len(digits) > 1 {
		out += "." + digits[1:]
	}
	expSign := "+"
	if exp < 0 {
		expSign, exp = "-", -exp
	}
	return fmt.Sprintf("%s%se%s%02d", sign, out, expSign, exp)
}
