// Package ids generates the next identifier in a PREFIX-NN numbering
// scheme. Generation is pure and deterministic: uniqueness under
// concurrent clients is a store-side precondition check, not something
// this package can guarantee.
package ids

import (
	"fmt"
	"regexp"
	"strconv"
)

// NextProjectID parses the numeric suffix out of every existing identifier
// matching PREFIX-(digits) case-insensitively, takes the maximum
// (defaulting to 0 when none match), increments it, and renders the result
// zero-padded to at least two digits.
func NextProjectID(existing []string, prefix string) string {
	re := regexp.MustCompile(`(?i)^` + regexp.QuoteMeta(prefix) + `-(\d+)$`)

	max := 0
	for _, id := range existing {
		m := re.FindStringSubmatch(id)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%02d", prefix, max+1)
}
