package refs

import (
	"fmt"
	"strings"
)

const anonymousPrefix = "__anonymous_"

// AnonymousTarget returns the target name given to the n-th anonymous
// hyperlink target and reference of a document, counting from 1.
func AnonymousTarget(n int) string {
	return fmt.Sprintf("%s%d", anonymousPrefix, n)
}

// IsAnonymousTarget reports whether name was made by AnonymousTarget.
func IsAnonymousTarget(name string) bool {
	return strings.HasPrefix(name, anonymousPrefix)
}
