package xid

import (
	"fmt"

	"github.com/google/uuid"
)

// New returns a random identifier such as "tok-6f1c...". It is used for
// values that are never stored as primary keys, like token ids.
func New(prefix string) string {
	return fmt.Sprintf("%s-%s", prefix, uuid.NewString())
}
