package useragent

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Dokkaebi/1.2.0 ("+runtime.GOOS+"; "+runtime.GOARCH+")", New("1.2.0"))
}

func TestHeader(t *testing.T) {
	t.Parallel()

	assert.Regexp(t, `^Dokkaebi/\S+ \(\S+; \S+\)$`, Header)
}
