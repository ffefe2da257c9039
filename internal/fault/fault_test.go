package fault

import (
	"errors"
	"io"
	"testing"

	"github.com/containerd/errdefs"
	"github.com/stretchr/testify/assert"
)

var errThing = Kind("thing missing", errdefs.ErrNotFound)

func TestKindClassifies(t *testing.T) {
	assert.Equal(t, "thing missing", errThing.Error())
	assert.True(t, errdefs.IsNotFound(errThing))
	assert.False(t, errdefs.IsUnavailable(errThing))
}

func TestWrap(t *testing.T) {
	err := Wrap(errThing, io.ErrUnexpectedEOF)

	assert.Equal(t, "thing missing: unexpected EOF", err.Error())
	assert.ErrorIs(t, err, errThing)
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
	assert.True(t, errdefs.IsNotFound(err))
}

func TestWrapNil(t *testing.T) {
	assert.Same(t, errThing, Wrap(errThing, nil))
}

func TestWrapf(t *testing.T) {
	err := Wrapf(errThing, "%q in %s", "py", "table")
	assert.Equal(t, `thing missing: "py" in table`, err.Error())
	assert.ErrorIs(t, err, errThing)

	inner := errors.New("boom")
	err = Wrapf(errThing, "step %d: %w", 2, inner)
	assert.ErrorIs(t, err, inner)
	assert.ErrorIs(t, err, errThing)
}
