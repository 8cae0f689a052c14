package exec

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func divide(a, b uint32) (q uint32, err error) {
	defer func() { err = RecoverTrap(recover(), err) }()
	return a / b, nil
}

func TestRecoverTrap(t *testing.T) {
	_, err := divide(1, 0)
	assert.Equal(t, TrapIntegerDivideByZero, err)

	q, err := divide(7, 2)
	assert.NoError(t, err)
	assert.Equal(t, uint32(3), q)

	err = func() (err error) {
		defer func() { err = RecoverTrap(recover(), err) }()
		I32DivS(math.MinInt32, -1)
		return nil
	}()
	assert.Equal(t, TrapIntegerOverflow, err)

	assert.Panics(t, func() {
		defer func() { _ = RecoverTrap(recover(), nil) }()
		panic(errors.New("not a trap"))
	})
}

func TestSignedRemainder(t *testing.T) {
	assert.Equal(t, int32(0), I32RemS(math.MinInt32, -1))
	assert.Equal(t, int32(-1), I32RemS(-7, 2))
	assert.Equal(t, int64(0), I64RemS(math.MinInt64, -1))
	assert.Equal(t, int64(1), I64RemS(7, -3))
}
