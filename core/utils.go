package core

import (
	"reflect"

	"github.com/encodeous/weft/state"
)

func Get[T state.WfModule](s *state.State) T {
	t := reflect.TypeFor[T]()
	return s.Modules[t.String()].(T)
}

func absDiff(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}
