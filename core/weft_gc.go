package core

import (
	"github.com/encodeous/weft/state"
)

func weftGc(s *state.State) error {
	t := Get[*WfTopology](s)
	t.DbDedup.DeleteExpired()
	return nil
}
