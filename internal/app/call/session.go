package call

import (
	"time"

	"github.com/dkeye/Ring/internal/domain"
)

// session is one two-party call instance, alive from initiate until
// hangup, rejection, timeout or a member's disconnect.
type session struct {
	id         domain.CallID
	caller     domain.UserID
	callee     domain.UserID
	kind       domain.CallType
	callerMeta domain.Profile
	accepted   bool
	timer      *time.Timer
}

func (s *session) other(uid domain.UserID) domain.UserID {
	if uid == s.caller {
		return s.callee
	}
	return s.caller
}

func (s *session) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
