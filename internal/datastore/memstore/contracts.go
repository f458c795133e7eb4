package memstore

import "campuspulse/internal/interfaces"

var (
	_ interfaces.UserStore      = (*Store)(nil)
	_ interfaces.EventStore     = (*Store)(nil)
	_ interfaces.CheckInStore   = (*Store)(nil)
	_ interfaces.ChallengeStore = (*Store)(nil)
	_ interfaces.LedgerStore    = (*Store)(nil)
	_ interfaces.PrizeStore     = (*Store)(nil)
	_ interfaces.ConfigStore    = (*Store)(nil)
)
