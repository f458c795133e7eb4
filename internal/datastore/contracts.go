package datastore

import "campuspulse/internal/interfaces"

var (
	_ interfaces.UserStore      = (*PGUserStore)(nil)
	_ interfaces.EventStore     = (*PGEventStore)(nil)
	_ interfaces.CheckInStore   = (*PGCheckInStore)(nil)
	_ interfaces.ChallengeStore = (*PGChallengeStore)(nil)
	_ interfaces.LedgerStore    = (*PGLedgerStore)(nil)
	_ interfaces.PrizeStore     = (*PGPrizeStore)(nil)
	_ interfaces.ConfigStore    = (*PGConfigStore)(nil)
)
