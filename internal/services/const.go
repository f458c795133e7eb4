package services

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var ErrCheckInOutsideWindow = errors.New("check-in outside the event window")
var ErrRSVPLock = errors.New("rsvp locked")
var ErrCheckInLock = errors.New("check-in locked")
var ErrReviewLock = errors.New("review locked")
var ErrRedeemLock = errors.New("redemption locked")

const (
	CONFIG_RSVP_POINTS            = "RSVP_POINTS"
	CONFIG_CHECKIN_POINTS         = "CHECKIN_POINTS"
	CONFIG_CHALLENGE_POINTS       = "CHALLENGE_POINTS"
	CONFIG_CHECKIN_GRACE_MINUTES  = "CHECKIN_GRACE_MINUTES"
	CONFIG_CHECKIN_WINDOW_MINUTES = "CHECKIN_WINDOW_MINUTES"
	CONFIG_PERIOD_START           = "PERIOD_START"
	CONFIG_LEADERBOARD_LIMIT      = "LEADERBOARD_LIMIT"

	DEFAULT_RSVP_POINTS            = 10
	DEFAULT_CHECKIN_POINTS         = 25
	DEFAULT_CHALLENGE_POINTS       = 50
	DEFAULT_CHECKIN_GRACE_MINUTES  = 30
	DEFAULT_CHECKIN_WINDOW_MINUTES = 180
	DEFAULT_LEADERBOARD_LIMIT      = 20

	DEFAULT_PAGE_LIMIT = 50
	MAX_PAGE_LIMIT     = 100

	CACHE_TTL_15_SECONDS = 15 * time.Second
	CACHE_TTL_1_MIN      = 1 * time.Minute
	CACHE_TTL_5_MINS     = 5 * time.Minute
)

func LockKeyEventRSVP(eventID int64) string {
	return fmt.Sprintf("lock:event-rsvp:%d", eventID)
}

func LockKeyCheckIn(eventID int64, userID string) string {
	return fmt.Sprintf("lock:checkin:%d:%s", eventID, userID)
}

func LockKeySubmissionReview(submissionID string) string {
	return fmt.Sprintf("lock:submission-review:%s", submissionID)
}

func LockKeyUserRedeem(userID string) string {
	return fmt.Sprintf("lock:user-redeem:%s", userID)
}

// cache keys

func DBKeyEvents(category string, limit, offset int) string {
	return fmt.Sprintf("events:%s:%d:%d", strings.ToLower(category), limit, offset)
}

func DBKeyEvent(eventID int64) string {
	return fmt.Sprintf("event:%d", eventID)
}

func DBKeyLeaderboard(scope, window string, limit int) string {
	return fmt.Sprintf("leaderboard:%s:%s:%d", scope, window, limit)
}

func DBKeyPrizes(limit, offset int) string {
	return fmt.Sprintf("prizes:%d:%d", limit, offset)
}

func DBKeyConfig(key string) string {
	return fmt.Sprintf("config:%s", strings.ToLower(key))
}

func DBKeyUserBadges(userID string) string {
	return fmt.Sprintf("user:%s:badges", userID)
}

// PatternLeaderboard matches every cached leaderboard page; the cron job
// clears it after warming fresh rankings.
func PatternLeaderboard() string {
	return "leaderboard:*"
}
