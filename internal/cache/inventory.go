package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix         = "user:%d"
	EventKeyPrefix        = "event:%d"
	EventRatingsPrefix    = "event:%d:ratings"
	EventsListPrefix      = "events:list:%s"
	blacklistTokenPattern = "blacklist:token:%s"
)

const (
	UserTTL       = 5 * time.Minute
	EventTTL      = 10 * time.Minute
	RatingsTTL    = 2 * time.Minute
	EventsListTTL = 1 * time.Minute
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func EventKey(eventID uint) string {
	return fmt.Sprintf(EventKeyPrefix, eventID)
}

func EventRatingsKey(eventID uint) string {
	return fmt.Sprintf(EventRatingsPrefix, eventID)
}

// EventsListKey caches one page of the filtered list. The signature encodes
// the normalized filter set plus page/limit.
func EventsListKey(signature string) string {
	return fmt.Sprintf(EventsListPrefix, signature)
}

func BlacklistTokenKey(jti string) string {
	return fmt.Sprintf(blacklistTokenPattern, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateEvent(ctx context.Context, eventID uint) {
	Invalidate(ctx, EventKey(eventID))
	Invalidate(ctx, EventRatingsKey(eventID))
	InvalidateEventLists(ctx)
}

// InvalidateEventLists drops every cached list page. List keys share the
// events:list: prefix so a SCAN+DEL sweep is enough.
func InvalidateEventLists(ctx context.Context) {
	if client == nil {
		return
	}
	iter := client.Scan(ctx, 0, "events:list:*", 100).Iterator()
	for iter.Next(ctx) {
		client.Del(ctx, iter.Val())
	}
}
