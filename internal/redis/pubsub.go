package redisx

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// AvailabilityPubSub broadcasts "availability changed" notifications so
// dashboard listeners can refresh a venue's day view without polling.
type AvailabilityPubSub struct {
	rdb     *redis.Client
	channel string
}

func NewAvailabilityPubSub(rdb *redis.Client) *AvailabilityPubSub {
	return &AvailabilityPubSub{
		rdb:     rdb,
		channel: ChannelAvailabilityChanged(),
	}
}

type availabilityChangedMsg struct {
	Type    string `json:"type"`
	VenueID int64  `json:"venue_id"`
	Date    string `json:"date"`
	TsUnix  int64  `json:"ts_unix"`
}

func (p *AvailabilityPubSub) PublishAvailabilityChanged(ctx context.Context, venueID int64, date time.Time) error {
	msg := availabilityChangedMsg{
		Type:    "availability_changed",
		VenueID: venueID,
		Date:    date.Format("2006-01-02"),
		TsUnix:  time.Now().Unix(),
	}

	b, _ := json.Marshal(msg)

	return p.rdb.Publish(ctx, p.channel, b).Err()
}

func (p *AvailabilityPubSub) Subscribe(ctx context.Context, handler func(ctx context.Context, venueID int64, date string)) error {
	sub := p.rdb.Subscribe(ctx, p.channel)
	defer sub.Close()

	ch := sub.Channel(redis.WithChannelSize(256))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var ev availabilityChangedMsg
			if err := json.Unmarshal([]byte(m.Payload), &ev); err == nil &&
				ev.VenueID != 0 {
				handler(ctx, ev.VenueID, ev.Date)
			}
		}
	}
}
