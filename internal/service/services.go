package service

import (
	redisx "github.com/okareva/tably/internal/redis"
	postgres "github.com/okareva/tably/internal/repository/postgres"
	redis "github.com/okareva/tably/internal/repository/redis"
	"github.com/okareva/tably/internal/service/admin"
	"github.com/okareva/tably/internal/service/availability"
	"github.com/okareva/tably/internal/service/booking"
	"github.com/okareva/tably/internal/service/hold"
)

type Services struct {
	Availability *availability.Service
	Hold         *hold.Service
	Booking      *booking.Service
	Admin        *admin.Service
}

type Config struct {
	Availability availability.Config
	Hold         hold.Config
}

func NewServices(
	store *postgres.Store,
	cache *redis.Cache,
	pubsub *redisx.AvailabilityPubSub,
	limiter *redis.SlidingWindowLimiter,
	cfg Config,
) *Services {
	return &Services{
		Availability: availability.New(store, cache, cfg.Availability),
		Hold:         hold.New(store, cache, pubsub, limiter, cfg.Hold),
		Booking:      booking.New(store, cache, pubsub),
		Admin:        admin.New(store, cache, pubsub),
	}
}
