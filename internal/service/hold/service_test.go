package hold

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	t.Run("zero config", func(t *testing.T) {
		s := New(nil, nil, nil, nil, Config{})

		assert.Equal(t, 90*time.Second, s.cfg.TTL)
		assert.Equal(t, s.cfg.TTL, s.cfg.Extend)
		assert.Equal(t, 120, s.cfg.DefaultDurationMin)
	})

	t.Run("heartbeat resets to a full lifetime", func(t *testing.T) {
		// With the increment defaulting to the TTL and the store clamping
		// expiry to GREATEST(current, now+increment), a hold beaten every
		// cycle stays alive past any single lifetime: created at t=0 with
		// TTL=90 and extended at t=89, it must still be active at t=178.
		s := New(nil, nil, nil, nil, Config{TTL: 90 * time.Second})

		created := time.Unix(0, 0)
		expiry := created.Add(s.cfg.TTL)

		beat := created.Add(89 * time.Second)
		if next := beat.Add(s.cfg.Extend); next.After(expiry) {
			expiry = next
		}

		assert.True(t, expiry.After(created.Add(178*time.Second)))
	})

	t.Run("explicit increment wins", func(t *testing.T) {
		s := New(nil, nil, nil, nil, Config{TTL: 90 * time.Second, Extend: 2 * time.Minute})
		assert.Equal(t, 2*time.Minute, s.cfg.Extend)
	})
}
