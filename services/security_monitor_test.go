package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSecurityMonitor(t *testing.T) {
	clock := NewFixedClock(testNow)
	m := NewSecurityMonitor(clock)
	source := "ip:203.0.113.7"

	t.Run("alerts at the threshold", func(t *testing.T) {
		for i := 0; i < failedLoginThreshold-1; i++ {
			assert.False(t, m.TrackFailedLogin(source))
		}
		assert.True(t, m.TrackFailedLogin(source))

		alerts := m.RecentAlerts()
		if assert.Len(t, alerts, 1) {
			assert.Equal(t, source, alerts[0].Source)
			assert.Equal(t, testNow, alerts[0].Timestamp)
		}
	})

	t.Run("one alert per cooldown", func(t *testing.T) {
		for i := 0; i < 5; i++ {
			assert.False(t, m.TrackFailedLogin(source))
		}
		assert.Len(t, m.RecentAlerts(), 1)

		clock.Advance(alertCooldown + time.Minute)
		for i := 0; i < failedLoginThreshold-1; i++ {
			m.TrackFailedLogin(source)
		}
		assert.True(t, m.TrackFailedLogin(source))
		assert.Len(t, m.RecentAlerts(), 2)
	})

	t.Run("failures outside the window do not count", func(t *testing.T) {
		other := "email:slow@police.test"
		for i := 0; i < failedLoginThreshold-1; i++ {
			m.TrackFailedLogin(other)
			clock.Advance(failedLoginWindow / 2)
		}
		assert.False(t, m.TrackFailedLogin(other))
	})

	t.Run("prune forgets stale sources", func(t *testing.T) {
		clock.Advance(2 * alertCooldown)
		m.Prune()
		m.mu.Lock()
		defer m.mu.Unlock()
		assert.Empty(t, m.failures)
		assert.Empty(t, m.alerted)
	})
}

func TestLoginFeedsMonitor(t *testing.T) {
	db := setupTestDB(t)
	_, err := CreateUserWithRoles(db, NewUserInput{Name: "Officer", Email: "officer@police.test", Password: "longenough"})
	assert.NoError(t, err)

	Monitor = NewSecurityMonitor(NewFixedClock(testNow))
	t.Cleanup(func() { Monitor = nil })

	for i := 0; i < failedLoginThreshold; i++ {
		_, err := Login(db, "officer@police.test", "wrong-password", "198.51.100.2", "test")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	}

	var sources []string
	for _, a := range Monitor.RecentAlerts() {
		sources = append(sources, a.Source)
	}
	assert.ElementsMatch(t, []string{"ip:198.51.100.2", "email:officer@police.test"}, sources)
}
