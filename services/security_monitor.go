package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	failedLoginWindow    = 10 * time.Minute
	failedLoginThreshold = 5
	alertCooldown        = time.Hour
	maxAlerts            = 100
)

// SecurityAlert is a raised suspicion about a login source
type SecurityAlert struct {
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
	Reason    string    `json:"reason"`
	Level     string    `json:"level"`
}

// SecurityMonitor counts failed logins per source (client IP or account email) inside a
// sliding window and raises at most one alert per source per cooldown.
type SecurityMonitor struct {
	mu       sync.Mutex
	clock    Clock
	failures map[string][]time.Time
	alerted  map[string]time.Time
	alerts   []SecurityAlert
}

// Monitor is the process-wide monitor used by Login; nil disables tracking
var Monitor *SecurityMonitor

func NewSecurityMonitor(clock Clock) *SecurityMonitor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &SecurityMonitor{
		clock:    clock,
		failures: make(map[string][]time.Time),
		alerted:  make(map[string]time.Time),
	}
}

// InitSecurityMonitor installs the global monitor
func InitSecurityMonitor() {
	Monitor = NewSecurityMonitor(nil)
}

// TrackFailedLogin records one failure for source and reports whether it raised an alert
func (m *SecurityMonitor) TrackFailedLogin(source string) bool {
	if source == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.clock.Now()
	windowStart := now.Add(-failedLoginWindow)
	recent := m.failures[source][:0]
	for _, t := range m.failures[source] {
		if t.After(windowStart) {
			recent = append(recent, t)
		}
	}
	recent = append(recent, now)
	m.failures[source] = recent

	if len(recent) < failedLoginThreshold {
		return false
	}
	if last, ok := m.alerted[source]; ok && now.Sub(last) < alertCooldown {
		return false
	}
	m.alerted[source] = now

	alert := SecurityAlert{Timestamp: now, Source: source, Reason: "Multiple failed logins", Level: "CRITICAL"}
	m.alerts = append([]SecurityAlert{alert}, m.alerts...)
	if len(m.alerts) > maxAlerts {
		m.alerts = m.alerts[:maxAlerts]
	}
	zap.S().Errorw("Security alert", "source", source, "reason", alert.Reason, "failures", len(recent))
	return true
}

// RecentAlerts returns the alerts raised so far, newest first
func (m *SecurityMonitor) RecentAlerts() []SecurityAlert {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SecurityAlert, len(m.alerts))
	copy(out, m.alerts)
	return out
}

// Prune drops sources whose last failure and last alert are both stale
func (m *SecurityMonitor) Prune() {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.clock.Now()
	for source, attempts := range m.failures {
		if len(attempts) == 0 || now.Sub(attempts[len(attempts)-1]) > failedLoginWindow {
			delete(m.failures, source)
		}
	}
	for source, last := range m.alerted {
		if now.Sub(last) > alertCooldown {
			delete(m.alerted, source)
		}
	}
}

func trackFailedLogin(ipAddress, email string) {
	if Monitor == nil {
		return
	}
	Monitor.TrackFailedLogin("ip:" + ipAddress)
	Monitor.TrackFailedLogin("email:" + email)
}
