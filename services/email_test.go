package services

import (
	"testing"

	"police_flow_app_go/config"

	"github.com/stretchr/testify/assert"
)

func TestBuildNotificationEmail(t *testing.T) {
	email := BuildNotificationEmail("cole@police.test", "Detective <Cole>", "New Evidence", "A vehicle was recorded.")

	assert.Equal(t, []string{"cole@police.test"}, email.To)
	assert.Equal(t, "New Evidence", email.Subject)
	assert.Contains(t, email.TextBody, "Hello Detective <Cole>")
	assert.Contains(t, email.HTMLBody, "Detective &lt;Cole&gt;")
	assert.Contains(t, email.HTMLBody, "A vehicle was recorded.")
}

func TestSendEmail(t *testing.T) {
	t.Run("test mode logs instead of sending", func(t *testing.T) {
		cfg := &config.Config{EmailTestMode: true}
		err := SendEmail(cfg, &Email{To: []string{"a@police.test"}, Subject: "Hi", TextBody: "body"})
		assert.NoError(t, err)
	})

	t.Run("missing api key", func(t *testing.T) {
		cfg := &config.Config{EmailTestMode: false}
		err := SendEmail(cfg, &Email{To: []string{"a@police.test"}, Subject: "Hi", TextBody: "body"})
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "RESEND_API_KEY")
	})

	t.Run("empty body", func(t *testing.T) {
		cfg := &config.Config{ResendAPIKey: "re_test"}
		err := SendEmail(cfg, &Email{To: []string{"a@police.test"}, Subject: "Hi"})
		assert.Error(t, err)
	})
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", truncate("abc", 5))
	assert.Equal(t, "ab", truncate("abc", 2))
}
