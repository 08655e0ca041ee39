package mail

import (
    "testing"

    "github.com/stretchr/testify/assert"
)

func TestSendMockModeWhenUnconfigured(t *testing.T) {
    m := &Mailer{}
    // Without SMTP settings Send must log a mock line and report
    // success so callers never see a delivery error in development.
    assert.NoError(t, m.Send("ana@example.com", "hello", "body"))
}

func TestConfiguredRequiresAllFields(t *testing.T) {
    cases := []struct {
        name string
        m    Mailer
        want bool
    }{
        {"empty", Mailer{}, false},
        {"host only", Mailer{Host: "smtp.example.com"}, false},
        {"missing password", Mailer{Host: "h", Port: "587", Username: "u"}, false},
        {"complete", Mailer{Host: "h", Port: "587", Username: "u", Password: "p"}, true},
    }
    for _, tc := range cases {
        t.Run(tc.name, func(t *testing.T) {
            assert.Equal(t, tc.want, tc.m.configured())
        })
    }
}
