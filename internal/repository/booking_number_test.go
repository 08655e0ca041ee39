package repository

import (
    "regexp"
    "testing"

    "github.com/stretchr/testify/assert"
    "github.com/stretchr/testify/require"
)

func TestNewBookingNumberFormat(t *testing.T) {
    re := regexp.MustCompile(`^BK-\d{8}$`)
    for i := 0; i < 100; i++ {
        n, err := NewBookingNumber()
        require.NoError(t, err)
        assert.Regexp(t, re, n)
    }
}

func TestNewTicketNumberFormat(t *testing.T) {
    re := regexp.MustCompile(`^TKT-[0-9A-F]{8}$`)
    seen := map[string]bool{}
    for i := 0; i < 100; i++ {
        n := NewTicketNumber()
        assert.Regexp(t, re, n)
        assert.False(t, seen[n], "ticket numbers should not repeat in a small sample")
        seen[n] = true
    }
}
