package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMultiFansOut(t *testing.T) {
	var a, b []string
	m := Multi{
		Func(func(e Event) { a = append(a, e.Type) }),
		nil,
		Func(func(e Event) { b = append(b, e.Type) }),
	}

	m.Notify(NewEvent(EventLevelUp, "g1", nil))

	assert.Equal(t, []string{EventLevelUp}, a)
	assert.Equal(t, []string{EventLevelUp}, b)
}

func TestNewEventStampsTime(t *testing.T) {
	e := NewEvent(EventBoostStarted, "g1", map[string]string{"userId": "u1"})
	assert.False(t, e.Timestamp.IsZero())
	assert.Equal(t, "g1", e.GuildID)
}
