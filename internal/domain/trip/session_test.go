package trip

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTripMemory_Merge(t *testing.T) {
	base := TripMemory{Destination: "Sevilla", Duration: "5 días"}

	t.Run("空值不覆盖", func(t *testing.T) {
		got := base.Merge(TripMemory{Destination: "  ", Style: "relax"})
		assert.Equal(t, TripMemory{Destination: "Sevilla", Duration: "5 días", Style: "relax"}, got)
	})

	t.Run("非空值覆盖", func(t *testing.T) {
		got := base.Merge(TripMemory{Duration: " 3 días "})
		assert.Equal(t, "3 días", got.Duration)
		assert.Equal(t, "Sevilla", got.Destination)
	})

	t.Run("原值不变", func(t *testing.T) {
		_ = base.Merge(TripMemory{Destination: "Madrid"})
		assert.Equal(t, "Sevilla", base.Destination)
	})
}

func TestTripMemory_Fill(t *testing.T) {
	m := TripMemory{Destination: "Sevilla"}

	got := m.Fill(Attributes{Destination: "Madrid", Duration: "2 días", Style: "lujo"})
	assert.Equal(t, TripMemory{Destination: "Sevilla", Duration: "2 días", Style: "lujo"}, got)

	// 多轮填充后已知字段不会回退为空
	got = got.Fill(Attributes{})
	assert.True(t, got.Ready())
	assert.Equal(t, "lujo", got.Style)
}

func TestTripMemory_Ready(t *testing.T) {
	assert.False(t, TripMemory{}.Ready())
	assert.False(t, TripMemory{Destination: "Sevilla"}.Ready())
	assert.False(t, TripMemory{Duration: "5 días"}.Ready())
	assert.True(t, TripMemory{Destination: "Sevilla", Duration: "5 días"}.Ready())
}

func TestSession_Clone(t *testing.T) {
	s := NewSession("user_1")
	s.AppendMessage(RoleUser, "hola", 0)
	s.Pending["k"] = "v"
	s.Itinerary = &Itinerary{
		Title: "Sevilla",
		Days: []Day{{Number: 1, Activities: []Activity{{Activity: "Alcázar"}}}},
	}

	c := s.Clone()
	require.NotNil(t, c)

	c.History[0].Content = "changed"
	c.Pending["k"] = "changed"
	c.Itinerary.Days[0].Activities[0].Activity = "changed"
	c.Memory.Destination = "Madrid"

	assert.Equal(t, "hola", s.History[0].Content)
	assert.Equal(t, "v", s.Pending["k"])
	assert.Equal(t, "Alcázar", s.Itinerary.Days[0].Activities[0].Activity)
	assert.Equal(t, "", s.Memory.Destination)

	var nilSession *Session
	assert.Nil(t, nilSession.Clone())
}

func TestSession_AppendMessage(t *testing.T) {
	s := NewSession("s")
	for i := 0; i < 5; i++ {
		s.AppendMessage(RoleUser, string(rune('a'+i)), 3)
	}

	require.Len(t, s.History, 3)
	assert.Equal(t, "c", s.History[0].Content)
	assert.Equal(t, "e", s.History[2].Content)

	s.AppendMessage(RoleAssistant, "f", 0)
	assert.Len(t, s.History, 4)
	assert.Equal(t, RoleAssistant, s.History[3].Role)
}
