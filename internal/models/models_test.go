package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUserFacts(t *testing.T) {
	facts := UserFacts{FactName: "Asha", FactStream: ""}

	assert.Equal(t, "Asha", facts.Get(FactName, "buddy"))
	assert.Equal(t, "buddy", facts.Get(FactEmail, "buddy"))
	assert.Equal(t, "", facts.Get(FactStream, "MPC"), "present but empty wins over the default")

	assert.True(t, facts.Has(FactName))
	assert.False(t, facts.Has(FactStream))
	assert.False(t, facts.Has(FactMajor))

	clone := facts.Clone()
	clone[FactName] = "Ravi"
	assert.Equal(t, "Asha", facts[FactName])

	var empty UserFacts
	assert.NotNil(t, empty.Clone())
}

func TestTopIntent(t *testing.T) {
	assert.Equal(t, UnknownIntent, TopIntent(nil))
	assert.Equal(t, "careers", TopIntent([]ClassificationResult{
		{Intent: "careers", Probability: 0.7},
		{Intent: "exams", Probability: 0.3},
	}))
}

func TestSession_RecentHistory(t *testing.T) {
	s := &Session{}
	s.Append(NewMessage(SenderBot, "one"), NewMessage(SenderUser, "two"), NewMessage(SenderBot, "three"))

	assert.Len(t, s.RecentHistory(0), 3)
	assert.Len(t, s.RecentHistory(5), 3)

	recent := s.RecentHistory(2)
	assert.Equal(t, "two", recent[0].Text)
	assert.Equal(t, "three", recent[1].Text)
}

func TestSession_IsExpired(t *testing.T) {
	s := &Session{UpdatedAt: time.Now().Add(-2 * time.Hour)}

	assert.True(t, s.IsExpired(time.Hour))
	assert.False(t, s.IsExpired(3*time.Hour))
	assert.False(t, s.IsExpired(0), "zero ttl never expires")

	s.Append(NewMessage(SenderUser, "hi"))
	assert.False(t, s.IsExpired(time.Hour), "append refreshes UpdatedAt")
}

func TestState_Valid(t *testing.T) {
	assert.Len(t, AllStates, 16)
	for _, s := range AllStates {
		assert.True(t, s.Valid(), s)
	}
	assert.False(t, State("post_13th").Valid())
}
