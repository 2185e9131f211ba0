package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCallbackRoundTrip(t *testing.T) {
	cases := []Callback{
		{Action: "nps", Entity: "7", ID: "a1b2c3"},
		{Action: "score", Entity: "pick", ID: "5"},
		{Action: "svc", Entity: "pick", ID: "550e8400-e29b-41d4-a716-446655440000"},
		{Action: "svc", Entity: "skip", ID: "-"},
		{Action: "spec", Entity: "page", ID: "-", Page: 3},
		{Action: "cat", Entity: "del", ID: "id-with-dash", Page: 12},
	}

	for _, c := range cases {
		parsed, err := ParseCallback(FormatCallback(c))
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseCallbackRejectsGarbage(t *testing.T) {
	for _, data := range []string{
		"",
		"noseparators",
		"only:two",
		":empty:action",
		"a::",
		"spec:page:-@notanumber",
		"spec:page:-@-1",
	} {
		_, err := ParseCallback(data)
		assert.ErrorIs(t, err, ErrBadCallback, "input %q", data)
	}
}

func TestParseCallbackIDMayContainColon(t *testing.T) {
	// id — последний сегмент, двоеточия внутри него не ломают разбор
	c, err := ParseCallback("exp:word:org:with:colons")
	require.NoError(t, err)
	assert.Equal(t, "exp", c.Action)
	assert.Equal(t, "word", c.Entity)
	assert.Equal(t, "org:with:colons", c.ID)
}
