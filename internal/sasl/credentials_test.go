package sasl

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPlainCredentialsResponse(t *testing.T) {
	c := PlainCredentials{User: "guest", Password: "guest"}
	require.Equal(t, "PLAIN", c.Mechanism())
	require.Equal(t, []byte("\x00guest\x00guest"), c.Response())
}

func TestAMQPlainCredentialsResponseHasNoLengthPrefix(t *testing.T) {
	c := AMQPlainCredentials{User: "guest", Password: "guest"}
	require.Equal(t, "AMQPLAIN", c.Mechanism())

	resp := c.Response()
	require.NotEmpty(t, resp)
	// A raw length prefix read off the front would be implausibly large
	// for this short a table, confirming it was stripped.
	require.Less(t, int(resp[0]), 128)
}

func TestExternalCredentialsResponseIsEmpty(t *testing.T) {
	c := ExternalCredentials{}
	require.Equal(t, "EXTERNAL", c.Mechanism())
	require.Empty(t, c.Response())
}
