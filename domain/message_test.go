package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/errors"
)

func TestClassify_Broadcast(t *testing.T) {
	req := require.New(t)

	msg, err := Classify("alice", "hello everyone")

	req.NoError(err)
	req.Equal(KindBroadcast, msg.Kind)
	req.Equal("alice", msg.Origin)
	req.Equal("hello everyone", msg.Body)
}

func TestClassify_Direct(t *testing.T) {
	req := require.New(t)

	msg, err := Classify("alice", "@bob hello there")

	req.NoError(err)
	req.Equal(KindDirect, msg.Kind)
	req.Equal("alice", msg.Origin)
	req.Equal("bob", msg.Target)
	req.Equal("hello there", msg.Body)
}

func TestClassify_MalformedDirect(t *testing.T) {
	req := require.New(t)

	for _, line := range []string{"@bob", "@bob ", "@bob   ", "@ hello"} {
		_, err := Classify("alice", line)
		req.ErrorIs(err, errors.ErrMalformedDirect, "line %q", line)
	}
}

func TestClassify_BodyIsVerbatim(t *testing.T) {
	req := require.New(t)

	// A line not starting with the DM prefix broadcasts untouched,
	// embedded "@" included.
	msg, err := Classify("alice", "ping @bob are you there")

	req.NoError(err)
	req.Equal(KindBroadcast, msg.Kind)
	req.Equal("ping @bob are you there", msg.Body)
}

func TestValidateName(t *testing.T) {
	req := require.New(t)

	req.NoError(ValidateName("alice", 32))
	req.NoError(ValidateName("Bob_42", 32))

	req.ErrorIs(ValidateName("", 32), errors.ErrNameInvalid)
	req.ErrorIs(ValidateName("has space", 32), errors.ErrNameInvalid)
	req.ErrorIs(ValidateName("tab\tname", 32), errors.ErrNameInvalid)
	req.ErrorIs(ValidateName("@alice", 32), errors.ErrNameInvalid)
	req.ErrorIs(ValidateName("waytoolongname", 8), errors.ErrNameInvalid)
}
