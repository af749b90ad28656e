package action

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryRoundTrip(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.Register("fake", func(data json.RawMessage, children []Child) (Action, error) {
		return newFake("fake"), nil
	}))

	a, err := reg.Deserialize("fake", json.RawMessage("{}"), nil)
	require.NoError(t, err)
	assert.Equal(t, "fake", a.Tag())
}

func TestRegistryRejectsDuplicateTag(t *testing.T) {
	reg := NewRegistry()
	factory := func(data json.RawMessage, children []Child) (Action, error) { return newFake("fake"), nil }
	require.NoError(t, reg.Register("fake", factory))
	assert.Error(t, reg.Register("fake", factory), "a receipt tag must map to exactly one concrete kind (spec §9)")
}

func TestRegistryRejectsUnknownTagOnDeserialize(t *testing.T) {
	reg := NewRegistry()
	_, err := reg.Deserialize("never-registered", json.RawMessage("{}"), nil)
	assert.Error(t, err, "deserializing an unknown tag must fail rather than guess")
}

func TestRegistryMustRegisterPanicsOnDuplicate(t *testing.T) {
	reg := NewRegistry()
	factory := func(data json.RawMessage, children []Child) (Action, error) { return newFake("fake"), nil }
	reg.MustRegister("fake", factory)

	defer func() {
		if recover() == nil {
			t.Fatal("expected MustRegister to panic on duplicate tag")
		}
	}()
	reg.MustRegister("fake", factory)
}
