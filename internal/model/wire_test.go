package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMarshalTaskRoundTrip(t *testing.T) {
	task := &Task{Type: TaskIngestion, Payload: []byte(`{"signature":"abc"}`), Signature: "abc"}

	data, err := MarshalTask(task)
	require.NoError(t, err)

	got, err := UnmarshalTask(data)
	require.NoError(t, err)
	require.Equal(t, task.Type, got.Type)
	require.Equal(t, task.Payload, got.Payload)
	require.Equal(t, task.Signature, got.Signature)
}

func TestMarshalSpecPayloadRoundTrip(t *testing.T) {
	payload := &SpecPayload{Signature: "sig", Table: "requests", Source: "local:///data", SizeBytes: 1024}

	data, err := MarshalSpecPayload(payload)
	require.NoError(t, err)

	got, err := UnmarshalSpecPayload(data)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestMarshalExpirationPayloadRoundTrip(t *testing.T) {
	payload := &ExpirationPayload{Signatures: []string{"a", "b", "c"}}

	data, err := MarshalExpirationPayload(payload)
	require.NoError(t, err)

	got, err := UnmarshalExpirationPayload(data)
	require.NoError(t, err)
	require.Equal(t, payload, got)
}

func TestSpecCloneIsIndependent(t *testing.T) {
	aff := NodeID{Host: "h1", Port: 7080}
	s := &Spec{Signature: "sig", Affinity: &aff}

	clone := s.Clone()
	clone.Affinity.Host = "h2"

	require.Equal(t, "h1", s.Affinity.Host)
	require.Equal(t, "h2", clone.Affinity.Host)
}
