package graph

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360studio/regkg/reconcile"
)

func TestPublishSameAsNilClientIsNoOp(t *testing.T) {
	canonical := reconcile.CanonicalMap{"a": "a", "b": "a"}

	assert.NoError(t, PublishSameAs(context.Background(), nil, canonical))
	assert.NoError(t, PublishProvenance(context.Background(), nil, nil))
}

func TestIngestPayloadValidate(t *testing.T) {
	assert.Error(t, (&IngestPayload{}).Validate())
	assert.NoError(t, (&IngestPayload{EntityID_: "x"}).Validate())
}

func TestIngestPayloadRoundTrip(t *testing.T) {
	payload := &IngestPayload{EntityID_: "https://regkg.dev/entity/s2"}

	data, err := json.Marshal(payload)
	require.NoError(t, err)

	var decoded IngestPayload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, payload.EntityID_, decoded.EntityID_)
}
