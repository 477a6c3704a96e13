package dimension

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticFactory(t *testing.T) {
	p, err := NewProvider("static", map[string]any{"Environment": "staging"})
	require.NoError(t, err)

	dims := p.Dimensions("any")
	require.Len(t, dims, 1)
	assert.Equal(t, "Environment", *dims[0].Name)
	assert.Equal(t, "staging", *dims[0].Value)
}

func TestStaticFactoryRejectsNonStringValues(t *testing.T) {
	_, err := NewProvider("static", map[string]any{"Port": 8080})
	assert.Error(t, err)
}

func TestStaticFactoryRejectsEmptyConfig(t *testing.T) {
	_, err := NewProvider("static", map[string]any{})
	assert.Error(t, err)
}

func TestEC2FactoryFixedID(t *testing.T) {
	p, err := NewProvider("ec2", map[string]any{"instanceId": "i-0abc123"})
	require.NoError(t, err)

	dims := p.GlobalDimensions()
	require.Len(t, dims, 1)
	assert.Equal(t, "InstanceId", *dims[0].Name)
	assert.Equal(t, "i-0abc123", *dims[0].Value)
}

func TestUnknownFactory(t *testing.T) {
	_, err := NewProvider("zookeeper", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered")
}
