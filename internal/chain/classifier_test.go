package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	gatewayHash = "0x149b1c8b0a3c8b0e61ad0f57db8a2c7f5d2b6f1d34a8ab3ed9b2e9bbb9813e2"
	rpcHash     = "0x38f7d0a5c1f3e4b6a2d9c8e7f6a5b4c3d2e1f0a9b8c7d6e5f4a3b2c1d01ed70"
)

func TestGatewayDialect(t *testing.T) {
	classifier, err := NewClassifier(DialectGateway)
	require.NoError(t, err)

	tests := []struct {
		name         string
		text         string
		wantDeclared bool
		wantHash     string
	}{
		{
			name:         "already declared",
			text:         "StarknetErrorCode.CLASS_ALREADY_DECLARED: Class with hash " + gatewayHash + " is already declared.",
			wantDeclared: true,
			wantHash:     gatewayHash,
		},
		{
			name:         "already declared without hash",
			text:         "Class with hash <unknown> is already declared.",
			wantDeclared: true,
		},
		{
			name: "unrelated failure",
			text: "Insufficient max fee",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, declared := classifier.AlreadyDeclared(tt.text)
			assert.Equal(t, tt.wantDeclared, declared)
			if tt.wantHash == "" {
				assert.Nil(t, hash)
				return
			}
			require.NotNil(t, hash)
			assert.Equal(t, tt.wantHash, hash.String())
		})
	}
}

func TestRPCDialect(t *testing.T) {
	classifier, err := NewClassifier(DialectRPC)
	require.NoError(t, err)

	tests := []struct {
		name         string
		text         string
		wantDeclared bool
		wantHash     string
	}{
		{
			name:         "escaped quotes",
			text:         `RPC: starknet_addDeclareTransaction ... {"code":51,"message":"Class already declared: ClassHash(StarkFelt(\"` + rpcHash + `\"))"}`,
			wantDeclared: true,
			wantHash:     rpcHash,
		},
		{
			name:         "plain quotes",
			text:         `ClassAlreadyDeclared { class_hash: ClassHash(StarkFelt("` + rpcHash + `")) }`,
			wantDeclared: true,
			wantHash:     rpcHash,
		},
		{
			name:         "marker without payload",
			text:         "51: Class already declared",
			wantDeclared: true,
		},
		{
			name: "unrelated failure",
			text: "Contract not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash, declared := classifier.AlreadyDeclared(tt.text)
			assert.Equal(t, tt.wantDeclared, declared)
			if tt.wantHash == "" {
				assert.Nil(t, hash)
				return
			}
			require.NotNil(t, hash)
			assert.Equal(t, tt.wantHash, hash.String())
		})
	}
}

func TestDialectsDoNotCrossMatch(t *testing.T) {
	gateway, err := NewClassifier(DialectGateway)
	require.NoError(t, err)

	_, declared := gateway.AlreadyDeclared(`ClassHash(StarkFelt(\"` + rpcHash + `\"))`)
	assert.False(t, declared)
}

func TestUnknownDialect(t *testing.T) {
	_, err := NewClassifier("sequencer-v0")
	require.Error(t, err)
}
