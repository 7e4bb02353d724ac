// Copyright The Meetgate Authors.
// SPDX-License-Identifier: MIT

package store

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKeyBuilder_EntityKey(t *testing.T) {
	kb := NewKeyBuilder("")

	assert.Equal(t, "settings/biz_1", kb.EntityKey(KeyPrefixSettings, "biz_1"))
	assert.Equal(t, "status/555", kb.EntityKey(KeyPrefixStatus, "555"))
}

func TestKeyBuilder_EntityKeyWithPrefix(t *testing.T) {
	kb := NewKeyBuilder("gateway")

	assert.Equal(t, "gateway/settings/biz_1", kb.EntityKey(KeyPrefixSettings, "biz_1"))
}

func TestKeyBuilder_IndexKey(t *testing.T) {
	kb := NewKeyBuilder("")

	assert.Equal(t, "index/account/acct-1", kb.IndexKey(KeyPrefixIndexAccount, "acct-1"))
}

func TestKeyBuilder_EncodeDecodeRoundTrip(t *testing.T) {
	kb := NewKeyBuilder("")

	tests := []string{
		"settings/biz_1",
		"status/123456789",
		"index/account/acct with spaces",
		"settings/tenant.with.dots",
	}

	for _, key := range tests {
		encoded, err := kb.EncodeKey(key)
		require.NoError(t, err, "key %q", key)

		// Encoded keys must be safe for NATS KV: no slashes or spaces.
		assert.NotContains(t, encoded, "/")
		assert.NotContains(t, encoded, " ")

		decoded, err := kb.DecodeKey(encoded)
		require.NoError(t, err)
		assert.Equal(t, "/"+key, decoded)
	}
}

func TestKeyBuilder_EncodeKeyPreservesWildcards(t *testing.T) {
	kb := NewKeyBuilder("")

	encoded, err := kb.EncodeKey("settings/*")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(encoded, ".*"), "wildcard segments pass through unencoded")
}

func TestKeyBuilder_EntityKeyEncodedDeterministic(t *testing.T) {
	kb := NewKeyBuilder("")

	first := kb.EntityKeyEncoded(KeyPrefixSettings, "biz_1")
	second := kb.EntityKeyEncoded(KeyPrefixSettings, "biz_1")
	assert.Equal(t, first, second)
	assert.NotEqual(t, first, kb.EntityKeyEncoded(KeyPrefixSettings, "biz_2"))
}
