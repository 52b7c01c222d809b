package fs_test

import (
	"testing"

	"github.com/cespare/xxhash/v2"
	"github.com/stretchr/testify/assert"
	"go.trai.ch/dyndll/internal/adapters/fs"
)

func TestHasher_HashBytes(t *testing.T) {
	hasher := fs.NewHasher()

	t.Run("Stable", func(t *testing.T) {
		content := []byte("export * from 'react';\n")
		assert.Equal(t, hasher.HashBytes(content), hasher.HashBytes(content))
		assert.Equal(t, xxhash.Sum64(content), hasher.HashBytes(content))
	})

	t.Run("Content Change", func(t *testing.T) {
		assert.NotEqual(t,
			hasher.HashBytes([]byte("import React from 'react'")),
			hasher.HashBytes([]byte("import Vue from 'vue'")),
		)
	})
}
