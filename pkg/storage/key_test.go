package storage

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateKey(t *testing.T) {
	key := GenerateKey("user-1", "proj-1", "my interview notes.txt")

	assert.True(t, strings.HasPrefix(key, "upload-data/users/user-1/proj-1/transcripts/"))
	assert.True(t, strings.HasSuffix(key, "-my-interview-notes.txt"))
	assert.NotContains(t, key, " ")
}

func TestKeyFromURL(t *testing.T) {
	key := KeyFromURL("https://bucket.s3.us-east-1.amazonaws.com/upload-data/users/u/p/transcripts/1-a.txt")
	assert.Equal(t, "upload-data/users/u/p/transcripts/1-a.txt", key)

	assert.Equal(t, "", KeyFromURL("not a url"))
}
