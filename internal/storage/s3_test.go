package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithoutCredentials(t *testing.T) {
	c, err := New("", "us-east-1", "", "", "thumbnails", "")
	require.NoError(t, err)
	assert.Nil(t, c, "storage is optional")

	c, err = New("https://s3.example.com", "us-east-1", "key", "", "thumbnails", "")
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewRequiresBucket(t *testing.T) {
	_, err := New("https://s3.example.com", "us-east-1", "key", "secret", "", "")
	assert.Error(t, err)
}

func TestFileURLAndExtractKey(t *testing.T) {
	tests := []struct {
		name      string
		publicURL string
		wantURL   string
	}{
		{name: "path style", publicURL: "", wantURL: "https://s3.example.com/thumbnails/posts/a.jpg"},
		{name: "cdn", publicURL: "https://cdn.example.com/", wantURL: "https://cdn.example.com/posts/a.jpg"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New("https://s3.example.com/", "us-east-1", "key", "secret", "thumbnails", tt.publicURL)
			require.NoError(t, err)
			require.NotNil(t, c)

			url := c.FileURL("posts/a.jpg")
			assert.Equal(t, tt.wantURL, url)

			key, ok := c.ExtractKey(url)
			assert.True(t, ok)
			assert.Equal(t, "posts/a.jpg", key)
		})
	}
}

func TestExtractKeyForeignURL(t *testing.T) {
	c, err := New("https://s3.example.com", "us-east-1", "key", "secret", "thumbnails", "")
	require.NoError(t, err)

	_, ok := c.ExtractKey("https://images.example.org/posts/a.jpg")
	assert.False(t, ok)

	_, ok = c.ExtractKey("https://s3.example.com/other-bucket/posts/a.jpg")
	assert.False(t, ok)
}
