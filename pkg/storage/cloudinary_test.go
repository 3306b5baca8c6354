package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPublicID(t *testing.T) {
	cases := map[string]string{
		"https://res.cloudinary.com/demo/image/upload/v123456789/campussync/avatars/me.webp": "campussync/avatars/me",
		"https://res.cloudinary.com/demo/image/upload/avatars/me.png":                        "avatars/me",
		"https://res.cloudinary.com/demo/image/upload/vacation/me.png":                       "vacation/me",
		"https://example.com/not-cloudinary.png":                                             "",
		"https://res.cloudinary.com/demo/image/upload/":                                      "",
	}

	for in, want := range cases {
		assert.Equal(t, want, ExtractPublicID(in), in)
	}
}

func TestFolder(t *testing.T) {
	s := &cloudinaryStorage{rootFolder: "campussync"}
	assert.Equal(t, "campussync/avatars", s.folder("/avatars/"))
	assert.Equal(t, "campussync", s.folder(""))

	bare := &cloudinaryStorage{}
	assert.Equal(t, "avatars", bare.folder("avatars"))
}
