package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeSpaces(t *testing.T) {
	assert.Equal(t, "my%20project", Escape("my project"))
	assert.Equal(t, "a%26b%3Dc", Escape("a&b=c"))
	assert.Equal(t, "plain", Escape("plain"))
}

func TestRecordEncode(t *testing.T) {
	r := Record{
		{Key: "ProjectName", Value: "space game"},
		{Key: "Notes", Value: "v1 & final"},
	}
	assert.Equal(t, "ProjectName=space%20game&Notes=v1%20%26%20final", r.Encode())
}

func TestEncodeListJoinsWithSpaces(t *testing.T) {
	got := EncodeList([]Record{
		{{Key: "ProjectName", Value: "a"}},
		{{Key: "ProjectName", Value: "b"}},
	})
	assert.Equal(t, "ProjectName=a ProjectName=b", got)
}

func TestEncodeListEmpty(t *testing.T) {
	assert.Equal(t, "", EncodeList(nil))
}
