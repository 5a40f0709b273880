package post

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestLinkMentions(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "two mentions",
			in:   "Hello @alice and @bob!",
			want: "Hello <https://example.com/alice| @alice> and <https://example.com/bob!| @bob!>",
		},
		{
			name: "same token twice",
			in:   "@carol @carol",
			want: "<https://example.com/carol| @carol> <https://example.com/carol| @carol>",
		},
		{
			name: "no mentions",
			in:   "plain caption #tag",
			want: "plain caption #tag",
		},
		{
			name: "username prefixing another mention is rewritten inside it",
			in:   "@al and @alice",
			want: "<https://example.com/al| @al> and <https://example.com/al| @al>ice",
		},
		{
			name: "adjacent mentions split on @",
			in:   "@dan@erin",
			want: "<https://example.com/dan| @dan><https://example.com/erin| @erin>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := LinkMentions("https://example.com", strPtr(tt.in))
			require.NotNil(t, got)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestLinkMentionsNil(t *testing.T) {
	assert.Nil(t, LinkMentions("https://example.com", nil))
}

func TestLinkMentionsDoesNotMutateInput(t *testing.T) {
	in := strPtr("hi @alice")
	_ = LinkMentions("https://example.com", in)
	assert.Equal(t, "hi @alice", *in)
}

func TestProfileLink(t *testing.T) {
	assert.Equal(t, "<https://example.com/alice| @alice>", ProfileLink("https://example.com/", "alice"))
}
