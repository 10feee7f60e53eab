package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KamnevVladimir/zen-automation-sub000/internal/domain"
)

func TestPipelineRunPublishesOnePost(t *testing.T) {
	t.Parallel()

	textGen := &stubTextGen{responses: []string{validPayload(t, 3500)}}
	history := &memHistory{}
	transport := &stubTransport{}
	archive := &stubArchive{url: "https://telegra.ph/run"}

	gen := newTestGenerator(textGen, &stubImageGen{}, history, 3000)
	pub := newTestPublisher(transport, archive, &stubTextGen{}, history)
	pipe := NewPipeline(gen, pub, rand.New(rand.NewSource(3)), nil)

	err := pipe.Run(context.Background(), "08:00")

	require.NoError(t, err)
	require.Len(t, history.posts, 1)
	assert.Equal(t, domain.StatusPublished, history.posts[0].Status)
	assert.Len(t, archive.titles, 1)
	require.Len(t, transport.sent, 1)
	assert.LessOrEqual(t, utf8.RuneCountInString(transport.sent[0]), 1024)
}

func TestPipelineRunSwallowsQualityRejection(t *testing.T) {
	t.Parallel()

	// A body far below the minimum fails the quality gate.
	raw, err := json.Marshal(map[string]any{
		"title": "Too thin", "body": strings.Repeat("x ", 40) + "subscribe",
	})
	require.NoError(t, err)

	textGen := &stubTextGen{responses: []string{string(raw)}}
	history := &memHistory{}

	gen := newTestGenerator(textGen, &stubImageGen{}, history, 3000)
	pub := newTestPublisher(&stubTransport{}, &stubArchive{url: "u"}, &stubTextGen{}, history)
	pipe := NewPipeline(gen, pub, rand.New(rand.NewSource(3)), nil)

	err = pipe.Run(context.Background(), "08:00")

	require.NoError(t, err)
	assert.Empty(t, history.posts)
}

func TestPipelineRunReportsTransportFailure(t *testing.T) {
	t.Parallel()

	textGen := &stubTextGen{responses: []string{validPayload(t, 3500)}}
	history := &memHistory{}
	transport := &stubTransport{sendErr: errors.New("telegram down")}

	gen := newTestGenerator(textGen, &stubImageGen{}, history, 3000)
	pub := newTestPublisher(transport, &stubArchive{url: "u"}, &stubTextGen{}, history)
	pipe := NewPipeline(gen, pub, rand.New(rand.NewSource(3)), nil)

	err := pipe.Run(context.Background(), "20:00")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTransportFailure)
}
