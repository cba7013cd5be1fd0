package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	for size := 1; size <= 1024; size += 37 {
		data := make([]byte, size)
		rng.Read(data)

		decoded, err := DecodeImage(EncodeImage(data))
		require.NoError(t, err)
		assert.Equal(t, data, decoded, "size %d", size)
	}
}

func TestDataURL(t *testing.T) {
	assert.Equal(t, "data:image/png;base64,AQID", DataURL("image/png", []byte{1, 2, 3}))
}

func TestBuildParamsShape(t *testing.T) {
	params := BuildParams(AnalysisRequest{Prompt: "describe", Image: []byte{1, 2, 3}}, "gpt-4o", 0)

	raw, err := json.Marshal(params)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))
	assert.Equal(t, "gpt-4o", body["model"])
	assert.EqualValues(t, DefaultMaxTokens, body["max_tokens"])

	messages := body["messages"].([]any)
	require.Len(t, messages, 1)
	content := messages[0].(map[string]any)["content"].([]any)
	require.Len(t, content, 2)
	assert.Equal(t, "describe", content[0].(map[string]any)["text"])
	imageURL := content[1].(map[string]any)["image_url"].(map[string]any)
	assert.Equal(t, "data:image/jpeg;base64,AQID", imageURL["url"])
}

func TestValidate(t *testing.T) {
	assert.ErrorIs(t, AnalysisRequest{Prompt: "x"}.Validate(), ErrEmptyImage)
	assert.NoError(t, AnalysisRequest{Image: []byte{1}}.Validate())
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func TestClassifyLocalErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{name: "nil", err: nil, want: KindUnknown},
		{name: "empty credential", err: ErrEmptyCredential, want: KindCredential},
		{name: "empty image", err: fmt.Errorf("prepare: %w", ErrEmptyImage), want: KindRequest},
		{name: "deadline", err: context.DeadlineExceeded, want: KindTransport},
		{name: "net error", err: &net.OpError{Op: "dial", Net: "tcp", Err: timeoutErr{}}, want: KindTransport},
		{name: "other", err: errors.New("something odd"), want: KindUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Classify(tt.err)
			assert.False(t, res.OK())
			assert.Equal(t, tt.want, res.Kind)
			assert.NotEmpty(t, res.Message)
		})
	}
}

func TestResultString(t *testing.T) {
	assert.Equal(t, "hello", Success("hello").String())
	assert.Equal(t, "CredentialError: bad key", Failure(KindCredential, "bad key").String())
	assert.Equal(t, KindUnknown, Failure(KindNone, "x").Kind)
}

func TestStubClient(t *testing.T) {
	c := NewStubClient("")
	assert.Equal(t, "запрос получен", c.Analyze(context.Background(), AnalysisRequest{Image: []byte{1}}, "k").Text)
	assert.Equal(t, KindCredential, c.Analyze(context.Background(), AnalysisRequest{Image: []byte{1}}, "").Kind)
}
