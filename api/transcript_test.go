package api_test

import (
	"encoding/json"
	"testing"

	"github.com/programme-lv/dilemma/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscriptRoundTrip(t *testing.T) {
	first := []int32{1, 1, 0, 0, 1}
	second := []int32{1, 0, 1, 0, 1}

	data, err := api.EncodeTranscript(first, second)
	require.NoError(t, err)

	gotFirst, gotSecond, err := api.DecodeTranscript(data)
	require.NoError(t, err)
	assert.Equal(t, first, gotFirst)
	assert.Equal(t, second, gotSecond)
}

func TestTranscriptCompressesLongMatches(t *testing.T) {
	n := 100000
	first := make([]int32, n)
	second := make([]int32, n)
	for i := range first {
		first[i], second[i] = 1, 1
	}
	data, err := api.EncodeTranscript(first, second)
	require.NoError(t, err)
	assert.Less(t, len(data), n/100)
}

func TestTranscriptRejectsBadInput(t *testing.T) {
	_, err := api.EncodeTranscript([]int32{1}, []int32{1, 0})
	assert.Error(t, err)

	_, err = api.EncodeTranscript([]int32{1, -1}, []int32{1, 0})
	assert.Error(t, err)

	_, _, err = api.DecodeTranscript([]byte("not zstd"))
	assert.Error(t, err)
}

func TestFinishMatchJSON(t *testing.T) {
	tr, err := api.EncodeTranscript([]int32{1}, []int32{0})
	require.NoError(t, err)
	msg := api.FinishMatch{
		Header:      api.NewHeader("t-1", api.FinishMatchMsg),
		MatchUuid:   "m-1",
		Iterations:  1,
		FirstScore:  -1,
		SecondScore: 3,
		Transcript:  tr,
	}

	b, err := json.Marshal(msg)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(b, &fields))
	assert.Equal(t, "match_finish", fields["msg_type"])
	assert.Equal(t, "t-1", fields["tournament_uuid"])
	assert.IsType(t, "", fields["transcript"], "bytes travel as base64")

	var back api.FinishMatch
	require.NoError(t, json.Unmarshal(b, &back))
	first, second, err := api.DecodeTranscript(back.Transcript)
	require.NoError(t, err)
	assert.Equal(t, []int32{1}, first)
	assert.Equal(t, []int32{0}, second)
}
