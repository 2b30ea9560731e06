package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPayloadIsObject(t *testing.T) {
	require.True(t, Payload(`{"a":1}`).IsObject())
	require.True(t, Payload(` {} `).IsObject())
	require.False(t, Payload(`null`).IsObject())
	require.False(t, Payload(`[1]`).IsObject())
	require.False(t, Payload(`"text"`).IsObject())
	require.False(t, Payload(`{"a":`).IsObject())
	require.False(t, Payload(nil).IsObject())
}

func TestPayloadScanAndValue(t *testing.T) {
	var p Payload
	require.NoError(t, p.Scan([]byte(`{"a":1}`)))
	require.Equal(t, `{"a":1}`, string(p))

	require.NoError(t, p.Scan(nil))
	require.Nil(t, p)

	v, err := p.Value()
	require.NoError(t, err)
	require.Nil(t, v)

	require.Error(t, p.Scan(42))
}

func TestPayloadJSONRoundTrip(t *testing.T) {
	in := Report{ID: "r-1", Status: ReportStatusDraft, DraftPayload: Payload(`{"notes":"x"}`)}
	raw, err := json.Marshal(in)
	require.NoError(t, err)
	require.NotContains(t, string(raw), "finalPayload")

	var out Report
	require.NoError(t, json.Unmarshal(raw, &out))
	require.JSONEq(t, `{"notes":"x"}`, string(out.DraftPayload))
	require.Nil(t, out.FinalPayload)

	require.NoError(t, json.Unmarshal([]byte(`{"draftPayload":null}`), &out))
	require.Nil(t, out.DraftPayload)
}

func TestReportCheckInvariants(t *testing.T) {
	draft := Report{ID: "r-1", Status: ReportStatusDraft}
	require.NoError(t, draft.CheckInvariants())

	broken := draft
	broken.FinalPayload = Payload(`{}`)
	require.Error(t, broken.CheckInvariants())

	require.Error(t, Report{ID: "r-2", Status: "ARCHIVED"}.CheckInvariants())
}
