package ingest

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aisd/internal/structures"
)

func TestDecodeMessage_Position(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{
		"MessageType": "PositionReport",
		"MetaData": {"MMSI": 244000001, "time_utc": "2024-05-01 12:00:00.5 +0000 UTC"},
		"Message": {"PositionReport": {"UserID": 244000001, "Latitude": 52.5, "Longitude": 4.25, "Sog": 11.2}}
	}`))
	require.NoError(t, err)

	pos, ok := msg.(PositionMessage)
	require.True(t, ok)
	assert.Equal(t, PositionMessage{MMSI: 244000001, Latitude: 52.5, Longitude: 4.25, ReceivedAt: "2024-05-01 12:00:00.5 +0000 UTC"}, pos)
	assert.Equal(t, TypePositionReport, msg.MessageType())
}

func TestDecodeMessage_StaticData(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{
		"MessageType": "ShipStaticData",
		"MetaData": {"MMSI": 211000001},
		"Message": {"ShipStaticData": {"UserID": 211000001, "Name": "NORDIC STAR@@@@   ", "ImoNumber": 0, "CallSign": "  @@@", "Type": 70}}
	}`))
	require.NoError(t, err)

	sd, ok := msg.(StaticDataMessage)
	require.True(t, ok)
	assert.Equal(t, int64(211000001), sd.Vessel.MMSI)
	require.NotNil(t, sd.Vessel.Name)
	assert.Equal(t, "NORDIC STAR", *sd.Vessel.Name)
	assert.Nil(t, sd.Vessel.IMO)
	assert.Nil(t, sd.Vessel.CallSign)
	require.NotNil(t, sd.Vessel.ShipType)
	assert.Equal(t, 70, *sd.Vessel.ShipType)
}

func TestDecodeMessage_StaticDataMissingFieldsStayNil(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"MessageType":"ShipStaticData","Message":{"ShipStaticData":{"UserID":5,"ImoNumber":9300001}}}`))
	require.NoError(t, err)
	v := msg.(StaticDataMessage).Vessel
	assert.Nil(t, v.Name)
	assert.Nil(t, v.ShipType)
	require.NotNil(t, v.IMO)
	assert.Equal(t, int64(9300001), *v.IMO)
}

func TestDecodeMessage_Unknown(t *testing.T) {
	msg, err := DecodeMessage([]byte(`{"MessageType":"AidsToNavigationReport","Message":{}}`))
	require.NoError(t, err)
	assert.Equal(t, UnknownMessage{Type: "AidsToNavigationReport"}, msg)
}

func TestDecodeMessage_Errors(t *testing.T) {
	tests := map[string]string{
		"not json":         `{"MessageType":`,
		"missing body":     `{"MessageType":"PositionReport","Message":{}}`,
		"missing latitude": `{"MessageType":"PositionReport","Message":{"PositionReport":{"UserID":1,"Longitude":2}}}`,
		"wrong type":       `{"MessageType":"PositionReport","Message":{"PositionReport":{"UserID":"x","Latitude":1,"Longitude":2}}}`,
		"static no id":     `{"MessageType":"ShipStaticData","Message":{"ShipStaticData":{"Name":"A"}}}`,
	}
	for name, frame := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(frame))
			assert.Error(t, err)
		})
	}
}

func TestDecodeMessage_StreamError(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"error":"Api Key Is Not Valid"}`))
	var streamErr *StreamError
	require.ErrorAs(t, err, &streamErr)
	assert.Equal(t, "Api Key Is Not Valid", streamErr.Message)
}

func TestSubscription_Encode(t *testing.T) {
	sub := NewSubscription(structures.StreamConfig{
		APIKey:        "secret",
		BoundingBoxes: [][][]float64{{{30, -25}, {72, 45}}},
	})
	data, err := sub.Encode()
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "secret", decoded["APIKey"])
	assert.NotContains(t, decoded, "FilterMessageTypes")
	assert.Len(t, decoded["BoundingBoxes"], 1)

	sub.FilterMessageTypes = []string{TypePositionReport}
	data, err = sub.Encode()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"FilterMessageTypes":["PositionReport"]`)
}
