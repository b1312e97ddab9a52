package ingest

import (
	"errors"
	"fmt"
	"strings"

	json "github.com/goccy/go-json"

	"aisd/internal/models"
	"aisd/internal/structures"
)

const (
	TypePositionReport = "PositionReport"
	TypeShipStaticData = "ShipStaticData"
)

// Message is one decoded stream frame: PositionMessage, StaticDataMessage
// or UnknownMessage.
type Message interface {
	MessageType() string
	isMessage()
}

type PositionMessage struct {
	MMSI       int64
	Latitude   float64
	Longitude  float64
	ReceivedAt string
}

type StaticDataMessage struct {
	Vessel models.Vessel
}

type UnknownMessage struct {
	Type string
}

func (PositionMessage) MessageType() string   { return TypePositionReport }
func (StaticDataMessage) MessageType() string { return TypeShipStaticData }
func (m UnknownMessage) MessageType() string  { return m.Type }

func (PositionMessage) isMessage()   {}
func (StaticDataMessage) isMessage() {}
func (UnknownMessage) isMessage()    {}

// StreamError is an error frame sent by the upstream service, usually right
// before it closes the connection.
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return "stream error: " + e.Message
}

type envelope struct {
	Error       string                     `json:"error"`
	MessageType string                     `json:"MessageType"`
	MetaData    metaData                   `json:"MetaData"`
	Message     map[string]json.RawMessage `json:"Message"`
}

type metaData struct {
	MMSI    int64  `json:"MMSI"`
	TimeUTC string `json:"time_utc"`
}

type positionBody struct {
	UserID    *int64   `json:"UserID"`
	Latitude  *float64 `json:"Latitude"`
	Longitude *float64 `json:"Longitude"`
}

type staticDataBody struct {
	UserID    *int64  `json:"UserID"`
	Name      *string `json:"Name"`
	ImoNumber *int64  `json:"ImoNumber"`
	CallSign  *string `json:"CallSign"`
	Type      *int    `json:"Type"`
}

var errMissingBody = errors.New("message body missing")

// DecodeMessage decodes one frame. Frames of other types decode to
// UnknownMessage; malformed frames of a known type return an error.
func DecodeMessage(data []byte) (Message, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.Error != "" {
		return nil, &StreamError{Message: env.Error}
	}

	switch env.MessageType {
	case TypePositionReport:
		raw, ok := env.Message[TypePositionReport]
		if !ok {
			return nil, fmt.Errorf("%s: %w", TypePositionReport, errMissingBody)
		}
		var body positionBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", TypePositionReport, err)
		}
		if body.UserID == nil || body.Latitude == nil || body.Longitude == nil {
			return nil, fmt.Errorf("%s: UserID, Latitude and Longitude are required", TypePositionReport)
		}
		return PositionMessage{
			MMSI:       *body.UserID,
			Latitude:   *body.Latitude,
			Longitude:  *body.Longitude,
			ReceivedAt: env.MetaData.TimeUTC,
		}, nil

	case TypeShipStaticData:
		raw, ok := env.Message[TypeShipStaticData]
		if !ok {
			return nil, fmt.Errorf("%s: %w", TypeShipStaticData, errMissingBody)
		}
		var body staticDataBody
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, fmt.Errorf("decode %s: %w", TypeShipStaticData, err)
		}
		if body.UserID == nil {
			return nil, fmt.Errorf("%s: UserID is required", TypeShipStaticData)
		}
		v := models.Vessel{
			MMSI:     *body.UserID,
			Name:     cleanText(body.Name),
			CallSign: cleanText(body.CallSign),
			ShipType: body.Type,
		}
		if body.ImoNumber != nil && *body.ImoNumber != 0 {
			v.IMO = body.ImoNumber
		}
		return StaticDataMessage{Vessel: v}, nil

	default:
		return UnknownMessage{Type: env.MessageType}, nil
	}
}

// cleanText strips the blank and '@' padding of AIS six-bit text fields.
func cleanText(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimRight(strings.TrimSpace(*s), "@ ")
	if v == "" {
		return nil
	}
	return &v
}

// Subscription is the first frame sent on every connection.
type Subscription struct {
	APIKey             string        `json:"APIKey"`
	BoundingBoxes      [][][]float64 `json:"BoundingBoxes"`
	FilterMessageTypes []string      `json:"FilterMessageTypes,omitempty"`
}

func NewSubscription(conf structures.StreamConfig) Subscription {
	return Subscription{
		APIKey:             conf.APIKey,
		BoundingBoxes:      conf.BoundingBoxes,
		FilterMessageTypes: conf.MessageTypes,
	}
}

func (s Subscription) Encode() ([]byte, error) {
	return json.Marshal(s)
}
