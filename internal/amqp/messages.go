package amqp

import (
	"encoding/json"
	"time"
)

// DatasetSeededMessage announces that the record store was fully replaced.
type DatasetSeededMessage struct {
	Count     int       `json:"count"`
	Source    string    `json:"source"`
	Skipped   int       `json:"skipped"`
	Timestamp time.Time `json:"timestamp"`
}

func NewDatasetSeededMessage(count, skipped int, source string) *DatasetSeededMessage {
	return &DatasetSeededMessage{
		Count:     count,
		Source:    source,
		Skipped:   skipped,
		Timestamp: time.Now().UTC(),
	}
}

func (m *DatasetSeededMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func DatasetSeededMessageFromJSON(data []byte) (*DatasetSeededMessage, error) {
	var msg DatasetSeededMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
