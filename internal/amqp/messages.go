package amqp

import (
	"encoding/json"
	"time"

	"raseed/internal/core"
)

// RoutingKeyInsightGenerated is the routing key insight events are published with.
const RoutingKeyInsightGenerated = "insight.generated"

// CategoryAmount is a category total as carried on the wire.
type CategoryAmount struct {
	Name   string  `json:"name"`
	Amount float64 `json:"amount"`
}

// InsightMessage announces a generated insight. Consumers fetch the full
// snapshot through the HTTP API when they need more than the headline.
type InsightMessage struct {
	InsightID     string           `json:"insightId"`
	PassID        string           `json:"passId,omitempty"`
	Headline      string           `json:"headline"`
	CurrentTotal  float64          `json:"currentTotal"`
	PreviousTotal float64          `json:"previousTotal"`
	PercentChange *float64         `json:"percentChange"`
	Categories    []CategoryAmount `json:"categories"`
	GeneratedAt   time.Time        `json:"generatedAt"`
	Timestamp     time.Time        `json:"timestamp"`
}

// NewInsightMessage builds the event for an insight.
func NewInsightMessage(in core.Insight) *InsightMessage {
	msg := &InsightMessage{
		InsightID:     in.ID,
		PassID:        in.PassID,
		Headline:      in.Headline,
		CurrentTotal:  core.Float(in.Comparison.Current.Total),
		PreviousTotal: core.Float(in.Comparison.Previous.Total),
		Categories:    make([]CategoryAmount, len(in.Categories)),
		GeneratedAt:   in.GeneratedAt,
		Timestamp:     time.Now(),
	}
	if in.Comparison.PercentChange != nil {
		v := core.Float(*in.Comparison.PercentChange)
		msg.PercentChange = &v
	}
	for i, c := range in.Categories {
		msg.Categories[i] = CategoryAmount{Name: c.Name, Amount: core.Float(c.Amount)}
	}
	return msg
}

func (m *InsightMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InsightMessageFromJSON(data []byte) (*InsightMessage, error) {
	var msg InsightMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
