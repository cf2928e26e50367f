package selection

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// ReportSummary is the compact form of a Report published next to it
type ReportSummary struct {
	Timestamp      int64  `json:"timestamp"`
	Before         int    `json:"before"`
	Selected       int    `json:"selected"`
	Invalid        int    `json:"invalid"`
	GoodPriorEdges int    `json:"goodPriorEdges"`
	RemovedEdges   int    `json:"removedEdges"`
	Strategy       string `json:"strategy"`
}

// Summary condenses the report
func (r Report) Summary() ReportSummary {
	return ReportSummary{
		Timestamp:      r.Timestamp,
		Before:         r.Quality.Before,
		Selected:       r.Selected.Len(),
		Invalid:        r.Quality.Invalid,
		GoodPriorEdges: r.Quality.GoodPriorEdges,
		RemovedEdges:   len(r.Quality.RemovedEdges),
		Strategy:       r.Strategy.Strategy,
	}
}

// ReportPublisher publishes selection reports to MQTT
type ReportPublisher struct {
	client        mqtt.Client
	publishPrefix string
	qos           byte
	retain        bool
	timeout       time.Duration
}

// NewReportPublisher creates a publisher. The topic prefix comes from
// LCSELECT_PUBLISH_PREFIX and defaults to "lcselect".
func NewReportPublisher(client mqtt.Client) *ReportPublisher {
	prefix := os.Getenv("LCSELECT_PUBLISH_PREFIX")
	if prefix == "" {
		prefix = "lcselect"
	}

	return &ReportPublisher{
		client:        client,
		publishPrefix: prefix,
		qos:           1,
		retain:        true, // late subscribers see the latest run
		timeout:       2 * time.Second,
	}
}

// SetQoS sets the Quality of Service level for publishing (0, 1, or 2)
func (p *ReportPublisher) SetQoS(qos byte) {
	if qos <= 2 {
		p.qos = qos
	}
}

// SetRetain sets whether published messages should be retained by the broker
func (p *ReportPublisher) SetRetain(retain bool) {
	p.retain = retain
}

// ReportTopic is where full reports are published
func (p *ReportPublisher) ReportTopic() string {
	return fmt.Sprintf("%s/selection", p.publishPrefix)
}

// SummaryTopic is where report summaries are published
func (p *ReportPublisher) SummaryTopic() string {
	return fmt.Sprintf("%s/selection/summary", p.publishPrefix)
}

// Publish sends the full report and its summary
func (p *ReportPublisher) Publish(report Report) error {
	if p.client == nil || !p.client.IsConnected() {
		return fmt.Errorf("MQTT client not connected")
	}

	if err := p.publishJSON(p.ReportTopic(), report); err != nil {
		return err
	}
	if err := p.publishJSON(p.SummaryTopic(), report.Summary()); err != nil {
		return err
	}

	log.Printf("Published selection report: %d of %d candidates selected",
		report.Selected.Len(), report.Quality.Before)
	return nil
}

func (p *ReportPublisher) publishJSON(topic string, v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s payload: %w", topic, err)
	}

	token := p.client.Publish(topic, p.qos, p.retain, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("publishing to %s: timeout", topic)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publishing to %s: %w", topic, err)
	}
	return nil
}
