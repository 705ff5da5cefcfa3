package consumer

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"elite-coaching/config"
	"elite-coaching/models"
	"elite-coaching/utils"
)

type crmEvent struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// CRMConsumer feeds the search index and the cache from the crm_events
// topic. The handlers write the authoritative rows synchronously; this
// pipeline only maintains the derived views, so every failure here is
// logged and skipped.
type CRMConsumer struct {
	cache    utils.RedisClient
	search   utils.SearchClient
	reader   *kafka.Reader
	shutdown chan struct{}
}

func NewCRMConsumer(cfg config.KafkaConfig, cache utils.RedisClient, search utils.SearchClient) *CRMConsumer {
	return &CRMConsumer{
		cache:  cache,
		search: search,
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: []string{cfg.Broker},
			Topic:   "crm_events",
			GroupID: "coaching-crm",
			MaxWait: 10 * time.Second,
		}),
		shutdown: make(chan struct{}),
	}
}

func (c *CRMConsumer) Start(ctx context.Context) {
	log.Println("Starting CRM events consumer...")

	go func() {
		for {
			select {
			case <-c.shutdown:
				return
			default:
				c.processMessages(ctx)
			}
		}
	}()
}

func (c *CRMConsumer) Stop() {
	close(c.shutdown)
	if err := c.reader.Close(); err != nil {
		log.Printf("Error closing Kafka reader: %v", err)
	}
}

func (c *CRMConsumer) processMessages(ctx context.Context) {
	msg, err := c.reader.ReadMessage(ctx)
	if err != nil {
		if err == context.Canceled {
			return
		}
		log.Printf("Kafka read error: %v (will retry)", err)
		time.Sleep(5 * time.Second)
		return
	}

	var event crmEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		log.Printf("Failed to unmarshal Kafka message: %v", err)
		return
	}

	switch event.Event {
	case "lead_created":
		c.handleLeadCreated(ctx, event.Data)
	case "payment_recorded":
		c.handlePaymentRecorded(ctx, event.Data)
	default:
		log.Printf("Unknown event type: %s", event.Event)
	}
}

func (c *CRMConsumer) handleLeadCreated(ctx context.Context, data json.RawMessage) {
	var lead models.Lead
	if err := json.Unmarshal(data, &lead); err != nil {
		log.Printf("Failed to unmarshal lead event: %v", err)
		return
	}

	if c.cache != nil {
		cacheKey := fmt.Sprintf("lead:%s", lead.ID)
		if err := c.cache.SetToCache(ctx, cacheKey, string(data), 24*time.Hour); err != nil {
			log.Printf("Failed to cache lead: %v", err)
		}
	}

	if c.search != nil {
		if err := c.search.IndexDocument(ctx, "leads", lead.ID, lead); err != nil {
			log.Printf("Failed to index lead in Elasticsearch: %v", err)
		}
	}

	log.Printf("Processed lead_created event for lead %s", lead.ID)
}

func (c *CRMConsumer) handlePaymentRecorded(ctx context.Context, data json.RawMessage) {
	var payment models.Payment
	if err := json.Unmarshal(data, &payment); err != nil {
		log.Printf("Failed to unmarshal payment event: %v", err)
		return
	}

	if c.search != nil {
		docID := fmt.Sprintf("%s:%s", payment.Gateway, payment.GatewayPaymentID)
		if err := c.search.IndexDocument(ctx, "payments", docID, payment); err != nil {
			log.Printf("Failed to index payment in Elasticsearch: %v", err)
		}
	}

	log.Printf("Processed payment_recorded event for %s payment %s", payment.Gateway, payment.GatewayPaymentID)
}
