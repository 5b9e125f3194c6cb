package bus

import (
	"context"
	"testing"

	"github.com/IBM/sarama"
)

// TestKafkaConfig_Validation tests configuration validation.
func TestKafkaConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     KafkaConfig
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: KafkaConfig{
				Brokers:       []string{"localhost:9092"},
				ConsumerGroup: "test-group",
			},
			wantErr: false,
		},
		{
			name: "empty brokers",
			cfg: KafkaConfig{
				Brokers:       []string{},
				ConsumerGroup: "test-group",
			},
			wantErr: true,
		},
		{
			name: "empty consumer group",
			cfg: KafkaConfig{
				Brokers:       []string{"localhost:9092"},
				ConsumerGroup: "",
			},
			wantErr: true,
		},
		{
			name: "invalid kafka version",
			cfg: KafkaConfig{
				Brokers:       []string{"localhost:9092"},
				ConsumerGroup: "test-group",
				Version:       "invalid",
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewKafkaBus(tt.cfg)
			if (err != nil) != tt.wantErr {
				if tt.name == "valid config" && err != nil {
					t.Skip("Skipping test - Kafka not running")
					return
				}
				t.Errorf("NewKafkaBus() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

// TestParseKafkaBrokers tests broker string parsing.
func TestParseKafkaBrokers(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single broker",
			input: "localhost:9092",
			want:  []string{"localhost:9092"},
		},
		{
			name:  "multiple brokers",
			input: "broker1:9092,broker2:9092,broker3:9092",
			want:  []string{"broker1:9092", "broker2:9092", "broker3:9092"},
		},
		{
			name:  "with whitespace",
			input: "broker1:9092 , broker2:9092 , broker3:9092",
			want:  []string{"broker1:9092", "broker2:9092", "broker3:9092"},
		},
		{
			name:  "empty string",
			input: "",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseKafkaBrokers(tt.input)
			if len(got) != len(tt.want) {
				t.Errorf("ParseKafkaBrokers() = %v, want %v", got, tt.want)
				return
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ParseKafkaBrokers()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

// TestKafkaBus_DefaultConfig tests default configuration values.
func TestKafkaBus_DefaultConfig(t *testing.T) {
	cfg := KafkaConfig{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "test-group",
	}

	_, err := NewKafkaBus(cfg)
	if err == nil {
		t.Skip("Kafka is running, skipping config-only test")
	}

	if cfg.ClientID != "" && cfg.ClientID != "searchctl-bus" {
		t.Errorf("Default ClientID not set correctly")
	}
}

// TestKafkaBus_CorrelationIDHeader tests correlation ID extraction from headers.
func TestKafkaBus_CorrelationIDHeader(t *testing.T) {
	msg := &sarama.ConsumerMessage{
		Headers: []*sarama.RecordHeader{
			{Key: []byte("correlation_id"), Value: []byte("test-correlation-123")},
		},
	}

	var correlationID string
	for _, h := range msg.Headers {
		if string(h.Key) == "correlation_id" {
			correlationID = string(h.Value)
			break
		}
	}

	if correlationID != "test-correlation-123" {
		t.Errorf("Correlation ID = %s, want test-correlation-123", correlationID)
	}
}

// TestKafkaBus_Interface verifies KafkaBus implements Bus interface.
func TestKafkaBus_Interface(t *testing.T) {
	var _ Bus = (*KafkaBus)(nil) // Compile-time interface check
}

// TestKafkaBus_CloseIdempotent tests that Close() can be called multiple times safely.
func TestKafkaBus_CloseIdempotent(t *testing.T) {
	bus := &KafkaBus{
		handlers:     make(map[string][]Handler),
		consumerStop: make(chan struct{}),
		closed:       false,
	}

	bus.mu.Lock()
	bus.closed = true
	bus.mu.Unlock()

	if err := bus.Close(); err != nil {
		t.Errorf("Second Close() returned error: %v", err)
	}
}

// TestKafkaBus_PublishAfterClose tests that operations fail after Close().
func TestKafkaBus_PublishAfterClose(t *testing.T) {
	bus := &KafkaBus{
		handlers:     make(map[string][]Handler),
		consumerStop: make(chan struct{}),
		closed:       true,
	}

	err := bus.Publish(context.Background(), "test", Event{ID: "test"})
	if err == nil {
		t.Error("Publish() after Close() should return error")
	}
}

// TestKafkaBus_SubscribeAfterClose tests that Subscribe fails after Close().
func TestKafkaBus_SubscribeAfterClose(t *testing.T) {
	bus := &KafkaBus{
		handlers:     make(map[string][]Handler),
		consumerStop: make(chan struct{}),
		closed:       true,
	}

	err := bus.Subscribe(context.Background(), "test", func(ctx context.Context, event Event) error {
		return nil
	})
	if err == nil {
		t.Error("Subscribe() after Close() should return error")
	}
}
