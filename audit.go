package kioskAuth

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

type AuditEvent struct {
	Timestamp  time.Time         `json:"timestamp"`
	EventType  string            `json:"event_type"`
	AccountID  string            `json:"account_id,omitempty"`
	Identifier string            `json:"identifier,omitempty"`
	LoginType  string            `json:"login_type,omitempty"`
	IP         string            `json:"ip,omitempty"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Success    bool              `json:"success"`
	Error      string            `json:"error,omitempty"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

type AuditSink interface {
	Emit(ctx context.Context, event AuditEvent)
}

type NoOpSink struct{}

func (NoOpSink) Emit(context.Context, AuditEvent) {}

type ChannelSink struct {
	events chan AuditEvent
}

func NewChannelSink(buffer int) *ChannelSink {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSink{
		events: make(chan AuditEvent, buffer),
	}
}

func (s *ChannelSink) Emit(ctx context.Context, event AuditEvent) {
	select {
	case s.events <- event:
	case <-ctx.Done():
	}
}

func (s *ChannelSink) Events() <-chan AuditEvent {
	return s.events
}

type JSONWriterSink struct {
	writer io.Writer
	mu     sync.Mutex
}

func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return &JSONWriterSink{
		writer: w,
	}
}

func (s *JSONWriterSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.writer == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	_, _ = s.writer.Write(data)
	_, _ = s.writer.Write([]byte("\n"))
}

// RedisStreamSink appends events to a Redis stream with approximate MAXLEN
// trimming, so the trail stays queryable without growing unbounded. Strict
// age-based retention, when required, is an out-of-band XTRIM MINID job.
type RedisStreamSink struct {
	redis  redis.UniversalClient
	stream string
	maxLen int64
}

// NewRedisStreamSink creates a [RedisStreamSink] writing to the named
// stream. maxLen <= 0 disables trimming.
func NewRedisStreamSink(redisClient redis.UniversalClient, stream string, maxLen int64) *RedisStreamSink {
	if stream == "" {
		stream = "ka:audit"
	}
	return &RedisStreamSink{
		redis:  redisClient,
		stream: stream,
		maxLen: maxLen,
	}
}

func (s *RedisStreamSink) Emit(ctx context.Context, event AuditEvent) {
	if s == nil || s.redis == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		return
	}

	args := &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{
			"event_type": event.EventType,
			"account_id": event.AccountID,
			"event":      string(data),
		},
	}
	if s.maxLen > 0 {
		args.MaxLen = s.maxLen
		args.Approx = true
	}

	_ = s.redis.XAdd(ctx, args).Err()
}

// Recent returns up to count events, newest first.
func (s *RedisStreamSink) Recent(ctx context.Context, count int64) ([]AuditEvent, error) {
	if s == nil || s.redis == nil || count <= 0 {
		return nil, nil
	}

	msgs, err := s.redis.XRevRangeN(ctx, s.stream, "+", "-", count).Result()
	if err != nil {
		return nil, err
	}

	return decodeStreamEvents(msgs, count, "")
}

// ByAccount returns up to count events for one account, newest first. It
// scans at most scanLimit stream entries; pass 0 for a 10x-count default.
func (s *RedisStreamSink) ByAccount(ctx context.Context, accountID string, count, scanLimit int64) ([]AuditEvent, error) {
	if s == nil || s.redis == nil || count <= 0 || accountID == "" {
		return nil, nil
	}
	if scanLimit <= 0 {
		scanLimit = count * 10
	}

	msgs, err := s.redis.XRevRangeN(ctx, s.stream, "+", "-", scanLimit).Result()
	if err != nil {
		return nil, err
	}

	return decodeStreamEvents(msgs, count, accountID)
}

func decodeStreamEvents(msgs []redis.XMessage, count int64, accountID string) ([]AuditEvent, error) {
	events := make([]AuditEvent, 0, count)
	for _, msg := range msgs {
		raw, ok := msg.Values["event"].(string)
		if !ok {
			continue
		}

		var event AuditEvent
		if err := json.Unmarshal([]byte(raw), &event); err != nil {
			continue
		}
		if accountID != "" && event.AccountID != accountID {
			continue
		}

		events = append(events, event)
		if int64(len(events)) >= count {
			break
		}
	}
	return events, nil
}
