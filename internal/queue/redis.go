package queue

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"puma/crawler/internal/config"
	"puma/crawler/internal/domain"
	"puma/crawler/internal/domain/task"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

type RedisQueue struct {
	redisClient *redis.Client
	stream      string
	groupName   string
	minIdleTime time.Duration
	block       time.Duration
}

// NewRedisQueue keeps pending requests in a Redis stream read by a consumer
// group, so an interrupted crawl can be resumed by another process
func NewRedisQueue(ctx context.Context, redisClient *redis.Client, cfg config.RedisConfig) (*RedisQueue, error) {
	q := &RedisQueue{
		redisClient: redisClient,
		stream:      cfg.KeyPrefix + "stream:requests",
		groupName:   cfg.ConsumerGroup,
		minIdleTime: time.Duration(cfg.MinIdleTime) * time.Second,
		block:       time.Second,
	}

	if err := q.CreateGroup(ctx); err != nil {
		return nil, fmt.Errorf("failed to create consumer group for %s: %w", q.stream, err)
	}

	log.Infof("✅ Stream %s and consumer group %s ready", q.stream, q.groupName)
	return q, nil
}

func (q *RedisQueue) CreateGroup(ctx context.Context) error {
	err := q.redisClient.XGroupCreateMkStream(ctx, q.stream, q.groupName, "0").Err()
	if err != nil && strings.HasPrefix(err.Error(), "BUSYGROUP") {
		log.Infof("Group %s already exists for stream %s", q.groupName, q.stream)
		return nil
	}
	return err
}

func (q *RedisQueue) Push(ctx context.Context, req *domain.Request) error {
	return q.AddTask(ctx, req)
}

// AddTask appends any task to the stream as task_type/task_data fields
func (q *RedisQueue) AddTask(ctx context.Context, t task.Task) error {
	taskValue, err := t.TaskValue()
	if err != nil {
		return fmt.Errorf("failed to serialize task: %w", err)
	}

	messageID, err := q.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		Values: map[string]interface{}{
			"task_type": t.TaskType(),
			"task_data": string(taskValue),
		},
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to add task to Redis stream %s: %w", q.stream, err)
	}

	log.Debugf("Added %s task to stream %s with message ID: %s", t.TaskType(), q.stream, messageID)
	return nil
}

// Pop first reclaims messages left pending by dead consumers, then reads new ones.
// Messages that cannot be decoded are acked and skipped.
func (q *RedisQueue) Pop(ctx context.Context, consumer string) (*Delivery, error) {
	for {
		msg, err := q.next(ctx, consumer)
		if err != nil || msg == nil {
			return nil, err
		}

		delivery, err := decode(msg)
		if err == nil {
			return delivery, nil
		}

		log.Warnf("⚠️ Dropping undecodable message %s: %v", msg.ID, err)
		if err := q.redisClient.XAck(ctx, q.stream, q.groupName, msg.ID).Err(); err != nil {
			return nil, fmt.Errorf("failed to ack message %s: %w", msg.ID, err)
		}
	}
}

func (q *RedisQueue) next(ctx context.Context, consumer string) (*redis.XMessage, error) {
	claimed, err := q.autoClaim(ctx, consumer)
	if err != nil {
		return nil, err
	}
	if claimed != nil {
		log.Infof("🔄 Reclaimed idle message %s for %s", claimed.ID, consumer)
		return claimed, nil
	}

	result, err := q.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    q.groupName,
		Consumer: consumer,
		Streams:  []string{q.stream, ">"},
		Count:    1,
		Block:    q.block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read from Redis stream %s: %w", q.stream, err)
	}

	if len(result) == 0 || len(result[0].Messages) == 0 {
		return nil, nil
	}

	return &result[0].Messages[0], nil
}

func (q *RedisQueue) Ack(ctx context.Context, delivery *Delivery) error {
	if err := q.redisClient.XAck(ctx, q.stream, q.groupName, delivery.ID).Err(); err != nil {
		return fmt.Errorf("failed to ack message %s: %w", delivery.ID, err)
	}
	return nil
}

func (q *RedisQueue) autoClaim(ctx context.Context, consumer string) (*redis.XMessage, error) {
	if q.minIdleTime <= 0 {
		return nil, nil
	}

	result, _, err := q.redisClient.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   q.stream,
		Group:    q.groupName,
		Consumer: consumer,
		MinIdle:  q.minIdleTime,
		Start:    "0-0",
		Count:    1,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("failed to claim messages from Redis stream %s: %w", q.stream, err)
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func decode(msg *redis.XMessage) (*Delivery, error) {
	taskType, _ := msg.Values["task_type"].(string)
	taskData, ok := msg.Values["task_data"].(string)
	if !ok {
		return nil, fmt.Errorf("invalid task data in message %s", msg.ID)
	}

	req, err := task.Decode[*domain.Request](taskType, []byte(taskData))
	if err != nil {
		return nil, fmt.Errorf("failed to decode message %s: %w", msg.ID, err)
	}

	return &Delivery{ID: msg.ID, Request: req}, nil
}
