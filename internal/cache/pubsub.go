package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/aman-zulfiqar/dlmm-swap-client/internal/constants"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/models"
	"github.com/aman-zulfiqar/dlmm-swap-client/internal/storage"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// PubSubManager publishes and consumes swap results over Redis Pub/Sub
type PubSubManager struct {
	client redis.UniversalClient
	logger *logrus.Logger
}

var _ storage.SwapPublisher = (*PubSubManager)(nil)

func NewPubSubManager(client redis.UniversalClient, logger *logrus.Logger) *PubSubManager {
	if logger == nil {
		logger = logrus.New()
	}
	return &PubSubManager{client: client, logger: logger}
}

// PairChannel is the per-pair channel for a swap
func PairChannel(pair string) string {
	return fmt.Sprintf("%s:pair:%s", constants.PubSubChannelSwaps, pair)
}

// PublishSwap publishes to the live channel and the pair channel
func (p *PubSubManager) PublishSwap(ctx context.Context, swap *models.SwapExecuted) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, constants.PubSubChannelSwaps, data)
	pipe.Publish(ctx, PairChannel(swap.Pair()), data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish swap: %w", err)
	}
	return nil
}

// Subscribe delivers events from channel to handler until ctx is done
func (p *PubSubManager) Subscribe(ctx context.Context, channel string, handler storage.SwapHandler) error {
	ps := p.client.Subscribe(ctx, channel)
	return p.consume(ctx, ps, logrus.Fields{"channel": channel}, handler)
}

// PSubscribe is Subscribe for a pattern such as "dlmm:swaps:live:pair:*"
func (p *PubSubManager) PSubscribe(ctx context.Context, pattern string, handler storage.SwapHandler) error {
	ps := p.client.PSubscribe(ctx, pattern)
	return p.consume(ctx, ps, logrus.Fields{"pattern": pattern}, handler)
}

func (p *PubSubManager) consume(ctx context.Context, ps *redis.PubSub, fields logrus.Fields, handler storage.SwapHandler) error {
	defer ps.Close()

	// wait for the subscription confirmation so errors surface here
	if _, err := ps.Receive(ctx); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	log := p.logger.WithFields(fields)
	log.Info("subscribed")

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var swap models.SwapExecuted
			if err := json.Unmarshal([]byte(msg.Payload), &swap); err != nil {
				log.WithError(err).Warn("dropping malformed swap event")
				continue
			}
			handler(&swap)
		}
	}
}

func (p *PubSubManager) Close() error {
	return p.client.Close()
}
