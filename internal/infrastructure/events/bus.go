// Package events는 설정 저장소의 변경 알림을 커밋 코디네이터로 전달하는 프로세스 내 이벤트 버스입니다
package events

import (
	"sync"
	"time"

	"netadmin-agent/internal/domain/interfaces"

	"github.com/sirupsen/logrus"
)

// Bus는 각 구독자에게 별도 고루틴으로 이벤트를 전달합니다. 발행자는 핸들러를 기다리지 않습니다
type Bus struct {
	mu          sync.RWMutex
	nextID      uint64
	subscribers map[string]map[uint64]interfaces.EventHandler
	logger      *logrus.Logger
	wg          sync.WaitGroup
}

// NewBus는 새로운 Bus를 생성합니다
func NewBus(logger *logrus.Logger) *Bus {
	return &Bus{
		subscribers: make(map[string]map[uint64]interfaces.EventHandler),
		logger:      logger,
	}
}

var _ interfaces.EventBus = (*Bus)(nil)

// Publish는 토픽의 모든 구독자에게 이벤트를 전달합니다. Timestamp가 비어 있으면 현재 시각을 채웁니다
func (b *Bus) Publish(event interfaces.Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	b.mu.RLock()
	handlers := make([]interfaces.EventHandler, 0, len(b.subscribers[event.Topic]))
	for _, h := range b.subscribers[event.Topic] {
		handlers = append(handlers, h)
	}
	b.mu.RUnlock()

	b.logger.WithFields(logrus.Fields{
		"topic":       event.Topic,
		"subscribers": len(handlers),
	}).Debug("이벤트 발행")

	for _, h := range handlers {
		b.wg.Add(1)
		go func(h interfaces.EventHandler) {
			defer b.wg.Done()
			h(event)
		}(h)
	}
}

// Subscribe는 토픽에 핸들러를 등록하고 구독 해제 함수를 반환합니다
func (b *Bus) Subscribe(topic string, handler interfaces.EventHandler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	if b.subscribers[topic] == nil {
		b.subscribers[topic] = make(map[uint64]interfaces.EventHandler)
	}
	b.subscribers[topic][id] = handler

	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subscribers[topic], id)
	}
}

// Drain은 실행 중인 핸들러 고루틴이 모두 끝날 때까지 기다립니다
func (b *Bus) Drain() {
	b.wg.Wait()
}
