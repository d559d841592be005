package interfaces

import "time"

// 설정 변경 확인 이벤트 토픽
const (
	TopicNetworkConfigChanged  = "netadmin/network/config/changed"
	TopicFirewallConfigChanged = "netadmin/firewall/config/changed"
)

// Event는 비동기로 전달되는 알림입니다
type Event struct {
	Topic      string
	Timestamp  time.Time
	Properties map[string]string
}

// EventHandler는 구독자 콜백입니다
type EventHandler func(Event)

// EventBus는 프로세스 내부 이벤트 버스입니다
type EventBus interface {
	Publish(event Event)
	Subscribe(topic string, handler EventHandler) (unsubscribe func())
}
