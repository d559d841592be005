package usecases

import "sync"

// ConfigLocks는 설정 변경을 인터페이스 이름별로 직렬화합니다.
// 스냅샷은 전체 설정을 한 번에 교체하므로 읽기-병합-커밋 구간은 별도 잠금으로 보호합니다.
type ConfigLocks struct {
	mu       sync.Mutex
	byName   map[string]*sync.Mutex
	snapshot sync.Mutex
}

// NewConfigLocks는 새로운 ConfigLocks를 생성합니다
func NewConfigLocks() *ConfigLocks {
	return &ConfigLocks{byName: make(map[string]*sync.Mutex)}
}

// LockInterface는 인터페이스 잠금을 잡고 해제 함수를 반환합니다
func (l *ConfigLocks) LockInterface(name string) (unlock func()) {
	l.mu.Lock()
	m, ok := l.byName[name]
	if !ok {
		m = &sync.Mutex{}
		l.byName[name] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}

// LockSnapshot은 스냅샷 읽기-쓰기 구간 잠금을 잡고 해제 함수를 반환합니다
func (l *ConfigLocks) LockSnapshot() (unlock func()) {
	l.snapshot.Lock()
	return l.snapshot.Unlock
}
