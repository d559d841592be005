package commit

import "sync"

// PendingFlag는 비동기 확인 이벤트를 기다리는 커밋이 있음을 나타냅니다.
// 커밋을 시작한 호출과 이벤트 전달 콜백이 동시에 접근하므로 채널로 구현합니다.
type PendingFlag struct {
	mu         sync.Mutex
	done       chan struct{}
	generation uint64
}

// Set은 플래그를 올리고 해제 시 닫히는 채널과 이번 호출의 세대를 반환합니다.
// 이미 올라가 있으면 같은 채널을 반환하지만 세대는 매번 증가합니다.
func (f *PendingFlag) Set() (<-chan struct{}, uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.done == nil {
		f.done = make(chan struct{})
	}
	f.generation++
	return f.done, f.generation
}

// Clear는 플래그를 내리고 대기 중인 호출을 모두 깨웁니다. 플래그가 올라가 있었으면 true를 반환합니다
func (f *PendingFlag) Clear() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.clearLocked()
}

// ClearGeneration은 generation이 마지막 Set의 세대일 때만 플래그를 내립니다.
// 그 사이 다른 커밋이 플래그를 다시 올렸다면 그 커밋의 대기는 유지됩니다.
func (f *PendingFlag) ClearGeneration(generation uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.generation != generation {
		return false
	}
	return f.clearLocked()
}

func (f *PendingFlag) clearLocked() bool {
	if f.done == nil {
		return false
	}
	close(f.done)
	f.done = nil
	return true
}

// IsSet은 플래그가 올라가 있는지 확인합니다
func (f *PendingFlag) IsSet() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.done != nil
}
