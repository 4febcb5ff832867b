package core

import "sync"

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed. Data is the KeyCode.
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released. Data is the KeyCode.
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Mouse button pressed. Data is the Button.
	EVENT_CODE_BUTTON_PRESSED SystemEventCode = 0x04

	// Mouse button released. Data is the Button.
	EVENT_CODE_BUTTON_RELEASED SystemEventCode = 0x05

	// Mouse wheel moved. Data is the int8 delta, positive away from the user.
	EVENT_CODE_MOUSE_WHEEL SystemEventCode = 0x07

	// Resized/resolution changed from the OS. Data is [2]uint32{width, height}.
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	// Fill mode (solid/wireframe) switch requested. Data is a bool, true for wireframe.
	EVENT_CODE_SET_FILL_MODE SystemEventCode = 0x10

	// The scene file changed on disk and was re-applied.
	EVENT_CODE_SCENE_RELOADED SystemEventCode = 0x11

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventContext struct {
	Type SystemEventCode
	Data interface{}
}

type FnOnEvent func(context EventContext)

type eventSystemState struct {
	mu         sync.RWMutex
	registered map[SystemEventCode][]FnOnEvent
}

var onceEvent sync.Once
var eventState *eventSystemState

func EventInitialize() {
	onceEvent.Do(func() {
		eventState = &eventSystemState{
			registered: make(map[SystemEventCode][]FnOnEvent),
		}
	})
}

func EventShutdown() {
	if eventState == nil {
		return
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	eventState.registered = make(map[SystemEventCode][]FnOnEvent)
}

// Register to listen for when events are fired with the provided code.
func EventRegister(code SystemEventCode, onEvent FnOnEvent) {
	if eventState == nil {
		LogWarn("EventRegister called before EventInitialize. Nothing was done.")
		return
	}
	eventState.mu.Lock()
	defer eventState.mu.Unlock()
	eventState.registered[code] = append(eventState.registered[code], onEvent)
}

// Fires an event to all listeners of the given code.
func EventFire(context EventContext) {
	if eventState == nil {
		return
	}
	eventState.mu.RLock()
	listeners := eventState.registered[context.Type]
	eventState.mu.RUnlock()

	for _, onEvent := range listeners {
		onEvent(context)
	}
}
