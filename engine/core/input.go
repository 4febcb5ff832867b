package core

import "sync"

type Button uint16

const (
	BUTTON_LEFT Button = iota
	BUTTON_RIGHT
	BUTTON_MIDDLE
	BUTTON_MAX_BUTTONS
)

// Key code definitions
type KeyCode uint16

const (
	KEY_ESCAPE KeyCode = 0x1B
	KEY_SPACE  KeyCode = 0x20
	KEY_0      KeyCode = 0x30
	KEY_1      KeyCode = 0x31
	KEY_2      KeyCode = 0x32
	KEY_A      KeyCode = 0x41
	KEY_D      KeyCode = 0x44
	KEY_E      KeyCode = 0x45
	KEY_P      KeyCode = 0x50
	KEY_Q      KeyCode = 0x51
	KEY_S      KeyCode = 0x53
	KEY_W      KeyCode = 0x57
	KEYS_MAX_KEYS
)

// Mouse state structure
type MouseState struct {
	X       int32
	Y       int32
	Buttons [BUTTON_MAX_BUTTONS]bool
}

type keyboardState struct {
	Keys [KEYS_MAX_KEYS]bool
}

type inputState struct {
	mu               sync.RWMutex
	keyboardCurrent  keyboardState
	keyboardPrevious keyboardState
	mouseCurrent     MouseState
	mousePrevious    MouseState
}

var onceInput sync.Once
var inState *inputState

func InputInitialize() {
	onceInput.Do(func() {
		inState = &inputState{}
	})
	LogInfo("Input subsystem initialized.")
}

// InputUpdate copies current states to previous. Call once per frame,
// after the platform has pumped its messages.
func InputUpdate() {
	inState.mu.Lock()
	defer inState.mu.Unlock()
	inState.keyboardPrevious = inState.keyboardCurrent
	inState.mousePrevious = inState.mouseCurrent
}

func InputProcessKey(key KeyCode, pressed bool) {
	if key >= KEYS_MAX_KEYS {
		return
	}
	inState.mu.Lock()
	changed := inState.keyboardCurrent.Keys[key] != pressed
	inState.keyboardCurrent.Keys[key] = pressed
	inState.mu.Unlock()

	if changed {
		code := EVENT_CODE_KEY_RELEASED
		if pressed {
			code = EVENT_CODE_KEY_PRESSED
		}
		EventFire(EventContext{Type: code, Data: key})
	}
}

func InputProcessButton(button Button, pressed bool) {
	if button >= BUTTON_MAX_BUTTONS {
		return
	}
	inState.mu.Lock()
	changed := inState.mouseCurrent.Buttons[button] != pressed
	inState.mouseCurrent.Buttons[button] = pressed
	inState.mu.Unlock()

	if changed {
		code := EVENT_CODE_BUTTON_RELEASED
		if pressed {
			code = EVENT_CODE_BUTTON_PRESSED
		}
		EventFire(EventContext{Type: code, Data: button})
	}
}

func InputProcessMouseWheel(delta int8) {
	EventFire(EventContext{Type: EVENT_CODE_MOUSE_WHEEL, Data: delta})
}

func InputProcessMouseMove(x, y int32) {
	inState.mu.Lock()
	inState.mouseCurrent.X = x
	inState.mouseCurrent.Y = y
	inState.mu.Unlock()
}

func InputIsKeyDown(key KeyCode) bool {
	inState.mu.RLock()
	defer inState.mu.RUnlock()
	return inState.keyboardCurrent.Keys[key]
}

func InputIsKeyUp(key KeyCode) bool {
	return !InputIsKeyDown(key)
}

func InputWasKeyDown(key KeyCode) bool {
	inState.mu.RLock()
	defer inState.mu.RUnlock()
	return inState.keyboardPrevious.Keys[key]
}

func InputIsButtonDown(button Button) bool {
	inState.mu.RLock()
	defer inState.mu.RUnlock()
	return inState.mouseCurrent.Buttons[button]
}

func InputGetMousePosition() (int32, int32) {
	inState.mu.RLock()
	defer inState.mu.RUnlock()
	return inState.mouseCurrent.X, inState.mouseCurrent.Y
}

func InputGetPreviousMousePosition() (int32, int32) {
	inState.mu.RLock()
	defer inState.mu.RUnlock()
	return inState.mousePrevious.X, inState.mousePrevious.Y
}
