package main

import "github.com/hajimehoshi/ebiten/v2"

// ActionDefinition defines an action with its default keybindings, mouse bindings, and description
type ActionDefinition struct {
	Name         string
	Keys         []string
	MouseActions []string
	Description  string
}

// actionDefinitions contains all action definitions with default keybindings, mouse bindings, and descriptions
var actionDefinitions = []ActionDefinition{
	{"exit", []string{"Escape", "KeyQ"}, []string{}, "Quit application"},
	{"help", []string{"Shift+Slash"}, []string{"Alt+RightClick"}, "Show/hide help"},
	{"info", []string{"KeyI"}, []string{}, "Show/hide image info"},

	// Navigation
	{"next", []string{"Space", "KeyN", "PageDown"}, []string{"WheelDown", "Forward"}, "Next image"},
	{"previous", []string{"Backspace", "KeyP", "PageUp"}, []string{"WheelUp", "Back"}, "Previous image"},
	{"page_left", []string{"ArrowLeft"}, []string{}, "Page toward the left (follows reading direction)"},
	{"page_right", []string{"ArrowRight"}, []string{}, "Page toward the right (follows reading direction)"},
	{"page_up", []string{"ArrowUp"}, []string{}, "Page up"},
	{"page_down", []string{"ArrowDown"}, []string{}, "Page down"},
	{"jump_first", []string{"Home", "Shift+Comma"}, []string{}, "Jump to first image"},
	{"jump_last", []string{"End", "Shift+Period"}, []string{}, "Jump to last image"},
	{"nav_click", []string{}, []string{"LeftClick"}, "Page when clicking the edge of the window"},
	{"expand_directory", []string{"KeyS"}, []string{}, "Scan directory images (single file mode)"},
	{"slideshow", []string{"KeyT"}, []string{"Ctrl+LeftClick"}, "Start/stop slideshow"},

	// View
	{"cycle_display_mode", []string{"KeyF"}, []string{"MiddleClick"}, "Cycle display mode (native/fit/width/height)"},
	{"native_size", []string{"Key1"}, []string{}, "Show image at native size"},
	{"fit_in_view", []string{"Key2"}, []string{}, "Fit image in window"},
	{"fit_width", []string{"Key3"}, []string{}, "Fit image width"},
	{"fit_height", []string{"Key4"}, []string{}, "Fit image height"},
	{"toggle_orientation", []string{"KeyO"}, []string{}, "Toggle horizontal/vertical gallery"},
	{"toggle_reading_direction", []string{"Shift+KeyB"}, []string{"Ctrl+MiddleClick"}, "Toggle reading direction (LTR ↔ RTL)"},
	{"fullscreen", []string{"Enter"}, []string{"DoubleLeftClick"}, "Toggle fullscreen"},
	{"reset_window", []string{"KeyW"}, []string{}, "Reset window to the configured size"},
	{"cycle_sort", []string{"Shift+KeyS"}, []string{"Alt+MiddleClick"}, "Cycle sort method (Natural/Simple/Entry)"},

	// Zoom and rotation
	{"zoom_in", []string{"Equal", "Shift+Equal", "NumpadAdd"}, []string{"Ctrl+WheelUp"}, "Zoom in"},
	{"zoom_out", []string{"Minus", "NumpadSub"}, []string{"Ctrl+WheelDown"}, "Zoom out"},
	{"rotate_cw", []string{"KeyR"}, []string{}, "Rotate clockwise"},
	{"rotate_ccw", []string{"KeyL"}, []string{}, "Rotate counter-clockwise"},
	{"reset_view", []string{"Key0"}, []string{"Shift+MiddleClick"}, "Reset zoom, rotation and pan"},

	// Pan along the gallery axis
	{"pan_forward", []string{"Shift+ArrowDown", "Shift+ArrowRight"}, []string{}, "Pan forward"},
	{"pan_backward", []string{"Shift+ArrowUp", "Shift+ArrowLeft"}, []string{}, "Pan backward"},
}

// executeAction runs the named action against the game. It is shared by
// the keyboard and mouse binding managers.
func executeAction(action string, inputActions InputActions, inputState InputState) bool {
	switch action {
	case "exit":
		inputActions.Exit()
	case "help":
		inputActions.ToggleHelp()
	case "info":
		inputActions.ToggleInfo()
	case "next":
		inputActions.NavigateNext()
	case "previous":
		inputActions.NavigatePrevious()
	case "page_left":
		inputActions.NavigateGesture(GestureLeft)
	case "page_right":
		inputActions.NavigateGesture(GestureRight)
	case "page_up":
		inputActions.NavigateGesture(GestureUp)
	case "page_down":
		inputActions.NavigateGesture(GestureDown)
	case "jump_first":
		inputActions.JumpToFirst()
	case "jump_last":
		inputActions.JumpToLast()
	case "nav_click":
		x, y := ebiten.CursorPosition()
		inputActions.NavigateClick(float64(x), float64(y))
	case "expand_directory":
		inputActions.ExpandToDirectory()
	case "slideshow":
		inputActions.ToggleSlideshow()
	case "cycle_display_mode":
		inputActions.CycleDisplayMode()
	case "native_size":
		inputActions.SetDisplayMode(NativeSize)
	case "fit_in_view":
		inputActions.SetDisplayMode(FitInView)
	case "fit_width":
		inputActions.SetDisplayMode(FitWidth)
	case "fit_height":
		inputActions.SetDisplayMode(FitHeight)
	case "toggle_orientation":
		inputActions.ToggleOrientation()
	case "toggle_reading_direction":
		inputActions.ToggleReadingDirection()
	case "fullscreen":
		inputActions.ToggleFullscreen()
	case "reset_window":
		inputActions.ResetWindowSize()
	case "cycle_sort":
		inputActions.CycleSortMethod()
	case "zoom_in":
		inputActions.ZoomIn()
	case "zoom_out":
		inputActions.ZoomOut()
	case "rotate_cw":
		inputActions.RotateClockwise()
	case "rotate_ccw":
		inputActions.RotateCounterClockwise()
	case "reset_view":
		inputActions.ResetView()
	case "pan_forward":
		inputActions.PanForward()
	case "pan_backward":
		inputActions.PanBackward()
	default:
		return false
	}

	return true
}

// GetActionDescriptions returns a map of action names to their descriptions
func GetActionDescriptions() map[string]string {
	descriptions := make(map[string]string)
	for _, action := range actionDefinitions {
		descriptions[action.Name] = action.Description
	}
	return descriptions
}

// GetDefaultKeybindings returns a map of action names to their default keybindings
func GetDefaultKeybindings() map[string][]string {
	keybindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		keybindings[action.Name] = action.Keys
	}
	return keybindings
}

// GetDefaultMousebindings returns a map of action names to their default mouse bindings
func GetDefaultMousebindings() map[string][]string {
	mousebindings := make(map[string][]string)
	for _, action := range actionDefinitions {
		mousebindings[action.Name] = action.MouseActions
	}
	return mousebindings
}

// actionNames returns the action names in definition order
func actionNames() []string {
	names := make([]string, len(actionDefinitions))
	for i, action := range actionDefinitions {
		names[i] = action.Name
	}
	return names
}
