package main

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/lucasb-eyer/go-colorful"
)

const appName = "happyview"

// Window size constants
const (
	defaultWidth  = 800
	defaultHeight = 600
	minWidth      = 350
	minHeight     = 350
)

// Sort method constants
const (
	SortNatural    = 0 // Natural sort order (e.g., file1, file2, file10)
	SortSimple     = 1 // Simple string sort (lexicographical)
	SortEntryOrder = 2 // Maintain original order (no sort)
)

const defaultBackgroundColor = "#404244"

// validateKeybindings checks key binding syntax and conflicts
func validateKeybindings(keybindings map[string][]string) error {
	return validateBindings("key", keybindings, func(b string) error {
		_, err := parseKeyBinding(b)
		return err
	})
}

// validateMousebindings checks mouse binding syntax and conflicts
func validateMousebindings(mousebindings map[string][]string) error {
	return validateBindings("mouse", mousebindings, func(b string) error {
		_, err := parseMouseBinding(b)
		return err
	})
}

func validateBindings(kind string, bindings map[string][]string, parse func(string) error) error {
	seen := make(map[string]string)
	for action, inputs := range bindings {
		for _, input := range inputs {
			if err := parse(input); err != nil {
				return fmt.Errorf("invalid %s '%s' for action '%s': %w", kind, input, action, err)
			}
			if existing, exists := seen[input]; exists {
				return fmt.Errorf("%s conflict: '%s' is bound to both '%s' and '%s'", kind, input, existing, action)
			}
			seen[input] = action
		}
	}
	return nil
}

// ConfigLoadResult contains the result of loading configuration
type ConfigLoadResult struct {
	Config   Config
	HasError bool
	Warnings []string
	Status   string // "OK", "Default", "Warning", "Error"
	Sources  []string
}

func (r *ConfigLoadResult) warn(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("Warning: %s", msg)
	r.Warnings = append(r.Warnings, msg)
	if r.Status != "Error" {
		r.Status = "Warning"
	}
}

type Config struct {
	WindowWidth         int                 `koanf:"window_width"`
	WindowHeight        int                 `koanf:"window_height"`
	DisplayMode         string              `koanf:"display_mode"`
	Orientation         string              `koanf:"orientation"`
	RightToLeft         bool                `koanf:"right_to_left"`
	Fullscreen          bool                `koanf:"fullscreen"`
	WindowRadius        int                 `koanf:"window_radius"`
	PreloadEnabled      bool                `koanf:"preload_enabled"`
	PreloadCount        int                 `koanf:"preload_count"`
	MaxTextureSize      int                 `koanf:"max_texture_size"`
	ZoomFactor          float64             `koanf:"zoom_factor"`
	RotateStep          float64             `koanf:"rotate_step"`
	AnimationFrames     int                 `koanf:"animation_frames"`
	AnimationDurationMs int                 `koanf:"animation_duration_ms"`
	SlideshowSeconds    float64             `koanf:"slideshow_seconds"`
	SortMethod          int                 `koanf:"sort_method"`
	BackgroundColor     string              `koanf:"background_color"`
	FontSize            float64             `koanf:"font_size"`
	Resume              bool                `koanf:"resume"`
	Keybindings         map[string][]string `koanf:"keybindings"`
	Mousebindings       map[string][]string `koanf:"mousebindings"`
	Mouse               MouseSettings       `koanf:"mouse"`

	// parsed forms, filled by validation
	displayMode DisplayMode
	orientation Orientation
	background  color.RGBA
}

// defaultConfig returns the configuration used when no file sets a key
func defaultConfig() Config {
	return Config{
		WindowWidth:         defaultWidth,
		WindowHeight:        defaultHeight,
		DisplayMode:         NativeSize.String(),
		Orientation:         Horizontal.String(),
		WindowRadius:        1,
		PreloadEnabled:      true,
		PreloadCount:        1,
		MaxTextureSize:      8192,
		ZoomFactor:          defaultZoomFactor,
		RotateStep:          defaultRotateStep,
		AnimationFrames:     defaultAnimationFrames,
		AnimationDurationMs: int(defaultAnimationDuration / time.Millisecond),
		SlideshowSeconds:    defaultSlideshowInterval.Seconds(),
		SortMethod:          SortNatural,
		BackgroundColor:     defaultBackgroundColor,
		FontSize:            24.0,
		Resume:              true,
		Mouse:               GetDefaultMouseSettings(),
		displayMode:         NativeSize,
		orientation:         Horizontal,
		background:          color.RGBA{0x40, 0x42, 0x44, 0xff},
	}
}

// ViewOptions converts the config into controller options
func (c Config) ViewOptions() ViewOptions {
	dir := LeftToRight
	if c.RightToLeft {
		dir = RightToLeft
	}
	return ViewOptions{
		DisplayMode:       c.displayMode,
		Orientation:       c.orientation,
		ReadingDirection:  dir,
		ZoomFactor:        c.ZoomFactor,
		RotateStep:        c.RotateStep,
		AnimationFrames:   c.AnimationFrames,
		AnimationDuration: time.Duration(c.AnimationDurationMs) * time.Millisecond,
		SlideshowInterval: time.Duration(c.SlideshowSeconds * float64(time.Second)),
	}
}

func (c Config) Background() color.RGBA {
	return c.background
}

// getConfigPaths returns the config files to load in order (last wins)
func getConfigPaths() []string {
	var paths []string
	if p, err := xdg.SearchConfigFile(filepath.Join(appName, "config.toml")); err == nil {
		paths = append(paths, p)
	}
	paths = append(paths, appName+".toml")
	return paths
}

func loadConfig() ConfigLoadResult {
	return loadConfigFromPaths(getConfigPaths()...)
}

func loadConfigFromPath(configPath string) ConfigLoadResult {
	return loadConfigFromPaths(configPath)
}

// loadConfigFromPaths merges the existing files among paths over the
// defaults. Problems never abort: they are reported and defaults are kept.
func loadConfigFromPaths(paths ...string) ConfigLoadResult {
	config := defaultConfig()
	result := ConfigLoadResult{
		Config:   config,
		Warnings: []string{},
		Status:   "OK",
	}

	k := koanf.New(".")
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
			log.Printf("Warning: Invalid config file %s, using defaults: %v", path, err)
			result.HasError = true
			result.Status = "Error"
			result.Warnings = append(result.Warnings, fmt.Sprintf("Invalid config file: %v", err))
			result.Config.Keybindings = GetDefaultKeybindings()
			result.Config.Mousebindings = GetDefaultMousebindings()
			return result
		}
		result.Sources = append(result.Sources, path)
	}

	if len(result.Sources) == 0 {
		result.Status = "Default"
		result.Config.Keybindings = GetDefaultKeybindings()
		result.Config.Mousebindings = GetDefaultMousebindings()
		return result
	}

	if err := k.Unmarshal("", &config); err != nil {
		log.Printf("Warning: Config has wrong value types, using defaults: %v", err)
		config = defaultConfig()
		result.HasError = true
		result.Status = "Error"
		result.Warnings = append(result.Warnings, fmt.Sprintf("Config decode error: %v", err))
	}

	validateConfig(&config, &result)
	result.Config = config
	return result
}

// validateConfig clamps numeric settings and parses the string ones
func validateConfig(config *Config, result *ConfigLoadResult) {
	if config.WindowWidth < minWidth {
		config.WindowWidth = defaultWidth
	}
	if config.WindowHeight < minHeight {
		config.WindowHeight = defaultHeight
	}

	if mode, err := ParseDisplayMode(config.DisplayMode); err != nil {
		result.warn("%v, using %s", err, NativeSize)
		config.DisplayMode = NativeSize.String()
		config.displayMode = NativeSize
	} else {
		config.displayMode = mode
	}

	if o, err := ParseOrientation(config.Orientation); err != nil {
		result.warn("%v, using %s", err, Horizontal)
		config.Orientation = Horizontal.String()
		config.orientation = Horizontal
	} else {
		config.orientation = o
	}

	// Validate window radius (0 keeps only the current image)
	if config.WindowRadius < 0 {
		config.WindowRadius = 0
	} else if config.WindowRadius > 16 {
		config.WindowRadius = 16
	}

	// Validate preload count (minimum 1, maximum 16)
	if config.PreloadCount < 1 {
		config.PreloadCount = 1
	} else if config.PreloadCount > 16 {
		config.PreloadCount = 16
	}

	if config.MaxTextureSize != 0 && config.MaxTextureSize < 256 {
		config.MaxTextureSize = 256
	}

	if config.ZoomFactor <= 0 || config.ZoomFactor >= 1 {
		config.ZoomFactor = defaultZoomFactor
	}
	if config.RotateStep <= 0 || config.RotateStep > 90 {
		config.RotateStep = defaultRotateStep
	}

	// Validate animation (1-60 frames, 1ms-2s)
	if config.AnimationFrames < 1 || config.AnimationFrames > 60 {
		config.AnimationFrames = defaultAnimationFrames
	}
	if config.AnimationDurationMs < 1 || config.AnimationDurationMs > 2000 {
		config.AnimationDurationMs = int(defaultAnimationDuration / time.Millisecond)
	}

	if config.SlideshowSeconds <= 0 {
		config.SlideshowSeconds = defaultSlideshowInterval.Seconds()
	}

	if config.SortMethod < SortNatural || config.SortMethod > SortEntryOrder {
		config.SortMethod = SortNatural
	}

	if bg, err := parseBackgroundColor(config.BackgroundColor); err != nil {
		result.warn("%v, using %s", err, defaultBackgroundColor)
		config.BackgroundColor = defaultBackgroundColor
		config.background, _ = parseBackgroundColor(defaultBackgroundColor)
	} else {
		config.background = bg
	}

	// Validate font size (minimum 12px for readability)
	if config.FontSize < 12.0 {
		config.FontSize = 24.0
	}

	defaultMouse := GetDefaultMouseSettings()
	if config.Mouse.WheelSensitivity <= 0 {
		config.Mouse.WheelSensitivity = defaultMouse.WheelSensitivity
	}
	if config.Mouse.DoubleClickTime <= 0 {
		config.Mouse.DoubleClickTime = defaultMouse.DoubleClickTime
	}
	if config.Mouse.DragThreshold < 0 {
		config.Mouse.DragThreshold = defaultMouse.DragThreshold
	}
	if config.Mouse.DragSensitivity <= 0 {
		config.Mouse.DragSensitivity = defaultMouse.DragSensitivity
	}

	config.Keybindings = mergeBindings(config.Keybindings, GetDefaultKeybindings())
	if err := validateKeybindings(config.Keybindings); err != nil {
		result.warn("Keybinding errors, using defaults: %v", err)
		config.Keybindings = GetDefaultKeybindings()
	}

	config.Mousebindings = mergeBindings(config.Mousebindings, GetDefaultMousebindings())
	if err := validateMousebindings(config.Mousebindings); err != nil {
		result.warn("Mouse binding errors, using defaults: %v", err)
		config.Mousebindings = GetDefaultMousebindings()
	}
}

// mergeBindings fills actions missing from configured with their defaults
func mergeBindings(configured, defaults map[string][]string) map[string][]string {
	if configured == nil {
		return defaults
	}
	for action, inputs := range defaults {
		if _, exists := configured[action]; !exists {
			configured[action] = inputs
		}
	}
	return configured
}

// parseBackgroundColor accepts #rgb or #rrggbb
func parseBackgroundColor(s string) (color.RGBA, error) {
	s = strings.TrimSpace(s)
	if len(s) == 4 && s[0] == '#' {
		s = string([]byte{'#', s[1], s[1], s[2], s[2], s[3], s[3]})
	}
	c, err := colorful.Hex(s)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid background color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 0xff}, nil
}

// getSortMethodName returns the human-readable name of a sort method
func getSortMethodName(sortMethod int) string {
	return GetSortStrategy(sortMethod).Name()
}
