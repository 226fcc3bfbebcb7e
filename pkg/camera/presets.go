package camera

import "sort"

// Preset names for common webcam modes
const (
	PresetDefault = "default"
	PresetVGA     = "vga"
	Preset720p    = "720p"
	Preset1080p   = "1080p"
	PresetLowBW   = "low_bandwidth"
)

// presets maps a preset name to the fields it overrides on DefaultConfig.
// Zero width and height keep the driver's native mode. VGA is the fastest
// size for the cascade; at 1080p detection gets noticeably slower.
var presets = map[string]struct {
	width, height, quality int
}{
	PresetDefault: {},
	PresetVGA:     {640, 480, 0},
	Preset720p:    {1280, 720, 0},
	Preset1080p:   {1920, 1080, 0},
	PresetLowBW:   {640, 480, 50},
}

// Presets returns all available preset configurations.
func Presets() map[string]Config {
	out := make(map[string]Config, len(presets))
	for name := range presets {
		out[name] = *GetPreset(name)
	}
	return out
}

// PresetNames returns the preset names, default first.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		if name != PresetDefault {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{PresetDefault}, names...)
}

// GetPreset returns a preset config by name, or nil if not found.
func GetPreset(name string) *Config {
	p, ok := presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	cfg.Width, cfg.Height = p.width, p.height
	if p.quality > 0 {
		cfg.Quality = p.quality
	}
	return &cfg
}
