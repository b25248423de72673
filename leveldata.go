package sinerider

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LevelDatum is the declarative description of a level. Every collection
// and optional section may be absent; absence creates no sub-entity.
type LevelDatum struct {
	Name              string `json:"name" yaml:"name"`
	DefaultExpression string `json:"defaultExpression" yaml:"defaultExpression"`
	Hint              string `json:"hint,omitempty" yaml:"hint,omitempty"`
	OpenMusic         string `json:"openMusic,omitempty" yaml:"openMusic,omitempty"`
	RunMusic          string `json:"runMusic,omitempty" yaml:"runMusic,omitempty"`
	FlashMathField    bool   `json:"flashMathField,omitempty" yaml:"flashMathField,omitempty"`
	FlashRunButton    bool   `json:"flashRunButton,omitempty" yaml:"flashRunButton,omitempty"`

	Colors *ColorsDatum `json:"colors,omitempty" yaml:"colors,omitempty"`
	Camera CameraDatum  `json:"camera" yaml:"camera"`

	Sky    *SkyDatum    `json:"sky,omitempty" yaml:"sky,omitempty"`
	Snow   *SnowDatum   `json:"snow,omitempty" yaml:"snow,omitempty"`
	Clouds *CloudsDatum `json:"clouds,omitempty" yaml:"clouds,omitempty"`
	Slider *SliderDatum `json:"slider,omitempty" yaml:"slider,omitempty"`

	Sounds      []SoundDatum      `json:"sounds,omitempty" yaml:"sounds,omitempty"`
	Sprites     []SpriteDatum     `json:"sprites,omitempty" yaml:"sprites,omitempty"`
	Walkers     []WalkerDatum     `json:"walkers,omitempty" yaml:"walkers,omitempty"`
	Sledders    []SledderDatum    `json:"sledders,omitempty" yaml:"sledders,omitempty"`
	Goals       []GoalDatum       `json:"goals,omitempty" yaml:"goals,omitempty"`
	Texts       []TextDatum       `json:"texts,omitempty" yaml:"texts,omitempty"`
	Directors   []DirectorDatum   `json:"directors,omitempty" yaml:"directors,omitempty"`
	TextBubbles []TextBubbleDatum `json:"textBubbles,omitempty" yaml:"textBubbles,omitempty"`
}

// ColorsDatum is a level colour theme.
type ColorsDatum struct {
	Sky SkyColors `json:"sky,omitempty" yaml:"sky,omitempty"`
}

// ColorStop is one stop of a vertical gradient; Offset runs 0 (top) to 1.
type ColorStop struct {
	Offset float64
	Color  string
}

// SkyColors is either a single colour or a list of [offset, colour] stops.
type SkyColors []ColorStop

// UnmarshalYAML accepts "#rrggbb" or [[0, "#rrggbb"], [1, "#rrggbb"]].
func (s *SkyColors) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		*s = SkyColors{{Offset: 0, Color: node.Value}}
		return nil
	}
	var stops [][2]string
	if err := node.Decode(&stops); err != nil {
		return fmt.Errorf("sky colors: %w", err)
	}
	return s.fromPairs(stops)
}

// UnmarshalJSON accepts the same shapes as UnmarshalYAML.
func (s *SkyColors) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = SkyColors{{Offset: 0, Color: single}}
		return nil
	}
	var raw [][2]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("sky colors: %w", err)
	}
	stops := make([][2]string, len(raw))
	for i, pair := range raw {
		stops[i][0] = strings.Trim(string(pair[0]), `"`)
		if err := json.Unmarshal(pair[1], &stops[i][1]); err != nil {
			return fmt.Errorf("sky colors[%d]: %w", i, err)
		}
	}
	return s.fromPairs(stops)
}

func (s *SkyColors) fromPairs(pairs [][2]string) error {
	out := make(SkyColors, len(pairs))
	for i, p := range pairs {
		off, err := strconv.ParseFloat(p[0], 64)
		if err != nil {
			return fmt.Errorf("sky colors[%d] offset: %w", i, err)
		}
		out[i] = ColorStop{Offset: off, Color: p[1]}
	}
	*s = out
	return nil
}

// CameraDatum positions the level camera.
type CameraDatum struct {
	X   float64 `json:"x" yaml:"x"`
	Y   float64 `json:"y" yaml:"y"`
	FOV float64 `json:"fov,omitempty" yaml:"fov,omitempty"`
}

// SkyDatum adds a background image.
type SkyDatum struct {
	Asset  string  `json:"asset" yaml:"asset"`
	Margin float64 `json:"margin,omitempty" yaml:"margin,omitempty"`
}

// PointDatum is a 2D value in level files.
type PointDatum struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Vec2 converts the datum to a Vec2.
func (p PointDatum) Vec2() Vec2 { return Vec2{p.X, p.Y} }

// SnowDatum configures falling snow.
type SnowDatum struct {
	Density   float64    `json:"density" yaml:"density"`
	Velocity  PointDatum `json:"velocity" yaml:"velocity"`
	MaxHeight float64    `json:"maxHeight,omitempty" yaml:"maxHeight,omitempty"`
}

// CloudsDatum configures a drifting row of clouds.
type CloudsDatum struct {
	Velocity float64   `json:"velocity" yaml:"velocity"`
	Heights  []float64 `json:"heights" yaml:"heights"`
}

// SliderDatum configures the hint graph.
type SliderDatum struct {
	Expression string  `json:"expression" yaml:"expression"`
	Min        float64 `json:"min" yaml:"min"`
	Max        float64 `json:"max" yaml:"max"`
	Value      float64 `json:"value" yaml:"value"`
}

// SoundDatum places a positional sound. With a zero Domain the sound plays
// when the level is built; otherwise it plays the first time the player
// enters [Domain[0], Domain[1]] on the x axis.
type SoundDatum struct {
	Asset  string     `json:"asset" yaml:"asset"`
	Domain [2]float64 `json:"domain,omitempty" yaml:"domain,omitempty"`
	Volume float64    `json:"volume,omitempty" yaml:"volume,omitempty"`
	Loop   bool       `json:"loop,omitempty" yaml:"loop,omitempty"`
}

// SpriteDatum places a decorative image.
type SpriteDatum struct {
	Asset string  `json:"asset" yaml:"asset"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Size  float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Flip  bool    `json:"flip,omitempty" yaml:"flip,omitempty"`
	Front bool    `json:"front,omitempty" yaml:"front,omitempty"`
}

// SpeechDatum attaches a speech bubble to an actor.
type SpeechDatum struct {
	Content  string     `json:"content" yaml:"content"`
	Offset   PointDatum `json:"offset,omitempty" yaml:"offset,omitempty"`
	Domain   [2]float64 `json:"domain,omitempty" yaml:"domain,omitempty"`
	Duration float64    `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// LightDatum is a lantern carried by a walker.
type LightDatum struct {
	Radius    float64    `json:"radius" yaml:"radius"`
	Intensity float64    `json:"intensity,omitempty" yaml:"intensity,omitempty"`
	Color     string     `json:"color,omitempty" yaml:"color,omitempty"`
	Offset    PointDatum `json:"offset,omitempty" yaml:"offset,omitempty"`
}

// WalkerDatum places a walking character.
type WalkerDatum struct {
	Name      string        `json:"name,omitempty" yaml:"name,omitempty"`
	Asset     string        `json:"asset,omitempty" yaml:"asset,omitempty"`
	X         float64       `json:"x" yaml:"x"`
	Y         float64       `json:"y,omitempty" yaml:"y,omitempty"`
	Speed     float64       `json:"speed,omitempty" yaml:"speed,omitempty"`
	Range     [2]float64    `json:"range,omitempty" yaml:"range,omitempty"`
	Lantern   *LightDatum   `json:"lantern,omitempty" yaml:"lantern,omitempty"`
	Speech    []SpeechDatum `json:"speech,omitempty" yaml:"speech,omitempty"`
	Followers []WalkerDatum `json:"followers,omitempty" yaml:"followers,omitempty"`
}

// SledderDatum places a sledder on the curve.
type SledderDatum struct {
	Name   string        `json:"name,omitempty" yaml:"name,omitempty"`
	Asset  string        `json:"asset,omitempty" yaml:"asset,omitempty"`
	X      float64       `json:"x" yaml:"x"`
	Speech []SpeechDatum `json:"speech,omitempty" yaml:"speech,omitempty"`
}

// GoalDatum places a goal. Type defaults to "fixed".
type GoalDatum struct {
	Type      string  `json:"type,omitempty" yaml:"type,omitempty"`
	Order     string  `json:"order,omitempty" yaml:"order,omitempty"`
	X         float64 `json:"x" yaml:"x"`
	Y         float64 `json:"y,omitempty" yaml:"y,omitempty"`
	Size      float64 `json:"size,omitempty" yaml:"size,omitempty"`
	Shape     string  `json:"shape,omitempty" yaml:"shape,omitempty"`
	Width     float64 `json:"width,omitempty" yaml:"width,omitempty"`
	Thickness float64 `json:"thickness,omitempty" yaml:"thickness,omitempty"`
}

// TextDatum places world-space text.
type TextDatum struct {
	Value string  `json:"value" yaml:"value"`
	X     float64 `json:"x" yaml:"x"`
	Y     float64 `json:"y" yaml:"y"`
	Color string  `json:"color,omitempty" yaml:"color,omitempty"`
}

// WaypointDatum is one stop of a waypoint director.
type WaypointDatum struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	FOV      float64 `json:"fov,omitempty" yaml:"fov,omitempty"`
	Duration float64 `json:"duration,omitempty" yaml:"duration,omitempty"`
}

// DirectorDatum configures a camera director. Type defaults to "tracking".
type DirectorDatum struct {
	Type      string          `json:"type,omitempty" yaml:"type,omitempty"`
	Target    string          `json:"target,omitempty" yaml:"target,omitempty"`
	Lerp      float64         `json:"lerp,omitempty" yaml:"lerp,omitempty"`
	FOV       float64         `json:"fov,omitempty" yaml:"fov,omitempty"`
	Offset    PointDatum      `json:"offset,omitempty" yaml:"offset,omitempty"`
	Waypoints []WaypointDatum `json:"waypoints,omitempty" yaml:"waypoints,omitempty"`
}

// TextBubbleDatum is a screen-anchored hint bubble.
type TextBubbleDatum struct {
	Content string     `json:"content" yaml:"content"`
	Place   string     `json:"place,omitempty" yaml:"place,omitempty"`
	Domain  [2]float64 `json:"domain,omitempty" yaml:"domain,omitempty"`
}

// --- Loading ---

// LoadLevelJSON decodes and validates a level from JSON.
func LoadLevelJSON(r io.Reader) (*LevelDatum, error) {
	var d LevelDatum
	dec := json.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode level json: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadLevelYAML decodes and validates a level from YAML.
func LoadLevelYAML(r io.Reader) (*LevelDatum, error) {
	var d LevelDatum
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&d); err != nil {
		return nil, fmt.Errorf("decode level yaml: %w", err)
	}
	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// LoadLevelFile loads a level, choosing the decoder by file extension.
func LoadLevelFile(path string) (*LevelDatum, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open level: %w", err)
	}
	defer f.Close()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return LoadLevelJSON(f)
	case ".yaml", ".yml":
		return LoadLevelYAML(f)
	default:
		return nil, fmt.Errorf("load level %s: unsupported extension", path)
	}
}

// Validate checks every kind tag and colour against the registries. The
// first problem is returned as a *DatumError.
func (d *LevelDatum) Validate() error {
	for i, g := range d.Goals {
		if _, ok := lookupGoalKind(g.Type); !ok {
			return &DatumError{Collection: "goals", Index: i, Value: g.Type, Err: ErrUnknownKind}
		}
	}
	for i, dr := range d.Directors {
		if _, ok := lookupDirectorKind(dr.Type); !ok {
			return &DatumError{Collection: "directors", Index: i, Value: dr.Type, Err: ErrUnknownKind}
		}
	}
	if d.Colors != nil {
		for i, stop := range d.Colors.Sky {
			if _, err := ParseHexColor(stop.Color); err != nil {
				return &DatumError{Collection: "colors.sky", Index: i, Value: stop.Color, Err: err}
			}
		}
	}
	for i, t := range d.Texts {
		if t.Color == "" {
			continue
		}
		if _, err := ParseHexColor(t.Color); err != nil {
			return &DatumError{Collection: "texts", Index: i, Value: t.Color, Err: err}
		}
	}
	return nil
}

// IsConstantLake reports whether the datum describes the Constant Lake
// sunset level.
func (d *LevelDatum) IsConstantLake() bool {
	return d.Name == ConstantLakeName
}

// ParseHexColor parses "#rgb", "#rrggbb" or "#rrggbbaa".
func ParseHexColor(s string) (Color, error) {
	h := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return Color{}, fmt.Errorf("parse color %q: bad length", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return Color{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	return Color{
		R: float64(v>>24&0xff) / 255,
		G: float64(v>>16&0xff) / 255,
		B: float64(v>>8&0xff) / 255,
		A: float64(v&0xff) / 255,
	}, nil
}
