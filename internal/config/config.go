package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config carries every tunable of the pipeline. The numeric thresholds and
// all literal exception lists are corpus-specific: the defaults below are
// tuned for the 1937 Maschinenindustrie register and are meant to be
// overridden from a YAML file for other document collections.
type Config struct {
	// MinDY0 is the minimal vertical gap (in baseline Y units) between two
	// lines that signals the start of a new directory entry.
	MinDY0 int `mapstructure:"min_dy0" yaml:"min_dy0"`

	// MaxDY0 is the maximal vertical gap under which two lines are still
	// treated as continuations when deciding column-seam and cross-page
	// merges. MaxDY0 < MinDY0: gaps in between are ordinary continuations,
	// neither merged nor split, which keeps the seam from oscillating.
	MaxDY0 int `mapstructure:"max_dy0" yaml:"max_dy0"`

	Segmenter Segmenter `mapstructure:"segmenter" yaml:"segmenter"`
	Extractor Extractor `mapstructure:"extractor" yaml:"extractor"`

	// Workers bounds the number of pages loaded and segmented concurrently.
	Workers int `mapstructure:"workers" yaml:"workers"`

	Serve Serve `mapstructure:"serve" yaml:"serve"`
}

// Replacement is a literal from/to substitution applied to line text.
type Replacement struct {
	From string `mapstructure:"from" yaml:"from"`
	To   string `mapstructure:"to" yaml:"to"`
}

// Segmenter holds the boundary-correction rule sets of the segmentation
// stage. All of them are literal-match lists specific to one book's
// typesetting and OCR artifacts.
type Segmenter struct {
	// ContinuationExceptions are lines that may open a page with a colon
	// and still start a real segment (overrides the page-top suppression).
	ContinuationExceptions []string `mapstructure:"continuation_exceptions" yaml:"continuation_exceptions"`

	// ForcedContinuations are lines that are never segment boundaries,
	// regardless of the measured vertical gap.
	ForcedContinuations []string `mapstructure:"forced_continuations" yaml:"forced_continuations"`

	// ColonArtifacts are OCR colon-glyph repairs applied to every line.
	ColonArtifacts []Replacement `mapstructure:"colon_artifacts" yaml:"colon_artifacts"`

	// ColonStripPhrases are phrases whose colon is an OCR artifact, not an
	// attribute delimiter; the colon is removed wherever they occur.
	ColonStripPhrases []string `mapstructure:"colon_strip_phrases" yaml:"colon_strip_phrases"`

	// SeamExceptions are right-column top lines that must not trigger the
	// column-seam merge.
	SeamExceptions []string `mapstructure:"seam_exceptions" yaml:"seam_exceptions"`

	// GarbageMarkers: if the last segment of a page contains one of these
	// tokens, the whole segment is a print artifact and is dropped.
	GarbageMarkers []string `mapstructure:"garbage_markers" yaml:"garbage_markers"`
}

// FallbackPolicy selects what happens when a segment contains no attribute
// line and no cross-reference marker.
type FallbackPolicy string

const (
	// FallbackUnclassified emits the full segment text under a synthetic
	// attribute so no text is lost.
	FallbackUnclassified FallbackPolicy = "unclassified"
	// FallbackNameOnly keeps the first line as the entity name and emits
	// no synthetic attribute.
	FallbackNameOnly FallbackPolicy = "name-only"
)

// Extractor holds the attribute-extraction rule sets.
type Extractor struct {
	// ExcludedKeys are pre-colon substrings that look like attribute keys
	// but are known OCR artifacts or mid-sentence colons in this corpus.
	ExcludedKeys []string `mapstructure:"excluded_keys" yaml:"excluded_keys"`

	// DeputyMarker marks continuation lines naming a deputy officer;
	// a key containing it (case-insensitively) is not an attribute key.
	DeputyMarker string `mapstructure:"deputy_marker" yaml:"deputy_marker"`

	// OwnerKey is the attribute key that, when it opens the very first
	// attribute line of a segment, belongs to the entity name instead:
	// the owner's name is printed directly in the heading line.
	OwnerKey string `mapstructure:"owner_key" yaml:"owner_key"`

	// Marker is the cross-reference word ("siehe") used by fallback
	// extraction for entries that only point at another entry.
	Marker string `mapstructure:"marker" yaml:"marker"`

	// MarkerFixes repair common OCR misreadings of Marker.
	MarkerFixes []Replacement `mapstructure:"marker_fixes" yaml:"marker_fixes"`

	// Fallback selects the no-marker fallback behavior.
	Fallback FallbackPolicy `mapstructure:"fallback" yaml:"fallback"`

	// UnclassifiedKey is the synthetic attribute key used by the
	// "unclassified" fallback.
	UnclassifiedKey string `mapstructure:"unclassified_key" yaml:"unclassified_key"`
}

// Serve configures the optional HTTP result server.
type Serve struct {
	Addr   string `mapstructure:"addr" yaml:"addr"`
	APIKey string `mapstructure:"api_key" yaml:"api_key"`
}

// Default returns the MI1937-tuned configuration.
func Default() Config {
	return Config{
		MinDY0:  86,
		MaxDY0:  59,
		Workers: 4,
		Segmenter: Segmenter{
			ContinuationExceptions: []string{
				"Eigene Vertretungen im Ausland: Kowno, Riga.",
			},
			ForcedContinuations: []string{
				"Zittau, Friedländerstr. 10/12.",
				"Schönebecker Str. 8.",
				"Staufen i. Breisgau.",
				"Augsburg, Im Sack G 273/74.",
				"München N 23, Soxhletstraße 1.",
				"Berlin S 42, Prinzenstr. 21.",
			},
			ColonArtifacts: []Replacement{
				{From: ":.", To: ": "},
				{From: ":-", To: ": "},
			},
			ColonStripPhrases: []string{
				"Simplex Vervielfältiger jetzt:",
				"Kratzenfabrik „Ankermarke:e",
				"Kratzenfabrik „Ankermarke: ",
			},
			SeamExceptions: []string{
				"Richard Weber & Co.,",
			},
			GarbageMarkers: []string{"vec."},
		},
		Extractor: Extractor{
			ExcludedKeys: []string{
				"von", "jetzt", "darunter", "an", "Inh.", "A. K.",
				"Speyer a. Rh.", "Abt. II", "firmiert", "Nürnberg",
				"Leipzig", "Rotterdam", "Webschützen", "rulagen",
				"aus Stahl", "& Co. A.-G.)", "A. Riedinger)",
				"Düsseldorf-Grafenberg", "Werk Siegmar",
				"Werk Gustavsburg", "Werk Nürnberg", "Werk Lampertsheim",
				"Betonwaren. (Spez.", "Street (Tel.",
			},
			DeputyMarker: "stellv.",
			OwnerKey:     "Inhaber",
			Marker:       "siehe",
			MarkerFixes: []Replacement{
				{From: "siche", To: "siehe"},
				{From: "sieh ", To: "siehe "},
				{From: "siene", To: "siehe"},
				{From: "siebe ", To: "siehe "},
				{From: "sjehe", To: "siehe"},
			},
			Fallback:        FallbackUnclassified,
			UnclassifiedKey: "unclassified",
		},
		Serve: Serve{
			Addr: ":8091",
		},
	}
}

// Load reads configuration from an optional YAML file and BLATT_* environment
// variables, layered over Default(). An empty path falls back to ./blatt.yaml
// when present.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("BLATT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
	} else {
		v.SetConfigName("blatt")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("min_dy0", cfg.MinDY0)
	v.SetDefault("max_dy0", cfg.MaxDY0)
	v.SetDefault("workers", cfg.Workers)
	v.SetDefault("serve.addr", cfg.Serve.Addr)
	v.SetDefault("extractor.deputy_marker", cfg.Extractor.DeputyMarker)
	v.SetDefault("extractor.owner_key", cfg.Extractor.OwnerKey)
	v.SetDefault("extractor.marker", cfg.Extractor.Marker)
	v.SetDefault("extractor.fallback", string(cfg.Extractor.Fallback))
	v.SetDefault("extractor.unclassified_key", cfg.Extractor.UnclassifiedKey)
}

// Validate checks threshold and policy consistency.
func (c Config) Validate() error {
	if c.MinDY0 <= 0 {
		return fmt.Errorf("min_dy0 must be positive, got %d", c.MinDY0)
	}
	if c.MaxDY0 <= 0 {
		return fmt.Errorf("max_dy0 must be positive, got %d", c.MaxDY0)
	}
	if c.MaxDY0 >= c.MinDY0 {
		return fmt.Errorf("max_dy0 (%d) must be below min_dy0 (%d)", c.MaxDY0, c.MinDY0)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	switch c.Extractor.Fallback {
	case FallbackUnclassified, FallbackNameOnly:
	default:
		return fmt.Errorf("unknown fallback policy %q", c.Extractor.Fallback)
	}
	if c.Extractor.Marker == "" {
		return fmt.Errorf("extractor.marker must not be empty")
	}
	return nil
}
