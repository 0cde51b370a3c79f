package parser

import (
	"fmt"
	"regexp"
	"strings"

	"packslip/internal/domain"
	"packslip/internal/layout"
)

// Built-in platforms.
const (
	PlatformAmazon   domain.Platform = "amazon"
	PlatformFlipkart domain.Platform = "flipkart"
	PlatformMeesho   domain.Platform = "meesho"
)

// Profile describes how one marketplace lays out its shipment documents.
type Profile struct {
	Platform       domain.Platform      `yaml:"platform" json:"platform"`
	Format         Format               `yaml:"format" json:"format"`
	DetectKeywords []string             `yaml:"detect_keywords" json:"detect_keywords"`
	HeaderPhrases  []string             `yaml:"header_phrases" json:"header_phrases"`
	StopPhrases    []string             `yaml:"stop_phrases" json:"stop_phrases,omitempty"`
	Columns        []layout.ColumnGroup `yaml:"columns" json:"columns"`
	Separator      string               `yaml:"separator" json:"separator,omitempty"`
	// OrderIDPattern is matched against page lines; its first capture group
	// is the order id.
	OrderIDPattern string `yaml:"order_id_pattern" json:"order_id_pattern,omitempty"`
	// OrderIDFromColumn takes the order id from the identifier_secondary cell
	// when it is present.
	OrderIDFromColumn bool `yaml:"order_id_from_column" json:"order_id_from_column"`
	// DisplaySKUFallback shows the marketplace identifier where a canonical
	// SKU is missing. It never counts as a resolution.
	DisplaySKUFallback bool `yaml:"display_sku_fallback" json:"display_sku_fallback"`

	orderID *regexp.Regexp
}

// Validate checks the profile and compiles its order id pattern.
func (p *Profile) Validate() error {
	if p.Platform == "" {
		return fmt.Errorf("profile: platform is required")
	}
	if _, err := ForFormat(p.Format); err != nil {
		return fmt.Errorf("profile %s: %w", p.Platform, err)
	}
	if len(p.HeaderPhrases) == 0 {
		return fmt.Errorf("profile %s: at least one header phrase is required", p.Platform)
	}
	for _, c := range p.Columns {
		if !domain.ValidColumnKeys[c.Key] {
			return fmt.Errorf("profile %s: unknown column key %q", p.Platform, c.Key)
		}
	}
	p.orderID = nil
	if p.OrderIDPattern != "" {
		re, err := regexp.Compile(p.OrderIDPattern)
		if err != nil {
			return fmt.Errorf("profile %s: order id pattern: %w", p.Platform, err)
		}
		if re.NumSubexp() < 1 {
			return fmt.Errorf("profile %s: order id pattern needs a capture group", p.Platform)
		}
		p.orderID = re
	}
	return nil
}

// FindOrderID returns the first order id in text, or "".
func (p *Profile) FindOrderID(text string) string {
	if p.orderID == nil {
		return ""
	}
	m := p.orderID.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// Profiles is an ordered registry of platform profiles.
type Profiles struct {
	order      []domain.Platform
	byPlatform map[domain.Platform]*Profile
}

// NewProfiles validates and registers profiles. A later profile for the same
// platform replaces the earlier one in place.
func NewProfiles(list ...*Profile) (*Profiles, error) {
	ps := &Profiles{byPlatform: make(map[domain.Platform]*Profile)}
	for _, p := range list {
		if err := ps.put(p); err != nil {
			return nil, err
		}
	}
	return ps, nil
}

func (ps *Profiles) put(p *Profile) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if _, exists := ps.byPlatform[p.Platform]; !exists {
		ps.order = append(ps.order, p.Platform)
	}
	ps.byPlatform[p.Platform] = p
	return nil
}

// Get returns the profile of a platform.
func (ps *Profiles) Get(platform domain.Platform) (*Profile, error) {
	p, ok := ps.byPlatform[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownPlatform, platform)
	}
	return p, nil
}

// Detect returns the first profile, in registration order, with a detection
// keyword contained in the lowercased text.
func (ps *Profiles) Detect(rawText string) (*Profile, bool) {
	text := strings.ToLower(rawText)
	for _, name := range ps.order {
		p := ps.byPlatform[name]
		for _, kw := range p.DetectKeywords {
			if kw != "" && strings.Contains(text, strings.ToLower(kw)) {
				return p, true
			}
		}
	}
	return nil, false
}

// All returns the profiles in registration order.
func (ps *Profiles) All() []*Profile {
	out := make([]*Profile, 0, len(ps.order))
	for _, name := range ps.order {
		out = append(out, ps.byPlatform[name])
	}
	return out
}

func builtinProfiles() []*Profile {
	return []*Profile{
		{
			Platform:       PlatformAmazon,
			Format:         FormatPositionalBand,
			DetectKeywords: []string{"amazon.in", "amazon seller services", "amazon"},
			HeaderPhrases:  []string{"description", "qty"},
			StopPhrases:    []string{"grand total", "subtotal"},
			Columns: []layout.ColumnGroup{
				{Key: domain.ColumnIdentifierPrimary, Keywords: []string{"sku", "asin"}},
				{Key: domain.ColumnDescription, Keywords: []string{"description", "product", "item"}},
				{Key: domain.ColumnQuantity, Keywords: []string{"qty", "quantity"}},
			},
			OrderIDPattern: `(?i)order\s*(?:id|number|no\.?|#)\s*[:#]?\s*(\d{3}-\d{7}-\d{7})`,
		},
		{
			Platform:       PlatformFlipkart,
			Format:         FormatPositionalBand,
			DetectKeywords: []string{"flipkart"},
			HeaderPhrases:  []string{"sku id", "qty"},
			StopPhrases:    []string{"total qty", "grand total"},
			Columns: []layout.ColumnGroup{
				{Key: domain.ColumnIdentifierPrimary, Keywords: []string{"sku id", "sku"}},
				{Key: domain.ColumnDescription, Keywords: []string{"description", "product", "title"}},
				{Key: domain.ColumnQuantity, Keywords: []string{"qty", "quantity"}},
			},
			OrderIDPattern:     `(?i)order\s*(?:id|no\.?)\s*[:#]?\s*(OD\d{6,})`,
			DisplaySKUFallback: true,
		},
		{
			Platform:       PlatformMeesho,
			Format:         FormatDelimitedTable,
			DetectKeywords: []string{"meesho"},
			HeaderPhrases:  []string{"sku"},
			StopPhrases:    []string{"total"},
			Separator:      "|",
			Columns: []layout.ColumnGroup{
				{Key: domain.ColumnIdentifierPrimary, Keywords: []string{"sku"}},
				{Key: domain.ColumnIdentifierSecondary, Keywords: []string{"order no", "order id"}},
				{Key: domain.ColumnDescription, Keywords: []string{"product", "description", "size"}},
				{Key: domain.ColumnQuantity, Keywords: []string{"qty", "quantity"}},
			},
			OrderIDPattern:    `(?i)order\s*(?:no\.?|id)\s*[:#]?\s*(\d{6,})`,
			OrderIDFromColumn: true,
		},
	}
}

// DefaultProfiles returns the built-in marketplace profiles.
func DefaultProfiles() *Profiles {
	ps, err := NewProfiles(builtinProfiles()...)
	if err != nil {
		panic(err)
	}
	return ps
}
