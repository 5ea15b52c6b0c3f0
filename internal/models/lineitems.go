package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ProjectType is the category of a priced project. It selects the line item
// shape and the cost formula.
type ProjectType string

// Project types.
const (
	ProjectTypeAIChatbot         ProjectType = "ai_chatbot"
	ProjectTypePSGPackageA       ProjectType = "psg_package_a"
	ProjectTypePSGPackageB       ProjectType = "psg_package_b"
	ProjectTypePSGPackageC       ProjectType = "psg_package_c"
	ProjectTypeEcommerce         ProjectType = "ecommerce"
	ProjectTypeDigitalMarketing  ProjectType = "digital_marketing"
	ProjectTypeGraphicDesigns    ProjectType = "graphic_designs"
	ProjectTypeCorporateWebsites ProjectType = "corporate_websites"
	ProjectTypeCustomSolutions   ProjectType = "custom_solutions"
)

// ProjectTypes lists every project type in display order.
var ProjectTypes = []ProjectType{
	ProjectTypeAIChatbot,
	ProjectTypePSGPackageA,
	ProjectTypePSGPackageB,
	ProjectTypePSGPackageC,
	ProjectTypeEcommerce,
	ProjectTypeDigitalMarketing,
	ProjectTypeGraphicDesigns,
	ProjectTypeCorporateWebsites,
	ProjectTypeCustomSolutions,
}

// packageRates maps flat-priced project types to their rate item description.
var packageRates = map[ProjectType]string{
	ProjectTypeAIChatbot:   "AI Chatbot",
	ProjectTypePSGPackageA: "PSG Package A",
	ProjectTypePSGPackageB: "PSG Package B",
	ProjectTypePSGPackageC: "PSG Package C",
	ProjectTypeEcommerce:   "Ecommerce",
}

// PackageRate returns the rate item description of a flat-priced project type.
func (p ProjectType) PackageRate() (string, bool) {
	name, ok := packageRates[p]
	return name, ok
}

// Shape returns the line item shape a project type expects, or "" if unknown.
func (p ProjectType) Shape() LineItemsShape {
	switch p {
	case ProjectTypeAIChatbot, ProjectTypePSGPackageA, ProjectTypePSGPackageB,
		ProjectTypePSGPackageC, ProjectTypeEcommerce:
		return ShapePackage
	case ProjectTypeCorporateWebsites:
		return ShapeCorporateWebsite
	case ProjectTypeDigitalMarketing, ProjectTypeGraphicDesigns:
		return ShapeDesign
	case ProjectTypeCustomSolutions:
		return ShapeCustomSolution
	default:
		return ""
	}
}

// Valid reports whether p is a known project type.
func (p ProjectType) Valid() bool {
	return p.Shape() != ""
}

// NewLineItems returns an empty line item value of the shape p expects.
func (p ProjectType) NewLineItems() (LineItems, error) {
	switch p.Shape() {
	case ShapePackage:
		return &PackageItems{}, nil
	case ShapeCorporateWebsite:
		return &CorporateWebsiteItems{}, nil
	case ShapeDesign:
		return &DesignItems{}, nil
	case ShapeCustomSolution:
		return &CustomSolutionItems{}, nil
	default:
		return nil, fmt.Errorf("unknown project type %q", p)
	}
}

// ParseProjectType normalizes a project type name.
func ParseProjectType(s string) (ProjectType, error) {
	p := ProjectType(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("unknown project type %q", s)
	}
	return p, nil
}

// LineItemsShape names a LineItems variant.
type LineItemsShape string

// Line item shapes.
const (
	ShapePackage          LineItemsShape = "package"
	ShapeCorporateWebsite LineItemsShape = "corporate_website"
	ShapeDesign           LineItemsShape = "design"
	ShapeCustomSolution   LineItemsShape = "custom_solution"
)

// LineItems is the user-entered input of one project type. The concrete
// types below are the only implementations.
type LineItems interface {
	Shape() LineItemsShape
	CloneItems() LineItems
}

// AddOnKind separates add-ons built in-house from bought-in ones.
type AddOnKind string

// Add-on kinds.
const (
	AddOnInternal AddOnKind = "internal"
	AddOnExternal AddOnKind = "external"
)

// AddOn is an optional feature. Internal add-ons are priced by hours,
// external ones by a flat price.
type AddOn struct {
	Key              string          `json:"key,omitempty"`
	Description      string          `json:"description"`
	Kind             AddOnKind       `json:"kind"`
	DesignHours      decimal.Decimal `json:"designHours"`
	ProgrammingHours decimal.Decimal `json:"programmingHours"`
	Price            decimal.Decimal `json:"price"`
}

// HourEntry is a described piece of work measured in man hours.
type HourEntry struct {
	Key         string          `json:"key,omitempty"`
	Description string          `json:"description"`
	ManHours    decimal.Decimal `json:"manHours"`
}

// ThirdPartyCost is a bought-in cost passed through at face value.
type ThirdPartyCost struct {
	Key         string          `json:"key,omitempty"`
	Description string          `json:"description"`
	Cost        decimal.Decimal `json:"cost"`
}

// PackageItems is the input of a flat-priced package. It carries no quantities.
type PackageItems struct {
	Notes string `json:"notes,omitempty"`
}

// Shape implements LineItems.
func (*PackageItems) Shape() LineItemsShape { return ShapePackage }

// CloneItems implements LineItems.
func (p *PackageItems) CloneItems() LineItems {
	if p == nil {
		return &PackageItems{}
	}
	c := *p
	return &c
}

// CorporateWebsiteItems is the input of a corporate website project.
type CorporateWebsiteItems struct {
	UniquePages     decimal.Decimal  `json:"uniquePages"`
	RepetitivePages decimal.Decimal  `json:"repetitivePages"`
	ShortPages      decimal.Decimal  `json:"shortPages"`
	AddOns          []AddOn          `json:"addOns"`
	ThirdPartyCosts []ThirdPartyCost `json:"thirdPartyCosts"`
	Maintenance     []HourEntry      `json:"maintenance"`
}

// Shape implements LineItems.
func (*CorporateWebsiteItems) Shape() LineItemsShape { return ShapeCorporateWebsite }

// CloneItems implements LineItems.
func (c *CorporateWebsiteItems) CloneItems() LineItems {
	if c == nil {
		return &CorporateWebsiteItems{}
	}
	out := *c
	out.AddOns = append([]AddOn(nil), c.AddOns...)
	out.ThirdPartyCosts = append([]ThirdPartyCost(nil), c.ThirdPartyCosts...)
	out.Maintenance = append([]HourEntry(nil), c.Maintenance...)
	return &out
}

// DesignItems is the input of digital marketing and graphic design projects.
type DesignItems struct {
	Items []HourEntry `json:"items"`
}

// Shape implements LineItems.
func (*DesignItems) Shape() LineItemsShape { return ShapeDesign }

// CloneItems implements LineItems.
func (d *DesignItems) CloneItems() LineItems {
	if d == nil {
		return &DesignItems{}
	}
	return &DesignItems{Items: append([]HourEntry(nil), d.Items...)}
}

// CustomSolutionItems is the input of a custom software project.
type CustomSolutionItems struct {
	Modules         []HourEntry      `json:"modules"`
	AddOns          []AddOn          `json:"addOns"`
	ThirdPartyCosts []ThirdPartyCost `json:"thirdPartyCosts"`
	APIIntegrations []HourEntry      `json:"apiIntegrations"`
	Maintenance     []HourEntry      `json:"maintenance"`
}

// Shape implements LineItems.
func (*CustomSolutionItems) Shape() LineItemsShape { return ShapeCustomSolution }

// CloneItems implements LineItems.
func (c *CustomSolutionItems) CloneItems() LineItems {
	if c == nil {
		return &CustomSolutionItems{}
	}
	out := *c
	out.Modules = append([]HourEntry(nil), c.Modules...)
	out.AddOns = append([]AddOn(nil), c.AddOns...)
	out.ThirdPartyCosts = append([]ThirdPartyCost(nil), c.ThirdPartyCosts...)
	out.APIIntegrations = append([]HourEntry(nil), c.APIIntegrations...)
	out.Maintenance = append([]HourEntry(nil), c.Maintenance...)
	return &out
}

// CloneLineItems copies items, tolerating nil.
func CloneLineItems(items LineItems) LineItems {
	if items == nil {
		return nil
	}
	return items.CloneItems()
}

// DecodeLineItems decodes raw JSON into the line item shape of project type p.
// Empty or null input yields the zero value of that shape.
func DecodeLineItems(p ProjectType, raw []byte) (LineItems, error) {
	items, err := p.NewLineItems()
	if err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return items, nil
	}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if err := dec.Decode(items); err != nil {
		return nil, fmt.Errorf("failed to decode %s line items: %w", p, err)
	}
	return items, nil
}

// QuoteInput is a project type together with its line items. Its JSON form is
// {"projectType": "...", "lineItems": {...}}.
type QuoteInput struct {
	ProjectType ProjectType
	LineItems   LineItems
}

type quoteInputJSON struct {
	ProjectType ProjectType     `json:"projectType"`
	LineItems   json.RawMessage `json:"lineItems,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (q QuoteInput) MarshalJSON() ([]byte, error) {
	out := quoteInputJSON{ProjectType: q.ProjectType}
	if q.LineItems != nil {
		raw, err := json.Marshal(q.LineItems)
		if err != nil {
			return nil, err
		}
		out.LineItems = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler.
func (q *QuoteInput) UnmarshalJSON(data []byte) error {
	var in quoteInputJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	pt, err := ParseProjectType(string(in.ProjectType))
	if err != nil {
		return err
	}
	items, err := DecodeLineItems(pt, in.LineItems)
	if err != nil {
		return err
	}
	q.ProjectType = pt
	q.LineItems = items
	return nil
}
