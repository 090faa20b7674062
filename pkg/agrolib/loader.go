package agrolib

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// Document is a parsed agromanagement definition, an ordered sequence of
// campaigns.
type Document struct {
	Campaigns []Campaign
}

type documentRoot struct {
	AgroManagement []map[string]*campaignBody `yaml:"AgroManagement"`
}

type campaignBody struct {
	CropCalendar *cropCalendarDef `yaml:"CropCalendar"`
	TimedEvents  []timedEventsDef `yaml:"TimedEvents"`
	StateEvents  []stateEventsDef `yaml:"StateEvents"`
}

type cropCalendarDef struct {
	CropID        string `yaml:"crop_id"`
	CropStartDate string `yaml:"crop_start_date"`
	CropStartType string `yaml:"crop_start_type"`
	CropEndDate   string `yaml:"crop_end_date"`
	CropEndType   string `yaml:"crop_end_type"`
	MaxDuration   int    `yaml:"max_duration"`
}

type timedEventsDef struct {
	EventSignal string                      `yaml:"event_signal"`
	Name        string                      `yaml:"name"`
	Comment     string                      `yaml:"comment"`
	EventsTable []map[string]map[string]any `yaml:"events_table"`
}

type stateEventsDef struct {
	EventSignal   string                      `yaml:"event_signal"`
	EventState    string                      `yaml:"event_state"`
	ZeroCondition string                      `yaml:"zero_condition"`
	Name          string                      `yaml:"name"`
	Comment       string                      `yaml:"comment"`
	EventsTable   []map[string]map[string]any `yaml:"events_table"`
}

// LoadDocument parses a YAML agromanagement document. The top-level
// AgroManagement key holds an ordered list of single-pair maps from a
// campaign start date to a campaign body; a null body is a fallow
// campaign. Structural problems surface as ValidationErrors.
func LoadDocument(data []byte) (*Document, error) {
	var root documentRoot
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, newValidationError("cannot parse agromanagement document: %v", err)
	}
	if len(root.AgroManagement) == 0 {
		return nil, newValidationError("agromanagement definition has no campaigns")
	}
	doc := &Document{Campaigns: make([]Campaign, 0, len(root.AgroManagement))}
	for _, pair := range root.AgroManagement {
		if len(pair) != 1 {
			return nil, newValidationError("every campaign entry must map exactly one start date to a campaign body")
		}
		for rawDay, body := range pair {
			c, err := parseCampaign(rawDay, body)
			if err != nil {
				return nil, err
			}
			doc.Campaigns = append(doc.Campaigns, *c)
		}
	}
	return doc, nil
}

// LoadDocumentFile reads and parses an agromanagement document from fs.
func LoadDocumentFile(fs afero.Fs, path string) (*Document, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read agromanagement document: %w", err)
	}
	return LoadDocument(data)
}

func parseCampaign(rawDay string, body *campaignBody) (*Campaign, error) {
	start, err := parseDay(rawDay, "campaign start")
	if err != nil {
		return nil, err
	}
	c := &Campaign{StartDate: start}
	if body == nil {
		return c, nil
	}
	if body.CropCalendar != nil {
		crop, err := body.CropCalendar.config()
		if err != nil {
			return nil, err
		}
		c.Crop = crop
	}
	for _, def := range body.TimedEvents {
		cfg, err := def.config()
		if err != nil {
			return nil, err
		}
		c.TimedEvents = append(c.TimedEvents, *cfg)
	}
	for _, def := range body.StateEvents {
		cfg, err := def.config()
		if err != nil {
			return nil, err
		}
		c.StateEvents = append(c.StateEvents, *cfg)
	}
	return c, nil
}

func (d *cropCalendarDef) config() (*CropConfig, error) {
	start, err := parseDay(d.CropStartDate, "crop start date")
	if err != nil {
		return nil, err
	}
	cfg := &CropConfig{
		CropID:      d.CropID,
		StartDate:   start,
		StartType:   d.CropStartType,
		EndType:     d.CropEndType,
		MaxDuration: d.MaxDuration,
	}
	// A null end date is only meaningful for maturity cycles; the
	// calendar's Validate rejects it for the other end types.
	if d.CropEndDate != "" {
		end, err := parseDay(d.CropEndDate, "crop end date")
		if err != nil {
			return nil, err
		}
		cfg.EndDate = end
	}
	return cfg, nil
}

func (d *timedEventsDef) config() (*TimedEventsConfig, error) {
	cfg := &TimedEventsConfig{
		EventSignal: d.EventSignal,
		Name:        d.Name,
		Comment:     d.Comment,
	}
	for _, entry := range d.EventsTable {
		for rawDay, params := range entry {
			day, err := parseDay(rawDay, "timed event day")
			if err != nil {
				return nil, err
			}
			cfg.Events = append(cfg.Events, TimedEvent{Day: day, Params: params})
		}
	}
	return cfg, nil
}

func (d *stateEventsDef) config() (*StateEventsConfig, error) {
	cfg := &StateEventsConfig{
		EventSignal:   d.EventSignal,
		EventState:    d.EventState,
		ZeroCondition: d.ZeroCondition,
		Name:          d.Name,
		Comment:       d.Comment,
	}
	for _, entry := range d.EventsTable {
		for rawThreshold, params := range entry {
			threshold, err := strconv.ParseFloat(rawThreshold, 64)
			if err != nil {
				return nil, newValidationError("state event threshold %q is not a number", rawThreshold)
			}
			cfg.Events = append(cfg.Events, StateEvent{Threshold: threshold, Params: params})
		}
	}
	return cfg, nil
}

func parseDay(raw, what string) (time.Time, error) {
	t, err := time.Parse(DayLayout, raw)
	if err != nil {
		return time.Time{}, newValidationError("%s %q is not a date (want YYYY-MM-DD)", what, raw)
	}
	return ToDay(t), nil
}
