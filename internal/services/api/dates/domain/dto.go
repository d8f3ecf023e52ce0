// Package domain holds DTOs for dates http and service contracts
package domain

// References are RFC3339, timezones are IANA names, a missing timezone means UTC

// PointDTO is one bound of an interval
type PointDTO struct {
	Time  string `json:"time" validate:"required,datetime=2006-01-02T15:04:05Z07:00" example:"2025-10-07T18:00:00+02:00"`
	Grain string `json:"grain" validate:"required,grain" example:"hour"`
}

// ValueDTO is the wire form of a recognized value
// instants use Time and Grain, intervals From and To, durations Seconds,
// simple dimensions Number or Text with an optional Unit
type ValueDTO struct {
	Kind    string    `json:"kind" validate:"required,min=1,max=32" example:"instant"`
	Time    string    `json:"time,omitempty" validate:"required_if=Kind instant,omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-10-07T00:00:00+02:00"`
	Grain   string    `json:"grain,omitempty" validate:"required_if=Kind instant,omitempty,grain" example:"day"`
	From    *PointDTO `json:"from,omitempty" validate:"required_if=Kind interval,omitempty"`
	To      *PointDTO `json:"to,omitempty" validate:"required_if=Kind interval,omitempty"`
	Seconds float64   `json:"seconds,omitempty" example:"5400"`
	Number  *float64  `json:"number,omitempty" example:"3"`
	Text    string    `json:"text,omitempty" example:"jo@example.org"`
	Unit    string    `json:"unit,omitempty" example:"EUR"`
}

// DescriptorDTO is a recognized value with its source text
type DescriptorDTO struct {
	Content     string   `json:"content" validate:"max=2000" example:"vendredi"`
	Position    int      `json:"position" validate:"min=0" example:"0"`
	Probability float64  `json:"probability" validate:"min=0,max=1" example:"0.8"`
	Value       ValueDTO `json:"value"`
	Initial     bool     `json:"initial,omitempty" example:"false"`
}

// FragmentDTO is a span of the parsed text
type FragmentDTO struct {
	Start int      `json:"start" example:"0"`
	End   int      `json:"end" example:"6"`
	Text  string   `json:"text" example:"demain"`
	Dim   string   `json:"dim" example:"time"`
	Value ValueDTO `json:"value"`
}

// ParseInput asks for every fragment of one dimension
type ParseInput struct {
	Language  string `json:"language" validate:"required,bcp47_language_tag" example:"fr"`
	Text      string `json:"text" validate:"required,max=2000" example:"demain en soirée"`
	Reference string `json:"reference,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-10-06T09:00:00+02:00"`
	Timezone  string `json:"timezone,omitempty" validate:"omitempty,timezone" example:"Europe/Paris"`
	Dimension string `json:"dimension,omitempty" validate:"omitempty,dimension" example:"time"`
}

// RecognizeInput asks for descriptors of several dimensions in a whole utterance
type RecognizeInput struct {
	Language   string   `json:"language" validate:"required,bcp47_language_tag" example:"fr"`
	Text       string   `json:"text" validate:"required,max=2000" example:"vendredi pour 2 personnes"`
	Reference  string   `json:"reference,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-10-06T09:00:00+02:00"`
	Timezone   string   `json:"timezone,omitempty" validate:"omitempty,timezone" example:"Europe/Paris"`
	Dimensions []string `json:"dimensions,omitempty" validate:"omitempty,max=11,dive,dimension" example:"time,number"`
}

// EvaluateInput asks for a single value of one dimension
type EvaluateInput struct {
	Language  string `json:"language" validate:"required,bcp47_language_tag" example:"fr"`
	Text      string `json:"text" validate:"required,max=2000" example:"demain"`
	Reference string `json:"reference,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-10-06T09:00:00+02:00"`
	Timezone  string `json:"timezone,omitempty" validate:"omitempty,timezone" example:"Europe/Paris"`
	Dimension string `json:"dimension" validate:"required,dimension" example:"time"`
}

// EvaluateOutput is the evaluation of one text
type EvaluateOutput struct {
	Evaluated bool      `json:"evaluated" example:"true"`
	Value     *ValueDTO `json:"value,omitempty"`
	Score     float64   `json:"score" example:"1"`
}

// MergeInput carries the previous turn value, flagged initial, and the new descriptors
type MergeInput struct {
	EntityType string          `json:"entity_type" validate:"required,max=128" example:"duckling:datetime"`
	Language   string          `json:"language" validate:"required,bcp47_language_tag" example:"fr"`
	Reference  string          `json:"reference,omitempty" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00" example:"2025-10-06T09:00:00+02:00"`
	Timezone   string          `json:"timezone,omitempty" validate:"omitempty,timezone" example:"Europe/Paris"`
	Values     []DescriptorDTO `json:"values" validate:"max=64,dive"`
}

// MergeOutput is the merge result and the rule that produced it
type MergeOutput struct {
	ID     string         `json:"id" example:"6f1c9d1e-4c57-4d2b-9a39-1f0d3c7c9a10"`
	Merged bool           `json:"merged" example:"true"`
	Value  *DescriptorDTO `json:"value,omitempty"`
	Branch string         `json:"branch" example:"day_of_week"`
	Intent string         `json:"intent,omitempty" example:"substitute_weekday"`
	Error  string         `json:"error,omitempty" example:"day 31 out of range for February 2026"`
}

// BatchInput merges independent requests in one call
type BatchInput struct {
	Items []MergeInput `json:"items" validate:"required,min=1,max=500,dive"`
}

// BatchOutput lists results in input order
type BatchOutput struct {
	Results []MergeOutput `json:"results"`
}

// LogRow is one audited merge
type LogRow struct {
	ID         string `json:"id" example:"6f1c9d1e-4c57-4d2b-9a39-1f0d3c7c9a10"`
	CreatedAt  string `json:"created_at" example:"2025-10-06T07:00:01Z"`
	EntityType string `json:"entity_type" example:"duckling:datetime"`
	Language   string `json:"language" example:"fr"`
	Reference  string `json:"reference" example:"2025-10-06T07:00:00Z"`
	Branch     string `json:"branch" example:"day_of_week"`
	Intent     string `json:"intent" example:"substitute_weekday"`
	Content    string `json:"content" example:"vendredi"`
	Value      string `json:"value" example:"2025-10-10T00:00:00+02:00/day"`
	Merged     bool   `json:"merged" example:"true"`
	Error      string `json:"error,omitempty"`
}

// BranchRow counts merges per day and branch
type BranchRow struct {
	Day    string `json:"day" example:"2025-10-06"`
	Branch string `json:"branch" example:"additive"`
	Merges uint64 `json:"merges" example:"42"`
}

// EngineInfo describes the loaded locale rules
type EngineInfo struct {
	RulesVersion int            `json:"rules_version" example:"1"`
	Refine       bool           `json:"refine" example:"false"`
	Locales      []EngineLocale `json:"locales"`
}

// EngineLocale counts rules per intent for one locale
type EngineLocale struct {
	Locale string         `json:"locale" example:"fr"`
	Rules  map[string]int `json:"rules"`
}
