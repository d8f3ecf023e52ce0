package duckling

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"
	"unicode/utf8"

	"datemerge/internal/core/grain"
	"datemerge/internal/core/temporal"
	"datemerge/internal/platform/logger"
)

// timestampLayout is how Duckling renders zoned instants
const timestampLayout = "2006-01-02T15:04:05.000-07:00"

// Simple dimensions decoded into Entity values
const (
	DimNumber        temporal.Dimension = "number"
	DimOrdinal       temporal.Dimension = "ordinal"
	DimDistance      temporal.Dimension = "distance"
	DimTemperature   temporal.Dimension = "temperature"
	DimVolume        temporal.Dimension = "volume"
	DimAmountOfMoney temporal.Dimension = "amount-of-money"
	DimURL           temporal.Dimension = "url"
	DimEmail         temporal.Dimension = "email"
	DimPhoneNumber   temporal.Dimension = "phone-number"
)

var simpleDims = map[temporal.Dimension]bool{
	DimNumber: true, DimOrdinal: true, DimDistance: true, DimTemperature: true, DimVolume: true,
	DimAmountOfMoney: true, DimURL: true, DimEmail: true, DimPhoneNumber: true,
}

// Supported reports whether dim can be decoded
func Supported(dim temporal.Dimension) bool {
	return dim == temporal.DimTime || dim == temporal.DimDuration || simpleDims[dim]
}

// Entry is one raw answer of the /parse endpoint, offsets count characters
type Entry struct {
	Body   string          `json:"body"`
	Start  int             `json:"start"`
	End    int             `json:"end"`
	Dim    string          `json:"dim"`
	Latent bool            `json:"latent"`
	Value  json.RawMessage `json:"value"`
}

type timePoint struct {
	Value string `json:"value"`
	Grain string `json:"grain"`
}

type timeValue struct {
	Type  string     `json:"type"`
	Value string     `json:"value"`
	Grain string     `json:"grain"`
	From  *timePoint `json:"from"`
	To    *timePoint `json:"to"`
}

type durationValue struct {
	Normalized struct {
		Value float64 `json:"value"`
		Unit  string  `json:"unit"`
	} `json:"normalized"`
}

type simpleValue struct {
	Value json.RawMessage `json:"value"`
	Unit  string          `json:"unit"`
}

// Entity is the scalar value of a simple dimension
type Entity struct {
	Dim    temporal.Dimension
	Number float64
	Text   string
	Unit   string
}

// Kind implements temporal.Value
func (e Entity) Kind() string { return string(e.Dim) }

func (e Entity) String() string {
	v := e.Text
	if v == "" {
		v = strconv.FormatFloat(e.Number, 'f', -1, 64)
	}
	if e.Unit != "" {
		return v + " " + e.Unit
	}
	return v
}

// decoder turns raw entries of one dimension into fragments of text
type decoder struct {
	text  string
	zone  *time.Location
	log   logger.Logger
	bytes []int
}

func newDecoder(text string, zone *time.Location, log logger.Logger) *decoder {
	// bytes[i] is the byte offset of the i-th character, the last slot is len(text)
	offs := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offs = append(offs, i)
	}
	offs = append(offs, len(text))
	return &decoder{text: text, zone: zone, log: log, bytes: offs}
}

// byteOffset maps a character offset to a byte offset, clamped to the text
func (d *decoder) byteOffset(ch int) int {
	if ch <= 0 {
		return 0
	}
	if ch >= len(d.bytes) {
		return len(d.text)
	}
	return d.bytes[ch]
}

func (d *decoder) decode(entries []Entry, dim temporal.Dimension) []temporal.Fragment {
	switch {
	case dim == temporal.DimTime:
		return d.times(entries)
	case dim == temporal.DimDuration:
		return d.durations(entries)
	case simpleDims[dim]:
		return d.simples(entries, dim)
	default:
		return nil
	}
}

func (d *decoder) times(entries []Entry) []temporal.Fragment {
	var out []temporal.Fragment
	for _, e := range entries {
		if e.Dim != string(temporal.DimTime) {
			continue
		}
		v, err := d.timeOf(e.Value)
		if err != nil {
			d.log.Warn().Err(err).Str("body", e.Body).Msg("skipping malformed time entry")
			continue
		}
		out = append(out, temporal.Fragment{
			Start: d.byteOffset(e.Start),
			End:   d.byteOffset(e.End),
			Value: v,
			Dim:   temporal.DimTime,
		})
	}
	return out
}

func (d *decoder) timeOf(raw json.RawMessage) (temporal.Value, error) {
	var tv timeValue
	if err := json.Unmarshal(raw, &tv); err != nil {
		return nil, fmt.Errorf("decode time value: %w", err)
	}
	if tv.Type != "interval" {
		return d.instant(timePoint{Value: tv.Value, Grain: tv.Grain})
	}

	switch {
	case tv.From != nil && tv.To != nil:
		from, err := d.instant(*tv.From)
		if err != nil {
			return nil, err
		}
		to, err := d.instant(*tv.To)
		if err != nil {
			return nil, err
		}
		return temporal.NewInterval(from, to)
	case tv.From != nil:
		return d.instant(*tv.From)
	case tv.To != nil:
		return d.instant(*tv.To)
	default:
		return nil, fmt.Errorf("interval without bounds")
	}
}

func (d *decoder) instant(p timePoint) (temporal.Instant, error) {
	g, err := grain.Parse(p.Grain)
	if err != nil {
		return temporal.Instant{}, err
	}
	t, err := time.Parse(timestampLayout, p.Value)
	if err != nil {
		if t, err = time.Parse(time.RFC3339Nano, p.Value); err != nil {
			return temporal.Instant{}, fmt.Errorf("timestamp %q: %w", p.Value, err)
		}
	}
	if d.zone != nil {
		t = t.In(d.zone)
	}
	return temporal.Instant{Time: t, Precision: g}, nil
}

// durations sums every duration entry into one fragment spanning all of them
func (d *decoder) durations(entries []Entry) []temporal.Fragment {
	var (
		total      time.Duration
		start, end = math.MaxInt, math.MinInt
		found      bool
	)
	for _, e := range entries {
		if e.Dim != string(temporal.DimDuration) {
			continue
		}
		var dv durationValue
		if err := json.Unmarshal(e.Value, &dv); err != nil {
			d.log.Warn().Err(err).Str("body", e.Body).Msg("skipping malformed duration entry")
			continue
		}
		if dv.Normalized.Unit != "second" {
			d.log.Warn().Str("unit", dv.Normalized.Unit).Str("body", e.Body).Msg("skipping duration with unknown unit")
			continue
		}
		total += time.Duration(dv.Normalized.Value * float64(time.Second))
		start = min(start, e.Start)
		end = max(end, e.End)
		found = true
	}
	if !found {
		return nil
	}
	return []temporal.Fragment{{
		Start: d.byteOffset(start),
		End:   d.byteOffset(end),
		Value: temporal.Duration{Length: total},
		Dim:   temporal.DimDuration,
	}}
}

func (d *decoder) simples(entries []Entry, dim temporal.Dimension) []temporal.Fragment {
	var out []temporal.Fragment
	for _, e := range entries {
		if e.Dim != string(dim) {
			continue
		}
		var sv simpleValue
		if err := json.Unmarshal(e.Value, &sv); err != nil {
			d.log.Warn().Err(err).Str("body", e.Body).Str("dim", e.Dim).Msg("skipping malformed entry")
			continue
		}
		ent := Entity{Dim: dim, Unit: sv.Unit}
		if err := json.Unmarshal(sv.Value, &ent.Number); err != nil {
			if err := json.Unmarshal(sv.Value, &ent.Text); err != nil {
				d.log.Warn().Str("body", e.Body).Str("dim", e.Dim).Msg("skipping entry without scalar value")
				continue
			}
		}
		out = append(out, temporal.Fragment{
			Start: d.byteOffset(e.Start),
			End:   d.byteOffset(e.End),
			Value: ent,
			Dim:   dim,
		})
	}
	return out
}
