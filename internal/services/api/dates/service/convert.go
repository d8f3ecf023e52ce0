package service

import (
	"fmt"
	"time"

	"golang.org/x/text/language"

	"datemerge/internal/adapters/duckling"
	"datemerge/internal/core/grain"
	"datemerge/internal/core/temporal"
	perr "datemerge/internal/platform/errors"
	"datemerge/internal/services/api/dates/domain"
)

// langOf parses a BCP 47 tag
func langOf(s string) (language.Tag, error) {
	tag, err := language.Parse(s)
	if err != nil {
		return language.Und, perr.WithField(perr.InvalidArgf("invalid language %q", s), "language")
	}
	return tag, nil
}

// referenceOf resolves the request reference in the request zone
// an empty reference is now, an empty timezone keeps the offset of the reference or UTC
func referenceOf(reference, tz string, now time.Time) (time.Time, error) {
	var zone *time.Location
	if tz != "" {
		loc, err := time.LoadLocation(tz)
		if err != nil {
			return time.Time{}, perr.WithField(perr.InvalidArgf("unknown timezone %q", tz), "timezone")
		}
		zone = loc
	}
	ref := now.UTC()
	if reference != "" {
		t, err := time.Parse(time.RFC3339, reference)
		if err != nil {
			return time.Time{}, perr.WithField(perr.InvalidArgf("invalid reference %q", reference), "reference")
		}
		ref = t
	}
	if zone != nil {
		ref = ref.In(zone)
	}
	return ref, nil
}

func toPoint(p domain.PointDTO) (temporal.Instant, error) {
	g, err := grain.Parse(p.Grain)
	if err != nil {
		return temporal.Instant{}, perr.WithField(perr.InvalidArgf("%v", err), "grain")
	}
	t, err := time.Parse(time.RFC3339, p.Time)
	if err != nil {
		return temporal.Instant{}, perr.WithField(perr.InvalidArgf("invalid time %q", p.Time), "time")
	}
	return temporal.Instant{Time: t, Precision: g}, nil
}

// toValue decodes a wire value and projects its instants into zone
func toValue(v domain.ValueDTO, zone *time.Location) (temporal.Value, error) {
	val, err := decodeValue(v)
	if err != nil {
		return nil, err
	}
	return temporal.WithZone(val, zone), nil
}

func decodeValue(v domain.ValueDTO) (temporal.Value, error) {
	switch v.Kind {
	case "instant":
		return toPoint(domain.PointDTO{Time: v.Time, Grain: v.Grain})
	case "interval":
		if v.From == nil || v.To == nil {
			return nil, perr.InvalidArgf("interval needs from and to")
		}
		from, err := toPoint(*v.From)
		if err != nil {
			return nil, err
		}
		to, err := toPoint(*v.To)
		if err != nil {
			return nil, err
		}
		iv, err := temporal.NewInterval(from, to)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "invalid interval")
		}
		return iv, nil
	case "duration":
		return temporal.Duration{Length: time.Duration(v.Seconds * float64(time.Second))}, nil
	}

	dim := temporal.Dimension(v.Kind)
	if !duckling.Supported(dim) {
		return nil, perr.WithField(perr.InvalidArgf("unknown value kind %q", v.Kind), "kind")
	}
	e := duckling.Entity{Dim: dim, Text: v.Text, Unit: v.Unit}
	if v.Number != nil {
		e.Number = *v.Number
	}
	return e, nil
}

func fromValue(v temporal.Value) domain.ValueDTO {
	switch x := v.(type) {
	case temporal.Instant:
		return domain.ValueDTO{Kind: x.Kind(), Time: x.Time.Format(time.RFC3339), Grain: x.Precision.String()}
	case temporal.Interval:
		return domain.ValueDTO{
			Kind: x.Kind(),
			From: &domain.PointDTO{Time: x.From.Time.Format(time.RFC3339), Grain: x.From.Precision.String()},
			To:   &domain.PointDTO{Time: x.To.Time.Format(time.RFC3339), Grain: x.To.Precision.String()},
		}
	case temporal.Duration:
		return domain.ValueDTO{Kind: x.Kind(), Seconds: x.Length.Seconds()}
	case duckling.Entity:
		out := domain.ValueDTO{Kind: x.Kind(), Text: x.Text, Unit: x.Unit}
		if x.Text == "" {
			n := x.Number
			out.Number = &n
		}
		return out
	case nil:
		return domain.ValueDTO{}
	default:
		return domain.ValueDTO{Kind: x.Kind(), Text: x.String()}
	}
}

func toDescriptors(in []domain.DescriptorDTO, zone *time.Location) ([]temporal.Descriptor, error) {
	out := make([]temporal.Descriptor, 0, len(in))
	for i, d := range in {
		v, err := toValue(d.Value, zone)
		if err != nil {
			return nil, perr.WithFieldChain(err, fmt.Sprintf("values[%d]", i))
		}
		out = append(out, temporal.Descriptor{
			Content:     d.Content,
			Position:    d.Position,
			Probability: d.Probability,
			Value:       v,
			Initial:     d.Initial,
		})
	}
	return out, nil
}

func fromDescriptor(d temporal.Descriptor) domain.DescriptorDTO {
	return domain.DescriptorDTO{
		Content:     d.Content,
		Position:    d.Position,
		Probability: d.Probability,
		Value:       fromValue(d.Value),
		Initial:     d.Initial,
	}
}
