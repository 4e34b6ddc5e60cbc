package models

import (
	"errors"
	"fmt"
)

// ============================================================
// Wire records
// ============================================================

// Типы деталей в сериализованном виде.
const (
	ShapeTypeArc     = "arc"
	ShapeTypeSegment = "segment"
	ShapeTypeCloser  = "closer"
)

// Типы якорей в сериализованном виде.
const (
	AnchorTypePosition = "position"
	AnchorTypeShape    = "shape"
)

var (
	ErrUnknownShapeType  = errors.New("unknown shape type")
	ErrUnknownAnchorType = errors.New("unknown anchor type")
	// ErrDanglingAnchor — якорь ссылается на id детали, которой нет в документе.
	ErrDanglingAnchor = errors.New("anchor references unknown shape id")
	// ErrTerminalNotLast — терминальная деталь стоит не в конце цепочки.
	ErrTerminalNotLast = errors.New("terminal shape must end the sequence")
)

type ShapeRecord struct {
	ID               string `json:"id"`
	Type             string `json:"type"`
	Key              string `json:"key"`
	Orientation      int    `json:"orientation"`
	Active           bool   `json:"active"`
	BaseColor        bool   `json:"base_color"`
	ForceInvertColor bool   `json:"force_invert_color"`

	ExternalDiameter float64 `json:"external_diameter,omitempty"`
	AngleDegrees     float64 `json:"angle_degrees,omitempty"`
	Width            float64 `json:"width,omitempty"`
	Length           float64 `json:"length,omitempty"`
	Diameter         float64 `json:"diameter,omitempty"`
}

type AnchorRecord struct {
	Type    string  `json:"type"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Angle   float64 `json:"angle,omitempty"`
	ShapeID string  `json:"shape_id,omitempty"`
}

type SequenceRecord struct {
	Name            string        `json:"name"`
	Active          bool          `json:"active"`
	InvertAlignment bool          `json:"invert_alignment"`
	Shapes          []ShapeRecord `json:"shapes"`
	Anchor          *AnchorRecord `json:"anchor,omitempty"`
}

type DesignRecord struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Sequences []SequenceRecord `json:"sequences"`
}

// ============================================================
// Encoding
// ============================================================

func shapeToRecord(s *Shape) (ShapeRecord, error) {
	rec := ShapeRecord{
		ID:               s.ID,
		Key:              s.Key,
		Orientation:      s.Orientation,
		Active:           s.Active,
		BaseColor:        s.BaseColor,
		ForceInvertColor: s.ForceInvertColor,
	}
	switch g := s.Geometry.(type) {
	case ArcGeometry:
		rec.Type = ShapeTypeArc
		rec.ExternalDiameter = g.ExternalDiameter
		rec.AngleDegrees = g.AngleDegrees
		rec.Width = g.Width
	case SegmentGeometry:
		rec.Type = ShapeTypeSegment
		rec.Length = g.Length
		rec.Width = g.Width
	case CloserGeometry:
		rec.Type = ShapeTypeCloser
		rec.Diameter = g.Diameter
	default:
		return ShapeRecord{}, fmt.Errorf("shape %s: %w", s.Key, ErrUnknownShapeType)
	}
	return rec, nil
}

func anchorToRecord(a Anchor) (*AnchorRecord, error) {
	switch anchor := a.(type) {
	case nil:
		return nil, nil
	case AbsoluteAnchor:
		return &AnchorRecord{
			Type:  AnchorTypePosition,
			X:     anchor.Joint.X,
			Y:     anchor.Joint.Y,
			Angle: anchor.Joint.Angle,
		}, nil
	case LinkedAnchor:
		return &AnchorRecord{Type: AnchorTypeShape, ShapeID: anchor.Shape.ID}, nil
	default:
		return nil, ErrUnknownAnchorType
	}
}

// ToRecord сериализует документ в обменную форму.
func (d *Design) ToRecord() (DesignRecord, error) {
	rec := DesignRecord{ID: d.ID, Name: d.Name}
	for _, seq := range d.Sequences {
		seqRec := SequenceRecord{
			Name:            seq.Name,
			Active:          seq.Active,
			InvertAlignment: seq.InvertAlignment,
			Shapes:          []ShapeRecord{},
		}
		for _, s := range seq.Shapes {
			sr, err := shapeToRecord(s)
			if err != nil {
				return DesignRecord{}, err
			}
			seqRec.Shapes = append(seqRec.Shapes, sr)
		}
		anchor, err := anchorToRecord(seq.Anchor)
		if err != nil {
			return DesignRecord{}, fmt.Errorf("sequence %s: %w", seq.Name, err)
		}
		seqRec.Anchor = anchor
		rec.Sequences = append(rec.Sequences, seqRec)
	}
	return rec, nil
}

// ============================================================
// Decoding (two-pass)
// ============================================================

func shapeFromRecord(rec ShapeRecord) (*Shape, error) {
	s := &Shape{
		ID:               rec.ID,
		Key:              rec.Key,
		Active:           rec.Active,
		BaseColor:        rec.BaseColor,
		ForceInvertColor: rec.ForceInvertColor,
	}
	switch rec.Type {
	case ShapeTypeArc:
		s.Geometry = ArcGeometry{
			ExternalDiameter: rec.ExternalDiameter,
			AngleDegrees:     rec.AngleDegrees,
			Width:            rec.Width,
		}
	case ShapeTypeSegment:
		s.Geometry = SegmentGeometry{Length: rec.Length, Width: rec.Width}
	case ShapeTypeCloser:
		s.Geometry = CloserGeometry{Diameter: rec.Diameter}
	default:
		return nil, fmt.Errorf("shape %s type %q: %w", rec.ID, rec.Type, ErrUnknownShapeType)
	}
	if err := s.SetOrientation(rec.Orientation); err != nil {
		return nil, err
	}
	return s, nil
}

// DesignFromRecord восстанавливает документ.
// Два прохода: сначала все детали и карта id → деталь,
// затем разрешение якорей через эту карту.
func DesignFromRecord(rec DesignRecord) (*Design, error) {
	d := &Design{ID: rec.ID, Name: rec.Name}
	byID := make(map[string]*Shape)

	for _, seqRec := range rec.Sequences {
		seq := &Sequence{
			Name:            seqRec.Name,
			Active:          seqRec.Active,
			InvertAlignment: seqRec.InvertAlignment,
		}
		for i, sr := range seqRec.Shapes {
			s, err := shapeFromRecord(sr)
			if err != nil {
				return nil, fmt.Errorf("sequence %s: %w", seqRec.Name, err)
			}
			if _, dup := byID[s.ID]; dup {
				return nil, fmt.Errorf("sequence %s: duplicate shape id %s", seqRec.Name, s.ID)
			}
			// за терминальной деталью ничего не следует — обход цепочки
			// останавливается на ней, хвост остался бы без стыков
			if s.IsTerminal() && i < len(seqRec.Shapes)-1 {
				return nil, fmt.Errorf("sequence %s: shape %s: %w", seqRec.Name, s.ID, ErrTerminalNotLast)
			}
			byID[s.ID] = s
			seq.Shapes = append(seq.Shapes, s)
		}
		d.Sequences = append(d.Sequences, seq)
	}

	for i, seqRec := range rec.Sequences {
		if seqRec.Anchor == nil {
			continue
		}
		switch seqRec.Anchor.Type {
		case AnchorTypePosition:
			d.Sequences[i].Anchor = AbsoluteAnchor{Joint: Joint{
				X:     seqRec.Anchor.X,
				Y:     seqRec.Anchor.Y,
				Angle: seqRec.Anchor.Angle,
			}}
		case AnchorTypeShape:
			target, ok := byID[seqRec.Anchor.ShapeID]
			if !ok {
				return nil, fmt.Errorf("sequence %s: shape %s: %w",
					seqRec.Name, seqRec.Anchor.ShapeID, ErrDanglingAnchor)
			}
			d.Sequences[i].Anchor = LinkedAnchor{Shape: target}
		default:
			return nil, fmt.Errorf("sequence %s: anchor %q: %w",
				seqRec.Name, seqRec.Anchor.Type, ErrUnknownAnchorType)
		}
	}

	return d, nil
}
