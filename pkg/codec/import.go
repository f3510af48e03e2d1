package codec

import (
	"fmt"
	"io"

	"github.com/aretw0/seqflow/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Unmarshal decodes a diagram document best effort.
// The returned warnings list every skipped or repaired entry.
func Unmarshal(data []byte, f Format) (*domain.Diagram, Warnings, error) {
	doc, err := decodeGeneric(data, f)
	if err != nil {
		return nil, nil, err
	}

	imp := &importer{d: domain.NewDiagram()}
	imp.entities(list(doc["entities"]))
	imp.connections(list(doc["connections"]))
	imp.notes(list(doc["notes"]))
	return imp.d, imp.warnings, nil
}

// Decode reads all of r and imports it.
func Decode(r io.Reader, f Format) (*domain.Diagram, Warnings, error) {
	if r == nil {
		return nil, nil, domain.ErrNilInput
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read document: %w", err)
	}
	return Unmarshal(data, f)
}

func list(v any) []any {
	l, _ := v.([]any)
	return l
}

type importer struct {
	d        *domain.Diagram
	warnings Warnings
}

func (imp *importer) warn(section string, i int, field, reason string) {
	imp.warnings = append(imp.warnings, &ImportError{Section: section, Index: i, Field: field, Reason: reason})
}

// decode maps a generic value onto out using the json field names.
func decode(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

func (imp *importer) entities(raw []any) {
	for i, item := range raw {
		var e domain.Entity
		if err := decode(item, &e); err != nil {
			imp.warn("entities", i, "", err.Error())
			continue
		}
		if e.ID == "" {
			imp.warn("entities", i, "id", "missing")
			continue
		}
		if _, known := domain.ParseEntityKind(string(e.Kind)); !known {
			if e.Kind != "" {
				imp.warn("entities", i, "kind", fmt.Sprintf("unknown kind %q, using participant", e.Kind))
			}
			e.Kind = domain.KindParticipant
		}
		if e.DisplayName == "" {
			e.DisplayName = e.ID
		}
		if e.Size.Width <= 0 || e.Size.Height <= 0 {
			e.Size = domain.SizeFor(e.DisplayName)
		}
		if _, added := imp.d.AddEntity(&e); !added {
			imp.warn("entities", i, "id", fmt.Sprintf("duplicate id %q ignored", e.ID))
		}
	}
}

func (imp *importer) connections(raw []any) {
	for i, item := range raw {
		var c domain.Connection
		if err := decode(item, &c); err != nil {
			imp.warn("connections", i, "", err.Error())
			continue
		}
		ordinal := len(imp.d.Connections)

		if c.Command != "" {
			if c.Target == "" {
				imp.warn("connections", i, "target", "missing")
				continue
			}
			imp.d.Ensure(c.Target)
			if c.ID == "" {
				c.ID = domain.CommandID(c.Command, c.Target, ordinal)
			}
			imp.d.Connections = append(imp.d.Connections, domain.Connection{ID: c.ID, Command: c.Command, Target: c.Target})
			continue
		}

		switch {
		case c.From == "":
			imp.warn("connections", i, "from", "missing")
			continue
		case c.To == "":
			imp.warn("connections", i, "to", "missing")
			continue
		}
		if c.Kind == "" {
			c.Kind = domain.ConnSolid
		}
		if c.Arrow == "" {
			c.Arrow = "->"
		}
		if c.ID == "" {
			c.ID = domain.ConnectionID(c.From, c.To, ordinal)
		}
		if c.Weight.Width <= 0 {
			c.Weight = domain.WeightFor(c.Arrow, c.Kind)
		}
		imp.d.Ensure(c.From)
		imp.d.Ensure(c.To)
		imp.d.Connections = append(imp.d.Connections, c)
	}
}

func (imp *importer) notes(raw []any) {
	for i, item := range raw {
		var n domain.Note
		if err := decode(item, &n); err != nil {
			imp.warn("notes", i, "", err.Error())
			continue
		}
		if len(n.Targets) == 0 {
			imp.warn("notes", i, "targets", "missing")
			continue
		}
		if n.Placement == "" {
			n.Placement = domain.NoteOver
		}
		for _, t := range n.Targets {
			imp.d.Ensure(t)
		}
		imp.d.Notes = append(imp.d.Notes, n)
	}
}
