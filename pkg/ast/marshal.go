package ast

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Assertions are encoded with a "type" discriminator so that dumps of the
// AST stay unambiguous.

type (
	defaultAlias  Default
	relationAlias Relation
)

type taggedDefault struct {
	Type         AssertionKind `json:"type" yaml:"type"`
	defaultAlias `yaml:",inline"`
}

type taggedRelation struct {
	Type          AssertionKind `json:"type" yaml:"type"`
	relationAlias `yaml:",inline"`
}

type taggedPrimaryKey struct {
	Type AssertionKind `json:"type" yaml:"type"`
}

// MarshalJSON implements json.Marshaler.
func (p *PrimaryKey) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedPrimaryKey{Type: AssertPrimaryKey})
}

// MarshalYAML implements yaml.Marshaler.
func (p *PrimaryKey) MarshalYAML() (interface{}, error) {
	return taggedPrimaryKey{Type: AssertPrimaryKey}, nil
}

// MarshalJSON implements json.Marshaler.
func (d *Default) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedDefault{Type: AssertDefault, defaultAlias: defaultAlias(*d)})
}

// MarshalYAML implements yaml.Marshaler.
func (d *Default) MarshalYAML() (interface{}, error) {
	return taggedDefault{Type: AssertDefault, defaultAlias: defaultAlias(*d)}, nil
}

// MarshalJSON implements json.Marshaler.
func (r *Relation) MarshalJSON() ([]byte, error) {
	return json.Marshal(taggedRelation{Type: AssertRelation, relationAlias: relationAlias(*r)})
}

// MarshalYAML implements yaml.Marshaler.
func (r *Relation) MarshalYAML() (interface{}, error) {
	return taggedRelation{Type: AssertRelation, relationAlias: relationAlias(*r)}, nil
}

func (*PrimaryKey) String() string { return "@id" }

func (d *Default) String() string { return fmt.Sprintf("@default(%s)", d.Expr) }

func (r *Relation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "-> %s.%s", r.Model, r.References)
	if r.OnDelete != "" {
		fmt.Fprintf(&b, " onDelete:%s", r.OnDelete)
	}
	if r.OnUpdate != "" {
		fmt.Fprintf(&b, " onUpdate:%s", r.OnUpdate)
	}
	return b.String()
}
