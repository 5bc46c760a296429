// Package capture turns recorded live sessions into replayable test
// fixtures and replays them against a dispatcher.
package capture

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/brtech99/stripcalls/internal/core"
	"github.com/brtech99/stripcalls/internal/domain"
)

// Interaction is one inbound message and every message the system sent in
// response before the next inbound arrived.
type Interaction struct {
	Incoming domain.Inbound   `yaml:"incoming_message"`
	Expected []domain.Message `yaml:"expected_outgoing_messages"`
}

// Fixture is the serialized form of a capture session.
type Fixture struct {
	Name         string        `yaml:"name"`
	Interactions []Interaction `yaml:"interactions"`
}

// Fold groups an ordered event stream into interaction blocks: each
// incoming event opens a block that absorbs every outgoing event until the
// next incoming one. Outgoing events before the first incoming are
// dropped; a well-formed session never produces them.
func Fold(name string, events []core.CapturedEvent) *Fixture {
	f := &Fixture{Name: name}
	var cur *Interaction
	for _, ev := range events {
		switch ev.Direction {
		case core.CaptureIncoming:
			f.Interactions = append(f.Interactions, Interaction{
				Incoming: domain.Inbound{From: ev.From, To: ev.To, Body: ev.Body},
			})
			cur = &f.Interactions[len(f.Interactions)-1]
		case core.CaptureOutgoing:
			if cur == nil {
				continue
			}
			cur.Expected = append(cur.Expected, domain.Message{To: ev.To, Body: ev.Body, From: ev.From})
		}
	}
	return f
}

// Marshal serializes the fixture as YAML.
func (f *Fixture) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(f)
	if err != nil {
		return nil, fmt.Errorf("marshal fixture %q: %w", f.Name, err)
	}
	return data, nil
}

// Parse deserializes a fixture document.
func Parse(data []byte) (*Fixture, error) {
	var f Fixture
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &f, nil
}
