/*
Copyright 2026 The Skaffold Authors

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package plan

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/GoogleContainerTools/nixpacks/pkg/nixpacks/nix"
)

// Format is a serialized plan format.
type Format string

const (
	FormatJSON = Format("json")
	FormatTOML = Format("toml")
)

// ParseFormat parses a format name, defaulting to json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "json":
		return FormatJSON, nil
	case "toml":
		return FormatTOML, nil
	}
	return "", fmt.Errorf("unknown plan format %q, expected json or toml", s)
}

// The documents below use pointers so that an absent list and an empty list
// are told apart in both formats.

type planDoc struct {
	Providers  *[]string          `json:"providers,omitempty" toml:"providers"`
	BuildImage string             `json:"buildImage,omitempty" toml:"buildImage,omitempty"`
	Variables  *map[string]string `json:"variables,omitempty" toml:"variables"`
	Phases     *[]phaseDoc        `json:"phases,omitempty" toml:"phases"`
	Start      *startDoc          `json:"start,omitempty" toml:"start"`
}

type phaseDoc struct {
	Name             string     `json:"name,omitempty" toml:"name,omitempty"`
	Cmds             *[]string  `json:"cmds,omitempty" toml:"cmds"`
	DependsOn        *[]string  `json:"dependsOn,omitempty" toml:"dependsOn"`
	NixPkgs          *[]nix.Pkg `json:"nixPkgs,omitempty" toml:"nixPkgs"`
	NixLibs          *[]string  `json:"nixLibs,omitempty" toml:"nixLibs"`
	AptPkgs          *[]string  `json:"aptPkgs,omitempty" toml:"aptPkgs"`
	CacheDirectories *[]string  `json:"cacheDirectories,omitempty" toml:"cacheDirectories"`
	Paths            *[]string  `json:"paths,omitempty" toml:"paths"`
}

type startDoc struct {
	Cmd      string `json:"cmd,omitempty" toml:"cmd,omitempty"`
	RunImage string `json:"runImage,omitempty" toml:"runImage,omitempty"`
}

func toDoc(p *BuildPlan) planDoc {
	doc := planDoc{
		Providers:  ptr(p.Providers),
		BuildImage: p.BuildImage,
	}
	if p.Variables != nil {
		vars := p.Variables
		doc.Variables = &vars
	}
	if p.Phases != nil {
		phases := make([]phaseDoc, 0, len(p.Phases))
		for _, phase := range p.Phases {
			phases = append(phases, phaseDoc{
				Name:             phase.Name,
				Cmds:             ptr(phase.Cmds),
				DependsOn:        ptr(phase.DependsOn),
				NixPkgs:          ptr(phase.NixPkgs),
				NixLibs:          ptr(phase.NixLibs),
				AptPkgs:          ptr(phase.AptPkgs),
				CacheDirectories: ptr(phase.CacheDirectories),
				Paths:            ptr(phase.Paths),
			})
		}
		doc.Phases = &phases
	}
	if p.Start != nil {
		doc.Start = &startDoc{Cmd: p.Start.Cmd, RunImage: p.Start.RunImage}
	}
	return doc
}

func fromDoc(doc planDoc) (*BuildPlan, error) {
	p := NewBuildPlan()
	p.Providers = deref(doc.Providers)
	p.BuildImage = doc.BuildImage
	if doc.Variables != nil {
		p.Variables = *doc.Variables
	}
	if doc.Phases != nil {
		p.Phases = []*Phase{}
		for i, pd := range *doc.Phases {
			if pd.Name == "" {
				return nil, fmt.Errorf("phase %d has no name", i)
			}
			p.AddPhase(fromPhaseDoc(pd))
		}
	}
	if doc.Start != nil {
		p.Start = &StartPhase{Cmd: doc.Start.Cmd, RunImage: doc.Start.RunImage}
	}
	return p, nil
}

func fromPhaseDoc(pd phaseDoc) *Phase {
	return &Phase{
		Name:             pd.Name,
		Cmds:             deref(pd.Cmds),
		DependsOn:        deref(pd.DependsOn),
		NixPkgs:          deref(pd.NixPkgs),
		NixLibs:          deref(pd.NixLibs),
		AptPkgs:          deref(pd.AptPkgs),
		CacheDirectories: deref(pd.CacheDirectories),
		Paths:            deref(pd.Paths),
	}
}

func ptr[T any](s []T) *[]T {
	if s == nil {
		return nil
	}
	return &s
}

func deref[T any](s *[]T) []T {
	if s == nil {
		return nil
	}
	if *s == nil {
		return []T{}
	}
	return *s
}

// Serialize writes p in the given format.
func (p *BuildPlan) Serialize(format Format) (string, error) {
	switch format {
	case FormatTOML:
		return p.ToTOML()
	case FormatJSON, "":
		return p.ToJSON()
	}
	return "", fmt.Errorf("unknown plan format %q", format)
}

// Deserialize reads a plan in the given format.
func Deserialize(text string, format Format) (*BuildPlan, error) {
	switch format {
	case FormatTOML:
		return FromTOML(text)
	case FormatJSON, "":
		return FromJSON(text)
	}
	return nil, fmt.Errorf("unknown plan format %q", format)
}

// ToJSON serializes p as indented JSON.
func (p *BuildPlan) ToJSON() (string, error) {
	buf, err := json.MarshalIndent(toDoc(p), "", "  ")
	if err != nil {
		return "", err
	}
	return string(buf), nil
}

// FromJSON parses a JSON plan. `phases` is either a list of phases or an
// object keyed by phase name, in which case the key order is kept.
func FromJSON(text string) (*BuildPlan, error) {
	var raw struct {
		planDoc
		Phases json.RawMessage `json:"phases"`
	}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}

	doc := raw.planDoc
	phases, err := decodeJSONPhases(raw.Phases)
	if err != nil {
		return nil, err
	}
	doc.Phases = phases

	return fromDoc(doc)
}

func decodeJSONPhases(raw json.RawMessage) (*[]phaseDoc, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	phases := []phaseDoc{}
	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.DisallowUnknownFields()
	if trimmed[0] == '[' {
		if err := dec.Decode(&phases); err != nil {
			return nil, err
		}
		return &phases, nil
	}

	if tok, err := dec.Token(); err != nil {
		return nil, err
	} else if tok != json.Delim('{') {
		return nil, fmt.Errorf("phases: expected a list or an object, got %v", tok)
	}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		name := tok.(string)

		var phase phaseDoc
		if err := dec.Decode(&phase); err != nil {
			return nil, fmt.Errorf("phase %q: %w", name, err)
		}
		if phase.Name == "" {
			phase.Name = name
		}
		phases = append(phases, phase)
	}
	return &phases, nil
}

// ToTOML serializes p as TOML.
func (p *BuildPlan) ToTOML() (string, error) {
	var buf bytes.Buffer
	enc := toml.NewEncoder(&buf)
	enc.Indent = ""
	if err := enc.Encode(toDoc(p)); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// FromTOML parses a TOML plan. `phases` is either an array of tables or a
// table of tables keyed by phase name, in which case the key order is kept.
func FromTOML(text string) (*BuildPlan, error) {
	var raw struct {
		Providers  *[]string          `toml:"providers"`
		BuildImage string             `toml:"buildImage"`
		Variables  *map[string]string `toml:"variables"`
		Phases     toml.Primitive     `toml:"phases"`
		Start      *startDoc          `toml:"start"`
	}
	md, err := toml.Decode(text, &raw)
	if err != nil {
		return nil, err
	}

	doc := planDoc{
		Providers:  raw.Providers,
		BuildImage: raw.BuildImage,
		Variables:  raw.Variables,
		Start:      raw.Start,
	}

	if md.IsDefined("phases") {
		phases := []phaseDoc{}
		switch typ := md.Type("phases"); typ {
		case "Array", "ArrayHash":
			if err := md.PrimitiveDecode(raw.Phases, &phases); err != nil {
				return nil, fmt.Errorf("decoding phases: %w", err)
			}
		case "Hash":
			byName := map[string]phaseDoc{}
			if err := md.PrimitiveDecode(raw.Phases, &byName); err != nil {
				return nil, fmt.Errorf("decoding phases: %w", err)
			}
			for _, name := range tomlPhaseNames(md) {
				phase := byName[name]
				if phase.Name == "" {
					phase.Name = name
				}
				phases = append(phases, phase)
			}
		default:
			return nil, fmt.Errorf("phases must be an array of tables or a table of phases, got %s", strings.ToLower(typ))
		}
		doc.Phases = &phases
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("unknown keys in plan: %v", undecoded)
	}

	return fromDoc(doc)
}

// tomlPhaseNames returns the names under `phases` in document order.
func tomlPhaseNames(md toml.MetaData) []string {
	var names []string
	seen := map[string]bool{}
	for _, key := range md.Keys() {
		if len(key) == 2 && key[0] == "phases" && !seen[key[1]] {
			seen[key[1]] = true
			names = append(names, key[1])
		}
	}
	return names
}
