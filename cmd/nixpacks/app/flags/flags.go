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

package flags

import (
	"fmt"
	"strconv"
	"strings"
)

// OptionalString describes a string flag that tells unset from empty.
type OptionalString struct {
	value *string
}

// String Implements String() method for pflag interface
func (s *OptionalString) String() string {
	if s.value == nil {
		return ""
	}
	return *s.value
}

// Type Implements Type() method for pflag interface
func (s *OptionalString) Type() string {
	return "string"
}

// Set Implements Set() method for pflag interface
func (s *OptionalString) Set(value string) error {
	s.value = &value
	return nil
}

// Value returns nil when the flag was not given.
func (s *OptionalString) Value() *string {
	return s.value
}

// OptionalBool describes a boolean flag that tells unset from false.
type OptionalBool struct {
	value *bool
}

func (b *OptionalBool) String() string {
	if b.value == nil {
		return ""
	}
	return strconv.FormatBool(*b.value)
}

func (b *OptionalBool) Type() string {
	return "bool"
}

func (b *OptionalBool) Set(value string) error {
	v, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid boolean %q", value)
	}
	b.value = &v
	return nil
}

// Value returns nil when the flag was not given.
func (b *OptionalBool) Value() *bool {
	return b.value
}

// StringList describes a repeatable flag. Once given, even with an empty
// value, the list is no longer nil.
type StringList struct {
	values []string
}

func (l *StringList) String() string {
	return strings.Join(l.values, ",")
}

func (l *StringList) Type() string {
	return "stringArray"
}

// Set appends value. An empty value only marks the list as given.
func (l *StringList) Set(value string) error {
	if l.values == nil {
		l.values = []string{}
	}
	if value != "" {
		l.values = append(l.values, value)
	}
	return nil
}

// GetSlice returns nil when the flag was not given.
func (l *StringList) GetSlice() []string {
	return l.values
}
