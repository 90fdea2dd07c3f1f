package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/pflag"
)

// choiceValue is a string flag restricted to a fixed set of values.
type choiceValue struct {
	value   *string
	choices []string
}

var _ pflag.Value = (*choiceValue)(nil)

func newChoiceValue(value *string, defaultValue string, choices ...string) *choiceValue {
	*value = defaultValue
	return &choiceValue{value: value, choices: choices}
}

func (c *choiceValue) String() string {
	return *c.value
}

func (c *choiceValue) Set(value string) error {
	if !slices.Contains(c.choices, value) {
		return fmt.Errorf("must be one of %s", strings.Join(c.choices, ", "))
	}
	*c.value = value
	return nil
}

func (c *choiceValue) Type() string {
	return "string"
}
