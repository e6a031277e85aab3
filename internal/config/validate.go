package config

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// ValidateKeys checks for unparseable key strings and for two actions
// bound to the same key. Prefix is pressed in a different context from the
// other bindings, so it only needs to parse.
func ValidateKeys(keys *KeyBindings) error {
	keyMap := make(map[string][]string)

	v := reflect.ValueOf(keys).Elem()
	t := v.Type()

	for i := range v.NumField() {
		field := v.Field(i)
		fieldName := t.Field(i).Name
		if field.Kind() != reflect.String || field.String() == "" {
			continue
		}

		k, err := ParseKey(field.String())
		if err != nil {
			return fmt.Errorf("invalid key for %s: %w", fieldName, err)
		}
		if fieldName == "Prefix" {
			if k.IsRune() && k.Mod == 0 {
				return fmt.Errorf("prefix %q must be a control or special key", field.String())
			}
			continue
		}

		// Canonical form folds aliases such as "pageup" and "pgup".
		keyMap[k.String()] = append(keyMap[k.String()], fieldName)
	}

	var duplicates []string
	for key, actions := range keyMap {
		if len(actions) > 1 {
			duplicates = append(duplicates, fmt.Sprintf("key %q is used by: %s", key, strings.Join(actions, ", ")))
		}
	}
	if len(duplicates) > 0 {
		slices.Sort(duplicates)
		return fmt.Errorf("duplicate keybindings found:\n  %s", strings.Join(duplicates, "\n  "))
	}

	return nil
}

var validColors = []string{
	"default", "black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
}

// ValidateColor checks if a color string is valid for gocui.
func ValidateColor(color string) bool {
	return slices.Contains(validColors, strings.ToLower(color))
}
