package locators

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
)

// selectors flattens every string field of a locator table via
// reflection, so new fields are covered without touching the test.
func selectors(t *testing.T, table any) map[string]string {
	t.Helper()
	out := map[string]string{}
	v := reflect.ValueOf(table)
	for i := 0; i < v.NumField(); i++ {
		if v.Field(i).Kind() == reflect.String {
			out[v.Type().Field(i).Name] = v.Field(i).String()
		}
	}
	return out
}

func TestTablesComplete(t *testing.T) {
	for name, table := range map[string]any{
		"home":  Home,
		"login": Login,
	} {
		t.Run(name, func(t *testing.T) {
			sels := selectors(t, table)
			assert.NotEmpty(t, sels)
			for field, sel := range sels {
				assert.NotEmpty(t, sel, "selector %s must not be empty", field)
			}
		})
	}
}

func TestHomeSelectorsDistinct(t *testing.T) {
	seen := map[string]string{}
	for field, sel := range selectors(t, Home) {
		if prev, dup := seen[sel]; dup {
			t.Errorf("selector %q used by both %s and %s", sel, prev, field)
		}
		seen[sel] = field
	}
}

func TestLoginFormSelectors(t *testing.T) {
	assert.Equal(t, "#input-email", Login.EmailInput)
	assert.Equal(t, "#input-password", Login.PasswordInput)
	assert.Contains(t, Login.LoginButton, "submit")
}
