// Package forms provides helpers for working with posted wizard form bodies.
//
// A posted body is represented as url.Values exactly as the hosting layer
// parsed it. The engine merges only the fields owned by the posted step into
// the session DTO, and view-model factories echo the submitted values back
// after a failed validation so the rendered form does not silently revert the
// user's input.
package forms

import "net/url"

// Pick extracts the owned fields from a posted body as a decode map. A field
// is included when the key is present in the body, even with an empty value,
// so an emptied input clears the corresponding DTO field. Absent keys are
// left out, keeping unrelated DTO fields untouched.
func Pick(form url.Values, fields []string) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		if vals, ok := form[f]; ok {
			if len(vals) == 0 {
				out[f] = ""
				continue
			}
			out[f] = vals[0]
		}
	}
	return out
}

// Echo returns the value the user just submitted for key, falling back to the
// last-known-good value when the key was not posted (a plain GET render).
func Echo(form url.Values, key, fallback string) string {
	if form == nil {
		return fallback
	}
	if vals, ok := form[key]; ok && len(vals) > 0 {
		return vals[0]
	}
	return fallback
}
